package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	registry           *prometheus.Registry
	registryOnce       sync.Once
	defaultMetricsPath = "/metrics"
	metricsEnabled     = true

	// Transcript metrics
	UtterancesTotal      *prometheus.CounterVec
	ClaimsTotal          *prometheus.CounterVec
	DuplicatesSuppressed prometheus.Counter
	FallaciesDetected    *prometheus.CounterVec

	// Fact-check metrics
	FactChecksTotal  *prometheus.CounterVec
	FactCheckLatency *prometheus.HistogramVec

	// Session metrics
	SessionsActive prometheus.Gauge
	SpeakersActive prometheus.Gauge

	// AMQP metrics
	AMQPPublishedEvents  *prometheus.CounterVec
	AMQPConnectionStatus prometheus.Gauge
)

// Init initializes all metrics and registers them with Prometheus
func Init(logger *logrus.Logger) {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		UtterancesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debatewatch_utterances_total",
				Help: "Total number of utterances ingested",
			},
			[]string{"session_id"},
		)

		ClaimsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debatewatch_claims_total",
				Help: "Total number of claims created, by origin",
			},
			[]string{"session_id", "origin"},
		)

		DuplicatesSuppressed = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "debatewatch_duplicates_suppressed_total",
				Help: "Total number of near-duplicate utterances suppressed",
			},
		)

		FallaciesDetected = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debatewatch_fallacies_detected_total",
				Help: "Total number of logical fallacies detected, by name",
			},
			[]string{"fallacy"},
		)

		FactChecksTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debatewatch_fact_checks_total",
				Help: "Total number of completed fact checks, by mode and verdict",
			},
			[]string{"mode", "verdict"},
		)

		FactCheckLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debatewatch_fact_check_duration_seconds",
				Help:    "Fact-check resolution latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		)

		SessionsActive = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "debatewatch_sessions_active",
				Help: "Number of active debate sessions",
			},
		)

		SpeakersActive = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "debatewatch_speakers_active",
				Help: "Number of speakers across active sessions",
			},
		)

		AMQPPublishedEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debatewatch_amqp_published_events_total",
				Help: "Total number of events published to AMQP, by type and status",
			},
			[]string{"type", "status"},
		)

		AMQPConnectionStatus = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "debatewatch_amqp_connection_status",
				Help: "AMQP connection status (1 connected, 0 disconnected)",
			},
		)

		registry.MustRegister(
			UtterancesTotal,
			ClaimsTotal,
			DuplicatesSuppressed,
			FallaciesDetected,
			FactChecksTotal,
			FactCheckLatency,
			SessionsActive,
			SpeakersActive,
			AMQPPublishedEvents,
			AMQPConnectionStatus,
		)

		logger.Info("Metrics registered")
	})
}

// StartMetrics initializes the metrics service
func StartMetrics(logger *logrus.Logger, enabled bool) {
	if !enabled {
		metricsEnabled = false
		logger.Info("Metrics collection is disabled")
		return
	}

	Init(logger)
	metricsEnabled = true
	logger.WithField("metrics_path", defaultMetricsPath).Info("Metrics endpoint initialized")
}

// GetHandler returns the HTTP handler serving the metrics endpoint
func GetHandler() http.Handler {
	if registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// RecordUtterance records one ingested utterance
func RecordUtterance(sessionID string) {
	if metricsEnabled && UtterancesTotal != nil {
		UtterancesTotal.WithLabelValues(sessionID).Inc()
	}
}

// RecordClaim records one created claim
func RecordClaim(sessionID, origin string) {
	if metricsEnabled && ClaimsTotal != nil {
		ClaimsTotal.WithLabelValues(sessionID, origin).Inc()
	}
}

// RecordDuplicateSuppressed records one suppressed near-duplicate
func RecordDuplicateSuppressed() {
	if metricsEnabled && DuplicatesSuppressed != nil {
		DuplicatesSuppressed.Inc()
	}
}

// RecordFallacy records one detected fallacy
func RecordFallacy(fallacy string) {
	if metricsEnabled && FallaciesDetected != nil {
		FallaciesDetected.WithLabelValues(fallacy).Inc()
	}
}

// RecordFactCheck records one completed fact check
func RecordFactCheck(mode, verdict string) {
	if metricsEnabled && FactChecksTotal != nil {
		FactChecksTotal.WithLabelValues(mode, verdict).Inc()
	}
}

// ObserveFactCheckLatency returns a timer function recording resolution
// latency when invoked
func ObserveFactCheckLatency(mode string) func() {
	if !metricsEnabled || FactCheckLatency == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		FactCheckLatency.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}
}

// SetActiveSessions sets the active session gauge
func SetActiveSessions(count int) {
	if metricsEnabled && SessionsActive != nil {
		SessionsActive.Set(float64(count))
	}
}

// SetActiveSpeakers sets the active speaker gauge
func SetActiveSpeakers(count int) {
	if metricsEnabled && SpeakersActive != nil {
		SpeakersActive.Set(float64(count))
	}
}

// RecordAMQPPublish records one AMQP publish attempt
func RecordAMQPPublish(eventType, status string) {
	if metricsEnabled && AMQPPublishedEvents != nil {
		AMQPPublishedEvents.WithLabelValues(eventType, status).Inc()
	}
}

// SetAMQPConnectionStatus sets the AMQP connection gauge
func SetAMQPConnectionStatus(connected bool) {
	if metricsEnabled && AMQPConnectionStatus != nil {
		if connected {
			AMQPConnectionStatus.Set(1)
		} else {
			AMQPConnectionStatus.Set(0)
		}
	}
}
