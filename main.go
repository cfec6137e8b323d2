package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"debatewatch-server/pkg/analysis"
	"debatewatch-server/pkg/config"
	"debatewatch-server/pkg/factcheck"
	httpserver "debatewatch-server/pkg/http"
	"debatewatch-server/pkg/messaging"
	"debatewatch-server/pkg/metrics"
	"debatewatch-server/pkg/session"
	"debatewatch-server/pkg/util"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

func init() {
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)
}

func main() {
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ApplyLogging(logger)

	logStartupConfig(cfg)

	metrics.StartMetrics(logger, cfg.HTTP.EnableMetrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := util.NewGracefulShutdown(logger, 30*time.Second)

	// Event publishers: WebSocket hub always, AMQP when configured
	hub := httpserver.NewEventHub(logger)
	go hub.Run(ctx)

	publishers := []messaging.EventPublisher{hub}

	if cfg.Messaging.AMQPUrl != "" {
		amqpClient := messaging.NewAMQPClient(logger, messaging.AMQPConfig{
			URL:       cfg.Messaging.AMQPUrl,
			QueueName: cfg.Messaging.AMQPQueueName,
			Durable:   true,
		})
		if err := amqpClient.Connect(); err != nil {
			logger.WithError(err).Warn("AMQP connection failed, continuing without broker")
		}
		metrics.SetAMQPConnectionStatus(amqpClient.IsConnected())
		publishers = append(publishers, amqpClient)

		shutdown.Register("amqp", 30, func(context.Context) error {
			amqpClient.Disconnect()
			return nil
		})
	}

	publisher := messaging.NewFanoutPublisher(publishers...)

	analyzer := analysis.NewAnalyzer(logger)
	orchestrator := factcheck.NewOrchestrator(logger, cfg.FactCheck, analyzer)
	orchestrator.RegisterProviders(ctx)

	manager := session.NewManager(ctx, logger, cfg, orchestrator, publisher)
	shutdown.Register("sessions", 20, func(context.Context) error {
		manager.Close()
		return nil
	})

	if cfg.HTTP.Enabled {
		server := httpserver.NewServer(logger, cfg.HTTP, manager, hub)
		shutdown.Register("http", 10, server.Shutdown)

		go func() {
			if err := server.Start(); err != nil {
				logger.Fatalf("HTTP server failed: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()
	if err := shutdown.Shutdown(context.Background()); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
		os.Exit(1)
	}
}

func logStartupConfig(cfg *config.Config) {
	logger.Infof("Debate analysis server is starting with the following configuration:")
	logger.Infof("HTTP Enabled: %v", cfg.HTTP.Enabled)
	logger.Infof("HTTP Port: %d", cfg.HTTP.Port)
	logger.Infof("Metrics Enabled: %v", cfg.HTTP.EnableMetrics)
	logger.Infof("Fact-Check Mode: %s", cfg.FactCheck.Mode)
	logger.Infof("Numeric Tolerance: %.0f%%", cfg.FactCheck.TolerancePercent)
	logger.Infof("Continuous Analysis: %v", cfg.Analysis.ContinuousAnalysis)
	logger.Infof("Context Window: %d", cfg.Analysis.ContextWindow)
	if cfg.Messaging.AMQPUrl != "" {
		logger.Infof("AMQP Queue: %s", cfg.Messaging.AMQPQueueName)
	}
	logger.Infof("Log Level: %s", cfg.Logging.Level)
}
