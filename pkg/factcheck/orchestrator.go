package factcheck

import (
	"context"
	"strings"
	"sync"
	"time"

	"debatewatch-server/pkg/analysis"
	"debatewatch-server/pkg/config"
	"debatewatch-server/pkg/transcript"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Orchestrator resolves claims into fact-check results. The resolution
// order is fixed: cached result, local myths table, then the configured
// mode (claimbuster, gemini, openai or hybrid). Every failure path
// degrades to the rule-based fallback; CheckFact never returns an error.
type Orchestrator struct {
	logger     *logrus.Entry
	baseLogger *logrus.Logger
	config     config.FactCheckConfig
	analyzer   *analysis.Analyzer

	myths     *MythStore
	providers *ProviderManager
	cache     *gocache.Cache

	listeners     []ResultListener
	listenerMutex sync.RWMutex
}

// NewOrchestrator creates a fact-check orchestrator. Providers are
// registered separately via RegisterProviders so that tests can inject
// mocks through the manager.
func NewOrchestrator(logger *logrus.Logger, cfg config.FactCheckConfig, analyzer *analysis.Analyzer) *Orchestrator {
	return &Orchestrator{
		logger:     logger.WithField("component", "factcheck_orchestrator"),
		baseLogger: logger,
		config:     cfg,
		analyzer:   analyzer,
		myths:      NewMythStore(),
		providers:  NewProviderManager(logger, "gemini"),
		cache:      gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

// Providers exposes the provider registry for registration and tests
func (o *Orchestrator) Providers() *ProviderManager {
	return o.providers
}

// RegisterProviders registers every provider the configuration carries
// credentials for. Registration failures are logged, never fatal: the
// orchestrator still works through its local paths.
func (o *Orchestrator) RegisterProviders(ctx context.Context) {
	if o.config.GeminiAPIKey != "" {
		provider := NewGeminiProvider(o.baseLogger, o.config.GeminiAPIKey, o.config.GeminiModel)
		if err := o.providers.RegisterProvider(ctx, provider); err != nil {
			o.logger.WithError(err).Warn("Failed to register Gemini provider")
		}
	}

	if o.config.OpenAIAPIKey != "" {
		provider := NewOpenAIProvider(o.baseLogger, o.config.OpenAIAPIKey, o.config.OpenAIModel)
		if err := o.providers.RegisterProvider(ctx, provider); err != nil {
			o.logger.WithError(err).Warn("Failed to register OpenAI provider")
		}
	}
}

// AddResultListener registers a listener for completed fact checks
func (o *Orchestrator) AddResultListener(listener ResultListener) {
	o.listenerMutex.Lock()
	defer o.listenerMutex.Unlock()
	o.listeners = append(o.listeners, listener)
}

// RemoveResultListener unregisters a listener by identity. The
// orchestrator outlives individual sessions, so consumers must remove
// themselves when they end or they leak into every future fanout.
func (o *Orchestrator) RemoveResultListener(listener ResultListener) {
	o.listenerMutex.Lock()
	defer o.listenerMutex.Unlock()

	for i, l := range o.listeners {
		if l == listener {
			o.listeners = append(o.listeners[:i], o.listeners[i+1:]...)
			return
		}
	}
}

// CheckFactAsync resolves a claim in the background and fans the result
// out to listeners. Fire and forget: one call per newly created claim.
func (o *Orchestrator) CheckFactAsync(ctx context.Context, claim *transcript.Claim) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.WithFields(logrus.Fields{
					"claim_id": claim.ID,
					"panic":    r,
				}).Error("Recovered from panic in fact-check worker")
			}
		}()

		result := o.CheckFact(ctx, claim)
		o.notifyListeners(result)
	}()
}

// CheckFact resolves one claim synchronously. It always returns a usable
// result; provider errors degrade to the local fallback.
func (o *Orchestrator) CheckFact(ctx context.Context, claim *transcript.Claim) *Result {
	started := time.Now()

	result := o.resolve(ctx, claim)

	result.ID = uuid.NewString()
	result.ClaimID = claim.ID
	result.CheckedAt = time.Now()
	if result.Mode == "" {
		result.Mode = o.config.Mode
	}

	// Locally detected fallacies always ride along; providers may add
	// their own on top
	result.LogicalFallacies = mergeFallacies(claim.Fallacies, result.LogicalFallacies)

	if result.CounterArgument == "" {
		result.CounterArgument = SynthesizeCounterArgument(result.Verdict, result.LogicalFallacies, result.Explanation)
	}

	o.logger.WithFields(logrus.Fields{
		"claim_id": claim.ID,
		"verdict":  result.Verdict,
		"mode":     result.Mode,
		"duration": time.Since(started),
	}).Info("Fact check completed")

	return result
}

// resolve runs the cache, myth table and mode paths in order
func (o *Orchestrator) resolve(ctx context.Context, claim *transcript.Claim) *Result {
	cacheKey := strings.ToLower(strings.TrimSpace(claim.Text))

	if cached, found := o.cache.Get(cacheKey); found {
		if prior, ok := cached.(*Result); ok {
			o.logger.WithField("claim_id", claim.ID).Debug("Fact check served from cache")
			clone := *prior
			return &clone
		}
	}

	if myth := o.myths.Match(claim.Text, o.config.TolerancePercent); myth != nil {
		result := o.mythResult(claim, myth)
		o.cache.Set(cacheKey, result, gocache.DefaultExpiration)
		clone := *result
		return &clone
	}

	result := o.modeResult(ctx, claim)
	o.cache.Set(cacheKey, result, gocache.DefaultExpiration)
	clone := *result
	return &clone
}

// mythResult builds a result from a myth-table hit
func (o *Orchestrator) mythResult(claim *transcript.Claim, myth *Myth) *Result {
	fallacies := claim.Fallacies
	if len(fallacies) == 0 {
		fallacies = o.analyzer.DetectFallacies(claim.Text)
	}

	result := &Result{
		Verdict:          myth.Verdict,
		Source:           myth.Source,
		Explanation:      myth.Explanation,
		ConfidenceScore:  95,
		LogicalFallacies: fallacies,
		DebunkedStudies:  myth.DebunkedStudies,
		Mode:             "myths",
	}

	if result.Verdict == VerdictFalse || len(fallacies) > 0 {
		result.CounterArgument = SynthesizeCounterArgument(result.Verdict, fallacies, result.Explanation)
	}

	return result
}

// modeResult dispatches on the configured orchestration mode
func (o *Orchestrator) modeResult(ctx context.Context, claim *transcript.Claim) *Result {
	switch o.config.Mode {
	case "claimbuster":
		return claimbusterResult(claim.Text)

	case "gemini", "openai":
		if result := o.providerResult(ctx, claim, o.config.Mode); result != nil {
			return result
		}
		return o.fallbackResult(claim)

	default: // hybrid
		if scoreCheckWorthiness(claim.Text) < 0.25 {
			result := hybridLocalResult(claim.Text, claim.Topic)
			result.Mode = "hybrid"
			return result
		}
		if result := o.providerResult(ctx, claim, "gemini"); result != nil {
			return result
		}
		result := hybridLocalResult(claim.Text, claim.Topic)
		result.Mode = "hybrid"
		return result
	}
}

// providerResult calls a verification provider with the configured
// timeout. A nil return means the caller should degrade to a local path.
func (o *Orchestrator) providerResult(ctx context.Context, claim *transcript.Claim, name string) *Result {
	provider, err := o.providers.GetProvider(name)
	if err != nil {
		o.logger.WithError(err).Debug("No verification provider available")
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.config.ProviderTimeout)
	defer cancel()

	result, err := provider.Verify(callCtx, Request{
		ClaimText:        claim.Text,
		Topic:            claim.Topic,
		TolerancePercent: o.config.TolerancePercent,
	})
	if err != nil {
		o.logger.WithError(err).WithFields(logrus.Fields{
			"claim_id": claim.ID,
			"provider": provider.Name(),
		}).Warn("Verification provider failed, degrading to fallback")
		return nil
	}

	result.Mode = provider.Name()
	return result
}

// fallbackResult is the degraded path for provider failures
func (o *Orchestrator) fallbackResult(claim *transcript.Claim) *Result {
	result := ruleBasedResult(claim.Text)
	result.Mode = "fallback"
	return result
}

func (o *Orchestrator) notifyListeners(result *Result) {
	o.listenerMutex.RLock()
	listeners := make([]ResultListener, len(o.listeners))
	copy(listeners, o.listeners)
	o.listenerMutex.RUnlock()

	for _, listener := range listeners {
		func(l ResultListener) {
			defer func() {
				if r := recover(); r != nil {
					o.logger.WithFields(logrus.Fields{
						"result_id": result.ID,
						"panic":     r,
					}).Error("Recovered from panic in fact-check listener")
				}
			}()
			l.OnFactCheckCompleted(result)
		}(listener)
	}
}

// mergeFallacies appends provider fallacies that local detection missed
func mergeFallacies(local, remote []string) []string {
	if len(remote) == 0 {
		return local
	}

	seen := make(map[string]bool, len(local))
	merged := make([]string, 0, len(local)+len(remote))
	for _, fallacy := range local {
		seen[fallacy] = true
		merged = append(merged, fallacy)
	}
	for _, fallacy := range remote {
		if !seen[fallacy] {
			seen[fallacy] = true
			merged = append(merged, fallacy)
		}
	}
	return merged
}
