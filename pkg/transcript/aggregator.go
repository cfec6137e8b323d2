package transcript

import (
	"strings"
	"sync"
	"time"

	"debatewatch-server/pkg/analysis"
	"debatewatch-server/pkg/errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Default number of recent non-claim utterances kept per speaker as
// context for continuous analysis
const defaultContextWindow = 3

// Config holds aggregator configuration
type Config struct {
	// ContinuousAnalysis merges rolling context into combined claims
	ContinuousAnalysis bool

	// ContextWindow is the number of recent non-claim utterances kept per speaker
	ContextWindow int
}

// speakerContext is the rolling window of recent non-claim utterances
// for one speaker
type speakerContext struct {
	recent   []*Utterance
	lastText string
}

// Aggregator ingests raw utterances for one debate session, tags them
// with speaking rate and fallacies, detects claims (directly, via
// continuous-analysis merging, or via manual marking) and fans out
// claim-creation events to listeners exactly once per new claim.
//
// The transcript is a single logical stream: utterances are appended one
// at a time in arrival order. Claim events for distinct claims may be
// consumed concurrently downstream.
type Aggregator struct {
	logger *logrus.Entry
	config Config

	analyzer *analysis.Analyzer

	mutex      sync.RWMutex
	utterances []*Utterance
	byID       map[string]*Utterance
	claims     map[string]*Claim
	claimOrder []*Claim
	contexts   map[string]*speakerContext

	listeners     []ClaimListener
	listenerMutex sync.RWMutex
}

// NewAggregator creates a new transcript aggregator
func NewAggregator(logger *logrus.Logger, analyzer *analysis.Analyzer, config Config) *Aggregator {
	if config.ContextWindow <= 0 {
		config.ContextWindow = defaultContextWindow
	}

	return &Aggregator{
		logger:   logger.WithField("component", "transcript_aggregator"),
		config:   config,
		analyzer: analyzer,
		byID:     make(map[string]*Utterance),
		claims:   make(map[string]*Claim),
		contexts: make(map[string]*speakerContext),
	}
}

// AddClaimListener registers a listener for claim-creation events
func (a *Aggregator) AddClaimListener(listener ClaimListener) {
	a.listenerMutex.Lock()
	defer a.listenerMutex.Unlock()
	a.listeners = append(a.listeners, listener)
}

// AddUtterance ingests one recognized speech segment. It returns the
// appended utterance and any claims created from it (the utterance's own
// claim, a merged context claim, or both). A near-duplicate of the
// speaker's previous utterance is dropped and returns nil.
func (a *Aggregator) AddUtterance(speakerID, text string, timestamp time.Time, emotion string) (*Utterance, []*Claim) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || speakerID == "" {
		return nil, nil
	}

	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	a.mutex.Lock()

	sctx := a.contexts[speakerID]
	if sctx == nil {
		sctx = &speakerContext{}
		a.contexts[speakerID] = sctx
	}

	// The speech engine occasionally re-emits near-identical text;
	// suppress instead of double-counting
	if isNearDuplicate(sctx.lastText, trimmed) {
		a.mutex.Unlock()
		a.logger.WithFields(logrus.Fields{
			"speaker_id": speakerID,
			"text":       trimmed,
		}).Debug("Suppressed near-duplicate utterance")
		return nil, nil
	}
	sctx.lastText = trimmed

	contextText := a.contextTextLocked(sctx)

	utterance := &Utterance{
		ID:           uuid.NewString(),
		SpeakerID:    speakerID,
		Text:         trimmed,
		Timestamp:    timestamp,
		Emotion:      emotion,
		SpeakingRate: analysis.CountWords(trimmed) * SpeakingRateMultiplier,
		Fallacies:    a.analyzer.DetectFallacies(trimmed),
	}
	utterance.IsClaim = a.analyzer.DetectClaim(trimmed, contextText)

	a.utterances = append(a.utterances, utterance)
	a.byID[utterance.ID] = utterance

	var created []*Claim

	if utterance.IsClaim {
		created = append(created, a.createClaimLocked(utterance, trimmed, OriginDirect))
	} else {
		// Continuous analysis: combined recent context can reveal a claim
		// no single utterance carries. The merged claim may overlap text
		// already covered by an earlier claim; both are kept and both
		// count toward speaker statistics.
		if a.config.ContinuousAnalysis && contextText != "" {
			combined := contextText + " " + trimmed
			if a.combinedTextFires(combined) {
				created = append(created, a.createClaimLocked(utterance, combined, OriginMerged))
			}
		}

		sctx.recent = append(sctx.recent, utterance)
		if len(sctx.recent) > a.config.ContextWindow {
			sctx.recent = sctx.recent[1:]
		}
	}

	a.mutex.Unlock()

	for _, claim := range created {
		a.notifyListeners(claim)
	}

	return utterance, created
}

// MarkAsClaim promotes a non-claim utterance to a claim by explicit user
// action. Promoting an utterance that is already a claim is reported as
// already satisfied (nil claim, alreadyClaim=true), not an error.
func (a *Aggregator) MarkAsClaim(utteranceID string) (*Claim, bool, error) {
	a.mutex.Lock()

	utterance, exists := a.byID[utteranceID]
	if !exists {
		a.mutex.Unlock()
		return nil, false, errors.Wrap(errors.ErrUtteranceNotFound, "cannot mark as claim",
			map[string]interface{}{"utterance_id": utteranceID})
	}

	if utterance.IsClaim {
		a.mutex.Unlock()
		a.logger.WithField("utterance_id", utteranceID).Debug("Utterance already marked as claim")
		return nil, true, nil
	}

	utterance.IsClaim = true
	claim := a.createClaimLocked(utterance, utterance.Text, OriginManual)

	// Manual claims leave the rolling context so merged claims do not
	// re-cover the same text
	if sctx := a.contexts[utterance.SpeakerID]; sctx != nil {
		for i, u := range sctx.recent {
			if u.ID == utteranceID {
				sctx.recent = append(sctx.recent[:i], sctx.recent[i+1:]...)
				break
			}
		}
	}

	a.mutex.Unlock()

	a.notifyListeners(claim)
	return claim, false, nil
}

// MarkClaimProcessed flags a claim as dispatched for fact-checking.
// Returns false when the claim is unknown or already processed, which
// callers use as an exactly-once dispatch guard.
func (a *Aggregator) MarkClaimProcessed(claimID string) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	claim, exists := a.claims[claimID]
	if !exists || claim.Processed {
		return false
	}
	claim.Processed = true
	return true
}

// GetClaim returns a claim by id
func (a *Aggregator) GetClaim(claimID string) (*Claim, bool) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	claim, exists := a.claims[claimID]
	return claim, exists
}

// GetUtterance returns an utterance by id
func (a *Aggregator) GetUtterance(utteranceID string) (*Utterance, bool) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	utterance, exists := a.byID[utteranceID]
	return utterance, exists
}

// Transcript returns a copy of the utterance sequence in arrival order
func (a *Aggregator) Transcript() []*Utterance {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	result := make([]*Utterance, len(a.utterances))
	copy(result, a.utterances)
	return result
}

// Claims returns a copy of all claims in creation order
func (a *Aggregator) Claims() []*Claim {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	result := make([]*Claim, len(a.claimOrder))
	copy(result, a.claimOrder)
	return result
}

// createClaimLocked builds and records a claim. Caller holds the mutex.
func (a *Aggregator) createClaimLocked(utterance *Utterance, text string, origin ClaimOrigin) *Claim {
	topic, _ := a.analyzer.ClassifyTopic(text)

	claim := &Claim{
		ID:           uuid.NewString(),
		UtteranceID:  utterance.ID,
		SpeakerID:    utterance.SpeakerID,
		Text:         text,
		Timestamp:    utterance.Timestamp,
		Topic:        topic,
		Fallacies:    a.analyzer.DetectFallacies(text),
		KnowledgeGap: a.analyzer.IdentifyKnowledgeGap(text),
		SpeakingRate: utterance.SpeakingRate,
		Origin:       origin,
	}

	a.claims[claim.ID] = claim
	a.claimOrder = append(a.claimOrder, claim)

	a.logger.WithFields(logrus.Fields{
		"claim_id":      claim.ID,
		"speaker_id":    claim.SpeakerID,
		"topic":         claim.Topic,
		"origin":        origin,
		"fallacies":     len(claim.Fallacies),
		"knowledge_gap": claim.KnowledgeGap,
	}).Info("Claim created")

	return claim
}

// combinedTextFires reports whether the combined context text triggers
// any of the analysis signals that justify a merged claim
func (a *Aggregator) combinedTextFires(combined string) bool {
	if a.analyzer.DetectClaim(combined, "") {
		return true
	}
	if _, ok := a.analyzer.ClassifyTopic(combined); ok {
		if len(a.analyzer.DetectFallacies(combined)) > 0 || a.analyzer.IdentifyKnowledgeGap(combined) {
			return true
		}
	}
	return false
}

// notifyListeners fans a claim out to all registered listeners.
// Panics in listeners are recovered so one consumer cannot stall the
// transcript stream.
func (a *Aggregator) notifyListeners(claim *Claim) {
	a.listenerMutex.RLock()
	listeners := make([]ClaimListener, len(a.listeners))
	copy(listeners, a.listeners)
	a.listenerMutex.RUnlock()

	for _, listener := range listeners {
		func(l ClaimListener) {
			defer func() {
				if r := recover(); r != nil {
					a.logger.WithFields(logrus.Fields{
						"claim_id": claim.ID,
						"panic":    r,
					}).Error("Recovered from panic in claim listener")
				}
			}()
			l.OnClaimCreated(claim)
		}(listener)
	}
}

// contextTextLocked joins the rolling context window. Caller holds the mutex.
func (a *Aggregator) contextTextLocked(sctx *speakerContext) string {
	if len(sctx.recent) == 0 {
		return ""
	}

	parts := make([]string, 0, len(sctx.recent))
	for _, u := range sctx.recent {
		parts = append(parts, u.Text)
	}
	return strings.Join(parts, " ")
}
