package speaker

import (
	"math"
	"sort"
	"strings"
	"time"

	"debatewatch-server/pkg/factcheck"
	"debatewatch-server/pkg/transcript"

	"github.com/sirupsen/logrus"
)

// Thresholds for the bias classifier and trend detection
const (
	biasMinimumClaims = 5
	trendMinimumDays  = 3
	fastSpeechWPM     = 180
)

var citationKeywords = []string{"study", "research", "scientist", "paper"}

var emotionalKeywords = []string{"feel", "emotion", "believe", "think of the", "imagine if"}

// Engine is the stats reducer: each fact-check verdict mutates exactly
// one speaker aggregate, keyed by the claim's speaker. Updates are
// self-contained, so verdicts arriving out of claim-creation order
// produce the same aggregate.
type Engine struct {
	logger *logrus.Entry

	// now is injectable for history tests
	now func() time.Time
}

// NewEngine creates a stats engine
func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{
		logger: logger.WithField("component", "speaker_stats"),
		now:    time.Now,
	}
}

// ApplyFactCheck folds one fact-check result into the speaker aggregate.
// The caller holds the speaker's write lock; the reducer itself performs
// no locking.
func (e *Engine) ApplyFactCheck(s *Speaker, claim *transcript.Claim, result *factcheck.Result) {
	verified := result.Verdict == factcheck.VerdictTrue

	s.TotalClaims++
	if verified {
		s.VerifiedClaims++
	}
	s.AccuracyScore = roundPercentage(s.VerifiedClaims, s.TotalClaims)

	e.upsertHistory(s, verified)

	if claim.Topic != "" {
		updateShadowCounters(s.TopicExpertise, claim.Topic, verified)
	}

	e.updateArgumentPatterns(s, claim, result)

	if s.TotalClaims >= biasMinimumClaims {
		s.OverallBias = classifyBias(s)
	}

	if len(s.ClaimHistory) >= trendMinimumDays {
		recent := s.ClaimHistory[len(s.ClaimHistory)-trendMinimumDays:]
		s.ImprovementTrend = recent[2].AccuracyScore > recent[0].AccuracyScore
	}

	e.logger.WithFields(logrus.Fields{
		"speaker_id":   s.ID,
		"verdict":      result.Verdict,
		"total_claims": s.TotalClaims,
		"accuracy":     s.AccuracyScore,
		"bias":         s.OverallBias,
	}).Debug("Applied fact check to speaker stats")
}

// Notifications derives the presentation-side effects of one verdict.
// These are reported to listeners and are not part of speaker state.
func (e *Engine) Notifications(claim *transcript.Claim, result *factcheck.Result) []*Notification {
	var notifications []*Notification

	if result.Verdict == factcheck.VerdictFalse {
		notifications = append(notifications, &Notification{
			Type:      NotificationFalseClaim,
			SpeakerID: claim.SpeakerID,
			ClaimID:   claim.ID,
			Message:   "Claim rated false: " + result.Explanation,
		})
	}

	if claim.SpeakingRate > fastSpeechWPM {
		notifications = append(notifications, &Notification{
			Type:      NotificationFastSpeech,
			SpeakerID: claim.SpeakerID,
			ClaimID:   claim.ID,
			Message:   "Speaking rate exceeds 180 words per minute",
		})
	}

	if claim.KnowledgeGap || result.KnowledgeGaps != "" {
		notifications = append(notifications, &Notification{
			Type:      NotificationKnowledgeGap,
			SpeakerID: claim.SpeakerID,
			ClaimID:   claim.ID,
			Message:   "Claim touches an open scientific question",
		})
	}

	return notifications
}

// upsertHistory merges today's outcome into the claim history. At most
// one entry exists per calendar date.
func (e *Engine) upsertHistory(s *Speaker, verified bool) {
	today := e.now().Format(HistoryDateFormat)

	for i := range s.ClaimHistory {
		entry := &s.ClaimHistory[i]
		if entry.Date == today {
			entry.TotalClaims++
			if verified {
				entry.VerifiedClaims++
			}
			entry.AccuracyScore = roundPercentage(entry.VerifiedClaims, entry.TotalClaims)
			return
		}
	}

	entry := ClaimHistoryEntry{Date: today, TotalClaims: 1}
	if verified {
		entry.VerifiedClaims = 1
	}
	entry.AccuracyScore = roundPercentage(entry.VerifiedClaims, entry.TotalClaims)
	s.ClaimHistory = append(s.ClaimHistory, entry)
}

// updateArgumentPatterns applies step 4 of the stats algorithm
func (e *Engine) updateArgumentPatterns(s *Speaker, claim *transcript.Claim, result *factcheck.Result) {
	lower := strings.ToLower(claim.Text)
	patterns := &s.ArgumentPatterns

	if containsAnyKeyword(lower, citationKeywords) {
		patterns.CitesStudies++
	}
	if result.DebunkedStudies != "" {
		patterns.UsesDebunkedSources++
	}
	for _, fallacy := range claim.Fallacies {
		patterns.FallacyFrequency[fallacy]++
	}
	if containsAnyKeyword(lower, emotionalKeywords) {
		patterns.EmotionalAppealFrequency++
	}

	// Accuracy-by-topic only counts resolved outcomes, not unverified
	if claim.Topic != "" && result.Verdict != factcheck.VerdictUnverified {
		updateShadowCounters(patterns.FactAccuracyByTopic, claim.Topic, result.Verdict == factcheck.VerdictTrue)
	}

	if claim.Topic != "" {
		e.updatePreferredTopics(s, claim.Topic)
	}
}

// updatePreferredTopics keeps the top 5 topics by claim count
func (e *Engine) updatePreferredTopics(s *Speaker, topic string) {
	patterns := &s.ArgumentPatterns

	found := false
	for _, existing := range patterns.PreferredTopics {
		if existing == topic {
			found = true
			break
		}
	}
	if !found {
		patterns.PreferredTopics = append(patterns.PreferredTopics, topic)
	}

	sort.SliceStable(patterns.PreferredTopics, func(i, j int) bool {
		return s.TopicExpertise[patterns.PreferredTopics[i]+"_total"] >
			s.TopicExpertise[patterns.PreferredTopics[j]+"_total"]
	})

	if len(patterns.PreferredTopics) > 5 {
		patterns.PreferredTopics = patterns.PreferredTopics[:5]
	}
}

// classifyBias applies the ratio thresholds in fixed priority order
func classifyBias(s *Speaker) string {
	total := float64(s.TotalClaims)
	patterns := s.ArgumentPatterns

	fallacyCount := 0
	for _, count := range patterns.FallacyFrequency {
		fallacyCount += count
	}

	studyRatio := float64(patterns.CitesStudies) / total
	emotionalRatio := float64(patterns.EmotionalAppealFrequency) / total
	fallacyRatio := float64(fallacyCount) / total
	debunkedRatio := float64(patterns.UsesDebunkedSources) / total

	switch {
	case studyRatio > 0.6 && s.AccuracyScore > 70:
		return BiasScientific
	case emotionalRatio > 0.5:
		return BiasEmotional
	case fallacyRatio > 0.4:
		return BiasSensationalist
	case debunkedRatio > 0.3:
		return BiasPolitical
	case s.AccuracyScore > 80:
		return BiasFactual
	default:
		return BiasNeutral
	}
}

// updateShadowCounters maintains a running percentage under the plain
// key with _total/_verified counters alongside it in the same map
func updateShadowCounters(counters map[string]float64, key string, verified bool) {
	counters[key+"_total"]++
	if verified {
		counters[key+"_verified"]++
	}
	counters[key] = counters[key+"_verified"] / counters[key+"_total"] * 100
}

func roundPercentage(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func containsAnyKeyword(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
