package speaker

import "time"

// Bias classification labels, in the priority order the classifier
// applies them
const (
	BiasScientific     = "scientific"
	BiasEmotional      = "emotional"
	BiasSensationalist = "sensationalist"
	BiasPolitical      = "political"
	BiasFactual        = "factual"
	BiasNeutral        = "neutral"
)

// HistoryDateFormat is the calendar-day key used by claim history entries
const HistoryDateFormat = "2006-01-02"

// ClaimHistoryEntry aggregates one calendar day of fact-check outcomes
// for a speaker. The history never holds two entries for the same date.
type ClaimHistoryEntry struct {
	Date           string `json:"date"`
	TotalClaims    int    `json:"total_claims"`
	VerifiedClaims int    `json:"verified_claims"`
	AccuracyScore  int    `json:"accuracy_score"`
}

// ArgumentPatterns profiles how a speaker argues
type ArgumentPatterns struct {
	CitesStudies             int            `json:"cites_studies"`
	UsesDebunkedSources      int            `json:"uses_debunked_sources"`
	EmotionalAppealFrequency int            `json:"emotional_appeal_frequency"`
	FallacyFrequency         map[string]int `json:"fallacy_frequency"`

	// FactAccuracyByTopic tracks the true/false outcome percentage per
	// topic, with _total/_verified shadow counters alongside the
	// percentage keys
	FactAccuracyByTopic map[string]float64 `json:"fact_accuracy_by_topic"`

	// PreferredTopics holds at most 5 topics sorted by claim count
	PreferredTopics []string `json:"preferred_topics"`
}

// Speaker is the per-debater aggregate mutated by the stats engine.
// Exactly one speaker in a session is current at any time.
type Speaker struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ColorTag  string    `json:"color_tag"`
	IsCurrent bool      `json:"is_current"`
	JoinedAt  time.Time `json:"joined_at"`

	TotalClaims    int `json:"total_claims"`
	VerifiedClaims int `json:"verified_claims"`
	AccuracyScore  int `json:"accuracy_score"`

	ClaimHistory []ClaimHistoryEntry `json:"claim_history"`

	// TopicExpertise maps topic to a running verified percentage, with
	// _total/_verified shadow counters stored in the same map
	TopicExpertise map[string]float64 `json:"topic_expertise"`

	ArgumentPatterns ArgumentPatterns `json:"argument_patterns"`

	OverallBias      string `json:"overall_bias"`
	ImprovementTrend bool   `json:"improvement_trend"`
}

// NewSpeaker creates a speaker with empty aggregates
func NewSpeaker(id, name string) *Speaker {
	return &Speaker{
		ID:             id,
		Name:           name,
		JoinedAt:       time.Now(),
		TopicExpertise: make(map[string]float64),
		OverallBias:    BiasNeutral,
		ArgumentPatterns: ArgumentPatterns{
			FallacyFrequency:    make(map[string]int),
			FactAccuracyByTopic: make(map[string]float64),
		},
	}
}

// Clone returns a deep copy of the speaker. The stats engine mutates the
// aggregate's maps in place, so anything handed outside the roster's
// locks must be a snapshot.
func (s *Speaker) Clone() *Speaker {
	clone := *s

	clone.ClaimHistory = append([]ClaimHistoryEntry(nil), s.ClaimHistory...)

	clone.TopicExpertise = make(map[string]float64, len(s.TopicExpertise))
	for topic, score := range s.TopicExpertise {
		clone.TopicExpertise[topic] = score
	}

	clone.ArgumentPatterns.FallacyFrequency = make(map[string]int, len(s.ArgumentPatterns.FallacyFrequency))
	for fallacy, count := range s.ArgumentPatterns.FallacyFrequency {
		clone.ArgumentPatterns.FallacyFrequency[fallacy] = count
	}

	clone.ArgumentPatterns.FactAccuracyByTopic = make(map[string]float64, len(s.ArgumentPatterns.FactAccuracyByTopic))
	for topic, score := range s.ArgumentPatterns.FactAccuracyByTopic {
		clone.ArgumentPatterns.FactAccuracyByTopic[topic] = score
	}

	clone.ArgumentPatterns.PreferredTopics = append([]string(nil), s.ArgumentPatterns.PreferredTopics...)

	return &clone
}

// Notification types emitted to listeners as presentation-side effects
const (
	NotificationFalseClaim   = "false_claim"
	NotificationFastSpeech   = "fast_speech"
	NotificationKnowledgeGap = "knowledge_gap"
)

// Notification is a presentation-facing side effect of a stats update,
// not part of core speaker state
type Notification struct {
	Type      string `json:"type"`
	SpeakerID string `json:"speaker_id"`
	ClaimID   string `json:"claim_id"`
	Message   string `json:"message"`
}

// NotificationListener receives stats-update side effects
type NotificationListener interface {
	OnNotification(notification *Notification)
}

// NotificationListenerFunc adapts a function to NotificationListener
type NotificationListenerFunc func(notification *Notification)

// OnNotification implements NotificationListener
func (f NotificationListenerFunc) OnNotification(notification *Notification) {
	f(notification)
}
