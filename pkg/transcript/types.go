package transcript

import (
	"time"
)

// SpeakingRateMultiplier converts a word count into a words-per-minute
// estimate, assuming a fixed 5-second recognition segment. The estimate is
// intentionally decoupled from wall-clock speech timing; upload processing
// uses the same fixed segment length.
const SpeakingRateMultiplier = 12

// ClaimOrigin describes how a claim was created
type ClaimOrigin string

const (
	// OriginDirect means the utterance itself was detected as a claim
	OriginDirect ClaimOrigin = "direct"
	// OriginMerged means the claim was synthesized from combined recent context
	OriginMerged ClaimOrigin = "merged"
	// OriginManual means a user promoted the utterance to a claim
	OriginManual ClaimOrigin = "manual"
)

// Utterance is one recognized unit of speech with a speaker and timestamp.
// Once appended to the transcript it is immutable except for IsClaim,
// which manual marking may flip.
type Utterance struct {
	ID           string    `json:"id"`
	SpeakerID    string    `json:"speaker_id"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"`
	IsClaim      bool      `json:"is_claim"`
	Emotion      string    `json:"emotion,omitempty"`
	SpeakingRate int       `json:"speaking_rate,omitempty"`
	Fallacies    []string  `json:"fallacies,omitempty"`
}

// Claim is a statement flagged as factually checkable, derived from one
// or more utterances. Immutable after creation except for the Processed
// dispatch guard.
type Claim struct {
	ID           string      `json:"id"`
	UtteranceID  string      `json:"utterance_id,omitempty"`
	SpeakerID    string      `json:"speaker_id"`
	Text         string      `json:"text"`
	Timestamp    time.Time   `json:"timestamp"`
	Topic        string      `json:"topic,omitempty"`
	Fallacies    []string    `json:"fallacies,omitempty"`
	KnowledgeGap bool        `json:"knowledge_gap,omitempty"`
	SpeakingRate int         `json:"speaking_rate,omitempty"`
	Origin       ClaimOrigin `json:"origin"`

	// Processed marks the claim as dispatched for fact-checking. It is an
	// explicit field rather than a hidden flag so the dispatch guard is
	// visible in the claim's shape.
	Processed bool `json:"processed"`
}

// ClaimListener receives claim-creation events, exactly once per new claim
type ClaimListener interface {
	// OnClaimCreated is called when a new claim enters the pipeline
	OnClaimCreated(claim *Claim)
}

// ClaimListenerFunc adapts a function to the ClaimListener interface
type ClaimListenerFunc func(claim *Claim)

// OnClaimCreated implements ClaimListener
func (f ClaimListenerFunc) OnClaimCreated(claim *Claim) {
	f(claim)
}
