package factcheck

import (
	"context"
	"time"
)

// Verdict is the normalized outcome of a fact check
type Verdict string

const (
	// VerdictTrue means the claim is supported by the evidence
	VerdictTrue Verdict = "true"
	// VerdictFalse means the claim is contradicted by the evidence
	VerdictFalse Verdict = "false"
	// VerdictUnverified means the claim could not be resolved either way
	VerdictUnverified Verdict = "unverified"
)

// Request is what a verification provider receives for one claim
type Request struct {
	ClaimText        string  `json:"claim_text"`
	Topic            string  `json:"topic,omitempty"`
	TolerancePercent float64 `json:"tolerance_percent"`
}

// Result is the normalized fact-check shape produced by every mode and
// provider. Created exactly once per claim, append-only.
type Result struct {
	ID      string  `json:"id"`
	ClaimID string  `json:"claim_id"`
	Verdict Verdict `json:"verdict"`

	Source      string `json:"source"`
	Explanation string `json:"explanation"`

	ConfidenceScore         float64  `json:"confidence_score,omitempty"`
	AlternativePerspectives []string `json:"alternative_perspectives,omitempty"`
	LogicalFallacies        []string `json:"logical_fallacies,omitempty"`
	DebunkedStudies         string   `json:"debunked_studies,omitempty"`
	CounterArgument         string   `json:"counter_argument,omitempty"`
	KnowledgeGaps           string   `json:"knowledge_gaps,omitempty"`

	// Mode records which orchestration path produced this result
	Mode      string    `json:"mode"`
	CheckedAt time.Time `json:"checked_at"`
}

// Provider is an external verification capability. Implementations wrap a
// specific AI or search backend and normalize its response into a Result
// with Verdict, Explanation and Source populated.
type Provider interface {
	// Name returns the provider's registry name
	Name() string

	// Initialize prepares the provider (client setup, credential checks)
	Initialize(ctx context.Context) error

	// Verify checks one claim. An error return means the provider could
	// not produce any verdict; the orchestrator degrades to the fallback.
	Verify(ctx context.Context, req Request) (*Result, error)
}

// ResultListener receives completed fact-check results
type ResultListener interface {
	// OnFactCheckCompleted is called once per claim with the final result
	OnFactCheckCompleted(result *Result)
}

// ResultListenerFunc adapts a function to the ResultListener interface
type ResultListenerFunc func(result *Result)

// OnFactCheckCompleted implements ResultListener
func (f ResultListenerFunc) OnFactCheckCompleted(result *Result) {
	f(result)
}
