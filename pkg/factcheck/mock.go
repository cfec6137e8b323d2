package factcheck

import (
	"context"
	"sync"
	"time"
)

// MockProvider is a verification provider for tests and local
// development. It returns a fixed result or error after an optional
// delay and records how often it was called.
type MockProvider struct {
	ProviderName string
	FixedResult  *Result
	VerifyErr    error
	InitErr      error
	Delay        time.Duration

	mutex sync.Mutex
	calls int
}

// NewMockProvider creates a mock provider with a sensible default result
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProviderName: name,
		FixedResult: &Result{
			Verdict:         VerdictUnverified,
			Source:          "Mock provider",
			Explanation:     "Mock verification result",
			ConfidenceScore: 50,
		},
	}
}

// Name returns the provider's registry name
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Initialize returns the configured init error, if any
func (m *MockProvider) Initialize(ctx context.Context) error {
	return m.InitErr
}

// Verify returns the fixed result or error
func (m *MockProvider) Verify(ctx context.Context, req Request) (*Result, error) {
	m.mutex.Lock()
	m.calls++
	m.mutex.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}

	clone := *m.FixedResult
	return &clone, nil
}

// Calls returns how many times Verify was invoked
func (m *MockProvider) Calls() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.calls
}
