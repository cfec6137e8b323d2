package messaging

import (
	"sync"
	"time"
)

// Event types published to the message queue
const (
	EventClaimCreated       = "claim.created"
	EventFactCheckCompleted = "factcheck.completed"
	EventNotification       = "speaker.notification"
	EventSessionEnded       = "session.ended"
)

// Event is one debate event published to downstream consumers
type Event struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	SpeakerID string                 `json:"speaker_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventPublisher publishes debate events to a message queue
type EventPublisher interface {
	// PublishEvent sends one event. Implementations must not block the
	// analysis pipeline on broker trouble.
	PublishEvent(event *Event) error

	// IsConnected reports whether the underlying transport is up
	IsConnected() bool
}

// NoopPublisher drops all events. Used when no broker is configured.
type NoopPublisher struct{}

// PublishEvent implements EventPublisher
func (NoopPublisher) PublishEvent(event *Event) error { return nil }

// IsConnected implements EventPublisher
func (NoopPublisher) IsConnected() bool { return false }

// FanoutPublisher sends every event to multiple publishers. Individual
// publisher failures do not stop the fanout; the first error is
// returned after all publishers were tried.
type FanoutPublisher struct {
	publishers []EventPublisher
}

// NewFanoutPublisher creates a fanout over the given publishers
func NewFanoutPublisher(publishers ...EventPublisher) *FanoutPublisher {
	return &FanoutPublisher{publishers: publishers}
}

// PublishEvent implements EventPublisher
func (f *FanoutPublisher) PublishEvent(event *Event) error {
	var firstErr error
	for _, publisher := range f.publishers {
		if err := publisher.PublishEvent(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// IsConnected reports whether any underlying publisher is connected
func (f *FanoutPublisher) IsConnected() bool {
	for _, publisher := range f.publishers {
		if publisher.IsConnected() {
			return true
		}
	}
	return false
}

// MockPublisher records published events for tests
type MockPublisher struct {
	mutex  sync.Mutex
	events []*Event

	// PublishErr, when set, is returned by every PublishEvent call
	PublishErr error
}

// PublishEvent implements EventPublisher
func (m *MockPublisher) PublishEvent(event *Event) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.events = append(m.events, event)
	return nil
}

// IsConnected implements EventPublisher
func (m *MockPublisher) IsConnected() bool { return true }

// Events returns a copy of the recorded events
func (m *MockPublisher) Events() []*Event {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	result := make([]*Event, len(m.events))
	copy(result, m.events)
	return result
}
