package session

import (
	"context"
	"sync"
	"time"

	"debatewatch-server/pkg/errors"
	"debatewatch-server/pkg/factcheck"
	"debatewatch-server/pkg/messaging"
	"debatewatch-server/pkg/metrics"
	"debatewatch-server/pkg/speaker"
	"debatewatch-server/pkg/transcript"

	"github.com/sirupsen/logrus"
)

// Session is one live debate: a transcript aggregator, a speaker roster
// and the fact-check pipeline wired between them. Claims flow from the
// aggregator through the orchestrator into the owning speaker's stats;
// every stage publishes events for downstream consumers.
type Session struct {
	ID        string
	Title     string
	CreatedAt time.Time

	logger       *logrus.Entry
	aggregator   *transcript.Aggregator
	roster       *speaker.Roster
	orchestrator *factcheck.Orchestrator
	publisher    messaging.EventPublisher

	ctx context.Context

	mutex   sync.RWMutex
	results map[string]*factcheck.Result
	ended   bool
	endedAt time.Time
}

// Summary is a point-in-time export of a session's state
type Summary struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	CreatedAt      time.Time          `json:"created_at"`
	EndedAt        *time.Time         `json:"ended_at,omitempty"`
	UtteranceCount int                `json:"utterance_count"`
	ClaimCount     int                `json:"claim_count"`
	VerdictCounts  map[string]int     `json:"verdict_counts"`
	Speakers       []*speaker.Speaker `json:"speakers"`
}

// OnClaimCreated implements transcript.ClaimListener: each new claim is
// dispatched to the fact-check pipeline exactly once
func (s *Session) OnClaimCreated(claim *transcript.Claim) {
	metrics.RecordClaim(s.ID, string(claim.Origin))
	for _, fallacy := range claim.Fallacies {
		metrics.RecordFallacy(fallacy)
	}

	s.publish(&messaging.Event{
		Type:      messaging.EventClaimCreated,
		SessionID: s.ID,
		SpeakerID: claim.SpeakerID,
		Payload: map[string]interface{}{
			"claim_id":      claim.ID,
			"text":          claim.Text,
			"topic":         claim.Topic,
			"origin":        claim.Origin,
			"fallacies":     claim.Fallacies,
			"knowledge_gap": claim.KnowledgeGap,
		},
	})

	if !s.aggregator.MarkClaimProcessed(claim.ID) {
		return
	}
	s.orchestrator.CheckFactAsync(s.ctx, claim)
}

// OnFactCheckCompleted implements factcheck.ResultListener. The
// orchestrator is shared between sessions, so results for claims this
// session does not own are ignored.
func (s *Session) OnFactCheckCompleted(result *factcheck.Result) {
	claim, owned := s.aggregator.GetClaim(result.ClaimID)
	if !owned {
		return
	}

	s.mutex.Lock()
	s.results[result.ClaimID] = result
	s.mutex.Unlock()

	metrics.RecordFactCheck(result.Mode, string(result.Verdict))

	if _, err := s.roster.ApplyFactCheck(claim, result); err != nil {
		s.logger.WithError(err).WithField("claim_id", claim.ID).Warn("Failed to apply fact check to speaker stats")
	}

	s.publish(&messaging.Event{
		Type:      messaging.EventFactCheckCompleted,
		SessionID: s.ID,
		SpeakerID: claim.SpeakerID,
		Payload: map[string]interface{}{
			"claim_id":         claim.ID,
			"verdict":          result.Verdict,
			"source":           result.Source,
			"explanation":      result.Explanation,
			"counter_argument": result.CounterArgument,
			"mode":             result.Mode,
		},
	})
}

// OnNotification implements speaker.NotificationListener
func (s *Session) OnNotification(notification *speaker.Notification) {
	s.publish(&messaging.Event{
		Type:      messaging.EventNotification,
		SessionID: s.ID,
		SpeakerID: notification.SpeakerID,
		Payload: map[string]interface{}{
			"notification_type": notification.Type,
			"claim_id":          notification.ClaimID,
			"message":           notification.Message,
		},
	})
}

// AddUtterance ingests one speech segment for a session speaker
func (s *Session) AddUtterance(speakerID, text string, timestamp time.Time, emotion string) (*transcript.Utterance, []*transcript.Claim, error) {
	s.mutex.RLock()
	ended := s.ended
	s.mutex.RUnlock()
	if ended {
		return nil, nil, errors.New("session has ended",
			map[string]interface{}{"session_id": s.ID})
	}

	if _, err := s.roster.GetSpeaker(speakerID); err != nil {
		return nil, nil, err
	}

	utterance, claims := s.aggregator.AddUtterance(speakerID, text, timestamp, emotion)
	if utterance == nil {
		metrics.RecordDuplicateSuppressed()
		return nil, nil, nil
	}

	metrics.RecordUtterance(s.ID)
	return utterance, claims, nil
}

// MarkAsClaim promotes an utterance to a claim by user action
func (s *Session) MarkAsClaim(utteranceID string) (*transcript.Claim, bool, error) {
	return s.aggregator.MarkAsClaim(utteranceID)
}

// Roster returns the session's speaker roster
func (s *Session) Roster() *speaker.Roster {
	return s.roster
}

// Transcript returns the utterance sequence in arrival order
func (s *Session) Transcript() []*transcript.Utterance {
	return s.aggregator.Transcript()
}

// Claims returns the claims detected so far in creation order
func (s *Session) Claims() []*transcript.Claim {
	return s.aggregator.Claims()
}

// GetResult returns the fact-check result for a claim, if resolved
func (s *Session) GetResult(claimID string) (*factcheck.Result, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	result, exists := s.results[claimID]
	return result, exists
}

// Summarize exports the session's current state
func (s *Session) Summarize() *Summary {
	s.mutex.RLock()
	verdicts := make(map[string]int)
	for _, result := range s.results {
		verdicts[string(result.Verdict)]++
	}
	var endedAt *time.Time
	if s.ended {
		t := s.endedAt
		endedAt = &t
	}
	s.mutex.RUnlock()

	return &Summary{
		ID:             s.ID,
		Title:          s.Title,
		CreatedAt:      s.CreatedAt,
		EndedAt:        endedAt,
		UtteranceCount: len(s.aggregator.Transcript()),
		ClaimCount:     len(s.aggregator.Claims()),
		VerdictCounts:  verdicts,
		Speakers:       s.roster.Speakers(),
	}
}

// End closes the session to new utterances and detaches it from the
// shared orchestrator so future fact-check results no longer fan out to
// it.
func (s *Session) End() {
	s.mutex.Lock()
	if s.ended {
		s.mutex.Unlock()
		return
	}
	s.ended = true
	s.endedAt = time.Now()
	s.mutex.Unlock()

	s.orchestrator.RemoveResultListener(s)

	s.publish(&messaging.Event{
		Type:      messaging.EventSessionEnded,
		SessionID: s.ID,
	})

	s.logger.Info("Session ended")
}

// Ended reports whether the session has been closed
func (s *Session) Ended() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.ended
}

func (s *Session) publish(event *messaging.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishEvent(event); err != nil {
		metrics.RecordAMQPPublish(event.Type, "error")
		s.logger.WithError(err).WithField("type", event.Type).Debug("Failed to publish event")
		return
	}
	metrics.RecordAMQPPublish(event.Type, "ok")
}
