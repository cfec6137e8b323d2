package session

import (
	"context"
	"testing"
	"time"

	"debatewatch-server/pkg/analysis"
	"debatewatch-server/pkg/config"
	"debatewatch-server/pkg/errors"
	"debatewatch-server/pkg/factcheck"
	"debatewatch-server/pkg/messaging"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *messaging.MockPublisher) {
	manager, publisher, _ := newTestManagerWithOrchestrator(t)
	return manager, publisher
}

func newTestManagerWithOrchestrator(t *testing.T) (*Manager, *messaging.MockPublisher, *factcheck.Orchestrator) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	cfg := &config.Config{
		FactCheck: config.FactCheckConfig{
			Mode:             "claimbuster",
			TolerancePercent: 15,
			ProviderTimeout:  2 * time.Second,
			CacheTTL:         time.Minute,
		},
		Analysis: config.AnalysisConfig{
			ContinuousAnalysis: true,
			ContextWindow:      3,
		},
	}

	orchestrator := factcheck.NewOrchestrator(logger, cfg.FactCheck, analysis.NewAnalyzer(logger))
	publisher := &messaging.MockPublisher{}

	return NewManager(context.Background(), logger, cfg, orchestrator, publisher), publisher, orchestrator
}

func TestCreateSessionSpeakerBounds(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.CreateSession("too few", []string{"Alice"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrSpeakerMinimum))

	names := make([]string, 9)
	for i := range names {
		names[i] = "Speaker"
	}
	_, err = manager.CreateSession("too many", names)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrSpeakerLimitReached))

	s, err := manager.CreateSession("just right", []string{"Alice", "Bob"})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Roster().Count())
}

func TestSessionPipelineFalseClaim(t *testing.T) {
	manager, publisher := newTestManager(t)

	s, err := manager.CreateSession("vaccine debate", []string{"Alice", "Bob"})
	require.NoError(t, err)

	alice := s.Roster().Speakers()[0]

	utterance, claims, err := s.AddUtterance(alice.ID, "Studies show vaccines cause autism", time.Now(), "confident")
	require.NoError(t, err)
	require.NotNil(t, utterance)
	require.Len(t, claims, 1)
	assert.Equal(t, "Health", claims[0].Topic)

	// The fact check resolves asynchronously
	require.Eventually(t, func() bool {
		_, resolved := s.GetResult(claims[0].ID)
		return resolved
	}, 3*time.Second, 10*time.Millisecond)

	result, _ := s.GetResult(claims[0].ID)
	assert.Equal(t, factcheck.VerdictFalse, result.Verdict)
	assert.Equal(t, "CDC, WHO (2023)", result.Source)
	assert.NotEmpty(t, result.CounterArgument)

	// The verdict lands in the owning speaker's stats
	require.Eventually(t, func() bool {
		updated, rosterErr := s.Roster().GetSpeaker(alice.ID)
		return rosterErr == nil && updated.TotalClaims == 1
	}, 3*time.Second, 10*time.Millisecond)

	updated, err := s.Roster().GetSpeaker(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.VerifiedClaims)
	assert.Equal(t, 0, updated.AccuracyScore)
	assert.Equal(t, 1.0, updated.TopicExpertise["Health_total"])
	assert.Equal(t, 0.0, updated.TopicExpertise["Health"])

	// Claim and verdict events reach the publisher
	require.Eventually(t, func() bool {
		types := make(map[string]bool)
		for _, event := range publisher.Events() {
			types[event.Type] = true
		}
		return types[messaging.EventClaimCreated] && types[messaging.EventFactCheckCompleted]
	}, 3*time.Second, 10*time.Millisecond)
}

func TestSessionGreetingCreatesNoClaim(t *testing.T) {
	manager, _ := newTestManager(t)

	s, err := manager.CreateSession("greeting test", []string{"Alice", "Bob"})
	require.NoError(t, err)
	alice := s.Roster().Speakers()[0]

	utterance, claims, err := s.AddUtterance(alice.ID, "Hi there, how are you?", time.Now(), "")
	require.NoError(t, err)
	require.NotNil(t, utterance)
	assert.False(t, utterance.IsClaim)
	assert.Empty(t, claims)
}

func TestSessionMarkAsClaimNoOpOnRepeat(t *testing.T) {
	manager, _ := newTestManager(t)

	s, err := manager.CreateSession("manual marking", []string{"Alice", "Bob"})
	require.NoError(t, err)
	alice := s.Roster().Speakers()[0]

	utterance, _, err := s.AddUtterance(alice.ID, "Good morning everyone", time.Now(), "")
	require.NoError(t, err)
	require.False(t, utterance.IsClaim)

	claim, already, err := s.MarkAsClaim(utterance.ID)
	require.NoError(t, err)
	assert.False(t, already)
	require.NotNil(t, claim)

	// Marking again is a no-op: no error, no duplicate claim
	repeat, already, err := s.MarkAsClaim(utterance.ID)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Nil(t, repeat)
	assert.Len(t, s.Transcript(), 1)
}

func TestSessionRejectsUnknownSpeaker(t *testing.T) {
	manager, _ := newTestManager(t)

	s, err := manager.CreateSession("unknown speaker", []string{"Alice", "Bob"})
	require.NoError(t, err)

	_, _, err = s.AddUtterance("ghost", "Some statement about taxes", time.Now(), "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrSpeakerNotFound))
}

func TestSessionEndRejectsUtterances(t *testing.T) {
	manager, _ := newTestManager(t)

	s, err := manager.CreateSession("ending", []string{"Alice", "Bob"})
	require.NoError(t, err)
	alice := s.Roster().Speakers()[0]

	require.NoError(t, manager.EndSession(s.ID))
	assert.True(t, s.Ended())

	_, _, err = s.AddUtterance(alice.ID, "A statement after the end", time.Now(), "")
	require.Error(t, err)

	_, err = manager.GetSession(s.ID)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrSessionNotFound))
}

func TestEndedSessionDetachesFromOrchestrator(t *testing.T) {
	manager, _, orchestrator := newTestManagerWithOrchestrator(t)

	s, err := manager.CreateSession("detach test", []string{"Alice", "Bob"})
	require.NoError(t, err)
	alice := s.Roster().Speakers()[0]

	_, claims, err := s.AddUtterance(alice.ID, "Studies show coffee prevents cancer", time.Now(), "")
	require.NoError(t, err)
	require.Len(t, claims, 1)

	require.Eventually(t, func() bool {
		_, resolved := s.GetResult(claims[0].ID)
		return resolved
	}, 3*time.Second, 10*time.Millisecond)

	first, _ := s.GetResult(claims[0].ID)

	require.NoError(t, manager.EndSession(s.ID))

	// The orchestrator keeps running for other sessions; a re-check of
	// the same claim must no longer reach the ended session
	orchestrator.CheckFactAsync(context.Background(), claims[0])

	assert.Never(t, func() bool {
		current, _ := s.GetResult(claims[0].ID)
		return current.ID != first.ID
	}, 500*time.Millisecond, 25*time.Millisecond)
}

func TestSessionSummary(t *testing.T) {
	manager, _ := newTestManager(t)

	s, err := manager.CreateSession("summary test", []string{"Alice", "Bob"})
	require.NoError(t, err)
	alice := s.Roster().Speakers()[0]

	_, claims, err := s.AddUtterance(alice.ID, "Studies show coffee prevents cancer", time.Now(), "")
	require.NoError(t, err)
	require.Len(t, claims, 1)

	require.Eventually(t, func() bool {
		_, resolved := s.GetResult(claims[0].ID)
		return resolved
	}, 3*time.Second, 10*time.Millisecond)

	summary := s.Summarize()
	assert.Equal(t, "summary test", summary.Title)
	assert.Equal(t, 1, summary.UtteranceCount)
	assert.Equal(t, 1, summary.ClaimCount)
	assert.Len(t, summary.Speakers, 2)
	assert.NotEmpty(t, summary.VerdictCounts)
}
