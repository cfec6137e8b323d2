package speaker

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"debatewatch-server/pkg/errors"
	"debatewatch-server/pkg/factcheck"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoster() *Roster {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewRoster(logger, NewEngine(logger))
}

func TestAddSpeakerFirstBecomesCurrent(t *testing.T) {
	roster := newTestRoster()

	alice, err := roster.AddSpeaker("Alice")
	require.NoError(t, err)
	assert.True(t, alice.IsCurrent)

	bob, err := roster.AddSpeaker("Bob")
	require.NoError(t, err)
	assert.False(t, bob.IsCurrent)

	current, exists := roster.CurrentSpeaker()
	require.True(t, exists)
	assert.Equal(t, alice.ID, current.ID)
}

func TestAddSpeakerLimit(t *testing.T) {
	roster := newTestRoster()

	for i := 0; i < 8; i++ {
		_, err := roster.AddSpeaker(fmt.Sprintf("Speaker %d", i))
		require.NoError(t, err)
	}

	_, err := roster.AddSpeaker("One Too Many")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrSpeakerLimitReached))
	assert.Equal(t, 8, roster.Count())
}

func TestAddSpeakerAssignsColorTags(t *testing.T) {
	roster := newTestRoster()

	alice, err := roster.AddSpeaker("Alice")
	require.NoError(t, err)
	bob, err := roster.AddSpeaker("Bob")
	require.NoError(t, err)

	assert.Equal(t, "blue", alice.ColorTag)
	assert.Equal(t, "red", bob.ColorTag)

	fetched, err := roster.GetSpeaker(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "red", fetched.ColorTag)
}

func TestRemoveSpeakerMinimum(t *testing.T) {
	roster := newTestRoster()

	alice, _ := roster.AddSpeaker("Alice")
	roster.AddSpeaker("Bob")

	err := roster.RemoveSpeaker(alice.ID)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrSpeakerMinimum))
	// Rejection leaves the roster unchanged
	assert.Equal(t, 2, roster.Count())
}

func TestRemoveCurrentSpeakerPromotesNext(t *testing.T) {
	roster := newTestRoster()

	alice, _ := roster.AddSpeaker("Alice")
	bob, _ := roster.AddSpeaker("Bob")
	roster.AddSpeaker("Carol")

	require.NoError(t, roster.RemoveSpeaker(alice.ID))

	current, exists := roster.CurrentSpeaker()
	require.True(t, exists)
	assert.Equal(t, bob.ID, current.ID)
	assert.True(t, current.IsCurrent)
}

func TestSetCurrentSpeakerExactlyOne(t *testing.T) {
	roster := newTestRoster()

	roster.AddSpeaker("Alice")
	bob, _ := roster.AddSpeaker("Bob")

	require.NoError(t, roster.SetCurrentSpeaker(bob.ID))

	currentCount := 0
	for _, s := range roster.Speakers() {
		if s.IsCurrent {
			currentCount++
		}
	}
	assert.Equal(t, 1, currentCount)

	current, _ := roster.CurrentSpeaker()
	assert.Equal(t, bob.ID, current.ID)
}

func TestSetCurrentSpeakerUnknown(t *testing.T) {
	roster := newTestRoster()
	roster.AddSpeaker("Alice")

	err := roster.SetCurrentSpeaker("no-such-speaker")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrSpeakerNotFound))
}

func TestApplyFactCheckUpdatesOwningSpeaker(t *testing.T) {
	roster := newTestRoster()

	alice, _ := roster.AddSpeaker("Alice")
	bob, _ := roster.AddSpeaker("Bob")

	claim := claimFor(alice.ID, "a verified statement", "Health")
	updated, err := roster.ApplyFactCheck(claim, verdictResult(factcheck.VerdictTrue))
	require.NoError(t, err)

	assert.Equal(t, alice.ID, updated.ID)
	assert.Equal(t, 1, updated.TotalClaims)
	assert.Equal(t, 100, updated.AccuracyScore)
	assert.Equal(t, 0, bob.TotalClaims)
}

func TestApplyFactCheckUnknownSpeaker(t *testing.T) {
	roster := newTestRoster()
	roster.AddSpeaker("Alice")

	claim := claimFor("ghost", "a statement", "")
	_, err := roster.ApplyFactCheck(claim, verdictResult(factcheck.VerdictTrue))
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrSpeakerNotFound))
}

func TestSpeakerReadsDuringStatsUpdates(t *testing.T) {
	roster := newTestRoster()
	alice, _ := roster.AddSpeaker("Alice")
	roster.AddSpeaker("Bob")

	const updates = 200

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < updates; i++ {
			claim := claimFor(alice.ID, "a verified statement", "Health")
			if _, err := roster.ApplyFactCheck(claim, verdictResult(factcheck.VerdictTrue)); err != nil {
				t.Errorf("ApplyFactCheck failed: %v", err)
				return
			}
		}
	}()

	// Accessors return snapshots, so encoding them while the stats
	// engine writes must never trip over a mid-update map
	go func() {
		defer wg.Done()
		for i := 0; i < updates; i++ {
			for _, s := range roster.Speakers() {
				if _, err := json.Marshal(s); err != nil {
					t.Errorf("failed to marshal speaker snapshot: %v", err)
					return
				}
			}
		}
	}()

	wg.Wait()

	updated, err := roster.GetSpeaker(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, updates, updated.TotalClaims)
	assert.Equal(t, updates, updated.VerifiedClaims)
}

func TestApplyFactCheckEmitsNotifications(t *testing.T) {
	roster := newTestRoster()
	alice, _ := roster.AddSpeaker("Alice")
	roster.AddSpeaker("Bob")

	var received []*Notification
	roster.AddNotificationListener(NotificationListenerFunc(func(n *Notification) {
		received = append(received, n)
	}))

	claim := claimFor(alice.ID, "a false statement", "Health")
	claim.SpeakingRate = 240

	_, err := roster.ApplyFactCheck(claim, verdictResult(factcheck.VerdictFalse))
	require.NoError(t, err)

	require.Len(t, received, 2)
	assert.Equal(t, NotificationFalseClaim, received[0].Type)
	assert.Equal(t, NotificationFastSpeech, received[1].Type)
}
