package transcript

import (
	"testing"
	"time"

	"debatewatch-server/pkg/analysis"
	"debatewatch-server/pkg/errors"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(continuous bool) *Aggregator {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewAggregator(logger, analysis.NewAnalyzer(logger), Config{
		ContinuousAnalysis: continuous,
		ContextWindow:      3,
	})
}

type recordingListener struct {
	claims []*Claim
}

func (r *recordingListener) OnClaimCreated(claim *Claim) {
	r.claims = append(r.claims, claim)
}

func TestAddUtteranceDirectClaim(t *testing.T) {
	agg := newTestAggregator(false)
	listener := &recordingListener{}
	agg.AddClaimListener(listener)

	utterance, claims := agg.AddUtterance("speaker-1", "Studies show vaccines cause autism", time.Now(), "neutral")
	require.NotNil(t, utterance)
	require.Len(t, claims, 1)

	claim := claims[0]
	assert.True(t, utterance.IsClaim)
	assert.Equal(t, OriginDirect, claim.Origin)
	assert.Equal(t, "Health", claim.Topic)
	assert.Contains(t, claim.Fallacies, "Correlation-Causation Fallacy")
	assert.Equal(t, utterance.ID, claim.UtteranceID)

	require.Len(t, listener.claims, 1)
	assert.Equal(t, claim.ID, listener.claims[0].ID)
}

func TestClaimsReturnedInCreationOrder(t *testing.T) {
	agg := newTestAggregator(false)

	texts := []string{
		"Studies show vaccines cause autism",
		"Research shows the economy grew by 3 percent",
		"Studies show coffee prevents cancer",
	}
	for _, text := range texts {
		_, claims := agg.AddUtterance("speaker-1", text, time.Now(), "")
		require.Len(t, claims, 1)
	}

	ordered := agg.Claims()
	require.Len(t, ordered, len(texts))
	for i, claim := range ordered {
		assert.Equal(t, texts[i], claim.Text)
	}
}

func TestAddUtteranceNonClaim(t *testing.T) {
	agg := newTestAggregator(false)

	utterance, claims := agg.AddUtterance("speaker-1", "Good morning everyone", time.Now(), "")
	require.NotNil(t, utterance)
	assert.False(t, utterance.IsClaim)
	assert.Empty(t, claims)
}

func TestAddUtteranceSpeakingRate(t *testing.T) {
	agg := newTestAggregator(false)

	utterance, _ := agg.AddUtterance("speaker-1", "one two three four five", time.Now(), "")
	require.NotNil(t, utterance)
	assert.Equal(t, 5*SpeakingRateMultiplier, utterance.SpeakingRate)
}

func TestAddUtteranceNearDuplicateSuppressed(t *testing.T) {
	agg := newTestAggregator(false)

	first, _ := agg.AddUtterance("speaker-1", "The economy is growing faster than expected", time.Now(), "")
	require.NotNil(t, first)

	// One-character difference is well inside the 30% threshold
	dup, claims := agg.AddUtterance("speaker-1", "The economy is growing faster than expected.", time.Now(), "")
	assert.Nil(t, dup)
	assert.Empty(t, claims)
	assert.Len(t, agg.Transcript(), 1)

	// Same text from a different speaker is not a duplicate
	other, _ := agg.AddUtterance("speaker-2", "The economy is growing faster than expected", time.Now(), "")
	require.NotNil(t, other)
	assert.Len(t, agg.Transcript(), 2)
}

func TestAddUtteranceDistinctTextNotSuppressed(t *testing.T) {
	agg := newTestAggregator(false)

	first, _ := agg.AddUtterance("speaker-1", "The weather is nice today", time.Now(), "")
	require.NotNil(t, first)

	second, _ := agg.AddUtterance("speaker-1", "Taxes went up again this year", time.Now(), "")
	require.NotNil(t, second)
	assert.Len(t, agg.Transcript(), 2)
}

func TestContinuousAnalysisMergedClaim(t *testing.T) {
	agg := newTestAggregator(true)
	listener := &recordingListener{}
	agg.AddClaimListener(listener)

	// Individually weak fragments that only fire once combined:
	// the first carries the topic, the second carries the fallacy
	agg.AddUtterance("speaker-1", "Let me tell you about vaccine safety", time.Now(), "")
	_, claims := agg.AddUtterance("speaker-1", "but what about their other failures", time.Now(), "")

	require.Len(t, claims, 1)
	assert.Equal(t, OriginMerged, claims[0].Origin)
	assert.Contains(t, claims[0].Text, "vaccine safety")
	assert.Contains(t, claims[0].Text, "other failures")
	assert.Equal(t, "Health", claims[0].Topic)
	assert.Contains(t, claims[0].Fallacies, "Red Herring")
	assert.Len(t, listener.claims, 1)
}

func TestContinuousAnalysisDisabled(t *testing.T) {
	agg := newTestAggregator(false)

	agg.AddUtterance("speaker-1", "Let me tell you about vaccine safety", time.Now(), "")
	_, claims := agg.AddUtterance("speaker-1", "but what about their other failures", time.Now(), "")

	assert.Empty(t, claims)
}

func TestContextWindowTrimmed(t *testing.T) {
	agg := newTestAggregator(true)

	agg.AddUtterance("speaker-1", "First filler remark here", time.Now(), "")
	agg.AddUtterance("speaker-1", "Second filler remark follows", time.Now(), "")
	agg.AddUtterance("speaker-1", "Third filler remark continues", time.Now(), "")
	agg.AddUtterance("speaker-1", "Fourth filler remark arrives", time.Now(), "")

	agg.mutex.RLock()
	sctx := agg.contexts["speaker-1"]
	agg.mutex.RUnlock()

	require.NotNil(t, sctx)
	require.Len(t, sctx.recent, 3)
	assert.Equal(t, "Second filler remark follows", sctx.recent[0].Text)
}

func TestMarkAsClaim(t *testing.T) {
	agg := newTestAggregator(false)
	listener := &recordingListener{}
	agg.AddClaimListener(listener)

	utterance, _ := agg.AddUtterance("speaker-1", "Good morning everyone", time.Now(), "")
	require.NotNil(t, utterance)
	require.False(t, utterance.IsClaim)

	claim, already, err := agg.MarkAsClaim(utterance.ID)
	require.NoError(t, err)
	assert.False(t, already)
	require.NotNil(t, claim)
	assert.Equal(t, OriginManual, claim.Origin)
	assert.Equal(t, utterance.Text, claim.Text)

	stored, _ := agg.GetUtterance(utterance.ID)
	assert.True(t, stored.IsClaim)
	assert.Len(t, listener.claims, 1)
}

func TestMarkAsClaimAlreadyClaim(t *testing.T) {
	agg := newTestAggregator(false)
	listener := &recordingListener{}
	agg.AddClaimListener(listener)

	utterance, claims := agg.AddUtterance("speaker-1", "Studies show coffee prevents cancer", time.Now(), "")
	require.NotNil(t, utterance)
	require.Len(t, claims, 1)

	// Re-marking a claim is a no-op, not an error, and emits no new event
	claim, already, err := agg.MarkAsClaim(utterance.ID)
	require.NoError(t, err)
	assert.True(t, already)
	assert.Nil(t, claim)
	assert.Len(t, listener.claims, 1)
}

func TestMarkAsClaimUnknownUtterance(t *testing.T) {
	agg := newTestAggregator(false)

	_, _, err := agg.MarkAsClaim("no-such-id")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrUtteranceNotFound))
}

func TestMarkClaimProcessedExactlyOnce(t *testing.T) {
	agg := newTestAggregator(false)

	_, claims := agg.AddUtterance("speaker-1", "Studies show coffee prevents cancer", time.Now(), "")
	require.Len(t, claims, 1)

	assert.True(t, agg.MarkClaimProcessed(claims[0].ID))
	assert.False(t, agg.MarkClaimProcessed(claims[0].ID))
	assert.False(t, agg.MarkClaimProcessed("no-such-claim"))
}

func TestListenerPanicRecovered(t *testing.T) {
	agg := newTestAggregator(false)
	listener := &recordingListener{}

	agg.AddClaimListener(ClaimListenerFunc(func(claim *Claim) {
		panic("listener blew up")
	}))
	agg.AddClaimListener(listener)

	assert.NotPanics(t, func() {
		agg.AddUtterance("speaker-1", "Studies show coffee prevents cancer", time.Now(), "")
	})
	assert.Len(t, listener.claims, 1)
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("same", "same"))
	assert.Equal(t, 4, editDistance("", "four"))
	assert.Equal(t, 1, editDistance("cat", "cut"))
	assert.Equal(t, 3, editDistance("kitten", "sitting"))
}

func TestIsNearDuplicate(t *testing.T) {
	assert.True(t, isNearDuplicate("the economy is strong", "the economy is strong!"))
	assert.False(t, isNearDuplicate("the economy is strong", "schools need more funding"))
	assert.False(t, isNearDuplicate("", "anything"))
}
