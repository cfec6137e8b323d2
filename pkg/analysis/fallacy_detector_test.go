package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFallacies(t *testing.T) {
	a := newTestAnalyzer()

	cases := []struct {
		text    string
		fallacy string
	}{
		{"You're just an idiot who never reads", "Ad Hominem"},
		{"So you're saying we should do nothing at all", "Strawman Fallacy"},
		{"You're either with us or against us", "False Dilemma"},
		{"If we allow this, then soon everything will be permitted", "Slippery Slope"},
		{"A famous person says this diet works", "Appeal to Authority"},
		{"Think of the children before you vote", "Appeal to Emotion"},
		{"Everyone knows this is the right answer", "Bandwagon Fallacy"},
		{"All politicians are corrupt", "Hasty Generalization"},
		{"Natural remedies are better for you", "Appeal to Nature"},
		{"But what about the other party's scandals", "Red Herring"},
	}

	for _, tc := range cases {
		detected := a.DetectFallacies(tc.text)
		assert.Contains(t, detected, tc.fallacy, "text: %q", tc.text)
	}
}

func TestDetectFallaciesCorrelationCausationGuard(t *testing.T) {
	a := newTestAnalyzer()

	// Correlation term plus consequence phrasing
	detected := a.DetectFallacies("Ice cream sales are correlated with drownings, which means ice cream is deadly")
	assert.Contains(t, detected, "Correlation-Causation Fallacy")

	// Direct "X causes Y" construction
	detected = a.DetectFallacies("Vaccines cause autism")
	assert.Contains(t, detected, "Correlation-Causation Fallacy")

	// Correlation term alone must not fire
	detected = a.DetectFallacies("Screen time is associated with poor sleep")
	assert.NotContains(t, detected, "Correlation-Causation Fallacy")
}

func TestDetectFallaciesMultiple(t *testing.T) {
	a := newTestAnalyzer()

	detected := a.DetectFallacies("Everyone knows all politicians are corrupt")
	assert.Contains(t, detected, "Bandwagon Fallacy")
	assert.Contains(t, detected, "Hasty Generalization")

	// Report order follows the table declaration order
	assert.Equal(t, []string{"Bandwagon Fallacy", "Hasty Generalization"}, detected)
}

func TestDetectFallaciesClean(t *testing.T) {
	a := newTestAnalyzer()

	assert.Empty(t, a.DetectFallacies("The report was released on Tuesday"))
	assert.Empty(t, a.DetectFallacies(""))
}
