package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTopic(t *testing.T) {
	a := newTestAnalyzer()

	cases := []struct {
		text  string
		topic string
	}{
		{"The government passed new legislation", "Politics"},
		{"Studies show vaccines cause autism", "Health"},
		{"The experiment confirmed the physics prediction", "Science"},
		{"Carbon emissions hit a record high", "Climate"},
		{"Inflation is eating into wages", "Economics"},
		{"Teachers are leaving the school system", "Education"},
		{"The algorithm decides what you see on social media", "Technology"},
		{"Poverty and inequality keep rising", "Social Issues"},
	}

	for _, tc := range cases {
		topic, ok := a.ClassifyTopic(tc.text)
		assert.True(t, ok, "expected a topic for %q", tc.text)
		assert.Equal(t, tc.topic, topic, "text: %q", tc.text)
	}
}

func TestClassifyTopicFirstMatchWins(t *testing.T) {
	a := newTestAnalyzer()

	// Both Health ("vaccine") and Science ("studies") vocabulary appear;
	// Health precedes Science in the table
	topic, ok := a.ClassifyTopic("studies about the vaccine rollout")
	assert.True(t, ok)
	assert.Equal(t, "Health", topic)
}

func TestClassifyTopicNoMatch(t *testing.T) {
	a := newTestAnalyzer()

	_, ok := a.ClassifyTopic("I had pasta for dinner yesterday")
	assert.False(t, ok)

	_, ok = a.ClassifyTopic("")
	assert.False(t, ok)
}

func TestClassifyTopicDeterministic(t *testing.T) {
	a := newTestAnalyzer()

	text := "The economy and the climate are both in trouble"
	first, ok1 := a.ClassifyTopic(text)
	second, ok2 := a.ClassifyTopic(text)

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}
