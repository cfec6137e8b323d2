package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifyKnowledgeGap(t *testing.T) {
	a := newTestAnalyzer()

	cases := []struct {
		text     string
		expected bool
	}{
		{"Dark matter makes up most of the universe", true},
		{"The origin of life is definitely solved", true},
		{"There is no scientific consensus on this yet", true},
		{"These are preliminary findings from a small trial", true},
		{"More research is needed before we can say", true},
		{"The sky is blue", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, a.IdentifyKnowledgeGap(tc.text), "text: %q", tc.text)
	}
}

func TestHasAbsoluteCertainty(t *testing.T) {
	a := newTestAnalyzer()

	assert.True(t, a.HasAbsoluteCertainty("This is a proven fact"))
	assert.True(t, a.HasAbsoluteCertainty("It is definitely settled"))
	assert.False(t, a.HasAbsoluteCertainty("It might be true"))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 1, CountWords("hello"))
	assert.Equal(t, 5, CountWords("the quick brown fox jumps"))
	assert.Equal(t, 3, CountWords("  spaced   out   words  "))
}
