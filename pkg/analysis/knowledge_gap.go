package analysis

import "strings"

// IdentifyKnowledgeGap reports whether text touches a topic with
// acknowledged scientific uncertainty. True when the text mentions an
// unsettled-science topic, contains an uncertainty phrase, or pairs an
// unsettled topic with an absolute-certainty qualifier.
func (a *Analyzer) IdentifyKnowledgeGap(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	lower := strings.ToLower(text)

	if containsAny(lower, a.unsettledTopics) {
		return true
	}

	return containsAny(lower, a.uncertaintyPhrases)
}

// HasAbsoluteCertainty reports whether text asserts absolute certainty,
// which flags overconfident claims about unsettled topics downstream.
func (a *Analyzer) HasAbsoluteCertainty(text string) bool {
	return containsAny(strings.ToLower(text), a.absoluteQualifiers)
}
