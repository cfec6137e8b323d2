package analysis

import "strings"

// ClassifyTopic returns the first topic whose keyword list matches the
// text, in the fixed declaration order of the topic table. Returns
// ok=false when no topic matches. Single-label, first-match-wins.
func (a *Analyzer) ClassifyTopic(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	lower := strings.ToLower(text)
	for _, topic := range a.topics {
		for _, keyword := range topic.keywords {
			if strings.Contains(lower, keyword) {
				return topic.name, true
			}
		}
	}

	return "", false
}

// Topics returns the topic names in classification order
func (a *Analyzer) Topics() []string {
	names := make([]string, 0, len(a.topics))
	for _, topic := range a.topics {
		names = append(names, topic.name)
	}
	return names
}
