package analysis

import "regexp"

var (
	correlationTermRegex = regexp.MustCompile(`(?i)\b(correlat\w+|linked to|associated with|goes hand in hand)\b`)
	consequenceRegex     = regexp.MustCompile(`(?i)\b(therefore|so it must|which means|proves? that|as a result|that('s| is) why)\b`)
	directCausesRegex    = regexp.MustCompile(`(?i)\b\w+(s|es)?\s+causes?\s+\w+`)
)

// DetectFallacies tests text against the fallacy table and returns the
// names of all matching fallacies in declaration order. Matches are not
// mutually exclusive.
func (a *Analyzer) DetectFallacies(text string) []string {
	if text == "" {
		return nil
	}

	var detected []string
	for _, entry := range a.fallacyTable {
		if entry.name == "Correlation-Causation Fallacy" {
			if detectCorrelationCausation(text) {
				detected = append(detected, entry.name)
			}
			continue
		}

		for _, pattern := range entry.patterns {
			if pattern.MatchString(text) {
				detected = append(detected, entry.name)
				break
			}
		}
	}

	return detected
}

// detectCorrelationCausation applies the stricter compound condition for
// correlation/causation confusion: a correlation term together with a
// consequence phrasing, or a direct "X causes Y" construction.
func detectCorrelationCausation(text string) bool {
	if correlationTermRegex.MatchString(text) && consequenceRegex.MatchString(text) {
		return true
	}
	return directCausesRegex.MatchString(text)
}
