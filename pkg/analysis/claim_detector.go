package analysis

import "strings"

// DetectClaim decides whether text is a checkable factual claim.
//
// The decision is an ordered cascade: reject rules run first, then
// unconditional accepts, then conditional accepts. Rules overlap, so the
// first matching branch decides. The optional context string participates
// only in topic-keyword co-occurrence checks.
func (a *Analyzer) DetectClaim(text, context string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	words := strings.Fields(trimmed)
	if len(words) < 3 {
		return false
	}

	lower := strings.ToLower(trimmed)
	combined := lower
	if context != "" {
		combined = lower + " " + strings.ToLower(context)
	}

	// Genuine questions are not claims unless phrased rhetorically
	if strings.Contains(trimmed, "?") && !a.isRhetoricalQuestion(lower) {
		return false
	}

	// Greetings and acknowledgements
	if a.isGreeting(lower, len(words)) {
		return false
	}

	// Unconditional accepts
	if containsAny(lower, a.citationPhrases) {
		return true
	}
	if containsAny(lower, a.strongIndicators) {
		return true
	}

	hasTopic := a.hasTopicKeyword(combined)

	// Negations suppress the verdict unless the statement is topical
	if containsAny(lower, a.negationPhrases) && !hasTopic {
		return false
	}

	// Conditional accepts
	if hasTopic && containsAny(lower, a.mediumIndicators) {
		return true
	}

	for _, re := range a.statisticalRegexes {
		if re.MatchString(lower) {
			return true
		}
	}

	if hasTopic && (a.structureRegex.MatchString(lower) || a.causalRegex.MatchString(lower)) {
		return true
	}

	if hasTopic && containsAny(lower, a.comparisonPhrases) {
		return true
	}

	// Long topical sentences without a first-person opinion qualifier
	if len(words) > 15 && hasTopic && !containsAny(lower, a.opinionQualifiers) {
		return true
	}

	return false
}

// isRhetoricalQuestion reports whether a question is phrased as a claim
func (a *Analyzer) isRhetoricalQuestion(lower string) bool {
	for _, prefix := range a.rhetoricalPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// isGreeting reports whether short text is a greeting or acknowledgement
func (a *Analyzer) isGreeting(lower string, wordCount int) bool {
	if wordCount > 5 {
		return false
	}

	stripped := strings.Trim(lower, ".,!? ")
	for _, greeting := range a.greetings {
		if stripped == greeting || strings.HasPrefix(stripped, greeting+" ") || strings.HasPrefix(stripped, greeting+",") {
			return true
		}
	}
	return false
}

// hasTopicKeyword reports whether any topic keyword occurs in the text
func (a *Analyzer) hasTopicKeyword(lower string) bool {
	for _, topic := range a.topics {
		for _, keyword := range topic.keywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}
