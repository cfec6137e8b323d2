package factcheck

import (
	"regexp"
	"strings"
)

// Cheap local claim-worthiness scoring, used standalone in claimbuster
// mode and as the pre-filter in hybrid mode. Scores are in [0, 1].

var (
	worthinessNumberRegex = regexp.MustCompile(`\d`)
	worthinessStatRegex   = regexp.MustCompile(`\d+(\.\d+)?\s*(%|percent)|\b\d+\s+(out of|in)\s+\d+\b`)
)

var worthinessIndicators = []string{
	"studies show", "research shows", "evidence", "data", "statistics",
	"according to", "scientists", "experts", "proven", "causes",
	"increased", "decreased", "majority", "percent",
}

// scoreCheckWorthiness estimates how checkable a statement is from
// surface signals: numbers, statistical phrasing, evidential vocabulary
// and sentence length
func scoreCheckWorthiness(text string) float64 {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	if len(words) < 3 {
		return 0
	}

	score := 0.2

	if worthinessStatRegex.MatchString(lower) {
		score += 0.3
	} else if worthinessNumberRegex.MatchString(lower) {
		score += 0.15
	}

	for _, indicator := range worthinessIndicators {
		if strings.Contains(lower, indicator) {
			score += 0.15
			break
		}
	}

	if len(words) >= 8 {
		score += 0.1
	}
	if strings.Contains(lower, "?") {
		score -= 0.2
	}

	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// claimbusterResult is the claimbuster-only mode: worthiness scoring plus
// the rule-based table, no network at all. Confidence is scaled by the
// worthiness score so vague statements come back weaker.
func claimbusterResult(claimText string) *Result {
	worthiness := scoreCheckWorthiness(claimText)
	result := ruleBasedResult(claimText)

	result.ConfidenceScore = result.ConfidenceScore * (0.5 + worthiness/2)
	result.Source = "ClaimBuster heuristic"

	if worthiness < 0.3 && result.Verdict == VerdictUnverified {
		result.Explanation = "The statement carries too few checkable signals for heuristic verification."
	}

	return result
}
