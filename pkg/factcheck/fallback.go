package factcheck

import "strings"

// knownFact is one hard-coded substring rule in the local fallback table
type knownFact struct {
	substring   string
	verdict     Verdict
	explanation string
}

// The fallback table covers well-known claims the server must still
// resolve when no provider credentials are configured or every provider
// failed. Checked in order, first match wins.
var knownFacts = []knownFact{
	{"earth is round", VerdictTrue, "The spherical shape of the Earth is directly observed and universally established."},
	{"earth orbits the sun", VerdictTrue, "Heliocentric orbital mechanics are confirmed by centuries of astronomical observation."},
	{"water boils at 100", VerdictTrue, "Water boils at 100 degrees Celsius at standard atmospheric pressure."},
	{"smoking causes cancer", VerdictTrue, "The causal link between smoking and cancer is established by decades of epidemiological evidence."},
	{"humans evolved", VerdictTrue, "Human evolution is supported by the fossil record and comparative genomics."},
	{"earth is flat", VerdictFalse, "The Earth is an oblate spheroid, as confirmed by satellite observation."},
	{"vaccines cause autism", VerdictFalse, "Large-scale studies have found no link between vaccination and autism."},
	{"climate change is a hoax", VerdictFalse, "Climate change is confirmed by multiple independent lines of physical evidence."},
	{"moon landing was faked", VerdictFalse, "The Apollo landings are verified by retroreflectors, returned samples and independent tracking."},
	{"5g causes", VerdictFalse, "Radio waves used by 5G networks are non-ionizing and cannot damage cells."},
}

// ruleBasedResult resolves a claim against the hard-coded fallback table.
// Unmatched claims come back unverified with low confidence; the result
// is always usable, never nil.
func ruleBasedResult(claimText string) *Result {
	lower := strings.ToLower(claimText)

	for _, fact := range knownFacts {
		if strings.Contains(lower, fact.substring) {
			return &Result{
				Verdict:         fact.verdict,
				Source:          "Local knowledge base",
				Explanation:     fact.explanation,
				ConfidenceScore: 55,
			}
		}
	}

	return &Result{
		Verdict:         VerdictUnverified,
		Source:          "Local knowledge base",
		Explanation:     "This claim could not be verified against the local knowledge base and no external verification was available.",
		ConfidenceScore: 20,
	}
}
