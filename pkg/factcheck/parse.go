package factcheck

import (
	"encoding/json"
	"strconv"
	"strings"
)

// providerPrompt is the instruction block sent to AI verification
// providers. Providers are asked for a line-oriented response; the parser
// also salvages embedded JSON and falls back to a raw keyword scan.
const providerPrompt = `You are a fact-checking assistant for live debates.
Evaluate the following claim and respond with these exact lines:
VERDICT: true, false or unverified
EXPLANATION: one or two sentences explaining the verdict
SOURCE: the most authoritative source for the verdict
CONFIDENCE: a number from 0 to 100
FALLACIES: comma-separated logical fallacy names, or none
DEBUNKED_STUDIES: retracted or discredited studies related to the claim, or none
ALTERNATIVE: a credible alternative perspective, or none
KNOWLEDGE_GAPS: open scientific questions the claim touches, or none`

// jsonResponse is the salvage shape for providers that reply with JSON
// despite the line-oriented instructions
type jsonResponse struct {
	Verdict          string   `json:"verdict"`
	Explanation      string   `json:"explanation"`
	Source           string   `json:"source"`
	Confidence       float64  `json:"confidence"`
	LogicalFallacies []string `json:"logical_fallacies"`
	DebunkedStudies  string   `json:"debunked_studies"`
	Alternative      string   `json:"alternative_perspective"`
	KnowledgeGaps    string   `json:"knowledge_gaps"`
}

// parseProviderResponse normalizes a provider's raw text into a partial
// Result. It never fails: a response with no recognizable structure
// degrades to a keyword-scanned verdict, then to unverified.
func parseProviderResponse(raw string) *Result {
	result := &Result{Verdict: VerdictUnverified}

	if parseLineOriented(raw, result) {
		return result
	}
	if parseEmbeddedJSON(raw, result) {
		return result
	}
	scanRawKeywords(raw, result)
	return result
}

// parseLineOriented reads the VERDICT:/EXPLANATION:/... line format.
// Returns true when a verdict line was found.
func parseLineOriented(raw string, result *Result) bool {
	found := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "VERDICT:"):
			if verdict, ok := normalizeVerdict(lineValue(line)); ok {
				result.Verdict = verdict
				found = true
			}
		case strings.HasPrefix(upper, "EXPLANATION:"):
			result.Explanation = lineValue(line)
		case strings.HasPrefix(upper, "SOURCE:"):
			result.Source = lineValue(line)
		case strings.HasPrefix(upper, "CONFIDENCE:"):
			if value, err := strconv.ParseFloat(strings.TrimSuffix(lineValue(line), "%"), 64); err == nil {
				result.ConfidenceScore = value
			}
		case strings.HasPrefix(upper, "FALLACIES:"):
			result.LogicalFallacies = splitList(lineValue(line))
		case strings.HasPrefix(upper, "DEBUNKED_STUDIES:"):
			result.DebunkedStudies = noneToEmpty(lineValue(line))
		case strings.HasPrefix(upper, "ALTERNATIVE:"):
			if alt := noneToEmpty(lineValue(line)); alt != "" {
				result.AlternativePerspectives = []string{alt}
			}
		case strings.HasPrefix(upper, "KNOWLEDGE_GAPS:"):
			result.KnowledgeGaps = noneToEmpty(lineValue(line))
		}
	}

	return found
}

// parseEmbeddedJSON salvages a JSON object embedded anywhere in the raw
// text. Returns true when the object carried a usable verdict.
func parseEmbeddedJSON(raw string, result *Result) bool {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return false
	}

	var parsed jsonResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return false
	}

	verdict, ok := normalizeVerdict(parsed.Verdict)
	if !ok {
		return false
	}

	result.Verdict = verdict
	result.Explanation = parsed.Explanation
	result.Source = parsed.Source
	result.ConfidenceScore = parsed.Confidence
	result.LogicalFallacies = parsed.LogicalFallacies
	result.DebunkedStudies = noneToEmpty(parsed.DebunkedStudies)
	result.KnowledgeGaps = noneToEmpty(parsed.KnowledgeGaps)
	if alt := noneToEmpty(parsed.Alternative); alt != "" {
		result.AlternativePerspectives = []string{alt}
	}
	return true
}

// scanRawKeywords derives a best-effort verdict from free text when no
// structure could be recognized. False is checked first: replies like
// "this is false, not true" should not read as true.
func scanRawKeywords(raw string, result *Result) {
	lower := strings.ToLower(raw)

	switch {
	case strings.Contains(lower, "false"):
		result.Verdict = VerdictFalse
	case strings.Contains(lower, "true"):
		result.Verdict = VerdictTrue
	default:
		result.Verdict = VerdictUnverified
	}

	result.Explanation = strings.TrimSpace(raw)
	result.ConfidenceScore = 30
}

func normalizeVerdict(value string) (Verdict, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "verified", "accurate", "correct":
		return VerdictTrue, true
	case "false", "incorrect", "inaccurate", "debunked":
		return VerdictFalse, true
	case "unverified", "unknown", "uncertain", "inconclusive", "mixed":
		return VerdictUnverified, true
	}
	return VerdictUnverified, false
}

func lineValue(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return ""
}

func splitList(value string) []string {
	value = noneToEmpty(value)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

func noneToEmpty(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "none") || strings.EqualFold(trimmed, "n/a") {
		return ""
	}
	return trimmed
}
