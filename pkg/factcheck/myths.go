package factcheck

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Myth is one record in the static local myths table, consulted before
// any network call
type Myth struct {
	Claim       string  `json:"claim"`
	Verdict     Verdict `json:"verdict"`
	Source      string  `json:"source"`
	Explanation string  `json:"explanation"`

	// DebunkedStudies names retracted or discredited work commonly cited
	// in support of the myth, when such work exists
	DebunkedStudies string `json:"debunked_studies,omitempty"`
}

var numberRegex = regexp.MustCompile(`\d+(\.\d+)?`)

// MythStore holds the static myths table and performs tolerant matching
// against incoming claim text
type MythStore struct {
	myths []Myth
}

// NewMythStore creates a myth store with the built-in table
func NewMythStore() *MythStore {
	return &MythStore{myths: builtinMyths()}
}

// NewMythStoreWith creates a myth store with a caller-supplied table
func NewMythStoreWith(myths []Myth) *MythStore {
	return &MythStore{myths: myths}
}

// Match looks up claim text against the myths table. A myth matches on an
// exact substring relation in either direction, or, when both texts carry
// numbers, on any number pair within tolerancePercent of the myth's
// number. The first matching myth wins.
func (s *MythStore) Match(claimText string, tolerancePercent float64) *Myth {
	lower := strings.ToLower(strings.TrimSpace(claimText))
	if lower == "" {
		return nil
	}

	for i := range s.myths {
		myth := &s.myths[i]
		mythLower := strings.ToLower(myth.Claim)

		if strings.Contains(lower, mythLower) || strings.Contains(mythLower, lower) {
			return myth
		}

		if numbersWithinTolerance(lower, mythLower, tolerancePercent) {
			return myth
		}
	}

	return nil
}

// Size returns the number of myths in the table
func (s *MythStore) Size() int {
	return len(s.myths)
}

// numbersWithinTolerance reports whether any number extracted from the
// claim lands within tolerancePercent of a number extracted from the
// myth. The myth's number is the reference for the tolerance band.
func numbersWithinTolerance(claim, myth string, tolerancePercent float64) bool {
	mythNumbers := extractNumbers(myth)
	if len(mythNumbers) == 0 {
		return false
	}
	claimNumbers := extractNumbers(claim)
	if len(claimNumbers) == 0 {
		return false
	}

	for _, reference := range mythNumbers {
		if reference == 0 {
			continue
		}
		band := math.Abs(reference) * tolerancePercent / 100
		for _, candidate := range claimNumbers {
			if math.Abs(candidate-reference) <= band {
				return true
			}
		}
	}

	return false
}

func extractNumbers(text string) []float64 {
	matches := numberRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	numbers := make([]float64, 0, len(matches))
	for _, match := range matches {
		if value, err := strconv.ParseFloat(match, 64); err == nil {
			numbers = append(numbers, value)
		}
	}
	return numbers
}

func builtinMyths() []Myth {
	return []Myth{
		{
			Claim:           "vaccines cause autism",
			Verdict:         VerdictFalse,
			Source:          "CDC, WHO (2023)",
			Explanation:     "Extensive research involving millions of children has found no link between vaccines and autism. The original 1998 study claiming a link was retracted for data fraud and its author lost his medical license.",
			DebunkedStudies: "Wakefield et al. (1998), retracted by The Lancet in 2010",
		},
		{
			Claim:       "97% of climate scientists agree",
			Verdict:     VerdictFalse,
			Source:      "Cook et al., Environmental Research Letters (2013)",
			Explanation: "The 97% figure describes agreement among published papers that take a position on attribution, not a survey of all scientists. Quoting it as a headcount of scientists misstates what the underlying studies measured.",
		},
		{
			Claim:       "the earth is flat",
			Verdict:     VerdictFalse,
			Source:      "NASA",
			Explanation: "The Earth's spherical shape has been directly observed from orbit and is confirmed by satellite imagery, circumnavigation and the physics of gravity.",
		},
		{
			Claim:       "humans only use 10% of their brains",
			Verdict:     VerdictFalse,
			Source:      "Scientific American, neuroimaging studies",
			Explanation: "Brain imaging shows activity across virtually all brain regions, even during sleep. No region is dormant or unused.",
		},
		{
			Claim:       "the great wall of china is visible from space",
			Verdict:     VerdictFalse,
			Source:      "NASA astronaut reports",
			Explanation: "The wall is too narrow to be seen with the naked eye from low Earth orbit. Astronauts have repeatedly confirmed it is not visible without magnification.",
		},
		{
			Claim:       "smoking causes cancer",
			Verdict:     VerdictTrue,
			Source:      "US Surgeon General, WHO",
			Explanation: "The causal link between tobacco smoking and multiple cancers is one of the most thoroughly established findings in medicine.",
		},
		{
			Claim:       "climate change is a hoax",
			Verdict:     VerdictFalse,
			Source:      "IPCC Sixth Assessment Report (2021)",
			Explanation: "Multiple independent lines of evidence, including instrumental temperature records, ice cores and sea level measurements, confirm that the climate is warming due to human activity.",
		},
		{
			Claim:       "evolution is just a theory with no evidence",
			Verdict:     VerdictFalse,
			Source:      "National Academy of Sciences",
			Explanation: "Evolution is supported by converging evidence from the fossil record, comparative genomics, and directly observed speciation. In science a theory is an explanation supported by evidence, not a guess.",
		},
	}
}
