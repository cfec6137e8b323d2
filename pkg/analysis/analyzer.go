package analysis

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Analyzer provides heuristic text classification for debate utterances:
// claim detection, topic classification, fallacy detection and
// knowledge-gap identification. All methods are deterministic and
// side-effect free; the struct only carries precompiled tables.
type Analyzer struct {
	logger *logrus.Entry

	// Topic classification
	topics []topicCategory

	// Claim detection tables
	rhetoricalPrefixes []string
	greetings          []string
	citationPhrases    []string
	strongIndicators   []string
	mediumIndicators   []string
	comparisonPhrases  []string
	negationPhrases    []string
	opinionQualifiers  []string
	statisticalRegexes []*regexp.Regexp
	structureRegex     *regexp.Regexp
	causalRegex        *regexp.Regexp

	// Fallacy detection
	fallacyTable []fallacyPattern

	// Knowledge-gap detection
	unsettledTopics    []string
	uncertaintyPhrases []string
	absoluteQualifiers []string
}

// topicCategory is one named topic with its keyword list.
// Order in the topics slice is the match order.
type topicCategory struct {
	name     string
	keywords []string
}

// fallacyPattern maps a fallacy name to the regexes that report it
type fallacyPattern struct {
	name     string
	patterns []*regexp.Regexp
}

// NewAnalyzer creates a new text analyzer with all tables compiled
func NewAnalyzer(logger *logrus.Logger) *Analyzer {
	a := &Analyzer{
		logger: logger.WithField("component", "analyzer"),
	}

	a.initializeTopics()
	a.initializeClaimTables()
	a.initializeFallacyTable()
	a.initializeKnowledgeGapTables()

	return a
}

// initializeTopics initializes the topic keyword lists.
// First matching topic wins, so order matters.
func (a *Analyzer) initializeTopics() {
	a.topics = []topicCategory{
		{name: "Politics", keywords: []string{
			"government", "election", "president", "congress", "policy",
			"senator", "vote", "democrat", "republican", "legislation",
		}},
		{name: "Health", keywords: []string{
			"vaccine", "disease", "doctor", "medical", "medicine",
			"health", "cancer", "hospital", "autism", "immune", "diet",
		}},
		{name: "Science", keywords: []string{
			"scientist", "science", "study", "studies", "research",
			"experiment", "physics", "chemistry", "biology", "evidence",
		}},
		{name: "Climate", keywords: []string{
			"climate", "global warming", "carbon", "emissions",
			"temperature", "renewable", "fossil fuel", "greenhouse",
		}},
		{name: "Economics", keywords: []string{
			"economy", "economic", "inflation", "unemployment", "tax",
			"gdp", "market", "wages", "trade", "recession",
		}},
		{name: "Education", keywords: []string{
			"school", "education", "student", "teacher", "university",
			"college", "literacy", "curriculum",
		}},
		{name: "Technology", keywords: []string{
			"technology", "internet", "computer", "artificial intelligence",
			"software", "robot", "smartphone", "algorithm", "social media",
		}},
		{name: "Social Issues", keywords: []string{
			"poverty", "crime", "immigration", "inequality",
			"discrimination", "racism", "homeless", "welfare",
		}},
	}
}

// initializeClaimTables initializes the claim-detection phrase lists and regexes
func (a *Analyzer) initializeClaimTables() {
	a.rhetoricalPrefixes = []string{
		"isn't it true", "don't you agree", "wouldn't you say",
	}

	a.greetings = []string{
		"hello", "hi", "hey", "yes", "no", "ok", "okay", "thanks",
		"thank you", "sure", "good morning", "good evening", "bye", "goodbye",
	}

	a.citationPhrases = []string{
		"published in", "journal of", "according to a study",
		"peer-reviewed", "meta-analysis",
	}

	a.strongIndicators = []string{
		"studies show", "research shows", "scientists say", "i believe",
		"in fact", "the truth is", "evidence shows", "statistics show",
		"data shows", "experts say", "it is proven", "it's proven",
	}

	a.mediumIndicators = []string{
		"clearly", "obviously", "always", "never", "definitely",
		"certainly", "most people", "majority of", "all experts",
		"undeniably", "everyone knows",
	}

	a.comparisonPhrases = []string{
		"better than", "worse than", "more than", "less than",
		"higher than", "lower than", "safer than", "faster than",
	}

	a.negationPhrases = []string{
		"not true", "doesn't exist", "does not exist", "isn't real",
		"is not real", "no evidence",
	}

	a.opinionQualifiers = []string{
		"i feel", "my opinion", "i guess", "personally", "i suppose",
	}

	a.statisticalRegexes = []*regexp.Regexp{
		regexp.MustCompile(`\d+(\.\d+)?\s*(%|percent)`),
		regexp.MustCompile(`\b\d+\s+(out\s+of|in)\s+\d+\b`),
		regexp.MustCompile(`\b(increased|decreased|rose|fell|grew|dropped|doubled)\s+by\s+\d+`),
		regexp.MustCompile(`\b\d{1,3}(,\d{3})+\b`),
		regexp.MustCompile(`\b\d+(\.\d+)?\s*(million|billion|trillion)\b`),
	}

	a.structureRegex = regexp.MustCompile(`^(the|this|that|these|those|it|there)\s+(\w+\s+){0,2}(is|are|was|were)\b`)
	a.causalRegex = regexp.MustCompile(`\b(leads? to|causes?|results? in|contributes? to)\b`)
}

// initializeFallacyTable initializes the fallacy-name to regex mapping.
// The table order is the report order.
func (a *Analyzer) initializeFallacyTable() {
	a.fallacyTable = []fallacyPattern{
		{name: "Ad Hominem", patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(you|he|she|they)('re| are|'s| is)\s+(just\s+)?(an?\s+)?(idiot|liar|fool|moron|hypocrite|stupid|corrupt)`),
			regexp.MustCompile(`(?i)what (would|do) (you|he|she|they) know`),
			regexp.MustCompile(`(?i)\bcoming from (someone|a person) (like|who)\b`),
		}},
		{name: "Strawman Fallacy", patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)so (you're|you are) saying`),
			regexp.MustCompile(`(?i)(you|they) (want|are trying) to (ban|destroy|eliminate|get rid of) (all|every|everything)`),
		}},
		{name: "False Dilemma", patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\beither\b.+\bor\b.+\b(nothing|no other|else)\b`),
			regexp.MustCompile(`(?i)(you're|you are) (either )?with us or against us`),
			regexp.MustCompile(`(?i)there (is|are) only two (option|choice|way)`),
			regexp.MustCompile(`(?i)\bthe only (option|choice|alternative|way)\b`),
		}},
		{name: "Slippery Slope", patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)if we (allow|let|permit|accept)\b.+\b(then|soon|next)\b`),
			regexp.MustCompile(`(?i)(next thing you know|where does it end|slippery slope)`),
			regexp.MustCompile(`(?i)will (inevitably|eventually) lead to`),
		}},
		{name: "Appeal to Authority", patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(famous|celebrity|important) (person|people|figure)s? (says?|believes?|endorses?|agrees?)`),
			regexp.MustCompile(`(?i)because (an? )?(expert|authority|celebrity|professor) said (so|it)`),
			regexp.MustCompile(`(?i)\b(he|she|they) (is|are) (an? )?(expert|authority), so\b`),
		}},
		{name: "Appeal to Emotion", patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)think (of|about) the children`),
			regexp.MustCompile(`(?i)imagine if (it|this) (were|was|happened to) you`),
			regexp.MustCompile(`(?i)how would you feel`),
			regexp.MustCompile(`(?i)\b(heartbreaking|terrifying|outrageous), (so|which means)\b`),
		}},
		{name: "Bandwagon Fallacy", patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)everyone (knows|agrees|is doing|believes)`),
			regexp.MustCompile(`(?i)(most|all) people (agree|believe|think|know)`),
			regexp.MustCompile(`(?i)millions of people can('t|not) be wrong`),
		}},
		{name: "Hasty Generalization", patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(all|every single) \w+s? (are|is|do|does)\b`),
			regexp.MustCompile(`(?i)i (met|knew|saw) one\b.+\bso (they|all)\b`),
		}},
		// Correlation-Causation uses a compound condition, handled in
		// DetectFallacies, to cut down on false positives.
		{name: "Correlation-Causation Fallacy", patterns: nil},
		{name: "Appeal to Nature", patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bnatural\b.+\b(better|good|healthy|safe)r?\b`),
			regexp.MustCompile(`(?i)\b(unnatural|chemical)s?\b.+\b(bad|harmful|dangerous|toxic)\b`),
		}},
		{name: "Red Herring", patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)but what about`),
			regexp.MustCompile(`(?i)that('s| is) not the (real|true) (issue|question|problem)`),
		}},
	}
}

// initializeKnowledgeGapTables initializes the unsettled-science tables
func (a *Analyzer) initializeKnowledgeGapTables() {
	a.unsettledTopics = []string{
		"dark matter", "dark energy", "consciousness", "origin of life",
		"quantum gravity", "long covid", "microbiome", "string theory",
		"artificial general intelligence", "nutrition science",
	}

	a.uncertaintyPhrases = []string{
		"no scientific consensus", "preliminary findings",
		"more research is needed", "scientists are still",
		"not fully understood", "remains unclear", "ongoing debate",
		"inconclusive",
	}

	a.absoluteQualifiers = []string{
		"definitely", "proven fact", "100% certain", "settled science",
		"beyond doubt", "absolutely certain",
	}
}

// CountWords counts words in a string efficiently
func CountWords(text string) int {
	if text == "" {
		return 0
	}
	count := 0
	inWord := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			inWord = false
		} else if !inWord {
			inWord = true
			count++
		}
	}
	return count
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if phrase != "" && strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
