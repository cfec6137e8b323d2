package factcheck

import "fmt"

// fallacyRebuttals maps each fallacy name to a canned rebuttal paragraph.
// Synthesis always uses the first detected fallacy.
var fallacyRebuttals = map[string]string{
	"Ad Hominem":                    "Attacking the person making an argument says nothing about the argument itself. The claim should be evaluated on its evidence, not on who states it.",
	"Strawman Fallacy":              "This responds to a distorted version of the opposing position rather than what was actually argued. Address the position as stated.",
	"False Dilemma":                 "More than two options exist here. Framing the issue as an either-or choice excludes the middle ground where most workable positions live.",
	"Slippery Slope":                "One step does not inevitably lead to the extreme outcome described. Each step in the chain needs its own evidence.",
	"Appeal to Authority":           "An authority's endorsement is not evidence by itself. What matters is whether the claim is supported by data the authority can point to.",
	"Appeal to Emotion":             "An emotional framing does not change the underlying facts. The claim still needs evidence independent of how it makes the audience feel.",
	"Bandwagon Fallacy":             "Popularity is not accuracy. Many widely held beliefs have turned out to be wrong; the claim needs evidence, not a headcount.",
	"Hasty Generalization":          "A conclusion about an entire group drawn from a few cases is unreliable. Representative data is needed before generalizing.",
	"Correlation-Causation Fallacy": "Two things occurring together does not mean one causes the other. A controlled comparison is needed to establish causation.",
	"Appeal to Nature":              "Natural does not mean safe or effective, and artificial does not mean harmful. Arsenic is natural; insulin is synthetic.",
	"Red Herring":                   "This shifts the discussion to a different issue. Whatever the merits of the new topic, it does not answer the original claim.",
}

// SynthesizeCounterArgument produces the rebuttal attached to a result.
// True verdicts get none; fallacies take precedence over the verdict.
func SynthesizeCounterArgument(verdict Verdict, fallacies []string, explanation string) string {
	if len(fallacies) > 0 {
		if rebuttal, ok := fallacyRebuttals[fallacies[0]]; ok {
			return rebuttal
		}
		return fmt.Sprintf("The argument exhibits the %s pattern, which weakens the conclusion it is used to support.", fallacies[0])
	}

	switch verdict {
	case VerdictFalse:
		if explanation != "" {
			return fmt.Sprintf("This claim is contradicted by the available evidence: %s", explanation)
		}
		return "This claim is contradicted by the available evidence."
	case VerdictUnverified:
		return "This claim could not be verified. Treat it as an open question rather than an established fact until supporting evidence is produced."
	}

	return ""
}
