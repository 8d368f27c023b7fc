/*
Package explain renders a fused assessment into one coherent,
non-clinical paragraph: a framing sentence keyed to the risk level, a
clause naming the dominant signals, and a closing call to action.

Explain is a pure function of the risk level and ranked signals; it
never references model internals or unclamped values.
*/
package explain

import (
	"strings"

	"github.com/hea-health/risk-engine/internal/risk"
)

// maxNamedSignals is how many top signals the paragraph names.
const maxNamedSignals = 3

// framing opens the paragraph for each risk level.
var framing = map[risk.Level]string{
	risk.LevelLow:      "Your recent inputs look consistent with your normal patterns.",
	risk.LevelWeak:     "We picked up a few subtle signals worth noting in your recent inputs.",
	risk.LevelModerate: "We've noticed some patterns that suggest a shift from your usual baseline.",
	risk.LevelHigh:     "Several indicators suggest a significant change in your recent health patterns.",
}

// closing ends the paragraph with a non-alarming call to action.
var closing = map[risk.Level]string{
	risk.LevelLow:      "No action needed — keep logging so we can keep learning your baseline.",
	risk.LevelWeak:     "No action needed right now, but keep tracking so we can watch how this develops.",
	risk.LevelModerate: "It may be worth paying extra attention to how you're feeling, and consider reviewing this with your GP if it continues.",
	risk.LevelHigh:     "Consider reviewing this with a healthcare professional — this is awareness support, not a diagnosis.",
}

// categoryPhrase names the detector family in plain language.
var categoryPhrase = map[risk.Category]string{
	risk.CategoryNLP:        "the way you described how you're feeling",
	risk.CategoryTimeSeries: "changes in your daily metrics",
}

// insufficientDataText is the full paragraph used when the assessment
// carries only the synthesized insufficient-data signal.
const insufficientDataText = "We don't have enough information yet to detect meaningful patterns. " +
	"Keep logging daily — a few more days of entries will let us compare today against your own baseline. " +
	"No action needed."

// Explain produces the assessment paragraph from the risk level and the
// ranked signal list.
func Explain(level risk.Level, signals []risk.Signal) string {
	if len(signals) == 0 {
		return insufficientDataText
	}
	if len(signals) == 1 && signals[0].Key == risk.InsufficientDataKey {
		return insufficientDataText
	}

	var b strings.Builder
	b.WriteString(framing[level])

	b.WriteString(" The strongest signal came from ")
	b.WriteString(categoryPhrase[signals[0].Category])
	b.WriteString(": ")
	b.WriteString(describeSignals(signals))
	b.WriteString(". ")
	b.WriteString(closing[level])

	return b.String()
}

// describeSignals joins the top signal descriptions into one clause.
func describeSignals(signals []risk.Signal) string {
	n := len(signals)
	if n > maxNamedSignals {
		n = maxNamedSignals
	}
	parts := make([]string, 0, n)
	for _, s := range signals[:n] {
		parts = append(parts, lowerFirst(s.Description))
	}
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[0] + ", and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], "; ") + "; and " + parts[len(parts)-1]
	}
}

// lowerFirst lowercases the leading letter so descriptions read as
// clauses mid-sentence.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'A' && s[0] <= 'Z' && !strings.HasPrefix(s, "You") && !strings.HasPrefix(s, "Your") {
		return strings.ToLower(s[:1]) + s[1:]
	}
	return s
}
