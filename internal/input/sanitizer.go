package input

import (
	"regexp"
	"strings"
)

// Patterns stripped from free-text narratives before storage. Health
// narratives never legitimately contain markup or script fragments.
var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	scriptPattern     = regexp.MustCompile(`(?i)javascript:|eval\s*\(|on\w+\s*=|document\.(cookie|location|write)`)
	controlPattern    = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeText strips markup, script fragments, and control characters
// from a symptom narrative and collapses whitespace. An input that is
// only noise sanitizes to the empty string.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	text = htmlTagPattern.ReplaceAllString(text, " ")
	text = scriptPattern.ReplaceAllString(text, " ")
	text = controlPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
