package logging

import (
	"strings"
	"unicode"
)

const maxLoggedText = 64

// SanitizeText prepares user-typed input (search boxes) for a log line:
// control characters become spaces and long values are cut with an ellipsis.
func SanitizeText(raw string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) { return ' ' }
		return r
	}, raw)
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxLoggedText {
		s = string(r[:maxLoggedText-1]) + "…"
	}
	return s
}
