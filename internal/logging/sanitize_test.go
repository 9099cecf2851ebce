package logging

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  mario  ", "mario"},
		{"a\nb\tc", "a b c"},
		{"100%", "100%"},
		{"", ""},
	}
	for _, c := range cases {
		got := SanitizeText(c.in)
		if got != c.want {
			t.Errorf("SanitizeText(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeTextTruncates(t *testing.T) {
	got := SanitizeText(strings.Repeat("x", 200))
	if n := len([]rune(got)); n != maxLoggedText {
		t.Fatalf("len=%d want %d", n, maxLoggedText)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis, got %q", got)
	}
}
