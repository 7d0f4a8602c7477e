package pipeline

import "strings"

var typographyReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"–", "-",
	"—", "--",
	"…", "...",
)

// CleanScript replaces typographic quotes, dashes and ellipses with their
// ASCII forms and trims surrounding whitespace.
func CleanScript(script string) string {
	return strings.TrimSpace(typographyReplacer.Replace(script))
}

// truncateRunes shortens s to at most max runes, marking the cut.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "\n[truncated]"
}
