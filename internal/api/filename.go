package api

import (
	"strings"
	"unicode"
)

// sanitizeFilename rewrites title into something safe inside a
// Content-Disposition filename. Letters, digits and a small set of
// punctuation pass through; everything else, including quotes and control
// characters, becomes an underscore. An empty result falls back to "audio".
func sanitizeFilename(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case strings.ContainsRune(" -_.()[]", r):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.TrimSpace(b.String())
	if strings.Trim(name, "_. ") == "" {
		return "audio"
	}
	return name
}
