package api

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain title", "My Song", "My Song"},
		{"allowed punctuation", "Mix (Part 1) [HD] - v2.0_final", "Mix (Part 1) [HD] - v2.0_final"},
		{"path separators", "a/b\\c", "a_b_c"},
		{"quotes", `say "hi"`, "say _hi_"},
		{"header injection", "x\r\nContent-Type: text/html", "x__Content-Type_ text_html"},
		{"unicode letters kept", "Émilie à Paris", "Émilie à Paris"},
		{"empty", "", "audio"},
		{"only unsafe characters", `"/\:*?<>|`, "audio"},
		{"only whitespace", "   ", "audio"},
		{"leading and trailing spaces trimmed", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.title); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
