package strings

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short unchanged", "numpy", 10, "numpy"},
		{"exact length unchanged", "numpy", 5, "numpy"},
		{"cut with ellipsis", "scipy-0.17.0-np111py27_0", 12, "scipy-0.1..."},
		{"whitespace collapsed", "build\n\tfailed   here", 40, "build failed here"},
		{"whitespace only", " \n\t ", 10, ""},
		{"clamped to minimum", "numpy", 1, "n..."},
		{"negative clamped", "numpy", -3, "n..."},
		{"runes not bytes", "日本語テスト", 5, "日本..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.maxLen))
		})
	}
}

func TestTruncateLeft(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short unchanged", "/srv/conda", 20, "/srv/conda"},
		{"keeps the end", "https://conda.anaconda.org/owner/linux-64/", 16, "...ner/linux-64/"},
		{"clamped to minimum", "/srv/conda", 0, "...a"},
		{"runes not bytes", "日本語テスト", 5, "...スト"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateLeft(tt.input, tt.maxLen)
			assert.Equal(t, tt.expected, got)
			if tt.maxLen >= MinTruncateLen {
				assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.maxLen)
			}
		})
	}
}
