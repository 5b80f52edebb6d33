package strings

import (
	"strings"
)

// DefaultLocationMaxLen is the width locations and recipe paths are cut to
// in table output.
const DefaultLocationMaxLen = 48

// MinTruncateLen is the smallest maxLen accepted by the truncate functions.
// Anything shorter leaves no room for content next to "...".
const MinTruncateLen = 4

// Truncate cuts s to maxLen runes on a single line, ending it with "..."
// when something was cut. Runs of whitespace, newlines included, become one
// space.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// TruncateLeft is Truncate for paths and URLs: it keeps the end of s, which
// names the file or channel, and starts the result with "..." instead.
func TruncateLeft(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return "..." + string(runes[len(runes)-maxLen+3:])
	}
	return s
}
