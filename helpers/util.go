package helpers

import (
	"errors"
	"strings"
	"unicode/utf8"
)

func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}

// Truncate cuts s to at most limit characters, appending an ellipsis marker
// when the original was longer. The limit counts runes, not bytes, so a
// multi-byte character at the boundary is never split.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

// FirstSentence returns everything up to the first sentence terminator,
// with an ellipsis marker appended.
func FirstSentence(s string) string {
	if s == "" {
		return ""
	}
	if idx := strings.IndexAny(s, ".!?"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s) + "..."
}
