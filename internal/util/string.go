package util

import (
	"regexp"
	"strings"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Normalize performs basic string normalization (lowercase + trim).
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CacheKey derives the cache key for a subject name: lower-cased, trimmed,
// whitespace runs collapsed to a single dash.
func CacheKey(name string) string {
	return whitespaceRuns.ReplaceAllString(Normalize(name), "-")
}

// CollapseWhitespace trims and collapses interior whitespace runs to a
// single space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}

// CutRunes hard-truncates a string to maxRunes characters (rune-based, not
// byte-based). No continuation marker is appended; callers that need one
// should add it themselves.
func CutRunes(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// FirstToken returns the first whitespace-separated token of a name.
func FirstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
