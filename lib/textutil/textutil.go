package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeToken lowercases a cell or label and strips all whitespace so
// markup variations ("Change %", "change%") compare equal.
func NormalizeToken(s string) string {
	s = strings.ToLower(s)
	s = strings.Trim(s, " \n\t")
	s = whitespaceRegex.ReplaceAllString(s, "")
	return s
}

// MatchToken reports whether the normalized form of s contains any of the
// given matchers. Matchers are assumed to already be normalized.
func MatchToken(s string, matchers []string) bool {
	s = NormalizeToken(s)
	for _, m := range matchers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// CollapseSpace trims s and folds embedded newlines, tabs and runs of
// spaces into single spaces.
func CollapseSpace(s string) string {
	s = strings.Trim(s, " \n\t")
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// Truncate bounds s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
