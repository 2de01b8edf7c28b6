// Package filter decides which changed files are reviewed.
package filter

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchPatterns reports whether the path matches at least one of the patterns.
// Each pattern is tried as a glob first: a leading "/" anchors it at the
// repository root, a leading "**" is used as-is, and anything else is prefixed
// with "**/" so it matches at any depth. A pattern that is not a valid glob is
// retried as a regular expression; a pattern invalid in both forms contributes
// no match.
func MatchPatterns(patterns []string, path string) bool {
	for _, p := range patterns {
		if matchOne(p, path) {
			return true
		}
	}
	return false
}

func matchOne(pattern, path string) bool {
	glob := pattern
	switch {
	case strings.HasPrefix(pattern, "/"):
		glob = strings.TrimPrefix(pattern, "/")
	case strings.HasPrefix(pattern, "**"):
		// keep as-is
	default:
		glob = "**/" + pattern
	}

	ok, err := doublestar.Match(glob, path)
	if err == nil {
		return ok
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(path)
}
