// Package patch maps unified-diff text onto the host API's diff-relative
// comment positioning scheme.
package patch

import "strings"

// NoPosition is returned when a patch has no commentable line.
const NoPosition = 0

// ResolvePosition returns the 1-based position of the first added line of the
// patch, counting every line of the diff text (hunk headers, context, additions
// and deletions all count). The "+++" file header is not an addition. Patches
// with no added lines, including malformed ones, resolve to NoPosition.
func ResolvePosition(patch string) int {
	for i, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			return i + 1
		}
	}
	return NoPosition
}
