package domain

import "strings"

// Verdict is the outcome of sending one patch to the review service.
type Verdict struct {
	LGTM    bool   `json:"lgtm"`
	Comment string `json:"review_comment"`
}

// RequestsChanges reports whether the verdict carries actionable feedback.
// An approved verdict, or one with no comment text, requires no action.
func (v Verdict) RequestsChanges() bool {
	return !v.LGTM && strings.TrimSpace(v.Comment) != ""
}
