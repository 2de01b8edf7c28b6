package domain

import (
	"net/url"
	"strings"
)

// FileStatus is the change kind reported by the commit-comparison API.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusRemoved  FileStatus = "removed"
	StatusRenamed  FileStatus = "renamed"
)

// ChangedFile is one file touched between two commits. Immutable once fetched.
type ChangedFile struct {
	Filename    string
	Status      FileStatus
	Patch       string
	ContentsURL string
}

// Path returns the canonical, percent-decoded path of the file. It is derived
// from the contents URL when one is present, falling back to the raw filename.
func (f *ChangedFile) Path() string {
	if f.ContentsURL != "" {
		if u, err := url.Parse(f.ContentsURL); err == nil {
			p := u.Path
			if i := strings.Index(p, "/contents/"); i != -1 {
				p = p[i+len("/contents/"):]
			}
			if decoded, err := url.PathUnescape(p); err == nil {
				p = decoded
			}
			if p != "" {
				return p
			}
		}
	}
	return f.Filename
}

// Reviewable reports whether the file is eligible for review: added or
// modified, with a non-empty patch no longer than maxPatch bytes (maxPatch <= 0
// means unbounded).
func (f *ChangedFile) Reviewable(maxPatch int) bool {
	if f.Status != StatusAdded && f.Status != StatusModified {
		return false
	}
	if f.Patch == "" {
		return false
	}
	if maxPatch > 0 && len(f.Patch) > maxPatch {
		return false
	}
	return true
}

// Comparison is the result of comparing two commits.
type Comparison struct {
	Files   []ChangedFile
	Commits []string // commit SHAs, oldest first
}
