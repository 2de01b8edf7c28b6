package filter

import "github.com/diffwatch/reviewbot/internal/domain"

// Rules holds the three independently sourced rule sets applied to the changed
// files of one review pass. Read once from configuration, never mutated.
type Rules struct {
	IgnoreList      []string // exact path matches
	IgnorePatterns  []string // glob/regex patterns
	IncludePatterns []string // glob/regex patterns; presence bypasses ignores
}

// Apply returns the subset of files to review, evaluated against each file's
// decoded URL path. An empty result is a valid outcome, not an error.
func (r Rules) Apply(files []domain.ChangedFile) []domain.ChangedFile {
	var kept []domain.ChangedFile
	for _, f := range files {
		if r.keep(f.Path()) {
			kept = append(kept, f)
		}
	}
	return kept
}

func (r Rules) keep(path string) bool {
	// Include patterns are exclusive: when configured, they alone decide.
	if len(r.IncludePatterns) > 0 {
		return MatchPatterns(r.IncludePatterns, path)
	}
	for _, ignored := range r.IgnoreList {
		if path == ignored {
			return false
		}
	}
	if len(r.IgnorePatterns) > 0 {
		return !MatchPatterns(r.IgnorePatterns, path)
	}
	return true
}
