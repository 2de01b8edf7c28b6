package domain

// PullRequest is the slice of the webhook payload the bot acts on.
type PullRequest struct {
	Number  int
	State   string
	Locked  bool
	Draft   bool
	Labels  []string
	BaseSHA string
	HeadSHA string
	HTMLURL string
}

// HasLabel reports whether the pull request carries the named label.
func (p *PullRequest) HasLabel(name string) bool {
	for _, l := range p.Labels {
		if l == name {
			return true
		}
	}
	return false
}
