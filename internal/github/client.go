// Package github adapts the host platform API for the review dispatcher.
package github

import (
	"context"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/diffwatch/reviewbot/internal/domain"
)

// Client wraps the host API operations the bot needs.
type Client struct {
	gh *gh.Client
}

// NewClient builds an authenticated client from a personal access token.
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{gh: gh.NewClient(oauth2.NewClient(ctx, ts))}
}

// CompareCommits returns the changed files and commit range between two SHAs.
func (c *Client) CompareCommits(ctx context.Context, owner, repo, base, head string) (domain.Comparison, error) {
	cmp, _, err := c.gh.Repositories.CompareCommits(ctx, owner, repo, base, head, nil)
	if err != nil {
		return domain.Comparison{}, fmt.Errorf("compare %s...%s: %w", base, head, err)
	}

	out := domain.Comparison{}
	for _, f := range cmp.Files {
		out.Files = append(out.Files, domain.ChangedFile{
			Filename:    f.GetFilename(),
			Status:      domain.FileStatus(f.GetStatus()),
			Patch:       f.GetPatch(),
			ContentsURL: f.GetContentsURL(),
		})
	}
	for _, commit := range cmp.Commits {
		out.Commits = append(out.Commits, commit.GetSHA())
	}
	return out, nil
}

// CreateReviewComment posts an inline review comment at a diff-relative
// position on the given commit. A host rejection of the position surfaces as
// domain.ErrInvalidPosition.
func (c *Client) CreateReviewComment(ctx context.Context, owner, repo string, number int, commitSHA, path string, position int, body string) error {
	comment := &gh.PullRequestComment{
		Body:     gh.String(body),
		CommitID: gh.String(commitSHA),
		Path:     gh.String(path),
		Position: gh.Int(position),
	}
	_, resp, err := c.gh.PullRequests.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			return fmt.Errorf("%w: %v", domain.ErrInvalidPosition, err)
		}
		return fmt.Errorf("create review comment on %s: %w", path, err)
	}
	return nil
}

// CreateIssueComment posts a general comment on the pull request conversation.
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &gh.IssueComment{Body: gh.String(body)}
	if _, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, comment); err != nil {
		return fmt.Errorf("create issue comment: %w", err)
	}
	return nil
}
