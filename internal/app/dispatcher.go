// Package app orchestrates one review pass over a pull request.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/diffwatch/reviewbot/internal/config"
	"github.com/diffwatch/reviewbot/internal/domain"
	"github.com/diffwatch/reviewbot/internal/patch"
	"github.com/diffwatch/reviewbot/internal/secrets"
)

// Host is the slice of the host platform API the dispatcher uses.
type Host interface {
	CompareCommits(ctx context.Context, owner, repo, base, head string) (domain.Comparison, error)
	CreateReviewComment(ctx context.Context, owner, repo string, number int, commitSHA, path string, position int, body string) error
	CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) error
}

// Reviewer produces a verdict for one patch.
type Reviewer interface {
	CodeReview(ctx context.Context, patch string) (domain.Verdict, error)
}

// ReviewerFactory builds a Reviewer once the service credential is resolved.
type ReviewerFactory func(apiKey string) (Reviewer, error)

// Event is one webhook delivery the dispatcher acts on.
type Event struct {
	Action string
	Owner  string
	Repo   string
	PR     domain.PullRequest
}

// Dispatch statuses reported for gated or completed invocations.
const (
	StatusInvalidEvent = "invalid event"
	StatusNoLabel      = "target label not attached"
	StatusNoCredential = "no review service credential"
	StatusNoChange     = "no change"
	StatusSuccess      = "success"
)

// positionFallbackNote prefixes general comments posted when an inline position
// could not be used.
const positionFallbackNote = "Note: the comment position could not be resolved in the diff, so this review is posted as a general comment."

// credentialHint is posted once when the review-service credential is missing.
const credentialHint = "The review service credential is not configured for this repository. " +
	"Set the `OPENAI_API_KEY` secret (or the secret named by `api_key_name`) to enable automated reviews."

// Dispatcher runs the review pass: event gating, file filtering, per-file
// review and comment placement.
type Dispatcher struct {
	cfg         *config.Config
	log         *zap.SugaredLogger
	host        Host
	secrets     secrets.Store
	newReviewer ReviewerFactory
}

// NewDispatcher wires the dispatcher with its collaborators.
func NewDispatcher(cfg *config.Config, log *zap.SugaredLogger, host Host, store secrets.Store, factory ReviewerFactory) *Dispatcher {
	return &Dispatcher{
		cfg:         cfg,
		log:         log,
		host:        host,
		secrets:     store,
		newReviewer: factory,
	}
}

// Run handles one delivery to completion and returns a short status string.
// Per-file failures are logged and isolated; only setup failures outside the
// per-file loop surface as errors.
func (d *Dispatcher) Run(ctx context.Context, ev Event) (string, error) {
	pr := &ev.PR
	log := d.log.With("repo", ev.Owner+"/"+ev.Repo, "pr", pr.Number)

	if pr.State == "closed" || pr.Locked {
		log.Infow("skipping review", "reason", "pull request closed or locked")
		return StatusInvalidEvent, nil
	}
	if label := d.cfg.Review.TargetLabel; label != "" && !pr.HasLabel(label) {
		log.Infow("skipping review", "reason", "required label missing", "label", label)
		return StatusNoLabel, nil
	}

	apiKey, err := d.secrets.Get(d.cfg.Review.APIKeyName)
	if err != nil {
		log.Warnw("review credential unavailable", "secret", d.cfg.Review.APIKeyName, "error", err)
		if err := d.host.CreateIssueComment(ctx, ev.Owner, ev.Repo, pr.Number, credentialHint); err != nil {
			log.Errorw("failed to post credential hint", "error", err)
		}
		return StatusNoCredential, nil
	}

	reviewer, err := d.newReviewer(apiKey)
	if err != nil {
		return "", fmt.Errorf("initializing reviewer: %w", err)
	}

	cmp, err := d.host.CompareCommits(ctx, ev.Owner, ev.Repo, pr.BaseSHA, pr.HeadSHA)
	if err != nil {
		return "", fmt.Errorf("comparing commits: %w", err)
	}

	// Incremental review: on synchronize only the newly pushed commit is
	// reviewed, not the whole base...head range.
	if ev.Action == "synchronize" && len(cmp.Commits) >= 2 {
		prev, last := cmp.Commits[len(cmp.Commits)-2], cmp.Commits[len(cmp.Commits)-1]
		cmp, err = d.host.CompareCommits(ctx, ev.Owner, ev.Repo, prev, last)
		if err != nil {
			return "", fmt.Errorf("comparing last two commits: %w", err)
		}
	}

	commitSHA := pr.HeadSHA
	if len(cmp.Commits) > 0 {
		commitSHA = cmp.Commits[len(cmp.Commits)-1]
	}

	files := d.cfg.Filter.Rules().Apply(cmp.Files)
	if len(files) == 0 {
		log.Infow("nothing to review after filtering")
		return StatusNoChange, nil
	}

	for i := range files {
		f := &files[i]
		if err := d.reviewFile(ctx, reviewer, ev, commitSHA, f); err != nil {
			log.Errorw("file review failed", "file", f.Filename, "error", err)
		}
	}
	return StatusSuccess, nil
}

// reviewFile reviews a single file and reconciles the verdict with a comment
// action. Returned errors are confined to this file by the caller.
func (d *Dispatcher) reviewFile(ctx context.Context, reviewer Reviewer, ev Event, commitSHA string, f *domain.ChangedFile) error {
	if !f.Reviewable(d.cfg.Review.MaxPatchLength) {
		d.log.Debugw("file not eligible", "file", f.Filename, "status", f.Status, "patch_len", len(f.Patch))
		return nil
	}

	verdict, err := reviewer.CodeReview(ctx, f.Patch)
	if err != nil {
		return fmt.Errorf("review service: %w", err)
	}
	if !verdict.RequestsChanges() {
		return nil
	}

	pos := patch.ResolvePosition(f.Patch)
	if pos == patch.NoPosition {
		return d.postFallback(ctx, ev, f, verdict.Comment)
	}

	err = d.host.CreateReviewComment(ctx, ev.Owner, ev.Repo, ev.PR.Number, commitSHA, f.Filename, pos, verdict.Comment)
	if errors.Is(err, domain.ErrInvalidPosition) {
		d.log.Warnw("inline position rejected, falling back", "file", f.Filename, "position", pos)
		return d.postFallback(ctx, ev, f, verdict.Comment)
	}
	return err
}

func (d *Dispatcher) postFallback(ctx context.Context, ev Event, f *domain.ChangedFile, comment string) error {
	body := fmt.Sprintf("%s\n\n**%s**\n\n%s", positionFallbackNote, f.Filename, comment)
	return d.host.CreateIssueComment(ctx, ev.Owner, ev.Repo, ev.PR.Number, body)
}
