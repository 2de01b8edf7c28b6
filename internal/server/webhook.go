package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	gh "github.com/google/go-github/v57/github"

	"github.com/diffwatch/reviewbot/internal/app"
	"github.com/diffwatch/reviewbot/internal/domain"
)

const (
	eventTypeHeader = "X-GitHub-Event"
	signatureHeader = "X-Hub-Signature-256"
	deliveryHeader  = "X-GitHub-Delivery"
)

// triggerActions are the pull_request actions that start a review pass.
var triggerActions = map[string]bool{
	"opened":           true,
	"reopened":         true,
	"ready_for_review": true,
	"synchronize":      true,
}

func (s *Server) handleWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if secret := s.cfg.GitHub.WebhookSecret; secret != "" {
		if err := gh.ValidateSignature(c.Get(signatureHeader), body, []byte(secret)); err != nil {
			s.log.Warnw("webhook signature rejected", "delivery", c.Get(deliveryHeader), "error", err)
			return c.SendStatus(fiber.StatusUnauthorized)
		}
	}

	payload, err := gh.ParseWebHook(c.Get(eventTypeHeader), body)
	if err != nil {
		s.log.Warnw("unparseable webhook payload", "delivery", c.Get(deliveryHeader), "error", err)
		return c.SendStatus(fiber.StatusBadRequest)
	}

	event, ok := payload.(*gh.PullRequestEvent)
	if !ok {
		return c.SendString("ignored")
	}
	if !triggerActions[event.GetAction()] || event.GetPullRequest().GetDraft() {
		return c.SendString("ignored")
	}

	ev := toEvent(event)
	delivery := c.Get(deliveryHeader)

	if err := s.pool.Submit(func() {
		status, err := s.runner.Run(context.Background(), ev)
		if err != nil {
			s.log.Errorw("review dispatch failed", "delivery", delivery, "pr", ev.PR.Number, "error", err)
			return
		}
		s.log.Infow("review dispatch finished", "delivery", delivery, "pr", ev.PR.Number, "status", status)
	}); err != nil {
		s.log.Errorw("failed to queue delivery", "delivery", delivery, "error", err)
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("accepted")
}

// toEvent projects the webhook payload onto the dispatcher's event view.
func toEvent(e *gh.PullRequestEvent) app.Event {
	pr := e.GetPullRequest()

	var labels []string
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}

	return app.Event{
		Action: e.GetAction(),
		Owner:  e.GetRepo().GetOwner().GetLogin(),
		Repo:   e.GetRepo().GetName(),
		PR: domain.PullRequest{
			Number:  pr.GetNumber(),
			State:   pr.GetState(),
			Locked:  pr.GetLocked(),
			Draft:   pr.GetDraft(),
			Labels:  labels,
			BaseSHA: pr.GetBase().GetSHA(),
			HeadSHA: pr.GetHead().GetSHA(),
			HTMLURL: pr.GetHTMLURL(),
		},
	}
}
