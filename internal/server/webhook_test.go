package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diffwatch/reviewbot/internal/app"
	"github.com/diffwatch/reviewbot/internal/config"
)

type recordingRunner struct {
	events chan app.Event
}

func (r *recordingRunner) Run(_ context.Context, ev app.Event) (string, error) {
	r.events <- ev
	return app.StatusSuccess, nil
}

func newTestServer(t *testing.T, secret string) (*Server, *recordingRunner) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.GitHub.WebhookSecret = secret
	runner := &recordingRunner{events: make(chan app.Event, 1)}
	s, err := New(cfg, zap.NewNop().Sugar(), runner)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })
	return s, runner
}

func prPayload(t *testing.T, action string, draft bool) []byte {
	t.Helper()
	payload := map[string]any{
		"action": action,
		"number": 42,
		"pull_request": map[string]any{
			"number":   42,
			"state":    "open",
			"locked":   false,
			"draft":    draft,
			"html_url": "https://github.com/octo/widgets/pull/42",
			"labels":   []map[string]any{{"name": "bug"}},
			"base":     map[string]any{"sha": "base-sha"},
			"head":     map[string]any{"sha": "head-sha"},
		},
		"repository": map[string]any{
			"name":  "widgets",
			"owner": map[string]any{"login": "octo"},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func postWebhook(t *testing.T, s *Server, event string, body []byte, sign string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(eventTypeHeader, event)
	req.Header.Set(deliveryHeader, "delivery-1")
	if sign != "" {
		req.Header.Set(signatureHeader, sign)
	}
	resp, err := s.App().Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookDispatchesPullRequestEvent(t *testing.T) {
	s, runner := newTestServer(t, "")

	resp := postWebhook(t, s, "pull_request", prPayload(t, "opened", false), "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "accepted", string(out))

	select {
	case ev := <-runner.events:
		require.Equal(t, "opened", ev.Action)
		require.Equal(t, "octo", ev.Owner)
		require.Equal(t, "widgets", ev.Repo)
		require.Equal(t, 42, ev.PR.Number)
		require.Equal(t, "base-sha", ev.PR.BaseSHA)
		require.Equal(t, "head-sha", ev.PR.HeadSHA)
		require.Equal(t, []string{"bug"}, ev.PR.Labels)
	case <-time.After(2 * time.Second):
		t.Fatal("runner was not invoked")
	}
}

func TestWebhookIgnoresUninterestingEvents(t *testing.T) {
	s, runner := newTestServer(t, "")

	// Non-PR event.
	resp := postWebhook(t, s, "ping", []byte(`{"zen":"keep it simple"}`), "")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Closing a PR does not trigger review.
	resp = postWebhook(t, s, "pull_request", prPayload(t, "closed", false), "")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Draft PRs are skipped.
	resp = postWebhook(t, s, "pull_request", prPayload(t, "opened", true), "")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case ev := <-runner.events:
		t.Fatalf("unexpected dispatch for %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWebhookSignatureValidation(t *testing.T) {
	const secret = "hush"
	s, runner := newTestServer(t, secret)
	body := prPayload(t, "opened", false)

	resp := postWebhook(t, s, "pull_request", body, "")
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postWebhook(t, s, "pull_request", body, "sha256=deadbeef")
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postWebhook(t, s, "pull_request", body, signBody(secret, body))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case <-runner.events:
	case <-time.After(2 * time.Second):
		t.Fatal("runner was not invoked for a valid signature")
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
