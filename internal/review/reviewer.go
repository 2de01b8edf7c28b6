// Package review sends patches to an LLM and interprets the verdict.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	oai "github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/diffwatch/reviewbot/internal/config"
	"github.com/diffwatch/reviewbot/internal/domain"
)

// Reviewer performs per-patch code review using an LLM.
type Reviewer struct {
	config  config.ReviewConfig
	log     *zap.SugaredLogger
	genkit  *genkit.Genkit
	modelID string
	limiter *rate.Limiter
}

// NewReviewer creates a Reviewer for the configured provider using the given
// API key.
func NewReviewer(cfg config.ReviewConfig, apiKey string, log *zap.SugaredLogger) (*Reviewer, error) {
	ctx := context.Background()

	var g *genkit.Genkit
	var modelID string

	switch cfg.Provider {
	case "openai":
		// OpenAI-compatible API, optionally behind a custom endpoint.
		var opts []option.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}

		modelID = cfg.Model
		if modelID == "" {
			modelID = "gpt-4o-mini"
		}
		if !strings.Contains(modelID, "/") {
			modelID = "openai/" + modelID
		}

		g = genkit.Init(ctx,
			genkit.WithDefaultModel(modelID),
			genkit.WithPlugins(&oai.OpenAI{
				APIKey: apiKey,
				Opts:   opts,
			}),
		)

	case "googleai":
		modelID = cfg.Model
		if modelID == "" {
			modelID = "gemini-2.0-flash"
		}
		if !strings.Contains(modelID, "/") {
			modelID = "googleai/" + modelID
		}

		g = genkit.Init(ctx,
			genkit.WithDefaultModel(modelID),
			genkit.WithPlugins(&googlegenai.GoogleAI{
				APIKey: apiKey,
			}),
		)

	default:
		return nil, fmt.Errorf("unknown review provider %q", cfg.Provider)
	}

	return &Reviewer{
		config:  cfg,
		log:     log,
		genkit:  g,
		modelID: modelID,
		// One request per second with a small burst keeps multi-file pull
		// requests under provider rate limits.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}, nil
}

// CodeReview reviews a single unified-diff patch and returns the verdict.
func (r *Reviewer) CodeReview(ctx context.Context, patch string) (domain.Verdict, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.Verdict{}, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	answer, err := genkit.GenerateText(ctx, r.genkit,
		ai.WithModelName(r.modelID),
		ai.WithPrompt(buildPrompt(patch)),
	)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("generating review: %w", err)
	}

	verdict, err := parseVerdict(answer)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("parsing response: %w", err)
	}
	return verdict, nil
}

func buildPrompt(patch string) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n## Patch to Review\n\n```diff\n")
	sb.WriteString(patch)
	sb.WriteString("\n```\n")
	sb.WriteString(outputInstructions)
	return sb.String()
}

// parseVerdict extracts the JSON verdict from the model answer, tolerating
// markdown code fences around it.
func parseVerdict(text string) (domain.Verdict, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
	}

	text = strings.TrimSpace(text)

	var verdict domain.Verdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return domain.Verdict{}, fmt.Errorf("failed to parse JSON: %w\nResponse was: %s", err, text)
	}
	return verdict, nil
}

const systemPrompt = `You are a senior software engineer reviewing one file of a pull request. You see only the unified diff of that file.

## Your Review Principles

1. **Signal over noise** – Only flag issues that genuinely matter. If the change looks fine, approve it.
2. **Mentor mindset** – Explain why something is a problem, not just that it is one.
3. **Context-aware** – Consider the language and apparent intent.
4. **No nitpicking** – Ignore formatting, naming style, and minor preferences.
5. **Evidence-based** – Only flag issues you can point to in the diff.

## What to Look For

- **Bugs**: Logic errors, edge cases, null/nil handling, race conditions
- **Security**: Injection risks, auth issues, sensitive data exposure
- **Data integrity**: Missing validation, transaction issues
- **Design**: Tight coupling, missing abstractions
- **Performance**: Obvious inefficiencies, memory leaks`

const outputInstructions = `
## Required Output Format

Respond with a JSON object in this exact format:

{
  "lgtm": true or false,
  "review_comment": "Your feedback in GitHub-flavored markdown, or an empty string when approving"
}

Set "lgtm" to true when the change needs no action. Set it to false and fill
"review_comment" when you want the author to make changes.

Respond ONLY with the JSON object, no additional text.`
