// Package refine provides LLM-backed variant refinement. A refiner rewrites
// variant text guided by a judge's rationale; callers fall back to pure
// mutation when refinement fails or degenerates.
package refine

import (
	"context"
	"strings"

	"github.com/jonathan/variantlab/internal/judge"
	"github.com/jonathan/variantlab/internal/prompts"
)

// LLMRefiner rewrites variant text through a judge.Client.
type LLMRefiner struct {
	client judge.Client
	model  string
	retry  judge.RetryConfig
}

// NewLLMRefiner creates a refiner over the given client and model.
func NewLLMRefiner(client judge.Client, model string, retry judge.RetryConfig) *LLMRefiner {
	return &LLMRefiner{client: client, model: model, retry: retry}
}

// Refine asks the model to revise the text per the rationale. Errors
// propagate after the retry budget; degenerate results are the caller's
// concern (the duel loop checks its own minimum length).
func (r *LLMRefiner) Refine(ctx context.Context, text, rationale string) (string, error) {
	template, err := prompts.Get("refine.json", "refine")
	if err != nil {
		return "", err
	}

	prompt := prompts.Format(template, map[string]string{
		"Text":      text,
		"Rationale": rationale,
	})

	var out string
	err = judge.WithRetry(ctx, r.retry, func(ctx context.Context) error {
		var queryErr error
		out, queryErr = r.client.Query(ctx, prompt, r.model, nil)
		return queryErr
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
