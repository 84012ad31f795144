package judge

import (
	"context"
	"strconv"
	"time"

	"github.com/jonathan/variantlab/internal/prompts"
	"github.com/jonathan/variantlab/internal/verdict"
)

// OracleConfig configures a scoring oracle.
type OracleConfig struct {
	// Model is the provider model name queried for every score.
	Model string
	// PromptKey selects the judge prompt from prompts/judge.json
	// ("strict" or "lenient").
	PromptKey string
	// ScaleMax is the top of the scoring scale (default 10).
	ScaleMax int
	// Temperature for the judge call; low values keep scoring consistent.
	Temperature float32
	// Retry bounds the per-score retry policy.
	Retry RetryConfig
	// Timeout is the overall budget for one score, retries included.
	Timeout time.Duration
}

// DefaultOracleConfig returns the standard oracle settings for a model and
// prompt key.
func DefaultOracleConfig(model, promptKey string) OracleConfig {
	return OracleConfig{
		Model:       model,
		PromptKey:   promptKey,
		ScaleMax:    verdict.DefaultScaleMax,
		Temperature: 0.1,
		Retry:       DefaultRetryConfig(),
		Timeout:     60 * time.Second,
	}
}

// Oracle scores variant text with one judge model. Score never returns an
// error: retry exhaustion and unparseable responses both degrade to the
// fallback Verdict, so callers' loops always terminate.
type Oracle struct {
	client Client
	cfg    OracleConfig
	parser *verdict.Parser
}

// NewOracle creates a scoring oracle over the given client.
func NewOracle(client Client, cfg OracleConfig) *Oracle {
	if cfg.ScaleMax <= 0 {
		cfg.ScaleMax = verdict.DefaultScaleMax
	}
	return &Oracle{
		client: client,
		cfg:    cfg,
		parser: verdict.NewParser(cfg.ScaleMax),
	}
}

// Model returns the model name this oracle queries.
func (o *Oracle) Model() string { return o.cfg.Model }

// Score queries the judge for the given text and parses the response into a
// Verdict. On retry exhaustion it returns the fallback Verdict carrying the
// final error as its diagnostic.
func (o *Oracle) Score(ctx context.Context, text string) verdict.Verdict {
	template, err := prompts.Get("judge.json", o.cfg.PromptKey)
	if err != nil {
		return verdict.Fallback(err.Error())
	}

	prompt := prompts.Format(template, map[string]string{
		"Text":     text,
		"ScaleMax": strconv.Itoa(o.cfg.ScaleMax),
	})

	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	var raw string
	err = WithRetry(ctx, o.cfg.Retry, func(ctx context.Context) error {
		var queryErr error
		raw, queryErr = o.client.Query(ctx, prompt, o.cfg.Model, &QueryOptions{
			Temperature: o.cfg.Temperature,
		})
		return queryErr
	})
	if err != nil {
		return verdict.Fallback("judge unavailable: " + err.Error())
	}

	return o.parser.Parse(raw)
}
