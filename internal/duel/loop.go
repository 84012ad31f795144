// Package duel implements the two-judge refinement loop: a strict judge
// scores the current variant, an external collaborator refines it, and a
// lenient judge scores the refined text, repeating up to a round budget.
package duel

import (
	"context"
	"fmt"

	"github.com/jonathan/variantlab/internal/verdict"
)

// ScoringOracle scores variant text. Implementations never return an error;
// unavailability degrades to the fallback Verdict so the loop always
// terminates.
type ScoringOracle interface {
	Score(ctx context.Context, text string) verdict.Verdict
}

// RefinementOracle rewrites variant text guided by a judge's rationale.
type RefinementOracle interface {
	Refine(ctx context.Context, text, rationale string) (string, error)
}

// Config holds the duel loop parameters.
type Config struct {
	// Threshold is the score either judge must reach for success.
	Threshold int
	// StrongSignalBar triggers an immediate early exit when the strict
	// judge's adjusted score reaches it.
	StrongSignalBar int
	// MaxRounds is the round budget.
	MaxRounds int
	// SiblingCount enables the per-round mini-search: that many mutated
	// siblings of the refined text are scored by the strict judge and the
	// best one continues. Zero disables the mini-search.
	SiblingCount int
	// MinRefinementLen is the length below which a refinement result is
	// considered degenerate and replaced by the mutation fallback.
	MinRefinementLen int
	// ScaleMax is the top of the judges' scoring scale.
	ScaleMax int
	// Hedge adjustment policy: markers found in the strict judge's rationale
	// shift its numeric score before any decision is made. This counters
	// lexical hedging that diverges from the reported number. The marker
	// lists and shift amounts are tunable.
	HedgePenalty     int
	AgreementBonus   int
	HedgeMarkers     []string
	AgreementMarkers []string
}

// DefaultConfig returns the standard duel parameters.
func DefaultConfig() Config {
	return Config{
		Threshold:        7,
		StrongSignalBar:  8,
		MaxRounds:        8,
		SiblingCount:     0,
		MinRefinementLen: 40,
		ScaleMax:         verdict.DefaultScaleMax,
		HedgePenalty:     2,
		AgreementBonus:   1,
		HedgeMarkers:     []string{"partial", "partially", "somewhat", "unclear", "uneven", "inconsistent"},
		AgreementMarkers: []string{"clearly", "strongly", "excellent", "decisively"},
	}
}

// RoundRecord captures one round for observability.
type RoundRecord struct {
	Round         int    `json:"round"`
	StrictScore   int    `json:"strict_score"`
	AdjustedScore int    `json:"adjusted_score"`
	LenientScore  int    `json:"lenient_score"`
	Refined       bool   `json:"refined"`
	FallbackUsed  bool   `json:"fallback_used"`
	Rationale     string `json:"rationale,omitempty"`
	Text          string `json:"-"`
	SiblingBest   int    `json:"sibling_best,omitempty"`
}

// Result is the terminal outcome of a duel: always a best-effort answer,
// never a pending state.
type Result struct {
	Text             string        `json:"text"`
	Rounds           int           `json:"rounds"`
	BestStrictScore  int           `json:"best_strict_score"`
	BestLenientScore int           `json:"best_lenient_score"`
	Success          bool          `json:"success"`
	EarlyExit        bool          `json:"early_exit"`
	History          []RoundRecord `json:"history"`
}

// Loop runs duels between a strict and a lenient judge.
type Loop struct {
	strict  ScoringOracle
	lenient ScoringOracle
	refiner RefinementOracle
	// fallback always succeeds; it covers refiner failure and degenerate
	// refinements, and generates mini-search siblings.
	fallback RefinementOracle
	cfg      Config
}

// NewLoop creates a duel loop. The fallback refiner must never fail; pass a
// MutationRefiner.
func NewLoop(strict, lenient ScoringOracle, refiner, fallback RefinementOracle, cfg Config) *Loop {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultConfig().MaxRounds
	}
	if cfg.ScaleMax <= 0 {
		cfg.ScaleMax = verdict.DefaultScaleMax
	}
	return &Loop{strict: strict, lenient: lenient, refiner: refiner, fallback: fallback, cfg: cfg}
}

// Run executes the duel until success, early exit, or round exhaustion.
func (l *Loop) Run(ctx context.Context, initial string) (Result, error) {
	if initial == "" {
		return Result{}, fmt.Errorf("duel requires non-empty initial variant text")
	}

	res := Result{Text: initial}
	text := initial
	bestScore := -1

	record := func(candidate string, score int) {
		if score > bestScore {
			bestScore = score
			res.Text = candidate
		}
	}

	for round := 1; round <= l.cfg.MaxRounds; round++ {
		res.Rounds = round
		rec := RoundRecord{Round: round, Text: text}

		// Strict judge resolves first; refinement consumes its rationale.
		strictVerdict := l.strict.Score(ctx, text)
		adjusted := AdjustScore(strictVerdict, l.cfg)
		rec.StrictScore = strictVerdict.Score
		rec.AdjustedScore = adjusted
		rec.Rationale = strictVerdict.Rationale

		if adjusted > res.BestStrictScore {
			res.BestStrictScore = adjusted
		}
		record(text, adjusted)

		if adjusted >= l.cfg.StrongSignalBar {
			rec.LenientScore = -1
			res.History = append(res.History, rec)
			res.Success = true
			res.EarlyExit = true
			return res, nil
		}

		refined, err := l.refiner.Refine(ctx, text, strictVerdict.Rationale)
		if err != nil || len(refined) < l.cfg.MinRefinementLen {
			rec.FallbackUsed = true
			refined, err = l.fallback.Refine(ctx, text, strictVerdict.Rationale)
			if err != nil {
				return res, fmt.Errorf("fallback refinement failed: %w", err)
			}
		}
		rec.Refined = true

		lenientVerdict := l.lenient.Score(ctx, refined)
		rec.LenientScore = lenientVerdict.Score
		if lenientVerdict.Score > res.BestLenientScore {
			res.BestLenientScore = lenientVerdict.Score
		}
		record(refined, lenientVerdict.Score)

		if l.cfg.SiblingCount > 0 {
			refined, rec.SiblingBest = l.miniSearch(ctx, refined, strictVerdict.Rationale, &res, record)
		}

		res.History = append(res.History, rec)

		if adjusted >= l.cfg.Threshold || lenientVerdict.Score >= l.cfg.Threshold {
			res.Success = true
			return res, nil
		}

		text = refined
	}

	return res, nil
}

// miniSearch generates mutated siblings of the candidate, scores each with
// the strict judge, and returns the best of the candidate and its siblings.
func (l *Loop) miniSearch(ctx context.Context, candidate, rationale string, res *Result, record func(string, int)) (string, int) {
	bestText := candidate
	bestScore := AdjustScore(l.strict.Score(ctx, candidate), l.cfg)
	record(candidate, bestScore)

	for i := 0; i < l.cfg.SiblingCount; i++ {
		sibling, err := l.fallback.Refine(ctx, candidate, rationale)
		if err != nil {
			continue
		}
		score := AdjustScore(l.strict.Score(ctx, sibling), l.cfg)
		record(sibling, score)
		if score > bestScore {
			bestScore = score
			bestText = sibling
		}
	}

	if bestScore > res.BestStrictScore {
		res.BestStrictScore = bestScore
	}
	return bestText, bestScore
}
