// Package fitness reduces judge verdicts and genome complexity into a scalar
// fitness value for the evolutionary search.
package fitness

import (
	"github.com/jonathan/variantlab/internal/evolution"
)

// Qualitative tags attached to evaluation results for observability.
const (
	TagThresholdMet  = "threshold-met"
	TagHighAgreement = "high-agreement"
	TagEfficient     = "efficient"
	TagStandard      = "standard"
)

// Config holds the fitness model parameters.
type Config struct {
	// WeightA and WeightB weight the two judges' scores.
	WeightA float64
	WeightB float64
	// ThresholdBonus is added when both scores meet Threshold simultaneously.
	ThresholdBonus float64
	// EfficiencyFactor penalizes each modifier carried by the genome.
	EfficiencyFactor float64
	// ConsistencyFactor rewards judge agreement.
	ConsistencyFactor float64
	// AllowedDiff is the score difference at which the consistency bonus
	// reaches zero.
	AllowedDiff float64
	// Threshold is the per-judge score required for the threshold bonus.
	Threshold int
}

// DefaultConfig returns the standard fitness parameters.
func DefaultConfig() Config {
	return Config{
		WeightA:           0.5,
		WeightB:           0.5,
		ThresholdBonus:    2.0,
		EfficiencyFactor:  0.1,
		ConsistencyFactor: 0.1,
		AllowedDiff:       5,
		Threshold:         7,
	}
}

// Result is one genome's evaluated fitness plus observability tags.
type Result struct {
	Genome       evolution.Genome
	ScoreA       int
	ScoreB       int
	Fitness      float64
	ThresholdMet bool
	Tags         []string
}

// Evaluator computes multi-objective fitness from two judge scores.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an evaluator. A zero-value config is replaced by
// DefaultConfig.
func NewEvaluator(cfg Config) *Evaluator {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Evaluator{cfg: cfg}
}

// Evaluate computes the combined fitness for a genome scored by two judges:
// the weighted score sum, plus a binary bonus when both judges clear the
// threshold, plus an agreement bonus shrinking with score divergence, minus
// a complexity penalty per modifier. The genome in the result carries the
// computed fitness.
func (e *Evaluator) Evaluate(genome evolution.Genome, scoreA, scoreB int) Result {
	weighted := float64(scoreA)*e.cfg.WeightA + float64(scoreB)*e.cfg.WeightB

	thresholdMet := scoreA >= e.cfg.Threshold && scoreB >= e.cfg.Threshold
	bonus := 0.0
	if thresholdMet {
		bonus = e.cfg.ThresholdBonus
	}

	diff := float64(scoreA - scoreB)
	if diff < 0 {
		diff = -diff
	}
	consistency := (e.cfg.AllowedDiff - diff) * e.cfg.ConsistencyFactor
	if consistency < 0 {
		consistency = 0
	}

	penalty := float64(len(genome.Modifiers)) * e.cfg.EfficiencyFactor

	combined := weighted + bonus + consistency - penalty
	genome.Fitness = combined

	var tags []string
	if thresholdMet {
		tags = append(tags, TagThresholdMet)
	}
	if diff <= 1 {
		tags = append(tags, TagHighAgreement)
	}
	if len(genome.Modifiers) <= 2 {
		tags = append(tags, TagEfficient)
	}
	if len(tags) == 0 {
		tags = append(tags, TagStandard)
	}

	return Result{
		Genome:       genome,
		ScoreA:       scoreA,
		ScoreB:       scoreB,
		Fitness:      combined,
		ThresholdMet: thresholdMet,
		Tags:         tags,
	}
}
