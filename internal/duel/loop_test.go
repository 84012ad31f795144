package duel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/variantlab/internal/entropy"
	"github.com/jonathan/variantlab/internal/verdict"
)

// scriptedOracle returns verdicts in sequence, repeating the last one.
type scriptedOracle struct {
	verdicts []verdict.Verdict
	calls    int
}

func (o *scriptedOracle) Score(ctx context.Context, text string) verdict.Verdict {
	idx := o.calls
	o.calls++
	if idx >= len(o.verdicts) {
		idx = len(o.verdicts) - 1
	}
	return o.verdicts[idx]
}

// fixedRefiner returns a fixed refinement, or an error.
type fixedRefiner struct {
	out   string
	err   error
	calls int
}

func (r *fixedRefiner) Refine(ctx context.Context, text, rationale string) (string, error) {
	r.calls++
	return r.out, r.err
}

func v(score int, rationale string) verdict.Verdict {
	return verdict.Verdict{Score: score, Rationale: rationale, ParseSuccess: true}
}

const longRefinement = "a refined passage long enough to clear the degenerate-result minimum length check"

func TestRunEarlyExitOnStrongSignal(t *testing.T) {
	strict := &scriptedOracle{verdicts: []verdict.Verdict{v(9, "clearly strong work")}}
	lenient := &scriptedOracle{}
	refiner := &fixedRefiner{out: longRefinement}

	loop := NewLoop(strict, lenient, refiner, NewMutationRefiner(entropy.NewSeededEngine(1, entropy.LevelModerate)), DefaultConfig())
	res, err := loop.Run(context.Background(), "initial variant text")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.EarlyExit)
	assert.Equal(t, 1, res.Rounds)
	assert.Equal(t, 0, lenient.calls, "lenient judge must not run on early exit")
	assert.Equal(t, 0, refiner.calls, "no refinement on early exit")
	assert.Equal(t, "initial variant text", res.Text)
	// "clearly" is an agreement marker: 9 + 1 = 10.
	assert.Equal(t, 10, res.BestStrictScore)
}

func TestRunSuccessViaLenientJudge(t *testing.T) {
	strict := &scriptedOracle{verdicts: []verdict.Verdict{v(4, "weak structure")}}
	lenient := &scriptedOracle{verdicts: []verdict.Verdict{v(8, "reads well")}}
	refiner := &fixedRefiner{out: longRefinement}

	loop := NewLoop(strict, lenient, refiner, NewMutationRefiner(entropy.NewSeededEngine(1, entropy.LevelModerate)), DefaultConfig())
	res, err := loop.Run(context.Background(), "initial variant text")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.EarlyExit)
	assert.Equal(t, 1, res.Rounds)
	assert.Equal(t, longRefinement, res.Text)
	assert.Equal(t, 8, res.BestLenientScore)
	assert.Equal(t, 4, res.BestStrictScore)
}

func TestRunHedgeAdjustmentBlocksThreshold(t *testing.T) {
	// The strict judge reports 7 but hedges with "partial": adjusted to 5,
	// which is below both the strong-signal bar and the threshold, so the
	// round must continue into refinement.
	strict := &scriptedOracle{verdicts: []verdict.Verdict{v(7, "solid, but partial coverage")}}
	lenient := &scriptedOracle{verdicts: []verdict.Verdict{v(3, "still rough")}}
	refiner := &fixedRefiner{out: longRefinement}

	cfg := DefaultConfig()
	cfg.MaxRounds = 1
	loop := NewLoop(strict, lenient, refiner, NewMutationRefiner(entropy.NewSeededEngine(1, entropy.LevelModerate)), cfg)
	res, err := loop.Run(context.Background(), "initial variant text")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, 1, refiner.calls, "hedged 7 must not count as threshold success")
	require.Len(t, res.History, 1)
	assert.Equal(t, 7, res.History[0].StrictScore)
	assert.Equal(t, 5, res.History[0].AdjustedScore)
	assert.Equal(t, 5, res.BestStrictScore)
}

func TestRunExhaustionReturnsBestEffort(t *testing.T) {
	strict := &scriptedOracle{verdicts: []verdict.Verdict{
		v(3, "weak"), v(4, "slightly better"), v(5, "improving"),
	}}
	lenient := &scriptedOracle{verdicts: []verdict.Verdict{
		v(2, "rough"), v(6, "decent"), v(4, "mixed"),
	}}
	refiner := &fixedRefiner{out: longRefinement}

	cfg := DefaultConfig()
	cfg.MaxRounds = 3
	loop := NewLoop(strict, lenient, refiner, NewMutationRefiner(entropy.NewSeededEngine(1, entropy.LevelModerate)), cfg)
	res, err := loop.Run(context.Background(), "initial variant text")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Rounds)
	assert.Equal(t, 5, res.BestStrictScore)
	assert.Equal(t, 6, res.BestLenientScore)
	assert.NotEmpty(t, res.Text)
	assert.Len(t, res.History, 3)
}

func TestRunMutationFallbackOnRefinerError(t *testing.T) {
	strict := &scriptedOracle{verdicts: []verdict.Verdict{v(3, "weak")}}
	lenient := &scriptedOracle{verdicts: []verdict.Verdict{v(9, "fine")}}
	refiner := &fixedRefiner{err: errors.New("refinement service down")}

	loop := NewLoop(strict, lenient, refiner, NewMutationRefiner(entropy.NewSeededEngine(7, entropy.LevelModerate)), DefaultConfig())
	res, err := loop.Run(context.Background(), "first block of the variant\n\nsecond block of the variant")
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.Len(t, res.History, 1)
	assert.True(t, res.History[0].FallbackUsed)
	assert.NotEmpty(t, res.Text)
}

func TestRunMutationFallbackOnDegenerateRefinement(t *testing.T) {
	strict := &scriptedOracle{verdicts: []verdict.Verdict{v(3, "weak")}}
	lenient := &scriptedOracle{verdicts: []verdict.Verdict{v(9, "fine")}}
	refiner := &fixedRefiner{out: "too short"}

	loop := NewLoop(strict, lenient, refiner, NewMutationRefiner(entropy.NewSeededEngine(7, entropy.LevelModerate)), DefaultConfig())
	res, err := loop.Run(context.Background(), "first block of the variant\n\nsecond block of the variant")
	require.NoError(t, err)

	require.Len(t, res.History, 1)
	assert.True(t, res.History[0].FallbackUsed)
	assert.Equal(t, 1, refiner.calls)
}

func TestRunTerminatesWithinBudgetOnFallbackVerdicts(t *testing.T) {
	// Both judges permanently unavailable: every verdict is the zero-score
	// fallback. The loop must still terminate at MaxRounds with a result.
	strict := &scriptedOracle{verdicts: []verdict.Verdict{verdict.Fallback("judge down")}}
	lenient := &scriptedOracle{verdicts: []verdict.Verdict{verdict.Fallback("judge down")}}
	refiner := &fixedRefiner{out: longRefinement}

	cfg := DefaultConfig()
	loop := NewLoop(strict, lenient, refiner, NewMutationRefiner(entropy.NewSeededEngine(1, entropy.LevelModerate)), cfg)
	res, err := loop.Run(context.Background(), "initial variant text")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, cfg.MaxRounds, res.Rounds)
	assert.Equal(t, "initial variant text", res.Text, "best-effort result falls back to the initial text")
}

func TestRunEmptyInitialText(t *testing.T) {
	loop := NewLoop(&scriptedOracle{}, &scriptedOracle{}, &fixedRefiner{}, NewMutationRefiner(entropy.NewSeededEngine(1, entropy.LevelModerate)), DefaultConfig())
	_, err := loop.Run(context.Background(), "")
	require.Error(t, err)
}

func TestRunMiniSearchKeepsBestSibling(t *testing.T) {
	// Strict scores: round start 3, then mini-search candidate 4, then two
	// siblings at 6 and 5. The sibling scoring must raise the recorded best.
	strict := &scriptedOracle{verdicts: []verdict.Verdict{
		v(3, "weak"), v(4, "candidate"), v(6, "better sibling"), v(5, "other sibling"),
	}}
	lenient := &scriptedOracle{verdicts: []verdict.Verdict{v(2, "rough")}}
	refiner := &fixedRefiner{out: longRefinement}

	cfg := DefaultConfig()
	cfg.MaxRounds = 1
	cfg.SiblingCount = 2
	loop := NewLoop(strict, lenient, refiner, NewMutationRefiner(entropy.NewSeededEngine(11, entropy.LevelHigh)), cfg)
	res, err := loop.Run(context.Background(), "first block of the variant\n\nsecond block of the variant")
	require.NoError(t, err)

	assert.Equal(t, 4, strict.calls, "round score + candidate + two siblings")
	require.Len(t, res.History, 1)
	assert.Equal(t, 6, res.History[0].SiblingBest)
	assert.Equal(t, 6, res.BestStrictScore)
}

func TestAdjustScore(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		v         verdict.Verdict
		want      int
	}{
		{"no markers", v(7, "adequate throughout"), 7},
		{"hedge lowers", v(7, "solid, but partial coverage"), 5},
		{"agreement raises", v(7, "clearly effective framing"), 8},
		{"both markers net out", v(7, "clearly good but partial in places"), 6},
		{"clamped at zero", v(1, "partial at best"), 0},
		{"clamped at scale max", v(10, "clearly excellent"), 10},
		{"case insensitive", v(7, "PARTIAL coverage only"), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdjustScore(tt.v, cfg))
		})
	}
}

func TestMutationRefinerAlwaysSucceeds(t *testing.T) {
	r := NewMutationRefiner(entropy.NewSeededEngine(42, entropy.LevelHigh))

	for i := 0; i < 20; i++ {
		out, err := r.Refine(context.Background(), "first block\n\nsecond block\n\nthird block", "any rationale")
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	}
}

func TestMutationRefinerIsSeedDeterministic(t *testing.T) {
	text := "first block\n\nsecond block\n\nthird block"

	a, err := NewMutationRefiner(entropy.NewSeededEngine(42, entropy.LevelHigh)).Refine(context.Background(), text, "")
	require.NoError(t, err)
	b, err := NewMutationRefiner(entropy.NewSeededEngine(42, entropy.LevelHigh)).Refine(context.Background(), text, "")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
