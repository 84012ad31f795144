package pipeline

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/variantlab/internal/entropy"
	"github.com/jonathan/variantlab/internal/evolution"
	"github.com/jonathan/variantlab/internal/fitness"
	"github.com/jonathan/variantlab/internal/metrics"
	"github.com/jonathan/variantlab/internal/pool"
)

func TestWithDefaults(t *testing.T) {
	opts := withDefaults(RunOptions{})

	assert.Equal(t, "balanced", opts.Mode)
	assert.Equal(t, "gemini-2.5-pro", opts.StrictModel)
	assert.Equal(t, "gpt-4o-mini", opts.LenientModel)
	assert.Equal(t, opts.StrictModel, opts.RefineModel)
	assert.Equal(t, 4, opts.MaxConcurrent)
}

func TestWithDefaults_PreservesExplicitValues(t *testing.T) {
	opts := withDefaults(RunOptions{
		Mode:        "chaos",
		RefineModel: "gemini-2.0-flash",
	})

	assert.Equal(t, "chaos", opts.Mode)
	assert.Equal(t, "gemini-2.0-flash", opts.RefineModel)
}

func TestNewEntropyEngine_SeededIsReproducible(t *testing.T) {
	a := newEntropyEngine(RunOptions{Mode: "balanced", Seed: 42})
	b := newEntropyEngine(RunOptions{Mode: "balanced", Seed: 42})

	assert.Equal(t, int64(42), a.Seed())
	assert.Equal(t, a.Noise(16, "alphanum"), b.Noise(16, "alphanum"))
}

func TestMaterializeGenome_KnownTechniqueSelectsSkeleton(t *testing.T) {
	provider, err := pool.NewEmbeddedProvider()
	require.NoError(t, err)

	ent := entropy.NewSeededEngine(42, entropy.LevelModerate)
	genome := evolution.Genome{Technique: "minimal"}

	v, err := materializeGenome(ent, provider, genome, "balanced", "")
	require.NoError(t, err)
	assert.Equal(t, "minimal", v.SkeletonName)
	assert.NotEmpty(t, v.Text)
}

func TestMaterializeGenome_UnknownTechniqueFallsBack(t *testing.T) {
	provider, err := pool.NewEmbeddedProvider()
	require.NoError(t, err)

	ent := entropy.NewSeededEngine(42, entropy.LevelModerate)
	genome := evolution.Genome{Technique: "no-such-skeleton"}

	v, err := materializeGenome(ent, provider, genome, "balanced", "")
	require.NoError(t, err)
	assert.NotEmpty(t, v.SkeletonName)
	assert.NotEmpty(t, v.Text)
}

func TestMaterializeGenome_IsSeedDeterministic(t *testing.T) {
	provider, err := pool.NewEmbeddedProvider()
	require.NoError(t, err)

	genome := evolution.Genome{Technique: "academic", Modifiers: []string{"case-jitter", "nonce-frame"}}

	a, err := materializeGenome(entropy.NewSeededEngine(7, entropy.LevelModerate), provider, genome, "balanced", "")
	require.NoError(t, err)
	b, err := materializeGenome(entropy.NewSeededEngine(7, entropy.LevelModerate), provider, genome, "balanced", "")
	require.NoError(t, err)

	assert.Equal(t, a.Text, b.Text)
}

func TestBuildSink_NoBackendsIsNop(t *testing.T) {
	sink := buildSink(nil, false)
	assert.IsType(t, metrics.NopSink{}, sink)
}

func TestGenerationSummary(t *testing.T) {
	runID := uuid.New()
	results := []fitness.Result{
		{Genome: evolution.Genome{Technique: "layered", Generation: 1}, Fitness: 9.0, ThresholdMet: true},
		{Genome: evolution.Genome{Technique: "minimal", Generation: 1}, Fitness: 5.0},
	}

	s := generationSummary(runID, 3, results, 1)

	assert.Equal(t, runID, s.RunID)
	assert.Equal(t, 3, s.Generation)
	assert.Equal(t, 9.0, s.BestFitness)
	assert.Equal(t, 7.0, s.MeanFitness)
	assert.Equal(t, "layered__g1", s.BestGenomeID)
	assert.Equal(t, 1, s.SuccessCount)
	assert.Equal(t, 1, s.FailureCount)
}

func TestGenerationSummary_Empty(t *testing.T) {
	s := generationSummary(uuid.Nil, 0, nil, 0)
	assert.Zero(t, s.BestFitness)
	assert.Zero(t, s.SuccessCount)
}

func TestBuildJudges_RequiresGeminiKey(t *testing.T) {
	ent := entropy.NewSeededEngine(1, entropy.LevelModerate)
	_, err := buildJudges(context.Background(), RunOptions{}, ent)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestRunDuel_Integration(t *testing.T) {
	// Requires valid API keys and network access; skipped by default so CI
	// never depends on external services.
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("Skipping integration test: GEMINI_API_KEY not set")
	}

	opts := RunOptions{
		Mode:         "balanced",
		Seed:         42,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		MaxRounds:    2,
	}

	result, err := RunDuel(context.Background(), opts)
	if err != nil {
		t.Logf("Duel run failed (expected if external services are unreachable): %v", err)
		return
	}
	assert.NotEmpty(t, result.Text)
	assert.GreaterOrEqual(t, result.Rounds, 1)
}
