// Package pipeline provides the high-level orchestration for variant
// generation: single-variant duels and the evolutionary search.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/variantlab/internal/composition"
	"github.com/jonathan/variantlab/internal/db"
	"github.com/jonathan/variantlab/internal/duel"
	"github.com/jonathan/variantlab/internal/entropy"
	"github.com/jonathan/variantlab/internal/evolution"
	"github.com/jonathan/variantlab/internal/fitness"
	"github.com/jonathan/variantlab/internal/judge"
	"github.com/jonathan/variantlab/internal/metrics"
	"github.com/jonathan/variantlab/internal/observability"
	"github.com/jonathan/variantlab/internal/pool"
	"github.com/jonathan/variantlab/internal/refine"
)

// RunOptions holds configuration for a pipeline run.
type RunOptions struct {
	Mode   string
	Target string
	Seed   int64

	StrictModel  string
	LenientModel string
	RefineModel  string
	Threshold    int
	MaxRounds    int

	PopulationSize int
	MaxGenerations int
	MaxConcurrent  int

	GeminiAPIKey string
	OpenAIAPIKey string
	DatabaseURL  string
	Verbose      bool
}

// withDefaults fills unset options. Flag validation happens in the CLI; this
// only covers fields callers may legitimately leave zero.
func withDefaults(opts RunOptions) RunOptions {
	if opts.Mode == "" {
		opts.Mode = "balanced"
	}
	if opts.StrictModel == "" {
		opts.StrictModel = "gemini-2.5-pro"
	}
	if opts.LenientModel == "" {
		opts.LenientModel = "gpt-4o-mini"
	}
	if opts.RefineModel == "" {
		opts.RefineModel = opts.StrictModel
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	return opts
}

// newEntropyEngine builds the run's randomness source. A zero seed derives
// one, giving a non-reproducible run.
func newEntropyEngine(opts RunOptions) *entropy.Engine {
	level := entropy.LevelForMode(opts.Mode)
	if opts.Seed != 0 {
		return entropy.NewSeededEngine(opts.Seed, level)
	}
	return entropy.NewEngine(level)
}

// connectDB opens the optional persistence layer. Connection failures are
// reported but never abort a run.
func connectDB(ctx context.Context, opts RunOptions) *db.DB {
	if opts.DatabaseURL == "" {
		return nil
	}
	database, err := db.Connect(ctx, opts.DatabaseURL)
	if err != nil {
		fmt.Printf("Warning: Failed to connect to database: %v\n", err)
		fmt.Printf("Continuing without database persistence...\n")
		return nil
	}
	return database
}

// buildSink assembles the metrics fan-out for a run.
func buildSink(database *db.DB, verbose bool) metrics.Sink {
	var sinks []metrics.Sink
	if database != nil {
		sinks = append(sinks, metrics.NewDBSink(database))
	}
	if verbose {
		sinks = append(sinks, metrics.NewWriterSink(os.Stdout))
	}
	if len(sinks) == 0 {
		return metrics.NopSink{}
	}
	return metrics.NewMultiSink(sinks...)
}

// judges bundles the scoring and refinement oracles for one run.
type judges struct {
	strict   duel.ScoringOracle
	lenient  duel.ScoringOracle
	refiner  duel.RefinementOracle
	fallback duel.RefinementOracle
	closers  []judge.Client
}

func (j *judges) Close() {
	for _, c := range j.closers {
		_ = c.Close()
	}
}

// buildJudges wires the LLM clients. The strict judge and the refiner run on
// Gemini; the lenient judge runs on OpenAI when a key is present and shares
// the Gemini client otherwise.
func buildJudges(ctx context.Context, opts RunOptions, ent *entropy.Engine) (*judges, error) {
	if opts.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	gemini, err := judge.NewGeminiClient(ctx, opts.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	j := &judges{closers: []judge.Client{gemini}}

	var lenientClient judge.Client = gemini
	if opts.OpenAIAPIKey != "" {
		openaiClient, err := judge.NewOpenAIClient(opts.OpenAIAPIKey, "")
		if err != nil {
			_ = gemini.Close()
			return nil, fmt.Errorf("creating openai client: %w", err)
		}
		lenientClient = openaiClient
		j.closers = append(j.closers, openaiClient)
	}

	j.strict = judge.NewOracle(gemini, judge.DefaultOracleConfig(opts.StrictModel, "strict"))
	j.lenient = judge.NewOracle(lenientClient, judge.DefaultOracleConfig(opts.LenientModel, "lenient"))
	j.refiner = refine.NewLLMRefiner(gemini, opts.RefineModel, judge.DefaultRetryConfig())
	j.fallback = duel.NewMutationRefiner(ent.Fork("mutation-fallback"))
	return j, nil
}

// materializeGenome turns a genome into concrete variant text. The technique
// names a skeleton directly; an unknown technique falls back to affinity-based
// selection.
func materializeGenome(ent *entropy.Engine, provider pool.Provider, genome evolution.Genome, mode, target string) (composition.Variant, error) {
	comp := composition.NewEngine(ent)

	skel, err := comp.Skeleton(genome.Technique)
	if err != nil {
		skel = comp.SelectSkeleton(mode, target)
	}

	v, err := comp.Compose(skel, provider, target)
	if err != nil {
		return composition.Variant{}, err
	}

	v.Text = composition.ApplyModifiers(ent, v.Text, genome.Modifiers)
	return v, nil
}

// RunDuel composes one variant and drives it through the two-judge
// refinement loop.
func RunDuel(ctx context.Context, opts RunOptions) (*duel.Result, error) {
	opts = withDefaults(opts)
	printer := observability.NewPrinter(os.Stdout)

	ent := newEntropyEngine(opts)
	fmt.Printf("Step 1/4: Deriving entropy profile (mode=%s seed=%d)...\n", opts.Mode, ent.Seed())
	if opts.Verbose {
		printer.PrintEntropyProfile(ent.Profile())
	}

	database := connectDB(ctx, opts)
	runID := uuid.Nil
	if database != nil {
		defer database.Close()
		var err error
		runID, err = database.CreateRun(ctx, "duel", opts.Mode, opts.Target, ent.Seed())
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
		} else if opts.Verbose {
			fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
		}
	}
	sink := buildSink(database, opts.Verbose)

	fmt.Printf("Step 2/4: Composing initial variant...\n")
	provider, err := pool.NewEmbeddedProvider()
	if err != nil {
		return nil, fmt.Errorf("loading fragment pool: %w", err)
	}
	comp := composition.NewEngine(ent)
	skel := comp.SelectSkeleton(opts.Mode, opts.Target)
	variant, err := comp.Compose(skel, provider, opts.Target)
	if err != nil {
		return nil, fmt.Errorf("composing variant: %w", err)
	}
	if opts.Verbose {
		printer.PrintVariant(variant)
	}

	fmt.Printf("Step 3/4: Initializing judges (strict=%s lenient=%s)...\n", opts.StrictModel, opts.LenientModel)
	j, err := buildJudges(ctx, opts, ent)
	if err != nil {
		return nil, err
	}
	defer j.Close()

	cfg := duel.DefaultConfig()
	if opts.Threshold > 0 {
		cfg.Threshold = opts.Threshold
	}
	if opts.MaxRounds > 0 {
		cfg.MaxRounds = opts.MaxRounds
	}

	fmt.Printf("Step 4/4: Running duel (threshold=%d max_rounds=%d)...\n", cfg.Threshold, cfg.MaxRounds)
	loop := duel.NewLoop(j.strict, j.lenient, j.refiner, j.fallback, cfg)
	result, err := loop.Run(ctx, variant.Text)
	if err != nil {
		if database != nil && runID != uuid.Nil {
			_ = database.CompleteRun(ctx, runID, "failed")
		}
		return nil, fmt.Errorf("duel failed: %w", err)
	}

	for _, rec := range result.History {
		if opts.Verbose {
			printer.PrintDuelRound(rec)
		}
		sink.Record(ctx, metrics.Attempt{
			RunID:        runID,
			Round:        rec.Round,
			Technique:    skel.Name,
			SkeletonName: skel.Name,
			StrictScore:  rec.StrictScore,
			LenientScore: rec.LenientScore,
			Success:      result.Success && rec.Round == result.Rounds,
		})
	}
	if opts.Verbose {
		printer.PrintDuelResult(result)
	}

	status := "exhausted"
	if result.Success {
		status = "completed"
	}
	if database != nil && runID != uuid.Nil {
		_ = database.CompleteRun(ctx, runID, status)
	}

	fmt.Printf("Done: %s after %d round(s) (best strict=%d lenient=%d).\n",
		status, result.Rounds, result.BestStrictScore, result.BestLenientScore)
	return &result, nil
}

// RunEvolution drives the genetic search: each genome is materialized into a
// variant, scored by both judges, and reduced to a fitness value; generations
// evolve until the budget or convergence.
func RunEvolution(ctx context.Context, opts RunOptions) (*evolution.GenerationRecord, error) {
	opts = withDefaults(opts)
	printer := observability.NewPrinter(os.Stdout)

	ent := newEntropyEngine(opts)
	fmt.Printf("Step 1/3: Deriving entropy profile (mode=%s seed=%d)...\n", opts.Mode, ent.Seed())
	if opts.Verbose {
		printer.PrintEntropyProfile(ent.Profile())
	}

	database := connectDB(ctx, opts)
	runID := uuid.Nil
	if database != nil {
		defer database.Close()
		var err error
		runID, err = database.CreateRun(ctx, "evolve", opts.Mode, opts.Target, ent.Seed())
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
		} else if opts.Verbose {
			fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
		}
	}
	sink := buildSink(database, opts.Verbose)

	provider, err := pool.NewEmbeddedProvider()
	if err != nil {
		return nil, fmt.Errorf("loading fragment pool: %w", err)
	}

	fmt.Printf("Step 2/3: Initializing judges (strict=%s lenient=%s)...\n", opts.StrictModel, opts.LenientModel)
	j, err := buildJudges(ctx, opts, ent)
	if err != nil {
		return nil, err
	}
	defer j.Close()

	evoCfg := evolution.DefaultConfig(composition.SkeletonNames(), composition.KnownModifiers())
	if opts.PopulationSize > 0 {
		evoCfg.PopulationSize = opts.PopulationSize
	}
	if opts.MaxGenerations > 0 {
		evoCfg.MaxGenerations = opts.MaxGenerations
	}
	engine, err := evolution.NewEngine(evoCfg, ent.Fork("evolution"))
	if err != nil {
		return nil, fmt.Errorf("creating evolution engine: %w", err)
	}

	fitCfg := fitness.DefaultConfig()
	if opts.Threshold > 0 {
		fitCfg.Threshold = opts.Threshold
	}
	evaluator := fitness.NewEvaluator(fitCfg)

	fmt.Printf("Step 3/3: Evolving %d genomes over up to %d generations...\n",
		evoCfg.PopulationSize, evoCfg.MaxGenerations)

	population := engine.InitializePopulation()

	for gen := 0; gen < evoCfg.MaxGenerations; gen++ {
		fmt.Printf("Generation %d/%d: evaluating %d genomes...\n", gen+1, evoCfg.MaxGenerations, len(population))

		var mu sync.Mutex
		var results []fitness.Result

		evaluate := func(ctx context.Context, genome evolution.Genome, forked *entropy.Engine) (float64, error) {
			variant, err := materializeGenome(forked, provider, genome, opts.Mode, opts.Target)
			if err != nil {
				return 0, err
			}

			// Both judges see the same text; oracles degrade to fallback
			// verdicts instead of returning errors.
			strictVerdict := j.strict.Score(ctx, variant.Text)
			lenientVerdict := j.lenient.Score(ctx, variant.Text)

			result := evaluator.Evaluate(genome, strictVerdict.Score, lenientVerdict.Score)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()

			sink.Record(ctx, metrics.Attempt{
				RunID:        runID,
				GenomeID:     genome.ID(),
				Round:        gen,
				Technique:    genome.Technique,
				Modifiers:    genome.Modifiers,
				SkeletonName: variant.SkeletonName,
				StrictScore:  strictVerdict.Score,
				LenientScore: lenientVerdict.Score,
				Fitness:      result.Fitness,
				Success:      result.ThresholdMet,
			})
			return result.Fitness, nil
		}

		evaluated, failures, err := engine.RunGeneration(ctx, population, evaluate, opts.MaxConcurrent)
		if err != nil {
			if database != nil && runID != uuid.Nil {
				_ = database.CompleteRun(ctx, runID, "failed")
			}
			return nil, fmt.Errorf("generation %d failed: %w", gen, err)
		}
		for _, f := range failures {
			fmt.Printf("Warning: %v\n", f)
		}

		sort.SliceStable(results, func(a, b int) bool { return results[a].Fitness > results[b].Fitness })
		if opts.Verbose {
			printer.PrintFitnessResults(gen, results)
		}

		if database != nil && runID != uuid.Nil {
			_ = database.SaveGenerationSummary(ctx, generationSummary(runID, gen, results, len(failures)))
		}

		population, err = engine.Evolve(evaluated)
		if err != nil {
			return nil, fmt.Errorf("evolving generation %d: %w", gen, err)
		}

		if engine.Converged() {
			fmt.Printf("Converged after generation %d.\n", gen+1)
			break
		}
	}

	best, ok := engine.BestEver()
	if !ok {
		return nil, fmt.Errorf("no generations completed")
	}
	printer.PrintBestGenome(best)

	if database != nil && runID != uuid.Nil {
		_ = database.CompleteRun(ctx, runID, "completed")
	}

	fmt.Printf("Done: best genome %s (fitness %.2f) from generation %d.\n",
		best.BestGenome.ID(), best.BestFitness, best.Generation)
	return &best, nil
}

// generationSummary reduces a generation's results to the persisted aggregate.
func generationSummary(runID uuid.UUID, generation int, results []fitness.Result, failureCount int) db.GenerationSummary {
	s := db.GenerationSummary{
		RunID:        runID,
		Generation:   generation,
		FailureCount: failureCount,
	}
	if len(results) == 0 {
		return s
	}

	total := 0.0
	for _, r := range results {
		total += r.Fitness
		if r.ThresholdMet {
			s.SuccessCount++
		}
	}
	// results arrive sorted by fitness descending
	s.BestFitness = results[0].Fitness
	s.BestGenomeID = results[0].Genome.ID()
	s.MeanFitness = total / float64(len(results))
	return s
}
