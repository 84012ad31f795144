package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/variantlab/internal/config"
)

// defaultConfig holds the fallback values applied after config file and CLI
// flag merging.
var defaultConfig = config.Config{
	Mode:           "balanced",
	StrictModel:    "gemini-2.5-pro",
	LenientModel:   "gpt-4o-mini",
	Threshold:      7,
	MaxRounds:      8,
	PopulationSize: 10,
	MaxGenerations: 10,
	MaxConcurrent:  4,
}

// runFlags holds the flag values shared by the duel and evolve subcommands.
type runFlags struct {
	configPath     string
	mode           string
	target         string
	seed           int64
	strictModel    string
	lenientModel   string
	refineModel    string
	threshold      int
	maxRounds      int
	populationSize int
	maxGenerations int
	maxConcurrent  int
	databaseURL    string
	verbose        bool
}

// register attaches the shared flags to a command.
func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "Entropy mode: stealth, balanced, aggressive, chaos")
	cmd.Flags().StringVarP(&f.target, "target", "t", "", "Content target hint for fragment selection")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Entropy seed (0 derives one; nonzero makes the run reproducible)")
	cmd.Flags().StringVar(&f.strictModel, "strict-model", "", "Model for the strict judge")
	cmd.Flags().StringVar(&f.lenientModel, "lenient-model", "", "Model for the lenient judge")
	cmd.Flags().StringVar(&f.refineModel, "refine-model", "", "Model for refinement (defaults to the strict model)")
	cmd.Flags().IntVar(&f.threshold, "threshold", 0, "Score either judge must reach for success")
	cmd.Flags().IntVar(&f.maxRounds, "max-rounds", 0, "Duel round budget")
	cmd.Flags().IntVar(&f.populationSize, "population", 0, "Genomes per generation")
	cmd.Flags().IntVar(&f.maxGenerations, "generations", 0, "Generation budget")
	cmd.Flags().IntVar(&f.maxConcurrent, "max-concurrent", 0, "Parallel genome evaluations")
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed progress boxes")
}

// resolve merges config file values, CLI overrides, environment credentials,
// and defaults, in that priority order (flags win over file, file over env
// for credentials is inverted: file fills first, env fills gaps).
func (f *runFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// CLI overrides: only when the flag was explicitly set
	if cmd.Flags().Changed("mode") {
		cfg.Mode = f.mode
	}
	if cmd.Flags().Changed("target") {
		cfg.Target = f.target
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = f.seed
	}
	if cmd.Flags().Changed("strict-model") {
		cfg.StrictModel = f.strictModel
	}
	if cmd.Flags().Changed("lenient-model") {
		cfg.LenientModel = f.lenientModel
	}
	if cmd.Flags().Changed("refine-model") {
		cfg.RefineModel = f.refineModel
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold = f.threshold
	}
	if cmd.Flags().Changed("max-rounds") {
		cfg.MaxRounds = f.maxRounds
	}
	if cmd.Flags().Changed("population") {
		cfg.PopulationSize = f.populationSize
	}
	if cmd.Flags().Changed("generations") {
		cfg.MaxGenerations = f.maxGenerations
	}
	if cmd.Flags().Changed("max-concurrent") {
		cfg.MaxConcurrent = f.maxConcurrent
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	cfg.FromEnv()
	cfg = cfg.MergeWithDefaults(defaultConfig)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
