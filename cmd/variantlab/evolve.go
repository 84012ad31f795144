package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/variantlab/internal/pipeline"
)

var evolveCommand = &cobra.Command{
	Use:   "evolve",
	Short: "Search the variant space with a genetic algorithm",
	Long: `Evolves a population of generation configurations (skeleton technique plus
modifier set). Each genome is materialized into a variant, scored by both
judges, and reduced to a fitness value; generations evolve through tournament
selection, crossover, mutation, and elitism until the budget is spent or the
search converges.

Requires GEMINI_API_KEY; OPENAI_API_KEY enables a separate lenient judge.`,
	RunE: runEvolveCmd,
}

var evolveFlags runFlags

func init() {
	evolveFlags.register(evolveCommand)
	rootCmd.AddCommand(evolveCommand)
}

func runEvolveCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := evolveFlags.resolve(cmd)
	if err != nil {
		return err
	}

	best, err := pipeline.RunEvolution(context.Background(), pipeline.RunOptions{
		Mode:           cfg.Mode,
		Target:         cfg.Target,
		Seed:           cfg.Seed,
		StrictModel:    cfg.StrictModel,
		LenientModel:   cfg.LenientModel,
		RefineModel:    cfg.RefineModel,
		Threshold:      cfg.Threshold,
		PopulationSize: cfg.PopulationSize,
		MaxGenerations: cfg.MaxGenerations,
		MaxConcurrent:  cfg.MaxConcurrent,
		GeminiAPIKey:   cfg.GeminiAPIKey,
		OpenAIAPIKey:   cfg.OpenAIAPIKey,
		DatabaseURL:    cfg.DatabaseURL,
		Verbose:        cfg.Verbose,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nBest genome: %s (fitness %.2f)\n", best.BestGenome.ID(), best.BestFitness)
	return nil
}
