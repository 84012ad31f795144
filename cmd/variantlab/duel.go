package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/variantlab/internal/pipeline"
)

var duelCommand = &cobra.Command{
	Use:   "duel",
	Short: "Compose one variant and refine it through the two-judge loop",
	Long: `Composes a variant, scores it with the strict judge, refines it from the
judge's rationale, and scores the refinement with the lenient judge, repeating
until either judge clears the threshold or the round budget is exhausted.

Requires GEMINI_API_KEY; OPENAI_API_KEY enables a separate lenient judge.`,
	RunE: runDuelCmd,
}

var duelFlags runFlags

func init() {
	duelFlags.register(duelCommand)
	rootCmd.AddCommand(duelCommand)
}

func runDuelCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := duelFlags.resolve(cmd)
	if err != nil {
		return err
	}

	result, err := pipeline.RunDuel(context.Background(), pipeline.RunOptions{
		Mode:         cfg.Mode,
		Target:       cfg.Target,
		Seed:         cfg.Seed,
		StrictModel:  cfg.StrictModel,
		LenientModel: cfg.LenientModel,
		RefineModel:  cfg.RefineModel,
		Threshold:    cfg.Threshold,
		MaxRounds:    cfg.MaxRounds,
		GeminiAPIKey: cfg.GeminiAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		DatabaseURL:  cfg.DatabaseURL,
		Verbose:      cfg.Verbose,
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(result.Text)
	return nil
}
