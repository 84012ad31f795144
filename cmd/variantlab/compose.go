package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/variantlab/internal/composition"
	"github.com/jonathan/variantlab/internal/config"
	"github.com/jonathan/variantlab/internal/entropy"
	"github.com/jonathan/variantlab/internal/observability"
	"github.com/jonathan/variantlab/internal/pool"
)

var composeCommand = &cobra.Command{
	Use:   "compose",
	Short: "Compose variants offline, without judges",
	Long: `Composes one or more structurally randomized variants from the embedded
fragment pool and prints them to stdout. No LLM calls are made; this is the
fast path for inspecting what a given mode, seed, and skeleton produce.`,
	RunE: runComposeCmd,
}

var (
	composeConfigPath string
	composeMode       string
	composeTarget     string
	composeSeed       int64
	composeCount      int
	composeSkeleton   string
	composeModifiers  []string
	composeVerbose    bool
)

func init() {
	composeCommand.Flags().StringVar(&composeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	composeCommand.Flags().StringVarP(&composeMode, "mode", "m", "", "Entropy mode: stealth, balanced, aggressive, chaos")
	composeCommand.Flags().StringVarP(&composeTarget, "target", "t", "", "Content target hint for fragment selection")
	composeCommand.Flags().Int64Var(&composeSeed, "seed", 0, "Entropy seed (0 derives one; nonzero makes the run reproducible)")
	composeCommand.Flags().IntVarP(&composeCount, "count", "n", 1, "Number of variants to compose")
	composeCommand.Flags().StringVar(&composeSkeleton, "skeleton", "", "Force a specific skeleton instead of affinity-based selection")
	composeCommand.Flags().StringSliceVar(&composeModifiers, "modifier", nil, "Post-render modifiers to apply (repeatable)")
	composeCommand.Flags().BoolVarP(&composeVerbose, "verbose", "v", false, "Print detailed variant provenance")

	rootCmd.AddCommand(composeCommand)
}

func runComposeCmd(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if composeConfigPath != "" {
		loaded, err := config.LoadConfig(composeConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = composeMode
	}
	if cmd.Flags().Changed("target") {
		cfg.Target = composeTarget
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = composeSeed
	}
	cfg = cfg.MergeWithDefaults(defaultConfig)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if composeCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	level := entropy.LevelForMode(cfg.Mode)
	var ent *entropy.Engine
	if cfg.Seed != 0 {
		ent = entropy.NewSeededEngine(cfg.Seed, level)
	} else {
		ent = entropy.NewEngine(level)
	}

	printer := observability.NewPrinter(os.Stdout)
	if composeVerbose {
		printer.PrintEntropyProfile(ent.Profile())
	}

	provider, err := pool.NewEmbeddedProvider()
	if err != nil {
		return fmt.Errorf("loading fragment pool: %w", err)
	}
	comp := composition.NewEngine(ent)

	for i := 0; i < composeCount; i++ {
		skel := comp.SelectSkeleton(cfg.Mode, cfg.Target)
		if composeSkeleton != "" {
			skel, err = comp.Skeleton(composeSkeleton)
			if err != nil {
				return err
			}
		}

		variant, err := comp.Compose(skel, provider, cfg.Target)
		if err != nil {
			return fmt.Errorf("composing variant %d: %w", i+1, err)
		}
		variant.Text = composition.ApplyModifiers(ent, variant.Text, composeModifiers)

		if composeVerbose {
			printer.PrintVariant(variant)
		}
		if i > 0 {
			fmt.Println("---")
		}
		fmt.Println(variant.Text)
	}
	return nil
}
