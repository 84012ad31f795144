// Package main provides the variantlab CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "variantlab",
	Short: "Seeded variant generation and judge-driven refinement",
	Long:  "variantlab composes structurally randomized text variants from a seeded entropy source, scores them with strict and lenient LLM judges, and searches the variation space with a genetic algorithm.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
