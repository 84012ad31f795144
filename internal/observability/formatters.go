// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/variantlab/internal/composition"
	"github.com/jonathan/variantlab/internal/duel"
	"github.com/jonathan/variantlab/internal/entropy"
	"github.com/jonathan/variantlab/internal/evolution"
	"github.com/jonathan/variantlab/internal/fitness"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEntropyProfile outputs the entropy configuration for the run.
func (p *Printer) PrintEntropyProfile(profile entropy.Profile) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run ID:   %s\n", profile.RunID))
	sb.WriteString(fmt.Sprintf("Seed:     %d\n", profile.Seed))
	sb.WriteString(fmt.Sprintf("Level:    %.2f\n", float64(profile.Level)))
	sb.WriteString("\n")

	flags := []struct {
		name string
		on   bool
	}{
		{"component shuffle", profile.ComponentShuffle},
		{"delimiter entropy", profile.DelimiterEntropy},
		{"spacing entropy", profile.SpacingEntropy},
		{"case entropy", profile.CaseEntropy},
		{"order entropy", profile.OrderEntropy},
		{"structure entropy", profile.StructureEntropy},
	}
	sb.WriteString("Variation flags:\n")
	for _, f := range flags {
		marker := "·"
		if f.on {
			marker = "✓"
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n", marker, f.name))
	}

	p.printBox("ENTROPY PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVariant outputs a composed variant's provenance and a text preview.
func (p *Printer) PrintVariant(v composition.Variant) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Skeleton:  %s\n", v.SkeletonName))
	sb.WriteString(fmt.Sprintf("Signature: %s\n", v.EntropySignature))
	sb.WriteString(fmt.Sprintf("Slots:     %d filled\n", len(v.Fill)))
	sb.WriteString("\n")

	preview := v.Text
	if len(preview) > 200 {
		preview = preview[:197] + "..."
	}
	sb.WriteString(preview)

	p.printBox("COMPOSED VARIANT", sb.String())
}

// PrintDuelRound outputs one duel round's scores.
func (p *Printer) PrintDuelRound(rec duel.RoundRecord) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Strict:   %d (adjusted %d)\n", rec.StrictScore, rec.AdjustedScore))
	if rec.LenientScore >= 0 {
		sb.WriteString(fmt.Sprintf("Lenient:  %d\n", rec.LenientScore))
	} else {
		sb.WriteString("Lenient:  skipped (early exit)\n")
	}
	if rec.FallbackUsed {
		sb.WriteString("Refiner:  mutation fallback\n")
	}
	if rec.Rationale != "" {
		rationale := rec.Rationale
		if len(rationale) > 48 {
			rationale = rationale[:45] + "..."
		}
		sb.WriteString(fmt.Sprintf("Note:     %s\n", rationale))
	}

	p.printBox(fmt.Sprintf("ROUND %d", rec.Round), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDuelResult outputs the duel's terminal outcome.
func (p *Printer) PrintDuelResult(res duel.Result) {
	var sb strings.Builder

	outcome := "EXHAUSTED"
	if res.Success {
		outcome = "SUCCESS"
		if res.EarlyExit {
			outcome = "SUCCESS (early exit)"
		}
	}
	sb.WriteString(fmt.Sprintf("Outcome:       %s\n", outcome))
	sb.WriteString(fmt.Sprintf("Rounds:        %d\n", res.Rounds))
	sb.WriteString(fmt.Sprintf("Best strict:   %d\n", res.BestStrictScore))
	sb.WriteString(fmt.Sprintf("Best lenient:  %d", res.BestLenientScore))

	p.printBox("DUEL RESULT", sb.String())
}

// PrintFitnessResults outputs the top evaluated genomes of one generation.
func (p *Printer) PrintFitnessResults(generation int, results []fitness.Result) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Evaluated %d genomes:\n\n", len(results)))

	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, r.Genome.Technique))
		sb.WriteString(fmt.Sprintf("    Fitness: %.2f (%d/%d)\n", r.Fitness, r.ScoreA, r.ScoreB))
		if len(r.Tags) > 0 {
			tags := strings.Join(r.Tags, ", ")
			if len(tags) > 40 {
				tags = tags[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Tags: %s\n", tags))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more genomes", len(results)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("GENERATION %d", generation), sb.String())
}

// PrintBestGenome outputs the best genome found across the whole search.
func (p *Printer) PrintBestGenome(rec evolution.GenerationRecord) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Technique:  %s\n", rec.BestGenome.Technique))
	sb.WriteString(fmt.Sprintf("Modifiers:  %s\n", strings.Join(rec.BestGenome.Modifiers, ", ")))
	sb.WriteString(fmt.Sprintf("Fitness:    %.2f\n", rec.BestFitness))
	sb.WriteString(fmt.Sprintf("Generation: %d", rec.Generation))

	p.printBox("BEST GENOME", sb.String())
}
