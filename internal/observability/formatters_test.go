package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/variantlab/internal/composition"
	"github.com/jonathan/variantlab/internal/duel"
	"github.com/jonathan/variantlab/internal/entropy"
	"github.com/jonathan/variantlab/internal/evolution"
	"github.com/jonathan/variantlab/internal/fitness"
)

func TestPrintBox_Formatting(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TEST TITLE", "line one\nline two")

	out := buf.String()
	assert.Contains(t, out, "TEST TITLE")
	assert.Contains(t, out, "line one")
	assert.Contains(t, out, "line two")
	assert.Contains(t, out, "┌")
	assert.Contains(t, out, "└")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	longLine := strings.Repeat("x", 200)
	p.printBox("TITLE", longLine)

	out := buf.String()
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, longLine)
}

func TestPrintEntropyProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEntropyProfile(entropy.Profile{
		Seed:             42,
		Level:            entropy.LevelModerate,
		RunID:            "run-abc",
		ComponentShuffle: true,
		CaseEntropy:      false,
	})

	out := buf.String()
	assert.Contains(t, out, "ENTROPY PROFILE")
	assert.Contains(t, out, "run-abc")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "0.50")
	assert.Contains(t, out, "✓ component shuffle")
	assert.Contains(t, out, "· case entropy")
}

func TestPrintVariant(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVariant(composition.Variant{
		Text:             "some composed text",
		SkeletonName:     "academic",
		Fill:             map[string]string{"opening": "a", "core_query": "b"},
		EntropySignature: "E1a2b3c4d-0.50",
	})

	out := buf.String()
	assert.Contains(t, out, "COMPOSED VARIANT")
	assert.Contains(t, out, "academic")
	assert.Contains(t, out, "E1a2b3c4d-0.50")
	assert.Contains(t, out, "2 filled")
	assert.Contains(t, out, "some composed text")
}

func TestPrintDuelRound(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDuelRound(duel.RoundRecord{
		Round:         2,
		StrictScore:   7,
		AdjustedScore: 5,
		LenientScore:  6,
		Rationale:     "partially consistent",
	})

	out := buf.String()
	assert.Contains(t, out, "ROUND 2")
	assert.Contains(t, out, "Strict:   7 (adjusted 5)")
	assert.Contains(t, out, "Lenient:  6")
	assert.Contains(t, out, "partially consistent")
}

func TestPrintDuelRound_EarlyExitSkipsLenient(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDuelRound(duel.RoundRecord{
		Round:         1,
		StrictScore:   9,
		AdjustedScore: 9,
		LenientScore:  -1,
	})

	out := buf.String()
	assert.Contains(t, out, "skipped (early exit)")
}

func TestPrintDuelResult_Success(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDuelResult(duel.Result{
		Success:          true,
		EarlyExit:        true,
		Rounds:           1,
		BestStrictScore:  9,
		BestLenientScore: -1,
	})

	out := buf.String()
	assert.Contains(t, out, "DUEL RESULT")
	assert.Contains(t, out, "SUCCESS (early exit)")
	assert.Contains(t, out, "Rounds:        1")
}

func TestPrintDuelResult_Exhausted(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDuelResult(duel.Result{
		Success:          false,
		Rounds:           8,
		BestStrictScore:  5,
		BestLenientScore: 6,
	})

	out := buf.String()
	assert.Contains(t, out, "EXHAUSTED")
}

func TestPrintFitnessResults(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	results := []fitness.Result{
		{
			Genome:  evolution.Genome{Technique: "layered"},
			ScoreA:  8,
			ScoreB:  7,
			Fitness: 9.4,
			Tags:    []string{fitness.TagThresholdMet, fitness.TagHighAgreement},
		},
		{
			Genome:  evolution.Genome{Technique: "reframing"},
			ScoreA:  5,
			ScoreB:  6,
			Fitness: 5.8,
			Tags:    []string{fitness.TagStandard},
		},
	}
	p.PrintFitnessResults(3, results)

	out := buf.String()
	assert.Contains(t, out, "GENERATION 3")
	assert.Contains(t, out, "Evaluated 2 genomes")
	assert.Contains(t, out, "layered")
	assert.Contains(t, out, "9.40 (8/7)")
	assert.Contains(t, out, "threshold-met")
}

func TestPrintFitnessResults_LimitsItems(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	results := make([]fitness.Result, 8)
	for i := range results {
		results[i] = fitness.Result{Genome: evolution.Genome{Technique: "layered"}}
	}
	p.PrintFitnessResults(0, results)

	out := buf.String()
	assert.Contains(t, out, "... and 3 more genomes")
}

func TestPrintFitnessResults_EmptyIsSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFitnessResults(1, nil)
	assert.Empty(t, buf.String())
}

func TestPrintBestGenome(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBestGenome(evolution.GenerationRecord{
		Generation:  4,
		BestFitness: 10.1,
		BestGenome: evolution.Genome{
			Technique: "layered",
			Modifiers: []string{"case-jitter", "nonce-frame"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "BEST GENOME")
	assert.Contains(t, out, "layered")
	assert.Contains(t, out, "case-jitter, nonce-frame")
	assert.Contains(t, out, "10.10")
	assert.Contains(t, out, "Generation: 4")
}
