package evolution

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/variantlab/internal/entropy"
)

// EvaluateFunc scores one genome. The supplied entropy engine is a fork
// derived from the run seed and the genome's position, so concurrent
// evaluations stay reproducible and independent.
type EvaluateFunc func(ctx context.Context, genome Genome, ent *entropy.Engine) (float64, error)

// EvaluationFailure records a genome whose evaluation returned an error
// during a generation. Failed genomes receive fitness zero and stay in the
// population.
type EvaluationFailure struct {
	Index int
	ID    string
	Err   error
}

func (f EvaluationFailure) Error() string {
	return fmt.Sprintf("evaluation of genome %s (index %d): %v", f.ID, f.Index, f.Err)
}

// RunGeneration evaluates every genome in the population with at most
// maxConcurrent evaluations in flight, forking a sub-seeded entropy engine
// per genome. It blocks until all evaluations finish. A genome whose
// evaluation fails gets fitness zero; the failures are returned so callers
// can log them. Only context cancellation aborts the generation early.
func (e *Engine) RunGeneration(ctx context.Context, population []Genome, evaluate EvaluateFunc, maxConcurrent int) ([]Genome, []EvaluationFailure, error) {
	if len(population) == 0 {
		return nil, nil, &EmptyPopulationError{Generation: e.generation}
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	evaluated := make([]Genome, len(population))
	failures := make([]EvaluationFailure, len(population))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, genome := range population {
		i, genome := i, genome
		fork := e.ent.Fork(fmt.Sprintf("gen%d-genome%d", e.generation, i))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fitness, err := evaluate(gctx, genome, fork)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				genome.Fitness = 0
				evaluated[i] = genome
				failures[i] = EvaluationFailure{Index: i, ID: genome.ID(), Err: err}
				return nil
			}
			genome.Fitness = fitness
			evaluated[i] = genome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var failed []EvaluationFailure
	for _, f := range failures {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return evaluated, failed, nil
}
