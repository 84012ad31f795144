package evolution

import (
	"sort"

	"github.com/jonathan/variantlab/internal/entropy"
)

// Config holds the genetic-algorithm parameters.
type Config struct {
	// PopulationSize is the number of genomes per generation.
	PopulationSize int
	// EliteCount is the number of top genomes copied verbatim into the next
	// generation.
	EliteCount int
	// TournamentK is the tournament size for parent selection.
	TournamentK int
	// MutationRate is the per-child probability of applying one mutation.
	MutationRate float64
	// CrossoverRate is the probability of producing a child by crossover
	// rather than direct reproduction.
	CrossoverRate float64
	// Techniques and Modifiers are the available search-space identifiers.
	Techniques []string
	Modifiers  []string
	// MaxGenerations bounds the search.
	MaxGenerations int
	// ConvergenceWindow and ConvergenceEpsilon control convergence
	// detection over the best-of-generation history.
	ConvergenceWindow  int
	ConvergenceEpsilon float64
}

// DefaultConfig returns the standard GA parameters for the given search
// space.
func DefaultConfig(techniques, modifiers []string) Config {
	return Config{
		PopulationSize:     10,
		EliteCount:         2,
		TournamentK:        3,
		MutationRate:       0.3,
		CrossoverRate:      0.7,
		Techniques:         techniques,
		Modifiers:          modifiers,
		MaxGenerations:     10,
		ConvergenceWindow:  3,
		ConvergenceEpsilon: 0.1,
	}
}

// GenerationRecord is the best-of-generation snapshot kept in history.
type GenerationRecord struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	BestGenome  Genome  `json:"best_genome"`
}

// Engine drives the generational loop. All randomness flows through the
// supplied entropy engine so a fixed seed reproduces the whole search.
type Engine struct {
	cfg        Config
	ent        *entropy.Engine
	generation int
	history    []GenerationRecord
}

// NewEngine validates the configuration and creates an engine.
func NewEngine(cfg Config, ent *entropy.Engine) (*Engine, error) {
	if cfg.PopulationSize <= 0 {
		return nil, &ConfigError{Field: "population_size", Message: "must be positive"}
	}
	if cfg.EliteCount < 0 || cfg.EliteCount > cfg.PopulationSize {
		return nil, &ConfigError{Field: "elite_count", Message: "must be within [0, population_size]"}
	}
	if len(cfg.Techniques) == 0 {
		return nil, &ConfigError{Field: "techniques", Message: "at least one technique is required"}
	}
	if len(cfg.Modifiers) == 0 {
		return nil, &ConfigError{Field: "modifiers", Message: "at least one modifier is required"}
	}
	if cfg.TournamentK <= 0 {
		cfg.TournamentK = 3
	}
	return &Engine{cfg: cfg, ent: ent}, nil
}

// Generation returns the current generation counter.
func (e *Engine) Generation() int { return e.generation }

// History returns the best-of-generation records accumulated so far.
func (e *Engine) History() []GenerationRecord { return e.history }

// InitializePopulation creates the generation-zero population: each genome
// gets a random technique and a random-size random subset of the available
// modifiers.
func (e *Engine) InitializePopulation() []Genome {
	population := make([]Genome, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.PopulationSize; i++ {
		count := e.ent.IntRange(1, 3)
		if count > len(e.cfg.Modifiers) {
			count = len(e.cfg.Modifiers)
		}
		population = append(population, Genome{
			Technique:  entropy.Choice(e.ent, e.cfg.Techniques),
			Modifiers:  entropy.Sample(e.ent, e.cfg.Modifiers, count),
			Generation: 0,
		})
	}
	return population
}

// TournamentSelect draws k genomes uniformly from the evaluated population
// and returns the one with the highest fitness.
func (e *Engine) TournamentSelect(evaluated []Genome, k int) Genome {
	if k <= 0 {
		k = e.cfg.TournamentK
	}
	tournament := entropy.Sample(e.ent, evaluated, k)
	best := tournament[0]
	for _, g := range tournament[1:] {
		if g.Fitness > best.Fitness {
			best = g
		}
	}
	return best
}

// Crossover combines two parents: the child's technique comes uniformly from
// either parent and its modifier set is a random-size subset of the union of
// both parents' modifiers.
func (e *Engine) Crossover(parentA, parentB Genome) Genome {
	technique := parentA.Technique
	if e.ent.CoinFlip(0.5) {
		technique = parentB.Technique
	}

	seen := map[string]bool{}
	var union []string
	for _, m := range append(append([]string(nil), parentA.Modifiers...), parentB.Modifiers...) {
		if !seen[m] {
			seen[m] = true
			union = append(union, m)
		}
	}

	var modifiers []string
	if len(union) > 0 {
		max := len(union)
		if max > 4 {
			max = 4
		}
		modifiers = entropy.Sample(e.ent, union, e.ent.IntRange(1, max))
	} else {
		modifiers = entropy.Sample(e.ent, e.cfg.Modifiers, 1)
	}

	return Genome{
		Technique:  technique,
		Modifiers:  modifiers,
		Generation: e.generation + 1,
		ParentIDs:  []string{parentA.ID(), parentB.ID()},
	}
}

// Mutation operation identifiers.
const (
	mutateAdd             = "add"
	mutateRemove          = "remove"
	mutateSwap            = "swap"
	mutateChangeTechnique = "change_technique"
)

// Mutate applies exactly one mutation chosen uniformly: add an unused
// modifier, remove a modifier while more than one remains, swap a modifier
// for an unused one, or replace the base technique. An impossible choice
// substitutes a guaranteed-valid alternative (technique replacement is always
// valid).
func (e *Engine) Mutate(genome Genome) Genome {
	out := genome.clone()
	out.Generation = e.generation + 1
	out.ParentIDs = []string{genome.ID()}

	unused := make([]string, 0, len(e.cfg.Modifiers))
	for _, m := range e.cfg.Modifiers {
		if !out.HasModifier(m) {
			unused = append(unused, m)
		}
	}

	op := entropy.Choice(e.ent, []string{mutateAdd, mutateRemove, mutateSwap, mutateChangeTechnique})
	switch {
	case op == mutateAdd && len(unused) > 0:
		out.Modifiers = append(out.Modifiers, entropy.Choice(e.ent, unused))
	case op == mutateRemove && len(out.Modifiers) > 1:
		idx := e.ent.IntRange(0, len(out.Modifiers)-1)
		out.Modifiers = append(out.Modifiers[:idx], out.Modifiers[idx+1:]...)
	case op == mutateSwap && len(out.Modifiers) > 0 && len(unused) > 0:
		idx := e.ent.IntRange(0, len(out.Modifiers)-1)
		out.Modifiers[idx] = entropy.Choice(e.ent, unused)
	default:
		out.Technique = entropy.Choice(e.ent, e.cfg.Techniques)
	}
	return out
}

// Evolve produces the next generation from an evaluated population: the top
// EliteCount genomes are copied verbatim, the remainder is filled by
// crossover (with probability CrossoverRate) or direct reproduction of a
// tournament-selected parent, each optionally mutated. Population size is
// preserved and the generation counter advances.
func (e *Engine) Evolve(evaluated []Genome) ([]Genome, error) {
	if len(evaluated) == 0 {
		return nil, &EmptyPopulationError{Generation: e.generation}
	}

	ranked := append([]Genome(nil), evaluated...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})

	e.history = append(e.history, GenerationRecord{
		Generation:  e.generation,
		BestFitness: ranked[0].Fitness,
		BestGenome:  ranked[0].clone(),
	})

	next := make([]Genome, 0, e.cfg.PopulationSize)

	eliteCount := e.cfg.EliteCount
	if eliteCount > len(ranked) {
		eliteCount = len(ranked)
	}
	for _, elite := range ranked[:eliteCount] {
		copied := elite.clone()
		copied.Generation = e.generation + 1
		copied.ParentIDs = []string{elite.ID()}
		next = append(next, copied)
	}

	for len(next) < e.cfg.PopulationSize {
		var child Genome
		if e.ent.CoinFlip(e.cfg.CrossoverRate) && len(ranked) >= 2 {
			parentA := e.TournamentSelect(ranked, e.cfg.TournamentK)
			parentB := e.TournamentSelect(ranked, e.cfg.TournamentK)
			child = e.Crossover(parentA, parentB)
		} else {
			parent := e.TournamentSelect(ranked, e.cfg.TournamentK)
			child = parent.clone()
			child.Fitness = 0
			child.Generation = e.generation + 1
			child.ParentIDs = []string{parent.ID()}
		}

		if e.ent.CoinFlip(e.cfg.MutationRate) {
			child = e.Mutate(child)
		}
		next = append(next, child)
	}

	e.generation++
	return next, nil
}

// Converged reports whether the spread of best-of-generation fitness over
// the last ConvergenceWindow generations is below ConvergenceEpsilon.
func (e *Engine) Converged() bool {
	window := e.cfg.ConvergenceWindow
	if window <= 0 || len(e.history) < window {
		return false
	}

	recent := e.history[len(e.history)-window:]
	min, max := recent[0].BestFitness, recent[0].BestFitness
	for _, rec := range recent[1:] {
		if rec.BestFitness < min {
			min = rec.BestFitness
		}
		if rec.BestFitness > max {
			max = rec.BestFitness
		}
	}
	return max-min < e.cfg.ConvergenceEpsilon
}

// BestEver returns the highest-fitness record across all generations.
// ok is false when no generation has been recorded yet.
func (e *Engine) BestEver() (GenerationRecord, bool) {
	if len(e.history) == 0 {
		return GenerationRecord{}, false
	}
	best := e.history[0]
	for _, rec := range e.history[1:] {
		if rec.BestFitness > best.BestFitness {
			best = rec
		}
	}
	return best, true
}
