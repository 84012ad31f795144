// Package entropy provides the single seeded randomness source used by all
// variant generation components. Every pseudorandom draw in a run flows
// through one Engine so that a fixed seed reproduces the entire run.
package entropy

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	mrand "math/rand"
	"os"
	"time"
)

// Level is the entropy intensity for a generation run. It scales how much
// randomized variation is injected into structure, content, and ordering.
type Level float64

// Entropy intensity levels.
const (
	// LevelMinimal produces subtle variation for low-profile output
	LevelMinimal Level = 0.2
	// LevelModerate produces noticeable but balanced variation
	LevelModerate Level = 0.5
	// LevelHigh produces significant variation
	LevelHigh Level = 0.75
	// LevelMaximum produces near-complete randomization
	LevelMaximum Level = 0.95
)

// LevelForMode maps an operation mode name to an entropy level.
// Unknown modes default to LevelModerate.
func LevelForMode(mode string) Level {
	switch mode {
	case "stealth":
		return LevelMinimal
	case "balanced":
		return LevelModerate
	case "aggressive":
		return LevelHigh
	case "chaos":
		return LevelMaximum
	default:
		return LevelModerate
	}
}

// Profile captures the entropy configuration derived for one run.
// It is created once per run and never mutated.
type Profile struct {
	Seed             int64     `json:"seed"`
	Level            Level     `json:"level"`
	RunID            string    `json:"run_id"`
	ComponentShuffle bool      `json:"component_shuffle"`
	DelimiterEntropy bool      `json:"delimiter_entropy"`
	SpacingEntropy   bool      `json:"spacing_entropy"`
	CaseEntropy      bool      `json:"case_entropy"`
	OrderEntropy     bool      `json:"order_entropy"`
	StructureEntropy bool      `json:"structure_entropy"`
	CreatedAt        time.Time `json:"created_at"`
}

// Engine is the controlled randomness source for one run. It is not safe for
// concurrent use; callers evaluating work in parallel must use Fork to derive
// independently seeded engines.
type Engine struct {
	seed    int64
	level   Level
	rng     *mrand.Rand
	profile Profile
}

// NewEngine creates an engine with a seed derived from multiple independent
// entropy sources. Runs are not reproducible; use NewSeededEngine for that.
func NewEngine(level Level) *Engine {
	return NewSeededEngine(deriveSeed(), level)
}

// NewSeededEngine creates a fully deterministic engine from an explicit seed.
func NewSeededEngine(seed int64, level Level) *Engine {
	e := &Engine{level: level}
	e.reset(seed)
	return e
}

// deriveSeed combines wall-clock nanoseconds, a crypto/rand draw, the process
// ID, and random text through SHA-256, truncated to 64 bits.
func deriveSeed() int64 {
	var random [16]byte
	_, _ = rand.Read(random[:])

	h := sha256.New()
	fmt.Fprintf(h, "%d|", time.Now().UnixNano())
	h.Write(random[:])
	fmt.Fprintf(h, "|%d|", os.Getpid())
	h.Write(randomLetters(16))

	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

func randomLetters(n int) []byte {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = letters[int(buf[i])%len(letters)]
	}
	return buf
}

// reset reseeds the generator and derives a fresh profile. The profile flags
// are themselves pseudorandom draws, so they are reproducible for a fixed
// seed.
func (e *Engine) reset(seed int64) {
	e.seed = seed
	e.rng = mrand.New(mrand.NewSource(seed))

	intensity := float64(e.level)
	e.profile = Profile{
		Seed:             seed,
		Level:            e.level,
		RunID:            runID(seed),
		ComponentShuffle: e.rng.Float64() < intensity,
		DelimiterEntropy: e.rng.Float64() < intensity,
		SpacingEntropy:   e.rng.Float64() < intensity*0.8,
		CaseEntropy:      e.rng.Float64() < intensity*0.5,
		OrderEntropy:     e.rng.Float64() < intensity,
		StructureEntropy: e.rng.Float64() < intensity*0.9,
		CreatedAt:        time.Now(),
	}
}

func runID(seed int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("variantlab-run-%d", seed)))
	return fmt.Sprintf("%x", sum)[:12]
}

// Reseed restarts the run with an explicit seed.
func (e *Engine) Reseed(seed int64) {
	e.reset(seed)
}

// ReseedRandom restarts the run with a freshly derived seed.
func (e *Engine) ReseedRandom() {
	e.reset(deriveSeed())
}

// Seed returns the seed this engine was initialized with.
func (e *Engine) Seed() int64 { return e.seed }

// Level returns the entropy intensity level.
func (e *Engine) Level() Level { return e.level }

// Profile returns the immutable entropy profile for this run.
func (e *Engine) Profile() Profile { return e.profile }

// RunID returns the derived run identifier.
func (e *Engine) RunID() string { return e.profile.RunID }

// Signature returns a short signature identifying this entropy state,
// embedded in Variant provenance.
func (e *Engine) Signature() string {
	return fmt.Sprintf("E%s-%.2f", e.profile.RunID[:8], float64(e.level))
}

// Fork derives an independently seeded engine for concurrent evaluation.
// The child seed is a hash of the parent seed and the label, so forks are
// reproducible and do not consume parent generator state.
func (e *Engine) Fork(label string) *Engine {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", e.seed, label)))
	child := int64(binary.BigEndian.Uint64(sum[:8]))
	return NewSeededEngine(child, e.level)
}

// CoinFlip returns true with the given probability.
func (e *Engine) CoinFlip(probability float64) bool {
	return e.rng.Float64() < probability
}

// RangeValue returns a uniform value in [min, max).
func (e *Engine) RangeValue(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + e.rng.Float64()*(max-min)
}

// IntRange returns a uniform integer in [min, max] inclusive.
func (e *Engine) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + e.rng.Intn(max-min+1)
}

// Choice returns a uniformly random element, or the zero value for an empty
// slice.
func Choice[T any](e *Engine, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[e.rng.Intn(len(items))]
}

// Sample returns k distinct elements in random order. If k exceeds the input
// length the whole input is returned shuffled.
func Sample[T any](e *Engine, items []T, k int) []T {
	if len(items) == 0 || k <= 0 {
		return nil
	}
	if k > len(items) {
		k = len(items)
	}
	perm := e.rng.Perm(len(items))
	out := make([]T, k)
	for i := 0; i < k; i++ {
		out[i] = items[perm[i]]
	}
	return out
}

// WeightedChoice samples one element with probability proportional to its
// temperature-rescaled weight. Temperature below 1 sharpens the distribution
// toward the maximum weight; above 1 flattens it toward uniform. Nil weights
// mean uniform. Returns the zero value for an empty slice.
func WeightedChoice[T any](e *Engine, items []T, weights []float64, temperature float64) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	if len(weights) != len(items) {
		return Choice(e, items)
	}

	scaled := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		if temperature > 0 && temperature != 1.0 {
			w = math.Pow(w, 1.0/temperature)
		}
		scaled[i] = w
		total += w
	}
	if total <= 0 {
		return Choice(e, items)
	}

	r := e.rng.Float64() * total
	cumulative := 0.0
	for i, w := range scaled {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}
	return items[len(items)-1]
}

// PartialShuffle performs floor(n*intensity) random pairwise swaps and
// returns a new slice. Intensity 0 leaves the order unchanged; intensity 1
// performs exactly n swaps. The input is never modified.
func PartialShuffle[T any](e *Engine, items []T, intensity float64) []T {
	out := make([]T, len(items))
	copy(out, items)
	if len(items) < 2 || intensity <= 0 {
		return out
	}
	if intensity > 1 {
		intensity = 1
	}

	swaps := int(math.Floor(float64(len(items)) * intensity))
	for s := 0; s < swaps; s++ {
		i := e.rng.Intn(len(out))
		j := e.rng.Intn(len(out) - 1)
		if j >= i {
			j++
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// OrderPreservingShuffle shuffles items so that higher-weight items stay
// closer to their original position. Each item's position variance is
// inversely proportional to its weight, scaled by the engine level, so
// structurally important items keep their template-designed place while the
// overall layout still varies. Mismatched weights fall back to PartialShuffle
// at the engine's level.
func OrderPreservingShuffle[T any](e *Engine, items []T, weights []float64) []T {
	if len(items) == 0 {
		return nil
	}
	if len(weights) != len(items) {
		return PartialShuffle(e, items, float64(e.level))
	}

	type entry struct {
		index  int
		weight float64
	}
	order := make([]entry, len(items))
	for i, w := range weights {
		order[i] = entry{index: i, weight: w}
	}
	// Place heavy items first so they get first pick of nearby positions.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j].weight > order[j-1].weight; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	out := make([]T, len(items))
	free := make([]int, len(items))
	for i := range free {
		free[i] = i
	}

	for _, ent := range order {
		variance := int((1 - ent.weight) * float64(len(items)) * float64(e.level))
		if variance < 1 {
			variance = 1
		}

		candidates := make([]int, 0, len(free))
		for _, p := range free {
			if abs(p-ent.index) <= variance {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			candidates = free
		}

		pos := candidates[e.rng.Intn(len(candidates))]
		out[pos] = items[ent.index]
		for i, p := range free {
			if p == pos {
				free = append(free[:i], free[i+1:]...)
				break
			}
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
