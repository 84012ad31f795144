package duel

import (
	"context"

	"github.com/jonathan/variantlab/internal/composition"
	"github.com/jonathan/variantlab/internal/entropy"
)

// MutationRefiner is the deterministic refinement fallback: it applies one or
// two randomly chosen text modifiers through the entropy engine. It never
// fails, which makes it safe as the loop's last resort.
type MutationRefiner struct {
	ent *entropy.Engine
}

// NewMutationRefiner creates a mutation refiner over the given entropy
// engine.
func NewMutationRefiner(ent *entropy.Engine) *MutationRefiner {
	return &MutationRefiner{ent: ent}
}

// Refine ignores the rationale and applies random modifiers to the text.
// The error is always nil.
func (r *MutationRefiner) Refine(ctx context.Context, text, rationale string) (string, error) {
	count := r.ent.IntRange(1, 2)
	modifiers := entropy.Sample(r.ent, composition.KnownModifiers(), count)
	return composition.ApplyModifiers(r.ent, text, modifiers), nil
}
