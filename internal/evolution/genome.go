// Package evolution implements the genetic-algorithm search loop over variant
// generation configurations: selection, crossover, mutation, elitism, and
// convergence detection.
package evolution

import (
	"fmt"
	"sort"
	"strings"
)

// Genome is one point in the search space: a base technique plus an ordered
// set of modifier identifiers. Fitness is populated by evaluation; Generation
// strictly increments from parent to child.
type Genome struct {
	Technique  string   `json:"technique"`
	Modifiers  []string `json:"modifiers"`
	Fitness    float64  `json:"fitness"`
	Generation int      `json:"generation"`
	ParentIDs  []string `json:"parent_ids,omitempty"`
}

// ID returns a deterministic identifier built from the technique, the sorted
// modifier set, and the generation number.
func (g Genome) ID() string {
	mods := append([]string(nil), g.Modifiers...)
	sort.Strings(mods)
	return fmt.Sprintf("%s_%s_g%d", g.Technique, strings.Join(mods, "+"), g.Generation)
}

// HasModifier reports whether the genome carries the given modifier.
func (g Genome) HasModifier(id string) bool {
	for _, m := range g.Modifiers {
		if m == id {
			return true
		}
	}
	return false
}

// clone returns a deep copy of the genome.
func (g Genome) clone() Genome {
	out := g
	out.Modifiers = append([]string(nil), g.Modifiers...)
	out.ParentIDs = append([]string(nil), g.ParentIDs...)
	return out
}
