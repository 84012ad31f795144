// Package pool provides read-only content fragment pools used to fill
// skeleton slots. The built-in provider embeds its fragments at compile time
// and validates them against a JSON Schema at first load.
package pool

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonathan/variantlab/internal/schemas"
)

// Fragment is one reusable piece of slot content.
type Fragment struct {
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Weight   float64  `json:"weight"`
	Targets  []string `json:"targets,omitempty"`
}

// Provider serves ordered fragment pools by content category. Implementations
// are static and loaded once; GetPool must be safe for concurrent use.
type Provider interface {
	GetPool(category, target string) ([]Fragment, error)
}

// UnknownCategoryError indicates a requested category has no pool.
type UnknownCategoryError struct {
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("no fragment pool for category %q", e.Category)
}

//go:embed fragments.json
var fragmentsJSON []byte

//go:embed fragments_schema.json
var fragmentsSchema []byte

type fragmentFile struct {
	Fragments []Fragment `json:"fragments"`
}

// EmbeddedProvider serves the compiled-in fragment pools.
type EmbeddedProvider struct {
	byCategory map[string][]Fragment
}

var (
	embeddedOnce sync.Once
	embedded     *EmbeddedProvider
	embeddedErr  error
)

// NewEmbeddedProvider parses and validates the embedded fragment file. The
// work happens once; subsequent calls return the cached provider.
func NewEmbeddedProvider() (*EmbeddedProvider, error) {
	embeddedOnce.Do(func() {
		embedded, embeddedErr = loadFragments(fragmentsJSON)
	})
	return embedded, embeddedErr
}

func loadFragments(raw []byte) (*EmbeddedProvider, error) {
	if err := schemas.ValidateJSONString(string(fragmentsSchema), string(raw)); err != nil {
		return nil, fmt.Errorf("fragment pool failed schema validation: %w", err)
	}

	var file fragmentFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fragment pool: %w", err)
	}

	byCategory := make(map[string][]Fragment)
	for _, f := range file.Fragments {
		if f.Weight == 0 {
			f.Weight = 1.0
		}
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}
	return &EmbeddedProvider{byCategory: byCategory}, nil
}

// GetPool returns the fragments for a category, filtered to those applicable
// to the target. Fragments with no target list apply to every target. An
// empty target returns the whole category.
func (p *EmbeddedProvider) GetPool(category, target string) ([]Fragment, error) {
	all, ok := p.byCategory[category]
	if !ok {
		return nil, &UnknownCategoryError{Category: category}
	}
	if target == "" {
		return append([]Fragment(nil), all...), nil
	}

	var out []Fragment
	for _, f := range all {
		if len(f.Targets) == 0 {
			out = append(out, f)
			continue
		}
		for _, t := range f.Targets {
			if t == target {
				out = append(out, f)
				break
			}
		}
	}
	if len(out) == 0 {
		// Target-specific filtering must never empty a known category.
		out = append(out, all...)
	}
	return out, nil
}

// Categories returns the category names with at least one fragment.
func (p *EmbeddedProvider) Categories() []string {
	out := make([]string, 0, len(p.byCategory))
	for c := range p.byCategory {
		out = append(out, c)
	}
	return out
}

// StaticProvider is an in-memory Provider, mainly for tests and callers that
// build pools programmatically.
type StaticProvider struct {
	byCategory map[string][]Fragment
}

// NewStaticProvider groups the given fragments by category.
func NewStaticProvider(fragments []Fragment) *StaticProvider {
	byCategory := make(map[string][]Fragment)
	for _, f := range fragments {
		if f.Weight == 0 {
			f.Weight = 1.0
		}
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}
	return &StaticProvider{byCategory: byCategory}
}

// GetPool returns all fragments for a category regardless of target.
func (p *StaticProvider) GetPool(category, target string) ([]Fragment, error) {
	all, ok := p.byCategory[category]
	if !ok {
		return nil, &UnknownCategoryError{Category: category}
	}
	return append([]Fragment(nil), all...), nil
}
