// Package composition assembles Variants from Skeletons: skeleton selection,
// entropy-bounded slot ordering, slot filling from content pools, and
// template rendering with entropy-drawn formatting.
package composition

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/variantlab/internal/entropy"
	"github.com/jonathan/variantlab/internal/pool"
)

// Selection weights for skeleton scoring. Selection is sampled, never argmax,
// so one dominant skeleton cannot become a recurring structural fingerprint.
const (
	modeWeight        = 0.5
	targetWeight      = 0.4
	baselineScore     = 0.1
	selectTemperature = 1.2
)

// Slot-ordering thresholds per position group. Early slots shuffle least to
// keep the opening coherent; late slots tolerate the most movement.
const (
	earlyShuffleThreshold  = 0.3
	middleShuffleThreshold = 0.2
	lateShuffleThreshold   = 0.4
	earlyShuffleScale      = 0.5
	lateShuffleScale       = 0.7
)

var placeholderRe = regexp.MustCompile(`\{([a-z0-9_]+(?::[a-z0-9_]+)?)\}`)

// Engine composes variants. All randomness flows through the entropy engine,
// so a fixed seed reproduces every composition decision.
type Engine struct {
	ent       *entropy.Engine
	skeletons map[string]Skeleton
}

// NewEngine creates a composition engine over the built-in skeleton registry.
func NewEngine(ent *entropy.Engine) *Engine {
	skeletons := make(map[string]Skeleton, len(builtinSkeletons))
	for name, s := range builtinSkeletons {
		skeletons[name] = s
	}
	return &Engine{ent: ent, skeletons: skeletons}
}

// Register adds or replaces a skeleton in this engine's registry.
func (e *Engine) Register(s Skeleton) {
	e.skeletons[s.Name] = s
}

// Skeleton looks up a registered skeleton by name.
func (e *Engine) Skeleton(name string) (Skeleton, error) {
	s, ok := e.skeletons[name]
	if !ok {
		return Skeleton{}, &UnknownSkeletonError{Name: name}
	}
	return s, nil
}

// SelectSkeleton scores every registered skeleton by its mode and target
// affinity plus entropy-scaled jitter bounded by the skeleton's tolerance,
// then samples from the scores at a flattening temperature.
func (e *Engine) SelectSkeleton(mode, target string) Skeleton {
	names := make([]string, 0, len(e.skeletons))
	for name := range e.skeletons {
		names = append(names, name)
	}
	// Map iteration order would break seed reproducibility.
	sort.Strings(names)

	scores := make([]float64, len(names))
	for i, name := range names {
		s := e.skeletons[name]
		modeScore := affinity(s.ModeAffinity, mode)
		targetScore := affinity(s.TargetAffinity, target)
		jitter := e.ent.RangeValue(-0.1, 0.1) * s.EntropyTolerance
		scores[i] = modeScore*modeWeight + targetScore*targetWeight + baselineScore + jitter
	}

	selected := entropy.WeightedChoice(e.ent, names, scores, selectTemperature)
	return e.skeletons[selected]
}

func affinity(m map[string]float64, key string) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return 0.5
}

// OrderSlots returns the skeleton's slots grouped by position hint and
// partial-shuffled within each group. Each group has its own intensity
// threshold and scale so structural coherence degrades gradually with
// intensity.
func (e *Engine) OrderSlots(s Skeleton, intensity float64) []Slot {
	var early, middle, late []Slot
	for _, slot := range s.Slots {
		switch slot.Position {
		case "early":
			early = append(early, slot)
		case "late":
			late = append(late, slot)
		default:
			middle = append(middle, slot)
		}
	}

	if intensity > earlyShuffleThreshold {
		early = entropy.PartialShuffle(e.ent, early, intensity*earlyShuffleScale)
	}
	if intensity > middleShuffleThreshold {
		middle = entropy.PartialShuffle(e.ent, middle, intensity)
	}
	if intensity > lateShuffleThreshold {
		late = entropy.PartialShuffle(e.ent, late, intensity*lateShuffleScale)
	}

	out := make([]Slot, 0, len(s.Slots))
	out = append(out, early...)
	out = append(out, middle...)
	out = append(out, late...)
	return out
}

// FillSlots selects one fragment per slot from the provider, weighted by
// fragment weight at the engine's temperature. Pool lookup failures for
// optional slots leave the slot empty; for required slots they propagate.
func (e *Engine) FillSlots(s Skeleton, provider pool.Provider, target string) (map[string]string, error) {
	fill := make(map[string]string, len(s.Slots))
	for _, slot := range s.Slots {
		fragments, err := provider.GetPool(slot.ContentType, target)
		if err != nil || len(fragments) == 0 {
			if slot.Required {
				return nil, fmt.Errorf("filling required slot %q (category %q): %w", slot.Name, slot.ContentType, err)
			}
			continue
		}

		weights := make([]float64, len(fragments))
		for i, f := range fragments {
			weights[i] = f.Weight
		}
		chosen := entropy.WeightedChoice(e.ent, fragments, weights, selectTemperature)
		fill[slot.Name] = chosen.Text
	}
	return fill, nil
}

// Render substitutes format tokens and slot content into the skeleton's
// template. Format tokens draw from the entropy engine: one delimiter and one
// matched bracket pair per render, and a unique nonce tag pair per nonce
// label. Unfilled optional slots collapse; an unfilled required slot or an
// unrecognized placeholder is a *CompositionError. Runs of blank lines are
// collapsed and the result is trimmed.
func (e *Engine) Render(s Skeleton, content map[string]string) (string, error) {
	slotNames := make(map[string]bool, len(s.Slots))
	for _, slot := range s.Slots {
		slotNames[slot.Name] = true
	}

	// Validate every placeholder before any substitution so content text
	// containing braces cannot mask or fake a template token.
	nonceLabels := map[string]bool{}
	for _, match := range placeholderRe.FindAllStringSubmatch(s.Template, -1) {
		token := match[1]
		switch {
		case token == "delimiter" || token == "bracket_open" || token == "bracket_close":
		case strings.HasPrefix(token, "nonce_open:"):
			nonceLabels[strings.TrimPrefix(token, "nonce_open:")] = true
		case strings.HasPrefix(token, "nonce_close:"):
			nonceLabels[strings.TrimPrefix(token, "nonce_close:")] = true
		case slotNames[token]:
		default:
			return "", &CompositionError{Skeleton: s.Name, Message: fmt.Sprintf("unknown placeholder {%s}", token)}
		}
	}

	text := s.Template

	delimiter := e.ent.Delimiter("section")
	text = strings.ReplaceAll(text, "{delimiter}", delimiter)

	openBracket, closeBracket := e.ent.Brackets()
	text = strings.ReplaceAll(text, "{bracket_open}", openBracket)
	text = strings.ReplaceAll(text, "{bracket_close}", closeBracket)

	// Each label gets its own nonce, unique within this render, so nested
	// open/close pairs cannot collide.
	used := map[string]bool{}
	labels := make([]string, 0, len(nonceLabels))
	for label := range nonceLabels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		nonce := strings.ToUpper(e.ent.Noise(8, "alpha"))
		for used[nonce] {
			nonce = strings.ToUpper(e.ent.Noise(8, "alpha"))
		}
		used[nonce] = true
		text = strings.ReplaceAll(text, "{nonce_open:"+label+"}", "<"+nonce+">")
		text = strings.ReplaceAll(text, "{nonce_close:"+label+"}", "</"+nonce+">")
	}

	for _, slot := range s.Slots {
		value := content[slot.Name]
		if value == "" && slot.Required {
			return "", &CompositionError{Skeleton: s.Name, Slot: slot.Name, Message: "required slot has no content"}
		}
		text = strings.ReplaceAll(text, "{"+slot.Name+"}", value)
	}

	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text), nil
}

// Compose selects content for every slot from the provider, renders the
// skeleton, and wraps the result in a Variant with full provenance.
func (e *Engine) Compose(s Skeleton, provider pool.Provider, target string) (Variant, error) {
	fill, err := e.FillSlots(s, provider, target)
	if err != nil {
		return Variant{}, err
	}
	text, err := e.Render(s, fill)
	if err != nil {
		return Variant{}, err
	}
	return Variant{
		Text:             text,
		SkeletonName:     s.Name,
		Fill:             fill,
		EntropySignature: e.ent.Signature(),
	}, nil
}
