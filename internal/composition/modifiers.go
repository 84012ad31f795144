package composition

import (
	"strings"
	"unicode"

	"github.com/jonathan/variantlab/internal/entropy"
)

// Modifier identifiers understood by ApplyModifiers. These are the values a
// Genome carries in its Modifiers list.
const (
	ModifierLineReorder   = "line-reorder"
	ModifierCaseJitter    = "case-jitter"
	ModifierSpacingJitter = "spacing-jitter"
	ModifierDelimiterSwap = "delimiter-swap"
	ModifierNonceFrame    = "nonce-frame"
)

// KnownModifiers returns all modifier identifiers in a stable order.
func KnownModifiers() []string {
	return []string{
		ModifierLineReorder,
		ModifierCaseJitter,
		ModifierSpacingJitter,
		ModifierDelimiterSwap,
		ModifierNonceFrame,
	}
}

// ApplyModifiers applies each recognized modifier to the text in the given
// order. Every transform draws from the entropy engine, so a fixed seed plus
// a fixed modifier list reproduces the output. Unknown modifier identifiers
// are skipped.
func ApplyModifiers(ent *entropy.Engine, text string, modifiers []string) string {
	for _, m := range modifiers {
		switch m {
		case ModifierLineReorder:
			text = reorderLines(ent, text)
		case ModifierCaseJitter:
			text = jitterCase(ent, text)
		case ModifierSpacingJitter:
			text = jitterSpacing(ent, text)
		case ModifierDelimiterSwap:
			text = swapDelimiters(ent, text)
		case ModifierNonceFrame:
			text = frameWithNonce(ent, text)
		}
	}
	return text
}

// reorderLines partial-shuffles the text's non-blank line blocks at the
// engine's level, keeping blank-line separators intact.
func reorderLines(ent *entropy.Engine, text string) string {
	blocks := strings.Split(text, "\n\n")
	if len(blocks) < 2 {
		return text
	}
	shuffled := entropy.PartialShuffle(ent, blocks, float64(ent.Level()))
	return strings.Join(shuffled, "\n\n")
}

// jitterCase flips the case of individual letters with a probability scaled
// by the engine's level.
func jitterCase(ent *entropy.Engine, text string) string {
	probability := float64(ent.Level()) * 0.15
	out := []rune(text)
	for i, r := range out {
		if !unicode.IsLetter(r) || !ent.CoinFlip(probability) {
			continue
		}
		if unicode.IsUpper(r) {
			out[i] = unicode.ToLower(r)
		} else {
			out[i] = unicode.ToUpper(r)
		}
	}
	return string(out)
}

// jitterSpacing re-draws the spacing between blocks from the entropy spacing
// pool.
func jitterSpacing(ent *entropy.Engine, text string) string {
	blocks := strings.Split(text, "\n\n")
	if len(blocks) < 2 {
		return text
	}
	var sb strings.Builder
	for i, block := range blocks {
		sb.WriteString(block)
		if i < len(blocks)-1 {
			sb.WriteString("\n")
			sb.WriteString(ent.Spacing("loose"))
		}
	}
	return sb.String()
}

// swapDelimiters replaces any line consisting of a single repeated
// punctuation character with a freshly drawn section delimiter.
func swapDelimiters(ent *entropy.Engine, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if isDelimiterLine(line) {
			lines[i] = ent.Delimiter("section")
		}
	}
	return strings.Join(lines, "\n")
}

func isDelimiterLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	runes := []rune(trimmed)
	first := runes[0]
	if unicode.IsLetter(first) || unicode.IsDigit(first) {
		return false
	}
	for _, r := range runes[1:] {
		if r != first {
			return false
		}
	}
	return true
}

// frameWithNonce wraps the whole text in a matched random tag pair.
func frameWithNonce(ent *entropy.Engine, text string) string {
	nonce := strings.ToUpper(ent.Noise(8, "alpha"))
	return "<" + nonce + ">\n" + text + "\n</" + nonce + ">"
}
