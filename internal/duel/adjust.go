package duel

import (
	"strings"

	"github.com/jonathan/variantlab/internal/verdict"
)

// AdjustScore applies the rationale-based reinterpretation policy to a strict
// judge's verdict: hedge markers in the rationale lower the score by the
// configured penalty, agreement markers raise it by the configured bonus, and
// the result is clamped to the scale. A verdict whose rationale both hedges
// and agrees nets the two shifts.
func AdjustScore(v verdict.Verdict, cfg Config) int {
	score := v.Score
	rationale := strings.ToLower(v.Rationale)

	if containsAny(rationale, cfg.HedgeMarkers) {
		score -= cfg.HedgePenalty
	}
	if containsAny(rationale, cfg.AgreementMarkers) {
		score += cfg.AgreementBonus
	}

	if score < 0 {
		score = 0
	}
	if cfg.ScaleMax > 0 && score > cfg.ScaleMax {
		score = cfg.ScaleMax
	}
	return score
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(text, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
