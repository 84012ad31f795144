// Package verdict converts arbitrary, possibly malformed judge text into a
// structured Verdict. Parsing never fails: when every extraction strategy
// misses, a defined fallback Verdict is returned with ParseSuccess=false.
package verdict

// Verdict is the structured output of one judge call.
type Verdict struct {
	// Score is the numeric judgement, clamped to [0, scale max].
	Score int `json:"score"`
	// Rationale is the judge's explanation for the score.
	Rationale string `json:"justification"`
	// Suggestion is the judge's proposed improvement to the evaluated text.
	Suggestion string `json:"suggestion"`
	// ParseSuccess is false when the verdict was recovered via the salvage
	// path or fell back entirely; such verdicts are low-confidence.
	ParseSuccess bool `json:"parse_success"`
	// Raw retains the judge's unmodified response text.
	Raw string `json:"raw,omitempty"`
}

// Fallback returns the defined verdict for an unusable judge response.
func Fallback(diagnostic string) Verdict {
	const maxDiagnostic = 100
	if len(diagnostic) > maxDiagnostic {
		diagnostic = diagnostic[:maxDiagnostic] + "..."
	}
	return Verdict{
		Score:        0,
		Rationale:    "parse error: " + diagnostic,
		ParseSuccess: false,
	}
}
