package verdict

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// DefaultScaleMax is the upper bound of the standard 0-10 judge scale.
const DefaultScaleMax = 10

// payload mirrors the JSON object judges are instructed to return.
type payload struct {
	Score         json.Number `json:"score"`
	Justification string      `json:"justification"`
	Suggestion    string      `json:"suggestion"`
}

// strategy attempts one extraction approach. It reports ok=false on an
// explicit no-match; the parser then advances to the next strategy.
type strategy func(text string) (payload, bool)

// Parser extracts Verdicts from free-text judge responses using an ordered
// cascade of extraction strategies; the first success wins.
type Parser struct {
	scaleMax   int
	strategies []strategy
}

// NewParser creates a parser for a judge declaring the given score scale
// maximum. A non-positive max uses DefaultScaleMax.
func NewParser(scaleMax int) *Parser {
	if scaleMax <= 0 {
		scaleMax = DefaultScaleMax
	}
	p := &Parser{scaleMax: scaleMax}
	p.strategies = []strategy{
		parseDirect,
		parseFencedBlock,
		parseOuterBraces,
		parseBalancedObject,
	}
	return p
}

// Parse converts judge text into a Verdict. It never returns an error: the
// salvage path yields a low-confidence verdict and total failure yields the
// defined fallback.
func (p *Parser) Parse(text string) Verdict {
	if strings.TrimSpace(text) == "" {
		return Fallback("empty response")
	}

	for _, extract := range p.strategies {
		if got, ok := extract(text); ok {
			return p.verdict(got, text, true)
		}
	}

	// Salvage: independent regex extraction of whatever subset is present.
	if got, ok := salvage(text); ok {
		return p.verdict(got, text, false)
	}

	v := Fallback("could not parse: " + text)
	v.Raw = text
	return v
}

// ScaleMax returns the judge's declared scale maximum.
func (p *Parser) ScaleMax() int { return p.scaleMax }

func (p *Parser) verdict(got payload, raw string, parsed bool) Verdict {
	score := 0
	if s, err := got.Score.Int64(); err == nil {
		score = int(s)
	} else if f, err := got.Score.Float64(); err == nil {
		score = int(f)
	}

	return Verdict{
		Score:        p.clamp(score),
		Rationale:    got.Justification,
		Suggestion:   got.Suggestion,
		ParseSuccess: parsed,
		Raw:          raw,
	}
}

func (p *Parser) clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > p.scaleMax {
		return p.scaleMax
	}
	return score
}

// parseDirect attempts to parse the entire text as a JSON object.
func parseDirect(text string) (payload, bool) {
	var got payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &got); err != nil {
		return payload{}, false
	}
	return got, true
}

var fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")

// parseFencedBlock extracts a brace-delimited object from a markdown code
// fence and parses its interior.
func parseFencedBlock(text string) (payload, bool) {
	m := fencedBlockRe.FindStringSubmatch(text)
	if m == nil {
		return payload{}, false
	}
	return parseDirect(m[1])
}

// parseOuterBraces slices from the first opening brace to the last closing
// brace and parses the slice.
func parseOuterBraces(text string) (payload, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return payload{}, false
	}
	return parseDirect(text[start : end+1])
}

// parseBalancedObject runs a brace-matching state machine from the first
// opening brace, tracking nesting depth. Characters inside quoted spans are
// literal: a backslash suppresses the following character's special meaning
// and an unescaped quote toggles the in-string state. The scan stops when
// depth returns to zero, yielding the minimal balanced object even when
// rationale text contains nested braces or escaped quotes.
func parseBalancedObject(text string) (payload, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return payload{}, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return parseDirect(text[start : i+1])
			}
		}
	}
	return payload{}, false
}

var (
	scorePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)"score"\s*:\s*(\d+)`),
		regexp.MustCompile(`(?i)score["\s:]+(\d+)`),
		regexp.MustCompile(`(\d+)\s*/\s*10`),
		regexp.MustCompile(`(?i)rating[:\s]+(\d+)`),
	}
	justificationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)"justification"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`(?i)justification[:\s]+"?([^"\n]+)"?`),
	}
	suggestionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)"suggestion"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`(?i)suggestion[:\s]+"?([^"\n]+)"?`),
	}
)

// salvage independently extracts score, justification, and suggestion with
// label-pattern alternatives, assembling whatever subset is found. A salvaged
// score of zero is unusable and reports no match.
func salvage(text string) (payload, bool) {
	var got payload

	for _, re := range scorePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			got.Score = json.Number(m[1])
			break
		}
	}
	for _, re := range justificationPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			got.Justification = strings.TrimSpace(m[1])
			break
		}
	}
	for _, re := range suggestionPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			got.Suggestion = strings.TrimSpace(m[1])
			break
		}
	}

	score, err := strconv.Atoi(string(got.Score))
	if err != nil || score <= 0 {
		return payload{}, false
	}
	return got, true
}
