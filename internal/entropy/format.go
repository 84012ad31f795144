package entropy

import (
	"fmt"
	"strings"
)

// Format pools. Each draw routes through the engine's generator so formatting
// choices are reproducible under a fixed seed.

var sectionDelimiters = []string{
	"───────────────────",
	"═══════════════════",
	"-------------------",
	"___________________",
	"~~~~~~~~~~~~~~~~~~~",
	"*******************",
	"###################",
	":::::::::::::::::::",
	"+++++++++++++++++++",
	"∙∙∙∙∙∙∙∙∙∙∙∙∙∙∙∙∙∙∙",
	"▬▬▬▬▬▬▬▬▬▬▬▬▬▬▬▬▬▬▬",
	"◆◆◆◆◆◆◆◆◆◆◆◆◆◆◆◆◆◆◆",
}

var subsectionDelimiters = []string{
	"---", "···", "~~~", "***", "+++", "###", ":::", "▸▸▸", "◦◦◦",
}

var bullets = []string{
	"•", "○", "●", "◦", "▪", "►", "▸", "→", "⇒", "★", "◆", "■", "-", "*",
}

var bracketOpen = []string{
	"[", "(", "{", "⟨", "⟪", "【", "「", "『", "〈", "《",
}

var bracketClose = []string{
	"]", ")", "}", "⟩", "⟫", "】", "」", "』", "〉", "》",
}

var headerFormats = []string{
	"[%s]",
	"【%s】",
	"《%s》",
	"⟨%s⟩",
	"── %s ──",
	"═══ %s ═══",
	"*** %s ***",
	"### %s ###",
	"::: %s :::",
	">>> %s <<<",
	"~~~ %s ~~~",
	"--- %s ---",
	"+++ %s +++",
	"| %s |",
}

var indexFormats = []string{
	"%d.", "%d)", "(%d)", "[%d]", "#%d", "%d:", "%d>", "L%d:", "S%d.", "%02d.",
}

var spacings = []string{"", " ", "  ", "\t", "\n", "\n\n", " \n"}

var noiseCharsets = map[string]string{
	"alpha":    "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
	"numeric":  "0123456789",
	"alphanum": "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
	"mixed":    "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-.",
}

// Delimiter returns a random delimiter of the given kind ("section" or
// "subsection"). Unknown kinds fall back to section delimiters.
func (e *Engine) Delimiter(kind string) string {
	pool := sectionDelimiters
	if kind == "subsection" {
		pool = subsectionDelimiters
	}
	return Choice(e, pool)
}

// Bullet returns a random bullet character.
func (e *Engine) Bullet() string {
	return Choice(e, bullets)
}

// Brackets returns a matched random bracket pair.
func (e *Engine) Brackets() (string, string) {
	idx := e.rng.Intn(len(bracketOpen))
	return bracketOpen[idx], bracketClose[idx]
}

// FormatHeader renders a section header name in a random style.
func (e *Engine) FormatHeader(name string) string {
	return fmt.Sprintf(Choice(e, headerFormats), name)
}

// FormatIndex renders an item index in a random style.
func (e *Engine) FormatIndex(n int) string {
	return fmt.Sprintf(Choice(e, indexFormats), n)
}

// Spacing returns contextual spacing. Context "tight" draws from compact
// spacing, "loose" from newline-heavy spacing, anything else from the full
// pool.
func (e *Engine) Spacing(context string) string {
	switch context {
	case "tight":
		return Choice(e, []string{"", " "})
	case "loose":
		return Choice(e, []string{"\n", "\n\n", " \n"})
	default:
		return Choice(e, spacings)
	}
}

// Noise returns a random string of the given length from the named charset.
// Unknown charsets use "mixed".
func (e *Engine) Noise(length int, charset string) string {
	chars, ok := noiseCharsets[charset]
	if !ok {
		chars = noiseCharsets["mixed"]
	}
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(chars[e.rng.Intn(len(chars))])
	}
	return sb.String()
}
