package report

import "strings"

// punctuation maps common typographic code points onto ASCII before the
// Latin-1 pass so numeric and clinical phrasing keeps its separators.
var punctuation = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
	"•", "-", // bullet
	"·", "-", // middle dot
	" ", " ", // non-breaking space
	"‘", "'",
	"’", "'",
	"“", "\"",
	"”", "\"",
	"…", "...",
)

// Sanitize makes arbitrary model output renderable with the PDF core fonts.
// Typographic punctuation is substituted via a fixed table; every remaining
// rune outside printable Latin-1 becomes '?'. The policy is deterministic and
// never drops characters, so unsupported content stays visible in the
// document instead of silently shifting its meaning. Newlines survive as the
// line structure; tabs join the other control characters as spaces since the
// core fonts have no tab glyph.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	t := punctuation.Replace(s)
	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7F:
			b.WriteByte(' ')
		case r < 0x7F || (r >= 0xA0 && r < 0x100):
			b.WriteRune(r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// SoftWrap splits whitespace-delimited tokens longer than max runes into
// max-sized chunks joined by newlines, so no single token can exceed the
// usable page width at the configured font size.
func SoftWrap(s string, max int) string {
	if max <= 0 {
		max = 60
	}
	toks := strings.Split(s, " ")
	for i, tok := range toks {
		runes := []rune(tok)
		if len(runes) <= max {
			continue
		}
		parts := make([]string, 0, (len(runes)+max-1)/max)
		for len(runes) > 0 {
			n := max
			if n > len(runes) {
				n = len(runes)
			}
			parts = append(parts, string(runes[:n]))
			runes = runes[n:]
		}
		toks[i] = strings.Join(parts, "\n")
	}
	return strings.Join(toks, " ")
}
