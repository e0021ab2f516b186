package report

import (
	"regexp"
	"strings"
)

// LineKind classifies one markdown-lite line.
type LineKind int

const (
	Blank LineKind = iota
	Heading
	Paragraph
)

// Line is the structural interpretation of a single sanitized line.
type Line struct {
	Kind LineKind
	Size float64
	Text string
}

var (
	bulletRe  = regexp.MustCompile(`^[-*]\s+`)
	orderedRe = regexp.MustCompile(`^\d+[.)]\s+`)
)

// headingSizes maps the '#' count to a font size; deeper levels floor at the
// smallest supported size.
var headingSizes = []float64{16, 14, 12, 11}

// ClassifyLine applies the prefix rules in order, first match wins. No
// markdown grammar is assumed beyond these rules: '#'-prefixed headings with
// decreasing sizes, bullet and ordered list normalization, plain paragraph.
func ClassifyLine(s string) Line {
	if strings.TrimSpace(s) == "" {
		return Line{Kind: Blank}
	}
	if strings.HasPrefix(s, "#") {
		n := 0
		for n < len(s) && s[n] == '#' {
			n++
		}
		if n < len(s) && (s[n] == ' ' || s[n] == '\t') {
			size := headingSizes[len(headingSizes)-1]
			if n <= len(headingSizes) {
				size = headingSizes[n-1]
			}
			return Line{Kind: Heading, Size: size, Text: strings.TrimSpace(s[n:])}
		}
	}
	if bulletRe.MatchString(s) {
		return Line{Kind: Paragraph, Size: bodySize, Text: "- " + strings.TrimSpace(bulletRe.ReplaceAllString(s, ""))}
	}
	if orderedRe.MatchString(s) {
		return Line{Kind: Paragraph, Size: bodySize, Text: s}
	}
	return Line{Kind: Paragraph, Size: bodySize, Text: s}
}

// Span is a run of text rendered at a single weight.
type Span struct {
	Text string
	Bold bool
}

// SplitBold breaks a line on inline **bold** markers. An unterminated marker
// renders the remainder of the line plain instead of failing.
func SplitBold(s string) []Span {
	parts := strings.Split(s, "**")
	if len(parts) == 1 {
		return []Span{{Text: s}}
	}
	closed := len(parts)%2 == 1
	spans := make([]Span, 0, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		bold := i%2 == 1 && (closed || i < len(parts)-1)
		spans = append(spans, Span{Text: p, Bold: bold})
	}
	if len(spans) == 0 {
		return []Span{{Text: ""}}
	}
	return spans
}
