package parser

import (
	"regexp"
	"strings"
)

// LineKind classifies a single source line. Parsing and reassembly both
// depend on this classification, so there is exactly one implementation.
type LineKind int

const (
	KindOther LineKind = iota
	KindBlank
	KindHeading
	KindAttribute
	KindMetadata
	KindAnchor
	KindSeeAlso
)

func (k LineKind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindHeading:
		return "heading"
	case KindAttribute:
		return "attribute"
	case KindMetadata:
		return "metadata"
	case KindAnchor:
		return "anchor"
	case KindSeeAlso:
		return "see_also"
	default:
		return "other"
	}
}

// Line is a classified source line.
type Line struct {
	Kind  LineKind
	Text  string // Line without its terminator
	Level int    // Heading level (KindHeading only)
	Title string // Heading title (KindHeading only)
	Meta  string // Raw JSON payload (KindMetadata only)
}

var (
	headingRe   = regexp.MustCompile(`^(#{1,6}|={1,6})\s+(.*)$`)
	attributeRe = regexp.MustCompile(`^:[A-Za-z0-9_][A-Za-z0-9_-]*!?:(\s.*)?$`)
	anchorRe    = regexp.MustCompile(`^\[#[^\]]+\]$`)
	seeAlsoRe   = regexp.MustCompile(`^TIP: (See also|Voir aussi) `)
)

// Classify returns the kind of a single line. A heading marker followed by
// whitespace but no title text is not a heading.
func Classify(text string) Line {
	l := Line{Kind: KindOther, Text: text}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		l.Kind = KindBlank
		return l
	}
	if payload, ok := metadataPayload(trimmed); ok {
		l.Kind = KindMetadata
		l.Meta = payload
		return l
	}
	if m := headingRe.FindStringSubmatch(text); m != nil {
		title := strings.TrimSpace(m[2])
		if title != "" {
			l.Kind = KindHeading
			l.Level = len(m[1])
			l.Title = title
		}
		return l
	}
	switch {
	case attributeRe.MatchString(text):
		l.Kind = KindAttribute
	case anchorRe.MatchString(trimmed):
		l.Kind = KindAnchor
	case seeAlsoRe.MatchString(text):
		l.Kind = KindSeeAlso
	}
	return l
}

// IsHeadingMarkup reports whether text starts like a heading even if it has
// no title (e.g. "## "). Such lines are not sections but are not prose either.
func IsHeadingMarkup(text string) bool {
	return headingRe.MatchString(text)
}

// SplitLines splits text into lines, accepting "\n" and "\r\n". A final
// line terminator does not produce an extra empty line. It also reports
// whether the text ended with a terminator and whether it used CRLF.
func SplitLines(text string) (lines []string, trailingNewline, crlf bool) {
	if text == "" {
		return nil, false, false
	}
	crlf = strings.Contains(text, "\r\n")
	trailingNewline = strings.HasSuffix(text, "\n")
	body := text
	if trailingNewline {
		body = strings.TrimSuffix(body, "\n")
	}
	lines = strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, trailingNewline, crlf
}

// ClassifyAll classifies every line of text.
func ClassifyAll(lines []string) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Classify(l)
	}
	return out
}
