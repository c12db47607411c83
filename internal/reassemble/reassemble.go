// Package reassemble rebuilds the template and blank documents from the
// surviving source lines.
package reassemble

import (
	"strings"

	"github.com/dgallion1/templatizer/internal/links"
	"github.com/dgallion1/templatizer/internal/parser"
)

// Input is everything needed to rebuild one part.
type Input struct {
	Lines          []parser.Line
	Keep           []bool // line survives filtering
	KeepContent    []bool // body line belongs to a keep_content section
	Directives     map[int]links.Directive
	IncludeAnchors bool

	TrailingNewline bool   // original text ended with a line terminator
	Newline         string // "\n" or "\r\n"; defaults to "\n"
}

// Output holds both renditions of a part.
type Output struct {
	Template string
	Blank    string
}

// Reassemble walks the kept lines once and produces both outputs.
// Metadata marker lines never reach either output.
func Reassemble(in Input) Output {
	tpl := &templateWriter{}
	var blank []entry

	for i, l := range in.Lines {
		if i >= len(in.Keep) || !in.Keep[i] || l.Kind == parser.KindMetadata {
			continue
		}
		keepBody := i < len(in.KeepContent) && in.KeepContent[i]

		switch l.Kind {
		case parser.KindHeading:
			d := in.Directives[i]
			// A source anchor already bound to this heading is not repeated.
			if in.IncludeAnchors && d.Anchor != "" && tpl.last() != d.Anchor {
				tpl.line(d.Anchor)
				blank = append(blank, entry{kind: parser.KindAnchor, text: d.Anchor})
			}
			tpl.line(l.Text)
			blank = append(blank, entry{kind: parser.KindHeading, text: l.Text})
			if d.SeeAlso != "" {
				tpl.paragraph(d.SeeAlso)
				blank = append(blank, entry{kind: parser.KindSeeAlso, text: d.SeeAlso})
			}
		case parser.KindAttribute, parser.KindAnchor, parser.KindSeeAlso:
			tpl.line(l.Text)
			blank = append(blank, entry{kind: l.Kind, text: l.Text})
		default:
			tpl.line(l.Text)
			if keepBody {
				blank = append(blank, entry{kind: l.Kind, text: l.Text, body: true})
			}
		}
	}

	nl := in.Newline
	if nl == "" {
		nl = "\n"
	}
	return Output{
		Template: join(trimTrailingBlank(tpl.lines), nl, in.TrailingNewline),
		Blank:    join(Space(blank), nl, in.TrailingNewline),
	}
}

// templateWriter appends template lines, separating inserted paragraphs
// from the surrounding source lines.
type templateWriter struct {
	lines     []string
	needBlank bool
}

func (w *templateWriter) line(s string) {
	if w.needBlank && strings.TrimSpace(s) != "" {
		w.lines = append(w.lines, "")
	}
	w.needBlank = false
	w.lines = append(w.lines, s)
}

func (w *templateWriter) paragraph(s string) {
	if w.last() != "" {
		w.lines = append(w.lines, "")
	}
	w.lines = append(w.lines, s)
	w.needBlank = true
}

func (w *templateWriter) last() string {
	if len(w.lines) == 0 {
		return ""
	}
	return w.lines[len(w.lines)-1]
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func join(lines []string, nl string, trailing bool) string {
	if len(lines) == 0 {
		return ""
	}
	s := strings.Join(lines, nl)
	if trailing {
		s += nl
	}
	return s
}
