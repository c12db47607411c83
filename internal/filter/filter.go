// Package filter selects the sections of a part that match a label
// selection and rebuilds the template and blank renditions of the part.
package filter

import (
	"github.com/dgallion1/templatizer/internal/doctree"
	"github.com/dgallion1/templatizer/internal/labels"
	"github.com/dgallion1/templatizer/internal/links"
	"github.com/dgallion1/templatizer/internal/parser"
	"github.com/dgallion1/templatizer/internal/reassemble"
)

// Options controls a single FilterContent call.
type Options struct {
	IncludeLabels  []string
	DropTitles     []string
	LinkIndex      links.Index
	CurrentFile    string
	IncludeAnchors bool
	Language       string

	// ExactLabels disables namespace wildcard matching.
	ExactLabels bool
}

// Result is the filtered part.
type Result struct {
	TemplateContent string
	BlankContent    string
	KeptSections    int
	Sections        []*doctree.Section // pruned forest
}

// FilterContent parses text, filters it against opts and reassembles both
// outputs. It is pure: no I/O and no shared state.
func FilterContent(text string, opts Options) Result {
	raw, trailing, crlf := parser.SplitLines(text)
	lines := parser.ClassifyAll(raw)
	forest := parser.ParseClassified(lines)

	mask := Select(len(lines), forest, labels.NewSelection(opts.IncludeLabels), !opts.ExactLabels)
	ApplyDropRules(mask, forest, NewDropSet(opts.DropTitles))
	KeepTitle(mask, forest)

	resolver := links.NewResolver(opts.LinkIndex, opts.CurrentFile, opts.Language)
	newline := "\n"
	if crlf {
		newline = "\r\n"
	}
	out := reassemble.Reassemble(reassemble.Input{
		Lines:           lines,
		Keep:            mask,
		KeepContent:     KeepContentLines(len(lines), forest),
		Directives:      resolver.Directives(forest),
		IncludeAnchors:  opts.IncludeAnchors,
		TrailingNewline: trailing,
		Newline:         newline,
	})

	pruned := Prune(forest, mask)
	return Result{
		TemplateContent: out.Template,
		BlankContent:    out.Blank,
		KeptSections:    doctree.Count(pruned),
		Sections:        pruned,
	}
}

// Select computes the label mask. An empty selection keeps everything.
func Select(lineCount int, forest []*doctree.Section, sel labels.Selection, wildcard bool) Mask {
	if len(sel) == 0 {
		return IdentityMask(lineCount)
	}
	m := BuildMask(lineCount, Decide(forest, sel, wildcard))
	KeepTitle(m, forest)
	return m
}
