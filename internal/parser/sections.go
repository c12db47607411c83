package parser

import "github.com/dgallion1/templatizer/internal/doctree"

// ParseSections parses raw document text into a forest of sections with
// source line ranges and decoded metadata.
func ParseSections(text string) []*doctree.Section {
	lines, _, _ := SplitLines(text)
	return ParseClassified(ClassifyAll(lines))
}

// pendingMeta is a metadata marker waiting for the heading it annotates.
type pendingMeta struct {
	line int
	md   *doctree.Metadata // nil when the payload did not decode
}

// sectionBuilder is the accumulator folded over the classified lines.
type sectionBuilder struct {
	roots   []*doctree.Section
	stack   []*doctree.Section
	pending *pendingMeta
}

// ParseClassified builds the section forest from already classified lines.
func ParseClassified(lines []Line) []*doctree.Section {
	b := &sectionBuilder{}
	for i, l := range lines {
		b.step(i, l)
	}
	b.finish(len(lines) - 1)
	return b.roots
}

func (b *sectionBuilder) step(i int, l Line) {
	switch l.Kind {
	case KindBlank:
		// Blank lines neither consume nor discard pending metadata.
	case KindMetadata:
		md, _ := DecodeMetadata(l.Meta)
		b.pending = &pendingMeta{line: i, md: md}
	case KindHeading:
		b.openSection(i, l)
	default:
		if IsHeadingMarkup(l.Text) {
			// Heading marker without a title: skipped, not disruptive.
			return
		}
		b.pending = nil
	}
}

func (b *sectionBuilder) openSection(i int, l Line) {
	sec := &doctree.Section{
		Level:       l.Level,
		Title:       l.Title,
		StartLine:   i,
		HeadingLine: i,
	}
	if b.pending != nil {
		sec.StartLine = b.pending.line
		sec.Metadata = b.pending.md
		b.pending = nil
	}

	for len(b.stack) > 0 && b.stack[len(b.stack)-1].Level >= sec.Level {
		top := b.stack[len(b.stack)-1]
		top.EndLine = max(top.StartLine, sec.StartLine-1)
		b.stack = b.stack[:len(b.stack)-1]
	}

	if len(b.stack) == 0 {
		b.roots = append(b.roots, sec)
	} else {
		parent := b.stack[len(b.stack)-1]
		parent.Children = append(parent.Children, sec)
	}
	b.stack = append(b.stack, sec)
}

func (b *sectionBuilder) finish(last int) {
	for len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		top.EndLine = max(top.StartLine, last, top.EndLine)
		b.stack = b.stack[:len(b.stack)-1]
	}
}
