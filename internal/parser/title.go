package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var titleMarkdown = goldmark.New()

// PlainTitle strips inline markup (emphasis, code spans, links) from a
// heading title, for listings shown to people choosing what to drop.
func PlainTitle(title string) string {
	src := []byte("# " + strings.TrimSpace(title))
	doc := titleMarkdown.Parser().Parse(text.NewReader(src))

	var heading ast.Node
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			heading = h
			break
		}
	}
	if heading == nil {
		return strings.TrimSpace(title)
	}

	var buf bytes.Buffer
	inlineText(heading, src, &buf)
	plain := strings.Join(strings.Fields(buf.String()), " ")
	if plain == "" {
		return strings.TrimSpace(title)
	}
	return plain
}

// inlineText collects the text content of inline descendants.
func inlineText(n ast.Node, src []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(src))
		default:
			inlineText(c, src, buf)
		}
	}
}
