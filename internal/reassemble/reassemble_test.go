package reassemble

import (
	"testing"

	"github.com/dgallion1/templatizer/internal/links"
	"github.com/dgallion1/templatizer/internal/parser"
	"github.com/stretchr/testify/assert"
)

func classify(lines ...string) []parser.Line {
	return parser.ClassifyAll(lines)
}

func allKept(n int) []bool {
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	return keep
}

func TestReassemble_DropsMetadataAndMaskedLines(t *testing.T) {
	lines := classify("# T", `//🏷{"id":"a"}`, "## A", "text", "## B", "gone")
	keep := []bool{true, true, true, true, false, false}

	out := Reassemble(Input{Lines: lines, Keep: keep, TrailingNewline: true})
	assert.Equal(t, "# T\n## A\ntext\n", out.Template)
	assert.Equal(t, "# T\n## A\n", out.Blank)
}

func TestReassemble_SourceAnchorNotDuplicated(t *testing.T) {
	lines := classify("# T", "", "[#a]", "## A", "body")
	out := Reassemble(Input{
		Lines:          lines,
		Keep:           allKept(len(lines)),
		Directives:     map[int]links.Directive{3: {Anchor: "[#a]"}},
		IncludeAnchors: true,
	})
	assert.Equal(t, "# T\n\n[#a]\n## A\nbody", out.Template)
	assert.Equal(t, "# T\n[#a]\n## A", out.Blank)
}

func TestReassemble_SeeAlsoSeparatedFromProse(t *testing.T) {
	lines := classify("# T", "prose directly after")
	out := Reassemble(Input{
		Lines:      lines,
		Keep:       allKept(len(lines)),
		Directives: map[int]links.Directive{0: {SeeAlso: "TIP: See also <<x,X>>."}},
	})
	assert.Equal(t, "# T\n\nTIP: See also <<x,X>>.\n\nprose directly after", out.Template)
	assert.Equal(t, "# T\n\nTIP: See also <<x,X>>.", out.Blank)
}

func TestReassemble_TrailingBlankLinesTrimmed(t *testing.T) {
	lines := classify("# T", "body", "", "")
	out := Reassemble(Input{Lines: lines, Keep: allKept(len(lines)), TrailingNewline: true})
	assert.Equal(t, "# T\nbody\n", out.Template)
}

func TestSpace(t *testing.T) {
	tests := []struct {
		name    string
		entries []entry
		want    []string
	}{
		{
			name: "heading then heading stays adjacent",
			entries: []entry{
				{kind: parser.KindHeading, text: "= A"},
				{kind: parser.KindHeading, text: "== B"},
			},
			want: []string{"= A", "== B"},
		},
		{
			name: "body before heading gets separated",
			entries: []entry{
				{kind: parser.KindHeading, text: "== A"},
				{kind: parser.KindOther, text: "kept", body: true},
				{kind: parser.KindAnchor, text: "[#b]"},
				{kind: parser.KindHeading, text: "== B"},
			},
			want: []string{"== A", "", "kept", "", "[#b]", "== B"},
		},
		{
			name: "body blank lines collapse",
			entries: []entry{
				{kind: parser.KindHeading, text: "== A"},
				{kind: parser.KindBlank, body: true},
				{kind: parser.KindBlank, body: true},
				{kind: parser.KindOther, text: "x", body: true},
				{kind: parser.KindBlank, body: true},
			},
			want: []string{"== A", "", "x"},
		},
		{
			name: "attribute groups",
			entries: []entry{
				{kind: parser.KindAttribute, text: ":a:"},
				{kind: parser.KindAttribute, text: ":b:"},
				{kind: parser.KindHeading, text: "== H"},
				{kind: parser.KindAttribute, text: ":c:"},
			},
			want: []string{":a:", ":b:", "", "== H", "", ":c:"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Space(tt.entries))
		})
	}
}
