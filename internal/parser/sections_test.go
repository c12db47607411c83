package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/templatizer/internal/doctree"
)

func TestParseSections_HeadingHierarchy(t *testing.T) {
	input := strings.Join([]string{
		"= Title",           // 0
		"",                  // 1
		"Intro text.",       // 2
		"",                  // 3
		"== Section A",      // 4
		"A content.",        // 5
		"=== Subsection A1", // 6
		"A1 content.",       // 7
		"== Section B",      // 8
		"B content.",        // 9
	}, "\n")

	forest := ParseSections(input)
	if len(forest) != 1 {
		t.Fatalf("expected 1 root, got %d", len(forest))
	}
	root := forest[0]
	if root.Title != "Title" || root.Level != 1 {
		t.Errorf("expected level-1 %q, got level-%d %q", "Title", root.Level, root.Title)
	}
	if root.StartLine != 0 || root.EndLine != 9 {
		t.Errorf("expected root range [0,9], got [%d,%d]", root.StartLine, root.EndLine)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}

	secA := root.Children[0]
	if secA.StartLine != 4 || secA.EndLine != 7 {
		t.Errorf("expected Section A range [4,7], got [%d,%d]", secA.StartLine, secA.EndLine)
	}
	if len(secA.Children) != 1 || secA.Children[0].Title != "Subsection A1" {
		t.Fatalf("expected Subsection A1 under Section A, got %+v", secA.Children)
	}
	sub := secA.Children[0]
	if sub.StartLine != 6 || sub.EndLine != 7 {
		t.Errorf("expected A1 range [6,7], got [%d,%d]", sub.StartLine, sub.EndLine)
	}

	secB := root.Children[1]
	if secB.StartLine != 8 || secB.EndLine != 9 {
		t.Errorf("expected Section B range [8,9], got [%d,%d]", secB.StartLine, secB.EndLine)
	}
}

func TestParseSections_MetadataStartsSection(t *testing.T) {
	input := "# Root\n\n//🏷{\"id\":\"child\",\"labels\":[\"a\", 3, \"b\"],\"link_to\":\"other\",\"keep_content\":true}\n## Child\nBody\n"

	forest := ParseSections(input)
	if len(forest) != 1 || len(forest[0].Children) != 1 {
		t.Fatalf("expected root with one child, got %+v", forest)
	}
	root, child := forest[0], forest[0].Children[0]
	if child.StartLine != 2 || child.HeadingLine != 3 {
		t.Errorf("expected child start 2 heading 3, got start %d heading %d", child.StartLine, child.HeadingLine)
	}
	if root.EndLine != 4 {
		t.Errorf("expected root to end at last line 4, got %d", root.EndLine)
	}
	if child.ID() != "child" {
		t.Errorf("expected id %q, got %q", "child", child.ID())
	}
	if got := strings.Join(child.Labels(), ","); got != "a,b" {
		t.Errorf("expected labels a,b (non-strings dropped), got %q", got)
	}
	if got := strings.Join(child.LinkTo(), ","); got != "other" {
		t.Errorf("expected link_to normalized to [other], got %q", got)
	}
	if !child.KeepContent() {
		t.Error("expected keep_content to be true")
	}
	if child.Metadata.Raw["id"] != "child" {
		t.Errorf("expected raw metadata to be retained, got %v", child.Metadata.Raw)
	}
}

func TestParseSections_HTMLCommentMetadata(t *testing.T) {
	input := "# Root\n<!-- 🏷{\"labels\":[\"mobile\"],\"links\":[\"x\",\"y\"]} -->\n## Child\n"
	forest := ParseSections(input)
	child := forest[0].Children[0]
	if got := strings.Join(child.Labels(), ","); got != "mobile" {
		t.Errorf("expected labels %q, got %q", "mobile", got)
	}
	if got := strings.Join(child.LinkTo(), ","); got != "x,y" {
		t.Errorf("expected links %q, got %q", "x,y", got)
	}
}

func TestParseSections_MalformedMetadataIgnored(t *testing.T) {
	input := "# Root\n//🏷{not json\n## Child\n"
	forest := ParseSections(input)
	child := forest[0].Children[0]
	if child.Metadata != nil {
		t.Errorf("expected no metadata, got %+v", child.Metadata)
	}
	if child.StartLine != 1 {
		t.Errorf("expected marker line to start the section, got %d", child.StartLine)
	}
}

func TestParseSections_PendingMetadataClearedByProse(t *testing.T) {
	input := "# Root\n//🏷{\"labels\":[\"a\"]}\nsome prose\n## Child\n"
	forest := ParseSections(input)
	child := forest[0].Children[0]
	if child.Metadata != nil {
		t.Errorf("expected metadata separated by prose to be discarded, got %+v", child.Metadata)
	}
	if child.StartLine != 3 {
		t.Errorf("expected child to start at its heading, got %d", child.StartLine)
	}
}

func TestParseSections_BlankLineKeepsPendingMetadata(t *testing.T) {
	input := "# Root\n//🏷{\"labels\":[\"a\"]}\n\n## Child\n"
	child := ParseSections(input)[0].Children[0]
	if got := strings.Join(child.Labels(), ","); got != "a" {
		t.Errorf("expected labels to survive blank line, got %q", got)
	}
}

func TestParseSections_EmptyTitleSkipped(t *testing.T) {
	input := "# Root\n## \n## Real\n"
	forest := ParseSections(input)
	if len(forest[0].Children) != 1 || forest[0].Children[0].Title != "Real" {
		t.Fatalf("expected only %q as child, got %+v", "Real", forest[0].Children)
	}
}

func TestParseSections_MultipleRootsAndCRLF(t *testing.T) {
	input := "# One\r\ntext\r\n# Two\r\nmore\r\n"
	forest := ParseSections(input)
	if len(forest) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(forest))
	}
	if forest[0].Title != "One" || forest[1].Title != "Two" {
		t.Errorf("expected titles One/Two, got %q/%q", forest[0].Title, forest[1].Title)
	}
	if forest[0].EndLine != 1 || forest[1].EndLine != 3 {
		t.Errorf("expected ends 1 and 3, got %d and %d", forest[0].EndLine, forest[1].EndLine)
	}
}

func TestParseSections_RangesNest(t *testing.T) {
	input := "# A\n## B\n### C\ntext\n## D\n#### E\n"
	forest := ParseSections(input)
	var check func(parent *doctree.Section)
	check = func(parent *doctree.Section) {
		prevEnd := parent.StartLine
		for _, c := range parent.Children {
			if c.StartLine < parent.StartLine || c.EndLine > parent.EndLine {
				t.Errorf("%q range [%d,%d] escapes parent %q [%d,%d]",
					c.Title, c.StartLine, c.EndLine, parent.Title, parent.StartLine, parent.EndLine)
			}
			if c.StartLine < prevEnd {
				t.Errorf("%q overlaps previous sibling", c.Title)
			}
			prevEnd = c.EndLine
			check(c)
		}
	}
	check(forest[0])
	if n := doctree.Count(forest); n != 5 {
		t.Errorf("expected 5 sections, got %d", n)
	}
}

func TestParseSections_EmptyInput(t *testing.T) {
	if forest := ParseSections(""); len(forest) != 0 {
		t.Errorf("expected no sections, got %d", len(forest))
	}
}
