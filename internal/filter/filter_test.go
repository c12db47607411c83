package filter

import (
	"strings"
	"testing"

	"github.com/dgallion1/templatizer/internal/links"
	"github.com/dgallion1/templatizer/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoChildren = "# Root\n\n//🏷{\"labels\":[\"a\"]}\n## Child A\nA\n\n//🏷{\"labels\":[\"b\"]}\n## Child B\nB"

func TestFilterContent_SelectsLabeledChild(t *testing.T) {
	res := FilterContent(twoChildren, Options{IncludeLabels: []string{"a"}})

	assert.Equal(t, "# Root\n\n## Child A\nA", res.TemplateContent)
	assert.Equal(t, "# Root\n## Child A", res.BlankContent)
	assert.Equal(t, 2, res.KeptSections)
	assert.NotContains(t, res.TemplateContent, "Child B")
}

func TestFilterContent_EmptySelectionRoundTrip(t *testing.T) {
	text := "= Guide\n:toc:\n\nIntro.\n\n//🏷{\"labels\":[\"x\"],\"keep_content\":true}\n== Part\n\nBody.\n<!--🏷{\"labels\":[\"y\"]}-->\n=== Deeper\nMore.\n"
	res := FilterContent(text, Options{})

	want := "= Guide\n:toc:\n\nIntro.\n\n== Part\n\nBody.\n=== Deeper\nMore.\n"
	assert.Equal(t, want, res.TemplateContent)
	assert.Equal(t, 3, res.KeptSections)

	blanks := FilterContent(text, Options{IncludeLabels: []string{"  ", ""}})
	assert.Equal(t, want, blanks.TemplateContent, "whitespace-only labels normalize to an empty selection")
}

func TestFilterContent_CRLFRoundTrip(t *testing.T) {
	res := FilterContent("# A\r\ntext\r\n", Options{})
	assert.Equal(t, "# A\r\ntext\r\n", res.TemplateContent)
	assert.Equal(t, "# A\r\n", res.BlankContent)
}

func TestFilterContent_UnlabeledAlwaysKept(t *testing.T) {
	text := "# Root\nintro\n## Plain\nplain body\n//🏷{\"labels\":[\"a\"]}\n## Tagged\n### Plain child\nchild body\n## Also plain\nend\n"
	for _, sel := range [][]string{{"a"}, {"zzz"}, {"a", "zzz"}} {
		res := FilterContent(text, Options{IncludeLabels: sel})
		for _, want := range []string{"intro", "## Plain", "plain body", "## Also plain", "end"} {
			assert.Contains(t, res.TemplateContent, want, "selection %v", sel)
		}
	}

	res := FilterContent(text, Options{IncludeLabels: []string{"zzz"}})
	assert.NotContains(t, res.TemplateContent, "Tagged")
	assert.NotContains(t, res.TemplateContent, "child body", "unlabeled children go with their dropped parent")
}

func TestFilterContent_AndSemantics(t *testing.T) {
	text := "# Root\n//🏷{\"labels\":[\"persistence\",\"advanced\"]}\n## Both\n"
	assert.NotContains(t, FilterContent(text, Options{IncludeLabels: []string{"persistence"}}).TemplateContent, "Both")
	assert.Contains(t, FilterContent(text, Options{IncludeLabels: []string{"persistence", "advanced"}}).TemplateContent, "Both")
}

func TestFilterContent_Wildcards(t *testing.T) {
	text := "# Root\n//🏷{\"labels\":[\"level::basic\"]}\n## Basic\n//🏷{\"labels\":[\"level::*\"]}\n## Any level\n"

	res := FilterContent(text, Options{IncludeLabels: []string{"level::*"}})
	assert.Contains(t, res.TemplateContent, "## Basic")

	res = FilterContent(text, Options{IncludeLabels: []string{"level::advanced"}})
	assert.Contains(t, res.TemplateContent, "## Any level")
	assert.NotContains(t, res.TemplateContent, "## Basic")

	res = FilterContent(text, Options{IncludeLabels: []string{"level::advanced"}, ExactLabels: true})
	assert.NotContains(t, res.TemplateContent, "## Any level")
}

func TestFilterContent_TitleSurvives(t *testing.T) {
	text := "//🏷{\"labels\":[\"x\"]}\n# Root\nbody\n## Child\n"
	res := FilterContent(text, Options{IncludeLabels: []string{"nothing"}})
	assert.Equal(t, "# Root\n", res.TemplateContent)
	assert.Equal(t, "# Root\n", res.BlankContent)
	assert.Equal(t, 1, res.KeptSections)
}

func TestFilterContent_DropTitles(t *testing.T) {
	text := "# Root\n## Keep\nk\n##   Drop Me \n### Nested\nn\n## Tail\n"
	res := FilterContent(text, Options{DropTitles: []string{"drop me", " ROOT "}})

	assert.Equal(t, "# Root\n## Keep\nk\n## Tail\n", res.TemplateContent)
	assert.Equal(t, 3, res.KeptSections)
}

func TestFilterContent_KeepContent(t *testing.T) {
	text := "= Guide\n\n//🏷{\"keep_content\":true}\n== Example\nKeep this.\n\nAnd this.\n\n== Other\nDrop this.\n"
	res := FilterContent(text, Options{})

	assert.Equal(t, "= Guide\n== Example\n\nKeep this.\n\nAnd this.\n\n== Other\n", res.BlankContent)
	assert.NotContains(t, res.BlankContent, "Drop this.")
	assert.Contains(t, res.TemplateContent, "Drop this.")
}

func TestFilterContent_AnchorsAndSeeAlso(t *testing.T) {
	text := "= Guide\n\n//🏷{\"id\":\"setup\",\"link_to\":[\"usage\",\"api\"]}\n== Setup\n\nDo it.\n\n//🏷{\"id\":\"usage\"}\n== Usage\n\nUse it.\n"
	idx := links.BuildIndex([]links.Part{
		{File: "guide.adoc", Sections: parser.ParseSections(text)},
		{File: "api.adoc", Sections: parser.ParseSections("= API\n//🏷{\"id\":\"api\"}\n== Endpoints\n")},
	})

	res := FilterContent(text, Options{
		LinkIndex:      idx,
		CurrentFile:    "guide.adoc",
		IncludeAnchors: true,
		Language:       "en",
	})

	tip := "TIP: See also <<usage,Usage>>, xref:api.adoc#api[Endpoints]."
	assert.Equal(t,
		"= Guide\n\n[#setup]\n== Setup\n\n"+tip+"\n\nDo it.\n\n[#usage]\n== Usage\n\nUse it.\n",
		res.TemplateContent)
	assert.Equal(t,
		"= Guide\n[#setup]\n== Setup\n\n"+tip+"\n\n[#usage]\n== Usage\n",
		res.BlankContent)

	noAnchors := FilterContent(text, Options{LinkIndex: idx, CurrentFile: "guide.adoc", Language: "fr"})
	assert.NotContains(t, noAnchors.TemplateContent, "[#setup]")
	assert.Contains(t, noAnchors.BlankContent, "TIP: Voir aussi <<usage,Usage>>")
}

func TestFilterContent_AttributeSpacing(t *testing.T) {
	text := "= Doc\n:toc:\n:lang: fr\nIntro text\n== A\nBody\n"
	res := FilterContent(text, Options{})
	assert.Equal(t, "= Doc\n\n:toc:\n:lang: fr\n\n== A\n", res.BlankContent)
}

func TestFilterContent_PrunedSections(t *testing.T) {
	res := FilterContent(twoChildren, Options{IncludeLabels: []string{"b"}})
	require.Len(t, res.Sections, 1)
	require.Len(t, res.Sections[0].Children, 1)
	assert.Equal(t, "Child B", res.Sections[0].Children[0].Title)
}

func TestBuildMask_PreambleKept(t *testing.T) {
	text := "preamble\n\n//🏷{\"labels\":[\"a\"]}\n# Root\n"
	lines, _, _ := parser.SplitLines(text)
	forest := parser.ParseSections(text)
	m := Select(len(lines), forest, map[string]struct{}{"b": {}}, true)
	assert.Equal(t, Mask{true, true, false, true}, m)
}

func TestNewDropSet(t *testing.T) {
	ds := NewDropSet([]string{" Foo ", "", "BAR"})
	assert.True(t, ds.Has("foo"))
	assert.True(t, ds.Has("  bar"))
	assert.Len(t, ds, 2)
}

func TestFilterContent_NoHeadings(t *testing.T) {
	res := FilterContent("just text\n", Options{IncludeLabels: []string{"a"}})
	assert.Equal(t, "just text\n", res.TemplateContent)
	assert.Equal(t, "", res.BlankContent)
	assert.Zero(t, res.KeptSections)
	assert.True(t, strings.HasSuffix(res.TemplateContent, "\n"))
}
