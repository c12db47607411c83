package filter

import (
	"strings"

	"github.com/dgallion1/templatizer/internal/doctree"
)

// Mask marks which source lines survive filtering.
type Mask []bool

// IdentityMask keeps every line.
func IdentityMask(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = true
	}
	return m
}

func (m Mask) set(from, to int, v bool) {
	for i := max(from, 0); i <= to && i < len(m); i++ {
		m[i] = v
	}
}

// BuildMask turns decisions into a line mask. Lines before the first
// section are kept. A kept section owns every line of its range that is
// not claimed by a dropped child; kept children are processed recursively.
func BuildMask(lineCount int, decisions []*Decision) Mask {
	m := make(Mask, lineCount)
	if len(decisions) > 0 {
		m.set(0, decisions[0].Section.StartLine-1, true)
	} else {
		m.set(0, lineCount-1, true)
	}
	for _, d := range decisions {
		m.mark(d)
	}
	return m
}

func (m Mask) mark(d *Decision) {
	if !d.Keep {
		return
	}
	m.set(d.Section.StartLine, d.Section.EndLine, true)
	kept := make(map[*doctree.Section]*Decision, len(d.Children))
	for _, c := range d.Children {
		kept[c.Section] = c
	}
	for _, child := range d.Section.Children {
		cd, ok := kept[child]
		if !ok || !cd.Keep {
			m.set(child.StartLine, child.EndLine, false)
			continue
		}
		m.mark(cd)
	}
}

// DropSet is a case-insensitive set of section titles to remove.
type DropSet map[string]struct{}

// NewDropSet normalizes titles (trimmed, lowercased, empties removed).
func NewDropSet(titles []string) DropSet {
	ds := make(DropSet, len(titles))
	for _, t := range titles {
		if k := normalizeTitle(t); k != "" {
			ds[k] = struct{}{}
		}
	}
	return ds
}

func (ds DropSet) Has(title string) bool {
	_, ok := ds[normalizeTitle(title)]
	return ok
}

func normalizeTitle(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// ApplyDropRules clears the whole range of every section at level 2 or
// deeper whose title is in the drop set. Level-1 sections are never dropped.
func ApplyDropRules(m Mask, forest []*doctree.Section, drop DropSet) {
	if len(drop) == 0 {
		return
	}
	doctree.Walk(forest, func(s *doctree.Section) bool {
		if s.Level >= 2 && drop.Has(s.Title) {
			m.set(s.StartLine, s.EndLine, false)
			return false
		}
		return true
	})
}

// KeepTitle forces the first level-1 heading line into the mask.
func KeepTitle(m Mask, forest []*doctree.Section) {
	if root := doctree.FirstRoot(forest); root != nil && root.HeadingLine < len(m) {
		m[root.HeadingLine] = true
	}
}

// KeepContentLines marks lines inside sections flagged keep_content,
// including their subsections.
func KeepContentLines(lineCount int, forest []*doctree.Section) []bool {
	keep := make([]bool, lineCount)
	doctree.Walk(forest, func(s *doctree.Section) bool {
		if s.KeepContent() {
			for i := s.StartLine; i <= s.EndLine && i < lineCount; i++ {
				keep[i] = true
			}
			return false
		}
		return true
	})
	return keep
}

// Prune returns copies of the sections whose heading line survived.
func Prune(forest []*doctree.Section, m Mask) []*doctree.Section {
	var out []*doctree.Section
	for _, s := range forest {
		if s.HeadingLine >= len(m) || !m[s.HeadingLine] {
			continue
		}
		cp := *s
		cp.Children = Prune(s.Children, m)
		out = append(out, &cp)
	}
	return out
}
