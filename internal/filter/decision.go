package filter

import (
	"github.com/dgallion1/templatizer/internal/doctree"
	"github.com/dgallion1/templatizer/internal/labels"
)

// Decision is the keep/drop verdict for one section under a selection.
type Decision struct {
	Section  *doctree.Section
	Matches  bool // the section's own labels satisfy the selection
	Keep     bool // the section appears in the output
	Children []*Decision
}

// Decide builds the decision tree for a forest. Unlabeled sections are
// always kept; labeled sections are kept only when all their labels match.
// Children of a dropped section are not evaluated.
func Decide(forest []*doctree.Section, sel labels.Selection, wildcard bool) []*Decision {
	out := make([]*Decision, 0, len(forest))
	for _, s := range forest {
		d := &Decision{Section: s, Keep: true}
		if ls := s.Labels(); len(ls) > 0 {
			d.Matches = labels.MatchesSelection(ls, sel, wildcard)
			d.Keep = d.Matches
		}
		if d.Keep {
			d.Children = Decide(s.Children, sel, wildcard)
		}
		out = append(out, d)
	}
	return out
}
