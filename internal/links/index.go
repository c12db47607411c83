// Package links resolves section cross-references across every part of a
// document template.
package links

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/templatizer/internal/doctree"
)

// Target is where a section id lives.
type Target struct {
	Title string
	File  string
}

// Index maps section ids to their targets across the whole document.
type Index map[string]Target

// Part is one parsed document file.
type Part struct {
	File     string
	Sections []*doctree.Section
}

// BuildIndex records every section id of every part. Ids are expected to be
// unique; see FindDuplicates.
func BuildIndex(parts []Part) Index {
	idx := make(Index)
	for _, p := range parts {
		doctree.Walk(p.Sections, func(s *doctree.Section) bool {
			if id := s.ID(); id != "" {
				idx[id] = Target{Title: s.Title, File: p.File}
			}
			return true
		})
	}
	return idx
}

// Occurrence locates a section id in a part (1-based heading line).
type Occurrence struct {
	File string
	Line int
}

func (o Occurrence) String() string {
	return fmt.Sprintf("%s:%d", o.File, o.Line)
}

// DuplicateIDError lists every id declared more than once.
type DuplicateIDError struct {
	Duplicates map[string][]Occurrence
}

func (e *DuplicateIDError) Error() string {
	ids := make([]string, 0, len(e.Duplicates))
	for id := range e.Duplicates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		locs := make([]string, 0, len(e.Duplicates[id]))
		for _, o := range e.Duplicates[id] {
			locs = append(locs, o.String())
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", id, strings.Join(locs, ", ")))
	}
	return "Duplicate section id(s): " + strings.Join(parts, "; ")
}

// FindDuplicates returns a *DuplicateIDError when any id occurs twice.
func FindDuplicates(parts []Part) error {
	seen := make(map[string][]Occurrence)
	for _, p := range parts {
		doctree.Walk(p.Sections, func(s *doctree.Section) bool {
			if id := s.ID(); id != "" {
				seen[id] = append(seen[id], Occurrence{File: p.File, Line: s.HeadingLine + 1})
			}
			return true
		})
	}
	dups := make(map[string][]Occurrence)
	for id, occ := range seen {
		if len(occ) > 1 {
			dups[id] = occ
		}
	}
	if len(dups) == 0 {
		return nil
	}
	return &DuplicateIDError{Duplicates: dups}
}
