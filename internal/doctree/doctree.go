package doctree

// Section is a heading-delimited node in a part's section tree.
type Section struct {
	Level    int        // Heading depth, 1-6
	Title    string     // Heading text without markers
	Metadata *Metadata  // nil when no metadata marker preceded the heading
	Children []*Section // Subsections in document order

	// Line provenance (0-based, inclusive). StartLine points at the metadata
	// marker when there is one, otherwise at the heading line.
	StartLine   int
	HeadingLine int
	EndLine     int
}

// Metadata is the structured annotation attached to a section.
type Metadata struct {
	ID          string
	Labels      []string
	LinkTo      []string
	KeepContent bool
	Raw         map[string]any // Original decoded object
}

// Labels returns the section's labels, or nil when it has none.
func (s *Section) Labels() []string {
	if s == nil || s.Metadata == nil {
		return nil
	}
	return s.Metadata.Labels
}

// ID returns the section id, or "" when it has none.
func (s *Section) ID() string {
	if s == nil || s.Metadata == nil {
		return ""
	}
	return s.Metadata.ID
}

// LinkTo returns the ids this section references.
func (s *Section) LinkTo() []string {
	if s == nil || s.Metadata == nil {
		return nil
	}
	return s.Metadata.LinkTo
}

// KeepContent reports whether the section body survives into the blank output.
func (s *Section) KeepContent() bool {
	return s != nil && s.Metadata != nil && s.Metadata.KeepContent
}

// Walk visits every section depth-first in document order. Returning false
// from fn skips that section's children.
func Walk(forest []*Section, fn func(*Section) bool) {
	for _, s := range forest {
		if fn(s) {
			Walk(s.Children, fn)
		}
	}
}

// Count returns the number of sections in the forest.
func Count(forest []*Section) int {
	n := 0
	Walk(forest, func(*Section) bool {
		n++
		return true
	})
	return n
}

// FirstRoot returns the first level-1 section, or nil.
func FirstRoot(forest []*Section) *Section {
	for _, s := range forest {
		if s.Level == 1 {
			return s
		}
	}
	return nil
}
