// Package catalog aggregates what a base template offers: the labels it
// declares or uses and the sections of each part.
package catalog

import (
	"sort"
	"strings"

	"github.com/dgallion1/templatizer/internal/doctree"
	"github.com/dgallion1/templatizer/internal/labels"
	"github.com/dgallion1/templatizer/internal/links"
	"github.com/dgallion1/templatizer/internal/manifest"
	"github.com/dgallion1/templatizer/internal/parser"
)

// Catalog is built once per loaded template.
type Catalog struct {
	declared []manifest.Label
	known    map[string]struct{}
	parts    []Part
}

// Part lists the sections of one document file.
type Part struct {
	Name     string        `json:"name"`
	File     string        `json:"file"`
	Sections []SectionInfo `json:"sections"`
}

// SectionInfo is a flattened view of a section for selection UIs.
type SectionInfo struct {
	Level  int      `json:"level"`
	Title  string   `json:"title"`
	Plain  string   `json:"plain_title"`
	ID     string   `json:"id,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// Namespace is a multi-valued label with its values in display order.
type Namespace struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// New builds a catalog from a manifest and the parsed parts, in manifest order.
func New(m *manifest.Manifest, parts []links.Part) *Catalog {
	c := &Catalog{known: make(map[string]struct{})}
	names := map[string]string{}
	if m != nil {
		c.declared = m.Labels
		names = m.PartNames()
		for _, l := range m.Labels {
			for _, e := range l.Expand() {
				c.known[e] = struct{}{}
			}
		}
	}
	for _, p := range parts {
		cp := Part{Name: names[p.File], File: p.File}
		if cp.Name == "" {
			cp.Name = p.File
		}
		doctree.Walk(p.Sections, func(s *doctree.Section) bool {
			for _, l := range s.Labels() {
				c.known[l] = struct{}{}
			}
			cp.Sections = append(cp.Sections, SectionInfo{
				Level:  s.Level,
				Title:  s.Title,
				Plain:  parser.PlainTitle(s.Title),
				ID:     s.ID(),
				Labels: s.Labels(),
			})
			return true
		})
		c.parts = append(c.parts, cp)
	}
	return c
}

// KnownLabels returns every declared or discovered label, sorted.
func (c *Catalog) KnownLabels() []string {
	out := make([]string, 0, len(c.known))
	for l := range c.known {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// SelectableLabels returns the known labels a user can pick individually:
// everything except namespace wildcards.
func (c *Catalog) SelectableLabels() []string {
	var out []string
	for _, l := range c.KnownLabels() {
		if !labels.IsWildcard(l) {
			out = append(out, l)
		}
	}
	return out
}

// BareLabels returns the selectable labels without a namespace.
func (c *Catalog) BareLabels() []string {
	var out []string
	for _, l := range c.SelectableLabels() {
		if _, _, ok := labels.Split(l); !ok {
			out = append(out, l)
		}
	}
	return out
}

// Namespaces returns multi-valued labels. Declared namespaces come first in
// manifest order with their declared values first; values only found in
// documents follow, sorted. Undeclared namespaces come last, sorted.
func (c *Catalog) Namespaces() []Namespace {
	values := make(map[string][]string)
	for _, l := range c.SelectableLabels() {
		if ns, v, ok := labels.Split(l); ok {
			values[ns] = append(values[ns], v)
		}
	}

	var out []Namespace
	done := make(map[string]bool)
	for _, d := range c.declared {
		if !d.IsNamespace() {
			continue
		}
		name := strings.TrimSpace(d.Name)
		ns := Namespace{Name: name}
		listed := make(map[string]bool)
		for _, v := range d.AvailableValues {
			if v = strings.TrimSpace(v); v != "" && !listed[v] {
				ns.Values = append(ns.Values, v)
				listed[v] = true
			}
		}
		for _, v := range values[name] {
			if !listed[v] {
				ns.Values = append(ns.Values, v)
			}
		}
		out = append(out, ns)
		done[name] = true
	}

	var rest []string
	for name := range values {
		if !done[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, Namespace{Name: name, Values: values[name]})
	}
	return out
}

// Parts returns the per-part section listings in manifest order.
func (c *Catalog) Parts() []Part {
	return c.parts
}

// IsFullSelection reports whether sel covers every selectable label, in
// which case filtering is a no-op.
func (c *Catalog) IsFullSelection(sel labels.Selection) bool {
	selectable := c.SelectableLabels()
	if len(selectable) == 0 || len(sel) == 0 {
		return false
	}
	for _, l := range selectable {
		if !labels.MatchesSelection([]string{l}, sel, true) {
			return false
		}
	}
	return true
}
