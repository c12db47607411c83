// Package labels decides whether a section's labels satisfy a requested
// label selection.
//
// A label is either bare ("mobile") or namespaced ("level::basic"). A
// selection entry "ns::*" stands for every value of the namespace.
package labels

import (
	"sort"
	"strings"
)

// Separator splits a namespaced label into namespace and value.
const Separator = "::"

// Wildcard is the value that matches any value of a namespace.
const Wildcard = "*"

// Selection is a set of requested labels.
type Selection map[string]struct{}

// NewSelection normalizes requested labels: entries are trimmed and empty
// entries dropped.
func NewSelection(requested []string) Selection {
	sel := make(Selection, len(requested))
	for _, r := range requested {
		if r = strings.TrimSpace(r); r != "" {
			sel[r] = struct{}{}
		}
	}
	return sel
}

// Has reports exact membership.
func (s Selection) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Sorted returns the selection's labels in lexical order.
func (s Selection) Sorted() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Split returns the namespace and value of a label. Bare labels have an
// empty namespace and ok=false.
func Split(label string) (namespace, value string, ok bool) {
	ns, v, found := strings.Cut(label, Separator)
	if !found {
		return "", label, false
	}
	return ns, v, true
}

// Join builds a namespaced label.
func Join(namespace, value string) string {
	return namespace + Separator + value
}

// IsWildcard reports whether label has the form "ns::*".
func IsWildcard(label string) bool {
	_, v, ok := Split(label)
	return ok && v == Wildcard
}

// MatchesSelection reports whether every one of a section's labels is
// satisfied by the selection. A section with no labels is unlabeled and
// never matches; callers keep unlabeled sections structurally instead.
func MatchesSelection(sectionLabels []string, sel Selection, wildcard bool) bool {
	if len(sectionLabels) == 0 {
		return false
	}
	for _, l := range sectionLabels {
		if !satisfied(l, sel, wildcard) {
			return false
		}
	}
	return true
}

// satisfied tests a single label against the selection.
func satisfied(label string, sel Selection, wildcard bool) bool {
	if sel.Has(label) {
		return true
	}
	if !wildcard {
		return false
	}
	ns, v, ok := Split(label)
	if !ok {
		return false
	}
	if v != Wildcard {
		return sel.Has(Join(ns, Wildcard))
	}
	prefix := ns + Separator
	for s := range sel {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
