package catalog

import (
	"strings"

	"github.com/dgallion1/templatizer/internal/labels"
)

// UnknownLabelsError lists requested labels the template does not know.
type UnknownLabelsError struct {
	Labels []string
}

func (e *UnknownLabelsError) Error() string {
	return "Unknown label(s): " + strings.Join(e.Labels, ", ")
}

// Validate checks every requested label at once. A wildcard "ns::*" is
// valid when the namespace is known.
func (c *Catalog) Validate(requested []string) error {
	namespaces := make(map[string]bool)
	for l := range c.known {
		if ns, _, ok := labels.Split(l); ok {
			namespaces[ns] = true
		}
	}

	var unknown []string
	seen := make(map[string]bool)
	for _, r := range requested {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		if _, ok := c.known[r]; ok {
			continue
		}
		if ns, v, ok := labels.Split(r); ok && v == labels.Wildcard && namespaces[ns] {
			continue
		}
		unknown = append(unknown, r)
	}
	if len(unknown) > 0 {
		return &UnknownLabelsError{Labels: unknown}
	}
	return nil
}
