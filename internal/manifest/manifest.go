// Package manifest decodes the YAML manifest that describes a base
// document template: its parts, label definitions, language and file
// import groups.
package manifest

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/templatizer/internal/labels"
)

// DefaultName is the manifest filename looked up at a template source root.
const DefaultName = "manifest.yaml"

// Manifest describes a base document template.
type Manifest struct {
	Title    string      `yaml:"title"`
	Language string      `yaml:"language"`
	Parts    []Part      `yaml:"parts"`
	Labels   []Label     `yaml:"labels"`
	Files    []FileGroup `yaml:"files"`
}

// Part is one document file, listed in output order.
type Part struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// Label defines a bare label, or a namespace when AvailableValues is set.
type Label struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	AvailableValues []string `yaml:"available_values"`
}

// FileGroup copies extra files (images, includes) next to the parts.
// Entries in Files may be doublestar glob patterns.
type FileGroup struct {
	Source      string   `yaml:"source"`
	Destination string   `yaml:"destination"`
	Files       []string `yaml:"files"`
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structural consistency.
func (m *Manifest) Validate() error {
	if len(m.Parts) == 0 {
		return errors.New("manifest: no parts declared")
	}
	seen := make(map[string]bool, len(m.Parts))
	for i, p := range m.Parts {
		f := strings.TrimSpace(p.File)
		if f == "" {
			return fmt.Errorf("manifest: part %d (%q) has no file", i, p.Name)
		}
		if !Clean(f) {
			return fmt.Errorf("manifest: part file %q escapes the template root", f)
		}
		if seen[f] {
			return fmt.Errorf("manifest: part file %q listed twice", f)
		}
		seen[f] = true
	}
	for _, l := range m.Labels {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			return errors.New("manifest: label with empty name")
		}
		if strings.Contains(name, labels.Separator) {
			return fmt.Errorf("manifest: label name %q must not contain %q", name, labels.Separator)
		}
	}
	for _, g := range m.Files {
		for _, p := range []string{g.Source, g.Destination} {
			if p != "" && !Clean(p) {
				return fmt.Errorf("manifest: file group path %q escapes the template root", p)
			}
		}
	}
	return nil
}

// Clean reports whether a relative path stays inside its root.
func Clean(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") {
		return false
	}
	c := path.Clean(p)
	return c != ".." && !strings.HasPrefix(c, "../")
}

// Expand returns the concrete labels a definition declares: the bare name,
// or one namespaced label per available value.
func (l Label) Expand() []string {
	name := strings.TrimSpace(l.Name)
	if len(l.AvailableValues) == 0 {
		return []string{name}
	}
	out := make([]string, 0, len(l.AvailableValues))
	for _, v := range l.AvailableValues {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, labels.Join(name, v))
		}
	}
	return out
}

// IsNamespace reports whether the label is multi-valued.
func (l Label) IsNamespace() bool {
	return len(l.AvailableValues) > 0
}

// PartNames maps part files to display names, falling back to the file.
func (m *Manifest) PartNames() map[string]string {
	out := make(map[string]string, len(m.Parts))
	for _, p := range m.Parts {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = p.File
		}
		out[p.File] = name
	}
	return out
}
