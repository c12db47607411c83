package customize

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dgallion1/templatizer/internal/fetch"
	"github.com/dgallion1/templatizer/internal/manifest"
)

// ErrNoImportListing is returned when a file group uses glob patterns on a
// source that cannot list files.
var ErrNoImportListing = errors.New("file import patterns need a listable source")

func isPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

type importSpec struct {
	name string // relative to the source root
	dest string // relative to an output tree
}

// expandGroups turns every file group entry into concrete files, expanding
// glob patterns through the fetcher when it can list.
func (t *Template) expandGroups(ctx context.Context) ([]importSpec, error) {
	var specs []importSpec
	seen := make(map[string]bool)
	add := func(g manifest.FileGroup, rel string) error {
		if !manifest.Clean(rel) {
			return fmt.Errorf("import %q escapes %q", rel, g.Source)
		}
		dest := path.Join(g.Destination, rel)
		if seen[dest] {
			return nil
		}
		seen[dest] = true
		specs = append(specs, importSpec{name: path.Join(g.Source, rel), dest: dest})
		return nil
	}

	for _, g := range t.Manifest.Files {
		for _, entry := range g.Files {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			if !isPattern(entry) {
				if err := add(g, entry); err != nil {
					return nil, err
				}
				continue
			}
			matches, err := fetch.List(ctx, t.fetcher, g.Source, entry)
			if errors.Is(err, fetch.ErrNotListable) {
				return nil, fmt.Errorf("%w: %s", ErrNoImportListing, entry)
			}
			if err != nil {
				return nil, err
			}
			if len(matches) == 0 {
				t.log.Warn("file import pattern matched nothing", "source", g.Source, "pattern", entry)
			}
			for _, rel := range matches {
				if err := add(g, rel); err != nil {
					return nil, err
				}
			}
		}
	}
	return specs, nil
}

func (t *Template) resolveImports(ctx context.Context) ([]Import, error) {
	specs, err := t.expandGroups(ctx)
	if err != nil || len(specs) == 0 {
		return nil, err
	}
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.name)
	}
	data, err := fetch.FetchAll(ctx, t.fetcher, names, t.concurrency)
	if err != nil {
		return nil, fmt.Errorf("file imports: %w", err)
	}
	out := make([]Import, 0, len(specs))
	for _, s := range specs {
		out = append(out, Import{Path: s.dest, Data: data[s.name]})
	}
	return out, nil
}
