package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dgallion1/templatizer/internal/manifest"
)

// FileFetcher reads from a local directory.
type FileFetcher struct {
	Root string
}

func NewFileFetcher(root string) *FileFetcher {
	return &FileFetcher{Root: root}
}

func (f *FileFetcher) Location(name string) string {
	return filepath.Join(f.Root, filepath.FromSlash(name))
}

func (f *FileFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !manifest.Clean(name) {
		return nil, fmt.Errorf("invalid path %q", name)
	}
	data, err := os.ReadFile(f.Location(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Location: f.Location(name)}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Location(name), err)
	}
	return data, nil
}

// List expands a doublestar pattern under dir. Results are relative to dir.
func (f *FileFetcher) List(ctx context.Context, dir, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := f.Root
	if dir != "" {
		if !manifest.Clean(dir) {
			return nil, fmt.Errorf("invalid directory %q", dir)
		}
		base = f.Location(dir)
	}
	matches, err := doublestar.Glob(os.DirFS(base), path.Clean(pattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", pattern, base, err)
	}
	sort.Strings(matches)
	return matches, nil
}
