package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options configures ForSource.
type Options struct {
	Timeout time.Duration
	Retries int
	Cache   *Cache // shared cache for remote sources; nil disables caching
	S3      S3Config
	Log     *slog.Logger

	// AllowLocal permits directory sources. LocalRoot, when set, restricts
	// them to that directory tree.
	AllowLocal bool
	LocalRoot  string
}

// ForSource returns a fetcher for a template source: an http(s) URL, an
// s3://bucket/prefix URL or a local directory.
func ForSource(source string, opts Options) (Fetcher, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("template source is required")
	}

	var remote Fetcher
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		hf, err := NewHTTPFetcher(source, opts.Timeout)
		if err != nil {
			return nil, err
		}
		remote = hf
	case strings.HasPrefix(source, "s3://"):
		sf, err := NewS3Fetcher(source, opts.S3)
		if err != nil {
			return nil, err
		}
		remote = sf
	default:
		return localSource(source, opts)
	}

	var f Fetcher = NewRetrying(remote, opts.Retries, opts.Log)
	if opts.Cache != nil {
		f = NewCached(f, opts.Cache)
	}
	return f, nil
}

func localSource(source string, opts Options) (Fetcher, error) {
	if !opts.AllowLocal {
		return nil, fmt.Errorf("local template sources are disabled")
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", source, err)
	}
	if opts.LocalRoot != "" {
		root, err := filepath.Abs(opts.LocalRoot)
		if err != nil {
			return nil, fmt.Errorf("resolve source root: %w", err)
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("source %s is outside %s", source, root)
		}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("template source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template source %s is not a directory", abs)
	}
	return NewFileFetcher(abs), nil
}

// List expands pattern under dir when the fetcher can enumerate files.
func List(ctx context.Context, f Fetcher, dir, pattern string) ([]string, error) {
	lister, ok := f.(Lister)
	if !ok {
		return nil, ErrNotListable
	}
	return lister.List(ctx, dir, pattern)
}
