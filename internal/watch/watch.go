// Package watch rebuilds a local template when its files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultWindow is the quiet period before a batch of changes is reported.
const DefaultWindow = 300 * time.Millisecond

// DefaultPatterns match part documents and manifests.
var DefaultPatterns = []string{
	"**/*.adoc",
	"**/*.asciidoc",
	"**/*.md",
	"**/*.markdown",
	"**/*.yaml",
	"**/*.yml",
}

// Watcher reports batches of changed files below a root directory.
type Watcher struct {
	root     string
	patterns []string
	window   time.Duration
	log      *slog.Logger
	onChange func([]string)
	excluded []string
}

// New creates a watcher. Patterns are doublestar globs relative to root;
// onChange receives the relative paths of each debounced batch.
func New(root string, patterns []string, window time.Duration, onChange func([]string), log *slog.Logger) *Watcher {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Watcher{
		root:     root,
		patterns: patterns,
		window:   window,
		log:      log,
		onChange: onChange,
	}
}

// Matches reports whether a slash-separated path relative to root is
// watched.
func (w *Watcher) Matches(rel string) bool {
	for _, p := range w.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Exclude ignores changes below a directory relative to root, such as a
// build output directory inside the watched tree.
func (w *Watcher) Exclude(rel string) {
	rel = strings.Trim(filepath.ToSlash(filepath.Clean(rel)), "/")
	if rel != "" && rel != "." {
		w.excluded = append(w.excluded, rel)
	}
}

func (w *Watcher) isExcluded(rel string) bool {
	for _, e := range w.excluded {
		if rel == e || strings.HasPrefix(rel, e+"/") {
			return true
		}
	}
	return false
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && hidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	debouncer := NewDebouncer(w.window, w.onChange)
	defer debouncer.Stop()

	w.log.Info("watching", "root", w.root, "patterns", w.patterns)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !hidden(filepath.Base(event.Name)) {
					if err := w.addTree(fw, event.Name); err != nil {
						w.log.Warn("watch new directory failed", "path", event.Name, "error", err)
					}
				}
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if !w.isExcluded(rel) && w.Matches(rel) {
				w.log.Debug("file event", "path", rel, "op", event.Op.String())
				debouncer.Add(rel)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}
