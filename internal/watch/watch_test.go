package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_BatchesAndDeduplicates(t *testing.T) {
	flushed := make(chan []string, 4)
	d := NewDebouncer(30*time.Millisecond, func(p []string) { flushed <- p })
	defer d.Stop()

	d.Add("b.adoc")
	d.Add("a.adoc")
	d.Add("b.adoc")

	select {
	case got := <-flushed:
		assert.Equal(t, []string{"a.adoc", "b.adoc"}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a flush")
	}

	select {
	case got := <-flushed:
		t.Fatalf("expected a single flush, got another %v", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_StopDiscardsPending(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDebouncer(20*time.Millisecond, func([]string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	d.Add("a.adoc")
	d.Stop()
	d.Add("b.adoc")

	time.Sleep(80 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, calls)
}

func TestWatcher_Matches(t *testing.T) {
	w := New(".", nil, 0, nil, nil)
	for _, p := range []string{"intro.adoc", "parts/guide.md", "manifest.yaml", "deep/a/b.asciidoc"} {
		assert.True(t, w.Matches(p), p)
	}
	for _, p := range []string{"logo.png", "notes.txt", "build/out.zip"} {
		assert.False(t, w.Matches(p), p)
	}

	w = New(".", []string{"assets/**/*.svg"}, 0, nil, nil)
	assert.True(t, w.Matches("assets/d/x.svg"))
	assert.False(t, w.Matches("intro.adoc"))
}

func TestWatcher_Run(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "parts"), 0o755))

	changes := make(chan []string, 8)
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	w := New(root, nil, 50*time.Millisecond, func(p []string) { changes <- p }, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register directories.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "parts", "guide.adoc"), []byte("= G\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.txt"), []byte("x"), 0o644))

	select {
	case got := <-changes:
		assert.Equal(t, []string{"parts/guide.adoc"}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change batch")
	}
}

func TestWatcher_Exclude(t *testing.T) {
	w := New(".", nil, 0, nil, nil)
	w.Exclude("out/")
	w.Exclude(".")
	assert.True(t, w.isExcluded("out/template/a.adoc"))
	assert.True(t, w.isExcluded("out"))
	assert.False(t, w.isExcluded("outline.adoc"))
	assert.Len(t, w.excluded, 1)
}
