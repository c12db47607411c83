package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestFileFetcher(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "intro.adoc", "= Intro\n")
	writeFile(t, root, "assets/logo.png", "png")
	writeFile(t, root, "assets/diagrams/a.svg", "svg")
	writeFile(t, root, "assets/diagrams/deep/b.svg", "svg")

	f := NewFileFetcher(root)
	text, err := FetchText(context.Background(), f, "intro.adoc")
	require.NoError(t, err)
	assert.Equal(t, "= Intro\n", text)

	_, err = f.Fetch(context.Background(), "missing.adoc")
	assert.True(t, IsNotFound(err))

	_, err = f.Fetch(context.Background(), "../escape.adoc")
	assert.Error(t, err)

	files, err := List(context.Background(), f, "assets", "diagrams/**/*.svg")
	require.NoError(t, err)
	assert.Equal(t, []string{"diagrams/a.svg", "diagrams/deep/b.svg"}, files)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/base/intro.adoc":
			w.Write([]byte("= Intro\n"))
		case "/base/busy.adoc":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/base/forbidden.adoc":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(srv.URL+"/base", time.Second)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/base/intro.adoc", f.Location("intro.adoc"))

	data, err := f.Fetch(context.Background(), "intro.adoc")
	require.NoError(t, err)
	assert.Equal(t, "= Intro\n", string(data))

	_, err = f.Fetch(context.Background(), "nope.adoc")
	assert.True(t, IsNotFound(err))

	_, err = f.Fetch(context.Background(), "busy.adoc")
	assert.True(t, IsRetryable(err))

	_, err = f.Fetch(context.Background(), "forbidden.adoc")
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
	assert.False(t, IsNotFound(err))
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f, err := NewHTTPFetcher(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), "slow.adoc")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

type stubFetcher struct {
	calls atomic.Int32
	fn    func(name string, call int32) ([]byte, error)
}

func (s *stubFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	return s.fn(name, s.calls.Add(1))
}

func (s *stubFetcher) Location(name string) string { return "stub://" + name }

func TestRetrying(t *testing.T) {
	stub := &stubFetcher{fn: func(name string, call int32) ([]byte, error) {
		if call < 3 {
			return nil, &TransientError{Location: name, Err: errors.New("busy")}
		}
		return []byte("ok"), nil
	}}
	r := NewRetrying(stub, 3, nil)
	r.backoff = func(int) time.Duration { return time.Millisecond }

	data, err := r.Fetch(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(3), stub.calls.Load())

	missing := &stubFetcher{fn: func(name string, _ int32) ([]byte, error) {
		return nil, &NotFoundError{Location: name}
	}}
	r = NewRetrying(missing, 3, nil)
	_, err = r.Fetch(context.Background(), "a")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), missing.calls.Load(), "not-found is not retried")
}

func TestBackoff(t *testing.T) {
	for attempt := range 6 {
		d := Backoff(attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 15*time.Second)
	}
}

func TestCached(t *testing.T) {
	stub := &stubFetcher{fn: func(name string, _ int32) ([]byte, error) {
		return []byte(name), nil
	}}
	c := NewCached(stub, NewCache(8, time.Minute))
	for range 3 {
		data, err := c.Fetch(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, "x", string(data))
	}
	assert.Equal(t, int32(1), stub.calls.Load())

	_, err := c.List(context.Background(), "", "*")
	assert.ErrorIs(t, err, ErrNotListable)
}

func TestFetchAll_AggregatesFailures(t *testing.T) {
	var inFlight, peak atomic.Int32
	stub := &stubFetcher{fn: func(name string, _ int32) ([]byte, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		if name == "b" || name == "d" {
			return nil, &NotFoundError{Location: "stub://" + name}
		}
		return []byte(name), nil
	}}

	_, err := FetchAll(context.Background(), stub, []string{"a", "b", "c", "d", "e"}, 2)
	var agg *Errors
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Failures, 2)
	assert.Equal(t, "b", agg.Failures[0].Name)
	assert.Equal(t, "d", agg.Failures[1].Name)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(5), stub.calls.Load(), "every fetch settles before reporting")
	assert.LessOrEqual(t, peak.Load(), int32(2))

	ok, err := FetchAll(context.Background(), stub, []string{"a", "c"}, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("a"), "c": []byte("c")}, ok)
}

func TestForSource(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "tpl")
	require.NoError(t, os.MkdirAll(inside, 0o755))

	f, err := ForSource(inside, Options{AllowLocal: true, LocalRoot: root})
	require.NoError(t, err)
	assert.IsType(t, &FileFetcher{}, f)

	_, err = ForSource(inside, Options{})
	assert.Error(t, err)

	_, err = ForSource(t.TempDir(), Options{AllowLocal: true, LocalRoot: root})
	assert.Error(t, err)

	f, err = ForSource("https://example.com/tpl", Options{Cache: NewCache(4, time.Minute)})
	require.NoError(t, err)
	assert.IsType(t, &Cached{}, f)
	assert.Equal(t, "https://example.com/tpl/manifest.yaml", f.Location("manifest.yaml"))

	_, err = ForSource("s3://bucket/prefix", Options{})
	assert.Error(t, err)
}
