package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxDocumentBytes bounds a single fetched resource.
const maxDocumentBytes = 32 << 20

// HTTPFetcher reads from a base URL. Each request gets its own timeout and
// is aborted when it expires.
type HTTPFetcher struct {
	base       *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

func NewHTTPFetcher(baseURL string, timeout time.Duration) (*HTTPFetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		base:       u,
		httpClient: &http.Client{},
		timeout:    timeout,
	}, nil
}

func (f *HTTPFetcher) Location(name string) string {
	ref, err := url.Parse(strings.TrimPrefix(name, "/"))
	if err != nil {
		return f.base.String() + name
	}
	return f.base.ResolveReference(ref).String()
}

func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	loc := f.Location(name)
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &TransientError{Location: loc, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Location: loc}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &TransientError{Location: loc, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch %s: status %d: %s", loc, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, &TransientError{Location: loc, Err: err}
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("fetch %s: exceeds %d bytes", loc, maxDocumentBytes)
	}
	return data, nil
}
