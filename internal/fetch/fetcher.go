// Package fetch retrieves manifest and part documents from a template
// source: a local directory, an HTTP(S) base URL or an S3 bucket prefix.
package fetch

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher reads resources relative to a source root.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Location renders name as an absolute, human readable location.
	Location(name string) string
}

// Lister is implemented by fetchers that can enumerate files, which is
// needed to expand glob patterns in file import groups.
type Lister interface {
	List(ctx context.Context, dir, pattern string) ([]string, error)
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Location string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Location)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// TransientError marks failures worth retrying (timeouts, 5xx, 429).
type TransientError struct {
	Location string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Location, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FetchText fetches a resource as a string.
func FetchText(ctx context.Context, f Fetcher, name string) (string, error) {
	b, err := f.Fetch(ctx, name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
