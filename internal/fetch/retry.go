package fetch

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// MaxRetries is the default number of attempts for transient failures.
const MaxRetries = 3

// ErrNotListable is returned when a glob needs expanding on a source that
// cannot enumerate files (plain HTTP).
var ErrNotListable = errors.New("source cannot list files")

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 500 * time.Millisecond
	if base > 10*time.Second {
		base = 10 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Retrying retries transient fetch failures with exponential backoff.
type Retrying struct {
	Fetcher
	attempts int
	log      *slog.Logger
	backoff  func(int) time.Duration
}

func NewRetrying(f Fetcher, attempts int, log *slog.Logger) *Retrying {
	if attempts <= 0 {
		attempts = MaxRetries
	}
	return &Retrying{Fetcher: f, attempts: attempts, log: log, backoff: Backoff}
}

func (r *Retrying) Fetch(ctx context.Context, name string) ([]byte, error) {
	var lastErr error
	for attempt := range r.attempts {
		data, err := r.Fetcher.Fetch(ctx, name)
		if err == nil || !IsRetryable(err) {
			return data, err
		}
		lastErr = err
		if attempt == r.attempts-1 {
			break
		}
		if r.log != nil {
			r.log.Warn("retryable fetch error", "location", r.Location(name), "attempt", attempt, "error", err)
		}
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// List forwards to the wrapped fetcher when it can list.
func (r *Retrying) List(ctx context.Context, dir, pattern string) ([]string, error) {
	if l, ok := r.Fetcher.(Lister); ok {
		return l.List(ctx, dir, pattern)
	}
	return nil, ErrNotListable
}
