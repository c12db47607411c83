package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel fetches when none is configured.
const DefaultConcurrency = 6

// Failure is one failed fetch.
type Failure struct {
	Name     string
	Location string
	Err      error
}

// Errors aggregates every failure of a FetchAll call.
type Errors struct {
	Failures []Failure
}

func (e *Errors) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Err.Error())
	}
	return fmt.Sprintf("%d fetch(es) failed: %s", len(e.Failures), strings.Join(msgs, "; "))
}

func (e *Errors) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Err)
	}
	return out
}

// FetchAll fetches every name with at most concurrency requests in flight.
// It waits for all fetches to settle and reports every failure together,
// in the order the names were given.
func FetchAll(ctx context.Context, f Fetcher, names []string, concurrency int) (map[string][]byte, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		mu      sync.Mutex
		results = make(map[string][]byte, len(names))
		errs    = make([]error, len(names))
	)
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, name := range names {
		g.Go(func() error {
			data, err := f.Fetch(ctx, name)
			if err != nil {
				errs[i] = err
				return nil
			}
			mu.Lock()
			results[name] = data
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var agg Errors
	for i, err := range errs {
		if err != nil {
			agg.Failures = append(agg.Failures, Failure{Name: names[i], Location: f.Location(names[i]), Err: err})
		}
	}
	if len(agg.Failures) > 0 {
		return nil, &agg
	}
	return results, nil
}
