package fetch

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache holds fetched documents keyed by absolute location. It is shared
// across fetchers so repeated customizations of a remote template do not
// refetch every part.
type Cache = expirable.LRU[string, []byte]

// NewCache returns an LRU cache whose entries expire after ttl.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 256
	}
	return expirable.NewLRU[string, []byte](size, nil, ttl)
}

// Cached serves repeated fetches from a shared cache.
type Cached struct {
	Fetcher
	cache *Cache
}

func NewCached(f Fetcher, cache *Cache) *Cached {
	return &Cached{Fetcher: f, cache: cache}
}

func (c *Cached) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := c.Location(name)
	if data, ok := c.cache.Get(key); ok {
		return data, nil
	}
	data, err := c.Fetcher.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, data)
	return data, nil
}

// List forwards to the wrapped fetcher when it can list.
func (c *Cached) List(ctx context.Context, dir, pattern string) ([]string, error) {
	if l, ok := c.Fetcher.(Lister); ok {
		return l.List(ctx, dir, pattern)
	}
	return nil, ErrNotListable
}
