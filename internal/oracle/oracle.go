// Package oracle defines the dependency oracle consumed by the resolution
// engine, plus adapters around it.
//
// An oracle returns the transitive closure of content files referenced by a
// set of assets, inputs included. It must be a pure function of the on-disk
// state at call time; the engine relies on that to run calls in parallel.
package oracle

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"asset-bundler/internal/sortutil"
)

// Oracle answers dependency queries.
type Oracle interface {
	Dependencies(ctx context.Context, keys []string, recursive bool) ([]string, error)
}

// Func adapts a function to Oracle.
type Func func(ctx context.Context, keys []string, recursive bool) ([]string, error)

// Dependencies calls f.
func (f Func) Dependencies(ctx context.Context, keys []string, recursive bool) ([]string, error) {
	return f(ctx, keys, recursive)
}

// Cached memoizes answers of another oracle keyed by the (order-insensitive)
// key set. It is safe for concurrent use.
type Cached struct {
	next  Oracle
	cache *lru.Cache[string, []string]
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next Oracle, size int) (*Cached, error) {
	if size <= 0 {
		return nil, fmt.Errorf("oracle cache size must be positive, got %d", size)
	}
	c, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: c}, nil
}

// Dependencies serves from the cache or asks the wrapped oracle. Errors are
// never cached.
func (c *Cached) Dependencies(ctx context.Context, keys []string, recursive bool) ([]string, error) {
	k := cacheKey(keys, recursive)
	if deps, ok := c.cache.Get(k); ok {
		return append([]string(nil), deps...), nil
	}
	deps, err := c.next.Dependencies(ctx, keys, recursive)
	if err != nil {
		return nil, err
	}
	c.cache.Add(k, append([]string(nil), deps...))
	return deps, nil
}

// Len is the number of cached answers.
func (c *Cached) Len() int { return c.cache.Len() }

// Purge drops every cached answer, e.g. after the graph source changed.
func (c *Cached) Purge() { c.cache.Purge() }

func cacheKey(keys []string, recursive bool) string {
	prefix := "d:"
	if recursive {
		prefix = "r:"
	}
	return prefix + strings.Join(sortutil.Unique(keys), "\x00")
}
