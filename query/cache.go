package query

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/semsearch/internal/cache"
)

// DefaultCacheEntries is the default capacity of a ResultCache.
const DefaultCacheEntries = 4096

const cacheShards = 16

// ResultCache memoizes subtree results by canonical key. Concurrent
// requests for the same key are computed once. It is safe for concurrent
// use.
type ResultCache struct {
	lru          *cache.Sharded[string, *Result]
	group        singleflight.Group
	computations atomic.Int64
}

// NewResultCache creates a cache holding up to capacity results.
func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCacheEntries
	}
	shards := cacheShards
	if capacity < shards {
		shards = 1
	}
	return &ResultCache{
		lru: cache.NewSharded[string, *Result](shards, int64(capacity), cache.StringHash),
	}
}

// CacheStats are the counters of a ResultCache.
type CacheStats struct {
	cache.Stats
	Entries      int
	Computations int64
}

// Stats returns the cache counters.
func (c *ResultCache) Stats() CacheStats {
	return CacheStats{
		Stats:        c.lru.Stats(),
		Entries:      c.lru.Len(),
		Computations: c.computations.Load(),
	}
}

// Purge drops all cached results.
func (c *ResultCache) Purge() {
	c.lru.Purge()
}

// Provider is a part of the query tree with a memoizable result: a Node,
// a Disjunct or a Triple.
type Provider interface {
	// Key is the canonical representation of the subtree. Structurally
	// equal subtrees have equal keys.
	Key() string
	computeResult(ctx context.Context, ec *ExecutionContext) (*Result, error)
}

// GetResult returns the finished result of p, computing it at most once
// per cache entry. Failed computations are not cached.
func GetResult(ctx context.Context, ec *ExecutionContext, p Provider) (*Result, error) {
	c := ec.Cache
	if c == nil {
		r, err := p.computeResult(ctx, ec)
		if err != nil {
			return nil, err
		}
		return finished(r), nil
	}

	key := p.Key()
	if r, ok := c.lru.Get(key); ok && r.Status == Finished {
		ec.log().Debug("result cache hit", "key", key)
		return r, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if r, ok := c.lru.Peek(key); ok && r.Status == Finished {
			return r, nil
		}
		c.computations.Add(1)
		r, err := p.computeResult(ctx, ec)
		if err != nil {
			return nil, err
		}
		finished(r)
		c.lru.Set(key, r)
		ec.log().Debug("computed result", "key", key, "entities", len(r.Entities))
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}
