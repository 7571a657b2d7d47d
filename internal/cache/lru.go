package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/semsearch/resource"
)

// SizeFunc reports the cost of a value against the cache capacity.
type SizeFunc[V any] func(V) int64

// LRU is a bounded least-recently-used cache.
//
// Capacity is measured in the units of the SizeFunc. Without a SizeFunc
// every entry costs 1, so the capacity is an entry count.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[K]*list.Element
	evictList *list.List
	sizeOf    SizeFunc[V]
	rc        *resource.Controller

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
	cost  int64
}

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithSizeFunc sets the cost function for values.
func WithSizeFunc[K comparable, V any](fn SizeFunc[V]) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.sizeOf = fn
	}
}

// WithResourceController charges cached bytes against rc.
func WithResourceController[K comparable, V any](rc *resource.Controller) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.rc = rc
	}
}

// NewLRU creates a new LRU cache with the given capacity.
func NewLRU[K comparable, V any](capacity int64, optFns ...Option[K, V]) *LRU[K, V] {
	c := &LRU[K, V]{
		capacity:  capacity,
		items:     make(map[K]*list.Element),
		evictList: list.New(),
	}
	for _, fn := range optFns {
		fn(c)
	}
	return c
}

func (c *LRU[K, V]) cost(v V) int64 {
	if c.sizeOf == nil {
		return 1
	}
	return c.sizeOf(v)
}

// Get returns a cached value and marks it as most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Peek returns a cached value without touching recency or stats.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		return ent.Value.(*entry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Set caches a value. It reports false if the value was not admitted,
// either because it exceeds the capacity or the resource controller
// refused the memory.
func (c *LRU[K, V]) Set(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cost := c.cost(value)
	if cost > c.capacity {
		return false
	}

	if ent, ok := c.items[key]; ok {
		e := ent.Value.(*entry[K, V])
		if c.rc != nil && c.sizeOf != nil && cost > e.cost {
			if !c.rc.TryAcquireMemory(cost - e.cost) {
				return false
			}
		}
		if c.rc != nil && c.sizeOf != nil && cost < e.cost {
			c.rc.ReleaseMemory(e.cost - cost)
		}
		c.size += cost - e.cost
		e.value = value
		e.cost = cost
		c.evictList.MoveToFront(ent)
		c.evict()
		return true
	}

	for c.size+cost > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			break
		}
		c.removeElement(back)
		c.evictions.Add(1)
	}

	if c.rc != nil && c.sizeOf != nil && !c.rc.TryAcquireMemory(cost) {
		return false
	}

	element := c.evictList.PushFront(&entry[K, V]{key: key, value: value, cost: cost})
	c.items[key] = element
	c.size += cost
	return true
}

// Remove drops a single key.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)
	}
}

// Invalidate removes entries matching the predicate.
func (c *LRU[K, V]) Invalidate(predicate func(key K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for key, element := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, element)
		}
	}
	for _, e := range toRemove {
		c.removeElement(e)
	}
}

// Purge removes all entries.
func (c *LRU[K, V]) Purge() {
	c.Invalidate(func(K) bool { return true })
}

func (c *LRU[K, V]) evict() {
	for c.size > c.capacity {
		back := c.evictList.Back()
		if back == nil {
			return
		}
		c.removeElement(back)
		c.evictions.Add(1)
	}
}

func (c *LRU[K, V]) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry[K, V])
	delete(c.items, kv.key)
	c.size -= kv.cost
	if c.rc != nil && c.sizeOf != nil {
		c.rc.ReleaseMemory(kv.cost)
	}
}

// Keys returns the keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	for e := c.evictList.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*entry[K, V]).key)
	}
	return keys
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the current cost of all entries.
func (c *LRU[K, V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Stats holds cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// Add sums two stat snapshots.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Hits:      s.Hits + o.Hits,
		Misses:    s.Misses + o.Misses,
		Evictions: s.Evictions + o.Evictions,
	}
}
