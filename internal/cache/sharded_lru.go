package cache

import (
	farmhash "github.com/leemcloughlin/gofarmhash"
)

// HashFunc maps a key to a 64-bit hash for shard selection.
type HashFunc[K comparable] func(K) uint64

// StringHash hashes strings with farmhash.
func StringHash(s string) uint64 {
	return farmhash.Hash64([]byte(s))
}

// Sharded distributes entries over independently locked LRU shards.
// Each shard holds capacity/shards of the total capacity.
type Sharded[K comparable, V any] struct {
	shards []*LRU[K, V]
	hash   HashFunc[K]
}

// NewSharded creates a sharded LRU cache.
func NewSharded[K comparable, V any](numShards int, capacity int64, hash HashFunc[K], optFns ...Option[K, V]) *Sharded[K, V] {
	if numShards < 1 {
		numShards = 1
	}
	shardCapacity := capacity / int64(numShards)
	if shardCapacity < 1 {
		shardCapacity = 1
	}

	s := &Sharded[K, V]{
		shards: make([]*LRU[K, V], numShards),
		hash:   hash,
	}
	for i := range s.shards {
		s.shards[i] = NewLRU[K, V](shardCapacity, optFns...)
	}
	return s
}

func (s *Sharded[K, V]) shard(key K) *LRU[K, V] {
	return s.shards[s.hash(key)%uint64(len(s.shards))]
}

// Get returns a cached value.
func (s *Sharded[K, V]) Get(key K) (V, bool) {
	return s.shard(key).Get(key)
}

// Peek returns a cached value without touching recency or stats.
func (s *Sharded[K, V]) Peek(key K) (V, bool) {
	return s.shard(key).Peek(key)
}

// Set caches a value.
func (s *Sharded[K, V]) Set(key K, value V) bool {
	return s.shard(key).Set(key, value)
}

// Remove drops a single key.
func (s *Sharded[K, V]) Remove(key K) {
	s.shard(key).Remove(key)
}

// Invalidate removes entries matching the predicate from all shards.
func (s *Sharded[K, V]) Invalidate(predicate func(key K) bool) {
	for _, sh := range s.shards {
		sh.Invalidate(predicate)
	}
}

// Purge removes all entries.
func (s *Sharded[K, V]) Purge() {
	for _, sh := range s.shards {
		sh.Purge()
	}
}

// Len returns the number of entries across shards.
func (s *Sharded[K, V]) Len() int {
	n := 0
	for _, sh := range s.shards {
		n += sh.Len()
	}
	return n
}

// Size returns the total cost across shards.
func (s *Sharded[K, V]) Size() int64 {
	var n int64
	for _, sh := range s.shards {
		n += sh.Size()
	}
	return n
}

// Stats returns aggregated statistics.
func (s *Sharded[K, V]) Stats() Stats {
	var st Stats
	for _, sh := range s.shards {
		st = st.Add(sh.Stats())
	}
	return st
}

// ShardStats returns the entry count of each shard.
func (s *Sharded[K, V]) ShardStats() []int {
	out := make([]int, len(s.shards))
	for i, sh := range s.shards {
		out[i] = sh.Len()
	}
	return out
}
