// Package cache provides bounded LRU caches.
//
// # LRU
//
// LRU is a generic least-recently-used cache. Capacity is counted in the
// units of an optional SizeFunc (bytes for blob blocks, entries for query
// results). When a resource.Controller is attached, sized entries are
// charged against its memory budget and refused when the budget is spent.
//
// # Sharded
//
// Sharded spreads keys over independently locked LRUs. Shards are chosen by
// a caller supplied hash; StringHash uses farmhash. The hash only selects the
// shard: lookups always compare full keys, so distinct keys never collide.
package cache
