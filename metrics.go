package semsearch

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/semsearch/index"
	"github.com/hupe1980/semsearch/model"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordQuery is called after each query. entities is the size of the
	// root result, err is nil if successful.
	RecordQuery(entities int, duration time.Duration, err error)

	// RecordCache is called after each query with the number of subtree
	// results that were served from the cache and that had to be computed.
	RecordCache(hits, computations int64)

	// RecordBlockRead is called after each block read from an index file.
	RecordBlockRead(kind model.Kind, entries int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordQuery(int, time.Duration, error)                 {}
func (NoopMetricsCollector) RecordCache(int64, int64)                              {}
func (NoopMetricsCollector) RecordBlockRead(model.Kind, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	QueryCount        atomic.Int64
	QueryErrors       atomic.Int64
	QueryTotalNanos   atomic.Int64
	CacheHits         atomic.Int64
	CacheComputations atomic.Int64
	WordBlockReads    atomic.Int64
	RelationReads     atomic.Int64
	BlockReadErrors   atomic.Int64
	BlockEntries      atomic.Int64
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordCache implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCache(hits, computations int64) {
	b.CacheHits.Add(hits)
	b.CacheComputations.Add(computations)
}

// RecordBlockRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBlockRead(kind model.Kind, entries int, _ time.Duration, err error) {
	if kind == model.KindWord {
		b.WordBlockReads.Add(1)
	} else {
		b.RelationReads.Add(1)
	}
	b.BlockEntries.Add(int64(entries))
	if err != nil {
		b.BlockReadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		QueryCount:        b.QueryCount.Load(),
		QueryErrors:       b.QueryErrors.Load(),
		CacheHits:         b.CacheHits.Load(),
		CacheComputations: b.CacheComputations.Load(),
		WordBlockReads:    b.WordBlockReads.Load(),
		RelationReads:     b.RelationReads.Load(),
		BlockReadErrors:   b.BlockReadErrors.Load(),
		BlockEntries:      b.BlockEntries.Load(),
	}
	if s.QueryCount > 0 {
		s.QueryAvgNanos = b.QueryTotalNanos.Load() / s.QueryCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	QueryCount        int64
	QueryErrors       int64
	QueryAvgNanos     int64
	CacheHits         int64
	CacheComputations int64
	WordBlockReads    int64
	RelationReads     int64
	BlockReadErrors   int64
	BlockEntries      int64
}

// blockObserver forwards index block reads to a MetricsCollector.
type blockObserver struct {
	mc MetricsCollector
}

var _ index.MetricsObserver = blockObserver{}

func (o blockObserver) OnBlockRead(kind model.Kind, entries int, d time.Duration, err error) {
	o.mc.RecordBlockRead(kind, entries, d, err)
}
