package semsearch

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/codec"
	"github.com/hupe1980/semsearch/index"
	"github.com/hupe1980/semsearch/query"
)

// Files names the index files to open by base name. Ontology is
// required; Fulltext and Docs may be empty.
type Files struct {
	Fulltext string
	Ontology string
	Docs     string
}

// CacheStats are the counters of the result cache.
type CacheStats = query.CacheStats

// Stats summarizes an open Semsearch.
type Stats struct {
	Index index.Stats
	Cache CacheStats
}

// Semsearch answers semantic queries over a fulltext and an ontology index.
// It is safe for concurrent use.
type Semsearch struct {
	ready   *index.Ready
	cache   *query.ResultCache
	codec   codec.Codec
	metrics MetricsCollector
	logger  *Logger
	closed  atomic.Bool
}

// Open registers the index files found in store and loads the resident
// relations. The files are registered concurrently.
func Open(ctx context.Context, store blobstore.BlobStore, files Files, optFns ...Option) (*Semsearch, error) {
	if files.Ontology == "" {
		return nil, ErrNoOntology
	}
	o := applyOptions(optFns)

	idxOpts := []index.Option{
		index.WithLogger(o.logger.Logger),
		index.WithMetricsObserver(blockObserver{mc: o.metricsCollector}),
	}
	if o.excerpts != nil {
		idxOpts = append(idxOpts, index.WithExcerptStore(o.excerpts))
	}
	idx := index.New(store, idxOpts...)

	g, gctx := errgroup.WithContext(ctx)
	register := func(kind, baseName string, fn func(context.Context, string) error) {
		if baseName == "" {
			return
		}
		g.Go(func() error {
			err := fn(gctx, baseName)
			o.logger.LogRegister(gctx, kind, baseName, err)
			return err
		})
	}
	register("fulltext", files.Fulltext, idx.RegisterFulltext)
	register("ontology", files.Ontology, idx.RegisterOntology)
	if o.excerpts == nil {
		register("docs", files.Docs, idx.RegisterDocs)
	}
	if err := g.Wait(); err != nil {
		_ = idx.Close()
		return nil, translateError(err)
	}

	ready, err := idx.LoadResidentRelations(ctx)
	if err != nil {
		_ = idx.Close()
		return nil, translateError(err)
	}

	s := &Semsearch{
		ready:   ready,
		codec:   o.codec,
		metrics: o.metricsCollector,
		logger:  o.logger,
	}
	if o.cacheEntries >= 0 {
		s.cache = query.NewResultCache(o.cacheEntries)
	}
	return s, nil
}

// Index returns the read-only index view.
func (s *Semsearch) Index() *index.Ready { return s.ready }

// Search parses and evaluates a query.
func (s *Semsearch) Search(ctx context.Context, triples, root string, params query.Parameters) (*query.QueryResult, error) {
	q, err := query.New(triples, root, params)
	if err != nil {
		s.metrics.RecordQuery(0, 0, err)
		return nil, translateError(err)
	}
	return s.Execute(ctx, q)
}

// Execute evaluates a parsed query.
func (s *Semsearch) Execute(ctx context.Context, q *query.Query) (*query.QueryResult, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var before CacheStats
	if s.cache != nil {
		before = s.cache.Stats()
	}
	start := time.Now()

	res, err := q.CreateQueryResult(ctx, &query.ExecutionContext{
		Index:  s.ready,
		Cache:  s.cache,
		Logger: s.logger.Logger,
	})
	d := time.Since(start)

	entities := 0
	if res != nil {
		entities = max(res.Instances.Total, res.HitGroups.Total)
	}
	s.metrics.RecordQuery(entities, d, err)
	if s.cache != nil {
		// Deltas include concurrent queries sharing the cache.
		after := s.cache.Stats()
		s.metrics.RecordCache(after.Hits-before.Hits, after.Computations-before.Computations)
	}
	s.logger.LogQuery(ctx, q.Triples(), entities, d, err)

	if err != nil {
		return nil, translateError(err)
	}
	return res, nil
}

// Encode renders a result with the configured codec. q may be nil.
func (s *Semsearch) Encode(q *query.Query, res *query.QueryResult) ([]byte, error) {
	return codec.EncodeResult(s.codec, q, res)
}

// Stats returns index and cache counters.
func (s *Semsearch) Stats() Stats {
	st := Stats{Index: s.ready.Stats()}
	if s.cache != nil {
		st.Cache = s.cache.Stats()
	}
	return st
}

// PurgeCache drops all cached subtree results.
func (s *Semsearch) PurgeCache() {
	if s.cache != nil {
		s.cache.Purge()
		s.logger.LogCache(context.Background(), s.cache.Stats())
	}
}

// Close releases the index files and the excerpt store.
func (s *Semsearch) Close() error {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.ready.Close()
}
