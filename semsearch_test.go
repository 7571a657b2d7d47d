package semsearch_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semsearch"
	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/codec"
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/query"
	"github.com/hupe1980/semsearch/testutil"
)

var wikiFiles = semsearch.Files{
	Fulltext: testutil.WikiFulltext,
	Ontology: testutil.WikiOntology,
	Docs:     testutil.WikiDocs,
}

func openWiki(t *testing.T, optFns ...semsearch.Option) *semsearch.Semsearch {
	t.Helper()
	s, err := semsearch.Open(context.Background(), testutil.NewWikiStore(t), wikiFiles, optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	metrics := &semsearch.BasicMetricsCollector{}
	s := openWiki(t, semsearch.WithMetricsCollector(metrics))

	const triples = "$1 :r:is-a :e:person:Person; $1 :r:occurs-with born $2; $2 :r:is-a :e:city:City"
	params := query.Parameters{NofInstances: 10, NofHitGroups: 10}

	res, err := s.Search(ctx, triples, "$1", params)
	require.NoError(t, err)
	assert.Equal(t, "2 of 2 from 0: [(:e:albert-einstein, 2), (:e:marie-curie, 2)]", res.Instances.String())
	require.Len(t, res.HitGroups.Items, 2)
	assert.Len(t, res.HitGroups.Items[1].Hits, 3)

	_, err = s.Search(ctx, triples, "$1", params)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.QueryCount)
	assert.Zero(t, stats.QueryErrors)
	assert.Equal(t, int64(7), stats.CacheComputations)
	assert.Positive(t, stats.CacheHits)
	assert.Positive(t, stats.WordBlockReads)
	assert.Positive(t, stats.RelationReads)

	st := s.Stats()
	assert.Equal(t, int64(7), st.Cache.Computations)
	assert.Equal(t, 3, st.Index.Classes)

	s.PurgeCache()
	assert.Zero(t, s.Stats().Cache.Entries)
}

func TestSearchErrors(t *testing.T) {
	ctx := context.Background()
	s := openWiki(t)

	_, err := s.Search(ctx, "$1 :r:born-in $2; $2 :r:married-to $3; $3 :r:married-to $1", "$1", query.Parameters{NofInstances: 1})
	require.ErrorIs(t, err, semsearch.ErrBadQuery)
	assert.ErrorIs(t, err, query.ErrCyclicQuery)
	var qe *semsearch.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "$1", qe.Root)

	_, err = s.Search(ctx, "$1 :r:lives-in $2; $2 :r:equals :e:ulm", "$1", query.Parameters{NofInstances: 1})
	assert.ErrorIs(t, err, semsearch.ErrBadQuery)

	_, err = s.Search(ctx, "", "", query.Parameters{NofInstances: 1})
	assert.ErrorIs(t, err, semsearch.ErrNotImplemented)

	require.NoError(t, s.Close())
	_, err = s.Search(ctx, "$1 :r:is-a :e:city:City", "$1", query.Parameters{NofInstances: 1})
	assert.ErrorIs(t, err, semsearch.ErrClosed)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewWikiStore(t)

	_, err := semsearch.Open(ctx, store, semsearch.Files{Fulltext: testutil.WikiFulltext})
	assert.ErrorIs(t, err, semsearch.ErrNoOntology)

	_, err = semsearch.Open(ctx, store, semsearch.Files{Ontology: "missing"})
	assert.ErrorIs(t, err, semsearch.ErrNotFound)

	require.NoError(t, store.Put(ctx, testutil.WikiFulltext+".index", []byte("garbage")))
	_, err = semsearch.Open(ctx, store, wikiFiles)
	assert.ErrorIs(t, err, semsearch.ErrCorruptIndex)
}

func TestOntologyOnly(t *testing.T) {
	ctx := context.Background()
	s, err := semsearch.Open(ctx, testutil.NewWikiStore(t), semsearch.Files{Ontology: testutil.WikiOntology},
		semsearch.WithCacheEntries(-1))
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Search(ctx, "$1 :r:born-in $2; $2 :r:is-a :e:city:City", "$1", query.Parameters{NofInstances: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Instances.Total)
	assert.Zero(t, s.Stats().Cache.Computations)
}

func TestExcerptStore(t *testing.T) {
	ctx := context.Background()
	bolt, err := excerpt.OpenBolt(filepath.Join(t.TempDir(), "excerpts.db"))
	require.NoError(t, err)
	docs := make([]excerpt.Document, 0, len(testutil.WikiSentences))
	for _, sen := range testutil.WikiSentences {
		docs = append(docs, sen.Document())
	}
	require.NoError(t, bolt.PutDocuments(ctx, docs))

	s := openWiki(t, semsearch.WithExcerptStore(bolt))
	res, err := s.Search(ctx, "$1 :r:occurs-with married $2; $2 :r:equals :e:mileva-maric", "$1",
		query.Parameters{NofHitGroups: 1})
	require.NoError(t, err)

	require.Len(t, res.HitGroups.Items, 1)
	hits := res.HitGroups.Items[0].Hits
	require.NotEmpty(t, hits)
	assert.Equal(t, "Mileva Maric", hits[0].Excerpt.Title)
}

func TestEncode(t *testing.T) {
	ctx := context.Background()
	s := openWiki(t, semsearch.WithCodec(codec.JSON))

	q, err := query.New("", "", query.Parameters{Prefix: "ci", NofClasses: 5})
	require.NoError(t, err)
	res, err := s.Execute(ctx, q)
	require.NoError(t, err)

	data, err := s.Encode(q, res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"classes":{"total":1,"first":0,"items":[{"name":":e:city:City","score":3}]}`)
}

func TestOpenEmptyStore(t *testing.T) {
	_, err := semsearch.Open(context.Background(), blobstore.NewMemoryStore(), wikiFiles)
	assert.ErrorIs(t, err, semsearch.ErrNotFound)
}
