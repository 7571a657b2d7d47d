package index_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/index"
	"github.com/hupe1980/semsearch/indexbuilder"
	"github.com/hupe1980/semsearch/model"
	"github.com/hupe1980/semsearch/testutil"
	"github.com/hupe1980/semsearch/vocabulary"
)

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) OnBlockRead(kind model.Kind, entries int, d time.Duration, err error) {
	m.Called(kind, entries, d, err)
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewWikiStore(t)

	idx := index.New(store)
	_, err := idx.LoadResidentRelations(ctx)
	assert.ErrorIs(t, err, index.ErrNotRegistered)

	require.NoError(t, idx.RegisterOntology(ctx, testutil.WikiOntology))
	assert.ErrorIs(t, idx.RegisterOntology(ctx, testutil.WikiOntology), index.ErrAlreadyRegistered)

	ready, err := idx.LoadResidentRelations(ctx)
	require.NoError(t, err)
	assert.False(t, ready.HasFulltext())

	_, err = idx.LoadResidentRelations(ctx)
	assert.ErrorIs(t, err, index.ErrAlreadyLoaded)
	assert.ErrorIs(t, idx.RegisterFulltext(ctx, testutil.WikiFulltext), index.ErrAlreadyRegistered)

	require.NoError(t, ready.Close())
	require.NoError(t, idx.Close())
	_, err = idx.LoadResidentRelations(ctx)
	assert.ErrorIs(t, err, index.ErrClosed)
}

func TestRegisterMissingFiles(t *testing.T) {
	ctx := context.Background()
	idx := index.New(blobstore.NewMemoryStore())
	defer idx.Close()

	assert.ErrorIs(t, idx.RegisterFulltext(ctx, "missing"), blobstore.ErrNotFound)
	assert.ErrorIs(t, idx.RegisterOntology(ctx, "missing"), blobstore.ErrNotFound)
}

func TestLookups(t *testing.T) {
	ready := testutil.NewWiki(t)

	id, ok := ready.OntologyId(testutil.Einstein)
	require.True(t, ok)
	assert.True(t, model.IsOntology(id))
	word, ok := ready.OntologyWord(id)
	require.True(t, ok)
	assert.Equal(t, testutil.Einstein, word)

	_, ok = ready.OntologyId(":e:nobody")
	assert.False(t, ok)

	r, ok := ready.OntologyIdRange(":e:*")
	require.True(t, ok)
	assert.True(t, r.Contains(id))

	r, ok = ready.FulltextIdRange("born")
	require.True(t, ok)
	assert.Equal(t, r.First, r.Last)
	word, ok = ready.FulltextWord(r.First)
	require.True(t, ok)
	assert.Equal(t, "born", word)

	r, ok = ready.FulltextIdRange("m*")
	require.True(t, ok)
	var words []string
	for id := r.First; id <= r.Last; id++ {
		w, _ := ready.FulltextWord(id)
		words = append(words, w)
	}
	assert.Equal(t, []string{"maric", "marie", "married", "met", "mileva"}, words)

	_, ok = ready.FulltextWord(id)
	assert.False(t, ok, "ontology id in fulltext vocabulary")
}

func TestReadBlock(t *testing.T) {
	ctx := context.Background()
	obs := &mockObserver{}
	obs.On("OnBlockRead", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
	ready := testutil.NewWiki(t, index.WithMetricsObserver(obs))

	r, ok := ready.FulltextIdRange("born")
	require.True(t, ok)
	meta, err := ready.BlockInfoByWordRange(r)
	require.NoError(t, err)
	postings, err := ready.ReadBlock(ctx, meta)
	require.NoError(t, err)
	assert.Len(t, postings, int(meta.Count))

	for i := 1; i < len(postings); i++ {
		assert.LessOrEqual(t, postings[i-1].ContextId, postings[i].ContextId)
	}
	obs.AssertCalled(t, "OnBlockRead", model.KindWord, len(postings), mock.Anything, nil)

	_, err = ready.BlockInfoByWordRange(model.IdRange{First: r.Last + 1000, Last: r.Last + 1000})
	assert.ErrorIs(t, err, index.ErrBlockNotFound)
}

func TestRelations(t *testing.T) {
	ctx := context.Background()
	ready := testutil.NewWiki(t)
	id := func(w string) model.Id {
		v, ok := ready.OntologyId(w)
		require.True(t, ok, w)
		return v
	}

	meta, err := ready.RelationMetaData(id(model.ReverseRelation(model.IsARelation)))
	require.NoError(t, err)
	block, ok := meta.BlockInfo(id(testutil.City))
	require.True(t, ok)
	rows, err := ready.ReadRelationBlock(ctx, block)
	require.NoError(t, err)
	assert.Equal(t, model.Relation{
		{Lhs: id(testutil.City), Rhs: id(testutil.Paris)},
		{Lhs: id(testutil.City), Rhs: id(testutil.Ulm)},
		{Lhs: id(testutil.City), Rhs: id(testutil.Warsaw)},
	}, rows)

	_, err = ready.RelationMetaData(id(testutil.Einstein))
	assert.ErrorIs(t, err, index.ErrRelationNotFound)

	assert.Contains(t, ready.RelationIds(), id(testutil.BornIn))

	assert.Equal(t, model.EntityList{
		{Id: id(testutil.City), Score: 3},
		{Id: id(testutil.Person), Score: 3},
		{Id: id(testutil.Scientist), Score: 2},
	}, ready.AvailableClasses())

	var einsteinRelations []model.Id
	for _, row := range ready.HasRelations() {
		if row.Lhs == id(testutil.Einstein) {
			einsteinRelations = append(einsteinRelations, row.Rhs)
		}
	}
	assert.Equal(t, []model.Id{id(testutil.BornIn), id(testutil.MarriedTo)}, einsteinRelations)
}

func TestRawExcerpt(t *testing.T) {
	ctx := context.Background()
	ready := testutil.NewWiki(t)

	raw, err := ready.RawExcerpt(ctx, 3)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "3\thttp://en.wikipedia.org/wiki/Albert_Einstein\tAlbert Einstein\t"), raw)
	assert.Equal(t, "Einstein was<hl> born</hl> in Ulm.", excerpt.Parse(raw, 3).Text())

	_, err = ready.RawExcerpt(ctx, 99)
	assert.ErrorIs(t, err, excerpt.ErrNotFound)
}

func TestNoExcerptStore(t *testing.T) {
	ctx := context.Background()
	idx := index.New(testutil.NewWikiStore(t))
	require.NoError(t, idx.RegisterOntology(ctx, testutil.WikiOntology))
	ready, err := idx.LoadResidentRelations(ctx)
	require.NoError(t, err)
	defer ready.Close()

	_, err = ready.RawExcerpt(ctx, 1)
	assert.ErrorIs(t, err, index.ErrNoExcerptStore)
}

func TestCorruptIndex(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	v, err := vocabulary.New(model.KindOntology, []string{":e:a"})
	require.NoError(t, err)
	require.NoError(t, vocabulary.Save(ctx, store, "bad", v, false))
	require.NoError(t, store.Put(ctx, "bad"+index.Extension, []byte{1, 2, 3}))

	idx := index.New(store)
	defer idx.Close()
	err = idx.RegisterOntology(ctx, "bad")
	require.ErrorIs(t, err, index.ErrCorruptIndex)

	var ce *index.CorruptionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "bad.index", ce.File)
}

func TestMissingResidentRelations(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	ob := indexbuilder.NewOntology()
	require.NoError(t, ob.Add(testutil.BornIn, testutil.Einstein, testutil.Ulm))
	_, _, err := ob.Build(ctx, store, "tiny")
	require.NoError(t, err)

	idx := index.New(store)
	require.NoError(t, idx.RegisterOntology(ctx, "tiny"))
	ready, err := idx.LoadResidentRelations(ctx)
	require.NoError(t, err)
	defer ready.Close()

	assert.Empty(t, ready.AvailableClasses())
	assert.Len(t, ready.HasRelations(), 2)
}

func TestStats(t *testing.T) {
	ready := testutil.NewWiki(t)
	s := ready.Stats()
	assert.Equal(t, 1, s.FulltextBlocks)
	assert.Equal(t, 3, s.Classes)
	assert.Equal(t, 8, s.Relations)
	assert.Positive(t, s.FulltextPostings)
	assert.Positive(t, s.FulltextWords)
}
