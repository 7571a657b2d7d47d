package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semsearch/model"
	"github.com/hupe1980/semsearch/testutil"
)

var e0 = model.FirstId(model.KindOntology)

func posting(id, ctx model.Id, score model.Score, pos model.Position) model.Posting {
	return model.Posting{Id: id, ContextId: ctx, Score: score, Position: pos}
}

func isSubsequence(sub, list model.PostingList) bool {
	i := 0
	for _, p := range list {
		if i < len(sub) && sub[i] == p {
			i++
		}
	}
	return i == len(sub)
}

func TestFilterByWordIdScenario(t *testing.T) {
	in := model.PostingList{
		posting(0, 0, 1, 0),
		posting(1, 0, 1, 1),
		posting(e0+3, 0, 1, 2),
		posting(0, 1, 1, 0),
	}
	want := model.PostingList{in[0], in[2], in[3]}
	assert.Equal(t, want, FilterByWordId(in, 0))
	assert.Len(t, in, 4)
}

func TestFilterByWordRange(t *testing.T) {
	in := model.PostingList{
		posting(e0+1, 0, 1, 0), // before any word, dropped
		posting(2, 0, 1, 1),
		posting(e0+2, 0, 1, 2),
		posting(5, 1, 1, 0),
		posting(e0+3, 1, 1, 1),
		posting(3, 2, 1, 0),
		posting(e0+4, 2, 1, 1),
	}
	got := FilterByWordRange(in, 2, 3)
	assert.Equal(t, model.PostingList{in[1], in[2], in[5], in[6]}, got)

	assert.Equal(t, FilterByWordId(in, 5), FilterByWordRange(in, 5, 5))
	assert.Empty(t, FilterByWordRange(in, 4, 2))
	assert.Empty(t, FilterByWordRange(nil, 0, 9))
}

func TestFilterByWordIdProperties(t *testing.T) {
	r := testutil.NewRNG(1)
	for range 50 {
		list := r.Postings(60)
		w := model.Id(r.IntN(20))

		once := FilterByWordId(list, w)
		assert.True(t, isSubsequence(once, list))
		assert.Equal(t, once, FilterByWordId(once, w))
	}
}

func TestAggregate(t *testing.T) {
	in := model.PostingList{
		posting(e0+2, 0, 3, 0),
		posting(1, 0, 5, 1),
		posting(e0+1, 1, 2, 0),
		posting(e0+2, 1, 4, 1),
		posting(1, 2, 1, 0),
	}

	assert.Equal(t, model.EntityList{{Id: e0 + 1, Score: 2}, {Id: e0 + 2, Score: 7}},
		Aggregate(in, model.KindOntology, Sum))
	assert.Equal(t, model.EntityList{{Id: e0 + 1, Score: 1}, {Id: e0 + 2, Score: 2}},
		Aggregate(in, model.KindOntology, PlusOne))
	assert.Equal(t, model.EntityList{{Id: 1, Score: 2}},
		Aggregate(in, model.KindWord, PlusOne))
}

func TestAggregateConservesScore(t *testing.T) {
	r := testutil.NewRNG(3)
	for range 50 {
		list := r.Postings(80)
		var want model.AggregatedScore
		for _, p := range list {
			if model.IsOntology(p.Id) {
				want += model.AggregatedScore(p.Score)
			}
		}

		shuffled := append(model.PostingList(nil), list...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		for _, l := range []model.PostingList{list, shuffled} {
			agg := Aggregate(l, model.KindOntology, Sum)
			require.True(t, agg.IsWellFormed())
			var got model.AggregatedScore
			for _, e := range agg {
				got += e.Score
			}
			assert.Equal(t, want, got)
		}
		assert.Equal(t, Aggregate(list, model.KindOntology, Sum), Aggregate(shuffled, model.KindOntology, Sum))
	}
}

func TestIntersectEntityLists(t *testing.T) {
	a := model.EntityList{{Id: 1, Score: 1}, {Id: 3, Score: 2}, {Id: 5, Score: 3}}
	b := model.EntityList{{Id: 3, Score: 10}, {Id: 4, Score: 1}, {Id: 5, Score: 20}, {Id: 9, Score: 1}}
	assert.Equal(t, model.EntityList{{Id: 3, Score: 12}, {Id: 5, Score: 23}}, IntersectEntityLists(a, b, Sum))
	assert.Empty(t, IntersectEntityLists(a, nil, Sum))
}

func TestIntersectEntityListsProperties(t *testing.T) {
	r := testutil.NewRNG(5)
	for range 50 {
		a := r.EntityList(30)
		b := r.EntityList(30)
		out := IntersectEntityLists(a, b, Sum)

		assert.True(t, out.IsWellFormed())
		sa, sb := NewEntitySet(a), NewEntitySet(b)
		for _, e := range out {
			assert.True(t, sa.Contains(e.Id))
			assert.True(t, sb.Contains(e.Id))
		}
	}
}

func TestJoinOnContext(t *testing.T) {
	a := model.PostingList{
		posting(1, 0, 1, 0),
		posting(4, 1, 1, 0),
		posting(e0, 1, 1, 1),
		posting(4, 3, 1, 0),
	}
	b := model.PostingList{
		posting(2, 1, 1, 2),
		posting(7, 1, 1, 3),
		posting(2, 2, 1, 0),
		posting(2, 3, 1, 5),
	}
	want := model.PostingList{
		b[0], a[1], b[1], a[2],
		b[3], a[3],
	}
	assert.Equal(t, want, JoinOnContext(a, b))
	assert.Empty(t, JoinOnContext(a, nil))
	assert.Empty(t, JoinOnContext(nil, b))
}

func TestJoinOnContextProperties(t *testing.T) {
	contexts := func(l model.PostingList) map[model.Id]bool {
		m := map[model.Id]bool{}
		for _, p := range l {
			m[p.ContextId] = true
		}
		return m
	}

	r := testutil.NewRNG(7)
	for range 50 {
		a := r.Postings(40)
		b := r.Postings(40)
		ca, cb := contexts(a), contexts(b)

		want := map[model.Id]bool{}
		for c := range ca {
			if cb[c] {
				want[c] = true
			}
		}
		out := JoinOnContext(a, b)
		assert.Equal(t, want, contexts(out))

		wantLen := 0
		for _, p := range a {
			if want[p.ContextId] {
				wantLen++
			}
		}
		for _, p := range b {
			if want[p.ContextId] {
				wantLen++
			}
		}
		assert.Len(t, out, wantLen)
	}
}

func TestFilterByEntitySet(t *testing.T) {
	in := model.PostingList{
		posting(1, 0, 1, 0),
		posting(e0+1, 0, 1, 1),
		posting(e0+2, 0, 1, 2),
		posting(2, 1, 1, 0),
		posting(e0+3, 1, 1, 1),
	}
	entities := model.EntityList{{Id: e0 + 2}, {Id: e0 + 3}}

	assert.Equal(t, model.PostingList{in[2], in[4]}, FilterByEntitySet(in, entities))
	assert.Equal(t, model.PostingList{in[0], in[2], in[3], in[4]}, FilterByEntitySetKeepWordPostings(in, entities))
	assert.Empty(t, FilterByEntitySetKeepWordPostings(in, nil))

	// Words after the entity in the same context are kept as well.
	after := model.PostingList{
		posting(e0+2, 4, 1, 0),
		posting(5, 4, 1, 1),
		posting(e0+1, 4, 1, 2),
		posting(6, 5, 1, 0),
	}
	assert.Equal(t, model.PostingList{after[0], after[1]}, FilterByEntitySetKeepWordPostings(after, entities))
}

func TestFilterContextsByEntitySet(t *testing.T) {
	in := model.PostingList{
		posting(1, 0, 1, 0),
		posting(e0+1, 0, 1, 1),
		posting(e0+2, 0, 1, 2),
		posting(2, 1, 1, 0),
		posting(e0+1, 1, 1, 1),
		posting(3, 2, 1, 0),
		posting(e0+3, 2, 1, 1),
	}
	entities := model.EntityList{{Id: e0 + 2}, {Id: e0 + 3}}

	assert.Equal(t, model.PostingList{in[0], in[1], in[2], in[5], in[6]}, FilterContextsByEntitySet(in, entities))
	assert.Empty(t, FilterContextsByEntitySet(in, nil))
}

func TestFilterByEntityId(t *testing.T) {
	in := model.PostingList{
		posting(1, 0, 1, 0),
		posting(e0+1, 0, 1, 1),
		posting(e0+5, 0, 1, 2),
		posting(2, 1, 1, 0),
		posting(e0+5, 1, 1, 1),
		posting(3, 2, 1, 0),
		posting(e0+1, 2, 1, 1),
	}
	assert.Equal(t, model.PostingList{in[0], in[1], in[5], in[6]}, FilterByEntityId(in, e0+1))
}

func TestFilterByEntityIdWithExtra(t *testing.T) {
	in := model.PostingList{
		// Extra entity before the anchor.
		posting(1, 0, 1, 0),
		posting(e0+2, 0, 1, 1),
		posting(e0+4, 0, 1, 2),
		posting(e0+9, 0, 1, 3),
		// Extra entity after the anchor.
		posting(1, 1, 1, 0),
		posting(e0+4, 1, 1, 1),
		posting(e0+7, 1, 1, 2),
		// Extra entity without the anchor.
		posting(1, 2, 1, 0),
		posting(e0+2, 2, 1, 1),
	}
	extra := EntitySetOf(e0+2, e0+7)

	want := model.PostingList{in[0], in[1], in[2], in[4], in[5], in[6]}
	assert.Equal(t, want, FilterByEntityIdWithExtra(in, e0+4, extra))
	assert.Equal(t, FilterByEntityId(in, e0+4), FilterByEntityIdWithExtra(in, e0+4, nil))
}

func TestFilterByIdRange(t *testing.T) {
	l := model.EntityList{{Id: 1}, {Id: 3}, {Id: 5}, {Id: 7}}
	assert.Equal(t, model.EntityList{{Id: 3}, {Id: 5}}, FilterByIdRange(l, model.IdRange{First: 2, Last: 6}))
	assert.Equal(t, l, FilterByIdRange(l, model.IdRange{First: 0, Last: 100}))
	assert.Empty(t, FilterByIdRange(l, model.IdRange{First: 8, Last: 9}))
	assert.Empty(t, FilterByIdRange(l, model.IdRange{First: 4, Last: 4}))
}

func TestRelationRhsBySingleLhs(t *testing.T) {
	rel := model.Relation{{Lhs: 1, Rhs: 5}, {Lhs: 2, Rhs: 3}, {Lhs: 2, Rhs: 4}, {Lhs: 3, Rhs: 1}}
	assert.Equal(t, model.EntityList{{Id: 3, Score: 1}, {Id: 4, Score: 1}},
		RelationRhsBySingleLhs(rel, 2, model.EntityFromRelationScore))
	assert.Empty(t, RelationRhsBySingleLhs(rel, 9, 1))
}

func TestRelationRhsByEntityListLhs(t *testing.T) {
	rel := model.Relation{
		{Lhs: 1, Rhs: 7},
		{Lhs: 2, Rhs: 5},
		{Lhs: 2, Rhs: 7},
		{Lhs: 4, Rhs: 5},
		{Lhs: 6, Rhs: 8},
	}
	lhs := model.EntityList{{Id: 2, Score: 3}, {Id: 4, Score: 10}, {Id: 6, Score: 1}, {Id: 9, Score: 1}}

	got, rows := RelationRhsByEntityListLhs(rel, lhs, Sum)
	assert.Equal(t, model.EntityList{{Id: 5, Score: 13}, {Id: 7, Score: 3}, {Id: 8, Score: 1}}, got)
	assert.Equal(t, model.Relation{{Lhs: 2, Rhs: 5}, {Lhs: 4, Rhs: 5}, {Lhs: 2, Rhs: 7}, {Lhs: 6, Rhs: 8}}, rows)

	counted, _ := RelationRhsByEntityListLhs(rel, lhs, PlusOne)
	assert.Equal(t, model.EntityList{{Id: 5, Score: 2}, {Id: 7, Score: 1}, {Id: 8, Score: 1}}, counted)

	l, ok := LhsForRhs(rows, 7)
	assert.True(t, ok)
	assert.Equal(t, model.Id(2), l)
	_, ok = LhsForRhs(rows, 6)
	assert.False(t, ok)

	empty, emptyRows := RelationRhsByEntityListLhs(rel, nil, Sum)
	assert.Empty(t, empty)
	assert.Empty(t, emptyRows)
}

func TestTopKEntities(t *testing.T) {
	in := model.EntityList{{Id: 0, Score: 1}, {Id: 1, Score: 3}, {Id: 3, Score: 4}, {Id: 4, Score: 0}}
	assert.Equal(t, model.EntityList{{Id: 3, Score: 4}, {Id: 1, Score: 3}, {Id: 0, Score: 1}}, TopKEntities(in, 3))
	assert.Equal(t, model.EntityList{{Id: 0, Score: 1}, {Id: 1, Score: 3}, {Id: 3, Score: 4}, {Id: 4, Score: 0}}, in)

	ties := model.EntityList{{Id: 9, Score: 2}, {Id: 2, Score: 2}, {Id: 5, Score: 2}}
	assert.Equal(t, model.EntityList{{Id: 2, Score: 2}, {Id: 5, Score: 2}}, TopKEntities(ties, 2))
	assert.Empty(t, TopKEntities(in, 0))
	assert.Len(t, TopKEntities(in, 10), 4)
}

func TestTopKContexts(t *testing.T) {
	in := model.PostingList{
		posting(1, 0, 1, 4),
		posting(2, 0, 1, 2),
		posting(1, 3, 2, 7),
		posting(e0+1, 3, 3, 7),
		posting(e0+2, 3, 1, 1),
		posting(e0+1, 3, 1, 9),
		posting(1, 5, 2, 0),
	}

	hits := TopKContexts(in, 2)
	require.Len(t, hits, 2)
	assert.Equal(t, model.Id(3), hits[0].ContextId)
	assert.Equal(t, model.AggregatedScore(7), hits[0].Score)
	assert.Equal(t, []model.Position{1, 7, 9}, hits[0].Excerpt.Highlights())
	assert.Nil(t, hits[0].MatchedEntities)
	// Tie between context 0 and 5 goes to the smaller id.
	assert.Equal(t, model.Id(0), hits[1].ContextId)
	assert.Equal(t, []model.Position{2, 4}, hits[1].Excerpt.Highlights())

	withEntities := TopKContextsWithEntities(in, 1)
	require.Len(t, withEntities, 1)
	assert.Equal(t, []model.Id{e0 + 1, e0 + 2}, withEntities[0].MatchedEntities)

	assert.Empty(t, TopKContexts(nil, 3))
}

func TestAnyMatchingEntity(t *testing.T) {
	l := model.EntityList{{Id: 2}, {Id: 4}, {Id: 6}}
	id, err := AnyMatchingEntity(l, []model.Id{9, 6, 4})
	require.NoError(t, err)
	assert.Equal(t, model.Id(4), id)

	_, err = AnyMatchingEntity(l, []model.Id{1})
	assert.ErrorIs(t, err, ErrNoMatchingEntity)
}

func TestCheckWellFormed(t *testing.T) {
	assert.NoError(t, CheckWellFormed(model.EntityList{{Id: 1}, {Id: 2}}))
	assert.ErrorIs(t, CheckWellFormed(model.EntityList{{Id: 2}, {Id: 2}}), ErrNotWellFormed)
}

func TestEntitySet(t *testing.T) {
	s := NewEntitySet(model.EntityList{{Id: e0 + 3}, {Id: e0 + 1}})
	s.Add(e0 + 2)
	other := EntitySetOf(e0+9, e0+1)
	s.Union(other)

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []model.Id{e0 + 1, e0 + 2, e0 + 3, e0 + 9}, s.Ids())
	assert.True(t, s.Contains(e0+9))
	assert.False(t, s.Contains(e0+4))

	var ids []model.Id
	for id := range s.All() {
		ids = append(ids, id)
	}
	assert.Equal(t, s.Ids(), ids)

	var nilSet *EntitySet
	assert.True(t, nilSet.IsEmpty())
	assert.False(t, nilSet.Contains(1))
	assert.Equal(t, 0, nilSet.Len())
}
