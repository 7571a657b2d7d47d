package engine

import (
	"slices"
	"sort"

	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/model"
)

// TopKContexts groups postings sorted by context into hits and returns the
// k best. A hit's score is the sum of its postings' scores and its
// excerpt highlights are the distinct positions of its postings.
func TopKContexts(postings model.PostingList, k int) []excerpt.Hit {
	return topKContexts(postings, k, false)
}

// TopKContextsWithEntities is TopKContexts that also records the entities
// matched in each context.
func TopKContextsWithEntities(postings model.PostingList, k int) []excerpt.Hit {
	return topKContexts(postings, k, true)
}

func topKContexts(postings model.PostingList, k int, withEntities bool) []excerpt.Hit {
	hits := []excerpt.Hit{}
	for start := 0; start < len(postings); {
		end := contextEnd(postings, start)

		var (
			score     model.AggregatedScore
			positions = make([]model.Position, 0, end-start)
			entities  []model.Id
		)
		for _, p := range postings[start:end] {
			score = Sum(score, model.AggregatedScore(p.Score))
			positions = append(positions, p.Position)
			if withEntities && model.IsOntology(p.Id) && !slices.Contains(entities, p.Id) {
				entities = append(entities, p.Id)
			}
		}
		slices.Sort(positions)

		e := &excerpt.Excerpt{}
		e.SetHighlights(slices.Compact(positions))
		hits = append(hits, excerpt.Hit{
			ContextId:       postings[start].ContextId,
			Excerpt:         e,
			Score:           score,
			MatchedEntities: entities,
		})
		start = end
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ContextId < hits[j].ContextId
	})
	return truncate(hits, k)
}

// TopKEntities returns the k entities with the highest scores, ties broken
// by ascending id.
func TopKEntities(list model.EntityList, k int) model.EntityList {
	out := append(model.EntityList{}, list...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Id < out[j].Id
	})
	return truncate(out, k)
}

// AnyMatchingEntity returns the first entity of list that is one of ids.
func AnyMatchingEntity(list model.EntityList, ids []model.Id) (model.Id, error) {
	set := EntitySetOf(ids...)
	for _, e := range list {
		if set.Contains(e.Id) {
			return e.Id, nil
		}
	}
	return 0, ErrNoMatchingEntity
}

func truncate[S ~[]E, E any](s S, k int) S {
	if k < 0 {
		k = 0
	}
	if len(s) > k {
		return s[:k]
	}
	return s
}
