package engine

import (
	"sort"

	"github.com/hupe1980/semsearch/model"
)

// Aggregator combines a running score with the next raw score. It is always
// called as agg(running, next), starting from agg(0, first).
type Aggregator func(running, next model.AggregatedScore) model.AggregatedScore

// Sum accumulates scores.
func Sum(running, next model.AggregatedScore) model.AggregatedScore {
	return running + next
}

// PlusOne counts occurrences and ignores the raw score.
func PlusOne(running, _ model.AggregatedScore) model.AggregatedScore {
	return running + 1
}

// Aggregate groups the postings whose id is of the given kind by id and
// combines their scores. Context and position are dropped; the result is
// well-formed.
func Aggregate(list model.PostingList, kind model.Kind, agg Aggregator) model.EntityList {
	scores := make(map[model.Id]model.AggregatedScore)
	for _, p := range list {
		if !model.IsIdOfType(p.Id, kind) {
			continue
		}
		scores[p.Id] = agg(scores[p.Id], model.AggregatedScore(p.Score))
	}

	out := make(model.EntityList, 0, len(scores))
	for id, s := range scores {
		out = append(out, model.EntityWithScore{Id: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// IntersectEntityLists returns the ids present in both well-formed lists,
// with scores combined as agg(a, b).
func IntersectEntityLists(a, b model.EntityList, agg Aggregator) model.EntityList {
	var out model.EntityList
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Id < b[j].Id:
			i++
		case b[j].Id < a[i].Id:
			j++
		default:
			out = append(out, model.EntityWithScore{Id: a[i].Id, Score: agg(a[i].Score, b[j].Score)})
			i++
			j++
		}
	}
	return out
}

// FilterByIdRange returns the entries of a well-formed list inside r.
func FilterByIdRange(list model.EntityList, r model.IdRange) model.EntityList {
	lo := sort.Search(len(list), func(i int) bool { return list[i].Id >= r.First })
	hi := sort.Search(len(list), func(i int) bool { return list[i].Id > r.Last })
	if lo >= hi {
		return model.EntityList{}
	}
	return append(model.EntityList(nil), list[lo:hi]...)
}
