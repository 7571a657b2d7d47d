package engine

import (
	"sort"

	"github.com/hupe1980/semsearch/model"
)

// RelationRhsBySingleLhs returns the rhs entities of all rows with the given
// lhs, each with the given score.
func RelationRhsBySingleLhs(rel model.Relation, lhs model.Id, score model.AggregatedScore) model.EntityList {
	out := model.EntityList{}
	for i := lowerBoundLhs(rel, lhs); i < len(rel) && rel[i].Lhs == lhs; i++ {
		out = append(out, model.EntityWithScore{Id: rel[i].Rhs, Score: score})
	}
	return out
}

// RelationRhsByEntityListLhs joins a relation sorted by lhs with a
// well-formed entity list on lhs. Every matching row contributes its rhs
// with the score of its lhs; scores of the same rhs are folded with agg.
// It also returns the matching rows, sorted by rhs then lhs.
func RelationRhsByEntityListLhs(rel model.Relation, lhs model.EntityList, agg Aggregator) (model.EntityList, model.Relation) {
	if len(lhs) == 0 || len(rel) == 0 {
		return model.EntityList{}, model.Relation{}
	}

	var (
		candidates model.EntityList
		rows       model.Relation
	)
	i, j := lowerBoundLhs(rel, lhs[0].Id), 0
	for i < len(rel) && j < len(lhs) {
		switch {
		case rel[i].Lhs < lhs[j].Id:
			i++
		case lhs[j].Id < rel[i].Lhs:
			j++
		default:
			candidates = append(candidates, model.EntityWithScore{Id: rel[i].Rhs, Score: lhs[j].Score})
			rows = append(rows, rel[i])
			i++
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool { return candidates[a].Id < candidates[b].Id })
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Rhs != rows[b].Rhs {
			return rows[a].Rhs < rows[b].Rhs
		}
		return rows[a].Lhs < rows[b].Lhs
	})

	out := model.EntityList{}
	for k := 0; k < len(candidates); {
		id := candidates[k].Id
		var score model.AggregatedScore
		for ; k < len(candidates) && candidates[k].Id == id; k++ {
			score = agg(score, candidates[k].Score)
		}
		out = append(out, model.EntityWithScore{Id: id, Score: score})
	}
	if rows == nil {
		rows = model.Relation{}
	}
	return out, rows
}

// LhsForRhs returns the lhs of the first row with the given rhs in rows
// sorted by rhs.
func LhsForRhs(rows model.Relation, rhs model.Id) (model.Id, bool) {
	i := sort.Search(len(rows), func(i int) bool { return rows[i].Rhs >= rhs })
	if i == len(rows) || rows[i].Rhs != rhs {
		return 0, false
	}
	return rows[i].Lhs, true
}

func lowerBoundLhs(rel model.Relation, lhs model.Id) int {
	return sort.Search(len(rel), func(i int) bool { return rel[i].Lhs >= lhs })
}
