package query

import (
	"fmt"
	"strings"

	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/model"
)

// Box is one paginated section of a query result.
type Box[T any] struct {
	// Total is the number of items before pagination.
	Total int
	// First is the offset of Items[0].
	First int
	Items []T
}

func (b Box[T]) String() string {
	items := make([]string, len(b.Items))
	for i, it := range b.Items {
		items[i] = fmt.Sprint(it)
	}
	return fmt.Sprintf("%d of %d from %d: [%s]", len(b.Items), b.Total, b.First, strings.Join(items, ", "))
}

// ItemWithScore is a named, scored result item.
type ItemWithScore struct {
	Item  string
	Score model.AggregatedScore
}

func (i ItemWithScore) String() string {
	return fmt.Sprintf("(%s, %d)", i.Item, i.Score)
}

// RelationBoxEntry is a relation the result entities take part in.
type RelationBoxEntry struct {
	// Relation is the relation name without the reversed marker.
	Relation string
	LhsType  string
	RhsType  string
	// Reversed is true if the result entities are the objects of the
	// relation.
	Reversed bool
	Score    model.AggregatedScore
}

func (e RelationBoxEntry) String() string {
	dir := ""
	if e.Reversed {
		dir = " reversed"
	}
	return fmt.Sprintf("(%s%s [%s -> %s], %d)", e.Relation, dir, e.LhsType, e.RhsType, e.Score)
}

// HitGroup is a result entity with its evidence.
type HitGroup struct {
	Entity string
	Score  model.AggregatedScore
	Hits   []excerpt.Hit
}

func (g HitGroup) String() string {
	hits := make([]string, len(g.Hits))
	for i, h := range g.Hits {
		hits[i] = h.String()
	}
	return fmt.Sprintf("(GROUP: %s(%d): [%s])", g.Entity, g.Score, strings.Join(hits, ", "))
}

// QueryResult holds the boxes requested by the query parameters. Boxes
// that were not requested are empty.
type QueryResult struct {
	Words     Box[ItemWithScore]
	Classes   Box[ItemWithScore]
	Instances Box[ItemWithScore]
	Relations Box[RelationBoxEntry]
	HitGroups Box[HitGroup]
}

func (r *QueryResult) String() string {
	return fmt.Sprintf("words: %v\nclasses: %v\ninstances: %v\nrelations: %v\nhits: %v",
		r.Words, r.Classes, r.Instances, r.Relations, r.HitGroups)
}

// page returns the items [first, first+nof) of a list already truncated to
// first+nof.
func page[T any](items []T, first int) []T {
	if first >= len(items) {
		return []T{}
	}
	return items[first:]
}
