package indexbuilder

import (
	"cmp"
	"slices"

	"github.com/huandu/skiplist"

	"github.com/hupe1980/semsearch/model"
)

// RelationFact is one row of a relation in id space.
type RelationFact struct {
	Relation model.Id
	Lhs      model.Id
	Rhs      model.Id
}

func compareFacts(a, b RelationFact) int {
	if c := cmp.Compare(a.Relation, b.Relation); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Lhs, b.Lhs); c != 0 {
		return c
	}
	return cmp.Compare(a.Rhs, b.Rhs)
}

// factSet is an ordered set of facts, sorted by relation, lhs and rhs.
type factSet struct {
	list *skiplist.SkipList
}

func newFactSet() *factSet {
	return &factSet{list: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs interface{}) int {
		return compareFacts(lhs.(RelationFact), rhs.(RelationFact))
	}))}
}

// Add inserts f and reports whether it was new.
func (s *factSet) Add(f RelationFact) bool {
	if s.list.Get(f) != nil {
		return false
	}
	s.list.Set(f, struct{}{})
	return true
}

func (s *factSet) Len() int { return s.list.Len() }

// Facts returns the facts in order.
func (s *factSet) Facts() []RelationFact {
	out := make([]RelationFact, 0, s.list.Len())
	for e := s.list.Front(); e != nil; e = e.Next() {
		out = append(out, e.Key().(RelationFact))
	}
	return out
}

// HasRelations derives, for every distinct lhs, one has-relations row per
// relation the lhs takes part in, and appends these rows to facts. The
// derived rows have relation hasRelationsId, the entity as lhs and the
// relation id as rhs; they are sorted by entity, then relation. Facts of
// the excluded relations do not contribute.
func HasRelations(facts []RelationFact, hasRelationsId model.Id, exclude ...model.Id) []RelationFact {
	derived := newFactSet()
	for _, f := range facts {
		if f.Relation == hasRelationsId || slices.Contains(exclude, f.Relation) {
			continue
		}
		derived.Add(RelationFact{Relation: hasRelationsId, Lhs: f.Lhs, Rhs: f.Relation})
	}
	return append(facts, derived.Facts()...)
}

// HasInstances derives the has-instances rows from the reversed is-a
// facts: one row per class with the number of its distinct instances as
// rhs. The rows are sorted by class and appended to facts.
func HasInstances(facts []RelationFact, isAReversedId, hasInstancesId model.Id) []RelationFact {
	members := newFactSet()
	for _, f := range facts {
		if f.Relation == isAReversedId {
			members.Add(f)
		}
	}

	var derived []RelationFact
	for _, f := range members.Facts() {
		if n := len(derived); n > 0 && derived[n-1].Lhs == f.Lhs {
			derived[n-1].Rhs++
			continue
		}
		derived = append(derived, RelationFact{Relation: hasInstancesId, Lhs: f.Lhs, Rhs: 1})
	}
	return append(facts, derived...)
}
