package engine

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/semsearch/model"
)

// EntitySet is a compressed set of ids.
type EntitySet struct {
	rb *roaring64.Bitmap
}

// NewEntitySet creates a set holding the ids of the given lists.
func NewEntitySet(lists ...model.EntityList) *EntitySet {
	s := &EntitySet{rb: roaring64.New()}
	for _, l := range lists {
		s.AddList(l)
	}
	return s
}

// EntitySetOf creates a set of ids.
func EntitySetOf(ids ...model.Id) *EntitySet {
	s := &EntitySet{rb: roaring64.New()}
	for _, id := range ids {
		s.rb.Add(uint64(id))
	}
	return s
}

// Add adds an id.
func (s *EntitySet) Add(id model.Id) {
	s.rb.Add(uint64(id))
}

// AddList adds all ids of an entity list.
func (s *EntitySet) AddList(l model.EntityList) {
	for _, e := range l {
		s.rb.Add(uint64(e.Id))
	}
}

// Contains reports whether id is in the set. A nil set is empty.
func (s *EntitySet) Contains(id model.Id) bool {
	return s != nil && s.rb.Contains(uint64(id))
}

// Len returns the number of ids.
func (s *EntitySet) Len() int {
	if s == nil {
		return 0
	}
	return int(s.rb.GetCardinality()) //nolint:gosec
}

// IsEmpty reports whether the set has no ids.
func (s *EntitySet) IsEmpty() bool {
	return s == nil || s.rb.IsEmpty()
}

// Union adds all ids of other.
func (s *EntitySet) Union(other *EntitySet) {
	if other != nil {
		s.rb.Or(other.rb)
	}
}

// Clone returns a deep copy.
func (s *EntitySet) Clone() *EntitySet {
	return &EntitySet{rb: s.rb.Clone()}
}

// All iterates the ids in ascending order.
func (s *EntitySet) All() iter.Seq[model.Id] {
	return func(yield func(model.Id) bool) {
		if s == nil {
			return
		}
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(model.Id(it.Next())) {
				return
			}
		}
	}
}

// Ids returns the ids in ascending order.
func (s *EntitySet) Ids() []model.Id {
	if s == nil {
		return nil
	}
	raw := s.rb.ToArray()
	ids := make([]model.Id, len(raw))
	for i, v := range raw {
		ids[i] = model.Id(v)
	}
	return ids
}
