package model

import (
	"fmt"
	"math"
)

// Id identifies a word, a context or an ontology element.
//
// The most significant bit tags ontology elements. Word ids and context ids
// share the untagged space, so every ontology id compares greater than every
// word id.
type Id uint64

// Kind selects an id space.
type Kind uint8

const (
	KindWord Kind = iota
	KindContext
	KindOntology
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindContext:
		return "context"
	case KindOntology:
		return "ontology"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

const ontologyTag Id = 1 << 63

// FirstId returns the smallest id of the given kind.
func FirstId(k Kind) Id {
	if k == KindOntology {
		return ontologyTag
	}
	return 0
}

// PureValue strips the kind tag so the id can index a vocabulary.
func PureValue(id Id) uint64 {
	return uint64(id &^ ontologyTag)
}

// IsOntology reports whether id carries the ontology tag.
func IsOntology(id Id) bool {
	return id&ontologyTag != 0
}

// IsIdOfType reports whether id belongs to the space of kind k.
func IsIdOfType(id Id, k Kind) bool {
	if k == KindOntology {
		return IsOntology(id)
	}
	return !IsOntology(id)
}

// MaxId is never produced by the index builder.
const MaxId Id = math.MaxUint64

// Score is the raw per-posting score stored in the index.
type Score uint8

// AggregatedScore is the result of combining scores.
type AggregatedScore uint32

// Position is the word position of a posting inside its context.
type Position uint32

// Posting is one occurrence of a word or entity in a context.
type Posting struct {
	Id        Id
	ContextId Id
	Score     Score
	Position  Position
}

// PostingList is ordered by context id (and by position inside a context).
type PostingList []Posting

// EntityWithScore pairs an id with an aggregated score.
type EntityWithScore struct {
	Id    Id
	Score AggregatedScore
}

func (e EntityWithScore) String() string {
	return fmt.Sprintf("(%d, %d)", e.Id, e.Score)
}

// EntityList is well-formed when ids are strictly increasing.
type EntityList []EntityWithScore

// IsWellFormed reports whether ids are strictly increasing.
func (l EntityList) IsWellFormed() bool {
	for i := 1; i < len(l); i++ {
		if l[i-1].Id >= l[i].Id {
			return false
		}
	}
	return true
}

// Ids returns the ids of the list in order.
func (l EntityList) Ids() []Id {
	ids := make([]Id, len(l))
	for i, e := range l {
		ids[i] = e.Id
	}
	return ids
}

// RelationEntry is a single (lhs, rhs) fact of a relation.
type RelationEntry struct {
	Lhs Id
	Rhs Id
}

// Relation is ordered by lhs, then rhs.
type Relation []RelationEntry

// IdRange is an inclusive range of ids.
type IdRange struct {
	First Id
	Last  Id
}

// Contains reports whether id lies in the range.
func (r IdRange) Contains(id Id) bool {
	return id >= r.First && id <= r.Last
}

func (r IdRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.First, r.Last)
}
