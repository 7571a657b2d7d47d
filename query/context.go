package query

import (
	"context"
	"log/slog"

	"github.com/hupe1980/semsearch/engine"
	"github.com/hupe1980/semsearch/index"
	"github.com/hupe1980/semsearch/model"
)

// Index is the read access evaluation needs. *index.Ready implements it.
type Index interface {
	FulltextIdRange(wordOrPrefix string) (model.IdRange, bool)
	FulltextWord(id model.Id) (string, bool)
	OntologyId(word string) (model.Id, bool)
	OntologyIdRange(wordOrPrefix string) (model.IdRange, bool)
	OntologyWord(id model.Id) (string, bool)

	BlockInfoByWordRange(r model.IdRange) (index.BlockMeta, error)
	ReadBlock(ctx context.Context, meta index.BlockMeta) (model.PostingList, error)
	RelationMetaData(relId model.Id) (*index.RelationMeta, error)
	ReadRelationBlock(ctx context.Context, block index.RelationBlockMeta) (model.Relation, error)
	ReadFullRelation(ctx context.Context, meta *index.RelationMeta) (model.Relation, error)

	HasRelations() model.Relation
	AvailableClasses() model.EntityList
	RawExcerpt(ctx context.Context, contextId model.Id) (string, error)
}

var _ Index = (*index.Ready)(nil)

// ExecutionContext carries what evaluation runs against. It is passed to
// every evaluation call and never stored in the query tree, so one tree can
// be evaluated against different indexes and caches.
type ExecutionContext struct {
	Index Index
	// Cache memoizes subtree results. Nil disables memoization.
	Cache *ResultCache
	// Logger may be nil.
	Logger *slog.Logger
}

var discard = slog.New(slog.DiscardHandler)

func (ec *ExecutionContext) log() *slog.Logger {
	if ec.Logger == nil {
		return discard
	}
	return ec.Logger
}

// Status is the state of an intermediate result.
type Status uint8

const (
	Pending Status = iota
	Finished
)

func (s Status) String() string {
	if s == Finished {
		return "finished"
	}
	return "pending"
}

// Result is the intermediate result of a subtree. Finished results are
// shared through the cache and must not be modified.
type Result struct {
	Entities model.EntityList
	// Postings are kept by occurs-with triples for hit construction.
	Postings model.PostingList
	// MatchingRelationEntries are kept by relation triples, sorted by rhs.
	MatchingRelationEntries model.Relation
	// SubtreeEntities holds the entities of all subtrees of an occurs-with
	// triple.
	SubtreeEntities *engine.EntitySet
	Status          Status
}

func newResult() *Result {
	return &Result{Entities: model.EntityList{}, Status: Pending}
}

func finished(r *Result) *Result {
	r.Status = Finished
	return r
}
