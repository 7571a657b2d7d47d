package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/internal/indexfile"
	"github.com/hupe1980/semsearch/model"
)

// Ready is the query view of an index with its resident relations loaded.
// It is immutable and safe for concurrent use.
type Ready struct {
	idx      *Index
	fulltext *fulltextFile
	ontology *ontologyFile
	excerpts excerpt.Store
	logger   *slog.Logger
	metrics  MetricsObserver

	hasRelations model.Relation
	classes      model.EntityList
}

// Logger returns the index logger, which may be nil.
func (r *Ready) Logger() *slog.Logger {
	return r.logger
}

// HasFulltext reports whether a fulltext index is registered.
func (r *Ready) HasFulltext() bool {
	return r.fulltext != nil
}

// FulltextIdRange resolves a word, or a prefix ending in '*', to its id range.
func (r *Ready) FulltextIdRange(wordOrPrefix string) (model.IdRange, bool) {
	if r.fulltext == nil {
		return model.IdRange{}, false
	}
	return r.fulltext.vocab.IdRange(wordOrPrefix)
}

// FulltextWord returns the word of a fulltext id.
func (r *Ready) FulltextWord(id model.Id) (string, bool) {
	if r.fulltext == nil {
		return "", false
	}
	return r.fulltext.vocab.Word(id)
}

// OntologyId resolves an ontology word.
func (r *Ready) OntologyId(word string) (model.Id, bool) {
	return r.ontology.vocab.Id(word)
}

// OntologyIdRange resolves an ontology word, or a prefix ending in '*', to
// its id range.
func (r *Ready) OntologyIdRange(wordOrPrefix string) (model.IdRange, bool) {
	return r.ontology.vocab.IdRange(wordOrPrefix)
}

// OntologyWord returns the word of an ontology id.
func (r *Ready) OntologyWord(id model.Id) (string, bool) {
	return r.ontology.vocab.Word(id)
}

// BlockInfoByWordRange returns the block holding all postings of the word
// range. Ranges crossing a block boundary are not supported.
func (r *Ready) BlockInfoByWordRange(wr model.IdRange) (BlockMeta, error) {
	if r.fulltext == nil {
		return BlockMeta{}, fmt.Errorf("fulltext: %w", ErrNotRegistered)
	}
	b, err := r.fulltext.meta.BlockByRange(wr)
	if err != nil {
		return BlockMeta{}, fmt.Errorf("word range %s: %w", wr, err)
	}
	return b, nil
}

// RelationMetaData returns the metadata of a relation.
func (r *Ready) RelationMetaData(relId model.Id) (*RelationMeta, error) {
	m, ok := r.ontology.meta.Relation(relId)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRelationNotFound, relId)
	}
	return m, nil
}

// RelationIds returns the ids of all stored relations in ascending order.
func (r *Ready) RelationIds() []model.Id {
	return r.ontology.meta.RelationIds()
}

// ReadBlock reads the postings of a fulltext block in stored order.
func (r *Ready) ReadBlock(ctx context.Context, meta BlockMeta) (model.PostingList, error) {
	if r.fulltext == nil {
		return nil, fmt.Errorf("fulltext: %w", ErrNotRegistered)
	}
	start := time.Now()
	postings, err := indexfile.ReadPostings(ctx, r.fulltext.blob, meta)
	err = classify(r.fulltext.name, err)
	r.metrics.OnBlockRead(model.KindWord, len(postings), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return postings, nil
}

// ReadRelationBlock reads the rows of a single relation block.
func (r *Ready) ReadRelationBlock(ctx context.Context, block RelationBlockMeta) (model.Relation, error) {
	start := time.Now()
	rows, err := indexfile.ReadRelationBlock(ctx, r.ontology.blob, block)
	err = classify(r.ontology.name, err)
	r.metrics.OnBlockRead(model.KindOntology, len(rows), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadFullRelation reads all blocks of a relation in metadata order.
func (r *Ready) ReadFullRelation(ctx context.Context, meta *RelationMeta) (model.Relation, error) {
	start := time.Now()
	rows, err := indexfile.ReadRelation(ctx, r.ontology.blob, meta)
	err = classify(r.ontology.name, err)
	r.metrics.OnBlockRead(model.KindOntology, len(rows), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// HasRelations returns the resident has-relations relation: for every
// entity the ids of the relations it takes part in.
func (r *Ready) HasRelations() model.Relation {
	return r.hasRelations
}

// AvailableClasses returns the resident classes with their instance counts.
func (r *Ready) AvailableClasses() model.EntityList {
	return r.classes
}

// RawExcerpt returns the raw excerpt line of a context.
func (r *Ready) RawExcerpt(ctx context.Context, contextId model.Id) (string, error) {
	if r.excerpts == nil {
		return "", ErrNoExcerptStore
	}
	return r.excerpts.Get(ctx, contextId)
}

// Close closes the underlying index.
func (r *Ready) Close() error {
	return r.idx.Close()
}

// Stats summarizes the registered files.
type Stats struct {
	FulltextWords    int
	FulltextBlocks   int
	FulltextPostings uint64
	OntologyWords    int
	Relations        int
	HasRelations     int
	Classes          int
}

// Stats returns a summary of the registered files.
func (r *Ready) Stats() Stats {
	s := Stats{
		OntologyWords: r.ontology.vocab.Len(),
		Relations:     len(r.ontology.meta.Relations),
		HasRelations:  len(r.hasRelations),
		Classes:       len(r.classes),
	}
	if r.fulltext != nil {
		s.FulltextWords = r.fulltext.vocab.Len()
		s.FulltextBlocks = len(r.fulltext.meta.Blocks)
		s.FulltextPostings = r.fulltext.meta.TotalPostings()
	}
	return s
}

// residentRelation returns the metadata of a special relation, or nil if
// the ontology does not contain it.
func (r *Ready) residentRelation(name string) *RelationMeta {
	id, ok := r.OntologyId(name)
	if !ok {
		return nil
	}
	meta, ok := r.ontology.meta.Relation(id)
	if !ok {
		return nil
	}
	return meta
}

func (r *Ready) loadHasRelations(ctx context.Context) (model.Relation, error) {
	meta := r.residentRelation(model.HasRelationsRelation)
	if meta == nil {
		if r.logger != nil {
			r.logger.Warn("ontology has no relation", "relation", model.HasRelationsRelation)
		}
		return model.Relation{}, nil
	}
	return r.ReadFullRelation(ctx, meta)
}

func (r *Ready) loadAvailableClasses(ctx context.Context) (model.EntityList, error) {
	meta := r.residentRelation(model.HasInstancesRelation)
	if meta == nil {
		if r.logger != nil {
			r.logger.Warn("ontology has no relation", "relation", model.HasInstancesRelation)
		}
		return model.EntityList{}, nil
	}
	if len(meta.Blocks) > 1 {
		return nil, corrupt(r.ontology.name, "relation %s has %d blocks, want one",
			model.HasInstancesRelation, len(meta.Blocks))
	}

	classes := make(model.EntityList, 0, meta.Count())
	if len(meta.Blocks) == 1 {
		rows, err := r.ReadRelationBlock(ctx, meta.Blocks[0])
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			classes = append(classes, model.EntityWithScore{
				Id:    row.Lhs,
				Score: model.AggregatedScore(row.Rhs), //nolint:gosec
			})
		}
	}
	if !classes.IsWellFormed() {
		return nil, corrupt(r.ontology.name, "relation %s has duplicate classes", model.HasInstancesRelation)
	}
	return classes, nil
}
