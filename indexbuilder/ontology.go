package indexbuilder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/index"
	"github.com/hupe1980/semsearch/internal/indexfile"
	"github.com/hupe1980/semsearch/model"
	"github.com/hupe1980/semsearch/vocabulary"
)

// ErrInvalidFact is returned for facts that cannot be indexed.
var ErrInvalidFact = errors.New("indexbuilder: invalid fact")

// Fact is one ontology fact "lhs relation rhs" in word space.
type Fact struct {
	Relation string
	Lhs      string
	Rhs      string
}

type relationTypes struct {
	lhs, rhs string
}

// Options configures the builders.
type Options struct {
	// Compress writes zstd-compressed vocabularies.
	Compress bool
	// BlockWords is the number of distinct words per fulltext block.
	BlockWords int
	Logger     *slog.Logger
}

// DefaultOptions are used by NewOntology and NewFulltext.
var DefaultOptions = Options{
	BlockWords: 1024,
}

// OntologyBuilder collects facts and writes an ontology index with its
// vocabulary. Every relation is written in both directions, together with
// the derived has-relations and has-instances relations.
type OntologyBuilder struct {
	opts  Options
	facts []Fact
	types map[string]relationTypes
}

// NewOntology creates an empty ontology builder.
func NewOntology(optFns ...func(o *Options)) *OntologyBuilder {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &OntologyBuilder{opts: opts, types: make(map[string]relationTypes)}
}

// Add adds the fact "lhs relation rhs". The relation must carry the
// relation prefix and must not be a reversed or derived relation.
func (b *OntologyBuilder) Add(relation, lhs, rhs string) error {
	switch {
	case !strings.HasPrefix(relation, model.RelationPrefix):
		return fmt.Errorf("%w: relation %q lacks prefix %q", ErrInvalidFact, relation, model.RelationPrefix)
	case strings.HasSuffix(relation, model.ReversedSuffix):
		return fmt.Errorf("%w: relation %q is reversed", ErrInvalidFact, relation)
	case relation == model.HasRelationsRelation || relation == model.HasInstancesRelation:
		return fmt.Errorf("%w: relation %q is derived", ErrInvalidFact, relation)
	case lhs == "" || rhs == "":
		return fmt.Errorf("%w: empty entity in %s", ErrInvalidFact, relation)
	}
	b.facts = append(b.facts, Fact{Relation: relation, Lhs: lhs, Rhs: rhs})
	return nil
}

// SetTypes records the lhs and rhs types of a relation. The reversed
// relation gets the swapped types.
func (b *OntologyBuilder) SetTypes(relation, lhsType, rhsType string) {
	b.types[relation] = relationTypes{lhs: lhsType, rhs: rhsType}
	b.types[model.ReverseRelation(relation)] = relationTypes{lhs: rhsType, rhs: lhsType}
}

// Len returns the number of facts added.
func (b *OntologyBuilder) Len() int { return len(b.facts) }

// Vocabulary returns the ontology vocabulary of the facts added so far.
func (b *OntologyBuilder) Vocabulary() (*vocabulary.Vocabulary, error) {
	words := []string{
		model.HasRelationsRelation,
		model.HasInstancesRelation,
		model.IsARelation,
		model.ReverseRelation(model.IsARelation),
	}
	for _, f := range b.facts {
		words = append(words, f.Relation, model.ReverseRelation(f.Relation), f.Lhs, f.Rhs)
	}
	for _, t := range b.types {
		if t.lhs != "" {
			words = append(words, t.lhs)
		}
		if t.rhs != "" {
			words = append(words, t.rhs)
		}
	}
	slices.Sort(words)
	return vocabulary.New(model.KindOntology, slices.Compact(words))
}

// OntologyStats summarizes a written ontology index.
type OntologyStats struct {
	Words     int
	Relations int
	Rows      int
}

// Build writes baseName.index and the vocabulary of baseName to store.
func (b *OntologyBuilder) Build(ctx context.Context, store blobstore.BlobStore, baseName string) (*vocabulary.Vocabulary, OntologyStats, error) {
	vocab, err := b.Vocabulary()
	if err != nil {
		return nil, OntologyStats{}, err
	}
	id := func(word string) model.Id {
		v, _ := vocab.Id(word)
		return v
	}

	set := newFactSet()
	for _, f := range b.facts {
		rel, lhs, rhs := id(f.Relation), id(f.Lhs), id(f.Rhs)
		set.Add(RelationFact{Relation: rel, Lhs: lhs, Rhs: rhs})
		set.Add(RelationFact{Relation: id(model.ReverseRelation(f.Relation)), Lhs: rhs, Rhs: lhs})
	}

	isA, isARev := id(model.IsARelation), id(model.ReverseRelation(model.IsARelation))
	hasInstances := id(model.HasInstancesRelation)
	facts := set.Facts()
	facts = HasRelations(facts, id(model.HasRelationsRelation), isA, isARev)
	facts = HasInstances(facts, isARev, hasInstances)
	slices.SortFunc(facts, compareFacts)

	w := indexfile.NewOntologyWriter()
	stats := OntologyStats{Words: vocab.Len(), Rows: len(facts)}
	for start := 0; start < len(facts); {
		end := start + 1
		for end < len(facts) && facts[end].Relation == facts[start].Relation {
			end++
		}

		relId := facts[start].Relation
		rows := make(model.Relation, 0, end-start)
		for _, f := range facts[start:end] {
			rows = append(rows, model.RelationEntry{Lhs: f.Lhs, Rhs: f.Rhs})
		}
		name, _ := vocab.Word(relId)
		t := b.types[name]
		var lhsType, rhsType model.Id
		if t.lhs != "" {
			lhsType = id(t.lhs)
		}
		if t.rhs != "" {
			rhsType = id(t.rhs)
		}

		// Relations are read per lhs, except the classes which are resident.
		if _, err := w.WriteRelation(relId, lhsType, rhsType, rows, relId != hasInstances); err != nil {
			return nil, stats, err
		}
		stats.Relations++
		start = end
	}

	if err := store.Put(ctx, baseName+index.Extension, w.Finish()); err != nil {
		return nil, stats, err
	}
	if err := vocabulary.Save(ctx, store, baseName, vocab, b.opts.Compress); err != nil {
		return nil, stats, err
	}
	if b.opts.Logger != nil {
		b.opts.Logger.Info("wrote ontology index", "base", baseName,
			"words", stats.Words, "relations", stats.Relations, "rows", stats.Rows)
	}
	return vocab, stats, nil
}
