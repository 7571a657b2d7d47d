package query

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/semsearch/engine"
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/index"
	"github.com/hupe1980/semsearch/model"
)

// Triple is one constraint on a variable. The implementations are
// *IsATriple, *EqualsTriple, *RelationTriple and *OccursWithTriple.
type Triple interface {
	Provider
	hitsForEntity(ctx context.Context, ec *ExecutionContext, id model.Id) ([]excerpt.Hit, error)
	isTriple()
}

// tripleGroup orders the triples of a disjunct by kind.
func tripleGroup(t Triple) int {
	switch t.(type) {
	case *IsATriple:
		return 0
	case *OccursWithTriple:
		return 1
	case *RelationTriple:
		return 2
	case *EqualsTriple:
		return 3
	default:
		panic(fmt.Sprintf("query: unknown triple %T", t))
	}
}

func tripleKey(relation, object string) string {
	return "<-- " + relation + " " + object + ">"
}

// IsATriple matches the instances of a class.
type IsATriple struct {
	class string
	key   string
}

// NewIsATriple creates a triple matching the instances of class.
func NewIsATriple(class string) *IsATriple {
	return &IsATriple{class: class, key: tripleKey(model.IsARelation, class)}
}

func (t *IsATriple) isTriple()   {}
func (t *IsATriple) Key() string { return t.key }

// Class returns the class name.
func (t *IsATriple) Class() string { return t.class }

func (t *IsATriple) computeResult(ctx context.Context, ec *ExecutionContext) (*Result, error) {
	r := newResult()

	relId, ok := ec.Index.OntologyId(model.ReverseRelation(model.IsARelation))
	if !ok {
		return nil, fmt.Errorf("%w: ontology has no relation %s", index.ErrCorruptIndex,
			model.ReverseRelation(model.IsARelation))
	}
	classId, ok := ec.Index.OntologyId(t.class)
	if !ok {
		ec.log().Debug("unknown class", "class", t.class)
		return r, nil
	}
	meta, err := ec.Index.RelationMetaData(relId)
	if err != nil {
		return nil, err
	}
	block, ok := meta.BlockInfo(classId)
	if !ok {
		return r, nil
	}
	rows, err := ec.Index.ReadRelationBlock(ctx, block)
	if err != nil {
		return nil, err
	}
	r.Entities = engine.RelationRhsBySingleLhs(rows, classId, model.EntityFromRelationScore)
	return r, nil
}

func (t *IsATriple) hitsForEntity(_ context.Context, ec *ExecutionContext, id model.Id) ([]excerpt.Hit, error) {
	word, _ := ec.Index.OntologyWord(id)
	return []excerpt.Hit{
		excerpt.NewOntologyHit(model.LastPart(word), "is a", model.LastPart(t.class), model.EntityFromRelationScore),
	}, nil
}

// EqualsTriple matches a single entity.
type EqualsTriple struct {
	entity string
	key    string
}

// NewEqualsTriple creates a triple matching exactly entity.
func NewEqualsTriple(entity string) *EqualsTriple {
	return &EqualsTriple{entity: entity, key: tripleKey(model.EqualsRelation, entity)}
}

func (t *EqualsTriple) isTriple()   {}
func (t *EqualsTriple) Key() string { return t.key }

func (t *EqualsTriple) computeResult(_ context.Context, ec *ExecutionContext) (*Result, error) {
	r := newResult()
	if id, ok := ec.Index.OntologyId(t.entity); ok {
		r.Entities = model.EntityList{{Id: id, Score: model.EntityEqualsScore}}
	}
	return r, nil
}

func (t *EqualsTriple) hitsForEntity(context.Context, *ExecutionContext, model.Id) ([]excerpt.Hit, error) {
	return nil, nil
}

// RelationTriple matches the entities related to the entities of a target
// subtree. For "x rel y" with y as target, the reversed relation is read
// and joined on its lhs.
type RelationTriple struct {
	relation string
	target   *Node
	key      string
}

// NewRelationTriple creates a triple following relation to target.
func NewRelationTriple(relation string, target *Node) *RelationTriple {
	return &RelationTriple{
		relation: relation,
		target:   target,
		key:      tripleKey(relation, target.Key()),
	}
}

func (t *RelationTriple) isTriple()   {}
func (t *RelationTriple) Key() string { return t.key }

// Relation returns the relation name as written in the query.
func (t *RelationTriple) Relation() string { return t.relation }

// Target returns the subtree the relation points to.
func (t *RelationTriple) Target() *Node { return t.target }

func (t *RelationTriple) computeResult(ctx context.Context, ec *ExecutionContext) (*Result, error) {
	reversed := model.ReverseRelation(t.relation)
	relId, ok := ec.Index.OntologyId(reversed)
	if !ok {
		return nil, badQuery("relation %s does not exist", t.relation)
	}
	meta, err := ec.Index.RelationMetaData(relId)
	if err != nil {
		if errors.Is(err, index.ErrRelationNotFound) {
			return nil, badQuery("relation %s has no facts", t.relation)
		}
		return nil, err
	}

	target, err := GetResult(ctx, ec, t.target)
	if err != nil {
		return nil, err
	}
	r := newResult()
	if len(target.Entities) == 0 {
		r.MatchingRelationEntries = model.Relation{}
		return r, nil
	}

	rel, err := ec.Index.ReadFullRelation(ctx, meta)
	if err != nil {
		return nil, err
	}
	r.Entities, r.MatchingRelationEntries = engine.RelationRhsByEntityListLhs(rel, target.Entities, engine.Sum)
	return r, nil
}

func (t *RelationTriple) hitsForEntity(ctx context.Context, ec *ExecutionContext, id model.Id) ([]excerpt.Hit, error) {
	r, err := GetResult(ctx, ec, t)
	if err != nil {
		return nil, err
	}
	lhs, ok := engine.LhsForRhs(r.MatchingRelationEntries, id)
	if !ok {
		return nil, fmt.Errorf("%w: entity %d has no %s fact", engine.ErrNoMatchingEntity, id, t.relation)
	}

	word, _ := ec.Index.OntologyWord(id)
	other, _ := ec.Index.OntologyWord(lhs)
	hits := []excerpt.Hit{
		excerpt.NewOntologyHit(model.LastPart(word), model.LastPart(t.relation), model.LastPart(other),
			model.EntityFromRelationScore),
	}
	sub, err := t.target.hitsForEntity(ctx, ec, lhs)
	if err != nil {
		return nil, err
	}
	return append(hits, sub...), nil
}

// OccursWithTriple matches the entities that occur in a context together
// with all of its words and with an entity of each of its subtrees.
type OccursWithTriple struct {
	words    []string
	subtrees []*Node
	key      string
}

// NewOccursWithTriple creates an occurs-with triple. Words may end with
// model.PrefixChar to match a prefix.
func NewOccursWithTriple(words []string, subtrees ...*Node) *OccursWithTriple {
	w := slices.Clone(words)
	slices.Sort(w)
	w = slices.Compact(w)

	s := slices.Clone(subtrees)
	slices.SortFunc(s, func(a, b *Node) int { return strings.Compare(a.Key(), b.Key()) })
	s = slices.CompactFunc(s, func(a, b *Node) bool { return a.Key() == b.Key() })

	parts := make([]string, 0, len(w)+len(s))
	parts = append(parts, w...)
	for _, n := range s {
		parts = append(parts, n.Key())
	}
	return &OccursWithTriple{
		words:    w,
		subtrees: s,
		key:      tripleKey(model.OccursWithRelation, "("+strings.Join(parts, " ")+")"),
	}
}

func (t *OccursWithTriple) isTriple()   {}
func (t *OccursWithTriple) Key() string { return t.key }

// Words returns the sorted words.
func (t *OccursWithTriple) Words() []string { return t.words }

// Subtrees returns the subtrees sorted by key.
func (t *OccursWithTriple) Subtrees() []*Node { return t.subtrees }

func (t *OccursWithTriple) computeResult(ctx context.Context, ec *ExecutionContext) (*Result, error) {
	if len(t.words) == 0 {
		return nil, notImplemented("occurs-with without words")
	}
	r := newResult()
	r.Postings = model.PostingList{}

	var postings model.PostingList
	for i, word := range t.words {
		list, found, err := wordPostings(ctx, ec, word)
		if err != nil {
			return nil, err
		}
		if !found {
			ec.log().Debug("occurs-with word not found", "word", word)
			return r, nil
		}
		if i == 0 {
			postings = list
		} else {
			postings = engine.JoinOnContext(postings, list)
		}
	}

	if len(t.subtrees) > 0 {
		r.SubtreeEntities = engine.NewEntitySet()
		for _, sub := range t.subtrees {
			sr, err := GetResult(ctx, ec, sub)
			if err != nil {
				return nil, err
			}
			// Whole contexts are kept so the variable ranges over the
			// entities that co-occur with the subtree's entities.
			postings = engine.FilterContextsByEntitySet(postings, sr.Entities)
			r.SubtreeEntities.AddList(sr.Entities)
		}
	}

	r.Postings = postings
	r.Entities = engine.Aggregate(postings, model.KindOntology, engine.PlusOne)
	return r, nil
}

// wordPostings returns the postings of a word or prefix with the entity
// postings that follow it in each context. found is false if the word is
// not in the vocabulary or no block holds it.
func wordPostings(ctx context.Context, ec *ExecutionContext, word string) (model.PostingList, bool, error) {
	wr, ok := ec.Index.FulltextIdRange(word)
	if !ok {
		return nil, false, nil
	}
	meta, err := ec.Index.BlockInfoByWordRange(wr)
	if err != nil {
		if errors.Is(err, index.ErrBlockNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	block, err := ec.Index.ReadBlock(ctx, meta)
	if err != nil {
		return nil, false, err
	}
	return engine.FilterByWordRange(block, wr.First, wr.Last), true, nil
}

func (t *OccursWithTriple) hitsForEntity(ctx context.Context, ec *ExecutionContext, id model.Id) ([]excerpt.Hit, error) {
	r, err := GetResult(ctx, ec, t)
	if err != nil {
		return nil, err
	}

	postings := engine.FilterByEntityIdWithExtra(r.Postings, id, r.SubtreeEntities)
	var hits []excerpt.Hit
	if len(t.subtrees) > 0 {
		hits = engine.TopKContextsWithEntities(postings, 1)
	} else {
		hits = engine.TopKContexts(postings, 1)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	for i := range hits {
		raw, err := ec.Index.RawExcerpt(ctx, hits[i].ContextId)
		switch {
		case err == nil:
			hits[i].Excerpt.SetRaw(raw)
		case errors.Is(err, index.ErrNoExcerptStore), errors.Is(err, excerpt.ErrNotFound):
			ec.log().Debug("no excerpt", "context", hits[i].ContextId, "error", err)
		default:
			return nil, err
		}
	}

	for _, sub := range t.subtrees {
		sr, err := GetResult(ctx, ec, sub)
		if err != nil {
			return nil, err
		}
		match, err := engine.AnyMatchingEntity(sr.Entities, hits[0].MatchedEntities)
		if err != nil {
			return nil, fmt.Errorf("context %d of entity %d: %w", hits[0].ContextId, id, err)
		}
		subHits, err := sub.hitsForEntity(ctx, ec, match)
		if err != nil {
			return nil, err
		}
		hits = append(hits, subHits...)
	}
	return hits, nil
}
