package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/semsearch/engine"
	"github.com/hupe1980/semsearch/model"
)

const (
	// MaxPageSize bounds the number of items requested per box.
	MaxPageSize = 1000

	// MinWordPrefixSize is the shortest prefix the words box completes.
	MinWordPrefixSize = 2
)

// Parameters select and paginate the boxes of a query result.
type Parameters struct {
	// Prefix restricts words, classes, instances and relations to those
	// starting with it.
	Prefix string

	FirstWord     int
	NofWords      int
	FirstClass    int
	NofClasses    int
	FirstInstance int
	NofInstances  int
	FirstRelation int
	NofRelations  int
	FirstHitGroup int
	NofHitGroups  int
}

func clamp(v, hi int) int {
	return max(0, min(v, hi))
}

// Normalize clamps offsets to be non-negative and counts to [0, MaxPageSize].
func (p Parameters) Normalize() Parameters {
	p.Prefix = strings.TrimSpace(p.Prefix)
	p.FirstWord = max(0, p.FirstWord)
	p.FirstClass = max(0, p.FirstClass)
	p.FirstInstance = max(0, p.FirstInstance)
	p.FirstRelation = max(0, p.FirstRelation)
	p.FirstHitGroup = max(0, p.FirstHitGroup)
	p.NofWords = clamp(p.NofWords, MaxPageSize)
	p.NofClasses = clamp(p.NofClasses, MaxPageSize)
	p.NofInstances = clamp(p.NofInstances, MaxPageSize)
	p.NofRelations = clamp(p.NofRelations, MaxPageSize)
	p.NofHitGroups = clamp(p.NofHitGroups, MaxPageSize)
	return p
}

// Query is a parsed query with its parameters. It is immutable and can be
// evaluated concurrently.
type Query struct {
	params  Parameters
	triples string
	root    string
	tree    *Node
}

// New parses a query. Empty triples create a query without tree that can
// only browse classes by prefix.
func New(triples, root string, params Parameters) (*Query, error) {
	q := &Query{params: params.Normalize(), triples: triples, root: root}
	if strings.TrimSpace(triples) == "" {
		return q, nil
	}
	tree, err := ConstructFromTriples(triples, root)
	if err != nil {
		return nil, err
	}
	q.tree = tree
	return q, nil
}

// Parameters returns the normalized parameters.
func (q *Query) Parameters() Parameters { return q.params }

// Tree returns the root node, or nil for a query without triples.
func (q *Query) Tree() *Node { return q.tree }

// Triples returns the triples the query was parsed from.
func (q *Query) Triples() string { return q.triples }

// Root returns the root variable.
func (q *Query) Root() string { return q.root }

func (q *Query) String() string {
	if q.tree == nil {
		return fmt.Sprintf("Query without triples for prefix: %q", q.params.Prefix)
	}
	return fmt.Sprintf("Semantic query with prefix: %q: { %s }", q.params.Prefix, q.tree.Key())
}

// CreateQueryResult evaluates the query and fills the requested boxes.
func (q *Query) CreateQueryResult(ctx context.Context, ec *ExecutionContext) (*QueryResult, error) {
	p := q.params
	res := &QueryResult{}

	wantClasses := p.Prefix != "" && p.NofClasses > 0
	if wantClasses {
		box, err := q.classesBox(ec)
		if err != nil {
			return nil, err
		}
		res.Classes = box
	}

	if q.tree == nil {
		if !wantClasses {
			return nil, notImplemented("query without triples needs a prefix and classes")
		}
		return res, nil
	}

	if p.NofInstances+p.NofRelations+p.NofHitGroups+p.NofWords == 0 {
		return res, nil
	}
	sub, err := GetResult(ctx, ec, q.tree)
	if err != nil {
		return nil, err
	}
	ec.log().Debug("evaluated query", "query", q.triples, "root", q.root, "entities", len(sub.Entities))

	if p.NofWords > 0 && len(p.Prefix) >= MinWordPrefixSize {
		if res.Words, err = q.wordsBox(ctx, ec, sub); err != nil {
			return nil, err
		}
	}
	if p.NofInstances > 0 {
		if res.Instances, err = q.instancesBox(ec, sub); err != nil {
			return nil, err
		}
	}
	if p.NofRelations > 0 {
		if res.Relations, err = q.relationsBox(ec, sub); err != nil {
			return nil, err
		}
	}
	if p.NofHitGroups > 0 {
		if res.HitGroups, err = q.hitGroupsBox(ctx, ec, sub); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ontologyItems names the [first, first+nof) best entities of list.
func ontologyItems(ec *ExecutionContext, list model.EntityList, first, nof int) (Box[ItemWithScore], error) {
	box := Box[ItemWithScore]{Total: len(list), First: first}
	top := page(engine.TopKEntities(list, first+nof), first)
	box.Items = make([]ItemWithScore, 0, len(top))
	for _, e := range top {
		word, ok := ec.Index.OntologyWord(e.Id)
		if !ok {
			return box, fmt.Errorf("%w: ontology id %d has no word", errUnknownId, e.Id)
		}
		box.Items = append(box.Items, ItemWithScore{Item: word, Score: e.Score})
	}
	return box, nil
}

var errUnknownId = errors.New("query: unknown id")

// byPrefix restricts a well-formed list to the ontology words starting
// with namespace+prefix. An empty prefix keeps the list.
func byPrefix(ec *ExecutionContext, list model.EntityList, namespace, prefix string) model.EntityList {
	if prefix == "" {
		return list
	}
	r, ok := ec.Index.OntologyIdRange(namespace + prefix + string(model.PrefixChar))
	if !ok {
		return model.EntityList{}
	}
	return engine.FilterByIdRange(list, r)
}

func (q *Query) classesBox(ec *ExecutionContext) (Box[ItemWithScore], error) {
	classes := byPrefix(ec, ec.Index.AvailableClasses(), model.EntityPrefix, q.params.Prefix)
	return ontologyItems(ec, classes, q.params.FirstClass, q.params.NofClasses)
}

func (q *Query) instancesBox(ec *ExecutionContext, sub *Result) (Box[ItemWithScore], error) {
	instances := byPrefix(ec, sub.Entities, model.EntityPrefix, q.params.Prefix)
	return ontologyItems(ec, instances, q.params.FirstInstance, q.params.NofInstances)
}

func (q *Query) wordsBox(ctx context.Context, ec *ExecutionContext, sub *Result) (Box[ItemWithScore], error) {
	p := q.params
	box := Box[ItemWithScore]{First: p.FirstWord, Items: []ItemWithScore{}}

	postings, found, err := wordPostings(ctx, ec, p.Prefix+string(model.PrefixChar))
	if err != nil || !found {
		return box, err
	}
	postings = engine.FilterByEntitySetKeepWordPostings(postings, sub.Entities)
	words := engine.Aggregate(postings, model.KindWord, engine.PlusOne)

	box.Total = len(words)
	for _, w := range page(engine.TopKEntities(words, p.FirstWord+p.NofWords), p.FirstWord) {
		word, ok := ec.Index.FulltextWord(w.Id)
		if !ok {
			return box, fmt.Errorf("%w: word id %d has no word", errUnknownId, w.Id)
		}
		box.Items = append(box.Items, ItemWithScore{Item: word, Score: w.Score})
	}
	return box, nil
}

func (q *Query) relationsBox(ec *ExecutionContext, sub *Result) (Box[RelationBoxEntry], error) {
	p := q.params
	box := Box[RelationBoxEntry]{First: p.FirstRelation, Items: []RelationBoxEntry{}}

	relations, _ := engine.RelationRhsByEntityListLhs(ec.Index.HasRelations(), sub.Entities, engine.PlusOne)
	relations = byPrefix(ec, relations, model.RelationPrefix, p.Prefix)

	box.Total = len(relations)
	for _, rel := range page(engine.TopKEntities(relations, p.FirstRelation+p.NofRelations), p.FirstRelation) {
		name, ok := ec.Index.OntologyWord(rel.Id)
		if !ok {
			return box, fmt.Errorf("%w: relation id %d has no word", errUnknownId, rel.Id)
		}
		entry := RelationBoxEntry{Relation: name, Score: rel.Score}
		if base, ok := strings.CutSuffix(name, model.ReversedSuffix); ok {
			entry.Relation, entry.Reversed = base, true
		}
		if meta, err := ec.Index.RelationMetaData(rel.Id); err == nil {
			entry.LhsType, _ = ec.Index.OntologyWord(meta.LhsType)
			entry.RhsType, _ = ec.Index.OntologyWord(meta.RhsType)
		}
		box.Items = append(box.Items, entry)
	}
	return box, nil
}

func (q *Query) hitGroupsBox(ctx context.Context, ec *ExecutionContext, sub *Result) (Box[HitGroup], error) {
	p := q.params
	box := Box[HitGroup]{Total: len(sub.Entities), First: p.FirstHitGroup, Items: []HitGroup{}}
	for _, e := range page(engine.TopKEntities(sub.Entities, p.FirstHitGroup+p.NofHitGroups), p.FirstHitGroup) {
		hits, err := q.tree.hitsForEntity(ctx, ec, e.Id)
		if err != nil {
			return box, err
		}
		name, _ := ec.Index.OntologyWord(e.Id)
		box.Items = append(box.Items, HitGroup{Entity: name, Score: e.Score, Hits: hits})
	}
	return box, nil
}
