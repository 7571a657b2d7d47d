package query

import (
	"cmp"
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/hupe1980/semsearch/engine"
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/model"
)

// Disjunct is the conjunction of the triples that constrain a variable.
// Its triples are ordered by kind, then by key; duplicates are dropped.
type Disjunct struct {
	triples []Triple
	key     string
}

// NewDisjunct creates a conjunction of triples.
func NewDisjunct(triples ...Triple) *Disjunct {
	ts := slices.Clone(triples)
	slices.SortStableFunc(ts, func(a, b Triple) int {
		if c := cmp.Compare(tripleGroup(a), tripleGroup(b)); c != 0 {
			return c
		}
		return strings.Compare(a.Key(), b.Key())
	})
	ts = slices.CompactFunc(ts, func(a, b Triple) bool { return a.Key() == b.Key() })

	var sb strings.Builder
	sb.WriteString("<D")
	for _, t := range ts {
		sb.WriteByte(' ')
		sb.WriteString(t.Key())
	}
	sb.WriteByte('>')
	return &Disjunct{triples: ts, key: sb.String()}
}

func (d *Disjunct) Key() string { return d.key }

// Triples returns the ordered triples.
func (d *Disjunct) Triples() []Triple { return d.triples }

func (d *Disjunct) computeResult(ctx context.Context, ec *ExecutionContext) (*Result, error) {
	switch len(d.triples) {
	case 0:
		return nil, badQuery("conjunction without triples")
	case 1:
		r, err := GetResult(ctx, ec, d.triples[0])
		if err != nil {
			return nil, err
		}
		out := *r
		return &out, nil
	}

	lists := make([]model.EntityList, len(d.triples))
	for i, t := range d.triples {
		r, err := GetResult(ctx, ec, t)
		if err != nil {
			return nil, err
		}
		if err := engine.CheckWellFormed(r.Entities); err != nil {
			return nil, err
		}
		lists[i] = r.Entities
	}
	sort.SliceStable(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })

	acc := engine.IntersectEntityLists(lists[0], lists[1], engine.Sum)
	for _, l := range lists[2:] {
		if len(acc) == 0 {
			break
		}
		acc = engine.IntersectEntityLists(acc, l, engine.Sum)
	}

	r := newResult()
	if acc != nil {
		r.Entities = acc
	}
	return r, nil
}

func (d *Disjunct) hitsForEntity(ctx context.Context, ec *ExecutionContext, id model.Id) ([]excerpt.Hit, error) {
	var hits []excerpt.Hit
	for _, t := range d.triples {
		h, err := t.hitsForEntity(ctx, ec, id)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h...)
	}
	return hits, nil
}

// Node is a query variable: the disjunction of its disjuncts. Nodes are
// immutable once created.
type Node struct {
	disjuncts []*Disjunct
	key       string
}

// NewNode creates a variable node. Disjuncts are ordered by key and
// duplicates are dropped.
func NewNode(disjuncts ...*Disjunct) *Node {
	ds := slices.Clone(disjuncts)
	slices.SortFunc(ds, func(a, b *Disjunct) int { return strings.Compare(a.Key(), b.Key()) })
	ds = slices.CompactFunc(ds, func(a, b *Disjunct) bool { return a.Key() == b.Key() })

	var sb strings.Builder
	sb.WriteString("<NODE")
	for _, d := range ds {
		sb.WriteByte(' ')
		sb.WriteString(d.Key())
	}
	sb.WriteByte('>')
	return &Node{disjuncts: ds, key: sb.String()}
}

func (n *Node) Key() string { return n.key }

// Disjuncts returns the ordered disjuncts.
func (n *Node) Disjuncts() []*Disjunct { return n.disjuncts }

func (n *Node) computeResult(ctx context.Context, ec *ExecutionContext) (*Result, error) {
	switch len(n.disjuncts) {
	case 0:
		return nil, badQuery("variable without constraints")
	case 1:
		r, err := GetResult(ctx, ec, n.disjuncts[0])
		if err != nil {
			return nil, err
		}
		out := *r
		return &out, nil
	default:
		return nil, notImplemented("%d alternatives for one variable", len(n.disjuncts))
	}
}

func (n *Node) hitsForEntity(ctx context.Context, ec *ExecutionContext, id model.Id) ([]excerpt.Hit, error) {
	if len(n.disjuncts) != 1 {
		return nil, notImplemented("%d alternatives for one variable", len(n.disjuncts))
	}
	return n.disjuncts[0].hitsForEntity(ctx, ec, id)
}

// HitsForEntity returns the evidence for an entity of the node's result.
func (n *Node) HitsForEntity(ctx context.Context, ec *ExecutionContext, id model.Id) ([]excerpt.Hit, error) {
	return n.hitsForEntity(ctx, ec, id)
}

// Result evaluates the node.
func (n *Node) Result(ctx context.Context, ec *ExecutionContext) (*Result, error) {
	return GetResult(ctx, ec, n)
}
