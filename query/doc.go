// Package query parses and evaluates semantic queries.
//
// A query is a set of triples separated by ";" plus a root variable:
//
//	$1 :r:is-a :e:person:Person; $1 :r:occurs-with born $2; $2 :r:is-a :e:city:City
//
// ConstructFromTriples turns the triples into a tree rooted at the root
// variable. Every variable becomes a Node holding one Disjunct, the
// conjunction of the triples constraining it. Triples pointing away from
// the root become subtrees. The variables must form a tree.
//
// # Triples
//
//   - IsATriple: the instances of a class
//   - EqualsTriple: a single entity
//   - RelationTriple: entities related to the result of a subtree
//   - OccursWithTriple: entities that co-occur with words and with entities
//     of its subtrees in a fulltext context
//
// # Evaluation
//
// Evaluation runs against an ExecutionContext naming the index, an optional
// ResultCache and a logger. Each subtree has a canonical Key; equal keys
// share one cached result, so repeated and overlapping queries reuse work.
//
//	q, err := query.New(triples, "$1", query.Parameters{NofInstances: 10})
//	res, err := q.CreateQueryResult(ctx, &query.ExecutionContext{
//		Index: ready,
//		Cache: query.NewResultCache(0),
//	})
//
// CreateQueryResult fills the boxes the parameters ask for: completions
// of the prefix, classes, instances, relations and hit groups with their
// evidence.
package query
