// Package engine implements the list algebra queries are evaluated with.
//
// All functions are stateless. Inputs must already be sorted the way each
// function documents: posting lists by context id, entity lists by id
// (well-formed), relations by lhs then rhs. Results are new slices; the
// inputs are never modified.
//
// # Posting Lists
//
//   - FilterByWordId / FilterByWordRange: matched words and the entities
//     that follow them in the same context
//   - FilterByEntitySet, FilterByEntityId and variants: entity filters,
//     optionally keeping the word postings of matched contexts
//   - JoinOnContext: two-pointer join on context id
//   - Aggregate: postings to a well-formed entity list
//
// # Entity Lists and Relations
//
//   - IntersectEntityLists, FilterByIdRange, TopKEntities
//   - RelationRhsBySingleLhs, RelationRhsByEntityListLhs
//
// # Ranking
//
// TopKContexts turns postings into excerpt hits with highlight positions.
// Ties are broken by ascending context id.
package engine
