// Package model defines the core types shared by the index, the list algebra
// and the query layer.
//
// # Identifier Space
//
//   - Id: 64-bit identifier; the top bit tags ontology elements
//   - FirstId / PureValue: map between ids and vocabulary positions
//   - IdRange: inclusive id interval (prefix lookups)
//
// # Lists
//
//   - Posting / PostingList: (id, context, score, position) occurrences
//   - EntityWithScore / EntityList: aggregated results, sorted by id
//   - RelationEntry / Relation: (lhs, rhs) ontology facts
//
// # Naming Conventions
//
// Ontology words carry prefixes (":e:" for entities, ":r:" for relations).
// Every relation is stored in both directions; the reverse direction has
// the "_(reversed)" suffix.
package model
