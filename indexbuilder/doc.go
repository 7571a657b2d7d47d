// Package indexbuilder writes fulltext and ontology indexes with their
// vocabularies.
//
// # Ontology
//
// OntologyBuilder takes facts "lhs relation rhs" and writes every relation
// in both directions, split into one block per lhs. Two relations are
// derived:
//
//   - has-relations: entity -> every relation it is the lhs of
//   - has-instances: class -> number of instances, a single block
//
// # Fulltext
//
// FulltextBuilder takes word and entity postings. Words are grouped into
// blocks of consecutive ids; the entity postings of a context are copied
// into every block holding one of the context's words, so a block answers
// word and entity co-occurrence on its own.
package indexbuilder
