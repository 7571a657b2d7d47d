// Package excerpt handles the text evidence shown for query hits.
//
// # Excerpts
//
// A raw excerpt line has the form "contextId\turl\ttitle\ttext", where the
// text carries the PositionDelimiter in front of every word position.
// Excerpt strips the delimiters and wraps highlighted positions in
// <hl>...</hl>. Ontology facts get a synthetic excerpt "lhs rel rhs.".
//
// # Stores
//
//   - DocsFileStore: "<base>.docs" plus a sorted "<base>.docs-offsets" table
//   - BoltStore: bbolt database, lz4-compressed values
//   - BadgerStore: badger database, lz4-compressed values
package excerpt
