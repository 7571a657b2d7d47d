// Package index reads fulltext and ontology indexes from a blob store.
//
// # Lifecycle
//
// An Index is built in two phases:
//
//	idx := index.New(store, index.WithLogger(logger))
//	_ = idx.RegisterFulltext(ctx, "wiki.fulltext")
//	_ = idx.RegisterOntology(ctx, "wiki.ontology")
//	ready, err := idx.LoadResidentRelations(ctx)
//
// Registration opens "<base>.index" and "<base>.vocabulary[.zst]" and parses
// the metadata region. LoadResidentRelations keeps the has-relations
// relation and the available classes in memory and returns the Ready view.
// Queries only see Ready, which never changes after construction.
//
// # Errors
//
// Unknown words resolve to ok=false. Inconsistent files surface as a
// *CorruptionError, which matches ErrCorruptIndex with errors.Is.
package index
