// Package testutil provides fixtures and random inputs for tests.
//
// # Fixture Index
//
// The Wiki fixture is a tiny world of scientists, cities and sentences
// about them, written with indexbuilder into a blobstore.MemoryStore:
//
//	ready := testutil.NewWiki(t)
//	id, _ := ready.OntologyId(testutil.Einstein)
//
// # Random Inputs
//
//	rng := testutil.NewRNG(42)
//	postings := rng.Postings(60)   // sorted by context, then id
//	entities := rng.EntityList(30) // well-formed
package testutil
