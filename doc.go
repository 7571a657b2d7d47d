// Package semsearch answers semantic queries that combine a fulltext index
// with an ontology of entities and relations.
//
// # Quick Start
//
//	store := blobstore.NewLocalStore("./data")
//	s, err := semsearch.Open(ctx, store, semsearch.Files{
//	    Fulltext: "wiki.fulltext",
//	    Ontology: "wiki.ontology",
//	    Docs:     "wiki",
//	})
//	if err != nil {
//	    panic(err)
//	}
//	defer s.Close()
//
//	res, err := s.Search(ctx,
//	    "$1 :r:is-a :e:person:Person; $1 :r:occurs-with born $2; $2 :r:is-a :e:city:City",
//	    "$1",
//	    query.Parameters{NofInstances: 10, NofHitGroups: 5},
//	)
//
// # Queries
//
// A query is a set of triples "$x relation object" separated by ";" and a
// root variable. The relations :r:is-a and :r:equals take an ontology word,
// :r:occurs-with takes words (a trailing '*' matches a prefix) and
// variables, every other relation takes a variable. See package query.
//
// # Storage
//
// Index files are read through a blobstore.BlobStore: a local directory,
// S3, MinIO or memory. Package indexbuilder writes them.
//
// # Errors
//
// Errors from the packages below are translated into ErrBadQuery,
// ErrNotImplemented, ErrCorruptIndex, ErrNotFound and ErrClosed. The
// original error stays in the chain for errors.Is and errors.As.
package semsearch
