package semsearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/engine"
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/index"
	"github.com/hupe1980/semsearch/query"
)

var (
	// ErrBadQuery is returned for malformed or cyclic queries and unknown
	// relations.
	ErrBadQuery = errors.New("semsearch: bad query")

	// ErrNotImplemented is returned for queries the evaluator does not support.
	ErrNotImplemented = errors.New("semsearch: not implemented")

	// ErrCorruptIndex is returned when an index file is inconsistent.
	ErrCorruptIndex = errors.New("semsearch: corrupt index")

	// ErrNotFound is returned when an index file does not exist.
	ErrNotFound = errors.New("semsearch: not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("semsearch: closed")

	// ErrNoOntology is returned by Open without an ontology index.
	ErrNoOntology = errors.New("semsearch: ontology index required")
)

// QueryError reports a query that could not be constructed or evaluated.
//
// The original underlying error can be accessed via errors.Unwrap.
type QueryError struct {
	Triples string
	Root    string
	cause   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("semsearch: query %q (root %q): %v", e.Triples, e.Root, e.cause)
}

func (e *QueryError) Unwrap() error { return e.cause }

// translateError maps package errors onto the semsearch sentinels. The
// original error stays in the chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, query.ErrBadQuery), errors.Is(err, query.ErrCyclicQuery):
		err = fmt.Errorf("%w: %w", ErrBadQuery, err)
	case errors.Is(err, query.ErrNotImplemented):
		err = fmt.Errorf("%w: %w", ErrNotImplemented, err)
	case errors.Is(err, index.ErrCorruptIndex), errors.Is(err, excerpt.ErrCorruptDocs),
		errors.Is(err, engine.ErrNotWellFormed):
		err = fmt.Errorf("%w: %w", ErrCorruptIndex, err)
	case errors.Is(err, blobstore.ErrNotFound):
		err = fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, index.ErrClosed):
		err = fmt.Errorf("%w: %w", ErrClosed, err)
	}

	var qe *query.QueryError
	if errors.As(err, &qe) {
		return &QueryError{Triples: qe.Triples, Root: qe.Root, cause: err}
	}
	return err
}
