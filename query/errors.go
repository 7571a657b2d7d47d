package query

import (
	"errors"
	"fmt"
)

var (
	// ErrBadQuery is returned for malformed triples or unknown relations.
	ErrBadQuery = errors.New("query: bad query")

	// ErrCyclicQuery is returned when the variables of a query form a cycle.
	ErrCyclicQuery = errors.New("query: cyclic query")

	// ErrNotImplemented is returned for valid queries the evaluator does not
	// support, such as nodes with several disjuncts.
	ErrNotImplemented = errors.New("query: not implemented")
)

// QueryError reports a query that could not be constructed.
type QueryError struct {
	Triples string
	Root    string
	cause   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q (root %q): %v", e.Triples, e.Root, e.cause)
}

func (e *QueryError) Unwrap() error { return e.cause }

func badQuery(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadQuery, fmt.Sprintf(format, args...))
}

func notImplemented(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, fmt.Sprintf(format, args...))
}
