package index

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/semsearch/internal/indexfile"
)

var (
	// ErrCorruptIndex is wrapped by every CorruptionError.
	ErrCorruptIndex = errors.New("index: corrupt index")

	// ErrBlockNotFound is returned when no block holds a word range.
	ErrBlockNotFound = indexfile.ErrBlockNotFound

	// ErrRangeSpansBlocks is returned when a word range crosses a block boundary.
	ErrRangeSpansBlocks = indexfile.ErrRangeSpansBlocks

	// ErrRelationNotFound is returned for an unknown relation id.
	ErrRelationNotFound = errors.New("index: relation not found")

	// ErrNotRegistered is returned when a read needs an index kind that was
	// never registered.
	ErrNotRegistered = errors.New("index: not registered")

	// ErrAlreadyRegistered is returned when an index kind is registered twice.
	ErrAlreadyRegistered = errors.New("index: already registered")

	// ErrAlreadyLoaded is returned when the resident relations are loaded twice.
	ErrAlreadyLoaded = errors.New("index: resident relations already loaded")

	// ErrNoExcerptStore is returned by RawExcerpt without an excerpt store.
	ErrNoExcerptStore = errors.New("index: no excerpt store")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("index: closed")
)

// CorruptionError reports an inconsistency in an index file.
type CorruptionError struct {
	File   string
	Offset int64
	Reason string
	err    error
}

func (e *CorruptionError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("index: corrupt %s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("index: corrupt %s at offset %d: %s", e.File, e.Offset, e.Reason)
}

func (e *CorruptionError) Unwrap() []error {
	if e.err == nil {
		return []error{ErrCorruptIndex}
	}
	return []error{ErrCorruptIndex, e.err}
}

func corrupt(file, format string, args ...any) error {
	return &CorruptionError{File: file, Offset: -1, Reason: fmt.Sprintf(format, args...)}
}

// classify turns file-format failures of file into a CorruptionError and
// passes every other error through.
func classify(file string, err error) error {
	if err == nil {
		return nil
	}
	var fe *indexfile.FormatError
	if errors.As(err, &fe) {
		return &CorruptionError{File: file, Offset: fe.Offset, Reason: fe.Reason, err: err}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &CorruptionError{File: file, Offset: -1, Reason: "unexpected end of file", err: err}
	}
	return err
}
