package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// BlobStore gives access to the immutable files of an index: index files,
// vocabularies, docs files and their offset tables.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically, replacing an existing one.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
// ReadAt must be safe for concurrent use.
type Blob interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	Close() error
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is implemented by blobs that expose their bytes without copying.
// The slice is valid until the Blob is closed.
type Mappable interface {
	Bytes() ([]byte, error)
}

// ReadFull reads exactly len(p) bytes at off. A short read is reported
// as io.ErrUnexpectedEOF.
func ReadFull(ctx context.Context, b Blob, p []byte, off int64) error {
	n, err := b.ReadAt(ctx, p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("read %d bytes at offset %d: %w", len(p), off, err)
}

// ReadAll returns the full content of a blob.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		return m.Bytes()
	}
	buf := make([]byte, b.Size())
	if len(buf) == 0 {
		return buf, nil
	}
	if err := ReadFull(ctx, b, buf, 0); err != nil {
		return nil, err
	}
	return buf, nil
}

// NewReader returns a sequential reader over a blob.
func NewReader(ctx context.Context, b Blob) io.Reader {
	return &blobReader{ctx: ctx, blob: b}
}

type blobReader struct {
	ctx  context.Context
	blob Blob
	off  int64
}

func (r *blobReader) Read(p []byte) (int, error) {
	if r.off >= r.blob.Size() {
		return 0, io.EOF
	}
	if remaining := r.blob.Size() - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}
