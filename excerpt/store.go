package excerpt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/semsearch/model"
)

// ErrNotFound is returned when no excerpt exists for a context.
var ErrNotFound = errors.New("excerpt: no excerpt for context")

// Store returns the raw excerpt line of a context.
type Store interface {
	Get(ctx context.Context, contextId model.Id) (string, error)
	Close() error
}

// Document is the source of one raw excerpt line.
type Document struct {
	ContextId model.Id
	URL       string
	Title     string
	// Text holds PositionDelimiter before every word position.
	Text string
}

// Raw formats the document as a raw excerpt line.
func (d Document) Raw() string {
	return Raw(fmt.Sprint(uint64(d.ContextId)), d.URL, d.Title, d.Text)
}

func contextKey(id model.Id) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(id))
	return k[:]
}

// compressValue stores the uncompressed size followed by an lz4 block.
// Incompressible values are stored as-is with a zero compressed marker.
func compressValue(raw string) ([]byte, error) {
	src := []byte(raw)
	dst := make([]byte, 8+lz4.CompressBlockBound(len(src)))
	binary.LittleEndian.PutUint32(dst[0:], uint32(len(src))) //nolint:gosec

	n, err := lz4.CompressBlock(src, dst[8:], nil)
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(src) {
		binary.LittleEndian.PutUint32(dst[4:], 0)
		return append(dst[:8], src...), nil
	}
	binary.LittleEndian.PutUint32(dst[4:], uint32(n)) //nolint:gosec
	return dst[:8+n], nil
}

func decompressValue(v []byte) (string, error) {
	if len(v) < 8 {
		return "", errors.New("excerpt: value too small for header")
	}
	size := binary.LittleEndian.Uint32(v[0:])
	csize := binary.LittleEndian.Uint32(v[4:])
	if csize == 0 {
		if uint32(len(v)-8) != size { //nolint:gosec
			return "", errors.New("excerpt: stored size mismatch")
		}
		return string(v[8:]), nil
	}
	if uint32(len(v)-8) < csize { //nolint:gosec
		return "", errors.New("excerpt: compressed value truncated")
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(v[8:8+csize], out)
	if err != nil {
		return "", err
	}
	if uint32(n) != size { //nolint:gosec
		return "", errors.New("excerpt: decompressed size mismatch")
	}
	return string(out), nil
}
