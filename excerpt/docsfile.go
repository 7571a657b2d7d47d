package excerpt

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/model"
)

const (
	DocsExtension        = ".docs"
	DocsOffsetsExtension = ".docs-offsets"

	offsetEntrySize = 16
)

// ErrCorruptDocs is returned for an inconsistent offsets table.
var ErrCorruptDocs = errors.New("excerpt: corrupt docs offsets")

type docsOffset struct {
	contextId model.Id
	offset    int64
}

// DocsFileStore reads excerpts from a "<base>.docs" file of raw excerpt
// lines, located through the "<base>.docs-offsets" table of
// (contextId u64, offset i64) pairs sorted by context id.
type DocsFileStore struct {
	docs    blobstore.Blob
	offsets []docsOffset
}

// OpenDocsFile opens the docs file pair of baseName.
func OpenDocsFile(ctx context.Context, store blobstore.BlobStore, baseName string) (*DocsFileStore, error) {
	ob, err := store.Open(ctx, baseName+DocsOffsetsExtension)
	if err != nil {
		return nil, err
	}
	table, err := blobstore.ReadAll(ctx, ob)
	if err != nil {
		_ = ob.Close()
		return nil, err
	}
	offsets, err := decodeOffsets(table)
	_ = ob.Close()
	if err != nil {
		return nil, err
	}

	docs, err := store.Open(ctx, baseName+DocsExtension)
	if err != nil {
		return nil, err
	}
	for _, o := range offsets {
		if o.offset > docs.Size() {
			_ = docs.Close()
			return nil, fmt.Errorf("%w: offset %d of context %d beyond docs file", ErrCorruptDocs, o.offset, o.contextId)
		}
	}
	return &DocsFileStore{docs: docs, offsets: offsets}, nil
}

func decodeOffsets(table []byte) ([]docsOffset, error) {
	if len(table)%offsetEntrySize != 0 {
		return nil, fmt.Errorf("%w: table of %d bytes", ErrCorruptDocs, len(table))
	}
	offsets := make([]docsOffset, len(table)/offsetEntrySize)
	for i := range offsets {
		e := table[i*offsetEntrySize:]
		offsets[i] = docsOffset{
			contextId: model.Id(binary.LittleEndian.Uint64(e[0:8])),
			offset:    int64(binary.LittleEndian.Uint64(e[8:16])),
		}
		if i > 0 && (offsets[i-1].contextId >= offsets[i].contextId || offsets[i-1].offset > offsets[i].offset) {
			return nil, fmt.Errorf("%w: entry %d out of order", ErrCorruptDocs, i)
		}
	}
	return offsets, nil
}

// Get returns the raw excerpt line of a context.
func (s *DocsFileStore) Get(ctx context.Context, contextId model.Id) (string, error) {
	i := sort.Search(len(s.offsets), func(i int) bool {
		return s.offsets[i].contextId >= contextId
	})
	if i == len(s.offsets) || s.offsets[i].contextId != contextId {
		return "", fmt.Errorf("%w: %d", ErrNotFound, contextId)
	}

	start := s.offsets[i].offset
	end := s.docs.Size()
	if i+1 < len(s.offsets) {
		end = s.offsets[i+1].offset
	}
	buf := make([]byte, end-start)
	if err := blobstore.ReadFull(ctx, s.docs, buf, start); err != nil {
		return "", err
	}
	if nl := bytes.IndexByte(buf, '\n'); nl >= 0 {
		buf = buf[:nl]
	}
	return string(buf), nil
}

// Len returns the number of contexts with an excerpt.
func (s *DocsFileStore) Len() int {
	return len(s.offsets)
}

func (s *DocsFileStore) Close() error {
	return s.docs.Close()
}

// WriteDocsFile writes the docs file pair of baseName. Documents are
// sorted by context id; duplicate ids are rejected.
func WriteDocsFile(ctx context.Context, store blobstore.BlobStore, baseName string, docs []Document) error {
	sorted := append([]Document(nil), docs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ContextId < sorted[j].ContextId })

	var data, table []byte
	for i, d := range sorted {
		if i > 0 && sorted[i-1].ContextId == d.ContextId {
			return fmt.Errorf("excerpt: duplicate context id %d", d.ContextId)
		}
		table = binary.LittleEndian.AppendUint64(table, uint64(d.ContextId))
		table = binary.LittleEndian.AppendUint64(table, uint64(len(data)))
		data = append(data, d.Raw()...)
		data = append(data, '\n')
	}

	if err := store.Put(ctx, baseName+DocsExtension, data); err != nil {
		return err
	}
	return store.Put(ctx, baseName+DocsOffsetsExtension, table)
}
