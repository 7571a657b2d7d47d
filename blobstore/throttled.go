package blobstore

import (
	"context"

	"github.com/hupe1980/semsearch/resource"
)

// ThrottledStore bounds concurrent reads and read throughput of an inner
// store with a resource.Controller.
type ThrottledStore struct {
	BlobStore
	rc *resource.Controller
}

// NewThrottledStore wraps inner. A nil controller disables throttling.
func NewThrottledStore(inner BlobStore, rc *resource.Controller) *ThrottledStore {
	return &ThrottledStore{BlobStore: inner, rc: rc}
}

func (s *ThrottledStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{Blob: b, rc: s.rc}, nil
}

type throttledBlob struct {
	Blob
	rc *resource.Controller
}

func (b *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := b.rc.AcquireRead(ctx, len(p)); err != nil {
		return 0, err
	}
	defer b.rc.ReleaseRead()
	return b.Blob.ReadAt(ctx, p, off)
}
