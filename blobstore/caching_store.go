package blobstore

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/semsearch/internal/cache"
	"github.com/hupe1980/semsearch/resource"
)

// DefaultBlockSize is the cache granularity when none is given.
const DefaultBlockSize = 64 * 1024

type blockKey struct {
	name string
	blk  int64
}

// BlockCache holds fixed-size blocks of blobs.
type BlockCache = cache.LRU[blockKey, []byte]

// NewBlockCache creates a block cache bounded by capacityBytes. Cached
// bytes are charged against rc, which may be nil.
func NewBlockCache(capacityBytes int64, rc *resource.Controller) *BlockCache {
	return cache.NewLRU[blockKey, []byte](capacityBytes,
		cache.WithSizeFunc[blockKey, []byte](func(b []byte) int64 { return int64(len(b)) }),
		cache.WithResourceController[blockKey, []byte](rc),
	)
}

// CachingStore wraps a BlobStore and caches reads in fixed-size blocks.
// It is meant for remote backends where every ReadAt is a network request.
type CachingStore struct {
	inner     BlobStore
	cache     *BlockCache
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to DefaultBlockSize if <= 0.
func NewCachingStore(inner BlobStore, c *BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		blockSize: blockSize,
	}
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(k blockKey) bool { return k.name == name })
}

// Stats returns the statistics of the underlying block cache.
func (s *CachingStore) Stats() cache.Stats {
	return s.cache.Stats()
}

// CachingBlob serves reads from the block cache, fetching missing runs of
// blocks from the inner blob.
type CachingBlob struct {
	inner     Blob
	cache     *BlockCache
	name      string
	blockSize int64
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 || off >= b.Size() {
		return 0, io.EOF
	}

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(p)) - 1) / b.blockSize
	if last := (b.Size() - 1) / b.blockSize; endBlock > last {
		endBlock = last
	}

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		data, err := b.block(ctx, blk)
		if err != nil {
			return total, err
		}
		blkStart := blk * b.blockSize
		from := max(blkStart, off) - blkStart
		if from >= int64(len(data)) {
			break
		}
		total += copy(p[total:], data[from:])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// fillCache loads the missing blocks of [startBlock, endBlock], fetching
// contiguous runs with one backend request each.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	type run struct{ start, count int64 }
	var missing []run

	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Peek(blockKey{b.name, blk}); ok {
			continue
		}
		if n := len(missing); n > 0 && missing[n-1].start+missing[n-1].count == blk {
			missing[n-1].count++
			continue
		}
		missing = append(missing, run{start: blk, count: 1})
	}
	if len(missing) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			byteSize := min(r.count*b.blockSize, b.Size()-byteStart)
			if byteSize <= 0 {
				return nil
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(gctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			for i := int64(0); i < r.count; i++ {
				lo := i * b.blockSize
				if lo >= int64(len(buf)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(buf)))
				// Copy so a cached block does not pin the whole run.
				blockCopy := make([]byte, hi-lo)
				copy(blockCopy, buf[lo:hi])
				b.cache.Set(blockKey{b.name, r.start + i}, blockCopy)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *CachingBlob) block(ctx context.Context, blk int64) ([]byte, error) {
	if data, ok := b.cache.Get(blockKey{b.name, blk}); ok {
		return data, nil
	}

	// Not admitted by the cache (or evicted meanwhile): read directly.
	offset := blk * b.blockSize
	buf := make([]byte, min(b.blockSize, b.Size()-offset))
	n, err := b.inner.ReadAt(ctx, buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}
