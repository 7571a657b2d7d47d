package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semsearch/internal/mmap"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	blobName := "wiki.index"
	data := []byte("hello world, this is a test blob for semsearch")

	require.NoError(t, store.Put(ctx, blobName, data))

	_, err := os.Stat(filepath.Join(tmpDir, blobName))
	require.NoError(t, err)

	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// Reading past the end returns the available bytes and EOF.
	buf = make([]byte, 10)
	n, err = blob.ReadAt(ctx, buf, int64(len(data)-3))
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.EOF)

	m, ok := blob.(Mappable)
	require.True(t, ok)
	mapped, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, mapped)

	if a, ok := blob.(interface{ Advise(mmap.AccessPattern) error }); ok {
		assert.NoError(t, a.Advise(mmap.AccessRandom))
	}

	require.NoError(t, store.Put(ctx, "wiki.vocabulary", []byte("a\nb\n")))
	require.NoError(t, store.Put(ctx, "sub/other.index", []byte("x")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/other.index", "wiki.index", "wiki.vocabulary"}, names)

	names, err = store.List(ctx, "wiki.")
	require.NoError(t, err)
	assert.Equal(t, []string{"wiki.index", "wiki.vocabulary"}, names)

	require.NoError(t, store.Delete(ctx, "wiki.vocabulary"))
	require.NoError(t, store.Delete(ctx, "wiki.vocabulary"))

	_, err = store.Open(ctx, "wiki.vocabulary")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStore_PutOverwrites(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", []byte("first")))
	require.NoError(t, store.Put(ctx, "a", []byte("second")))

	blob, err := store.Open(ctx, "a")
	require.NoError(t, err)
	defer blob.Close()

	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestLocalStore_EmptyBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "empty", nil))

	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(0), blob.Size())
	n, err := blob.ReadAt(ctx, make([]byte, 4), 0)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.Put(context.Background(), "a", []byte("abc")))

	blob, err := store.Open(context.Background(), "a")
	require.NoError(t, err)
	defer blob.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = blob.ReadAt(ctx, make([]byte, 1), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	src := []byte("abcdef")
	require.NoError(t, store.Put(ctx, "x", src))
	src[0] = 'z'

	blob, err := store.Open(ctx, "x")
	require.NoError(t, err)

	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(got))

	got, err = io.ReadAll(NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(got))

	err = ReadFull(ctx, blob, make([]byte, 4), 4)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = store.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
