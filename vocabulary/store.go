package vocabulary

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/model"
)

const (
	// Extension of plain vocabulary files.
	Extension = ".vocabulary"
	// CompressedExtension of zstd-compressed vocabulary files.
	CompressedExtension = ".vocabulary.zst"
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Load reads the vocabulary of baseName, preferring the compressed file.
func Load(ctx context.Context, store blobstore.BlobStore, baseName string, kind model.Kind) (*Vocabulary, error) {
	data, compressed, err := readFile(ctx, store, baseName)
	if err != nil {
		return nil, err
	}
	if compressed {
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, err
		}
	}
	return Parse(kind, bytes.NewReader(data))
}

func readFile(ctx context.Context, store blobstore.BlobStore, baseName string) ([]byte, bool, error) {
	for _, c := range []struct {
		ext        string
		compressed bool
	}{
		{CompressedExtension, true},
		{Extension, false},
	} {
		blob, err := store.Open(ctx, baseName+c.ext)
		if errors.Is(err, blobstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		data, err := blobstore.ReadAll(ctx, blob)
		if err != nil {
			_ = blob.Close()
			return nil, false, err
		}
		// Mapped bytes are only valid while the blob is open.
		data = bytes.Clone(data)
		return data, c.compressed, blob.Close()
	}
	return nil, false, blobstore.ErrNotFound
}

// Save writes v as the vocabulary of baseName.
func Save(ctx context.Context, store blobstore.BlobStore, baseName string, v *Vocabulary, compress bool) error {
	var buf bytes.Buffer
	if _, err := v.WriteTo(&buf); err != nil {
		return err
	}
	if !compress {
		return store.Put(ctx, baseName+Extension, buf.Bytes())
	}

	enc := getZstdEncoder()
	defer zstdEncoderPool.Put(enc)
	return store.Put(ctx, baseName+CompressedExtension, enc.EncodeAll(buf.Bytes(), nil))
}
