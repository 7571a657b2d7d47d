package main

import (
	"context"
	"fmt"

	"github.com/hupe1980/semsearch"
	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/blobstore/minio"
	"github.com/hupe1980/semsearch/blobstore/s3"
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/resource"
)

// openStore returns the configured backend behind an IO throttle and a
// block cache.
func openStore(ctx context.Context, c StorageConfig) (blobstore.BlobStore, error) {
	var (
		base blobstore.BlobStore
		err  error
	)
	switch c.Backend {
	case "local":
		base = blobstore.NewLocalStore(c.Path)
	case "s3":
		optFns := []func(o *s3.Options){s3.WithPrefix(c.Prefix)}
		if c.Region != "" {
			optFns = append(optFns, s3.WithRegion(c.Region))
		}
		if c.Endpoint != "" {
			optFns = append(optFns, s3.WithEndpoint(c.Endpoint, c.UsePathStyle))
		}
		base, err = s3.New(ctx, c.Bucket, optFns...)
	case "minio":
		base, err = minio.Dial(c.Endpoint, c.AccessKey, c.SecretKey, c.Secure, c.Bucket, c.Prefix)
	default:
		err = fmt.Errorf("unknown backend %q", c.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.Backend, err)
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   c.BlockCacheMB << 20,
		MaxConcurrentReads: c.MaxConcurrentReads,
		IOLimitBytesPerSec: c.IOLimitMB << 20,
	})
	var store blobstore.BlobStore = blobstore.NewThrottledStore(base, rc)
	if c.BlockCacheMB > 0 {
		store = blobstore.NewCachingStore(store, blobstore.NewBlockCache(c.BlockCacheMB<<20, rc), c.BlockSizeKB<<10)
	}
	return store, nil
}

// openExcerpts opens the bolt or badger excerpt store, or returns nil for
// the docs file.
func openExcerpts(c IndexConfig) (excerptStore, error) {
	switch c.Excerpts {
	case "bolt":
		return excerpt.OpenBolt(c.ExcerptPath)
	case "badger":
		return excerpt.OpenBadger(c.ExcerptPath)
	default:
		return nil, nil
	}
}

// excerptStore is an excerpt store the build command can fill.
type excerptStore interface {
	excerpt.Store
	PutDocuments(ctx context.Context, docs []excerpt.Document) error
}

func newLogger(c LogConfig) *semsearch.Logger {
	level, _ := parseLevel(c.Level)
	if c.Format == "json" {
		return semsearch.NewJSONLogger(level)
	}
	return semsearch.NewTextLogger(level)
}
