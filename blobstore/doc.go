// Package blobstore provides storage abstraction for the immutable files of
// a semantic search index.
//
// BlobStore is the interface for reading and writing blobs (index files,
// vocabularies, docs files). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, blobs are memory-mapped
//   - MemoryStore: in-memory, for tests and fixtures
//   - s3.Store: Amazon S3 with range reads
//   - minio.Store: S3-compatible object stores via minio-go
//
// # Wrappers
//
//   - CachingStore: fixed-size block cache in front of a remote store
//   - ThrottledStore: bounds read concurrency and throughput
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that can hand out their bytes without copying implement Mappable;
// the index reads such blobs in place.
package blobstore
