// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible systems like Ceph, SeaweedFS
// and Garage, without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.Dial("localhost:9000", "minioadmin", "minioadmin", false,
//	    "my-bucket", "indexes/wiki/")
//
// Wrap the store in a blobstore.CachingStore for block-level caching.
package minio
