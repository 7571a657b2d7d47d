// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("indexes/wiki/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
// Wrap the store in a blobstore.CachingStore so repeated block reads of an
// index do not turn into repeated range requests.
//
// # Features
//
//   - Range reads for block-level access
//   - Multipart uploads for large index files
//   - Automatic pagination for listing
package s3
