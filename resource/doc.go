// Package resource governs the resources shared by the index readers and the
// caches.
//
// # Limits
//
//   - Memory: a weighted semaphore over cache-resident bytes
//   - Reads: a bound on in-flight blob reads
//   - IO: a token bucket over bytes read from the blob store
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   256 << 20,
//	    MaxConcurrentReads: 16,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
// # Nil Safety
//
// All methods accept a nil Controller and then impose no limits.
package resource
