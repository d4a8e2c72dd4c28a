// Package ratelimit limits how often clients may trigger compilation.
//
// # Token Bucket
//
// Each client key (the remote IP for HTTP) gets a bucket that holds up to
// Burst tokens and refills at RequestsPerSecond:
//
//	bucket := ratelimit.NewTokenBucket(20, 10) // burst 20, 10/sec
//	if bucket.Take(1) {
//	    // request allowed
//	}
//
// # Concurrent Limiter
//
// A process-wide semaphore caps simultaneous compiles:
//
//	limiter := ratelimit.NewConcurrentLimiter(8)
//	if limiter.Acquire() {
//	    defer limiter.Release()
//	    // compile
//	}
//
// Limiter combines both and evicts buckets of clients that have been idle
// for longer than IdleTTL. All types are safe for concurrent use.
package ratelimit
