package ratelimit

import (
	"sync/atomic"
)

// ConcurrentLimiter is a lock-free counting semaphore.
type ConcurrentLimiter struct {
	limit   int64
	current atomic.Int64
}

// NewConcurrentLimiter creates a limiter admitting up to limit holders.
func NewConcurrentLimiter(limit int) *ConcurrentLimiter {
	return &ConcurrentLimiter{limit: int64(limit)}
}

// Acquire takes a slot if one is free. A successful Acquire must be paired
// with Release.
func (cl *ConcurrentLimiter) Acquire() bool {
	if cl.current.Add(1) > cl.limit {
		cl.current.Add(-1)
		return false
	}
	return true
}

// Release frees a slot taken by Acquire.
func (cl *ConcurrentLimiter) Release() {
	cl.current.Add(-1)
}

// Current returns the number of held slots.
func (cl *ConcurrentLimiter) Current() int64 {
	return cl.current.Load()
}

// Limit returns the configured limit.
func (cl *ConcurrentLimiter) Limit() int64 {
	return cl.limit
}

// Remaining returns the number of free slots.
func (cl *ConcurrentLimiter) Remaining() int64 {
	if remaining := cl.limit - cl.current.Load(); remaining > 0 {
		return remaining
	}
	return 0
}
