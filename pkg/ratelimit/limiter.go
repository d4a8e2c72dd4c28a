package ratelimit

import (
	"sync"
	"time"

	"mercator-hq/flowmaker/pkg/config"
)

// DefaultIdleTTL is how long an unused client bucket is kept.
const DefaultIdleTTL = 10 * time.Minute

// CheckResult is the outcome of a rate limit check.
type CheckResult struct {
	Allowed bool

	// Reason explains a rejection.
	Reason string

	// Limit is the bucket capacity or the concurrency limit.
	Limit int64

	// Remaining is what is left after this check.
	Remaining int64

	// RetryAfter suggests how long to wait before retrying.
	RetryAfter time.Duration
}

// Limiter applies a per-client token bucket and a global compile
// concurrency cap. Zero limits disable their check.
type Limiter struct {
	rate    float64
	burst   int64
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	clients   map[string]*TokenBucket
	lastSweep time.Time

	concurrent *ConcurrentLimiter
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock sets the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithIdleTTL sets how long idle client buckets are kept.
func WithIdleTTL(d time.Duration) Option {
	return func(l *Limiter) { l.idleTTL = d }
}

// New creates a Limiter from the server rate limit section. It returns nil
// when every limit is disabled; a nil *Limiter allows everything.
func New(cfg config.RateLimitConfig, opts ...Option) *Limiter {
	if !cfg.Enabled() {
		return nil
	}

	l := &Limiter{
		rate:    cfg.RequestsPerSecond,
		burst:   int64(cfg.Burst),
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		clients: make(map[string]*TokenBucket),
	}
	if l.rate > 0 && l.burst <= 0 {
		l.burst = max(1, int64(l.rate*2))
	}
	if cfg.MaxConcurrentCompiles > 0 {
		l.concurrent = NewConcurrentLimiter(cfg.MaxConcurrentCompiles)
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l
}

// Allow takes one token from key's bucket.
func (l *Limiter) Allow(key string) CheckResult {
	if l == nil || l.rate <= 0 {
		return CheckResult{Allowed: true}
	}

	bucket := l.bucket(key)
	if !bucket.Take(1) {
		return CheckResult{
			Reason:     "request rate limit exceeded",
			Limit:      bucket.Capacity(),
			RetryAfter: bucket.TimeUntilAvailable(1),
		}
	}
	return CheckResult{
		Allowed:   true,
		Limit:     bucket.Capacity(),
		Remaining: bucket.Remaining(),
	}
}

// Acquire takes a compile slot. A successful Acquire must be paired with
// Release.
func (l *Limiter) Acquire() CheckResult {
	if l == nil || l.concurrent == nil {
		return CheckResult{Allowed: true}
	}
	if !l.concurrent.Acquire() {
		return CheckResult{
			Reason:     "too many concurrent compiles",
			Limit:      l.concurrent.Limit(),
			RetryAfter: time.Second,
		}
	}
	return CheckResult{
		Allowed:   true,
		Limit:     l.concurrent.Limit(),
		Remaining: l.concurrent.Remaining(),
	}
}

// Release frees a compile slot.
func (l *Limiter) Release() {
	if l != nil && l.concurrent != nil {
		l.concurrent.Release()
	}
}

// Clients returns the number of tracked client buckets.
func (l *Limiter) Clients() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *Limiter) bucket(key string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweepLocked(now)
	}

	b, ok := l.clients[key]
	if !ok {
		b = newTokenBucket(l.burst, l.rate, l.now)
		l.clients[key] = b
	}
	return b
}

// sweepLocked drops buckets idle for longer than idleTTL.
func (l *Limiter) sweepLocked(now time.Time) {
	for key, b := range l.clients {
		if now.Sub(b.idleSince()) >= l.idleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}
