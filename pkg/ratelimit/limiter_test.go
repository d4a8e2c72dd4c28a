package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/flowmaker/pkg/config"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTokenBucket_Basic(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(10, 10, clock.Now)

	if !bucket.Take(5) {
		t.Error("Expected to take 5 tokens from full bucket")
	}
	if remaining := bucket.Remaining(); remaining != 5 {
		t.Errorf("Expected 5 remaining, got %d", remaining)
	}
	if !bucket.Take(5) {
		t.Error("Expected to take remaining 5 tokens")
	}
	if bucket.Take(1) {
		t.Error("Expected bucket to be empty")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(10, 10, clock.Now)
	bucket.Take(10)

	if got := bucket.TimeUntilAvailable(1); got != 100*time.Millisecond {
		t.Errorf("TimeUntilAvailable(1) = %v, want 100ms", got)
	}

	clock.Advance(50 * time.Millisecond)
	if bucket.Take(1) {
		t.Error("Expected half a token to be insufficient")
	}

	clock.Advance(50 * time.Millisecond)
	if !bucket.Take(1) {
		t.Error("Expected bucket to have refilled one token")
	}
}

func TestTokenBucket_CapacityLimit(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(10, 10, clock.Now)

	clock.Advance(time.Hour)
	if remaining := bucket.Remaining(); remaining != 10 {
		t.Errorf("Expected remaining capped at 10, got %d", remaining)
	}

	bucket.Take(10)
	bucket.Reset()
	if remaining := bucket.Remaining(); remaining != 10 {
		t.Errorf("Expected full bucket after Reset, got %d", remaining)
	}
}

func TestConcurrentLimiter(t *testing.T) {
	limiter := NewConcurrentLimiter(2)

	if !limiter.Acquire() || !limiter.Acquire() {
		t.Fatal("Expected two slots")
	}
	if limiter.Acquire() {
		t.Error("Expected third acquire to fail")
	}
	if limiter.Current() != 2 || limiter.Remaining() != 0 {
		t.Errorf("current=%d remaining=%d, want 2 and 0", limiter.Current(), limiter.Remaining())
	}

	limiter.Release()
	if !limiter.Acquire() {
		t.Error("Expected acquire after release")
	}
}

func TestConcurrentLimiter_Parallel(t *testing.T) {
	limiter := NewConcurrentLimiter(5)

	var wg sync.WaitGroup
	var peak, inFlight atomic.Int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !limiter.Acquire() {
				return
			}
			defer limiter.Release()

			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	if peak.Load() > 5 {
		t.Errorf("peak in-flight = %d, want <= 5", peak.Load())
	}
	if limiter.Current() != 0 {
		t.Errorf("current = %d after all releases, want 0", limiter.Current())
	}
}

func TestNew_Disabled(t *testing.T) {
	l := New(config.RateLimitConfig{})
	if l != nil {
		t.Fatal("expected nil limiter when all limits are zero")
	}

	// A nil limiter allows everything.
	if res := l.Allow("10.0.0.1"); !res.Allowed {
		t.Error("nil limiter rejected a request")
	}
	if res := l.Acquire(); !res.Allowed {
		t.Error("nil limiter rejected a compile")
	}
	l.Release()
	if l.Clients() != 0 {
		t.Error("nil limiter tracks clients")
	}
}

func TestLimiter_PerClient(t *testing.T) {
	clock := newFakeClock()
	l := New(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2}, WithClock(clock.Now))

	for i := 0; i < 2; i++ {
		if res := l.Allow("a"); !res.Allowed {
			t.Fatalf("request %d rejected within burst", i)
		}
	}

	res := l.Allow("a")
	if res.Allowed {
		t.Fatal("expected request beyond burst to be rejected")
	}
	if res.RetryAfter != time.Second || res.Limit != 2 {
		t.Errorf("result = %+v, want RetryAfter 1s and Limit 2", res)
	}

	if res := l.Allow("b"); !res.Allowed {
		t.Error("other client should have its own bucket")
	}

	clock.Advance(time.Second)
	if res := l.Allow("a"); !res.Allowed {
		t.Error("expected request after refill to be allowed")
	}
}

func TestLimiter_DefaultBurst(t *testing.T) {
	l := New(config.RateLimitConfig{RequestsPerSecond: 0.2}, WithClock(newFakeClock().Now))

	if res := l.Allow("a"); !res.Allowed || res.Limit != 1 {
		t.Fatalf("result = %+v, want allowed with burst 1", res)
	}
	if res := l.Allow("a"); res.Allowed {
		t.Error("expected second request to be rejected")
	}
}

func TestLimiter_ConcurrencyOnly(t *testing.T) {
	l := New(config.RateLimitConfig{MaxConcurrentCompiles: 1})

	if res := l.Allow("a"); !res.Allowed {
		t.Error("rate check should be disabled")
	}
	if res := l.Acquire(); !res.Allowed {
		t.Fatal("expected first compile slot")
	}
	if res := l.Acquire(); res.Allowed || res.Reason == "" {
		t.Errorf("result = %+v, want rejection with a reason", res)
	}
	l.Release()
	if res := l.Acquire(); !res.Allowed {
		t.Error("expected slot after release")
	}
}

func TestLimiter_EvictsIdleClients(t *testing.T) {
	clock := newFakeClock()
	l := New(config.RateLimitConfig{RequestsPerSecond: 10},
		WithClock(clock.Now),
		WithIdleTTL(time.Minute),
	)

	l.Allow("a")
	l.Allow("b")
	if l.Clients() != 2 {
		t.Fatalf("clients = %d, want 2", l.Clients())
	}

	clock.Advance(2 * time.Minute)
	l.Allow("c")
	if l.Clients() != 1 {
		t.Errorf("clients = %d after idle sweep, want 1", l.Clients())
	}
}
