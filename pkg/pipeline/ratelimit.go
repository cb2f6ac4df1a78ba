package pipeline

import (
	"context"
	"sync"
	"time"

	"mgv-hq/ganymede/pkg/config"
)

// HostLimiter is the politeness limiter for download-phase tasks: one
// token bucket per remote host, so a parallel run never hammers a single
// provider no matter how many genomes pull from it. Hosts are independent;
// a slow Ensembl mirror does not throttle an NCBI fetch.
type HostLimiter struct {
	rate  float64
	burst int64

	mu      sync.Mutex
	buckets map[string]*tokenBucket
}

// NewHostLimiter creates a per-host limiter from the configured rate. A
// nil config or a zero rate disables limiting; Wait then returns
// immediately.
func NewHostLimiter(cfg *config.RateConfig) *HostLimiter {
	l := &HostLimiter{
		buckets: make(map[string]*tokenBucket),
	}
	if cfg == nil || cfg.RequestsPerSecond <= 0 {
		return l
	}

	l.rate = cfg.RequestsPerSecond
	l.burst = int64(cfg.Burst)
	if l.burst < 1 {
		l.burst = 1
	}
	return l
}

// Enabled reports whether the limiter enforces a rate.
func (l *HostLimiter) Enabled() bool {
	return l.rate > 0
}

// Wait blocks until the host's bucket has a token or ctx is done. An
// empty host or a disabled limiter passes immediately.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if host == "" || !l.Enabled() {
		return nil
	}

	bucket := l.bucket(host)
	for {
		if bucket.take(1) {
			return nil
		}

		wait := bucket.timeUntilAvailable(1)
		if wait <= 0 {
			// Tokens refilled between the two calls.
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// bucket returns the host's token bucket, creating it on first use.
func (l *HostLimiter) bucket(host string) *tokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[host]
	if !ok {
		b = newTokenBucket(l.burst, l.rate)
		l.buckets[host] = b
	}
	return b
}

// Hosts returns the hosts that have been rate limited so far.
func (l *HostLimiter) Hosts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	hosts := make([]string, 0, len(l.buckets))
	for host := range l.buckets {
		hosts = append(hosts, host)
	}
	return hosts
}

// tokenBucket allows bursts up to its capacity while holding an average
// rate over time. Tokens refill continuously at refillRate per second;
// each request consumes one.
type tokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(capacity int64, refillRate float64) *tokenBucket {
	return &tokenBucket{
		capacity:   capacity,
		tokens:     capacity, // Start full
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// take attempts to consume n tokens, refilling for elapsed time first.
func (tb *tokenBucket) take(n int64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()

	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

// timeUntilAvailable returns how long until n tokens will be available,
// or 0 when they already are.
func (tb *tokenBucket) timeUntilAvailable(n int64) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()

	if tb.tokens >= n {
		return 0
	}

	needed := n - tb.tokens
	seconds := float64(needed) / tb.refillRate
	return time.Duration(seconds * float64(time.Second))
}

// refillLocked adds tokens for the time elapsed since the last refill.
// Caller must hold the lock.
func (tb *tokenBucket) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	toAdd := int64(elapsed.Seconds() * tb.refillRate)
	if toAdd > 0 {
		tb.tokens += toAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}
}
