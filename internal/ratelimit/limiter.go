// Package ratelimit implements the per-venue, per-endpoint token-bucket rate
// limiter described in spec §4.3, grounded on
// src/infrastructure/datafacade/middleware/rate_limiter.go's
// TokenBucketRateLimiter, rebuilt around golang.org/x/time/rate instead of a
// hand-rolled bucket.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kvantic-labs/xvenue/internal/xerrors"
)

// Config declares one venue's rate-limiting knobs. RequestsPerSecond must be
// in (0, 1000] per the HFT enforcement rule in spec §4.3.
type Config struct {
	Venue             string
	RequestsPerSecond float64
	Burst             int
	// EndpointRPS optionally overrides RequestsPerSecond for specific
	// endpoint classes (e.g. order placement vs public market data).
	EndpointRPS map[string]float64
	EndpointBurst map[string]int
}

// Validate enforces the HFT construction-time bounds from spec §4.3.
func (c Config) Validate() error {
	if c.RequestsPerSecond <= 0 || c.RequestsPerSecond > 1000 {
		return fmt.Errorf("ratelimit: requestsPerSecond must be in (0,1000], got %v", c.RequestsPerSecond)
	}
	if c.Burst <= 0 {
		return fmt.Errorf("ratelimit: burst must be positive")
	}
	return nil
}

type venueBucket struct {
	global    *rate.Limiter
	endpoints map[string]*rate.Limiter
	mu        sync.Mutex
}

// Limiter is a per-venue rate limiter with a shared global bucket and
// optional per-endpoint-class buckets, matching the two-tier design of
// venueRateLimiter in the teacher.
type Limiter struct {
	mu      sync.RWMutex
	venues  map[string]*venueBucket
}

// New creates an empty Limiter; venues must be registered via Register.
func New() *Limiter {
	return &Limiter{venues: make(map[string]*venueBucket)}
}

// Register installs or replaces the bucket configuration for a venue.
func (l *Limiter) Register(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	vb := &venueBucket{
		global:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		endpoints: make(map[string]*rate.Limiter),
	}
	for endpoint, rps := range cfg.EndpointRPS {
		burst := cfg.EndpointBurst[endpoint]
		if burst <= 0 {
			burst = 1
		}
		vb.endpoints[endpoint] = rate.NewLimiter(rate.Limit(rps), burst)
	}
	l.mu.Lock()
	l.venues[cfg.Venue] = vb
	l.mu.Unlock()
	return nil
}

// AcquirePermit blocks until a token is available on both the endpoint bucket
// (if configured) and the venue's global bucket, or until ctx is done /
// deadline exceeded, in which case it fails fast with a retryable rateLimit
// error per spec §4.3's backpressure rule.
func (l *Limiter) AcquirePermit(ctx context.Context, venue, endpoint string) error {
	l.mu.RLock()
	vb, ok := l.venues[venue]
	l.mu.RUnlock()
	if !ok {
		return xerrors.New(venue, xerrors.KindRateLimit, 0, "", "no rate limiter configured for venue "+venue)
	}

	vb.mu.Lock()
	endpointLimiter := vb.endpoints[endpoint]
	vb.mu.Unlock()

	if endpointLimiter != nil {
		if err := endpointLimiter.Wait(ctx); err != nil {
			return rateLimitErr(venue, err)
		}
	}
	if err := vb.global.Wait(ctx); err != nil {
		return rateLimitErr(venue, err)
	}
	return nil
}

// ReleasePermit is a no-op for strict token-bucket rate limiting, present for
// API symmetry with acquire per spec §4.3.
func (l *Limiter) ReleasePermit(venue, endpoint string) {}

func rateLimitErr(venue string, cause error) *xerrors.Error {
	return xerrors.New(venue, xerrors.KindRateLimit, 0, "", "rate limit wait aborted: "+cause.Error()).WithWrapped(cause)
}

// ProcessHeaders lets an adapter feed venue-supplied rate-limit headers (e.g.
// Binance/MEXC X-MBX-USED-WEIGHT, Gate.io/OKX ratelimit-remaining) back into
// the limiter so future AcquirePermit calls react to server-observed usage. This
// mirrors TokenBucketRateLimiter.ProcessRateLimitHeaders in the teacher; here
// it only affects the retry-after gate, since golang.org/x/time/rate owns the
// steady-state token accounting.
func (l *Limiter) ProcessHeaders(venue string, headers map[string]string, now time.Time) {
	retryAfter, ok := headers["Retry-After"]
	if !ok {
		return
	}
	l.mu.RLock()
	vb, exists := l.venues[venue]
	l.mu.RUnlock()
	if !exists {
		return
	}
	var seconds int
	if _, err := fmt.Sscanf(retryAfter, "%d", &seconds); err != nil || seconds <= 0 {
		return
	}
	vb.mu.Lock()
	// Drop the global bucket's burst to zero for retryAfter: until it is
	// restored, AcquirePermit fails at once with a rateLimit error, since
	// rate.Limiter.Wait rejects any request larger than the burst.
	originalBurst := vb.global.Burst()
	vb.global.SetBurst(0)
	time.AfterFunc(time.Duration(seconds)*time.Second, func() {
		vb.mu.Lock()
		vb.global.SetBurst(originalBurst)
		vb.mu.Unlock()
	})
	vb.mu.Unlock()
}
