// Package retrier implements per-venue REST retry policy: exponential
// backoff with jitter for transient transport errors, a longer doubling
// delay for rate limits, and a short fixed-delay timestamp-refresh retry for
// requestExpired. It is the Go counterpart of the original implementation's
// retry_decorator / mexc_retry / gateio_retry family.
package retrier

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvantic-labs/xvenue/internal/xerrors"
)

// Backoff is the strategy used for ordinary transport-error retries.
type Backoff string

const (
	BackoffExponential Backoff = "exponential"
	BackoffLinear       Backoff = "linear"
	BackoffFixed        Backoff = "fixed"
)

// Config tunes retry behaviour for a single venue, mirroring mexc_retry's
// shorter max delay versus gateio_retry's longer base delay.
type Config struct {
	MaxAttempts     int
	Backoff         Backoff
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	RateLimitBase   time.Duration // base delay used specifically on KindRateLimit
	RecvWindowDelay time.Duration // fixed fast-retry delay on KindRequestExpired
	JitterFraction  float64       // 0..1, applied on top of the computed delay
}

// MEXCConfig reflects mexc_retry's "good performance, shorter max delay" tuning.
func MEXCConfig() Config {
	return Config{
		MaxAttempts:     3,
		Backoff:         BackoffExponential,
		BaseDelay:       100 * time.Millisecond,
		MaxDelay:        2 * time.Second,
		RateLimitBase:   200 * time.Millisecond,
		RecvWindowDelay: 100 * time.Millisecond,
		JitterFraction:  0.25,
	}
}

// GateioConfig reflects gateio_retry's "benefits from slightly longer delays" tuning.
func GateioConfig() Config {
	return Config{
		MaxAttempts:     3,
		Backoff:         BackoffExponential,
		BaseDelay:       200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		RateLimitBase:   400 * time.Millisecond,
		RecvWindowDelay: 150 * time.Millisecond,
		JitterFraction:  0.25,
	}
}

// RefreshTimestamper lets the retrier ask an authenticator to resync its
// clock offset before re-signing a requestExpired retry, matching
// RecvWindowError handling in the original retry decorator.
type RefreshTimestamper interface {
	RefreshTimestamp()
}

// Op is a single REST attempt. A non-nil *xerrors.Error return distinguishes
// classified venue errors (which drive retry policy) from opaque Go errors
// (network-level failures, always treated as connectionError-equivalent).
type Op func(ctx context.Context, attempt int) (*xerrors.Error, error)

// Do runs op up to cfg.MaxAttempts times, sleeping between attempts per the
// matching error kind. It never retries an error that xerrors.Retryable
// reports as terminal (e.g. orderNotFound, insufficientBalance): those
// surface on the first attempt exactly like OrderNotFoundError and
// OrderCancelledOrFilled bypass the original Python decorator entirely.
func Do(ctx context.Context, cfg Config, auth RefreshTimestamper, log zerolog.Logger, opName string, op Op) (*xerrors.Error, error) {
	var lastXErr *xerrors.Error
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		xerr, err := op(ctx, attempt)
		if xerr == nil && err == nil {
			return nil, nil
		}
		lastXErr, lastErr = xerr, err

		if attempt == cfg.MaxAttempts {
			break
		}

		var delay time.Duration
		switch {
		case xerr != nil && xerr.Kind == xerrors.KindRequestExpired:
			if auth != nil {
				auth.RefreshTimestamp()
			}
			delay = cfg.RecvWindowDelay
			log.Warn().Str("op", opName).Int("attempt", attempt).Msg("requestExpired, refreshing timestamp and retrying")
		case xerr != nil && xerr.Kind == xerrors.KindRateLimit:
			delay = rateLimitDelay(cfg, attempt)
			if xerr.RetryAfter > 0 && xerr.RetryAfter > delay {
				delay = xerr.RetryAfter
			}
			log.Warn().Str("op", opName).Int("attempt", attempt).Dur("delay", delay).Msg("rate limited, backing off")
		case xerr != nil && !xerr.Retryable():
			return xerr, err
		case xerr != nil:
			delay = transportDelay(cfg, attempt)
			log.Debug().Str("op", opName).Int("attempt", attempt).Dur("delay", delay).Msg("retryable venue error")
		default:
			// Unclassified Go error (dial failure, context deadline, etc.)
			// is treated the way ExchangeConnectionRestError is: always retryable.
			delay = transportDelay(cfg, attempt)
			log.Debug().Str("op", opName).Int("attempt", attempt).Dur("delay", delay).Err(err).Msg("transport error, retrying")
		}

		select {
		case <-ctx.Done():
			return lastXErr, ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastXErr, lastErr
}

func transportDelay(cfg Config, attempt int) time.Duration {
	var delay time.Duration
	switch cfg.Backoff {
	case BackoffLinear:
		delay = cfg.BaseDelay * time.Duration(attempt)
	case BackoffFixed:
		delay = cfg.BaseDelay
	default:
		delay = cfg.BaseDelay * time.Duration(1<<uint(attempt-1))
	}
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return withJitter(delay, cfg.JitterFraction)
}

func rateLimitDelay(cfg Config, attempt int) time.Duration {
	delay := cfg.RateLimitBase * time.Duration(1<<uint(attempt))
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return withJitter(delay, cfg.JitterFraction)
}

func withJitter(delay time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return delay
	}
	jitter := time.Duration(float64(delay) * fraction * rand.Float64())
	return delay + jitter
}
