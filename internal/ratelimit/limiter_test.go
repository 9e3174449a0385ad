package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_AcquirePermit(t *testing.T) {
	l := New()
	if err := l.Register(Config{Venue: "test", RequestsPerSecond: 10, Burst: 5}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	ctx := context.Background()

	t.Run("allows requests within burst", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			if err := l.AcquirePermit(ctx, "test", "trades"); err != nil {
				t.Errorf("request %d should be allowed: %v", i, err)
			}
		}
	})

	t.Run("fails fast when the wait would pass the deadline", func(t *testing.T) {
		if err := l.Register(Config{Venue: "restrictive", RequestsPerSecond: 1, Burst: 1}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if err := l.AcquirePermit(ctx, "restrictive", "x"); err != nil {
			t.Fatalf("first call should be allowed: %v", err)
		}
		tight, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
		defer cancel()
		if err := l.AcquirePermit(tight, "restrictive", "x"); err == nil {
			t.Error("expected fail-fast rate limit error when deadline is too tight")
		}
	})

	t.Run("unregistered venue fails fast", func(t *testing.T) {
		if err := l.AcquirePermit(ctx, "nope", "x"); err == nil {
			t.Error("expected error for unregistered venue")
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Venue: "v", RequestsPerSecond: 20, Burst: 10}, false},
		{"zero rps", Config{Venue: "v", RequestsPerSecond: 0, Burst: 10}, true},
		{"over 1000 rps", Config{Venue: "v", RequestsPerSecond: 1001, Burst: 10}, true},
		{"zero burst", Config{Venue: "v", RequestsPerSecond: 5, Burst: 0}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}
