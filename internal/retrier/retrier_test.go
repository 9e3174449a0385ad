package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvantic-labs/xvenue/internal/xerrors"
)

type fakeAuth struct{ refreshes int }

func (f *fakeAuth) RefreshTimestamp() { f.refreshes++ }

func fastConfig() Config {
	c := MEXCConfig()
	c.BaseDelay = time.Millisecond
	c.MaxDelay = 5 * time.Millisecond
	c.RateLimitBase = time.Millisecond
	c.RecvWindowDelay = time.Millisecond
	c.JitterFraction = 0
	return c
}

func TestDo_SucceedsWithoutRetry(t *testing.T) {
	calls := 0
	xerr, err := Do(context.Background(), fastConfig(), nil, zerolog.Nop(), "test", func(ctx context.Context, attempt int) (*xerrors.Error, error) {
		calls++
		return nil, nil
	})
	if xerr != nil || err != nil {
		t.Fatalf("expected success, got xerr=%v err=%v", xerr, err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_TerminalErrorDoesNotRetry(t *testing.T) {
	calls := 0
	xerr, _ := Do(context.Background(), fastConfig(), nil, zerolog.Nop(), "test", func(ctx context.Context, attempt int) (*xerrors.Error, error) {
		calls++
		return xerrors.New("mexc", xerrors.KindOrderNotFound, 400, "-2013", "not found"), nil
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (terminal error must not retry)", calls)
	}
	if xerr == nil || xerr.Kind != xerrors.KindOrderNotFound {
		t.Errorf("unexpected xerr: %v", xerr)
	}
}

func TestDo_RequestExpiredRefreshesTimestampAndRetries(t *testing.T) {
	auth := &fakeAuth{}
	calls := 0
	xerr, _ := Do(context.Background(), fastConfig(), auth, zerolog.Nop(), "test", func(ctx context.Context, attempt int) (*xerrors.Error, error) {
		calls++
		if attempt < 2 {
			return xerrors.New("mexc", xerrors.KindRequestExpired, 400, "-1021", "timestamp out of recvWindow"), nil
		}
		return nil, nil
	})
	if xerr != nil {
		t.Errorf("expected eventual success, got %v", xerr)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if auth.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", auth.refreshes)
	}
}

func TestDo_RateLimitHonoursRetryAfter(t *testing.T) {
	calls := 0
	start := time.Now()
	xerr, _ := Do(context.Background(), fastConfig(), nil, zerolog.Nop(), "test", func(ctx context.Context, attempt int) (*xerrors.Error, error) {
		calls++
		if attempt < 2 {
			e := xerrors.New("gateio", xerrors.KindRateLimit, 429, "TOO_MANY_REQUESTS", "slow down")
			e.RetryAfter = 20 * time.Millisecond
			return e, nil
		}
		return nil, nil
	})
	if xerr != nil {
		t.Errorf("expected eventual success, got %v", xerr)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected to honour RetryAfter of 20ms, only waited %v", elapsed)
	}
}

func TestDo_TransportErrorRetriesUpToMaxAttempts(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 3
	calls := 0
	wantErr := errors.New("dial tcp: connection refused")
	_, err := Do(context.Background(), cfg, nil, zerolog.Nop(), "test", func(ctx context.Context, attempt int) (*xerrors.Error, error) {
		calls++
		return nil, wantErr
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestDo_ContextCancellationStopsRetryLoop(t *testing.T) {
	cfg := fastConfig()
	cfg.BaseDelay = 50 * time.Millisecond
	cfg.MaxDelay = 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(2 * time.Millisecond)
		cancel()
	}()
	_, err := Do(ctx, cfg, nil, zerolog.Nop(), "test", func(ctx context.Context, attempt int) (*xerrors.Error, error) {
		calls++
		return nil, errors.New("connection reset")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (cancelled during the first backoff sleep)", calls)
	}
}
