package classify

import (
	"testing"

	"github.com/kvantic-labs/xvenue/internal/xerrors"
)

func TestMEXCClassifier_Classify(t *testing.T) {
	c := NewMEXCClassifier()

	t.Run("known code maps to kind", func(t *testing.T) {
		got := c.Classify(400, []byte(`{"code":-2010,"msg":"Insufficient balance."}`))
		if got.Kind != xerrors.KindInsufficientBalance {
			t.Errorf("Kind = %s, want %s", got.Kind, xerrors.KindInsufficientBalance)
		}
		if got.VenueCode != "-2010" {
			t.Errorf("VenueCode = %s, want -2010", got.VenueCode)
		}
		if got.Retryable() {
			t.Error("insufficient balance should not be retryable")
		}
	})

	t.Run("rate limit code is retryable", func(t *testing.T) {
		got := c.Classify(429, []byte(`{"code":-1003,"msg":"Too many requests."}`))
		if !got.Retryable() {
			t.Error("rate limit should be retryable")
		}
	})

	t.Run("unknown code falls back by status", func(t *testing.T) {
		got := c.Classify(500, []byte(`{"code":-9999,"msg":"weird"}`))
		if got.Kind != xerrors.KindServerError {
			t.Errorf("Kind = %s, want %s", got.Kind, xerrors.KindServerError)
		}
	})

	t.Run("undecodable body falls back to status only", func(t *testing.T) {
		got := c.Classify(403, []byte(`not json`))
		if got.Kind != xerrors.KindInvalidCredentials {
			t.Errorf("Kind = %s, want %s", got.Kind, xerrors.KindInvalidCredentials)
		}
	})

	t.Run("2xx classifies to nil", func(t *testing.T) {
		if got := c.Classify(200, []byte(`{}`)); got != nil {
			t.Errorf("expected nil for 2xx, got %v", got)
		}
	})
}

func TestGateioClassifier_Classify(t *testing.T) {
	c := NewGateioClassifier()

	t.Run("known label maps to kind", func(t *testing.T) {
		got := c.Classify(400, []byte(`{"label":"BALANCE_NOT_ENOUGH","message":"balance not enough"}`))
		if got.Kind != xerrors.KindInsufficientBalance {
			t.Errorf("Kind = %s, want %s", got.Kind, xerrors.KindInsufficientBalance)
		}
		if got.VenueCode != "BALANCE_NOT_ENOUGH" {
			t.Errorf("VenueCode = %s, want BALANCE_NOT_ENOUGH", got.VenueCode)
		}
	})

	t.Run("futures-only label maps to futures kind", func(t *testing.T) {
		got := c.Classify(400, []byte(`{"label":"LIQUIDATE_IMMEDIATELY","message":"would liquidate"}`))
		if got.Kind != xerrors.KindLiquidationImminent {
			t.Errorf("Kind = %s, want %s", got.Kind, xerrors.KindLiquidationImminent)
		}
		if got.Retryable() {
			t.Error("liquidation imminent should not be retryable")
		}
	})

	t.Run("unknown label falls back by status", func(t *testing.T) {
		got := c.Classify(503, []byte(`{"label":"SOME_NEW_LABEL","message":"?"}`))
		if got.Kind != xerrors.KindServiceUnavailable {
			t.Errorf("Kind = %s, want %s", got.Kind, xerrors.KindServiceUnavailable)
		}
		if !got.Retryable() {
			t.Error("service unavailable should be retryable")
		}
	})

	t.Run("undecodable body falls back to status only", func(t *testing.T) {
		got := c.Classify(429, []byte(`<html>not json</html>`))
		if got.Kind != xerrors.KindRateLimit {
			t.Errorf("Kind = %s, want %s", got.Kind, xerrors.KindRateLimit)
		}
	})

	t.Run("2xx classifies to nil", func(t *testing.T) {
		if got := c.Classify(200, []byte(`{}`)); got != nil {
			t.Errorf("expected nil for 2xx, got %v", got)
		}
	})
}
