package xerrors

import (
	"errors"
	"testing"
)

func TestCategoryOf(t *testing.T) {
	cases := []struct {
		kind Kind
		want Category
	}{
		{KindInvalidCredentials, CategoryAuthentication},
		{KindSignatureMismatch, CategoryAuthentication},
		{KindInvalidSymbol, CategoryRequest},
		{KindOrderSizeError, CategoryTrading},
		{KindLiquidationImminent, CategoryFutures},
		{KindTimeout, CategoryTransport},
		{KindRateLimit, CategoryThrottling},
		{KindServiceUnavailable, CategoryServer},
		{Kind("somethingUnlisted"), CategoryUnknown},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			if got := CategoryOf(tc.kind); got != tc.want {
				t.Errorf("CategoryOf(%v) = %v, want %v", tc.kind, got, tc.want)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	retryable := []Kind{KindRateLimit, KindRequestExpired, KindConnectionError, KindTimeout,
		KindServerError, KindServiceUnavailable, KindMaintenance}
	for _, k := range retryable {
		if !Retryable(k) {
			t.Errorf("Retryable(%v) = false, want true", k)
		}
	}

	terminal := []Kind{KindInvalidCredentials, KindInvalidSymbol, KindOrderNotFound,
		KindInsufficientBalance, KindLeverageOutOfRange, KindUnknown}
	for _, k := range terminal {
		if Retryable(k) {
			t.Errorf("Retryable(%v) = true, want false", k)
		}
	}
}

func TestError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("network reset")
	e := New("mexc", KindTimeout, 0, "", "request timed out").WithWrapped(cause)

	if e.Category != CategoryTransport {
		t.Errorf("Category = %v, want %v", e.Category, CategoryTransport)
	}
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to unwrap to the wrapped cause")
	}
	if e.Error() == "" {
		t.Error("expected a non-empty formatted error string")
	}
	if e.CorrelationID == "" {
		t.Error("expected New to assign a correlation ID")
	}
	if !e.Retryable() {
		t.Error("expected KindTimeout error to be retryable")
	}
}

func TestError_CorrelationIDsAreUnique(t *testing.T) {
	a := New("mexc", KindTimeout, 0, "", "x")
	b := New("mexc", KindTimeout, 0, "", "x")
	if a.CorrelationID == b.CorrelationID {
		t.Error("expected distinct correlation IDs across separate errors")
	}
}
