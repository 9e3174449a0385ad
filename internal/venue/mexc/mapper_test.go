package mexc

import (
	"testing"

	"github.com/kvantic-labs/xvenue/internal/model"
)

func TestSymbolMapper_ToPair(t *testing.T) {
	m := NewSymbolMapper(nil)

	pair, err := m.ToPair(model.Symbol{Base: "btc", Quote: "usdt"})
	if err != nil {
		t.Fatalf("ToPair failed: %v", err)
	}
	if pair != "BTCUSDT" {
		t.Errorf("ToPair = %q, want BTCUSDT", pair)
	}

	if _, err := m.ToPair(model.Symbol{}); err == nil {
		t.Error("expected error for empty symbol")
	}
}

func TestSymbolMapper_ToSymbol(t *testing.T) {
	m := NewSymbolMapper(nil)

	cases := []struct {
		pair string
		base string
		quote string
		wantErr bool
	}{
		{"BTCUSDT", "BTC", "USDT", false},
		{"ETHUSDC", "ETH", "USDC", false},
		{"MX", "", "", true}, // equals the quote itself, leaving no base
		{"MXBTC", "MX", "BTC", false},
		{"XX", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.pair, func(t *testing.T) {
			sym, err := m.ToSymbol(tc.pair)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for pair %q, got %+v", tc.pair, sym)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToSymbol(%q) failed: %v", tc.pair, err)
			}
			if sym.Base != tc.base || sym.Quote != tc.quote {
				t.Errorf("ToSymbol(%q) = %+v, want {%s %s}", tc.pair, sym, tc.base, tc.quote)
			}
		})
	}
}

func TestSymbolMapper_IsSupportedPair(t *testing.T) {
	t.Run("empty cache allows everything", func(t *testing.T) {
		m := NewSymbolMapper(nil)
		if !m.IsSupportedPair("BTCUSDT") {
			t.Error("expected an empty discovery cache not to block lookups")
		}
	})

	t.Run("populated cache restricts to known pairs", func(t *testing.T) {
		m := NewSymbolMapper([]model.SymbolInfo{{Symbol: model.Symbol{Base: "BTC", Quote: "USDT"}}})
		if !m.IsSupportedPair("btcusdt") {
			t.Error("expected BTCUSDT to be supported (case-insensitive)")
		}
		if m.IsSupportedPair("ETHUSDT") {
			t.Error("expected ETHUSDT not to be supported")
		}
	})
}
