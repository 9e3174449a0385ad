package mexc

import (
	"fmt"
	"strings"

	"github.com/kvantic-labs/xvenue/internal/model"
)

// SymbolMapper maps canonical Symbol <-> MEXC's concatenated pair string
// (e.g. "BTCUSDT", no separator).
type SymbolMapper struct {
	quotes  []string // longest-match-first quote assets, for ToSymbol parsing
	pairSet map[string]bool
}

func NewSymbolMapper(known []model.SymbolInfo) *SymbolMapper {
	m := &SymbolMapper{
		quotes:  []string{"USDT", "USDC", "BTC", "ETH", "MX"},
		pairSet: make(map[string]bool, len(known)),
	}
	for _, si := range known {
		pair, _ := m.ToPair(si.Symbol)
		m.pairSet[pair] = true
	}
	return m
}

func (m *SymbolMapper) ToPair(s model.Symbol) (string, error) {
	if s.IsZero() {
		return "", fmt.Errorf("mexc: empty symbol")
	}
	return strings.ToUpper(s.Base) + strings.ToUpper(s.Quote), nil
}

func (m *SymbolMapper) ToSymbol(pair string) (model.Symbol, error) {
	up := strings.ToUpper(pair)
	for _, q := range m.quotes {
		if strings.HasSuffix(up, q) && len(up) > len(q) {
			return model.Symbol{Base: up[:len(up)-len(q)], Quote: q}, nil
		}
	}
	return model.Symbol{}, fmt.Errorf("mexc: cannot split pair %q into base/quote", pair)
}

func (m *SymbolMapper) IsSupportedPair(pair string) bool {
	if len(m.pairSet) == 0 {
		return true // discovery not yet loaded; do not block on an empty cache
	}
	return m.pairSet[strings.ToUpper(pair)]
}
