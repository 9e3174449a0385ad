package gateio

import (
	"fmt"
	"strings"

	"github.com/kvantic-labs/xvenue/internal/model"
)

// SymbolMapper maps canonical Symbol <-> Gate.io's underscore-separated pair
// string (e.g. "BTC_USDT"), identical in shape for spot and futures.
type SymbolMapper struct {
	pairSet map[string]bool
}

func NewSymbolMapper(known []model.SymbolInfo) *SymbolMapper {
	m := &SymbolMapper{pairSet: make(map[string]bool, len(known))}
	for _, si := range known {
		pair, _ := m.ToPair(si.Symbol)
		m.pairSet[pair] = true
	}
	return m
}

func (m *SymbolMapper) ToPair(s model.Symbol) (string, error) {
	if s.IsZero() {
		return "", fmt.Errorf("gateio: empty symbol")
	}
	return strings.ToUpper(s.Base) + "_" + strings.ToUpper(s.Quote), nil
}

func (m *SymbolMapper) ToSymbol(pair string) (model.Symbol, error) {
	parts := strings.SplitN(strings.ToUpper(pair), "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return model.Symbol{}, fmt.Errorf("gateio: cannot split pair %q into base/quote", pair)
	}
	return model.Symbol{Base: parts[0], Quote: parts[1]}, nil
}

func (m *SymbolMapper) IsSupportedPair(pair string) bool {
	if len(m.pairSet) == 0 {
		return true
	}
	return m.pairSet[strings.ToUpper(pair)]
}
