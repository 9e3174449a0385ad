package model

import "time"

// BookTicker is a best bid/ask snapshot. It is never cached: callers must
// read the latest WS push or issue a fresh REST fetch every time.
type BookTicker struct {
	Symbol    Symbol
	Venue     string
	BidPrice  float64
	BidQty    float64
	AskPrice  float64
	AskQty    float64
	Timestamp time.Time
}

// SpreadPct returns the bid/ask spread as a percentage of the bid price.
func (t BookTicker) SpreadPct() float64 {
	if t.BidPrice == 0 {
		return 0
	}
	return (t.AskPrice - t.BidPrice) / t.BidPrice * 100
}

// PriceLevel is a single order book level.
type PriceLevel struct {
	Price float64
	Size  float64
}

// OrderBook holds ordered bids (desc) and asks (asc) with a monotonic
// timestamp, per spec §3.
type OrderBook struct {
	Symbol    Symbol
	Venue     string
	Bids      []PriceLevel
	Asks      []PriceLevel
	Timestamp time.Time
}

// Kline is an OHLCV candlestick.
type Kline struct {
	Symbol      Symbol
	Interval    string
	OpenTime    time.Time
	CloseTime   time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	QuoteVolume float64
	TradeCount  int64
}

// Fees is the maker/taker fee schedule for a symbol.
type Fees struct {
	MakerPct float64
	TakerPct float64
}

// SymbolInfo is precision/limits/fee metadata for a symbol, refreshed on a
// TTL (default 5 minutes) and never consulted on the hot path after caching.
type SymbolInfo struct {
	Symbol           Symbol
	BasePrecision    int
	QuotePrecision   int
	MinBaseQty       float64
	MinQuoteQty      float64
	TickSize         float64
	StepSize         float64
	Fees             Fees
	IsFutures        bool
	TradingActive    bool
	RefreshedAt      time.Time
}

// Stale reports whether the SymbolInfo is older than ttl.
func (si SymbolInfo) Stale(ttl time.Duration, now time.Time) bool {
	return now.Sub(si.RefreshedAt) > ttl
}

// FundingRate is a perpetual futures funding rate snapshot.
type FundingRate struct {
	Symbol          Symbol
	Rate            float64
	NextFundingTime time.Time
	Timestamp       time.Time
}

// WithdrawalRequest is the canonical input to submit a withdrawal.
type WithdrawalRequest struct {
	Asset   string
	Network string
	Address string
	Amount  float64
	Memo    string
}

// WithdrawalStatus is the canonical lifecycle of a withdrawal.
type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "PENDING"
	WithdrawalProcessing WithdrawalStatus = "PROCESSING"
	WithdrawalCompleted WithdrawalStatus = "COMPLETED"
	WithdrawalFailed    WithdrawalStatus = "FAILED"
	WithdrawalCancelled WithdrawalStatus = "CANCELLED"
)

// WithdrawalResponse is the canonical response to a withdrawal submission or
// status query.
type WithdrawalResponse struct {
	WithdrawalID string
	Asset        string
	Amount       float64
	Status       WithdrawalStatus
	TxID         string
	Timestamp    time.Time
}
