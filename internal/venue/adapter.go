// Package venue defines the canonical adapter contract every venue package
// (mexc, gateio) implements, per spec §4.6.
package venue

import (
	"context"

	"github.com/kvantic-labs/xvenue/internal/model"
)

// PublicSpot is the market-data surface every spot/futures venue exposes
// without authentication.
type PublicSpot interface {
	GetSymbolsInfo(ctx context.Context) ([]model.SymbolInfo, error)
	GetOrderbook(ctx context.Context, symbol model.Symbol, limit int) (model.OrderBook, error)
	GetRecentTrades(ctx context.Context, symbol model.Symbol, limit int) ([]model.Trade, error)
	GetHistoricalTrades(ctx context.Context, symbol model.Symbol, from, to *int64, limit int) ([]model.Trade, error)
	GetTicker(ctx context.Context, symbol *model.Symbol) ([]model.BookTicker, error)
	GetKlines(ctx context.Context, symbol model.Symbol, interval string, from, to *int64) ([]model.Kline, error)
	GetServerTime(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// PrivateSpot is the authenticated trading/account surface.
type PrivateSpot interface {
	GetBalances(ctx context.Context) ([]model.AssetBalance, error)
	GetAssetBalance(ctx context.Context, asset string) (model.AssetBalance, error)
	PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (model.Order, error)
	CancelOrder(ctx context.Context, symbol model.Symbol, orderID string) (model.Order, error)
	CancelAllOrders(ctx context.Context, symbol model.Symbol) error
	GetOrder(ctx context.Context, symbol model.Symbol, orderID string) (model.Order, error)
	GetOpenOrders(ctx context.Context, symbol *model.Symbol) ([]model.Order, error)
	GetHistoryOrders(ctx context.Context, symbol model.Symbol, start, end *int64, limit int) ([]model.Order, error)
	GetAccountTrades(ctx context.Context, symbol model.Symbol, orderID *string, start, end *int64, limit int) ([]model.Trade, error)
	ModifyOrder(ctx context.Context, symbol model.Symbol, orderID string, req model.PlaceOrderRequest) (model.Order, error)
	GetAssetsInfo(ctx context.Context) (map[string]AssetNetworks, error)
	GetTradingFees(ctx context.Context, symbol *model.Symbol) (model.Fees, error)
	SubmitWithdrawal(ctx context.Context, req model.WithdrawalRequest) (model.WithdrawalResponse, error)
	CancelWithdrawal(ctx context.Context, withdrawalID string) (bool, error)
	GetWithdrawalStatus(ctx context.Context, withdrawalID string) (model.WithdrawalResponse, error)
	GetWithdrawalHistory(ctx context.Context, asset *string, limit int) ([]model.WithdrawalResponse, error)
	GetDepositAddress(ctx context.Context, asset, network string) (string, error)
	GetDepositHistory(ctx context.Context, asset *string, limit int) ([]model.WithdrawalResponse, error)
}

// ListenKeyManager is implemented by venues that require a REST-minted
// listen key to authenticate private WebSocket channels (MEXC spot).
type ListenKeyManager interface {
	CreateListenKey(ctx context.Context) (string, error)
	KeepAliveListenKey(ctx context.Context, key string) error
	DeleteListenKey(ctx context.Context, key string) error
}

// PublicFutures extends PublicSpot with the perpetual-futures-only surface.
type PublicFutures interface {
	PublicSpot
	GetFundingRate(ctx context.Context, symbol model.Symbol) (model.FundingRate, error)
}

// PrivateFutures extends PrivateSpot with position management. Closing a
// position has no dedicated method: callers place a market order in the
// opposite side, per spec §4.6.
type PrivateFutures interface {
	PrivateSpot
	GetPositions(ctx context.Context) ([]model.Position, error)
	GetPosition(ctx context.Context, symbol model.Symbol) (model.Position, error)
	UpdatePositionMargin(ctx context.Context, symbol model.Symbol, delta float64) error
	UpdatePositionLeverage(ctx context.Context, symbol model.Symbol, leverage int) error
}

// AssetNetworks lists the chains an asset can move over, for withdrawal and
// deposit routing (chain-aware network list, per spec §4.6 getAssetsInfo).
type AssetNetworks struct {
	Asset    string
	Networks []NetworkInfo
}

type NetworkInfo struct {
	Network          string
	WithdrawEnabled  bool
	DepositEnabled   bool
	WithdrawFee      float64
	WithdrawMin      float64
}
