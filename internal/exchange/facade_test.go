package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvantic-labs/xvenue/internal/model"
	"github.com/kvantic-labs/xvenue/internal/venue"
	"github.com/kvantic-labs/xvenue/internal/wschannel"
)

// fakePublic is a hand-rolled venue.PublicSpot test double, matching the
// teacher's preference for fakes over a mocking framework.
type fakePublic struct {
	infos      []model.SymbolInfo
	infosErr   error
	tickers    []model.BookTicker
	tickersErr error
}

func (f *fakePublic) GetSymbolsInfo(ctx context.Context) ([]model.SymbolInfo, error) {
	return f.infos, f.infosErr
}
func (f *fakePublic) GetOrderbook(ctx context.Context, symbol model.Symbol, limit int) (model.OrderBook, error) {
	return model.OrderBook{}, nil
}
func (f *fakePublic) GetRecentTrades(ctx context.Context, symbol model.Symbol, limit int) ([]model.Trade, error) {
	return nil, nil
}
func (f *fakePublic) GetHistoricalTrades(ctx context.Context, symbol model.Symbol, from, to *int64, limit int) ([]model.Trade, error) {
	return nil, nil
}
func (f *fakePublic) GetTicker(ctx context.Context, symbol *model.Symbol) ([]model.BookTicker, error) {
	return f.tickers, f.tickersErr
}
func (f *fakePublic) GetKlines(ctx context.Context, symbol model.Symbol, interval string, from, to *int64) ([]model.Kline, error) {
	return nil, nil
}
func (f *fakePublic) GetServerTime(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakePublic) Ping(ctx context.Context) error                   { return nil }

// fakePrivate is a hand-rolled venue.PrivateSpot test double.
type fakePrivate struct {
	balances   map[string]model.AssetBalance
	orders     map[string]model.Order
	placeErr   error
	cancelErr  error
	getOrderErr error
}

func newFakePrivate() *fakePrivate {
	return &fakePrivate{balances: make(map[string]model.AssetBalance), orders: make(map[string]model.Order)}
}

func (f *fakePrivate) GetBalances(ctx context.Context) ([]model.AssetBalance, error) { return nil, nil }
func (f *fakePrivate) GetAssetBalance(ctx context.Context, asset string) (model.AssetBalance, error) {
	b, ok := f.balances[asset]
	if !ok {
		return model.AssetBalance{}, errors.New("not found")
	}
	return b, nil
}
func (f *fakePrivate) PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (model.Order, error) {
	if f.placeErr != nil {
		return model.Order{}, f.placeErr
	}
	o := model.Order{OrderID: "1", Symbol: req.Symbol, Side: req.Side, Quantity: req.Quantity}
	f.orders[o.OrderID] = o
	return o, nil
}
func (f *fakePrivate) CancelOrder(ctx context.Context, symbol model.Symbol, orderID string) (model.Order, error) {
	if f.cancelErr != nil {
		return model.Order{}, f.cancelErr
	}
	o := f.orders[orderID]
	o.Status = model.OrderStatusCancelled
	return o, nil
}
func (f *fakePrivate) CancelAllOrders(ctx context.Context, symbol model.Symbol) error { return nil }
func (f *fakePrivate) GetOrder(ctx context.Context, symbol model.Symbol, orderID string) (model.Order, error) {
	if f.getOrderErr != nil {
		return model.Order{}, f.getOrderErr
	}
	return f.orders[orderID], nil
}
func (f *fakePrivate) GetOpenOrders(ctx context.Context, symbol *model.Symbol) ([]model.Order, error) {
	return nil, nil
}
func (f *fakePrivate) GetHistoryOrders(ctx context.Context, symbol model.Symbol, start, end *int64, limit int) ([]model.Order, error) {
	return nil, nil
}
func (f *fakePrivate) GetAccountTrades(ctx context.Context, symbol model.Symbol, orderID *string, start, end *int64, limit int) ([]model.Trade, error) {
	return nil, nil
}
func (f *fakePrivate) ModifyOrder(ctx context.Context, symbol model.Symbol, orderID string, req model.PlaceOrderRequest) (model.Order, error) {
	return model.Order{}, nil
}
func (f *fakePrivate) GetAssetsInfo(ctx context.Context) (map[string]venue.AssetNetworks, error) {
	return nil, nil
}
func (f *fakePrivate) GetTradingFees(ctx context.Context, symbol *model.Symbol) (model.Fees, error) {
	return model.Fees{}, nil
}
func (f *fakePrivate) SubmitWithdrawal(ctx context.Context, req model.WithdrawalRequest) (model.WithdrawalResponse, error) {
	return model.WithdrawalResponse{}, nil
}
func (f *fakePrivate) CancelWithdrawal(ctx context.Context, withdrawalID string) (bool, error) {
	return false, nil
}
func (f *fakePrivate) GetWithdrawalStatus(ctx context.Context, withdrawalID string) (model.WithdrawalResponse, error) {
	return model.WithdrawalResponse{}, nil
}
func (f *fakePrivate) GetWithdrawalHistory(ctx context.Context, asset *string, limit int) ([]model.WithdrawalResponse, error) {
	return nil, nil
}
func (f *fakePrivate) GetDepositAddress(ctx context.Context, asset, network string) (string, error) {
	return "", nil
}
func (f *fakePrivate) GetDepositHistory(ctx context.Context, asset *string, limit int) ([]model.WithdrawalResponse, error) {
	return nil, nil
}

func testSymbol() model.Symbol { return model.Symbol{Base: "BTC", Quote: "USDT"} }

func newTestFacade(public *fakePublic, private *fakePrivate) *Facade {
	reg := wschannel.New("test", nil, nil, 16, nil, zerolog.Nop())
	var priv venue.PrivateSpot
	if private != nil {
		priv = private
	}
	return New(Config{Kind: model.ExchangeMEXCSpot}, public, priv, nil, nil, reg, nil, zerolog.Nop())
}

func TestFacade_PlaceOrderRequiresPrivate(t *testing.T) {
	f := newTestFacade(&fakePublic{}, nil)
	_, err := f.PlaceOrder(context.Background(), model.PlaceOrderRequest{})
	if err == nil {
		t.Error("expected error placing an order with no private API configured")
	}
}

func TestFacade_PlaceOrderDelegatesToPrivate(t *testing.T) {
	priv := newFakePrivate()
	f := newTestFacade(&fakePublic{}, priv)
	order, err := f.PlaceOrder(context.Background(), model.PlaceOrderRequest{Symbol: testSymbol(), Quantity: 1})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if order.OrderID != "1" {
		t.Errorf("OrderID = %q, want 1", order.OrderID)
	}
}

func TestFacade_MinQuoteQtyZeroWhenUnloaded(t *testing.T) {
	f := newTestFacade(&fakePublic{}, nil)
	if got := f.MinQuoteQty(testSymbol()); got != 0 {
		t.Errorf("MinQuoteQty() = %v, want 0 for an unloaded symbol", got)
	}
}

func TestFacade_SymbolInfoCachesUntilTTLExpires(t *testing.T) {
	sym := testSymbol()
	public := &fakePublic{infos: []model.SymbolInfo{{Symbol: sym, MinQuoteQty: 5, RefreshedAt: time.Now()}}}
	f := newTestFacade(public, nil)
	f.cfg.SymbolInfoTTL = time.Hour

	si, err := f.SymbolInfo(context.Background(), sym)
	if err != nil {
		t.Fatalf("SymbolInfo failed: %v", err)
	}
	if si.MinQuoteQty != 5 {
		t.Errorf("MinQuoteQty = %v, want 5", si.MinQuoteQty)
	}
	if got := f.MinQuoteQty(sym); got != 5 {
		t.Errorf("MinQuoteQty() = %v, want 5 after SymbolInfo load", got)
	}

	public.infos = []model.SymbolInfo{{Symbol: sym, MinQuoteQty: 7, RefreshedAt: time.Now()}}
	si, err = f.SymbolInfo(context.Background(), sym)
	if err != nil {
		t.Fatalf("cached SymbolInfo read failed: %v", err)
	}
	if si.MinQuoteQty != 5 {
		t.Errorf("MinQuoteQty = %v, want 5 from cache before TTL expiry", si.MinQuoteQty)
	}
}

func TestFacade_SymbolInfoServesStaleOnRefreshError(t *testing.T) {
	sym := testSymbol()
	public := &fakePublic{infos: []model.SymbolInfo{{Symbol: sym, MinQuoteQty: 5, RefreshedAt: time.Now().Add(-time.Hour)}}}
	f := newTestFacade(public, nil)
	f.cfg.SymbolInfoTTL = time.Millisecond

	if _, err := f.SymbolInfo(context.Background(), sym); err != nil {
		t.Fatalf("initial SymbolInfo load failed: %v", err)
	}

	public.infosErr = errors.New("network down")
	si, err := f.SymbolInfo(context.Background(), sym)
	if err != nil {
		t.Fatalf("expected stale cache to be served, got error: %v", err)
	}
	if si.MinQuoteQty != 5 {
		t.Errorf("MinQuoteQty = %v, want 5 from stale cache", si.MinQuoteQty)
	}
}

func TestFacade_BookTickerMissWhenNeverPushed(t *testing.T) {
	f := newTestFacade(&fakePublic{}, nil)
	if _, ok := f.BookTicker(testSymbol()); ok {
		t.Error("expected no cached BookTicker before any WS push")
	}
}

func TestFacade_BalanceFallsBackToRESTWhenNotMirrored(t *testing.T) {
	priv := newFakePrivate()
	priv.balances["USDT"] = model.AssetBalance{Asset: "USDT", Available: 100}
	f := newTestFacade(&fakePublic{}, priv)

	b, err := f.Balance(context.Background(), "USDT")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if b.Available != 100 {
		t.Errorf("Available = %v, want 100", b.Available)
	}
}

func TestFacade_GetOrderAndCancelOrderRequirePrivate(t *testing.T) {
	f := newTestFacade(&fakePublic{}, nil)
	if _, err := f.GetOrder(context.Background(), testSymbol(), "1"); err == nil {
		t.Error("expected GetOrder to fail with no private API configured")
	}
	if _, err := f.CancelOrder(context.Background(), testSymbol(), "1"); err == nil {
		t.Error("expected CancelOrder to fail with no private API configured")
	}
}

func TestFacade_CloseIsSafeWithoutInitialize(t *testing.T) {
	f := newTestFacade(&fakePublic{}, nil)
	f.Close() // must not panic when session/wsCancel were never set
}
