package arb

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvantic-labs/xvenue/internal/model"
)

// fakeVenue is an in-memory Venue used to exercise the orchestrator without
// any real transport, matching the teacher's own style of hand-rolled test
// doubles over mocking frameworks (see internal/retrier's fake clock in
// retrier_test.go).
type fakeVenue struct {
	ticker      model.BookTicker
	minQuoteQty float64
	orders      map[string]model.Order
	nextID      int
	placeErr    error
}

func newFakeVenue(bid, ask float64) *fakeVenue {
	return &fakeVenue{
		ticker: model.BookTicker{BidPrice: bid, BidQty: 10, AskPrice: ask, AskQty: 10},
		orders: make(map[string]model.Order),
	}
}

func (v *fakeVenue) BookTicker(sym model.Symbol) (model.BookTicker, bool) { return v.ticker, true }

func (v *fakeVenue) PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (model.Order, error) {
	if v.placeErr != nil {
		return model.Order{}, v.placeErr
	}
	v.nextID++
	id := string(rune('a' + v.nextID))
	order := model.Order{
		OrderID:        id,
		Symbol:         req.Symbol,
		Side:           req.Side,
		Quantity:       req.Quantity,
		Price:          req.Price,
		FilledQuantity: req.Quantity,
		Status:         model.OrderStatusFilled,
		Timestamp:      time.Unix(0, 0),
	}
	v.orders[id] = order
	return order, nil
}

func (v *fakeVenue) GetOrder(ctx context.Context, sym model.Symbol, orderID string) (model.Order, error) {
	return v.orders[orderID], nil
}

func (v *fakeVenue) CancelOrder(ctx context.Context, sym model.Symbol, orderID string) (model.Order, error) {
	o := v.orders[orderID]
	o.Status = model.OrderStatusCancelled
	v.orders[orderID] = o
	return o, nil
}

func (v *fakeVenue) MinQuoteQty(sym model.Symbol) float64 { return v.minQuoteQty }

func testSymbol() model.Symbol { return model.Symbol{Base: "BTC", Quote: "USDT"} }

func newTestOrchestrator(spot, futures *fakeVenue) *Orchestrator {
	initial := TaskContext{
		Symbol:              testSymbol(),
		SingleOrderSizeUsdt: 1000,
		Params: TradingParameters{
			MaxEntryCostPct:    1.0,
			MinProfitPct:       0.1,
			MaxHoldHours:       24,
			MinSwitchProfitPct: 0.1,
		},
	}
	cfg := Config{SpotKeys: []string{"mexc"}}
	return New(cfg, map[string]Venue{"mexc": spot}, futures, initial, zerolog.Nop())
}

func TestOrchestrator_EnterSpotFuturesPosition(t *testing.T) {
	spot := newFakeVenue(29990, 30000) // ask 30000
	futures := newFakeVenue(30010, 30020) // bid 30010, so entry cost is negative (favorable)
	o := newTestOrchestrator(spot, futures)

	opp := o.FindBestSpotEntry()
	if opp == nil {
		t.Fatal("expected a spot entry opportunity")
	}
	if !o.enterSpotFuturesPosition(context.Background(), *opp) {
		t.Fatal("expected entry to succeed")
	}

	snap := o.Snapshot()
	if !snap.Positions.HasPositions() {
		t.Fatal("expected positions after entry")
	}
	if snap.Positions.ActiveSpotExchange != "mexc" {
		t.Errorf("ActiveSpotExchange = %q, want mexc", snap.Positions.ActiveSpotExchange)
	}
	if !snap.Positions.IsDeltaNeutral(0.1) {
		t.Error("expected delta-neutral position after matched entry")
	}
	if snap.PositionStartTime == nil {
		t.Error("expected PositionStartTime to be set after entry")
	}
}

func TestOrchestrator_ExitAllPositions(t *testing.T) {
	spot := newFakeVenue(29990, 30000)
	futures := newFakeVenue(30010, 30020)
	o := newTestOrchestrator(spot, futures)

	opp := o.FindBestSpotEntry()
	if !o.enterSpotFuturesPosition(context.Background(), *opp) {
		t.Fatal("entry failed")
	}

	if !o.exitAllPositions(context.Background()) {
		t.Fatal("expected exit to succeed")
	}

	snap := o.Snapshot()
	if snap.PositionStartTime != nil {
		t.Error("expected PositionStartTime to be cleared after exit")
	}
	if snap.State != StateScanning {
		t.Errorf("State = %q, want scanning", snap.State)
	}
}

func TestOrchestrator_EmergencyRebalance_BelowThresholdNoOp(t *testing.T) {
	spot := newFakeVenue(29990, 30000)
	futures := newFakeVenue(30010, 30020)
	o := newTestOrchestrator(spot, futures)
	o.cfg.EmergencyRebalanceThresholdUsdt = 1_000_000 // force below-threshold skip

	opp := o.FindBestSpotEntry()
	o.enterSpotFuturesPosition(context.Background(), *opp)

	before := o.Snapshot().Positions.FuturesPosition.Qty
	o.emergencyRebalance(context.Background())
	after := o.Snapshot().Positions.FuturesPosition.Qty
	if before != after {
		t.Error("expected emergencyRebalance to no-op below threshold")
	}
}

func TestOrchestrator_Tick_ScansWhenFlat(t *testing.T) {
	spot := newFakeVenue(29990, 30000)
	futures := newFakeVenue(30010, 30020)
	o := newTestOrchestrator(spot, futures)

	o.Tick(context.Background())

	if !o.Snapshot().Positions.HasPositions() {
		t.Error("expected Tick to enter a position when a profitable opportunity exists")
	}
}

func TestShouldExit_MaxHoldHoursExceeded(t *testing.T) {
	spot := newFakeVenue(29990, 30000)
	futures := newFakeVenue(30010, 30020)
	o := newTestOrchestrator(spot, futures)

	started := time.Now().Add(-48 * time.Hour)
	ctx := o.Snapshot()
	ctx.PositionStartTime = &started
	ctx.Params.MaxHoldHours = 24
	o.setCtx(ctx)

	if !o.ShouldExit(o.Snapshot(), time.Now()) {
		t.Error("expected ShouldExit true once MaxHoldHours elapsed")
	}
}
