package arb

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvantic-labs/xvenue/internal/model"
)

// Venue is the minimal surface the orchestrator needs from a composite
// exchange façade: a fresh/cached book ticker read, order placement, order
// status, and cancellation. Decoupling from *exchange.Facade directly keeps
// this package unit-testable against fakes and matches the original
// implementation's ExchangeManager abstraction
// (trading/task_manager/exchange_manager.py) over concrete adapters.
type Venue interface {
	BookTicker(sym model.Symbol) (model.BookTicker, bool)
	PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (model.Order, error)
	GetOrder(ctx context.Context, sym model.Symbol, orderID string) (model.Order, error)
	CancelOrder(ctx context.Context, sym model.Symbol, orderID string) (model.Order, error)
	MinQuoteQty(sym model.Symbol) float64
}

// Config tunes one orchestrator instance.
type Config struct {
	SpotKeys          []string
	DeltaTolerancePct float64 // default 0.1, per spec §3
	EmergencyRebalanceThresholdUsdt float64 // default 5, per spec §4.10
	OpportunityFreshness time.Duration      // max age of a switch opportunity, default 2s
	DebugLogEvery     int                   // log the spot-switch opportunity every Nth tick, default 1000; entry/exit are not sampled
}

func (c Config) withDefaults() Config {
	if c.DeltaTolerancePct == 0 {
		c.DeltaTolerancePct = 0.1
	}
	if c.EmergencyRebalanceThresholdUsdt == 0 {
		c.EmergencyRebalanceThresholdUsdt = 5.0
	}
	if c.OpportunityFreshness == 0 {
		c.OpportunityFreshness = 2 * time.Second
	}
	if c.DebugLogEvery == 0 {
		c.DebugLogEvery = 1000
	}
	return c
}

// pendingOrder tracks an order the orchestrator is waiting to reach a
// terminal status, across monitoring ticks.
type pendingOrder struct {
	ExchangeKey string
	Symbol      model.Symbol
	OrderID     string
}

// Orchestrator runs the monitoring loop from spec §4.10 on every tick of an
// external driver clock. Position-state mutation happens only inside Tick,
// which must be called from a single goroutine; readers obtain snapshots
// via Snapshot.
type Orchestrator struct {
	cfg     Config
	spots   map[string]Venue
	futures Venue
	log     zerolog.Logger

	mu      sync.RWMutex
	ctx     TaskContext
	pending []pendingOrder
	tick    int
}

func New(cfg Config, spots map[string]Venue, futures Venue, initial TaskContext, log zerolog.Logger) *Orchestrator {
	cfg = cfg.withDefaults()
	if initial.Positions.SpotPositions == nil {
		initial.Positions = NewMultiSpotPositionState(cfg.SpotKeys)
	}
	if initial.State == "" {
		initial.State = StateInitializing
	}
	return &Orchestrator{
		cfg:     cfg,
		spots:   spots,
		futures: futures,
		log:     log.With().Str("component", "arb_orchestrator").Logger(),
		ctx:     initial,
	}
}

// Snapshot returns an immutable copy of the current task context, safe for
// concurrent readers per spec §5's replace-with-new pattern.
func (o *Orchestrator) Snapshot() TaskContext {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.ctx
}

func (o *Orchestrator) setCtx(c TaskContext) {
	o.mu.Lock()
	o.ctx = c
	o.mu.Unlock()
}

// Tick runs one pass of the monitoring loop from spec §4.10: reconcile
// pending orders, process imbalance, then dispatch to the mode-specific
// handler. It is cancel-safe: cancellation at any await leaves
// MultiSpotPositionState and the pending-order table consistent, since
// reconciliation on the next tick re-polls the tracked pending orders from
// the venue rather than trusting in-flight placement results, per spec §5.
func (o *Orchestrator) Tick(ctx context.Context) {
	o.mu.Lock()
	o.tick++
	tickNum := o.tick
	o.mu.Unlock()

	if err := o.reconcilePendingOrders(ctx); err != nil {
		o.log.Error().Err(err).Msg("reconciling pending orders failed")
		o.transitionTo(StateErrorRecovery)
		return
	}

	current := o.Snapshot()
	if !current.Positions.IsDeltaNeutral(o.cfg.DeltaTolerancePct) {
		o.log.Warn().Float64("delta", current.Positions.Delta()).Msg("delta imbalance detected, emergency rebalancing")
		o.emergencyRebalance(ctx)
		current = o.Snapshot()
	}

	switch current.Mode {
	case ModeSpotSwitching:
		o.handleSpotSwitchingMode(ctx, tickNum)
	default:
		o.handleTraditionalMode(ctx, tickNum)
	}
}

func (o *Orchestrator) transitionTo(s TaskState) {
	o.setCtx(o.Snapshot().WithState(s))
}

// handleTraditionalMode mirrors _handle_traditional_mode: scan for the best
// spot entry when flat, otherwise evaluate the exit condition.
func (o *Orchestrator) handleTraditionalMode(ctx context.Context, tickNum int) {
	current := o.Snapshot()
	if !current.Positions.HasPositions() {
		o.transitionTo(StateScanning)
		opp := o.FindBestSpotEntry()
		if opp != nil && opp.CostPct < current.Params.MaxEntryCostPct {
			o.enterSpotFuturesPosition(ctx, *opp)
		}
		return
	}
	o.transitionTo(StateInPosition)
	if o.ShouldExit(current, time.Now()) {
		o.exitAllPositions(ctx)
	}
}

// handleSpotSwitchingMode mirrors _handle_spot_switching_mode: same initial
// entry as traditional, but while in position it continuously evaluates
// migration before falling back to the exit check.
func (o *Orchestrator) handleSpotSwitchingMode(ctx context.Context, tickNum int) {
	current := o.Snapshot()
	if !current.Positions.HasPositions() {
		o.handleTraditionalMode(ctx, tickNum)
		return
	}
	o.transitionTo(StateInPosition)

	if switchOpp := o.EvaluateSpotSwitch(); switchOpp != nil {
		if tickNum%o.cfg.DebugLogEvery == 0 {
			o.log.Debug().Str("from", switchOpp.CurrentKey).Str("to", switchOpp.TargetKey).
				Float64("profitPct", switchOpp.ProfitPct).Msg("spot switch opportunity")
		}
		o.executeSpotSwitch(ctx, *switchOpp)
		return
	}

	if o.ShouldExit(current, time.Now()) {
		o.exitAllPositions(ctx)
	}
}

// FindBestSpotEntry implements spec §4.10: for each configured spot venue
// with a fresh book ticker, compute costPct = (spotAsk-futuresBid)/spotAsk*100
// and return the minimum, discarding venues missing quotes.
func (o *Orchestrator) FindBestSpotEntry() *SpotOpportunity {
	current := o.Snapshot()
	futTicker, ok := o.futures.BookTicker(current.Symbol)
	if !ok {
		return nil
	}

	var best *SpotOpportunity
	for _, key := range o.cfg.SpotKeys {
		venue, ok := o.spots[key]
		if !ok {
			continue
		}
		spotTicker, ok := venue.BookTicker(current.Symbol)
		if !ok || spotTicker.AskPrice == 0 {
			continue
		}
		costPct := (spotTicker.AskPrice - futTicker.BidPrice) / spotTicker.AskPrice * 100
		maxQty := minf(spotTicker.AskQty, futTicker.BidQty, current.SingleOrderSizeUsdt/spotTicker.AskPrice)
		cand := SpotOpportunity{ExchangeKey: key, EntryPrice: spotTicker.AskPrice, CostPct: costPct, MaxQty: maxQty}
		if best == nil || cand.CostPct < best.CostPct {
			c := cand
			best = &c
		}
	}
	return best
}

// EvaluateSpotSwitch implements spec §4.10: for every spot venue other than
// the active one, compute profitPct = (currentBid-targetAsk)/currentBid*100
// and return the best candidate clearing MinSwitchProfitPct.
func (o *Orchestrator) EvaluateSpotSwitch() *SpotSwitchOpportunity {
	current := o.Snapshot()
	currentKey := current.Positions.ActiveSpotExchange
	if currentKey == "" {
		return nil
	}
	currentVenue, ok := o.spots[currentKey]
	if !ok {
		return nil
	}
	currentTicker, ok := currentVenue.BookTicker(current.Symbol)
	if !ok || currentTicker.BidPrice == 0 {
		return nil
	}

	now := time.Now()
	var best *SpotSwitchOpportunity
	activeQty := current.Positions.ActiveSpotPosition().Qty
	for _, targetKey := range o.cfg.SpotKeys {
		if targetKey == currentKey {
			continue
		}
		targetVenue, ok := o.spots[targetKey]
		if !ok {
			continue
		}
		targetTicker, ok := targetVenue.BookTicker(current.Symbol)
		if !ok || targetTicker.AskPrice == 0 {
			continue
		}
		profitPct := (currentTicker.BidPrice - targetTicker.AskPrice) / currentTicker.BidPrice * 100
		if profitPct < current.Params.MinSwitchProfitPct {
			continue
		}
		cand := SpotSwitchOpportunity{
			CurrentKey:       currentKey,
			TargetKey:        targetKey,
			CurrentExitPrice: currentTicker.BidPrice,
			TargetEntryPrice: targetTicker.AskPrice,
			ProfitPct:        profitPct,
			MaxQty:           minf(currentTicker.BidQty, targetTicker.AskQty, activeQty),
			ObservedAt:       now,
		}
		if best == nil || cand.ProfitPct > best.ProfitPct {
			c := cand
			best = &c
		}
	}
	return best
}

func minf(vals ...float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// ShouldExit implements spec §4.10: true when net P&L in % reaches
// MinProfitPct, or elapsed hours since PositionStartTime reach MaxHoldHours.
func (o *Orchestrator) ShouldExit(ctx TaskContext, now time.Time) bool {
	if ctx.PositionStartTime != nil {
		elapsed := now.Sub(*ctx.PositionStartTime).Hours()
		if elapsed >= ctx.Params.MaxHoldHours {
			return true
		}
	}

	spot := ctx.Positions.ActiveSpotPosition()
	futures := ctx.Positions.FuturesPosition
	if !spot.HasPosition() || !futures.HasPosition() {
		return false
	}

	spotVenue, ok := o.spots[ctx.Positions.ActiveSpotExchange]
	if !ok {
		return false
	}
	spotTicker, ok := spotVenue.BookTicker(ctx.Symbol)
	if !ok {
		return false
	}
	futTicker, ok := o.futures.BookTicker(ctx.Symbol)
	if !ok {
		return false
	}

	pnl := unrealizedRoundTripPnl(spot, futures, spotTicker, futTicker)
	notional := spot.EntryPrice * spot.Qty
	if notional == 0 {
		return false
	}
	pnlPct := pnl / notional * 100
	return pnlPct >= ctx.Params.MinProfitPct
}

// unrealizedRoundTripPnl computes net P&L for a long-spot/short-futures (or
// mirrored short-spot/long-futures) round trip using the current exit-side
// quotes, per spec §4.10 / Testable Property 7.
func unrealizedRoundTripPnl(spot SpotLeg, futures FuturesLeg, spotTicker, futTicker model.BookTicker) float64 {
	var spotExit, futExit float64
	if spot.Side == model.SideBuy {
		spotExit = spotTicker.BidPrice
	} else {
		spotExit = spotTicker.AskPrice
	}
	if futures.Side == model.PositionShort {
		futExit = futTicker.AskPrice
	} else {
		futExit = futTicker.BidPrice
	}

	spotPnl := (spotExit - spot.EntryPrice) * spot.Qty
	if spot.Side == model.SideSell {
		spotPnl = -spotPnl
	}
	futPnl := (futures.EntryPrice - futExit) * futures.Qty
	if futures.Side == model.PositionLong {
		futPnl = -futPnl
	}
	return spotPnl + futPnl
}
