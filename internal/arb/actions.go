package arb

import (
	"context"
	"sync"
	"time"

	"github.com/kvantic-labs/xvenue/internal/model"
)

// legResult is the outcome of placing one leg of a parallel order pair.
type legResult struct {
	key   string
	order model.Order
	err   error
}

// placeParallel issues one order per (key, req) pair concurrently and waits
// for all to return, matching exchange_manager.place_order_parallel's
// fan-out shape but built on plain goroutines + sync.WaitGroup per the
// Open Question decision in DESIGN.md (no errgroup dependency to wire it
// to).
func placeParallel(ctx context.Context, venues map[string]Venue, orders map[string]model.PlaceOrderRequest) map[string]legResult {
	results := make(map[string]legResult, len(orders))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for key, req := range orders {
		key, req := key, req
		venue, ok := venues[key]
		if !ok {
			mu.Lock()
			results[key] = legResult{key: key, err: errUnknownVenue(key)}
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := venue.PlaceOrder(ctx, req)
			mu.Lock()
			results[key] = legResult{key: key, order: order, err: err}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

type venueError string

func (e venueError) Error() string { return string(e) }
func errUnknownVenue(key string) error { return venueError("arb: no venue bound for " + key) }

// cancelAll best-effort cancels every successfully placed leg in results,
// used after a partial failure per spec §4.10 steps 5.
func cancelAll(ctx context.Context, venues map[string]Venue, sym model.Symbol, results map[string]legResult) {
	for key, r := range results {
		if r.err != nil || r.order.OrderID == "" {
			continue
		}
		if venue, ok := venues[key]; ok {
			_, _ = venue.CancelOrder(ctx, sym, r.order.OrderID)
		}
	}
}

// allVenues merges the spot map with the futures venue under the "futures"
// key, for cancel-all/reconciliation helpers that address legs uniformly.
func (o *Orchestrator) allVenues() map[string]Venue {
	out := make(map[string]Venue, len(o.spots)+1)
	for k, v := range o.spots {
		out[k] = v
	}
	out["futures"] = o.futures
	return out
}

// enterSpotFuturesPosition implements spec §4.10: size the position,
// enforce each venue's minimum quote quantity, set both legs to the larger
// of the two quantities, place both legs in parallel, and update
// MultiSpotPositionState on success. Quantities are not rounded to either
// venue's step or contract size.
func (o *Orchestrator) enterSpotFuturesPosition(ctx context.Context, opp SpotOpportunity) bool {
	current := o.Snapshot()
	spotVenue, ok := o.spots[opp.ExchangeKey]
	if !ok {
		o.log.Error().Str("exchangeKey", opp.ExchangeKey).Msg("enter: unknown spot venue")
		return false
	}
	futTicker, ok := o.futures.BookTicker(current.Symbol)
	if !ok {
		o.log.Error().Msg("enter: no futures ticker")
		return false
	}

	baseQty := minf(current.SingleOrderSizeUsdt/opp.EntryPrice, opp.MaxQty)

	spotMinQty := spotVenue.MinQuoteQty(current.Symbol) / opp.EntryPrice
	futMinQty := o.futures.MinQuoteQty(current.Symbol) / futTicker.BidPrice
	minRequired := maxf(spotMinQty, futMinQty)
	if baseQty < minRequired {
		o.log.Error().Float64("baseQty", baseQty).Float64("minRequired", minRequired).
			Msg("enter: position size below minimum, aborting")
		return false
	}

	spotQty := enforceMinQuote(baseQty, opp.EntryPrice, spotVenue.MinQuoteQty(current.Symbol))
	futQty := enforceMinQuote(baseQty, futTicker.BidPrice, o.futures.MinQuoteQty(current.Symbol))
	if absf(spotQty-futQty) > 1e-9 {
		adjusted := maxf(spotQty, futQty)
		o.log.Info().Float64("adjusted", adjusted).Msg("enter: adjusting both legs to larger quantity for delta neutrality")
		spotQty, futQty = adjusted, adjusted
	}

	orders := map[string]model.PlaceOrderRequest{
		opp.ExchangeKey: {Symbol: current.Symbol, Side: model.SideBuy, Type: model.OrderTypeLimit, Quantity: spotQty, Price: opp.EntryPrice, TIF: model.TIFGTC},
		"futures":        {Symbol: current.Symbol, Side: model.SideSell, Type: model.OrderTypeLimit, Quantity: futQty, Price: futTicker.BidPrice, TIF: model.TIFGTC},
	}
	venues := map[string]Venue{opp.ExchangeKey: spotVenue, "futures": o.futures}

	results := placeParallel(ctx, venues, orders)
	if results[opp.ExchangeKey].err != nil || results["futures"].err != nil {
		o.log.Error().Msg("enter: one or both legs failed, cancelling placed orders")
		cancelAll(ctx, venues, current.Symbol, results)
		return false
	}

	spotOrder := results[opp.ExchangeKey].order
	futOrder := results["futures"].order

	next := current.Positions.Clone()
	next.SpotPositions[opp.ExchangeKey] = SpotLeg{
		ExchangeKey: opp.ExchangeKey, Symbol: current.Symbol, Side: model.SideBuy,
		Qty: spotOrder.FilledQuantity, EntryPrice: opp.EntryPrice,
	}
	next.FuturesPosition = FuturesLeg{Symbol: current.Symbol, Side: model.PositionShort, Qty: futOrder.FilledQuantity, EntryPrice: futTicker.BidPrice}
	next.ActiveSpotExchange = opp.ExchangeKey

	updated := current.WithPositions(next)
	if updated.PositionStartTime == nil {
		now := time.Now()
		updated.PositionStartTime = &now
	}
	updated.TotalVolumeUsdt += maxf(spotQty, futQty) * opp.EntryPrice
	o.setCtx(updated)
	o.trackPendingOrder(opp.ExchangeKey, current.Symbol, spotOrder)
	o.trackPendingOrder("futures", current.Symbol, futOrder)
	return true
}

// executeSpotSwitch implements spec §4.10: recheck freshness and delta
// neutrality, place the closing/opening pair in parallel, retire the old
// leg and install the new one, and re-verify neutrality afterward.
func (o *Orchestrator) executeSpotSwitch(ctx context.Context, opp SpotSwitchOpportunity) bool {
	if !opp.IsFresh(time.Now(), o.cfg.OpportunityFreshness) {
		o.log.Warn().Msg("spot switch opportunity stale, rejecting")
		return false
	}
	current := o.Snapshot()
	if !current.Positions.IsDeltaNeutral(o.cfg.DeltaTolerancePct) {
		o.log.Warn().Msg("spot switch rejected: delta not neutral before operation")
		o.emergencyRebalance(ctx)
		return false
	}

	currentLeg := current.Positions.SpotPositions[opp.CurrentKey]
	if !currentLeg.HasPosition() {
		o.log.Error().Msg("spot switch: no active position on current exchange")
		return false
	}

	currentVenue, ok1 := o.spots[opp.CurrentKey]
	targetVenue, ok2 := o.spots[opp.TargetKey]
	if !ok1 || !ok2 {
		o.log.Error().Msg("spot switch: unknown venue")
		return false
	}

	switchQty := minf(currentLeg.Qty, opp.MaxQty)
	orders := map[string]model.PlaceOrderRequest{
		opp.CurrentKey: {Symbol: current.Symbol, Side: currentLeg.Side.Flip(), Type: model.OrderTypeLimit, Quantity: switchQty, Price: opp.CurrentExitPrice, TIF: model.TIFGTC},
		opp.TargetKey:  {Symbol: current.Symbol, Side: currentLeg.Side, Type: model.OrderTypeLimit, Quantity: switchQty, Price: opp.TargetEntryPrice, TIF: model.TIFGTC},
	}
	venues := map[string]Venue{opp.CurrentKey: currentVenue, opp.TargetKey: targetVenue}

	results := placeParallel(ctx, venues, orders)
	if results[opp.CurrentKey].err != nil || results[opp.TargetKey].err != nil {
		o.log.Error().Msg("spot switch: one or both legs failed, cancelling and rebalancing")
		cancelAll(ctx, venues, current.Symbol, results)
		o.emergencyRebalance(ctx)
		return false
	}

	exitOrder := results[opp.CurrentKey].order
	entryOrder := results[opp.TargetKey].order

	next := current.Positions.Clone()
	closedQty := currentLeg.Qty - exitOrder.FilledQuantity
	if closedQty < 0 {
		closedQty = 0
	}
	exitPnl := (opp.CurrentExitPrice - currentLeg.EntryPrice) * exitOrder.FilledQuantity
	if currentLeg.Side == model.SideSell {
		exitPnl = -exitPnl
	}
	next.SpotPositions[opp.CurrentKey] = SpotLeg{ExchangeKey: opp.CurrentKey, Symbol: current.Symbol, Qty: closedQty, RealizedPnl: currentLeg.RealizedPnl + exitPnl}
	next.SpotPositions[opp.TargetKey] = SpotLeg{
		ExchangeKey: opp.TargetKey, Symbol: current.Symbol, Side: currentLeg.Side,
		Qty: entryOrder.FilledQuantity, EntryPrice: opp.TargetEntryPrice,
	}
	// Futures qty is untouched by a spot switch, per spec §8 Testable
	// Property 5: futuresPosition.qty before and after is bit-equal.
	next.ActiveSpotExchange = opp.TargetKey

	o.setCtx(current.WithPositions(next))
	o.trackPendingOrder(opp.CurrentKey, current.Symbol, exitOrder)
	o.trackPendingOrder(opp.TargetKey, current.Symbol, entryOrder)

	if !o.Snapshot().Positions.IsDeltaNeutral(o.cfg.DeltaTolerancePct) {
		o.log.Warn().Msg("delta neutrality lost after spot switch, emergency rebalancing")
		o.emergencyRebalance(ctx)
	}
	return true
}

// emergencyRebalance implements spec §4.10: only acts when |deltaUsdt| >=
// threshold, and places a single futures order sized at |delta| in the
// direction that cancels the imbalance. It logs success/failure and does
// not retry indefinitely, matching _emergency_rebalance in the original.
func (o *Orchestrator) emergencyRebalance(ctx context.Context) {
	current := o.Snapshot()
	delta := current.Positions.Delta()
	deltaUsdt := current.Positions.DeltaUsdt()
	if absf(deltaUsdt) < o.cfg.EmergencyRebalanceThresholdUsdt {
		return
	}

	futTicker, ok := o.futures.BookTicker(current.Symbol)
	if !ok {
		o.log.Error().Msg("emergency rebalance: no futures ticker, cannot act")
		return
	}

	var req model.PlaceOrderRequest
	if delta > 0 {
		// Excess spot: increase the futures short.
		req = model.PlaceOrderRequest{Symbol: current.Symbol, Side: model.SideSell, Type: model.OrderTypeLimit, Quantity: absf(delta), Price: futTicker.BidPrice, TIF: model.TIFGTC}
	} else {
		// Excess short: reduce it.
		req = model.PlaceOrderRequest{Symbol: current.Symbol, Side: model.SideBuy, Type: model.OrderTypeLimit, Quantity: absf(delta), Price: futTicker.AskPrice, TIF: model.TIFGTC}
	}

	order, err := o.futures.PlaceOrder(ctx, req)
	if err != nil {
		o.log.Error().Err(err).Msg("emergency rebalance failed")
		return
	}

	next := current.Positions
	if delta > 0 {
		next.FuturesPosition.Qty += order.FilledQuantity
	} else {
		next.FuturesPosition.Qty -= order.FilledQuantity
		if next.FuturesPosition.Qty < 0 {
			next.FuturesPosition.Qty = 0
		}
	}
	o.setCtx(current.WithPositions(next))
	o.trackPendingOrder("futures", current.Symbol, order)
	o.log.Info().Float64("delta", delta).Msg("emergency rebalance completed")
}

// exitAllPositions implements spec §4.10: build parallel close orders for
// the active spot leg and the futures leg and place them concurrently; on
// success clear position timing and leave realized P&L on the legs for the
// caller to read via Snapshot().Positions.TotalRealizedProfit().
func (o *Orchestrator) exitAllPositions(ctx context.Context) bool {
	o.transitionTo(StateExiting)
	current := o.Snapshot()

	orders := make(map[string]model.PlaceOrderRequest)
	venues := make(map[string]Venue)

	spot := current.Positions.ActiveSpotPosition()
	activeKey := current.Positions.ActiveSpotExchange
	if spot.HasPosition() {
		if spotVenue, ok := o.spots[activeKey]; ok {
			spotTicker, ok := spotVenue.BookTicker(current.Symbol)
			if ok {
				exitSide := spot.Side.Flip()
				price := spotTicker.BidPrice
				if exitSide == model.SideBuy {
					price = spotTicker.AskPrice
				}
				orders[activeKey] = model.PlaceOrderRequest{Symbol: current.Symbol, Side: exitSide, Type: model.OrderTypeLimit, Quantity: spot.Qty, Price: price, TIF: model.TIFGTC}
				venues[activeKey] = spotVenue
			}
		}
	}

	futures := current.Positions.FuturesPosition
	if futures.HasPosition() {
		futTicker, ok := o.futures.BookTicker(current.Symbol)
		if ok {
			exitSide := model.SideSell
			price := futTicker.BidPrice
			if futures.Side == model.PositionShort {
				exitSide = model.SideBuy
				price = futTicker.AskPrice
			}
			orders["futures"] = model.PlaceOrderRequest{Symbol: current.Symbol, Side: exitSide, Type: model.OrderTypeLimit, Quantity: futures.Qty, Price: price, TIF: model.TIFGTC}
			venues["futures"] = o.futures
		}
	}

	if len(orders) == 0 {
		return true
	}

	results := placeParallel(ctx, venues, orders)
	allOK := true
	for _, r := range results {
		if r.err != nil {
			allOK = false
		}
	}
	if !allOK {
		o.log.Warn().Msg("some exit orders failed")
		o.transitionTo(StateErrorRecovery)
		return false
	}

	next := current.Positions.Clone()
	if r, ok := results[activeKey]; ok && spot.HasPosition() {
		exitPnl := (orders[activeKey].Price - spot.EntryPrice) * r.order.FilledQuantity
		if spot.Side == model.SideSell {
			exitPnl = -exitPnl
		}
		next.SpotPositions[activeKey] = SpotLeg{ExchangeKey: activeKey, RealizedPnl: spot.RealizedPnl + exitPnl}
	}
	if r, ok := results["futures"]; ok && futures.HasPosition() {
		futPnl := (futures.EntryPrice - orders["futures"].Price) * r.order.FilledQuantity
		if futures.Side == model.PositionLong {
			futPnl = -futPnl
		}
		next.FuturesPosition = FuturesLeg{RealizedPnl: futures.RealizedPnl + futPnl}
	}

	updated := current.WithPositions(next)
	updated.PositionStartTime = nil
	o.setCtx(updated)
	for key, r := range results {
		o.trackPendingOrder(key, current.Symbol, r.order)
	}
	o.transitionTo(StateScanning)
	return true
}

// trackPendingOrder registers a just-placed order for reconciliation on a
// future tick if it did not land in a terminal status immediately.
func (o *Orchestrator) trackPendingOrder(exchangeKey string, sym model.Symbol, order model.Order) {
	if order.Status.IsTerminal() || order.OrderID == "" {
		return
	}
	o.mu.Lock()
	o.pending = append(o.pending, pendingOrder{ExchangeKey: exchangeKey, Symbol: sym, OrderID: order.OrderID})
	o.mu.Unlock()
}

// reconcilePendingOrders polls, via GetOrder, the status of every order the
// orchestrator still tracks as pending and stops tracking those that reached
// a terminal status; orders whose lookup fails stay tracked. It does not
// change position state, and it does not discover orders that were never
// added to the pending table, such as placements cancelled mid-flight.
func (o *Orchestrator) reconcilePendingOrders(ctx context.Context) error {
	o.mu.Lock()
	pending := o.pending
	o.pending = nil
	o.mu.Unlock()

	venues := o.allVenues()
	var stillPending []pendingOrder
	for _, p := range pending {
		venue, ok := venues[p.ExchangeKey]
		if !ok {
			continue
		}
		order, err := venue.GetOrder(ctx, p.Symbol, p.OrderID)
		if err != nil {
			stillPending = append(stillPending, p)
			continue
		}
		if !order.Status.IsTerminal() {
			stillPending = append(stillPending, p)
		}
	}
	o.mu.Lock()
	o.pending = append(o.pending, stillPending...)
	o.mu.Unlock()
	return nil
}

func enforceMinQuote(qty, price, minQuoteQty float64) float64 {
	if minQuoteQty <= 0 || qty*price >= minQuoteQty {
		return qty
	}
	return minQuoteQty/price + 0.001
}

func maxf(vals ...float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
