// Package arb implements the multi-spot / spot-futures arbitrage
// orchestrator from spec §4.10: a state machine maintaining delta-neutral
// exposure across N spot venues and one futures hedge, opportunity
// scanning, position migration between spots without unwinding the hedge,
// and emergency rebalance. Grounded on
// src/trading/tasks/multi_spot_futures_arbitrage_task.py
// (MultiSpotFuturesArbitrageTask: _find_best_spot_entry,
// _evaluate_spot_switch, _enter_spot_futures_position,
// _execute_spot_switch, _emergency_rebalance, _exit_all_positions,
// _validate_delta_neutrality) reworked from its async-method-on-a-task-
// object shape into an explicit Go state machine driven by an external tick
// loop, matching this spec's "cooperative tasks on a driver clock" model
// (spec §5), with position mutation restricted to the orchestrator's own
// goroutine per the single-writer/multi-reader-snapshot rule.
package arb

import (
	"time"

	"github.com/kvantic-labs/xvenue/internal/model"
)

// SpotLeg is one spot venue's current exposure within MultiSpotPositionState.
type SpotLeg struct {
	ExchangeKey string
	Symbol      model.Symbol
	Side        model.OrderSide
	Qty         float64
	EntryPrice  float64
	RealizedPnl float64
}

// HasPosition reports whether this leg carries non-zero exposure.
func (l SpotLeg) HasPosition() bool { return l.Qty > 0 }

// FuturesLeg mirrors model.Position but keeps the orchestrator's own entry
// bookkeeping (realized P&L across migrations) alongside it.
type FuturesLeg struct {
	Symbol      model.Symbol
	Side        model.PositionSide
	Qty         float64
	EntryPrice  float64
	RealizedPnl float64
}

func (l FuturesLeg) HasPosition() bool { return l.Qty > 0 }

// MultiSpotPositionState is the in-memory position ledger from spec §3:
// one spot leg per configured venue, a single futures hedge, and a pointer
// naming which spot currently carries the exposure.
type MultiSpotPositionState struct {
	SpotPositions      map[string]SpotLeg
	FuturesPosition    FuturesLeg
	ActiveSpotExchange string
}

// NewMultiSpotPositionState returns an empty ledger for the given spot
// exchange keys.
func NewMultiSpotPositionState(spotKeys []string) MultiSpotPositionState {
	positions := make(map[string]SpotLeg, len(spotKeys))
	for _, k := range spotKeys {
		positions[k] = SpotLeg{ExchangeKey: k}
	}
	return MultiSpotPositionState{SpotPositions: positions}
}

// HasPositions reports whether the active spot leg or the futures leg
// currently carries exposure.
func (s MultiSpotPositionState) HasPositions() bool {
	return s.ActiveSpotPosition().HasPosition() || s.FuturesPosition.HasPosition()
}

// ActiveSpotPosition returns the leg named by ActiveSpotExchange, or the
// zero value if unset.
func (s MultiSpotPositionState) ActiveSpotPosition() SpotLeg {
	if s.ActiveSpotExchange == "" {
		return SpotLeg{}
	}
	return s.SpotPositions[s.ActiveSpotExchange]
}

// TotalSpotQty sums quantity across every spot leg (normally only the
// active one is non-zero, but the sum is defensive against transitional
// states during a switch).
func (s MultiSpotPositionState) TotalSpotQty() float64 {
	total := 0.0
	for _, leg := range s.SpotPositions {
		total += leg.Qty
	}
	return total
}

// Delta is Σ spotQty − futuresQty, per spec §3's invariant.
func (s MultiSpotPositionState) Delta() float64 {
	return s.TotalSpotQty() - s.FuturesPosition.Qty
}

// DeltaUsdt converts Delta into an approximate USD notional using the
// active spot leg's entry price, matching delta_usdt in the original
// implementation's _emergency_rebalance gating.
func (s MultiSpotPositionState) DeltaUsdt() float64 {
	price := s.ActiveSpotPosition().EntryPrice
	if price == 0 {
		price = s.FuturesPosition.EntryPrice
	}
	return s.Delta() * price
}

// IsDeltaNeutral reports whether |delta|/Σspot <= tolerancePct (e.g. 0.1 for
// 0.1%), per spec §3/§8 Testable Property 4. A flat book (zero spot qty) is
// trivially neutral.
func (s MultiSpotPositionState) IsDeltaNeutral(tolerancePct float64) bool {
	total := s.TotalSpotQty()
	if total == 0 {
		return true
	}
	deltaPct := absf(s.Delta()/total) * 100
	return deltaPct <= tolerancePct
}

// TotalRealizedProfit sums realized P&L across the active spot leg and the
// futures leg.
func (s MultiSpotPositionState) TotalRealizedProfit() float64 {
	return s.ActiveSpotPosition().RealizedPnl + s.FuturesPosition.RealizedPnl
}

// Clone returns a copy of s with its own SpotPositions map, so callers can
// mutate the copy's legs without reaching through into the map a concurrent
// Snapshot() reader may still be holding. A plain struct copy of
// MultiSpotPositionState shares the underlying map (SpotLeg values are
// replaced by key, never by re-slicing), so this is required anywhere a
// leg is written, per spec §5's replace-with-new rule.
func (s MultiSpotPositionState) Clone() MultiSpotPositionState {
	s.SpotPositions = cloneSpotPositions(s.SpotPositions)
	return s
}

func cloneSpotPositions(m map[string]SpotLeg) map[string]SpotLeg {
	out := make(map[string]SpotLeg, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// SpotOpportunity is a candidate entry venue, per spec §3.
type SpotOpportunity struct {
	ExchangeKey string
	EntryPrice  float64
	CostPct     float64
	MaxQty      float64
}

// SpotSwitchOpportunity is a candidate migration from one spot venue to
// another, per spec §3. Freshness is enforced by the caller checking
// ObservedAt against the scan tick it came from (spec §3's "valid only if
// observed within the last tick scan").
type SpotSwitchOpportunity struct {
	CurrentKey       string
	TargetKey        string
	CurrentExitPrice float64
	TargetEntryPrice float64
	ProfitPct        float64
	MaxQty           float64
	ObservedAt       time.Time
}

// IsFresh reports whether the opportunity was observed within maxAge of now.
func (o SpotSwitchOpportunity) IsFresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(o.ObservedAt) <= maxAge
}

// OperationMode selects traditional exit-both-legs behavior versus
// continuous spot-switching, per spec §4.10.
type OperationMode string

const (
	ModeTraditional   OperationMode = "traditional"
	ModeSpotSwitching OperationMode = "spot_switching"
)

// TaskState is the orchestrator state machine tag from spec §3/§4.10.
type TaskState string

const (
	StateInitializing  TaskState = "initializing"
	StateScanning      TaskState = "scanning"
	StateInPosition    TaskState = "in_position"
	StateExiting       TaskState = "exiting"
	StateErrorRecovery TaskState = "error_recovery"
)

// TradingParameters bounds entry/exit decisions, per spec §3's
// ArbitrageTaskContext.
type TradingParameters struct {
	MaxEntryCostPct   float64
	MinProfitPct      float64
	MaxHoldHours      float64
	MinSwitchProfitPct float64
}

// TaskContext is the externally-owned task configuration the orchestrator
// evolves via immutable updates, per spec §3's ArbitrageTaskContext.
type TaskContext struct {
	Symbol             model.Symbol
	Params             TradingParameters
	SingleOrderSizeUsdt float64
	PositionStartTime  *time.Time
	TotalVolumeUsdt    float64
	State              TaskState
	Positions          MultiSpotPositionState
	Mode               OperationMode
}

// WithPositions returns a copy of ctx with Positions replaced, implementing
// the "immutable updates" / "atomic replace" rule from spec §3 and §5: the
// orchestrator goroutine is the sole writer and every other reader observes
// a fully-formed snapshot, never a partially-mutated map.
func (c TaskContext) WithPositions(p MultiSpotPositionState) TaskContext {
	c.Positions = p
	return c
}

// WithState returns a copy of ctx with State replaced.
func (c TaskContext) WithState(s TaskState) TaskContext {
	c.State = s
	return c
}
