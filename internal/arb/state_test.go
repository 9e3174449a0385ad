package arb

import (
	"testing"
	"time"
)

func TestMultiSpotPositionState_IsDeltaNeutral(t *testing.T) {
	s := NewMultiSpotPositionState([]string{"mexc", "gateio"})

	t.Run("flat book is trivially neutral", func(t *testing.T) {
		if !s.IsDeltaNeutral(0.1) {
			t.Error("expected flat book to be delta neutral")
		}
	})

	s.SpotPositions["mexc"] = SpotLeg{ExchangeKey: "mexc", Qty: 1.0, EntryPrice: 100}
	s.FuturesPosition = FuturesLeg{Qty: 1.0, EntryPrice: 100}
	s.ActiveSpotExchange = "mexc"

	t.Run("matched legs are neutral", func(t *testing.T) {
		if !s.IsDeltaNeutral(0.1) {
			t.Error("expected matched spot/futures qty to be delta neutral")
		}
	})

	s.FuturesPosition.Qty = 0.5
	t.Run("large imbalance is not neutral", func(t *testing.T) {
		if s.IsDeltaNeutral(0.1) {
			t.Error("expected 50% imbalance to violate 0.1% tolerance")
		}
	})
}

func TestMultiSpotPositionState_DeltaUsdt(t *testing.T) {
	s := NewMultiSpotPositionState([]string{"mexc"})
	s.SpotPositions["mexc"] = SpotLeg{ExchangeKey: "mexc", Qty: 2.0, EntryPrice: 50000}
	s.FuturesPosition = FuturesLeg{Qty: 1.5, EntryPrice: 50000}
	s.ActiveSpotExchange = "mexc"

	got := s.DeltaUsdt()
	want := 0.5 * 50000
	if got != want {
		t.Errorf("DeltaUsdt() = %v, want %v", got, want)
	}
}

func TestMultiSpotPositionState_ActiveSpotPosition(t *testing.T) {
	s := NewMultiSpotPositionState([]string{"mexc", "gateio"})
	if s.ActiveSpotPosition().HasPosition() {
		t.Error("expected no active position before any exchange is set active")
	}
	s.SpotPositions["gateio"] = SpotLeg{ExchangeKey: "gateio", Qty: 1}
	s.ActiveSpotExchange = "gateio"
	if !s.ActiveSpotPosition().HasPosition() {
		t.Error("expected active position once ActiveSpotExchange points at a funded leg")
	}
}

func TestMultiSpotPositionState_CloneDoesNotAliasSpotPositions(t *testing.T) {
	s := NewMultiSpotPositionState([]string{"mexc"})
	s.SpotPositions["mexc"] = SpotLeg{ExchangeKey: "mexc", Qty: 1.0}

	clone := s.Clone()
	clone.SpotPositions["mexc"] = SpotLeg{ExchangeKey: "mexc", Qty: 99.0}

	if s.SpotPositions["mexc"].Qty != 1.0 {
		t.Errorf("mutating a clone's SpotPositions changed the original: got %v, want 1.0",
			s.SpotPositions["mexc"].Qty)
	}
}

func TestSpotSwitchOpportunity_IsFresh(t *testing.T) {
	now := time.Now()
	opp := SpotSwitchOpportunity{ObservedAt: now}
	if !opp.IsFresh(now, 0) {
		t.Error("expected zero-age observation to be fresh")
	}
	later := now.Add(3 * time.Second)
	if opp.IsFresh(later, time.Second) {
		t.Error("expected opportunity older than maxAge to be stale")
	}
}
