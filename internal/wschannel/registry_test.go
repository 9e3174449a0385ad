package wschannel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/kvantic-labs/xvenue/internal/model"
)

// fakeSender records every frame sent, matching the teacher's style of
// hand-rolled test doubles over a mocking framework.
type fakeSender struct {
	mu     sync.Mutex
	frames []any
}

func (s *fakeSender) SendJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, v)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

type fakeFrameBuilder struct{}

func (fakeFrameBuilder) Subscribe(channel ChannelKind, symbols []model.Symbol) any {
	return map[string]any{"op": "sub", "channel": channel, "symbols": symbols}
}

func (fakeFrameBuilder) Unsubscribe(channel ChannelKind, symbols []model.Symbol) any {
	return map[string]any{"op": "unsub", "channel": channel, "symbols": symbols}
}

func testSymbol() model.Symbol { return model.Symbol{Base: "BTC", Quote: "USDT"} }

func TestRegistry_SubscribeIsIdempotent(t *testing.T) {
	sender := &fakeSender{}
	r := New("test", sender, fakeFrameBuilder{}, 16, nil, zerolog.Nop())

	sym := testSymbol()
	if err := r.Subscribe(ChannelBookTicker, sym); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := r.Subscribe(ChannelBookTicker, sym); err != nil {
		t.Fatalf("second Subscribe failed: %v", err)
	}

	if sender.count() != 1 {
		t.Errorf("expected exactly 1 wire frame for a repeated subscribe, got %d", sender.count())
	}
	active := r.Active()
	if len(active[ChannelBookTicker]) != 1 {
		t.Errorf("expected 1 tracked subscription, got %d", len(active[ChannelBookTicker]))
	}
}

func TestRegistry_UnsubscribeRemovesTracking(t *testing.T) {
	sender := &fakeSender{}
	r := New("test", sender, fakeFrameBuilder{}, 16, nil, zerolog.Nop())
	sym := testSymbol()

	_ = r.Subscribe(ChannelTrade, sym)
	_ = r.Unsubscribe(ChannelTrade, sym)

	active := r.Active()
	if len(active[ChannelTrade]) != 0 {
		t.Errorf("expected subscription to be removed, got %v", active[ChannelTrade])
	}
}

func TestRegistry_BindAndDispatch(t *testing.T) {
	r := New("test", nil, nil, 16, nil, zerolog.Nop())

	received := make(chan model.BookTicker, 1)
	r.Bind(ChannelBookTicker, Handlers{
		BookTicker: func(bt model.BookTicker) { received <- bt },
	})

	sym := testSymbol()
	r.Dispatch(ChannelBookTicker, sym, func() (any, error) {
		return model.BookTicker{Symbol: sym, BidPrice: 100, AskPrice: 101}, nil
	})

	select {
	case bt := <-received:
		if bt.BidPrice != 100 {
			t.Errorf("BidPrice = %v, want 100", bt.BidPrice)
		}
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}
}

func TestRegistry_DispatchDecodeErrorDoesNotPanic(t *testing.T) {
	r := New("test", nil, nil, 16, nil, zerolog.Nop())
	called := false
	r.Bind(ChannelTrade, Handlers{Trade: func(model.Trade) { called = true }})

	done := make(chan struct{})
	r.Dispatch(ChannelTrade, testSymbol(), func() (any, error) {
		defer close(done)
		return nil, errors.New("boom")
	})
	<-done
	time.Sleep(10 * time.Millisecond)
	if called {
		t.Error("handler should not run when decode fails")
	}
}

func TestRegistry_ReplayAllResubscribesTrackedChannels(t *testing.T) {
	sender := &fakeSender{}
	r := New("test", sender, fakeFrameBuilder{}, 16, nil, zerolog.Nop())
	sym := testSymbol()
	_ = r.Subscribe(ChannelOrderBook, sym)
	before := sender.count()

	if err := r.ReplayAll(context.Background()); err != nil {
		t.Fatalf("ReplayAll failed: %v", err)
	}
	if sender.count() != before+1 {
		t.Errorf("expected exactly one replay frame, sender now has %d frames", sender.count())
	}
}

func TestRegistry_DispatchOverflowIncrementsCounter(t *testing.T) {
	r := New("test", nil, nil, 1, nil, zerolog.Nop())
	block := make(chan struct{})
	ready := make(chan struct{})

	// Occupy the worker goroutine so it stops draining the inbox, then fill
	// the one-slot buffer directly: only then is a further Dispatch
	// guaranteed to overflow rather than racing the drain loop.
	r.inbox <- func() { close(ready); <-block }
	<-ready
	r.inbox <- func() {}

	r.Dispatch(ChannelTrade, testSymbol(), func() (any, error) { return model.Trade{}, nil })

	if got := testutil.ToFloat64(r.overflowDropped); got < 1 {
		t.Errorf("expected overflow counter to increment, got %v", got)
	}
	close(block)
}

func TestRegistry_DispatchOverflowDropsOldestNotNewest(t *testing.T) {
	r := New("test", nil, nil, 1, nil, zerolog.Nop())
	block := make(chan struct{})
	ready := make(chan struct{})
	staleRan := make(chan struct{}, 1)
	freshRan := make(chan struct{}, 1)

	r.inbox <- func() { close(ready); <-block }
	<-ready
	r.inbox <- func() { staleRan <- struct{}{} }

	r.Dispatch(ChannelTrade, testSymbol(), func() (any, error) {
		freshRan <- struct{}{}
		return model.Trade{}, nil
	})
	close(block)

	select {
	case <-freshRan:
	case <-time.After(time.Second):
		t.Fatal("expected the newer dispatch to run once the queue drained")
	}
	select {
	case <-staleRan:
		t.Error("expected the stale buffered task to be evicted on overflow, but it ran instead")
	case <-time.After(50 * time.Millisecond):
	}
}
