// Package wschannel implements the WebSocket channel registry from spec
// §4.8: idempotent subscribe/unsubscribe bookkeeping that survives
// reconnects, typed handler binding (OrderBook, Trade, BookTicker, Order,
// AssetBalance, Position), and the bounded-inbound-queue-with-drop-oldest
// policy from spec §4.7's "Queue overflow" failure mode. Grounded on
// BinanceAdapter's per-stream subscription map in
// src/infrastructure/datafacade/adapters/binance_adapter.go, generalized
// from one channel kind (trades) to the full channel taxonomy this spec
// requires, and on gateio_ws_private.py's listen-key-free design versus
// MEXC's REST-minted listen key (mexc_ws_private.py) for the
// private-channel authentication split.
package wschannel

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kvantic-labs/xvenue/internal/model"
)

// ChannelKind enumerates the update types a venue's WS session can deliver.
type ChannelKind string

const (
	ChannelOrderBook     ChannelKind = "orderbook"
	ChannelTrade         ChannelKind = "trade"
	ChannelBookTicker    ChannelKind = "book_ticker"
	ChannelOrder         ChannelKind = "order"
	ChannelAssetBalance  ChannelKind = "asset_balance"
	ChannelPosition      ChannelKind = "position"
)

// subscriptionKey identifies one (channel, symbol) pair. Symbol is empty for
// account-wide private channels (order/balance/position updates that are
// not symbol-scoped on the wire).
type subscriptionKey struct {
	Channel ChannelKind
	Symbol  model.Symbol
}

// Handlers is the set of typed callbacks bindable per channel. Multiple
// handlers may be bound to the same channel; invocation order follows bind
// order, per spec §4.8.
type Handlers struct {
	OrderBook    func(model.OrderBook)
	Trade        func(model.Trade)
	BookTicker   func(model.BookTicker)
	Order        func(model.Order)
	AssetBalance func(model.AssetBalance)
	Position     func(model.Position)
}

// Sender is the minimal surface the registry needs from a wsclient.Session
// to emit subscribe/unsubscribe control frames.
type Sender interface {
	SendJSON(v any) error
}

// FrameBuilder constructs the venue-specific wire frames for subscribe and
// unsubscribe control messages. Each venue (MEXC, Gate.io spot, Gate.io
// futures) supplies its own, since the channel-naming and payload shape
// differ per spec §6.
type FrameBuilder interface {
	Subscribe(channel ChannelKind, symbols []model.Symbol) any
	Unsubscribe(channel ChannelKind, symbols []model.Symbol) any
}

// ListenKeyManager is implemented by the private façade of a venue that
// requires a REST-minted listen key before subscribing to private channels
// (MEXC spot), per spec §4.8.
type ListenKeyManager interface {
	CreateListenKey(ctx context.Context) (string, error)
	KeepAliveListenKey(ctx context.Context, key string) error
}

// Registry tracks active subscriptions for one venue's WS session, binds
// typed handlers, and replays the subscription set after a reconnect.
type Registry struct {
	venue   string
	sender  Sender
	frames  FrameBuilder
	log     zerolog.Logger

	mu      sync.RWMutex
	subs    map[subscriptionKey]bool
	handlers map[ChannelKind][]any

	overflowDropped prometheus.Counter

	inbox chan func()
	inboxCap int
}

func New(venue string, sender Sender, frames FrameBuilder, inboxCap int, reg prometheus.Registerer, log zerolog.Logger) *Registry {
	if inboxCap <= 0 {
		inboxCap = 1024
	}
	r := &Registry{
		venue:    venue,
		sender:   sender,
		frames:   frames,
		log:      log.With().Str("venue", venue).Logger(),
		subs:     make(map[subscriptionKey]bool),
		handlers: make(map[ChannelKind][]any),
		inbox:    make(chan func(), inboxCap),
		inboxCap: inboxCap,
	}
	r.overflowDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "xvenue_ws_queue_overflow_dropped_total",
		Help:        "Updates dropped because the inbound dispatch queue was full",
		ConstLabels: prometheus.Labels{"venue": venue},
	})
	if reg != nil {
		reg.MustRegister(r.overflowDropped)
	}
	go r.dispatchLoop()
	return r
}

func (r *Registry) dispatchLoop() {
	for fn := range r.inbox {
		fn()
	}
}

// Subscribe records the subscription (idempotent) and, if a sender/frame
// builder is wired, emits the wire-level subscribe frame immediately.
func (r *Registry) Subscribe(channel ChannelKind, symbols ...model.Symbol) error {
	keys := r.keysFor(channel, symbols)
	r.mu.Lock()
	newSymbols := make([]model.Symbol, 0, len(keys))
	for i, k := range keys {
		if !r.subs[k] {
			r.subs[k] = true
			if len(symbols) > 0 {
				newSymbols = append(newSymbols, symbols[i])
			}
		}
	}
	r.mu.Unlock()

	if r.sender == nil || r.frames == nil {
		return nil
	}
	if len(symbols) > 0 && len(newSymbols) == 0 {
		return nil // already subscribed to everything requested
	}
	frame := r.frames.Subscribe(channel, newSymbols)
	return r.sender.SendJSON(frame)
}

// Unsubscribe removes the subscription and emits the unsubscribe frame.
func (r *Registry) Unsubscribe(channel ChannelKind, symbols ...model.Symbol) error {
	keys := r.keysFor(channel, symbols)
	r.mu.Lock()
	for _, k := range keys {
		delete(r.subs, k)
	}
	r.mu.Unlock()

	if r.sender == nil || r.frames == nil {
		return nil
	}
	frame := r.frames.Unsubscribe(channel, symbols)
	return r.sender.SendJSON(frame)
}

func (r *Registry) keysFor(channel ChannelKind, symbols []model.Symbol) []subscriptionKey {
	if len(symbols) == 0 {
		return []subscriptionKey{{Channel: channel}}
	}
	keys := make([]subscriptionKey, len(symbols))
	for i, s := range symbols {
		keys[i] = subscriptionKey{Channel: channel, Symbol: s}
	}
	return keys
}

// Bind attaches a typed handler set to a channel kind. Multiple calls append
// rather than replace, preserving bind order for invocation per spec §4.8.
func (r *Registry) Bind(channel ChannelKind, h Handlers) {
	var fn any
	switch channel {
	case ChannelOrderBook:
		fn = h.OrderBook
	case ChannelTrade:
		fn = h.Trade
	case ChannelBookTicker:
		fn = h.BookTicker
	case ChannelOrder:
		fn = h.Order
	case ChannelAssetBalance:
		fn = h.AssetBalance
	case ChannelPosition:
		fn = h.Position
	default:
		return
	}
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.handlers[channel] = append(r.handlers[channel], fn)
	r.mu.Unlock()
}

// ReplayAll re-sends a subscribe frame for every currently-tracked
// subscription, grouped by channel. Called by the WS session's
// OnReconnect hook so the subscription set survives a reconnect without
// user action, per spec §4.8 / Testable Property 6.
func (r *Registry) ReplayAll(ctx context.Context) error {
	r.mu.RLock()
	byChannel := make(map[ChannelKind][]model.Symbol)
	for k := range r.subs {
		if !k.Symbol.IsZero() {
			byChannel[k.Channel] = append(byChannel[k.Channel], k.Symbol)
		} else if _, ok := byChannel[k.Channel]; !ok {
			byChannel[k.Channel] = nil
		}
	}
	r.mu.RUnlock()

	if r.sender == nil || r.frames == nil {
		return nil
	}
	for channel, symbols := range byChannel {
		frame := r.frames.Subscribe(channel, symbols)
		if err := r.sender.SendJSON(frame); err != nil {
			return fmt.Errorf("replay subscribe %s: %w", channel, err)
		}
	}
	return nil
}

// Dispatch decodes and routes one raw update to every bound handler for its
// channel. It never panics the reader loop on a decode error: the error is
// logged with a correlation id and the loop continues, per spec §4.7.
// Overflow of the bounded inbound queue evicts the oldest buffered update to
// make room for this one, per spec §4.7's "overflow drops oldest updates"
// recovery contract: the arbitrage core re-queries REST state after any gap
// signal, so a stale buffered update surviving past a fresher one would
// invert that assumption.
func (r *Registry) Dispatch(channel ChannelKind, sym model.Symbol, decode func() (any, error)) {
	task := func() {
		v, err := decode()
		if err != nil {
			r.log.Debug().Str("channel", string(channel)).Err(err).Msg("ws decode error, continuing")
			return
		}
		r.invoke(channel, v)
	}
	select {
	case r.inbox <- task:
		return
	default:
	}
	select {
	case <-r.inbox:
		r.overflowDropped.Inc()
		r.log.Warn().Str("channel", string(channel)).Msg("ws inbound queue overflow, dropping oldest buffered update")
	default:
	}
	select {
	case r.inbox <- task:
	default:
		// The dispatch loop drained and refilled the slot we just freed
		// between the two selects; drop this update instead rather than
		// block the caller's read loop.
		r.overflowDropped.Inc()
		r.log.Warn().Str("channel", string(channel)).Msg("ws inbound queue overflow, dropping update")
	}
}

func (r *Registry) invoke(channel ChannelKind, v any) {
	r.mu.RLock()
	fns := append([]any(nil), r.handlers[channel]...)
	r.mu.RUnlock()

	for _, fn := range fns {
		switch channel {
		case ChannelOrderBook:
			if h, ok := fn.(func(model.OrderBook)); ok {
				if ob, ok := v.(model.OrderBook); ok {
					h(ob)
				}
			}
		case ChannelTrade:
			if h, ok := fn.(func(model.Trade)); ok {
				if t, ok := v.(model.Trade); ok {
					h(t)
				}
			}
		case ChannelBookTicker:
			if h, ok := fn.(func(model.BookTicker)); ok {
				if bt, ok := v.(model.BookTicker); ok {
					h(bt)
				}
			}
		case ChannelOrder:
			if h, ok := fn.(func(model.Order)); ok {
				if o, ok := v.(model.Order); ok {
					h(o)
				}
			}
		case ChannelAssetBalance:
			if h, ok := fn.(func(model.AssetBalance)); ok {
				if b, ok := v.(model.AssetBalance); ok {
					h(b)
				}
			}
		case ChannelPosition:
			if h, ok := fn.(func(model.Position)); ok {
				if p, ok := v.(model.Position); ok {
					h(p)
				}
			}
		}
	}
}

// Active returns a snapshot of the currently tracked (channel,symbol) pairs,
// for tests verifying Testable Property 6 (subscription replay equality).
func (r *Registry) Active() map[ChannelKind][]model.Symbol {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[ChannelKind][]model.Symbol)
	for k := range r.subs {
		out[k.Channel] = append(out[k.Channel], k.Symbol)
	}
	return out
}
