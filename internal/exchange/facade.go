// Package exchange implements the composite exchange façade from spec
// §4.9: the single place that binds one venue's REST adapter, WebSocket
// session, channel registry, and symbol mapper together, and the single
// place a strategy's business-level request crosses into a venue request.
// Grounded on how datafacade/adapters/binance_adapter.go bundles an
// *http.Client, rate limiter, circuit breaker, and wsConns map behind one
// adapter value, generalized into an explicit multi-stage Initialize/Close
// lifecycle per spec §4.9 and the "cyclic references" redesign note in
// spec §9 (the WS session holds only bound handler functions, never a
// back-reference to the façade).
package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvantic-labs/xvenue/internal/model"
	"github.com/kvantic-labs/xvenue/internal/venue"
	"github.com/kvantic-labs/xvenue/internal/wschannel"
	"github.com/kvantic-labs/xvenue/internal/wsclient"
)

// Config tunes one façade instance.
type Config struct {
	Kind              model.ExchangeKind
	SymbolInfoTTL     time.Duration // default 5 minutes per spec §3
	ListenKeyInterval time.Duration // default 30 minutes, MEXC-only
}

func (c Config) withDefaults() Config {
	if c.SymbolInfoTTL == 0 {
		c.SymbolInfoTTL = 5 * time.Minute
	}
	if c.ListenKeyInterval == 0 {
		c.ListenKeyInterval = 30 * time.Minute
	}
	return c
}

// Facade binds one venue's REST adapter (public, optionally private), WS
// session, channel registry, and symbol mapper. It is the single owner of
// its REST adapter and WS session per spec §3's ownership rule.
type Facade struct {
	cfg    Config
	log    zerolog.Logger
	public venue.PublicSpot
	private venue.PrivateSpot // nil in public-only mode
	mapper model.SymbolMapper

	session  *wsclient.Session
	registry *wschannel.Registry

	listenKeyMgr venue.ListenKeyManager // non-nil only for venues requiring one (MEXC spot)

	mu          sync.RWMutex
	symbolInfo  map[model.Symbol]model.SymbolInfo
	bookTickers map[model.Symbol]model.BookTicker // public-mode mirror cache, per spec §4.9 step 2
	balances    map[string]model.AssetBalance     // private-mode mirror
	positions   map[model.Symbol]model.Position   // private-mode mirror (futures venues)

	cancelKeepAlive context.CancelFunc
	wsCancel        context.CancelFunc
	wsDone          <-chan struct{}
}

// New constructs a façade performing no I/O, per spec §4.9 step 1.
func New(cfg Config, public venue.PublicSpot, private venue.PrivateSpot, mapper model.SymbolMapper,
	session *wsclient.Session, registry *wschannel.Registry, listenKeyMgr venue.ListenKeyManager, log zerolog.Logger) *Facade {
	cfg = cfg.withDefaults()
	return &Facade{
		cfg:          cfg,
		log:          log.With().Str("exchange", cfg.Kind.String()).Logger(),
		public:       public,
		private:      private,
		mapper:       mapper,
		session:      session,
		registry:     registry,
		listenKeyMgr: listenKeyMgr,
		symbolInfo:   make(map[model.Symbol]model.SymbolInfo),
		bookTickers:  make(map[model.Symbol]model.BookTicker),
		balances:     make(map[string]model.AssetBalance),
		positions:    make(map[model.Symbol]model.Position),
	}
}

// Kind reports which venue/market this façade drives.
func (f *Facade) Kind() model.ExchangeKind { return f.cfg.Kind }

// Mapper exposes the façade's symbol mapper for callers that need to
// translate a canonical Symbol without going through a REST/WS call.
func (f *Facade) Mapper() model.SymbolMapper { return f.mapper }

// Initialize loads SymbolInfo, opens the WS session, subscribes to the
// requested channels, and binds default handlers that populate the
// internal mirrors, per spec §4.9 step 2.
func (f *Facade) Initialize(ctx context.Context, symbols []model.Symbol, channels []wschannel.ChannelKind) error {
	infos, err := f.public.GetSymbolsInfo(ctx)
	if err != nil {
		return fmt.Errorf("exchange %s: loading symbol info: %w", f.cfg.Kind, err)
	}
	f.mu.Lock()
	for _, si := range infos {
		f.symbolInfo[si.Symbol] = si
	}
	f.mu.Unlock()

	f.bindDefaultHandlers()

	if f.session != nil {
		wsCtx, cancel := context.WithCancel(context.Background())
		f.wsCancel = cancel
		done := make(chan struct{})
		f.wsDone = done
		go func() {
			defer close(done)
			if err := f.session.Run(wsCtx); err != nil {
				f.log.Error().Err(err).Msg("ws session terminated")
			}
		}()

		for _, ch := range channels {
			if err := f.registry.Subscribe(ch, symbols...); err != nil {
				return fmt.Errorf("exchange %s: subscribing %s: %w", f.cfg.Kind, ch, err)
			}
		}
	}

	if f.private != nil && f.listenKeyMgr != nil {
		if err := f.startListenKeyLifecycle(ctx); err != nil {
			return fmt.Errorf("exchange %s: listen key lifecycle: %w", f.cfg.Kind, err)
		}
	}

	return nil
}

// bindDefaultHandlers wires the registry's typed handlers to the façade's
// internal mirrors: BookTicker cache in public mode, balance/position
// mirrors in private mode, matching spec §4.9 step 2.
func (f *Facade) bindDefaultHandlers() {
	f.registry.Bind(wschannel.ChannelBookTicker, wschannel.Handlers{
		BookTicker: func(bt model.BookTicker) {
			f.mu.Lock()
			f.bookTickers[bt.Symbol] = bt
			f.mu.Unlock()
		},
	})
	if f.private != nil {
		f.registry.Bind(wschannel.ChannelAssetBalance, wschannel.Handlers{
			AssetBalance: func(b model.AssetBalance) {
				f.mu.Lock()
				f.balances[b.Asset] = b
				f.mu.Unlock()
			},
		})
		f.registry.Bind(wschannel.ChannelPosition, wschannel.Handlers{
			Position: func(p model.Position) {
				f.mu.Lock()
				f.positions[p.Symbol] = p
				f.mu.Unlock()
			},
		})
	}
}

// BindOrderHandler attaches an additional user-visible order-update handler,
// appended after the façade's own bookkeeping handlers per spec §4.8 bind
// order.
func (f *Facade) BindOrderHandler(h func(model.Order)) {
	f.registry.Bind(wschannel.ChannelOrder, wschannel.Handlers{Order: h})
}

// startListenKeyLifecycle mints a listen key and launches a keep-alive task
// at ListenKeyInterval; a failed keep-alive mints a new key and replays the
// registry's subscriptions. The key is not handed to the WS session or to
// the subscribe frames, and no private channel is subscribed here.
func (f *Facade) startListenKeyLifecycle(ctx context.Context) error {
	key, err := f.listenKeyMgr.CreateListenKey(ctx)
	if err != nil {
		return err
	}

	keepAliveCtx, cancel := context.WithCancel(context.Background())
	f.cancelKeepAlive = cancel
	go func() {
		ticker := time.NewTicker(f.cfg.ListenKeyInterval)
		defer ticker.Stop()
		currentKey := key
		for {
			select {
			case <-keepAliveCtx.Done():
				return
			case <-ticker.C:
				if err := f.listenKeyMgr.KeepAliveListenKey(keepAliveCtx, currentKey); err != nil {
					f.log.Warn().Err(err).Msg("listen key keep-alive failed, re-creating")
					newKey, err := f.listenKeyMgr.CreateListenKey(keepAliveCtx)
					if err != nil {
						f.log.Error().Err(err).Msg("listen key re-creation failed")
						continue
					}
					currentKey = newKey
					if err := f.registry.ReplayAll(keepAliveCtx); err != nil {
						f.log.Error().Err(err).Msg("private channel re-subscribe after listen key refresh failed")
					}
				}
			}
		}
	}()
	return nil
}

// BookTicker returns the most recent WS-pushed snapshot stored for sym. It
// never falls back to REST and applies no age check to the stored value.
// Callers needing a guaranteed-fresh read should use FetchBookTicker
// instead.
func (f *Facade) BookTicker(sym model.Symbol) (model.BookTicker, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	bt, ok := f.bookTickers[sym]
	return bt, ok
}

// FetchBookTicker issues a fresh REST call, bypassing the WS-pushed cache.
func (f *Facade) FetchBookTicker(ctx context.Context, sym model.Symbol) (model.BookTicker, error) {
	tickers, err := f.public.GetTicker(ctx, &sym)
	if err != nil {
		return model.BookTicker{}, err
	}
	if len(tickers) == 0 {
		return model.BookTicker{}, fmt.Errorf("exchange %s: no ticker for %s", f.cfg.Kind, sym)
	}
	return tickers[0], nil
}

// GetHistoricalTrades is a thin pass-through to the public REST surface, kept
// on the façade alongside FetchBookTicker as the other REST call callers
// reach for without going through Public() directly.
func (f *Facade) GetHistoricalTrades(ctx context.Context, sym model.Symbol, from, to *int64, limit int) ([]model.Trade, error) {
	return f.public.GetHistoricalTrades(ctx, sym, from, to, limit)
}

// SymbolInfo returns the cached discovery record, refreshing it first if it
// is older than the configured TTL, per spec §3/§4.9.
func (f *Facade) SymbolInfo(ctx context.Context, sym model.Symbol) (model.SymbolInfo, error) {
	f.mu.RLock()
	si, ok := f.symbolInfo[sym]
	f.mu.RUnlock()
	if ok && !si.Stale(f.cfg.SymbolInfoTTL, time.Now()) {
		return si, nil
	}

	infos, err := f.public.GetSymbolsInfo(ctx)
	if err != nil {
		if ok {
			return si, nil // serve stale rather than fail, matching the TTL-cache's soft-refresh intent
		}
		return model.SymbolInfo{}, err
	}
	f.mu.Lock()
	for _, info := range infos {
		f.symbolInfo[info.Symbol] = info
	}
	result := f.symbolInfo[sym]
	f.mu.Unlock()
	return result, nil
}

// Balance returns the façade's WS-mirrored balance for asset, falling back
// to a fresh REST fetch if the mirror hasn't observed it yet.
func (f *Facade) Balance(ctx context.Context, asset string) (model.AssetBalance, error) {
	f.mu.RLock()
	b, ok := f.balances[asset]
	f.mu.RUnlock()
	if ok {
		return b, nil
	}
	if f.private == nil {
		return model.AssetBalance{}, fmt.Errorf("exchange %s: private API not configured", f.cfg.Kind)
	}
	return f.private.GetAssetBalance(ctx, asset)
}

// Position returns the façade's WS-mirrored position for sym, falling back
// to a fresh REST fetch (futures venues only).
func (f *Facade) Position(ctx context.Context, sym model.Symbol) (model.Position, error) {
	f.mu.RLock()
	p, ok := f.positions[sym]
	f.mu.RUnlock()
	if ok {
		return p, nil
	}
	pf, ok := f.private.(venue.PrivateFutures)
	if !ok {
		return model.Position{}, fmt.Errorf("exchange %s: not a futures venue", f.cfg.Kind)
	}
	return pf.GetPosition(ctx, sym)
}

// Public exposes the underlying public REST surface for callers needing an
// operation the façade does not wrap directly.
func (f *Facade) Public() venue.PublicSpot { return f.public }

// Private exposes the underlying private REST surface (order placement,
// cancellation, withdrawals, ...). Returns nil in public-only mode.
func (f *Facade) Private() venue.PrivateSpot { return f.private }

// PlaceOrder is a thin pass-through to the private REST surface, kept on the
// façade because it is the single place a strategy's business-level "place
// an order" call crosses into a venue request, per spec §4.9.
func (f *Facade) PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (model.Order, error) {
	if f.private == nil {
		return model.Order{}, fmt.Errorf("exchange %s: private API not configured", f.cfg.Kind)
	}
	return f.private.PlaceOrder(ctx, req)
}

// GetOrder is a thin pass-through to the private REST surface, exposed so
// the façade satisfies arb.Venue's order-reconciliation needs.
func (f *Facade) GetOrder(ctx context.Context, sym model.Symbol, orderID string) (model.Order, error) {
	if f.private == nil {
		return model.Order{}, fmt.Errorf("exchange %s: private API not configured", f.cfg.Kind)
	}
	return f.private.GetOrder(ctx, sym, orderID)
}

// CancelOrder is a thin pass-through to the private REST surface.
func (f *Facade) CancelOrder(ctx context.Context, sym model.Symbol, orderID string) (model.Order, error) {
	if f.private == nil {
		return model.Order{}, fmt.Errorf("exchange %s: private API not configured", f.cfg.Kind)
	}
	return f.private.CancelOrder(ctx, sym, orderID)
}

// MinQuoteQty returns the cached SymbolInfo's minimum quote quantity for
// sym, or 0 if the symbol has not been loaded yet (callers treat 0 as "no
// minimum known", matching the original implementation's defensive
// fallback in _get_minimum_order_base_quantity).
func (f *Facade) MinQuoteQty(sym model.Symbol) float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.symbolInfo[sym].MinQuoteQty
}

// Close cancels the listen-key keep-alive task and the WS session's context,
// then waits for the session to exit. It sends no unsubscribe frames and
// leaves the REST clients open.
func (f *Facade) Close() {
	if f.cancelKeepAlive != nil {
		f.cancelKeepAlive()
	}
	if f.wsCancel != nil {
		f.wsCancel()
	}
	if f.wsDone != nil {
		<-f.wsDone
	}
}
