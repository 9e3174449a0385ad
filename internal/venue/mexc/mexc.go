// Package mexc implements the venue.PublicSpot / venue.PrivateSpot /
// venue.ListenKeyManager contracts for MEXC spot, grounded on
// mexc_rest_spot_private.py's endpoint surface and request/response shapes,
// composed over internal/transport + internal/ratelimit + internal/venueauth
// the way datafacade/adapters/binance_adapter.go composes rate limiter +
// circuit breaker around each REST call.
package mexc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/kvantic-labs/xvenue/internal/model"
	"github.com/kvantic-labs/xvenue/internal/ratelimit"
	"github.com/kvantic-labs/xvenue/internal/transport"
	"github.com/kvantic-labs/xvenue/internal/venue"
	"github.com/kvantic-labs/xvenue/internal/venueauth"
	"github.com/kvantic-labs/xvenue/internal/xerrors"
)

const venueName = "mexc"

// Client is the MEXC spot REST adapter.
type Client struct {
	transport *transport.Client
	limiter   *ratelimit.Limiter
	auth      *venueauth.MEXCAuthenticator
	mapper    *SymbolMapper
	log       zerolog.Logger
}

func New(t *transport.Client, limiter *ratelimit.Limiter, auth *venueauth.MEXCAuthenticator, mapper *SymbolMapper, log zerolog.Logger) *Client {
	return &Client{transport: t, limiter: limiter, auth: auth, mapper: mapper, log: log}
}

// call signs (when required), rate-limits, and executes one REST round trip,
// returning the decoded response body or a classified/transport error.
func (c *Client) call(ctx context.Context, op, method, path string, params map[string]string, body []byte) ([]byte, *xerrors.Error, error) {
	if err := c.limiter.AcquirePermit(ctx, venueName, path); err != nil {
		return nil, nil, err
	}

	rawQuery := url.Values{}
	for k, v := range params {
		rawQuery.Set(k, v)
	}

	var signed venueauth.SignedRequest
	if c.auth.RequiresAuth(path) {
		var err error
		signed, err = c.auth.Sign(method, path, rawQuery.Encode(), body)
		if err != nil {
			return nil, nil, fmt.Errorf("signing request: %w", err)
		}
	} else {
		signed = venueauth.SignedRequest{Query: params, Body: body}
	}

	resp, xerr, err := c.transport.Do(ctx, op, method, path, signed)
	if err != nil || xerr != nil {
		return nil, xerr, err
	}
	return resp.Body, nil, nil
}

func (c *Client) GetSymbolsInfo(ctx context.Context) ([]model.SymbolInfo, error) {
	body, xerr, err := c.call(ctx, "exchangeInfo", http.MethodGet, "/api/v3/exchangeInfo", nil, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var resp symbolsInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding exchangeInfo: %w", err)
	}
	out := make([]model.SymbolInfo, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status != "ENABLED" && s.Status != "1" {
			continue
		}
		sym, err := c.mapper.ToSymbol(s.Symbol)
		if err != nil {
			continue
		}
		si := model.SymbolInfo{
			Symbol:         sym,
			BasePrecision:  s.BaseAssetPrecision,
			QuotePrecision: s.QuoteAssetPrecision,
			TradingActive:  true,
		}
		for _, f := range s.Filters {
			switch f.FilterType {
			case "PRICE_FILTER":
				si.TickSize = parseFloat(f.TickSize)
			case "LOT_SIZE":
				si.StepSize = parseFloat(f.StepSize)
				si.MinBaseQty = parseFloat(f.MinQty)
			}
		}
		si.Fees.MakerPct = parseFloat(s.MakerCommission)
		si.Fees.TakerPct = parseFloat(s.TakerCommission)
		out = append(out, si)
	}
	return out, nil
}

func (c *Client) GetOrderbook(ctx context.Context, symbol model.Symbol, limit int) (model.OrderBook, error) {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return model.OrderBook{}, err
	}
	if limit <= 0 {
		limit = 100
	}
	body, xerr, err := c.call(ctx, "depth", http.MethodGet, "/api/v3/depth",
		map[string]string{"symbol": pair, "limit": strconv.Itoa(limit)}, nil)
	if err != nil {
		return model.OrderBook{}, err
	}
	if xerr != nil {
		return model.OrderBook{}, xerr
	}
	var resp depthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.OrderBook{}, fmt.Errorf("decoding depth: %w", err)
	}
	return model.OrderBook{
		Symbol: symbol,
		Venue:  venueName,
		Bids:   levelsFromPairs(resp.Bids),
		Asks:   levelsFromPairs(resp.Asks),
	}, nil
}

func (c *Client) GetRecentTrades(ctx context.Context, symbol model.Symbol, limit int) ([]model.Trade, error) {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 500
	}
	body, xerr, err := c.call(ctx, "trades", http.MethodGet, "/api/v3/trades",
		map[string]string{"symbol": pair, "limit": strconv.Itoa(limit)}, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var wire []wireTrade
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding trades: %w", err)
	}
	return tradesFromWire(symbol, wire), nil
}

// GetHistoricalTrades fetches older trades than GetRecentTrades covers
// against /api/v3/historicalTrades, the literal path spec §6 names. MEXC's
// endpoint windows by time the same way GetKlines does, so from/to reuse
// that method's startTime/endTime query-param convention.
func (c *Client) GetHistoricalTrades(ctx context.Context, symbol model.Symbol, from, to *int64, limit int) ([]model.Trade, error) {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 500
	}
	params := map[string]string{"symbol": pair, "limit": strconv.Itoa(limit)}
	if from != nil {
		params["startTime"] = strconv.FormatInt(*from, 10)
	}
	if to != nil {
		params["endTime"] = strconv.FormatInt(*to, 10)
	}
	body, xerr, err := c.call(ctx, "historicalTrades", http.MethodGet, "/api/v3/historicalTrades", params, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var wire []wireTrade
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding historicalTrades: %w", err)
	}
	return tradesFromWire(symbol, wire), nil
}

func (c *Client) GetTicker(ctx context.Context, symbol *model.Symbol) ([]model.BookTicker, error) {
	params := map[string]string{}
	if symbol != nil {
		pair, err := c.mapper.ToPair(*symbol)
		if err != nil {
			return nil, err
		}
		params["symbol"] = pair
	}
	body, xerr, err := c.call(ctx, "bookTicker", http.MethodGet, "/api/v3/ticker/bookTicker", params, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	if symbol != nil {
		var wire wireBookTicker
		if err := json.Unmarshal(body, &wire); err != nil {
			return nil, fmt.Errorf("decoding bookTicker: %w", err)
		}
		return []model.BookTicker{bookTickerFromWire(*symbol, wire, c.mapper)}, nil
	}
	var wire []wireBookTicker
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding bookTicker: %w", err)
	}
	out := make([]model.BookTicker, 0, len(wire))
	for _, w := range wire {
		sym, err := c.mapper.ToSymbol(w.Symbol)
		if err != nil {
			continue
		}
		out = append(out, bookTickerFromWire(sym, w, c.mapper))
	}
	return out, nil
}

func (c *Client) GetKlines(ctx context.Context, symbol model.Symbol, interval string, from, to *int64) ([]model.Kline, error) {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return nil, err
	}
	params := map[string]string{"symbol": pair, "interval": interval}
	if from != nil {
		params["startTime"] = strconv.FormatInt(*from, 10)
	}
	if to != nil {
		params["endTime"] = strconv.FormatInt(*to, 10)
	}
	body, xerr, err := c.call(ctx, "klines", http.MethodGet, "/api/v3/klines", params, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var raw [][]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding klines: %w", err)
	}
	return klinesFromWire(symbol, interval, raw), nil
}

// GetKlinesBatch fetches history in chunked windows, sleeping between chunks
// via the rate limiter's own pacing so callers never need their own
// throttling loop, per spec §4.6's "chunked with sleep" requirement.
func (c *Client) GetKlinesBatch(ctx context.Context, symbol model.Symbol, interval string, from, to int64, chunk int64) ([]model.Kline, error) {
	var out []model.Kline
	for start := from; start < to; start += chunk {
		end := start + chunk
		if end > to {
			end = to
		}
		ks, err := c.GetKlines(ctx, symbol, interval, &start, &end)
		if err != nil {
			return out, err
		}
		out = append(out, ks...)
	}
	return out, nil
}

func (c *Client) GetServerTime(ctx context.Context) (int64, error) {
	body, xerr, err := c.call(ctx, "time", http.MethodGet, "/api/v3/time", nil, nil)
	if err != nil {
		return 0, err
	}
	if xerr != nil {
		return 0, xerr
	}
	var resp serverTimeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decoding time: %w", err)
	}
	return resp.ServerTime, nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, xerr, err := c.call(ctx, "ping", http.MethodGet, "/api/v3/ping", nil, nil)
	if err != nil {
		return err
	}
	if xerr != nil {
		return xerr
	}
	return nil
}

func (c *Client) GetBalances(ctx context.Context) ([]model.AssetBalance, error) {
	body, xerr, err := c.call(ctx, "account", http.MethodGet, "/api/v3/account", nil, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var resp accountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding account: %w", err)
	}
	out := make([]model.AssetBalance, 0, len(resp.Balances))
	for _, b := range resp.Balances {
		free, locked := parseFloat(b.Free), parseFloat(b.Locked)
		if free == 0 && locked == 0 {
			continue
		}
		out = append(out, model.AssetBalance{Asset: b.Asset, Available: free, Locked: locked})
	}
	return out, nil
}

func (c *Client) GetAssetBalance(ctx context.Context, asset string) (model.AssetBalance, error) {
	all, err := c.GetBalances(ctx)
	if err != nil {
		return model.AssetBalance{}, err
	}
	for _, b := range all {
		if b.Asset == asset {
			return b, nil
		}
	}
	return model.AssetBalance{Asset: asset}, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req model.PlaceOrderRequest) (model.Order, error) {
	if err := req.Validate(); err != nil {
		return model.Order{}, err
	}
	pair, err := c.mapper.ToPair(req.Symbol)
	if err != nil {
		return model.Order{}, err
	}
	params := map[string]string{
		"symbol": pair,
		"side":   string(req.Side),
		"type":   string(req.Type),
	}
	if req.Quantity > 0 {
		params["quantity"] = formatFloat(req.Quantity)
	}
	if req.QuoteQty > 0 {
		params["quoteOrderQty"] = formatFloat(req.QuoteQty)
	}
	if req.Price > 0 {
		params["price"] = formatFloat(req.Price)
	}
	if req.StopPrice > 0 {
		params["stopPrice"] = formatFloat(req.StopPrice)
	}
	if req.Type == model.OrderTypeLimit || req.Type == model.OrderTypeLimitMaker || req.Type == model.OrderTypeStopLimit {
		tif := req.TIF
		if tif == "" {
			tif = model.TIFGTC
		}
		params["timeInForce"] = string(tif)
	}

	body, xerr, err := c.call(ctx, "order", http.MethodPost, "/api/v3/order", params, nil)
	if err != nil {
		return model.Order{}, err
	}
	if xerr != nil {
		return model.Order{}, xerr
	}
	var wire wireOrder
	if err := json.Unmarshal(body, &wire); err != nil {
		return model.Order{}, fmt.Errorf("decoding order: %w", err)
	}
	return orderFromWire(req.Symbol, wire), nil
}

func (c *Client) CancelOrder(ctx context.Context, symbol model.Symbol, orderID string) (model.Order, error) {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return model.Order{}, err
	}
	body, xerr, err := c.call(ctx, "cancelOrder", http.MethodDelete, "/api/v3/order",
		map[string]string{"symbol": pair, "orderId": orderID}, nil)
	if err != nil {
		return model.Order{}, err
	}
	if xerr != nil {
		// Per spec §4.6: cancelling an already-done order collapses to a
		// best-effort getOrder fetch rather than surfacing the error.
		if xerr.Kind == xerrors.KindOrderNotFound || xerr.Kind == xerrors.KindCancelFailed {
			return c.GetOrder(ctx, symbol, orderID)
		}
		return model.Order{}, xerr
	}
	var wire wireOrder
	if err := json.Unmarshal(body, &wire); err != nil {
		return model.Order{}, fmt.Errorf("decoding cancelOrder: %w", err)
	}
	return orderFromWire(symbol, wire), nil
}

func (c *Client) CancelAllOrders(ctx context.Context, symbol model.Symbol) error {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return err
	}
	_, xerr, err := c.call(ctx, "cancelAllOrders", http.MethodDelete, "/api/v3/openOrders",
		map[string]string{"symbol": pair}, nil)
	if err != nil {
		return err
	}
	if xerr != nil {
		return xerr
	}
	return nil
}

func (c *Client) GetOrder(ctx context.Context, symbol model.Symbol, orderID string) (model.Order, error) {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return model.Order{}, err
	}
	body, xerr, err := c.call(ctx, "getOrder", http.MethodGet, "/api/v3/order",
		map[string]string{"symbol": pair, "orderId": orderID}, nil)
	if err != nil {
		return model.Order{}, err
	}
	if xerr != nil {
		return model.Order{}, xerr
	}
	var wire wireOrder
	if err := json.Unmarshal(body, &wire); err != nil {
		return model.Order{}, fmt.Errorf("decoding order: %w", err)
	}
	return orderFromWire(symbol, wire), nil
}

func (c *Client) GetOpenOrders(ctx context.Context, symbol *model.Symbol) ([]model.Order, error) {
	if symbol == nil {
		// MEXC mandates a symbol parameter; per spec §4.6 this must return
		// an empty list rather than error.
		c.log.Debug().Msg("getOpenOrders called without symbol on a venue that requires one; returning empty list")
		return nil, nil
	}
	pair, err := c.mapper.ToPair(*symbol)
	if err != nil {
		return nil, err
	}
	body, xerr, err := c.call(ctx, "openOrders", http.MethodGet, "/api/v3/openOrders",
		map[string]string{"symbol": pair}, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var wire []wireOrder
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding openOrders: %w", err)
	}
	out := make([]model.Order, 0, len(wire))
	for _, w := range wire {
		out = append(out, orderFromWire(*symbol, w))
	}
	return out, nil
}

func (c *Client) GetHistoryOrders(ctx context.Context, symbol model.Symbol, start, end *int64, limit int) ([]model.Order, error) {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return nil, err
	}
	params := map[string]string{"symbol": pair}
	if start != nil {
		params["startTime"] = strconv.FormatInt(*start, 10)
	}
	if end != nil {
		params["endTime"] = strconv.FormatInt(*end, 10)
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, xerr, err := c.call(ctx, "allOrders", http.MethodGet, "/api/v3/allOrders", params, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var wire []wireOrder
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding allOrders: %w", err)
	}
	out := make([]model.Order, 0, len(wire))
	for _, w := range wire {
		out = append(out, orderFromWire(symbol, w))
	}
	return out, nil
}

func (c *Client) GetAccountTrades(ctx context.Context, symbol model.Symbol, orderID *string, start, end *int64, limit int) ([]model.Trade, error) {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return nil, err
	}
	params := map[string]string{"symbol": pair}
	if orderID != nil {
		params["orderId"] = *orderID
	}
	if start != nil {
		params["startTime"] = strconv.FormatInt(*start, 10)
	}
	if end != nil {
		params["endTime"] = strconv.FormatInt(*end, 10)
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, xerr, err := c.call(ctx, "myTrades", http.MethodGet, "/api/v3/myTrades", params, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var wire []wireTrade
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding myTrades: %w", err)
	}
	return tradesFromWire(symbol, wire), nil
}

// notSupportedError mirrors the Python original's explicit "MEXC has no
// native order amend" behaviour: ModifyOrder always fails with a terminal,
// non-retryable error so callers fall back to cancel-and-replace themselves.
type notSupportedError string

func (e notSupportedError) Error() string { return string(e) }

func (c *Client) ModifyOrder(ctx context.Context, symbol model.Symbol, orderID string, req model.PlaceOrderRequest) (model.Order, error) {
	return model.Order{}, notSupportedError("mexc: native order modification is not supported; cancel and replace instead")
}

func (c *Client) GetAssetsInfo(ctx context.Context) (map[string]venue.AssetNetworks, error) {
	body, xerr, err := c.call(ctx, "capitalConfig", http.MethodGet, "/api/v3/capital/config/getall", nil, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var wire []wireAssetInfo
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding capital/config: %w", err)
	}
	out := make(map[string]venue.AssetNetworks, len(wire))
	for _, a := range wire {
		out[a.Coin] = assetInfoFromWire(a)
	}
	return out, nil
}

func (c *Client) GetTradingFees(ctx context.Context, symbol *model.Symbol) (model.Fees, error) {
	params := map[string]string{}
	if symbol != nil {
		pair, err := c.mapper.ToPair(*symbol)
		if err != nil {
			return model.Fees{}, err
		}
		params["symbol"] = pair
	}
	body, xerr, err := c.call(ctx, "tradeFee", http.MethodGet, "/api/v3/tradeFee", params, nil)
	if err != nil {
		return model.Fees{}, err
	}
	if xerr != nil {
		return model.Fees{}, xerr
	}
	var wire wireTradingFee
	if err := json.Unmarshal(body, &wire); err != nil {
		return model.Fees{}, fmt.Errorf("decoding tradeFee: %w", err)
	}
	return model.Fees{MakerPct: parseFloat(wire.MakerCommission), TakerPct: parseFloat(wire.TakerCommission)}, nil
}

func (c *Client) SubmitWithdrawal(ctx context.Context, req model.WithdrawalRequest) (model.WithdrawalResponse, error) {
	params := map[string]string{
		"coin":    req.Asset,
		"network": req.Network,
		"address": req.Address,
		"amount":  formatFloat(req.Amount),
	}
	if req.Memo != "" {
		params["memo"] = req.Memo
	}
	body, xerr, err := c.call(ctx, "withdraw", http.MethodPost, "/api/v3/capital/withdraw/apply", params, nil)
	if err != nil {
		return model.WithdrawalResponse{}, err
	}
	if xerr != nil {
		return model.WithdrawalResponse{}, xerr
	}
	var wire struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return model.WithdrawalResponse{}, fmt.Errorf("decoding withdraw apply: %w", err)
	}
	return model.WithdrawalResponse{WithdrawalID: wire.ID, Asset: req.Asset, Amount: req.Amount, Status: model.WithdrawalPending}, nil
}

// CancelWithdrawal always returns false: MEXC has no native withdrawal
// cancellation endpoint, per the original implementation's documented Open
// Question resolution.
func (c *Client) CancelWithdrawal(ctx context.Context, withdrawalID string) (bool, error) {
	return false, nil
}

func (c *Client) GetWithdrawalStatus(ctx context.Context, withdrawalID string) (model.WithdrawalResponse, error) {
	hist, err := c.GetWithdrawalHistory(ctx, nil, 1000)
	if err != nil {
		return model.WithdrawalResponse{}, err
	}
	for _, w := range hist {
		if w.WithdrawalID == withdrawalID {
			return w, nil
		}
	}
	return model.WithdrawalResponse{}, fmt.Errorf("mexc: withdrawal %s not found", withdrawalID)
}

func (c *Client) GetWithdrawalHistory(ctx context.Context, asset *string, limit int) ([]model.WithdrawalResponse, error) {
	params := map[string]string{}
	if asset != nil {
		params["coin"] = *asset
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, xerr, err := c.call(ctx, "withdrawHistory", http.MethodGet, "/api/v3/capital/withdraw/history", params, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var wire []wireWithdrawal
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding withdraw history: %w", err)
	}
	out := make([]model.WithdrawalResponse, 0, len(wire))
	for _, w := range wire {
		out = append(out, withdrawalFromWire(w))
	}
	return out, nil
}

func (c *Client) GetDepositAddress(ctx context.Context, asset, network string) (string, error) {
	body, xerr, err := c.call(ctx, "depositAddress", http.MethodGet, "/api/v3/capital/deposit/address",
		map[string]string{"coin": asset, "network": network}, nil)
	if err != nil {
		return "", err
	}
	if xerr != nil {
		return "", xerr
	}
	var wire struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return "", fmt.Errorf("decoding deposit address: %w", err)
	}
	return wire.Address, nil
}

func (c *Client) GetDepositHistory(ctx context.Context, asset *string, limit int) ([]model.WithdrawalResponse, error) {
	params := map[string]string{}
	if asset != nil {
		params["coin"] = *asset
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, xerr, err := c.call(ctx, "depositHistory", http.MethodGet, "/api/v3/capital/deposit/hisrec", params, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var wire []wireDeposit
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding deposit history: %w", err)
	}
	out := make([]model.WithdrawalResponse, 0, len(wire))
	for _, w := range wire {
		out = append(out, model.WithdrawalResponse{
			Asset:     w.Coin,
			Amount:    parseFloat(w.Amount),
			Status:    depositStatus(w.Status),
			TxID:      w.TxID,
			Timestamp: msToTime(w.InsertTime),
		})
	}
	return out, nil
}

func (c *Client) CreateListenKey(ctx context.Context) (string, error) {
	body, xerr, err := c.call(ctx, "userDataStream", http.MethodPost, "/api/v3/userDataStream", nil, nil)
	if err != nil {
		return "", err
	}
	if xerr != nil {
		return "", xerr
	}
	var resp listenKeyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding listenKey: %w", err)
	}
	return resp.ListenKey, nil
}

func (c *Client) KeepAliveListenKey(ctx context.Context, key string) error {
	_, xerr, err := c.call(ctx, "userDataStreamKeepAlive", http.MethodPut, "/api/v3/userDataStream",
		map[string]string{"listenKey": key}, nil)
	if err != nil {
		return err
	}
	if xerr != nil {
		return xerr
	}
	return nil
}

func (c *Client) DeleteListenKey(ctx context.Context, key string) error {
	_, xerr, err := c.call(ctx, "userDataStreamDelete", http.MethodDelete, "/api/v3/userDataStream",
		map[string]string{"listenKey": key}, nil)
	if err != nil {
		return err
	}
	if xerr != nil {
		return xerr
	}
	return nil
}
