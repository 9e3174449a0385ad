package gateio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/kvantic-labs/xvenue/internal/model"
	"github.com/kvantic-labs/xvenue/internal/wschannel"
)

// wireChannel maps a canonical ChannelKind to Gate.io's dotted channel name,
// separately for spot and futures (futures uses a "futures." prefix).
func (c *Client) wireChannel(kind wschannel.ChannelKind) string {
	base := map[wschannel.ChannelKind]string{
		wschannel.ChannelOrderBook:    "order_book_update",
		wschannel.ChannelTrade:        "trades",
		wschannel.ChannelBookTicker:   "book_ticker",
		wschannel.ChannelOrder:        "orders",
		wschannel.ChannelAssetBalance: "balances",
		wschannel.ChannelPosition:     "positions",
	}[kind]
	if c.futures {
		return "futures." + base
	}
	return "spot." + base
}

// FrameBuilder implements wschannel.FrameBuilder for Gate.io's
// {time,channel,event,payload} subscribe envelope, shared in shape between
// spot and futures.
type FrameBuilder struct {
	client *Client
}

func NewFrameBuilder(c *Client) FrameBuilder { return FrameBuilder{client: c} }

type gateioWSFrame struct {
	Time    int64    `json:"time"`
	Channel string   `json:"channel"`
	Event   string   `json:"event"`
	Payload []string `json:"payload,omitempty"`
}

func (f FrameBuilder) Subscribe(kind wschannel.ChannelKind, symbols []model.Symbol) any {
	frame := gateioWSFrame{Time: time.Now().Unix(), Channel: f.client.wireChannel(kind), Event: "subscribe"}
	for _, s := range symbols {
		pair, _ := f.client.mapper.ToPair(s)
		frame.Payload = append(frame.Payload, pair)
	}
	return frame
}

func (f FrameBuilder) Unsubscribe(kind wschannel.ChannelKind, symbols []model.Symbol) any {
	frame := gateioWSFrame{Time: time.Now().Unix(), Channel: f.client.wireChannel(kind), Event: "unsubscribe"}
	for _, s := range symbols {
		pair, _ := f.client.mapper.ToPair(s)
		frame.Payload = append(frame.Payload, pair)
	}
	return frame
}

// BuildPing returns the Gate.io application-level heartbeat frame from spec
// §4.7: {time, channel:"ping", event:"ping"}.
func BuildPing() any {
	return gateioWSFrame{Time: time.Now().Unix(), Channel: "ping", Event: "ping"}
}

// wsEnvelope is the outer shape of every Gate.io WS push, shared between
// spot and futures.
type wsEnvelope struct {
	Time    int64           `json:"time"`
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Result  json.RawMessage `json:"result"`
}

type wsOrderBookUpdate struct {
	CurrencyPair string      `json:"s"`
	Bids         [][2]string `json:"b"`
	Asks         [][2]string `json:"a"`
	Timestamp    int64       `json:"t"`
}

type wsBookTicker struct {
	CurrencyPair string `json:"s"`
	BidPrice     string `json:"b"`
	BidSize      string `json:"B"`
	AskPrice     string `json:"a"`
	AskSize      string `json:"A"`
	Timestamp    int64  `json:"t"`
}

type wsTrade struct {
	CurrencyPair string `json:"currency_pair"`
	Side         string `json:"side"`
	Amount       string `json:"amount"`
	Price        string `json:"price"`
	CreateTimeMs string `json:"create_time_ms"`
	ID           int64  `json:"id"`
}

// DecodeUpdate parses one raw WS frame and routes it into reg.Dispatch.
// Unrecognized/ping/subscribe-ack frames are ignored, matching
// _handle_subscription_response's status-only handling in
// gateio_ws_common.py; decode failures never propagate, per spec §4.7.
func (c *Client) DecodeUpdate(reg *wschannel.Registry, data []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return
	}
	if env.Event != "update" || len(env.Result) == 0 {
		return
	}

	switch {
	case matchChannel(env.Channel, "order_book_update"):
		var u wsOrderBookUpdate
		if err := json.Unmarshal(env.Result, &u); err != nil {
			return
		}
		sym, err := c.mapper.ToSymbol(u.CurrencyPair)
		if err != nil {
			return
		}
		reg.Dispatch(wschannel.ChannelOrderBook, sym, func() (any, error) {
			return model.OrderBook{
				Symbol:    sym,
				Venue:     c.venueName,
				Bids:      levels(u.Bids),
				Asks:      levels(u.Asks),
				Timestamp: time.UnixMilli(u.Timestamp),
			}, nil
		})
	case matchChannel(env.Channel, "book_ticker"):
		var t wsBookTicker
		if err := json.Unmarshal(env.Result, &t); err != nil {
			return
		}
		sym, err := c.mapper.ToSymbol(t.CurrencyPair)
		if err != nil {
			return
		}
		reg.Dispatch(wschannel.ChannelBookTicker, sym, func() (any, error) {
			return model.BookTicker{
				Symbol:    sym,
				Venue:     c.venueName,
				BidPrice:  parseFloat(t.BidPrice),
				BidQty:    parseFloat(t.BidSize),
				AskPrice:  parseFloat(t.AskPrice),
				AskQty:    parseFloat(t.AskSize),
				Timestamp: time.UnixMilli(t.Timestamp),
			}, nil
		})
	case matchChannel(env.Channel, "trades"):
		var trades []wsTrade
		if err := json.Unmarshal(env.Result, &trades); err != nil {
			var single wsTrade
			if err := json.Unmarshal(env.Result, &single); err != nil {
				return
			}
			trades = []wsTrade{single}
		}
		for _, t := range trades {
			t := t
			sym, err := c.mapper.ToSymbol(t.CurrencyPair)
			if err != nil {
				continue
			}
			reg.Dispatch(wschannel.ChannelTrade, sym, func() (any, error) {
				side := model.SideBuy
				if t.Side == "sell" {
					side = model.SideSell
				}
				ms, _ := strconv.ParseInt(t.CreateTimeMs, 10, 64)
				return model.Trade{
					Symbol:    sym,
					Price:     parseFloat(t.Price),
					Quantity:  parseFloat(t.Amount),
					Side:      side,
					Timestamp: time.UnixMilli(ms),
					TradeID:   fmt.Sprintf("%d", t.ID),
				}, nil
			})
		}
	case matchChannel(env.Channel, "orders"):
		var orders []wireOrder
		if err := json.Unmarshal(env.Result, &orders); err != nil {
			return
		}
		for _, o := range orders {
			o := o
			sym, err := c.mapper.ToSymbol(o.CurrencyPair)
			if err != nil {
				continue
			}
			reg.Dispatch(wschannel.ChannelOrder, sym, func() (any, error) {
				return orderFromWire(sym, o), nil
			})
		}
	case matchChannel(env.Channel, "balances"):
		var balances []wireAccount
		if err := json.Unmarshal(env.Result, &balances); err != nil {
			return
		}
		for _, b := range balances {
			b := b
			reg.Dispatch(wschannel.ChannelAssetBalance, model.Symbol{}, func() (any, error) {
				return model.AssetBalance{Asset: b.Currency, Available: parseFloat(b.Available), Locked: parseFloat(b.Locked)}, nil
			})
		}
	case matchChannel(env.Channel, "positions"):
		var positions []wireFuturesPosition
		if err := json.Unmarshal(env.Result, &positions); err != nil {
			return
		}
		for _, p := range positions {
			p := p
			sym, err := c.mapper.ToSymbol(p.Contract)
			if err != nil {
				continue
			}
			reg.Dispatch(wschannel.ChannelPosition, sym, func() (any, error) {
				return positionFromWire(sym, p), nil
			})
		}
	}
}

func matchChannel(wire, suffix string) bool {
	return len(wire) >= len(suffix) && wire[len(wire)-len(suffix):] == suffix
}

func levels(raw [][2]string) []model.PriceLevel {
	out := make([]model.PriceLevel, 0, len(raw))
	for _, lvl := range raw {
		out = append(out, model.PriceLevel{Price: parseFloat(lvl[0]), Size: parseFloat(lvl[1])})
	}
	return out
}
