package mexc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kvantic-labs/xvenue/internal/model"
	"github.com/kvantic-labs/xvenue/internal/wschannel"
)

// streamFor maps a canonical ChannelKind to MEXC's dot-separated spot
// stream name, e.g. "spot@public.bookTicker.v3.api@BTCUSDT".
func streamFor(kind wschannel.ChannelKind, pair string) string {
	switch kind {
	case wschannel.ChannelOrderBook:
		return fmt.Sprintf("spot@public.limit.depth.v3.api@%s@20", pair)
	case wschannel.ChannelTrade:
		return fmt.Sprintf("spot@public.deals.v3.api@%s", pair)
	case wschannel.ChannelBookTicker:
		return fmt.Sprintf("spot@public.bookTicker.v3.api@%s", pair)
	case wschannel.ChannelOrder:
		return "spot@private.orders.v3.api"
	case wschannel.ChannelAssetBalance:
		return "spot@private.account.v3.api"
	default:
		return ""
	}
}

// FrameBuilder implements wschannel.FrameBuilder for MEXC's
// {method:"SUBSCRIPTION"|"UNSUBSCRIPTION", params:[...]} envelope.
type FrameBuilder struct {
	mapper *SymbolMapper
}

func NewFrameBuilder(mapper *SymbolMapper) FrameBuilder { return FrameBuilder{mapper: mapper} }

type mexcWSFrame struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
}

func (f FrameBuilder) Subscribe(kind wschannel.ChannelKind, symbols []model.Symbol) any {
	return mexcWSFrame{Method: "SUBSCRIPTION", Params: f.streams(kind, symbols)}
}

func (f FrameBuilder) Unsubscribe(kind wschannel.ChannelKind, symbols []model.Symbol) any {
	return mexcWSFrame{Method: "UNSUBSCRIPTION", Params: f.streams(kind, symbols)}
}

func (f FrameBuilder) streams(kind wschannel.ChannelKind, symbols []model.Symbol) []string {
	if len(symbols) == 0 {
		if s := streamFor(kind, ""); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		pair, err := f.mapper.ToPair(sym)
		if err != nil {
			continue
		}
		if s := streamFor(kind, pair); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// BuildPing returns the MEXC spot WS heartbeat frame, a PING method call
// appropriate to its dialect per spec §4.7 (distinct from Gate.io's
// {time,channel,event} ping shape).
func BuildPing() any {
	return mexcWSFrame{Method: "PING"}
}

type wsPushEnvelope struct {
	Channel   string          `json:"c"`
	Symbol    string          `json:"s"`
	Data      json.RawMessage `json:"d"`
	Timestamp int64           `json:"t"`
}

type wsDepthData struct {
	Bids []wsDepthLevel `json:"bids"`
	Asks []wsDepthLevel `json:"asks"`
}

type wsDepthLevel struct {
	Price string `json:"p"`
	Qty   string `json:"v"`
}

type wsDealData struct {
	Deals []struct {
		Price string `json:"p"`
		Qty   string `json:"v"`
		Side  int    `json:"T"` // 1 = buy, 2 = sell
		Time  int64  `json:"t"`
	} `json:"deals"`
}

type wsBookTickerData struct {
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
}

type wsOrderData struct {
	OrderID    string `json:"i"`
	Status     int    `json:"s"`
	Side       int    `json:"S"`
	Price      string `json:"p"`
	Quantity   string `json:"v"`
	Filled     string `json:"cv"`
	CreateTime int64  `json:"O"`
}

type wsBalanceData struct {
	Asset     string `json:"a"`
	Available string `json:"f"`
	Locked    string `json:"l"`
}

// DecodeUpdate parses one raw MEXC WS frame and routes it into
// reg.Dispatch. Ping/pong/subscribe-ack frames and decode failures are
// silently ignored, per spec §4.7.
func (c *Client) DecodeUpdate(reg *wschannel.Registry, data []byte) {
	var env wsPushEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Channel == "" {
		return
	}

	switch {
	case contains(env.Channel, "depth"):
		var d wsDepthData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		sym, err := c.mapper.ToSymbol(env.Symbol)
		if err != nil {
			return
		}
		reg.Dispatch(wschannel.ChannelOrderBook, sym, func() (any, error) {
			return model.OrderBook{
				Symbol:    sym,
				Venue:     venueName,
				Bids:      depthLevels(d.Bids),
				Asks:      depthLevels(d.Asks),
				Timestamp: time.UnixMilli(env.Timestamp),
			}, nil
		})
	case contains(env.Channel, "deals"):
		var d wsDealData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		sym, err := c.mapper.ToSymbol(env.Symbol)
		if err != nil {
			return
		}
		for _, deal := range d.Deals {
			deal := deal
			reg.Dispatch(wschannel.ChannelTrade, sym, func() (any, error) {
				side := model.SideBuy
				if deal.Side == 2 {
					side = model.SideSell
				}
				return model.Trade{
					Symbol:    sym,
					Price:     parseFloat(deal.Price),
					Quantity:  parseFloat(deal.Qty),
					Side:      side,
					Timestamp: time.UnixMilli(deal.Time),
				}, nil
			})
		}
	case contains(env.Channel, "bookTicker"):
		var d wsBookTickerData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		sym, err := c.mapper.ToSymbol(env.Symbol)
		if err != nil {
			return
		}
		reg.Dispatch(wschannel.ChannelBookTicker, sym, func() (any, error) {
			return model.BookTicker{
				Symbol:    sym,
				Venue:     venueName,
				BidPrice:  parseFloat(d.BidPrice),
				BidQty:    parseFloat(d.BidQty),
				AskPrice:  parseFloat(d.AskPrice),
				AskQty:    parseFloat(d.AskQty),
				Timestamp: time.UnixMilli(env.Timestamp),
			}, nil
		})
	case contains(env.Channel, "orders"):
		var d wsOrderData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		sym, err := c.mapper.ToSymbol(env.Symbol)
		if err != nil {
			return
		}
		reg.Dispatch(wschannel.ChannelOrder, sym, func() (any, error) {
			side := model.SideBuy
			if d.Side == 2 {
				side = model.SideSell
			}
			qty := parseFloat(d.Quantity)
			filled := parseFloat(d.Filled)
			return model.Order{
				OrderID:           d.OrderID,
				Symbol:            sym,
				Side:              side,
				Quantity:          qty,
				Price:             parseFloat(d.Price),
				FilledQuantity:    filled,
				RemainingQuantity: qty - filled,
				Status:            orderStatusFromWSCode(d.Status),
				Timestamp:         time.UnixMilli(d.CreateTime),
			}, nil
		})
	case contains(env.Channel, "account"):
		var d wsBalanceData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return
		}
		reg.Dispatch(wschannel.ChannelAssetBalance, model.Symbol{}, func() (any, error) {
			return model.AssetBalance{Asset: d.Asset, Available: parseFloat(d.Available), Locked: parseFloat(d.Locked)}, nil
		})
	}
}

func orderStatusFromWSCode(code int) model.OrderStatus {
	switch code {
	case 1:
		return model.OrderStatusNew
	case 2:
		return model.OrderStatusFilled
	case 3:
		return model.OrderStatusPartiallyFilled
	case 4:
		return model.OrderStatusCancelled
	case 5:
		return model.OrderStatusPartiallyFilled
	default:
		return model.OrderStatusNew
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (indexOf(s, substr) >= 0)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func depthLevels(raw []wsDepthLevel) []model.PriceLevel {
	out := make([]model.PriceLevel, 0, len(raw))
	for _, lvl := range raw {
		out = append(out, model.PriceLevel{Price: parseFloat(lvl.Price), Size: parseFloat(lvl.Qty)})
	}
	return out
}
