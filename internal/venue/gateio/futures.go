package gateio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kvantic-labs/xvenue/internal/model"
)

// wireContract is a USDT/BTC-settled perpetual contract listing, the
// futures analogue of wireCurrencyPair.
type wireContract struct {
	Name            string `json:"name"`
	QuoteCurrency   string `json:"quote_currency"`
	OrderPriceRound string `json:"order_price_round"`
	MarkPriceRound  string `json:"mark_price_round"`
	MakerFeeRate    string `json:"maker_fee_rate"`
	TakerFeeRate    string `json:"taker_fee_rate"`
	OrderSizeMin    int64  `json:"order_size_min"`
	FundingRate     string `json:"funding_rate"`
	InDelisting     bool   `json:"in_delisting"`
}

// wireFuturesOrder carries signed integer size (negative == short/sell)
// instead of spot's side+amount pair.
type wireFuturesOrder struct {
	ID          int64  `json:"id"`
	Contract    string `json:"contract"`
	Status      string `json:"status"`
	Size        int64  `json:"size"`
	Left        int64  `json:"left"`
	Price       string `json:"price"`
	Tif         string `json:"tif"`
	FinishAs    string `json:"finish_as"`
	CreateTime  float64 `json:"create_time"`
	FinishTime  float64 `json:"finish_time"`
}

type wireFuturesPosition struct {
	Contract         string `json:"contract"`
	Size             int64  `json:"size"`
	EntryPrice       string `json:"entry_price"`
	MarkPrice        string `json:"mark_price"`
	UnrealisedPnl    string `json:"unrealised_pnl"`
	RealisedPnl      string `json:"realised_pnl"`
	LiqPrice         string `json:"liq_price"`
	Margin           string `json:"margin"`
	Leverage         string `json:"leverage"`
}

func (c *Client) getFuturesContracts(ctx context.Context) ([]model.SymbolInfo, error) {
	body, xerr, err := c.call(ctx, "contracts", http.MethodGet, "/contracts", nil, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var wire []wireContract
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding contracts: %w", err)
	}
	out := make([]model.SymbolInfo, 0, len(wire))
	for _, w := range wire {
		sym, err := c.mapper.ToSymbol(w.Name)
		if err != nil {
			continue
		}
		out = append(out, model.SymbolInfo{
			Symbol:        sym,
			Fees:          model.Fees{MakerPct: parseFloat(w.MakerFeeRate), TakerPct: parseFloat(w.TakerFeeRate)},
			MinBaseQty:    float64(w.OrderSizeMin),
			IsFutures:     true,
			TradingActive: !w.InDelisting,
		})
	}
	return out, nil
}

func (c *Client) GetFundingRate(ctx context.Context, symbol model.Symbol) (model.FundingRate, error) {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return model.FundingRate{}, err
	}
	suffix := fmt.Sprintf("/contracts/%s", pair)
	body, xerr, err := c.call(ctx, "fundingRate", http.MethodGet, suffix, nil, nil)
	if err != nil {
		return model.FundingRate{}, err
	}
	if xerr != nil {
		return model.FundingRate{}, xerr
	}
	var wire struct {
		FundingRate     string  `json:"funding_rate"`
		FundingNextApply float64 `json:"funding_next_apply"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return model.FundingRate{}, fmt.Errorf("decoding funding rate: %w", err)
	}
	return model.FundingRate{
		Symbol:          symbol,
		Rate:            parseFloat(wire.FundingRate),
		NextFundingTime: secToTime(strconv.FormatFloat(wire.FundingNextApply, 'f', -1, 64)),
	}, nil
}

func (c *Client) GetPositions(ctx context.Context) ([]model.Position, error) {
	body, xerr, err := c.call(ctx, "positions", http.MethodGet, "/positions", nil, nil)
	if err != nil {
		return nil, err
	}
	if xerr != nil {
		return nil, xerr
	}
	var wire []wireFuturesPosition
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding positions: %w", err)
	}
	out := make([]model.Position, 0, len(wire))
	for _, w := range wire {
		if w.Size == 0 {
			continue
		}
		sym, err := c.mapper.ToSymbol(w.Contract)
		if err != nil {
			continue
		}
		out = append(out, positionFromWire(sym, w))
	}
	return out, nil
}

func (c *Client) GetPosition(ctx context.Context, symbol model.Symbol) (model.Position, error) {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return model.Position{}, err
	}
	suffix := fmt.Sprintf("/positions/%s", pair)
	body, xerr, err := c.call(ctx, "position", http.MethodGet, suffix, nil, nil)
	if err != nil {
		return model.Position{}, err
	}
	if xerr != nil {
		return model.Position{}, xerr
	}
	var wire wireFuturesPosition
	if err := json.Unmarshal(body, &wire); err != nil {
		return model.Position{}, fmt.Errorf("decoding position: %w", err)
	}
	return positionFromWire(symbol, wire), nil
}

func (c *Client) UpdatePositionMargin(ctx context.Context, symbol model.Symbol, delta float64) error {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return err
	}
	suffix := fmt.Sprintf("/positions/%s/margin", pair)
	_, xerr, err := c.call(ctx, "updateMargin", http.MethodPost, suffix, map[string]string{"change": formatFloat(delta)}, nil)
	if err != nil {
		return err
	}
	if xerr != nil {
		return xerr
	}
	return nil
}

func (c *Client) UpdatePositionLeverage(ctx context.Context, symbol model.Symbol, leverage int) error {
	pair, err := c.mapper.ToPair(symbol)
	if err != nil {
		return err
	}
	suffix := fmt.Sprintf("/positions/%s/leverage", pair)
	_, xerr, err := c.call(ctx, "updateLeverage", http.MethodPost, suffix, map[string]string{"leverage": strconv.Itoa(leverage)}, nil)
	if err != nil {
		return err
	}
	if xerr != nil {
		return xerr
	}
	return nil
}

func positionFromWire(symbol model.Symbol, w wireFuturesPosition) model.Position {
	side := model.PositionLong
	size := float64(w.Size)
	if w.Size < 0 {
		side = model.PositionShort
		size = -size
	}
	p := model.Position{
		Symbol:        symbol,
		Side:          side,
		Size:          size,
		EntryPrice:    parseFloat(w.EntryPrice),
		MarkPrice:     parseFloat(w.MarkPrice),
		UnrealizedPnl: parseFloat(w.UnrealisedPnl),
		RealizedPnl:   parseFloat(w.RealisedPnl),
	}
	if w.LiqPrice != "" {
		liq := parseFloat(w.LiqPrice)
		p.LiquidationPrice = &liq
	}
	if w.Margin != "" {
		margin := parseFloat(w.Margin)
		p.Margin = &margin
	}
	return p
}

func (c *Client) decodeFuturesOrder(symbol model.Symbol, body []byte) (model.Order, error) {
	var w wireFuturesOrder
	if err := json.Unmarshal(body, &w); err != nil {
		return model.Order{}, fmt.Errorf("decoding futures order: %w", err)
	}
	return futuresOrderFromWire(symbol, w), nil
}

func (c *Client) decodeFuturesOrders(symbol model.Symbol, body []byte) ([]model.Order, error) {
	var wire []wireFuturesOrder
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decoding futures orders: %w", err)
	}
	out := make([]model.Order, 0, len(wire))
	for _, w := range wire {
		out = append(out, futuresOrderFromWire(symbol, w))
	}
	return out, nil
}

var gateioFuturesStatus = map[string]model.OrderStatus{
	"open":      model.OrderStatusNew,
	"finished":  model.OrderStatusFilled,
}

func futuresOrderFromWire(symbol model.Symbol, w wireFuturesOrder) model.Order {
	status, ok := gateioFuturesStatus[w.Status]
	if !ok {
		status = model.OrderStatusNew
	}
	if status == model.OrderStatusFilled {
		switch w.FinishAs {
		case "cancelled":
			status = model.OrderStatusCancelled
		case "liquidated":
			status = model.OrderStatusFilled
		}
		if w.Left != 0 && w.FinishAs != "filled" {
			status = model.OrderStatusPartiallyFilled
		}
	}
	side := model.SideBuy
	qty := float64(w.Size)
	if w.Size < 0 {
		side = model.SideSell
		qty = -qty
	}
	left := float64(w.Left)
	if left < 0 {
		left = -left
	}
	return model.Order{
		OrderID:           strconv.FormatInt(w.ID, 10),
		Symbol:            symbol,
		Side:              side,
		Quantity:          qty,
		Price:             parseFloat(w.Price),
		FilledQuantity:    qty - left,
		RemainingQuantity: left,
		Status:            status,
		TimeInForce:       model.TimeInForce(w.Tif),
		Timestamp:         secToTime(strconv.FormatFloat(w.CreateTime, 'f', -1, 64)),
	}
}
