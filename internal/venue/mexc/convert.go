package mexc

import (
	"strconv"
	"time"

	"github.com/kvantic-labs/xvenue/internal/model"
	"github.com/kvantic-labs/xvenue/internal/venue"
)

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func msToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func levelsFromPairs(pairs [][2]string) []model.PriceLevel {
	out := make([]model.PriceLevel, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, model.PriceLevel{Price: parseFloat(p[0]), Size: parseFloat(p[1])})
	}
	return out
}

func tradesFromWire(symbol model.Symbol, wire []wireTrade) []model.Trade {
	out := make([]model.Trade, 0, len(wire))
	for _, w := range wire {
		side := model.SideBuy
		if w.IsBuyerMaker {
			side = model.SideSell
		}
		out = append(out, model.Trade{
			Symbol:    symbol,
			Price:     parseFloat(w.Price),
			Quantity:  parseFloat(w.Qty),
			Side:      side,
			Timestamp: msToTime(w.Time),
			IsMaker:   w.IsBuyerMaker,
			TradeID:   strconv.FormatInt(w.ID, 10),
		})
	}
	return out
}

func bookTickerFromWire(symbol model.Symbol, w wireBookTicker, _ *SymbolMapper) model.BookTicker {
	return model.BookTicker{
		Symbol:   symbol,
		Venue:    venueName,
		BidPrice: parseFloat(w.BidPrice),
		BidQty:   parseFloat(w.BidQty),
		AskPrice: parseFloat(w.AskPrice),
		AskQty:   parseFloat(w.AskQty),
	}
}

// klinesFromWire decodes MEXC's positional kline array:
// [openTime, open, high, low, close, volume, closeTime, quoteVolume, tradeCount, ...]
func klinesFromWire(symbol model.Symbol, interval string, raw [][]interface{}) []model.Kline {
	out := make([]model.Kline, 0, len(raw))
	for _, row := range raw {
		if len(row) < 8 {
			continue
		}
		out = append(out, model.Kline{
			Symbol:      symbol,
			Interval:    interval,
			OpenTime:    msToTime(toInt64(row[0])),
			Open:        toFloat(row[1]),
			High:        toFloat(row[2]),
			Low:         toFloat(row[3]),
			Close:       toFloat(row[4]),
			Volume:      toFloat(row[5]),
			CloseTime:   msToTime(toInt64(row[6])),
			QuoteVolume: toFloat(row[7]),
		})
	}
	return out
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case string:
		return parseFloat(t)
	case float64:
		return t
	default:
		return 0
	}
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		i, _ := strconv.ParseInt(t, 10, 64)
		return i
	default:
		return 0
	}
}

var mexcOrderStatus = map[string]model.OrderStatus{
	"NEW":              model.OrderStatusNew,
	"PARTIALLY_FILLED": model.OrderStatusPartiallyFilled,
	"FILLED":           model.OrderStatusFilled,
	"CANCELED":         model.OrderStatusCancelled,
	"CANCELLED":        model.OrderStatusCancelled,
	"REJECTED":         model.OrderStatusRejected,
	"EXPIRED":          model.OrderStatusExpired,
	"PARTIALLY_CANCELED": model.OrderStatusCancelled,
}

func orderFromWire(symbol model.Symbol, w wireOrder) model.Order {
	status, ok := mexcOrderStatus[w.Status]
	if !ok {
		status = model.OrderStatusNew
	}
	orig := parseFloat(w.OrigQty)
	executed := parseFloat(w.ExecutedQty)
	ts := w.TransactTime
	if ts == 0 {
		ts = w.Time
	}
	if ts == 0 {
		ts = w.UpdateTime
	}
	return model.Order{
		OrderID:           w.OrderID,
		Symbol:            symbol,
		Side:              model.OrderSide(w.Side),
		Type:              model.OrderType(w.Type),
		Quantity:          orig,
		Price:             parseFloat(w.Price),
		FilledQuantity:    executed,
		RemainingQuantity: orig - executed,
		Status:            status,
		TimeInForce:       model.TimeInForce(w.TimeInForce),
		Timestamp:         msToTime(ts),
	}
}

func withdrawalFromWire(w wireWithdrawal) model.WithdrawalResponse {
	return model.WithdrawalResponse{
		WithdrawalID: w.ID,
		Asset:        w.Coin,
		Amount:       parseFloat(w.Amount),
		Status:       withdrawalStatus(w.Status),
		TxID:         w.TxID,
		Timestamp:    msToTime(w.ApplyTime),
	}
}

// withdrawalStatus maps MEXC's numeric withdrawal status codes to the
// canonical enum (0=APPLY, 1=AUDITING, 2=WAIT, 3=PROCESSING, 4=WAIT_PACKAGING,
// 5=WAIT_CONFIRM, 6=SUCCESS, 7=FAILED, 8=CANCEL, 9=MANUAL, 10=MANUAL).
func withdrawalStatus(code int) model.WithdrawalStatus {
	switch code {
	case 6:
		return model.WithdrawalCompleted
	case 7:
		return model.WithdrawalFailed
	case 8:
		return model.WithdrawalCancelled
	case 3, 4, 5:
		return model.WithdrawalProcessing
	default:
		return model.WithdrawalPending
	}
}

func depositStatus(code int) model.WithdrawalStatus {
	switch code {
	case 1:
		return model.WithdrawalCompleted
	case 0:
		return model.WithdrawalPending
	default:
		return model.WithdrawalProcessing
	}
}

func assetInfoFromWire(a wireAssetInfo) venue.AssetNetworks {
	networks := make([]venue.NetworkInfo, 0, len(a.NetworkList))
	for _, n := range a.NetworkList {
		networks = append(networks, venue.NetworkInfo{
			Network:         n.Network,
			WithdrawEnabled: n.WithdrawEnable,
			DepositEnabled:  n.DepositEnable,
			WithdrawFee:     parseFloat(n.WithdrawFee),
			WithdrawMin:     parseFloat(n.WithdrawMin),
		})
	}
	return venue.AssetNetworks{Asset: a.Coin, Networks: networks}
}
