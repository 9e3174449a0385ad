package gateio

import (
	"strconv"
	"time"

	"github.com/kvantic-labs/xvenue/internal/model"
)

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func secToTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(int64(f), 0)
}

func sideLower(s model.OrderSide) string {
	if s == model.SideSell {
		return "sell"
	}
	return "buy"
}

func gateioOrderType(t model.OrderType) string {
	if t == model.OrderTypeLimitMaker {
		return "limit"
	}
	return "limit" // Gate.io spot only accepts type=limit; market behaviour is expressed via time_in_force=ioc + price omitted.
}

func tifOrDefault(tif model.TimeInForce) string {
	switch tif {
	case model.TIFIOC:
		return "ioc"
	case model.TIFFOK:
		return "fok"
	case model.TIFPOC:
		return "poc"
	default:
		return "gtc"
	}
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
		if w.Side == "sell" {
			side = model.SideSell
		}
		out = append(out, model.Trade{
			Symbol:    symbol,
			Price:     parseFloat(w.Price),
			Quantity:  parseFloat(w.Amount),
			Side:      side,
			Timestamp: secToTime(w.CreateTime),
			TradeID:   w.ID,
		})
	}
	return out
}

// klinesFromWire decodes Gate.io's positional candlestick array:
// [timestamp, volume, close, high, low, open] for spot.
func klinesFromWire(symbol model.Symbol, interval string, wire []wireCandle) []model.Kline {
	out := make([]model.Kline, 0, len(wire))
	for _, row := range wire {
		if len(row) < 6 {
			continue
		}
		ts := secToTime(row[0])
		out = append(out, model.Kline{
			Symbol:   symbol,
			Interval: interval,
			OpenTime: ts,
			Volume:   parseFloat(row[1]),
			Close:    parseFloat(row[2]),
			High:     parseFloat(row[3]),
			Low:      parseFloat(row[4]),
			Open:     parseFloat(row[5]),
		})
	}
	return out
}

var gateioOrderStatus = map[string]model.OrderStatus{
	"open":      model.OrderStatusNew,
	"closed":    model.OrderStatusFilled,
	"cancelled": model.OrderStatusCancelled,
}

func orderFromWire(symbol model.Symbol, w wireOrder) model.Order {
	status, ok := gateioOrderStatus[w.Status]
	if !ok {
		status = model.OrderStatusNew
	}
	amount := parseFloat(w.Amount)
	left := parseFloat(w.Left)
	filled := amount - left
	if status == model.OrderStatusFilled && left > 0 {
		// closed orders with IOC/FOK partial fills still report status=closed;
		// treat remaining left as unfilled cancel-on-close, matching the
		// exchange's own semantics rather than forcing FILLED.
		status = model.OrderStatusPartiallyFilled
	}
	return model.Order{
		OrderID:           w.ID,
		Symbol:            symbol,
		Side:              model.OrderSide(w.Side),
		Type:              model.OrderType(w.Type),
		Quantity:          amount,
		Price:             parseFloat(w.Price),
		FilledQuantity:    filled,
		RemainingQuantity: left,
		Status:            status,
		TimeInForce:       model.TimeInForce(w.TimeInForce),
		Timestamp:         secToTime(w.UpdateTime),
	}
}

var gateioWithdrawalStatus = map[string]model.WithdrawalStatus{
	"DONE":      model.WithdrawalCompleted,
	"CANCEL":    model.WithdrawalCancelled,
	"REQUEST":   model.WithdrawalPending,
	"MANUAL":    model.WithdrawalProcessing,
	"BCODE":     model.WithdrawalProcessing,
	"EXTPEND":   model.WithdrawalProcessing,
	"FAIL":      model.WithdrawalFailed,
	"INVALID":   model.WithdrawalFailed,
	"VERIFY":    model.WithdrawalPending,
	"PROCES":    model.WithdrawalProcessing,
	"PEND":      model.WithdrawalPending,
}

func withdrawalFromWire(w wireWithdrawal) model.WithdrawalResponse {
	status, ok := gateioWithdrawalStatus[w.Status]
	if !ok {
		status = model.WithdrawalPending
	}
	return model.WithdrawalResponse{
		WithdrawalID: w.ID,
		Asset:        w.Currency,
		Amount:       parseFloat(w.Amount),
		Status:       status,
		TxID:         w.TxID,
		Timestamp:    secToTime(w.Timestamp),
	}
}
