package model

import "time"

// OrderSide is the canonical buy/sell direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Flip returns the opposite side.
func (s OrderSide) Flip() OrderSide {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType is the canonical order type.
type OrderType string

const (
	OrderTypeLimit      OrderType = "LIMIT"
	OrderTypeLimitMaker OrderType = "LIMIT_MAKER"
	OrderTypeMarket     OrderType = "MARKET"
	OrderTypeStopLimit  OrderType = "STOP_LIMIT"
)

// TimeInForce is the canonical time-in-force policy.
type TimeInForce string

const (
	TIFGTC TimeInForce = "GTC"
	TIFIOC TimeInForce = "IOC"
	TIFFOK TimeInForce = "FOK"
	TIFPOC TimeInForce = "POC" // post-only / Post-Only-Cancel
)

// OrderStatus is the canonical lifecycle status of an order.
//
// Lifecycle: NEW -> (PARTIALLY_FILLED)* -> FILLED | CANCELLED | REJECTED | EXPIRED.
// Terminal statuses are sticky: once an order reaches one, it never regresses.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
	OrderStatusRejected        OrderStatus = "REJECTED"
	OrderStatusExpired         OrderStatus = "EXPIRED"
)

// IsTerminal reports whether the status is sticky/final.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected, OrderStatusExpired:
		return true
	default:
		return false
	}
}

// IsOrderDone is a convenience alias mirroring the original implementation's
// is_order_done helper used throughout the arbitrage task.
func IsOrderDone(o Order) bool {
	return o.Status.IsTerminal()
}

// Order is the canonical representation of an exchange order, filled in by a
// venue adapter from its wire response.
type Order struct {
	OrderID            string
	Symbol             Symbol
	Side               OrderSide
	Type               OrderType
	Quantity           float64
	Price              float64 // zero value means "not set" for market orders
	FilledQuantity     float64
	RemainingQuantity  float64
	Status             OrderStatus
	TimeInForce        TimeInForce
	Timestamp          time.Time
}

// PlaceOrderRequest is the canonical input to placeOrder. Venue adapters
// translate this into their wire-level request.
type PlaceOrderRequest struct {
	Symbol      Symbol
	Side        OrderSide
	Type        OrderType
	Quantity    float64 // base quantity; zero if QuoteQty is used for MARKET BUY
	Price       float64 // required for LIMIT/LIMIT_MAKER/STOP_LIMIT
	QuoteQty    float64 // alternative sizing for MARKET BUY
	TIF         TimeInForce
	StopPrice   float64 // required for STOP_LIMIT
	IcebergQty  float64
}

// Validate enforces the order placement input rules from spec §4.6.
func (r PlaceOrderRequest) Validate() error {
	switch r.Type {
	case OrderTypeLimit, OrderTypeLimitMaker, OrderTypeStopLimit:
		if r.Price <= 0 {
			return errInvalidOrderInput("price is required for " + string(r.Type) + " orders")
		}
		if r.Type == OrderTypeStopLimit && r.StopPrice <= 0 {
			return errInvalidOrderInput("stopPrice is required for STOP_LIMIT orders")
		}
	case OrderTypeMarket:
		if r.Side == SideBuy {
			if r.Quantity <= 0 && r.QuoteQty <= 0 {
				return errInvalidOrderInput("MARKET BUY requires quantity or quoteQty")
			}
		} else {
			if r.Quantity <= 0 {
				return errInvalidOrderInput("MARKET SELL requires quantity")
			}
		}
	}
	return nil
}

type orderInputError string

func (e orderInputError) Error() string { return string(e) }

func errInvalidOrderInput(msg string) error { return orderInputError(msg) }
