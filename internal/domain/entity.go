package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is a trade direction.
type Side string

// OrderType distinguishes limit and market orders.
type OrderType string

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"

	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"

	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// Opposite returns the other trade direction.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

func (t OrderType) Valid() bool {
	return t == OrderTypeLimit || t == OrderTypeMarket
}

// Tick is one public execution from the recorded tape. The side is the
// taker side of the trade; DelaySec is the observed feed receive delay
// in seconds.
type Tick struct {
	ExecDate         time.Time
	ID               int64
	Side             Side
	Price            decimal.Decimal
	Size             decimal.Decimal
	BuyAcceptanceID  string
	SellAcceptanceID string
	DelaySec         float64
}
