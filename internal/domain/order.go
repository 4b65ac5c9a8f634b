package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MarketNoExpire is the expire sentinel stored on MARKET orders.
// A market order either fills in the window it becomes visible or rests
// until it does; it is never swept by the expiry pass.
const MarketNoExpire = -1

// Order is a resting order in the simulation. It is mutated only by
// Contract (fill application) and Cancel; it is never deleted, so the
// full order history survives for reporting.
type Order struct {
	ID        int
	CreatedAt time.Time
	Side      Side
	Type      OrderType
	Price     decimal.Decimal // limit price; zero for MARKET
	Size      decimal.Decimal
	OpenSize  decimal.Decimal
	Status    OrderStatus
	DelaySec  float64 // seconds before the order is visible to matching
	ExpireSec float64 // 0 = never expires, MarketNoExpire for MARKET

	Executions []Execution
}

// Execution is one fill applied to an order. Immutable once appended.
type Execution struct {
	OrderID   int
	CreatedAt time.Time
	Side      Side
	Price     decimal.Decimal
	Size      decimal.Decimal
	DelaySec  float64
}

// NewOrder validates and creates an order. The id is caller-assigned and
// must be unique; the engine does not assume ids arrive in strict order.
func NewOrder(id int, createdAt time.Time, side Side, typ OrderType, size, price decimal.Decimal, delaySec, expireSec float64) (*Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidArgument, id)
	}
	if createdAt.IsZero() {
		return nil, fmt.Errorf("%w: created_at is required", ErrInvalidArgument)
	}
	if !side.Valid() {
		return nil, fmt.Errorf("%w: side %q", ErrInvalidArgument, side)
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: order type %q", ErrInvalidArgument, typ)
	}
	if !size.IsPositive() {
		return nil, fmt.Errorf("%w: size must be greater than 0, got %s", ErrInvalidArgument, size)
	}
	if typ == OrderTypeMarket {
		expireSec = MarketNoExpire
	}
	return &Order{
		ID:        id,
		CreatedAt: createdAt,
		Side:      side,
		Type:      typ,
		Price:     price,
		Size:      size,
		OpenSize:  size,
		Status:    OrderStatusActive,
		DelaySec:  delaySec,
		ExpireSec: expireSec,
	}, nil
}

// IsActive reports whether the order is still eligible for matching.
func (o *Order) IsActive() bool {
	return o.Status == OrderStatusActive
}

// Cancel marks the order canceled. The open size is frozen as-is, so a
// partially filled order keeps its execution history. Canceling an order
// that is already terminal leaves it CANCELED either way.
func (o *Order) Cancel() {
	o.Status = OrderStatusCanceled
}

// Contract applies a fill of execSize at execPrice to the order.
//
// For LIMIT orders the fill price must not be worse than the limit, and
// for any order the fill must fit in the remaining open size. Either
// breach is an engine bug and surfaces as an InvariantError.
func (o *Order) Contract(execDate time.Time, execPrice, execSize decimal.Decimal) error {
	if o.Type == OrderTypeLimit {
		bad := (o.Side == SideBuy && execPrice.GreaterThan(o.Price)) ||
			(o.Side == SideSell && execPrice.LessThan(o.Price))
		if bad {
			return &InvariantError{
				Op:     "order.contract",
				Detail: fmt.Sprintf("fill price %s violates %s limit %s (order %d)", execPrice, o.Side, o.Price, o.ID),
			}
		}
	}
	if execSize.GreaterThan(o.OpenSize) {
		return &InvariantError{
			Op:     "order.contract",
			Detail: fmt.Sprintf("fill size %s exceeds open size %s (order %d)", execSize, o.OpenSize, o.ID),
		}
	}

	o.OpenSize = Round(o.OpenSize.Sub(execSize))
	if o.OpenSize.IsZero() {
		o.Status = OrderStatusCompleted
	}
	o.Executions = append(o.Executions, Execution{
		OrderID:   o.ID,
		CreatedAt: execDate,
		Side:      o.Side,
		Price:     execPrice,
		Size:      execSize,
	})
	return nil
}

// ExecutedSize is the total size filled so far.
func (o *Order) ExecutedSize() decimal.Decimal {
	return Round(o.Size.Sub(o.OpenSize))
}
