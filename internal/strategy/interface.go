package strategy

import (
	"fmt"
	"time"

	"baktgo/internal/domain"

	"github.com/shopspring/decimal"
)

// Context is the observable simulation state handed to a strategy once
// per window, after settlement and order expiry.
type Context struct {
	WindowIndex  int
	Now          time.Time // end of the current window
	ActiveOrders []*domain.Order
	Positions    []*domain.Position
	LongSize     decimal.Decimal
	ShortSize    decimal.Decimal
	Ltp          decimal.Decimal
}

// Strategy originates orders from observable state. Implementations are
// called exactly once per window and must be deterministic: the same
// tape and the same state must produce the same orders.
type Strategy interface {
	Think(ctx Context) ([]*domain.Order, error)
}

// Params are the per-strategy settings from the user section of the
// config file. Extra carries strategy-specific knobs by name.
type Params struct {
	OrderDelaySec  float64
	OrderExpireSec float64
	OrderSize      decimal.Decimal
	PosLimitSize   decimal.Decimal
	Extra          map[string]float64
}

// ExtraOr returns the named extra parameter or a fallback.
func (p Params) ExtraOr(name string, fallback float64) float64 {
	if v, ok := p.Extra[name]; ok {
		return v
	}
	return fallback
}

// OrderFactory issues orders with sequential ids carrying the configured
// entry delay and expiry.
type OrderFactory struct {
	nextID    int
	delaySec  float64
	expireSec float64
}

func NewOrderFactory(delaySec, expireSec float64) *OrderFactory {
	return &OrderFactory{delaySec: delaySec, expireSec: expireSec}
}

// Buy creates a limit buy order.
func (f *OrderFactory) Buy(t time.Time, size, price decimal.Decimal) (*domain.Order, error) {
	f.nextID++
	return domain.NewOrder(f.nextID, t, domain.SideBuy, domain.OrderTypeLimit, size, price, f.delaySec, f.expireSec)
}

// Sell creates a limit sell order.
func (f *OrderFactory) Sell(t time.Time, size, price decimal.Decimal) (*domain.Order, error) {
	f.nextID++
	return domain.NewOrder(f.nextID, t, domain.SideSell, domain.OrderTypeLimit, size, price, f.delaySec, f.expireSec)
}

// BuyMarket creates a market buy order.
func (f *OrderFactory) BuyMarket(t time.Time, size decimal.Decimal) (*domain.Order, error) {
	f.nextID++
	return domain.NewOrder(f.nextID, t, domain.SideBuy, domain.OrderTypeMarket, size, decimal.Zero, f.delaySec, 0)
}

// SellMarket creates a market sell order.
func (f *OrderFactory) SellMarket(t time.Time, size decimal.Decimal) (*domain.Order, error) {
	f.nextID++
	return domain.NewOrder(f.nextID, t, domain.SideSell, domain.OrderTypeMarket, size, decimal.Zero, f.delaySec, 0)
}

// New builds a registered strategy by name. The tape is handed to the
// constructor so strategies can precompute indicator series.
func New(name string, p Params, ticks []domain.Tick) (Strategy, error) {
	switch name {
	case "pricefollow":
		return NewPriceFollow(p, ticks)
	case "smacross":
		return NewSMACross(p, ticks)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidArgument, name)
	}
}
