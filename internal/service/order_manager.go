package service

import (
	"fmt"
	"time"

	"baktgo/internal/domain"

	"github.com/shopspring/decimal"
)

// OrderFilter selects orders by attribute. Zero-valued fields match
// everything.
type OrderFilter struct {
	Side   domain.Side
	Type   domain.OrderType
	Status domain.OrderStatus
}

// OrderStats is the per-run order summary.
type OrderStats struct {
	NumOfOrders          int
	NumOfBuyOrders       int
	NumOfSellOrders      int
	NumOfLimitOrders     int
	NumOfMarketOrders    int
	NumOfCompletedOrders int
	NumOfCanceledOrders  int
	NumOfActiveOrders    int
	NumOfExecutions      int
	SizeOfOrders         decimal.Decimal
	SizeOfLimitOrders    decimal.Decimal
	SizeOfMarketOrders   decimal.Decimal
	SizeOfExecutions     decimal.Decimal
	AvgOrderSize         decimal.Decimal
	ExecRate             decimal.Decimal
}

// OrderManager owns the full order collection of one run. Orders are
// appended and mutated in place, never removed.
type OrderManager struct {
	orders []*domain.Order
}

func NewOrderManager() *OrderManager {
	return &OrderManager{}
}

// Add appends one order.
func (m *OrderManager) Add(o *domain.Order) error {
	if o == nil {
		return fmt.Errorf("%w: order must not be nil", domain.ErrInvalidArgument)
	}
	m.orders = append(m.orders, o)
	return nil
}

// AddAll appends a batch of orders, preserving order.
func (m *OrderManager) AddAll(orders []*domain.Order) error {
	for _, o := range orders {
		if err := m.Add(o); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the orders matching f, in insertion order.
func (m *OrderManager) Get(f OrderFilter) []*domain.Order {
	var ret []*domain.Order
	for _, o := range m.orders {
		if f.Side != "" && o.Side != f.Side {
			continue
		}
		if f.Type != "" && o.Type != f.Type {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		ret = append(ret, o)
	}
	return ret
}

// Len counts orders matching f.
func (m *OrderManager) Len(f OrderFilter) int {
	return len(m.Get(f))
}

// Size sums the original size of orders matching f.
func (m *OrderManager) Size(f OrderFilter) decimal.Decimal {
	total := decimal.Zero
	for _, o := range m.Get(f) {
		total = total.Add(o.Size)
	}
	return domain.Round(total)
}

// ActiveOrders returns orders visible to matching at now: status ACTIVE
// and resting at least their configured entry delay. An order created
// one second ago with a five second delay is active but not yet visible.
func (m *OrderManager) ActiveOrders(now time.Time) []*domain.Order {
	var ret []*domain.Order
	for _, o := range m.orders {
		if o.IsActive() && now.Sub(o.CreatedAt).Seconds() >= o.DelaySec {
			ret = append(ret, o)
		}
	}
	return ret
}

// CancelExpired cancels every visible order whose lifetime has passed at
// until. Orders with no expiry (zero or the market sentinel) are kept.
func (m *OrderManager) CancelExpired(until time.Time) {
	for _, o := range m.ActiveOrders(until) {
		if o.ExpireSec > 0 && until.Sub(o.CreatedAt).Seconds() > o.ExpireSec {
			o.Cancel()
		}
	}
}

// Executions returns every fill of every order, grouped by order in
// insertion order.
func (m *OrderManager) Executions() []domain.Execution {
	var ret []domain.Execution
	for _, o := range m.orders {
		ret = append(ret, o.Executions...)
	}
	return ret
}

// ExecutedSize is the filled size summed over all orders.
func (m *OrderManager) ExecutedSize() decimal.Decimal {
	total := decimal.Zero
	for _, o := range m.orders {
		total = total.Add(o.ExecutedSize())
	}
	return domain.Round(total)
}

// Stats aggregates the order-side summary. Ratios with an empty
// denominator come back zero instead of failing.
func (m *OrderManager) Stats() OrderStats {
	num := len(m.orders)
	size := m.Size(OrderFilter{})
	execSize := m.ExecutedSize()

	s := OrderStats{
		NumOfOrders:          num,
		NumOfBuyOrders:       m.Len(OrderFilter{Side: domain.SideBuy}),
		NumOfSellOrders:      m.Len(OrderFilter{Side: domain.SideSell}),
		NumOfLimitOrders:     m.Len(OrderFilter{Type: domain.OrderTypeLimit}),
		NumOfMarketOrders:    m.Len(OrderFilter{Type: domain.OrderTypeMarket}),
		NumOfCompletedOrders: m.Len(OrderFilter{Status: domain.OrderStatusCompleted}),
		NumOfCanceledOrders:  m.Len(OrderFilter{Status: domain.OrderStatusCanceled}),
		NumOfActiveOrders:    m.Len(OrderFilter{Status: domain.OrderStatusActive}),
		NumOfExecutions:      len(m.Executions()),
		SizeOfOrders:         size,
		SizeOfLimitOrders:    m.Size(OrderFilter{Type: domain.OrderTypeLimit}),
		SizeOfMarketOrders:   m.Size(OrderFilter{Type: domain.OrderTypeMarket}),
		SizeOfExecutions:     execSize,
		AvgOrderSize:         decimal.Zero,
		ExecRate:             decimal.Zero,
	}
	if num > 0 {
		s.AvgOrderSize = domain.Round(size.Div(decimal.NewFromInt(int64(num))))
	}
	if size.IsPositive() {
		s.ExecRate = execSize.Div(size).Round(2)
	}
	return s
}
