package service

import (
	"fmt"
	"time"

	"baktgo/internal/domain"

	"github.com/shopspring/decimal"
)

// PositionManager owns the live (not yet fully closed) positions and
// hands out position ids.
type PositionManager struct {
	positions []*domain.Position
	nextID    int
}

func NewPositionManager() *PositionManager {
	return &PositionManager{}
}

// Open creates a position from a fill against order o and adds it to the
// live set. The opening price is the order's limit price; market orders
// carry no limit, so the caller passes the tape price through openPrice.
func (m *PositionManager) Open(execDate time.Time, o *domain.Order, openPrice, amount decimal.Decimal) (*domain.Position, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: order must not be nil", domain.ErrInvalidArgument)
	}
	if execDate.IsZero() || !amount.IsPositive() || !openPrice.IsPositive() {
		return nil, fmt.Errorf("%w: exec_date, price and amount are required to open a position", domain.ErrInvalidArgument)
	}
	m.nextID++
	p := domain.NewPosition(m.nextID, execDate, o.Side, openPrice, amount, decimal.Zero, o.ID)
	m.positions = append(m.positions, p)
	return p, nil
}

// List returns the live positions in storage order. The engine scans
// this slice directly; removal happens afterwards via Compact.
func (m *PositionManager) List() []*domain.Position {
	return m.positions
}

// Filter returns live positions on one side.
func (m *PositionManager) Filter(side domain.Side) []*domain.Position {
	var ret []*domain.Position
	for _, p := range m.positions {
		if p.Side == side {
			ret = append(ret, p)
		}
	}
	return ret
}

// HasReverse reports whether any live position opposes the given side.
func (m *PositionManager) HasReverse(side domain.Side) bool {
	for _, p := range m.positions {
		if p.Side != side {
			return true
		}
	}
	return false
}

// Compact drops fully closed positions from the live set, preserving the
// order of the remainder. Called after a matching scan so the scan never
// deletes out from under itself.
func (m *PositionManager) Compact() {
	kept := m.positions[:0]
	for _, p := range m.positions {
		if !p.IsClosed() {
			kept = append(kept, p)
		}
	}
	// Clear the tail so archived positions are not pinned.
	for i := len(kept); i < len(m.positions); i++ {
		m.positions[i] = nil
	}
	m.positions = kept
}

// Len is the number of live positions.
func (m *PositionManager) Len() int {
	return len(m.positions)
}

// SumOpenSize totals the unclosed quantity on one side.
func (m *PositionManager) SumOpenSize(side domain.Side) decimal.Decimal {
	total := decimal.Zero
	for _, p := range m.Filter(side) {
		total = total.Add(p.OpenAmount)
	}
	return domain.Round(total)
}

// UnrealizedPnl marks every live position to the last traded price.
func (m *PositionManager) UnrealizedPnl(ltp decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range m.positions {
		if p.Side == domain.SideBuy {
			total = total.Add(ltp.Sub(p.OpenPrice).Mul(p.OpenAmount))
		} else {
			total = total.Add(p.OpenPrice.Sub(ltp).Mul(p.OpenAmount))
		}
	}
	return domain.Round(total)
}
