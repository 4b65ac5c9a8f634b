package service

import (
	"fmt"
	"sort"

	"baktgo/internal/domain"

	"github.com/shopspring/decimal"
)

// TradeStats is the outcome summary over the archived trades. Win/lose
// counting groups partial closes by the order that opened the exposure,
// so one logical entry that settled in several pieces is one outcome.
type TradeStats struct {
	NumOfTrades   int
	NumOfWin      int
	NumOfLose     int
	NumOfEven     int
	WinRate       decimal.Decimal
	Profit        decimal.Decimal
	Loss          decimal.Decimal // absolute value
	ExpectedValue decimal.Decimal
	TotalPnl      decimal.Decimal
	ProfitFactor  decimal.Decimal
}

// TradeManager archives fully closed positions. The archive is
// append-only; nothing mutates a trade after it lands here.
type TradeManager struct {
	trades []*domain.Position
}

func NewTradeManager() *TradeManager {
	return &TradeManager{}
}

// Add archives a fully closed position.
func (m *TradeManager) Add(p *domain.Position) error {
	if p == nil {
		return fmt.Errorf("%w: position must not be nil", domain.ErrInvalidArgument)
	}
	m.trades = append(m.trades, p)
	return nil
}

// List returns the archived trades in close order.
func (m *TradeManager) List() []*domain.Position {
	return m.trades
}

// Len is the number of archived trades.
func (m *TradeManager) Len() int {
	return len(m.trades)
}

// SumPnl is the realized profit and loss over all archived trades.
func (m *TradeManager) SumPnl() decimal.Decimal {
	total := decimal.Zero
	for _, p := range m.trades {
		total = total.Add(p.Pnl)
	}
	return domain.Round(total)
}

// SumPnlPositive totals only the winning trades.
func (m *TradeManager) SumPnlPositive() decimal.Decimal {
	total := decimal.Zero
	for _, p := range m.trades {
		if p.Pnl.IsPositive() {
			total = total.Add(p.Pnl)
		}
	}
	return domain.Round(total)
}

// SumPnlNegative totals only the losing trades. The result is negative
// or zero.
func (m *TradeManager) SumPnlNegative() decimal.Decimal {
	total := decimal.Zero
	for _, p := range m.trades {
		if p.Pnl.IsNegative() {
			total = total.Add(p.Pnl)
		}
	}
	return domain.Round(total)
}

// Stats computes the win/lose summary. Every ratio guards its
// denominator and falls back to zero.
func (m *TradeManager) Stats() TradeStats {
	pnlByOrder := make(map[int]decimal.Decimal)
	var orderIDs []int
	for _, p := range m.trades {
		if _, ok := pnlByOrder[p.OpenOrderID]; !ok {
			orderIDs = append(orderIDs, p.OpenOrderID)
		}
		pnlByOrder[p.OpenOrderID] = pnlByOrder[p.OpenOrderID].Add(p.Pnl)
	}
	sort.Ints(orderIDs)

	var win, lose, even int
	for _, id := range orderIDs {
		pnl := pnlByOrder[id]
		switch {
		case pnl.IsPositive():
			win++
		case pnl.IsNegative():
			lose++
		default:
			even++
		}
	}

	numTrades := len(orderIDs)
	profit := m.SumPnlPositive()
	loss := m.SumPnlNegative().Abs()

	s := TradeStats{
		NumOfTrades:   numTrades,
		NumOfWin:      win,
		NumOfLose:     lose,
		NumOfEven:     even,
		WinRate:       decimal.Zero,
		Profit:        profit,
		Loss:          loss,
		ExpectedValue: decimal.Zero,
		TotalPnl:      profit.Sub(loss),
		ProfitFactor:  decimal.Zero,
	}
	if numTrades == 0 {
		return s
	}

	total := decimal.NewFromInt(int64(numTrades))
	s.WinRate = decimal.NewFromInt(int64(win)).Div(total)

	avgProfit := decimal.Zero
	if win > 0 {
		avgProfit = profit.Div(decimal.NewFromInt(int64(win)))
	}
	avgLoss := decimal.Zero
	if lose+even > 0 {
		avgLoss = loss.Div(decimal.NewFromInt(int64(lose + even)))
	}
	loseRate := decimal.NewFromInt(1).Sub(s.WinRate)
	s.ExpectedValue = domain.Round(avgProfit.Mul(s.WinRate).Sub(avgLoss.Mul(loseRate)))

	if loss.IsPositive() {
		s.ProfitFactor = profit.Div(loss).Round(2)
	}
	return s
}
