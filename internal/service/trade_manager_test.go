package service

import (
	"testing"

	"baktgo/internal/domain"

	"github.com/shopspring/decimal"
)

// closedTrade builds a fully closed position with the given realized
// pnl, tagged with the order that opened it.
func closedTrade(t *testing.T, id, openOrderID int, pnl string) *domain.Position {
	t.Helper()
	p := domain.NewPosition(id, t0, domain.SideBuy, dec("100"), dec("1"), decimal.Zero, openOrderID)
	p.Pnl = dec(pnl)
	p.OpenAmount = decimal.Zero
	return p
}

func TestTradeManager_Sums(t *testing.T) {
	m := NewTradeManager()
	if !m.SumPnl().IsZero() {
		t.Error("expected zero pnl on empty archive")
	}

	for i, pnl := range []string{"5", "-3", "0", "2.5"} {
		if err := m.Add(closedTrade(t, i+1, i+1, pnl)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	if !m.SumPnl().Equal(dec("4.5")) {
		t.Errorf("SumPnl = %s, want 4.5", m.SumPnl())
	}
	if !m.SumPnlPositive().Equal(dec("7.5")) {
		t.Errorf("SumPnlPositive = %s, want 7.5", m.SumPnlPositive())
	}
	if !m.SumPnlNegative().Equal(dec("-3")) {
		t.Errorf("SumPnlNegative = %s, want -3", m.SumPnlNegative())
	}
}

// Outcomes are counted per opening order, not per position: two
// positions from one order are one trade.
func TestTradeManager_StatsGroupsByOpenOrder(t *testing.T) {
	m := NewTradeManager()
	// Order 10: +5 and -2 -> net +3, one win.
	m.Add(closedTrade(t, 1, 10, "5"))
	m.Add(closedTrade(t, 2, 10, "-2"))
	// Order 20: -4, one lose.
	m.Add(closedTrade(t, 3, 20, "-4"))
	// Order 30: +1 and -1 -> even.
	m.Add(closedTrade(t, 4, 30, "1"))
	m.Add(closedTrade(t, 5, 30, "-1"))

	s := m.Stats()
	if s.NumOfTrades != 3 {
		t.Errorf("NumOfTrades = %d, want 3", s.NumOfTrades)
	}
	if s.NumOfWin != 1 || s.NumOfLose != 1 || s.NumOfEven != 1 {
		t.Errorf("win/lose/even = %d/%d/%d, want 1/1/1", s.NumOfWin, s.NumOfLose, s.NumOfEven)
	}
	// Profit and loss are summed per position, not per group.
	if !s.Profit.Equal(dec("6")) {
		t.Errorf("Profit = %s, want 6", s.Profit)
	}
	if !s.Loss.Equal(dec("7")) {
		t.Errorf("Loss = %s, want 7", s.Loss)
	}
	if !s.TotalPnl.Equal(dec("-1")) {
		t.Errorf("TotalPnl = %s, want -1", s.TotalPnl)
	}

	third := decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
	if !s.WinRate.Equal(third) {
		t.Errorf("WinRate = %s, want %s", s.WinRate, third)
	}
}

func TestTradeManager_StatsEmptyIsAllZero(t *testing.T) {
	s := NewTradeManager().Stats()
	if s.NumOfTrades != 0 || !s.WinRate.IsZero() || !s.ProfitFactor.IsZero() || !s.ExpectedValue.IsZero() {
		t.Errorf("empty stats not zero: %+v", s)
	}
}

func TestTradeManager_ProfitFactorZeroGuard(t *testing.T) {
	m := NewTradeManager()
	m.Add(closedTrade(t, 1, 1, "5"))

	// No losses: profit factor stays zero rather than dividing by zero.
	if s := m.Stats(); !s.ProfitFactor.IsZero() {
		t.Errorf("ProfitFactor = %s, want 0", s.ProfitFactor)
	}

	m.Add(closedTrade(t, 2, 2, "-2"))
	if s := m.Stats(); !s.ProfitFactor.Equal(dec("2.5")) {
		t.Errorf("ProfitFactor = %s, want 2.5", s.ProfitFactor)
	}
}
