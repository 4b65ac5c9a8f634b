package storage

import (
	"path/filepath"
	"testing"
	"time"

	"baktgo/internal/domain"
	"baktgo/internal/service"

	"github.com/shopspring/decimal"
)

var t0 = time.Date(2019, 3, 21, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	st, err := NewStorage(filepath.Join(t.TempDir(), "results", "bakt.db"))
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	return st
}

func TestSaveRunRoundTrip(t *testing.T) {
	st := newTestStorage(t)

	order, err := domain.NewOrder(1, t0, domain.SideBuy, domain.OrderTypeLimit, dec("0.5"), dec("100"), 1, 30)
	if err != nil {
		t.Fatalf("NewOrder failed: %v", err)
	}
	if err := order.Contract(t0.Add(2*time.Second), dec("100"), dec("0.5")); err != nil {
		t.Fatalf("Contract failed: %v", err)
	}

	pos := domain.NewPosition(7, t0.Add(2*time.Second), domain.SideBuy, dec("100"), dec("0.5"), decimal.Zero, order.ID)
	if err := pos.Close(t0.Add(10*time.Second), dec("110"), dec("0.5")); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	windows := []service.WindowStats{
		{
			Time:          t0.Add(2 * time.Second),
			BuyPosSize:    dec("0.5"),
			SellPosSize:   decimal.Zero,
			BuyVolume:     dec("1.5"),
			SellVolume:    dec("0.3"),
			Ltp:           dec("100"),
			RealizedPnl:   decimal.Zero,
			UnrealizedPnl: decimal.Zero,
		},
		{
			Time:        t0.Add(4 * time.Second),
			Ltp:         dec("110"),
			RealizedPnl: dec("5"),
		},
	}

	stats := service.TradeStats{
		NumOfTrades:  1,
		NumOfWin:     1,
		WinRate:      dec("1"),
		Profit:       dec("5"),
		TotalPnl:     dec("5"),
		ProfitFactor: decimal.Zero,
	}

	runID, err := st.SaveRun("pricefollow", 2, 1000,
		[]*domain.Order{order}, []*domain.Position{pos}, windows, stats)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	run, err := st.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run == nil {
		t.Fatal("expected run record, got nil")
	}
	if run.Strategy != "pricefollow" {
		t.Errorf("strategy: got %q", run.Strategy)
	}
	if run.TimeframeSec != 2 || run.NumOfTrade != 1000 {
		t.Errorf("params: got timeframe %d, num_of_trade %d", run.TimeframeSec, run.NumOfTrade)
	}
	if run.NumOfOrders != 1 || run.NumOfTrades != 1 {
		t.Errorf("counts: got orders %d, trades %d", run.NumOfOrders, run.NumOfTrades)
	}
	if run.TotalPnl != "5" {
		t.Errorf("total pnl: got %q", run.TotalPnl)
	}

	trades, err := st.GetTrades(runID)
	if err != nil {
		t.Fatalf("GetTrades failed: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].PositionID != 7 || trades[0].OpenOrderID != 1 {
		t.Errorf("ids: got position %d, order %d", trades[0].PositionID, trades[0].OpenOrderID)
	}
	if trades[0].Pnl != "5" {
		t.Errorf("pnl: got %q", trades[0].Pnl)
	}
	if trades[0].ClosePrice != "110" {
		t.Errorf("close price: got %q", trades[0].ClosePrice)
	}

	got, err := st.GetWindows(runID)
	if err != nil {
		t.Fatalf("GetWindows failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(got))
	}
	if got[0].WindowIndex != 0 || got[1].WindowIndex != 1 {
		t.Errorf("window order: got %d, %d", got[0].WindowIndex, got[1].WindowIndex)
	}
	if got[0].BuyVolume != "1.5" {
		t.Errorf("buy volume: got %q", got[0].BuyVolume)
	}
	if got[1].RealizedPnl != "5" {
		t.Errorf("realized pnl: got %q", got[1].RealizedPnl)
	}
}

func TestRunsAreIsolated(t *testing.T) {
	st := newTestStorage(t)

	id1, err := st.SaveRun("smacross", 2, 10, nil, nil, nil, service.TradeStats{})
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	id2, err := st.SaveRun("smacross", 2, 10, nil, nil,
		[]service.WindowStats{{Time: t0}}, service.TradeStats{})
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if id1 == id2 {
		t.Fatal("expected distinct run ids")
	}

	w1, err := st.GetWindows(id1)
	if err != nil {
		t.Fatalf("GetWindows failed: %v", err)
	}
	if len(w1) != 0 {
		t.Errorf("expected no windows for first run, got %d", len(w1))
	}
	w2, err := st.GetWindows(id2)
	if err != nil {
		t.Fatalf("GetWindows failed: %v", err)
	}
	if len(w2) != 1 {
		t.Errorf("expected 1 window for second run, got %d", len(w2))
	}
}

func TestGetRun_Missing(t *testing.T) {
	st := newTestStorage(t)

	run, err := st.GetRun("no-such-run")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil for missing run, got %+v", run)
	}
}
