package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// WindowStats is one simulated time window's worth of observable state,
// recorded after settlement and the strategy decision.
type WindowStats struct {
	Time          time.Time
	BuyPosSize    decimal.Decimal
	SellPosSize   decimal.Decimal
	BuyVolume     decimal.Decimal
	SellVolume    decimal.Decimal
	Ltp           decimal.Decimal
	RealizedPnl   decimal.Decimal
	UnrealizedPnl decimal.Decimal
	ExecRecvDelay float64 // mean tape receive delay over the window, seconds
}

// History accumulates per-window statistics for reporting.
type History struct {
	windows []WindowStats
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Add(w WindowStats) {
	h.windows = append(h.windows, w)
}

func (h *History) List() []WindowStats {
	return h.windows
}

func (h *History) Len() int {
	return len(h.windows)
}

// MarketVolume is total traded volume across all recorded windows.
func (h *History) MarketVolume() decimal.Decimal {
	total := decimal.Zero
	for _, w := range h.windows {
		total = total.Add(w.BuyVolume).Add(w.SellVolume)
	}
	return total
}
