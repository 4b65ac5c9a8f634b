package engine

import (
	"log/slog"

	"baktgo/internal/domain"
	"baktgo/internal/service"

	"github.com/shopspring/decimal"
)

// Matcher settles one tape execution at a time against the resting
// orders. It owns no state of its own; positions and trades live in the
// managers so a run's whole state is one explicit context.
type Matcher struct {
	positions *service.PositionManager
	trades    *service.TradeManager
	log       *slog.Logger
}

func NewMatcher(positions *service.PositionManager, trades *service.TradeManager, log *slog.Logger) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{positions: positions, trades: trades, log: log}
}

// Contract matches the tape execution against the active orders in
// their list order; there is no price-time priority beyond that. Each
// matched order either opens a new position or consumes reverse-side
// positions, and the tape event's size is decremented until exhausted.
//
// A MARKET order fills at the tape price without consuming book depth,
// so several market orders in one window can fill beyond what the real
// liquidity would have borne. Known approximation, kept as-is.
func (m *Matcher) Contract(tick domain.Tick, activeOrders []*domain.Order) error {
	execSize := tick.Size

	for _, o := range activeOrders {
		var buyOK, sellOK bool
		switch o.Type {
		case domain.OrderTypeLimit:
			buyOK = o.Side == domain.SideBuy && tick.Side == domain.SideSell && tick.Price.LessThanOrEqual(o.Price)
			sellOK = o.Side == domain.SideSell && tick.Side == domain.SideBuy && tick.Price.GreaterThanOrEqual(o.Price)
		case domain.OrderTypeMarket:
			buyOK = o.Side == domain.SideBuy && tick.Side == domain.SideSell
			sellOK = o.Side == domain.SideSell && tick.Side == domain.SideBuy
		}
		if !buyOK && !sellOK {
			continue
		}

		fillable := decimal.Min(o.OpenSize, execSize)

		if !m.positions.HasReverse(o.Side) {
			// Nothing to settle: the fill opens fresh exposure at the
			// order's price (tape price for market orders, which carry
			// no limit).
			openPrice := o.Price
			if o.Type == domain.OrderTypeMarket {
				openPrice = tick.Price
			}
			if _, err := m.positions.Open(tick.ExecDate, o, openPrice, fillable); err != nil {
				return err
			}
			if err := o.Contract(tick.ExecDate, tick.Price, fillable); err != nil {
				return err
			}
			execSize = domain.Round(execSize.Sub(fillable))
			m.log.Debug("position opened",
				slog.Int("order_id", o.ID),
				slog.String("side", string(o.Side)),
				slog.String("size", fillable.String()),
				slog.String("price", openPrice.String()))
		} else {
			canExec := fillable
			for _, p := range m.positions.List() {
				// A fill only ever settles the opposite side.
				if p.Side == o.Side {
					continue
				}

				if p.OpenAmount.GreaterThan(canExec) {
					// Partial close; the order's fillable size is fully
					// consumed by this position.
					if err := p.Close(tick.ExecDate, tick.Price, canExec); err != nil {
						return err
					}
					if err := o.Contract(tick.ExecDate, tick.Price, canExec); err != nil {
						return err
					}
					execSize = domain.Round(execSize.Sub(canExec))
					canExec = decimal.Zero
				} else {
					closeAmt := p.OpenAmount
					execSize = domain.Round(execSize.Sub(closeAmt))
					canExec = domain.Round(canExec.Sub(closeAmt))
					if err := o.Contract(tick.ExecDate, tick.Price, closeAmt); err != nil {
						return err
					}
					if err := p.Close(tick.ExecDate, tick.Price, closeAmt); err != nil {
						return err
					}
					if err := m.trades.Add(p); err != nil {
						return err
					}
					m.log.Debug("position settled",
						slog.Int("position_id", p.ID),
						slog.Int("order_id", o.ID),
						slog.String("pnl", p.Pnl.String()))
				}

				if canExec.IsZero() {
					break
				}
			}
			// Drop fully closed positions only after the scan.
			m.positions.Compact()
		}

		if execSize.IsZero() {
			break
		}
	}
	return nil
}
