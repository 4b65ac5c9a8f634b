package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"baktgo/internal/domain"
	"baktgo/internal/service"
	"baktgo/internal/strategy"

	"github.com/shopspring/decimal"
)

// Params are the loop settings of one run.
type Params struct {
	TimeframeSec int // window duration
	NumOfTrade   int // iteration budget: max number of windows
}

// Backtest owns the whole mutable state of one simulation run: the
// order, position and trade collections plus the per-window history.
// The loop is single-threaded and deterministic; nothing mutates these
// collections but the matcher and the managers it drives.
type Backtest struct {
	Orders    *service.OrderManager
	Positions *service.PositionManager
	Trades    *service.TradeManager
	History   *service.History

	params  Params
	matcher *Matcher
	strat   strategy.Strategy
	log     *slog.Logger
}

func New(params Params, strat strategy.Strategy, log *slog.Logger) (*Backtest, error) {
	if params.TimeframeSec <= 0 {
		return nil, fmt.Errorf("%w: timeframe_sec must be positive", domain.ErrInvalidArgument)
	}
	if params.NumOfTrade <= 0 {
		return nil, fmt.Errorf("%w: num_of_trade must be positive", domain.ErrInvalidArgument)
	}
	if log == nil {
		log = slog.Default()
	}
	orders := service.NewOrderManager()
	positions := service.NewPositionManager()
	trades := service.NewTradeManager()
	return &Backtest{
		Orders:    orders,
		Positions: positions,
		Trades:    trades,
		History:   service.NewHistory(),
		params:    params,
		matcher:   NewMatcher(positions, trades, log),
		strat:     strat,
		log:       log,
	}, nil
}

// Run replays the tape through fixed time windows until the iteration
// budget is spent or the tape is exhausted. Per window: settle tape
// executions against visible orders, expire stale orders, ask the
// strategy for new ones, record statistics.
func (b *Backtest) Run(ctx context.Context, ticks []domain.Tick) error {
	if len(ticks) == 0 {
		return domain.ErrEmptyTape
	}

	timeframe := time.Duration(b.params.TimeframeSec) * time.Second
	last := ticks[len(ticks)-1].ExecDate
	since := ticks[0].ExecDate
	until := since.Add(timeframe)

	b.log.Info("backtest started",
		slog.Int("ticks", len(ticks)),
		slog.Time("since", since),
		slog.Time("until", last),
		slog.Int("timeframe_sec", b.params.TimeframeSec),
		slog.Int("num_of_trade", b.params.NumOfTrade))

	ltp := decimal.Zero
	idx := 0

	for window := 0; window < b.params.NumOfTrade; window++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if since.After(last) {
			b.log.Info("tape exhausted", slog.Int("windows", window))
			break
		}

		// Collect this window's slice of the tape.
		start := idx
		for idx < len(ticks) && ticks[idx].ExecDate.Before(until) {
			idx++
		}
		windowTicks := ticks[start:idx]

		buyVolume := decimal.Zero
		sellVolume := decimal.Zero
		delaySum := 0.0

		for _, t := range windowTicks {
			// Visibility is re-evaluated per execution: an order's entry
			// delay is measured against the window end.
			active := b.Orders.ActiveOrders(until)
			if len(active) > 0 {
				if err := b.matcher.Contract(t, active); err != nil {
					return fmt.Errorf("window %d: %w", window, err)
				}
			}
			if t.Side == domain.SideBuy {
				buyVolume = buyVolume.Add(t.Size)
			} else {
				sellVolume = sellVolume.Add(t.Size)
			}
			delaySum += t.DelaySec
		}
		if len(windowTicks) > 0 {
			ltp = windowTicks[len(windowTicks)-1].Price
		}

		b.Orders.CancelExpired(until)

		if b.strat != nil {
			newOrders, err := b.strat.Think(strategy.Context{
				WindowIndex:  window,
				Now:          until,
				ActiveOrders: b.Orders.ActiveOrders(until),
				Positions:    b.Positions.List(),
				LongSize:     b.Positions.SumOpenSize(domain.SideBuy),
				ShortSize:    b.Positions.SumOpenSize(domain.SideSell),
				Ltp:          ltp,
			})
			if err != nil {
				return fmt.Errorf("strategy at window %d: %w", window, err)
			}
			if err := b.Orders.AddAll(newOrders); err != nil {
				return err
			}
		}

		recvDelay := 0.0
		if len(windowTicks) > 0 {
			recvDelay = delaySum / float64(len(windowTicks))
		}
		b.History.Add(service.WindowStats{
			Time:          until,
			BuyPosSize:    b.Positions.SumOpenSize(domain.SideBuy),
			SellPosSize:   b.Positions.SumOpenSize(domain.SideSell),
			BuyVolume:     domain.Round(buyVolume),
			SellVolume:    domain.Round(sellVolume),
			Ltp:           ltp,
			RealizedPnl:   b.Trades.SumPnl(),
			UnrealizedPnl: b.Positions.UnrealizedPnl(ltp),
			ExecRecvDelay: recvDelay,
		})

		since = until
		until = since.Add(timeframe)
	}

	b.log.Info("backtest finished",
		slog.Int("windows", b.History.Len()),
		slog.Int("orders", b.Orders.Len(service.OrderFilter{})),
		slog.Int("trades", b.Trades.Len()),
		slog.String("market_volume", b.History.MarketVolume().String()),
		slog.String("realized_pnl", b.Trades.SumPnl().String()))
	return nil
}
