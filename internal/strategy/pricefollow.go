package strategy

import (
	"log/slog"
	"time"

	"baktgo/internal/domain"
	"baktgo/internal/service"

	"github.com/shopspring/decimal"
)

// PriceFollow trades sign flips of the rolling buy/sell volume
// imbalance. When net taker flow turns positive it bids below the last
// price, when it turns negative it offers above, and it adds the
// opposing open size to each entry so a flip also flattens the old
// exposure. Open interest per side is capped by pos_limit_size.
type PriceFollow struct {
	params  Params
	factory *OrderFactory
	candles []service.Candle
	window  int // rolling sum length, in candles
	offset  decimal.Decimal
}

// NewPriceFollow resamples the tape to 2s candles and precomputes the
// imbalance series inputs.
func NewPriceFollow(p Params, ticks []domain.Tick) (*PriceFollow, error) {
	return &PriceFollow{
		params:  p,
		factory: NewOrderFactory(p.OrderDelaySec, p.OrderExpireSec),
		candles: service.Resample(ticks, 2*time.Second),
		window:  int(p.ExtraOr("flow_window", 5)),
		offset:  decimal.NewFromFloat(p.ExtraOr("price_offset", 10)),
	}, nil
}

func (s *PriceFollow) Think(ctx Context) ([]*domain.Order, error) {
	visible := service.CandlesBefore(s.candles, ctx.Now)
	if len(visible) < s.window+1 {
		return nil, nil
	}

	v1 := s.flowSum(visible, 0)
	v2 := s.flowSum(visible, 1)
	ltp := visible[len(visible)-1].Close
	recvDelay := visible[len(visible)-1].Delay

	slog.Debug("pricefollow signal",
		slog.Int("window", ctx.WindowIndex),
		slog.String("v1", v1.String()),
		slog.String("v2", v2.String()),
		slog.String("ltp", ltp.String()))

	// The extra receive delay observed on the tape is added to the
	// order entry latency, so a congested feed also slows our orders.
	s.factory.delaySec = s.params.OrderDelaySec + recvDelay

	var out []*domain.Order
	switch {
	case v1.IsPositive() && v2.IsNegative():
		if ctx.LongSize.GreaterThanOrEqual(s.params.PosLimitSize) {
			return nil, nil
		}
		for _, o := range ctx.ActiveOrders {
			if o.Side == domain.SideSell {
				o.Cancel()
			}
		}
		size := s.params.OrderSize.Add(ctx.ShortSize)
		o, err := s.factory.Buy(ctx.Now, size, ltp.Sub(s.offset))
		if err != nil {
			return nil, err
		}
		out = append(out, o)

	case v1.IsNegative() && v2.IsPositive():
		if ctx.ShortSize.GreaterThanOrEqual(s.params.PosLimitSize) {
			return nil, nil
		}
		for _, o := range ctx.ActiveOrders {
			if o.Side == domain.SideBuy {
				o.Cancel()
			}
		}
		size := s.params.OrderSize.Add(ctx.LongSize)
		o, err := s.factory.Sell(ctx.Now, size, ltp.Add(s.offset))
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// flowSum is the buy-sell volume difference summed over the rolling
// window ending `back` candles before the latest one.
func (s *PriceFollow) flowSum(candles []service.Candle, back int) decimal.Decimal {
	end := len(candles) - back
	total := decimal.Zero
	for _, c := range candles[end-s.window : end] {
		total = total.Add(c.BuySize.Sub(c.SellSize))
	}
	return total
}
