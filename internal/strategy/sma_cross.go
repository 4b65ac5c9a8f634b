package strategy

import (
	"fmt"
	"time"

	"baktgo/internal/domain"
	"baktgo/internal/service"

	"github.com/shopspring/decimal"
)

// SMACross trades moving-average crossovers on the resampled candle
// closes: a golden cross (short SMA rising through the long SMA) bids at
// the last price, a dead cross offers. State is only the previous pair
// of averages, so replays are deterministic.
type SMACross struct {
	params      Params
	factory     *OrderFactory
	candles     []service.Candle
	shortPeriod int
	longPeriod  int

	prevShort decimal.Decimal
	prevLong  decimal.Decimal
	primed    bool
}

func NewSMACross(p Params, ticks []domain.Tick) (*SMACross, error) {
	shortPeriod := int(p.ExtraOr("short_period", 5))
	longPeriod := int(p.ExtraOr("long_period", 20))
	if shortPeriod <= 0 || shortPeriod >= longPeriod {
		return nil, fmt.Errorf("%w: short_period must be in (0, long_period)", domain.ErrInvalidArgument)
	}
	return &SMACross{
		params:      p,
		factory:     NewOrderFactory(p.OrderDelaySec, p.OrderExpireSec),
		candles:     service.Resample(ticks, 2*time.Second),
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
	}, nil
}

func (s *SMACross) Think(ctx Context) ([]*domain.Order, error) {
	visible := service.CandlesBefore(s.candles, ctx.Now)
	if len(visible) < s.longPeriod {
		return nil, nil
	}

	currShort := sma(visible, s.shortPeriod)
	currLong := sma(visible, s.longPeriod)
	ltp := visible[len(visible)-1].Close

	defer func() {
		s.prevShort = currShort
		s.prevLong = currLong
		s.primed = true
	}()

	if !s.primed {
		return nil, nil
	}

	var out []*domain.Order
	switch {
	// Golden cross
	case s.prevShort.LessThanOrEqual(s.prevLong) && currShort.GreaterThan(currLong):
		if ctx.LongSize.GreaterThanOrEqual(s.params.PosLimitSize) {
			return nil, nil
		}
		o, err := s.factory.Buy(ctx.Now, s.params.OrderSize.Add(ctx.ShortSize), ltp)
		if err != nil {
			return nil, err
		}
		out = append(out, o)

	// Dead cross
	case s.prevShort.GreaterThanOrEqual(s.prevLong) && currShort.LessThan(currLong):
		if ctx.ShortSize.GreaterThanOrEqual(s.params.PosLimitSize) {
			return nil, nil
		}
		o, err := s.factory.Sell(ctx.Now, s.params.OrderSize.Add(ctx.LongSize), ltp)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// sma averages the closes of the last n candles.
func sma(candles []service.Candle, n int) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range candles[len(candles)-n:] {
		sum = sum.Add(c.Close)
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}
