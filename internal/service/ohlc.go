package service

import (
	"time"

	"baktgo/internal/domain"

	"github.com/shopspring/decimal"
)

// Candle is one fixed-interval OHLC bucket resampled from the tape,
// with traded volume split by taker side and the mean receive delay.
type Candle struct {
	Time     time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Size     decimal.Decimal
	BuySize  decimal.Decimal
	SellSize decimal.Decimal
	Delay    float64
}

// Resample buckets a chronological tape into candles of the given
// interval. Gaps are forward-filled with the previous close and zero
// volume so consumers see a continuous series.
func Resample(ticks []domain.Tick, interval time.Duration) []Candle {
	if len(ticks) == 0 || interval <= 0 {
		return nil
	}

	var candles []Candle
	cur := Candle{Time: ticks[0].ExecDate.Truncate(interval)}
	started := false
	delaySum := 0.0
	delayCnt := 0

	flush := func() {
		if delayCnt > 0 {
			cur.Delay = delaySum / float64(delayCnt)
		}
		candles = append(candles, cur)
	}

	for _, t := range ticks {
		bucket := t.ExecDate.Truncate(interval)

		if started && bucket.After(cur.Time) {
			flush()
			// Fill silent intervals with the last close.
			for ts := cur.Time.Add(interval); ts.Before(bucket); ts = ts.Add(interval) {
				candles = append(candles, Candle{
					Time:  ts,
					Open:  cur.Close,
					High:  cur.Close,
					Low:   cur.Close,
					Close: cur.Close,
				})
			}
			prevClose := cur.Close
			cur = Candle{Time: bucket, Open: prevClose, High: prevClose, Low: prevClose, Close: prevClose}
			started = false
			delaySum, delayCnt = 0.0, 0
		}

		if !started {
			cur.Time = bucket
			cur.Open = t.Price
			cur.High = t.Price
			cur.Low = t.Price
			started = true
		}
		if t.Price.GreaterThan(cur.High) {
			cur.High = t.Price
		}
		if t.Price.LessThan(cur.Low) {
			cur.Low = t.Price
		}
		cur.Close = t.Price
		cur.Size = cur.Size.Add(t.Size)
		if t.Side == domain.SideBuy {
			cur.BuySize = cur.BuySize.Add(t.Size)
		} else {
			cur.SellSize = cur.SellSize.Add(t.Size)
		}
		delaySum += t.DelaySec
		delayCnt++
	}
	flush()
	return candles
}

// CandlesBefore returns the candles strictly earlier than t.
func CandlesBefore(candles []Candle, t time.Time) []Candle {
	n := 0
	for _, c := range candles {
		if !c.Time.Before(t) {
			break
		}
		n++
	}
	return candles[:n]
}
