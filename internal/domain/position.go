package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Position is an open exposure created by the matching engine. It is
// closed incrementally; once OpenAmount reaches zero the engine moves it
// from the live set into the trade archive.
type Position struct {
	ID          int
	OpenedAt    time.Time
	Side        Side // BUY = long, SELL = short; fixed for life
	Amount      decimal.Decimal
	OpenPrice   decimal.Decimal
	OpenAmount  decimal.Decimal
	OpenFee     decimal.Decimal
	ClosedAt    time.Time       // latest close event, partial or full
	ClosePrice  decimal.Decimal // amount-weighted average over all closes
	CloseFee    decimal.Decimal
	Pnl         decimal.Decimal
	OpenOrderID int // order that opened this position, for trade grouping
}

// NewPosition opens a position. Fees are accepted for interface
// compatibility but always accrue zero.
func NewPosition(id int, openedAt time.Time, side Side, openPrice, amount decimal.Decimal, feeRate decimal.Decimal, openOrderID int) *Position {
	return &Position{
		ID:          id,
		OpenedAt:    openedAt,
		Side:        side,
		Amount:      amount,
		OpenPrice:   openPrice,
		OpenAmount:  amount,
		OpenFee:     decimal.Zero,
		CloseFee:    decimal.Zero,
		Pnl:         decimal.Zero,
		OpenOrderID: openOrderID,
	}
}

// Close settles execSize of the position at execPrice.
//
// The realized P&L delta is (execPrice - OpenPrice) * execSize for a
// long and the reverse for a short. ClosePrice is maintained as the
// size-weighted average of every close price applied so far, so the
// final value is independent of how the closes were sliced. The caller
// guarantees execSize fits in OpenAmount; a breach is an engine bug.
func (p *Position) Close(execDate time.Time, execPrice, execSize decimal.Decimal) error {
	if execSize.GreaterThan(p.OpenAmount) {
		return &InvariantError{
			Op:     "position.close",
			Detail: fmt.Sprintf("close size %s exceeds open amount %s (position %d)", execSize, p.OpenAmount, p.ID),
		}
	}

	closedSoFar := p.Amount.Sub(p.OpenAmount)
	totalClosed := closedSoFar.Add(execSize)
	if closedSoFar.IsZero() {
		p.ClosePrice = execPrice
	} else {
		weighted := p.ClosePrice.Mul(closedSoFar).Add(execPrice.Mul(execSize))
		p.ClosePrice = Round(weighted.Div(totalClosed))
	}

	var delta decimal.Decimal
	if p.Side == SideBuy {
		delta = execPrice.Sub(p.OpenPrice).Mul(execSize)
	} else {
		delta = p.OpenPrice.Sub(execPrice).Mul(execSize)
	}
	p.Pnl = Round(p.Pnl.Add(delta))

	p.OpenAmount = Round(p.OpenAmount.Sub(execSize))
	p.ClosedAt = execDate
	return nil
}

// IsClosed reports whether the position has been fully settled.
func (p *Position) IsClosed() bool {
	return p.OpenAmount.IsZero()
}
