package domain

import "github.com/shopspring/decimal"

// AmountScale is the number of fractional digits kept for sizes, prices
// and P&L. Values are rounded half-up to this scale once at each
// externally observable boundary (fill application, position close,
// statistics), never on intermediate terms.
const AmountScale = 8

// Round normalizes v to the canonical amount scale.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(AmountScale)
}
