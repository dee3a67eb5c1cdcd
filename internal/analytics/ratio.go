// Package analytics turns a user's ledger into totals, a health score and
// an ordered list of insights. Everything here is a pure function of its
// inputs; callers fetch the ledger snapshot and pass it in.
package analytics

import (
	"github.com/shopspring/decimal"

	"findash/internal/core"
)

// SafeRatio returns n/d, or zero when d is zero.
func SafeRatio(n, d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return n.Div(d)
}

// MoneyRatio is SafeRatio over two money amounts.
func MoneyRatio(n, d core.Money) decimal.Decimal {
	return SafeRatio(decimal.NewFromInt(n.Cents), decimal.NewFromInt(d.Cents))
}
