// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents (paise) so sums and differences are
// exact; decimal strings are parsed with shopspring/decimal and rounded
// half-up to two places.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up on the third decimal place. Zero is accepted; negative values and
// anything that is not a plain decimal number return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> Money{1234}
//	ParseAmount("12,345") -> Money{1235}
//	ParseAmount("-1")     -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return FromDecimal(d)
}

// ParsePositiveAmount is ParseAmount for entry forms, which reject zero.
func ParsePositiveAmount(s string) (Money, error) {
	m, err := ParseAmount(s)
	if err != nil {
		return Money{}, err
	}
	if m.Cents == 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// FromDecimal rounds d to cents. Negative values are rejected.
func FromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// maxCents keeps sums of realistic ledgers far from int64 overflow.
const maxCents = 1 << 53

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Decimal returns the amount in rupees as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the plain amount with two decimals ("1234.50").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
