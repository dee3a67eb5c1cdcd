package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParsePositiveAmountRejectsZero(t *testing.T) {
	if _, err := ParsePositiveAmount("0"); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	m, err := ParsePositiveAmount("12.5")
	if err != nil || m.Cents != 1250 {
		t.Fatalf("expected 1250, got %d (err=%v)", m.Cents, err)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1050}
	b := Money{Cents: 300}
	if got := a.Add(b); got.Cents != 1350 {
		t.Fatalf("add: got %d", got.Cents)
	}
	if got := b.Sub(a); got.Cents != -750 {
		t.Fatalf("sub: got %d", got.Cents)
	}
	if !a.Decimal().Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("decimal: got %s", a.Decimal())
	}
	if a.String() != "10.50" {
		t.Fatalf("string: got %s", a.String())
	}
}
