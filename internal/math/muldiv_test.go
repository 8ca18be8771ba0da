package math_test

import (
	stdmath "math"
	"testing"

	lmath "LendAuction/internal/math"
)

func TestMulDiv(t *testing.T) {
	cases := []struct {
		name string
		a, b uint64
		den  uint64
		want uint64
	}{
		{"small exact", 1000, 15, 10, 1500},
		{"floors", 3, 1, 2, 1},
		{"zero numerator", 0, 99, 7, 0},
		// a*b exceeds 64 bits but the quotient fits
		{"wide intermediate", 13_000_000_000_000_000_000, 3, 4, 9_750_000_000_000_000_000},
		{"max over one", stdmath.MaxUint64, 1, 1, stdmath.MaxUint64},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := lmath.MulDiv(tc.a, tc.b, tc.den)
			if got != tc.want {
				t.Errorf("MulDiv(%d, %d, %d) = %d, want %d", tc.a, tc.b, tc.den, got, tc.want)
			}
		})
	}
}

func TestMulDiv_ZeroDenominator_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on zero denominator")
		}
	}()
	lmath.MulDiv(1, 1, 0)
}

func TestMulDiv_QuotientOverflow_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic when the quotient exceeds uint64")
		}
	}()
	// 13e18 * 15 / 10 = 19.5e18 > MaxUint64; truncating it silently would
	// let a grossly undercollateralized ask pass the 150% floor check.
	lmath.MulDiv(13_000_000_000_000_000_000, 15, 10)
}
