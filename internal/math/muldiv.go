// internal/math/muldiv.go
package math

import "math/big"

// MulDiv computes floor(a * b / den) with a 128-bit intermediate product.
// Panics on a zero denominator or a quotient above MaxUint64 — both are
// programming errors in the caller, never runtime conditions: every caller
// bounds its inputs so the quotient fits.
func MulDiv(a, b, den uint64) uint64 {
	if den == 0 {
		panic("math: MulDiv by zero denominator")
	}

	product := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	quotient := product.Div(product, new(big.Int).SetUint64(den))
	if !quotient.IsUint64() {
		panic("math: MulDiv quotient overflows uint64")
	}
	return quotient.Uint64()
}
