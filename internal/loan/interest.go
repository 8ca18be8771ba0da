package loan

import "math/big"

// ComputeInterest returns the simple interest owed on repayment:
//
//	interest = floor(amount * elapsedSlots * rate / (durationSlots * 100))
//
// elapsedSlots is clamped to durationSlots, so late repayment caps at the
// full-duration interest floor(amount * rate / 100) and never grows past it.
// The products are taken over big integers, so no uint64 input can wrap the
// intermediate terms. rate is a percentage and must not exceed 100.
func ComputeInterest(amount, elapsedSlots uint64, rate uint8, durationSlots uint64) uint64 {
	if durationSlots == 0 || rate == 0 {
		return 0
	}
	if elapsedSlots > durationSlots {
		elapsedSlots = durationSlots
	}

	num := new(big.Int).SetUint64(amount)
	num.Mul(num, new(big.Int).SetUint64(elapsedSlots))
	num.Mul(num, new(big.Int).SetUint64(uint64(rate)))

	den := new(big.Int).Mul(new(big.Int).SetUint64(durationSlots), big.NewInt(100))

	// With elapsed <= duration and rate <= 100 the quotient never exceeds
	// amount, so it always fits back into uint64.
	return num.Quo(num, den).Uint64()
}

// RepaymentDue returns principal plus accrued interest for a loan repaid at
// currentSlot.
func (l *Loan) RepaymentDue(currentSlot uint64) (total, interest uint64) {
	var elapsed uint64
	if currentSlot > l.StartSlot {
		elapsed = currentSlot - l.StartSlot
	}
	interest = ComputeInterest(l.Amount, elapsed, l.Rate, l.DurationSlots)
	return l.Amount + interest, interest
}
