package book

import (
	lmath "LendAuction/internal/math"
)

// CleanupFeeBps is the eviction fee in basis-points-of-a-percent terms:
// 5 parts per 1000 (0.5%) of the escrowed amount goes to the fee sink, the
// rest is refunded.
const (
	cleanupFeeNum = 5
	cleanupFeeDen = 1000
)

// FeeSplit splits an escrowed amount into (refund, fee) for eviction.
// fee = floor(amount * 5 / 1000); refund = amount - fee, so refund + fee
// reconstructs the escrowed amount exactly for any input.
func FeeSplit(amount uint64) (refund, fee uint64) {
	fee = lmath.MulDiv(amount, cleanupFeeNum, cleanupFeeDen)
	return amount - fee, fee
}

// EvictStale removes every resting order older than the staleness window
// and returns the evicted entries. An order is stale when
// currentSlot - submittedAtSlot > window. Idempotent: a second call with the
// same slot returns nothing.
func (p *ShardPool) EvictStale(currentSlot, window uint64) (bids []Bid, asks []Ask) {
	keptBids := p.Bids[:0]
	for _, b := range p.Bids {
		if currentSlot > b.SubmittedAtSlot+window {
			bids = append(bids, b)
		} else {
			keptBids = append(keptBids, b)
		}
	}
	p.Bids = keptBids

	keptAsks := p.Asks[:0]
	for _, a := range p.Asks {
		if currentSlot > a.SubmittedAtSlot+window {
			asks = append(asks, a)
		} else {
			keptAsks = append(keptAsks, a)
		}
	}
	p.Asks = keptAsks

	return bids, asks
}
