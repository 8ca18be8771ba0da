package book

import (
	lmath "LendAuction/internal/math"

	"github.com/google/uuid"
)

// Fill records one crossing between an incoming order and a resting order.
// The executed rate is always the resting order's rate (price-time
// priority): an incoming bid executes at the resting ask's ceiling, an
// incoming ask at the resting bid's floor.
type Fill struct {
	Lender          uuid.UUID
	Borrower        uuid.UUID
	Amount          uint64
	Rate            uint8
	Collateral      uint64
	DurationSlots   uint64
	Asset           string
	CollateralAsset string
}

// MatchBid sweeps the shard's resting asks in insertion order, filling the
// incoming bid greedily until it is exhausted or no eligible ask remains.
// Fully consumed asks are removed; a partially consumed ask is split in
// place — its amount and collateral shrink but it keeps its position and
// original submission slot. Returns the fills and the bid's unmatched
// remainder. Single pass: remainders never re-match within one call.
func (p *ShardPool) MatchBid(bid Bid) ([]Fill, uint64) {
	remaining := bid.Amount
	var fills []Fill

	i := 0
	for i < len(p.Asks) && remaining > 0 {
		ask := &p.Asks[i]
		if ask.MaxRate < bid.MinRate || ask.Asset != bid.Asset {
			i++
			continue
		}

		matched := remaining
		if ask.Amount < matched {
			matched = ask.Amount
		}

		// Collateral moves proportionally with the matched principal; any
		// rounding residue stays with the resting ask so escrow conserves.
		collateral := ask.Collateral
		if matched < ask.Amount {
			collateral = lmath.MulDiv(ask.Collateral, matched, ask.Amount)
		}

		fills = append(fills, Fill{
			Lender:          bid.Lender,
			Borrower:        ask.Borrower,
			Amount:          matched,
			Rate:            ask.MaxRate,
			Collateral:      collateral,
			DurationSlots:   bid.DurationSlots,
			Asset:           bid.Asset,
			CollateralAsset: ask.CollateralAsset,
		})
		remaining -= matched

		if matched == ask.Amount {
			p.Asks = append(p.Asks[:i], p.Asks[i+1:]...)
		} else {
			ask.Amount -= matched
			ask.Collateral -= collateral
		}
	}

	return fills, remaining
}

// MatchAsk is the mirror of MatchBid: the incoming ask sweeps resting bids
// whose floor is at or below the ask's ceiling, executing at each resting
// bid's MinRate. The incoming ask's collateral is allocated to fills
// proportionally to the matched principal.
func (p *ShardPool) MatchAsk(ask Ask) ([]Fill, uint64, uint64) {
	remaining := ask.Amount
	remainingCollateral := ask.Collateral
	var fills []Fill

	i := 0
	for i < len(p.Bids) && remaining > 0 {
		bid := &p.Bids[i]
		if bid.MinRate > ask.MaxRate || bid.Asset != ask.Asset {
			i++
			continue
		}

		matched := remaining
		if bid.Amount < matched {
			matched = bid.Amount
		}

		collateral := remainingCollateral
		if matched < remaining {
			collateral = lmath.MulDiv(ask.Collateral, matched, ask.Amount)
		}

		fills = append(fills, Fill{
			Lender:          bid.Lender,
			Borrower:        ask.Borrower,
			Amount:          matched,
			Rate:            bid.MinRate,
			Collateral:      collateral,
			DurationSlots:   bid.DurationSlots,
			Asset:           ask.Asset,
			CollateralAsset: ask.CollateralAsset,
		})
		remaining -= matched
		remainingCollateral -= collateral

		if matched == bid.Amount {
			p.Bids = append(p.Bids[:i], p.Bids[i+1:]...)
		} else {
			bid.Amount -= matched
		}
	}

	return fills, remaining, remainingCollateral
}
