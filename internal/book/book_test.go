package book_test

import (
	"LendAuction/internal/book"
	"testing"

	"github.com/google/uuid"
)

func newBid(amount uint64, minRate uint8, slot uint64) book.Bid {
	return book.Bid{
		Lender:          uuid.New(),
		Amount:          amount,
		MinRate:         minRate,
		SubmittedAtSlot: slot,
		Asset:           "USDC",
		DurationSlots:   1000,
	}
}

func newAsk(amount uint64, maxRate uint8, collateral, slot uint64) book.Ask {
	return book.Ask{
		Borrower:        uuid.New(),
		Amount:          amount,
		MaxRate:         maxRate,
		Collateral:      collateral,
		SubmittedAtSlot: slot,
		Asset:           "USDC",
		CollateralAsset: "SOL",
	}
}

func TestMatchBid_FullFill(t *testing.T) {
	p := book.NewShardPool(0)
	ask := newAsk(1000, 8, 1500, 10)
	p.InsertAsk(ask)

	fills, remaining := p.MatchBid(newBid(1000, 5, 20))

	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	if fills[0].Amount != 1000 {
		t.Errorf("fill amount = %d, want 1000", fills[0].Amount)
	}
	if fills[0].Rate != 8 {
		t.Errorf("fill rate = %d, want resting ask's 8", fills[0].Rate)
	}
	if fills[0].Collateral != 1500 {
		t.Errorf("fill collateral = %d, want 1500", fills[0].Collateral)
	}
	if len(p.Asks) != 0 {
		t.Errorf("consumed ask not removed, %d asks remain", len(p.Asks))
	}
}

func TestMatchBid_PartialFillSplitsAsk(t *testing.T) {
	p := book.NewShardPool(0)
	p.InsertAsk(newAsk(1000, 8, 1500, 10))

	fills, remaining := p.MatchBid(newBid(400, 5, 20))

	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	// 1500 * 400 / 1000 = 600 moves with the fill
	if fills[0].Collateral != 600 {
		t.Errorf("fill collateral = %d, want 600", fills[0].Collateral)
	}
	if len(p.Asks) != 1 {
		t.Fatalf("split ask must stay resting, %d asks remain", len(p.Asks))
	}
	if p.Asks[0].Amount != 600 {
		t.Errorf("resting ask amount = %d, want 600", p.Asks[0].Amount)
	}
	if p.Asks[0].Collateral != 900 {
		t.Errorf("resting ask collateral = %d, want 900", p.Asks[0].Collateral)
	}
	if p.Asks[0].SubmittedAtSlot != 10 {
		t.Errorf("split ask lost its submission slot: got %d, want 10", p.Asks[0].SubmittedAtSlot)
	}
}

func TestMatchBid_CollateralConserved(t *testing.T) {
	// Amounts chosen so the proportional split rounds down; the residue
	// must stay with the resting ask.
	p := book.NewShardPool(0)
	p.InsertAsk(newAsk(3, 8, 10, 0))

	fills, _ := p.MatchBid(newBid(1, 5, 5))

	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	total := fills[0].Collateral + p.Asks[0].Collateral
	if total != 10 {
		t.Errorf("collateral not conserved: fill %d + resting %d = %d, want 10",
			fills[0].Collateral, p.Asks[0].Collateral, total)
	}
}

func TestMatchBid_SkipsIneligible(t *testing.T) {
	p := book.NewShardPool(0)
	low := newAsk(500, 3, 750, 10) // ceiling below the bid's floor
	p.InsertAsk(low)
	p.InsertAsk(newAsk(500, 7, 750, 11))

	fills, remaining := p.MatchBid(newBid(500, 5, 20))

	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	if fills[0].Borrower == low.Borrower {
		t.Errorf("fill consumed the ask whose ceiling is below the bid's floor")
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
	if len(p.Asks) != 1 || p.Asks[0].MaxRate != 3 {
		t.Errorf("ineligible ask must survive the sweep")
	}
}

func TestMatchBid_FIFOAcrossAsks(t *testing.T) {
	p := book.NewShardPool(0)
	first := newAsk(300, 6, 450, 10)
	second := newAsk(300, 8, 450, 11)
	p.InsertAsk(first)
	p.InsertAsk(second)

	fills, remaining := p.MatchBid(newBid(500, 5, 20))

	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
	if len(fills) != 2 {
		t.Fatalf("got %d fills, want 2", len(fills))
	}
	if fills[0].Borrower != first.Borrower || fills[0].Amount != 300 {
		t.Errorf("first fill must consume the earliest ask in full")
	}
	if fills[1].Borrower != second.Borrower || fills[1].Amount != 200 {
		t.Errorf("second fill = %d from wrong ask, want 200 from second", fills[1].Amount)
	}
}

func TestMatchAsk_ExecutesAtRestingBidRate(t *testing.T) {
	p := book.NewShardPool(0)
	bid := newBid(1000, 4, 10)
	p.InsertBid(bid)

	fills, remaining, remainingCollateral := p.MatchAsk(newAsk(1000, 9, 1500, 20))

	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
	if remainingCollateral != 0 {
		t.Errorf("remaining collateral = %d, want 0", remainingCollateral)
	}
	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	if fills[0].Rate != 4 {
		t.Errorf("fill rate = %d, want resting bid's 4", fills[0].Rate)
	}
	if fills[0].DurationSlots != bid.DurationSlots {
		t.Errorf("fill duration = %d, want the bid's %d", fills[0].DurationSlots, bid.DurationSlots)
	}
}

func TestMatchAsk_PartialLeavesCollateralRemainder(t *testing.T) {
	p := book.NewShardPool(0)
	p.InsertBid(newBid(400, 4, 10))

	fills, remaining, remainingCollateral := p.MatchAsk(newAsk(1000, 9, 1500, 20))

	if remaining != 600 {
		t.Errorf("remaining = %d, want 600", remaining)
	}
	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	// 1500 * 400 / 1000 = 600 backs the fill, the rest stays with the
	// incoming ask's remainder
	if fills[0].Collateral != 600 {
		t.Errorf("fill collateral = %d, want 600", fills[0].Collateral)
	}
	if remainingCollateral != 900 {
		t.Errorf("remaining collateral = %d, want 900", remainingCollateral)
	}
}

func TestMatchAsk_NoCross(t *testing.T) {
	p := book.NewShardPool(0)
	p.InsertBid(newBid(1000, 9, 10)) // floor above the ask's ceiling

	fills, remaining, remainingCollateral := p.MatchAsk(newAsk(500, 5, 750, 20))

	if len(fills) != 0 {
		t.Errorf("got %d fills, want 0", len(fills))
	}
	if remaining != 500 || remainingCollateral != 750 {
		t.Errorf("remainder = (%d, %d), want (500, 750)", remaining, remainingCollateral)
	}
	if len(p.Bids) != 1 {
		t.Errorf("resting bid must survive")
	}
}

func TestInsert_RejectsAtCapacity(t *testing.T) {
	p := book.NewShardPool(0)
	for i := 0; i < book.MaxOrdersPerSide; i++ {
		if !p.InsertBid(newBid(1, 99, 0)) {
			t.Fatalf("insert %d rejected below capacity", i)
		}
	}
	if p.InsertBid(newBid(1, 99, 0)) {
		t.Errorf("insert beyond capacity must be rejected")
	}
	// The ask side has its own bound
	if !p.InsertAsk(newAsk(1, 1, 2, 0)) {
		t.Errorf("ask side must not share the bid side's capacity")
	}
}

func TestEvictStale(t *testing.T) {
	p := book.NewShardPool(0)
	stale := newBid(100, 5, 10)
	fresh := newBid(100, 5, 200)
	p.InsertBid(stale)
	p.InsertBid(fresh)
	p.InsertAsk(newAsk(100, 8, 150, 10))

	currentSlot := uint64(10 + book.StalenessWindowSlots + 1)
	bids, asks := p.EvictStale(currentSlot, book.StalenessWindowSlots)

	if len(bids) != 1 || bids[0].Lender != stale.Lender {
		t.Fatalf("got %d evicted bids, want the stale one", len(bids))
	}
	if len(asks) != 1 {
		t.Fatalf("got %d evicted asks, want 1", len(asks))
	}
	if len(p.Bids) != 1 || p.Bids[0].Lender != fresh.Lender {
		t.Errorf("fresh bid must survive eviction")
	}
}

func TestEvictStale_BoundaryNotStale(t *testing.T) {
	p := book.NewShardPool(0)
	p.InsertBid(newBid(100, 5, 10))

	// Exactly at the window boundary: currentSlot - submitted == window
	bids, _ := p.EvictStale(10+book.StalenessWindowSlots, book.StalenessWindowSlots)
	if len(bids) != 0 {
		t.Errorf("order at exactly the window boundary must not be stale")
	}

	bids, _ = p.EvictStale(10+book.StalenessWindowSlots+1, book.StalenessWindowSlots)
	if len(bids) != 1 {
		t.Errorf("order one slot past the window must be stale")
	}
}

func TestEvictStale_Idempotent(t *testing.T) {
	p := book.NewShardPool(0)
	p.InsertBid(newBid(100, 5, 10))

	currentSlot := uint64(500)
	p.EvictStale(currentSlot, book.StalenessWindowSlots)
	bids, asks := p.EvictStale(currentSlot, book.StalenessWindowSlots)
	if len(bids) != 0 || len(asks) != 0 {
		t.Errorf("second eviction at the same slot must return nothing")
	}
}

func TestFeeSplit(t *testing.T) {
	cases := []struct {
		amount uint64
		refund uint64
		fee    uint64
	}{
		{1000, 995, 5},
		{0, 0, 0},
		{1, 1, 0},     // fee floors to zero
		{199, 199, 0}, // below the 0.5% granularity
		{200, 199, 1},
		{1_000_000, 995_000, 5_000},
	}

	for _, tc := range cases {
		refund, fee := book.FeeSplit(tc.amount)
		if refund != tc.refund || fee != tc.fee {
			t.Errorf("FeeSplit(%d) = (%d, %d), want (%d, %d)",
				tc.amount, refund, fee, tc.refund, tc.fee)
		}
		if refund+fee != tc.amount {
			t.Errorf("FeeSplit(%d) does not reconstruct the amount", tc.amount)
		}
	}
}
