package book

import (
	"github.com/google/uuid"
)

// MaxOrdersPerSide bounds how many resting orders one shard holds per side.
// Submissions beyond the bound are rejected rather than degrading matching
// scans unboundedly.
const MaxOrdersPerSide = 1000

// StalenessWindowSlots is the age past which a resting order becomes
// eligible for eviction via Cleanup.
const StalenessWindowSlots = 300

// Bid is a lender's resting offer to lend at or above MinRate.
type Bid struct {
	Lender          uuid.UUID `json:"lender"`
	Amount          uint64    `json:"amount"`
	MinRate         uint8     `json:"min_rate"`
	SubmittedAtSlot uint64    `json:"submitted_at_slot"`
	Asset           string    `json:"asset"`
	DurationSlots   uint64    `json:"duration_slots"`
}

// Ask is a borrower's resting request to borrow at or below MaxRate,
// backed by Collateral already held in escrow.
type Ask struct {
	Borrower        uuid.UUID `json:"borrower"`
	Amount          uint64    `json:"amount"`
	MaxRate         uint8     `json:"max_rate"`
	Collateral      uint64    `json:"collateral"`
	SubmittedAtSlot uint64    `json:"submitted_at_slot"`
	Asset           string    `json:"asset"`
	CollateralAsset string    `json:"collateral_asset"`
}

// ShardPool holds the outstanding orders of one shard. Insertion order is
// preserved: matching and cleanup both iterate earliest-submitted first.
// Not thread-safe — only accessed from the single-threaded engine.
type ShardPool struct {
	ShardID uint64 `json:"shard_id"`
	Bids    []Bid  `json:"bids"`
	Asks    []Ask  `json:"asks"`
}

func NewShardPool(shardID uint64) *ShardPool {
	return &ShardPool{ShardID: shardID}
}

// InsertBid appends a bid, preserving FIFO order.
func (p *ShardPool) InsertBid(b Bid) bool {
	if len(p.Bids) >= MaxOrdersPerSide {
		return false
	}
	p.Bids = append(p.Bids, b)
	return true
}

// InsertAsk appends an ask, preserving FIFO order.
func (p *ShardPool) InsertAsk(a Ask) bool {
	if len(p.Asks) >= MaxOrdersPerSide {
		return false
	}
	p.Asks = append(p.Asks, a)
	return true
}
