package loan

import (
	"github.com/google/uuid"
)

// Loan is the record created when a bid and an ask cross. Once Repaid flips
// to true the record is immutable history.
type Loan struct {
	Lender          uuid.UUID `json:"lender"`
	Borrower        uuid.UUID `json:"borrower"`
	Amount          uint64    `json:"amount"`
	Rate            uint8     `json:"rate"`
	Collateral      uint64    `json:"collateral"`
	Repaid          bool      `json:"repaid"`
	ShardID         uint64    `json:"shard_id"`
	Asset           string    `json:"asset"`
	CollateralAsset string    `json:"collateral_asset"`
	StartSlot       uint64    `json:"start_slot"`
	DurationSlots   uint64    `json:"duration_slots"`
}

// LoanPool holds one shard's issued loans, append-only except for the
// Repaid flag flip. Loan indices are stable for the life of the pool.
// Not thread-safe — only accessed from the single-threaded engine.
type LoanPool struct {
	ShardID uint64 `json:"shard_id"`
	Loans   []Loan `json:"loans"`
}

func NewLoanPool(shardID uint64) *LoanPool {
	return &LoanPool{ShardID: shardID}
}

// Append adds a loan and returns its index.
func (p *LoanPool) Append(l Loan) uint64 {
	p.Loans = append(p.Loans, l)
	return uint64(len(p.Loans) - 1)
}

// Get returns the loan at index, or nil if out of range.
func (p *LoanPool) Get(index uint64) *Loan {
	if index >= uint64(len(p.Loans)) {
		return nil
	}
	return &p.Loans[index]
}

// OutstandingCollateral sums collateral still escrowed for unrepaid loans
// of the given collateral asset. Used for escrow reconciliation.
func (p *LoanPool) OutstandingCollateral(collateralAsset string) uint64 {
	var total uint64
	for _, l := range p.Loans {
		if !l.Repaid && l.CollateralAsset == collateralAsset {
			total += l.Collateral
		}
	}
	return total
}
