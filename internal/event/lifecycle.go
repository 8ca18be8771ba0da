package event

import "github.com/google/uuid"

// LifecycleKind discriminator for emitted lifecycle events
type LifecycleKind int32

const (
	KindAuctionInitialized LifecycleKind = iota
	KindDeposited
	KindBidSubmitted
	KindAskSubmitted
	KindLoanIssued
	KindLoanRepaid
	KindBidExpired
	KindAskExpired
	KindFeesWithdrawn
)

func (k LifecycleKind) String() string {
	switch k {
	case KindAuctionInitialized:
		return "AuctionInitialized"
	case KindDeposited:
		return "Deposited"
	case KindBidSubmitted:
		return "BidSubmitted"
	case KindAskSubmitted:
		return "AskSubmitted"
	case KindLoanIssued:
		return "LoanIssued"
	case KindLoanRepaid:
		return "LoanRepaid"
	case KindBidExpired:
		return "BidExpired"
	case KindAskExpired:
		return "AskExpired"
	case KindFeesWithdrawn:
		return "FeesWithdrawn"
	default:
		return "Unknown"
	}
}

// Lifecycle is the interface for events emitted by applied operations.
// They feed the projection worker and the outbound publisher; they never
// feed back into the engine.
type Lifecycle interface {
	Kind() LifecycleKind
}

type AuctionInitialized struct {
	Admin           uuid.UUID `json:"admin"`
	ShardCount      uint64    `json:"shard_count"`
	SupportedAssets []string  `json:"supported_assets"`
}

func (e *AuctionInitialized) Kind() LifecycleKind { return KindAuctionInitialized }

type Deposited struct {
	User   uuid.UUID `json:"user"`
	Asset  string    `json:"asset"`
	Amount uint64    `json:"amount"`
}

func (e *Deposited) Kind() LifecycleKind { return KindDeposited }

type BidSubmitted struct {
	Lender          uuid.UUID `json:"lender"`
	Amount          uint64    `json:"amount"`
	MinRate         uint8     `json:"min_rate"`
	ShardID         uint64    `json:"shard_id"`
	Asset           string    `json:"asset"`
	DurationSlots   uint64    `json:"duration_slots"`
	SubmittedAtSlot uint64    `json:"submitted_at_slot"`
}

func (e *BidSubmitted) Kind() LifecycleKind { return KindBidSubmitted }

type AskSubmitted struct {
	Borrower         uuid.UUID `json:"borrower"`
	Amount           uint64    `json:"amount"`
	MaxRate          uint8     `json:"max_rate"`
	ShardID          uint64    `json:"shard_id"`
	Asset            string    `json:"asset"`
	CollateralAsset  string    `json:"collateral_asset"`
	CollateralAmount uint64    `json:"collateral_amount"`
	SubmittedAtSlot  uint64    `json:"submitted_at_slot"`
}

func (e *AskSubmitted) Kind() LifecycleKind { return KindAskSubmitted }

type LoanIssued struct {
	Lender          uuid.UUID `json:"lender"`
	Borrower        uuid.UUID `json:"borrower"`
	Amount          uint64    `json:"amount"`
	Rate            uint8     `json:"rate"`
	Collateral      uint64    `json:"collateral"`
	ShardID         uint64    `json:"shard_id"`
	LoanIndex       uint64    `json:"loan_index"`
	Asset           string    `json:"asset"`
	CollateralAsset string    `json:"collateral_asset"`
	StartSlot       uint64    `json:"start_slot"`
	DurationSlots   uint64    `json:"duration_slots"`
}

func (e *LoanIssued) Kind() LifecycleKind { return KindLoanIssued }

type LoanRepaid struct {
	Lender          uuid.UUID `json:"lender"`
	Borrower        uuid.UUID `json:"borrower"`
	Amount          uint64    `json:"amount"` // principal + interest
	Interest        uint64    `json:"interest"`
	ShardID         uint64    `json:"shard_id"`
	LoanIndex       uint64    `json:"loan_index"`
	Asset           string    `json:"asset"`
	CollateralAsset string    `json:"collateral_asset"`
}

func (e *LoanRepaid) Kind() LifecycleKind { return KindLoanRepaid }

type BidExpired struct {
	Lender       uuid.UUID `json:"lender"`
	Amount       uint64    `json:"amount"`
	RefundAmount uint64    `json:"refund_amount"`
	FeeAmount    uint64    `json:"fee_amount"`
	ShardID      uint64    `json:"shard_id"`
	Asset        string    `json:"asset"`
}

func (e *BidExpired) Kind() LifecycleKind { return KindBidExpired }

type AskExpired struct {
	Borrower        uuid.UUID `json:"borrower"`
	Amount          uint64    `json:"amount"`
	RefundAmount    uint64    `json:"refund_amount"`
	FeeAmount       uint64    `json:"fee_amount"`
	ShardID         uint64    `json:"shard_id"`
	Asset           string    `json:"asset"`
	CollateralAsset string    `json:"collateral_asset"`
}

func (e *AskExpired) Kind() LifecycleKind { return KindAskExpired }

type FeesWithdrawn struct {
	Admin   uuid.UUID `json:"admin"`
	ShardID uint64    `json:"shard_id"`
	Amount  uint64    `json:"amount"`
	Asset   string    `json:"asset"`
}

func (e *FeesWithdrawn) Kind() LifecycleKind { return KindFeesWithdrawn }
