package event

import (
	"github.com/google/uuid"
)

// OpType discriminator for operation payloads
type OpType int32

const (
	OpTypeUnknown OpType = iota
	OpTypeInitialize
	OpTypeDeposit
	OpTypeSubmitBid
	OpTypeSubmitAsk
	OpTypeRepay
	OpTypeCleanup
	OpTypeWithdrawFees
)

// Envelope wraps every applied operation in the log
type Envelope struct {
	// Global monotonic sequence assigned by the engine
	Sequence int64

	// Stable idempotency key from upstream (op_id)
	IdempotencyKey string

	// Operation type discriminator
	OpType OpType

	// Shard context (nil for global operations)
	ShardID *uint64

	// Slot carried by the operation (versioned input, NOT wall-clock)
	Slot uint64

	// Upstream sequence for ordering validation
	SourceSequence int64

	// JSON-encoded operation payload
	Payload []byte

	// SHA-256 of escrow state AFTER applying this operation
	StateHash [32]byte

	// Previous operation's state hash (chain integrity)
	PrevHash [32]byte
}

// Operation is the interface all operation payloads must implement
type Operation interface {
	// IdempotencyKey returns the stable dedup key
	IdempotencyKey() string

	// OpType returns the discriminator
	OpType() OpType

	// SourceSequence returns upstream ordering key
	SourceSequence() int64

	// Slot returns the monotonic clock value the operation was sequenced at
	Slot() uint64
}

func (ot OpType) String() string {
	switch ot {
	case OpTypeInitialize:
		return "Initialize"
	case OpTypeDeposit:
		return "Deposit"
	case OpTypeSubmitBid:
		return "SubmitBid"
	case OpTypeSubmitAsk:
		return "SubmitAsk"
	case OpTypeRepay:
		return "Repay"
	case OpTypeCleanup:
		return "Cleanup"
	case OpTypeWithdrawFees:
		return "WithdrawFees"
	default:
		return "Unknown"
	}
}

// Initialize creates the protocol registry. One-time; fails if the registry
// already exists.
type Initialize struct {
	OpID            uuid.UUID `json:"op_id"`
	Admin           uuid.UUID `json:"admin"`
	ShardCount      uint64    `json:"shard_count"`
	SupportedAssets []string  `json:"supported_assets"`
	CurrentSlot     uint64    `json:"current_slot"`
	Sequence        int64     `json:"source_sequence"`
}

func (o *Initialize) IdempotencyKey() string { return o.OpID.String() }
func (o *Initialize) OpType() OpType         { return OpTypeInitialize }
func (o *Initialize) SourceSequence() int64  { return o.Sequence }
func (o *Initialize) Slot() uint64           { return o.CurrentSlot }

// Deposit credits a user wallet from the external boundary. Wallets must be
// funded before orders can escrow from them.
type Deposit struct {
	OpID        uuid.UUID `json:"op_id"`
	User        uuid.UUID `json:"user"`
	Asset       string    `json:"asset"`
	Amount      uint64    `json:"amount"`
	CurrentSlot uint64    `json:"current_slot"`
	Sequence    int64     `json:"source_sequence"`
}

func (o *Deposit) IdempotencyKey() string { return o.OpID.String() }
func (o *Deposit) OpType() OpType         { return OpTypeDeposit }
func (o *Deposit) SourceSequence() int64  { return o.Sequence }
func (o *Deposit) Slot() uint64           { return o.CurrentSlot }

// SubmitBid posts a lender's offer to lend at or above MinRate.
type SubmitBid struct {
	OpID          uuid.UUID `json:"op_id"`
	Lender        uuid.UUID `json:"lender"`
	Asset         string    `json:"asset"`
	Amount        uint64    `json:"amount"`
	MinRate       uint8     `json:"min_rate"`
	DurationSlots uint64    `json:"duration_slots"`
	CurrentSlot   uint64    `json:"current_slot"`
	Sequence      int64     `json:"source_sequence"`
}

func (o *SubmitBid) IdempotencyKey() string { return o.OpID.String() }
func (o *SubmitBid) OpType() OpType         { return OpTypeSubmitBid }
func (o *SubmitBid) SourceSequence() int64  { return o.Sequence }
func (o *SubmitBid) Slot() uint64           { return o.CurrentSlot }

// SubmitAsk posts a borrower's request to borrow at or below MaxRate,
// backed by escrowed collateral.
type SubmitAsk struct {
	OpID             uuid.UUID `json:"op_id"`
	Borrower         uuid.UUID `json:"borrower"`
	Asset            string    `json:"asset"`
	CollateralAsset  string    `json:"collateral_asset"`
	Amount           uint64    `json:"amount"`
	MaxRate          uint8     `json:"max_rate"`
	CollateralAmount uint64    `json:"collateral_amount"`
	CurrentSlot      uint64    `json:"current_slot"`
	Sequence         int64     `json:"source_sequence"`
}

func (o *SubmitAsk) IdempotencyKey() string { return o.OpID.String() }
func (o *SubmitAsk) OpType() OpType         { return OpTypeSubmitAsk }
func (o *SubmitAsk) SourceSequence() int64  { return o.Sequence }
func (o *SubmitAsk) Slot() uint64           { return o.CurrentSlot }

// Repay settles a loan: principal plus accrued interest to the lender,
// collateral released back to the borrower. The (Asset, Rate) pair locates
// the shard the loan lives on.
type Repay struct {
	OpID        uuid.UUID `json:"op_id"`
	Borrower    uuid.UUID `json:"borrower"`
	Asset       string    `json:"asset"`
	Rate        uint8     `json:"rate"`
	LoanIndex   uint64    `json:"loan_index"`
	CurrentSlot uint64    `json:"current_slot"`
	Sequence    int64     `json:"source_sequence"`
}

func (o *Repay) IdempotencyKey() string { return o.OpID.String() }
func (o *Repay) OpType() OpType         { return OpTypeRepay }
func (o *Repay) SourceSequence() int64  { return o.Sequence }
func (o *Repay) Slot() uint64           { return o.CurrentSlot }

// Cleanup evicts stale resting orders from one shard. Callable by anyone;
// a no-op when nothing is stale.
type Cleanup struct {
	OpID        uuid.UUID `json:"op_id"`
	Caller      uuid.UUID `json:"caller"`
	ShardID     uint64    `json:"shard_id"`
	CurrentSlot uint64    `json:"current_slot"`
	Sequence    int64     `json:"source_sequence"`
}

func (o *Cleanup) IdempotencyKey() string { return o.OpID.String() }
func (o *Cleanup) OpType() OpType         { return OpTypeCleanup }
func (o *Cleanup) SourceSequence() int64  { return o.Sequence }
func (o *Cleanup) Slot() uint64           { return o.CurrentSlot }

// WithdrawFees moves accumulated cleanup fees from a shard's fee sink into
// the administrator's wallet. Administrator-only; fails when Amount exceeds
// the sink balance. Amount zero drains the sink.
type WithdrawFees struct {
	OpID        uuid.UUID `json:"op_id"`
	Caller      uuid.UUID `json:"caller"`
	ShardID     uint64    `json:"shard_id"`
	Asset       string    `json:"asset"`
	Amount      uint64    `json:"amount"`
	CurrentSlot uint64    `json:"current_slot"`
	Sequence    int64     `json:"source_sequence"`
}

func (o *WithdrawFees) IdempotencyKey() string { return o.OpID.String() }
func (o *WithdrawFees) OpType() OpType         { return OpTypeWithdrawFees }
func (o *WithdrawFees) SourceSequence() int64  { return o.Sequence }
func (o *WithdrawFees) Slot() uint64           { return o.CurrentSlot }
