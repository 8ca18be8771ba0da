package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// JournalType represents the purpose of a journal entry
type JournalType int32

const (
	JournalTypeDeposit JournalType = iota
	JournalTypeBidEscrow
	JournalTypeAskEscrow
	JournalTypeLoanDisbursement
	JournalTypeRepayment
	JournalTypeCollateralRelease
	JournalTypeEvictionRefund
	JournalTypeCleanupFee
	JournalTypeFeeWithdrawal
)

// Journal represents a single double-entry journal entry. A positive amount
// moves from the credit account to the debit account, so every entry is
// balanced by construction.
type Journal struct {
	JournalID     uuid.UUID   // Unique identifier
	BatchID       uuid.UUID   // Groups the entries of one operation
	OpRef         string      // Idempotency key of source operation
	Sequence      int64       // Global operation sequence
	DebitAccount  AccountKey  // Account receiving the amount
	CreditAccount AccountKey  // Account giving up the amount
	AssetID       AssetID     // Asset being transferred
	Amount        int64       // Base units (ALWAYS positive)
	JournalType   JournalType // Entry type
	Slot          uint64      // Slot of the operation (versioned input)
}

// Batch represents the complete set of balance deltas staged by one
// operation. The engine applies a batch all-or-nothing.
type Batch struct {
	BatchID  uuid.UUID
	OpRef    string
	Sequence int64
	Slot     uint64
	Journals []Journal
}

// Validate ensures the batch is well-formed. An empty batch is legal: some
// operations (an idempotent cleanup with nothing stale) move no value.
func (b *Batch) Validate() error {
	for _, j := range b.Journals {
		if j.Amount <= 0 {
			return fmt.Errorf("journal %s has non-positive amount: %d", j.JournalID, j.Amount)
		}
		if j.BatchID != b.BatchID {
			return fmt.Errorf("journal %s has mismatched batch_id", j.JournalID)
		}
		if j.DebitAccount == j.CreditAccount {
			return fmt.Errorf("journal %s has same debit and credit account", j.JournalID)
		}
		if j.DebitAccount.AssetID != j.AssetID || j.CreditAccount.AssetID != j.AssetID {
			return fmt.Errorf("journal %s crosses assets", j.JournalID)
		}
	}
	return nil
}
