package query

import "github.com/google/uuid"

// RegistryResponse represents protocol configuration for API queries.
type RegistryResponse struct {
	Admin            uuid.UUID `json:"admin"`
	ShardCount       uint64    `json:"shard_count"`
	SupportedAssets  []string  `json:"supported_assets"`
	TotalLoansIssued uint64    `json:"total_loans_issued"`
	AsOfSequence     int64     `json:"as_of_sequence"`
}

// OrderResponse represents a resting order for API queries.
type OrderResponse struct {
	ShardID         uint64    `json:"shard_id"`
	Side            string    `json:"side"`
	Owner           uuid.UUID `json:"owner"`
	Amount          int64     `json:"amount"`
	Rate            uint8     `json:"rate"`
	Collateral      int64     `json:"collateral"`
	Asset           string    `json:"asset"`
	CollateralAsset string    `json:"collateral_asset,omitempty"`
	DurationSlots   int64     `json:"duration_slots"`
	SubmittedAtSlot int64     `json:"submitted_at_slot"`
	AsOfSequence    int64     `json:"as_of_sequence"`
}

// LoanResponse represents an issued loan for API queries.
type LoanResponse struct {
	ShardID         uint64    `json:"shard_id"`
	LoanIndex       uint64    `json:"loan_index"`
	Lender          uuid.UUID `json:"lender"`
	Borrower        uuid.UUID `json:"borrower"`
	Amount          int64     `json:"amount"`
	Rate            uint8     `json:"rate"`
	Collateral      int64     `json:"collateral"`
	Asset           string    `json:"asset"`
	CollateralAsset string    `json:"collateral_asset"`
	StartSlot       int64     `json:"start_slot"`
	DurationSlots   int64     `json:"duration_slots"`
	Repaid          bool      `json:"repaid"`
	InterestPaid    int64     `json:"interest_paid"`
	AsOfSequence    int64     `json:"as_of_sequence"`
}

// BalanceResponse represents one wallet balance for API queries.
type BalanceResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Asset        string    `json:"asset"`
	AssetID      uint16    `json:"asset_id"`
	Balance      int64     `json:"balance"`
	AsOfSequence int64     `json:"as_of_sequence"`
}

// JournalHistoryEntry represents a journal entry for API queries.
type JournalHistoryEntry struct {
	JournalID     string `json:"journal_id"`
	BatchID       string `json:"batch_id"`
	OpRef         string `json:"op_ref"`
	Sequence      int64  `json:"sequence"`
	DebitAccount  string `json:"debit_account"`
	CreditAccount string `json:"credit_account"`
	AssetID       uint16 `json:"asset_id"`
	Amount        int64  `json:"amount"`
	JournalType   int32  `json:"journal_type"`
	Slot          int64  `json:"slot"`
}

// IntegrityReport is the result of an integrity verification check.
type IntegrityReport struct {
	IsHealthy        bool              `json:"is_healthy"`
	HashChainBreaks  []int64           `json:"hash_chain_breaks,omitempty"`
	UnbalancedAssets []UnbalancedAsset `json:"unbalanced_assets,omitempty"`
}

// UnbalancedAsset represents an asset with non-zero global balance sum.
type UnbalancedAsset struct {
	AssetID   uint16 `json:"asset_id"`
	Imbalance int64  `json:"imbalance"`
}
