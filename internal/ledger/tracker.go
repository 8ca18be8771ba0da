package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// BalanceTracker maintains in-memory account balances.
// Not thread-safe — only accessed from the single-threaded engine.
type BalanceTracker struct {
	balances map[AccountKey]int64
}

func NewBalanceTracker() *BalanceTracker {
	return &BalanceTracker{
		balances: make(map[AccountKey]int64),
	}
}

// ApplyJournal applies a single journal entry to balances
func (bt *BalanceTracker) ApplyJournal(j Journal) {
	bt.balances[j.DebitAccount] += j.Amount
	bt.balances[j.CreditAccount] -= j.Amount
}

// ApplyBatch applies all journals in a batch
func (bt *BalanceTracker) ApplyBatch(batch *Batch) error {
	if err := batch.Validate(); err != nil {
		return fmt.Errorf("invalid batch: %w", err)
	}
	for _, j := range batch.Journals {
		bt.ApplyJournal(j)
	}
	return nil
}

// GetBalance returns the current balance for an account
func (bt *BalanceTracker) GetBalance(key AccountKey) int64 {
	return bt.balances[key]
}

// SetBalance overwrites an account balance (snapshot restore only)
func (bt *BalanceTracker) SetBalance(key AccountKey, balance int64) {
	bt.balances[key] = balance
}

// WalletBalance returns a user's wallet balance for an asset.
func (bt *BalanceTracker) WalletBalance(userID uuid.UUID, assetID AssetID) int64 {
	return bt.GetBalance(NewWalletKey(userID, assetID))
}

// EscrowPrincipal returns the custody balance backing resting bids.
func (bt *BalanceTracker) EscrowPrincipal(assetID AssetID) int64 {
	return bt.GetBalance(NewEscrowKey(SubTypeEscrowPrincipal, assetID))
}

// EscrowCollateral returns the custody balance backing resting asks and
// active loans.
func (bt *BalanceTracker) EscrowCollateral(assetID AssetID) int64 {
	return bt.GetBalance(NewEscrowKey(SubTypeEscrowCollateral, assetID))
}

// FeeSinkBalance returns one shard's accumulated cleanup fees.
func (bt *BalanceTracker) FeeSinkBalance(shardID uint64, assetID AssetID) int64 {
	return bt.GetBalance(NewFeeSinkKey(shardID, assetID))
}

// ValidateSufficientWallet checks a wallet can cover a transfer.
func (bt *BalanceTracker) ValidateSufficientWallet(userID uuid.UUID, assetID AssetID, required int64) error {
	balance := bt.WalletBalance(userID, assetID)
	if balance < required {
		return fmt.Errorf("insufficient wallet balance: have=%d, need=%d", balance, required)
	}
	return nil
}

// ComputeGlobalBalance sums all account balances per asset. The ledger is
// zero-sum (deposits debit wallets against the external boundary), so every
// total must be 0.
func (bt *BalanceTracker) ComputeGlobalBalance() map[AssetID]int64 {
	totals := make(map[AssetID]int64)
	for key, balance := range bt.balances {
		totals[key.AssetID] += balance
	}
	return totals
}

// ValidateNonNegative checks that a specific account balance is >= 0.
// External boundary accounts are exempt — they run negative by design.
func (bt *BalanceTracker) ValidateNonNegative(key AccountKey) error {
	balance := bt.GetBalance(key)
	if balance < 0 {
		return fmt.Errorf("account %s has negative balance: %d", key.AccountPath(), balance)
	}
	return nil
}

// Snapshot returns a copy of all balances
func (bt *BalanceTracker) Snapshot() map[AccountKey]int64 {
	snapshot := make(map[AccountKey]int64, len(bt.balances))
	for k, v := range bt.balances {
		snapshot[k] = v
	}
	return snapshot
}
