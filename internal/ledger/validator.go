package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// InvariantValidator checks ledger invariants
type InvariantValidator struct {
	tracker *BalanceTracker
}

func NewInvariantValidator(tracker *BalanceTracker) *InvariantValidator {
	return &InvariantValidator{
		tracker: tracker,
	}
}

// ValidateBatchBalance verifies the batch is well-formed
func (v *InvariantValidator) ValidateBatchBalance(batch *Batch) error {
	return batch.Validate()
}

// ValidateGlobalBalance verifies the ledger is zero-sum per asset
func (v *InvariantValidator) ValidateGlobalBalance() error {
	totals := v.tracker.ComputeGlobalBalance()

	for assetID, total := range totals {
		if total != 0 {
			assetName, _ := GetAssetName(assetID)
			return fmt.Errorf("global balance for %s is non-zero: %d", assetName, total)
		}
	}

	return nil
}

// ValidateWalletNonNegative checks a user's wallet never goes below zero
func (v *InvariantValidator) ValidateWalletNonNegative(userID uuid.UUID, assetID AssetID) error {
	return v.tracker.ValidateNonNegative(NewWalletKey(userID, assetID))
}

// ValidateEscrowCoverage verifies custody accounts hold at least the sums
// the order books and loan pools attribute to them. restingPrincipal is
// the total of all resting bids for the asset; heldCollateral is resting
// asks plus outstanding loan collateral.
func (v *InvariantValidator) ValidateEscrowCoverage(assetID AssetID, restingPrincipal, heldCollateral uint64) error {
	if got := v.tracker.EscrowPrincipal(assetID); got != int64(restingPrincipal) {
		assetName, _ := GetAssetName(assetID)
		return fmt.Errorf("principal escrow for %s is %d, resting bids total %d", assetName, got, restingPrincipal)
	}
	if got := v.tracker.EscrowCollateral(assetID); got != int64(heldCollateral) {
		assetName, _ := GetAssetName(assetID)
		return fmt.Errorf("collateral escrow for %s is %d, held collateral totals %d", assetName, got, heldCollateral)
	}
	return nil
}

// ValidateEscrowNonNegative checks custody accounts are never overdrawn.
func (v *InvariantValidator) ValidateEscrowNonNegative(assetID AssetID) error {
	if err := v.tracker.ValidateNonNegative(NewEscrowKey(SubTypeEscrowPrincipal, assetID)); err != nil {
		return err
	}
	return v.tracker.ValidateNonNegative(NewEscrowKey(SubTypeEscrowCollateral, assetID))
}
