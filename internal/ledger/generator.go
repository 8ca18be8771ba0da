package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"LendAuction/internal/book"
)

// JournalGenerator creates balanced journal batches from operations
type JournalGenerator struct {
	balanceTracker *BalanceTracker // Reference for pre-checks
}

func NewJournalGenerator(tracker *BalanceTracker) *JournalGenerator {
	return &JournalGenerator{
		balanceTracker: tracker,
	}
}

func newBatch(opRef string, sequence int64, slot uint64, capacity int) *Batch {
	return &Batch{
		BatchID:  uuid.New(),
		OpRef:    opRef,
		Sequence: sequence,
		Slot:     slot,
		Journals: make([]Journal, 0, capacity),
	}
}

func (jg *JournalGenerator) appendJournal(
	batch *Batch,
	debit, credit AccountKey,
	assetID AssetID,
	amount int64,
	journalType JournalType,
) {
	batch.Journals = append(batch.Journals, Journal{
		JournalID:     uuid.New(),
		BatchID:       batch.BatchID,
		OpRef:         batch.OpRef,
		Sequence:      batch.Sequence,
		DebitAccount:  debit,
		CreditAccount: credit,
		AssetID:       assetID,
		Amount:        amount,
		JournalType:   journalType,
		Slot:          batch.Slot,
	})
}

// GenerateDeposit creates journals crediting a user's wallet from the
// external boundary. Moves funds: external:deposits → user:wallet
func (jg *JournalGenerator) GenerateDeposit(
	opRef string,
	sequence int64,
	slot uint64,
	userID uuid.UUID,
	assetID AssetID,
	amount uint64,
) (*Batch, error) {
	batch := newBatch(opRef, sequence, slot, 1)
	jg.appendJournal(batch,
		NewWalletKey(userID, assetID),
		NewExternalDepositsKey(assetID),
		assetID, int64(amount), JournalTypeDeposit)
	return batch, nil
}

// GenerateBidSubmission escrows a lender's principal and disburses any
// immediate fills. The full bid amount moves user:wallet →
// vault:escrow_principal, then each fill moves vault:escrow_principal →
// borrower wallet. Matched collateral stays in vault:escrow_collateral,
// already escrowed when the resting ask was placed.
func (jg *JournalGenerator) GenerateBidSubmission(
	opRef string,
	sequence int64,
	slot uint64,
	lender uuid.UUID,
	assetID AssetID,
	amount uint64,
	fills []book.Fill,
) (*Batch, error) {
	if err := jg.balanceTracker.ValidateSufficientWallet(lender, assetID, int64(amount)); err != nil {
		return nil, fmt.Errorf("bid pre-check failed: %w", err)
	}

	batch := newBatch(opRef, sequence, slot, 1+len(fills))
	jg.appendJournal(batch,
		NewEscrowKey(SubTypeEscrowPrincipal, assetID),
		NewWalletKey(lender, assetID),
		assetID, int64(amount), JournalTypeBidEscrow)

	for _, fill := range fills {
		jg.appendJournal(batch,
			NewWalletKey(fill.Borrower, assetID),
			NewEscrowKey(SubTypeEscrowPrincipal, assetID),
			assetID, int64(fill.Amount), JournalTypeLoanDisbursement)
	}
	return batch, nil
}

// GenerateAskSubmission escrows a borrower's collateral and disburses any
// immediate fills. The full collateral moves user:wallet →
// vault:escrow_collateral, then each fill moves vault:escrow_principal →
// borrower wallet. Matched principal was escrowed when the resting bid
// was placed.
func (jg *JournalGenerator) GenerateAskSubmission(
	opRef string,
	sequence int64,
	slot uint64,
	borrower uuid.UUID,
	assetID AssetID,
	collateralAssetID AssetID,
	collateral uint64,
	fills []book.Fill,
) (*Batch, error) {
	if err := jg.balanceTracker.ValidateSufficientWallet(borrower, collateralAssetID, int64(collateral)); err != nil {
		return nil, fmt.Errorf("ask pre-check failed: %w", err)
	}

	batch := newBatch(opRef, sequence, slot, 1+len(fills))
	jg.appendJournal(batch,
		NewEscrowKey(SubTypeEscrowCollateral, collateralAssetID),
		NewWalletKey(borrower, collateralAssetID),
		collateralAssetID, int64(collateral), JournalTypeAskEscrow)

	for _, fill := range fills {
		jg.appendJournal(batch,
			NewWalletKey(fill.Borrower, assetID),
			NewEscrowKey(SubTypeEscrowPrincipal, assetID),
			assetID, int64(fill.Amount), JournalTypeLoanDisbursement)
	}
	return batch, nil
}

// GenerateRepayment settles a loan: principal plus interest moves
// borrower wallet → lender wallet, and the loan's collateral moves
// vault:escrow_collateral → borrower wallet.
func (jg *JournalGenerator) GenerateRepayment(
	opRef string,
	sequence int64,
	slot uint64,
	borrower uuid.UUID,
	lender uuid.UUID,
	assetID AssetID,
	collateralAssetID AssetID,
	repaymentDue uint64,
	collateral uint64,
) (*Batch, error) {
	if err := jg.balanceTracker.ValidateSufficientWallet(borrower, assetID, int64(repaymentDue)); err != nil {
		return nil, fmt.Errorf("repay pre-check failed: %w", err)
	}

	batch := newBatch(opRef, sequence, slot, 2)
	jg.appendJournal(batch,
		NewWalletKey(lender, assetID),
		NewWalletKey(borrower, assetID),
		assetID, int64(repaymentDue), JournalTypeRepayment)
	jg.appendJournal(batch,
		NewWalletKey(borrower, collateralAssetID),
		NewEscrowKey(SubTypeEscrowCollateral, collateralAssetID),
		collateralAssetID, int64(collateral), JournalTypeCollateralRelease)
	return batch, nil
}

// GenerateCleanup releases escrow for evicted orders. Each evicted bid
// splits its principal between the lender's wallet and the shard's fee
// sink; each evicted ask does the same with its collateral. An empty
// batch is legal when nothing was stale.
func (jg *JournalGenerator) GenerateCleanup(
	opRef string,
	sequence int64,
	slot uint64,
	shardID uint64,
	evictedBids []book.Bid,
	evictedAsks []book.Ask,
) (*Batch, error) {
	batch := newBatch(opRef, sequence, slot, 2*(len(evictedBids)+len(evictedAsks)))

	for _, bid := range evictedBids {
		assetID, ok := GetAssetID(bid.Asset)
		if !ok {
			return nil, fmt.Errorf("unknown asset %q on evicted bid", bid.Asset)
		}
		refund, fee := book.FeeSplit(bid.Amount)
		jg.appendJournal(batch,
			NewWalletKey(bid.Lender, assetID),
			NewEscrowKey(SubTypeEscrowPrincipal, assetID),
			assetID, int64(refund), JournalTypeEvictionRefund)
		if fee > 0 {
			jg.appendJournal(batch,
				NewFeeSinkKey(shardID, assetID),
				NewEscrowKey(SubTypeEscrowPrincipal, assetID),
				assetID, int64(fee), JournalTypeCleanupFee)
		}
	}

	for _, ask := range evictedAsks {
		collateralAssetID, ok := GetAssetID(ask.CollateralAsset)
		if !ok {
			return nil, fmt.Errorf("unknown asset %q on evicted ask", ask.CollateralAsset)
		}
		refund, fee := book.FeeSplit(ask.Collateral)
		jg.appendJournal(batch,
			NewWalletKey(ask.Borrower, collateralAssetID),
			NewEscrowKey(SubTypeEscrowCollateral, collateralAssetID),
			collateralAssetID, int64(refund), JournalTypeEvictionRefund)
		if fee > 0 {
			jg.appendJournal(batch,
				NewFeeSinkKey(shardID, collateralAssetID),
				NewEscrowKey(SubTypeEscrowCollateral, collateralAssetID),
				collateralAssetID, int64(fee), JournalTypeCleanupFee)
		}
	}

	return batch, nil
}

// GenerateFeeWithdrawal moves amount from one shard's fee sink for one
// asset into the admin's wallet. Fails when amount exceeds the sink
// balance; amount zero returns an empty batch.
func (jg *JournalGenerator) GenerateFeeWithdrawal(
	opRef string,
	sequence int64,
	slot uint64,
	shardID uint64,
	admin uuid.UUID,
	assetID AssetID,
	amount uint64,
) (*Batch, error) {
	batch := newBatch(opRef, sequence, slot, 1)

	accrued := jg.balanceTracker.FeeSinkBalance(shardID, assetID)
	if accrued < 0 {
		return nil, fmt.Errorf("fee sink for shard %d is negative: %d", shardID, accrued)
	}
	if amount == 0 {
		return batch, nil
	}
	if amount > uint64(accrued) {
		return nil, fmt.Errorf("withdrawal %d exceeds fee sink balance %d", amount, accrued)
	}

	jg.appendJournal(batch,
		NewWalletKey(admin, assetID),
		NewFeeSinkKey(shardID, assetID),
		assetID, int64(amount), JournalTypeFeeWithdrawal)
	return batch, nil
}
