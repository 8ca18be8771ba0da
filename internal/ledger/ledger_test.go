package ledger_test

import (
	"os"
	"testing"

	"github.com/google/uuid"

	"LendAuction/internal/book"
	"LendAuction/internal/ledger"
)

func TestMain(m *testing.M) {
	ledger.RegisterAssets([]string{"USDC", "SOL"})
	os.Exit(m.Run())
}

func usdc(t *testing.T) ledger.AssetID {
	t.Helper()
	id, ok := ledger.GetAssetID("USDC")
	if !ok {
		t.Fatal("USDC should be a known asset")
	}
	return id
}

func sol(t *testing.T) ledger.AssetID {
	t.Helper()
	id, ok := ledger.GetAssetID("SOL")
	if !ok {
		t.Fatal("SOL should be a known asset")
	}
	return id
}

// ============================================================================
// Test: AccountKey
// ============================================================================

func TestAccountKey_WalletPath(t *testing.T) {
	userID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	key := ledger.NewWalletKey(userID, usdc(t))

	path := key.AccountPath()
	expected := "user:550e8400-e29b-41d4-a716-446655440000:wallet:USDC"
	if path != expected {
		t.Errorf("got %q, want %q", path, expected)
	}
}

func TestAccountKey_EscrowPath(t *testing.T) {
	key := ledger.NewEscrowKey(ledger.SubTypeEscrowPrincipal, usdc(t))

	path := key.AccountPath()
	if path != "vault:escrow_principal:USDC" {
		t.Errorf("got %q, want %q", path, "vault:escrow_principal:USDC")
	}
}

func TestAccountKey_FeeSinkPath(t *testing.T) {
	key := ledger.NewFeeSinkKey(3, usdc(t))

	path := key.AccountPath()
	if path != "vault:fee_sink:3:USDC" {
		t.Errorf("got %q, want %q", path, "vault:fee_sink:3:USDC")
	}
}

func TestAccountKey_ExternalPath(t *testing.T) {
	key := ledger.NewExternalDepositsKey(usdc(t))

	path := key.AccountPath()
	if path != "external:deposits:USDC" {
		t.Errorf("got %q, want %q", path, "external:deposits:USDC")
	}
}

func TestGetAssetID_Unknown(t *testing.T) {
	_, ok := ledger.GetAssetID("DOGE")
	if ok {
		t.Error("DOGE should not be a known asset")
	}
}

func TestRegisterAssets_Deterministic(t *testing.T) {
	a := usdc(t)
	b := sol(t)
	if a != 1 || b != 2 {
		t.Errorf("asset IDs should follow list order: USDC=%d SOL=%d", a, b)
	}
}

// ============================================================================
// Test: BalanceTracker
// ============================================================================

func deposit(bt *ledger.BalanceTracker, userID uuid.UUID, assetID ledger.AssetID, amount int64) {
	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewWalletKey(userID, assetID),
		CreditAccount: ledger.NewExternalDepositsKey(assetID),
		AssetID:       assetID,
		Amount:        amount,
	})
}

func TestBalanceTracker_InitialBalanceZero(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	userID := uuid.New()

	balance := bt.WalletBalance(userID, usdc(t))
	if balance != 0 {
		t.Errorf("initial balance should be 0, got %d", balance)
	}
}

func TestBalanceTracker_ApplyJournal(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	userID := uuid.New()

	deposit(bt, userID, usdc(t), 1_000_000)

	wallet := bt.WalletBalance(userID, usdc(t))
	if wallet != 1_000_000 {
		t.Errorf("wallet: got %d, want 1_000_000", wallet)
	}
}

func TestBalanceTracker_GlobalBalanceZeroSum(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	userID := uuid.New()
	assetID := usdc(t)

	deposit(bt, userID, assetID, 1_000_000)

	// Escrow part of it
	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewEscrowKey(ledger.SubTypeEscrowPrincipal, assetID),
		CreditAccount: ledger.NewWalletKey(userID, assetID),
		AssetID:       assetID,
		Amount:        300_000,
	})

	totals := bt.ComputeGlobalBalance()
	for aid, total := range totals {
		if total != 0 {
			t.Errorf("asset %d has non-zero global balance: %d", aid, total)
		}
	}
}

func TestBalanceTracker_ValidateSufficientWallet(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	userID := uuid.New()
	assetID := usdc(t)

	err := bt.ValidateSufficientWallet(userID, assetID, 100)
	if err == nil {
		t.Error("expected error for insufficient balance")
	}

	deposit(bt, userID, assetID, 1_000)

	err = bt.ValidateSufficientWallet(userID, assetID, 1_000)
	if err != nil {
		t.Errorf("should have sufficient balance: %v", err)
	}

	err = bt.ValidateSufficientWallet(userID, assetID, 1_001)
	if err == nil {
		t.Error("expected error for 1_001 > 1_000")
	}
}

func TestBalanceTracker_Snapshot(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	userID := uuid.New()
	assetID := usdc(t)

	deposit(bt, userID, assetID, 999)

	snap := bt.Snapshot()
	if len(snap) == 0 {
		t.Fatal("snapshot should not be empty")
	}

	// Mutating snapshot should not affect tracker
	for k := range snap {
		snap[k] = 0
	}

	if bt.WalletBalance(userID, assetID) != 999 {
		t.Error("tracker balance should not be affected by snapshot mutation")
	}
}

// ============================================================================
// Test: Batch Validation
// ============================================================================

func TestBatchValidate_EmptyBatch_Passes(t *testing.T) {
	batch := &ledger.Batch{
		BatchID:  uuid.New(),
		Journals: []ledger.Journal{},
	}

	if err := batch.Validate(); err != nil {
		t.Errorf("empty batch should pass validation: %v", err)
	}
}

func TestBatchValidate_ZeroAmount_Fails(t *testing.T) {
	batchID := uuid.New()
	assetID := usdc(t)

	batch := &ledger.Batch{
		BatchID: batchID,
		Journals: []ledger.Journal{
			{
				JournalID:     uuid.New(),
				BatchID:       batchID,
				DebitAccount:  ledger.NewWalletKey(uuid.New(), assetID),
				CreditAccount: ledger.NewExternalDepositsKey(assetID),
				AssetID:       assetID,
				Amount:        0,
			},
		},
	}

	if err := batch.Validate(); err == nil {
		t.Error("zero amount should fail validation")
	}
}

func TestBatchValidate_SelfTransfer_Fails(t *testing.T) {
	batchID := uuid.New()
	assetID := usdc(t)
	sameAccount := ledger.NewWalletKey(uuid.New(), assetID)

	batch := &ledger.Batch{
		BatchID: batchID,
		Journals: []ledger.Journal{
			{
				JournalID:     uuid.New(),
				BatchID:       batchID,
				DebitAccount:  sameAccount,
				CreditAccount: sameAccount,
				AssetID:       assetID,
				Amount:        100,
			},
		},
	}

	if err := batch.Validate(); err == nil {
		t.Error("self-transfer should fail validation")
	}
}

func TestBatchValidate_CrossAsset_Fails(t *testing.T) {
	batchID := uuid.New()

	batch := &ledger.Batch{
		BatchID: batchID,
		Journals: []ledger.Journal{
			{
				JournalID:     uuid.New(),
				BatchID:       batchID,
				DebitAccount:  ledger.NewWalletKey(uuid.New(), usdc(t)),
				CreditAccount: ledger.NewExternalDepositsKey(sol(t)),
				AssetID:       usdc(t),
				Amount:        100,
			},
		},
	}

	if err := batch.Validate(); err == nil {
		t.Error("cross-asset journal should fail validation")
	}
}

func TestBatchValidate_MismatchedBatchID_Fails(t *testing.T) {
	batchID := uuid.New()
	assetID := usdc(t)

	batch := &ledger.Batch{
		BatchID: batchID,
		Journals: []ledger.Journal{
			{
				JournalID:     uuid.New(),
				BatchID:       uuid.New(), // Different batch ID
				DebitAccount:  ledger.NewWalletKey(uuid.New(), assetID),
				CreditAccount: ledger.NewExternalDepositsKey(assetID),
				AssetID:       assetID,
				Amount:        100,
			},
		},
	}

	if err := batch.Validate(); err == nil {
		t.Error("mismatched batch ID should fail validation")
	}
}

// ============================================================================
// Test: JournalGenerator
// ============================================================================

func TestGenerator_Deposit(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(bt)
	userID := uuid.New()
	assetID := usdc(t)

	batch, err := jg.GenerateDeposit("op-1", 1, 100, userID, assetID, 5_000)
	if err != nil {
		t.Fatalf("GenerateDeposit failed: %v", err)
	}
	if err := bt.ApplyBatch(batch); err != nil {
		t.Fatalf("ApplyBatch failed: %v", err)
	}

	if got := bt.WalletBalance(userID, assetID); got != 5_000 {
		t.Errorf("wallet: got %d, want 5_000", got)
	}
}

func TestGenerator_BidSubmission_InsufficientWallet(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(bt)
	lender := uuid.New()

	_, err := jg.GenerateBidSubmission("op-1", 1, 100, lender, usdc(t), 10_000, nil)
	if err == nil {
		t.Error("expected pre-check failure for unfunded lender")
	}
}

func TestGenerator_BidSubmission_EscrowsAndDisburses(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(bt)
	lender := uuid.New()
	borrower := uuid.New()
	assetID := usdc(t)

	deposit(bt, lender, assetID, 10_000)

	fills := []book.Fill{
		{Lender: lender, Borrower: borrower, Amount: 4_000, Rate: 5},
	}
	batch, err := jg.GenerateBidSubmission("op-2", 2, 100, lender, assetID, 10_000, fills)
	if err != nil {
		t.Fatalf("GenerateBidSubmission failed: %v", err)
	}
	if err := bt.ApplyBatch(batch); err != nil {
		t.Fatalf("ApplyBatch failed: %v", err)
	}

	if got := bt.WalletBalance(lender, assetID); got != 0 {
		t.Errorf("lender wallet: got %d, want 0", got)
	}
	if got := bt.EscrowPrincipal(assetID); got != 6_000 {
		t.Errorf("escrow principal: got %d, want 6_000", got)
	}
	if got := bt.WalletBalance(borrower, assetID); got != 4_000 {
		t.Errorf("borrower wallet: got %d, want 4_000", got)
	}
}

func TestGenerator_Repayment_ReleasesCollateral(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(bt)
	lender := uuid.New()
	borrower := uuid.New()
	assetID := usdc(t)
	collateralID := sol(t)

	deposit(bt, borrower, assetID, 1_050)

	// Seed escrowed collateral
	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewEscrowKey(ledger.SubTypeEscrowCollateral, collateralID),
		CreditAccount: ledger.NewExternalDepositsKey(collateralID),
		AssetID:       collateralID,
		Amount:        1_500,
	})

	batch, err := jg.GenerateRepayment("op-3", 3, 200, borrower, lender, assetID, collateralID, 1_050, 1_500)
	if err != nil {
		t.Fatalf("GenerateRepayment failed: %v", err)
	}
	if err := bt.ApplyBatch(batch); err != nil {
		t.Fatalf("ApplyBatch failed: %v", err)
	}

	if got := bt.WalletBalance(lender, assetID); got != 1_050 {
		t.Errorf("lender wallet: got %d, want 1_050", got)
	}
	if got := bt.WalletBalance(borrower, collateralID); got != 1_500 {
		t.Errorf("borrower collateral wallet: got %d, want 1_500", got)
	}
	if got := bt.EscrowCollateral(collateralID); got != 0 {
		t.Errorf("escrow collateral: got %d, want 0", got)
	}
}

func TestGenerator_Cleanup_SplitsFee(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(bt)
	lender := uuid.New()
	assetID := usdc(t)

	// Seed escrowed principal for one stale bid of 1000
	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewEscrowKey(ledger.SubTypeEscrowPrincipal, assetID),
		CreditAccount: ledger.NewExternalDepositsKey(assetID),
		AssetID:       assetID,
		Amount:        1_000,
	})

	evicted := []book.Bid{
		{Lender: lender, Amount: 1_000, MinRate: 5, Asset: "USDC"},
	}
	batch, err := jg.GenerateCleanup("op-4", 4, 500, 7, evicted, nil)
	if err != nil {
		t.Fatalf("GenerateCleanup failed: %v", err)
	}
	if err := bt.ApplyBatch(batch); err != nil {
		t.Fatalf("ApplyBatch failed: %v", err)
	}

	if got := bt.WalletBalance(lender, assetID); got != 995 {
		t.Errorf("refund: got %d, want 995", got)
	}
	if got := bt.FeeSinkBalance(7, assetID); got != 5 {
		t.Errorf("fee sink: got %d, want 5", got)
	}
	if got := bt.EscrowPrincipal(assetID); got != 0 {
		t.Errorf("escrow principal: got %d, want 0", got)
	}
}

func TestGenerator_Cleanup_NothingStale_EmptyBatch(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(bt)

	batch, err := jg.GenerateCleanup("op-5", 5, 500, 0, nil, nil)
	if err != nil {
		t.Fatalf("GenerateCleanup failed: %v", err)
	}
	if len(batch.Journals) != 0 {
		t.Errorf("expected empty batch, got %d journals", len(batch.Journals))
	}
	if err := bt.ApplyBatch(batch); err != nil {
		t.Errorf("empty batch should apply cleanly: %v", err)
	}
}

func TestGenerator_FeeWithdrawal_DrainsSink(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(bt)
	admin := uuid.New()
	assetID := usdc(t)

	// Seed fee sink
	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewFeeSinkKey(2, assetID),
		CreditAccount: ledger.NewExternalDepositsKey(assetID),
		AssetID:       assetID,
		Amount:        42,
	})

	batch, err := jg.GenerateFeeWithdrawal("op-6", 6, 600, 2, admin, assetID, 42)
	if err != nil {
		t.Fatalf("GenerateFeeWithdrawal failed: %v", err)
	}
	if err := bt.ApplyBatch(batch); err != nil {
		t.Fatalf("ApplyBatch failed: %v", err)
	}

	if got := bt.WalletBalance(admin, assetID); got != 42 {
		t.Errorf("admin wallet: got %d, want 42", got)
	}
	if got := bt.FeeSinkBalance(2, assetID); got != 0 {
		t.Errorf("fee sink: got %d, want 0", got)
	}
}

func TestGenerator_FeeWithdrawal_PartialAmount(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(bt)
	admin := uuid.New()
	assetID := usdc(t)

	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewFeeSinkKey(2, assetID),
		CreditAccount: ledger.NewExternalDepositsKey(assetID),
		AssetID:       assetID,
		Amount:        42,
	})

	batch, err := jg.GenerateFeeWithdrawal("op-6b", 6, 600, 2, admin, assetID, 30)
	if err != nil {
		t.Fatalf("GenerateFeeWithdrawal failed: %v", err)
	}
	if err := bt.ApplyBatch(batch); err != nil {
		t.Fatalf("ApplyBatch failed: %v", err)
	}

	if got := bt.WalletBalance(admin, assetID); got != 30 {
		t.Errorf("admin wallet: got %d, want 30", got)
	}
	if got := bt.FeeSinkBalance(2, assetID); got != 12 {
		t.Errorf("fee sink: got %d, want 12", got)
	}

	// Asking for more than the sink holds is an error
	if _, err := jg.GenerateFeeWithdrawal("op-6c", 7, 601, 2, admin, assetID, 13); err == nil {
		t.Error("expected error for withdrawal above the sink balance")
	}
}

func TestGenerator_FeeWithdrawal_ZeroAmount(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(bt)

	batch, err := jg.GenerateFeeWithdrawal("op-7", 7, 600, 2, uuid.New(), usdc(t), 0)
	if err != nil {
		t.Fatalf("GenerateFeeWithdrawal failed: %v", err)
	}
	if len(batch.Journals) != 0 {
		t.Errorf("expected empty batch for zero amount, got %d journals", len(batch.Journals))
	}
}

// ============================================================================
// Test: InvariantValidator
// ============================================================================

func TestInvariantValidator_GlobalBalanceZero(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	v := ledger.NewInvariantValidator(bt)

	if err := v.ValidateGlobalBalance(); err != nil {
		t.Errorf("empty ledger should have zero global balance: %v", err)
	}

	deposit(bt, uuid.New(), usdc(t), 1_000_000)

	if err := v.ValidateGlobalBalance(); err != nil {
		t.Errorf("balanced ledger should have zero global balance: %v", err)
	}
}

func TestInvariantValidator_EscrowCoverage(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	v := ledger.NewInvariantValidator(bt)
	assetID := usdc(t)

	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewEscrowKey(ledger.SubTypeEscrowPrincipal, assetID),
		CreditAccount: ledger.NewExternalDepositsKey(assetID),
		AssetID:       assetID,
		Amount:        700,
	})

	if err := v.ValidateEscrowCoverage(assetID, 700, 0); err != nil {
		t.Errorf("coverage should hold: %v", err)
	}
	if err := v.ValidateEscrowCoverage(assetID, 800, 0); err == nil {
		t.Error("expected coverage mismatch for overstated resting principal")
	}
}
