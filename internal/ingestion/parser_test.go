package ingestion_test

import (
	"LendAuction/internal/event"
	"LendAuction/internal/ingestion"
	"encoding/json"
	"testing"
	"time"
)

func rawFromJSON(t *testing.T, v interface{}) ingestion.RawOperation {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return ingestion.RawOperation{
		Subject:   "test",
		Data:      data,
		Timestamp: time.Now(),
		AckFunc:   func() {},
		NakFunc:   func() {},
	}
}

func TestParseInitialize(t *testing.T) {
	payload := map[string]interface{}{
		"op_id":            "550e8400-e29b-41d4-a716-446655440000",
		"admin":            "660e8400-e29b-41d4-a716-446655440001",
		"shard_count":      uint64(4),
		"supported_assets": []string{"USDC", "SOL"},
		"current_slot":     uint64(100),
		"source_sequence":  int64(0),
	}

	raw := rawFromJSON(t, payload)
	op, err := ingestion.ParseRawOperation(raw, "Initialize")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	init, ok := op.(*event.Initialize)
	if !ok {
		t.Fatalf("expected *event.Initialize, got %T", op)
	}

	if init.ShardCount != 4 {
		t.Errorf("shard_count: got %d, want 4", init.ShardCount)
	}
	if len(init.SupportedAssets) != 2 || init.SupportedAssets[0] != "USDC" {
		t.Errorf("supported_assets: got %v, want [USDC SOL]", init.SupportedAssets)
	}
	if init.OpType() != event.OpTypeInitialize {
		t.Errorf("op type: got %v, want Initialize", init.OpType())
	}
}

func TestParseSubmitBid(t *testing.T) {
	payload := map[string]interface{}{
		"op_id":           "550e8400-e29b-41d4-a716-446655440000",
		"lender":          "660e8400-e29b-41d4-a716-446655440001",
		"asset":           "USDC",
		"amount":          uint64(1_000_000),
		"min_rate":        uint8(5),
		"duration_slots":  uint64(1000),
		"current_slot":    uint64(42),
		"source_sequence": int64(7),
	}

	raw := rawFromJSON(t, payload)
	op, err := ingestion.ParseRawOperation(raw, "SubmitBid")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	bid, ok := op.(*event.SubmitBid)
	if !ok {
		t.Fatalf("expected *event.SubmitBid, got %T", op)
	}

	if bid.Asset != "USDC" {
		t.Errorf("asset: got %s, want USDC", bid.Asset)
	}
	if bid.Amount != 1_000_000 {
		t.Errorf("amount: got %d, want 1_000_000", bid.Amount)
	}
	if bid.MinRate != 5 {
		t.Errorf("min_rate: got %d, want 5", bid.MinRate)
	}
	if bid.DurationSlots != 1000 {
		t.Errorf("duration_slots: got %d, want 1000", bid.DurationSlots)
	}
	if bid.SourceSequence() != 7 {
		t.Errorf("source_sequence: got %d, want 7", bid.SourceSequence())
	}
	if bid.Slot() != 42 {
		t.Errorf("slot: got %d, want 42", bid.Slot())
	}
}

func TestParseSubmitAsk(t *testing.T) {
	payload := map[string]interface{}{
		"op_id":             "550e8400-e29b-41d4-a716-446655440000",
		"borrower":          "660e8400-e29b-41d4-a716-446655440001",
		"asset":             "USDC",
		"collateral_asset":  "SOL",
		"amount":            uint64(10_000),
		"max_rate":          uint8(8),
		"collateral_amount": uint64(15_000),
		"current_slot":      uint64(50),
		"source_sequence":   int64(3),
	}

	raw := rawFromJSON(t, payload)
	op, err := ingestion.ParseRawOperation(raw, "SubmitAsk")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	ask, ok := op.(*event.SubmitAsk)
	if !ok {
		t.Fatalf("expected *event.SubmitAsk, got %T", op)
	}

	if ask.CollateralAsset != "SOL" {
		t.Errorf("collateral_asset: got %s, want SOL", ask.CollateralAsset)
	}
	if ask.CollateralAmount != 15_000 {
		t.Errorf("collateral_amount: got %d, want 15_000", ask.CollateralAmount)
	}
	if ask.MaxRate != 8 {
		t.Errorf("max_rate: got %d, want 8", ask.MaxRate)
	}
}

func TestParseRepay(t *testing.T) {
	payload := map[string]interface{}{
		"op_id":           "550e8400-e29b-41d4-a716-446655440000",
		"borrower":        "660e8400-e29b-41d4-a716-446655440001",
		"asset":           "USDC",
		"rate":            uint8(5),
		"loan_index":      uint64(2),
		"current_slot":    uint64(900),
		"source_sequence": int64(9),
	}

	raw := rawFromJSON(t, payload)
	op, err := ingestion.ParseRawOperation(raw, "Repay")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	rp, ok := op.(*event.Repay)
	if !ok {
		t.Fatalf("expected *event.Repay, got %T", op)
	}

	if rp.Rate != 5 {
		t.Errorf("rate: got %d, want 5", rp.Rate)
	}
	if rp.LoanIndex != 2 {
		t.Errorf("loan_index: got %d, want 2", rp.LoanIndex)
	}
}

func TestParseCleanup(t *testing.T) {
	payload := map[string]interface{}{
		"op_id":           "550e8400-e29b-41d4-a716-446655440000",
		"caller":          "660e8400-e29b-41d4-a716-446655440001",
		"shard_id":        uint64(3),
		"current_slot":    uint64(5000),
		"source_sequence": int64(11),
	}

	raw := rawFromJSON(t, payload)
	op, err := ingestion.ParseRawOperation(raw, "Cleanup")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	cl, ok := op.(*event.Cleanup)
	if !ok {
		t.Fatalf("expected *event.Cleanup, got %T", op)
	}

	if cl.ShardID != 3 {
		t.Errorf("shard_id: got %d, want 3", cl.ShardID)
	}
	if cl.Slot() != 5000 {
		t.Errorf("slot: got %d, want 5000", cl.Slot())
	}
}

func TestParseWithdrawFees(t *testing.T) {
	payload := map[string]interface{}{
		"op_id":           "550e8400-e29b-41d4-a716-446655440000",
		"caller":          "660e8400-e29b-41d4-a716-446655440001",
		"shard_id":        uint64(1),
		"asset":           "USDC",
		"amount":          uint64(250),
		"current_slot":    uint64(6000),
		"source_sequence": int64(4),
	}

	raw := rawFromJSON(t, payload)
	op, err := ingestion.ParseRawOperation(raw, "WithdrawFees")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	wf, ok := op.(*event.WithdrawFees)
	if !ok {
		t.Fatalf("expected *event.WithdrawFees, got %T", op)
	}

	if wf.Asset != "USDC" {
		t.Errorf("asset: got %s, want USDC", wf.Asset)
	}
	if wf.Amount != 250 {
		t.Errorf("amount: got %d, want 250", wf.Amount)
	}
	if wf.OpType() != event.OpTypeWithdrawFees {
		t.Errorf("op type: got %v, want WithdrawFees", wf.OpType())
	}
}

func TestParseUnknownOpType_Fails(t *testing.T) {
	raw := ingestion.RawOperation{Data: []byte(`{}`)}
	_, err := ingestion.ParseRawOperation(raw, "NonExistentType")
	if err == nil {
		t.Fatal("expected error for unknown operation type")
	}
}

func TestParseInvalidJSON_Fails(t *testing.T) {
	raw := ingestion.RawOperation{Data: []byte(`{invalid json`)}
	_, err := ingestion.ParseRawOperation(raw, "SubmitBid")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseInvalidUUID_Fails(t *testing.T) {
	payload := map[string]interface{}{
		"op_id":           "not-a-uuid",
		"lender":          "also-not-a-uuid",
		"asset":           "USDC",
		"amount":          uint64(1),
		"min_rate":        uint8(1),
		"duration_slots":  uint64(1),
		"current_slot":    uint64(0),
		"source_sequence": int64(0),
	}

	raw := rawFromJSON(t, payload)
	_, err := ingestion.ParseRawOperation(raw, "SubmitBid")
	if err == nil {
		t.Fatal("expected error for invalid UUID")
	}
}
