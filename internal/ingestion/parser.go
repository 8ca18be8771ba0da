package ingestion

import (
	"LendAuction/internal/event"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ParseRawOperation converts a RawOperation (JSON bytes + operation type
// string) into a typed event.Operation. The ingestion shell validates and
// parses before anything reaches the deterministic engine; business-rule
// checks (rate bounds, collateral floor, balances) stay in the engine.
func ParseRawOperation(raw RawOperation, opType string) (event.Operation, error) {
	switch opType {
	case "Initialize":
		return parseInitialize(raw.Data)
	case "Deposit":
		return parseDeposit(raw.Data)
	case "SubmitBid":
		return parseSubmitBid(raw.Data)
	case "SubmitAsk":
		return parseSubmitAsk(raw.Data)
	case "Repay":
		return parseRepay(raw.Data)
	case "Cleanup":
		return parseCleanup(raw.Data)
	case "WithdrawFees":
		return parseWithdrawFees(raw.Data)
	default:
		return nil, fmt.Errorf("unknown operation type: %s", opType)
	}
}

// --- JSON wire formats ---
// These structs represent the JSON payloads received from NATS.
// Field names use snake_case to match upstream producers.

type initializeJSON struct {
	OpID            string   `json:"op_id"`
	Admin           string   `json:"admin"`
	ShardCount      uint64   `json:"shard_count"`
	SupportedAssets []string `json:"supported_assets"`
	CurrentSlot     uint64   `json:"current_slot"`
	SourceSequence  int64    `json:"source_sequence"`
}

func parseInitialize(data []byte) (*event.Initialize, error) {
	var j initializeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Initialize: %w", err)
	}
	opID, err := uuid.Parse(j.OpID)
	if err != nil {
		return nil, fmt.Errorf("parse op_id: %w", err)
	}
	admin, err := uuid.Parse(j.Admin)
	if err != nil {
		return nil, fmt.Errorf("parse admin: %w", err)
	}
	return &event.Initialize{
		OpID:            opID,
		Admin:           admin,
		ShardCount:      j.ShardCount,
		SupportedAssets: j.SupportedAssets,
		CurrentSlot:     j.CurrentSlot,
		Sequence:        j.SourceSequence,
	}, nil
}

type depositJSON struct {
	OpID           string `json:"op_id"`
	User           string `json:"user"`
	Asset          string `json:"asset"`
	Amount         uint64 `json:"amount"`
	CurrentSlot    uint64 `json:"current_slot"`
	SourceSequence int64  `json:"source_sequence"`
}

func parseDeposit(data []byte) (*event.Deposit, error) {
	var j depositJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Deposit: %w", err)
	}
	opID, err := uuid.Parse(j.OpID)
	if err != nil {
		return nil, fmt.Errorf("parse op_id: %w", err)
	}
	user, err := uuid.Parse(j.User)
	if err != nil {
		return nil, fmt.Errorf("parse user: %w", err)
	}
	return &event.Deposit{
		OpID:        opID,
		User:        user,
		Asset:       j.Asset,
		Amount:      j.Amount,
		CurrentSlot: j.CurrentSlot,
		Sequence:    j.SourceSequence,
	}, nil
}

type submitBidJSON struct {
	OpID           string `json:"op_id"`
	Lender         string `json:"lender"`
	Asset          string `json:"asset"`
	Amount         uint64 `json:"amount"`
	MinRate        uint8  `json:"min_rate"`
	DurationSlots  uint64 `json:"duration_slots"`
	CurrentSlot    uint64 `json:"current_slot"`
	SourceSequence int64  `json:"source_sequence"`
}

func parseSubmitBid(data []byte) (*event.SubmitBid, error) {
	var j submitBidJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse SubmitBid: %w", err)
	}
	opID, err := uuid.Parse(j.OpID)
	if err != nil {
		return nil, fmt.Errorf("parse op_id: %w", err)
	}
	lender, err := uuid.Parse(j.Lender)
	if err != nil {
		return nil, fmt.Errorf("parse lender: %w", err)
	}
	return &event.SubmitBid{
		OpID:          opID,
		Lender:        lender,
		Asset:         j.Asset,
		Amount:        j.Amount,
		MinRate:       j.MinRate,
		DurationSlots: j.DurationSlots,
		CurrentSlot:   j.CurrentSlot,
		Sequence:      j.SourceSequence,
	}, nil
}

type submitAskJSON struct {
	OpID             string `json:"op_id"`
	Borrower         string `json:"borrower"`
	Asset            string `json:"asset"`
	CollateralAsset  string `json:"collateral_asset"`
	Amount           uint64 `json:"amount"`
	MaxRate          uint8  `json:"max_rate"`
	CollateralAmount uint64 `json:"collateral_amount"`
	CurrentSlot      uint64 `json:"current_slot"`
	SourceSequence   int64  `json:"source_sequence"`
}

func parseSubmitAsk(data []byte) (*event.SubmitAsk, error) {
	var j submitAskJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse SubmitAsk: %w", err)
	}
	opID, err := uuid.Parse(j.OpID)
	if err != nil {
		return nil, fmt.Errorf("parse op_id: %w", err)
	}
	borrower, err := uuid.Parse(j.Borrower)
	if err != nil {
		return nil, fmt.Errorf("parse borrower: %w", err)
	}
	return &event.SubmitAsk{
		OpID:             opID,
		Borrower:         borrower,
		Asset:            j.Asset,
		CollateralAsset:  j.CollateralAsset,
		Amount:           j.Amount,
		MaxRate:          j.MaxRate,
		CollateralAmount: j.CollateralAmount,
		CurrentSlot:      j.CurrentSlot,
		Sequence:         j.SourceSequence,
	}, nil
}

type repayJSON struct {
	OpID           string `json:"op_id"`
	Borrower       string `json:"borrower"`
	Asset          string `json:"asset"`
	Rate           uint8  `json:"rate"`
	LoanIndex      uint64 `json:"loan_index"`
	CurrentSlot    uint64 `json:"current_slot"`
	SourceSequence int64  `json:"source_sequence"`
}

func parseRepay(data []byte) (*event.Repay, error) {
	var j repayJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Repay: %w", err)
	}
	opID, err := uuid.Parse(j.OpID)
	if err != nil {
		return nil, fmt.Errorf("parse op_id: %w", err)
	}
	borrower, err := uuid.Parse(j.Borrower)
	if err != nil {
		return nil, fmt.Errorf("parse borrower: %w", err)
	}
	return &event.Repay{
		OpID:        opID,
		Borrower:    borrower,
		Asset:       j.Asset,
		Rate:        j.Rate,
		LoanIndex:   j.LoanIndex,
		CurrentSlot: j.CurrentSlot,
		Sequence:    j.SourceSequence,
	}, nil
}

type cleanupJSON struct {
	OpID           string `json:"op_id"`
	Caller         string `json:"caller"`
	ShardID        uint64 `json:"shard_id"`
	CurrentSlot    uint64 `json:"current_slot"`
	SourceSequence int64  `json:"source_sequence"`
}

func parseCleanup(data []byte) (*event.Cleanup, error) {
	var j cleanupJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse Cleanup: %w", err)
	}
	opID, err := uuid.Parse(j.OpID)
	if err != nil {
		return nil, fmt.Errorf("parse op_id: %w", err)
	}
	caller, err := uuid.Parse(j.Caller)
	if err != nil {
		return nil, fmt.Errorf("parse caller: %w", err)
	}
	return &event.Cleanup{
		OpID:        opID,
		Caller:      caller,
		ShardID:     j.ShardID,
		CurrentSlot: j.CurrentSlot,
		Sequence:    j.SourceSequence,
	}, nil
}

type withdrawFeesJSON struct {
	OpID           string `json:"op_id"`
	Caller         string `json:"caller"`
	ShardID        uint64 `json:"shard_id"`
	Asset          string `json:"asset"`
	Amount         uint64 `json:"amount"`
	CurrentSlot    uint64 `json:"current_slot"`
	SourceSequence int64  `json:"source_sequence"`
}

func parseWithdrawFees(data []byte) (*event.WithdrawFees, error) {
	var j withdrawFeesJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse WithdrawFees: %w", err)
	}
	opID, err := uuid.Parse(j.OpID)
	if err != nil {
		return nil, fmt.Errorf("parse op_id: %w", err)
	}
	caller, err := uuid.Parse(j.Caller)
	if err != nil {
		return nil, fmt.Errorf("parse caller: %w", err)
	}
	return &event.WithdrawFees{
		OpID:        opID,
		Caller:      caller,
		ShardID:     j.ShardID,
		Asset:       j.Asset,
		Amount:      j.Amount,
		CurrentSlot: j.CurrentSlot,
		Sequence:    j.SourceSequence,
	}, nil
}
