package ingestion

import (
	"LendAuction/internal/event"
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GRPCIngestService provides admin/manual operation injection via gRPC.
// It is for admin operations and backfills, not for high-throughput
// ingestion (use NATS for that). Callers supply the source sequence so
// injected operations slot into the partition ordering.
type GRPCIngestService struct {
	opChan chan<- event.Operation
}

func NewGRPCIngestService(opChan chan<- event.Operation) *GRPCIngestService {
	return &GRPCIngestService{opChan: opChan}
}

// InjectDeposit manually injects a Deposit operation.
func (s *GRPCIngestService) InjectDeposit(
	ctx context.Context,
	user uuid.UUID,
	asset string,
	amount uint64,
	currentSlot uint64,
	sourceSequence int64,
) error {
	if amount == 0 {
		return fmt.Errorf("amount must be positive")
	}

	op := &event.Deposit{
		OpID:        uuid.New(),
		User:        user,
		Asset:       asset,
		Amount:      amount,
		CurrentSlot: currentSlot,
		Sequence:    sourceSequence,
	}

	select {
	case s.opChan <- op:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InjectCleanup manually injects a Cleanup operation for one shard.
func (s *GRPCIngestService) InjectCleanup(
	ctx context.Context,
	caller uuid.UUID,
	shardID uint64,
	currentSlot uint64,
	sourceSequence int64,
) error {
	op := &event.Cleanup{
		OpID:        uuid.New(),
		Caller:      caller,
		ShardID:     shardID,
		CurrentSlot: currentSlot,
		Sequence:    sourceSequence,
	}

	select {
	case s.opChan <- op:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InjectWithdrawFees manually injects a WithdrawFees operation. An amount
// of zero drains the shard's fee sink.
func (s *GRPCIngestService) InjectWithdrawFees(
	ctx context.Context,
	caller uuid.UUID,
	shardID uint64,
	asset string,
	amount uint64,
	currentSlot uint64,
	sourceSequence int64,
) error {
	op := &event.WithdrawFees{
		OpID:        uuid.New(),
		Caller:      caller,
		ShardID:     shardID,
		Asset:       asset,
		Amount:      amount,
		CurrentSlot: currentSlot,
		Sequence:    sourceSequence,
	}

	select {
	case s.opChan <- op:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
