package scheduler

import (
	"context"
	"fmt"

	"LendAuction/internal/event"
	"LendAuction/internal/observability"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CleanupScheduler periodically submits stale-order cleanup operations
// for every shard. Cleanups sequence on their own per-shard partition,
// so the scheduler owns the sequence counters: seed them from the
// engine's validator cursors before the engine loop starts.
type CleanupScheduler struct {
	cron       *cron.Cron
	opChan     chan<- event.Operation
	caller     uuid.UUID
	shardCount uint64
	nextSeq    map[uint64]int64
	slotFn     func() uint64
	schedule   string
	logger     zerolog.Logger
}

func NewCleanupScheduler(
	schedule string,
	opChan chan<- event.Operation,
	caller uuid.UUID,
	shardCount uint64,
	seedSeq map[uint64]int64,
	slotFn func() uint64,
) *CleanupScheduler {
	nextSeq := make(map[uint64]int64, shardCount)
	for shardID := uint64(0); shardID < shardCount; shardID++ {
		nextSeq[shardID] = seedSeq[shardID]
	}

	return &CleanupScheduler{
		cron:       cron.New(),
		opChan:     opChan,
		caller:     caller,
		shardCount: shardCount,
		nextSeq:    nextSeq,
		slotFn:     slotFn,
		schedule:   schedule,
		logger:     observability.NewLogger("scheduler"),
	}
}

// Start registers the cleanup job and runs the cron loop until ctx is
// cancelled.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runCleanup(ctx)
	})
	if err != nil {
		return fmt.Errorf("add cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Uint64("shards", s.shardCount).Msg("cleanup scheduler started")

	go func() {
		<-ctx.Done()
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.logger.Info().Msg("cleanup scheduler stopped")
	}()

	return nil
}

// runCleanup submits one cleanup per shard. Sequence counters only
// advance on a successful send; cron never runs the job concurrently
// with itself, so no locking is needed.
func (s *CleanupScheduler) runCleanup(ctx context.Context) {
	currentSlot := s.slotFn()
	if currentSlot == 0 {
		// Nothing applied yet, nothing to evict.
		return
	}

	for shardID := uint64(0); shardID < s.shardCount; shardID++ {
		op := &event.Cleanup{
			OpID:        uuid.New(),
			Caller:      s.caller,
			ShardID:     shardID,
			CurrentSlot: currentSlot,
			Sequence:    s.nextSeq[shardID],
		}

		select {
		case s.opChan <- op:
			s.nextSeq[shardID]++
		case <-ctx.Done():
			return
		}
	}
}
