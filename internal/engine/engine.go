package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"LendAuction/internal/book"
	"LendAuction/internal/event"
	"LendAuction/internal/ledger"
	lmath "LendAuction/internal/math"
	"LendAuction/internal/loan"
	"LendAuction/internal/observability"
	"LendAuction/internal/registry"
	"LendAuction/internal/shard"

	"github.com/google/uuid"
)

// Engine is the single-threaded deterministic operation processor. All
// matching, loan issuance and escrow movement happens here; everything
// around it (ingestion, persistence, projections) is plumbing.
type Engine struct {
	sequence       int64
	hasher         *StateHasher
	balanceTracker *ledger.BalanceTracker
	journalGen     *ledger.JournalGenerator
	validator      *ledger.InvariantValidator
	registryMgr    *registry.Manager
	pools          map[uint64]*book.ShardPool
	loans          map[uint64]*loan.LoanPool
	idempotency    *IdempotencyChecker
	seqValidator   *SequenceValidator
	metrics        *observability.Metrics
	lastSlot       atomic.Uint64

	persistChan    chan<- Output
	projectionChan chan<- Output
}

// Output is what one applied operation produces: the envelope for the
// event log, the journal batch, and the lifecycle events for projections
// and outbound publishing.
type Output struct {
	Envelope *event.Envelope
	Batch    *ledger.Batch
	Events   []event.Lifecycle
}

// dispatchResult is the internal product of one operation handler.
type dispatchResult struct {
	batch   *ledger.Batch
	events  []event.Lifecycle
	shardID *uint64
}

// Submission bounds. Ledger amounts are signed 64-bit and a repayment can
// owe up to twice the principal, so token quantities stop at MaxInt64/2.
// Duration is bounded so the interest products durationSlots*100 and
// elapsedSlots*rate stay inside uint64.
const (
	MaxAmount        = uint64(math.MaxInt64 / 2)
	MaxDurationSlots = math.MaxUint64 / 100
)

func NewEngine(
	startSequence int64,
	persistChan, projectionChan chan<- Output,
	dbChecker DBIdempotencyChecker,
	metrics *observability.Metrics,
) *Engine {
	balanceTracker := ledger.NewBalanceTracker()

	return &Engine{
		sequence:       startSequence,
		hasher:         NewStateHasher(),
		balanceTracker: balanceTracker,
		journalGen:     ledger.NewJournalGenerator(balanceTracker),
		validator:      ledger.NewInvariantValidator(balanceTracker),
		registryMgr:    registry.NewManager(),
		pools:          make(map[uint64]*book.ShardPool),
		loans:          make(map[uint64]*loan.LoanPool),
		idempotency:    NewIdempotencyChecker(1_000_000, dbChecker),
		seqValidator:   NewSequenceValidator(),
		metrics:        metrics,
		persistChan:    persistChan,
		projectionChan: projectionChan,
	}
}

// Apply is the main processing pipeline
func (e *Engine) Apply(op event.Operation) error {
	start := time.Now()
	opType := op.OpType().String()
	idempotencyKey := op.IdempotencyKey()

	// Step 1: Idempotency check (two-tier)
	isDuplicate := e.idempotency.IsDuplicate(opType, idempotencyKey)

	// Step 2: Per-partition sequence validation
	partition := e.partition(op)
	if err := e.seqValidator.ValidateSequence(partition, op.SourceSequence(), isDuplicate); err != nil {
		if e.metrics != nil {
			e.metrics.SequenceGaps.WithLabelValues(partition).Inc()
		}
		return fmt.Errorf("sequence validation failed: %w", err)
	}

	if isDuplicate {
		if e.metrics != nil {
			e.metrics.IdempotencyDuplicates.WithLabelValues(opType).Inc()
			e.metrics.OpsRejected.WithLabelValues(opType, "duplicate").Inc()
		}
		return nil
	}

	// Step 3: Dispatch. Handlers validate everything before mutating, so a
	// rejection here leaves registry, pools and loans untouched.
	res, err := e.dispatch(op)
	if err != nil {
		if e.metrics != nil {
			e.metrics.OpsRejected.WithLabelValues(opType, RejectReason(err)).Inc()
		}
		return err
	}

	// Step 4: Validate and apply the journal batch. An unbalanced batch at
	// this point is a bug, not an input problem.
	if len(res.batch.Journals) > 0 {
		if err := e.validator.ValidateBatchBalance(res.batch); err != nil {
			panic(fmt.Sprintf("FATAL: unbalanced batch: %v", err))
		}
		if err := e.balanceTracker.ApplyBatch(res.batch); err != nil {
			return fmt.Errorf("apply batch failed: %w", err)
		}
		if e.metrics != nil {
			for _, j := range res.batch.Journals {
				e.metrics.Journals.WithLabelValues(journalTypeName(j.JournalType)).Inc()
			}
		}
	}

	// Step 5: State hash chain
	stateDigest := e.computeStateDigest(res.batch)
	prevHash := e.hasher.GetPrevHash()
	stateHash := e.hasher.ComputeHash(e.sequence, stateDigest)

	payload, err := json.Marshal(op)
	if err != nil {
		panic(fmt.Sprintf("FATAL: cannot marshal applied operation: %v", err))
	}

	envelope := &event.Envelope{
		Sequence:       e.sequence,
		IdempotencyKey: idempotencyKey,
		OpType:         op.OpType(),
		ShardID:        res.shardID,
		Slot:           op.Slot(),
		SourceSequence: op.SourceSequence(),
		Payload:        payload,
		StateHash:      stateHash,
		PrevHash:       prevHash,
	}

	// Step 6: Post-checks
	if err := e.postCheckInvariants(); err != nil {
		panic(fmt.Sprintf("FATAL: invariant violated: %v", err))
	}

	// Step 7: Emit. Persist channel uses a blocking send (backpressure);
	// projection channel is non-blocking with drop, projections rebuild
	// from the event log if they fall behind.
	output := Output{
		Envelope: envelope,
		Batch:    res.batch,
		Events:   res.events,
	}

	e.persistChan <- output

	select {
	case e.projectionChan <- output:
	default:
		if e.metrics != nil {
			e.metrics.ProjectionDrops.Inc()
		}
	}

	e.sequence++
	e.lastSlot.Store(op.Slot())

	// Step 8: Mark as processed
	e.idempotency.MarkProcessed(opType, idempotencyKey)

	if e.metrics != nil {
		e.metrics.OpsApplied.WithLabelValues(opType).Inc()
		e.metrics.OpDuration.WithLabelValues(opType).Observe(time.Since(start).Seconds())
		e.metrics.EngineSequence.Set(float64(e.sequence))
	}

	return nil
}

// partition determines the partition key for sequence validation. Shard
// operations order within their shard; admin operations order globally.
// Before initialization every operation falls back to the global partition
// (it will be rejected at dispatch anyway).
func (e *Engine) partition(op event.Operation) string {
	reg := e.registryMgr.Get()
	if reg == nil {
		return "global"
	}

	switch o := op.(type) {
	case *event.SubmitBid:
		return fmt.Sprintf("shard:%d", shard.Route(o.Asset, o.MinRate, reg.ShardCount))
	case *event.SubmitAsk:
		return fmt.Sprintf("shard:%d", shard.Route(o.Asset, o.MaxRate, reg.ShardCount))
	case *event.Repay:
		return fmt.Sprintf("shard:%d", shard.Route(o.Asset, o.Rate, reg.ShardCount))
	case *event.Cleanup:
		// Cleanups are scheduled internally, so they sequence on their own
		// partition instead of the shard's external order flow.
		return fmt.Sprintf("cleanup:%d", o.ShardID)
	default:
		return "global"
	}
}

func (e *Engine) dispatch(op event.Operation) (*dispatchResult, error) {
	switch o := op.(type) {
	case *event.Initialize:
		return e.handleInitialize(o)
	case *event.Deposit:
		return e.handleDeposit(o)
	case *event.SubmitBid:
		return e.handleSubmitBid(o)
	case *event.SubmitAsk:
		return e.handleSubmitAsk(o)
	case *event.Repay:
		return e.handleRepay(o)
	case *event.Cleanup:
		return e.handleCleanup(o)
	case *event.WithdrawFees:
		return e.handleWithdrawFees(o)
	default:
		return nil, fmt.Errorf("unknown operation type: %T", op)
	}
}

func (e *Engine) emptyBatch(op event.Operation) *ledger.Batch {
	return &ledger.Batch{
		BatchID:  uuid.New(),
		OpRef:    op.IdempotencyKey(),
		Sequence: e.sequence,
		Slot:     op.Slot(),
		Journals: []ledger.Journal{},
	}
}

func (e *Engine) handleInitialize(op *event.Initialize) (*dispatchResult, error) {
	if e.registryMgr.Get() != nil {
		return nil, ErrAlreadyInitialized
	}

	reg, err := e.registryMgr.Init(op.Admin, op.ShardCount, op.SupportedAssets)
	if err != nil {
		return nil, err
	}

	ledger.RegisterAssets(reg.SupportedAssets)
	for id := uint64(0); id < reg.ShardCount; id++ {
		e.pools[id] = book.NewShardPool(id)
		e.loans[id] = loan.NewLoanPool(id)
	}

	return &dispatchResult{
		batch: e.emptyBatch(op),
		events: []event.Lifecycle{&event.AuctionInitialized{
			Admin:           reg.Admin,
			ShardCount:      reg.ShardCount,
			SupportedAssets: reg.SupportedAssets,
		}},
	}, nil
}

func (e *Engine) handleDeposit(op *event.Deposit) (*dispatchResult, error) {
	reg := e.registryMgr.Get()
	if reg == nil {
		return nil, ErrNotInitialized
	}
	if op.Amount == 0 || op.Amount > MaxAmount {
		return nil, ErrInvalidAmount
	}
	if !reg.IsSupported(op.Asset) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, op.Asset)
	}

	assetID, _ := ledger.GetAssetID(op.Asset)
	batch, err := e.journalGen.GenerateDeposit(
		op.IdempotencyKey(), e.sequence, op.CurrentSlot, op.User, assetID, op.Amount)
	if err != nil {
		return nil, err
	}

	return &dispatchResult{
		batch: batch,
		events: []event.Lifecycle{&event.Deposited{
			User:   op.User,
			Asset:  op.Asset,
			Amount: op.Amount,
		}},
	}, nil
}

func (e *Engine) handleSubmitBid(op *event.SubmitBid) (*dispatchResult, error) {
	reg := e.registryMgr.Get()
	if reg == nil {
		return nil, ErrNotInitialized
	}
	if op.Amount == 0 || op.Amount > MaxAmount {
		return nil, ErrInvalidAmount
	}
	if op.MinRate == 0 || op.MinRate > 100 {
		return nil, ErrInvalidRate
	}
	if op.DurationSlots == 0 || op.DurationSlots > MaxDurationSlots {
		return nil, ErrInvalidDuration
	}
	if !reg.IsSupported(op.Asset) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, op.Asset)
	}

	shardID := shard.Route(op.Asset, op.MinRate, reg.ShardCount)
	pool := e.pools[shardID]
	if len(pool.Bids) >= book.MaxOrdersPerSide {
		return nil, ErrPoolFull
	}

	assetID, _ := ledger.GetAssetID(op.Asset)
	if err := e.balanceTracker.ValidateSufficientWallet(op.Lender, assetID, int64(op.Amount)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
	}

	bid := book.Bid{
		Lender:          op.Lender,
		Amount:          op.Amount,
		MinRate:         op.MinRate,
		SubmittedAtSlot: op.CurrentSlot,
		Asset:           op.Asset,
		DurationSlots:   op.DurationSlots,
	}

	fills, remaining := pool.MatchBid(bid)

	batch, err := e.journalGen.GenerateBidSubmission(
		op.IdempotencyKey(), e.sequence, op.CurrentSlot, op.Lender, assetID, op.Amount, fills)
	if err != nil {
		return nil, err
	}

	events := []event.Lifecycle{&event.BidSubmitted{
		Lender:          op.Lender,
		Amount:          op.Amount,
		MinRate:         op.MinRate,
		ShardID:         shardID,
		Asset:           op.Asset,
		DurationSlots:   op.DurationSlots,
		SubmittedAtSlot: op.CurrentSlot,
	}}
	events = append(events, e.issueLoans(shardID, op.CurrentSlot, fills)...)

	if remaining > 0 {
		bid.Amount = remaining
		pool.InsertBid(bid)
	}

	return &dispatchResult{batch: batch, events: events, shardID: &shardID}, nil
}

func (e *Engine) handleSubmitAsk(op *event.SubmitAsk) (*dispatchResult, error) {
	reg := e.registryMgr.Get()
	if reg == nil {
		return nil, ErrNotInitialized
	}
	if op.Amount == 0 || op.Amount > MaxAmount {
		return nil, ErrInvalidAmount
	}
	if op.CollateralAmount > MaxAmount {
		return nil, ErrInvalidAmount
	}
	if op.MaxRate == 0 || op.MaxRate > 100 {
		return nil, ErrInvalidRate
	}
	if !reg.IsSupported(op.Asset) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, op.Asset)
	}
	if !reg.IsSupported(op.CollateralAsset) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, op.CollateralAsset)
	}

	// Collateral floor: 150% of principal, integer floor division
	if op.CollateralAmount < lmath.MulDiv(op.Amount, 15, 10) {
		return nil, ErrInsufficientCollateral
	}

	shardID := shard.Route(op.Asset, op.MaxRate, reg.ShardCount)
	pool := e.pools[shardID]
	if len(pool.Asks) >= book.MaxOrdersPerSide {
		return nil, ErrPoolFull
	}

	assetID, _ := ledger.GetAssetID(op.Asset)
	collateralAssetID, _ := ledger.GetAssetID(op.CollateralAsset)
	if err := e.balanceTracker.ValidateSufficientWallet(op.Borrower, collateralAssetID, int64(op.CollateralAmount)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
	}

	ask := book.Ask{
		Borrower:        op.Borrower,
		Amount:          op.Amount,
		MaxRate:         op.MaxRate,
		Collateral:      op.CollateralAmount,
		SubmittedAtSlot: op.CurrentSlot,
		Asset:           op.Asset,
		CollateralAsset: op.CollateralAsset,
	}

	fills, remaining, remainingCollateral := pool.MatchAsk(ask)

	batch, err := e.journalGen.GenerateAskSubmission(
		op.IdempotencyKey(), e.sequence, op.CurrentSlot,
		op.Borrower, assetID, collateralAssetID, op.CollateralAmount, fills)
	if err != nil {
		return nil, err
	}

	events := []event.Lifecycle{&event.AskSubmitted{
		Borrower:         op.Borrower,
		Amount:           op.Amount,
		MaxRate:          op.MaxRate,
		ShardID:          shardID,
		Asset:            op.Asset,
		CollateralAsset:  op.CollateralAsset,
		CollateralAmount: op.CollateralAmount,
		SubmittedAtSlot:  op.CurrentSlot,
	}}
	events = append(events, e.issueLoans(shardID, op.CurrentSlot, fills)...)

	if remaining > 0 {
		ask.Amount = remaining
		ask.Collateral = remainingCollateral
		pool.InsertAsk(ask)
	}

	return &dispatchResult{batch: batch, events: events, shardID: &shardID}, nil
}

// issueLoans appends one loan per fill and returns the LoanIssued events.
func (e *Engine) issueLoans(shardID uint64, currentSlot uint64, fills []book.Fill) []event.Lifecycle {
	if len(fills) == 0 {
		return nil
	}

	reg := e.registryMgr.Get()
	lp := e.loans[shardID]
	events := make([]event.Lifecycle, 0, len(fills))

	for _, fill := range fills {
		index := lp.Append(loan.Loan{
			Lender:          fill.Lender,
			Borrower:        fill.Borrower,
			Amount:          fill.Amount,
			Rate:            fill.Rate,
			Collateral:      fill.Collateral,
			ShardID:         shardID,
			Asset:           fill.Asset,
			CollateralAsset: fill.CollateralAsset,
			StartSlot:       currentSlot,
			DurationSlots:   fill.DurationSlots,
		})
		reg.IncrementLoans()

		if e.metrics != nil {
			e.metrics.LoansIssued.WithLabelValues(fill.Asset).Inc()
		}

		events = append(events, &event.LoanIssued{
			Lender:          fill.Lender,
			Borrower:        fill.Borrower,
			Amount:          fill.Amount,
			Rate:            fill.Rate,
			Collateral:      fill.Collateral,
			ShardID:         shardID,
			LoanIndex:       index,
			Asset:           fill.Asset,
			CollateralAsset: fill.CollateralAsset,
			StartSlot:       currentSlot,
			DurationSlots:   fill.DurationSlots,
		})
	}

	return events
}

func (e *Engine) handleRepay(op *event.Repay) (*dispatchResult, error) {
	reg := e.registryMgr.Get()
	if reg == nil {
		return nil, ErrNotInitialized
	}
	if !reg.IsSupported(op.Asset) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, op.Asset)
	}

	shardID := shard.Route(op.Asset, op.Rate, reg.ShardCount)
	l := e.loans[shardID].Get(op.LoanIndex)
	if l == nil || l.Asset != op.Asset || l.Rate != op.Rate {
		return nil, ErrInvalidLoanIndex
	}
	if l.Repaid {
		return nil, ErrAlreadyRepaid
	}
	if l.Borrower != op.Borrower {
		return nil, ErrUnauthorized
	}

	total, interest := l.RepaymentDue(op.CurrentSlot)

	assetID, _ := ledger.GetAssetID(l.Asset)
	collateralAssetID, _ := ledger.GetAssetID(l.CollateralAsset)
	if err := e.balanceTracker.ValidateSufficientWallet(op.Borrower, assetID, int64(total)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
	}

	batch, err := e.journalGen.GenerateRepayment(
		op.IdempotencyKey(), e.sequence, op.CurrentSlot,
		l.Borrower, l.Lender, assetID, collateralAssetID, total, l.Collateral)
	if err != nil {
		return nil, err
	}

	l.Repaid = true

	if e.metrics != nil {
		e.metrics.LoansRepaid.WithLabelValues(l.Asset).Inc()
	}

	return &dispatchResult{
		batch:   batch,
		shardID: &shardID,
		events: []event.Lifecycle{&event.LoanRepaid{
			Lender:          l.Lender,
			Borrower:        l.Borrower,
			Amount:          total,
			Interest:        interest,
			ShardID:         shardID,
			LoanIndex:       op.LoanIndex,
			Asset:           l.Asset,
			CollateralAsset: l.CollateralAsset,
		}},
	}, nil
}

func (e *Engine) handleCleanup(op *event.Cleanup) (*dispatchResult, error) {
	reg := e.registryMgr.Get()
	if reg == nil {
		return nil, ErrNotInitialized
	}
	if op.ShardID >= reg.ShardCount {
		return nil, ErrInvalidShard
	}

	pool := e.pools[op.ShardID]
	evictedBids, evictedAsks := pool.EvictStale(op.CurrentSlot, book.StalenessWindowSlots)

	batch, err := e.journalGen.GenerateCleanup(
		op.IdempotencyKey(), e.sequence, op.CurrentSlot, op.ShardID, evictedBids, evictedAsks)
	if err != nil {
		return nil, err
	}

	events := make([]event.Lifecycle, 0, len(evictedBids)+len(evictedAsks))
	for _, b := range evictedBids {
		refund, fee := book.FeeSplit(b.Amount)
		events = append(events, &event.BidExpired{
			Lender:       b.Lender,
			Amount:       b.Amount,
			RefundAmount: refund,
			FeeAmount:    fee,
			ShardID:      op.ShardID,
			Asset:        b.Asset,
		})
		if e.metrics != nil {
			e.metrics.OrdersEvicted.WithLabelValues("bid").Inc()
			e.metrics.CleanupFees.WithLabelValues(b.Asset).Add(float64(fee))
		}
	}
	for _, a := range evictedAsks {
		refund, fee := book.FeeSplit(a.Collateral)
		events = append(events, &event.AskExpired{
			Borrower:        a.Borrower,
			Amount:          a.Amount,
			RefundAmount:    refund,
			FeeAmount:       fee,
			ShardID:         op.ShardID,
			Asset:           a.Asset,
			CollateralAsset: a.CollateralAsset,
		})
		if e.metrics != nil {
			e.metrics.OrdersEvicted.WithLabelValues("ask").Inc()
			e.metrics.CleanupFees.WithLabelValues(a.CollateralAsset).Add(float64(fee))
		}
	}

	return &dispatchResult{batch: batch, events: events, shardID: &op.ShardID}, nil
}

func (e *Engine) handleWithdrawFees(op *event.WithdrawFees) (*dispatchResult, error) {
	reg := e.registryMgr.Get()
	if reg == nil {
		return nil, ErrNotInitialized
	}
	if op.Caller != reg.Admin {
		return nil, ErrUnauthorized
	}
	if op.ShardID >= reg.ShardCount {
		return nil, ErrInvalidShard
	}
	if !reg.IsSupported(op.Asset) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, op.Asset)
	}
	if op.Amount > MaxAmount {
		return nil, ErrInvalidAmount
	}

	assetID, _ := ledger.GetAssetID(op.Asset)
	accrued := e.balanceTracker.FeeSinkBalance(op.ShardID, assetID)
	if accrued < 0 {
		panic(fmt.Sprintf("FATAL: fee sink for shard %d is negative: %d", op.ShardID, accrued))
	}

	// Amount zero drains the sink
	withdraw := op.Amount
	if withdraw == 0 {
		withdraw = uint64(accrued)
	}
	if withdraw > uint64(accrued) {
		return nil, ErrInsufficientFunds
	}

	batch, err := e.journalGen.GenerateFeeWithdrawal(
		op.IdempotencyKey(), e.sequence, op.CurrentSlot, op.ShardID, reg.Admin, assetID, withdraw)
	if err != nil {
		return nil, err
	}

	var events []event.Lifecycle
	if withdraw > 0 {
		events = append(events, &event.FeesWithdrawn{
			Admin:   reg.Admin,
			ShardID: op.ShardID,
			Amount:  withdraw,
			Asset:   op.Asset,
		})
		if e.metrics != nil {
			e.metrics.FeesWithdrawn.WithLabelValues(op.Asset).Add(float64(withdraw))
		}
	}

	return &dispatchResult{batch: batch, events: events, shardID: &op.ShardID}, nil
}

// computeStateDigest creates canonical bytes for the state hash: the
// post-apply balances of every account the batch touched, sorted by path.
func (e *Engine) computeStateDigest(batch *ledger.Batch) []byte {
	affectedAccounts := make(map[ledger.AccountKey]bool)

	if batch != nil {
		for _, j := range batch.Journals {
			affectedAccounts[j.DebitAccount] = true
			affectedAccounts[j.CreditAccount] = true
		}
	}

	accounts := make([]ledger.AccountKey, 0, len(affectedAccounts))
	for key := range affectedAccounts {
		accounts = append(accounts, key)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountPath() < accounts[j].AccountPath()
	})

	digest := make([]byte, 0, len(accounts)*64)

	for _, key := range accounts {
		balance := e.balanceTracker.GetBalance(key)

		path := key.AccountPath()
		digest = append(digest, byte(len(path)))
		digest = append(digest, []byte(path)...)

		digest = appendInt64LE(digest, balance)
	}

	return digest
}

func appendInt64LE(buf []byte, v int64) []byte {
	return append(buf,
		byte(v),
		byte(v>>8),
		byte(v>>16),
		byte(v>>24),
		byte(v>>32),
		byte(v>>40),
		byte(v>>48),
		byte(v>>56),
	)
}

// postCheckInvariants validates custody invariants after batch application.
// Escrow and fee sinks must never go negative; the whole ledger must stay
// zero-sum (checked periodically, it walks every account).
func (e *Engine) postCheckInvariants() error {
	reg := e.registryMgr.Get()
	if reg == nil {
		return nil
	}

	for _, asset := range reg.SupportedAssets {
		assetID, _ := ledger.GetAssetID(asset)
		if err := e.validator.ValidateEscrowNonNegative(assetID); err != nil {
			return err
		}
	}

	if e.sequence > 0 && e.sequence%1000 == 0 {
		if err := e.validator.ValidateGlobalBalance(); err != nil {
			return fmt.Errorf("at seq %d: %w", e.sequence, err)
		}
	}

	return nil
}

func journalTypeName(jt ledger.JournalType) string {
	switch jt {
	case ledger.JournalTypeDeposit:
		return "deposit"
	case ledger.JournalTypeBidEscrow:
		return "bid_escrow"
	case ledger.JournalTypeAskEscrow:
		return "ask_escrow"
	case ledger.JournalTypeLoanDisbursement:
		return "loan_disbursement"
	case ledger.JournalTypeRepayment:
		return "repayment"
	case ledger.JournalTypeCollateralRelease:
		return "collateral_release"
	case ledger.JournalTypeEvictionRefund:
		return "eviction_refund"
	case ledger.JournalTypeCleanupFee:
		return "cleanup_fee"
	case ledger.JournalTypeFeeWithdrawal:
		return "fee_withdrawal"
	default:
		return "unknown"
	}
}
