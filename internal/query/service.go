package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Service provides read-only access to projection tables. Queries never
// touch the engine; every response carries as_of_sequence so callers can
// reason about freshness.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// GetRegistry returns the protocol configuration, or nil before
// initialization has been projected.
func (qs *Service) GetRegistry(ctx context.Context) (*RegistryResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, fmt.Errorf("watermark: %w", err)
	}

	var r RegistryResponse
	var assets pq.StringArray
	err = qs.db.QueryRowContext(ctx, `
		SELECT admin, shard_count, supported_assets, total_loans_issued
		FROM projections.registry WHERE id = 1
	`).Scan(&r.Admin, &r.ShardCount, &assets, &r.TotalLoansIssued)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.SupportedAssets = assets
	r.AsOfSequence = asOfSeq
	return &r, nil
}

// GetShardOrders returns a shard's resting orders, earliest-submitted
// first. side filters to "bid" or "ask" when non-nil.
func (qs *Service) GetShardOrders(ctx context.Context, shardID uint64, side *string) ([]OrderResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT side, owner, amount, rate, collateral, asset, collateral_asset, duration_slots, submitted_at_slot
		FROM projections.shard_orders
		WHERE shard_id = $1
	`
	args := []interface{}{int64(shardID)}

	if side != nil {
		query += " AND side = $2"
		args = append(args, *side)
	}

	query += " ORDER BY order_id ASC"

	rows, err := qs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []OrderResponse
	for rows.Next() {
		var o OrderResponse
		o.ShardID = shardID
		o.AsOfSequence = asOfSeq
		var rate int16
		if err := rows.Scan(
			&o.Side, &o.Owner, &o.Amount, &rate, &o.Collateral,
			&o.Asset, &o.CollateralAsset, &o.DurationSlots, &o.SubmittedAtSlot,
		); err != nil {
			return nil, err
		}
		o.Rate = uint8(rate)
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// GetShardLoans returns a shard's loans in index order.
func (qs *Service) GetShardLoans(ctx context.Context, shardID uint64, includeRepaid bool) ([]LoanResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT loan_index, lender, borrower, amount, rate, collateral, asset, collateral_asset,
		       start_slot, duration_slots, repaid, interest_paid
		FROM projections.loans
		WHERE shard_id = $1
	`
	if !includeRepaid {
		query += " AND NOT repaid"
	}
	query += " ORDER BY loan_index ASC"

	rows, err := qs.db.QueryContext(ctx, query, int64(shardID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []LoanResponse
	for rows.Next() {
		var l LoanResponse
		l.ShardID = shardID
		l.AsOfSequence = asOfSeq
		var rate int16
		var index int64
		if err := rows.Scan(
			&index, &l.Lender, &l.Borrower, &l.Amount, &rate, &l.Collateral,
			&l.Asset, &l.CollateralAsset, &l.StartSlot, &l.DurationSlots,
			&l.Repaid, &l.InterestPaid,
		); err != nil {
			return nil, err
		}
		l.LoanIndex = uint64(index)
		l.Rate = uint8(rate)
		loans = append(loans, l)
	}

	return loans, rows.Err()
}

// GetBalances returns all wallet balances for a user.
func (qs *Service) GetBalances(ctx context.Context, userID uuid.UUID) ([]BalanceResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("user:%s:wallet:%%", userID)
	rows, err := qs.db.QueryContext(ctx, `
		SELECT account_path, asset_id, balance
		FROM projections.balances
		WHERE account_path LIKE $1
		ORDER BY asset_id
	`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []BalanceResponse
	for rows.Next() {
		var b BalanceResponse
		b.UserID = userID
		b.AsOfSequence = asOfSeq
		var path string
		if err := rows.Scan(&path, &b.AssetID, &b.Balance); err != nil {
			return nil, err
		}
		// account_path is "user:<uuid>:wallet:<asset>"
		if idx := lastColon(path); idx >= 0 {
			b.Asset = path[idx+1:]
		}
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

// GetJournalHistory returns journal entries touching a user's accounts,
// newest first, with cursor-based pagination.
func (qs *Service) GetJournalHistory(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
	afterSequence *int64,
) ([]JournalHistoryEntry, error) {
	accountPrefix := fmt.Sprintf("user:%s:%%", userID)

	query := `
		SELECT journal_id, batch_id, op_ref, sequence,
		       debit_account, credit_account, asset_id, amount, journal_type, slot
		FROM event_log.journal
		WHERE debit_account LIKE $1 OR credit_account LIKE $1
	`
	args := []interface{}{accountPrefix}
	argIdx := 2

	if afterSequence != nil {
		query += fmt.Sprintf(" AND sequence < $%d", argIdx)
		args = append(args, *afterSequence)
		argIdx++
	}

	query += " ORDER BY sequence DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := qs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []JournalHistoryEntry
	for rows.Next() {
		var e JournalHistoryEntry
		if err := rows.Scan(
			&e.JournalID, &e.BatchID, &e.OpRef, &e.Sequence,
			&e.DebitAccount, &e.CreditAccount, &e.AssetID, &e.Amount,
			&e.JournalType, &e.Slot,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// VerifyIntegrity checks hash chain continuity and the global zero-sum
// invariant from the database side.
func (qs *Service) VerifyIntegrity(ctx context.Context) (*IntegrityReport, error) {
	report := &IntegrityReport{}

	rows, err := qs.db.QueryContext(ctx, `
		SELECT o1.sequence
		FROM event_log.operations o1
		LEFT JOIN event_log.operations o2 ON o2.sequence = o1.sequence - 1
		WHERE o1.sequence > 0 AND o1.prev_hash != COALESCE(o2.state_hash, o1.prev_hash)
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var seq int64
		if err := rows.Scan(&seq); err != nil {
			return nil, err
		}
		report.HashChainBreaks = append(report.HashChainBreaks, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	balanceRows, err := qs.db.QueryContext(ctx, `
		SELECT asset_id, SUM(balance) as total
		FROM projections.balances
		GROUP BY asset_id
		HAVING SUM(balance) != 0
	`)
	if err != nil {
		return nil, err
	}
	defer balanceRows.Close()

	for balanceRows.Next() {
		var assetID uint16
		var total int64
		if err := balanceRows.Scan(&assetID, &total); err != nil {
			return nil, err
		}
		report.UnbalancedAssets = append(report.UnbalancedAssets, UnbalancedAsset{
			AssetID:   assetID,
			Imbalance: total,
		})
	}
	if err := balanceRows.Err(); err != nil {
		return nil, err
	}

	report.IsHealthy = len(report.HashChainBreaks) == 0 && len(report.UnbalancedAssets) == 0
	return report, nil
}

// --- helpers ---

func (qs *Service) getWatermark(ctx context.Context) (int64, error) {
	var seq int64
	err := qs.db.QueryRowContext(ctx, `
		SELECT COALESCE(last_sequence, 0) FROM projections.watermark WHERE worker_id = 'main'
	`).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return seq, err
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}
