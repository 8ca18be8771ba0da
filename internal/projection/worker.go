package projection

import (
	"LendAuction/internal/event"
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"
)

// Output mirrors the data projection workers need from one applied
// operation. The orchestrator bridges between engine.Output and this.
type Output struct {
	Sequence int64
	OpType   string
	ShardID  *uint64
	Slot     uint64
	Events   []event.Lifecycle
	Journals []JournalEntry
}

// JournalEntry is a simplified journal for projection consumption.
type JournalEntry struct {
	DebitAccount  string
	CreditAccount string
	AssetID       uint16
	Amount        int64
	JournalType   int32
}

// Worker updates projection tables from applied operations. The projection
// channel is non-blocking with drop: if projections fall behind, they are
// rebuilt from the event log rather than stalling the engine.
type Worker struct {
	db        *sql.DB
	inputChan <-chan Output
	lastSeq   int64
}

func NewWorker(db *sql.DB, inputChan <-chan Output) *Worker {
	return &Worker{
		db:        db,
		inputChan: inputChan,
	}
}

// Run starts the projection worker loop.
func (pw *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case output, ok := <-pw.inputChan:
			if !ok {
				return nil
			}

			if err := pw.processOutput(ctx, output); err != nil {
				log.Printf("WARN: projection update failed at seq=%d: %v", output.Sequence, err)
				// Continue — projections are eventually consistent
				// and can be rebuilt from the event log
			}

			pw.lastSeq = output.Sequence
		}
	}
}

func (pw *Worker) processOutput(ctx context.Context, output Output) error {
	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, j := range output.Journals {
		if err := pw.updateBalances(ctx, tx, j, output.Sequence); err != nil {
			return fmt.Errorf("balance projection: %w", err)
		}
	}

	for _, evt := range output.Events {
		if err := pw.applyLifecycle(ctx, tx, evt, output); err != nil {
			return fmt.Errorf("%s projection: %w", evt.Kind(), err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projections.watermark (worker_id, last_sequence, updated_at)
		VALUES ('main', $1, NOW())
		ON CONFLICT (worker_id) DO UPDATE SET last_sequence = $1, updated_at = NOW()
	`, output.Sequence); err != nil {
		return fmt.Errorf("watermark update: %w", err)
	}

	return tx.Commit()
}

// updateBalances mirrors the tracker's convention: debit increases the
// account balance, credit decreases it.
func (pw *Worker) updateBalances(ctx context.Context, tx *sql.Tx, j JournalEntry, seq int64) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projections.balances (account_path, asset_id, balance, last_sequence)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_path, asset_id)
		DO UPDATE SET balance = projections.balances.balance + $3, last_sequence = $4
	`, j.DebitAccount, j.AssetID, j.Amount, seq); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projections.balances (account_path, asset_id, balance, last_sequence)
		VALUES ($1, $2, -$3, $4)
		ON CONFLICT (account_path, asset_id)
		DO UPDATE SET balance = projections.balances.balance - $3, last_sequence = $4
	`, j.CreditAccount, j.AssetID, j.Amount, seq); err != nil {
		return err
	}

	return nil
}

func (pw *Worker) applyLifecycle(ctx context.Context, tx *sql.Tx, evt event.Lifecycle, output Output) error {
	seq := output.Sequence

	switch e := evt.(type) {
	case *event.AuctionInitialized:
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projections.registry (id, admin, shard_count, supported_assets, total_loans_issued, last_sequence)
			VALUES (1, $1, $2, $3, 0, $4)
			ON CONFLICT (id) DO UPDATE SET
				admin = $1, shard_count = $2, supported_assets = $3, last_sequence = $4
		`, e.Admin, int64(e.ShardCount), pq.Array(e.SupportedAssets), seq)
		return err

	case *event.BidSubmitted:
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projections.shard_orders
				(shard_id, side, owner, amount, rate, collateral, asset, collateral_asset, duration_slots, submitted_at_slot, last_sequence)
			VALUES ($1, 'bid', $2, $3, $4, 0, $5, '', $6, $7, $8)
		`, int64(e.ShardID), e.Lender, int64(e.Amount), int16(e.MinRate),
			e.Asset, int64(e.DurationSlots), int64(e.SubmittedAtSlot), seq)
		return err

	case *event.AskSubmitted:
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projections.shard_orders
				(shard_id, side, owner, amount, rate, collateral, asset, collateral_asset, duration_slots, submitted_at_slot, last_sequence)
			VALUES ($1, 'ask', $2, $3, $4, $5, $6, $7, 0, $8, $9)
		`, int64(e.ShardID), e.Borrower, int64(e.Amount), int16(e.MaxRate),
			int64(e.CollateralAmount), e.Asset, e.CollateralAsset, int64(e.SubmittedAtSlot), seq)
		return err

	case *event.LoanIssued:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO projections.loans
				(shard_id, loan_index, lender, borrower, amount, rate, collateral, asset, collateral_asset,
				 start_slot, duration_slots, repaid, interest_paid, last_sequence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE, 0, $12)
			ON CONFLICT (shard_id, loan_index) DO NOTHING
		`, int64(e.ShardID), int64(e.LoanIndex), e.Lender, e.Borrower,
			int64(e.Amount), int16(e.Rate), int64(e.Collateral), e.Asset, e.CollateralAsset,
			int64(e.StartSlot), int64(e.DurationSlots), seq); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE projections.registry SET total_loans_issued = total_loans_issued + 1, last_sequence = $1
			WHERE id = 1
		`, seq); err != nil {
			return err
		}

		// A fill consumes amount from one bid of the lender and one ask of
		// the borrower on this shard, earliest-submitted first
		if err := pw.consumeOrder(ctx, tx, int64(e.ShardID), "bid", e.Lender.String(), int64(e.Amount), seq); err != nil {
			return err
		}
		return pw.consumeOrder(ctx, tx, int64(e.ShardID), "ask", e.Borrower.String(), int64(e.Amount), seq)

	case *event.LoanRepaid:
		_, err := tx.ExecContext(ctx, `
			UPDATE projections.loans
			SET repaid = TRUE, interest_paid = $1, last_sequence = $2
			WHERE shard_id = $3 AND loan_index = $4
		`, int64(e.Interest), seq, int64(e.ShardID), int64(e.LoanIndex))
		return err

	case *event.BidExpired:
		return pw.removeOrder(ctx, tx, int64(e.ShardID), "bid", e.Lender.String(), int64(e.Amount))

	case *event.AskExpired:
		return pw.removeOrder(ctx, tx, int64(e.ShardID), "ask", e.Borrower.String(), int64(e.Amount))

	default:
		// Deposited and FeesWithdrawn move value only; journals cover them
		return nil
	}
}

func (pw *Worker) consumeOrder(ctx context.Context, tx *sql.Tx, shardID int64, side, owner string, amount, seq int64) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE projections.shard_orders o
		SET amount = o.amount - $4, last_sequence = $5
		WHERE o.order_id = (
			SELECT order_id FROM projections.shard_orders
			WHERE shard_id = $1 AND side = $2 AND owner = $3
			ORDER BY order_id ASC
			LIMIT 1
		)
	`, shardID, side, owner, amount, seq); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		DELETE FROM projections.shard_orders
		WHERE shard_id = $1 AND side = $2 AND owner = $3 AND amount <= 0
	`, shardID, side, owner)
	return err
}

func (pw *Worker) removeOrder(ctx context.Context, tx *sql.Tx, shardID int64, side, owner string, amount int64) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM projections.shard_orders
		WHERE order_id = (
			SELECT order_id FROM projections.shard_orders
			WHERE shard_id = $1 AND side = $2 AND owner = $3 AND amount = $4
			ORDER BY order_id ASC
			LIMIT 1
		)
	`, shardID, side, owner, amount)
	return err
}

// Rebuild rebuilds balance projections from the event log. Order and loan
// projections require an engine replay and are rebuilt by restarting with
// projections truncated.
func Rebuild(ctx context.Context, db *sql.DB) error {
	truncateStatements := []string{
		`TRUNCATE projections.balances`,
		`TRUNCATE projections.shard_orders`,
		`TRUNCATE projections.loans`,
		`DELETE FROM projections.watermark WHERE worker_id = 'main'`,
	}

	for _, stmt := range truncateStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("truncate failed: %w", err)
		}
	}

	// Debits increase balances
	_, err := db.ExecContext(ctx, `
		INSERT INTO projections.balances (account_path, asset_id, balance, last_sequence)
		SELECT
			debit_account AS account_path,
			asset_id,
			SUM(amount) AS balance,
			MAX(sequence) AS last_sequence
		FROM event_log.journal
		GROUP BY debit_account, asset_id
		ON CONFLICT (account_path, asset_id) DO UPDATE
			SET balance = EXCLUDED.balance, last_sequence = EXCLUDED.last_sequence
	`)
	if err != nil {
		return fmt.Errorf("rebuild debit balances: %w", err)
	}

	// Credits decrease balances
	_, err = db.ExecContext(ctx, `
		INSERT INTO projections.balances (account_path, asset_id, balance, last_sequence)
		SELECT
			credit_account AS account_path,
			asset_id,
			-SUM(amount) AS balance,
			MAX(sequence) AS last_sequence
		FROM event_log.journal
		GROUP BY credit_account, asset_id
		ON CONFLICT (account_path, asset_id) DO UPDATE
			SET balance = projections.balances.balance + EXCLUDED.balance,
			    last_sequence = GREATEST(projections.balances.last_sequence, EXCLUDED.last_sequence)
	`)
	if err != nil {
		return fmt.Errorf("rebuild credit balances: %w", err)
	}

	log.Println("INFO: balance projection rebuild complete")
	return nil
}
