package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/shopspring/decimal"

	"github.com/qqrm/tx-bot/internal/domain"
)

// RunJournal persists runs and their commits in SQLite.
// Commits are journaled as they happen, so a crashed run still leaves
// an exact record of what was spent.
type RunJournal struct {
	db *sql.DB
}

// NewRunJournal opens the journal database with WAL mode enabled.
func NewRunJournal(dbPath string) (*RunJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;", // 2MB cache
		"PRAGMA foreign_keys=ON;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			max_total TEXT NOT NULL,
			max_count INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER,
			committed_amount TEXT,
			committed_count INTEGER,
			reason TEXT
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}

	// Amounts are stored as TEXT so the journal stays exact.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS commits (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			worker INTEGER NOT NULL,
			requested TEXT NOT NULL,
			fee TEXT NOT NULL,
			actual TEXT NOT NULL,
			signature TEXT NOT NULL,
			ts INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create commits table: %w", err)
	}

	return &RunJournal{db: db}, nil
}

// BeginRun registers a run before any worker starts.
func (j *RunJournal) BeginRun(ctx context.Context, runID, mode string, limit domain.SpendLimit) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO runs (id, mode, max_total, max_count, started_at) VALUES (?, ?, ?, ?, ?)",
		runID, mode, limit.MaxTotalAmount.String(), limit.MaxTransactionCount, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// RecordCommit journals one committed transaction.
func (j *RunJournal) RecordCommit(ctx context.Context, runID string, r domain.Receipt) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO commits (run_id, seq, worker, requested, fee, actual, signature, ts) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		runID, r.Seq, r.Worker, r.Requested.String(), r.Fee.String(), r.Actual.String(), r.Signature, r.TsUnixMicro,
	)
	if err != nil {
		return fmt.Errorf("failed to insert commit: %w", err)
	}
	return nil
}

// FinishRun stores the final totals once every worker has stopped.
func (j *RunJournal) FinishRun(ctx context.Context, rep *domain.FinalReport) error {
	res, err := j.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, committed_amount = ?, committed_count = ?, reason = ? WHERE id = ?",
		time.Now().Unix(), rep.CommittedAmount.String(), rep.CommittedCount, rep.Reason.String(), rep.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unknown run: %s", rep.RunID)
	}
	return nil
}

// ListCommits returns the journaled commits for a run in commit order.
func (j *RunJournal) ListCommits(ctx context.Context, runID string) ([]domain.Receipt, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT seq, worker, requested, fee, actual, signature, ts FROM commits WHERE run_id = ? ORDER BY seq ASC",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query commits: %w", err)
	}
	defer rows.Close()

	var receipts []domain.Receipt
	for rows.Next() {
		var r domain.Receipt
		var requested, fee, actual string

		if err := rows.Scan(&r.Seq, &r.Worker, &requested, &fee, &actual, &r.Signature, &r.TsUnixMicro); err != nil {
			return nil, fmt.Errorf("failed to scan commit: %w", err)
		}

		if r.Requested, err = decimal.NewFromString(requested); err != nil {
			return nil, fmt.Errorf("corrupt requested amount in commit %d: %w", r.Seq, err)
		}
		if r.Fee, err = decimal.NewFromString(fee); err != nil {
			return nil, fmt.Errorf("corrupt fee in commit %d: %w", r.Seq, err)
		}
		if r.Actual, err = decimal.NewFromString(actual); err != nil {
			return nil, fmt.Errorf("corrupt actual amount in commit %d: %w", r.Seq, err)
		}

		receipts = append(receipts, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return receipts, nil
}

// Close closes the database connection.
func (j *RunJournal) Close() error {
	return j.db.Close()
}
