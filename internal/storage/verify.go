package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// VerifyRun replays the journaled commits of a finished run and
// cross-checks them against the stored totals. It catches partial
// writes and accounting drift before anyone trusts the report.
func (j *RunJournal) VerifyRun(ctx context.Context, runID string) error {
	var amountText sql.NullString
	var count sql.NullInt64

	err := j.db.QueryRowContext(ctx,
		"SELECT committed_amount, committed_count FROM runs WHERE id = ?", runID,
	).Scan(&amountText, &count)
	if err == sql.ErrNoRows {
		return fmt.Errorf("unknown run: %s", runID)
	}
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if !amountText.Valid || !count.Valid {
		return fmt.Errorf("run %s has no recorded totals (still running?)", runID)
	}

	stored, err := decimal.NewFromString(amountText.String)
	if err != nil {
		return fmt.Errorf("corrupt committed_amount for run %s: %w", runID, err)
	}

	receipts, err := j.ListCommits(ctx, runID)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for i, r := range receipts {
		// Commit sequence numbers are assigned 1..N in commit order;
		// a gap means a lost journal row.
		if r.Seq != int64(i+1) {
			return fmt.Errorf("commit sequence broken: position %d holds seq %d", i, r.Seq)
		}
		total = total.Add(r.Actual)
	}

	if int64(len(receipts)) != count.Int64 {
		return fmt.Errorf("commit count mismatch: journal has %d, run recorded %d",
			len(receipts), count.Int64)
	}
	if !total.Equal(stored) {
		return fmt.Errorf("committed amount mismatch: journal sums to %s, run recorded %s",
			total, stored)
	}

	slog.Info("Run journal verified",
		slog.String("run_id", runID),
		slog.Int("commits", len(receipts)),
		slog.String("total", total.String()))

	return nil
}
