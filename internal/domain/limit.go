package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SpendLimit is the immutable set of global stopping conditions plus the
// fee range. Loaded once at startup and shared read-only by every worker.
type SpendLimit struct {
	MaxTotalAmount      decimal.Decimal
	MaxTransactionCount int64
	FeeMin              decimal.Decimal
	FeeMax              decimal.Decimal
}

// Validate rejects limit sets that could never admit a transaction.
func (l SpendLimit) Validate() error {
	if !l.MaxTotalAmount.IsPositive() {
		return fmt.Errorf("max_total_amount must be positive, got %s", l.MaxTotalAmount)
	}
	if l.MaxTransactionCount <= 0 {
		return fmt.Errorf("max_transaction_count must be positive, got %d", l.MaxTransactionCount)
	}
	if l.FeeMin.IsNegative() {
		return fmt.Errorf("fee_min must not be negative, got %s", l.FeeMin)
	}
	if l.FeeMax.LessThan(l.FeeMin) {
		return fmt.Errorf("fee_max %s is below fee_min %s", l.FeeMax, l.FeeMin)
	}
	return nil
}
