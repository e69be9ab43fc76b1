package coordinator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SizingPolicy decides how much the next transaction should spend,
// before fees. Implementations must be safe for concurrent use.
type SizingPolicy interface {
	NextAmount() decimal.Decimal
}

// FixedSizer spends the same amount on every transaction.
type FixedSizer struct {
	amount decimal.Decimal
}

// NewFixedSizer creates a sizer for a constant per-transaction amount.
// A non-positive amount is a caller bug and panics.
func NewFixedSizer(amount decimal.Decimal) *FixedSizer {
	if !amount.IsPositive() {
		panic(fmt.Sprintf("SIZER_NON_POSITIVE_AMOUNT: %s", amount))
	}
	return &FixedSizer{amount: amount}
}

// NextAmount returns the configured amount.
func (f *FixedSizer) NextAmount() decimal.Decimal { return f.amount }
