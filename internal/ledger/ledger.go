// Package ledger implements the shared spend accounting for a run: a
// single mutex-guarded state that admits, commits and releases budget
// claims so that no interleaving of workers can overspend the total or
// overshoot the transaction count.
package ledger

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qqrm/tx-bot/internal/domain"
)

// Ticket is a granted, not-yet-resolved claim on budget and count.
// It is owned by exactly one worker attempt and must be resolved exactly
// once, via Ledger.Commit or Ledger.Release. A second resolution panics.
type Ticket struct {
	id       string
	amount   decimal.Decimal
	resolved bool
}

// ID returns the ticket identifier (for logs and journal rows).
func (t *Ticket) ID() string { return t.id }

// Amount returns the reserved amount.
func (t *Ticket) Amount() decimal.Decimal { return t.amount }

// Status is a point-in-time snapshot of the ledger.
type Status struct {
	CommittedAmount decimal.Decimal
	CommittedCount  int64
	ReservedAmount  decimal.Decimal
	InFlight        int64           // granted, unresolved tickets
	RemainingAmount decimal.Decimal // limit minus committed; ignores reservations
	RemainingCount  int64
	Exhausted       bool
}

// Ledger is the single source of truth for spend accounting during a run.
// Every check-and-mutate happens under one mutex, so admission is atomic
// with respect to all other ledger operations. The critical section is
// plain arithmetic; submissions never run under the lock.
type Ledger struct {
	mu sync.Mutex

	limit domain.SpendLimit

	committed      decimal.Decimal
	committedCount int64
	reserved       decimal.Decimal
	inflight       int64
}

// NewLedger creates a ledger enforcing the given limits.
func NewLedger(limit domain.SpendLimit) *Ledger {
	return &Ledger{
		limit:     limit,
		committed: decimal.Zero,
		reserved:  decimal.Zero,
	}
}

// Limit returns the limits this ledger enforces.
func (l *Ledger) Limit() domain.SpendLimit { return l.limit }

// TryReserve atomically admits a claim against both limits. Denial
// (ok == false) is the normal concurrent-exhaustion signal, not an error:
// it means another worker got there first. A non-positive amount is a
// caller bug and panics.
//
// Admission rule: granting must keep committed + reserved within the
// total budget and committed count + in-flight tickets within the count
// limit. Reservations are admission-controlled up front, never corrected
// after the fact.
func (l *Ledger) TryReserve(amount decimal.Decimal) (*Ticket, bool) {
	if !amount.IsPositive() {
		panic(fmt.Sprintf("LEDGER_RESERVE_NON_POSITIVE: %s", amount))
	}

	// uuid draws entropy from the OS; keep that outside the lock.
	id := uuid.NewString()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.committedCount+l.inflight >= l.limit.MaxTransactionCount {
		return nil, false
	}
	if l.committed.Add(l.reserved).Add(amount).GreaterThan(l.limit.MaxTotalAmount) {
		return nil, false
	}

	l.reserved = l.reserved.Add(amount)
	l.inflight++

	return &Ticket{id: id, amount: amount}, true
}

// Commit resolves a ticket with the amount actually debited and counts
// the transaction. The actual amount may differ from the reservation;
// an excess is still applied in full, because the transaction already
// executed in the outside world and the books must tell the truth. A
// committed transaction is never un-admitted.
func (l *Ledger) Commit(t *Ticket, actual decimal.Decimal) {
	if actual.IsNegative() {
		panic(fmt.Sprintf("LEDGER_COMMIT_NEGATIVE_ACTUAL: %s", actual))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.retire(t)
	l.committed = l.committed.Add(actual)
	l.committedCount++
}

// Release resolves a ticket without touching committed totals, returning
// the reserved amount to the pool. Used when the submission failed
// before taking effect.
func (l *Ledger) Release(t *Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.retire(t)
}

// retire consumes a ticket exactly once. Caller must hold l.mu.
func (l *Ledger) retire(t *Ticket) {
	if t == nil {
		panic("LEDGER_NIL_TICKET")
	}
	if t.resolved {
		panic(fmt.Sprintf("LEDGER_DOUBLE_RESOLVE: ticket %s", t.id))
	}
	t.resolved = true
	l.reserved = l.reserved.Sub(t.amount)
	l.inflight--
}

// Status returns a consistent snapshot of the ledger.
func (l *Ledger) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.limit.MaxTotalAmount.Sub(l.committed)
	return Status{
		CommittedAmount: l.committed,
		CommittedCount:  l.committedCount,
		ReservedAmount:  l.reserved,
		InFlight:        l.inflight,
		RemainingAmount: remaining,
		RemainingCount:  l.limit.MaxTransactionCount - l.committedCount,
		Exhausted:       l.committedCount >= l.limit.MaxTransactionCount || !remaining.IsPositive(),
	}
}

// VerifyInvariant panics if the internal accounting became inconsistent.
// Note: committed amount may legitimately sit above the budget when a
// submitter debited more than requested, so only structural invariants
// are enforced here.
func (l *Ledger) VerifyInvariant() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.committed.IsNegative() {
		panic(fmt.Sprintf("LEDGER_NEGATIVE_COMMITTED: %s", l.committed))
	}
	if l.reserved.IsNegative() {
		panic(fmt.Sprintf("LEDGER_NEGATIVE_RESERVED: %s", l.reserved))
	}
	if l.committedCount < 0 {
		panic(fmt.Sprintf("LEDGER_NEGATIVE_COUNT: %d", l.committedCount))
	}
	if l.inflight < 0 {
		panic(fmt.Sprintf("LEDGER_NEGATIVE_INFLIGHT: %d", l.inflight))
	}
	if l.committedCount > l.limit.MaxTransactionCount {
		panic(fmt.Sprintf("LEDGER_COUNT_OVERSHOT: %d > %d", l.committedCount, l.limit.MaxTransactionCount))
	}
}
