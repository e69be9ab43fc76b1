package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/qqrm/tx-bot/internal/infra"
)

// ErrBreakerOpen is returned when the circuit breaker rejects a call.
// It is fatal: a dead endpoint should stop the run, not spin it.
var ErrBreakerOpen = errors.New("submission breaker open")

// BreakerSubmitter guards a submitter with a circuit breaker.
// Transient failures feed the breaker; once it opens, calls fail fast
// without touching the endpoint.
type BreakerSubmitter struct {
	inner   Submitter
	breaker *infra.CircuitBreaker
}

// NewBreakerSubmitter wraps inner with breaker.
func NewBreakerSubmitter(inner Submitter, breaker *infra.CircuitBreaker) *BreakerSubmitter {
	return &BreakerSubmitter{inner: inner, breaker: breaker}
}

func (b *BreakerSubmitter) Submit(ctx context.Context, req Request) (Receipt, error) {
	if !b.breaker.Allow() {
		return Receipt{}, fmt.Errorf("endpoint unavailable: %w", ErrBreakerOpen)
	}

	rec, err := b.inner.Submit(ctx, req)
	switch {
	case err == nil:
		b.breaker.RecordSuccess()
		return rec, nil
	case IsTransient(err):
		b.breaker.RecordFailure()
		return Receipt{}, err
	default:
		// Fatal errors stop the run on their own; tripping the breaker
		// for them would only muddy the health signal.
		return Receipt{}, err
	}
}
