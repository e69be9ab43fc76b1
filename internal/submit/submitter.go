package submit

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Request describes one transaction to send.
type Request struct {
	Amount decimal.Decimal // reserved spend, fee not included
	Fee    decimal.Decimal // sampled fee for this attempt
}

// Receipt is the endpoint's acknowledgement of a completed transaction.
type Receipt struct {
	ActualAmount decimal.Decimal // what was actually charged
	Signature    string
}

// Submitter sends a single transaction. One call is one attempt: retry
// policy lives in the worker, never inside an implementation.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Receipt, error)
}

// TransientError marks a submission failure worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable submission failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is a retryable submission failure.
// Everything else is fatal and stops the run.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
