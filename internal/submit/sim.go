package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SimSubmitter simulates transaction submission with no external calls.
// This is the PAPER mode backend, used for rehearsing a spend plan
// before pointing the spender at a live endpoint.
//
// Failure behavior mirrors the classic simulator: roughly one call in
// ten fails transiently, keyed off the wall clock nanoseconds.
type SimSubmitter struct {
	wallet  string
	token   string
	latency time.Duration
	failFn  func() bool

	mu       sync.Mutex
	receipts []Receipt
}

// NewSimSubmitter creates a simulator with clock-based failure injection.
func NewSimSubmitter(wallet, token string) *SimSubmitter {
	return &SimSubmitter{
		wallet:   wallet,
		token:    token,
		failFn:   clockFail,
		receipts: make([]Receipt, 0),
	}
}

func clockFail() bool {
	return time.Now().Nanosecond()%10 == 0
}

// SetLatency makes every submission take at least d.
func (s *SimSubmitter) SetLatency(d time.Duration) {
	s.latency = d
}

// SetFailureFn replaces the failure source. fn returning true fails the
// next submission transiently. Call before the run starts.
func (s *SimSubmitter) SetFailureFn(fn func() bool) {
	s.failFn = fn
}

// Submit charges the requested amount plus fee against the virtual wallet.
func (s *SimSubmitter) Submit(ctx context.Context, req Request) (Receipt, error) {
	if s.latency > 0 {
		select {
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		case <-time.After(s.latency):
		}
	}

	if s.failFn() {
		slog.Warn("SIM SUBMIT: FAIL")
		return Receipt{}, Transient(errors.New("failed tx"))
	}

	actual := req.Amount.Add(req.Fee)
	rec := Receipt{
		ActualAmount: actual,
		Signature: fmt.Sprintf("Wallet: %s, Token: %s, Commission: %s, Price: %s, Amount: %s",
			s.wallet, s.token, req.Fee, req.Amount, actual),
	}

	s.mu.Lock()
	s.receipts = append(s.receipts, rec)
	s.mu.Unlock()

	slog.Info("SIM SUBMIT: Transaction Accepted",
		slog.String("amount", req.Amount.String()),
		slog.String("fee", req.Fee.String()),
		slog.String("actual", actual.String()))

	return rec, nil
}

// Receipts returns a copy of every accepted submission.
func (s *SimSubmitter) Receipts() []Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Receipt, len(s.receipts))
	copy(result, s.receipts)
	return result
}
