package coordinator

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qqrm/tx-bot/internal/domain"
	"github.com/qqrm/tx-bot/internal/fee"
	"github.com/qqrm/tx-bot/internal/infra"
	"github.com/qqrm/tx-bot/internal/ledger"
	"github.com/qqrm/tx-bot/internal/obs"
	"github.com/qqrm/tx-bot/internal/submit"
)

type attemptOutcome int

const (
	attemptCommitted attemptOutcome = iota
	attemptExhausted                // reservation denied, limits reached
	attemptTransient                // submission failed, retry after backoff
	attemptFatal                    // submission failed, stop the run
	attemptCanceled                 // context ended mid-attempt
)

// worker drives the reserve -> sample -> submit -> resolve loop for one
// goroutine. All spend accounting goes through the shared ledger; the
// worker never touches committed totals directly.
type worker struct {
	id       int
	ledger   *ledger.Ledger
	sizer    SizingPolicy
	sampler  *fee.Sampler
	sub      submit.Submitter
	pacer    *infra.RateLimiter // nil = unpaced
	backoff  infra.Backoff
	metrics  *obs.Metrics
	receipts chan<- domain.Receipt
}

// run loops until limits are exhausted, the context is canceled, or a
// fatal submission error occurs. Returns nil on every normal exit; a
// non-nil error is always fatal for the whole run.
func (w *worker) run(ctx context.Context) error {
	retries := 0

	for {
		if ctx.Err() != nil {
			slog.Debug("Worker stopping: context canceled", slog.Int("worker", w.id))
			return nil
		}

		outcome, err := w.attempt(ctx, w.sizer.NextAmount())

		switch outcome {
		case attemptCommitted:
			retries = 0

		case attemptExhausted:
			slog.Info("Worker done: limits exhausted", slog.Int("worker", w.id))
			return nil

		case attemptTransient:
			delay := w.backoff.Delay(retries)
			retries++
			slog.Warn("Transient submit failure, backing off",
				slog.Int("worker", w.id),
				slog.Int("retry", retries),
				slog.Duration("delay", delay),
				slog.Any("error", err))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}

		case attemptFatal:
			slog.Error("Fatal submit failure, stopping run",
				slog.Int("worker", w.id),
				slog.Any("error", err))
			return err

		case attemptCanceled:
			return nil
		}
	}
}

// attempt performs one full transaction attempt. A reservation granted
// here is resolved before return on every path, including panics: the
// deferred release runs unless the commit succeeded.
func (w *worker) attempt(ctx context.Context, amount decimal.Decimal) (attemptOutcome, error) {
	ticket, ok := w.ledger.TryReserve(amount)
	if !ok {
		w.metrics.ReservationDenied()
		return attemptExhausted, nil
	}
	w.metrics.ReservationGranted()

	committed := false
	defer func() {
		if !committed {
			w.ledger.Release(ticket)
			w.metrics.ReleaseRecorded()
		}
	}()

	if w.pacer != nil {
		if err := w.pacer.Wait(ctx); err != nil {
			return attemptCanceled, err
		}
	}

	txFee := w.sampler.Sample()

	// The submission runs outside every ledger lock: only the ticket
	// holds the claim while the endpoint does its work.
	start := time.Now()
	rec, err := w.sub.Submit(ctx, submit.Request{Amount: amount, Fee: txFee})
	w.metrics.ObserveSubmit(time.Since(start))

	if err != nil {
		if ctx.Err() != nil {
			return attemptCanceled, err
		}
		if submit.IsTransient(err) {
			w.metrics.SubmitError("transient")
			return attemptTransient, err
		}
		w.metrics.SubmitError("fatal")
		return attemptFatal, err
	}

	w.ledger.Commit(ticket, rec.ActualAmount)
	committed = true
	w.metrics.CommitRecorded(rec.ActualAmount.InexactFloat64())

	slog.Debug("Transaction committed",
		slog.Int("worker", w.id),
		slog.String("ticket", ticket.ID()),
		slog.String("requested", amount.String()),
		slog.String("fee", txFee.String()),
		slog.String("actual", rec.ActualAmount.String()))

	// The collector drains this channel until after every worker has
	// exited, so a plain send cannot be lost on shutdown.
	w.receipts <- domain.Receipt{
		Worker:      w.id,
		Requested:   amount,
		Fee:         txFee,
		Actual:      rec.ActualAmount,
		Signature:   rec.Signature,
		TsUnixMicro: time.Now().UnixMicro(),
	}

	return attemptCommitted, nil
}
