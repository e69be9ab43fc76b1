// Package coordinator orchestrates a spend run: it spawns workers over
// a shared ledger and turns their combined work into a final report.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qqrm/tx-bot/internal/domain"
	"github.com/qqrm/tx-bot/internal/fee"
	"github.com/qqrm/tx-bot/internal/infra"
	"github.com/qqrm/tx-bot/internal/ledger"
	"github.com/qqrm/tx-bot/internal/obs"
	"github.com/qqrm/tx-bot/internal/submit"
)

// Options wires a coordinator. Limit, Sizer, Submitter and WorkerCount
// are required; the rest default sensibly.
type Options struct {
	Limit       domain.SpendLimit
	Sizer       SizingPolicy
	Submitter   submit.Submitter
	WorkerCount int
	Seed        int64  // 0 derives from the clock; worker k samples with Seed+k
	Mode        string // recorded in the report

	Pacer   *infra.RateLimiter // optional submission pacing
	Backoff infra.Backoff      // zero value selects DefaultBackoff
	Metrics *obs.Metrics       // optional

	// OnCommit is invoked from the collector goroutine for every commit,
	// sequentially and in commit order. Used for journaling.
	OnCommit func(domain.Receipt)
}

// Coordinator owns one spend run.
type Coordinator struct {
	opts   Options
	runID  string
	ledger *ledger.Ledger
}

// New creates a coordinator for a single run. Option validation happens
// in Run, before any worker spawns.
func New(opts Options) *Coordinator {
	if opts.Backoff == (infra.Backoff{}) {
		opts.Backoff = infra.DefaultBackoff()
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	return &Coordinator{
		opts:   opts,
		runID:  uuid.NewString(),
		ledger: ledger.NewLedger(opts.Limit),
	}
}

// RunID returns the identifier of this run.
func (c *Coordinator) RunID() string { return c.runID }

// Status returns the live ledger snapshot.
func (c *Coordinator) Status() ledger.Status { return c.ledger.Status() }

// Run executes the spend run and blocks until every worker has stopped
// and every receipt is collected. Configuration errors are returned
// directly; submission failures come back inside the report with reason
// FATAL_ERROR.
func (c *Coordinator) Run(ctx context.Context) (domain.FinalReport, error) {
	if c.opts.WorkerCount <= 0 {
		return domain.FinalReport{}, fmt.Errorf("worker count must be positive, got %d", c.opts.WorkerCount)
	}
	if c.opts.Submitter == nil {
		return domain.FinalReport{}, fmt.Errorf("no submitter configured")
	}
	if c.opts.Sizer == nil {
		return domain.FinalReport{}, fmt.Errorf("no sizing policy configured")
	}
	if err := c.opts.Limit.Validate(); err != nil {
		return domain.FinalReport{}, fmt.Errorf("invalid limits: %w", err)
	}

	// Per-worker samplers, independently seeded so workers never share
	// generator state.
	samplers := make([]*fee.Sampler, c.opts.WorkerCount)
	for i := range samplers {
		s, err := fee.NewSampler(c.opts.Limit.FeeMin, c.opts.Limit.FeeMax, c.opts.Seed+int64(i)+1)
		if err != nil {
			return domain.FinalReport{}, fmt.Errorf("fee sampler: %w", err)
		}
		samplers[i] = s
	}

	start := time.Now()
	slog.Info("🚀 Spend run starting",
		slog.String("run_id", c.runID),
		slog.String("mode", c.opts.Mode),
		slog.Int("workers", c.opts.WorkerCount),
		slog.String("budget", c.opts.Limit.MaxTotalAmount.String()),
		slog.Int64("max_count", c.opts.Limit.MaxTransactionCount))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	chanCap := int(c.opts.Limit.MaxTransactionCount)
	if chanCap > 1024 {
		chanCap = 1024
	}
	receipts := make(chan domain.Receipt, chanCap)

	// Single collector goroutine assigns the global commit order and
	// feeds the journal hook. It drains the channel until every worker
	// has exited, so worker sends are never lost.
	collected := make([]domain.Receipt, 0, chanCap)
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		var seq int64
		for rec := range receipts {
			seq++
			rec.Seq = seq
			collected = append(collected, rec)
			if c.opts.OnCommit != nil {
				c.opts.OnCommit(rec)
			}
		}
	}()

	var (
		wg        sync.WaitGroup
		fatalOnce sync.Once
		fatalErr  error
	)

	for i := 1; i <= c.opts.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			w := &worker{
				id:       id,
				ledger:   c.ledger,
				sizer:    c.opts.Sizer,
				sampler:  samplers[id-1],
				sub:      c.opts.Submitter,
				pacer:    c.opts.Pacer,
				backoff:  c.opts.Backoff,
				metrics:  c.opts.Metrics,
				receipts: receipts,
			}

			if err := w.run(runCtx); err != nil {
				// First fatal error wins and stops the siblings.
				fatalOnce.Do(func() {
					fatalErr = err
					cancel()
				})
			}
		}(i)
	}

	wg.Wait()
	close(receipts)
	<-collectorDone

	c.ledger.VerifyInvariant()

	st := c.ledger.Status()
	report := domain.FinalReport{
		RunID:           c.runID,
		Mode:            c.opts.Mode,
		CommittedAmount: st.CommittedAmount,
		CommittedCount:  st.CommittedCount,
		Reason:          c.deriveReason(fatalErr, st),
		Err:             fatalErr,
		Receipts:        collected,
		Elapsed:         time.Since(start),
	}
	if fatalErr != nil {
		report.ErrText = fatalErr.Error()
	}

	slog.Info("🏁 Spend run finished",
		slog.String("run_id", c.runID),
		slog.String("reason", report.Reason.String()),
		slog.String("committed", report.CommittedAmount.String()),
		slog.Int64("count", report.CommittedCount),
		slog.Duration("elapsed", report.Elapsed))

	return report, nil
}

// deriveReason explains why the run stopped. A fatal error outranks
// exhaustion, exhaustion outranks cancellation.
func (c *Coordinator) deriveReason(fatalErr error, st ledger.Status) domain.Reason {
	switch {
	case fatalErr != nil:
		return domain.ReasonFatalError
	case st.CommittedCount >= c.opts.Limit.MaxTransactionCount:
		return domain.ReasonCountExhausted
	case st.RemainingAmount.LessThan(c.opts.Sizer.NextAmount()):
		return domain.ReasonBudgetExhausted
	default:
		return domain.ReasonCancelled
	}
}
