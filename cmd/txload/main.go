package main

// Load harness: drives a full spend run against the in-process
// simulator under heavy worker contention, then audits the books.

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qqrm/tx-bot/internal/coordinator"
	"github.com/qqrm/tx-bot/internal/domain"
	"github.com/qqrm/tx-bot/internal/submit"
	"github.com/qqrm/tx-bot/pkg/money"
)

func main() {
	var (
		budget    = flag.String("budget", "5000", "total spend budget")
		perTx     = flag.String("per-tx", "7.25", "amount per transaction")
		count     = flag.Int64("count", 1000, "transaction count limit")
		workers   = flag.Int("workers", 16, "concurrent workers")
		latency   = flag.Duration("latency", 2*time.Millisecond, "simulated endpoint latency")
		failEvery = flag.Int64("fail-every", 9, "inject a transient failure every Nth submission (0 = never)")
		feeMin    = flag.String("fee-min", "0.05", "fee range lower bound")
		feeMax    = flag.String("fee-max", "0.45", "fee range upper bound")
		seed      = flag.Int64("seed", 0, "fee sampling seed (0 = clock)")
	)
	flag.Parse()

	// Keep worker chatter off the report; only errors get through.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))

	limit := domain.SpendLimit{
		MaxTotalAmount:      mustParse("budget", *budget),
		MaxTransactionCount: *count,
		FeeMin:              mustParse("fee-min", *feeMin),
		FeeMax:              mustParse("fee-max", *feeMax),
	}
	per := mustParse("per-tx", *perTx)

	sim := submit.NewSimSubmitter("load-wallet", "LOAD")
	sim.SetLatency(*latency)

	var submissions int64
	every := *failEvery
	sim.SetFailureFn(func() bool {
		n := atomic.AddInt64(&submissions, 1)
		return every > 0 && n%every == 0
	})

	coord := coordinator.New(coordinator.Options{
		Limit:       limit,
		Sizer:       coordinator.NewFixedSizer(per),
		Submitter:   sim,
		WorkerCount: *workers,
		Seed:        *seed,
		Mode:        "PAPER",
	})

	start := time.Now()
	rep, err := coord.Run(context.Background())
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed to start: %v\n", err)
		os.Exit(1)
	}

	attempts := atomic.LoadInt64(&submissions)
	retried := attempts - int64(len(rep.Receipts))

	// Audit the receipts against the report totals.
	sumOK := true
	seqOK := true
	requested := decimal.Zero
	actual := decimal.Zero
	for i, r := range rep.Receipts {
		if r.Seq != int64(i)+1 {
			seqOK = false
		}
		requested = requested.Add(r.Requested)
		actual = actual.Add(r.Actual)
	}
	if !actual.Equal(rep.CommittedAmount) {
		sumOK = false
	}
	budgetOK := requested.LessThanOrEqual(limit.MaxTotalAmount)
	countOK := rep.CommittedCount <= *count

	perSec := float64(rep.CommittedCount) / elapsed.Seconds()

	fmt.Println("=== tx-bot Spend Run Load Test ===")
	fmt.Printf("duration: %s, workers: %d, reason: %s\n", elapsed.Round(time.Millisecond), *workers, rep.Reason)
	fmt.Printf("committed_count:   %d\n", rep.CommittedCount)
	fmt.Printf("committed_amount:  %s\n", rep.CommittedAmount)
	fmt.Printf("budget:            %s\n", limit.MaxTotalAmount)
	fmt.Printf("submissions:       %d\n", attempts)
	fmt.Printf("transient_retries: %d\n", retried)
	fmt.Printf("throughput:        %.0f tx/s\n", perSec)
	fmt.Printf("receipt_sum_matches:     %v\n", sumOK)
	fmt.Printf("seq_contiguous:          %v\n", seqOK)
	fmt.Printf("requested_within_budget: %v\n", budgetOK)
	fmt.Printf("count_within_limit:      %v\n", countOK)

	// Requested spend must never pass the budget no matter how many
	// workers race; actual spend may, because fees land on top.
	if !sumOK || !seqOK || !budgetOK || !countOK {
		fmt.Fprintln(os.Stderr, "LOAD TEST FAILED: ledger audit mismatch")
		os.Exit(1)
	}
}

func mustParse(name, s string) decimal.Decimal {
	d, err := money.Parse(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -%s: %v\n", name, err)
		os.Exit(2)
	}
	return d
}
