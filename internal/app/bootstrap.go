// Package app wires configuration, storage, submission and the
// coordinator into a runnable spender.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/qqrm/tx-bot/internal/coordinator"
	"github.com/qqrm/tx-bot/internal/domain"
	"github.com/qqrm/tx-bot/internal/infra"
	"github.com/qqrm/tx-bot/internal/obs"
	"github.com/qqrm/tx-bot/internal/storage"
	"github.com/qqrm/tx-bot/internal/submit"
)

const secretsPath = "secrets/wallet.yaml"

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config   *infra.Config
	Journal  *storage.RunJournal
	Reports  *storage.ReportWriter
	Metrics  *obs.Metrics
	Pipeline *submit.Pipeline

	unlock func()
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger,
// workspace, journal, pipeline). configPath may be empty to use the
// default resolution order.
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping tx-bot...")

	// 1. Load Config (Dynamic Path Resolution)
	if configPath == "" {
		configPath = infra.ResolveConfigPath()
	}
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Merge wallet credentials from the secrets file, if present
	if _, err := os.Stat(secretsPath); err == nil {
		sc, err := infra.LoadSecretConfig(secretsPath)
		if err != nil {
			return err
		}
		cfg.MergeSecrets(sc)
		slog.Info("🔑 Wallet secrets loaded", "path", secretsPath)
	}
	if cfg.Submit.Mode != "PAPER" && cfg.Wallet.SecretKey == "" {
		return fmt.Errorf("%s mode requires a signing key (TXBOT_SECRET_KEY or %s)",
			cfg.Submit.Mode, secretsPath)
	}

	infra.PrintBanner(cfg)

	// 4. Workspace layout: _workspace/data/{mode} and _workspace/reports/{mode}
	mode := strings.ToLower(cfg.Submit.Mode)
	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data", mode)
	reportDir := filepath.Join(workDir, "reports", mode)

	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := infra.EnsureDir(reportDir); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	// 4.1 Singleton Instance Lock
	// A second spender against the same wallet would double-spend the
	// budget, so refuse to start while the lock is held.
	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	// 5. Run journal (Single-Writer WAL DB)
	dbPath := filepath.Join(dataDir, "journal.db")
	journal, err := storage.NewRunJournal(dbPath)
	if err != nil {
		return err
	}
	b.Journal = journal
	slog.Info("✅ Run journal initialized (WAL-mode)", "path", dbPath, "mode", mode)

	// 6. Report writer with retention
	b.Reports = storage.NewReportWriter(reportDir)

	// 7. Metrics registry
	b.Metrics = obs.NewMetrics()

	// 8. Submission pipeline for the configured mode
	pipeline, err := submit.NewPipeline(cfg)
	if err != nil {
		return err
	}
	b.Pipeline = pipeline
	slog.Info("✅ Submission pipeline ready", "mode", cfg.Submit.Mode)

	return nil
}

// Run executes one spend run end to end: journal begin, coordinator
// run, journal finish and verification, report export and display.
func (b *Bootstrap) Run(ctx context.Context) (domain.FinalReport, error) {
	cfg := b.Config

	feeMin, feeMax := cfg.FeeRange()
	limit := domain.SpendLimit{
		MaxTotalAmount:      cfg.MaxTotal(),
		MaxTransactionCount: cfg.Spend.MaxTransactionCount,
		FeeMin:              feeMin,
		FeeMax:              feeMax,
	}

	var pacer *infra.RateLimiter
	if cfg.Submit.RatePerSecond > 0 {
		pacer = infra.NewRateLimiter(cfg.Submit.Burst, cfg.Submit.RatePerSecond)
	}

	// Journaling runs on a background context: a canceled run must
	// still record every commit that made it onto the books.
	var runID string
	coord := coordinator.New(coordinator.Options{
		Limit:       limit,
		Sizer:       coordinator.NewFixedSizer(cfg.PerTx()),
		Submitter:   b.Pipeline.Submitter,
		WorkerCount: cfg.Spend.WorkerCount,
		Seed:        cfg.Spend.Seed,
		Mode:        cfg.Submit.Mode,
		Pacer:       pacer,
		Backoff:     infra.DefaultBackoff(),
		Metrics:     b.Metrics,
		OnCommit: func(r domain.Receipt) {
			if err := b.Journal.RecordCommit(context.Background(), runID, r); err != nil {
				slog.Error("Failed to journal commit",
					slog.Int64("seq", r.Seq),
					slog.Any("error", err))
			}
		},
	})
	runID = coord.RunID()

	if err := b.Journal.BeginRun(ctx, runID, cfg.Submit.Mode, limit); err != nil {
		return domain.FinalReport{}, err
	}

	rep, err := coord.Run(ctx)
	if err != nil {
		return rep, err
	}

	if err := b.Journal.FinishRun(context.Background(), &rep); err != nil {
		slog.Error("Failed to finish run in journal", slog.Any("error", err))
	} else if err := b.Journal.VerifyRun(context.Background(), runID); err != nil {
		// The report still stands; the journal needs attention.
		slog.Error("Run journal verification FAILED", slog.Any("error", err))
	}

	if _, err := b.Reports.Save(&rep); err != nil {
		slog.Error("Failed to save report", slog.Any("error", err))
	}
	if err := b.Reports.Cleanup(cfg.Storage.KeepReports); err != nil {
		slog.Warn("Report cleanup failed", slog.Any("error", err))
	}

	if trips := b.Pipeline.BreakerTrips(); trips > 0 {
		slog.Warn("Circuit breaker tripped during run", slog.Int64("trips", trips))
	}

	b.displayResults(rep)

	return rep, nil
}

// displayResults prints the numbered transaction signatures.
func (b *Bootstrap) displayResults(rep domain.FinalReport) {
	slog.Info("Transaction Signatures:")
	for _, r := range rep.Receipts {
		fmt.Printf("%d. %s\n", r.Seq, r.Signature)
	}
}

// Shutdown releases everything Initialize acquired.
func (b *Bootstrap) Shutdown() {
	if b.Pipeline != nil {
		b.Pipeline.Shutdown()
	}
	if b.Journal != nil {
		if err := b.Journal.Close(); err != nil {
			slog.Warn("Failed to close journal", slog.Any("error", err))
		}
	}
	if b.unlock != nil {
		b.unlock()
	}
}
