package submit

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/qqrm/tx-bot/internal/infra"
)

// Mode represents the submission mode.
type Mode string

const (
	ModePaper Mode = "PAPER"
	ModeDemo  Mode = "DEMO"
	ModeReal  Mode = "REAL"
)

// Pipeline is the wired submission stack for one run.
type Pipeline struct {
	Submitter Submitter

	signer  *Signer
	breaker *infra.CircuitBreaker
}

// NewPipeline builds the submitter for the configured mode and wraps it
// with the optional circuit breaker.
func NewPipeline(cfg *infra.Config) (*Pipeline, error) {
	mode := Mode(cfg.Submit.Mode)

	slog.Info("Initializing Submission Pipeline", "mode", mode)

	p := &Pipeline{}
	timeout := time.Duration(cfg.Submit.TimeoutSec) * time.Second

	switch mode {
	case ModePaper:
		p.Submitter = NewSimSubmitter(cfg.Wallet.Address, cfg.Wallet.Token)

	case ModeDemo:
		slog.Info("🔒 Connecting to DEMO endpoint (play money)")
		p.signer = NewSigner(cfg.Wallet.Address, cfg.Wallet.SecretKey)
		p.Submitter = NewRPCSubmitter(cfg.Submit.DemoEndpoint,
			cfg.Wallet.Address, cfg.Wallet.Token, p.signer, timeout)

	case ModeReal:
		// SAFETY LATCH CHECK
		if os.Getenv("CONFIRM_REAL_MONEY") != "true" {
			err := fmt.Errorf("SAFETY_GUARD: REAL mode requires 'CONFIRM_REAL_MONEY=true' environment variable")
			slog.Error(err.Error())
			panic(err) // Fail Fast
		}

		slog.Info("🚨🚨🚨 Submitting to REAL endpoint 🚨🚨🚨")
		p.signer = NewSigner(cfg.Wallet.Address, cfg.Wallet.SecretKey)
		p.Submitter = NewRPCSubmitter(cfg.Submit.Endpoint,
			cfg.Wallet.Address, cfg.Wallet.Token, p.signer, timeout)

	default:
		return nil, fmt.Errorf("unknown submit mode: %s", cfg.Submit.Mode)
	}

	if cfg.Submit.Breaker.Enabled {
		p.breaker = infra.NewCircuitBreaker("submit",
			cfg.Submit.Breaker.FailureThreshold,
			cfg.Submit.Breaker.SuccessThreshold,
			time.Duration(cfg.Submit.Breaker.CooldownSec)*time.Second)
		p.Submitter = NewBreakerSubmitter(p.Submitter, p.breaker)
		slog.Info("Circuit breaker armed",
			slog.Int("failure_threshold", cfg.Submit.Breaker.FailureThreshold),
			slog.Int("cooldown_sec", cfg.Submit.Breaker.CooldownSec))
	}

	return p, nil
}

// BreakerTrips returns how many times the breaker opened, 0 if disabled.
func (p *Pipeline) BreakerTrips() int64 {
	if p.breaker == nil {
		return 0
	}
	return p.breaker.Trips()
}

// Shutdown wipes key material held by the pipeline.
func (p *Pipeline) Shutdown() {
	if p.signer != nil {
		p.signer.Wipe()
	}
}
