package infra

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
app:
  name: tx-bot
  version: 1.0.0
spend:
  max_total_amount: "100"
  per_transaction_amount: "30"
  max_transaction_count: 10
  worker_count: 1
  fee_min: "0.01"
  fee_max: "0.05"
submit:
  mode: PAPER
`

func TestLoadConfig_Minimal(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Submit.Mode != "PAPER" {
		t.Errorf("expected mode PAPER, got %s", cfg.Submit.Mode)
	}
	if cfg.MaxTotal().String() != "100" {
		t.Errorf("expected max total 100, got %s", cfg.MaxTotal())
	}
	if cfg.PerTx().String() != "30" {
		t.Errorf("expected per-tx 30, got %s", cfg.PerTx())
	}

	min, max := cfg.FeeRange()
	if min.String() != "0.01" || max.String() != "0.05" {
		t.Errorf("expected fee range [0.01, 0.05], got [%s, %s]", min, max)
	}

	// Defaults filled in
	if cfg.Submit.TimeoutSec != 10 {
		t.Errorf("expected default timeout 10s, got %d", cfg.Submit.TimeoutSec)
	}
	if cfg.Storage.KeepReports != 10 {
		t.Errorf("expected default keep_reports 10, got %d", cfg.Storage.KeepReports)
	}
	if cfg.Debug.Addr != "localhost:6060" {
		t.Errorf("expected default debug addr, got %s", cfg.Debug.Addr)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WALLET", "wallet-from-env")
	t.Setenv("TOKEN", "token-from-env")
	t.Setenv("TOTAL_AMOUNT", "250.5")
	t.Setenv("PRICE", "12.25")
	t.Setenv("MAX_TRANSACTIONS", "7")

	cfg, err := LoadConfig(writeConfigFile(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Wallet.Address != "wallet-from-env" {
		t.Errorf("WALLET override not applied, got %s", cfg.Wallet.Address)
	}
	if cfg.Wallet.Token != "token-from-env" {
		t.Errorf("TOKEN override not applied, got %s", cfg.Wallet.Token)
	}
	if cfg.MaxTotal().String() != "250.5" {
		t.Errorf("TOTAL_AMOUNT override not applied, got %s", cfg.MaxTotal())
	}
	if cfg.PerTx().String() != "12.25" {
		t.Errorf("PRICE override not applied, got %s", cfg.PerTx())
	}
	if cfg.Spend.MaxTransactionCount != 7 {
		t.Errorf("MAX_TRANSACTIONS override not applied, got %d", cfg.Spend.MaxTransactionCount)
	}
}

func TestLoadConfig_CommissionMapsToFeeRange(t *testing.T) {
	t.Setenv("COMMISSION", "0.3")
	t.Setenv("COMMISSION_CHANGE", "0.1")

	cfg, err := LoadConfig(writeConfigFile(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	min, max := cfg.FeeRange()
	if min.String() != "0.2" {
		t.Errorf("expected fee_min 0.2 (center - spread), got %s", min)
	}
	if max.String() != "0.4" {
		t.Errorf("expected fee_max 0.4 (center + spread), got %s", max)
	}
}

func TestLoadConfig_CommissionWithoutSpreadIsFixedFee(t *testing.T) {
	t.Setenv("COMMISSION", "0.25")

	cfg, err := LoadConfig(writeConfigFile(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	min, max := cfg.FeeRange()
	if !min.Equal(max) {
		t.Errorf("expected fixed fee, got range [%s, %s]", min, max)
	}
	if min.String() != "0.25" {
		t.Errorf("expected fee 0.25, got %s", min)
	}
}

func TestLoadConfig_WorkerClamp(t *testing.T) {
	t.Setenv("MAX_THREADS", "100000")

	cfg, err := LoadConfig(writeConfigFile(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Spend.WorkerCount != runtime.NumCPU() {
		t.Errorf("expected worker count clamped to %d CPUs, got %d",
			runtime.NumCPU(), cfg.Spend.WorkerCount)
	}
}

func TestLoadConfig_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s string) string
		wantErr string
	}{
		{
			name:    "zero budget",
			mutate:  func(s string) string { return strings.Replace(s, `max_total_amount: "100"`, `max_total_amount: "0"`, 1) },
			wantErr: "max_total_amount",
		},
		{
			name:    "negative per-tx",
			mutate:  func(s string) string { return strings.Replace(s, `per_transaction_amount: "30"`, `per_transaction_amount: "-1"`, 1) },
			wantErr: "per_transaction_amount",
		},
		{
			name:    "zero count",
			mutate:  func(s string) string { return strings.Replace(s, "max_transaction_count: 10", "max_transaction_count: 0", 1) },
			wantErr: "max_transaction_count",
		},
		{
			name:    "zero workers",
			mutate:  func(s string) string { return strings.Replace(s, "worker_count: 1", "worker_count: 0", 1) },
			wantErr: "worker_count",
		},
		{
			name:    "inverted fee range",
			mutate:  func(s string) string { return strings.Replace(s, `fee_min: "0.01"`, `fee_min: "0.5"`, 1) },
			wantErr: "fee_max",
		},
		{
			name:    "unknown mode",
			mutate:  func(s string) string { return strings.Replace(s, "mode: PAPER", "mode: YOLO", 1) },
			wantErr: "unknown submit mode",
		},
		{
			name:    "real mode without endpoint",
			mutate:  func(s string) string { return strings.Replace(s, "mode: PAPER", "mode: REAL", 1) },
			wantErr: "endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.mutate(minimalYAML)))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_EmptyFeeRangeDefaultsToZero(t *testing.T) {
	body := strings.Replace(minimalYAML, `  fee_min: "0.01"`+"\n", "", 1)
	body = strings.Replace(body, `  fee_max: "0.05"`+"\n", "", 1)

	cfg, err := LoadConfig(writeConfigFile(t, body))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	min, max := cfg.FeeRange()
	if !min.IsZero() || !max.IsZero() {
		t.Errorf("expected zero fee range, got [%s, %s]", min, max)
	}
}

func TestConfig_MergeSecrets(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	sc := &SecretConfig{}
	sc.Wallet.Address = "secret-wallet"
	sc.Wallet.Token = "secret-token"
	sc.Wallet.SecretKey = "secret-key"

	cfg.MergeSecrets(sc)

	if cfg.Wallet.Address != "secret-wallet" {
		t.Errorf("expected address from secrets, got %s", cfg.Wallet.Address)
	}
	if cfg.Wallet.SecretKey != "secret-key" {
		t.Errorf("expected secret key from secrets, got %s", cfg.Wallet.SecretKey)
	}

	// Existing values win over secrets
	cfg.Wallet.Address = "explicit"
	cfg.MergeSecrets(sc)
	if cfg.Wallet.Address != "explicit" {
		t.Errorf("expected explicit address preserved, got %s", cfg.Wallet.Address)
	}
}
