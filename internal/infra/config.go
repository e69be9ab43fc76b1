package infra

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/qqrm/tx-bot/pkg/money"
)

// Config holds the full runtime configuration of the spender.
// Monetary values are carried as strings in yaml and parsed into exact
// decimals by Validate. Environment variables override file values.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Spend struct {
		MaxTotalAmount       string `yaml:"max_total_amount"`
		PerTransactionAmount string `yaml:"per_transaction_amount"`
		MaxTransactionCount  int64  `yaml:"max_transaction_count"`
		WorkerCount          int    `yaml:"worker_count"`
		FeeMin               string `yaml:"fee_min"`
		FeeMax               string `yaml:"fee_max"`
		Seed                 int64  `yaml:"seed"` // 0 = derive from clock
	} `yaml:"spend"`

	Submit struct {
		Mode          string  `yaml:"mode"` // PAPER, DEMO or REAL
		Endpoint      string  `yaml:"endpoint"`
		DemoEndpoint  string  `yaml:"demo_endpoint"`
		TimeoutSec    int     `yaml:"timeout_sec"`
		RatePerSecond float64 `yaml:"rate_per_second"` // 0 = unpaced
		Burst         int     `yaml:"burst"`

		Breaker struct {
			Enabled          bool `yaml:"enabled"`
			FailureThreshold int  `yaml:"failure_threshold"`
			SuccessThreshold int  `yaml:"success_threshold"`
			CooldownSec      int  `yaml:"cooldown_sec"`
		} `yaml:"breaker"`
	} `yaml:"submit"`

	Wallet struct {
		Address   string `yaml:"address"`
		Token     string `yaml:"token"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"wallet"`

	Storage struct {
		KeepReports int `yaml:"keep_reports"`
	} `yaml:"storage"`

	Debug struct {
		Addr string `yaml:"addr"` // pprof + metrics listener
	} `yaml:"debug"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text or json
	} `yaml:"logging"`

	// Decimal forms of the amount strings, filled by Validate.
	maxTotal decimal.Decimal
	perTx    decimal.Decimal
	feeMin   decimal.Decimal
	feeMax   decimal.Decimal
}

// LoadConfig reads, overrides, validates and finalizes the configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Security warning before env overrides: a signing secret belongs in
	// the environment or the secrets file, not in the main config.
	if cfg.Wallet.SecretKey != "" {
		fmt.Println("⚠️  SECURITY WARNING: wallet secret key found in config file.")
		fmt.Println("   Recommendation: use the TXBOT_SECRET_KEY environment variable instead.")
	}

	cfg.applyDefaults()

	if err := cfg.overrideWithEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.clampWorkers()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "tx-bot"
	}
	if c.Submit.Mode == "" {
		c.Submit.Mode = "PAPER"
	}
	if c.Submit.TimeoutSec == 0 {
		c.Submit.TimeoutSec = 10
	}
	if c.Submit.RatePerSecond > 0 && c.Submit.Burst == 0 {
		c.Submit.Burst = 1
	}
	if c.Submit.Breaker.Enabled {
		if c.Submit.Breaker.FailureThreshold == 0 {
			c.Submit.Breaker.FailureThreshold = 5
		}
		if c.Submit.Breaker.SuccessThreshold == 0 {
			c.Submit.Breaker.SuccessThreshold = 2
		}
		if c.Submit.Breaker.CooldownSec == 0 {
			c.Submit.Breaker.CooldownSec = 30
		}
	}
	if c.Storage.KeepReports == 0 {
		c.Storage.KeepReports = 10
	}
	if c.Debug.Addr == "" {
		c.Debug.Addr = "localhost:6060"
	}
}

// overrideWithEnv applies the environment variables the original spender
// grew up with. COMMISSION/COMMISSION_CHANGE describe the fee range as
// center and spread and are mapped onto fee_min/fee_max.
func (c *Config) overrideWithEnv() error {
	if v := os.Getenv("WALLET"); v != "" {
		c.Wallet.Address = v
	}
	if v := os.Getenv("TOKEN"); v != "" {
		c.Wallet.Token = v
	}
	if v := os.Getenv("TXBOT_SECRET_KEY"); v != "" {
		c.Wallet.SecretKey = v
	}
	if v := os.Getenv("TOTAL_AMOUNT"); v != "" {
		c.Spend.MaxTotalAmount = v
	}
	if v := os.Getenv("PRICE"); v != "" {
		c.Spend.PerTransactionAmount = v
	}
	if v := os.Getenv("MAX_TRANSACTIONS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_TRANSACTIONS: %w", err)
		}
		c.Spend.MaxTransactionCount = n
	}
	if v := os.Getenv("MAX_THREADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_THREADS: %w", err)
		}
		c.Spend.WorkerCount = n
	}

	if v := os.Getenv("COMMISSION"); v != "" {
		center, err := money.ParseNonNegative(v)
		if err != nil {
			return fmt.Errorf("COMMISSION: %w", err)
		}
		change := decimal.Zero
		if cv := os.Getenv("COMMISSION_CHANGE"); cv != "" {
			change, err = money.ParseNonNegative(cv)
			if err != nil {
				return fmt.Errorf("COMMISSION_CHANGE: %w", err)
			}
		}
		c.Spend.FeeMin = center.Sub(change).String()
		c.Spend.FeeMax = center.Add(change).String()
	}

	return nil
}

// Validate checks configuration validity and parses the amount strings.
func (c *Config) Validate() error {
	var err error

	if c.maxTotal, err = money.ParsePositive(c.Spend.MaxTotalAmount); err != nil {
		return fmt.Errorf("spend.max_total_amount: %w", err)
	}
	if c.perTx, err = money.ParsePositive(c.Spend.PerTransactionAmount); err != nil {
		return fmt.Errorf("spend.per_transaction_amount: %w", err)
	}
	if c.Spend.MaxTransactionCount <= 0 {
		return fmt.Errorf("spend.max_transaction_count must be positive, got %d", c.Spend.MaxTransactionCount)
	}
	if c.Spend.WorkerCount <= 0 {
		return fmt.Errorf("spend.worker_count must be positive, got %d", c.Spend.WorkerCount)
	}

	if c.Spend.FeeMin == "" {
		c.Spend.FeeMin = "0"
	}
	if c.Spend.FeeMax == "" {
		c.Spend.FeeMax = c.Spend.FeeMin
	}
	if c.feeMin, err = money.ParseNonNegative(c.Spend.FeeMin); err != nil {
		return fmt.Errorf("spend.fee_min: %w", err)
	}
	if c.feeMax, err = money.ParseNonNegative(c.Spend.FeeMax); err != nil {
		return fmt.Errorf("spend.fee_max: %w", err)
	}
	if c.feeMax.LessThan(c.feeMin) {
		return fmt.Errorf("spend.fee_max %s is below fee_min %s", c.feeMax, c.feeMin)
	}

	mode := strings.ToUpper(c.Submit.Mode)
	switch mode {
	case "PAPER":
	case "DEMO":
		if c.Submit.DemoEndpoint == "" {
			return fmt.Errorf("submit.demo_endpoint is required in DEMO mode")
		}
	case "REAL":
		if c.Submit.Endpoint == "" {
			return fmt.Errorf("submit.endpoint is required in REAL mode")
		}
	default:
		return fmt.Errorf("unknown submit mode: %s", c.Submit.Mode)
	}
	c.Submit.Mode = mode

	if c.Submit.TimeoutSec <= 0 {
		return fmt.Errorf("submit.timeout_sec must be positive, got %d", c.Submit.TimeoutSec)
	}
	if c.Submit.RatePerSecond < 0 {
		return fmt.Errorf("submit.rate_per_second must not be negative, got %f", c.Submit.RatePerSecond)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown logging format: %s", c.Logging.Format)
	}

	return nil
}

// clampWorkers caps the worker count at the CPU count, mirroring the
// original spender's behavior.
func (c *Config) clampWorkers() {
	if cpus := runtime.NumCPU(); c.Spend.WorkerCount > cpus {
		c.Spend.WorkerCount = cpus
	}
}

// MaxTotal returns the parsed total spend ceiling. Valid after Validate.
func (c *Config) MaxTotal() decimal.Decimal { return c.maxTotal }

// PerTx returns the parsed per-transaction amount. Valid after Validate.
func (c *Config) PerTx() decimal.Decimal { return c.perTx }

// FeeRange returns the parsed fee bounds. Valid after Validate.
func (c *Config) FeeRange() (min, max decimal.Decimal) {
	return c.feeMin, c.feeMax
}
