package infra

import (
	"fmt"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with mode-specific warnings
// and the configured limits.
func PrintBanner(cfg *Config) {
	mode := cfg.Submit.Mode

	color := ColorGreen
	modeDesc := "SIMULATION"

	switch mode {
	case "REAL":
		color = ColorRed
		modeDesc = "REAL FUNDS"
	case "DEMO":
		color = ColorYellow
		modeDesc = "DEMO ENDPOINT (PLAY MONEY)"
	case "PAPER":
		color = ColorCyan
		modeDesc = "INTERNAL SIMULATION"
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#                 💸 tx-bot Budget Spender                #%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#   MODE:     %-35s #%s\n", color, mode, ColorReset)
	fmt.Printf("%s#   TYPE:     %-35s #%s\n", color, modeDesc, ColorReset)
	fmt.Printf("%s#   VERSION:  %-35s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Printf("%s#   BUDGET:   %-35s #%s\n", color, cfg.MaxTotal().String(), ColorReset)
	fmt.Printf("%s#   TX LIMIT: %-35d #%s\n", color, cfg.Spend.MaxTransactionCount, ColorReset)
	fmt.Printf("%s#   WORKERS:  %-35d #%s\n", color, cfg.Spend.WorkerCount, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)

	if mode == "REAL" {
		fmt.Printf("%s#   ⚠️  WARNING: YOU ARE SPENDING REAL FUNDS  ⚠️          #%s\n", ColorRed, ColorReset)
		fmt.Printf("%s#   VERIFY THE BUDGET AND LIMITS BEFORE CONTINUING        #%s\n", ColorRed, ColorReset)
	}

	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
