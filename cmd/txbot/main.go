package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qqrm/tx-bot/internal/app"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", "", "config file path (empty = auto-resolve)")
	flag.Parse()

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Debug Server (pprof + metrics)
	if addr := bootstrap.Config.Debug.Addr; addr != "" {
		go func() {
			// Localhost only for security
			http.Handle("/metrics", promhttp.Handler())
			slog.Info("🕵️ Debug server started", slog.String("addr", addr))
			if err := http.ListenAndServe(addr, nil); err != nil {
				slog.Error("Debug server failed", slog.Any("error", err))
			}
		}()
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Spend Run
	rep, err := bootstrap.Run(ctx)
	bootstrap.Shutdown()

	if err != nil {
		slog.Error("❌ Spend run failed to start", slog.Any("error", err))
		os.Exit(1)
	}
	if rep.Failed() {
		slog.Error("Run finished with a fatal error", slog.String("detail", rep.ErrText))
		os.Exit(1)
	}

	slog.Info("👋 Done.",
		slog.String("reason", rep.Reason.String()),
		slog.String("spent", rep.CommittedAmount.String()),
		slog.Int64("transactions", rep.CommittedCount))
}
