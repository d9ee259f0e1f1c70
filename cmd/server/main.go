package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Adikumaw/elastic-dca-trader/internal/api"
	"github.com/Adikumaw/elastic-dca-trader/internal/engine"
	"github.com/Adikumaw/elastic-dca-trader/internal/infra"
	"github.com/Adikumaw/elastic-dca-trader/internal/store"
)

func main() {
	// 1. System Bootstrapping
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	st, err := store.Open(cfg.Store.StatePath)
	if err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	if st.Fresh() {
		if err := st.SeedSettings(cfg.ToUserSettings()); err != nil {
			slog.Error("bootstrapping failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	ledger, err := store.OpenLedger(cfg.Store.LedgerPath)
	if err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := infra.NewMetrics()

	eng := engine.NewEngine(st, ledger, metrics, logger)

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Sequencer (hotpath loop)
	go eng.Run(ctx)
	slog.InfoContext(ctx, "decision engine started")

	// 4. HTTP surface
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler: api.NewRouter(api.NewServer(eng.Inbox(), st, ledger, cfg.App.Version)),
	}

	go func() {
		slog.InfoContext(ctx, "http server started", slog.Int("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server failed", slog.Any("error", err))
		}
	}()

	<-ctx.Done()
	slog.InfoContext(ctx, "shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", slog.Any("error", err))
	}
}
