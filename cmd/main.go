package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hasbulkhan45/MoneyManager/internal/config"
	"github.com/hasbulkhan45/MoneyManager/internal/httpapi"
	"github.com/hasbulkhan45/MoneyManager/internal/notify"
	"github.com/hasbulkhan45/MoneyManager/internal/storage/memory"
	pgstore "github.com/hasbulkhan45/MoneyManager/internal/storage/postgres"
	"github.com/hasbulkhan45/MoneyManager/internal/storage/snapshot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := buildLogger(cfg)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(ctx)

	var store httpapi.Store
	var closeFn func()
	currency := cfg.Currency
	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL, cfg.Currency)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = pg.Close
		store = pg
		logger.Info("storage backend: postgres")
	case cfg.SnapshotPath != "":
		snap, err := snapshot.Open(cfg.SnapshotPath, cfg.Currency, logger)
		if err != nil {
			logger.Error("failed to open snapshot file", "err", err, "path", cfg.SnapshotPath)
			os.Exit(1)
		}
		g.Go(func() error { return snap.Run(ctx) })
		store = snap
		// An existing file stays in the currency it was written with.
		currency = snap.Currency()
		logger.Info("storage backend: snapshot", "path", cfg.SnapshotPath, "currency", currency)
	default:
		store = memory.New()
		logger.Info("storage backend: memory")
	}

	scheduler := notify.NewScheduler(logger, nil)
	g.Go(func() error { return scheduler.Run(ctx) })

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(store, scheduler, logger, currency, cfg.DefaultBillWallet).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		logger.Info("money manager listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", "err", err)
	}
	scheduler.Stop()
	if closeFn != nil {
		closeFn()
	}
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	if strings.ToLower(cfg.LogFormat) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
