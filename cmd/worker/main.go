package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/app"
	"github.com/riskibarqy/game-reconciler/internal/config"
	"github.com/riskibarqy/game-reconciler/internal/observability"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
)

const (
	jobTimeout      = 10 * time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("worker stopped with error", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("pyroscope stop failed", "error", err)
		}
	}()

	rt, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("runtime close failed", "error", err)
		}
	}()

	scheduler := app.NewScheduler(jobTimeout, logger)
	// No live play feed is linked into this binary yet.
	if err := rt.ScheduleJobs(scheduler, nil); err != nil {
		return err
	}

	debugSrv, err := observability.StartDebugServer(cfg, logger, map[string]http.Handler{
		"/debug/jobs": scheduler.StatusHandler(),
	})
	if err != nil {
		return fmt.Errorf("start debug server: %w", err)
	}

	scheduler.Start(ctx)
	logger.Info("worker started",
		"store_driver", cfg.StoreDriver,
		"leagues", rt.Registry.Codes(),
		"sweep_cron", cfg.SweepCron,
		"diagnostics_cron", cfg.DiagnosticsCron,
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	scheduler.Stop(shutdownTimeout)
	if err := observability.StopDebugServer(debugSrv, logger, 5*time.Second); err != nil {
		logger.Warn("debug server shutdown failed", "error", err)
	}

	logger.Info("worker stopped")
	return nil
}
