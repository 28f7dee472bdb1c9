package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mhabib/tradefloor/internal/config"
	"github.com/mhabib/tradefloor/internal/monitor"
	"github.com/mhabib/tradefloor/internal/report"
	"github.com/mhabib/tradefloor/internal/session"
	"github.com/mhabib/tradefloor/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty uses built-in defaults)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting simulator",
		"version", version.String(),
		"config", *configPath,
	)

	// Load configuration
	var cfg *config.SimulatorConfig
	if *configPath != "" {
		loaded, err := config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"stocks", len(cfg.Stocks),
		"traders", len(cfg.Traders),
		"seed", cfg.Seed,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	sess, err := session.New(cfg, logger)
	if err != nil {
		logger.Error("failed to build session", "error", err)
		os.Exit(1)
	}

	if err := sess.Start(ctx); err != nil {
		logger.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	// Optional status endpoint
	var statusServer *http.Server
	if cfg.Status.Port > 0 {
		statusServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Status.Port),
			Handler: createStatusHandler(sess),
		}
		go func() {
			logger.Info("starting status server", "port", cfg.Status.Port)
			if err := statusServer.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error("status server error", "error", err)
			}
		}()
	}

	// Drive the run from the terminal until stop, EOF, timeout, or a signal.
	mon := monitor.New(sess, cfg.Monitor, os.Stdin, os.Stdout, logger)
	if err := mon.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("monitor error", "error", err)
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if statusServer != nil {
		statusServer.Shutdown(shutdownCtx)
	}

	if err := sess.Close(shutdownCtx); err != nil {
		logger.Warn("session close reported errors", "error", err)
	}

	// End-of-run report
	fmt.Println(report.FinalReport(sess.Quotes(), sess.TraderRows(), sess.StatsSummary()))

	logger.Info("simulator stopped", "run_id", sess.RunID())
}

// createStatusHandler serves the machine-readable run status.
func createStatusHandler(sess *session.Session) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sess.Status())
	})

	mux.HandleFunc("/quotes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sess.Quotes())
	})

	return mux
}
