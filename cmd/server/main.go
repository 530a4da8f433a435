/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the refund eligibility HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, YAML, .env, environment, flags)
  2. Initialize logger
  3. Initialize SQLite store
  4. Install the default policy (standard, or from a policy file)
  5. Configure HTTP router and retention scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file (optional)
  -port    HTTP server port, overrides config
  -db      SQLite database path, overrides config
           Use ":memory:" for in-memory database
  -policy  JSON or YAML policy file, overrides config

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the retention scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/refunds.db"

  # Run with a custom policy
  ./server -policy=policies/lenient.yaml

ENVIRONMENT:
  See config/config.go for the REFUND_* variables.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/refund-engine/api"
	"github.com/warp/refund-engine/config"
	"github.com/warp/refund-engine/factory"
	"github.com/warp/refund-engine/logger"
	"github.com/warp/refund-engine/refund"
	"github.com/warp/refund-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	policyFile := flag.String("policy", "", "Policy file, JSON or YAML (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *policyFile != "" {
		cfg.Engine.PolicyFile = *policyFile
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	policy := refund.StandardPolicy()
	if cfg.Engine.PolicyFile != "" {
		policy, err = factory.NewPolicyFactory().LoadPolicyFile(cfg.Engine.PolicyFile)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
	}

	// Initialize handler
	handler := api.NewHandler(store, log)
	handler.Workers = cfg.Engine.Workers

	// Load existing policies into cache
	ctx := context.Background()
	if err := handler.LoadPolicies(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to load stored policies")
	}
	if err := handler.InstallPolicy(ctx, policy); err != nil {
		return fmt.Errorf("install policy: %w", err)
	}

	retention := api.NewRetentionScheduler(store, cfg.Retention.Schedule, cfg.Retention.Days, log)
	if err := retention.Start(); err != nil {
		return fmt.Errorf("start retention: %w", err)
	}
	defer retention.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(handler, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("db", cfg.Database.Path).
			Str("policy_id", policy.ID).
			Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
