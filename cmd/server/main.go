/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the LedgerFlow earnings-ledger server. Handles
  configuration, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Open the SQLite gateway
  3. Load the ledger (falls back to empty + defaults on a corrupt store)
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  -port    HTTP server port (default: 8080, env LEDGERFLOW_PORT)
  -db      SQLite database path (default: ledgerflow.db, env LEDGERFLOW_DB)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - ledger/ledger.go: Domain logic
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/ledgerflow/api"
	"github.com/warp/ledgerflow/ledger"
	"github.com/warp/ledgerflow/store/sqlite"
)

func main() {
	// .env is optional; flags override env.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("LEDGERFLOW_PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("LEDGERFLOW_DB", "ledgerflow.db"), "SQLite database path")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Initialize gateway
	gw, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer gw.Close()

	// Load ledger; a broken store degrades to an empty ledger with
	// default settings rather than refusing to start.
	led, err := ledger.Load(context.Background(), gw)
	if err != nil {
		logger.Warn("failed to load persisted state, starting empty with defaults", "error", err)
	}

	// Create router
	handler := api.NewHandler(led)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "addr", fmt.Sprintf("http://localhost:%d", *port), "db", *dbPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
