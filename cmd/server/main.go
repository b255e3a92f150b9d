/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the AgroVet stock engine server: configuration,
  storage backend selection, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment config (.env supported), apply flag overrides
  2. Open the storage backend (flat JSON files or SQLite)
  3. Load the inventory and alert engine state
  4. Start the optional scheduled alert scanner
  5. Serve HTTP with graceful shutdown

COMMAND-LINE FLAGS:
  -port  HTTP server port                 (env STOCK_PORT, default 8080)
  -data  flat-file data directory         (env STOCK_DATA_DIR, default ./db)
  -db    SQLite database path; non-empty  (env STOCK_DB)
         selects the SQLite backend
  -scan  cron schedule for low-stock      (env STOCK_ALERT_SCAN)
         scans, e.g. "@every 15m"; empty disables

EXAMPLES:
  # Flat files in ./db (the historical layout)
  ./server

  # SQLite backend with scheduled scans
  ./server -db=./agrovet.db -scan="@every 15m"

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment settings
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agrovet/stock-engine/api"
	"github.com/agrovet/stock-engine/config"
	"github.com/agrovet/stock-engine/inventory"
	"github.com/agrovet/stock-engine/pkg/logger"
	"github.com/agrovet/stock-engine/store/jsonfile"
	"github.com/agrovet/stock-engine/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Flags override environment
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dataDir := flag.String("data", cfg.DataDir, "flat-file data directory")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path (empty: flat files)")
	scanSchedule := flag.String("scan", cfg.AlertScanSchedule, "cron schedule for low-stock scans (empty: disabled)")
	flag.Parse()

	log := logger.Must(logger.New())
	defer log.Sync()

	// Storage backend: both stores implement catalog, ledger and alert
	// state, so the rest of the wiring is backend-agnostic.
	var (
		catalog inventory.Catalog
		ledger  inventory.Ledger
		state   inventory.AlertState
		closer  io.Closer
	)
	if *dbPath != "" {
		st, err := sqlite.New(*dbPath)
		if err != nil {
			log.Fatal("failed to open sqlite store", zap.String("path", *dbPath), zap.Error(err))
		}
		catalog, ledger, state, closer = st, st, st, st
		log.Info("using sqlite backend", zap.String("path", *dbPath))
	} else {
		st, err := jsonfile.New(*dataDir)
		if err != nil {
			log.Fatal("failed to open data directory", zap.String("dir", *dataDir), zap.Error(err))
		}
		catalog, ledger, state = st, st, st
		log.Info("using flat-file backend", zap.String("dir", *dataDir))
	}
	if closer != nil {
		defer closer.Close()
	}

	inv := inventory.NewInventory(catalog, ledger, logger.Named(log, "inventory"))
	if err := inv.Load(context.Background()); err != nil {
		// Recoverable: start with an empty catalog rather than refuse to run.
		log.Warn("failed to load catalog, starting empty", zap.Error(err))
	}
	log.Info("catalog loaded", zap.Int("products", inv.Len()))

	alerts, err := inventory.NewAlertEngine(inv, state, logger.Named(log, "alerts"))
	if err != nil {
		log.Fatal("failed to initialize alert engine", zap.Error(err))
	}

	var scanner *api.AlertScanner
	if *scanSchedule != "" {
		scanner, err = api.NewAlertScanner(alerts, *scanSchedule, logger.Named(log, "scanner"))
		if err != nil {
			log.Fatal("failed to schedule alert scans", zap.Error(err))
		}
		scanner.Start()
		log.Info("alert scanner started", zap.String("schedule", *scanSchedule))
	}

	handler := api.NewHandler(inv, alerts, logger.Named(log, "api"))
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.Int("port", *port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if scanner != nil {
		scanner.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
