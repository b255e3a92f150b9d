// Package config loads server configuration from the environment.
//
// A .env file in the working directory is loaded first (missing is
// fine), then real environment variables win. Command-line flags in
// cmd/server override both.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	// Port is the HTTP listen port.
	Port int

	// DataDir is the flat-file database directory (jsonfile backend).
	DataDir string

	// DBPath selects the SQLite backend when non-empty; the jsonfile
	// backend in DataDir is used otherwise.
	DBPath string

	// AlertScanSchedule is a cron expression for scheduled low-stock
	// scans ("@every 15m"). Empty disables scheduled scans.
	AlertScanSchedule string
}

// Load reads configuration from .env and the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:              envInt("STOCK_PORT", 8080),
		DataDir:           envStr("STOCK_DATA_DIR", "./db"),
		DBPath:            envStr("STOCK_DB", ""),
		AlertScanSchedule: envStr("STOCK_ALERT_SCAN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
