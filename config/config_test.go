package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrovet/stock-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./db", cfg.DataDir)
	assert.Empty(t, cfg.DBPath)
	assert.Empty(t, cfg.AlertScanSchedule)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STOCK_PORT", "9090")
	t.Setenv("STOCK_DATA_DIR", "/var/lib/agrovet")
	t.Setenv("STOCK_DB", "./agrovet.db")
	t.Setenv("STOCK_ALERT_SCAN", "@every 15m")

	cfg := config.Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/var/lib/agrovet", cfg.DataDir)
	assert.Equal(t, "./agrovet.db", cfg.DBPath)
	assert.Equal(t, "@every 15m", cfg.AlertScanSchedule)
}

func TestLoad_BadPortFallsBack(t *testing.T) {
	t.Setenv("STOCK_PORT", "not-a-number")

	assert.Equal(t, 8080, config.Load().Port)
}
