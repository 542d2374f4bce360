package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"puzzleboard/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_PORT", "")
	t.Setenv("WORKER_COUNT", "")
	t.Setenv("RANKING_CACHE_TTL", "")
	t.Setenv("SIMULATOR_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Worker.Count)
	assert.Equal(t, 5*time.Minute, cfg.Cache.RankingTTL)
	assert.False(t, cfg.Simulator.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND_PORT", "9090")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("WORKER_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("SIMULATOR_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Worker.Count)
	assert.Equal(t, 3*time.Second, cfg.Worker.ShutdownTimeout)
	assert.True(t, cfg.Simulator.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsEmptyPool(t *testing.T) {
	t.Setenv("WORKER_COUNT", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDSN())

	cfg.Database.URL = "postgres://example"
	assert.Equal(t, "postgres://example", cfg.GetDSN())
}

func TestLoadWinThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scrandle: 6\ntimeguessr: 30000\n"), 0o600))

	got, err := LoadWinThresholds(path)
	require.NoError(t, err)
	assert.Equal(t, map[game.ID]float64{game.Scrandle: 6, game.TimeGuessr: 30000}, got)

	none, err := LoadWinThresholds("")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestParseWinThresholdsErrors(t *testing.T) {
	tests := map[string]string{
		"unknown game": "chess: 3\n",
		"negative":     "scrandle: -1\n",
		"not a map":    "- scrandle\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseWinThresholds([]byte(doc))
			assert.Error(t, err)
		})
	}
}
