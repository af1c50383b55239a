// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
backend:
  base_url: http://localhost:8000/api
`)

	cfg, err := LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", cfg.Backend.BaseURL)
	assert.Equal(t, 30000, cfg.Backend.RequestTimeout)
	assert.Equal(t, 2000, cfg.Tracker.PollInterval)
	assert.Equal(t, 64, cfg.Tracker.EventBuffer)
	assert.Equal(t, 60000, cfg.Claims.SubmitTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":9091", cfg.Metrics.ListenAddress)
}

func TestLoadFromFile_MissingBaseURL(t *testing.T) {
	path := writeConfigFile(t, `
tracker:
  poll_interval: 500
`)

	_, err := LoadFromFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestLoadFromFile_ExplicitValuesKept(t *testing.T) {
	path := writeConfigFile(t, `
backend:
  base_url: http://claims.internal/api
  request_timeout: 10000
claims:
  submit_timeout: 45000
database:
  redis:
    enabled: true
    address: redis.internal:6379
`)

	cfg, err := LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.Backend.RequestTimeout)
	assert.Equal(t, 45000, cfg.Claims.SubmitTimeout)
	assert.True(t, cfg.Database.Redis.Enabled)
	assert.Equal(t, "redis.internal:6379", cfg.Database.Redis.Address)
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "claims_audit",
		User:     "claims",
		Password: "secret",
		SSLMode:  "disable",
	}

	dsn := cfg.GetDSN()

	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "dbname=claims_audit")
	assert.Contains(t, dsn, "sslmode=disable")
}
