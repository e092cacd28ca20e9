package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "KM-", cfg.Market.AccessCodePrefix)
	assert.Equal(t, 4, cfg.Market.AccessCodeLength)
	assert.Equal(t, "memory", cfg.Storage.Provider)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("STORAGE_PROVIDER", "minio")
	t.Setenv("MARKET_ACCESS_CODE_LENGTH", "6")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "minio", cfg.Storage.Provider)
	assert.Equal(t, 6, cfg.Market.AccessCodeLength)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "floppy")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", db.DSN())
}
