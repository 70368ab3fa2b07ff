package config_test

import (
	"path/filepath"
	"testing"

	"lodge/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_POSTGRES_WRITE_HOST", "primary.db")
	t.Setenv("CACHE_REDIS_PRIMARY_PORT", "6380")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "primary.db", cfg.DB.Postgres.Write.Host)
	assert.Equal(t, "6380", cfg.Cache.Redis.Primary.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "asset.cleanup", cfg.Kafka.Topics.AssetCleanup)
	assert.Equal(t, 5, cfg.Kafka.Cleanup.MaxAttempts)
	assert.Equal(t, 800, cfg.Image.Quality.MinWidth)
	assert.Equal(t, []string{"jpeg", "png", "webp"}, cfg.Image.Quality.AllowedFormats)
	assert.Equal(t, "en", cfg.App.Locale)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("IMAGE_MAX_BATCH_FILES", "many")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
