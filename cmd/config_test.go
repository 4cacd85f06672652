package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		t.Setenv("DB_USER", "beer")
		t.Setenv("DB_NAME", "orders")

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTPPort)
		assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, GuardBackendLocal, cfg.GuardBackend)
		assert.Equal(t, 100*time.Millisecond, cfg.WaitInterval)
		assert.Equal(t, uint(10), cfg.WaitAttempts)
		assert.Equal(t, 15*time.Minute, cfg.PendingTimeout)
		assert.Equal(t, "host=localhost port=5432 user=beer password= dbname=orders sslmode=disable", cfg.DSN())
	})

	t.Run("should read the environment", func(t *testing.T) {
		t.Setenv("DB_USER", "beer")
		t.Setenv("DB_NAME", "orders")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
		t.Setenv("CONSUMER_CONCURRENCY", "4")
		t.Setenv("GUARD_BACKEND", "REDIS")
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("OUTBOX_RELAY_INTERVAL", "2s")

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, 4, cfg.ConsumerConcurrency)
		assert.Equal(t, GuardBackendRedis, cfg.GuardBackend)
		assert.Equal(t, 2*time.Second, cfg.OutboxRelayInterval)
	})

	t.Run("should require a redis address for the redis guard", func(t *testing.T) {
		t.Setenv("DB_USER", "beer")
		t.Setenv("DB_NAME", "orders")
		t.Setenv("GUARD_BACKEND", "redis")

		_, err := LoadConfig()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "RedisAddr")
	})

	t.Run("should reject an unknown guard backend", func(t *testing.T) {
		t.Setenv("DB_USER", "beer")
		t.Setenv("DB_NAME", "orders")
		t.Setenv("GUARD_BACKEND", "zookeeper")

		_, err := LoadConfig()

		require.Error(t, err)
	})

	t.Run("should reject zero counts and intervals", func(t *testing.T) {
		t.Setenv("DB_USER", "beer")
		t.Setenv("DB_NAME", "orders")
		t.Setenv("CONSUMER_CONCURRENCY", "0")
		t.Setenv("JOB_BATCH_SIZE", "0")
		t.Setenv("OUTBOX_RELAY_INTERVAL", "0s")
		t.Setenv("CONSISTENCY_WAIT_ATTEMPTS", "0")

		_, err := LoadConfig()

		require.Error(t, err)
		for _, field := range []string{"ConsumerConcurrency", "JobBatchSize", "OutboxRelayInterval", "WaitAttempts"} {
			assert.Contains(t, err.Error(), field)
		}
	})

	t.Run("should require database credentials", func(t *testing.T) {
		t.Setenv("DB_USER", "")
		t.Setenv("DB_NAME", "")

		_, err := LoadConfig()

		require.Error(t, err)
	})
}
