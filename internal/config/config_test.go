// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "product-service-group", cfg.KafkaGroupID)
	assert.Equal(t, "payment-success-events", cfg.PaymentTopic)
	assert.Equal(t, "product-stock-updated", cfg.StockTopic)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("GUARD_MAX_ATTEMPTS", "5")
	t.Setenv("GUARD_RATE", "100.5")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, uint64(5), cfg.Guard.MaxAttempts)
	assert.Equal(t, 100.5, cfg.Guard.Rate)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("GUARD_BURST", "not-a-number")

	cfg := Load()
	assert.Equal(t, 0, cfg.Guard.Burst)
}
