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

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sneaker_shop.db", cfg.DBPath)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "order-confirmations", cfg.KafkaTopic)
	assert.Equal(t, 20, cfg.CheckoutRateLimit)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestLoadOverridesAndValidation(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("CHECKOUT_RATE_LIMIT", "5")
	t.Setenv("SESSION_TTL_HOUR", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5, cfg.CheckoutRateLimit)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CHECKOUT_RATE_LIMIT", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadBcryptCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "99")
	_, err := Load()
	assert.Error(t, err)
}
