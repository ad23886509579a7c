package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BASE_URL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://localhost:9090", cfg.BaseURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, "20-M", cfg.SubmitRateLimit)
	assert.Len(t, cfg.CORSOrigins, 2)
	assert.False(t, cfg.IsProduction())
}

func TestLoadLists(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("BASE_URL", "https://rsvp.example.com/")
	t.Setenv("APP_ENV", "Production")

	cfg := Load()

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "https://rsvp.example.com", cfg.BaseURL)
	assert.True(t, cfg.IsProduction())
}
