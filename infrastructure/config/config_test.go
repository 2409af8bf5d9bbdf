package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "policy-data", cfg.TableName)
	assert.Equal(t, "StateIndex", cfg.StateIndexName)
	assert.Equal(t, "PolicyStatusIndex", cfg.StatusIndexName)
	assert.Equal(t, 30*time.Second, cfg.DefaultCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.False(t, cfg.RequireAPIKey)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TABLE_NAME", "policies-prod")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DEFAULT_CACHE_TTL", "60")
	t.Setenv("STORE_TIMEOUT_MS", "2500")
	t.Setenv("REQUIRE_API_KEY", "true")
	t.Setenv("VALID_API_KEYS", "key-one, key-two,")
	t.Setenv("ENABLE_METRICS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "policies-prod", cfg.TableName)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 60*time.Second, cfg.DefaultCacheTTL)
	assert.Equal(t, 2500*time.Millisecond, cfg.StoreTimeout)
	assert.True(t, cfg.RequireAPIKey)
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.ValidAPIKeys)
	assert.True(t, cfg.EnableMetrics)
}

func TestRequireAPIKeyNeedsKeys(t *testing.T) {
	t.Setenv("REQUIRE_API_KEY", "true")
	t.Setenv("VALID_API_KEYS", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALID_API_KEYS")
}
