package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"policyapi/pkg/utils"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `validate:"required"`
	Environment   string `validate:"required"`

	// AWS configuration
	AWSRegion       string `validate:"required"`
	TableName       string `validate:"required"`
	StateIndexName  string
	StatusIndexName string
	EventBusName    string

	// API key gate
	RequireAPIKey bool
	ValidAPIKeys  []string

	// Caching and store limits
	DefaultCacheTTL time.Duration
	StoreTimeout    time.Duration `validate:"required"`

	// Logging and features
	LogLevel      string
	EnableMetrics bool
	EnableTracing bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		TableName:     getEnv("TABLE_NAME", "policy-data"),

		// Secondary indexes used by the query fast paths
		StateIndexName:  getEnv("STATE_INDEX_NAME", "StateIndex"),
		StatusIndexName: getEnv("POLICY_STATUS_INDEX_NAME", "PolicyStatusIndex"),

		EventBusName: getEnv("EVENT_BUS_NAME", ""),

		RequireAPIKey: getEnvBool("REQUIRE_API_KEY", false),
		ValidAPIKeys:  splitKeys(getEnv("VALID_API_KEYS", "")),

		DefaultCacheTTL: time.Duration(getEnvInt("DEFAULT_CACHE_TTL", 30)) * time.Second,
		StoreTimeout:    time.Duration(getEnvInt("STORE_TIMEOUT_MS", 5000)) * time.Millisecond,

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.RequireAPIKey && len(c.ValidAPIKeys) == 0 {
		return fmt.Errorf("VALID_API_KEYS is required when REQUIRE_API_KEY is set")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// splitKeys parses the comma-separated API key allowlist, ignoring blanks.
func splitKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
