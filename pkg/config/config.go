// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig

	// Environment names the deployment environment (e.g. DEV, STAGING,
	// PROD). The development seed/reset endpoints are only registered when
	// this is not production-like.
	Environment string

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string

	// MetricsEnabled toggles the /metrics endpoint.
	MetricsEnabled bool

	// APITokens maps bearer tokens onto their granted scopes. Empty means
	// auth is disabled (local development).
	APITokens map[string][]string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("CHRONICLE_HOST", "0.0.0.0"),
			Port:            getEnv("CHRONICLE_PORT", "8080"),
			ReadTimeout:     getEnvDuration("CHRONICLE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("CHRONICLE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("CHRONICLE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("CHRONICLE_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt("CHRONICLE_DB_MAX_CONNS", 25),
			MinConns: getEnvInt("CHRONICLE_DB_MIN_CONNS", 5),
		},
		Environment:    getEnv("ENVIRONMENT", "DEV"),
		LogLevel:       getEnv("CHRONICLE_LOG_LEVEL", "info"),
		MetricsEnabled: getEnvBool("CHRONICLE_METRICS_ENABLED", true),
		APITokens:      parseTokenScopes(getEnv("CHRONICLE_API_TOKENS", "")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// IsProductionLike reports whether the development-only administrative
// endpoints must stay disabled.
func (c *Config) IsProductionLike() bool {
	switch strings.ToUpper(c.Environment) {
	case "PROD", "PRODUCTION", "STAGING":
		return true
	}
	return false
}

// parseTokenScopes parses "token=scope1,scope2;token2=scope3" into a
// token→scopes table. Malformed entries are skipped.
func parseTokenScopes(raw string) map[string][]string {
	tokens := make(map[string][]string)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		var scopes []string
		for _, s := range strings.Split(parts[1], ",") {
			if s = strings.TrimSpace(s); s != "" {
				scopes = append(scopes, s)
			}
		}
		if len(scopes) > 0 {
			tokens[parts[0]] = scopes
		}
	}
	return tokens
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true"
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
