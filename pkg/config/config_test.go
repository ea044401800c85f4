package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/chronicle_test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "DEV", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, 5, cfg.Database.MinConns)
	assert.Empty(t, cfg.APITokens)
	assert.False(t, cfg.IsProductionLike())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db:5432/chronicle")
	t.Setenv("CHRONICLE_HOST", "127.0.0.1")
	t.Setenv("CHRONICLE_PORT", "9090")
	t.Setenv("CHRONICLE_READ_TIMEOUT", "5s")
	t.Setenv("CHRONICLE_DB_MAX_CONNS", "50")
	t.Setenv("CHRONICLE_LOG_LEVEL", "debug")
	t.Setenv("CHRONICLE_METRICS_ENABLED", "false")
	t.Setenv("ENVIRONMENT", "PROD")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 50, cfg.Database.MaxConns)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.MetricsEnabled)
	assert.True(t, cfg.IsProductionLike())
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestIsProductionLike(t *testing.T) {
	cases := map[string]bool{
		"DEV":        false,
		"dev":        false,
		"TEST":       false,
		"PROD":       true,
		"production": true,
		"staging":    true,
	}
	for env, want := range cases {
		cfg := &Config{Environment: env}
		assert.Equal(t, want, cfg.IsProductionLike(), env)
	}
}

func TestParseTokenScopes(t *testing.T) {
	tokens := parseTokenScopes("t1=read:audit_event,write:audit_event;t2=system")
	require.Len(t, tokens, 2)
	assert.Equal(t, []string{"read:audit_event", "write:audit_event"}, tokens["t1"])
	assert.Equal(t, []string{"system"}, tokens["t2"])
}

func TestParseTokenScopes_Malformed(t *testing.T) {
	assert.Empty(t, parseTokenScopes(""))
	assert.Empty(t, parseTokenScopes(";;"))
	assert.Empty(t, parseTokenScopes("noequals"))
	assert.Empty(t, parseTokenScopes("=scope"))
	assert.Empty(t, parseTokenScopes("token="))

	// Valid entries survive alongside malformed ones.
	tokens := parseTokenScopes("bad;t1=read:audit_event")
	require.Len(t, tokens, 1)
	assert.Equal(t, []string{"read:audit_event"}, tokens["t1"])
}
