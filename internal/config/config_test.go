package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DEBUG", "SCOUT_USER_AGENT", "SCOUT_TIMEOUT", "SCOUT_LIMIT", "BRAVE_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "Scout Research Agent/1.0", cfg.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.False(t, cfg.GroundingEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("SCOUT_TIMEOUT", "45s")
	t.Setenv("SCOUT_LIMIT", "20")
	t.Setenv("BRAVE_API_KEY", "  secret  ")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 20, cfg.DefaultLimit)
	assert.Equal(t, "secret", cfg.BraveAPIKey)
	assert.True(t, cfg.GroundingEnabled())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SCOUT_TIMEOUT", "soon")
	t.Setenv("SCOUT_LIMIT", "lots")
	t.Setenv("DEBUG", "kinda")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.False(t, cfg.Debug)
}
