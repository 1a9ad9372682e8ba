package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application. Loaded once at startup;
// nothing in here changes between invocations.
type Config struct {
	// Server configuration (serve command only)
	Port  string
	Debug bool

	// HTTP client behavior
	UserAgent string
	Timeout   time.Duration

	// Default fetch parameters
	DefaultLimit int

	// Optional credentials. BraveAPIKey gates the AI grounding source: when
	// empty, that single source is disabled and every other adapter is
	// unaffected.
	BraveAPIKey string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Debug:        getBoolEnv("DEBUG", false),
		UserAgent:    getEnv("SCOUT_USER_AGENT", "Scout Research Agent/1.0"),
		Timeout:      getDurationEnv("SCOUT_TIMEOUT", 30*time.Second),
		DefaultLimit: getIntEnv("SCOUT_LIMIT", 10),
		BraveAPIKey:  strings.TrimSpace(getEnv("BRAVE_API_KEY", "")),
	}
}

// GroundingEnabled reports whether the optional AI grounding source can run.
func (c *Config) GroundingEnabled() bool {
	return c.BraveAPIKey != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
