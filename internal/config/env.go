package config

import (
	"os"
	"strconv"
	"strings"
)

// applyEnv overrides config fields from environment variables. A variable
// that is unset or empty leaves the field alone, so file values survive
// unless the environment explicitly replaces them.
func (c *PipelineConfig) applyEnv() {
	c.API.Key = getEnv("NASA_API_KEY", c.API.Key)
	c.API.BaseURL = getEnv("NASA_API_BASE_URL", c.API.BaseURL)

	c.Database.Host = getEnv("NEOWS_DB_HOST", c.Database.Host)
	c.Database.Port = getEnvAsInt("NEOWS_DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("NEOWS_DB_NAME", c.Database.Name)
	c.Database.User = getEnv("NEOWS_DB_USER", c.Database.User)
	c.Database.Password = getEnv("NEOWS_DB_PASSWORD", c.Database.Password)
	c.Database.SSLMode = getEnv("NEOWS_DB_SSLMODE", c.Database.SSLMode)

	c.Export.Format = getEnv("NEOWS_EXPORT_FORMAT", c.Export.Format)
	c.Export.Dir = getEnv("NEOWS_EXPORT_DIR", c.Export.Dir)

	c.Demo.Enabled = getEnvAsDemoMode("DEMO_MODE", c.Demo.Enabled)
	c.Demo.FixtureDir = getEnv("NEOWS_SAMPLE_DIR", c.Demo.FixtureDir)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvAsDemoMode reads the DEMO_MODE toggle. The accepted truthy values
// are "1", "true", and "yes" (case-insensitive); any other non-empty value
// explicitly selects live mode.
func getEnvAsDemoMode(key string, fallback bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value == "1" || value == "true" || value == "yes"
}
