package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL      = "https://api.nasa.gov/neo/rest/v1"
	DefaultAPITimeout   = 15 * time.Second
	DefaultMaxRetries   = 5
	DefaultRetryBackoff = 500 * time.Millisecond
	DefaultDBPort       = 5432
	DefaultDBSSLMode    = "prefer"
	DefaultMaxConns     = 4
	DefaultMinConns     = 1
	DefaultExportFormat = "csv"
	DefaultExportDir    = "data/processed"
	DefaultFixtureDir   = "sample_data"
)

func (c *PipelineConfig) applyDefaults() {
	// API defaults. An empty key is left alone: the client falls back to
	// DEMO_KEY itself.
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Export defaults
	if c.Export.Format == "" {
		c.Export.Format = DefaultExportFormat
	}
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExportDir
	}

	// Demo defaults
	if c.Demo.FixtureDir == "" {
		c.Demo.FixtureDir = DefaultFixtureDir
	}
}
