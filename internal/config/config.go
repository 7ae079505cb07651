package config

import "time"

// PipelineConfig is the root configuration for a pipeline run.
type PipelineConfig struct {
	API      APIConfig    `yaml:"api"`
	Database DBConfig     `yaml:"database"`
	Export   ExportConfig `yaml:"export"`
	Demo     DemoConfig   `yaml:"demo"`
}

// APIConfig holds NASA NeoWs API settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Key          string        `yaml:"key"` // falls back to the public DEMO_KEY when empty
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"` // total attempt budget per feed request
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// DBConfig holds the warehouse PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ExportConfig holds flat-file export settings.
type ExportConfig struct {
	Format string `yaml:"format"` // csv, xlsx, or json
	Dir    string `yaml:"dir"`
}

// DemoConfig selects sample-data mode: when enabled, feeds are read from
// committed fixtures instead of the live API.
type DemoConfig struct {
	Enabled    bool   `yaml:"enabled"`
	FixtureDir string `yaml:"fixture_dir"`
}
