// Package config loads the YAML configuration for the scanner, the
// monitoring server, and the storage collaborators.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	Scan     ScanConfig     `yaml:"scan"`
	Monitor  MonitorConfig  `yaml:"monitor"`
}

// DataConfig configures the history provider and its cache
type DataConfig struct {
	Provider    string  `yaml:"provider"` // "http" or "file"
	BaseURL     string  `yaml:"base_url"`
	FixtureRoot string  `yaml:"fixture_root"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	RPS         float64 `yaml:"rps"`
	Burst       int     `yaml:"burst"`
	RedisAddr   string  `yaml:"redis_addr"` // empty disables caching
	RedisDB     int     `yaml:"redis_db"`
}

// Timeout returns the request timeout as a duration.
func (d DataConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSec) * time.Second
}

// DatabaseConfig configures the Postgres outcomes store
type DatabaseConfig struct {
	DSN        string `yaml:"dsn"` // empty disables persistence
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Timeout returns the query timeout as a duration.
func (d DatabaseConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSec) * time.Second
}

// ScanConfig configures the decision pipeline
type ScanConfig struct {
	AccountEquity float64 `yaml:"account_equity"`
	Workers       int     `yaml:"workers"`
	WeightsPath   string  `yaml:"weights_path"`
}

// MonitorConfig configures the read-only HTTP server
type MonitorConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns the built-in configuration used when no file is given
// or the file fails to load.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Provider:   "http",
			BaseURL:    "http://localhost:9050",
			TimeoutSec: 10,
			RPS:        4,
			Burst:      8,
		},
		Database: DatabaseConfig{
			TimeoutSec: 5,
		},
		Scan: ScanConfig{
			AccountEquity: 10000,
			Workers:       4,
			WeightsPath:   "weights.json",
		},
		Monitor: MonitorConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// Load reads configuration from path, falling back to defaults for any
// omitted field.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for unusable values.
func (c *Config) Validate() error {
	switch c.Data.Provider {
	case "http":
		if c.Data.BaseURL == "" {
			return fmt.Errorf("data.base_url is required for the http provider")
		}
	case "file":
		if c.Data.FixtureRoot == "" {
			return fmt.Errorf("data.fixture_root is required for the file provider")
		}
	default:
		return fmt.Errorf("unknown data provider %q", c.Data.Provider)
	}

	if c.Scan.AccountEquity <= 0 {
		return fmt.Errorf("scan.account_equity must be positive")
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be positive")
	}
	if c.Monitor.Port <= 0 || c.Monitor.Port > 65535 {
		return fmt.Errorf("monitor.port %d out of range", c.Monitor.Port)
	}
	return nil
}
