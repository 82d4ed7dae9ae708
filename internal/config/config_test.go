package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Data.Provider != "http" {
		t.Errorf("default provider = %q", cfg.Data.Provider)
	}
	if cfg.Scan.Workers != 4 {
		t.Errorf("default workers = %d", cfg.Scan.Workers)
	}
	if cfg.Monitor.Port != 8080 {
		t.Errorf("default port = %d", cfg.Monitor.Port)
	}
	if cfg.Data.Timeout() != 10*time.Second {
		t.Errorf("default timeout = %v", cfg.Data.Timeout())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
data:
  provider: file
  fixture_root: /tmp/bars
scan:
  account_equity: 50000
  workers: 8
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.Provider != "file" || cfg.Data.FixtureRoot != "/tmp/bars" {
		t.Errorf("data config = %+v", cfg.Data)
	}
	if cfg.Scan.AccountEquity != 50000 || cfg.Scan.Workers != 8 {
		t.Errorf("scan config = %+v", cfg.Scan)
	}
	// Untouched sections keep their defaults.
	if cfg.Monitor.Port != 8080 {
		t.Errorf("monitor port = %d, want default", cfg.Monitor.Port)
	}
	if cfg.Scan.WeightsPath != "weights.json" {
		t.Errorf("weights path = %q, want default", cfg.Scan.WeightsPath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load on a missing file did not error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"unknown provider", func(c *Config) { c.Data.Provider = "carrier_pigeon" }, true},
		{"http without base url", func(c *Config) { c.Data.BaseURL = "" }, true},
		{"file without root", func(c *Config) {
			c.Data.Provider = "file"
			c.Data.FixtureRoot = ""
		}, true},
		{"zero equity", func(c *Config) { c.Scan.AccountEquity = 0 }, true},
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }, true},
		{"port out of range", func(c *Config) { c.Monitor.Port = 70000 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
