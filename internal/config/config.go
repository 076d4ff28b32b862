// Package config holds the npmstats configuration: storage paths, seeder
// parameters, logging, and the fixed tracked-package list.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the npmstats pipeline.
type Config struct {
	Storage Storage `yaml:"storage"`
	Seeder  Seeder  `yaml:"seeder"`
	Logging Logging `yaml:"logging"`
}

// Storage holds paths for data persistence.
type Storage struct {
	SeedDir    string `yaml:"seed_dir"`
	SeriesDir  string `yaml:"series_dir"`
	ExportDir  string `yaml:"export_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Seeder controls the snapshot-fetching binary.
type Seeder struct {
	BaseURL         string `yaml:"base_url"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	RetryAttempts   int    `yaml:"retry_attempts"`
	RetryBaseMS     int    `yaml:"retry_base_ms"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Storage: Storage{
			SeedDir:    "data/seeds",
			SeriesDir:  "data/series",
			ExportDir:  "data/export",
			SQLitePath: "data/npmstats.db",
		},
		Seeder: Seeder{
			RateLimitPerMin: 120,
			RetryAttempts:   3,
			RetryBaseMS:     500,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML configuration file at the given path, parses it over
// the defaults, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to the defaults (plus env
// overrides) when no file exists at path.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return cfg, err
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEED_DIR"); v != "" {
		cfg.Storage.SeedDir = v
	}
	if v := os.Getenv("SERIES_DIR"); v != "" {
		cfg.Storage.SeriesDir = v
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Storage.ExportDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("NPM_API_URL"); v != "" {
		cfg.Seeder.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
