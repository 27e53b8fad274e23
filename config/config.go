package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config is the complete tradejournal configuration.
type Config struct {
	Database DatabaseConfig `json:"database" yaml:"database"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Ledger   LedgerConfig   `json:"ledger" yaml:"ledger"`
}

// DatabaseConfig selects the ledger store.
type DatabaseConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite3" or "postgres"
	DSN    string `json:"dsn" yaml:"dsn"`
}

// LogConfig drives internal/logger.
type LogConfig struct {
	Level             string `json:"level" yaml:"level"`
	Encoding          string `json:"encoding" yaml:"encoding"` // "json" or "console"
	Output            string `json:"output,omitempty" yaml:"output,omitempty"`
	Development       bool   `json:"development" yaml:"development"`
	DisableCaller     bool   `json:"disable_caller,omitempty" yaml:"disable_caller,omitempty"`
	DisableStacktrace bool   `json:"disable_stacktrace,omitempty" yaml:"disable_stacktrace,omitempty"`
}

// LedgerConfig holds ingestion and aggregation defaults.
type LedgerConfig struct {
	// Timezone buckets trades into calendar dates and aligns monthly
	// scopes. Empty keeps each trade's own zone and aligns months to UTC.
	Timezone              string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Exchange              string `json:"exchange" yaml:"exchange"`
	AssetClass            string `json:"asset_class" yaml:"asset_class"`
	LotSize               int    `json:"lot_size" yaml:"lot_size"`
	RefreshEquityOnIngest bool   `json:"refresh_equity_on_ingest" yaml:"refresh_equity_on_ingest"`
}

var assetClasses = map[string]bool{
	"stock":   true,
	"etf":     true,
	"futures": true,
	"options": true,
}

// Location returns the configured timezone, or nil when none is set.
func (l LedgerConfig) Location() (*time.Location, error) {
	if l.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ledger.timezone: %w", err)
	}
	return loc, nil
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml paths and JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("database.driver must be 'sqlite3' or 'postgres'")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		return fmt.Errorf("log.encoding must be 'json' or 'console'")
	}
	if c.Ledger.Exchange == "" {
		return fmt.Errorf("ledger.exchange is required")
	}
	if !assetClasses[c.Ledger.AssetClass] {
		return fmt.Errorf("ledger.asset_class must be one of stock, etf, futures, options")
	}
	if c.Ledger.LotSize <= 0 {
		return fmt.Errorf("ledger.lot_size must be positive")
	}
	if _, err := c.Ledger.Location(); err != nil {
		return err
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "./tradejournal.db",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
			Output:   "stderr",
		},
		Ledger: LedgerConfig{
			Exchange:   "TWSE",
			AssetClass: "stock",
			LotSize:    1000,
		},
	}
}
