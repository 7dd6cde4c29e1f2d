package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoSpreadsheet means the backing workbook is not configured. Fatal:
// nothing can run without a store identifier.
var ErrNoSpreadsheet = errors.New("workbook.spreadsheet_id is not set")

// Config represents the top-level tillbook.yaml configuration. The workbook
// identifier is always explicit here, never pulled from ambient environment
// defaults.
type Config struct {
	Business  BusinessConfig  `yaml:"business"`
	Workbook  WorkbookConfig  `yaml:"workbook"`
	Dates     DatesConfig     `yaml:"dates"`
	Cache     CacheConfig     `yaml:"cache"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

// BusinessConfig identifies the shop and its business timezone.
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Till     string `yaml:"till"`
	Timezone string `yaml:"timezone"` // IANA name, e.g. "Africa/Nairobi"
}

// WorkbookConfig points at the backing spreadsheet.
type WorkbookConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// DatesConfig controls ambiguous-date parsing.
type DatesConfig struct {
	// MonthFirst switches two-part dates like 5/8 to month-first. The
	// default (false) is day-first, matching the ledgers' locale.
	MonthFirst bool `yaml:"month_first"`
}

// CacheConfig controls the tab-existence cache.
type CacheConfig struct {
	TabTTLMinutes int `yaml:"tab_ttl_minutes"`
}

// ReconcileConfig controls the reconciliation engine's fan-out.
type ReconcileConfig struct {
	OpeningWindowDays int `yaml:"opening_window_days"`
	PerDayTimeoutSecs int `yaml:"per_day_timeout_seconds"`
	MaxParallel       int `yaml:"max_parallel"`
}

// TabTTL returns the tab cache TTL as a duration.
func (c *Config) TabTTL() time.Duration {
	if c.Cache.TabTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.Cache.TabTTLMinutes) * time.Minute
}

// PerDayTimeout returns the per-day opening lookup timeout.
func (c *Config) PerDayTimeout() time.Duration {
	if c.Reconcile.PerDayTimeoutSecs <= 0 {
		return 4 * time.Second
	}
	return time.Duration(c.Reconcile.PerDayTimeoutSecs) * time.Second
}

// Location resolves the business timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks the configuration errors that must fail fast.
func (c *Config) Validate() error {
	if c.Workbook.SpreadsheetID == "" {
		return ErrNoSpreadsheet
	}
	return nil
}

// Load reads a tillbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new shop.
func Default(businessName, spreadsheetID string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:     businessName,
			Till:     "main",
			Timezone: "Africa/Nairobi",
		},
		Workbook: WorkbookConfig{
			SpreadsheetID:   spreadsheetID,
			CredentialsFile: "credentials.json",
		},
		Cache: CacheConfig{
			TabTTLMinutes: 60,
		},
		Reconcile: ReconcileConfig{
			OpeningWindowDays: 31,
			PerDayTimeoutSecs: 4,
			MaxParallel:       8,
		},
	}
}
