package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Mama Duka", "sheet-abc123")
	cfg.Dates.MonthFirst = true
	cfg.Reconcile.OpeningWindowDays = 14

	path := filepath.Join(t.TempDir(), "tillbook.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Business.Name, got.Business.Name)
	assert.Equal(t, cfg.Business.Till, got.Business.Till)
	assert.Equal(t, cfg.Business.Timezone, got.Business.Timezone)
	assert.Equal(t, cfg.Workbook.SpreadsheetID, got.Workbook.SpreadsheetID)
	assert.Equal(t, cfg.Workbook.CredentialsFile, got.Workbook.CredentialsFile)
	assert.True(t, got.Dates.MonthFirst)
	assert.Equal(t, 14, got.Reconcile.OpeningWindowDays)
}

func TestDefaults(t *testing.T) {
	cfg := Default("Mama Duka", "sheet-abc123")

	assert.Equal(t, "Mama Duka", cfg.Business.Name)
	assert.Equal(t, "main", cfg.Business.Till)
	assert.Equal(t, "Africa/Nairobi", cfg.Business.Timezone)
	assert.Equal(t, "sheet-abc123", cfg.Workbook.SpreadsheetID)
	assert.False(t, cfg.Dates.MonthFirst)
	assert.Equal(t, time.Hour, cfg.TabTTL())
	assert.Equal(t, 4*time.Second, cfg.PerDayTimeout())
	assert.Equal(t, 31, cfg.Reconcile.OpeningWindowDays)
	require.NoError(t, cfg.Validate())
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, time.Hour, cfg.TabTTL())
	assert.Equal(t, 4*time.Second, cfg.PerDayTimeout())

	cfg.Cache.TabTTLMinutes = 5
	cfg.Reconcile.PerDayTimeoutSecs = 10
	assert.Equal(t, 5*time.Minute, cfg.TabTTL())
	assert.Equal(t, 10*time.Second, cfg.PerDayTimeout())
}

func TestValidateMissingSpreadsheet(t *testing.T) {
	cfg := Default("Mama Duka", "")
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSpreadsheet)
}

func TestLocationFallback(t *testing.T) {
	cfg := Default("Mama Duka", "sheet-abc123")
	cfg.Business.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Mama Duka", "sheet-abc123")
	path := filepath.Join(t.TempDir(), "tillbook.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Mama Duka")
	assert.Contains(t, contents, "spreadsheet_id: sheet-abc123")
	assert.Contains(t, contents, "timezone: Africa/Nairobi")
	assert.Contains(t, contents, "opening_window_days: 31")
}
