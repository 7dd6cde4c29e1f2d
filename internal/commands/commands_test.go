package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillbook-dev/tillbook/internal/config"
)

func runTillbook(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestInit_WritesConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := runTillbook(t, "init", dir, "--name", "Mama Njeri Shop", "--spreadsheet-id", "sheet-123")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized")

	cfg, err := config.Load(filepath.Join(dir, "tillbook.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Mama Njeri Shop", cfg.Business.Name)
	assert.Equal(t, "sheet-123", cfg.Workbook.SpreadsheetID)
	assert.Equal(t, "Africa/Nairobi", cfg.Business.Timezone)
	require.NoError(t, cfg.Validate())
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runTillbook(t, "init", dir, "--name", "Shop", "--spreadsheet-id", "sheet-123")
	require.NoError(t, err)

	_, err = runTillbook(t, "init", dir, "--name", "Other", "--spreadsheet-id", "sheet-456")
	require.Error(t, err, "existing config must not be clobbered")
}

func TestInit_RequiresFlags(t *testing.T) {
	dir := t.TempDir()
	_, err := runTillbook(t, "init", dir, "--name", "Shop")
	require.Error(t, err, "spreadsheet id is required")

	_, err = runTillbook(t, "init", dir, "--spreadsheet-id", "sheet-123")
	require.Error(t, err, "name is required")
}

func TestCommands_FailWithoutConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "tillbook.yaml")
	_, err := runTillbook(t, "--config", missing, "day", "status", "--date", "2025-08-30")
	require.Error(t, err)
}

func TestCommands_RejectEmptySpreadsheetID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tillbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("business:\n  name: Shop\n"), 0o644))

	_, err := runTillbook(t, "--config", path, "withdraw", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNoSpreadsheet)
}

func TestParseBreakdown(t *testing.T) {
	lines, err := parseBreakdown("1000x2,100x5")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.True(t, lines.Total().Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, 2, lines[0].Count)
	assert.True(t, lines[1].Amount.Equal(decimal.NewFromInt(500)))
}

func TestParseBreakdown_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing count", "1000"},
		{"negative count", "1000x-1"},
		{"fractional count", "1000x1.5"},
		{"garbage denomination", "abcx2"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseBreakdown(tc.input)
			require.Error(t, err)
		})
	}
}
