package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tillbook-dev/tillbook/internal/config"
)

func newInitCommand() *cobra.Command {
	var name string
	var spreadsheetID string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter tillbook.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, absDir, name, spreadsheetID)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet-id", "", "backing workbook id (required)")
	_ = cmd.MarkFlagRequired("spreadsheet-id")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name, spreadsheetID string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, "tillbook.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.Default(name, spreadsheetID)
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s for %s\n", path, name)
	fmt.Fprintf(cmd.OutOrStdout(), "Place the service-account key at %s before first use.\n", cfg.Workbook.CredentialsFile)
	return nil
}
