package commands

import (
	"context"
	"fmt"

	"github.com/tillbook-dev/tillbook/internal/cashday"
	"github.com/tillbook-dev/tillbook/internal/cells"
	"github.com/tillbook-dev/tillbook/internal/config"
	"github.com/tillbook-dev/tillbook/internal/feeds"
	"github.com/tillbook-dev/tillbook/internal/movements"
	"github.com/tillbook-dev/tillbook/internal/reconcile"
	"github.com/tillbook-dev/tillbook/internal/sheetstore"
	"github.com/tillbook-dev/tillbook/internal/tabs"
)

// app wires the ledger services against the configured workbook. Built once
// per command invocation; nothing here outlives the process.
type app struct {
	cfg         *config.Config
	days        *cashday.Service
	withdrawals *movements.Withdrawals
	transfers   *movements.Transfers
	engine      *reconcile.Engine
}

func loadApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := sheetstore.NewGoogleStore(ctx, cfg.Workbook.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("connecting to workbook: %w", err)
	}
	return buildApp(cfg, store), nil
}

func buildApp(cfg *config.Config, store sheetstore.Store) *app {
	parser := cells.Parser{MonthFirst: cfg.Dates.MonthFirst}
	provisioner := tabs.NewProvisioner(store, cfg.TabTTL(), nil)
	bookID := cfg.Workbook.SpreadsheetID

	days := cashday.NewService(store, provisioner, bookID, cfg.Business.Till, parser, nil)
	withdrawals := movements.NewWithdrawals(store, provisioner, bookID, parser, nil)
	transfers := movements.NewTransfers(store, provisioner, bookID, parser, nil)
	sheetFeeds := feeds.NewSheetFeeds(store, bookID, parser)

	engine := reconcile.NewEngine(days, withdrawals, transfers, sheetFeeds, sheetFeeds,
		parser, cfg.Location(), reconcile.Options{
			OpeningWindowDays: cfg.Reconcile.OpeningWindowDays,
			PerDayTimeout:     cfg.PerDayTimeout(),
			MaxParallel:       cfg.Reconcile.MaxParallel,
		})

	return &app{
		cfg:         cfg,
		days:        days,
		withdrawals: withdrawals,
		transfers:   transfers,
		engine:      engine,
	}
}
