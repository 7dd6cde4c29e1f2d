// Package feeds reads the sales and expense rows that other subsystems own.
// Reconciliation only needs {date, method, amount} tuples, so the codecs
// here are tolerant: a malformed row is skipped and counted, never fatal.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tillbook-dev/tillbook/internal/cells"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/sheetstore"
)

// SalesLister supplies sales receipts. A full scan: the engine range-filters.
type SalesLister interface {
	ListSales(ctx context.Context) ([]model.SaleRecord, error)
}

// ExpenseLister supplies expense rows. A full scan: the engine range-filters.
type ExpenseLister interface {
	ListExpenses(ctx context.Context) ([]model.ExpenseRecord, error)
}

// Tab names owned by the sales and expense subsystems.
const (
	SalesTab    = "Sales"
	ExpensesTab = "Expenses"
)

// The sales tab is wide (product, qty, client, ...); reconciliation reads
// just these three columns.
const (
	salesColTimestamp = 0
	salesColMethod    = 4
	salesColTotal     = 6
)

const (
	expenseColDate   = 0
	expenseColMethod = 2
	expenseColAmount = 3
)

const headerRowOffset = 1

// SheetFeeds reads both feeds from the workbook.
type SheetFeeds struct {
	store         sheetstore.Store
	spreadsheetID string
	parser        cells.Parser
}

// NewSheetFeeds builds the workbook-backed feed reader.
func NewSheetFeeds(store sheetstore.Store, spreadsheetID string, parser cells.Parser) *SheetFeeds {
	return &SheetFeeds{store: store, spreadsheetID: spreadsheetID, parser: parser}
}

// ListSales returns every parseable sales receipt.
func (f *SheetFeeds) ListSales(ctx context.Context) ([]model.SaleRecord, error) {
	rows, err := f.dataRows(ctx, SalesTab)
	if err != nil {
		return nil, err
	}
	var out []model.SaleRecord
	skipped := 0
	for _, row := range rows {
		method, ok := model.ParseMethod(sheetstore.CellString(row, salesColMethod))
		if !ok {
			skipped++
			continue
		}
		total, ok := cells.Amount(cellAt(row, salesColTotal))
		if !ok {
			skipped++
			continue
		}
		ms := f.parser.InstantMS(cellAt(row, salesColTimestamp))
		if ms == 0 {
			skipped++
			continue
		}
		out = append(out, model.SaleRecord{
			Timestamp: time.UnixMilli(ms).UTC(),
			Method:    method,
			Total:     total,
		})
	}
	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Str("tab", SalesTab).Msg("ignored malformed feed rows")
	}
	return out, nil
}

// ListExpenses returns every parseable expense row.
func (f *SheetFeeds) ListExpenses(ctx context.Context) ([]model.ExpenseRecord, error) {
	rows, err := f.dataRows(ctx, ExpensesTab)
	if err != nil {
		return nil, err
	}
	var out []model.ExpenseRecord
	skipped := 0
	for _, row := range rows {
		method, ok := model.ParseMethod(sheetstore.CellString(row, expenseColMethod))
		if !ok {
			skipped++
			continue
		}
		amount, ok := cells.Amount(cellAt(row, expenseColAmount))
		if !ok {
			skipped++
			continue
		}
		date := f.parser.NormalizeDate(cellAt(row, expenseColDate))
		if date == "" {
			skipped++
			continue
		}
		out = append(out, model.ExpenseRecord{Date: date, Method: method, Amount: amount})
	}
	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Str("tab", ExpensesTab).Msg("ignored malformed feed rows")
	}
	return out, nil
}

// dataRows treats a missing tab as an empty feed: the sales subsystem may
// not have written anything yet.
func (f *SheetFeeds) dataRows(ctx context.Context, tab string) ([][]any, error) {
	rows, err := f.store.ReadRows(ctx, f.spreadsheetID, tab, "", sheetstore.RenderUnformatted)
	if err != nil {
		if errors.Is(err, sheetstore.ErrTabNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", tab, err)
	}
	if len(rows) <= headerRowOffset {
		return nil, nil
	}
	return rows[headerRowOffset:], nil
}

func cellAt(row []any, col int) any {
	if col >= len(row) {
		return nil
	}
	return row[col]
}
