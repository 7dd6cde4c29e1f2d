// Package sheetstore provides generic row primitives over named tabs of a
// remote workbook. The store enforces no schema: rows are ordered lists of
// weakly-typed cell values and every caller owns its own column contract.
package sheetstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RenderMode selects how cell values come back from a read.
//
// Unformatted returns native types: numbers stay numbers and date cells come
// back as spreadsheet date serials. Formatted returns every value as its
// display string. Callers must pick the mode their downstream parser expects;
// mixing modes for the same column across call sites is a known failure
// source (a serial parsed as a display string, or vice versa).
type RenderMode int

const (
	RenderUnformatted RenderMode = iota
	RenderFormatted
)

var (
	// ErrTabNotFound means the named tab does not exist in the workbook.
	// Fatal for update/delete; distinct from a missing row.
	ErrTabNotFound = errors.New("tab not found")
	// ErrRowNotFound means a row position or key lookup matched nothing.
	ErrRowNotFound = errors.New("row not found")
)

// Store is the remote workbook row API. Row positions are 1-based physical
// positions including any header row. No call retries internally; transient
// remote failures propagate to the caller.
type Store interface {
	// ReadRows returns the rows of tab, optionally restricted to an A1 range
	// (without the tab prefix; empty means the whole tab).
	ReadRows(ctx context.Context, spreadsheetID, tab, rng string, mode RenderMode) ([][]any, error)
	// AppendRow appends one row after the last non-empty row of tab.
	AppendRow(ctx context.Context, spreadsheetID, tab string, row []any) error
	// UpdateRow overwrites the cells of the 1-based row starting at column A.
	UpdateRow(ctx context.Context, spreadsheetID, tab string, rowPos int, row []any) error
	// DeleteRow removes the 1-based row entirely (following rows shift up).
	DeleteRow(ctx context.Context, spreadsheetID, tab string, rowPos int) error
	// ListTabs returns the tab names of the workbook.
	ListTabs(ctx context.Context, spreadsheetID string) ([]string, error)
	// CreateTab adds an empty tab. Creating a tab that already exists is not
	// an error (idempotent by name).
	CreateTab(ctx context.Context, spreadsheetID, tab string) error
}

// FindRowPosition scans rows for the first row whose keyCol cell equals key
// and returns its 1-based position, or 0 if no row matches. The caller is
// responsible for any header offset in rows.
func FindRowPosition(rows [][]any, keyCol int, key string) int {
	for i, row := range rows {
		if keyCol >= len(row) {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[keyCol])) == key {
			return i + 1
		}
	}
	return 0
}

// CellString renders a single cell as a trimmed string.
func CellString(row []any, col int) string {
	if col >= len(row) || row[col] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[col]))
}
