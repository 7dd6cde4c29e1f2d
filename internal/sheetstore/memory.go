package sheetstore

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store used by tests and offline development. It
// mimics the remote behavior the ledgers depend on: 1-based row positions,
// rows shifting up after a delete, idempotent tab creation, and formatted
// reads returning display strings.
type Memory struct {
	mu        sync.RWMutex
	workbooks map[string]map[string][][]any
	tabOrder  map[string][]string

	// FailReads, when set, makes every ReadRows call return this error.
	// Lets tests exercise transient-failure paths.
	FailReads error
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory workbook store.
func NewMemory() *Memory {
	return &Memory{
		workbooks: make(map[string]map[string][][]any),
		tabOrder:  make(map[string][]string),
	}
}

// Seed replaces the contents of a tab, creating it if needed.
func (m *Memory) Seed(spreadsheetID, tab string, rows [][]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTabLocked(spreadsheetID, tab)
	copied := make([][]any, len(rows))
	for i, r := range rows {
		copied[i] = append([]any(nil), r...)
	}
	m.workbooks[spreadsheetID][tab] = copied
}

// RowCount returns the number of rows currently in a tab.
func (m *Memory) RowCount(spreadsheetID, tab string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workbooks[spreadsheetID][tab])
}

func (m *Memory) ensureTabLocked(spreadsheetID, tab string) {
	if _, ok := m.workbooks[spreadsheetID]; !ok {
		m.workbooks[spreadsheetID] = make(map[string][][]any)
	}
	if _, ok := m.workbooks[spreadsheetID][tab]; !ok {
		m.workbooks[spreadsheetID][tab] = nil
		m.tabOrder[spreadsheetID] = append(m.tabOrder[spreadsheetID], tab)
	}
}

// ReadRows returns a copy of the tab's rows.
func (m *Memory) ReadRows(ctx context.Context, spreadsheetID, tab, rng string, mode RenderMode) ([][]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailReads != nil {
		return nil, m.FailReads
	}
	rows, ok := m.workbooks[spreadsheetID][tab]
	if !ok {
		return nil, fmt.Errorf("reading %s: %w", tab, ErrTabNotFound)
	}
	out := make([][]any, len(rows))
	for i, r := range rows {
		cells := make([]any, len(r))
		for j, c := range r {
			if mode == RenderFormatted && c != nil {
				cells[j] = fmt.Sprint(c)
			} else {
				cells[j] = c
			}
		}
		out[i] = cells
	}
	return out, nil
}

// AppendRow appends one row to the tab.
func (m *Memory) AppendRow(ctx context.Context, spreadsheetID, tab string, row []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workbooks[spreadsheetID][tab]; !ok {
		return fmt.Errorf("appending to %s: %w", tab, ErrTabNotFound)
	}
	m.workbooks[spreadsheetID][tab] = append(m.workbooks[spreadsheetID][tab], append([]any(nil), row...))
	return nil
}

// UpdateRow overwrites the 1-based row, growing the tab with empty rows if
// the position is past the end (matching remote update semantics).
func (m *Memory) UpdateRow(ctx context.Context, spreadsheetID, tab string, rowPos int, row []any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.workbooks[spreadsheetID][tab]
	if !ok {
		return fmt.Errorf("updating %s: %w", tab, ErrTabNotFound)
	}
	if rowPos < 1 {
		return fmt.Errorf("updating %s: row position %d out of range", tab, rowPos)
	}
	for len(rows) < rowPos {
		rows = append(rows, nil)
	}
	rows[rowPos-1] = append([]any(nil), row...)
	m.workbooks[spreadsheetID][tab] = rows
	return nil
}

// DeleteRow removes the 1-based row; following rows shift up.
func (m *Memory) DeleteRow(ctx context.Context, spreadsheetID, tab string, rowPos int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.workbooks[spreadsheetID][tab]
	if !ok {
		return fmt.Errorf("deleting from %s: %w", tab, ErrTabNotFound)
	}
	if rowPos < 1 || rowPos > len(rows) {
		return fmt.Errorf("deleting from %s: %w", tab, ErrRowNotFound)
	}
	m.workbooks[spreadsheetID][tab] = append(rows[:rowPos-1], rows[rowPos:]...)
	return nil
}

// ListTabs returns tab names in creation order.
func (m *Memory) ListTabs(ctx context.Context, spreadsheetID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.tabOrder[spreadsheetID]...), nil
}

// CreateTab adds an empty tab if absent.
func (m *Memory) CreateTab(ctx context.Context, spreadsheetID, tab string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureTabLocked(spreadsheetID, tab)
	return nil
}
