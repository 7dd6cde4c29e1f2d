package cashday

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbook-dev/tillbook/internal/cells"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/sheetstore"
	"github.com/tillbook-dev/tillbook/internal/tabs"
)

// TabName is the cash-day tab in the workbook. One row per business date:
// the open declaration fills the first half, the close declaration the rest.
const TabName = "CashDays"

const (
	numFields       = 17
	colOpenID       = 0
	colDate         = 1
	colOpenedAt     = 2
	colOpenedBy     = 3
	colTill         = 4
	colOpenCash     = 5
	colOpenBreak    = 6
	colOpenTill     = 7
	colOpenWithdr   = 8
	colOpenSend     = 9
	colClosedAt     = 10
	colClosedBy     = 11
	colCloseCash    = 12
	colCloseBreak   = 13
	colCloseTill    = 14
	colCloseWithdr  = 15
	colCloseSend    = 16
	headerRowOffset = 1
)

// TabSpec is the canonical tab layout. Column order changes happen here only.
var TabSpec = tabs.Spec{
	Name: TabName,
	Header: []string{
		"open_id", "date", "opened_at", "opened_by", "till",
		"open_cash", "open_breakdown", "open_till", "open_withdrawal", "open_send",
		"closed_at", "closed_by",
		"close_cash", "close_breakdown", "close_till", "close_withdrawal", "close_send",
	},
}

// openToRow renders a CashDayOpen as a fresh row (close columns empty).
func openToRow(open model.CashDayOpen) ([]any, error) {
	breakdown, err := json.Marshal(open.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("encoding breakdown: %w", err)
	}
	row := make([]any, numFields)
	row[colOpenID] = open.OpenID
	row[colDate] = open.Date
	row[colOpenedAt] = open.OpenedAt.UTC().Format(time.RFC3339)
	row[colOpenedBy] = open.Employee
	row[colTill] = open.Till
	row[colOpenCash] = open.OpeningCash.StringFixed(2)
	row[colOpenBreak] = string(breakdown)
	row[colOpenTill] = open.OpeningTill.StringFixed(2)
	row[colOpenWithdr] = open.OpeningWithdr.StringFixed(2)
	row[colOpenSend] = open.OpeningSend.StringFixed(2)
	for i := colClosedAt; i < numFields; i++ {
		row[i] = ""
	}
	return row, nil
}

// closeIntoRow fills the close columns of an existing day row.
func closeIntoRow(row []any, closing model.CashDayClose) ([]any, error) {
	breakdown, err := json.Marshal(closing.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("encoding breakdown: %w", err)
	}
	out := make([]any, numFields)
	copy(out, row)
	for i := len(row); i < numFields; i++ {
		out[i] = ""
	}
	out[colClosedAt] = closing.ClosedAt.UTC().Format(time.RFC3339)
	out[colClosedBy] = closing.Employee
	out[colCloseCash] = closing.ClosingCash.StringFixed(2)
	out[colCloseBreak] = string(breakdown)
	out[colCloseTill] = closing.ClosingTill.StringFixed(2)
	out[colCloseWithdr] = closing.ClosingWithdr.StringFixed(2)
	out[colCloseSend] = closing.ClosingSend.StringFixed(2)
	return out, nil
}

// rowToOpen decodes the open half of a day row. The date cell goes through
// the normalizer because historical rows carry serials and locale strings.
func rowToOpen(row []any, parser cells.Parser) model.CashDayOpen {
	return model.CashDayOpen{
		OpenID:        sheetstore.CellString(row, colOpenID),
		Date:          parser.NormalizeDate(cellAt(row, colDate)),
		OpenedAt:      instantAt(row, colOpenedAt, parser),
		Employee:      sheetstore.CellString(row, colOpenedBy),
		Till:          sheetstore.CellString(row, colTill),
		OpeningCash:   amountAt(row, colOpenCash),
		Breakdown:     breakdownAt(row, colOpenBreak),
		OpeningTill:   amountAt(row, colOpenTill),
		OpeningWithdr: amountAt(row, colOpenWithdr),
		OpeningSend:   amountAt(row, colOpenSend),
	}
}

// rowToClose decodes the close half, or nil when the day is still open.
func rowToClose(row []any, parser cells.Parser) *model.CashDayClose {
	if sheetstore.CellString(row, colClosedAt) == "" && sheetstore.CellString(row, colCloseCash) == "" {
		return nil
	}
	return &model.CashDayClose{
		OpenID:        sheetstore.CellString(row, colOpenID),
		Date:          parser.NormalizeDate(cellAt(row, colDate)),
		ClosedAt:      instantAt(row, colClosedAt, parser),
		Employee:      sheetstore.CellString(row, colClosedBy),
		Till:          sheetstore.CellString(row, colTill),
		ClosingCash:   amountAt(row, colCloseCash),
		Breakdown:     breakdownAt(row, colCloseBreak),
		ClosingTill:   amountAt(row, colCloseTill),
		ClosingWithdr: amountAt(row, colCloseWithdr),
		ClosingSend:   amountAt(row, colCloseSend),
	}
}

func cellAt(row []any, col int) any {
	if col >= len(row) {
		return nil
	}
	return row[col]
}

func amountAt(row []any, col int) decimal.Decimal {
	d, _ := cells.Amount(cellAt(row, col))
	return d
}

func instantAt(row []any, col int, parser cells.Parser) time.Time {
	ms := parser.InstantMS(cellAt(row, col))
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func breakdownAt(row []any, col int) model.Breakdown {
	raw := sheetstore.CellString(row, col)
	if raw == "" {
		return nil
	}
	var b model.Breakdown
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil
	}
	return b
}
