package movements

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillbook-dev/tillbook/internal/cells"
	"github.com/tillbook-dev/tillbook/internal/id"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/sheetstore"
	"github.com/tillbook-dev/tillbook/internal/tabs"
)

// WithdrawalsTab is the manual-withdrawals tab name.
const WithdrawalsTab = "Withdrawals"

const (
	wNumFields    = 7
	wColID        = 0
	wColDate      = 1
	wColCreatedAt = 2
	wColSource    = 3
	wColAmount    = 4
	wColNote      = 5
	wColCreatedBy = 6
)

// WithdrawalsSpec is the canonical withdrawals tab layout.
var WithdrawalsSpec = tabs.Spec{
	Name:   WithdrawalsTab,
	Header: []string{"id", "date", "created_at", "source", "amount", "note", "created_by"},
}

// Withdrawals is the manual-withdrawal ledger.
type Withdrawals struct {
	ledger ledger
	now    func() time.Time
}

// NewWithdrawals builds the ledger. A nil clock means time.Now.
func NewWithdrawals(store sheetstore.Store, provisioner *tabs.Provisioner, spreadsheetID string, parser cells.Parser, now func() time.Time) *Withdrawals {
	if now == nil {
		now = time.Now
	}
	return &Withdrawals{
		ledger: ledger{
			store:         store,
			provisioner:   provisioner,
			spreadsheetID: spreadsheetID,
			spec:          WithdrawalsSpec,
			parser:        parser,
		},
		now: now,
	}
}

// WithdrawalParams carries a new manual withdrawal.
type WithdrawalParams struct {
	Date      string // business date, may differ from today
	Source    model.PaymentMethod
	Amount    decimal.Decimal
	Note      string
	CreatedBy string
}

// Create validates and appends a withdrawal, returning it with its id.
func (w *Withdrawals) Create(ctx context.Context, params WithdrawalParams) (model.ManualWithdrawal, error) {
	date := w.ledger.parser.NormalizeDate(params.Date)
	if date == "" {
		return model.ManualWithdrawal{}, fmt.Errorf("invalid date %q", params.Date)
	}
	if !params.Source.Valid() {
		return model.ManualWithdrawal{}, fmt.Errorf("unknown payment method %q", params.Source)
	}
	if params.Amount.Sign() <= 0 {
		return model.ManualWithdrawal{}, fmt.Errorf("amount must be positive, got %s", params.Amount)
	}

	now := w.now().UTC()
	entry := model.ManualWithdrawal{
		ID:        id.NewMovement(now),
		Date:      date,
		CreatedAt: now,
		Source:    params.Source,
		Amount:    params.Amount,
		Note:      params.Note,
		CreatedBy: params.CreatedBy,
	}
	if err := w.ledger.append(ctx, withdrawalToRow(entry)); err != nil {
		return model.ManualWithdrawal{}, err
	}
	return entry, nil
}

// List returns withdrawals whose business date falls inside the inclusive
// range, newest-first by creation instant. Empty bounds mean unfiltered.
func (w *Withdrawals) List(ctx context.Context, fromDate, toDate string) ([]model.ManualWithdrawal, error) {
	rows, err := w.ledger.dataRows(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.ManualWithdrawal
	for _, row := range rows {
		if !w.ledger.inRange(cellAt(row, wColDate), fromDate, toDate) {
			continue
		}
		out = append(out, rowToWithdrawal(row, w.ledger.parser))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Delete removes a withdrawal by id. Returns ErrNotFound for unknown ids.
func (w *Withdrawals) Delete(ctx context.Context, movementID string) error {
	return w.ledger.delete(ctx, movementID)
}

func withdrawalToRow(entry model.ManualWithdrawal) []any {
	row := make([]any, wNumFields)
	row[wColID] = entry.ID
	row[wColDate] = entry.Date
	row[wColCreatedAt] = entry.CreatedAt.UTC().Format(time.RFC3339)
	row[wColSource] = string(entry.Source)
	row[wColAmount] = entry.Amount.StringFixed(2)
	row[wColNote] = entry.Note
	row[wColCreatedBy] = entry.CreatedBy
	return row
}

func rowToWithdrawal(row []any, parser cells.Parser) model.ManualWithdrawal {
	amount, _ := cells.Amount(cellAt(row, wColAmount))
	source, _ := model.ParseMethod(sheetstore.CellString(row, wColSource))
	return model.ManualWithdrawal{
		ID:        sheetstore.CellString(row, wColID),
		Date:      parser.NormalizeDate(cellAt(row, wColDate)),
		CreatedAt: instantAt(row, wColCreatedAt, parser),
		Source:    source,
		Amount:    amount,
		Note:      sheetstore.CellString(row, wColNote),
		CreatedBy: sheetstore.CellString(row, wColCreatedBy),
	}
}

func cellAt(row []any, col int) any {
	if col >= len(row) {
		return nil
	}
	return row[col]
}

func instantAt(row []any, col int, parser cells.Parser) time.Time {
	ms := parser.InstantMS(cellAt(row, col))
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
