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

// TransfersTab is the inter-bucket transfers tab name.
const TransfersTab = "Transfers"

const (
	tNumFields    = 8
	tColID        = 0
	tColDate      = 1
	tColCreatedAt = 2
	tColFrom      = 3
	tColTo        = 4
	tColAmount    = 5
	tColNote      = 6
	tColCreatedBy = 7
)

// TransfersSpec is the canonical transfers tab layout.
var TransfersSpec = tabs.Spec{
	Name:   TransfersTab,
	Header: []string{"id", "date", "created_at", "from", "to", "amount", "note", "created_by"},
}

// Transfers is the inter-bucket transfer ledger.
type Transfers struct {
	ledger ledger
	now    func() time.Time
}

// NewTransfers builds the ledger. A nil clock means time.Now.
func NewTransfers(store sheetstore.Store, provisioner *tabs.Provisioner, spreadsheetID string, parser cells.Parser, now func() time.Time) *Transfers {
	if now == nil {
		now = time.Now
	}
	return &Transfers{
		ledger: ledger{
			store:         store,
			provisioner:   provisioner,
			spreadsheetID: spreadsheetID,
			spec:          TransfersSpec,
			parser:        parser,
		},
		now: now,
	}
}

// TransferParams carries a new transfer.
type TransferParams struct {
	Date      string
	From      model.PaymentMethod
	To        model.PaymentMethod
	Amount    decimal.Decimal
	Note      string
	CreatedBy string
}

// Create validates and appends a transfer, returning it with its id.
func (t *Transfers) Create(ctx context.Context, params TransferParams) (model.Transfer, error) {
	date := t.ledger.parser.NormalizeDate(params.Date)
	if date == "" {
		return model.Transfer{}, fmt.Errorf("invalid date %q", params.Date)
	}
	if !params.From.Valid() {
		return model.Transfer{}, fmt.Errorf("unknown payment method %q", params.From)
	}
	if !params.To.Valid() {
		return model.Transfer{}, fmt.Errorf("unknown payment method %q", params.To)
	}
	if params.From == params.To {
		return model.Transfer{}, fmt.Errorf("transfer source and destination must differ, got %s", params.From)
	}
	if params.Amount.Sign() <= 0 {
		return model.Transfer{}, fmt.Errorf("amount must be positive, got %s", params.Amount)
	}

	now := t.now().UTC()
	entry := model.Transfer{
		ID:        id.NewMovement(now),
		Date:      date,
		CreatedAt: now,
		From:      params.From,
		To:        params.To,
		Amount:    params.Amount,
		Note:      params.Note,
		CreatedBy: params.CreatedBy,
	}
	if err := t.ledger.append(ctx, transferToRow(entry)); err != nil {
		return model.Transfer{}, err
	}
	return entry, nil
}

// List returns transfers inside the inclusive date range, newest-first.
func (t *Transfers) List(ctx context.Context, fromDate, toDate string) ([]model.Transfer, error) {
	rows, err := t.ledger.dataRows(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Transfer
	for _, row := range rows {
		if !t.ledger.inRange(cellAt(row, tColDate), fromDate, toDate) {
			continue
		}
		out = append(out, rowToTransfer(row, t.ledger.parser))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Delete removes a transfer by id. Returns ErrNotFound for unknown ids.
func (t *Transfers) Delete(ctx context.Context, movementID string) error {
	return t.ledger.delete(ctx, movementID)
}

func transferToRow(entry model.Transfer) []any {
	row := make([]any, tNumFields)
	row[tColID] = entry.ID
	row[tColDate] = entry.Date
	row[tColCreatedAt] = entry.CreatedAt.UTC().Format(time.RFC3339)
	row[tColFrom] = string(entry.From)
	row[tColTo] = string(entry.To)
	row[tColAmount] = entry.Amount.StringFixed(2)
	row[tColNote] = entry.Note
	row[tColCreatedBy] = entry.CreatedBy
	return row
}

func rowToTransfer(row []any, parser cells.Parser) model.Transfer {
	amount, _ := cells.Amount(cellAt(row, tColAmount))
	from, _ := model.ParseMethod(sheetstore.CellString(row, tColFrom))
	to, _ := model.ParseMethod(sheetstore.CellString(row, tColTo))
	return model.Transfer{
		ID:        sheetstore.CellString(row, tColID),
		Date:      parser.NormalizeDate(cellAt(row, tColDate)),
		CreatedAt: instantAt(row, tColCreatedAt, parser),
		From:      from,
		To:        to,
		Amount:    amount,
		Note:      sheetstore.CellString(row, tColNote),
		CreatedBy: sheetstore.CellString(row, tColCreatedBy),
	}
}
