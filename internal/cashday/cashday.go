// Package cashday records the opening and closing declarations that bracket
// a business day. State machine per date: Unopened -> Opened -> Closed.
package cashday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillbook-dev/tillbook/internal/cells"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/sheetstore"
	"github.com/tillbook-dev/tillbook/internal/tabs"
)

var (
	// ErrDayOpened is the conflict returned when a date already has an open
	// declaration. Callers recover by fetching the existing record, not by
	// retrying.
	ErrDayOpened = errors.New("day already opened")
	// ErrNotOpened means a close or lookup referenced a date with no open
	// declaration.
	ErrNotOpened = errors.New("day not opened")
	// ErrDayClosed is the conflict returned when a date already has a close
	// declaration. The stored record is preserved, never overwritten.
	ErrDayClosed = errors.New("day already closed")
)

// Day is one business date's record: an open declaration and, once the shift
// ends, its paired close.
type Day struct {
	Open  model.CashDayOpen
	Close *model.CashDayClose
}

// Service owns the cash-day tab.
type Service struct {
	store         sheetstore.Store
	provisioner   *tabs.Provisioner
	spreadsheetID string
	till          string
	parser        cells.Parser
	now           func() time.Time
}

// NewService builds a cash-day Service. A nil clock means time.Now.
func NewService(store sheetstore.Store, provisioner *tabs.Provisioner, spreadsheetID, till string, parser cells.Parser, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:         store,
		provisioner:   provisioner,
		spreadsheetID: spreadsheetID,
		till:          till,
		parser:        parser,
		now:           now,
	}
}

// OpenParams carries an opening declaration.
type OpenParams struct {
	Date          string // YYYY-MM-DD
	Employee      string
	Breakdown     model.Breakdown
	OpeningTill   decimal.Decimal
	OpeningWithdr decimal.Decimal
	OpeningSend   decimal.Decimal
}

// CloseParams carries a closing declaration.
type CloseParams struct {
	Date          string
	OpenID        string
	Employee      string
	Breakdown     model.Breakdown
	ClosingTill   decimal.Decimal
	ClosingWithdr decimal.Decimal
	ClosingSend   decimal.Decimal
}

// Open records the opening declaration for a date. The opening cash total is
// derived from the breakdown, never accepted separately. Returns ErrDayOpened
// when the date already has a record; the stored record is never overwritten.
func (s *Service) Open(ctx context.Context, params OpenParams) (model.CashDayOpen, error) {
	date := s.parser.NormalizeDate(params.Date)
	if date == "" {
		return model.CashDayOpen{}, fmt.Errorf("invalid date %q", params.Date)
	}
	if err := params.Breakdown.Validate(); err != nil {
		return model.CashDayOpen{}, err
	}
	for _, pair := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"till", params.OpeningTill},
		{"withdrawal", params.OpeningWithdr},
		{"send_money", params.OpeningSend},
	} {
		if pair.value.Sign() < 0 {
			return model.CashDayOpen{}, fmt.Errorf("opening %s total must be non-negative, got %s", pair.name, pair.value)
		}
	}

	if err := s.provisioner.EnsureTab(ctx, s.spreadsheetID, TabSpec); err != nil {
		return model.CashDayOpen{}, err
	}

	if _, _, err := s.findDayRow(ctx, date); err == nil {
		return model.CashDayOpen{}, fmt.Errorf("opening %s: %w", date, ErrDayOpened)
	} else if !errors.Is(err, ErrNotOpened) {
		return model.CashDayOpen{}, err
	}

	open := model.CashDayOpen{
		OpenID:        uuid.NewString(),
		Date:          date,
		OpenedAt:      s.now().UTC(),
		Employee:      params.Employee,
		Till:          s.till,
		OpeningCash:   params.Breakdown.Total(),
		Breakdown:     params.Breakdown,
		OpeningTill:   params.OpeningTill,
		OpeningWithdr: params.OpeningWithdr,
		OpeningSend:   params.OpeningSend,
	}
	row, err := openToRow(open)
	if err != nil {
		return model.CashDayOpen{}, err
	}
	if err := s.store.AppendRow(ctx, s.spreadsheetID, TabName, row); err != nil {
		return model.CashDayOpen{}, fmt.Errorf("recording open for %s: %w", date, err)
	}
	return open, nil
}

// Close records the closing declaration for an opened date. Validation is
// input-shape only; no reconciliation check happens at write time.
func (s *Service) Close(ctx context.Context, params CloseParams) (model.CashDayClose, error) {
	date := s.parser.NormalizeDate(params.Date)
	if date == "" {
		return model.CashDayClose{}, fmt.Errorf("invalid date %q", params.Date)
	}
	if err := params.Breakdown.Validate(); err != nil {
		return model.CashDayClose{}, err
	}

	row, pos, err := s.findDayRow(ctx, date)
	if err != nil {
		return model.CashDayClose{}, err
	}
	if rowToClose(row, s.parser) != nil {
		return model.CashDayClose{}, fmt.Errorf("closing %s: %w", date, ErrDayClosed)
	}
	if params.OpenID != "" && params.OpenID != sheetstore.CellString(row, colOpenID) {
		return model.CashDayClose{}, fmt.Errorf("closing %s: open id mismatch", date)
	}

	closing := model.CashDayClose{
		OpenID:        sheetstore.CellString(row, colOpenID),
		Date:          date,
		ClosedAt:      s.now().UTC(),
		Employee:      params.Employee,
		Till:          s.till,
		ClosingCash:   params.Breakdown.Total(),
		Breakdown:     params.Breakdown,
		ClosingTill:   params.ClosingTill,
		ClosingWithdr: params.ClosingWithdr,
		ClosingSend:   params.ClosingSend,
	}
	updated, err := closeIntoRow(row, closing)
	if err != nil {
		return model.CashDayClose{}, err
	}
	if err := s.store.UpdateRow(ctx, s.spreadsheetID, TabName, pos, updated); err != nil {
		return model.CashDayClose{}, fmt.Errorf("recording close for %s: %w", date, err)
	}
	return closing, nil
}

// GetDay fetches a date's record. Returns ErrNotOpened when no open
// declaration exists for the date.
func (s *Service) GetDay(ctx context.Context, date string) (Day, error) {
	normalized := s.parser.NormalizeDate(date)
	if normalized == "" {
		return Day{}, fmt.Errorf("invalid date %q", date)
	}
	row, _, err := s.findDayRow(ctx, normalized)
	if err != nil {
		return Day{}, err
	}
	return Day{Open: rowToOpen(row, s.parser), Close: rowToClose(row, s.parser)}, nil
}

// Opening returns the opening declaration for one date. The engine calls
// this once per day in its fan-out.
func (s *Service) Opening(ctx context.Context, date string) (model.CashDayOpen, error) {
	day, err := s.GetDay(ctx, date)
	if err != nil {
		return model.CashDayOpen{}, err
	}
	return day.Open, nil
}

// YesterdayClosing scans closing records strictly before the given date and
// returns the closing cash total of the most recent one, or zero when none
// exists. A linear scan: daily volumes make an index pointless.
func (s *Service) YesterdayClosing(ctx context.Context, beforeDate string) (decimal.Decimal, error) {
	before := s.parser.NormalizeDate(beforeDate)
	if before == "" {
		return decimal.Zero, fmt.Errorf("invalid date %q", beforeDate)
	}
	rows, err := s.readDataRows(ctx)
	if err != nil {
		if errors.Is(err, sheetstore.ErrTabNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	best := ""
	bestCash := decimal.Zero
	for _, row := range rows {
		closing := rowToClose(row, s.parser)
		if closing == nil || closing.Date == "" || closing.Date >= before {
			continue
		}
		// Ties broken by later date; canonical dates compare lexically.
		if closing.Date >= best {
			best = closing.Date
			bestCash = closing.ClosingCash
		}
	}
	return bestCash, nil
}

// findDayRow scans for the first row whose normalized date matches. Returns
// the raw row and its 1-based physical position.
func (s *Service) findDayRow(ctx context.Context, date string) ([]any, int, error) {
	rows, err := s.readDataRows(ctx)
	if err != nil {
		if errors.Is(err, sheetstore.ErrTabNotFound) {
			return nil, 0, fmt.Errorf("day %s: %w", date, ErrNotOpened)
		}
		return nil, 0, err
	}
	for i, row := range rows {
		if s.parser.NormalizeDate(cellAt(row, colDate)) == date {
			return row, i + 1 + headerRowOffset, nil
		}
	}
	return nil, 0, fmt.Errorf("day %s: %w", date, ErrNotOpened)
}

func (s *Service) readDataRows(ctx context.Context) ([][]any, error) {
	rows, err := s.store.ReadRows(ctx, s.spreadsheetID, TabName, "", sheetstore.RenderUnformatted)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", TabName, err)
	}
	if len(rows) <= headerRowOffset {
		return nil, nil
	}
	return rows[headerRowOffset:], nil
}
