// Package movements keeps the append-only ledgers of funds leaving a bucket
// (manual withdrawals) or moving between two buckets (transfers). Both share
// one shape: create, list by date range, delete by id.
package movements

import (
	"context"
	"errors"
	"fmt"

	"github.com/tillbook-dev/tillbook/internal/cells"
	"github.com/tillbook-dev/tillbook/internal/sheetstore"
	"github.com/tillbook-dev/tillbook/internal/tabs"
)

// ErrNotFound is returned when a delete target id matches no row.
var ErrNotFound = errors.New("movement not found")

const headerRowOffset = 1

// ledger is the shared tab plumbing under both movement types.
type ledger struct {
	store         sheetstore.Store
	provisioner   *tabs.Provisioner
	spreadsheetID string
	spec          tabs.Spec
	parser        cells.Parser
}

func (l *ledger) append(ctx context.Context, row []any) error {
	if err := l.provisioner.EnsureTab(ctx, l.spreadsheetID, l.spec); err != nil {
		return err
	}
	if err := l.store.AppendRow(ctx, l.spreadsheetID, l.spec.Name, row); err != nil {
		return fmt.Errorf("appending to %s: %w", l.spec.Name, err)
	}
	return nil
}

// dataRows returns the tab's rows without the header. A missing tab reads as
// an empty ledger: nothing was ever recorded.
func (l *ledger) dataRows(ctx context.Context) ([][]any, error) {
	rows, err := l.store.ReadRows(ctx, l.spreadsheetID, l.spec.Name, "", sheetstore.RenderUnformatted)
	if err != nil {
		if errors.Is(err, sheetstore.ErrTabNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", l.spec.Name, err)
	}
	if len(rows) <= headerRowOffset {
		return nil, nil
	}
	return rows[headerRowOffset:], nil
}

// delete scans the id column for the physical row position, then removes it.
// The store offers no addressing by value, so find-then-delete is the only
// protocol; the gap between the two calls is an accepted race.
func (l *ledger) delete(ctx context.Context, movementID string) error {
	rows, err := l.store.ReadRows(ctx, l.spreadsheetID, l.spec.Name, "", sheetstore.RenderUnformatted)
	if err != nil {
		if errors.Is(err, sheetstore.ErrTabNotFound) {
			return fmt.Errorf("deleting %s: %w", movementID, ErrNotFound)
		}
		return fmt.Errorf("reading %s: %w", l.spec.Name, err)
	}
	pos := sheetstore.FindRowPosition(rows, 0, movementID)
	if pos <= headerRowOffset {
		return fmt.Errorf("deleting %s: %w", movementID, ErrNotFound)
	}
	if err := l.store.DeleteRow(ctx, l.spreadsheetID, l.spec.Name, pos); err != nil {
		return fmt.Errorf("deleting %s: %w", movementID, err)
	}
	return nil
}

// inRange applies the ledger range rule: the row's own business date (not
// its creation instant) is normalized and compared inclusively. When both
// bounds are empty the row always passes, including rows whose date cannot
// be normalized; with bounds set, an unnormalizable date excludes the row.
func (l *ledger) inRange(dateCell any, fromDate, toDate string) bool {
	if fromDate == "" && toDate == "" {
		return true
	}
	date := l.parser.NormalizeDate(dateCell)
	if date == "" {
		return false
	}
	if fromDate != "" && date < fromDate {
		return false
	}
	if toDate != "" && date > toDate {
		return false
	}
	return true
}
