// Package tabs provisions ledger tabs in the remote workbook and caches
// their existence so routine writes do not pay a metadata round trip.
package tabs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tillbook-dev/tillbook/internal/sheetstore"
)

// DefaultTTL bounds how long a tab-existence snapshot is trusted.
const DefaultTTL = time.Hour

// Spec names a tab and its canonical header row. Each ledger package owns
// exactly one Spec so the column-order contract lives in one place per tab.
type Spec struct {
	Name   string
	Header []string
}

type cacheEntry struct {
	names   map[string]bool
	checked map[string]bool // tabs whose header has been verified this process
	fetched time.Time
}

// Provisioner ensures tabs exist with their header row before first use.
// The cache is shared across concurrent requests; a stale "exists" entry only
// risks a redundant create, which the store treats as idempotent.
type Provisioner struct {
	store sheetstore.Store
	ttl   time.Duration
	now   func() time.Time

	mu    sync.Mutex
	cache map[string]*cacheEntry // keyed by spreadsheet id
}

// NewProvisioner builds a Provisioner. ttl <= 0 means DefaultTTL; a nil
// clock means time.Now (tests inject one to expire the cache deterministically).
func NewProvisioner(store sheetstore.Store, ttl time.Duration, now func() time.Time) *Provisioner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Provisioner{
		store: store,
		ttl:   ttl,
		now:   now,
		cache: make(map[string]*cacheEntry),
	}
}

// EnsureTab guarantees the tab exists with its canonical header row.
// Creation is idempotent by name; a tab found with an empty or shifted
// header gets the header rewritten at column A (a shifted header makes
// every downstream column-index read return the wrong field).
func (p *Provisioner) EnsureTab(ctx context.Context, spreadsheetID string, spec Spec) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := p.cache[spreadsheetID]
	if entry == nil || p.now().Sub(entry.fetched) > p.ttl {
		names, err := p.store.ListTabs(ctx, spreadsheetID)
		if err != nil {
			return fmt.Errorf("listing tabs: %w", err)
		}
		known := make(map[string]bool, len(names))
		for _, n := range names {
			known[n] = true
		}
		checked := map[string]bool{}
		if entry != nil {
			checked = entry.checked
		}
		entry = &cacheEntry{names: known, checked: checked, fetched: p.now()}
		p.cache[spreadsheetID] = entry
	}

	if !entry.names[spec.Name] {
		if err := p.store.CreateTab(ctx, spreadsheetID, spec.Name); err != nil {
			return fmt.Errorf("creating tab %s: %w", spec.Name, err)
		}
		if err := p.store.UpdateRow(ctx, spreadsheetID, spec.Name, 1, headerCells(spec)); err != nil {
			return fmt.Errorf("writing header for %s: %w", spec.Name, err)
		}
		entry.names[spec.Name] = true
		entry.checked[spec.Name] = true
		return nil
	}

	if entry.checked[spec.Name] {
		return nil
	}
	if err := p.repairHeader(ctx, spreadsheetID, spec); err != nil {
		return err
	}
	entry.checked[spec.Name] = true
	return nil
}

// repairHeader rewrites the canonical header when row 1 is empty or starts
// at a non-first column.
func (p *Provisioner) repairHeader(ctx context.Context, spreadsheetID string, spec Spec) error {
	rows, err := p.store.ReadRows(ctx, spreadsheetID, spec.Name, "1:1", sheetstore.RenderFormatted)
	if err != nil {
		return fmt.Errorf("checking header for %s: %w", spec.Name, err)
	}
	broken := len(rows) == 0 || len(rows[0]) == 0 || sheetstore.CellString(rows[0], 0) == ""
	if !broken {
		return nil
	}
	log.Warn().Str("tab", spec.Name).Msg("repairing empty or shifted header row")
	if err := p.store.UpdateRow(ctx, spreadsheetID, spec.Name, 1, headerCells(spec)); err != nil {
		return fmt.Errorf("repairing header for %s: %w", spec.Name, err)
	}
	return nil
}

func headerCells(spec Spec) []any {
	cells := make([]any, len(spec.Header))
	for i, h := range spec.Header {
		cells[i] = h
	}
	return cells
}
