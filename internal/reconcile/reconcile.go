// Package reconcile folds the five event streams into per-method expected
// balances for a date range.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tillbook-dev/tillbook/internal/cashday"
	"github.com/tillbook-dev/tillbook/internal/cells"
	"github.com/tillbook-dev/tillbook/internal/feeds"
	"github.com/tillbook-dev/tillbook/internal/model"
)

// Coverage statuses for the opening-value component of a statement.
const (
	StatusOK             = "ok"
	StatusPartialTimeout = "partial-timeout"
	StatusPartialError   = "partial-error"
)

// OpeningSource yields one date's opening declaration. cashday.ErrNotOpened
// means the day was never opened and counts as a clean zero, not a failure.
type OpeningSource interface {
	Opening(ctx context.Context, date string) (model.CashDayOpen, error)
}

// WithdrawalLister yields withdrawals inside an inclusive date range.
type WithdrawalLister interface {
	List(ctx context.Context, fromDate, toDate string) ([]model.ManualWithdrawal, error)
}

// TransferLister yields transfers inside an inclusive date range.
type TransferLister interface {
	List(ctx context.Context, fromDate, toDate string) ([]model.Transfer, error)
}

// Options bounds the opening fan-out. Zero values take the defaults.
type Options struct {
	OpeningWindowDays int           // default 31
	PerDayTimeout     time.Duration // default 4s
	MaxParallel       int           // default 8
}

func (o Options) withDefaults() Options {
	if o.OpeningWindowDays <= 0 {
		o.OpeningWindowDays = 31
	}
	if o.PerDayTimeout <= 0 {
		o.PerDayTimeout = 4 * time.Second
	}
	if o.MaxParallel <= 0 {
		o.MaxParallel = 8
	}
	return o
}

// Line is one payment method's column of the statement.
type Line struct {
	Opening      decimal.Decimal
	Sales        decimal.Decimal
	Withdrawals  decimal.Decimal
	Expenses     decimal.Decimal
	TransfersNet decimal.Decimal
	Expected     decimal.Decimal
}

// Coverage reports how complete the opening-value component is. A silently
// zeroed opening looks like a real shortfall, so this always travels with
// the statement.
type Coverage struct {
	Status          string
	DaysRequested   int      // calendar days in [from, to]
	DaysFetched     int      // days actually looked up (window-capped)
	WindowTruncated bool     // range exceeded the opening window
	FailedDays      []string // days whose lookup errored or timed out
}

// Partial reports whether the opening component is anything short of
// known-complete.
func (c Coverage) Partial() bool {
	return c.WindowTruncated || len(c.FailedDays) > 0
}

// Statement is the reconciliation result for a date range.
type Statement struct {
	From     string
	To       string
	Lines    map[model.PaymentMethod]Line
	Total    decimal.Decimal
	Coverage Coverage
}

// Project returns per-method display balances after subtracting a candidate
// withdrawal from its target method. Every value is floored at zero; the
// floor is presentation only and the statement itself is never floored.
func (s Statement) Project(method model.PaymentMethod, amount decimal.Decimal) map[model.PaymentMethod]decimal.Decimal {
	out := make(map[model.PaymentMethod]decimal.Decimal, len(s.Lines))
	for m, line := range s.Lines {
		v := line.Expected
		if m == method {
			v = v.Sub(amount)
		}
		if v.Sign() < 0 {
			v = decimal.Zero
		}
		out[m] = v
	}
	return out
}

// Engine computes statements. It owns no data; every Compute re-reads the
// ledgers through its collaborators.
type Engine struct {
	openings    OpeningSource
	withdrawals WithdrawalLister
	transfers   TransferLister
	sales       feeds.SalesLister
	expenses    feeds.ExpenseLister
	parser      cells.Parser
	loc         *time.Location
	opts        Options
}

// NewEngine wires an Engine. A nil location means UTC.
func NewEngine(openings OpeningSource, withdrawals WithdrawalLister, transfers TransferLister,
	sales feeds.SalesLister, expenses feeds.ExpenseLister,
	parser cells.Parser, loc *time.Location, opts Options) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		openings:    openings,
		withdrawals: withdrawals,
		transfers:   transfers,
		sales:       sales,
		expenses:    expenses,
		parser:      parser,
		loc:         loc,
		opts:        opts.withDefaults(),
	}
}

// Compute reconciles the inclusive range [from, to]. Opening lookups are a
// bounded fan-out capped at the configured window; sales, expenses,
// withdrawals and transfers always cover the full range.
func (e *Engine) Compute(ctx context.Context, from, to string) (Statement, error) {
	fromDate := e.parser.NormalizeDate(from)
	toDate := e.parser.NormalizeDate(to)
	if fromDate == "" || toDate == "" {
		return Statement{}, fmt.Errorf("invalid date range %q..%q", from, to)
	}
	if fromDate > toDate {
		return Statement{}, fmt.Errorf("range start %s is after end %s", fromDate, toDate)
	}

	lines := make(map[model.PaymentMethod]Line, len(model.Methods()))
	for _, m := range model.Methods() {
		lines[m] = Line{}
	}

	coverage, err := e.foldOpenings(ctx, fromDate, toDate, lines)
	if err != nil {
		return Statement{}, err
	}
	if err := e.foldSales(ctx, fromDate, toDate, lines); err != nil {
		return Statement{}, err
	}
	if err := e.foldWithdrawals(ctx, fromDate, toDate, lines); err != nil {
		return Statement{}, err
	}
	if err := e.foldExpenses(ctx, fromDate, toDate, lines); err != nil {
		return Statement{}, err
	}
	if err := e.foldTransfers(ctx, fromDate, toDate, lines); err != nil {
		return Statement{}, err
	}

	total := decimal.Zero
	for m, line := range lines {
		line.Expected = line.Opening.
			Add(line.Sales).
			Sub(line.Withdrawals).
			Sub(line.Expenses).
			Add(line.TransfersNet)
		lines[m] = line
		total = total.Add(line.Expected)
	}

	return Statement{
		From:     fromDate,
		To:       toDate,
		Lines:    lines,
		Total:    total,
		Coverage: coverage,
	}, nil
}

// foldOpenings sums opening declarations day by day. Each lookup runs
// independently under its own timeout; a failed day contributes zero and
// degrades the coverage rather than aborting the statement.
func (e *Engine) foldOpenings(ctx context.Context, from, to string, lines map[model.PaymentMethod]Line) (Coverage, error) {
	days, truncated, err := enumerateDays(from, to, e.opts.OpeningWindowDays)
	if err != nil {
		return Coverage{}, err
	}
	requested, err := countDays(from, to)
	if err != nil {
		return Coverage{}, err
	}

	type dayResult struct {
		open model.CashDayOpen
		err  error
	}
	results := make([]dayResult, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.MaxParallel)
	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			dctx, cancel := context.WithTimeout(gctx, e.opts.PerDayTimeout)
			defer cancel()
			open, err := e.openings.Opening(dctx, day)
			if errors.Is(err, cashday.ErrNotOpened) {
				err = nil // unopened day is a clean zero
			}
			results[i] = dayResult{open: open, err: err}
			return nil // failures degrade coverage, never cancel siblings
		})
	}
	if err := g.Wait(); err != nil {
		return Coverage{}, err
	}

	cov := Coverage{
		Status:          StatusOK,
		DaysRequested:   requested,
		DaysFetched:     len(days),
		WindowTruncated: truncated,
	}
	for i, r := range results {
		if r.err != nil {
			cov.FailedDays = append(cov.FailedDays, days[i])
			if errors.Is(r.err, context.DeadlineExceeded) {
				if cov.Status == StatusOK {
					cov.Status = StatusPartialTimeout
				}
			} else {
				cov.Status = StatusPartialError
			}
			log.Warn().Str("date", days[i]).Err(r.err).Msg("opening lookup failed; day counts as zero")
			continue
		}
		for _, m := range model.Methods() {
			line := lines[m]
			line.Opening = line.Opening.Add(r.open.OpeningTotal(m))
			lines[m] = line
		}
	}
	return cov, nil
}

func (e *Engine) foldSales(ctx context.Context, from, to string, lines map[model.PaymentMethod]Line) error {
	sales, err := e.sales.ListSales(ctx)
	if err != nil {
		return fmt.Errorf("listing sales: %w", err)
	}
	for _, sale := range sales {
		if !sale.Method.Valid() {
			continue
		}
		date := sale.Timestamp.In(e.loc).Format("2006-01-02")
		if date < from || date > to {
			continue
		}
		line := lines[sale.Method]
		line.Sales = line.Sales.Add(sale.Total)
		lines[sale.Method] = line
	}
	return nil
}

func (e *Engine) foldWithdrawals(ctx context.Context, from, to string, lines map[model.PaymentMethod]Line) error {
	withdrawals, err := e.withdrawals.List(ctx, from, to)
	if err != nil {
		return fmt.Errorf("listing withdrawals: %w", err)
	}
	for _, wd := range withdrawals {
		if !wd.Source.Valid() {
			log.Warn().Str("id", wd.ID).Msg("withdrawal has no canonical method; excluded from totals")
			continue
		}
		line := lines[wd.Source]
		line.Withdrawals = line.Withdrawals.Add(wd.Amount)
		lines[wd.Source] = line
	}
	return nil
}

func (e *Engine) foldExpenses(ctx context.Context, from, to string, lines map[model.PaymentMethod]Line) error {
	expenses, err := e.expenses.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("listing expenses: %w", err)
	}
	for _, exp := range expenses {
		if !exp.Method.Valid() || exp.Date < from || exp.Date > to {
			continue
		}
		line := lines[exp.Method]
		line.Expenses = line.Expenses.Add(exp.Amount)
		lines[exp.Method] = line
	}
	return nil
}

func (e *Engine) foldTransfers(ctx context.Context, from, to string, lines map[model.PaymentMethod]Line) error {
	transfers, err := e.transfers.List(ctx, from, to)
	if err != nil {
		return fmt.Errorf("listing transfers: %w", err)
	}
	for _, tr := range transfers {
		if !tr.From.Valid() || !tr.To.Valid() {
			log.Warn().Str("id", tr.ID).Msg("transfer has no canonical method; excluded from totals")
			continue
		}
		fromLine := lines[tr.From]
		fromLine.TransfersNet = fromLine.TransfersNet.Sub(tr.Amount)
		lines[tr.From] = fromLine

		toLine := lines[tr.To]
		toLine.TransfersNet = toLine.TransfersNet.Add(tr.Amount)
		lines[tr.To] = toLine
	}
	return nil
}

// enumerateDays lists the calendar days of [from, to], capped at windowDays.
func enumerateDays(from, to string, windowDays int) ([]string, bool, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, false, fmt.Errorf("invalid date %q", from)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return nil, false, fmt.Errorf("invalid date %q", to)
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if len(days) == windowDays {
			return days, true, nil
		}
		days = append(days, d.Format("2006-01-02"))
	}
	return days, false, nil
}

func countDays(from, to string) (int, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q", from)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q", to)
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}
