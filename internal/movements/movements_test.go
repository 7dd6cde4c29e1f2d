package movements

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillbook-dev/tillbook/internal/cells"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/sheetstore"
	"github.com/tillbook-dev/tillbook/internal/tabs"
)

const book = "book-1"

// tickingClock hands out strictly increasing instants so ids and creation
// times are distinct within a test.
type tickingClock struct {
	t time.Time
}

func (c *tickingClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newClock() *tickingClock {
	return &tickingClock{t: time.Date(2025, 8, 30, 9, 0, 0, 0, time.UTC)}
}

func newWithdrawals(store *sheetstore.Memory, clock *tickingClock) *Withdrawals {
	p := tabs.NewProvisioner(store, time.Hour, nil)
	return NewWithdrawals(store, p, book, cells.Parser{}, clock.now)
}

func newTransfers(store *sheetstore.Memory, clock *tickingClock) *Transfers {
	p := tabs.NewProvisioner(store, time.Hour, nil)
	return NewTransfers(store, p, book, cells.Parser{}, clock.now)
}

func TestWithdrawalCreateAndList(t *testing.T) {
	ctx := context.Background()
	store := sheetstore.NewMemory()
	w := newWithdrawals(store, newClock())

	created, err := w.Create(ctx, WithdrawalParams{
		Date:      "2025-08-30",
		Source:    model.MethodCash,
		Amount:    decimal.NewFromInt(300),
		Note:      "till float",
		CreatedBy: "wanjiku",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	list, err := w.List(ctx, "2025-08-30", "2025-08-30")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, model.MethodCash, list[0].Source)
	assert.True(t, list[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "till float", list[0].Note)
}

func TestWithdrawalValidation(t *testing.T) {
	ctx := context.Background()
	w := newWithdrawals(sheetstore.NewMemory(), newClock())

	_, err := w.Create(ctx, WithdrawalParams{Date: "2025-08-30", Source: "visa", Amount: decimal.NewFromInt(10)})
	require.Error(t, err, "unknown method rejected before any remote call")

	_, err = w.Create(ctx, WithdrawalParams{Date: "2025-08-30", Source: model.MethodCash, Amount: decimal.Zero})
	require.Error(t, err)

	_, err = w.Create(ctx, WithdrawalParams{Date: "2025-08-30", Source: model.MethodCash, Amount: decimal.NewFromInt(-5)})
	require.Error(t, err)

	_, err = w.Create(ctx, WithdrawalParams{Date: "junk", Source: model.MethodCash, Amount: decimal.NewFromInt(5)})
	require.Error(t, err)
}

func TestWithdrawalListNewestFirst(t *testing.T) {
	ctx := context.Background()
	w := newWithdrawals(sheetstore.NewMemory(), newClock())

	first, err := w.Create(ctx, WithdrawalParams{Date: "2025-08-30", Source: model.MethodCash, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	second, err := w.Create(ctx, WithdrawalParams{Date: "2025-08-30", Source: model.MethodTill, Amount: decimal.NewFromInt(200)})
	require.NoError(t, err)

	list, err := w.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestWithdrawalRangeFilter(t *testing.T) {
	ctx := context.Background()
	store := sheetstore.NewMemory()
	w := newWithdrawals(store, newClock())

	for _, date := range []string{"2025-08-28", "2025-08-29", "2025-08-30"} {
		_, err := w.Create(ctx, WithdrawalParams{Date: date, Source: model.MethodCash, Amount: decimal.NewFromInt(10)})
		require.NoError(t, err)
	}

	list, err := w.List(ctx, "2025-08-28", "2025-08-29")
	require.NoError(t, err)
	assert.Len(t, list, 2, "range is inclusive on both ends")

	list, err = w.List(ctx, "2025-08-29", "2025-08-29")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-08-29", list[0].Date)
}

func TestWithdrawalUnparseableDateRows(t *testing.T) {
	ctx := context.Background()
	store := sheetstore.NewMemory()
	w := newWithdrawals(store, newClock())

	_, err := w.Create(ctx, WithdrawalParams{Date: "2025-08-30", Source: model.MethodCash, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	// A hand-edited row whose date cell is garbage.
	require.NoError(t, store.AppendRow(ctx, book, WithdrawalsTab,
		[]any{"2025-08-30T09:55:00Z-deadbeef", "???", "2025-08-30T09:55:00Z", "cash", "50.00", "", "otieno"}))

	ranged, err := w.List(ctx, "2025-08-01", "2025-08-31")
	require.NoError(t, err)
	assert.Len(t, ranged, 1, "unnormalizable dates are excluded from ranged lists")

	all, err := w.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2, "unfiltered lists keep every row for all-time totals")
}

func TestWithdrawalDelete(t *testing.T) {
	ctx := context.Background()
	store := sheetstore.NewMemory()
	w := newWithdrawals(store, newClock())

	created, err := w.Create(ctx, WithdrawalParams{Date: "2025-08-30", Source: model.MethodCash, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = w.Create(ctx, WithdrawalParams{Date: "2025-08-30", Source: model.MethodCash, Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)

	require.NoError(t, w.Delete(ctx, created.ID))

	list, err := w.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEqual(t, created.ID, list[0].ID)
}

func TestWithdrawalDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	store := sheetstore.NewMemory()
	w := newWithdrawals(store, newClock())

	_, err := w.Create(ctx, WithdrawalParams{Date: "2025-08-30", Source: model.MethodCash, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	before := store.RowCount(book, WithdrawalsTab)

	err = w.Delete(ctx, "2025-01-01T00:00:00Z-00000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, store.RowCount(book, WithdrawalsTab), "ledger unchanged")
}

func TestWithdrawalListLegacyLabels(t *testing.T) {
	ctx := context.Background()
	store := sheetstore.NewMemory()
	w := newWithdrawals(store, newClock())

	_, err := w.Create(ctx, WithdrawalParams{Date: "2025-08-30", Source: model.MethodCash, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	// Legacy row with a misspelled method label.
	require.NoError(t, store.AppendRow(ctx, book, WithdrawalsTab,
		[]any{"2025-08-30T09:50:00Z-cafe0123", "2025-08-30", "2025-08-30T09:50:00Z", "withdrawel", "70.00", "", "otieno"}))

	list, err := w.List(ctx, "2025-08-30", "2025-08-30")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.MethodWithdrawal, list[0].Source, "legacy label canonicalized; row is newest by created_at")
}

func TestTransferCreateAndList(t *testing.T) {
	ctx := context.Background()
	tr := newTransfers(sheetstore.NewMemory(), newClock())

	created, err := tr.Create(ctx, TransferParams{
		Date:      "2025-08-30",
		From:      model.MethodWithdrawal,
		To:        model.MethodCash,
		Amount:    decimal.NewFromInt(200),
		CreatedBy: "wanjiku",
	})
	require.NoError(t, err)

	list, err := tr.List(ctx, "2025-08-30", "2025-08-30")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, model.MethodWithdrawal, list[0].From)
	assert.Equal(t, model.MethodCash, list[0].To)
}

func TestTransferValidation(t *testing.T) {
	ctx := context.Background()
	tr := newTransfers(sheetstore.NewMemory(), newClock())

	_, err := tr.Create(ctx, TransferParams{Date: "2025-08-30", From: model.MethodCash, To: model.MethodCash, Amount: decimal.NewFromInt(5)})
	require.Error(t, err, "from and to must differ")

	_, err = tr.Create(ctx, TransferParams{Date: "2025-08-30", From: "visa", To: model.MethodCash, Amount: decimal.NewFromInt(5)})
	require.Error(t, err)

	_, err = tr.Create(ctx, TransferParams{Date: "2025-08-30", From: model.MethodCash, To: "paypal", Amount: decimal.NewFromInt(5)})
	require.Error(t, err)

	_, err = tr.Create(ctx, TransferParams{Date: "2025-08-30", From: model.MethodTill, To: model.MethodCash, Amount: decimal.Zero})
	require.Error(t, err)
}

func TestTransferDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	tr := newTransfers(sheetstore.NewMemory(), newClock())

	err := tr.Delete(ctx, "2025-01-01T00:00:00Z-00000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
