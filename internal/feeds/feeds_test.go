package feeds

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillbook-dev/tillbook/internal/cells"
	"github.com/tillbook-dev/tillbook/internal/model"
	"github.com/tillbook-dev/tillbook/internal/sheetstore"
)

const book = "book-1"

func seedSales(store *sheetstore.Memory) {
	store.Seed(book, SalesTab, [][]any{
		{"timestamp", "product", "qty", "client", "method", "unit_price", "total"},
		{"2025-08-30T10:00:00Z", "soda", 2.0, "", "cash", 250.0, 500.0},
		{"2025-08-30T11:00:00Z", "airtime", 1.0, "", "Mpesa", 100.0, 100.0},
		{"2025-08-30T12:00:00Z", "bread", 1.0, "", "card", 60.0, 60.0},   // unknown method
		{"not a time", "milk", 1.0, "", "cash", 55.0, 55.0},              // bad timestamp
		{"2025-08-30T13:00:00Z", "eggs", 1.0, "", "cash", 30.0, "oops"}, // bad total
	})
}

func TestListSales(t *testing.T) {
	ctx := context.Background()
	store := sheetstore.NewMemory()
	seedSales(store)
	f := NewSheetFeeds(store, book, cells.Parser{})

	sales, err := f.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 2, "malformed rows skipped, not fatal")
	assert.Equal(t, model.MethodCash, sales[0].Method)
	assert.True(t, sales[0].Total.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, model.MethodTill, sales[1].Method, "Mpesa label canonicalized to till")
}

func TestListExpenses(t *testing.T) {
	ctx := context.Background()
	store := sheetstore.NewMemory()
	store.Seed(book, ExpensesTab, [][]any{
		{"date", "description", "method", "amount", "recorded_by"},
		{"2025-08-30", "transport", "cash", 120.0, "wanjiku"},
		{"30/08/2025", "airtime", "send money", "80.00", "otieno"},
		{"garbage", "lunch", "cash", 60.0, "otieno"},
	})
	f := NewSheetFeeds(store, book, cells.Parser{})

	expenses, err := f.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "2025-08-30", expenses[0].Date)
	assert.Equal(t, "2025-08-30", expenses[1].Date, "locale date normalized")
	assert.Equal(t, model.MethodSendMoney, expenses[1].Method)
	assert.True(t, expenses[1].Amount.Equal(decimal.NewFromInt(80)))
}

func TestMissingTabsReadEmpty(t *testing.T) {
	ctx := context.Background()
	f := NewSheetFeeds(sheetstore.NewMemory(), book, cells.Parser{})

	sales, err := f.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)

	expenses, err := f.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}
