package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord is a point-of-sale receipt as seen by the reconciliation engine.
// Owned by the sales subsystem; consumed here only for per-method totals.
type SaleRecord struct {
	Timestamp time.Time
	Method    PaymentMethod
	Total     decimal.Decimal
}

// ExpenseRecord is an expense row as seen by the reconciliation engine.
type ExpenseRecord struct {
	Date   string // YYYY-MM-DD
	Method PaymentMethod
	Amount decimal.Decimal
}
