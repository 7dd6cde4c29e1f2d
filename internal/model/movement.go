package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManualWithdrawal is a debit against one bucket outside of sales.
// Deleted by ID with no retention.
type ManualWithdrawal struct {
	ID        string
	Date      string // YYYY-MM-DD, business-assigned; may differ from CreatedAt's day
	CreatedAt time.Time
	Source    PaymentMethod
	Amount    decimal.Decimal
	Note      string
	CreatedBy string
}

// Transfer moves the same amount out of one bucket and into another.
type Transfer struct {
	ID        string
	Date      string
	CreatedAt time.Time
	From      PaymentMethod
	To        PaymentMethod
	Amount    decimal.Decimal
	Note      string
	CreatedBy string
}
