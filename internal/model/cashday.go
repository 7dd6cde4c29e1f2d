package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DenominationLine is one row of a counted-cash breakdown.
// Amount is always Denomination * Count.
type DenominationLine struct {
	Denomination decimal.Decimal `json:"denomination"`
	Count        int             `json:"count"`
	Amount       decimal.Decimal `json:"amount"`
}

// Breakdown is an ordered counted-cash breakdown, largest note first by convention.
type Breakdown []DenominationLine

// Total sums the line amounts.
func (b Breakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range b {
		total = total.Add(line.Amount)
	}
	return total
}

// Validate checks every line: positive denomination, non-negative integral count,
// and amount == denomination * count.
func (b Breakdown) Validate() error {
	for i, line := range b {
		if line.Denomination.Sign() <= 0 {
			return fmt.Errorf("breakdown line %d: denomination must be positive, got %s", i+1, line.Denomination)
		}
		if line.Count < 0 {
			return fmt.Errorf("breakdown line %d: count must be non-negative, got %d", i+1, line.Count)
		}
		want := line.Denomination.Mul(decimal.NewFromInt(int64(line.Count)))
		if !line.Amount.Equal(want) {
			return fmt.Errorf("breakdown line %d: amount %s != %s x %d", i+1, line.Amount, line.Denomination, line.Count)
		}
	}
	return nil
}

// CashDayOpen is the opening declaration for one business date.
// At most one exists per date; it is never mutated after creation.
type CashDayOpen struct {
	OpenID        string
	Date          string // YYYY-MM-DD, business timezone
	OpenedAt      time.Time
	Employee      string
	Till          string
	OpeningCash   decimal.Decimal // must equal Breakdown.Total()
	Breakdown     Breakdown
	OpeningTill   decimal.Decimal
	OpeningWithdr decimal.Decimal
	OpeningSend   decimal.Decimal
}

// OpeningTotal returns the declared opening balance for one bucket.
func (o CashDayOpen) OpeningTotal(m PaymentMethod) decimal.Decimal {
	switch m {
	case MethodCash:
		return o.OpeningCash
	case MethodTill:
		return o.OpeningTill
	case MethodWithdrawal:
		return o.OpeningWithdr
	case MethodSendMoney:
		return o.OpeningSend
	}
	return decimal.Zero
}

// CashDayClose is the closing declaration paired with a CashDayOpen.
// Kept as an audit trail and to seed the next day's baseline.
type CashDayClose struct {
	OpenID        string
	Date          string
	ClosedAt      time.Time
	Employee      string
	Till          string
	ClosingCash   decimal.Decimal
	Breakdown     Breakdown
	ClosingTill   decimal.Decimal
	ClosingWithdr decimal.Decimal
	ClosingSend   decimal.Decimal
}
