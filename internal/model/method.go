package model

import "strings"

// PaymentMethod is one of the four funds buckets tracked through reconciliation.
type PaymentMethod string

const (
	MethodCash       PaymentMethod = "cash"
	MethodTill       PaymentMethod = "till"
	MethodWithdrawal PaymentMethod = "withdrawal"
	MethodSendMoney  PaymentMethod = "send_money"
)

// Methods returns the four buckets in display order.
func Methods() []PaymentMethod {
	return []PaymentMethod{MethodCash, MethodTill, MethodWithdrawal, MethodSendMoney}
}

// Valid reports whether m is one of the four canonical buckets.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodTill, MethodWithdrawal, MethodSendMoney:
		return true
	}
	return false
}

// ParseMethod canonicalizes a free-text method label into a PaymentMethod.
// Matching is case/whitespace/separator-insensitive and covers historical
// misspellings found in old ledger rows ("withdrawel", "Mpesa").
func ParseMethod(label string) (PaymentMethod, bool) {
	key := strings.ToLower(label)
	key = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '_', '.':
			return -1
		}
		return r
	}, key)

	switch key {
	case "cash", "cashsale", "cashsales":
		return MethodCash, true
	case "till", "buygoods", "tillnumber", "mpesa", "mpesatill":
		return MethodTill, true
	case "withdrawal", "withdrawel", "withdraw", "withdrawalcash", "agentwithdrawal":
		return MethodWithdrawal, true
	case "sendmoney", "send", "sendmonies":
		return MethodSendMoney, true
	}
	return "", false
}
