package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// ValidAccountType reports whether t is one of the known account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account is a node in the chart of accounts. Amount is the running balance:
// posted debits increase it and posted credits decrease it, uniformly across
// account types. That is the convention this system records, not the
// per-type normal-balance convention.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary key (UUID)
	Code            string          `json:"code"`            // Unique, stored uppercase
	Name            string          `json:"name"`            // User-defined name
	AccountType     AccountType     `json:"accountType"`     // ASSET, LIABILITY, etc.
	Amount          decimal.Decimal `json:"amount"`          // Running balance
	CurrencyCode    string          `json:"currencyCode"`    // ISO currency code
	ParentAccountID string          `json:"parentAccountID"` // Nullable self-reference
	Description     string          `json:"description"`     // Nullable user description
	AuditFields
}
