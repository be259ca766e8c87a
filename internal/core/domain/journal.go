package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalType identifies the business category a journal records. Engines
// look journals up by type when posting financial side effects.
type JournalType string

const (
	JournalSales     JournalType = "SALES"
	JournalPurchases JournalType = "PURCHASES"
	JournalPayment   JournalType = "PAYMENT"
	JournalLoan      JournalType = "LOAN"
	JournalGeneral   JournalType = "GENERAL"
)

// Journal is a named category of journal entries (e.g. sales, purchases,
// payroll/payment, loan).
type Journal struct {
	JournalID   string      `json:"journalID"` // Primary key (UUID)
	Name        string      `json:"name"`
	Code        string      `json:"code"` // Unique, stored uppercase
	JournalType JournalType `json:"journalType"`
	Description string      `json:"description"`
	AuditFields
}

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	EntryDraft  EntryStatus = "DRAFT"
	EntryPosted EntryStatus = "POSTED"
	EntryVoid   EntryStatus = "VOID"
)

// EntryLine is a single debit or credit line within a journal entry.
// Exactly one of Debit and Credit is positive; the other is zero.
type EntryLine struct {
	LineID      string          `json:"lineID"`  // Primary key (UUID)
	EntryID     string          `json:"entryID"` // FK -> JournalEntry.EntryID
	AccountID   string          `json:"accountID"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	AuditFields
}

// JournalEntry is one balanced transaction: the sum of line debits equals
// the sum of line credits. Once posted, the entry and its lines are
// immutable, and posting is the only point at which account balances move.
type JournalEntry struct {
	EntryID   string      `json:"entryID"`   // Primary key (UUID)
	JournalID string      `json:"journalID"` // FK -> Journal.JournalID
	Date      time.Time   `json:"date"`
	Reference string      `json:"reference"`
	Status    EntryStatus `json:"status"`
	Lines     []EntryLine `json:"lines,omitempty"`
	AuditFields
}

// CanPost reports whether the entry may transition to POSTED.
func (e *JournalEntry) CanPost() bool {
	return e.Status == EntryDraft
}

// Editable reports whether the entry may still be updated or deleted.
func (e *JournalEntry) Editable() bool {
	return e.Status == EntryDraft
}
