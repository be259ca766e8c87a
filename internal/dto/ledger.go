package dto

import (
	"time"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the payload for creating an account.
type CreateAccountRequest struct {
	Code            string  `json:"code" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	AccountType     string  `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	CurrencyCode    string  `json:"currencyCode" binding:"required,len=3"`
	ParentAccountID *string `json:"parentAccountID"`
	Description     string  `json:"description"`
}

// UpdateAccountRequest defines the updatable fields of an account.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     string          `json:"accountType"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	ParentAccountID string          `json:"parentAccountID,omitempty"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       a.AccountID,
		Code:            a.Code,
		Name:            a.Name,
		AccountType:     string(a.AccountType),
		Amount:          a.Amount,
		CurrencyCode:    a.CurrencyCode,
		ParentAccountID: a.ParentAccountID,
		Description:     a.Description,
		CreatedAt:       a.CreatedAt,
	}
}

// CreateJournalRequest defines the payload for creating a journal category.
type CreateJournalRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required"`
	JournalType string `json:"journalType" binding:"required,oneof=SALES PURCHASES PAYMENT LOAN GENERAL"`
	Description string `json:"description"`
}

// JournalResponse defines the data returned for a journal category.
type JournalResponse struct {
	JournalID   string    `json:"journalID"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	JournalType string    `json:"journalType"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToJournalResponse converts a domain.Journal to JournalResponse.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	return JournalResponse{
		JournalID:   j.JournalID,
		Name:        j.Name,
		Code:        j.Code,
		JournalType: string(j.JournalType),
		Description: j.Description,
		CreatedAt:   j.CreatedAt,
	}
}

// CreateEntryLineRequest is one debit or credit line in an entry request.
type CreateEntryLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// CreateEntryRequest defines the payload for creating a journal entry.
// Status may be DRAFT (default) or POSTED; posting directly applies the
// account balance effects in the same call.
type CreateEntryRequest struct {
	JournalID string                   `json:"journalID" binding:"required"`
	Date      time.Time                `json:"date" binding:"required"`
	Reference string                   `json:"reference"`
	Status    string                   `json:"status" binding:"omitempty,oneof=DRAFT POSTED"`
	Lines     []CreateEntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// UpdateEntryRequest defines the updatable header fields of a draft entry.
type UpdateEntryRequest struct {
	Date      *time.Time `json:"date"`
	Reference *string    `json:"reference"`
}

// EntryLineResponse defines the data returned for an entry line.
type EntryLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	Description string          `json:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID   string              `json:"entryID"`
	JournalID string              `json:"journalID"`
	Date      time.Time           `json:"date"`
	Reference string              `json:"reference,omitempty"`
	Status    string              `json:"status"`
	Lines     []EntryLineResponse `json:"lines,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	CreatedBy string              `json:"createdBy"`
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	lines := make([]EntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = EntryLineResponse{
			LineID:      l.LineID,
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}
	return EntryResponse{
		EntryID:   e.EntryID,
		JournalID: e.JournalID,
		Date:      e.Date,
		Reference: e.Reference,
		Status:    string(e.Status),
		Lines:     lines,
		CreatedAt: e.CreatedAt,
		CreatedBy: e.CreatedBy,
	}
}

// ListEntriesParams holds parameters for listing journal entries.
type ListEntriesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse is a page of journal entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}
