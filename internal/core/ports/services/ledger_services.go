package services

import (
	"context"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	"github.com/kareem3680/akhdar-erp/internal/dto"
)

// AccountSvcFacade exposes chart-of-accounts operations.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
}

// JournalSvcFacade exposes journal category operations.
type JournalSvcFacade interface {
	CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error)
	GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)
	GetJournalByType(ctx context.Context, journalType string) (*domain.Journal, error)
	ListJournals(ctx context.Context) ([]domain.Journal, error)
	DeleteJournal(ctx context.Context, journalID string) error
}

// EntrySvcFacade exposes journal entry operations: creation (draft or
// directly posted), the draft-to-posted transition, and draft-only
// update/void.
type EntrySvcFacade interface {
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, journalID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
	PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)
	UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error)
	VoidEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)
}

// PostingSvcFacade records the financial side effect of a business
// operation, best-effort: a missing role binding or a failed entry
// creation yields a skipped result, never an error.
type PostingSvcFacade interface {
	Post(ctx context.Context, req dto.PostingRequest) dto.PostingResult
}
