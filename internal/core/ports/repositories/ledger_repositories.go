package repositories

import (
	"context"
	"time"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for chart-of-accounts data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID. Missing IDs
	// are simply absent from the result map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate on a
	// code collision.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates the mutable descriptive fields of an account.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account. Returns apperrors.ErrConflict when the
	// account is referenced by any journal entry line.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountRepository combines account read and write operations.
type AccountRepository interface {
	AccountReader
	AccountWriter
}

// JournalRepository defines operations for journal categories.
type JournalRepository interface {
	// SaveJournal persists a new journal category. Returns
	// apperrors.ErrDuplicate on a code collision.
	SaveJournal(ctx context.Context, journal domain.Journal) error

	// FindJournalByID retrieves a journal by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// FindJournalByType retrieves the journal registered for a journal type.
	FindJournalByType(ctx context.Context, journalType domain.JournalType) (*domain.Journal, error)

	// ListJournals retrieves all journal categories.
	ListJournals(ctx context.Context) ([]domain.Journal, error)

	// DeleteJournal removes a journal category. Returns apperrors.ErrConflict
	// when entries exist under it.
	DeleteJournal(ctx context.Context, journalID string) error
}

// EntryReader defines read operations for journal entries and their lines.
type EntryReader interface {
	// FindEntryByID retrieves an entry with its lines populated.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntriesByJournal retrieves a paginated list of entries for a
	// journal using token-based pagination. Entries carry no lines.
	ListEntriesByJournal(ctx context.Context, journalID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// EntryWriter defines write operations for journal entries. All multi-row
// effects run inside a single database transaction.
type EntryWriter interface {
	// SaveEntry persists an entry and its lines, applying the given account
	// balance changes in the same transaction. balanceChanges is empty for
	// draft entries.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error

	// MarkEntryPosted transitions a draft entry to POSTED and applies the
	// balance changes atomically.
	MarkEntryPosted(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, updatedBy string, updatedAt time.Time) error

	// MarkEntryVoid transitions a draft entry to VOID.
	MarkEntryVoid(ctx context.Context, entryID string, updatedBy string, updatedAt time.Time) error

	// UpdateEntry updates the mutable header fields (date, reference) of a
	// draft entry.
	UpdateEntry(ctx context.Context, entry domain.JournalEntry) error
}

// EntryRepository combines entry read and write operations.
type EntryRepository interface {
	EntryReader
	EntryWriter
}
