package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
	portssvc "github.com/kareem3680/akhdar-erp/internal/core/ports/services"
	"github.com/kareem3680/akhdar-erp/internal/dto"
	"github.com/kareem3680/akhdar-erp/internal/middleware"
	"github.com/kareem3680/akhdar-erp/internal/utils/accounting"
)

var (
	// ErrEntryUnbalanced is returned when an entry's debits do not equal its credits.
	ErrEntryUnbalanced = errors.New("journal entry lines do not balance")
	// ErrEntryImmutable is returned when updating or voiding a posted entry.
	ErrEntryImmutable = errors.New("journal entry is posted and immutable")
	// ErrEntryNotDraft is returned when posting an entry that is not in draft.
	ErrEntryNotDraft = errors.New("journal entry must be draft to be posted")
	// ErrEntryAccountNotFound is returned when a line references a missing account.
	ErrEntryAccountNotFound = errors.New("account referenced by entry line not found")
)

// entryService validates and posts balanced journal entries, mutating
// account balances atomically through the entry repository.
type entryService struct {
	entryRepo   portsrepo.EntryRepository
	journalRepo portsrepo.JournalRepository
	accountSvc  portssvc.AccountSvcFacade
}

// NewEntryService creates a new journal entry service.
func NewEntryService(entryRepo portsrepo.EntryRepository, journalRepo portsrepo.JournalRepository, accountSvc portssvc.AccountSvcFacade) portssvc.EntrySvcFacade {
	return &entryService{
		entryRepo:   entryRepo,
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
	}
}

var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// CreateEntry validates and persists a journal entry. When the requested
// status is POSTED the account balance effects are applied in the same
// repository transaction; a draft entry touches no balances.
func (s *entryService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	status := domain.EntryStatus(req.Status)
	if status == "" {
		status = domain.EntryDraft
	}
	if status != domain.EntryDraft && status != domain.EntryPosted {
		return nil, fmt.Errorf("%w: entry may only be created as DRAFT or POSTED", apperrors.ErrValidation)
	}

	if _, err := s.journalRepo.FindJournalByID(ctx, req.JournalID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, req.JournalID)
		}
		return nil, err
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines := make([]domain.EntryLine, len(req.Lines))
	accountIDs := make([]string, 0, len(req.Lines))
	for i, lineReq := range req.Lines {
		lines[i] = domain.EntryLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   lineReq.AccountID,
			Description: lineReq.Description,
			Debit:       lineReq.Debit,
			Credit:      lineReq.Credit,
			AuditFields: domain.NewAuditFields(creatorUserID, now),
		}
		accountIDs = append(accountIDs, lineReq.AccountID)
	}

	if err := accounting.ValidateEntryLines(lines); err != nil {
		return nil, fmt.Errorf("%w: %v: %v", apperrors.ErrValidation, ErrEntryUnbalanced, err)
	}

	// Every referenced account must resolve before anything is written.
	uniqueAccountIDs := uniqueStrings(accountIDs)
	accountsMap, err := s.accountSvc.GetAccountsByIDs(ctx, uniqueAccountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for entry creation", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range uniqueAccountIDs {
		if _, found := accountsMap[id]; !found {
			return nil, fmt.Errorf("%w: %v: ID %s", apperrors.ErrValidation, ErrEntryAccountNotFound, id)
		}
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		JournalID:   req.JournalID,
		Date:        req.Date,
		Reference:   req.Reference,
		Status:      status,
		Lines:       lines,
		AuditFields: domain.NewAuditFields(creatorUserID, now),
	}

	changes := accounting.BalanceChanges(lines)
	if status != domain.EntryPosted {
		changes = nil
	}

	if err := s.entryRepo.SaveEntry(ctx, entry, changes); err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	logger.Info("Journal entry created",
		slog.String("entry_id", entryID),
		slog.String("status", string(status)),
		slog.String("amount", accounting.EntryAmount(lines).String()))
	return &entry, nil
}

func (s *entryService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find entry by ID", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

func (s *entryService) ListEntries(ctx context.Context, journalID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.entryRepo.ListEntriesByJournal(ctx, journalID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list entries from repository", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToEntryResponse(&entries[i])
	}
	return &dto.ListEntriesResponse{Entries: responses, NextToken: nextToken}, nil
}

// PostEntry transitions a draft entry to POSTED, applying its account
// balance effects exactly once.
func (s *entryService) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.CanPost() {
		return nil, fmt.Errorf("%w: %v (status is %s)", apperrors.ErrConflict, ErrEntryNotDraft, entry.Status)
	}

	now := time.Now().UTC()
	changes := accounting.BalanceChanges(entry.Lines)
	if err := s.entryRepo.MarkEntryPosted(ctx, entryID, changes, userID, now); err != nil {
		logger.Error("Failed to post journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to post journal entry: %w", err)
	}

	entry.Status = domain.EntryPosted
	entry.Touch(userID, now)
	logger.Info("Journal entry posted",
		slog.String("entry_id", entryID),
		slog.String("amount", accounting.EntryAmount(entry.Lines).String()))
	return entry, nil
}

// UpdateEntry updates the header fields of a draft entry. Posted entries
// are immutable.
func (s *entryService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.Editable() {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrEntryImmutable)
	}

	updated := false
	if req.Date != nil {
		entry.Date = *req.Date
		updated = true
	}
	if req.Reference != nil {
		entry.Reference = *req.Reference
		updated = true
	}
	if !updated {
		return entry, nil
	}

	entry.Touch(userID, time.Now().UTC())
	if err := s.entryRepo.UpdateEntry(ctx, *entry); err != nil {
		logger.Error("Failed to update journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}
	return entry, nil
}

// VoidEntry transitions a draft entry to VOID. Posted entries are
// immutable and cannot be voided.
func (s *entryService) VoidEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.Editable() {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrEntryImmutable)
	}

	now := time.Now().UTC()
	if err := s.entryRepo.MarkEntryVoid(ctx, entryID, userID, now); err != nil {
		logger.Error("Failed to void journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to void journal entry: %w", err)
	}

	entry.Status = domain.EntryVoid
	entry.Touch(userID, now)
	logger.Info("Journal entry voided", slog.String("entry_id", entryID))
	return entry, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
