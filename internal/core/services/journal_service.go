package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
	portssvc "github.com/kareem3680/akhdar-erp/internal/core/ports/services"
	"github.com/kareem3680/akhdar-erp/internal/dto"
	"github.com/kareem3680/akhdar-erp/internal/middleware"
)

// journalService provides journal category operations.
type journalService struct {
	journalRepo portsrepo.JournalRepository
}

// NewJournalService creates a new journal service.
func NewJournalService(journalRepo portsrepo.JournalRepository) portssvc.JournalSvcFacade {
	return &journalService{journalRepo: journalRepo}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

func validJournalType(t domain.JournalType) bool {
	switch t {
	case domain.JournalSales, domain.JournalPurchases, domain.JournalPayment, domain.JournalLoan, domain.JournalGeneral:
		return true
	}
	return false
}

func (s *journalService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journalType := domain.JournalType(req.JournalType)
	if !validJournalType(journalType) {
		return nil, fmt.Errorf("%w: unknown journal type %q", apperrors.ErrValidation, req.JournalType)
	}

	now := time.Now().UTC()
	journal := domain.Journal{
		JournalID:   uuid.NewString(),
		Name:        req.Name,
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		JournalType: journalType,
		Description: req.Description,
		AuditFields: domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.journalRepo.SaveJournal(ctx, journal); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save journal in repository", slog.String("error", err.Error()), slog.String("journal_code", journal.Code))
		}
		return nil, err
	}

	logger.Info("Journal created successfully", slog.String("journal_id", journal.JournalID), slog.String("journal_type", string(journal.JournalType)))
	return &journal, nil
}

func (s *journalService) GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	return s.journalRepo.FindJournalByID(ctx, journalID)
}

// GetJournalByType resolves the journal backing a given category, e.g.
// the SALES journal that sale deliveries post into.
func (s *journalService) GetJournalByType(ctx context.Context, journalType string) (*domain.Journal, error) {
	t := domain.JournalType(strings.ToUpper(strings.TrimSpace(journalType)))
	if !validJournalType(t) {
		return nil, fmt.Errorf("%w: unknown journal type %q", apperrors.ErrValidation, journalType)
	}
	return s.journalRepo.FindJournalByType(ctx, t)
}

func (s *journalService) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	journals, err := s.journalRepo.ListJournals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	if journals == nil {
		return []domain.Journal{}, nil
	}
	return journals, nil
}

// DeleteJournal removes a journal category; the repository rejects the
// delete when entries exist under it.
func (s *journalService) DeleteJournal(ctx context.Context, journalID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.journalRepo.DeleteJournal(ctx, journalID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to delete journal in repository", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		}
		return err
	}
	logger.Info("Journal deleted successfully", slog.String("journal_id", journalID))
	return nil
}
