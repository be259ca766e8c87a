package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portssvc "github.com/kareem3680/akhdar-erp/internal/core/ports/services"
	"github.com/kareem3680/akhdar-erp/internal/dto"
	"github.com/kareem3680/akhdar-erp/internal/middleware"
)

// postingService records the financial side effect of business operations
// as directly-posted journal entries. Postings are best-effort by design:
// accounting is advisory relative to inventory and loan truth, so a
// missing role binding or a failed entry creation is reported through the
// result and a warning log, never as an error to the caller.
type postingService struct {
	roles    domain.LedgerRoles
	entrySvc portssvc.EntrySvcFacade
}

// NewPostingService creates a posting service bound to the given ledger
// role registry.
func NewPostingService(roles domain.LedgerRoles, entrySvc portssvc.EntrySvcFacade) portssvc.PostingSvcFacade {
	return &postingService{roles: roles, entrySvc: entrySvc}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

func skipped(logger *slog.Logger, reason string) dto.PostingResult {
	logger.Warn("Accounting posting skipped", slog.String("reason", reason))
	return dto.PostingResult{Skipped: true, Reason: reason}
}

// Post resolves the request's journal and account roles and creates a
// directly-posted entry. The system user recorded on the entry is the
// posting engine itself.
func (s *postingService) Post(ctx context.Context, req dto.PostingRequest) dto.PostingResult {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("posting_journal", string(req.Journal)), slog.String("posting_reference", req.Reference))

	journalID, ok := s.roles.Resolve(req.Journal)
	if !ok {
		return skipped(logger, fmt.Sprintf("no journal bound for role %q", req.Journal))
	}

	entryReq := dto.CreateEntryRequest{
		JournalID: journalID,
		Date:      req.Date,
		Reference: req.Reference,
		Status:    string(domain.EntryPosted),
		Lines:     make([]dto.CreateEntryLineRequest, len(req.Lines)),
	}
	for i, line := range req.Lines {
		accountID, ok := s.roles.Resolve(line.Account)
		if !ok {
			return skipped(logger, fmt.Sprintf("no account bound for role %q", line.Account))
		}
		entryReq.Lines[i] = dto.CreateEntryLineRequest{
			AccountID:   accountID,
			Description: line.Description,
			Debit:       line.Debit,
			Credit:      line.Credit,
		}
	}

	entry, err := s.entrySvc.CreateEntry(ctx, entryReq, "system/posting")
	if err != nil {
		return skipped(logger, fmt.Sprintf("entry creation failed: %v", err))
	}

	logger.Info("Accounting posting recorded", slog.String("entry_id", entry.EntryID))
	return dto.PostingResult{EntryID: entry.EntryID}
}
