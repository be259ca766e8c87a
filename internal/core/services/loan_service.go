package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
	portssvc "github.com/kareem3680/akhdar-erp/internal/core/ports/services"
	"github.com/kareem3680/akhdar-erp/internal/dto"
	"github.com/kareem3680/akhdar-erp/internal/middleware"
)

var (
	// ErrLoanNotPending is returned when approving or rejecting a loan that
	// already left the pending state.
	ErrLoanNotPending = errors.New("loan is not pending")
	// ErrInstallmentNotPayable is returned when paying an installment that is
	// already paid or cancelled.
	ErrInstallmentNotPayable = errors.New("installment is not payable")
)

// reminderWindow is how far ahead the reminder sweep looks for upcoming
// installments.
const reminderWindow = 3 * 24 * time.Hour

// defaultGrace is how long an installment may stay overdue before its loan
// is considered defaulted.
const defaultGrace = 30 * 24 * time.Hour

// loanService manages loans and their installment schedules. The
// amortization math lives on the domain (domain.Amortize); this service
// owns the lifecycle transitions and the best-effort ledger postings.
type loanService struct {
	loanRepo   portsrepo.LoanRepository
	postingSvc portssvc.PostingSvcFacade
	notifier   portssvc.Notifier
}

// NewLoanService creates a new loan service.
func NewLoanService(loanRepo portsrepo.LoanRepository, postingSvc portssvc.PostingSvcFacade, notifier portssvc.Notifier) portssvc.LoanSvcFacade {
	return &loanService{
		loanRepo:   loanRepo,
		postingSvc: postingSvc,
		notifier:   notifier,
	}
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// CreateLoan validates the request, derives the amortization figures and
// persists the loan in PENDING state. The installment schedule is not
// created until approval.
func (s *loanService) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	kind := domain.BorrowerKind(req.BorrowerKind)
	if !domain.ValidBorrowerKind(kind) {
		return nil, fmt.Errorf("%w: invalid borrower kind %q", apperrors.ErrValidation, req.BorrowerKind)
	}

	plan, err := domain.Amortize(req.LoanAmount, req.InterestRate, req.InstallmentNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	loan := domain.Loan{
		LoanID:            uuid.NewString(),
		Borrower:          domain.BorrowerRef{Kind: kind, ID: req.BorrowerID},
		LoanAmount:        req.LoanAmount,
		InterestRate:      req.InterestRate,
		InstallmentNumber: req.InstallmentNumber,
		StartDate:         req.StartDate,
		TotalPayable:      plan.TotalPayable,
		InstallmentAmount: plan.InstallmentAmount,
		RemainingBalance:  plan.TotalPayable,
		Status:            domain.LoanPending,
		AuditFields:       domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.loanRepo.SaveLoan(ctx, loan); err != nil {
		logger.Error("Failed to save loan", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Loan created",
		slog.String("loan_id", loan.LoanID),
		slog.String("borrower_id", req.BorrowerID),
		slog.String("total_payable", plan.TotalPayable.String()))
	return &loan, nil
}

func (s *loanService) GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	return s.loanRepo.FindLoanByID(ctx, loanID)
}

func (s *loanService) ListLoans(ctx context.Context, limit int, offset int) ([]domain.Loan, error) {
	if limit <= 0 {
		limit = 20
	}
	loans, err := s.loanRepo.ListLoans(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	if loans == nil {
		return []domain.Loan{}, nil
	}
	return loans, nil
}

// buildSchedule expands the loan's amortization into monthly installments
// starting at StartDate. The final installment absorbs the rounding
// remainder so the schedule sums to TotalPayable exactly.
func buildSchedule(loan *domain.Loan, actorID string, at time.Time) []domain.LoanInstallment {
	plan := domain.AmortizationPlan{
		TotalPayable:      loan.TotalPayable,
		InstallmentAmount: loan.InstallmentAmount,
		FinalInstallment:  loan.TotalPayable.Sub(loan.InstallmentAmount.Mul(decimal.NewFromInt(int64(loan.InstallmentNumber - 1)))),
	}

	installments := make([]domain.LoanInstallment, loan.InstallmentNumber)
	for i := 0; i < loan.InstallmentNumber; i++ {
		amount := plan.InstallmentAmount
		if i == loan.InstallmentNumber-1 {
			amount = plan.FinalInstallment
		}
		installments[i] = domain.LoanInstallment{
			InstallmentID: uuid.NewString(),
			LoanID:        loan.LoanID,
			Amount:        amount,
			DueDate:       loan.StartDate.AddDate(0, i, 0),
			Status:        domain.InstallmentPending,
			AuditFields:   domain.NewAuditFields(actorID, at),
		}
	}
	return installments
}

// ApproveLoan activates a pending loan: the installment schedule is
// generated and persisted atomically with the status change, then the
// disbursement is posted to the ledger best-effort.
func (s *loanService) ApproveLoan(ctx context.Context, loanID string, actorID string) (*dto.ApproveLoanResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.CanApprove() {
		return nil, fmt.Errorf("%w: %v (status is %s)", apperrors.ErrConflict, ErrLoanNotPending, loan.Status)
	}

	now := time.Now().UTC()
	loan.Status = domain.LoanActive
	loan.ApprovedBy = actorID
	loan.Touch(actorID, now)

	installments := buildSchedule(loan, actorID, now)

	if err := s.loanRepo.ActivateLoan(ctx, *loan, installments); err != nil {
		logger.Error("Failed to activate loan", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return nil, err
	}

	posting := s.postingSvc.Post(ctx, dto.PostingRequest{
		Journal:   domain.RoleLoanJournal,
		Date:      now,
		Reference: loanID,
		Lines: []dto.PostingLine{
			{Account: domain.RoleLoanPayableAccount, Description: "loan disbursement", Debit: loan.TotalPayable},
			{Account: domain.RoleCashAccount, Description: "loan disbursement", Credit: loan.TotalPayable},
		},
	})

	logger.Info("Loan approved",
		slog.String("loan_id", loanID),
		slog.String("approved_by", actorID),
		slog.Int("installments", len(installments)))

	return &dto.ApproveLoanResponse{
		Loan:         dto.ToLoanResponse(loan),
		Installments: dto.ToInstallmentResponses(installments),
		Posting:      posting,
	}, nil
}

func (s *loanService) RejectLoan(ctx context.Context, loanID string, actorID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.CanReject() {
		return nil, fmt.Errorf("%w: %v (status is %s)", apperrors.ErrConflict, ErrLoanNotPending, loan.Status)
	}

	now := time.Now().UTC()
	if err := s.loanRepo.UpdateLoanStatus(ctx, loanID, domain.LoanRejected, actorID, now); err != nil {
		logger.Error("Failed to reject loan", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return nil, err
	}

	loan.Status = domain.LoanRejected
	loan.Touch(actorID, now)
	logger.Info("Loan rejected", slog.String("loan_id", loanID))
	return loan, nil
}

func (s *loanService) ListInstallments(ctx context.Context, loanID string) ([]domain.LoanInstallment, error) {
	if _, err := s.loanRepo.FindLoanByID(ctx, loanID); err != nil {
		return nil, err
	}
	installments, err := s.loanRepo.ListInstallmentsByLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	if installments == nil {
		return []domain.LoanInstallment{}, nil
	}
	return installments, nil
}

// PayInstallment settles a pending or overdue installment. The installment
// and the loan's new remaining balance are persisted atomically; the loan
// flips to COMPLETED when the balance reaches zero. The repayment posting
// is best-effort.
func (s *loanService) PayInstallment(ctx context.Context, installmentID string, req dto.PayInstallmentRequest, actorID string) (*dto.PayInstallmentResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	installment, err := s.loanRepo.FindInstallmentByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	if !installment.Payable() {
		return nil, fmt.Errorf("%w: %v (status is %s)", apperrors.ErrConflict, ErrInstallmentNotPayable, installment.Status)
	}

	loan, err := s.loanRepo.FindLoanByID(ctx, installment.LoanID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	paymentDate := now
	if req.PaymentDate != nil {
		paymentDate = req.PaymentDate.UTC()
	}

	installment.Status = domain.InstallmentPaid
	installment.PaymentDate = &paymentDate
	installment.PaymentMethod = req.PaymentMethod
	installment.Touch(actorID, now)

	remaining := loan.RemainingBalance.Sub(installment.Amount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	loan.RemainingBalance = remaining
	if remaining.IsZero() && loan.Status == domain.LoanActive {
		loan.Status = domain.LoanCompleted
	}
	loan.Touch(actorID, now)

	if err := s.loanRepo.ApplyInstallmentPayment(ctx, *installment, *loan); err != nil {
		logger.Error("Failed to apply installment payment", slog.String("error", err.Error()), slog.String("installment_id", installmentID))
		return nil, err
	}

	posting := s.postingSvc.Post(ctx, dto.PostingRequest{
		Journal:   domain.RolePaymentJournal,
		Date:      paymentDate,
		Reference: installmentID,
		Lines: []dto.PostingLine{
			{Account: domain.RoleCashAccount, Description: "installment payment", Debit: installment.Amount},
			{Account: domain.RoleLoanPayableAccount, Description: "installment payment", Credit: installment.Amount},
		},
	})

	logger.Info("Installment paid",
		slog.String("installment_id", installmentID),
		slog.String("loan_id", loan.LoanID),
		slog.String("remaining_balance", loan.RemainingBalance.String()),
		slog.String("loan_status", string(loan.Status)))

	return &dto.PayInstallmentResponse{
		Installment: dto.ToInstallmentResponse(installment),
		Loan:        dto.ToLoanResponse(loan),
		Posting:     posting,
	}, nil
}

// MarkOverdueInstallments flips pending installments past their due date to
// OVERDUE. Errors are logged and swallowed so the sweep loop keeps running.
func (s *loanService) MarkOverdueInstallments(ctx context.Context) {
	logger := middleware.GetLoggerFromCtx(ctx)

	count, err := s.loanRepo.MarkOverdueInstallments(ctx, time.Now().UTC())
	if err != nil {
		logger.Error("Overdue sweep failed", slog.String("error", err.Error()))
		return
	}
	if count > 0 {
		logger.Info("Overdue sweep completed", slog.Int64("installments_marked", count))
	}
}

// CheckDefaultedLoans transitions loans with an installment overdue for
// longer than the grace period to DEFAULTED. Errors are logged and
// swallowed.
func (s *loanService) CheckDefaultedLoans(ctx context.Context) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	loanIDs, err := s.loanRepo.MarkDefaultedLoans(ctx, now.Add(-defaultGrace), now)
	if err != nil {
		logger.Error("Default sweep failed", slog.String("error", err.Error()))
		return
	}
	for _, id := range loanIDs {
		logger.Warn("Loan defaulted", slog.String("loan_id", id))
	}
}

// SendPaymentReminders notifies borrowers of installments due within the
// reminder window. Notification failures are per-installment and never
// abort the sweep.
func (s *loanService) SendPaymentReminders(ctx context.Context) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	installments, err := s.loanRepo.ListInstallmentsDueWithin(ctx, now, now.Add(reminderWindow))
	if err != nil {
		logger.Error("Reminder sweep failed", slog.String("error", err.Error()))
		return
	}
	for i := range installments {
		if err := s.notifier.NotifyUpcomingInstallment(ctx, installments[i]); err != nil {
			logger.Error("Failed to send payment reminder",
				slog.String("error", err.Error()),
				slog.String("installment_id", installments[i].InstallmentID))
		}
	}
}
