package services

import (
	"context"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	"github.com/kareem3680/akhdar-erp/internal/dto"
)

// LoanSvcFacade exposes loan and installment operations plus the batch
// sweep entry points. The sweeps take no arguments and swallow their own
// errors; they are designed to be driven by an external scheduler.
type LoanSvcFacade interface {
	CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error)
	GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)
	ListLoans(ctx context.Context, limit int, offset int) ([]domain.Loan, error)
	ApproveLoan(ctx context.Context, loanID string, actorID string) (*dto.ApproveLoanResponse, error)
	RejectLoan(ctx context.Context, loanID string, actorID string) (*domain.Loan, error)
	ListInstallments(ctx context.Context, loanID string) ([]domain.LoanInstallment, error)
	PayInstallment(ctx context.Context, installmentID string, req dto.PayInstallmentRequest, actorID string) (*dto.PayInstallmentResponse, error)

	MarkOverdueInstallments(ctx context.Context)
	CheckDefaultedLoans(ctx context.Context)
	SendPaymentReminders(ctx context.Context)
}

// Notifier delivers payment reminders. Delivery is fire-and-forget;
// failures are non-fatal to the sweep.
type Notifier interface {
	NotifyUpcomingInstallment(ctx context.Context, installment domain.LoanInstallment) error
}
