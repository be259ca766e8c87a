package repositories

import (
	"context"
	"time"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
)

// LoanReader defines read operations for loan data.
type LoanReader interface {
	// FindLoanByID retrieves a loan by its unique identifier.
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListLoans retrieves a paginated list of loans.
	ListLoans(ctx context.Context, limit int, offset int) ([]domain.Loan, error)

	// FindInstallmentByID retrieves a single installment.
	FindInstallmentByID(ctx context.Context, installmentID string) (*domain.LoanInstallment, error)

	// ListInstallmentsByLoan retrieves all installments of a loan ordered by
	// due date.
	ListInstallmentsByLoan(ctx context.Context, loanID string) ([]domain.LoanInstallment, error)

	// ListInstallmentsDueWithin retrieves pending installments with a due
	// date inside [from, to].
	ListInstallmentsDueWithin(ctx context.Context, from, to time.Time) ([]domain.LoanInstallment, error)
}

// LoanWriter defines write operations for loan data. Methods touching both
// the loan and its installments run inside one database transaction.
type LoanWriter interface {
	// SaveLoan persists a new loan.
	SaveLoan(ctx context.Context, loan domain.Loan) error

	// ActivateLoan persists the approved loan state and inserts its
	// installment schedule atomically.
	ActivateLoan(ctx context.Context, loan domain.Loan, installments []domain.LoanInstallment) error

	// UpdateLoanStatus transitions a loan's status.
	UpdateLoanStatus(ctx context.Context, loanID string, status domain.LoanStatus, updatedBy string, updatedAt time.Time) error

	// ApplyInstallmentPayment persists the paid installment and the loan's
	// new remaining balance (and possible COMPLETED status) atomically.
	ApplyInstallmentPayment(ctx context.Context, installment domain.LoanInstallment, loan domain.Loan) error

	// MarkOverdueInstallments flips pending installments whose due date has
	// passed to OVERDUE and reports how many rows changed. Idempotent.
	MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error)

	// MarkDefaultedLoans transitions active loans holding an installment
	// overdue since before cutoff to DEFAULTED, returning the affected loan
	// IDs. Idempotent.
	MarkDefaultedLoans(ctx context.Context, cutoff time.Time, updatedAt time.Time) ([]string, error)
}

// LoanRepository combines loan read and write operations.
type LoanRepository interface {
	LoanReader
	LoanWriter
}
