package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
)

const loanColumns = `loan_id, borrower_kind, borrower_id, loan_amount, interest_rate, installment_number, start_date, total_payable, installment_amount, remaining_balance, status, approved_by, created_at, created_by, last_updated_at, last_updated_by`
const installmentColumns = `installment_id, loan_id, amount, due_date, status, payment_date, payment_method, created_at, created_by, last_updated_at, last_updated_by`

type PgxLoanRepository struct {
	BaseRepository
}

// newPgxLoanRepository creates a new repository for loan and installment
// data.
func newPgxLoanRepository(pool *pgxpool.Pool) portsrepo.LoanRepository {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLoanRepository implements portsrepo.LoanRepository
var _ portsrepo.LoanRepository = (*PgxLoanRepository)(nil)

func scanLoan(row pgx.Row) (domain.Loan, error) {
	var l domain.Loan
	var approvedBy sql.NullString

	err := row.Scan(
		&l.LoanID,
		&l.Borrower.Kind,
		&l.Borrower.ID,
		&l.LoanAmount,
		&l.InterestRate,
		&l.InstallmentNumber,
		&l.StartDate,
		&l.TotalPayable,
		&l.InstallmentAmount,
		&l.RemainingBalance,
		&l.Status,
		&approvedBy,
		&l.CreatedAt,
		&l.CreatedBy,
		&l.LastUpdatedAt,
		&l.LastUpdatedBy,
	)
	if err != nil {
		return domain.Loan{}, err
	}

	if approvedBy.Valid {
		l.ApprovedBy = approvedBy.String
	}
	return l, nil
}

func scanInstallment(row pgx.Row) (domain.LoanInstallment, error) {
	var i domain.LoanInstallment
	var paymentDate sql.NullTime
	var paymentMethod sql.NullString

	err := row.Scan(
		&i.InstallmentID,
		&i.LoanID,
		&i.Amount,
		&i.DueDate,
		&i.Status,
		&paymentDate,
		&paymentMethod,
		&i.CreatedAt,
		&i.CreatedBy,
		&i.LastUpdatedAt,
		&i.LastUpdatedBy,
	)
	if err != nil {
		return domain.LoanInstallment{}, err
	}

	if paymentDate.Valid {
		i.PaymentDate = &paymentDate.Time
	}
	if paymentMethod.Valid {
		i.PaymentMethod = paymentMethod.String
	}
	return i, nil
}

// SaveLoan inserts a new loan.
func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`

	_, err := r.Pool.Exec(ctx, query,
		loan.LoanID,
		loan.Borrower.Kind,
		loan.Borrower.ID,
		loan.LoanAmount,
		loan.InterestRate,
		loan.InstallmentNumber,
		loan.StartDate,
		loan.TotalPayable,
		loan.InstallmentAmount,
		loan.RemainingBalance,
		loan.Status,
		loan.ApprovedBy,
		loan.CreatedAt,
		loan.CreatedBy,
		loan.LastUpdatedAt,
		loan.LastUpdatedBy,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: loan %s already exists", apperrors.ErrDuplicate, loan.LoanID)
		}
		return fmt.Errorf("failed to save loan %s: %w", loan.LoanID, err)
	}
	return nil
}

// FindLoanByID retrieves a loan by its ID.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE loan_id = $1;
	`
	l, err := scanLoan(r.Pool.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find loan by ID %s: %w", loanID, err)
	}
	return &l, nil
}

// ListLoans retrieves a paginated list of loans, newest first.
func (r *PgxLoanRepository) ListLoans(ctx context.Context, limit int, offset int) ([]domain.Loan, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + loanColumns + `
		FROM loans
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	loans := []domain.Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, l)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating loan rows: %w", rows.Err())
	}

	return loans, nil
}

// FindInstallmentByID retrieves a single installment.
func (r *PgxLoanRepository) FindInstallmentByID(ctx context.Context, installmentID string) (*domain.LoanInstallment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM loan_installments
		WHERE installment_id = $1;
	`
	i, err := scanInstallment(r.Pool.QueryRow(ctx, query, installmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find installment by ID %s: %w", installmentID, err)
	}
	return &i, nil
}

// ListInstallmentsByLoan retrieves all installments of a loan ordered by
// due date.
func (r *PgxLoanRepository) ListInstallmentsByLoan(ctx context.Context, loanID string) ([]domain.LoanInstallment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM loan_installments
		WHERE loan_id = $1
		ORDER BY due_date;
	`

	rows, err := r.Pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	installments := []domain.LoanInstallment{}
	for rows.Next() {
		i, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment row for loan %s: %w", loanID, err)
		}
		installments = append(installments, i)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating installment rows for loan %s: %w", loanID, rows.Err())
	}

	return installments, nil
}

// ListInstallmentsDueWithin retrieves pending installments due inside
// [from, to].
func (r *PgxLoanRepository) ListInstallmentsDueWithin(ctx context.Context, from, to time.Time) ([]domain.LoanInstallment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM loan_installments
		WHERE status = $1 AND due_date >= $2 AND due_date <= $3
		ORDER BY due_date;
	`

	rows, err := r.Pool.Query(ctx, query, domain.InstallmentPending, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming installments: %w", err)
	}
	defer rows.Close()

	installments := []domain.LoanInstallment{}
	for rows.Next() {
		i, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upcoming installment row: %w", err)
		}
		installments = append(installments, i)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating upcoming installment rows: %w", rows.Err())
	}

	return installments, nil
}

// ActivateLoan persists the approved loan state and inserts its installment
// schedule within one DB transaction.
func (r *PgxLoanRepository) ActivateLoan(ctx context.Context, loan domain.Loan, installments []domain.LoanInstallment) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE loans
		SET status = $2, approved_by = $3, last_updated_at = $4, last_updated_by = $5
		WHERE loan_id = $1 AND status = $6;
	`
	cmdTag, err := tx.Exec(ctx, query,
		loan.LoanID,
		loan.Status,
		loan.ApprovedBy,
		loan.LastUpdatedAt,
		loan.LastUpdatedBy,
		domain.LoanPending,
	)
	if err != nil {
		return fmt.Errorf("failed to activate loan %s: %w", loan.LoanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %s is not pending", apperrors.ErrConflict, loan.LoanID)
	}

	batch := &pgx.Batch{}
	installmentQuery := `
		INSERT INTO loan_installments (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	for _, i := range installments {
		batch.Queue(installmentQuery,
			i.InstallmentID,
			i.LoanID,
			i.Amount,
			i.DueDate,
			i.Status,
			i.PaymentDate,
			i.PaymentMethod,
			i.CreatedAt,
			i.CreatedBy,
			i.LastUpdatedAt,
			i.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute installment batch for loan "+loan.LoanID, err)
	}

	return r.Commit(ctx, tx)
}

// UpdateLoanStatus transitions a loan's status.
func (r *PgxLoanRepository) UpdateLoanStatus(ctx context.Context, loanID string, status domain.LoanStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE loans
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE loan_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, loanID, status, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update status for loan %s: %w", loanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ApplyInstallmentPayment persists the paid installment and the loan's new
// remaining balance and status within one DB transaction. The installment
// status guard catches concurrent payments of the same installment.
func (r *PgxLoanRepository) ApplyInstallmentPayment(ctx context.Context, installment domain.LoanInstallment, loan domain.Loan) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	installmentQuery := `
		UPDATE loan_installments
		SET status = $2, payment_date = $3, payment_method = $4, last_updated_at = $5, last_updated_by = $6
		WHERE installment_id = $1 AND status IN ($7, $8);
	`
	cmdTag, err := tx.Exec(ctx, installmentQuery,
		installment.InstallmentID,
		installment.Status,
		installment.PaymentDate,
		installment.PaymentMethod,
		installment.LastUpdatedAt,
		installment.LastUpdatedBy,
		domain.InstallmentPending,
		domain.InstallmentOverdue,
	)
	if err != nil {
		return fmt.Errorf("failed to update installment %s: %w", installment.InstallmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: installment %s is not payable", apperrors.ErrConflict, installment.InstallmentID)
	}

	loanQuery := `
		UPDATE loans
		SET remaining_balance = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE loan_id = $1;
	`
	cmdTag, err = tx.Exec(ctx, loanQuery,
		loan.LoanID,
		loan.RemainingBalance,
		loan.Status,
		loan.LastUpdatedAt,
		loan.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan %s after payment: %w", loan.LoanID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %s not found during payment", apperrors.ErrNotFound, loan.LoanID)
	}

	return r.Commit(ctx, tx)
}

// MarkOverdueInstallments flips pending installments whose due date has
// passed to OVERDUE. A single idempotent statement; re-running it is a
// no-op for already-overdue rows.
func (r *PgxLoanRepository) MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE loan_installments
		SET status = $1, last_updated_at = $2
		WHERE status = $3 AND due_date < $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, domain.InstallmentOverdue, asOf, domain.InstallmentPending)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue installments: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// MarkDefaultedLoans transitions active loans holding an installment
// overdue since before cutoff to DEFAULTED, returning the affected loan
// IDs.
func (r *PgxLoanRepository) MarkDefaultedLoans(ctx context.Context, cutoff time.Time, updatedAt time.Time) ([]string, error) {
	query := `
		UPDATE loans
		SET status = $1, last_updated_at = $2
		WHERE status = $3 AND loan_id IN (
			SELECT DISTINCT loan_id
			FROM loan_installments
			WHERE status = $4 AND due_date < $5
		)
		RETURNING loan_id;
	`

	rows, err := r.Pool.Query(ctx, query, domain.LoanDefaulted, updatedAt, domain.LoanActive, domain.InstallmentOverdue, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to mark defaulted loans: %w", err)
	}
	defer rows.Close()

	loanIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan defaulted loan ID: %w", err)
		}
		loanIDs = append(loanIDs, id)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating defaulted loan rows: %w", rows.Err())
	}

	return loanIDs, nil
}
