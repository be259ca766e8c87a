package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BorrowerKind tags the concrete entity type behind a loan's borrower
// reference.
type BorrowerKind string

const (
	BorrowerOrganization BorrowerKind = "ORGANIZATION"
	BorrowerUser         BorrowerKind = "USER"
)

// BorrowerRef is a tagged reference to the borrowing entity. Resolution to
// the concrete organization or user is an explicit lookup keyed by Kind.
type BorrowerRef struct {
	Kind BorrowerKind `json:"kind"`
	ID   string       `json:"id"`
}

// ValidBorrowerKind reports whether k is a known borrower kind.
func ValidBorrowerKind(k BorrowerKind) bool {
	return k == BorrowerOrganization || k == BorrowerUser
}

// LoanStatus is the state of a loan. All transitions are one-way.
type LoanStatus string

const (
	LoanPending   LoanStatus = "PENDING"
	LoanActive    LoanStatus = "ACTIVE"
	LoanCompleted LoanStatus = "COMPLETED"
	LoanRejected  LoanStatus = "REJECTED"
	LoanDefaulted LoanStatus = "DEFAULTED"
)

// Loan amortizes a borrowed amount into fixed installments.
// TotalPayable, InstallmentAmount and RemainingBalance are derived by
// Amortize when the loan is created, never inside persistence hooks.
type Loan struct {
	LoanID            string          `json:"loanID"` // Primary key (UUID)
	Borrower          BorrowerRef     `json:"borrower"`
	LoanAmount        decimal.Decimal `json:"loanAmount"`
	InterestRate      decimal.Decimal `json:"interestRate"` // Percent over the whole term
	InstallmentNumber int             `json:"installmentNumber"`
	StartDate         time.Time       `json:"startDate"`
	TotalPayable      decimal.Decimal `json:"totalPayable"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount"`
	RemainingBalance  decimal.Decimal `json:"remainingBalance"`
	Status            LoanStatus      `json:"status"`
	ApprovedBy        string          `json:"approvedBy"`
	AuditFields
}

// CanApprove reports whether the loan may be approved (activated).
func (l *Loan) CanApprove() bool {
	return l.Status == LoanPending
}

// CanReject reports whether the loan may be rejected.
func (l *Loan) CanReject() bool {
	return l.Status == LoanPending
}

// AmortizationPlan is the derived payment schedule shape for a loan.
// Every installment is InstallmentAmount except the last, which absorbs
// the rounding remainder so the schedule sums to TotalPayable exactly.
type AmortizationPlan struct {
	TotalPayable      decimal.Decimal
	InstallmentAmount decimal.Decimal
	FinalInstallment  decimal.Decimal
}

// Amortize computes totalPayable = loanAmount + loanAmount*interestRate/100
// and splits it over installmentNumber periods.
func Amortize(loanAmount, interestRate decimal.Decimal, installmentNumber int) (AmortizationPlan, error) {
	if loanAmount.LessThanOrEqual(decimal.Zero) {
		return AmortizationPlan{}, fmt.Errorf("loan amount must be positive, got %s", loanAmount)
	}
	if interestRate.IsNegative() {
		return AmortizationPlan{}, fmt.Errorf("interest rate must not be negative, got %s", interestRate)
	}
	if installmentNumber < 1 {
		return AmortizationPlan{}, fmt.Errorf("installment number must be at least 1, got %d", installmentNumber)
	}

	hundred := decimal.NewFromInt(100)
	interest := loanAmount.Mul(interestRate).Div(hundred)
	totalPayable := loanAmount.Add(interest)

	n := decimal.NewFromInt(int64(installmentNumber))
	per := totalPayable.DivRound(n, 2)
	final := totalPayable.Sub(per.Mul(decimal.NewFromInt(int64(installmentNumber - 1))))

	return AmortizationPlan{
		TotalPayable:      totalPayable,
		InstallmentAmount: per,
		FinalInstallment:  final,
	}, nil
}

// InstallmentStatus is the payment state of a single installment.
type InstallmentStatus string

const (
	InstallmentPending   InstallmentStatus = "PENDING"
	InstallmentPaid      InstallmentStatus = "PAID"
	InstallmentOverdue   InstallmentStatus = "OVERDUE"
	InstallmentCancelled InstallmentStatus = "CANCELLED"
)

// LoanInstallment is one scheduled payment on a loan.
type LoanInstallment struct {
	InstallmentID string            `json:"installmentID"` // Primary key (UUID)
	LoanID        string            `json:"loanID"`
	Amount        decimal.Decimal   `json:"amount"`
	DueDate       time.Time         `json:"dueDate"`
	Status        InstallmentStatus `json:"status"`
	PaymentDate   *time.Time        `json:"paymentDate,omitempty"`
	PaymentMethod string            `json:"paymentMethod,omitempty"`
	AuditFields
}

// Payable reports whether the installment may still be paid.
func (i *LoanInstallment) Payable() bool {
	return i.Status == InstallmentPending || i.Status == InstallmentOverdue
}
