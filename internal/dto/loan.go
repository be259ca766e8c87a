package dto

import (
	"time"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLoanRequest defines the payload for creating a loan.
type CreateLoanRequest struct {
	BorrowerKind      string          `json:"borrowerKind" binding:"required,oneof=ORGANIZATION USER"`
	BorrowerID        string          `json:"borrowerID" binding:"required"`
	LoanAmount        decimal.Decimal `json:"loanAmount" binding:"required"`
	InterestRate      decimal.Decimal `json:"interestRate"`
	InstallmentNumber int             `json:"installmentNumber" binding:"required,gte=1"`
	StartDate         time.Time       `json:"startDate" binding:"required"`
}

// LoanResponse defines the data returned for a loan.
type LoanResponse struct {
	LoanID            string          `json:"loanID"`
	BorrowerKind      string          `json:"borrowerKind"`
	BorrowerID        string          `json:"borrowerID"`
	LoanAmount        decimal.Decimal `json:"loanAmount"`
	InterestRate      decimal.Decimal `json:"interestRate"`
	InstallmentNumber int             `json:"installmentNumber"`
	StartDate         time.Time       `json:"startDate"`
	TotalPayable      decimal.Decimal `json:"totalPayable"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount"`
	RemainingBalance  decimal.Decimal `json:"remainingBalance"`
	Status            string          `json:"status"`
	ApprovedBy        string          `json:"approvedBy,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ToLoanResponse converts a domain.Loan to LoanResponse.
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:            l.LoanID,
		BorrowerKind:      string(l.Borrower.Kind),
		BorrowerID:        l.Borrower.ID,
		LoanAmount:        l.LoanAmount,
		InterestRate:      l.InterestRate,
		InstallmentNumber: l.InstallmentNumber,
		StartDate:         l.StartDate,
		TotalPayable:      l.TotalPayable,
		InstallmentAmount: l.InstallmentAmount,
		RemainingBalance:  l.RemainingBalance,
		Status:            string(l.Status),
		ApprovedBy:        l.ApprovedBy,
		CreatedAt:         l.CreatedAt,
	}
}

// InstallmentResponse defines the data returned for a loan installment.
type InstallmentResponse struct {
	InstallmentID string          `json:"installmentID"`
	LoanID        string          `json:"loanID"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"dueDate"`
	Status        string          `json:"status"`
	PaymentDate   *time.Time      `json:"paymentDate,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

// ToInstallmentResponse converts a domain.LoanInstallment to its response.
func ToInstallmentResponse(i *domain.LoanInstallment) InstallmentResponse {
	return InstallmentResponse{
		InstallmentID: i.InstallmentID,
		LoanID:        i.LoanID,
		Amount:        i.Amount,
		DueDate:       i.DueDate,
		Status:        string(i.Status),
		PaymentDate:   i.PaymentDate,
		PaymentMethod: i.PaymentMethod,
	}
}

// ToInstallmentResponses converts a slice of installments.
func ToInstallmentResponses(installments []domain.LoanInstallment) []InstallmentResponse {
	responses := make([]InstallmentResponse, len(installments))
	for i := range installments {
		responses[i] = ToInstallmentResponse(&installments[i])
	}
	return responses
}

// ApproveLoanResponse is the combined result of approving a loan.
type ApproveLoanResponse struct {
	Loan         LoanResponse          `json:"loan"`
	Installments []InstallmentResponse `json:"installments"`
	Posting      PostingResult         `json:"posting"`
}

// PayInstallmentRequest defines the payload for paying an installment.
type PayInstallmentRequest struct {
	PaymentMethod string     `json:"paymentMethod" binding:"required"`
	PaymentDate   *time.Time `json:"paymentDate"`
}

// PayInstallmentResponse is the combined result of paying an installment.
type PayInstallmentResponse struct {
	Installment InstallmentResponse `json:"installment"`
	Loan        LoanResponse        `json:"loan"`
	Posting     PostingResult       `json:"posting"`
}
