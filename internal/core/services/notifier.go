package services

import (
	"context"
	"log/slog"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portssvc "github.com/kareem3680/akhdar-erp/internal/core/ports/services"
	"github.com/kareem3680/akhdar-erp/internal/middleware"
)

// logNotifier records payment reminders in the structured log. It stands in
// for an outbound channel (email, SMS) until one is wired up.
type logNotifier struct{}

// NewLogNotifier creates a Notifier that logs reminders.
func NewLogNotifier() portssvc.Notifier {
	return &logNotifier{}
}

func (n *logNotifier) NotifyUpcomingInstallment(ctx context.Context, installment domain.LoanInstallment) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Info("Payment reminder",
		slog.String("installment_id", installment.InstallmentID),
		slog.String("loan_id", installment.LoanID),
		slog.String("amount", installment.Amount.String()),
		slog.Time("due_date", installment.DueDate))
	return nil
}
