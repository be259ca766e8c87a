package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
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
	// ErrSameInventory is returned when a transfer's source and destination match.
	ErrSameInventory = errors.New("transfer source and destination inventories must differ")
	// ErrTransferNotDraft is returned when shipping or cancelling a non-draft transfer.
	ErrTransferNotDraft = errors.New("transfer must be draft")
	// ErrTransferNotShipping is returned when delivering a transfer that is not shipping.
	ErrTransferNotShipping = errors.New("transfer must be shipping to be delivered")
	// ErrTransferNotDelivered is returned when reading the document of an undelivered transfer.
	ErrTransferNotDelivered = errors.New("transfer document is available only once delivered")
)

// transferService drives the stock transfer state machine:
// draft -> shipping -> delivered, or draft -> cancelled. Shipping deducts
// stock and returns capacity at the source; delivery adds stock and
// consumes capacity at the destination. Each transition commits the
// transfer row and its stock effects in one repository transaction.
type transferService struct {
	transferRepo  portsrepo.TransferRepository
	stockRepo     portsrepo.StockRepository
	inventoryRepo portsrepo.InventoryRepository
	postingSvc    portssvc.PostingSvcFacade
}

// NewTransferService creates a new stock transfer service.
func NewTransferService(transferRepo portsrepo.TransferRepository, stockRepo portsrepo.StockRepository, inventoryRepo portsrepo.InventoryRepository, postingSvc portssvc.PostingSvcFacade) portssvc.TransferSvcFacade {
	return &transferService{
		transferRepo:  transferRepo,
		stockRepo:     stockRepo,
		inventoryRepo: inventoryRepo,
		postingSvc:    postingSvc,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// checkSourceStock verifies every product has sufficient stock at the
// source inventory.
func (s *transferService) checkSourceStock(ctx context.Context, inventoryID string, products []domain.TransferProduct) error {
	for _, p := range products {
		stock, err := s.stockRepo.FindStockByProductAndInventory(ctx, p.ProductID, inventoryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return &apperrors.InsufficientStockError{ProductID: p.ProductID, InventoryID: inventoryID, Available: 0, Requested: p.Unit}
			}
			return err
		}
		if stock.Quantity < p.Unit {
			return &apperrors.InsufficientStockError{ProductID: p.ProductID, InventoryID: inventoryID, Available: stock.Quantity, Requested: p.Unit}
		}
	}
	return nil
}

func (s *transferService) CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, creatorUserID string) (*domain.StockTransfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.FromInventoryID == req.ToInventoryID {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrSameInventory)
	}
	if _, err := s.inventoryRepo.FindInventoryByID(ctx, req.FromInventoryID); err != nil {
		return nil, fmt.Errorf("source inventory: %w", err)
	}
	if _, err := s.inventoryRepo.FindInventoryByID(ctx, req.ToInventoryID); err != nil {
		return nil, fmt.Errorf("destination inventory: %w", err)
	}

	products := make([]domain.TransferProduct, len(req.Products))
	for i, p := range req.Products {
		products[i] = domain.TransferProduct{
			ProductID: p.ProductID,
			Name:      p.Name,
			Code:      p.Code,
			Unit:      p.Unit,
		}
	}

	if err := s.checkSourceStock(ctx, req.FromInventoryID, products); err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		reference = "TRF-" + shortID()
	}

	now := time.Now().UTC()
	transfer := domain.StockTransfer{
		TransferID:      uuid.NewString(),
		FromInventoryID: req.FromInventoryID,
		ToInventoryID:   req.ToInventoryID,
		Products:        products,
		ShippingCost:    decimal.Zero,
		Reference:       reference,
		Status:          domain.TransferDraft,
		AuditFields:     domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.transferRepo.SaveTransfer(ctx, transfer); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save transfer", slog.String("error", err.Error()), slog.String("reference", reference))
		}
		return nil, err
	}

	logger.Info("Transfer created", slog.String("transfer_id", transfer.TransferID), slog.String("reference", reference))
	return &transfer, nil
}

func (s *transferService) GetTransferByID(ctx context.Context, transferID string) (*domain.StockTransfer, error) {
	return s.transferRepo.FindTransferByID(ctx, transferID)
}

func (s *transferService) ListTransfers(ctx context.Context, limit int, offset int) ([]domain.StockTransfer, error) {
	if limit <= 0 {
		limit = 20
	}
	transfers, err := s.transferRepo.ListTransfers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	if transfers == nil {
		return []domain.StockTransfer{}, nil
	}
	return transfers, nil
}

// ShipTransfer moves a draft transfer to SHIPPING: stock is deducted at
// the source and the freed capacity returned, atomically with the status
// write. Sufficiency is re-validated transactionally by the repository.
// When a shipping cost is given, a best-effort posting records it.
func (s *transferService) ShipTransfer(ctx context.Context, transferID string, shippingCost decimal.Decimal, actorID string) (*domain.StockTransfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if !transfer.CanShip() {
		return nil, fmt.Errorf("%w: %v (status is %s)", apperrors.ErrConflict, ErrTransferNotDraft, transfer.Status)
	}
	if shippingCost.IsNegative() {
		return nil, fmt.Errorf("%w: shipping cost must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	transfer.Status = domain.TransferShipping
	transfer.ShippingCost = shippingCost
	transfer.ApprovedBy = actorID
	transfer.Touch(actorID, now)

	movements := make([]domain.StockMovement, len(transfer.Products))
	for i, p := range transfer.Products {
		movements[i] = domain.StockMovement{
			InventoryID: transfer.FromInventoryID,
			ProductID:   p.ProductID,
			Delta:       -p.Unit,
		}
	}

	if err := s.transferRepo.MarkShipped(ctx, *transfer, movements); err != nil {
		logger.Error("Failed to ship transfer", slog.String("error", err.Error()), slog.String("transfer_id", transferID))
		return nil, err
	}

	if shippingCost.IsPositive() {
		s.postingSvc.Post(ctx, dto.PostingRequest{
			Journal:   domain.RolePaymentJournal,
			Date:      now,
			Reference: transfer.Reference,
			Lines: []dto.PostingLine{
				{Account: domain.RoleShippingExpenseAccount, Description: "transfer shipping cost", Debit: shippingCost},
				{Account: domain.RoleCashAccount, Description: "transfer shipping cost", Credit: shippingCost},
			},
		})
	}

	logger.Info("Transfer shipped", slog.String("transfer_id", transferID), slog.String("approved_by", actorID))
	return transfer, nil
}

// DeliverTransfer moves a shipping transfer to DELIVERED: stock is added
// at the destination (created if absent) and the matching capacity
// consumed, atomically with the status write.
func (s *transferService) DeliverTransfer(ctx context.Context, transferID string, actorID string) (*domain.StockTransfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if !transfer.CanDeliver() {
		return nil, fmt.Errorf("%w: %v (status is %s)", apperrors.ErrConflict, ErrTransferNotShipping, transfer.Status)
	}

	now := time.Now().UTC()
	transfer.Status = domain.TransferDelivered
	transfer.Touch(actorID, now)

	movements := make([]domain.StockMovement, len(transfer.Products))
	for i, p := range transfer.Products {
		movements[i] = domain.StockMovement{
			InventoryID: transfer.ToInventoryID,
			ProductID:   p.ProductID,
			Delta:       p.Unit,
		}
	}

	if err := s.transferRepo.MarkDelivered(ctx, *transfer, movements); err != nil {
		logger.Error("Failed to deliver transfer", slog.String("error", err.Error()), slog.String("transfer_id", transferID))
		return nil, err
	}

	logger.Info("Transfer delivered", slog.String("transfer_id", transferID))
	return transfer, nil
}

func (s *transferService) CancelTransfer(ctx context.Context, transferID string, actorID string) (*domain.StockTransfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if !transfer.CanCancel() {
		return nil, fmt.Errorf("%w: %v (status is %s)", apperrors.ErrConflict, ErrTransferNotDraft, transfer.Status)
	}

	now := time.Now().UTC()
	if err := s.transferRepo.MarkCancelled(ctx, transferID, actorID, now); err != nil {
		logger.Error("Failed to cancel transfer", slog.String("error", err.Error()), slog.String("transfer_id", transferID))
		return nil, err
	}

	transfer.Status = domain.TransferCancelled
	transfer.Touch(actorID, now)
	logger.Info("Transfer cancelled", slog.String("transfer_id", transferID))
	return transfer, nil
}

// TransferDocument returns the delivery document of a delivered transfer.
func (s *transferService) TransferDocument(ctx context.Context, transferID string) (*dto.TransferDocument, error) {
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if !transfer.Delivered() {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrTransferNotDelivered)
	}

	products := make([]dto.TransferProductResponse, len(transfer.Products))
	for i, p := range transfer.Products {
		products[i] = dto.TransferProductResponse{
			ProductID: p.ProductID,
			Name:      p.Name,
			Code:      p.Code,
			Unit:      p.Unit,
		}
	}
	return &dto.TransferDocument{
		Reference:       transfer.Reference,
		FromInventoryID: transfer.FromInventoryID,
		ToInventoryID:   transfer.ToInventoryID,
		Products:        products,
		ShippingCost:    transfer.ShippingCost,
		ApprovedBy:      transfer.ApprovedBy,
		DeliveredAt:     transfer.LastUpdatedAt,
	}, nil
}

// shortID returns an uppercase 8-character identifier for human-facing
// references.
func shortID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
