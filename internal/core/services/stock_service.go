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
	// ErrOrderAlreadyDelivered is returned when receiving or fulfilling an order
	// that has already been fully delivered.
	ErrOrderAlreadyDelivered = errors.New("order is already delivered")
	// ErrOverDelivery is returned when a delivery exceeds the ordered quantity.
	ErrOverDelivery = errors.New("delivered quantity exceeds ordered quantity")
	// ErrUnknownOrderProduct is returned when a delivery names a product that is
	// not on the order.
	ErrUnknownOrderProduct = errors.New("product is not part of the order")
)

// stockService provides stock operations and the purchase-receipt and
// sale-fulfillment movement paths. Quantity and capacity move together
// inside repository transactions; the financial postings are best-effort.
type stockService struct {
	stockRepo     portsrepo.StockRepository
	inventoryRepo portsrepo.InventoryRepository
	orderRepo     portsrepo.OrderRepository
	postingSvc    portssvc.PostingSvcFacade
}

// NewStockService creates a new stock service.
func NewStockService(stockRepo portsrepo.StockRepository, inventoryRepo portsrepo.InventoryRepository, orderRepo portsrepo.OrderRepository, postingSvc portssvc.PostingSvcFacade) portssvc.StockSvcFacade {
	return &stockService{
		stockRepo:     stockRepo,
		inventoryRepo: inventoryRepo,
		orderRepo:     orderRepo,
		postingSvc:    postingSvc,
	}
}

var _ portssvc.StockSvcFacade = (*stockService)(nil)

// CreateStock creates the stock row for a (product, inventory) pair and
// consumes the matching inventory capacity. The capacity guard and the
// duplicate-pair guard are enforced inside the repository transaction.
func (s *stockService) CreateStock(ctx context.Context, req dto.CreateStockRequest, creatorUserID string) (*domain.Stock, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.MaxQuantity > 0 && req.MaxQuantity < req.MinQuantity {
		return nil, fmt.Errorf("%w: maxQuantity must not be below minQuantity", apperrors.ErrValidation)
	}
	if _, err := s.inventoryRepo.FindInventoryByID(ctx, req.InventoryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: inventory %s", apperrors.ErrNotFound, req.InventoryID)
		}
		return nil, err
	}

	now := time.Now().UTC()
	stock := domain.Stock{
		StockID:     uuid.NewString(),
		ProductID:   req.ProductID,
		InventoryID: req.InventoryID,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		MaxQuantity: req.MaxQuantity,
		AuditFields: domain.NewAuditFields(creatorUserID, now),
	}
	stock.Recalculate()

	if err := s.stockRepo.CreateStock(ctx, stock); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrValidation) {
			logger.Error("Failed to create stock in repository", slog.String("error", err.Error()), slog.String("product_id", req.ProductID))
		}
		return nil, err
	}

	logger.Info("Stock created successfully", slog.String("stock_id", stock.StockID), slog.String("inventory_id", stock.InventoryID), slog.Int64("quantity", stock.Quantity))
	return &stock, nil
}

func (s *stockService) GetStockByID(ctx context.Context, stockID string) (*domain.Stock, error) {
	return s.stockRepo.FindStockByID(ctx, stockID)
}

func (s *stockService) ListStocksByInventory(ctx context.Context, inventoryID string) ([]domain.Stock, error) {
	stocks, err := s.stockRepo.ListStocksByInventory(ctx, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	if stocks == nil {
		return []domain.Stock{}, nil
	}
	return stocks, nil
}

// UpdateStock sets a stock quantity. The repository applies the capacity
// delta (capacity -= newQuantity - oldQuantity, which also holds for
// negative deltas) atomically with the quantity write.
func (s *stockService) UpdateStock(ctx context.Context, stockID string, req dto.UpdateStockRequest, userID string) (*domain.Stock, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", apperrors.ErrValidation)
	}

	stock, err := s.stockRepo.UpdateStockQuantity(ctx, stockID, req.Quantity, req.MinQuantity, req.MaxQuantity, userID, time.Now().UTC())
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			logger.Error("Failed to update stock quantity", slog.String("error", err.Error()), slog.String("stock_id", stockID))
		}
		return nil, err
	}

	logger.Info("Stock updated successfully", slog.String("stock_id", stockID), slog.Int64("quantity", stock.Quantity), slog.String("status", string(stock.Status)))
	return stock, nil
}

// DeleteStock removes a stock row; the repository returns its quantity to
// the inventory capacity in the same transaction.
func (s *stockService) DeleteStock(ctx context.Context, stockID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.stockRepo.DeleteStock(ctx, stockID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to delete stock", slog.String("error", err.Error()), slog.String("stock_id", stockID))
		}
		return err
	}
	logger.Info("Stock deleted successfully", slog.String("stock_id", stockID))
	return nil
}

func (s *stockService) CreatePurchaseOrder(ctx context.Context, req dto.CreatePurchaseOrderRequest, creatorUserID string) (*domain.PurchaseOrder, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.inventoryRepo.FindInventoryByID(ctx, req.InventoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := domain.PurchaseOrder{
		OrderID:     uuid.NewString(),
		SupplierID:  req.SupplierID,
		InventoryID: req.InventoryID,
		Reference:   orderReference(req.Reference, "PO"),
		Status:      domain.PurchasePending,
		Lines:       make([]domain.PurchaseOrderLine, len(req.Lines)),
		AuditFields: domain.NewAuditFields(creatorUserID, now),
	}
	for i, l := range req.Lines {
		order.Lines[i] = domain.PurchaseOrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	if err := s.orderRepo.SavePurchaseOrder(ctx, order); err != nil {
		logger.Error("Failed to save purchase order", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Purchase order created", slog.String("order_id", order.OrderID), slog.String("reference", order.Reference))
	return &order, nil
}

func (s *stockService) CreateSaleOrder(ctx context.Context, req dto.CreateSaleOrderRequest, creatorUserID string) (*domain.SaleOrder, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.inventoryRepo.FindInventoryByID(ctx, req.InventoryID); err != nil {
		return nil, err
	}

	// Sufficiency is re-checked transactionally at fulfillment; this early
	// check surfaces obvious mistakes at creation time.
	for _, l := range req.Lines {
		stock, err := s.stockRepo.FindStockByProductAndInventory(ctx, l.ProductID, req.InventoryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, &apperrors.InsufficientStockError{ProductID: l.ProductID, InventoryID: req.InventoryID, Available: 0, Requested: l.Quantity}
			}
			return nil, err
		}
		if stock.Quantity < l.Quantity {
			return nil, &apperrors.InsufficientStockError{ProductID: l.ProductID, InventoryID: req.InventoryID, Available: stock.Quantity, Requested: l.Quantity}
		}
	}

	now := time.Now().UTC()
	order := domain.SaleOrder{
		OrderID:     uuid.NewString(),
		CustomerID:  req.CustomerID,
		InventoryID: req.InventoryID,
		Reference:   orderReference(req.Reference, "SO"),
		Status:      domain.SalePending,
		Lines:       make([]domain.SaleOrderLine, len(req.Lines)),
		AuditFields: domain.NewAuditFields(creatorUserID, now),
	}
	for i, l := range req.Lines {
		order.Lines[i] = domain.SaleOrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	if err := s.orderRepo.SaveSaleOrder(ctx, order); err != nil {
		logger.Error("Failed to save sale order", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Sale order created", slog.String("order_id", order.OrderID), slog.String("reference", order.Reference))
	return &order, nil
}

// StockIn receives a purchase order delivery: each delivered line
// increments (or creates) its stock row and consumes inventory capacity,
// all inside one repository transaction. When nothing remains outstanding
// the order becomes DELIVERED. A best-effort purchases posting records the
// received value.
func (s *stockService) StockIn(ctx context.Context, purchaseOrderID string, req dto.StockInRequest, userID string) (*dto.StockInResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	order, err := s.orderRepo.FindPurchaseOrderByID(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.PurchaseDelivered {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrOrderAlreadyDelivered)
	}

	lineIndex := make(map[string]int, len(order.Lines))
	for i, l := range order.Lines {
		lineIndex[l.ProductID] = i
	}

	movements := make([]domain.StockMovement, 0, len(req.Deliveries))
	receivedValue := decimal.Zero
	for _, d := range req.Deliveries {
		if d.Quantity <= 0 {
			return nil, fmt.Errorf("%w: delivery quantity for product %s must be positive", apperrors.ErrValidation, d.ProductID)
		}
		i, ok := lineIndex[d.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s on order %s", ErrUnknownOrderProduct, d.ProductID, order.OrderID)
		}
		line := &order.Lines[i]
		if line.ReceivedQuantity+d.Quantity > line.Quantity {
			return nil, fmt.Errorf("%w: product %s ordered %d, already received %d, delivering %d",
				ErrOverDelivery, d.ProductID, line.Quantity, line.ReceivedQuantity, d.Quantity)
		}
		line.ReceivedQuantity += d.Quantity
		movements = append(movements, domain.StockMovement{
			InventoryID: order.InventoryID,
			ProductID:   d.ProductID,
			Delta:       d.Quantity,
		})
		receivedValue = receivedValue.Add(line.UnitPrice.Mul(decimal.NewFromInt(d.Quantity)))
	}

	if order.RemainingQuantity() == 0 {
		order.Status = domain.PurchaseDelivered
	} else {
		order.Status = domain.PurchasePartial
	}
	now := time.Now().UTC()
	order.Touch(userID, now)

	stocksMap, err := s.orderRepo.ReceivePurchase(ctx, *order, movements)
	if err != nil {
		logger.Error("Failed to receive purchase order", slog.String("error", err.Error()), slog.String("order_id", order.OrderID))
		return nil, err
	}

	posting := dto.PostingResult{Skipped: true, Reason: "delivery has no value"}
	if receivedValue.IsPositive() {
		posting = s.postingSvc.Post(ctx, dto.PostingRequest{
			Journal:   domain.RolePurchasesJournal,
			Date:      now,
			Reference: order.Reference,
			Lines: []dto.PostingLine{
				{Account: domain.RoleInventoryAccount, Description: "goods received", Debit: receivedValue},
				{Account: domain.RoleCashAccount, Description: "goods received", Credit: receivedValue},
			},
		})
	}

	stocks := make([]domain.Stock, 0, len(stocksMap))
	for _, st := range stocksMap {
		stocks = append(stocks, st)
	}

	logger.Info("Purchase order received", slog.String("order_id", order.OrderID), slog.String("status", string(order.Status)), slog.Int("deliveries", len(req.Deliveries)))
	return &dto.StockInResponse{
		Order:   dto.ToPurchaseOrderResponse(order),
		Stocks:  dto.ToStockResponses(stocks),
		Posting: posting,
	}, nil
}

// StockOut fulfills a sale order: every line is deducted from stock and
// the matching capacity is returned, all inside one repository
// transaction. A best-effort sales posting records the sold value.
func (s *stockService) StockOut(ctx context.Context, saleOrderID string, userID string) (*dto.StockOutResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	order, err := s.orderRepo.FindSaleOrderByID(ctx, saleOrderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.SaleDelivered {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConflict, ErrOrderAlreadyDelivered)
	}

	movements := make([]domain.StockMovement, len(order.Lines))
	for i, l := range order.Lines {
		movements[i] = domain.StockMovement{
			InventoryID: order.InventoryID,
			ProductID:   l.ProductID,
			Delta:       -l.Quantity,
		}
	}

	now := time.Now().UTC()
	order.Status = domain.SaleDelivered
	order.Touch(userID, now)

	if err := s.orderRepo.FulfillSale(ctx, *order, movements); err != nil {
		logger.Error("Failed to fulfill sale order", slog.String("error", err.Error()), slog.String("order_id", order.OrderID))
		return nil, err
	}

	total := order.Total()
	posting := dto.PostingResult{Skipped: true, Reason: "order has no value"}
	if total.IsPositive() {
		posting = s.postingSvc.Post(ctx, dto.PostingRequest{
			Journal:   domain.RoleSalesJournal,
			Date:      now,
			Reference: order.Reference,
			Lines: []dto.PostingLine{
				{Account: domain.RoleCashAccount, Description: "goods sold", Debit: total},
				{Account: domain.RoleSalesRevenueAccount, Description: "goods sold", Credit: total},
			},
		})
	}

	logger.Info("Sale order fulfilled", slog.String("order_id", order.OrderID))
	return &dto.StockOutResponse{
		Order:   dto.ToSaleOrderResponse(order),
		Posting: posting,
	}, nil
}

// orderReference returns the provided reference or generates one with the
// given prefix.
func orderReference(provided, prefix string) string {
	if provided != "" {
		return provided
	}
	return fmt.Sprintf("%s-%s", prefix, shortID())
}
