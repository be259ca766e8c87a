package services

import (
	"context"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	"github.com/kareem3680/akhdar-erp/internal/dto"
	"github.com/shopspring/decimal"
)

// InventorySvcFacade exposes inventory (capacity pool) operations.
type InventorySvcFacade interface {
	CreateInventory(ctx context.Context, req dto.CreateInventoryRequest, creatorUserID string) (*domain.Inventory, error)
	GetInventoryByID(ctx context.Context, inventoryID string) (*domain.Inventory, error)
	ListInventories(ctx context.Context, limit int, offset int) ([]domain.Inventory, error)
	UpdateInventory(ctx context.Context, inventoryID string, req dto.UpdateInventoryRequest, userID string) (*domain.Inventory, error)
}

// StockSvcFacade exposes stock operations, including the purchase-receipt
// and sale-fulfillment movement paths.
type StockSvcFacade interface {
	CreateStock(ctx context.Context, req dto.CreateStockRequest, creatorUserID string) (*domain.Stock, error)
	GetStockByID(ctx context.Context, stockID string) (*domain.Stock, error)
	ListStocksByInventory(ctx context.Context, inventoryID string) ([]domain.Stock, error)
	UpdateStock(ctx context.Context, stockID string, req dto.UpdateStockRequest, userID string) (*domain.Stock, error)
	DeleteStock(ctx context.Context, stockID string) error

	CreatePurchaseOrder(ctx context.Context, req dto.CreatePurchaseOrderRequest, creatorUserID string) (*domain.PurchaseOrder, error)
	CreateSaleOrder(ctx context.Context, req dto.CreateSaleOrderRequest, creatorUserID string) (*domain.SaleOrder, error)
	StockIn(ctx context.Context, purchaseOrderID string, req dto.StockInRequest, userID string) (*dto.StockInResponse, error)
	StockOut(ctx context.Context, saleOrderID string, userID string) (*dto.StockOutResponse, error)
}

// TransferSvcFacade exposes the stock transfer state machine.
type TransferSvcFacade interface {
	CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, creatorUserID string) (*domain.StockTransfer, error)
	GetTransferByID(ctx context.Context, transferID string) (*domain.StockTransfer, error)
	ListTransfers(ctx context.Context, limit int, offset int) ([]domain.StockTransfer, error)
	ShipTransfer(ctx context.Context, transferID string, shippingCost decimal.Decimal, actorID string) (*domain.StockTransfer, error)
	DeliverTransfer(ctx context.Context, transferID string, actorID string) (*domain.StockTransfer, error)
	CancelTransfer(ctx context.Context, transferID string, actorID string) (*domain.StockTransfer, error)
	TransferDocument(ctx context.Context, transferID string) (*dto.TransferDocument, error)
}
