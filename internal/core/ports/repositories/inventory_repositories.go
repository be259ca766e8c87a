package repositories

import (
	"context"
	"time"

	"github.com/kareem3680/akhdar-erp/internal/core/domain"
)

// InventoryRepository defines operations for inventory (capacity pool) data.
type InventoryRepository interface {
	// SaveInventory persists a new inventory.
	SaveInventory(ctx context.Context, inventory domain.Inventory) error

	// FindInventoryByID retrieves an inventory by its unique identifier.
	FindInventoryByID(ctx context.Context, inventoryID string) (*domain.Inventory, error)

	// ListInventories retrieves a paginated list of inventories.
	ListInventories(ctx context.Context, limit int, offset int) ([]domain.Inventory, error)

	// UpdateInventory updates the descriptive fields and status of an
	// inventory. Capacity is never written through this method; it moves only
	// with stock mutations.
	UpdateInventory(ctx context.Context, inventory domain.Inventory) error
}

// StockReader defines read operations for stock data.
type StockReader interface {
	// FindStockByID retrieves a stock row by its unique identifier.
	FindStockByID(ctx context.Context, stockID string) (*domain.Stock, error)

	// FindStockByProductAndInventory retrieves the stock row for a
	// (product, inventory) pair.
	FindStockByProductAndInventory(ctx context.Context, productID, inventoryID string) (*domain.Stock, error)

	// ListStocksByInventory retrieves all stock rows held by an inventory.
	ListStocksByInventory(ctx context.Context, inventoryID string) ([]domain.Stock, error)
}

// StockWriter defines write operations for stock data. Every method that
// changes a quantity adjusts the owning inventory's capacity by the same
// magnitude in the opposite direction, inside one database transaction.
type StockWriter interface {
	// CreateStock inserts a new stock row and consumes inventory capacity.
	// Returns apperrors.ErrDuplicate when the (product, inventory) pair
	// already exists and *apperrors.InsufficientCapacityError when the
	// quantity exceeds remaining capacity.
	CreateStock(ctx context.Context, stock domain.Stock) error

	// UpdateStockQuantity sets a stock row to newQuantity, applying the
	// capacity delta. Thresholds are updated when min/max are non-nil.
	UpdateStockQuantity(ctx context.Context, stockID string, newQuantity int64, minQuantity, maxQuantity *int64, updatedBy string, updatedAt time.Time) (*domain.Stock, error)

	// DeleteStock removes a stock row, returning its quantity to inventory
	// capacity.
	DeleteStock(ctx context.Context, stockID string) error

	// ApplyMovements applies a batch of stock movements atomically:
	// find-or-create each stock row, guard quantity >= 0 and capacity >= 0,
	// and adjust capacity in lock-step. Either every movement commits or
	// none does.
	ApplyMovements(ctx context.Context, movements []domain.StockMovement, actorID string, at time.Time) (map[string]domain.Stock, error)
}

// StockRepository combines stock read and write operations.
type StockRepository interface {
	StockReader
	StockWriter
}

// TransferRepository defines operations for stock transfers. The state
// transition methods persist the transfer row and its stock/capacity
// effects in one database transaction.
type TransferRepository interface {
	// SaveTransfer persists a new draft transfer. Returns
	// apperrors.ErrDuplicate on a reference collision.
	SaveTransfer(ctx context.Context, transfer domain.StockTransfer) error

	// FindTransferByID retrieves a transfer by its unique identifier.
	FindTransferByID(ctx context.Context, transferID string) (*domain.StockTransfer, error)

	// ListTransfers retrieves a paginated list of transfers.
	ListTransfers(ctx context.Context, limit int, offset int) ([]domain.StockTransfer, error)

	// MarkShipped persists the SHIPPING state together with the source-side
	// stock deductions and capacity returns.
	MarkShipped(ctx context.Context, transfer domain.StockTransfer, movements []domain.StockMovement) error

	// MarkDelivered persists the DELIVERED state together with the
	// destination-side stock additions and capacity consumption.
	MarkDelivered(ctx context.Context, transfer domain.StockTransfer, movements []domain.StockMovement) error

	// MarkCancelled transitions a draft transfer to CANCELLED.
	MarkCancelled(ctx context.Context, transferID string, updatedBy string, updatedAt time.Time) error
}

// OrderRepository defines operations for purchase and sale orders. The
// receive/fulfill methods persist the order mutation and all stock and
// capacity effects in one database transaction.
type OrderRepository interface {
	// SavePurchaseOrder persists a new purchase order.
	SavePurchaseOrder(ctx context.Context, order domain.PurchaseOrder) error

	// FindPurchaseOrderByID retrieves a purchase order with its lines.
	FindPurchaseOrderByID(ctx context.Context, orderID string) (*domain.PurchaseOrder, error)

	// ReceivePurchase persists the updated order (received quantities,
	// status) together with the stock additions.
	ReceivePurchase(ctx context.Context, order domain.PurchaseOrder, movements []domain.StockMovement) (map[string]domain.Stock, error)

	// SaveSaleOrder persists a new sale order.
	SaveSaleOrder(ctx context.Context, order domain.SaleOrder) error

	// FindSaleOrderByID retrieves a sale order with its lines.
	FindSaleOrderByID(ctx context.Context, orderID string) (*domain.SaleOrder, error)

	// FulfillSale persists the delivered order together with the stock
	// deductions.
	FulfillSale(ctx context.Context, order domain.SaleOrder, movements []domain.StockMovement) error
}
