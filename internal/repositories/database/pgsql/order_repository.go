package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
)

const purchaseOrderColumns = `order_id, supplier_id, inventory_id, reference, lines, status, created_at, created_by, last_updated_at, last_updated_by`
const saleOrderColumns = `order_id, customer_id, inventory_id, reference, lines, status, created_at, created_by, last_updated_at, last_updated_by`

type PgxOrderRepository struct {
	BaseRepository
}

// newPgxOrderRepository creates a new repository for purchase and sale
// order data.
func newPgxOrderRepository(pool *pgxpool.Pool) portsrepo.OrderRepository {
	return &PgxOrderRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxOrderRepository implements portsrepo.OrderRepository
var _ portsrepo.OrderRepository = (*PgxOrderRepository)(nil)

// Order lines are stored as jsonb documents. Orders are read and written
// whole; lines are never queried individually.

func scanPurchaseOrder(row pgx.Row) (domain.PurchaseOrder, error) {
	var o domain.PurchaseOrder
	var lines []byte

	err := row.Scan(
		&o.OrderID,
		&o.SupplierID,
		&o.InventoryID,
		&o.Reference,
		&lines,
		&o.Status,
		&o.CreatedAt,
		&o.CreatedBy,
		&o.LastUpdatedAt,
		&o.LastUpdatedBy,
	)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}

	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return domain.PurchaseOrder{}, fmt.Errorf("failed to decode purchase order lines: %w", err)
	}
	return o, nil
}

func scanSaleOrder(row pgx.Row) (domain.SaleOrder, error) {
	var o domain.SaleOrder
	var lines []byte

	err := row.Scan(
		&o.OrderID,
		&o.CustomerID,
		&o.InventoryID,
		&o.Reference,
		&lines,
		&o.Status,
		&o.CreatedAt,
		&o.CreatedBy,
		&o.LastUpdatedAt,
		&o.LastUpdatedBy,
	)
	if err != nil {
		return domain.SaleOrder{}, err
	}

	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return domain.SaleOrder{}, fmt.Errorf("failed to decode sale order lines: %w", err)
	}
	return o, nil
}

// SavePurchaseOrder inserts a new purchase order.
func (r *PgxOrderRepository) SavePurchaseOrder(ctx context.Context, order domain.PurchaseOrder) error {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode purchase order lines: %w", err)
	}

	query := `
		INSERT INTO purchase_orders (` + purchaseOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = r.Pool.Exec(ctx, query,
		order.OrderID,
		order.SupplierID,
		order.InventoryID,
		order.Reference,
		lines,
		order.Status,
		order.CreatedAt,
		order.CreatedBy,
		order.LastUpdatedAt,
		order.LastUpdatedBy,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: purchase order with reference %s already exists", apperrors.ErrDuplicate, order.Reference)
		}
		return fmt.Errorf("failed to save purchase order %s: %w", order.OrderID, err)
	}
	return nil
}

// FindPurchaseOrderByID retrieves a purchase order with its lines.
func (r *PgxOrderRepository) FindPurchaseOrderByID(ctx context.Context, orderID string) (*domain.PurchaseOrder, error) {
	query := `
		SELECT ` + purchaseOrderColumns + `
		FROM purchase_orders
		WHERE order_id = $1;
	`
	o, err := scanPurchaseOrder(r.Pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find purchase order by ID %s: %w", orderID, err)
	}
	return &o, nil
}

// ReceivePurchase persists the updated order together with the stock
// additions in one transaction.
func (r *PgxOrderRepository) ReceivePurchase(ctx context.Context, order domain.PurchaseOrder, movements []domain.StockMovement) (map[string]domain.Stock, error) {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode purchase order lines: %w", err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE purchase_orders
		SET lines = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE order_id = $1 AND status != $6;
	`
	cmdTag, err := tx.Exec(ctx, query,
		order.OrderID,
		lines,
		order.Status,
		order.LastUpdatedAt,
		order.LastUpdatedBy,
		domain.PurchaseDelivered,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase order %s: %w", order.OrderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: purchase order %s is already delivered", apperrors.ErrConflict, order.OrderID)
	}

	stocks, err := applyMovementsInTx(ctx, tx, movements, order.LastUpdatedBy, order.LastUpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return stocks, nil
}

// SaveSaleOrder inserts a new sale order.
func (r *PgxOrderRepository) SaveSaleOrder(ctx context.Context, order domain.SaleOrder) error {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode sale order lines: %w", err)
	}

	query := `
		INSERT INTO sale_orders (` + saleOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = r.Pool.Exec(ctx, query,
		order.OrderID,
		order.CustomerID,
		order.InventoryID,
		order.Reference,
		lines,
		order.Status,
		order.CreatedAt,
		order.CreatedBy,
		order.LastUpdatedAt,
		order.LastUpdatedBy,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sale order with reference %s already exists", apperrors.ErrDuplicate, order.Reference)
		}
		return fmt.Errorf("failed to save sale order %s: %w", order.OrderID, err)
	}
	return nil
}

// FindSaleOrderByID retrieves a sale order with its lines.
func (r *PgxOrderRepository) FindSaleOrderByID(ctx context.Context, orderID string) (*domain.SaleOrder, error) {
	query := `
		SELECT ` + saleOrderColumns + `
		FROM sale_orders
		WHERE order_id = $1;
	`
	o, err := scanSaleOrder(r.Pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sale order by ID %s: %w", orderID, err)
	}
	return &o, nil
}

// FulfillSale persists the delivered order together with the stock
// deductions in one transaction.
func (r *PgxOrderRepository) FulfillSale(ctx context.Context, order domain.SaleOrder, movements []domain.StockMovement) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE sale_orders
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE order_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, query,
		order.OrderID,
		order.Status,
		order.LastUpdatedAt,
		order.LastUpdatedBy,
		domain.SalePending,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale order %s: %w", order.OrderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sale order %s is already delivered", apperrors.ErrConflict, order.OrderID)
	}

	if _, err := applyMovementsInTx(ctx, tx, movements, order.LastUpdatedBy, order.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}
