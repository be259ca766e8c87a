package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
)

const stockColumns = `stock_id, product_id, inventory_id, quantity, min_quantity, max_quantity, status, created_at, created_by, last_updated_at, last_updated_by`

type PgxStockRepository struct {
	BaseRepository
}

// newPgxStockRepository creates a new repository for stock data.
func newPgxStockRepository(pool *pgxpool.Pool) portsrepo.StockRepository {
	return &PgxStockRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxStockRepository implements portsrepo.StockRepository
var _ portsrepo.StockRepository = (*PgxStockRepository)(nil)

func scanStock(row pgx.Row) (domain.Stock, error) {
	var s domain.Stock
	err := row.Scan(
		&s.StockID,
		&s.ProductID,
		&s.InventoryID,
		&s.Quantity,
		&s.MinQuantity,
		&s.MaxQuantity,
		&s.Status,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	return s, err
}

// lockInventoryCapacity locks an inventory row and returns its remaining
// capacity. Must be called within a transaction.
func lockInventoryCapacity(ctx context.Context, tx pgx.Tx, inventoryID string) (int64, error) {
	var capacity int64
	err := tx.QueryRow(ctx, `SELECT capacity FROM inventories WHERE inventory_id = $1 FOR UPDATE;`, inventoryID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: inventory %s", apperrors.ErrNotFound, inventoryID)
		}
		return 0, fmt.Errorf("failed to lock inventory %s: %w", inventoryID, err)
	}
	return capacity, nil
}

// setInventoryCapacity writes an inventory's remaining capacity. Must be
// called within a transaction holding the row lock.
func setInventoryCapacity(ctx context.Context, tx pgx.Tx, inventoryID string, capacity int64, userID string, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE inventories
		SET capacity = $2, last_updated_at = $3, last_updated_by = $4
		WHERE inventory_id = $1;
	`, inventoryID, capacity, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update capacity for inventory %s: %w", inventoryID, err)
	}
	return nil
}

// applyMovementsInTx applies a batch of stock movements within tx: each
// delta is guarded against negative stock and negative capacity, and the
// owning inventory's capacity moves opposite to the delta. Stock rows are
// created on demand for positive deltas. Rows are locked in a deterministic
// (inventory, product) order to avoid deadlocks between concurrent batches.
// Returns the resulting stock rows keyed by stock ID.
func applyMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.StockMovement, actorID string, at time.Time) (map[string]domain.Stock, error) {
	sorted := make([]domain.StockMovement, len(movements))
	copy(sorted, movements)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].InventoryID != sorted[j].InventoryID {
			return sorted[i].InventoryID < sorted[j].InventoryID
		}
		return sorted[i].ProductID < sorted[j].ProductID
	})

	capacities := make(map[string]int64)
	for _, m := range sorted {
		if _, locked := capacities[m.InventoryID]; locked {
			continue
		}
		capacity, err := lockInventoryCapacity(ctx, tx, m.InventoryID)
		if err != nil {
			return nil, err
		}
		capacities[m.InventoryID] = capacity
	}

	result := make(map[string]domain.Stock)
	touched := make(map[string]bool)
	for _, m := range sorted {
		if m.Delta == 0 {
			continue
		}

		stock, err := scanStock(tx.QueryRow(ctx, `
			SELECT `+stockColumns+`
			FROM stocks
			WHERE product_id = $1 AND inventory_id = $2
			FOR UPDATE;
		`, m.ProductID, m.InventoryID))
		exists := true
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("failed to lock stock for product %s in inventory %s: %w", m.ProductID, m.InventoryID, err)
			}
			if m.Delta < 0 {
				return nil, &apperrors.InsufficientStockError{ProductID: m.ProductID, InventoryID: m.InventoryID, Available: 0, Requested: -m.Delta}
			}
			exists = false
			stock = domain.Stock{
				StockID:     uuid.NewString(),
				ProductID:   m.ProductID,
				InventoryID: m.InventoryID,
				AuditFields: domain.NewAuditFields(actorID, at),
			}
		}

		newQuantity := stock.Quantity + m.Delta
		if newQuantity < 0 {
			return nil, &apperrors.InsufficientStockError{ProductID: m.ProductID, InventoryID: m.InventoryID, Available: stock.Quantity, Requested: -m.Delta}
		}

		newCapacity := capacities[m.InventoryID] - m.Delta
		if newCapacity < 0 {
			return nil, &apperrors.InsufficientCapacityError{InventoryID: m.InventoryID, Available: capacities[m.InventoryID], Requested: m.Delta}
		}
		capacities[m.InventoryID] = newCapacity
		touched[m.InventoryID] = true

		stock.Quantity = newQuantity
		stock.Recalculate()
		stock.Touch(actorID, at)

		if exists {
			_, err = tx.Exec(ctx, `
				UPDATE stocks
				SET quantity = $2, status = $3, last_updated_at = $4, last_updated_by = $5
				WHERE stock_id = $1;
			`, stock.StockID, stock.Quantity, stock.Status, at, actorID)
		} else {
			_, err = tx.Exec(ctx, `
				INSERT INTO stocks (`+stockColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
			`, stock.StockID, stock.ProductID, stock.InventoryID, stock.Quantity, stock.MinQuantity, stock.MaxQuantity, stock.Status,
				stock.CreatedAt, stock.CreatedBy, stock.LastUpdatedAt, stock.LastUpdatedBy)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write stock for product %s in inventory %s: %w", m.ProductID, m.InventoryID, err)
		}

		result[stock.StockID] = stock
	}

	for inventoryID := range touched {
		if err := setInventoryCapacity(ctx, tx, inventoryID, capacities[inventoryID], actorID, at); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// CreateStock inserts a new stock row, consuming inventory capacity in the
// same transaction.
func (r *PgxStockRepository) CreateStock(ctx context.Context, stock domain.Stock) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	capacity, err := lockInventoryCapacity(ctx, tx, stock.InventoryID)
	if err != nil {
		return err
	}
	if capacity < stock.Quantity {
		return &apperrors.InsufficientCapacityError{InventoryID: stock.InventoryID, Available: capacity, Requested: stock.Quantity}
	}

	query := `
		INSERT INTO stocks (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, query,
		stock.StockID,
		stock.ProductID,
		stock.InventoryID,
		stock.Quantity,
		stock.MinQuantity,
		stock.MaxQuantity,
		stock.Status,
		stock.CreatedAt,
		stock.CreatedBy,
		stock.LastUpdatedAt,
		stock.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: stock for product %s already exists in inventory %s", apperrors.ErrDuplicate, stock.ProductID, stock.InventoryID)
		}
		return fmt.Errorf("failed to save stock %s: %w", stock.StockID, err)
	}

	if err := setInventoryCapacity(ctx, tx, stock.InventoryID, capacity-stock.Quantity, stock.CreatedBy, stock.CreatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateStockQuantity sets a stock row to newQuantity, applying the
// capacity delta atomically. Thresholds are updated when non-nil.
func (r *PgxStockRepository) UpdateStockQuantity(ctx context.Context, stockID string, newQuantity int64, minQuantity, maxQuantity *int64, updatedBy string, updatedAt time.Time) (*domain.Stock, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	stock, err := scanStock(tx.QueryRow(ctx, `
		SELECT `+stockColumns+`
		FROM stocks
		WHERE stock_id = $1
		FOR UPDATE;
	`, stockID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock stock %s: %w", stockID, err)
	}

	capacity, err := lockInventoryCapacity(ctx, tx, stock.InventoryID)
	if err != nil {
		return nil, err
	}

	delta := newQuantity - stock.Quantity
	newCapacity := capacity - delta
	if newCapacity < 0 {
		return nil, &apperrors.InsufficientCapacityError{InventoryID: stock.InventoryID, Available: capacity, Requested: delta}
	}

	stock.Quantity = newQuantity
	if minQuantity != nil {
		stock.MinQuantity = *minQuantity
	}
	if maxQuantity != nil {
		stock.MaxQuantity = *maxQuantity
	}
	stock.Recalculate()
	stock.Touch(updatedBy, updatedAt)

	_, err = tx.Exec(ctx, `
		UPDATE stocks
		SET quantity = $2, min_quantity = $3, max_quantity = $4, status = $5, last_updated_at = $6, last_updated_by = $7
		WHERE stock_id = $1;
	`, stock.StockID, stock.Quantity, stock.MinQuantity, stock.MaxQuantity, stock.Status, updatedAt, updatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to update stock %s: %w", stockID, err)
	}

	if delta != 0 {
		if err := setInventoryCapacity(ctx, tx, stock.InventoryID, newCapacity, updatedBy, updatedAt); err != nil {
			return nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &stock, nil
}

// DeleteStock removes a stock row, returning its quantity to inventory
// capacity.
func (r *PgxStockRepository) DeleteStock(ctx context.Context, stockID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	stock, err := scanStock(tx.QueryRow(ctx, `
		SELECT `+stockColumns+`
		FROM stocks
		WHERE stock_id = $1
		FOR UPDATE;
	`, stockID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock stock %s: %w", stockID, err)
	}

	capacity, err := lockInventoryCapacity(ctx, tx, stock.InventoryID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM stocks WHERE stock_id = $1;`, stockID); err != nil {
		return fmt.Errorf("failed to delete stock %s: %w", stockID, err)
	}

	if stock.Quantity != 0 {
		now := time.Now().UTC()
		if err := setInventoryCapacity(ctx, tx, stock.InventoryID, capacity+stock.Quantity, stock.LastUpdatedBy, now); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// ApplyMovements applies a batch of stock movements atomically.
func (r *PgxStockRepository) ApplyMovements(ctx context.Context, movements []domain.StockMovement, actorID string, at time.Time) (map[string]domain.Stock, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	stocks, err := applyMovementsInTx(ctx, tx, movements, actorID, at)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindStockByID retrieves a stock row by its ID.
func (r *PgxStockRepository) FindStockByID(ctx context.Context, stockID string) (*domain.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stocks
		WHERE stock_id = $1;
	`
	stock, err := scanStock(r.Pool.QueryRow(ctx, query, stockID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stock by ID %s: %w", stockID, err)
	}
	return &stock, nil
}

// FindStockByProductAndInventory retrieves the stock row for a
// (product, inventory) pair.
func (r *PgxStockRepository) FindStockByProductAndInventory(ctx context.Context, productID, inventoryID string) (*domain.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stocks
		WHERE product_id = $1 AND inventory_id = $2;
	`
	stock, err := scanStock(r.Pool.QueryRow(ctx, query, productID, inventoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stock for product %s in inventory %s: %w", productID, inventoryID, err)
	}
	return &stock, nil
}

// ListStocksByInventory retrieves all stock rows held by an inventory.
func (r *PgxStockRepository) ListStocksByInventory(ctx context.Context, inventoryID string) ([]domain.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stocks
		WHERE inventory_id = $1
		ORDER BY product_id;
	`

	rows, err := r.Pool.Query(ctx, query, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks for inventory %s: %w", inventoryID, err)
	}
	defer rows.Close()

	stocks := []domain.Stock{}
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock row for inventory %s: %w", inventoryID, err)
		}
		stocks = append(stocks, s)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating stock rows for inventory %s: %w", inventoryID, rows.Err())
	}

	return stocks, nil
}
