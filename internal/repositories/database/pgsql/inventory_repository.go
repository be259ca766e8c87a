package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
)

const inventoryColumns = `inventory_id, name, location, capacity, status, manager_id, organization_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxInventoryRepository struct {
	BaseRepository
}

// newPgxInventoryRepository creates a new repository for inventory data.
func newPgxInventoryRepository(pool *pgxpool.Pool) portsrepo.InventoryRepository {
	return &PgxInventoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxInventoryRepository implements portsrepo.InventoryRepository
var _ portsrepo.InventoryRepository = (*PgxInventoryRepository)(nil)

func scanInventory(row pgx.Row) (domain.Inventory, error) {
	var inv domain.Inventory
	var managerID, organizationID sql.NullString

	err := row.Scan(
		&inv.InventoryID,
		&inv.Name,
		&inv.Location,
		&inv.Capacity,
		&inv.Status,
		&managerID,
		&organizationID,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	)
	if err != nil {
		return domain.Inventory{}, err
	}

	if managerID.Valid {
		inv.ManagerID = managerID.String
	}
	if organizationID.Valid {
		inv.OrganizationID = organizationID.String
	}
	return inv, nil
}

// SaveInventory inserts a new inventory.
func (r *PgxInventoryRepository) SaveInventory(ctx context.Context, inventory domain.Inventory) error {
	query := `
		INSERT INTO inventories (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`

	_, err := r.Pool.Exec(ctx, query,
		inventory.InventoryID,
		inventory.Name,
		inventory.Location,
		inventory.Capacity,
		inventory.Status,
		inventory.ManagerID,
		inventory.OrganizationID,
		inventory.CreatedAt,
		inventory.CreatedBy,
		inventory.LastUpdatedAt,
		inventory.LastUpdatedBy,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: inventory %s already exists", apperrors.ErrDuplicate, inventory.InventoryID)
		}
		return fmt.Errorf("failed to save inventory %s: %w", inventory.InventoryID, err)
	}
	return nil
}

// FindInventoryByID retrieves an inventory by its ID.
func (r *PgxInventoryRepository) FindInventoryByID(ctx context.Context, inventoryID string) (*domain.Inventory, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventories
		WHERE inventory_id = $1;
	`
	inv, err := scanInventory(r.Pool.QueryRow(ctx, query, inventoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find inventory by ID %s: %w", inventoryID, err)
	}
	return &inv, nil
}

// ListInventories retrieves a paginated list of inventories ordered by name.
func (r *PgxInventoryRepository) ListInventories(ctx context.Context, limit int, offset int) ([]domain.Inventory, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + inventoryColumns + `
		FROM inventories
		ORDER BY name
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventories: %w", err)
	}
	defer rows.Close()

	inventories := []domain.Inventory{}
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		inventories = append(inventories, inv)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating inventory rows: %w", rows.Err())
	}

	return inventories, nil
}

// UpdateInventory updates the descriptive fields and status of an
// inventory. Capacity is deliberately not written here; it moves only with
// stock mutations.
func (r *PgxInventoryRepository) UpdateInventory(ctx context.Context, inventory domain.Inventory) error {
	query := `
		UPDATE inventories
		SET name = $2, location = $3, status = $4, manager_id = $5, last_updated_at = $6, last_updated_by = $7
		WHERE inventory_id = $1;
	`

	cmdTag, err := r.Pool.Exec(ctx, query,
		inventory.InventoryID,
		inventory.Name,
		inventory.Location,
		inventory.Status,
		inventory.ManagerID,
		inventory.LastUpdatedAt,
		inventory.LastUpdatedBy,
	)

	if err != nil {
		return fmt.Errorf("failed to execute update inventory %s: %w", inventory.InventoryID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
