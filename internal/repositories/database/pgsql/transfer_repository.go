package pgsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
)

const transferColumns = `transfer_id, from_inventory_id, to_inventory_id, products, shipping_cost, reference, status, approved_by, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransferRepository struct {
	BaseRepository
}

// newPgxTransferRepository creates a new repository for stock transfer data.
func newPgxTransferRepository(pool *pgxpool.Pool) portsrepo.TransferRepository {
	return &PgxTransferRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTransferRepository implements portsrepo.TransferRepository
var _ portsrepo.TransferRepository = (*PgxTransferRepository)(nil)

// The product list is stored as a jsonb document; transfers carry their
// product snapshot and are never queried by individual product.
func scanTransfer(row pgx.Row) (domain.StockTransfer, error) {
	var t domain.StockTransfer
	var products []byte
	var approvedBy sql.NullString

	err := row.Scan(
		&t.TransferID,
		&t.FromInventoryID,
		&t.ToInventoryID,
		&products,
		&t.ShippingCost,
		&t.Reference,
		&t.Status,
		&approvedBy,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		return domain.StockTransfer{}, err
	}

	if err := json.Unmarshal(products, &t.Products); err != nil {
		return domain.StockTransfer{}, fmt.Errorf("failed to decode transfer products: %w", err)
	}
	if approvedBy.Valid {
		t.ApprovedBy = approvedBy.String
	}
	return t, nil
}

// SaveTransfer inserts a new draft transfer.
func (r *PgxTransferRepository) SaveTransfer(ctx context.Context, transfer domain.StockTransfer) error {
	products, err := json.Marshal(transfer.Products)
	if err != nil {
		return fmt.Errorf("failed to encode transfer products: %w", err)
	}

	query := `
		INSERT INTO stock_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = r.Pool.Exec(ctx, query,
		transfer.TransferID,
		transfer.FromInventoryID,
		transfer.ToInventoryID,
		products,
		transfer.ShippingCost,
		transfer.Reference,
		transfer.Status,
		transfer.ApprovedBy,
		transfer.CreatedAt,
		transfer.CreatedBy,
		transfer.LastUpdatedAt,
		transfer.LastUpdatedBy,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transfer with reference %s already exists", apperrors.ErrDuplicate, transfer.Reference)
		}
		return fmt.Errorf("failed to save transfer %s: %w", transfer.TransferID, err)
	}
	return nil
}

// FindTransferByID retrieves a transfer by its ID.
func (r *PgxTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.StockTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM stock_transfers
		WHERE transfer_id = $1;
	`
	t, err := scanTransfer(r.Pool.QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transfer by ID %s: %w", transferID, err)
	}
	return &t, nil
}

// ListTransfers retrieves a paginated list of transfers, newest first.
func (r *PgxTransferRepository) ListTransfers(ctx context.Context, limit int, offset int) ([]domain.StockTransfer, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + transferColumns + `
		FROM stock_transfers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	transfers := []domain.StockTransfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer row: %w", err)
		}
		transfers = append(transfers, t)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transfer rows: %w", rows.Err())
	}

	return transfers, nil
}

// updateTransferInTx writes the transfer's mutable state. The status guard
// catches races with concurrent transitions.
func updateTransferInTx(ctx context.Context, tx pgx.Tx, transfer domain.StockTransfer, fromStatus domain.TransferStatus) error {
	query := `
		UPDATE stock_transfers
		SET status = $2, shipping_cost = $3, approved_by = $4, last_updated_at = $5, last_updated_by = $6
		WHERE transfer_id = $1 AND status = $7;
	`
	cmdTag, err := tx.Exec(ctx, query,
		transfer.TransferID,
		transfer.Status,
		transfer.ShippingCost,
		transfer.ApprovedBy,
		transfer.LastUpdatedAt,
		transfer.LastUpdatedBy,
		fromStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer %s: %w", transfer.TransferID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transfer %s is not %s", apperrors.ErrConflict, transfer.TransferID, fromStatus)
	}
	return nil
}

// MarkShipped persists the SHIPPING state together with the source-side
// stock deductions and capacity returns, in one transaction.
func (r *PgxTransferRepository) MarkShipped(ctx context.Context, transfer domain.StockTransfer, movements []domain.StockMovement) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := updateTransferInTx(ctx, tx, transfer, domain.TransferDraft); err != nil {
		return err
	}
	if _, err := applyMovementsInTx(ctx, tx, movements, transfer.LastUpdatedBy, transfer.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// MarkDelivered persists the DELIVERED state together with the
// destination-side stock additions and capacity consumption, in one
// transaction.
func (r *PgxTransferRepository) MarkDelivered(ctx context.Context, transfer domain.StockTransfer, movements []domain.StockMovement) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := updateTransferInTx(ctx, tx, transfer, domain.TransferShipping); err != nil {
		return err
	}
	if _, err := applyMovementsInTx(ctx, tx, movements, transfer.LastUpdatedBy, transfer.LastUpdatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// MarkCancelled transitions a draft transfer to CANCELLED.
func (r *PgxTransferRepository) MarkCancelled(ctx context.Context, transferID string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE stock_transfers
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transfer_id = $1 AND status = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, transferID, domain.TransferCancelled, updatedAt, updatedBy, domain.TransferDraft)
	if err != nil {
		return fmt.Errorf("failed to cancel transfer %s: %w", transferID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transfer %s is not a draft", apperrors.ErrConflict, transferID)
	}
	return nil
}
