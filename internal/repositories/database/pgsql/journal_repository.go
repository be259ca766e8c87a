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

const journalColumns = `journal_id, name, code, journal_type, description, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal category data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepository
var _ portsrepo.JournalRepository = (*PgxJournalRepository)(nil)

func scanJournal(row pgx.Row) (domain.Journal, error) {
	var j domain.Journal
	var description sql.NullString

	err := row.Scan(
		&j.JournalID,
		&j.Name,
		&j.Code,
		&j.JournalType,
		&description,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	if err != nil {
		return domain.Journal{}, err
	}

	if description.Valid {
		j.Description = description.String
	}
	return j, nil
}

// SaveJournal inserts a new journal category.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal) error {
	query := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	_, err := r.Pool.Exec(ctx, query,
		journal.JournalID,
		journal.Name,
		journal.Code,
		journal.JournalType,
		journal.Description,
		journal.CreatedAt,
		journal.CreatedBy,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: journal with code %s already exists", apperrors.ErrDuplicate, journal.Code)
		}
		return fmt.Errorf("failed to save journal %s: %w", journal.JournalID, err)
	}
	return nil
}

// FindJournalByID retrieves a journal by its ID.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journals
		WHERE journal_id = $1;
	`
	j, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal by ID %s: %w", journalID, err)
	}
	return &j, nil
}

// FindJournalByType retrieves the oldest journal registered for a type.
func (r *PgxJournalRepository) FindJournalByType(ctx context.Context, journalType domain.JournalType) (*domain.Journal, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journals
		WHERE journal_type = $1
		ORDER BY created_at
		LIMIT 1;
	`
	j, err := scanJournal(r.Pool.QueryRow(ctx, query, journalType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal by type %s: %w", journalType, err)
	}
	return &j, nil
}

// ListJournals retrieves all journal categories ordered by code.
func (r *PgxJournalRepository) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journals
		ORDER BY code;
	`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query journals: %w", err)
	}
	defer rows.Close()

	journals := []domain.Journal{}
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		journals = append(journals, j)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", rows.Err())
	}

	return journals, nil
}

// DeleteJournal removes a journal category that has no entries under it.
func (r *PgxJournalRepository) DeleteJournal(ctx context.Context, journalID string) error {
	query := `DELETE FROM journals WHERE journal_id = $1;`

	cmdTag, err := r.Pool.Exec(ctx, query, journalID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: journal %s has entries", apperrors.ErrConflict, journalID)
		}
		return fmt.Errorf("failed to delete journal %s: %w", journalID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
