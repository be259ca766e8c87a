package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kareem3680/akhdar-erp/internal/apperrors"
	"github.com/kareem3680/akhdar-erp/internal/core/domain"
	portsrepo "github.com/kareem3680/akhdar-erp/internal/core/ports/repositories"
	"github.com/kareem3680/akhdar-erp/internal/utils/pagination"
)

const entryColumns = `entry_id, journal_id, entry_date, reference, status, created_at, created_by, last_updated_at, last_updated_by`

type PgxEntryRepository struct {
	BaseRepository
}

// newPgxEntryRepository creates a new repository for journal entry data.
func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepository {
	return &PgxEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxEntryRepository implements portsrepo.EntryRepository
var _ portsrepo.EntryRepository = (*PgxEntryRepository)(nil)

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	var reference sql.NullString

	err := row.Scan(
		&e.EntryID,
		&e.JournalID,
		&e.Date,
		&reference,
		&e.Status,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return domain.JournalEntry{}, err
	}

	if reference.Valid {
		e.Reference = reference.String
	}
	return e, nil
}

// SaveEntry saves an entry and its lines, applying account balance changes
// within one DB transaction. balanceChanges is empty for draft entries.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := entry.CreatedAt
	userID := entry.CreatedBy

	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, entryQuery,
		entry.EntryID,
		entry.JournalID,
		entry.Date,
		entry.Reference,
		entry.Status,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, entry.JournalID)
		}
		return apperrors.NewAppError(500, "failed to insert entry "+entry.EntryID, err)
	}

	// A posted entry moves balances at save time; drafts pass no changes.
	if len(balanceChanges) > 0 {
		accountIDs := make([]string, 0, len(balanceChanges))
		for accID := range balanceChanges {
			accountIDs = append(accountIDs, accID)
		}
		if _, err := findAccountsForUpdate(ctx, tx, accountIDs); err != nil {
			return apperrors.NewAppError(500, "failed to lock accounts for update", err)
		}
		if err := applyBalanceChanges(ctx, tx, balanceChanges, userID, now); err != nil {
			return apperrors.NewAppError(500, "failed to update account balances", err)
		}
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO entry_lines (line_id, entry_id, account_id, description, debit, credit, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, line := range entry.Lines {
		batch.Queue(lineQuery,
			line.LineID,
			entry.EntryID,
			line.AccountID,
			line.Description,
			line.Debit,
			line.Credit,
			now,
			userID,
			now,
			userID,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line batch for entry "+entry.EntryID, err)
	}

	return r.Commit(ctx, tx)
}

// MarkEntryPosted transitions a draft entry to POSTED and applies the
// balance changes in the same transaction.
func (r *PgxEntryRepository) MarkEntryPosted(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE journal_entries
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, query, entryID, domain.EntryPosted, updatedAt, updatedBy, domain.EntryDraft)
	if err != nil {
		return apperrors.NewAppError(500, "failed to post entry "+entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either missing or no longer draft; the service checks state first,
		// so treat a lost race as a conflict.
		return fmt.Errorf("%w: entry %s is not a draft", apperrors.ErrConflict, entryID)
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := findAccountsForUpdate(ctx, tx, accountIDs); err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}
	if err := applyBalanceChanges(ctx, tx, balanceChanges, updatedBy, updatedAt); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}

	return r.Commit(ctx, tx)
}

// MarkEntryVoid transitions a draft entry to VOID. Balances never moved for
// a draft, so no account changes are needed.
func (r *PgxEntryRepository) MarkEntryVoid(ctx context.Context, entryID string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND status = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, entryID, domain.EntryVoid, updatedAt, updatedBy, domain.EntryDraft)
	if err != nil {
		return fmt.Errorf("failed to void entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not a draft", apperrors.ErrConflict, entryID)
	}
	return nil
}

// UpdateEntry updates the mutable header fields of a draft entry.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	query := `
		UPDATE journal_entries
		SET entry_date = $2, reference = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1 AND status = $6;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		entry.EntryID,
		entry.Date,
		entry.Reference,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
		domain.EntryDraft,
	)
	if err != nil {
		return fmt.Errorf("failed to execute update entry %s: %w", entry.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not a draft", apperrors.ErrConflict, entry.EntryID)
	}
	return nil
}

// FindEntryByID retrieves an entry with its lines populated.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE entry_id = $1;
	`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}

	lines, err := r.findLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines

	return &entry, nil
}

func (r *PgxEntryRepository) findLinesByEntryID(ctx context.Context, entryID string) ([]domain.EntryLine, error) {
	query := `
		SELECT line_id, entry_id, account_id, description, debit, credit, created_at, created_by, last_updated_at, last_updated_by
		FROM entry_lines
		WHERE entry_id = $1
		ORDER BY line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []domain.EntryLine{}
	for rows.Next() {
		var l domain.EntryLine
		var description sql.NullString
		err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.AccountID,
			&description,
			&l.Debit,
			&l.Credit,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		if description.Valid {
			l.Description = description.String
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}

	return lines, nil
}

// ListEntriesByJournal retrieves a paginated list of entries for a journal
// using token-based pagination. It returns the entries (without lines), a
// token for the next page, and an error.
func (r *PgxEntryRepository) ListEntriesByJournal(ctx context.Context, journalID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE journal_id = $1
	`
	// Ordering must be stable: entry_date DESC with created_at as tie-breaker.
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{journalID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeEntryToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (entry_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries for journal "+journalID, err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		e, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row for journal "+journalID, scanErr)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows for journal "+journalID, err)
	}

	var nextTokenVal *string
	results := entries
	if len(entries) > limit {
		lastEntry := entries[limit-1]
		// The token points to the last item included in this page; the next
		// query starts after it.
		token := pagination.EncodeEntryToken(lastEntry.Date, lastEntry.CreatedAt)
		nextTokenVal = &token
		results = entries[:limit]
	}

	return results, nextTokenVal, nil
}
