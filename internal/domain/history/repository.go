// Package history records the outcome of each import run.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Record is one completed import run.
type Record struct {
	ID           uuid.UUID `db:"id"`
	OwnerID      uuid.UUID `db:"owner_id"`
	FileName     string    `db:"file_name"`
	Status       string    `db:"status"` // "success", "partial" or "failed"
	RowsTotal    int       `db:"rows_total"`
	RowsImported int       `db:"rows_imported"`
	RowsFailed   int       `db:"rows_failed"`
	RowsSkipped  int       `db:"rows_skipped"`
	ErrorLog     string    `db:"error_log"`
	CreatedAt    time.Time `db:"created_at"`
}

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository handles database operations for import history.
type Repository struct {
	db Querier
}

// NewRepository creates a history repository.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// Record persists the outcome of an import run.
func (r *Repository) Record(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO import_history (id, owner_id, file_name, status, rows_total, rows_imported, rows_failed, rows_skipped, error_log)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		rec.ID, rec.OwnerID, rec.FileName, rec.Status,
		rec.RowsTotal, rec.RowsImported, rec.RowsFailed, rec.RowsSkipped, rec.ErrorLog,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}

// List returns the owner's import runs, newest first, capped at limit.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, limit int) ([]Record, error) {
	query := `
		SELECT id, owner_id, file_name, status, rows_total, rows_imported, rows_failed, rows_skipped, error_log, created_at
		FROM import_history
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.FileName, &rec.Status,
			&rec.RowsTotal, &rec.RowsImported, &rec.RowsFailed, &rec.RowsSkipped,
			&rec.ErrorLog, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read import history: %w", err)
	}
	return records, nil
}
