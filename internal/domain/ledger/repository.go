// Package ledger provides data access for persisted transactions.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Transaction is a persisted ledger entry.
type Transaction struct {
	ID            uuid.UUID       `db:"id"`
	OwnerID       uuid.UUID       `db:"owner_id"`
	Date          time.Time       `db:"occurred_on"`
	Amount        decimal.Decimal `db:"amount"`
	Description   string          `db:"description"`
	Type          string          `db:"tx_type"`
	Wallet        string          `db:"wallet"`
	PaymentMethod string          `db:"payment_method"`
	Status        string          `db:"status"`
	CategoryID    *uuid.UUID      `db:"category_id"`
	ImportID      *uuid.UUID      `db:"import_id"`
	CreatedAt     time.Time       `db:"created_at"`
}

// FingerprintSource carries the fields a duplicate check derives its
// fingerprint from.
type FingerprintSource struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository handles database operations for transactions.
type Repository struct {
	db Querier
}

// NewRepository creates a ledger repository.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// ListFingerprintSources returns the date, amount and description of every
// non-deleted transaction the owner has, for duplicate detection against a
// new batch.
func (r *Repository) ListFingerprintSources(ctx context.Context, ownerID uuid.UUID) ([]FingerprintSource, error) {
	query := `
		SELECT occurred_on, amount, description
		FROM transactions
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY occurred_on`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fingerprint sources: %w", err)
	}
	defer rows.Close()

	var sources []FingerprintSource
	for rows.Next() {
		var s FingerprintSource
		if err := rows.Scan(&s.Date, &s.Amount, &s.Description); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint source: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fingerprint sources: %w", err)
	}
	return sources, nil
}

// Insert persists a transaction and fills in its generated fields.
func (r *Repository) Insert(ctx context.Context, tx *Transaction) error {
	query := `
		INSERT INTO transactions (id, owner_id, occurred_on, amount, description, tx_type, wallet, payment_method, status, category_id, import_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		tx.ID, tx.OwnerID, tx.Date, tx.Amount, tx.Description,
		tx.Type, tx.Wallet, tx.PaymentMethod, tx.Status,
		tx.CategoryID, tx.ImportID,
	).Scan(&tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// SoftDelete marks a transaction deleted. Deleted rows stop feeding the
// duplicate check, so re-importing the same line becomes possible again.
func (r *Repository) SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByImport returns the transactions created by a single import run.
func (r *Repository) ListByImport(ctx context.Context, ownerID, importID uuid.UUID) ([]Transaction, error) {
	query := `
		SELECT id, owner_id, occurred_on, amount, description, tx_type, wallet, payment_method, status, category_id, import_id, created_at
		FROM transactions
		WHERE owner_id = $1 AND import_id = $2 AND deleted_at IS NULL
		ORDER BY occurred_on, created_at`

	rows, err := r.db.Query(ctx, query, ownerID, importID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.OwnerID, &tx.Date, &tx.Amount, &tx.Description,
			&tx.Type, &tx.Wallet, &tx.PaymentMethod, &tx.Status,
			&tx.CategoryID, &tx.ImportID, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txs, nil
}
