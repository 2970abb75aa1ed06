// Package category provides data access for ledger categories.
package category

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Category is a user-defined transaction category.
type Category struct {
	ID        uuid.UUID  `db:"id"`
	OwnerID   uuid.UUID  `db:"owner_id"`
	Name      string     `db:"name"`
	Type      string     `db:"type"` // "expense" or "income"
	DeletedAt *time.Time `db:"deleted_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// Querier is the subset of pgxpool.Pool the repository needs. Satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository handles database operations for categories.
type Repository struct {
	db Querier
}

// NewRepository creates a category repository.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// ListActive returns the owner's non-deleted categories, ordered by name.
func (r *Repository) ListActive(ctx context.Context, ownerID uuid.UUID) ([]Category, error) {
	query := `
		SELECT id, owner_id, name, type, created_at
		FROM categories
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

// Create inserts a new category for the owner.
func (r *Repository) Create(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (id, owner_id, name, type)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	if err := r.db.QueryRow(ctx, query, c.ID, c.OwnerID, c.Name, c.Type).Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// SoftDelete marks a category as deleted without removing rows that
// reference it.
func (r *Repository) SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `
		UPDATE categories
		SET deleted_at = now()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
