// Package preset stores named column mappings so a user can re-import
// statements from the same bank without remapping columns.
package preset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no preset matches the given name.
var ErrNotFound = errors.New("preset not found")

// Preset is a saved column mapping keyed by a user-chosen name.
type Preset struct {
	ID        uuid.UUID         `db:"id"`
	OwnerID   uuid.UUID         `db:"owner_id"`
	Name      string            `db:"name"`
	Mapping   map[string]string `db:"mapping"` // field role -> header name
	CreatedAt time.Time         `db:"created_at"`
	UpdatedAt time.Time         `db:"updated_at"`
}

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository handles database operations for mapping presets.
type Repository struct {
	db Querier
}

// NewRepository creates a preset repository.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// Save upserts a preset by owner and name.
func (r *Repository) Save(ctx context.Context, p *Preset) error {
	mapping, err := json.Marshal(p.Mapping)
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}

	query := `
		INSERT INTO mapping_presets (id, owner_id, name, mapping)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, name)
		DO UPDATE SET mapping = EXCLUDED.mapping, updated_at = now()
		RETURNING id, created_at, updated_at`

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	err = r.db.QueryRow(ctx, query, p.ID, p.OwnerID, p.Name, mapping).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save preset: %w", err)
	}
	return nil
}

// GetByName loads a preset by its user-chosen name.
func (r *Repository) GetByName(ctx context.Context, ownerID uuid.UUID, name string) (*Preset, error) {
	query := `
		SELECT id, owner_id, name, mapping, created_at, updated_at
		FROM mapping_presets
		WHERE owner_id = $1 AND name = $2`

	var p Preset
	var mapping []byte
	err := r.db.QueryRow(ctx, query, ownerID, name).
		Scan(&p.ID, &p.OwnerID, &p.Name, &mapping, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preset: %w", err)
	}

	if err := json.Unmarshal(mapping, &p.Mapping); err != nil {
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}
	return &p, nil
}

// List returns all of the owner's presets, newest first.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID) ([]Preset, error) {
	query := `
		SELECT id, owner_id, name, mapping, created_at, updated_at
		FROM mapping_presets
		WHERE owner_id = $1
		ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		var p Preset
		var mapping []byte
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &mapping, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		if err := json.Unmarshal(mapping, &p.Mapping); err != nil {
			return nil, fmt.Errorf("failed to decode mapping: %w", err)
		}
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	return presets, nil
}

// Delete removes a preset by name.
func (r *Repository) Delete(ctx context.Context, ownerID uuid.UUID, name string) error {
	query := `DELETE FROM mapping_presets WHERE owner_id = $1 AND name = $2`

	tag, err := r.db.Exec(ctx, query, ownerID, name)
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
