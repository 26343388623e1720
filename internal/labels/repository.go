// Package labels serves the lookup tables (category, age, gender) that
// recording submissions reference by id.
package labels

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voicebank/backend/internal/models"
)

// Repository reads the lookup tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a labels repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Categories returns all category rows ordered by id.
func (r *Repository) Categories(ctx context.Context) ([]models.Label, error) {
	return r.list(ctx, "category")
}

// Ages returns all age rows ordered by id.
func (r *Repository) Ages(ctx context.Context) ([]models.Label, error) {
	return r.list(ctx, "age")
}

// Genders returns all gender rows ordered by id.
func (r *Repository) Genders(ctx context.Context) ([]models.Label, error) {
	return r.list(ctx, "gender")
}

// list queries one of the three fixed lookup tables. The table name is
// never user input.
func (r *Repository) list(ctx context.Context, table string) ([]models.Label, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT id, label FROM %s ORDER BY id`, table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []models.Label
	for rows.Next() {
		var l models.Label
		if err := rows.Scan(&l.ID, &l.Label); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
