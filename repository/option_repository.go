package repository

import (
	"context"

	"pairon-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OptionRepository handles database operations for custom option dictionaries
type OptionRepository struct {
	db *pgxpool.Pool
}

// NewOptionRepository creates a new option repository
func NewOptionRepository(db *pgxpool.Pool) *OptionRepository {
	return &OptionRepository{db: db}
}

// Add appends a custom value to a user's category dictionary.
// The dictionary is append-only and duplicates are ignored.
func (r *OptionRepository) Add(ctx context.Context, userID uuid.UUID, category models.OptionCategory, value string) error {
	query := `
		INSERT INTO custom_options (user_id, category, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, category, value) DO NOTHING`

	_, err := r.db.Exec(ctx, query, userID, category, value)
	return err
}

// ListByCategory retrieves a user's custom values for one category
func (r *OptionRepository) ListByCategory(ctx context.Context, userID uuid.UUID, category models.OptionCategory) ([]string, error) {
	query := `
		SELECT value FROM custom_options
		WHERE user_id = $1 AND category = $2
		ORDER BY value ASC`

	rows, err := r.db.Query(ctx, query, userID, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return values, rows.Err()
}
