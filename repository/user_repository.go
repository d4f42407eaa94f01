package repository

import (
	"context"

	"pairon-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, photo_path, is_premium, is_guest)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.PhotoPath,
		user.IsPremium,
		user.IsGuest,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, name, photo_path, is_premium, is_guest,
			created_at, updated_at
		FROM users
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.PhotoPath,
		&user.IsPremium,
		&user.IsGuest,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, name, photo_path, is_premium, is_guest,
			created_at, updated_at
		FROM users
		WHERE email = $1`

	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.PhotoPath,
		&user.IsPremium,
		&user.IsGuest,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateName updates the display name
func (r *UserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, name)
	return err
}

// UpdatePhotoPath updates the profile photo reference; an empty path clears it
func (r *UserRepository) UpdatePhotoPath(ctx context.Context, id uuid.UUID, photoPath string) error {
	query := `UPDATE users SET photo_path = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, photoPath)
	return err
}

// UpdatePremium toggles the premium entitlement flag
func (r *UserRepository) UpdatePremium(ctx context.Context, id uuid.UUID, premium bool) error {
	query := `UPDATE users SET is_premium = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, premium)
	return err
}
