package repository

import (
	"context"

	"pairon-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PhoneRepository handles database operations for phone records
type PhoneRepository struct {
	db *pgxpool.Pool
}

// NewPhoneRepository creates a new phone repository
func NewPhoneRepository(db *pgxpool.Pool) *PhoneRepository {
	return &PhoneRepository{db: db}
}

const phoneColumns = `id, user_id, brand, model, chip, ip_rating, haptics,
	os_name, os_version, has_custom_ui, custom_ui_name,
	update_support, patch_support, launch_date, price, gradient, image_path,
	ram_variants, storage_variants, displays, cameras, video, battery,
	has_fingerprint, fingerprint_type, has_face_unlock, face_unlock_type,
	stereo_speakers, headphone_jack, created_at, updated_at`

func scanPhone(row interface{ Scan(...interface{}) error }, p *models.Phone) error {
	return row.Scan(
		&p.ID,
		&p.UserID,
		&p.Brand,
		&p.Model,
		&p.Chip,
		&p.IPRating,
		&p.Haptics,
		&p.OSName,
		&p.OSVersion,
		&p.HasCustomUI,
		&p.CustomUIName,
		&p.UpdateSupport,
		&p.PatchSupport,
		&p.LaunchDate,
		&p.Price,
		&p.Gradient,
		&p.ImagePath,
		&p.RAMVariants,
		&p.StorageVariants,
		&p.Displays,
		&p.Cameras,
		&p.Video,
		&p.Battery,
		&p.HasFingerprint,
		&p.FingerprintType,
		&p.HasFaceUnlock,
		&p.FaceUnlockType,
		&p.StereoSpeakers,
		&p.HeadphoneJack,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// Create creates a new phone record
func (r *PhoneRepository) Create(ctx context.Context, phone *models.Phone) error {
	query := `
		INSERT INTO phones (
			user_id, brand, model, chip, ip_rating, haptics,
			os_name, os_version, has_custom_ui, custom_ui_name,
			update_support, patch_support, launch_date, price, gradient, image_path,
			ram_variants, storage_variants, displays, cameras, video, battery,
			has_fingerprint, fingerprint_type, has_face_unlock, face_unlock_type,
			stereo_speakers, headphone_jack
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		phone.UserID,
		phone.Brand,
		phone.Model,
		phone.Chip,
		phone.IPRating,
		phone.Haptics,
		phone.OSName,
		phone.OSVersion,
		phone.HasCustomUI,
		phone.CustomUIName,
		phone.UpdateSupport,
		phone.PatchSupport,
		phone.LaunchDate,
		phone.Price,
		phone.Gradient,
		phone.ImagePath,
		phone.RAMVariants,
		phone.StorageVariants,
		phone.Displays,
		phone.Cameras,
		phone.Video,
		phone.Battery,
		phone.HasFingerprint,
		phone.FingerprintType,
		phone.HasFaceUnlock,
		phone.FaceUnlockType,
		phone.StereoSpeakers,
		phone.HeadphoneJack,
	).Scan(&phone.ID, &phone.CreatedAt, &phone.UpdatedAt)

	return err
}

// GetByID retrieves a phone record by ID
func (r *PhoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Phone, error) {
	phone := &models.Phone{}
	query := `SELECT ` + phoneColumns + ` FROM phones WHERE id = $1`

	if err := scanPhone(r.db.QueryRow(ctx, query, id), phone); err != nil {
		return nil, err
	}

	return phone, nil
}

// Update overwrites a phone record (full-document semantics, last write wins)
func (r *PhoneRepository) Update(ctx context.Context, phone *models.Phone) error {
	query := `
		UPDATE phones SET
			brand = $2,
			model = $3,
			chip = $4,
			ip_rating = $5,
			haptics = $6,
			os_name = $7,
			os_version = $8,
			has_custom_ui = $9,
			custom_ui_name = $10,
			update_support = $11,
			patch_support = $12,
			launch_date = $13,
			price = $14,
			gradient = $15,
			image_path = $16,
			ram_variants = $17,
			storage_variants = $18,
			displays = $19,
			cameras = $20,
			video = $21,
			battery = $22,
			has_fingerprint = $23,
			fingerprint_type = $24,
			has_face_unlock = $25,
			face_unlock_type = $26,
			stereo_speakers = $27,
			headphone_jack = $28,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		phone.ID,
		phone.Brand,
		phone.Model,
		phone.Chip,
		phone.IPRating,
		phone.Haptics,
		phone.OSName,
		phone.OSVersion,
		phone.HasCustomUI,
		phone.CustomUIName,
		phone.UpdateSupport,
		phone.PatchSupport,
		phone.LaunchDate,
		phone.Price,
		phone.Gradient,
		phone.ImagePath,
		phone.RAMVariants,
		phone.StorageVariants,
		phone.Displays,
		phone.Cameras,
		phone.Video,
		phone.Battery,
		phone.HasFingerprint,
		phone.FingerprintType,
		phone.HasFaceUnlock,
		phone.FaceUnlockType,
		phone.StereoSpeakers,
		phone.HeadphoneJack,
	).Scan(&phone.UpdatedAt)

	return err
}

// UpdateImagePath updates only the image reference
func (r *PhoneRepository) UpdateImagePath(ctx context.Context, id uuid.UUID, imagePath string) error {
	query := `
		UPDATE phones SET
			image_path = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, imagePath)
	return err
}

// ListByUserID retrieves all phone records for a user, newest first
func (r *PhoneRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phones []*models.Phone
	for rows.Next() {
		phone := &models.Phone{}
		if err := scanPhone(rows, phone); err != nil {
			return nil, err
		}
		phones = append(phones, phone)
	}

	return phones, rows.Err()
}

// Delete deletes a phone record
func (r *PhoneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM phones WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
