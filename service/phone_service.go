package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"pairon-backend/models"

	"github.com/google/uuid"
)

// PhoneStore is the persistence contract required by the phone service
type PhoneStore interface {
	Create(ctx context.Context, phone *models.Phone) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Phone, error)
	Update(ctx context.Context, phone *models.Phone) error
	UpdateImagePath(ctx context.Context, id uuid.UUID, imagePath string) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Phone, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Predefined phone service errors
var (
	ErrMissingBrand       = errors.New("brand is required")
	ErrMissingModel       = errors.New("model is required")
	ErrPhoneNotFound      = errors.New("phone not found")
	ErrNotOwner           = errors.New("phone does not belong to this user")
	ErrDeleteNotConfirmed = errors.New("delete requires explicit confirmation")
)

// GradientPalette is the fixed set of card gradient tokens. A new record
// is assigned one at random; edits keep the existing token so the card's
// visual identity is stable.
var GradientPalette = []string{
	"sunset",
	"ocean",
	"violet",
	"forest",
	"ember",
	"midnight",
}

// PhoneService handles business logic for phone records
type PhoneService struct {
	phoneStore PhoneStore
	events     *PhoneEvents
}

// PhoneServiceOption is a functional option for PhoneService
type PhoneServiceOption func(*PhoneService)

// WithPhoneStore sets the phone store
func WithPhoneStore(store PhoneStore) PhoneServiceOption {
	return func(s *PhoneService) {
		s.phoneStore = store
	}
}

// WithPhoneEvents sets the change-event hub
func WithPhoneEvents(events *PhoneEvents) PhoneServiceOption {
	return func(s *PhoneService) {
		s.events = events
	}
}

// NewPhoneService creates a new phone service
func NewPhoneService(opts ...PhoneServiceOption) *PhoneService {
	s := &PhoneService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// validatePhone enforces the mandatory fields. Runs before any store call
// so an invalid submission never reaches the database.
func validatePhone(phone *models.Phone) error {
	if strings.TrimSpace(phone.Brand) == "" {
		return ErrMissingBrand
	}
	if strings.TrimSpace(phone.Model) == "" {
		return ErrMissingModel
	}
	return nil
}

// clearConditionalFields empties every field whose governing flag is false,
// regardless of what the client submitted. Prevents stale text from a
// disabled form field leaking into storage.
func clearConditionalFields(phone *models.Phone) {
	if !phone.HasCustomUI {
		phone.CustomUIName = ""
	}
	if !phone.Battery.Wireless {
		phone.Battery.WirelessSpec = ""
	}
	if !phone.Battery.ReverseCharging {
		phone.Battery.ReverseSpec = ""
	}
	if !phone.HasFingerprint {
		phone.FingerprintType = ""
	}
	if !phone.HasFaceUnlock {
		phone.FaceUnlockType = ""
	}
}

// randomGradient picks a card gradient token from the fixed palette
func randomGradient() string {
	return GradientPalette[rand.Intn(len(GradientPalette))]
}

// CreatePhoneRequest represents a request to create a phone record
type CreatePhoneRequest struct {
	UserID uuid.UUID
	Phone  *models.Phone
}

// CreatePhoneResult represents the result of creating a phone record
type CreatePhoneResult struct {
	Phone *models.Phone
}

// CreatePhone validates and persists a new phone record
func (s *PhoneService) CreatePhone(ctx context.Context, req CreatePhoneRequest) (*CreatePhoneResult, error) {
	if err := validatePhone(req.Phone); err != nil {
		return nil, err
	}

	phone := req.Phone
	phone.UserID = req.UserID
	clearConditionalFields(phone)
	phone.Gradient = randomGradient()

	if err := s.phoneStore.Create(ctx, phone); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Notify(req.UserID)
	}

	return &CreatePhoneResult{Phone: phone}, nil
}

// GetPhoneRequest represents a request to get a phone record
type GetPhoneRequest struct {
	UserID uuid.UUID
	ID     uuid.UUID
}

// GetPhoneResult represents the result of getting a phone record
type GetPhoneResult struct {
	Phone *models.Phone
}

// GetPhone retrieves a phone record, enforcing ownership
func (s *PhoneService) GetPhone(ctx context.Context, req GetPhoneRequest) (*GetPhoneResult, error) {
	phone, err := s.phoneStore.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrPhoneNotFound
	}
	if phone.UserID != req.UserID {
		return nil, ErrNotOwner
	}

	return &GetPhoneResult{Phone: phone}, nil
}

// UpdatePhoneRequest represents a request to overwrite a phone record
type UpdatePhoneRequest struct {
	UserID uuid.UUID
	ID     uuid.UUID
	Phone  *models.Phone
}

// UpdatePhoneResult represents the result of updating a phone record
type UpdatePhoneResult struct {
	Phone *models.Phone
}

// UpdatePhone overwrites an existing record (full-document, last write
// wins). The original gradient token and image reference survive unless
// the request supplies a new image.
func (s *PhoneService) UpdatePhone(ctx context.Context, req UpdatePhoneRequest) (*UpdatePhoneResult, error) {
	if err := validatePhone(req.Phone); err != nil {
		return nil, err
	}

	existing, err := s.phoneStore.GetByID(ctx, req.ID)
	if err != nil {
		return nil, ErrPhoneNotFound
	}
	if existing.UserID != req.UserID {
		return nil, ErrNotOwner
	}

	phone := req.Phone
	phone.ID = existing.ID
	phone.UserID = existing.UserID
	phone.Gradient = existing.Gradient
	phone.CreatedAt = existing.CreatedAt
	if phone.ImagePath == "" {
		phone.ImagePath = existing.ImagePath
	}
	clearConditionalFields(phone)

	if err := s.phoneStore.Update(ctx, phone); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Notify(req.UserID)
	}

	return &UpdatePhoneResult{Phone: phone}, nil
}

// AttachImageRequest represents a request to attach an uploaded image
type AttachImageRequest struct {
	UserID    uuid.UUID
	ID        uuid.UUID
	ImagePath string
}

// AttachImage records an uploaded image reference on an existing phone
func (s *PhoneService) AttachImage(ctx context.Context, req AttachImageRequest) error {
	phone, err := s.phoneStore.GetByID(ctx, req.ID)
	if err != nil {
		return ErrPhoneNotFound
	}
	if phone.UserID != req.UserID {
		return ErrNotOwner
	}

	if err := s.phoneStore.UpdateImagePath(ctx, req.ID, req.ImagePath); err != nil {
		return err
	}

	if s.events != nil {
		s.events.Notify(req.UserID)
	}

	return nil
}

// ListPhonesRequest represents a request to list a user's phone records
type ListPhonesRequest struct {
	UserID uuid.UUID
}

// ListPhonesResult represents the result of listing phone records
type ListPhonesResult struct {
	Phones []*models.Phone
}

// ListPhones lists all phone records for a user, newest first
func (s *PhoneService) ListPhones(ctx context.Context, req ListPhonesRequest) (*ListPhonesResult, error) {
	phones, err := s.phoneStore.ListByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	return &ListPhonesResult{Phones: phones}, nil
}

// DeletePhoneRequest represents a request to delete a phone record.
// Confirmed mirrors the client's two-step confirmation dialog: the
// delete is refused unless the caller states it explicitly.
type DeletePhoneRequest struct {
	UserID    uuid.UUID
	ID        uuid.UUID
	Confirmed bool
}

// DeletePhone deletes a phone record after explicit confirmation
func (s *PhoneService) DeletePhone(ctx context.Context, req DeletePhoneRequest) error {
	if !req.Confirmed {
		return ErrDeleteNotConfirmed
	}

	phone, err := s.phoneStore.GetByID(ctx, req.ID)
	if err != nil {
		return ErrPhoneNotFound
	}
	if phone.UserID != req.UserID {
		return ErrNotOwner
	}

	if err := s.phoneStore.Delete(ctx, req.ID); err != nil {
		return err
	}

	if s.events != nil {
		s.events.Notify(req.UserID)
	}

	return nil
}

// Subscribe opens a live change feed for one user's collection
func (s *PhoneService) Subscribe(userID uuid.UUID) (<-chan struct{}, func()) {
	return s.events.Subscribe(userID)
}
