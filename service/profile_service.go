package service

import (
	"context"
	"errors"
	"strings"

	"pairon-backend/models"

	"github.com/google/uuid"
)

// Predefined profile service errors
var (
	ErrGuestPhotoForbidden = errors.New("guest accounts cannot change the profile photo")
	ErrDevToolsDisabled    = errors.New("developer tools are disabled")
	ErrMissingName         = errors.New("name is required")
)

// ProfileService handles profile edits and the dev-only premium toggle
type ProfileService struct {
	userStore       UserStore
	devToolsEnabled bool
}

// ProfileServiceOption is a functional option for ProfileService
type ProfileServiceOption func(*ProfileService)

// ProfileWithUserStore sets the user store
func ProfileWithUserStore(store UserStore) ProfileServiceOption {
	return func(s *ProfileService) {
		s.userStore = store
	}
}

// ProfileWithDevTools enables the premium-flag toggle (development only)
func ProfileWithDevTools(enabled bool) ProfileServiceOption {
	return func(s *ProfileService) {
		s.devToolsEnabled = enabled
	}
}

// NewProfileService creates a new profile service
func NewProfileService(opts ...ProfileServiceOption) *ProfileService {
	s := &ProfileService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetProfile fetches the caller's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userStore.GetByID(ctx, userID)
}

// UpdateProfileRequest represents a profile edit. PhotoPath distinguishes
// three cases: nil leaves the stored photo untouched, an empty string
// clears it, and a non-empty string replaces it with a fresh upload.
type UpdateProfileRequest struct {
	UserID    uuid.UUID
	IsGuest   bool
	Name      string
	PhotoPath *string
}

// UpdateProfile saves the name always, and the photo only when it was
// freshly changed or explicitly cleared. Guests may never mutate the
// photo; the check lives here, not only in the transport layer, because
// disabled client controls are not a trust boundary.
func (s *ProfileService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrMissingName
	}

	if req.PhotoPath != nil && req.IsGuest {
		return nil, ErrGuestPhotoForbidden
	}

	if err := s.userStore.UpdateName(ctx, req.UserID, name); err != nil {
		return nil, err
	}

	if req.PhotoPath != nil {
		if err := s.userStore.UpdatePhotoPath(ctx, req.UserID, *req.PhotoPath); err != nil {
			return nil, err
		}
	}

	return s.userStore.GetByID(ctx, req.UserID)
}

// SetPremium toggles the premium entitlement flag. Development/testing
// affordance only, never a purchase flow; refused unless dev tools are
// enabled in the environment.
func (s *ProfileService) SetPremium(ctx context.Context, userID uuid.UUID, premium bool) error {
	if !s.devToolsEnabled {
		return ErrDevToolsDisabled
	}
	return s.userStore.UpdatePremium(ctx, userID, premium)
}
