package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pairon-backend/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence contract required by the auth service
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdatePhotoPath(ctx context.Context, id uuid.UUID, photoPath string) error
	UpdatePremium(ctx context.Context, id uuid.UUID, premium bool) error
}

// Predefined auth service errors
var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid access token")
)

// AccessTokenExpiry is how long access tokens are valid
const AccessTokenExpiry = 24 * time.Hour

// AuthClaims represents the claims in PairOn access tokens
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID  string `json:"uid"`
	IsGuest bool   `json:"guest,omitempty"`
}

// AuthService handles signup, login, guest access and token issuance
type AuthService struct {
	userStore  UserStore
	signingKey []byte
	issuer     string
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// AuthWithUserStore sets the user store
func AuthWithUserStore(store UserStore) AuthServiceOption {
	return func(s *AuthService) {
		s.userStore = store
	}
}

// AuthWithSigningKey sets the JWT signing key
func AuthWithSigningKey(key string) AuthServiceOption {
	return func(s *AuthService) {
		s.signingKey = []byte(key)
	}
}

// AuthWithIssuer sets the JWT issuer claim
func AuthWithIssuer(issuer string) AuthServiceOption {
	return func(s *AuthService) {
		s.issuer = issuer
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{issuer: "pairon-backend"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupRequest represents a signup submission
type SignupRequest struct {
	Email    string
	Password string
	Name     string
}

// AuthResult carries the authenticated user and their access token
type AuthResult struct {
	User        *models.User
	AccessToken string
	ExpiresAt   time.Time
}

// Signup registers a new email/password user
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if _, err := s.userStore.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// LoginRequest represents a login submission
type LoginRequest struct {
	Email    string
	Password string
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// GuestLogin creates a reduced-trust guest user and issues a token.
// Guests bypass credential checks entirely but may not mutate their
// profile image.
func (s *AuthService) GuestLogin(ctx context.Context) (*AuthResult, error) {
	id := uuid.New()
	user := &models.User{
		Email:   fmt.Sprintf("guest-%s@pairon.local", id),
		Name:    "Guest",
		IsGuest: true,
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// issueToken signs an HS256 access token for the user
func (s *AuthService) issueToken(user *models.User) (*AuthResult, error) {
	now := time.Now()
	expiresAt := now.Add(AccessTokenExpiry)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
		},
		UserID:  user.ID.String(),
		IsGuest: user.IsGuest,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &AuthResult{User: user, AccessToken: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken validates an access token and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetUser fetches a user by id
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userStore.GetByID(ctx, id)
}

// ProviderErrorInfo is actionable guidance for an identity-provider error
type ProviderErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ClassifyProviderError translates identity-provider error codes into
// user-facing guidance. The unauthorized-domain case is split into three
// sub-cases because each needs a different fix.
func ClassifyProviderError(code, origin string) ProviderErrorInfo {
	if code != "auth/unauthorized-domain" {
		return ProviderErrorInfo{
			Code:    "PROVIDER_ERROR",
			Message: "Sign-in failed. Please try again or use email and password.",
		}
	}

	origin = strings.ToLower(strings.TrimSpace(origin))
	switch {
	case origin == "":
		return ProviderErrorInfo{
			Code: "UNAUTHORIZED_DOMAIN_UNKNOWN",
			Message: "Sign-in was blocked and the current domain could not be detected. " +
				"Open the app from its real URL and add that domain to the provider's authorized list.",
		}
	case isSandboxOrigin(origin):
		return ProviderErrorInfo{
			Code: "UNAUTHORIZED_DOMAIN_SANDBOX",
			Message: "Sign-in is not available in sandboxed preview environments. " +
				"Open the deployed app in a regular browser tab and try again.",
		}
	default:
		return ProviderErrorInfo{
			Code: "UNAUTHORIZED_DOMAIN",
			Message: fmt.Sprintf("The domain %q is not authorized for sign-in. "+
				"Add it to the provider's authorized domains list.", origin),
		}
	}
}

// isSandboxOrigin recognizes hosted preview sandboxes where popup
// sign-in cannot work
func isSandboxOrigin(origin string) bool {
	sandboxHosts := []string{
		"localhost", "127.0.0.1", "webcontainer", "stackblitz", "csb.app", "gitpod",
	}
	for _, host := range sandboxHosts {
		if strings.Contains(origin, host) {
			return true
		}
	}
	return false
}
