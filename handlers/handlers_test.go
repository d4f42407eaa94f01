package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"pairon-backend/handlers"
	"pairon-backend/models"
	"pairon-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPhoneStore struct {
	phones map[uuid.UUID]*models.Phone
}

func (f *memPhoneStore) Create(ctx context.Context, phone *models.Phone) error {
	phone.ID = uuid.New()
	stored := *phone
	f.phones[phone.ID] = &stored
	return nil
}

func (f *memPhoneStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Phone, error) {
	phone, ok := f.phones[id]
	if !ok {
		return nil, service.ErrPhoneNotFound
	}
	copied := *phone
	return &copied, nil
}

func (f *memPhoneStore) Update(ctx context.Context, phone *models.Phone) error {
	stored := *phone
	f.phones[phone.ID] = &stored
	return nil
}

func (f *memPhoneStore) UpdateImagePath(ctx context.Context, id uuid.UUID, imagePath string) error {
	f.phones[id].ImagePath = imagePath
	return nil
}

func (f *memPhoneStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Phone, error) {
	var out []*models.Phone
	for _, p := range f.phones {
		if p.UserID == userID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *memPhoneStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.phones, id)
	return nil
}

type memUserStore struct {
	users map[uuid.UUID]*models.User
}

func (f *memUserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, service.ErrInvalidCredentials
	}
	copied := *user
	return &copied, nil
}

func (f *memUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, service.ErrInvalidCredentials
}

func (f *memUserStore) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	f.users[id].Name = name
	return nil
}

func (f *memUserStore) UpdatePhotoPath(ctx context.Context, id uuid.UUID, photoPath string) error {
	f.users[id].PhotoPath = photoPath
	return nil
}

func (f *memUserStore) UpdatePremium(ctx context.Context, id uuid.UUID, premium bool) error {
	f.users[id].IsPremium = premium
	return nil
}

type memOptionStore struct {
	values map[models.OptionCategory][]string
}

func (f *memOptionStore) Add(ctx context.Context, userID uuid.UUID, category models.OptionCategory, value string) error {
	f.values[category] = append(f.values[category], value)
	return nil
}

func (f *memOptionStore) ListByCategory(ctx context.Context, userID uuid.UUID, category models.OptionCategory) ([]string, error) {
	return f.values[category], nil
}

type testEnv struct {
	router    *gin.Engine
	token     string
	userID    uuid.UUID
	userStore *memUserStore
	auth      *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userStore := &memUserStore{users: make(map[uuid.UUID]*models.User)}
	phoneStore := &memPhoneStore{phones: make(map[uuid.UUID]*models.Phone)}
	optionStore := &memOptionStore{values: make(map[models.OptionCategory][]string)}

	authService := service.NewAuthService(
		service.AuthWithUserStore(userStore),
		service.AuthWithSigningKey("test-secret-key-for-testing-only"),
	)
	phoneService := service.NewPhoneService(
		service.WithPhoneStore(phoneStore),
		service.WithPhoneEvents(service.NewPhoneEvents()),
	)
	optionService := service.NewOptionService(service.WithOptionStore(optionStore))
	profileService := service.NewProfileService(service.ProfileWithUserStore(userStore))
	advisorService := service.NewAdvisorService(service.AdvisorWithPhoneStore(phoneStore))

	authHandler := handlers.NewAuthHandler(authService)
	phoneHandler := handlers.NewPhoneHandler(phoneService, nil)
	optionHandler := handlers.NewOptionHandler(optionService)
	advisorHandler := handlers.NewAdvisorHandler(advisorService, authService)
	profileHandler := handlers.NewProfileHandler(profileService, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/classify-error", authHandler.ClassifyProviderError)

	authed := api.Group("", handlers.AuthRequired(authService))
	authed.POST("/phones", phoneHandler.CreatePhone)
	authed.GET("/phones", phoneHandler.ListPhones)
	authed.GET("/phones/:id", phoneHandler.GetPhone)
	authed.PUT("/phones/:id", phoneHandler.UpdatePhone)
	authed.DELETE("/phones/:id", phoneHandler.DeletePhone)
	authed.GET("/options/:category", optionHandler.ListOptions)
	authed.POST("/options/:category", optionHandler.AddOption)
	authed.POST("/advisor/sessions", advisorHandler.CreateSession)
	authed.POST("/phones/:id/image", phoneHandler.UploadImage)
	authed.GET("/profile", profileHandler.GetProfile)
	authed.PUT("/profile", profileHandler.UpdateProfile)
	authed.PUT("/profile/premium", profileHandler.SetPremium)

	result, err := authService.Signup(context.Background(), service.SignupRequest{
		Email:    "ada@example.com",
		Password: "hunter22",
		Name:     "Ada",
	})
	require.NoError(t, err)

	return &testEnv{
		router:    r,
		token:     result.AccessToken,
		userID:    result.User.ID,
		userStore: userStore,
		auth:      authService,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// doForm sends a multipart request, optionally with a file part carrying
// an explicit Content-Type header.
func (e *testEnv) doForm(t *testing.T, token, method, path string, fields map[string]string, file *formFile) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
		header.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/phones", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_TOKEN", decode(t, w).Error.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/phones", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", decode(t, w).Error.Code)
}

func TestCreatePhone_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/phones", gin.H{"brand": "", "model": "X1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_BRAND", decode(t, w).Error.Code)

	w = env.do(t, http.MethodPost, "/api/phones", gin.H{"brand": "Acme", "model": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_MODEL", decode(t, w).Error.Code)
}

func TestPhoneLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// Create a minimal record: brand and model only
	w := env.do(t, http.MethodPost, "/api/phones", gin.H{"brand": "Acme", "model": "X1"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Phone
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, "Acme", created.Brand)
	assert.Equal(t, "X1", created.Model)
	assert.Contains(t, service.GradientPalette, created.Gradient)
	assert.Empty(t, created.Chip)
	assert.Empty(t, created.Displays)

	// The collection lists exactly one card
	w = env.do(t, http.MethodGet, "/api/phones", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Phone
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Acme", listed[0].Brand)
	assert.Equal(t, "X1", listed[0].Model)

	// Viewing the record shows unset fields as empty without error
	w = env.do(t, http.MethodGet, "/api/phones/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var viewed models.Phone
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &viewed))
	assert.Empty(t, viewed.Battery.Capacity)
	assert.Empty(t, viewed.CustomUIName)

	// Delete refuses to act without the confirmation parameter
	w = env.do(t, http.MethodDelete, "/api/phones/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONFIRMATION_REQUIRED", decode(t, w).Error.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/phones/%s?confirm=true", created.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/phones", nil)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &listed))
	assert.Empty(t, listed)
}

func TestUpdatePhone_ClearsDisabledFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/phones", gin.H{
		"brand": "Acme", "model": "X1",
		"has_fingerprint":  true,
		"fingerprint_type": "Optical under-display",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Phone
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, "Optical under-display", created.FingerprintType)

	// Turning the flag off clears the dependent field even though the
	// request still carries the stale text
	w = env.do(t, http.MethodPut, "/api/phones/"+created.ID.String(), gin.H{
		"brand": "Acme", "model": "X1",
		"has_fingerprint":  false,
		"fingerprint_type": "Optical under-display",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Phone
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &updated))
	assert.Empty(t, updated.FingerprintType)
	assert.Equal(t, created.Gradient, updated.Gradient)
}

func TestOptionsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/options/brand", gin.H{"value": "Fairphone"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/options/brand?q=fair", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var options []string
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &options))
	assert.Equal(t, []string{"Fairphone"}, options)

	w = env.do(t, http.MethodGet, "/api/options/nonsense", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_CATEGORY", decode(t, w).Error.Code)
}

func TestAdvisorDisabledWithoutKey(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/advisor/sessions", gin.H{"language": "en"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "AI_DISABLED", decode(t, w).Error.Code)
}

func TestPremiumToggleRequiresDevTools(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/profile/premium", gin.H{"premium": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "DEV_TOOLS_DISABLED", decode(t, w).Error.Code)
}

func TestUploadImage_RejectsSpoofedContentType(t *testing.T) {
	env := newTestEnv(t)

	// The part claims image/png but the file is not an image; the header
	// must not get it past the allowlist
	w := env.doForm(t, env.token, http.MethodPost, "/api/phones/"+uuid.New().String()+"/image",
		nil, &formFile{
			field:       "image",
			filename:    "notes.txt",
			contentType: "image/png",
			data:        []byte("not an image"),
		})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_IMAGE_TYPE", decode(t, w).Error.Code)
}

func TestUpdateProfile_NameOnlyLeavesPhoto(t *testing.T) {
	env := newTestEnv(t)
	env.userStore.users[env.userID].PhotoPath = "ab/old.png"

	w := env.doForm(t, env.token, http.MethodPut, "/api/profile",
		map[string]string{"name": "Ada L."}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &user))
	assert.Equal(t, "Ada L.", user.Name)
	assert.Equal(t, "ab/old.png", user.PhotoPath)
}

func TestUpdateProfile_RemovePhoto(t *testing.T) {
	env := newTestEnv(t)
	env.userStore.users[env.userID].PhotoPath = "ab/old.png"

	w := env.doForm(t, env.token, http.MethodPut, "/api/profile",
		map[string]string{"name": "Ada", "remove_photo": "true"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &user))
	assert.Empty(t, user.PhotoPath)
}

func TestUpdateProfile_GuestPhotoForbidden(t *testing.T) {
	env := newTestEnv(t)

	guest, err := env.auth.GuestLogin(context.Background())
	require.NoError(t, err)

	w := env.doForm(t, guest.AccessToken, http.MethodPut, "/api/profile",
		map[string]string{"name": "Guest"}, &formFile{
			field:       "photo",
			filename:    "avatar.png",
			contentType: "image/png",
			data:        []byte("png bytes"),
		})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "GUEST_FORBIDDEN", decode(t, w).Error.Code)

	// Name-only edits remain open to guests
	w = env.doForm(t, guest.AccessToken, http.MethodPut, "/api/profile",
		map[string]string{"name": "Guest Renamed"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &user))
	assert.Equal(t, "Guest Renamed", user.Name)
}

func TestClassifyProviderErrorEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/classify-error", gin.H{
		"code":   "auth/unauthorized-domain",
		"origin": "https://pairon.app",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var info service.ProviderErrorInfo
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &info))
	assert.Equal(t, "UNAUTHORIZED_DOMAIN", info.Code)
	assert.Contains(t, info.Message, "pairon.app")
}
