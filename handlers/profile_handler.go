package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"pairon-backend/service"
	"pairon-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfileHandler handles HTTP requests for the user profile
type ProfileHandler struct {
	profileService   *service.ProfileService
	storage          storage.Storage
	maxImageSize     int64
	allowedMimeTypes map[string]bool
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService, store storage.Storage) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		storage:        store,
		maxImageSize:   8 * 1024 * 1024, // 8MB
		allowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
		},
	}
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, err := h.profileService.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, errorJSON("NOT_FOUND", "Profile not found"))
		return
	}

	c.JSON(http.StatusOK, dataJSON(user))
}

// UpdateProfile handles PUT /api/profile as a multipart form: the name is
// always saved; the photo is saved only when a new file was attached or
// remove_photo=true was set explicitly. Untouched photos are never
// rewritten.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	name := c.PostForm("name")
	removePhoto := c.PostForm("remove_photo") == "true"

	var photoPath *string

	fileHeader, err := c.FormFile("photo")
	switch {
	case err == nil && removePhoto:
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_REQUEST",
			"Cannot both upload a photo and remove it"))
		return

	case err == nil:
		if isGuest(c) {
			// Transport-level guard; the service enforces this again
			c.JSON(http.StatusForbidden, errorJSON("GUEST_FORBIDDEN",
				"Guest accounts cannot change the profile photo"))
			return
		}

		if fileHeader.Size > h.maxImageSize {
			c.JSON(http.StatusBadRequest, errorJSON("IMAGE_TOO_LARGE",
				fmt.Sprintf("Image size exceeds maximum of %d bytes", h.maxImageSize)))
			return
		}

		mimeType := imageMimeType(fileHeader.Filename)
		if !h.allowedMimeTypes[mimeType] {
			c.JSON(http.StatusBadRequest, errorJSON("INVALID_IMAGE_TYPE",
				"Image type not allowed. Allowed types: JPEG, PNG, WebP, GIF"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorJSON("IMAGE_OPEN_ERROR", err.Error()))
			return
		}
		defer file.Close()

		uploaded, err := h.storage.Upload(c.Request.Context(), uuid.New(), fileHeader.Filename, file)
		if err != nil {
			// Best-effort: the name save still proceeds without the photo
			log.Printf("Warning: profile photo upload failed: %v", err)
		} else {
			photoPath = &uploaded
		}

	case removePhoto:
		empty := ""
		photoPath = &empty
	}

	user, err := h.profileService.UpdateProfile(c.Request.Context(), service.UpdateProfileRequest{
		UserID:    currentUserID(c),
		IsGuest:   isGuest(c),
		Name:      name,
		PhotoPath: photoPath,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingName):
			c.JSON(http.StatusBadRequest, errorJSON("MISSING_NAME", "Name is required"))
		case errors.Is(err, service.ErrGuestPhotoForbidden):
			c.JSON(http.StatusForbidden, errorJSON("GUEST_FORBIDDEN",
				"Guest accounts cannot change the profile photo"))
		default:
			c.JSON(http.StatusInternalServerError, errorJSON("PROFILE_SAVE_FAILED", err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, dataJSON(user))
}

// SetPremiumRequest represents the request body for the premium toggle
type SetPremiumRequest struct {
	Premium *bool `json:"premium" binding:"required"`
}

// SetPremium handles PUT /api/profile/premium. Development-only toggle,
// refused unless DEV_TOOLS_ENABLED=true.
func (h *ProfileHandler) SetPremium(c *gin.Context) {
	var req SetPremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_REQUEST", err.Error()))
		return
	}

	err := h.profileService.SetPremium(c.Request.Context(), currentUserID(c), *req.Premium)
	if err != nil {
		if errors.Is(err, service.ErrDevToolsDisabled) {
			c.JSON(http.StatusForbidden, errorJSON("DEV_TOOLS_DISABLED",
				"The premium toggle is only available when developer tools are enabled"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorJSON("PREMIUM_TOGGLE_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, dataJSON(gin.H{"premium": *req.Premium}))
}
