package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"pairon-backend/models"
	"pairon-backend/service"
	"pairon-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PhoneHandler handles HTTP requests for phone records
type PhoneHandler struct {
	phoneService     *service.PhoneService
	storage          storage.Storage
	maxImageSize     int64
	allowedMimeTypes map[string]bool
}

// NewPhoneHandler creates a new phone handler
func NewPhoneHandler(phoneService *service.PhoneService, store storage.Storage) *PhoneHandler {
	return &PhoneHandler{
		phoneService: phoneService,
		storage:      store,
		maxImageSize: 8 * 1024 * 1024, // 8MB
		allowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
		},
	}
}

// PhoneRequest represents the request body for creating or overwriting a
// phone record. Only brand and model are mandatory; everything else
// defaults to empty/false.
type PhoneRequest struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Chip  string `json:"chip"`

	IPRating      string `json:"ip_rating"`
	Haptics       string `json:"haptics"`
	OSName        string `json:"os_name"`
	OSVersion     string `json:"os_version"`
	HasCustomUI   bool   `json:"has_custom_ui"`
	CustomUIName  string `json:"custom_ui_name"`
	UpdateSupport string `json:"update_support"`
	PatchSupport  string `json:"patch_support"`

	LaunchDate string `json:"launch_date"`
	Price      string `json:"price"`

	RAMVariants     models.RAMVariants     `json:"ram_variants"`
	StorageVariants models.StorageVariants `json:"storage_variants"`
	Displays        models.Displays        `json:"displays"`
	Cameras         models.Cameras         `json:"cameras"`
	Video           models.Video           `json:"video"`
	Battery         models.Battery         `json:"battery"`

	HasFingerprint  bool   `json:"has_fingerprint"`
	FingerprintType string `json:"fingerprint_type"`
	HasFaceUnlock   bool   `json:"has_face_unlock"`
	FaceUnlockType  string `json:"face_unlock_type"`

	StereoSpeakers bool `json:"stereo_speakers"`
	HeadphoneJack  bool `json:"headphone_jack"`
}

func (req *PhoneRequest) toModel() *models.Phone {
	return &models.Phone{
		Brand:           req.Brand,
		Model:           req.Model,
		Chip:            req.Chip,
		IPRating:        req.IPRating,
		Haptics:         req.Haptics,
		OSName:          req.OSName,
		OSVersion:       req.OSVersion,
		HasCustomUI:     req.HasCustomUI,
		CustomUIName:    req.CustomUIName,
		UpdateSupport:   req.UpdateSupport,
		PatchSupport:    req.PatchSupport,
		LaunchDate:      req.LaunchDate,
		Price:           req.Price,
		RAMVariants:     req.RAMVariants,
		StorageVariants: req.StorageVariants,
		Displays:        req.Displays,
		Cameras:         req.Cameras,
		Video:           req.Video,
		Battery:         req.Battery,
		HasFingerprint:  req.HasFingerprint,
		FingerprintType: req.FingerprintType,
		HasFaceUnlock:   req.HasFaceUnlock,
		FaceUnlockType:  req.FaceUnlockType,
		StereoSpeakers:  req.StereoSpeakers,
		HeadphoneJack:   req.HeadphoneJack,
	}
}

// writePhoneError maps service errors onto the response envelope
func writePhoneError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingBrand):
		c.JSON(http.StatusBadRequest, errorJSON("MISSING_BRAND", "Brand is required"))
	case errors.Is(err, service.ErrMissingModel):
		c.JSON(http.StatusBadRequest, errorJSON("MISSING_MODEL", "Model is required"))
	case errors.Is(err, service.ErrPhoneNotFound):
		c.JSON(http.StatusNotFound, errorJSON("NOT_FOUND", "Phone not found"))
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, errorJSON("FORBIDDEN", "Phone does not belong to this user"))
	case errors.Is(err, service.ErrDeleteNotConfirmed):
		c.JSON(http.StatusBadRequest, errorJSON("CONFIRMATION_REQUIRED", "Deleting a phone requires confirm=true"))
	default:
		c.JSON(http.StatusInternalServerError, errorJSON("INTERNAL_ERROR", err.Error()))
	}
}

// CreatePhone handles POST /api/phones
func (h *PhoneHandler) CreatePhone(c *gin.Context) {
	var req PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := h.phoneService.CreatePhone(c.Request.Context(), service.CreatePhoneRequest{
		UserID: currentUserID(c),
		Phone:  req.toModel(),
	})
	if err != nil {
		writePhoneError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dataJSON(result.Phone))
}

// GetPhone handles GET /api/phones/:id
func (h *PhoneHandler) GetPhone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Invalid phone ID format"))
		return
	}

	result, err := h.phoneService.GetPhone(c.Request.Context(), service.GetPhoneRequest{
		UserID: currentUserID(c),
		ID:     id,
	})
	if err != nil {
		writePhoneError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataJSON(result.Phone))
}

// UpdatePhone handles PUT /api/phones/:id
func (h *PhoneHandler) UpdatePhone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Invalid phone ID format"))
		return
	}

	var req PhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := h.phoneService.UpdatePhone(c.Request.Context(), service.UpdatePhoneRequest{
		UserID: currentUserID(c),
		ID:     id,
		Phone:  req.toModel(),
	})
	if err != nil {
		writePhoneError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataJSON(result.Phone))
}

// ListPhones handles GET /api/phones
func (h *PhoneHandler) ListPhones(c *gin.Context) {
	result, err := h.phoneService.ListPhones(c.Request.Context(), service.ListPhonesRequest{
		UserID: currentUserID(c),
	})
	if err != nil {
		writePhoneError(c, err)
		return
	}

	phones := result.Phones
	if phones == nil {
		phones = []*models.Phone{}
	}
	c.JSON(http.StatusOK, dataJSON(phones))
}

// DeletePhone handles DELETE /api/phones/:id?confirm=true
func (h *PhoneHandler) DeletePhone(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Invalid phone ID format"))
		return
	}

	err = h.phoneService.DeletePhone(c.Request.Context(), service.DeletePhoneRequest{
		UserID:    currentUserID(c),
		ID:        id,
		Confirmed: c.Query("confirm") == "true",
	})
	if err != nil {
		writePhoneError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataJSON(gin.H{"deleted": id}))
}

// StreamEvents handles GET /api/phones/events as a Server-Sent Events
// stream. One subscription per connection: an initial snapshot is pushed
// immediately, then the full replacement list on every change, and the
// subscription is torn down only when the client disconnects.
func (h *PhoneHandler) StreamEvents(c *gin.Context) {
	userID := currentUserID(c)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	events, cancel := h.phoneService.Subscribe(userID)
	defer cancel()

	sendSnapshot := func() bool {
		result, err := h.phoneService.ListPhones(c.Request.Context(), service.ListPhonesRequest{UserID: userID})
		if err != nil {
			log.Printf("Warning: failed to load phone snapshot for stream: %v", err)
			return false
		}
		phones := result.Phones
		if phones == nil {
			phones = []*models.Phone{}
		}
		c.SSEvent("phones", phones)
		return true
	}

	if !sendSnapshot() {
		return
	}
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case _, ok := <-events:
			if !ok {
				return false
			}
			return sendSnapshot()
		}
	})
}

// UploadImage handles POST /api/phones/:id/image. Image upload is
// best-effort from the record's point of view: a failure here never
// touches the stored record.
func (h *PhoneHandler) UploadImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Invalid phone ID format"))
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("MISSING_IMAGE", "Image file is required"))
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

	storagePath, err := h.storage.Upload(c.Request.Context(), uuid.New(), fileHeader.Filename, file)
	if err != nil {
		log.Printf("Warning: phone image upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorJSON("IMAGE_UPLOAD_FAILED",
			"Image upload failed; the phone record is unchanged"))
		return
	}

	err = h.phoneService.AttachImage(c.Request.Context(), service.AttachImageRequest{
		UserID:    currentUserID(c),
		ID:        id,
		ImagePath: storagePath,
	})
	if err != nil {
		// Orphaned upload, clean it up
		if delErr := h.storage.Delete(c.Request.Context(), storagePath); delErr != nil {
			log.Printf("Warning: failed to clean up orphaned image %s: %v", storagePath, delErr)
		}
		writePhoneError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataJSON(gin.H{"image_path": storagePath}))
}

// GetImage handles GET /api/phones/images/*path, serving stored images
func (h *PhoneHandler) GetImage(c *gin.Context) {
	storagePath := strings.TrimPrefix(c.Param("path"), "/")
	if storagePath == "" || strings.Contains(storagePath, "..") {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_PATH", "Invalid image path"))
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), storagePath)
	if err != nil {
		c.JSON(http.StatusNotFound, errorJSON("NOT_FOUND", "Image not found"))
		return
	}
	defer reader.Close()

	c.Header("Content-Type", imageMimeType(storagePath))
	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Printf("Warning: failed to stream image %s: %v", storagePath, err)
	}
}

// imageMimeType resolves the MIME type from the filename extension.
// The client-supplied Content-Type header is never consulted: a spoofed
// header must not get a file past the allowlist.
func imageMimeType(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
