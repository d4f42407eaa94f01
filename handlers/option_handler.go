package handlers

import (
	"errors"
	"net/http"

	"pairon-backend/models"
	"pairon-backend/service"

	"github.com/gin-gonic/gin"
)

// OptionHandler handles HTTP requests for custom option dictionaries
type OptionHandler struct {
	optionService *service.OptionService
}

// NewOptionHandler creates a new option handler
func NewOptionHandler(optionService *service.OptionService) *OptionHandler {
	return &OptionHandler{optionService: optionService}
}

// ListOptions handles GET /api/options/:category?q=
func (h *OptionHandler) ListOptions(c *gin.Context) {
	result, err := h.optionService.MergedOptions(c.Request.Context(), service.MergedOptionsRequest{
		UserID:   currentUserID(c),
		Category: models.OptionCategory(c.Param("category")),
		Query:    c.Query("q"),
	})
	if err != nil {
		if errors.Is(err, service.ErrUnknownCategory) {
			c.JSON(http.StatusBadRequest, errorJSON("UNKNOWN_CATEGORY", "Unknown option category"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorJSON("LIST_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusOK, dataJSON(result.Options))
}

// AddOptionRequest represents the request body for adding a custom option
type AddOptionRequest struct {
	Value string `json:"value" binding:"required"`
}

// AddOption handles POST /api/options/:category. The client treats this
// as fire-and-forget; the typed value is already shown optimistically.
func (h *OptionHandler) AddOption(c *gin.Context) {
	var req AddOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_REQUEST", err.Error()))
		return
	}

	err := h.optionService.AddOption(c.Request.Context(), service.AddOptionRequest{
		UserID:   currentUserID(c),
		Category: models.OptionCategory(c.Param("category")),
		Value:    req.Value,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCategory):
			c.JSON(http.StatusBadRequest, errorJSON("UNKNOWN_CATEGORY", "Unknown option category"))
		case errors.Is(err, service.ErrEmptyValue):
			c.JSON(http.StatusBadRequest, errorJSON("EMPTY_VALUE", "Option value must not be empty"))
		default:
			c.JSON(http.StatusInternalServerError, errorJSON("ADD_FAILED", err.Error()))
		}
		return
	}

	c.JSON(http.StatusCreated, dataJSON(gin.H{"value": req.Value}))
}
