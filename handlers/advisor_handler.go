package handlers

import (
	"errors"
	"net/http"

	"pairon-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdvisorHandler handles HTTP requests for the AI advisor
type AdvisorHandler struct {
	advisorService *service.AdvisorService
	authService    *service.AuthService
}

// NewAdvisorHandler creates a new advisor handler
func NewAdvisorHandler(advisorService *service.AdvisorService, authService *service.AuthService) *AdvisorHandler {
	return &AdvisorHandler{
		advisorService: advisorService,
		authService:    authService,
	}
}

// writeAdvisorError maps advisor service errors onto the response envelope
func writeAdvisorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAIDisabled):
		c.JSON(http.StatusServiceUnavailable, errorJSON("AI_DISABLED",
			"The AI advisor is not available: no model API key is configured"))
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, errorJSON("SESSION_NOT_FOUND", "Advisor session not found"))
	case errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, errorJSON("EMPTY_MESSAGE", "Message must not be empty"))
	default:
		c.JSON(http.StatusInternalServerError, errorJSON("ADVISOR_ERROR", err.Error()))
	}
}

// CreateSessionRequest represents the request body for opening a session
type CreateSessionRequest struct {
	Language string `json:"language"`
}

// CreateSession handles POST /api/advisor/sessions
func (h *AdvisorHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	// Body is optional; language defaults to English
	_ = c.ShouldBindJSON(&req)

	userID := currentUserID(c)

	userName := ""
	if user, err := h.authService.GetUser(c.Request.Context(), userID); err == nil {
		userName = user.Name
	}

	result, err := h.advisorService.CreateSession(c.Request.Context(), service.CreateSessionRequest{
		UserID:   userID,
		UserName: userName,
		Language: req.Language,
	})
	if err != nil {
		writeAdvisorError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dataJSON(result.Session))
}

// SendMessageRequest represents the request body for one chat turn
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage handles POST /api/advisor/sessions/:id/messages
func (h *AdvisorHandler) SendMessage(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Invalid session ID format"))
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := h.advisorService.SendMessage(c.Request.Context(), service.SendMessageRequest{
		UserID:    currentUserID(c),
		SessionID: sessionID,
		Text:      req.Text,
	})
	if err != nil {
		writeAdvisorError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataJSON(result.Reply))
}

// GetSession handles GET /api/advisor/sessions/:id
func (h *AdvisorHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Invalid session ID format"))
		return
	}

	result, err := h.advisorService.GetSession(service.GetSessionRequest{
		UserID:    currentUserID(c),
		SessionID: sessionID,
	})
	if err != nil {
		writeAdvisorError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataJSON(result.Session))
}

// DeleteSession handles DELETE /api/advisor/sessions/:id ("new chat")
func (h *AdvisorHandler) DeleteSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_ID", "Invalid session ID format"))
		return
	}

	err = h.advisorService.DeleteSession(service.GetSessionRequest{
		UserID:    currentUserID(c),
		SessionID: sessionID,
	})
	if err != nil {
		writeAdvisorError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataJSON(gin.H{"deleted": sessionID}))
}
