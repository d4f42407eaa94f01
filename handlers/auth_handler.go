package handlers

import (
	"errors"
	"net/http"

	"pairon-backend/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), service.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, errorJSON("EMAIL_TAKEN", "Email is already registered"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorJSON("SIGNUP_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, dataJSON(gin.H{
		"user":         result.User,
		"access_token": result.AccessToken,
		"expires_at":   result.ExpiresAt,
	}))
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorJSON("INVALID_CREDENTIALS", "Invalid email or password"))
		return
	}

	c.JSON(http.StatusOK, dataJSON(gin.H{
		"user":         result.User,
		"access_token": result.AccessToken,
		"expires_at":   result.ExpiresAt,
	}))
}

// GuestLogin handles POST /api/auth/guest
func (h *AuthHandler) GuestLogin(c *gin.Context) {
	result, err := h.authService.GuestLogin(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorJSON("GUEST_LOGIN_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, dataJSON(gin.H{
		"user":         result.User,
		"access_token": result.AccessToken,
		"expires_at":   result.ExpiresAt,
	}))
}

// ClassifyErrorRequest represents an identity-provider error report
type ClassifyErrorRequest struct {
	Code   string `json:"code" binding:"required"`
	Origin string `json:"origin"`
}

// ClassifyProviderError handles POST /api/auth/classify-error. Clients
// report raw provider error codes here and get back actionable guidance,
// keeping the sub-case mapping in one place.
func (h *AuthHandler) ClassifyProviderError(c *gin.Context) {
	var req ClassifyErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorJSON("INVALID_REQUEST", err.Error()))
		return
	}

	c.JSON(http.StatusOK, dataJSON(service.ClassifyProviderError(req.Code, req.Origin)))
}
