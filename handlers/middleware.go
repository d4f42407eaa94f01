package handlers

import (
	"net/http"
	"strings"

	"pairon-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey  = "user_id"
	ctxIsGuestKey = "is_guest"
)

// AuthRequired validates the Bearer token and injects the caller's
// identity into the request context. There is no ambient session global;
// every handler reads the identity from here.
func AuthRequired(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_TOKEN",
					"message": "Authorization header with Bearer token is required",
				},
			})
			return
		}

		claims, err := authService.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Invalid or expired access token",
				},
			})
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Invalid or expired access token",
				},
			})
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Set(ctxIsGuestKey, claims.IsGuest)
		c.Next()
	}
}

// currentUserID returns the authenticated caller's id from the context
func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(ctxUserIDKey).(uuid.UUID)
}

// isGuest reports whether the caller holds a guest token
func isGuest(c *gin.Context) bool {
	v, ok := c.Get(ctxIsGuestKey)
	if !ok {
		return false
	}
	return v.(bool)
}

// errorJSON builds the standard error envelope
func errorJSON(code, message string) gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// dataJSON builds the standard success envelope
func dataJSON(data interface{}) gin.H {
	return gin.H{
		"success": true,
		"data":    data,
	}
}
