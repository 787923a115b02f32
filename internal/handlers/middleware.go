package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-platform/internal/models"
)

// Identity is established by the upstream gateway and forwarded in headers.

// RequireUser rejects requests without an X-User-ID header.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests unless X-User-Role is admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-Role") != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}
