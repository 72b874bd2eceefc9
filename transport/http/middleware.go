package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gnoparus/pbtodo/core"
	"github.com/gnoparus/pbtodo/service"
)

const (
	contextKeyUserID  = "userID"
	contextKeySession = "session"
)

// AuthMiddleware creates middleware that validates access tokens
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		// Check if the Authorization header is present and in correct format
		if len(auth) < 8 || auth[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		// Extract the token
		token := auth[7:]

		// Validate the token
		session, err := authService.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set(contextKeyUserID, session.UserID)
		c.Set(contextKeySession, session)

		c.Next()
	}
}

func userIDFromContext(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

func sessionFromContext(c *gin.Context) *core.Session {
	v, ok := c.Get(contextKeySession)
	if !ok {
		return nil
	}
	session, ok := v.(*core.Session)
	if !ok {
		return nil
	}
	return session
}
