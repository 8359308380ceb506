// auth.go implements the session-cookie guard for /api/admin routes.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
)

const (
	// AdminUserIDKey is the gin.Context key holding the authenticated admin's
	// user id once RequireAdmin has passed.
	AdminUserIDKey = "admin_user_id"

	// SessionTokenKey holds the raw session token for handlers that need it
	// (logout deletes the row for this token).
	SessionTokenKey = "session_token"
)

// RequireAdmin guards a route group with the session cookie. A missing
// cookie, an unknown token, or an expired session all yield the same 401 so
// the response does not reveal which check failed. Expired rows are deleted
// on sight rather than left for the reaper.
func RequireAdmin(sessions *repositories.SessionRepository, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			unauthorized(c)
			return
		}

		session, err := sessions.GetSession(c.Request.Context(), token)
		if err != nil {
			slog.Error("session lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if session == nil {
			unauthorized(c)
			return
		}
		if session.Expired(time.Now()) {
			if err := sessions.DeleteSession(c.Request.Context(), token); err != nil {
				slog.Warn("failed to delete expired session", "error", err)
			}
			unauthorized(c)
			return
		}

		c.Set(AdminUserIDKey, session.UserID)
		c.Set(SessionTokenKey, token)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
