// Package admin implements the cookie-gated handlers under /api/admin.
// Handlers bind JSON, call the repositories, invalidate the read caches, and
// trigger frontend revalidation for the affected public paths. All failure
// bodies are {"error": "..."} objects.
package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/auth"
	"github.com/masterskaya-studio/site-backend/internal/config"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
	"github.com/masterskaya-studio/site-backend/internal/middleware"
)

// AuthHandlers handles admin login, logout, and session introspection.
type AuthHandlers struct {
	cfg      *config.AuthConfig
	secure   bool // Secure flag on the session cookie (production only)
	sessions *repositories.SessionRepository
	captcha  *auth.CaptchaVerifier
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(cfg *config.Config, sessions *repositories.SessionRepository) *AuthHandlers {
	var captcha *auth.CaptchaVerifier
	if cfg.Auth.Captcha.Enabled {
		captcha = auth.NewCaptchaVerifier(cfg.Auth.Captcha.VerifyURL, cfg.Auth.Captcha.Secret)
	} else {
		captcha = auth.NewCaptchaVerifier("", "")
	}
	return &AuthHandlers{
		cfg:      &cfg.Auth,
		secure:   cfg.Server.Production,
		sessions: sessions,
		captcha:  captcha,
	}
}

type loginRequest struct {
	Login        string `json:"login" binding:"required"`
	Password     string `json:"password" binding:"required"`
	CaptchaToken string `json:"captchaToken"`
}

// LoginHandler authenticates an admin and sets the session cookie.
// POST /api/admin/login
//
// Every failure path — bad login, bad password, failed CAPTCHA — returns the
// same generic 401 after a randomized 200–400 ms delay, so neither the
// response body nor its timing reveals which check failed. There is no
// lockout or rate limit beyond that delay.
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.failLogin(c)
			return
		}

		ok, err := h.captcha.Verify(c.Request.Context(), req.CaptchaToken, c.ClientIP())
		if err != nil {
			slog.Error("captcha verification errored", "error", err)
			h.failLogin(c)
			return
		}
		if !ok {
			h.failLogin(c)
			return
		}

		user, err := h.sessions.GetUserByLogin(c.Request.Context(), req.Login)
		if err != nil {
			slog.Error("login lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
			h.failLogin(c)
			return
		}

		token, err := auth.NewSessionToken()
		if err != nil {
			slog.Error("session token generation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		expiresAt := time.Now().Add(h.cfg.SessionTTL)
		if _, err := h.sessions.CreateSession(c.Request.Context(), token, user.ID, expiresAt); err != nil {
			slog.Error("session create failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		h.setSessionCookie(c, token, int(h.cfg.SessionTTL.Seconds()))
		c.JSON(http.StatusOK, gin.H{
			"user": gin.H{"id": user.ID, "login": user.Login},
		})
	}
}

func (h *AuthHandlers) failLogin(c *gin.Context) {
	time.Sleep(auth.FailureDelay())
	c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
}

// LogoutHandler deletes the current session and clears the cookie. It is not
// behind the auth middleware: logging out with a stale or unknown cookie
// still clears it and succeeds.
// POST /api/admin/logout
func (h *AuthHandlers) LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(h.cfg.CookieName); err == nil && token != "" {
			if err := h.sessions.DeleteSession(c.Request.Context(), token); err != nil {
				slog.Warn("session delete on logout failed", "error", err)
			}
		}
		h.setSessionCookie(c, "", -1)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// MeHandler returns the authenticated admin's account.
// GET /api/admin/me
func (h *AuthHandlers) MeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.AdminUserIDKey)
		user, err := h.sessions.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user": gin.H{"id": user.ID, "login": user.Login},
		})
	}
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, maxAge, "/", "", h.secure, true)
}
