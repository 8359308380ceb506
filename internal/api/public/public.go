// Package public implements the unauthenticated read endpoints consumed by
// the Next.js frontend during server-side rendering. All reads go through the
// site.Content cache layer; responses carry Cache-Control: no-store because
// the frontend does its own page-level caching and must never double-cache.
package public

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
	"github.com/masterskaya-studio/site-backend/internal/site"
)

// Handlers serves the public read API.
type Handlers struct {
	content  *site.Content
	settings *repositories.SettingsRepository
}

// NewHandlers creates a new public Handlers instance.
func NewHandlers(content *site.Content, settings *repositories.SettingsRepository) *Handlers {
	return &Handlers{content: content, settings: settings}
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}

// ListProjectsHandler returns all projects in display order.
// GET /api/projects
func (h *Handlers) ListProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		noStore(c)
		projects, err := h.content.Projects(c.Request.Context())
		if err != nil {
			slog.Error("public project list failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": projects})
	}
}

// GetProjectHandler returns one project with gallery and schemes.
// GET /api/projects/:slug
func (h *Handlers) GetProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		noStore(c)
		p, err := h.content.Project(c.Request.Context(), c.Param("slug"))
		if err != nil {
			slog.Error("public project read failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"project": p})
	}
}

// ListTeamHandler returns all team members in display order.
// GET /api/team
func (h *Handlers) ListTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		noStore(c)
		members, err := h.content.Team(c.Request.Context())
		if err != nil {
			slog.Error("public team read failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"team": members})
	}
}

// GetSettingHandler returns a settings document, or all global blocks for the
// reserved key "global-blocks". Unset keys return an empty document.
// GET /api/settings/:key
func (h *Handlers) GetSettingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		noStore(c)
		key := c.Param("key")

		if key == "global-blocks" {
			blocks, err := h.settings.ListBlocks(c.Request.Context())
			if err != nil {
				slog.Error("public blocks read failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"blocks": blocks})
			return
		}

		switch key {
		case models.SettingContact, models.SettingSocials, models.SettingAppearance:
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown setting"})
			return
		}

		s, err := h.content.Setting(c.Request.Context(), key)
		if err != nil {
			slog.Error("public setting read failed", "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if s == nil {
			c.JSON(http.StatusOK, gin.H{"setting": gin.H{"key": key, "value": gin.H{}}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"setting": s})
	}
}

// GetPageSeoHandler returns the SEO override for a page, or an empty object
// when none is set (the frontend then uses its static defaults).
// GET /api/seo/:slug
func (h *Handlers) GetPageSeoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		noStore(c)
		entry, err := h.content.PageSeo(c.Request.Context(), c.Param("slug"))
		if err != nil {
			slog.Error("public seo read failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if entry == nil {
			c.JSON(http.StatusOK, gin.H{"page": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"page": entry})
	}
}
