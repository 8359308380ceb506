// seo.go implements the admin handlers for per-page SEO overrides.
package admin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
	"github.com/masterskaya-studio/site-backend/internal/revalidate"
	"github.com/masterskaya-studio/site-backend/internal/site"
	"github.com/masterskaya-studio/site-backend/internal/validation"
)

// SeoHandlers handles admin page SEO endpoints.
type SeoHandlers struct {
	seo      *repositories.SeoRepository
	content  *site.Content
	frontend *revalidate.Client
}

// NewSeoHandlers creates a new SeoHandlers instance.
func NewSeoHandlers(seo *repositories.SeoRepository, content *site.Content, frontend *revalidate.Client) *SeoHandlers {
	return &SeoHandlers{seo: seo, content: content, frontend: frontend}
}

// ListSeoHandler lists every page override.
// GET /api/admin/seo
func (h *SeoHandlers) ListSeoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := h.seo.List(c.Request.Context())
		if err != nil {
			slog.Error("failed to list page seo", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list seo"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"pages": entries})
	}
}

// UpsertSeoHandler inserts or fully replaces the override for a page slug.
// PUT /api/admin/seo/:slug
func (h *SeoHandlers) UpsertSeoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if !validation.ValidSlug(slug) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page slug"})
			return
		}

		var req struct {
			Title       *string  `json:"title"`
			Description *string  `json:"description"`
			Keywords    []string `json:"keywords"`
			OGImageURL  *string  `json:"ogImageUrl"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		entry := &models.PageSeo{
			Slug:        slug,
			Title:       req.Title,
			Description: req.Description,
			Keywords:    models.StringList(req.Keywords),
			OGImageURL:  req.OGImageURL,
		}
		if err := h.seo.Upsert(c.Request.Context(), entry); err != nil {
			slog.Error("failed to upsert page seo", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save seo"})
			return
		}

		h.content.InvalidatePageSeo(slug)
		h.frontend.Trigger("/" + slug)
		c.JSON(http.StatusOK, gin.H{"page": entry})
	}
}

// DeleteSeoHandler removes the override so the page falls back to static
// defaults.
// DELETE /api/admin/seo/:slug
func (h *SeoHandlers) DeleteSeoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		found, err := h.seo.Delete(c.Request.Context(), slug)
		if err != nil {
			slog.Error("failed to delete page seo", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete seo"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "seo entry not found"})
			return
		}

		h.content.InvalidatePageSeo(slug)
		h.frontend.Trigger("/" + slug)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
