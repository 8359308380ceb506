// settings.go implements the admin handlers for site settings documents and
// global blocks.
package admin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
	"github.com/masterskaya-studio/site-backend/internal/revalidate"
	"github.com/masterskaya-studio/site-backend/internal/site"
)

// knownSettings restricts the writable setting keys; the value documents are
// otherwise stored opaquely.
var knownSettings = map[string]bool{
	models.SettingContact:    true,
	models.SettingSocials:    true,
	models.SettingAppearance: true,
}

var knownBlocks = map[string]bool{
	models.BlockHomeHero:       true,
	models.BlockTransitionLogo: true,
	models.BlockPricingTable:   true,
}

// SettingsHandlers handles admin settings and global block endpoints.
type SettingsHandlers struct {
	settings *repositories.SettingsRepository
	content  *site.Content
	frontend *revalidate.Client
}

// NewSettingsHandlers creates a new SettingsHandlers instance.
func NewSettingsHandlers(settings *repositories.SettingsRepository, content *site.Content, frontend *revalidate.Client) *SettingsHandlers {
	return &SettingsHandlers{settings: settings, content: content, frontend: frontend}
}

// GetSettingHandler returns one settings document. Unset keys return an empty
// document rather than 404 so the admin forms always have something to edit.
// GET /api/admin/settings/:key
func (h *SettingsHandlers) GetSettingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		if !knownSettings[key] {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown setting"})
			return
		}

		s, err := h.settings.GetSetting(c.Request.Context(), key)
		if err != nil {
			slog.Error("failed to get setting", "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get setting"})
			return
		}
		if s == nil {
			c.JSON(http.StatusOK, gin.H{"setting": gin.H{"key": key, "value": gin.H{}}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"setting": s})
	}
}

// PutSettingHandler replaces a settings document.
// PUT /api/admin/settings/:key
func (h *SettingsHandlers) PutSettingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		if !knownSettings[key] {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown setting"})
			return
		}

		var value models.JSONMap
		if err := c.ShouldBindJSON(&value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		s, err := h.settings.SetSetting(c.Request.Context(), key, value)
		if err != nil {
			slog.Error("failed to save setting", "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save setting"})
			return
		}

		h.content.InvalidateSetting(key)
		h.frontend.Trigger("/", "/kontakty")
		c.JSON(http.StatusOK, gin.H{"setting": s})
	}
}

// ListBlocksHandler lists every global block.
// GET /api/admin/blocks
func (h *SettingsHandlers) ListBlocksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		blocks, err := h.settings.ListBlocks(c.Request.Context())
		if err != nil {
			slog.Error("failed to list global blocks", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list blocks"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"blocks": blocks})
	}
}

// PutBlockHandler replaces a global block document.
// PUT /api/admin/blocks/:slug
func (h *SettingsHandlers) PutBlockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if !knownBlocks[slug] {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown block"})
			return
		}

		var data models.JSONMap
		if err := c.ShouldBindJSON(&data); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		b, err := h.settings.UpsertBlock(c.Request.Context(), slug, data)
		if err != nil {
			slog.Error("failed to save global block", "slug", slug, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save block"})
			return
		}

		h.content.InvalidateBlock(slug)
		h.frontend.Trigger("/")
		c.JSON(http.StatusOK, gin.H{"block": b})
	}
}
