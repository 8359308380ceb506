// media.go implements the media library handlers: upload with image
// optimization, remote URL fetch, listing, and delete-with-scrub.
package admin

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
	"github.com/masterskaya-studio/site-backend/internal/images"
	"github.com/masterskaya-studio/site-backend/internal/revalidate"
	"github.com/masterskaya-studio/site-backend/internal/site"
	"github.com/masterskaya-studio/site-backend/internal/storage"
)

// MediaHandlers handles media library endpoints.
type MediaHandlers struct {
	media     *repositories.MediaRepository
	store     *storage.UploadStore
	optimizer *images.Optimizer
	content   *site.Content
	frontend  *revalidate.Client
	fetcher   *http.Client
	maxBytes  int64
}

// NewMediaHandlers creates a new MediaHandlers instance.
func NewMediaHandlers(
	media *repositories.MediaRepository,
	store *storage.UploadStore,
	optimizer *images.Optimizer,
	content *site.Content,
	frontend *revalidate.Client,
	maxBytes int64,
) *MediaHandlers {
	return &MediaHandlers{
		media:     media,
		store:     store,
		optimizer: optimizer,
		content:   content,
		frontend:  frontend,
		fetcher:   &http.Client{Timeout: 30 * time.Second},
		maxBytes:  maxBytes,
	}
}

// ListLibraryHandler lists all registered media assets, newest first.
// GET /api/admin/media/library
func (h *MediaHandlers) ListLibraryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		assets, err := h.media.List(c.Request.Context())
		if err != nil {
			slog.Error("failed to list media assets", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list media"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"assets": assets})
	}
}

// RegisterAssetHandler records an already-hosted URL in the library.
// POST /api/admin/media/library
func (h *MediaHandlers) RegisterAssetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			URL   string  `json:"url" binding:"required"`
			Title *string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}

		asset, err := h.media.Register(c.Request.Context(), req.URL, req.Title)
		if err != nil {
			slog.Error("failed to register media asset", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register media"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"asset": asset})
	}
}

// DeleteAssetHandler removes an asset, scrubs every reference to its URL from
// the content tables, and deletes the file from disk when it lives under the
// uploads directory.
// DELETE /api/admin/media/library/:id
func (h *MediaHandlers) DeleteAssetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		url, found, err := h.media.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			slog.Error("failed to delete media asset", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete media"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "media asset not found"})
			return
		}

		if err := h.store.Delete(c.Request.Context(), url); err != nil {
			// The database is already consistent; a leftover file is logged,
			// not surfaced.
			slog.Warn("failed to delete uploaded file", "url", url, "error", err)
		}

		// The scrub may have touched any table, so drop everything cached.
		h.content.InvalidateAll()
		h.frontend.Trigger("/")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// UploadHandler accepts a multipart image upload, runs it through the
// optimization ladder, stores the result, and registers it in the library.
// POST /api/admin/media/upload
func (h *MediaHandlers) UploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
			return
		}
		if h.maxBytes > 0 && file.Size > h.maxBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file exceeds %d MB limit", h.maxBytes>>20)})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(io.LimitReader(src, h.maxBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
			return
		}

		contentType := file.Header.Get("Content-Type")
		title := c.PostForm("title")
		h.storeOptimized(c, file.Filename, contentType, title, data)
	}
}

// FetchHandler downloads a remote image, optimizes it, and registers it.
// POST /api/admin/media/fetch
func (h *MediaHandlers) FetchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			URL   string `json:"url" binding:"required"`
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
			return
		}
		if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "url must be http(s)"})
			return
		}

		httpReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, req.URL, nil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url"})
			return
		}
		resp, err := h.fetcher.Do(httpReq)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to fetch url"})
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("remote returned %d", resp.StatusCode)})
			return
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read remote image"})
			return
		}
		if h.maxBytes > 0 && int64(len(data)) > h.maxBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("remote image exceeds %d MB limit", h.maxBytes>>20)})
			return
		}

		h.storeOptimized(c, req.URL, resp.Header.Get("Content-Type"), req.Title, data)
	}
}

// storeOptimized runs the conversion ladder, writes the file, and registers
// the asset. Shared by the upload and fetch paths.
func (h *MediaHandlers) storeOptimized(c *gin.Context, name, contentType, title string, data []byte) {
	res, err := h.optimizer.Optimize(c.Request.Context(), name, contentType, data)
	if err != nil {
		switch err {
		case images.ErrNotAnImage:
			c.JSON(http.StatusBadRequest, gin.H{"error": "only image uploads are accepted"})
		case images.ErrTooLarge:
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file exceeds %d MB limit", h.maxBytes>>20)})
		default:
			slog.Error("image optimization failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process image"})
		}
		return
	}

	url, err := h.store.Save(c.Request.Context(), res.Ext, bytes.NewReader(res.Data))
	if err != nil {
		slog.Error("failed to store upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}

	var titlePtr *string
	if title != "" {
		titlePtr = &title
	}
	asset, err := h.media.Register(c.Request.Context(), url, titlePtr)
	if err != nil {
		slog.Error("failed to register media asset", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register media"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"asset": asset, "format": res.Format})
}
