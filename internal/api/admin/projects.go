// projects.go implements the admin CRUD, reorder, and media-replace handlers
// for portfolio projects.
package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/db/models"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
	"github.com/masterskaya-studio/site-backend/internal/revalidate"
	"github.com/masterskaya-studio/site-backend/internal/site"
	"github.com/masterskaya-studio/site-backend/internal/validation"
)

// ProjectHandlers handles admin project endpoints.
type ProjectHandlers struct {
	projects *repositories.ProjectRepository
	content  *site.Content
	frontend *revalidate.Client
}

// NewProjectHandlers creates a new ProjectHandlers instance.
func NewProjectHandlers(projects *repositories.ProjectRepository, content *site.Content, frontend *revalidate.Client) *ProjectHandlers {
	return &ProjectHandlers{projects: projects, content: content, frontend: frontend}
}

type projectPayload struct {
	Slug         *string               `json:"slug"`
	Title        *string               `json:"title"`
	Tagline      *string               `json:"tagline"`
	Location     *string               `json:"location"`
	Year         *string               `json:"year"`
	Area         *string               `json:"area"`
	Scope        *string               `json:"scope"`
	Intro        *string               `json:"intro"`
	HeroImageURL *string               `json:"heroImageUrl"`
	Categories   *[]string             `json:"categories"`
	Body         *[]string             `json:"body"`
	BodyHTML     *string               `json:"bodyHtml"`
	Facts        *[]models.ProjectFact `json:"facts"`
	SEO          *models.ContentSEO    `json:"seo"`
}

// ListProjectsHandler lists all projects in display order.
// GET /api/admin/projects
func (h *ProjectHandlers) ListProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := h.projects.ListAll(c.Request.Context())
		if err != nil {
			slog.Error("failed to list projects", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": projects})
	}
}

// GetProjectHandler returns one project with gallery and schemes.
// GET /api/admin/projects/:slug
func (h *ProjectHandlers) GetProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := h.projects.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			slog.Error("failed to get project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get project"})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"project": p})
	}
}

// CreateProjectHandler creates a project at the end of the display order.
// The slug is taken from the payload when present (must validate), otherwise
// derived from the title with numeric de-duplication.
// POST /api/admin/projects
func (h *ProjectHandlers) CreateProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req projectPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Title == nil || *req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}

		var slug string
		if req.Slug != nil && *req.Slug != "" {
			if !validation.ValidSlug(*req.Slug) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slug"})
				return
			}
			slug = *req.Slug
		} else {
			base := validation.Slugify(*req.Title)
			if base == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "cannot derive slug from title"})
				return
			}
			var err error
			slug, err = h.projects.UniqueSlug(c.Request.Context(), base)
			if err != nil {
				slog.Error("slug derivation failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
				return
			}
		}

		p := &models.Project{Slug: slug, Title: *req.Title}
		assignOptional(&p.Tagline, req.Tagline)
		assignOptional(&p.Location, req.Location)
		assignOptional(&p.Year, req.Year)
		assignOptional(&p.Area, req.Area)
		assignOptional(&p.Scope, req.Scope)
		assignOptional(&p.Intro, req.Intro)
		assignOptional(&p.HeroImageURL, req.HeroImageURL)
		if req.Categories != nil {
			p.Categories = models.StringList(*req.Categories)
		}
		p.Content = models.BuildContent(
			deref(req.Body), derefStr(req.BodyHTML), deref(req.Facts), req.SEO)

		if err := h.projects.Create(c.Request.Context(), p); err != nil {
			if errors.Is(err, repositories.ErrSlugTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
				return
			}
			slog.Error("failed to create project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
			return
		}

		h.content.InvalidateProjects(p.Slug)
		h.frontend.Trigger("/", "/proekty", "/proekty/"+p.Slug)
		c.JSON(http.StatusCreated, gin.H{"project": p})
	}
}

// UpdateProjectHandler applies a partial update.
// PATCH /api/admin/projects/:slug
func (h *ProjectHandlers) UpdateProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		var req projectPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Slug != nil && *req.Slug != "" && !validation.ValidSlug(*req.Slug) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slug"})
			return
		}

		upd := &repositories.ProjectUpdate{
			Slug:         req.Slug,
			Title:        req.Title,
			Tagline:      req.Tagline,
			Location:     req.Location,
			Year:         req.Year,
			Area:         req.Area,
			Scope:        req.Scope,
			Intro:        req.Intro,
			HeroImageURL: req.HeroImageURL,
			Categories:   req.Categories,
			Body:         req.Body,
			BodyHTML:     req.BodyHTML,
			Facts:        req.Facts,
			SEO:          req.SEO,
		}

		p, err := h.projects.Update(c.Request.Context(), slug, upd)
		if err != nil {
			if errors.Is(err, repositories.ErrSlugTaken) {
				c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
				return
			}
			slog.Error("failed to update project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}

		h.content.InvalidateProjects(slug, p.Slug)
		h.frontend.Trigger("/", "/proekty", "/proekty/"+p.Slug)
		c.JSON(http.StatusOK, gin.H{"project": p})
	}
}

// DeleteProjectHandler removes a project and closes the order gap.
// DELETE /api/admin/projects/:slug
func (h *ProjectHandlers) DeleteProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		found, err := h.projects.Delete(c.Request.Context(), slug)
		if err != nil {
			slog.Error("failed to delete project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}

		h.content.InvalidateProjects()
		h.frontend.Trigger("/", "/proekty")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// ReorderProjectsHandler persists a new display order from the slug array.
// POST /api/admin/projects/reorder
func (h *ProjectHandlers) ReorderProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Slugs []string `json:"slugs" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || len(req.Slugs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slugs array is required"})
			return
		}

		if err := h.projects.Reorder(c.Request.Context(), req.Slugs); err != nil {
			if errors.Is(err, repositories.ErrUnknownSlug) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			slog.Error("failed to reorder projects", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reorder projects"})
			return
		}

		h.content.InvalidateProjects()
		h.frontend.Trigger("/", "/proekty")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type mediaPayload struct {
	Hero    *string `json:"hero"`
	Gallery []struct {
		URL     string  `json:"url" binding:"required"`
		Caption *string `json:"caption"`
	} `json:"gallery"`
	Schemes []struct {
		Title string `json:"title"`
		URL   string `json:"url" binding:"required"`
	} `json:"schemes"`
}

// ReplaceMediaHandler atomically swaps a project's full media set.
// POST /api/admin/projects/:slug/media
func (h *ProjectHandlers) ReplaceMediaHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		p, err := h.projects.GetBySlug(c.Request.Context(), slug)
		if err != nil {
			slog.Error("failed to get project", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to replace media"})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}

		var req mediaPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		gallery := make([]repositories.GalleryItem, 0, len(req.Gallery))
		for _, g := range req.Gallery {
			gallery = append(gallery, repositories.GalleryItem{URL: g.URL, Caption: g.Caption})
		}
		schemes := make([]repositories.SchemeItem, 0, len(req.Schemes))
		for _, s := range req.Schemes {
			schemes = append(schemes, repositories.SchemeItem{Title: s.Title, URL: s.URL})
		}

		if err := h.projects.ReplaceMedia(c.Request.Context(), p.ID, req.Hero, gallery, schemes); err != nil {
			slog.Error("failed to replace media", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to replace media"})
			return
		}

		h.content.InvalidateProjects(slug)
		h.frontend.Trigger("/", "/proekty", "/proekty/"+slug)

		updated, err := h.projects.GetBySlug(c.Request.Context(), slug)
		if err != nil || updated == nil {
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"project": updated})
	}
}

func assignOptional(dst **string, src *string) {
	if src != nil && *src != "" {
		v := *src
		*dst = &v
	}
}

func deref[T any](p *[]T) []T {
	if p == nil {
		return nil
	}
	return *p
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
