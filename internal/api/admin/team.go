// team.go implements the admin CRUD and reorder handlers for team members.
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
)

// TeamHandlers handles admin team member endpoints.
type TeamHandlers struct {
	team     *repositories.TeamRepository
	content  *site.Content
	frontend *revalidate.Client
}

// NewTeamHandlers creates a new TeamHandlers instance.
func NewTeamHandlers(team *repositories.TeamRepository, content *site.Content, frontend *revalidate.Client) *TeamHandlers {
	return &TeamHandlers{team: team, content: content, frontend: frontend}
}

type teamPayload struct {
	Name           *string `json:"name"`
	Role           *string `json:"role"`
	Label          *string `json:"label"`
	ImageURL       *string `json:"imageUrl"`
	MobileImageURL *string `json:"mobileImageUrl"`
	IsFeatured     *bool   `json:"isFeatured"`
}

// ListTeamHandler lists all team members in display order.
// GET /api/admin/team
func (h *TeamHandlers) ListTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		members, err := h.team.ListAll(c.Request.Context())
		if err != nil {
			slog.Error("failed to list team", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list team"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"team": members})
	}
}

// CreateTeamMemberHandler adds a member at the end of the display order.
// POST /api/admin/team
func (h *TeamHandlers) CreateTeamMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req teamPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Name == nil || *req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		m := &models.TeamMember{Name: *req.Name}
		assignOptional(&m.Role, req.Role)
		assignOptional(&m.Label, req.Label)
		assignOptional(&m.ImageURL, req.ImageURL)
		assignOptional(&m.MobileImageURL, req.MobileImageURL)
		if req.IsFeatured != nil {
			m.IsFeatured = *req.IsFeatured
		}

		if err := h.team.Create(c.Request.Context(), m); err != nil {
			slog.Error("failed to create team member", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create team member"})
			return
		}

		h.content.InvalidateTeam()
		h.frontend.Trigger("/masterskaja")
		c.JSON(http.StatusCreated, gin.H{"member": m})
	}
}

// UpdateTeamMemberHandler applies a partial update.
// PATCH /api/admin/team/:id
func (h *TeamHandlers) UpdateTeamMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req teamPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		m, err := h.team.Update(c.Request.Context(), c.Param("id"), &repositories.TeamMemberUpdate{
			Name:           req.Name,
			Role:           req.Role,
			Label:          req.Label,
			ImageURL:       req.ImageURL,
			MobileImageURL: req.MobileImageURL,
			IsFeatured:     req.IsFeatured,
		})
		if err != nil {
			slog.Error("failed to update team member", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update team member"})
			return
		}
		if m == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "team member not found"})
			return
		}

		h.content.InvalidateTeam()
		h.frontend.Trigger("/masterskaja")
		c.JSON(http.StatusOK, gin.H{"member": m})
	}
}

// DeleteTeamMemberHandler removes a member and closes the order gap.
// DELETE /api/admin/team/:id
func (h *TeamHandlers) DeleteTeamMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		found, err := h.team.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			slog.Error("failed to delete team member", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete team member"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "team member not found"})
			return
		}

		h.content.InvalidateTeam()
		h.frontend.Trigger("/masterskaja")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// ReorderTeamHandler persists a new display order from the id array.
// POST /api/admin/team/reorder
func (h *TeamHandlers) ReorderTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			IDs []string `json:"ids" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ids array is required"})
			return
		}

		if err := h.team.Reorder(c.Request.Context(), req.IDs); err != nil {
			if errors.Is(err, repositories.ErrUnknownSlug) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			slog.Error("failed to reorder team", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reorder team"})
			return
		}

		h.content.InvalidateTeam()
		h.frontend.Trigger("/masterskaja")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
