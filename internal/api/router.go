// Package api wires together all HTTP routes for the studio backend.
//
// Route grouping:
//   - Public read routes (/api/projects, /api/team, /api/settings/..., /api/seo/...)
//     and the uploads file server are unauthenticated — the Next.js frontend
//     calls them during server-side rendering without credentials.
//   - Everything under /api/admin (except login/logout) sits behind the
//     session-cookie middleware.
package api

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/api/admin"
	"github.com/masterskaya-studio/site-backend/internal/api/public"
	"github.com/masterskaya-studio/site-backend/internal/config"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
	"github.com/masterskaya-studio/site-backend/internal/images"
	"github.com/masterskaya-studio/site-backend/internal/jobs"
	"github.com/masterskaya-studio/site-backend/internal/middleware"
	"github.com/masterskaya-studio/site-backend/internal/revalidate"
	"github.com/masterskaya-studio/site-backend/internal/safego"
	"github.com/masterskaya-studio/site-backend/internal/site"
	"github.com/masterskaya-studio/site-backend/internal/storage"
)

// BackgroundServices holds background jobs that must be stopped during
// graceful shutdown. The caller (cmd/server) calls Shutdown() after the HTTP
// server has drained so in-flight requests finish first.
type BackgroundServices struct {
	sessionReaper *jobs.SessionReaper
}

// Shutdown stops all background goroutines.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.sessionReaper != nil {
		bg.sessionReaper.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router together with the
// background services it starts.
func NewRouter(cfg *config.Config, database *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()
	router.Use(gin.Recovery())

	store, err := storage.NewUploadStore(cfg.Uploads.BasePath, cfg.Uploads.PublicPath)
	if err != nil {
		log.Fatalf("Failed to initialize uploads store: %v", err)
	}

	// Repositories
	projectRepo := repositories.NewProjectRepository(database)
	mediaRepo := repositories.NewMediaRepository(database)
	teamRepo := repositories.NewTeamRepository(database)
	seoRepo := repositories.NewSeoRepository(database)
	settingsRepo := repositories.NewSettingsRepository(database)
	sessionRepo := repositories.NewSessionRepository(database)

	// Caching read layer and outbound services
	content := site.NewContent(projectRepo, teamRepo, seoRepo, settingsRepo, cfg.Cache.TTL)
	frontend := revalidate.NewClient(
		cfg.Frontend.RevalidateURL, cfg.Frontend.RevalidateSecret, cfg.Frontend.RequestTimeout)
	optimizer := images.NewOptimizer(
		cfg.Uploads.AvifEncoder, cfg.Uploads.WebPQuality, cfg.Uploads.MaxUploadBytes())

	// Background jobs
	reaper := jobs.NewSessionReaper(sessionRepo, cfg.Jobs.SessionReaperInterval)
	safego.Go(func() { reaper.Start(context.Background()) })

	// Middleware stack: security headers and CORS first, then request IDs,
	// then metrics so the recorded status reflects what the client saw.
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORS.AllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/healthz", healthCheckHandler(database))

	// Uploads file server
	router.GET(cfg.Uploads.PublicPath+"/*filepath", uploadsHandler(store))

	// Public read API
	pub := public.NewHandlers(content, settingsRepo)
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/projects", pub.ListProjectsHandler())
		apiGroup.GET("/projects/:slug", pub.GetProjectHandler())
		apiGroup.GET("/team", pub.ListTeamHandler())
		apiGroup.GET("/settings/:key", pub.GetSettingHandler())
		apiGroup.GET("/seo/:slug", pub.GetPageSeoHandler())
	}

	// Admin API
	authHandlers := admin.NewAuthHandlers(cfg, sessionRepo)
	projectHandlers := admin.NewProjectHandlers(projectRepo, content, frontend)
	mediaHandlers := admin.NewMediaHandlers(
		mediaRepo, store, optimizer, content, frontend, cfg.Uploads.MaxUploadBytes())
	teamHandlers := admin.NewTeamHandlers(teamRepo, content, frontend)
	seoHandlers := admin.NewSeoHandlers(seoRepo, content, frontend)
	settingsHandlers := admin.NewSettingsHandlers(settingsRepo, content, frontend)

	adminGroup := router.Group("/api/admin")
	{
		adminGroup.POST("/login", authHandlers.LoginHandler())
		adminGroup.POST("/logout", authHandlers.LogoutHandler())

		authed := adminGroup.Group("")
		authed.Use(middleware.RequireAdmin(sessionRepo, cfg.Auth.CookieName))
		{
			authed.GET("/me", authHandlers.MeHandler())

			authed.GET("/projects", projectHandlers.ListProjectsHandler())
			authed.POST("/projects", projectHandlers.CreateProjectHandler())
			authed.POST("/projects/reorder", projectHandlers.ReorderProjectsHandler())
			authed.GET("/projects/:slug", projectHandlers.GetProjectHandler())
			authed.PATCH("/projects/:slug", projectHandlers.UpdateProjectHandler())
			authed.DELETE("/projects/:slug", projectHandlers.DeleteProjectHandler())
			authed.POST("/projects/:slug/media", projectHandlers.ReplaceMediaHandler())

			authed.GET("/media/library", mediaHandlers.ListLibraryHandler())
			authed.POST("/media/library", mediaHandlers.RegisterAssetHandler())
			authed.DELETE("/media/library/:id", mediaHandlers.DeleteAssetHandler())
			authed.POST("/media/upload", mediaHandlers.UploadHandler())
			authed.POST("/media/fetch", mediaHandlers.FetchHandler())

			authed.GET("/team", teamHandlers.ListTeamHandler())
			authed.POST("/team", teamHandlers.CreateTeamMemberHandler())
			authed.POST("/team/reorder", teamHandlers.ReorderTeamHandler())
			authed.PATCH("/team/:id", teamHandlers.UpdateTeamMemberHandler())
			authed.DELETE("/team/:id", teamHandlers.DeleteTeamMemberHandler())

			authed.GET("/seo", seoHandlers.ListSeoHandler())
			authed.PUT("/seo/:slug", seoHandlers.UpsertSeoHandler())
			authed.DELETE("/seo/:slug", seoHandlers.DeleteSeoHandler())

			authed.GET("/settings/:key", settingsHandlers.GetSettingHandler())
			authed.PUT("/settings/:key", settingsHandlers.PutSettingHandler())

			authed.GET("/blocks", settingsHandlers.ListBlocksHandler())
			authed.PUT("/blocks/:slug", settingsHandlers.PutBlockHandler())
		}
	}

	return router, &BackgroundServices{sessionReaper: reaper}
}

// uploadsHandler streams a stored file. The store validates the path against
// traversal before anything touches the filesystem; invalid paths and missing
// files are both plain 404s.
func uploadsHandler(store *storage.UploadStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rel := c.Param("filepath")
		full, err := store.Resolve(rel)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		exists, err := store.Exists(rel)
		if err != nil || !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		if ctype := mime.TypeByExtension(filepath.Ext(full)); ctype != "" {
			c.Header("Content-Type", ctype)
		}
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.File(full)
	}
}

// healthCheckHandler reports liveness including database connectivity.
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}
