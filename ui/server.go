// Package ui serves the JSON API and the static dashboard bundle.
package ui

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"godash/adapters/export"
	"godash/adapters/ingest"
	"godash/app"
	"godash/internal/auth"
	"godash/internal/cache"
	"godash/internal/profile"
	"godash/ui/middleware"
)

// Config holds the HTTP surface settings.
type Config struct {
	Port           string
	StaticDir      string
	MaxUploadBytes int64
}

// Dependencies bundles the collaborators the handlers drive.
type Dependencies struct {
	Sessions   *app.SessionService
	Analyses   *app.AnalysisService
	Dashboards *app.DashboardService
	Datasets   *cache.DatasetCache
	Tokens     *auth.TokenService
}

// Server is the public HTTP surface: JSON API under /api/v1 plus the static
// single-page client.
type Server struct {
	router     *gin.Engine
	srv        *http.Server
	sessions   *app.SessionService
	analyses   *app.AnalysisService
	dashboards *app.DashboardService
	datasets   *cache.DatasetCache
	tokens     *auth.TokenService
	reader     *ingest.Reader
	profiler   *profile.Profiler
	exporter   *export.XLSXExporter
	maxUpload  int64
	staticDir  string
}

func NewServer(cfg Config, deps Dependencies) *Server {
	s := &Server{
		router:     gin.New(),
		sessions:   deps.Sessions,
		analyses:   deps.Analyses,
		dashboards: deps.Dashboards,
		datasets:   deps.Datasets,
		tokens:     deps.Tokens,
		reader:     ingest.NewReader(),
		profiler:   profile.NewProfiler(),
		exporter:   export.NewXLSXExporter(),
		maxUpload:  cfg.MaxUploadBytes,
		staticDir:  cfg.StaticDir,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger())
	s.setupRoutes()

	s.srv = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api/v1")
	api.POST("/session", s.handleCreateSession)

	authed := api.Group("")
	authed.Use(middleware.RequireUser(s.tokens))
	authed.GET("/session", s.handleCurrentUser)
	authed.POST("/datasets", s.handleUploadDataset)
	authed.POST("/datasets/:id/analyze", s.handleAnalyzeDataset)
	authed.POST("/dashboards", s.handleSaveDashboard)
	authed.GET("/dashboards", s.handleListDashboards)
	authed.GET("/dashboards/:id", s.handleGetDashboard)
	authed.DELETE("/dashboards/:id", s.handleDeleteDashboard)
	authed.GET("/dashboards/:id/export", s.handleExportDashboard)

	s.setupStatic()
}

// setupStatic serves the client bundle when the directory exists. The API
// works without it, so a missing bundle only logs a warning.
func (s *Server) setupStatic() {
	if s.staticDir == "" {
		return
	}
	if _, err := os.Stat(s.staticDir); err != nil {
		log.Warn().Str("dir", s.staticDir).Msg("static dir not found, serving API only")
		return
	}

	s.router.Static("/static", s.staticDir)
	index := filepath.Join(s.staticDir, "index.html")
	s.router.GET("/", func(c *gin.Context) {
		c.File(index)
	})
	// Client-side routes all resolve to the bundle entrypoint.
	s.router.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.File(index)
	})
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.srv.Addr).Msg("api server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server error: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
