// Package container wires the application graph: repositories, services and
// both HTTP servers, in dependency order.
package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"godash/adapters/export"
	"godash/adapters/llm"
	"godash/adapters/postgres"
	"godash/app"
	"godash/internal/analysis"
	"godash/internal/auth"
	"godash/internal/cache"
	"godash/internal/config"
	"godash/internal/ops"
	"godash/internal/tables"
	"godash/ports"
	"godash/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	UserRepo      ports.UserRepository
	DashboardRepo ports.DashboardRepository

	// Shared state
	DatasetCache *cache.DatasetCache
	Tokens       *auth.TokenService

	// AI collaborator
	Generator ports.ConfigGenerator

	// Application services
	Sessions   *app.SessionService
	Analyses   *app.AnalysisService
	Dashboards *app.DashboardService

	// HTTP surfaces
	API *ui.Server
	Ops *ops.Server
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{Config: cfg}, nil
}

// InitWithDatabase initializes components that require database access. The
// schema must already be migrated; the container only verifies liveness.
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.initRepositories()
	if err := c.initGenerator(); err != nil {
		return fmt.Errorf("failed to initialize AI collaborator: %w", err)
	}
	c.initServices()
	c.initServers()

	log.Info().Msg("container initialized")
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = postgres.NewUserRepository(c.DB)
	c.DashboardRepo = postgres.NewDashboardRepository(c.DB)
}

func (c *Container) initGenerator() error {
	client, err := llm.NewOpenAIClient(llm.Config{
		APIKey:      c.Config.AI.APIKey,
		Model:       c.Config.AI.Model,
		BaseURL:     c.Config.AI.BaseURL,
		Temperature: c.Config.AI.Temperature,
		MaxTokens:   c.Config.AI.MaxTokens,
		Timeout:     c.Config.AI.Timeout,
	})
	if err != nil {
		return err
	}
	c.Generator = llm.NewDashboardGenerator(client)
	return nil
}

func (c *Container) initServices() {
	c.DatasetCache = cache.NewDatasetCache(c.Config.Cache.DatasetTTL)
	c.Tokens = auth.NewTokenService(c.Config.Auth.JWTSecret, c.Config.Auth.TokenTTL)

	c.Sessions = app.NewSessionService(c.UserRepo, c.Tokens)
	c.Analyses = app.NewAnalysisService(
		c.Generator,
		c.DatasetCache,
		tables.NewMaterializer(analysis.NewEngine()),
		int64(c.Config.AI.MaxConcurrent),
	)
	c.Dashboards = app.NewDashboardService(c.DashboardRepo, export.NewXLSXExporter())
}

func (c *Container) initServers() {
	c.API = ui.NewServer(ui.Config{
		Port:           c.Config.Server.Port,
		StaticDir:      c.Config.Server.StaticDir,
		MaxUploadBytes: c.Config.Uploads.MaxBytes,
	}, ui.Dependencies{
		Sessions:   c.Sessions,
		Analyses:   c.Analyses,
		Dashboards: c.Dashboards,
		Datasets:   c.DatasetCache,
		Tokens:     c.Tokens,
	})

	if c.Config.Ops.Enabled {
		c.Ops = ops.NewServer(c.Config.Ops.Port, c.DB, c.Config.Ops.PprofEnabled)
	}
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.API != nil {
		if err := c.API.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("api server shutdown")
		}
	}
	if c.Ops != nil {
		if err := c.Ops.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("ops server shutdown")
		}
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
