package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"godash/internal/config"
	"godash/internal/container"
	"godash/internal/logging"
	"godash/internal/migration"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(cfg.Server.GinMode)
	gin.SetMode(cfg.Server.GinMode)

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	c, err := container.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create application container")
	}
	if err := c.InitWithDatabase(db); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize container")
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(c.API.Start)
	if c.Ops != nil {
		g.Go(c.Ops.Start)
	}

	// Block until a server dies or the process is told to stop.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// initDatabase connects to PostgreSQL and brings the schema up to date.
// Migration statements are idempotent, so this runs on every boot.
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	log.Info().Str("version", migrator.Version()).Msg("database schema ready")

	return db, nil
}
