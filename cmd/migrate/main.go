// Command migrate brings the database schema up to date and exits. The same
// migrations run on server boot; this exists for deploy pipelines that
// migrate before rolling the application.
package main

import (
	"context"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"godash/internal/logging"
	"godash/internal/migration"
)

func main() {
	_ = godotenv.Load()
	logging.Init("")

	databaseURL := os.Getenv("DATABASE_URL")
	if len(os.Args) > 1 {
		databaseURL = os.Args[1]
	}
	if databaseURL == "" {
		log.Fatal().Msg("usage: migrate [database_url] (or set DATABASE_URL)")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Str("version", migrator.Version()).Msg("migrations applied")
}
