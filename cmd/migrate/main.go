package main

import (
	"context"
	"flag"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"paperpharmacy/internal/config"
	"paperpharmacy/internal/logging"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	config.LoadEnvFiles()
	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "console"})

	ctx := context.Background()
	dir := migrationsDir()

	goose.SetLogger(gooseLogger{})
	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		logging.Fatal().Err(err).Msg("Failed to set dialect")
	}

	if *command == "create" {
		if *name == "" {
			logging.Fatal().Msg("Name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			logging.Fatal().Err(err).Msg("Failed to create migration")
		}
		logging.Info().Str("name", *name).Msg("Migration created")
		return
	}

	pool, err := pgxpool.New(ctx, databaseDSN())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	switch *command {
	case "up":
		if err := goose.UpContext(ctx, db, dir); err != nil {
			logging.Fatal().Err(err).Msg("Failed to run migrations")
		}
		logging.Info().Msg("Migrations applied successfully")
	case "down":
		if err := goose.DownContext(ctx, db, dir); err != nil {
			logging.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		logging.Info().Msg("Migrations rolled back successfully")
	case "status":
		if err := goose.StatusContext(ctx, db, dir); err != nil {
			logging.Fatal().Err(err).Msg("Failed to check migration status")
		}
	default:
		logging.Fatal().Str("command", *command).Msg("Unknown command. Use: up, down, status, create")
	}
}
