package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"bookish/internal/config"
	"bookish/internal/logger"
	"bookish/internal/platform/postgres"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const connectTimeout = 5 * time.Second

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, reset, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{
		Format:      cfg.Log.Format,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Log.Level),
	})

	if err := run(context.Background(), cfg, log, *command, *name); err != nil {
		log.WithError(err).Error("migration failed", "command", *command)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, command, name string) error {
	goose.SetLogger(gooseLogger{log})

	if command == "create" {
		if name == "" {
			return errors.New("name is required for 'create' command")
		}
		goose.SetBaseFS(nil)
		if err := goose.Create(nil, cfg.Database.MigrationsDir, name, "sql"); err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		return nil
	}

	pool, err := postgres.Open(ctx, cfg.Database.DSN, connectTimeout)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	fsys, dir := migrationSource(cfg.Database.MigrationsDir)
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	log.Info("running migrations", "command", command, "dir", dir, "db", postgres.RedactDSN(cfg.Database.DSN))

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, dir)
	case "down":
		err = goose.DownContext(ctx, db, dir)
	case "status":
		err = goose.StatusContext(ctx, db, dir)
	case "reset":
		err = goose.ResetContext(ctx, db, dir)
	default:
		return fmt.Errorf("unknown command %q, use: up, down, status, reset, create", command)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	log.Info("migrations done", "command", command)
	return nil
}
