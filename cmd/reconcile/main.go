package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bookish/internal/config"
	"bookish/internal/logger"
	"bookish/internal/platform/postgres"
	"bookish/internal/readinglist"
)

const (
	connectTimeout = 5 * time.Second
	runTimeout     = time.Minute
)

type reconciler interface {
	Reconcile(ctx context.Context) ([]int64, error)
}

func main() {
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

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	pool, err := postgres.Open(ctx, cfg.Database.DSN, connectTimeout)
	if err != nil {
		log.WithError(err).Error("connect to database")
		os.Exit(1)
	}
	defer pool.Close()

	// Reconcile needs no book lookups, so the service gets no resolver.
	lists := readinglist.NewService(readinglist.NewPostgresRepo(pool, runTimeout), nil)
	if _, err := reconcile(ctx, lists, log); err != nil {
		log.WithError(err).Error("reconcile failed")
		os.Exit(1)
	}
}

// reconcile repairs drifted list book counts and logs every list it touched.
func reconcile(ctx context.Context, r reconciler, log *logger.Logger) ([]int64, error) {
	start := time.Now()
	ids, err := r.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		log.Warn("repaired book count", "list_id", id)
	}
	log.Info("reconcile complete", "repaired", len(ids), "duration_ms", time.Since(start).Milliseconds())
	return ids, nil
}
