package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bookish/internal/app"
	"bookish/internal/config"
	"bookish/internal/logger"
	"bookish/internal/platform/postgres"
)

func main() {
	var (
		subjects   = flag.String("subjects", "fantasy,science_fiction,mystery", "Comma separated Open Library subjects to import")
		perSubject = flag.Int("per-subject", 5, "Books to import per subject")
		password   = flag.String("password", "password", "Password for the demo accounts")
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

	ctx := context.Background()
	pool, err := postgres.Open(ctx, cfg.Database.DSN, connectTimeout)
	if err != nil {
		log.WithError(err).Error("connect to database")
		os.Exit(1)
	}
	defer pool.Close()

	services := app.NewServices(cfg, pool, app.NewCatalog(cfg.OpenLibrary))
	s := &seeder{
		users:   services.Users,
		books:   services.Books,
		lists:   services.Lists,
		reviews: services.Reviews,
		log:     log,
	}

	report, err := s.run(ctx, splitSubjects(*subjects), *perSubject, *password)
	if err != nil {
		log.WithError(err).Error("seed failed")
		os.Exit(1)
	}
	log.Info("seed complete",
		"users", report.Users,
		"books", report.Books,
		"lists", report.Lists,
		"reviews", report.Reviews,
	)
}

func splitSubjects(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
