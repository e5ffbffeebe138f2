// Package app wires repositories, the Open Library client and services for the commands.
package app

import (
	"bookish/internal/book"
	"bookish/internal/config"
	"bookish/internal/platform/openlibrary"
	"bookish/internal/readinglist"
	"bookish/internal/review"
	"bookish/internal/user"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Services struct {
	Users   *user.Service
	Books   *book.Service
	Lists   *readinglist.Service
	Reviews *review.Service
}

func NewCatalog(cfg config.OpenLibrary) *openlibrary.Client {
	return openlibrary.NewClient(openlibrary.Options{
		BaseURL:    cfg.BaseURL,
		UserAgent:  cfg.UserAgent,
		RPS:        cfg.RPS,
		MaxRetries: cfg.MaxRetries,
		Timeout:    cfg.Timeout,
	})
}

// NewServices builds every service over pool. Lists and reviews resolve books through the
// book service so that unknown books are imported from Open Library on first use.
func NewServices(cfg *config.Config, pool *pgxpool.Pool, catalog book.Catalog) *Services {
	timeout := cfg.Database.QueryTimeout

	books := book.NewService(book.NewPostgresRepo(pool, timeout), catalog, cfg.OpenLibrary.CoversURL)
	return &Services{
		Users: user.NewService(user.NewPostgresRepo(pool, timeout), user.Options{
			BcryptCost: cfg.Auth.BcryptCost,
			JWTSecret:  cfg.Auth.JWTSecret,
			TokenTTL:   cfg.Auth.TokenTTL,
		}),
		Books:   books,
		Lists:   readinglist.NewService(readinglist.NewPostgresRepo(pool, timeout), books),
		Reviews: review.NewService(review.NewPostgresRepo(pool, timeout), books),
	}
}
