// Package server assembles the HTTP routes and middleware stack.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookish/internal/book"
	"bookish/internal/config"
	"bookish/internal/httpx"
	"bookish/internal/readinglist"
	"bookish/internal/review"
	"bookish/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const readinessTimeout = 500 * time.Millisecond

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    *slog.Logger
	DB        Pinger
	HTTP      config.HTTP
	JWTSecret string
	// RateLimiter is optional; the caller owns it and closes it on shutdown.
	RateLimiter *httpx.RateLimitMiddleware

	Users   *user.HTTPHandler
	Books   *book.HTTPHandler
	Lists   *readinglist.HTTPHandler
	Reviews *review.HTTPHandler
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	if d.HTTP.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(d.Logger))
	r.Use(httpx.RecoveryMiddleware(d.Logger))
	r.Use(middleware.StripSlashes)
	r.Use(httpx.SecurityHeadersMiddleware(d.HTTP.EnableHSTS))
	r.Use(httpx.CORS(d.HTTP.AllowedOrigins))
	if d.HTTP.MaxBodyBytes > 0 {
		r.Use(httpx.RequestSizeLimitMiddleware(d.HTTP.MaxBodyBytes))
	}
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONSuccess(w, r, map[string]any{"status": "ok"}, nil)
	})
	r.Get("/readyz", readiness(d.DB))

	requireAuth := httpx.AuthMiddleware(d.JWTSecret)
	optionalAuth := httpx.OptionalAuthMiddleware(d.JWTSecret)

	r.Route("/auth", func(r chi.Router) {
		r.With(optionalAuth).Post("/register", d.Users.Register)
		r.Post("/login", d.Users.Login)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", d.Users.List)
		r.Get("/{username}", d.Users.Get)
		r.Get("/{username}/followers", d.Users.Followers)
		r.Get("/{username}/following", d.Users.Following)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Patch("/{username}", d.Users.Update)
			r.Delete("/{username}", d.Users.Delete)
			r.Post("/{username}/follow", d.Users.Follow)
			r.Delete("/{username}/follow", d.Users.Unfollow)
			r.Post("/{username}/followers/{follower}/accept", d.Users.AcceptFollow)
			r.Get("/{username}/follow-requests", d.Users.FollowRequests)
		})
	})

	r.Route("/books", func(r chi.Router) {
		r.Get("/", d.Books.List)
		r.Get("/search", d.Books.Search)
		r.Get("/subjects/{subject}", d.Books.Subject)
		r.Get("/{olid}", d.Books.Get)
		r.Get("/{olid}/reviews", d.Reviews.List)
		r.Get("/{olid}/reviews/{reviewId}", d.Reviews.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", d.Books.Create)
			r.Delete("/{olid}", d.Books.Delete)
			r.Post("/{olid}/genres", d.Books.TagGenre)
			r.Post("/{olid}/reviews", d.Reviews.Create)
			r.Put("/{olid}/reviews/{reviewId}", d.Reviews.Update)
			r.Delete("/{olid}/reviews/{reviewId}", d.Reviews.Delete)
		})
	})

	r.Get("/authors/{authorId}", d.Books.Author)
	r.Get("/genres", d.Books.Genres)
	r.Get("/genres/{genreId}/books", d.Books.GenreBooks)

	r.Route("/lists", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/users/{userId}", d.Lists.ByUser)
			r.Get("/{listId}", d.Lists.Get)
			r.Get("/{listId}/books", d.Lists.Books)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", d.Lists.Create)
			r.Put("/{listId}", d.Lists.Update)
			r.Delete("/{listId}", d.Lists.Delete)
			r.Post("/{listId}/books", d.Lists.AddBook)
			r.Delete("/{listId}/books/{bookId}", d.Lists.RemoveBook)
		})
	})

	return r
}

func readiness(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "Database not ready", nil)
			return
		}
		httpx.JSONSuccess(w, r, map[string]any{"status": "ready"}, nil)
	}
}
