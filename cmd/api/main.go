package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookish/internal/app"
	"bookish/internal/book"
	"bookish/internal/config"
	"bookish/internal/httpx"
	"bookish/internal/logger"
	"bookish/internal/platform/postgres"
	"bookish/internal/readinglist"
	"bookish/internal/review"
	"bookish/internal/server"
	"bookish/internal/user"
	"bookish/internal/validation"
)

const dbPingTimeout = 2 * time.Second

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
		AddSource:   !cfg.IsProduction(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	pool, err := postgres.Open(ctx, cfg.Database.DSN, dbPingTimeout)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("database connection OK", "db", postgres.RedactDSN(cfg.Database.DSN))

	services := app.NewServices(cfg, pool, app.NewCatalog(cfg.OpenLibrary))

	limiter := httpx.NewRateLimitMiddleware(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	defer limiter.Close()

	v := validation.New()
	handler := server.NewRouter(server.Deps{
		Logger:      log.Logger,
		DB:          pool,
		HTTP:        cfg.HTTP,
		JWTSecret:   cfg.Auth.JWTSecret,
		RateLimiter: limiter,
		Users:       user.NewHTTPHandler(services.Users, v),
		Books:       book.NewHTTPHandler(services.Books, v),
		Lists:       readinglist.NewHTTPHandler(services.Lists, v),
		Reviews:     review.NewHTTPHandler(services.Reviews, v),
	})

	return serve(ctx, newHTTPServer(cfg.HTTP, handler), cfg.HTTP.ShutdownTimeout, log)
}

func newHTTPServer(cfg config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// serve runs srv until ctx is cancelled, then drains in-flight requests for up to
// shutdownTimeout.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
