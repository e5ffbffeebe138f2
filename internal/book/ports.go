package book

import (
	"context"

	"bookish/internal/platform/openlibrary"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

type Repository interface {
	GetAll(ctx context.Context) ([]Book, error)
	GetByID(ctx context.Context, olid string) (Book, error)
	GetByGenre(ctx context.Context, genreID int) ([]Book, error)
	GetByAuthor(ctx context.Context, pattern string) ([]Book, error)
	Create(ctx context.Context, b Book) (Book, error)
	Delete(ctx context.Context, olid string) error
	ListGenres(ctx context.Context) ([]Genre, error)
	TagGenre(ctx context.Context, olid string, name string) (Genre, error)
}

// Catalog is the remote book catalogue.
type Catalog interface {
	GetBookDetails(ctx context.Context, olid string) (*openlibrary.Work, error)
	GetAuthorDetails(ctx context.Context, authorID string) (string, error)
	GetBooksBySubject(ctx context.Context, subject string) (*openlibrary.SubjectResponse, error)
	Search(ctx context.Context, query string) (*openlibrary.SearchResponse, error)
}
