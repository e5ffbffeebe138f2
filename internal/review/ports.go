package review

import (
	"context"

	"bookish/internal/book"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=review

type Repository interface {
	AddReview(ctx context.Context, nr NewReview) (Review, error)
	UpdateReview(ctx context.Context, reviewID int64, text string, rating int) (Review, error)
	DeleteReview(ctx context.Context, reviewID int64) error
	GetAllByBook(ctx context.Context, bookID string) ([]Detail, error)
	GetReview(ctx context.Context, bookID string, reviewID int64) (*Detail, error)
	AvgRating(ctx context.Context, bookID string) (*string, error)
	GetByID(ctx context.Context, reviewID int64) (Review, error)
}

// BookResolver returns a stored book, importing it first when needed.
type BookResolver interface {
	Get(ctx context.Context, olid string) (book.Book, error)
}
