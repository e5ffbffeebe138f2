package readinglist

import (
	"context"

	"bookish/internal/book"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=readinglist

type Repository interface {
	GetAll(ctx context.Context, userID int64) ([]List, error)
	Get(ctx context.Context, listID int64) (List, error)
	Create(ctx context.Context, nl NewList) (List, error)
	Update(ctx context.Context, listID int64, patch Patch) (List, error)
	Delete(ctx context.Context, listID int64) error
	GetBooksOnList(ctx context.Context, listID int64) ([]book.Book, error)
	AddBook(ctx context.Context, listID int64, bookID string) (bool, error)
	RemoveBook(ctx context.Context, listID int64, bookID string) error
	Reconcile(ctx context.Context) ([]int64, error)
}

// BookResolver returns a stored book, importing it first when needed.
type BookResolver interface {
	Get(ctx context.Context, olid string) (book.Book, error)
}
