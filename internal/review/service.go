package review

import (
	"context"
	"strings"

	domainerrors "bookish/internal/errors"
	"bookish/internal/platform/crypto"
)

type Service struct {
	repo  Repository
	books BookResolver
}

func NewService(repo Repository, books BookResolver) *Service {
	return &Service{repo: repo, books: books}
}

// Summary returns the book's reviews with their average rating.
func (s *Service) Summary(ctx context.Context, bookID string) (Summary, error) {
	reviews, err := s.repo.GetAllByBook(ctx, bookID)
	if err != nil {
		return Summary{}, err
	}
	avg, err := s.repo.AvgRating(ctx, bookID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Reviews: reviews, AvgRating: avg}, nil
}

func (s *Service) Get(ctx context.Context, bookID string, reviewID int64) (Detail, error) {
	d, err := s.repo.GetReview(ctx, bookID, reviewID)
	if err != nil {
		return Detail{}, err
	}
	if d == nil {
		return Detail{}, reviewNotFound(reviewID)
	}
	return *d, nil
}

func normalize(text string, rating int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domainerrors.BadRequest("Review text is required.")
	}
	if err := checkRating(rating); err != nil {
		return "", err
	}
	return text, nil
}

// Add posts actor's review of bookID, importing the book from Open Library when it is not
// stored yet.
func (s *Service) Add(ctx context.Context, bookID string, actor crypto.Identity, text string, rating int) (Review, error) {
	text, err := normalize(text, rating)
	if err != nil {
		return Review{}, err
	}
	if _, err := s.books.Get(ctx, bookID); err != nil {
		return Review{}, err
	}
	return s.repo.AddReview(ctx, NewReview{BookID: bookID, UserID: actor.UserID, ReviewText: text, Rating: rating})
}

// owned loads a review of bookID and checks that actor wrote it or is an admin.
func (s *Service) owned(ctx context.Context, bookID string, reviewID int64, actor crypto.Identity) error {
	rv, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if rv.BookID != bookID {
		return reviewNotFound(reviewID)
	}
	return rv.authorize(actor)
}

func (s *Service) Update(ctx context.Context, bookID string, reviewID int64, actor crypto.Identity, text string, rating int) (Review, error) {
	text, err := normalize(text, rating)
	if err != nil {
		return Review{}, err
	}
	if err := s.owned(ctx, bookID, reviewID, actor); err != nil {
		return Review{}, err
	}
	return s.repo.UpdateReview(ctx, reviewID, text, rating)
}

func (s *Service) Delete(ctx context.Context, bookID string, reviewID int64, actor crypto.Identity) error {
	if err := s.owned(ctx, bookID, reviewID, actor); err != nil {
		return err
	}
	return s.repo.DeleteReview(ctx, reviewID)
}
