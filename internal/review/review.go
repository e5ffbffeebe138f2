// Package review stores users' reviews and star ratings of books.
package review

import (
	"time"

	domainerrors "bookish/internal/errors"
	"bookish/internal/platform/crypto"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         int64     `json:"id"`
	BookID     string    `json:"bookId"`
	UserID     int64     `json:"userId"`
	ReviewText string    `json:"reviewText"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Detail is a review joined with its author's username.
type Detail struct {
	Review
	Username string `json:"username"`
}

type NewReview struct {
	BookID     string
	UserID     int64
	ReviewText string
	Rating     int
}

// Summary is every review of a book plus their average rating. AvgRating is nil when the
// book has no reviews.
type Summary struct {
	Reviews   []Detail
	AvgRating *string
}

func (r Review) authorize(actor crypto.Identity) error {
	if actor.IsAdmin || actor.UserID == r.UserID {
		return nil
	}
	return domainerrors.Forbidden("You can only modify your own reviews")
}

func reviewNotFound(reviewID int64) error {
	return domainerrors.NotFoundf("Review with ID %d not found", reviewID)
}

func checkRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return domainerrors.BadRequestf("Rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}
