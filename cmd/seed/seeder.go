package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookish/internal/book"
	domainerrors "bookish/internal/errors"
	"bookish/internal/logger"
	"bookish/internal/platform/crypto"
	"bookish/internal/platform/openlibrary"
	"bookish/internal/readinglist"
	"bookish/internal/review"
	"bookish/internal/user"
)

const connectTimeout = 5 * time.Second

type userService interface {
	Register(ctx context.Context, in user.NewUser) (user.User, error)
	Get(ctx context.Context, username string) (user.User, error)
}

type bookService interface {
	GetBooksBySubject(ctx context.Context, subject string) (*openlibrary.SubjectResponse, error)
	Get(ctx context.Context, olid string) (book.Book, error)
}

type listService interface {
	Create(ctx context.Context, nl readinglist.NewList) (readinglist.List, error)
	AddBook(ctx context.Context, listID int64, bookID string, actor crypto.Identity) (bool, error)
}

type reviewService interface {
	Add(ctx context.Context, bookID string, actor crypto.Identity, text string, rating int) (review.Review, error)
}

var demoUsers = []user.NewUser{
	{Username: "admin", FirstName: "Ada", LastName: "Admin", Email: "admin@example.com", IsAdmin: true},
	{Username: "reader", FirstName: "Rita", LastName: "Reader", Email: "reader@example.com"},
	{Username: "critic", FirstName: "Carl", LastName: "Critic", Email: "critic@example.com"},
}

var reviewTexts = []string{
	"Could not put it down.",
	"Slow start, strong finish.",
	"Not for me, but well written.",
	"An instant favourite.",
	"Worth a second read.",
}

type report struct {
	Users   int
	Books   int
	Lists   int
	Reviews int
}

type seeder struct {
	users   userService
	books   bookService
	lists   listService
	reviews reviewService
	log     *logger.Logger
}

// run is idempotent for users and reviews: existing accounts are reused and repeated reviews
// are skipped. Each run adds one new list per user.
func (s *seeder) run(ctx context.Context, subjects []string, perSubject int, password string) (report, error) {
	var rep report

	accounts := make([]user.User, 0, len(demoUsers))
	for _, nu := range demoUsers {
		nu.Password = password
		u, err := s.ensureUser(ctx, nu)
		if err != nil {
			return rep, err
		}
		accounts = append(accounts, u)
	}
	rep.Users = len(accounts)

	olids, err := s.importBooks(ctx, subjects, perSubject)
	if err != nil {
		return rep, err
	}
	rep.Books = len(olids)
	if len(olids) == 0 {
		s.log.Warn("no books imported, skipping lists and reviews")
		return rep, nil
	}

	for i, u := range accounts {
		actor := crypto.Identity{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}

		l, err := s.lists.Create(ctx, readinglist.NewList{
			UserID:    u.ID,
			ListName:  fmt.Sprintf("%s's picks", u.FirstName),
			IsPrivate: i%2 == 1,
		})
		if err != nil {
			return rep, fmt.Errorf("create list for %s: %w", u.Username, err)
		}
		rep.Lists++

		for j := i % 2; j < len(olids); j += 2 {
			if _, err := s.lists.AddBook(ctx, l.ID, olids[j], actor); err != nil {
				return rep, fmt.Errorf("add %s to list %d: %w", olids[j], l.ID, err)
			}
		}

		for j := 0; j < len(olids) && j < 3; j++ {
			olid := olids[(i+j)%len(olids)]
			rating := 1 + (i+2*j)%5
			_, err := s.reviews.Add(ctx, olid, actor, reviewTexts[(i+j)%len(reviewTexts)], rating)
			if errors.Is(err, domainerrors.ErrDuplicate) {
				continue
			}
			if err != nil {
				return rep, fmt.Errorf("review %s by %s: %w", olid, u.Username, err)
			}
			rep.Reviews++
		}
	}
	return rep, nil
}

func (s *seeder) ensureUser(ctx context.Context, nu user.NewUser) (user.User, error) {
	u, err := s.users.Register(ctx, nu)
	if err == nil {
		s.log.Info("created user", "username", u.Username)
		return u, nil
	}
	if !errors.Is(err, domainerrors.ErrDuplicate) {
		return user.User{}, fmt.Errorf("register %s: %w", nu.Username, err)
	}
	return s.users.Get(ctx, nu.Username)
}

// importBooks stores up to perSubject editions of each subject and returns their ids. Books
// Open Library cannot resolve are logged and skipped.
func (s *seeder) importBooks(ctx context.Context, subjects []string, perSubject int) ([]string, error) {
	seen := make(map[string]bool)
	var olids []string
	for _, subject := range subjects {
		res, err := s.books.GetBooksBySubject(ctx, subject)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				s.log.Warn("subject not found", "subject", subject)
				continue
			}
			return nil, fmt.Errorf("subject %s: %w", subject, err)
		}

		imported := 0
		for _, w := range res.Works {
			if imported == perSubject {
				break
			}
			olid := w.CoverEditionKey
			if olid == "" || seen[olid] {
				continue
			}
			if _, err := s.books.Get(ctx, olid); err != nil {
				s.log.WithError(err).Warn("skipping book", "olid", olid, "subject", subject)
				continue
			}
			seen[olid] = true
			olids = append(olids, olid)
			imported++
		}
		s.log.Info("imported subject", "subject", subject, "books", imported)
	}
	return olids, nil
}
