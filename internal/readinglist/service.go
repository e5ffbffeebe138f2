package readinglist

import (
	"context"
	"strings"

	"bookish/internal/book"
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

// GetAll returns every list of userID, private ones included.
func (s *Service) GetAll(ctx context.Context, userID int64) ([]List, error) {
	return s.repo.GetAll(ctx, userID)
}

// GetVisible returns the lists of userID that viewer may see. viewer is nil for anonymous
// requests.
func (s *Service) GetVisible(ctx context.Context, userID int64, viewer *crypto.Identity) ([]List, error) {
	lists, err := s.repo.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	visible := lists[:0]
	for _, l := range lists {
		if l.visibleTo(viewer) {
			visible = append(visible, l)
		}
	}
	return visible, nil
}

func (s *Service) Get(ctx context.Context, listID int64) (List, error) {
	return s.repo.Get(ctx, listID)
}

// GetForViewer hides private lists from everyone but their owner and admins.
func (s *Service) GetForViewer(ctx context.Context, listID int64, viewer *crypto.Identity) (List, error) {
	l, err := s.repo.Get(ctx, listID)
	if err != nil {
		return List{}, err
	}
	if !l.visibleTo(viewer) {
		return List{}, listNotFound(listID)
	}
	return l, nil
}

func (s *Service) Create(ctx context.Context, nl NewList) (List, error) {
	nl.ListName = strings.TrimSpace(nl.ListName)
	if nl.ListName == "" {
		return List{}, domainerrors.BadRequest("List name is required.")
	}
	return s.repo.Create(ctx, nl)
}

// owned loads a list and checks that actor may modify it.
func (s *Service) owned(ctx context.Context, listID int64, actor crypto.Identity) (List, error) {
	l, err := s.repo.Get(ctx, listID)
	if err != nil {
		return List{}, err
	}
	if err := l.authorize(actor); err != nil {
		return List{}, err
	}
	return l, nil
}

func (s *Service) Update(ctx context.Context, listID int64, patch Patch, actor crypto.Identity) (List, error) {
	if patch.Empty() {
		return List{}, domainerrors.BadRequest("No data to update")
	}
	if patch.ListName != nil {
		name := strings.TrimSpace(*patch.ListName)
		if name == "" {
			return List{}, domainerrors.BadRequest("List name is required.")
		}
		patch.ListName = &name
	}
	if _, err := s.owned(ctx, listID, actor); err != nil {
		return List{}, err
	}
	return s.repo.Update(ctx, listID, patch)
}

func (s *Service) Delete(ctx context.Context, listID int64, actor crypto.Identity) error {
	if _, err := s.owned(ctx, listID, actor); err != nil {
		return err
	}
	return s.repo.Delete(ctx, listID)
}

func (s *Service) GetBooksOnList(ctx context.Context, listID int64, viewer *crypto.Identity) ([]book.Book, error) {
	if _, err := s.GetForViewer(ctx, listID, viewer); err != nil {
		return nil, err
	}
	return s.repo.GetBooksOnList(ctx, listID)
}

// AddBook puts a book on the list, importing the book from Open Library first if it is not
// stored yet. It reports whether the book was newly added.
func (s *Service) AddBook(ctx context.Context, listID int64, bookID string, actor crypto.Identity) (bool, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return false, domainerrors.BadRequest("Book ID is required.")
	}
	if _, err := s.owned(ctx, listID, actor); err != nil {
		return false, err
	}
	if _, err := s.books.Get(ctx, bookID); err != nil {
		return false, err
	}
	return s.repo.AddBook(ctx, listID, bookID)
}

func (s *Service) RemoveBook(ctx context.Context, listID int64, bookID string, actor crypto.Identity) error {
	if _, err := s.owned(ctx, listID, actor); err != nil {
		return err
	}
	return s.repo.RemoveBook(ctx, listID, bookID)
}

// Reconcile repairs drifted book counts.
func (s *Service) Reconcile(ctx context.Context) ([]int64, error) {
	return s.repo.Reconcile(ctx)
}
