package book

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainerrors "bookish/internal/errors"
	"bookish/internal/platform/openlibrary"
)

type Service struct {
	repo      Repository
	catalog   Catalog
	coversURL string
}

func NewService(repo Repository, catalog Catalog, coversURL string) *Service {
	if coversURL == "" {
		coversURL = openlibrary.DefaultCoversURL
	}
	return &Service{repo: repo, catalog: catalog, coversURL: strings.TrimRight(coversURL, "/")}
}

// catalogError maps a failed Open Library call onto the domain taxonomy.
func catalogError(err error, notFound string) error {
	switch {
	case openlibrary.IsNotFound(err):
		return domainerrors.NotFound(notFound).WithCause(err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return domainerrors.Upstream("Open Library request failed", err)
	}
}

// Get returns the stored book, fetching and storing it from Open Library on first access.
func (s *Service) Get(ctx context.Context, olid string) (Book, error) {
	b, err := s.repo.GetByID(ctx, olid)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return Book{}, err
	}

	work, err := s.catalog.GetBookDetails(ctx, olid)
	if err != nil {
		return Book{}, catalogError(err, fmt.Sprintf("Book with ID %s not found", olid))
	}

	author, err := s.authorNames(ctx, work.Authors)
	if err != nil {
		return Book{}, err
	}

	title := strings.TrimSpace(work.Title)
	if title == "" {
		title = olid
	}

	return s.repo.Create(ctx, Book{
		OLID:        olid,
		Title:       title,
		Author:      author,
		CoverURL:    s.coverURL(work.Covers),
		Description: FormatDescription(string(work.Description)),
	})
}

func (s *Service) authorNames(ctx context.Context, refs []openlibrary.AuthorRef) (string, error) {
	if len(refs) == 0 {
		return UnknownAuthor, nil
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		name, err := s.catalog.GetAuthorDetails(ctx, ref.ID())
		if err != nil && !openlibrary.IsNotFound(err) {
			return "", catalogError(err, "Author not found")
		}
		if strings.TrimSpace(name) == "" {
			name = UnknownAuthor
		}
		names = append(names, name)
	}
	return strings.Join(names, ", "), nil
}

func (s *Service) coverURL(covers []int) string {
	if len(covers) == 0 || covers[0] <= 0 {
		return DefaultCoverURL
	}
	return fmt.Sprintf("%s/b/id/%d-L.jpg", s.coversURL, covers[0])
}

func (s *Service) Search(ctx context.Context, query string) (*openlibrary.SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domainerrors.BadRequest("Search query is required")
	}
	res, err := s.catalog.Search(ctx, query)
	if err != nil {
		return nil, catalogError(err, "No results found.")
	}
	return res, nil
}

func (s *Service) GetBooksBySubject(ctx context.Context, subject string) (*openlibrary.SubjectResponse, error) {
	res, err := s.catalog.GetBooksBySubject(ctx, subject)
	if err != nil {
		return nil, catalogError(err, fmt.Sprintf("Subject %s not found", subject))
	}
	return res, nil
}

// GetAuthor returns the display name of an Open Library author.
func (s *Service) GetAuthor(ctx context.Context, authorID string) (string, error) {
	name, err := s.catalog.GetAuthorDetails(ctx, authorID)
	if err != nil {
		return "", catalogError(err, fmt.Sprintf("Author %s not found", authorID))
	}
	return name, nil
}

func (s *Service) GetAll(ctx context.Context) ([]Book, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) GetByGenre(ctx context.Context, genreID int) ([]Book, error) {
	return s.repo.GetByGenre(ctx, genreID)
}

func (s *Service) GetByAuthor(ctx context.Context, pattern string) ([]Book, error) {
	return s.repo.GetByAuthor(ctx, pattern)
}

func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	return s.repo.Create(ctx, withDefaults(b))
}

func (s *Service) Delete(ctx context.Context, olid string) error {
	return s.repo.Delete(ctx, olid)
}

func (s *Service) ListGenres(ctx context.Context) ([]Genre, error) {
	return s.repo.ListGenres(ctx)
}

func (s *Service) TagGenre(ctx context.Context, olid, name string) (Genre, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Genre{}, domainerrors.BadRequest("Genre name is required")
	}
	return s.repo.TagGenre(ctx, olid, name)
}
