package book

import (
	"context"
	"net/http"
	"testing"

	domainerrors "bookish/internal/errors"
	"bookish/internal/platform/openlibrary"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *MockRepository, *MockCatalog) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	catalog := NewMockCatalog(ctrl)
	return NewService(repo, catalog, "https://covers.example.org"), repo, catalog
}

func notStored(olid string) error {
	return domainerrors.NotFoundf("Book with ID %s not found", olid)
}

func TestService_Get_LocalHit(t *testing.T) {
	service, repo, _ := newTestService(t)
	stored := Book{OLID: "OL1W", Title: "Dune", Author: "Frank Herbert"}
	repo.EXPECT().GetByID(gomock.Any(), "OL1W").Return(stored, nil)

	got, err := service.Get(context.Background(), "OL1W")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestService_Get_LazyCreation(t *testing.T) {
	service, repo, catalog := newTestService(t)

	repo.EXPECT().GetByID(gomock.Any(), "OL1W").Return(Book{}, notStored("OL1W"))
	catalog.EXPECT().GetBookDetails(gomock.Any(), "OL1W").Return(&openlibrary.Work{
		Title:       "Good Omens",
		Authors:     []openlibrary.AuthorRef{{Key: "/authors/OL1A"}, {Key: "/authors/OL2A"}},
		Covers:      []int{42},
		Description: "Angel.\r\n\r\nDemon.",
	}, nil)
	catalog.EXPECT().GetAuthorDetails(gomock.Any(), "OL1A").Return("Terry Pratchett", nil)
	catalog.EXPECT().GetAuthorDetails(gomock.Any(), "OL2A").Return("Neil Gaiman", nil)
	repo.EXPECT().Create(gomock.Any(), Book{
		OLID:        "OL1W",
		Title:       "Good Omens",
		Author:      "Terry Pratchett, Neil Gaiman",
		CoverURL:    "https://covers.example.org/b/id/42-L.jpg",
		Description: "<p>Angel.</p><p>Demon.</p>",
	}).DoAndReturn(func(_ context.Context, b Book) (Book, error) { return b, nil })

	got, err := service.Get(context.Background(), "OL1W")
	require.NoError(t, err)
	assert.Equal(t, "Terry Pratchett, Neil Gaiman", got.Author)
}

func TestService_Get_LazyCreationFallbacks(t *testing.T) {
	service, repo, catalog := newTestService(t)

	repo.EXPECT().GetByID(gomock.Any(), "OL2W").Return(Book{}, notStored("OL2W"))
	catalog.EXPECT().GetBookDetails(gomock.Any(), "OL2W").Return(&openlibrary.Work{Title: "Anon"}, nil)
	repo.EXPECT().Create(gomock.Any(), Book{
		OLID:        "OL2W",
		Title:       "Anon",
		Author:      UnknownAuthor,
		CoverURL:    DefaultCoverURL,
		Description: NoDescription,
	}).DoAndReturn(func(_ context.Context, b Book) (Book, error) { return b, nil })

	_, err := service.Get(context.Background(), "OL2W")
	require.NoError(t, err)
}

func TestService_Get_MissingAuthorRecord(t *testing.T) {
	service, repo, catalog := newTestService(t)

	repo.EXPECT().GetByID(gomock.Any(), "OL3W").Return(Book{}, notStored("OL3W"))
	catalog.EXPECT().GetBookDetails(gomock.Any(), "OL3W").Return(&openlibrary.Work{
		Title:   "Orphan",
		Authors: []openlibrary.AuthorRef{{Key: "/authors/OL404A"}},
	}, nil)
	catalog.EXPECT().GetAuthorDetails(gomock.Any(), "OL404A").Return("", &openlibrary.StatusError{StatusCode: http.StatusNotFound})
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b Book) (Book, error) {
		assert.Equal(t, UnknownAuthor, b.Author)
		return b, nil
	})

	_, err := service.Get(context.Background(), "OL3W")
	require.NoError(t, err)
}

func TestService_Get_UpstreamErrors(t *testing.T) {
	t.Run("unknown olid", func(t *testing.T) {
		service, repo, catalog := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "bad").Return(Book{}, notStored("bad"))
		catalog.EXPECT().GetBookDetails(gomock.Any(), "bad").Return(nil, &openlibrary.StatusError{StatusCode: http.StatusNotFound})

		_, err := service.Get(context.Background(), "bad")
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})

	t.Run("open library down", func(t *testing.T) {
		service, repo, catalog := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "OL1W").Return(Book{}, notStored("OL1W"))
		catalog.EXPECT().GetBookDetails(gomock.Any(), "OL1W").Return(nil, &openlibrary.StatusError{StatusCode: http.StatusBadGateway})

		_, err := service.Get(context.Background(), "OL1W")
		assert.ErrorIs(t, err, domainerrors.ErrUpstream)
	})

	t.Run("database failure skips catalog", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), "OL1W").Return(Book{}, context.DeadlineExceeded)

		_, err := service.Get(context.Background(), "OL1W")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestService_Search(t *testing.T) {
	service, _, catalog := newTestService(t)

	_, err := service.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, domainerrors.ErrBadRequest)

	catalog.EXPECT().Search(gomock.Any(), "dune").Return(&openlibrary.SearchResponse{NumFound: 3}, nil)
	res, err := service.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, 3, res.NumFound)
}

func TestService_TagGenre_NormalisesName(t *testing.T) {
	service, repo, _ := newTestService(t)

	_, err := service.TagGenre(context.Background(), "OL1W", " ")
	assert.ErrorIs(t, err, domainerrors.ErrBadRequest)

	repo.EXPECT().TagGenre(gomock.Any(), "OL1W", "science fiction").Return(Genre{ID: 1, Name: "science fiction"}, nil)
	g, err := service.TagGenre(context.Background(), "OL1W", " Science Fiction ")
	require.NoError(t, err)
	assert.Equal(t, 1, g.ID)
}
