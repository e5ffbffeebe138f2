package review

import (
	"context"
	"testing"

	"bookish/internal/book"
	domainerrors "bookish/internal/errors"
	"bookish/internal/platform/crypto"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	author   = crypto.Identity{UserID: 1, Username: "u1"}
	stranger = crypto.Identity{UserID: 2, Username: "u2"}
	admin    = crypto.Identity{UserID: 99, Username: "admin", IsAdmin: true}
)

func newTestService(t *testing.T) (*Service, *MockRepository, *MockBookResolver) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	books := NewMockBookResolver(ctrl)
	return NewService(repo, books), repo, books
}

func strptr(s string) *string { return &s }

func TestService_Summary(t *testing.T) {
	service, repo, _ := newTestService(t)
	reviews := []Detail{
		{Review: Review{ID: 2, BookID: "OL1", Rating: 2}, Username: "u2"},
		{Review: Review{ID: 1, BookID: "OL1", Rating: 5}, Username: "u1"},
	}
	repo.EXPECT().GetAllByBook(gomock.Any(), "OL1").Return(reviews, nil)
	repo.EXPECT().AvgRating(gomock.Any(), "OL1").Return(strptr("3.50"), nil)

	summary, err := service.Summary(context.Background(), "OL1")
	require.NoError(t, err)
	assert.Len(t, summary.Reviews, 2)
	require.NotNil(t, summary.AvgRating)
	assert.Equal(t, "3.50", *summary.AvgRating)
}

func TestService_Summary_NoReviews(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.EXPECT().GetAllByBook(gomock.Any(), "OL1").Return([]Detail{}, nil)
	repo.EXPECT().AvgRating(gomock.Any(), "OL1").Return(nil, nil)

	summary, err := service.Summary(context.Background(), "OL1")
	require.NoError(t, err)
	assert.Empty(t, summary.Reviews)
	assert.Nil(t, summary.AvgRating)
}

func TestService_Get_Absent(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.EXPECT().GetReview(gomock.Any(), "OL1", int64(5)).Return(nil, nil)

	_, err := service.Get(context.Background(), "OL1", 5)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestService_Add(t *testing.T) {
	t.Run("rating out of range", func(t *testing.T) {
		service, _, _ := newTestService(t)
		for _, rating := range []int{0, 6, -1} {
			_, err := service.Add(context.Background(), "OL1", author, "Fine", rating)
			assert.ErrorIs(t, err, domainerrors.ErrBadRequest)
		}
	})

	t.Run("blank text", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.Add(context.Background(), "OL1", author, "  ", 3)
		assert.ErrorIs(t, err, domainerrors.ErrBadRequest)
	})

	t.Run("resolves the book first", func(t *testing.T) {
		service, repo, books := newTestService(t)
		want := NewReview{BookID: "OL1", UserID: author.UserID, ReviewText: "Great", Rating: 5}
		gomock.InOrder(
			books.EXPECT().Get(gomock.Any(), "OL1").Return(book.Book{OLID: "OL1"}, nil),
			repo.EXPECT().AddReview(gomock.Any(), want).Return(Review{ID: 1, BookID: "OL1", UserID: 1, ReviewText: "Great", Rating: 5}, nil),
		)

		rv, err := service.Add(context.Background(), "OL1", author, " Great ", 5)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rv.ID)
	})

	t.Run("unknown book", func(t *testing.T) {
		service, _, books := newTestService(t)
		books.EXPECT().Get(gomock.Any(), "nope").Return(book.Book{}, domainerrors.NotFound("Book with ID nope not found"))

		_, err := service.Add(context.Background(), "nope", author, "Hm", 3)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})

	t.Run("second review", func(t *testing.T) {
		service, repo, books := newTestService(t)
		books.EXPECT().Get(gomock.Any(), "OL1").Return(book.Book{OLID: "OL1"}, nil)
		repo.EXPECT().AddReview(gomock.Any(), gomock.Any()).Return(Review{}, errAlreadyReviewed)

		_, err := service.Add(context.Background(), "OL1", author, "Again", 4)
		assert.ErrorIs(t, err, domainerrors.ErrDuplicate)
	})
}

func TestService_Update_Ownership(t *testing.T) {
	existing := Review{ID: 7, BookID: "OL1", UserID: author.UserID, ReviewText: "Old", Rating: 2}

	t.Run("author", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), int64(7)).Return(existing, nil)
		repo.EXPECT().UpdateReview(gomock.Any(), int64(7), "New", 4).Return(Review{ID: 7, ReviewText: "New", Rating: 4}, nil)

		rv, err := service.Update(context.Background(), "OL1", 7, author, "New", 4)
		require.NoError(t, err)
		assert.Equal(t, 4, rv.Rating)
	})

	t.Run("someone else", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), int64(7)).Return(existing, nil)

		_, err := service.Update(context.Background(), "OL1", 7, stranger, "New", 4)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	})

	t.Run("other book", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), int64(7)).Return(existing, nil)

		_, err := service.Update(context.Background(), "OL2", 7, author, "New", 4)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	existing := Review{ID: 7, BookID: "OL1", UserID: author.UserID}

	t.Run("admin", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), int64(7)).Return(existing, nil)
		repo.EXPECT().DeleteReview(gomock.Any(), int64(7)).Return(nil)

		assert.NoError(t, service.Delete(context.Background(), "OL1", 7, admin))
	})

	t.Run("missing", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		repo.EXPECT().GetByID(gomock.Any(), int64(8)).Return(Review{}, reviewNotFound(8))

		err := service.Delete(context.Background(), "OL1", 8, author)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})
}
