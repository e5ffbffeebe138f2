package readinglist

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
	owner    = crypto.Identity{UserID: 1, Username: "u1"}
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

func TestService_Create_RequiresName(t *testing.T) {
	service, repo, _ := newTestService(t)

	_, err := service.Create(context.Background(), NewList{UserID: 1, ListName: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrBadRequest)

	repo.EXPECT().Create(gomock.Any(), NewList{UserID: 1, ListName: "My List"}).Return(List{ID: 7, UserID: 1, ListName: "My List"}, nil)
	l, err := service.Create(context.Background(), NewList{UserID: 1, ListName: " My List "})
	require.NoError(t, err)
	assert.Equal(t, 0, l.BookCount)
}

func TestService_GetVisible_HidesPrivateLists(t *testing.T) {
	service, repo, _ := newTestService(t)
	lists := func() []List {
		return []List{
			{ID: 1, UserID: 1, ListName: "Public"},
			{ID: 2, UserID: 1, ListName: "Secret", IsPrivate: true},
		}
	}

	repo.EXPECT().GetAll(gomock.Any(), int64(1)).Return(lists(), nil)
	anon, err := service.GetVisible(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, "Public", anon[0].ListName)

	repo.EXPECT().GetAll(gomock.Any(), int64(1)).Return(lists(), nil)
	other, err := service.GetVisible(context.Background(), 1, &stranger)
	require.NoError(t, err)
	assert.Len(t, other, 1)

	repo.EXPECT().GetAll(gomock.Any(), int64(1)).Return(lists(), nil)
	own, err := service.GetVisible(context.Background(), 1, &owner)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	repo.EXPECT().GetAll(gomock.Any(), int64(1)).Return(lists(), nil)
	adm, err := service.GetVisible(context.Background(), 1, &admin)
	require.NoError(t, err)
	assert.Len(t, adm, 2)
}

func TestService_GetForViewer_PrivateIsNotFound(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.EXPECT().Get(gomock.Any(), int64(2)).Return(List{ID: 2, UserID: 1, IsPrivate: true}, nil)

	_, err := service.GetForViewer(context.Background(), 2, &stranger)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestService_Update(t *testing.T) {
	name := "X"

	t.Run("missing list", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		repo.EXPECT().Get(gomock.Any(), int64(404)).Return(List{}, listNotFound(404))

		_, err := service.Update(context.Background(), 404, Patch{ListName: &name}, owner)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})

	t.Run("not owner", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		repo.EXPECT().Get(gomock.Any(), int64(1)).Return(List{ID: 1, UserID: 1}, nil)

		_, err := service.Update(context.Background(), 1, Patch{ListName: &name}, stranger)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	})

	t.Run("empty patch", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.Update(context.Background(), 1, Patch{}, owner)
		assert.ErrorIs(t, err, domainerrors.ErrBadRequest)
	})

	t.Run("admin may edit", func(t *testing.T) {
		service, repo, _ := newTestService(t)
		repo.EXPECT().Get(gomock.Any(), int64(1)).Return(List{ID: 1, UserID: 1}, nil)
		repo.EXPECT().Update(gomock.Any(), int64(1), Patch{ListName: &name}).Return(List{ID: 1, ListName: "X"}, nil)

		l, err := service.Update(context.Background(), 1, Patch{ListName: &name}, admin)
		require.NoError(t, err)
		assert.Equal(t, "X", l.ListName)
	})
}

func TestService_AddBook_ResolvesBookFirst(t *testing.T) {
	service, repo, books := newTestService(t)

	gomock.InOrder(
		repo.EXPECT().Get(gomock.Any(), int64(1)).Return(List{ID: 1, UserID: 1}, nil),
		books.EXPECT().Get(gomock.Any(), "OL123").Return(book.Book{OLID: "OL123"}, nil),
		repo.EXPECT().AddBook(gomock.Any(), int64(1), "OL123").Return(true, nil),
	)

	added, err := service.AddBook(context.Background(), 1, "OL123", owner)
	require.NoError(t, err)
	assert.True(t, added)
}

func TestService_AddBook_UnknownBook(t *testing.T) {
	service, repo, books := newTestService(t)

	repo.EXPECT().Get(gomock.Any(), int64(1)).Return(List{ID: 1, UserID: 1}, nil)
	books.EXPECT().Get(gomock.Any(), "nope").Return(book.Book{}, domainerrors.NotFound("Book with ID nope not found"))

	_, err := service.AddBook(context.Background(), 1, "nope", owner)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestService_AddBook_Forbidden(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.EXPECT().Get(gomock.Any(), int64(1)).Return(List{ID: 1, UserID: 1}, nil)

	_, err := service.AddBook(context.Background(), 1, "OL123", stranger)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestService_RemoveBook_NotMember(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.EXPECT().Get(gomock.Any(), int64(1)).Return(List{ID: 1, UserID: 1}, nil)
	repo.EXPECT().RemoveBook(gomock.Any(), int64(1), "OL9").Return(domainerrors.NotFound("Book not found in the list"))

	err := service.RemoveBook(context.Background(), 1, "OL9", owner)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
