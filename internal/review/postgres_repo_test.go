package review

import (
	"context"
	"testing"
	"time"

	domainerrors "bookish/internal/errors"
	"bookish/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepo_AvgRating(t *testing.T) {
	pool := testutil.NewTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	olid := testutil.Unique("OL")
	testutil.InsertBook(t, pool, olid, "Rated", "A")

	avg, err := repo.AvgRating(ctx, olid)
	require.NoError(t, err)
	assert.Nil(t, avg)

	for _, rating := range []int{5, 2} {
		userID := testutil.InsertUser(t, pool, testutil.Unique("rater"))
		_, err := repo.AddReview(ctx, NewReview{BookID: olid, UserID: userID, ReviewText: "ok", Rating: rating})
		require.NoError(t, err)
	}

	avg, err = repo.AvgRating(ctx, olid)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, "3.50", *avg)
}

func TestPostgresRepo_AddReview(t *testing.T) {
	pool := testutil.NewTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	olid := testutil.Unique("OL")
	testutil.InsertBook(t, pool, olid, "Once", "A")
	userID := testutil.InsertUser(t, pool, testutil.Unique("reviewer"))

	rv, err := repo.AddReview(ctx, NewReview{BookID: olid, UserID: userID, ReviewText: "First", Rating: 4})
	require.NoError(t, err)
	assert.NotZero(t, rv.ID)

	_, err = repo.AddReview(ctx, NewReview{BookID: olid, UserID: userID, ReviewText: "Second", Rating: 1})
	assert.ErrorIs(t, err, domainerrors.ErrDuplicate)

	_, err = repo.AddReview(ctx, NewReview{BookID: testutil.Unique("missing"), UserID: userID, ReviewText: "x", Rating: 3})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	details, err := repo.GetAllByBook(ctx, olid)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "First", details[0].ReviewText)
	assert.NotEmpty(t, details[0].Username)
}

func TestPostgresRepo_GetUpdateDelete(t *testing.T) {
	pool := testutil.NewTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	olid := testutil.Unique("OL")
	testutil.InsertBook(t, pool, olid, "Edited", "A")
	username := testutil.Unique("editor")
	userID := testutil.InsertUser(t, pool, username)

	rv, err := repo.AddReview(ctx, NewReview{BookID: olid, UserID: userID, ReviewText: "Draft", Rating: 2})
	require.NoError(t, err)

	d, err := repo.GetReview(ctx, olid, rv.ID)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, username, d.Username)

	absent, err := repo.GetReview(ctx, testutil.Unique("other"), rv.ID)
	require.NoError(t, err)
	assert.Nil(t, absent)

	updated, err := repo.UpdateReview(ctx, rv.ID, "Final", 5)
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.ReviewText)
	assert.Equal(t, 5, updated.Rating)

	_, err = repo.UpdateReview(ctx, 987654321, "x", 3)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	require.NoError(t, repo.DeleteReview(ctx, rv.ID))
	assert.ErrorIs(t, repo.DeleteReview(ctx, rv.ID), domainerrors.ErrNotFound)

	_, err = repo.GetByID(ctx, rv.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
