package book

import (
	"context"
	"testing"
	"time"

	domainerrors "bookish/internal/errors"
	"bookish/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepo_CreateGetDelete(t *testing.T) {
	pool := testutil.NewTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()
	olid := testutil.Unique("OL")

	_, err := repo.GetByID(ctx, olid)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	created, err := repo.Create(ctx, withDefaults(Book{OLID: olid, Title: "Dune", Author: "Frank Herbert"}))
	require.NoError(t, err)
	assert.Equal(t, DefaultCoverURL, created.CoverURL)

	updated, err := repo.Create(ctx, withDefaults(Book{OLID: olid, Title: "Dune Messiah", Author: "Frank Herbert"}))
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)

	got, err := repo.GetByID(ctx, olid)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, repo.Delete(ctx, olid))
	assert.ErrorIs(t, repo.Delete(ctx, olid), domainerrors.ErrNotFound)
}

func TestPostgresRepo_Delete_DecrementsListCounts(t *testing.T) {
	pool := testutil.NewTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	olid := testutil.Unique("OL")
	testutil.InsertBook(t, pool, olid, "Held", "Someone")
	userID := testutil.InsertUser(t, pool, testutil.Unique("u"))

	var listID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO lists (user_id, list_name, book_count) VALUES ($1, 'Shelf', 1) RETURNING id`, userID).Scan(&listID))
	_, err := pool.Exec(ctx, `INSERT INTO list_books (list_id, book_id) VALUES ($1, $2)`, listID, olid)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, olid))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT book_count FROM lists WHERE id = $1`, listID).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestPostgresRepo_Delete_WaitsForConcurrentListAdd(t *testing.T) {
	pool := testutil.NewTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()

	olid := testutil.Unique("OL")
	testutil.InsertBook(t, pool, olid, "Contested", "Someone")
	userID := testutil.InsertUser(t, pool, testutil.Unique("u"))

	var listID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO lists (user_id, list_name) VALUES ($1, 'Shelf') RETURNING id`, userID).Scan(&listID))

	// An in-flight add holds a key-share lock on the book until it commits.
	adder, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer adder.Rollback(ctx)
	_, err = adder.Exec(ctx, `INSERT INTO list_books (list_id, book_id) VALUES ($1, $2)`, listID, olid)
	require.NoError(t, err)
	_, err = adder.Exec(ctx, `UPDATE lists SET book_count = book_count + 1 WHERE id = $1`, listID)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- repo.Delete(ctx, olid) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, adder.Commit(ctx))
	require.NoError(t, <-done)

	var count, members int
	require.NoError(t, pool.QueryRow(ctx, `SELECT book_count FROM lists WHERE id = $1`, listID).Scan(&count))
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM list_books WHERE list_id = $1`, listID).Scan(&members))
	assert.Equal(t, 0, members)
	assert.Equal(t, members, count)
}

func TestPostgresRepo_GetByAuthor(t *testing.T) {
	pool := testutil.NewTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	author := testutil.Unique("Author")
	testutil.InsertBook(t, pool, testutil.Unique("OL"), "B", author)
	testutil.InsertBook(t, pool, testutil.Unique("OL"), "A", author)

	books, err := repo.GetByAuthor(context.Background(), author[1:])
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "A", books[0].Title)
}

func TestPostgresRepo_Genres(t *testing.T) {
	pool := testutil.NewTestDB(t)
	repo := NewPostgresRepo(pool, 5*time.Second)
	ctx := context.Background()
	olid := testutil.Unique("OL")
	testutil.InsertBook(t, pool, olid, "Tagged", "A")
	name := testutil.Unique("genre")

	g, err := repo.TagGenre(ctx, olid, name)
	require.NoError(t, err)
	again, err := repo.TagGenre(ctx, olid, name)
	require.NoError(t, err)
	assert.Equal(t, g.ID, again.ID)

	books, err := repo.GetByGenre(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, olid, books[0].OLID)

	_, err = repo.TagGenre(ctx, testutil.Unique("OL"), name)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	genres, err := repo.ListGenres(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, genres)
}
