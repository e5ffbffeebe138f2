package book

import (
	"context"
	"errors"
	"strings"
	"time"

	domainerrors "bookish/internal/errors"
	"bookish/internal/platform/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const bookColumns = `olid, title, author, cover_url, description`

func collectBooks(rows pgx.Rows) ([]Book, error) {
	defer rows.Close()
	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.OLID, &b.Title, &b.Author, &b.CoverURL, &b.Description); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *PostgresRepo) GetAll(ctx context.Context) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, `SELECT `+bookColumns+` FROM books ORDER BY title ASC, author ASC`)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}

// GetByID returns a NOT_FOUND error when the book is not stored locally; the service uses
// that to fall back to Open Library.
func (r *PostgresRepo) GetByID(ctx context.Context, olid string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var b Book
	err := r.db.QueryRow(timeoutCtx, `SELECT `+bookColumns+` FROM books WHERE olid = $1`, olid).
		Scan(&b.OLID, &b.Title, &b.Author, &b.CoverURL, &b.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, domainerrors.NotFoundf("Book with ID %s not found", olid)
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) GetByGenre(ctx context.Context, genreID int) ([]Book, error) {
	const query = `
	SELECT b.olid, b.title, b.author, b.cover_url, b.description
	FROM books AS b
	JOIN book_genres AS bg ON b.olid = bg.book_id
	WHERE bg.genre_id = $1
	ORDER BY b.title ASC
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, genreID)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}

// GetByAuthor matches author case-insensitively. A pattern without a % wildcard matches as
// a substring.
func (r *PostgresRepo) GetByAuthor(ctx context.Context, pattern string) ([]Book, error) {
	if !strings.Contains(pattern, "%") {
		pattern = "%" + pattern + "%"
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, `SELECT `+bookColumns+` FROM books WHERE author ILIKE $1 ORDER BY title ASC`, pattern)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}

// Create upserts on olid and returns the stored row.
func (r *PostgresRepo) Create(ctx context.Context, b Book) (Book, error) {
	const query = `
	INSERT INTO books (olid, title, author, cover_url, description)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (olid) DO UPDATE SET
		title = EXCLUDED.title,
		author = EXCLUDED.author,
		cover_url = EXCLUDED.cover_url,
		description = EXCLUDED.description
	RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out Book
	err := r.db.QueryRow(timeoutCtx, query, b.OLID, b.Title, b.Author, b.CoverURL, b.Description).
		Scan(&out.OLID, &out.Title, &out.Author, &out.CoverURL, &out.Description)
	return out, err
}

// Delete removes a book. Lists holding it lose one from their count before the membership
// rows cascade away. The book row is locked first so no list_books row can be added for it
// between the decrement and the delete.
func (r *PostgresRepo) Delete(ctx context.Context, olid string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	var locked int
	if err := tx.QueryRow(timeoutCtx, `SELECT 1 FROM books WHERE olid = $1 FOR UPDATE`, olid).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainerrors.NotFoundf("No book found with ID: %s", olid)
		}
		return err
	}

	const decrement = `
	UPDATE lists SET book_count = book_count - 1
	WHERE book_count > 0
	  AND id IN (SELECT list_id FROM list_books WHERE book_id = $1)
	`
	if _, err := tx.Exec(timeoutCtx, decrement, olid); err != nil {
		return err
	}

	if _, err := tx.Exec(timeoutCtx, `DELETE FROM books WHERE olid = $1`, olid); err != nil {
		return err
	}
	return tx.Commit(timeoutCtx)
}

func (r *PostgresRepo) ListGenres(ctx context.Context) ([]Genre, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, `SELECT id, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := []Genre{}
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// TagGenre attaches a genre to a book, creating the genre on first use. Tagging twice is a
// no-op.
func (r *PostgresRepo) TagGenre(ctx context.Context, olid string, name string) (Genre, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return Genre{}, err
	}
	defer tx.Rollback(timeoutCtx)

	var g Genre
	err = tx.QueryRow(timeoutCtx, `
	INSERT INTO genres (name) VALUES ($1)
	ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
	RETURNING id, name
	`, name).Scan(&g.ID, &g.Name)
	if err != nil {
		return Genre{}, err
	}

	_, err = tx.Exec(timeoutCtx, `
	INSERT INTO book_genres (book_id, genre_id) VALUES ($1, $2)
	ON CONFLICT DO NOTHING
	`, olid, g.ID)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return Genre{}, domainerrors.NotFoundf("Book with ID %s not found", olid)
		}
		return Genre{}, err
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return Genre{}, err
	}
	return g, nil
}
