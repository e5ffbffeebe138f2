package readinglist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookish/internal/book"
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

const listColumns = `id, user_id, list_name, is_private, book_count, created_at`

func scanList(row pgx.Row) (List, error) {
	var l List
	err := row.Scan(&l.ID, &l.UserID, &l.ListName, &l.IsPrivate, &l.BookCount, &l.CreatedAt)
	return l, err
}

func listNotFound(listID int64) error {
	return domainerrors.NotFoundf("List with ID %d not found", listID)
}

func (r *PostgresRepo) GetAll(ctx context.Context, userID int64) ([]List, error) {
	const query = `SELECT ` + listColumns + ` FROM lists WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, listID int64) (List, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	l, err := scanList(r.db.QueryRow(timeoutCtx, `SELECT `+listColumns+` FROM lists WHERE id = $1`, listID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return List{}, listNotFound(listID)
		}
		return List{}, err
	}
	return l, nil
}

func (r *PostgresRepo) Create(ctx context.Context, nl NewList) (List, error) {
	const query = `
	INSERT INTO lists (user_id, list_name, is_private)
	VALUES ($1, $2, $3)
	RETURNING ` + listColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	l, err := scanList(r.db.QueryRow(timeoutCtx, query, nl.UserID, nl.ListName, nl.IsPrivate))
	if err != nil {
		switch {
		case postgres.IsForeignKeyViolation(err):
			return List{}, domainerrors.NotFoundf("No user with ID %d", nl.UserID)
		case postgres.IsCheckViolation(err):
			return List{}, domainerrors.BadRequest("List name is required.")
		}
		return List{}, err
	}
	return l, nil
}

// Update writes only list_name and is_private; book_count and ownership are never touched.
func (r *PostgresRepo) Update(ctx context.Context, listID int64, patch Patch) (List, error) {
	var set postgres.SetClause
	if patch.ListName != nil {
		set.Add("list_name", *patch.ListName)
	}
	if patch.IsPrivate != nil {
		set.Add("is_private", *patch.IsPrivate)
	}
	if set.Len() == 0 {
		return List{}, domainerrors.BadRequest("No data to update")
	}

	query := fmt.Sprintf(`UPDATE lists SET %s WHERE id = %s RETURNING %s`, set.SQL(), set.Next(), listColumns)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	l, err := scanList(r.db.QueryRow(timeoutCtx, query, set.Args(listID)...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return List{}, listNotFound(listID)
		case postgres.IsCheckViolation(err):
			return List{}, domainerrors.BadRequest("List name is required.")
		}
		return List{}, err
	}
	return l, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, listID int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM lists WHERE id = $1`, listID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return listNotFound(listID)
	}
	return nil
}

// GetBooksOnList returns the list's books, most recently added first.
func (r *PostgresRepo) GetBooksOnList(ctx context.Context, listID int64) ([]book.Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.db.QueryRow(timeoutCtx, `SELECT EXISTS (SELECT 1 FROM lists WHERE id = $1)`, listID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, listNotFound(listID)
	}

	const query = `
	SELECT b.olid, b.title, b.author, b.cover_url, b.description
	FROM list_books AS lb
	JOIN books AS b ON b.olid = lb.book_id
	WHERE lb.list_id = $1
	ORDER BY lb.added_at DESC, b.title ASC
	`
	rows, err := r.db.Query(timeoutCtx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []book.Book{}
	for rows.Next() {
		var b book.Book
		if err := rows.Scan(&b.OLID, &b.Title, &b.Author, &b.CoverURL, &b.Description); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// AddBook inserts the membership and bumps book_count in one transaction. Adding a book that
// is already on the list changes nothing and reports false.
func (r *PostgresRepo) AddBook(ctx context.Context, listID int64, bookID string) (bool, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(timeoutCtx)

	tag, err := tx.Exec(timeoutCtx, `
	INSERT INTO list_books (list_id, book_id) VALUES ($1, $2)
	ON CONFLICT (list_id, book_id) DO NOTHING
	`, listID, bookID)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			if strings.Contains(postgres.ConstraintName(err), "book_id") {
				return false, domainerrors.NotFoundf("Book with ID %s not found", bookID)
			}
			return false, listNotFound(listID)
		}
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(timeoutCtx)
	}

	if _, err := tx.Exec(timeoutCtx, `UPDATE lists SET book_count = book_count + 1 WHERE id = $1`, listID); err != nil {
		return false, err
	}
	if err := tx.Commit(timeoutCtx); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveBook deletes the membership and decrements book_count in one transaction.
func (r *PostgresRepo) RemoveBook(ctx context.Context, listID int64, bookID string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	tag, err := tx.Exec(timeoutCtx, `DELETE FROM list_books WHERE list_id = $1 AND book_id = $2`, listID, bookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainerrors.NotFound("Book not found in the list")
	}

	const decrement = `UPDATE lists SET book_count = book_count - 1 WHERE id = $1 AND book_count > 0`
	if _, err := tx.Exec(timeoutCtx, decrement, listID); err != nil {
		return err
	}
	return tx.Commit(timeoutCtx)
}

// Reconcile resets book_count to the real membership count wherever they differ and returns
// the ids of the repaired lists.
func (r *PostgresRepo) Reconcile(ctx context.Context) ([]int64, error) {
	const query = `
	UPDATE lists AS l SET book_count = c.actual
	FROM (
		SELECT l2.id, COUNT(lb.book_id)::int AS actual
		FROM lists AS l2
		LEFT JOIN list_books AS lb ON lb.list_id = l2.id
		GROUP BY l2.id
	) AS c
	WHERE l.id = c.id AND l.book_count <> c.actual
	RETURNING l.id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
