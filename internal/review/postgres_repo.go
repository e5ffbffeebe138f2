package review

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

const reviewColumns = `id, book_id, user_id, review_text, rating, created_at`

func scanReview(row pgx.Row) (Review, error) {
	var rv Review
	err := row.Scan(&rv.ID, &rv.BookID, &rv.UserID, &rv.ReviewText, &rv.Rating, &rv.CreatedAt)
	return rv, err
}

var errAlreadyReviewed = domainerrors.Duplicate("User has already reviewed this book.")

// AddReview inserts a review. A user may review a book once; the pre-check gives the common
// case a clean error and the unique constraint settles concurrent inserts.
func (r *PostgresRepo) AddReview(ctx context.Context, nr NewReview) (Review, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return Review{}, err
	}
	defer tx.Rollback(timeoutCtx)

	var exists bool
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND book_id = $2)`
	if err := tx.QueryRow(timeoutCtx, existsQuery, nr.UserID, nr.BookID).Scan(&exists); err != nil {
		return Review{}, err
	}
	if exists {
		return Review{}, errAlreadyReviewed
	}

	const query = `
	INSERT INTO reviews (book_id, user_id, review_text, rating)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + reviewColumns

	rv, err := scanReview(tx.QueryRow(timeoutCtx, query, nr.BookID, nr.UserID, nr.ReviewText, nr.Rating))
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err):
			return Review{}, errAlreadyReviewed
		case postgres.IsForeignKeyViolation(err):
			if strings.Contains(postgres.ConstraintName(err), "book_id") {
				return Review{}, domainerrors.NotFoundf("Book with ID %s not found", nr.BookID)
			}
			return Review{}, domainerrors.NotFoundf("No user with ID %d", nr.UserID)
		case postgres.IsCheckViolation(err):
			return Review{}, checkRating(nr.Rating)
		}
		return Review{}, err
	}
	if err := tx.Commit(timeoutCtx); err != nil {
		return Review{}, err
	}
	return rv, nil
}

func (r *PostgresRepo) UpdateReview(ctx context.Context, reviewID int64, text string, rating int) (Review, error) {
	const query = `
	UPDATE reviews SET review_text = $1, rating = $2
	WHERE id = $3
	RETURNING ` + reviewColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rv, err := scanReview(r.db.QueryRow(timeoutCtx, query, text, rating, reviewID))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return Review{}, reviewNotFound(reviewID)
		case postgres.IsCheckViolation(err):
			return Review{}, checkRating(rating)
		}
		return Review{}, err
	}
	return rv, nil
}

func (r *PostgresRepo) DeleteReview(ctx context.Context, reviewID int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return reviewNotFound(reviewID)
	}
	return nil
}

const detailSelect = `
	SELECT r.id, r.book_id, r.user_id, r.review_text, r.rating, r.created_at, u.username
	FROM reviews AS r
	JOIN users AS u ON u.id = r.user_id
	`

func scanDetail(row pgx.Row) (Detail, error) {
	var d Detail
	err := row.Scan(&d.ID, &d.BookID, &d.UserID, &d.ReviewText, &d.Rating, &d.CreatedAt, &d.Username)
	return d, err
}

// GetAllByBook returns the book's reviews, newest first.
func (r *PostgresRepo) GetAllByBook(ctx context.Context, bookID string) ([]Detail, error) {
	const query = detailSelect + `WHERE r.book_id = $1 ORDER BY r.created_at DESC, r.id DESC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []Detail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// GetReview returns nil without an error when the book has no such review.
func (r *PostgresRepo) GetReview(ctx context.Context, bookID string, reviewID int64) (*Detail, error) {
	const query = detailSelect + `WHERE r.book_id = $1 AND r.id = $2`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	d, err := scanDetail(r.db.QueryRow(timeoutCtx, query, bookID, reviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// AvgRating returns the mean rating rounded to two decimals, or nil for an unreviewed book.
func (r *PostgresRepo) AvgRating(ctx context.Context, bookID string) (*string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var avg *string
	const query = `SELECT ROUND(AVG(rating), 2)::text FROM reviews WHERE book_id = $1`
	if err := r.db.QueryRow(timeoutCtx, query, bookID).Scan(&avg); err != nil {
		return nil, err
	}
	return avg, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, reviewID int64) (Review, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rv, err := scanReview(r.db.QueryRow(timeoutCtx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, reviewID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, reviewNotFound(reviewID)
		}
		return Review{}, err
	}
	return rv, nil
}
