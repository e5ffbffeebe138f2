package user

import (
	"context"
	"errors"
	"fmt"
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

const userColumns = `id, username, first_name, last_name, email, profile_img_url, is_admin, created_at`

func scanUser(row pgx.Row, extra ...any) (User, error) {
	var u User
	dest := append([]any{
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email,
		&u.ProfileImgURL, &u.IsAdmin, &u.CreatedAt,
	}, extra...)
	err := row.Scan(dest...)
	return u, err
}

func (r *PostgresRepo) GetCredentials(ctx context.Context, username string) (Credentials, error) {
	const query = `SELECT ` + userColumns + `, password FROM users WHERE username = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var hash string
	u, err := scanUser(r.db.QueryRow(timeoutCtx, query, username), &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credentials{}, domainerrors.NotFoundf("No user: %s", username)
		}
		return Credentials{}, err
	}
	return Credentials{User: u, PasswordHash: hash}, nil
}

// Create inserts a user after checking the username inside the same transaction. The unique
// constraint still decides races between concurrent registrations.
func (r *PostgresRepo) Create(ctx context.Context, reg Registration) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback(timeoutCtx)

	var exists bool
	if err := tx.QueryRow(timeoutCtx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, reg.Username).Scan(&exists); err != nil {
		return User{}, err
	}
	if exists {
		return User{}, domainerrors.Duplicatef("Duplicate username: %s", reg.Username)
	}

	profileImg := reg.ProfileImgURL
	if profileImg == "" {
		profileImg = DefaultProfileImage
	}

	const query = `
	INSERT INTO users (username, password, first_name, last_name, email, profile_img_url, is_admin)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + userColumns

	u, err := scanUser(tx.QueryRow(timeoutCtx, query,
		reg.Username, reg.PasswordHash, reg.FirstName, reg.LastName, reg.Email, profileImg, reg.IsAdmin))
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return User{}, domainerrors.Duplicatef("Duplicate username: %s", reg.Username)
		}
		return User{}, err
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) FindAll(ctx context.Context) ([]User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY username`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, username string) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(timeoutCtx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, domainerrors.NotFoundf("No user: %s", username)
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, domainerrors.NotFoundf("No user with id: %d", id)
		}
		return User{}, err
	}
	return u, nil
}

// Update applies the non-nil fields of patch. Password must already be hashed.
func (r *PostgresRepo) Update(ctx context.Context, username string, patch Patch) (User, error) {
	var set postgres.SetClause
	addIf := func(column string, v *string) {
		if v != nil {
			set.Add(column, *v)
		}
	}
	addIf("username", patch.Username)
	addIf("first_name", patch.FirstName)
	addIf("last_name", patch.LastName)
	addIf("email", patch.Email)
	addIf("profile_img_url", patch.ProfileImgURL)
	addIf("password", patch.Password)

	if set.Len() == 0 {
		return User{}, domainerrors.BadRequest("No data to update")
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE username = %s RETURNING %s`, set.SQL(), set.Next(), userColumns)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(timeoutCtx, query, set.Args(username)...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return User{}, domainerrors.NotFoundf("No user: %s", username)
		case postgres.IsUniqueViolation(err):
			return User{}, domainerrors.Duplicatef("Duplicate username: %s", *patch.Username)
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) Remove(ctx context.Context, username string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainerrors.NotFoundf("No user: %s", username)
	}
	return nil
}

// resolvePair looks up the ids of the followed user and the follower.
func resolvePair(ctx context.Context, q pgx.Tx, target, follower string) (targetID, followerID int64, err error) {
	rows, err := q.Query(ctx, `SELECT id, username FROM users WHERE username = ANY($1)`, []string{target, follower})
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return 0, 0, err
		}
		if name == target {
			targetID = id
		}
		if name == follower {
			followerID = id
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}
	if targetID == 0 || followerID == 0 {
		return 0, 0, domainerrors.NotFound("User(s) not found")
	}
	return targetID, followerID, nil
}

// Follow records a pending request from follower to target.
func (r *PostgresRepo) Follow(ctx context.Context, target string, follower string) (Follow, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return Follow{}, err
	}
	defer tx.Rollback(timeoutCtx)

	targetID, followerID, err := resolvePair(timeoutCtx, tx, target, follower)
	if err != nil {
		return Follow{}, err
	}

	const query = `
	INSERT INTO following (user_id, follower_id, status)
	VALUES ($1, $2, 'pending')
	RETURNING id, user_id, follower_id, status, created_at
	`
	var f Follow
	err = tx.QueryRow(timeoutCtx, query, targetID, followerID).Scan(&f.ID, &f.UserID, &f.FollowerID, &f.Status, &f.CreatedAt)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err):
			return Follow{}, domainerrors.Duplicatef("%s already follows or has requested to follow %s", follower, target)
		case postgres.IsCheckViolation(err):
			return Follow{}, domainerrors.BadRequest("Users cannot follow themselves")
		}
		return Follow{}, err
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return Follow{}, err
	}
	return f, nil
}

func (r *PostgresRepo) Unfollow(ctx context.Context, target string, follower string) error {
	const query = `
	DELETE FROM following
	WHERE user_id = (SELECT id FROM users WHERE username = $1)
	  AND follower_id = (SELECT id FROM users WHERE username = $2)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, query, target, follower)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainerrors.NotFound("Follow relationship not found")
	}
	return nil
}

// AcceptFollow moves a pending request from follower to target into the accepted state.
func (r *PostgresRepo) AcceptFollow(ctx context.Context, target string, follower string) (Follow, error) {
	const query = `
	UPDATE following SET status = 'accepted'
	WHERE user_id = (SELECT id FROM users WHERE username = $1)
	  AND follower_id = (SELECT id FROM users WHERE username = $2)
	  AND status = 'pending'
	RETURNING id, user_id, follower_id, status, created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var f Follow
	err := r.db.QueryRow(timeoutCtx, query, target, follower).Scan(&f.ID, &f.UserID, &f.FollowerID, &f.Status, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Follow{}, domainerrors.NotFound("No pending follow request")
		}
		return Follow{}, err
	}
	return f, nil
}

// listEdges returns the users on the other end of username's edges. joinCol is the column
// pointing at the listed users and matchCol the one that must equal username's id.
func (r *PostgresRepo) listEdges(ctx context.Context, username, joinCol, matchCol string, status FollowStatus) ([]Summary, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var userID int64
	if err := r.db.QueryRow(timeoutCtx, `SELECT id FROM users WHERE username = $1`, username).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerrors.NotFoundf("No user: %s", username)
		}
		return nil, err
	}

	query := fmt.Sprintf(`
	SELECT u.username, u.first_name, u.last_name
	FROM following AS f
	JOIN users AS u ON f.%s = u.id
	WHERE f.%s = $1 AND f.status = $2
	ORDER BY u.username
	`, joinCol, matchCol)

	rows, err := r.db.Query(timeoutCtx, query, userID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Username, &s.FirstName, &s.LastName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetFollowers(ctx context.Context, username string) ([]Summary, error) {
	return r.listEdges(ctx, username, "follower_id", "user_id", FollowAccepted)
}

func (r *PostgresRepo) GetFollowing(ctx context.Context, username string) ([]Summary, error) {
	return r.listEdges(ctx, username, "user_id", "follower_id", FollowAccepted)
}

func (r *PostgresRepo) GetFollowRequests(ctx context.Context, username string) ([]Summary, error) {
	return r.listEdges(ctx, username, "follower_id", "user_id", FollowPending)
}
