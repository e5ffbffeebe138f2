// Package postgres holds the shared pgx plumbing used by the repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// Open creates a pool and verifies it answers a ping within pingTimeout.
func Open(ctx context.Context, dsn string, pingTimeout time.Duration) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", RedactDSN(dsn), err)
	}
	return pool, nil
}

// RedactDSN hides the credentials part of a connection URL.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return pgErrorCode(err) == codeUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == codeForeignKeyViolation
}

// IsCheckViolation reports whether err is a check constraint violation.
func IsCheckViolation(err error) bool {
	return pgErrorCode(err) == codeCheckViolation
}

// ConstraintName returns the violated constraint, if err carries one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// SetClause accumulates "column = $n" assignments for partial updates. Columns are supplied
// by the repositories from fixed whitelists, never from caller input.
type SetClause struct {
	sets []string
	args []any
}

// Add appends an assignment for column.
func (s *SetClause) Add(column string, value any) {
	s.args = append(s.args, value)
	s.sets = append(s.sets, column+" = $"+strconv.Itoa(len(s.args)))
}

// Len is the number of assignments.
func (s *SetClause) Len() int {
	return len(s.sets)
}

// SQL renders the assignments joined by commas.
func (s *SetClause) SQL() string {
	return strings.Join(s.sets, ", ")
}

// Next returns the placeholder for the argument following the assignments.
func (s *SetClause) Next() string {
	return "$" + strconv.Itoa(len(s.args)+1)
}

// Args returns the assignment values followed by extra trailing arguments.
func (s *SetClause) Args(extra ...any) []any {
	out := make([]any, 0, len(s.args)+len(extra))
	out = append(out, s.args...)
	return append(out, extra...)
}
