package base

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository holds the shared connection pool and the query helpers the
// concrete repositories build on.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps a connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying connection pool.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// QueryRow runs a query expected to return a single row.
func (r *Repository) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	return r.pool.QueryRow(ctx, query, args...)
}

// Query runs a query returning multiple rows.
func (r *Repository) Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	return r.pool.Query(ctx, query, args...)
}

// ExecAffected runs a statement and returns the number of affected rows.
func (r *Repository) ExecAffected(ctx context.Context, query string, args ...interface{}) (int64, error) {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IsNotFound reports whether the error is pgx's no-rows marker.
func IsNotFound(err error) bool {
	return err == pgx.ErrNoRows
}
