package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// queryer is the subset of *sql.DB/*sql.Tx every repository needs; binding
// to it rather than a concrete type lets loggingDB wrap either.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// loggingDB wraps a queryer with debug-level logging of every statement,
// a cross-cutting QueryInterceptor seam.
type loggingDB struct {
	inner queryer
	log   *zap.SugaredLogger
}

func newLoggingDB(inner queryer) *loggingDB {
	return &loggingDB{inner: inner, log: zap.S().Named("store")}
}

func (d *loggingDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	d.log.Debugw("query", "sql", query, "args", len(args))
	return d.inner.QueryContext(ctx, query, args...)
}

func (d *loggingDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	d.log.Debugw("query_row", "sql", query, "args", len(args))
	return d.inner.QueryRowContext(ctx, query, args...)
}

func (d *loggingDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	d.log.Debugw("exec", "sql", query, "args", len(args))
	return d.inner.ExecContext(ctx, query, args...)
}
