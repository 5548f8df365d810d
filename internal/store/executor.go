package store

import (
	"context"
	"database/sql"
)

// Rows is the part of *sql.Rows a Store needs to read the json column of a
// compiled statement.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// QueryExecutor runs the statements a Store issues: compiled reads through
// QueryContext, schema setup and record writes through ExecContext.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DBExecutor is the QueryExecutor of a store backed by a database handle.
type DBExecutor struct {
	db *sql.DB
}

// NewDBExecutor returns a DBExecutor for db. A nil db fails every statement
// with sql.ErrConnDone.
func NewDBExecutor(db *sql.DB) *DBExecutor {
	return &DBExecutor{db: db}
}

func (e *DBExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.QueryContext(ctx, query, args...)
}

func (e *DBExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.ExecContext(ctx, query, args...)
}
