// Package store is the SQLite durable store that compiled statements run
// against: one key/value table whose JSON column holds a record document per
// row, keyed by a record-type prefix plus the record id.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/XSAM/otelsql"
	_ "github.com/mattn/go-sqlite3"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"lds-graphql-eval/internal/sqlgen"
	"lds-graphql-eval/internal/sqlutil"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Options control how Open connects.
type Options struct {
	Path    string
	Mapping sqlgen.Mapping
	// Metrics registers connection pool statistics on the global meter provider.
	Metrics bool
	Logger  *slog.Logger
}

// Store reads and writes record documents through a QueryExecutor.
type Store struct {
	exec    QueryExecutor
	mapping sqlgen.Mapping
	db      *sql.DB
	stats   interface{ Unregister() error }
}

// New wraps an existing executor. The caller owns the underlying connection.
func New(exec QueryExecutor, mapping sqlgen.Mapping) *Store {
	if mapping.KeyPrefix == "" {
		mapping.KeyPrefix = sqlgen.DefaultKeyPrefix
	}
	return &Store{exec: exec, mapping: mapping}
}

// Open connects to the SQLite database at opts.Path through the otelsql
// wrapped driver and makes sure the key/value table exists.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("store path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := otelsql.Open("sqlite3", opts.Path, otelsql.WithAttributes(semconv.DBSystemSqlite))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if opts.Path == MemoryPath {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	s := New(NewDBExecutor(db), opts.Mapping)
	s.db = db

	if opts.Metrics {
		s.stats, err = otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(semconv.DBSystemSqlite))
		if err != nil {
			logger.Warn("failed to register store stats metrics", slog.String("error", err.Error()))
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	logger.Debug("opened durable store",
		slog.String("path", opts.Path),
		slog.String("table", s.mapping.JSONTable),
	)
	return s, nil
}

// Close releases the database handle opened by Open.
func (s *Store) Close() error {
	if s.stats != nil {
		_ = s.stats.Unregister()
		s.stats = nil
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Mapping returns the table layout the store was opened with.
func (s *Store) Mapping() sqlgen.Mapping {
	return s.mapping
}

// EnsureSchema creates the key/value table when it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY, %s TEXT NOT NULL)",
		sqlutil.QuoteIdentifier(s.mapping.JSONTable),
		sqlutil.QuoteIdentifier(s.mapping.KeyColumn),
		sqlutil.QuoteIdentifier(s.mapping.JSONColumn),
	)
	if _, err := s.exec.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.mapping.JSONTable, err)
	}
	return nil
}

// Put stores doc under key, replacing any previous document.
func (s *Store) Put(ctx context.Context, key string, doc json.RawMessage) error {
	if !json.Valid(doc) {
		return fmt.Errorf("document for key %q is not valid JSON", key)
	}
	query, args, err := sq.Insert(sqlutil.QuoteIdentifier(s.mapping.JSONTable)).
		Options("OR REPLACE").
		Columns(sqlutil.QuoteIdentifier(s.mapping.KeyColumn), sqlutil.QuoteIdentifier(s.mapping.JSONColumn)).
		Values(key, string(doc)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := s.exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to store %q: %w", key, err)
	}
	return nil
}

// PutRecords stores every entry under its record key and returns how many
// were written.
func (s *Store) PutRecords(ctx context.Context, entries []Entry) (int, error) {
	for i, entry := range entries {
		key, err := entry.Key(s.mapping.KeyPrefix)
		if err != nil {
			return i, fmt.Errorf("record %d: %w", i, err)
		}
		doc, err := entry.Document()
		if err != nil {
			return i, fmt.Errorf("record %d: %w", i, err)
		}
		if err := s.Put(ctx, key, doc); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}

// Execute runs a compiled statement and returns its json column. Bindings are
// unquoted and bound as text in order.
func (s *Store) Execute(ctx context.Context, res *sqlgen.Result) (json.RawMessage, error) {
	if res == nil || res.SQL == "" {
		return nil, errors.New("no statement to execute")
	}
	args := make([]any, len(res.Bindings))
	for i, binding := range res.Bindings {
		value, err := sqlutil.UnquoteString(binding)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		args[i] = value
	}

	rows, err := s.exec.QueryContext(ctx, res.SQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read result: %w", err)
		}
		return nil, errors.New("statement returned no rows")
	}
	var out sql.NullString
	if err := rows.Scan(&out); err != nil {
		return nil, fmt.Errorf("failed to scan result: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read result: %w", err)
	}
	if !out.Valid {
		return nil, errors.New("statement returned a null document")
	}
	return json.RawMessage(out.String), nil
}
