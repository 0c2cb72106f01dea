package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - No schema (database file just created)
// 1 - Four collections, sync_queue, session
const currentSchemaVersion = 1

// timeLayout is fixed-width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// dbtx is the subset of *sql.DB and *sql.Tx the record functions need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Querier is satisfied by *Store and *Tx, so the record functions run either
// directly or inside a transaction.
type Querier interface {
	conn() dbtx
}

// Store provides durable storage for the point-of-sale collections.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db    *sql.DB
	fresh bool
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// Any failure is returned as a STORE_UNAVAILABLE error.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, model.StoreUnavailable("store.open", fmt.Errorf("open database: %w", err))
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, model.StoreUnavailable("store.open", fmt.Errorf("connect to database: %w", err))
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, model.StoreUnavailable("store.open", err)
	}

	fresh, err := applySchema(db)
	if err != nil {
		db.Close()
		return nil, model.StoreUnavailable("store.open", err)
	}

	return &Store{db: db, fresh: fresh}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Fresh reports whether this Open created the schema, i.e. the database had
// never been initialized before. Used to seed the catalog once.
func (s *Store) Fresh() bool {
	return s.fresh
}

// Ping verifies the database is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return wrapErr("store.ping", err)
	}
	return nil
}

func (s *Store) conn() dbtx { return s.db }

// Tx is a multi-collection transaction handed to the Update callback.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) conn() dbtx { return t.tx }

// Update runs fn inside a single transaction. If fn returns an error the
// transaction is rolled back and that error is returned unchanged; otherwise
// it is committed.
//
// The connection pool holds one connection, so fn must use tx and never the
// Store itself, or it will deadlock.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("store.update: begin", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapErr("store.update: commit", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. It reports whether the database was previously uninitialized.
func applySchema(db *sql.DB) (bool, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return false, fmt.Errorf("get user_version: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return false, fmt.Errorf("execute schema: %w", err)
	}

	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return false, fmt.Errorf("set user_version: %w", err)
		}
	}

	return version == 0, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

// wrapErr classifies a driver error. Context cancellation passes through so
// callers can tell it apart from a broken store.
func wrapErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return model.StoreUnavailable(op, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
