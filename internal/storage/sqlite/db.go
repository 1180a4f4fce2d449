// ABOUTME: SQLite database connection and lifecycle management for the record store
// ABOUTME: Uses modernc.org/sqlite for pure-Go SQLite support
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	path string
}

// DefaultDataDir returns the default data directory following the XDG spec.
// XDG_DATA_HOME is read at call time so tests can redirect it.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "docchat")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "records.db")
}

// Open opens or creates a SQLite database at the given path
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL mode for concurrent readers
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return initDB(conn, path)
}

// OpenInMemory creates an in-memory SQLite database (for testing)
func OpenInMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// every pooled connection would otherwise see its own empty database
	conn.SetMaxOpenConns(1)

	return initDB(conn, ":memory:")
}

func initDB(conn *sql.DB, path string) (*DB, error) {
	db := &DB{conn: conn, path: path}
	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// initSchema creates all database tables and indexes
func (db *DB) initSchema() error {
	if _, err := db.conn.Exec(Schema); err != nil {
		return err
	}
	_, err := db.conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion))
	return err
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn returns the underlying sql.DB connection for advanced usage
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Records returns the record store backed by this database
func (db *DB) Records() *RecordStore {
	return NewRecordStore(db)
}

// BeginTx starts a transaction
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.conn.BeginTx(ctx, nil)
}

// QueryContext executes a query that returns rows
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns at most one row
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, query, args...)
}
