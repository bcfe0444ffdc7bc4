package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cristibaluta/Imagin-Raw-sub001/internal/library"
	"github.com/cristibaluta/Imagin-Raw-sub001/internal/settings/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the SettingsStore interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens the settings database at path and migrates it to
// the latest schema. path can be a file path or ":memory:" for an
// in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating settings database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: path,
	}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured
// SQLite connection. path can be a file path or ":memory:" for in-memory use.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A :memory: database exists per connection, so cap the pool at one.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Wait for locks instead of failing when another process holds the store.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Get retrieves the value stored under name. Returns nil when the
// setting was never written.
func (s *SQLiteStore) Get(name string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM settings WHERE name = ?", name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Never set
		}
		return nil, fmt.Errorf("reading setting %s: %w", name, err)
	}
	return value, nil
}

// Put stores value under name, replacing any previous value.
func (s *SQLiteStore) Put(name string, value []byte) error {
	_, err := s.db.Exec(`INSERT INTO settings (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", name, err)
	}
	return nil
}

// Delete removes the value stored under name. Deleting an absent
// setting is a no-op.
func (s *SQLiteStore) Delete(name string) error {
	if _, err := s.db.Exec("DELETE FROM settings WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting setting %s: %w", name, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Compile-time check that SQLiteStore implements the SettingsStore interface
var _ library.SettingsStore = (*SQLiteStore)(nil)
