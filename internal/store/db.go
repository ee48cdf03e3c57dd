// Package store persists exported declaration models in SQLite or Dolt.
// Each export is one run keyed by a UUID; runs are never updated, so
// earlier exports stay queryable next to newer ones. With the Dolt backend
// every run is also a Dolt commit.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/dolthub/driver"
	_ "modernc.org/sqlite"
)

// Backend names a database engine.
type Backend string

const (
	// BackendSQLite stores runs in a single SQLite file.
	BackendSQLite Backend = "sqlite"
	// BackendDolt stores runs in a Dolt repository directory.
	BackendDolt Backend = "dolt"
)

const doltDatabase = "cppast"

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store manages the export database.
type Store struct {
	db      *sql.DB
	backend Backend
	dbPath  string // SQLite file or Dolt repo directory
}

// Open opens or creates the export database at path and initializes the
// schema. For sqlite, path is the database file; for dolt it is the
// repository directory. Missing parent directories are created.
func Open(backend Backend, path string) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch backend {
	case BackendSQLite:
		db, err = openSQLite(path)
	case BackendDolt:
		db, err = openDolt(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	if err != nil {
		return nil, err
	}

	store := &Store{db: db, backend: backend, dbPath: path}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return db, nil
}

func openDolt(path string) (*sql.DB, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create dolt directory: %w", err)
	}

	// First, connect without specifying database to create it if needed
	initDSN := fmt.Sprintf("file://%s?commitname=cppast&commitemail=cppast@local", path)
	initDB, err := sql.Open("dolt", initDSN)
	if err != nil {
		return nil, fmt.Errorf("open dolt for init: %w", err)
	}
	_, err = initDB.Exec("CREATE DATABASE IF NOT EXISTS " + doltDatabase)
	initDB.Close()
	if err != nil {
		return nil, fmt.Errorf("create database: %w", err)
	}

	dsn := fmt.Sprintf("file://%s?commitname=cppast&commitemail=cppast@local&database=%s", path, doltDatabase)
	db, err := sql.Open("dolt", dsn)
	if err != nil {
		return nil, fmt.Errorf("open dolt db: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Backend returns the engine the store was opened with.
func (s *Store) Backend() Backend {
	return s.backend
}

// Path returns the database file or repository path.
func (s *Store) Path() string {
	return s.dbPath
}
