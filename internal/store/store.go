package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// pragmas are applied to every connection the ledger opens.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// migrations[i] upgrades a ledger from user_version i to i+1.
var migrations = []func(*sql.DB) error{
	addStaleColumn, // 1: outputs.stale for check-mode runs
}

// Store is the generation ledger.
type Store struct {
	db  *sql.DB
	ids IDGenerator
}

// Open creates or opens the ledger at path with UUIDv7 run ids. Schema
// and migrations are applied on open, so opening twice is harmless.
func Open(path string) (*Store, error) {
	return OpenWithGenerator(path, UUIDv7Generator{})
}

// OpenWithGenerator is like Open but draws run ids from ids.
func OpenWithGenerator(path string, ids IDGenerator) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// One connection: SQLite has a single writer, and pragmas are
	// per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := setup(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, ids: ids}, nil
}

func setup(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect ledger: %w", err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("apply %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return migrate(db)
}

// migrate runs the migrations newer than the ledger's user_version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for i := version; i < len(migrations); i++ {
		if err := migrations[i](db); err != nil {
			return fmt.Errorf("migrate to v%d: %w", i+1, err)
		}
	}
	if version < len(migrations) {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", len(migrations))); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// addStaleColumn adds outputs.stale to ledgers created before check-mode
// runs were recorded. Fresh ledgers already have it from schema.sql.
func addStaleColumn(db *sql.DB) error {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('outputs') WHERE name = 'stale'`).Scan(&count)
	if err != nil || count > 0 {
		return err
	}
	_, err = db.Exec(`ALTER TABLE outputs ADD COLUMN stale INTEGER NOT NULL DEFAULT 0`)
	return err
}

// Close closes the ledger.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("query %s: %w", name, err)
	}
	return value, nil
}
