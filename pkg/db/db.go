package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Register driver
)

// DefaultTable is the table recordings are imported into.
const DefaultTable = "samples"

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens (or creates) the database and runs migrations.
func Init(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	d, err := open(path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := d.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := d.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := d.migrate(); err != nil {
		d.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return d, nil
}

// Open opens an existing database without creating or migrating it.
// A missing file is an error rather than an empty database.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found: %w", err)
	}
	return open(path)
}

func open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// Enforce single connection to avoid SQLITE_BUSY errors during concurrent writes
	conn.SetMaxOpenConns(1)
	return &DB{conn}, nil
}

func (d *DB) migrate() error {
	return d.EnsureSampleTable(DefaultTable)
}

// EnsureSampleTable creates a recording table with the given name if it is missing.
// The caller is responsible for passing a valid SQL identifier.
func (d *DB) EnsureSampleTable(table string) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		time REAL NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL
	)`, table)
	if _, err := d.Exec(q); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}
