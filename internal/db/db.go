// Package db is the upstream knowledge graph: a SQLite file accumulating the
// triples pushed from every project.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	Path string
}

const schema = `
CREATE TABLE IF NOT EXISTS pushes (
	id         TEXT PRIMARY KEY,
	project    TEXT NOT NULL,
	revision   TEXT NOT NULL DEFAULT '',
	pushed_at  INTEGER NOT NULL,
	triples    INTEGER NOT NULL,
	added      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS triples (
	subject    TEXT NOT NULL,
	predicate  TEXT NOT NULL,
	object     TEXT NOT NULL,
	push_id    TEXT NOT NULL REFERENCES pushes(id) ON DELETE CASCADE,
	PRIMARY KEY (subject, predicate, object)
);
CREATE INDEX IF NOT EXISTS triples_predicate ON triples(predicate);
`

// OpenDB opens (creating if needed) a knowledge graph database with WAL mode
// and foreign keys enabled
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{conn: conn, Path: path}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (d *DB) Conn() *sql.DB {
	return d.conn
}
