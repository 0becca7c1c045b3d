// Package index provides a SQLite-backed package search index with optional
// FTS5 full-text search. It is rebuilt from the catalog on every load.
package index

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps the index in process memory.
const MemoryDSN = ":memory:"

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS repositories (
	repo_index INTEGER PRIMARY KEY,
	url        TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS packages (
	repo_index       INTEGER NOT NULL,
	position         INTEGER NOT NULL,
	identifier       TEXT NOT NULL,
	name             TEXT NOT NULL DEFAULT '',
	author           TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	long_description TEXT NOT NULL DEFAULT '',
	version          TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (repo_index, identifier)
);

CREATE INDEX IF NOT EXISTS idx_packages_repo ON packages(repo_index, position);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// dsn is a file path or MemoryDSN.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	full := dsn
	if dsn != MemoryDSN && !strings.Contains(dsn, "?") {
		full = dsn + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	conn, err := sql.Open("sqlite3", full)
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	// Every pooled connection to :memory: would get its own database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
