// Package storage persists targets, posts, and the digest audit log in a
// single SQLite database. The UNIQUE constraint on posts.linkedin_id is the
// final arbiter of post dedup; application code never decides it.
package storage

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AaronLPS/ai4news/internal/ports"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for the aggregation pipeline.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ ports.TargetRegistry = (*Store)(nil)
	_ ports.PostStore      = (*Store)(nil)
	_ ports.DigestLog      = (*Store)(nil)
)

// Open creates or opens the SQLite database at path and applies the schema.
// Idempotent; safe to call once per logical session.
//
// The connection is configured with WAL mode, a 5-second busy timeout, and
// foreign key enforcement. SQLite supports a single writer, so the pool is
// capped at one connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

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

// timestamp renders a time the way every TEXT timestamp column stores it.
// RFC 3339 in UTC compares correctly as a string, which the scraped_at window
// predicate relies on.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
