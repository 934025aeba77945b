// Package sqlite implements the persistence loader over the platform's
// relational message store using modernc.org/sqlite (pure Go, no CGO),
// with WAL mode and an idempotent schema migration.
package sqlite

import (
	"database/sql"

	"github.com/obitus-ai/contextd/internal/buffer"
)

// Compile-time interface guard.
var _ buffer.Loader = (*Store)(nil)

// Store reads and writes persisted conversation messages. It implements
// buffer.Loader for resume; writes exist so the surrounding platform (and
// tests) can record history through the same schema.
type Store struct {
	db *sql.DB
}

// DB exposes the underlying handle for maintenance tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
