// Package postgres is the production implementation of the persistence
// ports on PostgreSQL, using database/sql with lib/pq.
//
// Scoping is enforced in SQL: every query against an organization-scoped
// table carries the organization id in its WHERE clause, and the
// single-active-domain invariant is a conditional UPDATE rather than a
// read-modify-write.
package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Store implements port.DataStore on a Postgres connection pool.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string, maxConns, maxIdle int, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Ping checks connectivity, used by the readiness endpoint.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
