package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store provides access to every storage repository, mirroring the
// teacher's internal/store.Store facade generalized to this module's
// entity set.
type Store struct {
	db        *sql.DB
	workspace *WorkspaceStore
	vectorDb  *VectorDbStore
	sqlDb     *SqlDbStore
	thothLog  *ThothLogStore
}

// Open opens (creating if absent) the SQLite database at dsn and applies
// the local schema. dsn is typically internal/config.Config.StorePath.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dsn, err)
	}
	s := NewStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an already-open *sql.DB, the shape tests use to bind
// against an in-memory database.
func NewStore(db *sql.DB) *Store {
	q := newLoggingDB(db)
	return &Store{
		db:        db,
		workspace: newWorkspaceStore(q),
		vectorDb:  newVectorDbStore(q, db),
		sqlDb:     newSqlDbStore(q),
		thothLog:  newThothLogStore(q),
	}
}

// Migrate applies schemaStatements; every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// Workspace returns the workspace repository.
func (s *Store) Workspace() *WorkspaceStore { return s.workspace }

// VectorDb returns the vector-store connection repository.
func (s *Store) VectorDb() *VectorDbStore { return s.vectorDb }

// SqlDb returns the SQL connection repository.
func (s *Store) SqlDb() *SqlDbStore { return s.sqlDb }

// ThothLog returns the run-summary repository.
func (s *Store) ThothLog() *ThothLogStore { return s.thothLog }

// Catalog returns the introspected-schema repository scoped to one SqlDb,
// the granularity pkg/jobs.CreateDBElements operates at.
func (s *Store) Catalog(sqlDbID int64) *CatalogStore {
	return newCatalogStore(newLoggingDB(s.db), sqlDbID)
}

// DB exposes the underlying *sql.DB for callers (e.g. cmd/sqlgenctl) that
// need to pass a raw connection pool to an unrelated component.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	return s.db.Close()
}
