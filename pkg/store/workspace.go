package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
)

// Workspace is the persisted shape of the Workspace entity: a named
// tenant configuration plus its upload/preprocess bookkeeping timestamps.
type Workspace struct {
	ID               int64
	Name             string
	DBName           string
	Language         string
	LastPreprocess   *time.Time
	LastEvidenceLoad *time.Time
	LastSQLLoaded    *time.Time
}

// WorkspaceStore persists Workspace rows and implements
// pkg/jobs.TimestampSetter for the upload jobs' last_evidence_load/
// last_sql_loaded bookkeeping.
type WorkspaceStore struct {
	db queryer
}

func newWorkspaceStore(db queryer) *WorkspaceStore {
	return &WorkspaceStore{db: db}
}

const queryInsertWorkspace = `
	INSERT INTO workspace (name, db_name, language)
	VALUES (?, ?, ?)`

// Create inserts a new workspace row and returns its assigned ID.
func (s *WorkspaceStore) Create(ctx context.Context, w Workspace) (int64, error) {
	res, err := s.db.ExecContext(ctx, queryInsertWorkspace, w.Name, w.DBName, w.Language)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const queryGetWorkspace = `
	SELECT id, name, db_name, language, last_preprocess, last_evidence_load, last_sql_loaded
	FROM workspace WHERE id = ?`

// Get retrieves the workspace with the given ID.
func (s *WorkspaceStore) Get(ctx context.Context, id int64) (*Workspace, error) {
	row := s.db.QueryRowContext(ctx, queryGetWorkspace, id)
	var w Workspace
	err := row.Scan(&w.ID, &w.Name, &w.DBName, &w.Language, &w.LastPreprocess, &w.LastEvidenceLoad, &w.LastSQLLoaded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewConfigurationNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

const querySetLastPreprocess = `UPDATE workspace SET last_preprocess = ? WHERE id = ?`

// SetLastPreprocess stamps the workspace's last schema-preprocess run.
func (s *WorkspaceStore) SetLastPreprocess(ctx context.Context, workspaceID int64) error {
	_, err := s.db.ExecContext(ctx, querySetLastPreprocess, time.Now().UTC(), workspaceID)
	return err
}

const querySetLastEvidenceLoad = `UPDATE workspace SET last_evidence_load = ? WHERE id = ?`

// SetLastEvidenceLoad implements pkg/jobs.TimestampSetter.
func (s *WorkspaceStore) SetLastEvidenceLoad(ctx context.Context, workspaceID int64) error {
	_, err := s.db.ExecContext(ctx, querySetLastEvidenceLoad, time.Now().UTC(), workspaceID)
	return err
}

const querySetLastSQLLoaded = `UPDATE workspace SET last_sql_loaded = ? WHERE id = ?`

// SetLastSQLLoaded implements pkg/jobs.TimestampSetter.
func (s *WorkspaceStore) SetLastSQLLoaded(ctx context.Context, workspaceID int64) error {
	_, err := s.db.ExecContext(ctx, querySetLastSQLLoaded, time.Now().UTC(), workspaceID)
	return err
}
