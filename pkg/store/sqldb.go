package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
)

// JobStatus is one of the per-DB async-job states a SqlDb tracks.
type JobStatus string

const (
	JobIdle      JobStatus = "IDLE"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

// JobType identifies one of the three background-job kinds a SqlDb tracks
// a status quintuple for.
type JobType string

const (
	JobDBElements    JobType = "db_elements"
	JobTableComment  JobType = "table_comment"
	JobColumnComment JobType = "column_comment"
)

var jobColumnPrefix = map[JobType]string{
	JobDBElements:    "db_elements",
	JobTableComment:  "table_comment",
	JobColumnComment: "column_comment",
}

// JobStatusQuintuple is one job type's {status, task_id, log, start_time,
// end_time} record.
type JobStatusQuintuple struct {
	Status    JobStatus
	TaskID    string
	Log       string
	StartTime *time.Time
	EndTime   *time.Time
}

// SqlDb is the persisted shape of the SqlDb entity.
type SqlDb struct {
	ID           int64
	WorkspaceID  int64
	Name         string
	Dialect      string
	Host         string
	Port         int
	DatabaseName string
	User         string
	Schema       string
	VectorDbID   *int64
}

// SqlDbStore persists SqlDb rows and their per-job status quintuples.
type SqlDbStore struct {
	db queryer
}

func newSqlDbStore(db queryer) *SqlDbStore {
	return &SqlDbStore{db: db}
}

const queryInsertSqlDb = `
	INSERT INTO sql_db (workspace_id, name, dialect, host, port, database_name, db_user, db_schema)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Create inserts a new SqlDb row and returns its assigned ID.
func (s *SqlDbStore) Create(ctx context.Context, db SqlDb) (int64, error) {
	res, err := s.db.ExecContext(ctx, queryInsertSqlDb,
		db.WorkspaceID, db.Name, db.Dialect, db.Host, db.Port, db.DatabaseName, db.User, db.Schema)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const queryGetSqlDb = `
	SELECT id, workspace_id, name, dialect, host, port, database_name, db_user, db_schema, vector_db_id
	FROM sql_db WHERE id = ?`

// Get retrieves the SqlDb with the given ID.
func (s *SqlDbStore) Get(ctx context.Context, id int64) (*SqlDb, error) {
	row := s.db.QueryRowContext(ctx, queryGetSqlDb, id)
	var db SqlDb
	err := row.Scan(&db.ID, &db.WorkspaceID, &db.Name, &db.Dialect, &db.Host, &db.Port,
		&db.DatabaseName, &db.User, &db.Schema, &db.VectorDbID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewConfigurationNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &db, nil
}

const queryGetSqlDbByWorkspace = `
	SELECT id, workspace_id, name, dialect, host, port, database_name, db_user, db_schema, vector_db_id
	FROM sql_db WHERE workspace_id = ? ORDER BY id LIMIT 1`

// GetByWorkspace returns the first SqlDb configured for a workspace. A
// workspace has exactly one active SqlDb at a time in this module's
// supported topology.
func (s *SqlDbStore) GetByWorkspace(ctx context.Context, workspaceID int64) (*SqlDb, error) {
	row := s.db.QueryRowContext(ctx, queryGetSqlDbByWorkspace, workspaceID)
	var db SqlDb
	err := row.Scan(&db.ID, &db.WorkspaceID, &db.Name, &db.Dialect, &db.Host, &db.Port,
		&db.DatabaseName, &db.User, &db.Schema, &db.VectorDbID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewConfigurationNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &db, nil
}

// SetJobStatus updates the status quintuple for one job type.
func (s *SqlDbStore) SetJobStatus(ctx context.Context, sqlDbID int64, job JobType, q JobStatusQuintuple) error {
	prefix, ok := jobColumnPrefix[job]
	if !ok {
		return fmt.Errorf("store: unknown job type %q", job)
	}
	query := fmt.Sprintf(`
		UPDATE sql_db SET
			%[1]s_status = ?,
			%[1]s_task_id = ?,
			%[1]s_log = ?,
			%[1]s_start_time = ?,
			%[1]s_end_time = ?
		WHERE id = ?`, prefix)
	_, err := s.db.ExecContext(ctx, query, string(q.Status), q.TaskID, q.Log, q.StartTime, q.EndTime, sqlDbID)
	return err
}

// GetJobStatus retrieves the status quintuple for one job type.
func (s *SqlDbStore) GetJobStatus(ctx context.Context, sqlDbID int64, job JobType) (*JobStatusQuintuple, error) {
	prefix, ok := jobColumnPrefix[job]
	if !ok {
		return nil, fmt.Errorf("store: unknown job type %q", job)
	}
	query := fmt.Sprintf(`
		SELECT %[1]s_status, %[1]s_task_id, %[1]s_log, %[1]s_start_time, %[1]s_end_time
		FROM sql_db WHERE id = ?`, prefix)
	row := s.db.QueryRowContext(ctx, query, sqlDbID)

	var q JobStatusQuintuple
	var status string
	if err := row.Scan(&status, &q.TaskID, &q.Log, &q.StartTime, &q.EndTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, srvErrors.NewConfigurationNotFoundError()
		}
		return nil, err
	}
	q.Status = JobStatus(status)
	return &q, nil
}
