package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator"
)

// ThothLogStore persists one row per finished run, implementing
// pkg/orchestrator.ThothLogWriter.
type ThothLogStore struct {
	db queryer
}

func newThothLogStore(db queryer) *ThothLogStore {
	return &ThothLogStore{db: db}
}

const queryInsertThothLog = `
	INSERT INTO thoth_log (
		question, sql, workspace_id, username, started_at, ended_at,
		agent_used, pass_rate, evaluation_case, sql_status, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// WriteThothLog implements pkg/orchestrator.ThothLogWriter. It is called
// once per finished run, successful or not, so the background context is
// used rather than the (by then possibly cancelled) run context.
func (s *ThothLogStore) WriteThothLog(entry orchestrator.ThothLogEntry) error {
	_, err := s.db.ExecContext(context.Background(), queryInsertThothLog,
		entry.Question, entry.SQL, entry.WorkspaceID, entry.Username,
		entry.StartedAt, entry.EndedAt, entry.AgentUsed, entry.PassRate,
		string(entry.EvaluationCase), string(entry.Status), entry.ErrorMessage)
	return err
}

// ThothLogRecord is a persisted ThothLog row as read back by List.
type ThothLogRecord struct {
	ID             int64
	Question       string
	SQL            string
	WorkspaceID    string
	Username       string
	StartedAt      time.Time
	EndedAt        time.Time
	AgentUsed      string
	PassRate       float64
	EvaluationCase string
	SQLStatus      string
	ErrorMessage   string
}

const queryListThothLogByWorkspace = `
	SELECT id, question, sql, workspace_id, username, started_at, ended_at,
		agent_used, pass_rate, evaluation_case, sql_status, error_message
	FROM thoth_log WHERE workspace_id = ? ORDER BY started_at DESC LIMIT ?`

// List returns the most recent runs for a workspace, most recent first.
func (s *ThothLogStore) List(ctx context.Context, workspaceID string, limit int) ([]ThothLogRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryListThothLogByWorkspace, workspaceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ThothLogRecord
	for rows.Next() {
		var r ThothLogRecord
		var startedAt, endedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.Question, &r.SQL, &r.WorkspaceID, &r.Username,
			&startedAt, &endedAt, &r.AgentUsed, &r.PassRate, &r.EvaluationCase,
			&r.SQLStatus, &r.ErrorMessage); err != nil {
			return nil, err
		}
		r.StartedAt = startedAt.Time
		r.EndedAt = endedAt.Time
		records = append(records, r)
	}
	return records, rows.Err()
}
