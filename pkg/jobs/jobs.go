package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mptyl/thoth-sqlgen/pkg/agent"
	"github.com/mptyl/thoth-sqlgen/pkg/jobs/worker"
)

// Status mirrors the RUNNING/COMPLETED/FAILED trio a SqlDb's comment jobs
// track.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Reporter receives incremental progress as a job works through its
// chunks; cmd/sqlgenctl's trackerReporter adapts pkg/progress.Tracker to
// it for the HTTP-visible progress keys readers poll.
type Reporter interface {
	Update(processed, failed, total int)
}

// noopReporter is used when a caller doesn't need progress tracking.
type noopReporter struct{}

func (noopReporter) Update(int, int, int) {}

// NoopReporter is a Reporter that discards every update.
var NoopReporter Reporter = noopReporter{}

// TableInfo is the minimal per-table input a table-comment job needs:
// enough to render the comment-generation prompt and report which table a
// failure belongs to.
type TableInfo struct {
	ID     int64
	Name   string
	Schema string // rendered column structure, e.g. from get_table_schema_safe
}

// ColumnInfo is the minimal per-column input a column-comment job needs.
type ColumnInfo struct {
	ID       int64
	Table    string
	Name     string
	DataType string
}

// CommentResult is one table or column's outcome.
type CommentResult struct {
	ID      int64
	Name    string
	Comment string
	Err     error
}

// tableCommentVars is the template payload for the table-comment agent.
type tableCommentVars struct {
	TableName   string
	TableSchema string
}

// columnCommentVars is the template payload for the column-comment agent.
type columnCommentVars struct {
	TableName  string
	ColumnName string
	DataType   string
}

type commentOutput struct {
	Comment string `json:"comment"`
}

// GenerateTableComments runs ag once per table, chunked by ChunkSize and
// fanned out across pool, reporting incremental progress to r.
func GenerateTableComments(ctx context.Context, pool *worker.Pool[CommentResult], ag *agent.Agent, tables []TableInfo, r Reporter) []CommentResult {
	if r == nil {
		r = NoopReporter
	}
	log := zap.S().Named("jobs.table_comments")
	total := len(tables)
	results := make([]CommentResult, 0, total)
	processed, failed := 0, 0

	for _, chunk := range Chunk(tables, ChunkSize) {
		futures := make([]*worker.Future[CommentResult], 0, len(chunk))
		for _, t := range chunk {
			t := t
			futures = append(futures, pool.Submit(func(ctx context.Context) (CommentResult, error) {
				return generateOneTableComment(ctx, ag, t)
			}))
		}
		for i, f := range futures {
			res := <-f.C()
			if res.Err != nil {
				res.Data = CommentResult{ID: chunk[i].ID, Name: chunk[i].Name, Err: res.Err}
			}
			if res.Data.Err != nil {
				failed++
				log.Warnw("table comment generation failed", "table", res.Data.Name, "error", res.Data.Err)
			} else {
				processed++
			}
			results = append(results, res.Data)
		}
		r.Update(processed, failed, total)
	}
	return results
}

func generateOneTableComment(ctx context.Context, ag *agent.Agent, t TableInfo) (CommentResult, error) {
	_, raw, err := ag.Run(ctx, tableCommentVars{TableName: t.Name, TableSchema: t.Schema}, 0.2, 0)
	if err != nil {
		return CommentResult{ID: t.ID, Name: t.Name, Err: err}, nil
	}
	var out commentOutput
	if err := agent.Decode(raw, &out); err != nil {
		return CommentResult{ID: t.ID, Name: t.Name, Err: fmt.Errorf("decode comment: %w", err)}, nil
	}
	return CommentResult{ID: t.ID, Name: t.Name, Comment: strings.TrimSpace(out.Comment)}, nil
}

// GenerateColumnComments runs ag once per column, fanned out across pool
// without chunking since a single table's columns are already a bounded
// batch.
func GenerateColumnComments(ctx context.Context, pool *worker.Pool[CommentResult], ag *agent.Agent, columns []ColumnInfo, r Reporter) []CommentResult {
	if r == nil {
		r = NoopReporter
	}
	log := zap.S().Named("jobs.column_comments")
	total := len(columns)
	results := make([]CommentResult, 0, total)
	processed, failed := 0, 0

	futures := make([]*worker.Future[CommentResult], 0, total)
	for _, c := range columns {
		c := c
		futures = append(futures, pool.Submit(func(ctx context.Context) (CommentResult, error) {
			return generateOneColumnComment(ctx, ag, c)
		}))
	}
	for i, f := range futures {
		res := <-f.C()
		if res.Err != nil {
			res.Data = CommentResult{ID: columns[i].ID, Name: columns[i].Name, Err: res.Err}
		}
		if res.Data.Err != nil {
			failed++
			log.Warnw("column comment generation failed", "column", res.Data.Name, "error", res.Data.Err)
		} else {
			processed++
		}
		results = append(results, res.Data)
		r.Update(processed, failed, total)
	}
	return results
}

func generateOneColumnComment(ctx context.Context, ag *agent.Agent, c ColumnInfo) (CommentResult, error) {
	_, raw, err := ag.Run(ctx, columnCommentVars{TableName: c.Table, ColumnName: c.Name, DataType: c.DataType}, 0.2, 0)
	if err != nil {
		return CommentResult{ID: c.ID, Name: c.Name, Err: err}, nil
	}
	var out commentOutput
	if err := agent.Decode(raw, &out); err != nil {
		return CommentResult{ID: c.ID, Name: c.Name, Err: fmt.Errorf("decode comment: %w", err)}, nil
	}
	return CommentResult{ID: c.ID, Name: c.Name, Comment: strings.TrimSpace(out.Comment)}, nil
}

// Summary aggregates a batch's outcome the way the Python tasks return
// {"status", "processed", "failed", "total"}.
type Summary struct {
	Status    Status
	Processed int
	Failed    int
	Total     int
	StartedAt time.Time
	EndedAt   time.Time
}

// Summarize reduces a CommentResult batch into its job-level Summary.
func Summarize(results []CommentResult, startedAt, endedAt time.Time) Summary {
	s := Summary{Total: len(results), StartedAt: startedAt, EndedAt: endedAt}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
		} else {
			s.Processed++
		}
	}
	if s.Failed == 0 {
		s.Status = StatusCompleted
	} else {
		s.Status = StatusFailed
	}
	return s
}
