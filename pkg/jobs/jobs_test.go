package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptyl/thoth-sqlgen/pkg/agent"
	"github.com/mptyl/thoth-sqlgen/pkg/jobs/worker"
	"github.com/mptyl/thoth-sqlgen/pkg/llm"
)

func TestChunkSplitsIntoBoundedGroups(t *testing.T) {
	ids := make([]int, 23)
	for i := range ids {
		ids[i] = i
	}
	chunks := Chunk(ids, ChunkSize)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 10)
	assert.Len(t, chunks[1], 10)
	assert.Len(t, chunks[2], 3)
}

func TestChunkEmptyInputReturnsNil(t *testing.T) {
	assert.Nil(t, Chunk[int](nil, ChunkSize))
}

type fakeCommentClient struct{}

func (fakeCommentClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Content: `{"comment":"holds customer order rows"}`}, nil
}
func (fakeCommentClient) CountTokens(text string) int { return len(text) / 4 }

type recordingReporter struct {
	calls [][3]int
}

func (r *recordingReporter) Update(processed, failed, total int) {
	r.calls = append(r.calls, [3]int{processed, failed, total})
}

func TestGenerateTableCommentsChunksAndReportsProgress(t *testing.T) {
	ag, err := agent.New(agent.RoleSQLExplainer, fakeCommentClient{}, "table: {{.TableName}}", nil)
	require.NoError(t, err)

	pool := worker.NewPool[CommentResult](4)
	defer pool.Close()

	tables := make([]TableInfo, 12)
	for i := range tables {
		tables[i] = TableInfo{ID: int64(i), Name: "t"}
	}

	rep := &recordingReporter{}
	results := GenerateTableComments(context.Background(), pool, ag, tables, rep)

	require.Len(t, results, 12)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, "holds customer order rows", r.Comment)
	}
	require.Len(t, rep.calls, 2)
	assert.Equal(t, [3]int{12, 0, 12}, rep.calls[1])
}

func TestGenerateColumnCommentsReportsEachColumn(t *testing.T) {
	ag, err := agent.New(agent.RoleSQLExplainer, fakeCommentClient{}, "column: {{.ColumnName}}", nil)
	require.NoError(t, err)

	pool := worker.NewPool[CommentResult](2)
	defer pool.Close()

	cols := []ColumnInfo{{ID: 1, Table: "orders", Name: "id"}, {ID: 2, Table: "orders", Name: "total"}}
	rep := &recordingReporter{}
	results := GenerateColumnComments(context.Background(), pool, ag, cols, rep)

	require.Len(t, results, 2)
	require.Len(t, rep.calls, 2)
	assert.Equal(t, [3]int{2, 0, 2}, rep.calls[1])
}

func TestSummarizeReportsFailedStatusOnAnyError(t *testing.T) {
	results := []CommentResult{{ID: 1}, {ID: 2, Err: assertErr{}}}
	start := time.Unix(0, 0)
	end := start.Add(time.Second)
	s := Summarize(results, start, end)
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, 1, s.Processed)
	assert.Equal(t, 1, s.Failed)
}

func TestSummarizeAllSuccessIsCompleted(t *testing.T) {
	s := Summarize([]CommentResult{{ID: 1}, {ID: 2}}, time.Time{}, time.Time{})
	assert.Equal(t, StatusCompleted, s.Status)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
