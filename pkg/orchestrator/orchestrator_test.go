package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptyl/thoth-sqlgen/pkg/agent"
	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
	"github.com/mptyl/thoth-sqlgen/pkg/llm"
	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator/level"
	"github.com/mptyl/thoth-sqlgen/pkg/schema/lsh"
)

type fakeClient struct {
	content string
}

func (f *fakeClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Content: f.content}, nil
}
func (f *fakeClient) CountTokens(text string) int { return len(text) / 4 }

func newFakeAgent(t *testing.T, role agent.Role, content string) *agent.Agent {
	t.Helper()
	a, err := agent.New(role, &fakeClient{content: content}, "{{.Question}}", nil)
	require.NoError(t, err)
	return a
}

type fakeManager struct{}

func (fakeManager) IntrospectTables(ctx context.Context) ([]dbadapter.TableInfo, error) {
	return []dbadapter.TableInfo{{Name: "orders"}}, nil
}
func (fakeManager) IntrospectColumns(ctx context.Context, table string) ([]dbadapter.ColumnInfo, error) {
	return []dbadapter.ColumnInfo{{Table: table, Name: "id", IsPrimary: true}}, nil
}
func (fakeManager) IntrospectForeignKeys(ctx context.Context) ([]dbadapter.ForeignKey, error) {
	return nil, nil
}
func (fakeManager) GetTableSchema(ctx context.Context, table string) (string, error) { return "", nil }
func (fakeManager) GetExampleData(ctx context.Context, table string, k int) (map[string][]string, error) {
	return nil, nil
}
func (fakeManager) ExecutePaginated(ctx context.Context, sql string, page, pageSize int, sort *dbadapter.SortModel, filter *dbadapter.FilterModel) (dbadapter.PaginatedResult, error) {
	return dbadapter.PaginatedResult{}, nil
}
func (fakeManager) HealthCheck(ctx context.Context) bool { return true }
func (fakeManager) Close() error                         { return nil }

func basePool(t *testing.T) *agent.Pool {
	t.Helper()
	pool := agent.NewPool()
	pool.Set(newFakeAgent(t, agent.RoleQuestionValidator, `{"is_valid":true,"message":"","original_language":""}`))
	pool.Set(newFakeAgent(t, agent.RoleKeywordExtraction, `{"keywords":["orders"]}`))
	pool.Set(newFakeAgent(t, agent.RoleSQLBasic, `{"sql":"SELECT * FROM orders","thinking":"","success":true}`))
	pool.Set(newFakeAgent(t, agent.RoleTestGen1, `{"thinking":"","answers":["orders has rows"]}`))
	pool.Set(newFakeAgent(t, agent.RoleTestEvaluator, `{"thinking":"","answers":["Test #1: OK"]}`))
	return pool
}

func drain(ch <-chan Frame) []Frame {
	var frames []Frame
	for f := range ch {
		frames = append(frames, f)
	}
	return frames
}

func kinds(frames []Frame) []FrameKind {
	out := make([]FrameKind, len(frames))
	for i, f := range frames {
		out[i] = f.Kind
	}
	return out
}

func TestRunSucceedsWithSingleCandidateCaseA(t *testing.T) {
	deps := Deps{
		Agents:     basePool(t),
		DBManager:  fakeManager{},
		LSHIndex:   lsh.NewIndex(),
		ThothLog:   nil,
	}
	req := Request{
		RequestID:          "req-1",
		Question:           "how many orders are there",
		WorkspaceID:        "ws-1",
		Dialect:            "sqlite",
		FunctionalityLevel: level.Basic,
		NumCandidates:      1,
	}

	frames := drain(Run(context.Background(), deps, req))
	require.NotEmpty(t, frames)

	ks := kinds(frames)
	assert.Contains(t, ks, FrameKeywords)
	assert.Contains(t, ks, FrameSQLCandidates)
	assert.Contains(t, ks, FrameSQLReady)
	assert.NotContains(t, ks, FrameCriticalError)

	var ready sqlReadyPayload
	for _, f := range frames {
		if f.Kind == FrameSQLReady {
			ready = f.JSON.(sqlReadyPayload)
		}
	}
	assert.Equal(t, "GOLD", ready.SQLStatus)
	assert.True(t, ready.IsGold)
}

func TestRunEmitsCriticalErrorOnInvalidQuestion(t *testing.T) {
	pool := basePool(t)
	pool.Set(newFakeAgent(t, agent.RoleQuestionValidator, `{"is_valid":false,"message":"question is nonsense","original_language":""}`))

	deps := Deps{Agents: pool, DBManager: fakeManager{}, LSHIndex: lsh.NewIndex()}
	req := Request{Question: "???", FunctionalityLevel: level.Basic, NumCandidates: 1}

	frames := drain(Run(context.Background(), deps, req))
	require.Len(t, frames, 1)
	assert.Equal(t, FrameCriticalError, frames[0].Kind)
}

func TestRunEmitsCancelledOnAlreadyCancelledContext(t *testing.T) {
	deps := Deps{Agents: basePool(t), DBManager: fakeManager{}, LSHIndex: lsh.NewIndex()}
	req := Request{Question: "how many orders", FunctionalityLevel: level.Basic, NumCandidates: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frames := drain(Run(ctx, deps, req))
	require.Len(t, frames, 1)
	assert.Equal(t, FrameCancelled, frames[0].Kind)
}

func TestRunEmitsCriticalErrorWhenKeywordAgentMissing(t *testing.T) {
	pool := agent.NewPool()
	pool.Set(newFakeAgent(t, agent.RoleQuestionValidator, `{"is_valid":true,"message":"","original_language":""}`))

	deps := Deps{Agents: pool, DBManager: fakeManager{}, LSHIndex: lsh.NewIndex()}
	req := Request{Question: "how many orders", FunctionalityLevel: level.Basic, NumCandidates: 1}

	frames := drain(Run(context.Background(), deps, req))
	require.Len(t, frames, 2)
	assert.Equal(t, FrameThothLog, frames[0].Kind)
	assert.Equal(t, FrameCriticalError, frames[1].Kind)
}
