package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptyl/thoth-sqlgen/pkg/llm"
	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator/level"
)

func TestMethodForCandidateRotates(t *testing.T) {
	assert.Equal(t, MethodQueryPlan, MethodForCandidate(0))
	assert.Equal(t, MethodStepByStep, MethodForCandidate(1))
	assert.Equal(t, MethodDivideAndConquer, MethodForCandidate(2))
	assert.Equal(t, MethodQueryPlan, MethodForCandidate(3))
}

func TestTemperatureForCandidateSingleCandidateIsFixed(t *testing.T) {
	assert.Equal(t, 0.5, TemperatureForCandidate(0, 1))
}

func TestTemperatureForCandidateRotatesThroughBands(t *testing.T) {
	assert.Equal(t, 0.1, TemperatureForCandidate(0, 6))
	assert.Equal(t, 0.5, TemperatureForCandidate(1, 6))
	assert.Equal(t, 0.8, TemperatureForCandidate(2, 6))
	assert.Equal(t, 0.2, TemperatureForCandidate(3, 6))
}

type fakeClient struct {
	lastReq llm.Request
	resp    llm.Response
	err     error
}

func (f *fakeClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	f.lastReq = req
	return f.resp, f.err
}
func (f *fakeClient) CountTokens(text string) int { return len(text) / 4 }

func TestAgentRunRendersTemplateAndCallsClient(t *testing.T) {
	client := &fakeClient{resp: llm.Response{Content: `{"ok":true}`}}
	a, err := New(RoleSQLBasic, client, "Question: {{.Question}}", struct{ OK bool }{})
	require.NoError(t, err)

	resp, raw, err := a.Run(context.Background(), struct{ Question string }{"how many orders?"}, 0.5, 500)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Content)
	assert.Contains(t, client.lastReq.Messages[0].Content, "how many orders?")

	var out struct{ OK bool }
	require.NoError(t, Decode(raw, &out))
	assert.True(t, out.OK)
}

func TestPoolRequireValidatorMissing(t *testing.T) {
	p := NewPool()
	_, err := p.RequireValidator()
	require.Error(t, err)
}

func TestPoolRequireSQLAgentForConfiguredLevel(t *testing.T) {
	p := NewPool()
	client := &fakeClient{}
	a, err := New(RoleSQLAdvanced, client, "x", nil)
	require.NoError(t, err)
	p.Set(a)

	got, err := p.RequireSQLAgent(level.Advanced)
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = p.RequireSQLAgent(level.Expert)
	require.Error(t, err)
}

func TestPoolTestGenerators(t *testing.T) {
	p := NewPool()
	client := &fakeClient{}
	a1, _ := New(RoleTestGen1, client, "x", nil)
	p.Set(a1)

	gens := p.TestGenerators()
	require.Len(t, gens, 1)
	assert.Same(t, a1, gens[0])
}
