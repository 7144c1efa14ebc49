package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptyl/thoth-sqlgen/pkg/evaluator"
	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator"
	"github.com/mptyl/thoth-sqlgen/pkg/store"
)

func TestWriteThothLogThenList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wsID, err := s.Workspace().Create(ctx, store.Workspace{Name: "alameda", DBName: "schools", Language: "en"})
	require.NoError(t, err)
	workspaceID := "1"
	_ = wsID

	started := time.Now().UTC().Add(-time.Second)
	ended := time.Now().UTC()
	entry := orchestrator.ThothLogEntry{
		Question:       "How many schools are in Alameda county?",
		SQL:            "SELECT COUNT(*) FROM schools WHERE county = 'Alameda'",
		WorkspaceID:    workspaceID,
		Username:       "tester",
		StartedAt:      started,
		EndedAt:        ended,
		AgentUsed:      "sql_basic",
		PassRate:       1.0,
		EvaluationCase: evaluator.CaseA,
		Status:         orchestrator.StatusGold,
	}

	require.NoError(t, s.ThothLog().WriteThothLog(entry))

	records, err := s.ThothLog().List(ctx, workspaceID, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entry.Question, records[0].Question)
	assert.Equal(t, entry.SQL, records[0].SQL)
	assert.Equal(t, string(evaluator.CaseA), records[0].EvaluationCase)
	assert.Equal(t, string(orchestrator.StatusGold), records[0].SQLStatus)
}
