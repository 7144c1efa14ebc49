package escalation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator/level"
)

func TestNextLevelChain(t *testing.T) {
	next, ok := NextLevel(level.Basic)
	require.True(t, ok)
	assert.Equal(t, level.Advanced, next)

	next, ok = NextLevel(level.Advanced)
	require.True(t, ok)
	assert.Equal(t, level.Expert, next)

	_, ok = NextLevel(level.Expert)
	assert.False(t, ok)
}

func TestShouldEscalateNeverPastExpert(t *testing.T) {
	escalate, _ := ShouldEscalate(level.Expert, &EvaluationResult{Status: "FAILED"}, 0)
	assert.False(t, escalate)
}

func TestShouldEscalateOnMaxAttempts(t *testing.T) {
	escalate, reason := ShouldEscalate(level.Basic, &EvaluationResult{Status: "OK"}, MaxAttemptsPerLevel)
	require.True(t, escalate)
	assert.Equal(t, ReasonAllFailedEvaluation, reason)
}

func TestShouldEscalateOnNilEvaluationResult(t *testing.T) {
	escalate, reason := ShouldEscalate(level.Basic, nil, 0)
	require.True(t, escalate)
	assert.Equal(t, ReasonNoSQLGenerated, reason)
}

func TestShouldEscalateCaseDBelowThreshold(t *testing.T) {
	escalate, reason := ShouldEscalate(level.Basic, &EvaluationResult{Status: "FAILED", BestPassRate: 0.5}, 0)
	require.True(t, escalate)
	assert.Equal(t, ReasonAllFailedEvaluation, reason)
}

func TestShouldEscalateCaseDAboveThresholdStillFailedStatusDoesNotEscalate(t *testing.T) {
	escalate, _ := ShouldEscalate(level.Basic, &EvaluationResult{Status: "FAILED", BestPassRate: 0.95}, 0)
	assert.False(t, escalate)
}

func TestShouldEscalateNoGeneratedSQLs(t *testing.T) {
	escalate, reason := ShouldEscalate(level.Basic, &EvaluationResult{Status: "OK"}, 0)
	require.True(t, escalate)
	assert.Equal(t, ReasonNoSQLGenerated, reason)
}

func TestShouldEscalateHealthyResultDoesNotEscalate(t *testing.T) {
	escalate, _ := ShouldEscalate(level.Basic, &EvaluationResult{Status: "OK", GeneratedSQLs: []string{"SELECT 1"}}, 0)
	assert.False(t, escalate)
}

func TestRenderContextIncludesAllSections(t *testing.T) {
	ctx := CreateContext(
		ReasonAllFailedEvaluation,
		level.Basic,
		"how many orders shipped?",
		[]string{"SELECT 1", "SELECT 2", "SELECT 3", "SELECT 4"},
		&EvaluationResult{Status: "FAILED", BestPassRate: 0.4, EvaluationCase: "D"},
		[]Record{{FromLevel: level.Basic, ToLevel: level.Advanced}},
	)
	rendered := ctx.RenderContext()

	assert.Contains(t, rendered, "ESCALATION CONTEXT:")
	assert.Contains(t, rendered, "Reason: all_sql_failed_evaluation")
	assert.Contains(t, rendered, "Previous Level: BASIC")
	assert.Contains(t, rendered, "Failed SQL Count: 4")
	assert.Contains(t, rendered, "... and 1 more")
	assert.Contains(t, rendered, "Evaluation Case D - insufficient pass rates")
	assert.Contains(t, rendered, "Previous Attempts: 1")
}

func TestHandleEscalatesAndBuildsStateUpdate(t *testing.T) {
	escalated, update := Handle(level.Basic, "q", []string{"SELECT 1"}, nil, 0, nil)
	require.True(t, escalated)
	assert.Equal(t, level.Advanced, update.NextLevel)
	assert.True(t, update.SetAdvancedFlag)
	assert.False(t, update.SetExpertFlag)
	assert.Equal(t, ReasonNoSQLGenerated, update.HistoryRecord.Reason)
	assert.Contains(t, update.EscalationContext, "ESCALATION CONTEXT:")
}

func TestHandleAtExpertNeverEscalates(t *testing.T) {
	escalated, update := Handle(level.Expert, "q", nil, nil, 0, nil)
	assert.False(t, escalated)
	assert.Equal(t, StateUpdate{}, update)
}

func TestHandleSetsExpertFlagWhenEscalatingFromAdvanced(t *testing.T) {
	escalated, update := Handle(level.Advanced, "q", nil, &EvaluationResult{Status: "OK"}, 0, nil)
	require.True(t, escalated)
	assert.True(t, update.SetExpertFlag)
	assert.False(t, update.SetAdvancedFlag)
}
