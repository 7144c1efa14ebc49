package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	err := NewLSHUnavailableError("db-1", "index file missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INTERNAL")
	assert.Contains(t, err.Error(), "index file missing")
}

func TestWithContext(t *testing.T) {
	err := NewConfigurationNotFoundError().WithContext("workspace_id", "w1")
	assert.Equal(t, "w1", err.Context["workspace_id"])
}

func TestSeverityOfCriticalPaths(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
	}{
		{"lsh", NewLSHUnavailableError("db", "")},
		{"vector_not_configured", NewVectorDBNotConfiguredError("qdrant")},
		{"critical_db", NewCriticalDBError("postgresql", "connection refused")},
		{"validator_missing", NewValidatorUnavailableError()},
		{"keyword_missing", NewKeywordAgentMissingError()},
		{"agent_missing_for_level", NewAgentMissingForLevelError("Advanced")},
		{"generation_failed", NewGenerationFailedError("all candidates below threshold")},
		{"internal", NewInternalError("panic recovered")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, SeverityCritical, tc.err.Severity)
		})
	}
}

func TestRecoverableSeverities(t *testing.T) {
	assert.Equal(t, SeverityError, NewVectorDBUnavailableError("timeout").Severity)
	assert.Equal(t, SeverityWarning, NewResourceExhaustedError("sql worker pool").Severity)
}
