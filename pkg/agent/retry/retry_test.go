package retry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatErrorIncludesTopSectionAndQuestion(t *testing.T) {
	ctx := Context{
		Question:     "How many orders shipped last week?",
		SQL:          "SELECT 1",
		DBType:       "postgresql",
		RetryCount:   1,
		ErrorMessage: "column \"foo\" does not exist",
	}
	out := FormatError(CategoryExecutionError, ctx)

	assert.Contains(t, out, "MODEL_RETRY::EXECUTION_ERROR")
	assert.Contains(t, out, "Attempt: 2")
	assert.Contains(t, out, "Database: POSTGRESQL")
	assert.Contains(t, out, "User Question")
	assert.Contains(t, out, "Candidate SQL")
	assert.Contains(t, out, "```sql")
	assert.Contains(t, out, "Verify column names and aliases")
}

func TestFormatErrorValidationFailedSection(t *testing.T) {
	ctx := Context{
		SQL:    "SELECT 1",
		DBType: "mysql",
		ValidationResults: []CheckResult{
			{Name: "row_count", Passed: false, Detail: "expected 3, got 0"},
			{Name: "column_order", Passed: true},
		},
	}
	out := FormatError(CategoryValidationFailed, ctx)

	assert.Contains(t, out, "Failed Checks:")
	assert.Contains(t, out, "row_count: expected 3, got 0")
	assert.Contains(t, out, "Passed Checks:")
	assert.Contains(t, out, "1 validations succeeded")
	assert.Contains(t, out, "Address each failed validation before resubmitting")
}

func TestFormatErrorSyntaxSectionAddsDialectHints(t *testing.T) {
	out := FormatError(CategorySyntaxError, Context{DBType: "sqlserver", ErrorMessage: "syntax error near LIMIT"})
	assert.Contains(t, out, "Use TOP n or OFFSET")

	out = FormatError(CategorySyntaxError, Context{DBType: "oracle", ErrorMessage: "syntax error"})
	assert.Contains(t, out, "FETCH FIRST n ROWS ONLY")
}

func TestFormatErrorEvidenceMismatchSection(t *testing.T) {
	strict, weak := 2, 1
	ctx := Context{
		FailedTests:     []string{"must filter by region = 'EU'"},
		EvidenceSummary: &EvidenceSummary{Strict: &strict, Weak: &weak},
	}
	out := FormatError(CategoryEvidenceMismatch, ctx)
	assert.Contains(t, out, "Evidence Constraints Violated:")
	assert.Contains(t, out, "must filter by region = 'EU'")
	assert.Contains(t, out, "STRICT=2, WEAK=1")
}

func TestFormatErrorTruncatesPreviousErrorsToLastFive(t *testing.T) {
	prev := []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7"}
	out := FormatError(CategoryExecutionError, Context{ErrorMessage: "x", PreviousErrors: prev})
	assert.NotContains(t, out, "- e1\n")
	assert.Contains(t, out, "- e7")
	assert.Contains(t, out, "- e3")
}

func TestFormatErrorAdditionalHintsOverrideDefaults(t *testing.T) {
	ctx := Context{ErrorMessage: "x", AdditionalHints: []string{"custom hint one"}}
	out := FormatError(CategoryValidationFailed, ctx)
	assert.Contains(t, out, "custom hint one")
	assert.NotContains(t, out, "Address each failed validation before resubmitting")
}

func TestBuildHistoryEntryTruncatesLongDetail(t *testing.T) {
	long := strings.Repeat("x", 300)
	entry := BuildHistoryEntry(CategoryExecutionError, Context{RetryCount: 0, ErrorMessage: long})
	require.Contains(t, entry, "Attempt 1 · EXECUTION_ERROR:")
	assert.True(t, strings.HasSuffix(entry, "..."))
	assert.LessOrEqual(t, len(entry), 200)
}

func TestFormattedDBLabelDefaultsToUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", Context{}.FormattedDBLabel())
}

func TestRenderErrorDetailFallsBackToExplainError(t *testing.T) {
	ctx := Context{ExplainError: "EXPLAIN failed: bad plan"}
	assert.Equal(t, "EXPLAIN failed: bad plan", ctx.RenderErrorDetail())
}
