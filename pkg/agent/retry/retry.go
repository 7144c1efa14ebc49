// Package retry builds structured retry messages fed back into a
// generation agent after a candidate SQL fails evaluation, execution, or
// validation. The message format and category-specific guidance are
// ported from this pipeline's original retry-formatting helper (see
// DESIGN.md), kept verbatim in structure and content so that prompts
// already tuned against these exact strings keep working.
package retry

import (
	"fmt"
	"strings"
)

// Category classifies why a candidate is being retried.
type Category string

const (
	CategorySyntaxError       Category = "SYNTAX_ERROR"
	CategoryValidationFailed  Category = "VALIDATION_FAILED"
	CategoryExecutionError    Category = "EXECUTION_ERROR"
	CategoryEmptyResult       Category = "EMPTY_RESULT"
	CategorySchemaError       Category = "SCHEMA_ERROR"
	CategoryEvidenceMismatch  Category = "EVIDENCE_MISMATCH"
)

// CheckResult is one named validation outcome (spec-agnostic: the
// generation pipeline's own unit-test-style evaluation checks).
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// EvidenceSummary carries the STRICT/WEAK/IRRELEVANT evidence
// classification counts surfaced by the evaluator.
type EvidenceSummary struct {
	Strict     *int
	Weak       *int
	Irrelevant *int
}

// Context is the payload used to render a retry message.
type Context struct {
	SQL               string
	DBType            string
	Question          string
	RetryCount        int
	ErrorMessage      string
	ValidationResults []CheckResult
	FailedTests       []string
	EvidenceSummary   *EvidenceSummary
	ExplainError      string
	AvailableTables   []string
	AdditionalHints   []string
	PreviousErrors    []string
}

// RenderErrorDetail returns the best available error description.
func (c Context) RenderErrorDetail() string {
	if c.ErrorMessage != "" {
		return c.ErrorMessage
	}
	if c.ExplainError != "" {
		return c.ExplainError
	}
	return "Validation failed without extra detail"
}

// AttemptNumber returns a 1-indexed attempt counter for human-readable
// messages.
func (c Context) AttemptNumber() int { return c.RetryCount + 1 }

// FormattedDBLabel returns the upper-cased database type, or "UNKNOWN".
func (c Context) FormattedDBLabel() string {
	if c.DBType == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(c.DBType)
}

const topSection = "MODEL_RETRY::%s\nAttempt: %d\nDatabase: %s\n"

// FormatError renders the full structured retry message for category and
// context, ready to feed back into the generation agent.
func FormatError(category Category, ctx Context) string {
	var sections []string

	sections = append(sections, fmt.Sprintf(topSection, category, ctx.AttemptNumber(), ctx.FormattedDBLabel()))

	if ctx.Question != "" {
		sections = append(sections, formatBlock("User Question", ctx.Question))
	}
	if ctx.SQL != "" {
		sections = append(sections, formatSQL(ctx.SQL))
	}

	sections = append(sections, formatBlock("Primary Issue", ctx.RenderErrorDetail()))

	if section := renderCategorySection(category, ctx); section != "" {
		sections = append(sections, section)
	}

	if len(ctx.PreviousErrors) > 0 {
		prev := ctx.PreviousErrors
		if len(prev) > 5 {
			prev = prev[len(prev)-5:]
		}
		var b strings.Builder
		for i, item := range prev {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("- " + item)
		}
		sections = append(sections, formatBlock("Previous Attempts", b.String()))
	}

	if guidance := buildGuidance(category, ctx); len(guidance) > 0 {
		sections = append(sections, formatListBlock("Action Items", guidance))
	}

	var nonEmpty []string
	for _, s := range sections {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.TrimSpace(strings.Join(nonEmpty, "\n\n"))
}

// BuildHistoryEntry renders a one-line summary of this retry for the
// escalation context's previous-attempts trail.
func BuildHistoryEntry(category Category, ctx Context) string {
	detail := strings.TrimSpace(strings.ReplaceAll(ctx.RenderErrorDetail(), "\n", " "))
	if len(detail) > 160 {
		detail = detail[:157] + "..."
	}
	return fmt.Sprintf("Attempt %d · %s: %s", ctx.AttemptNumber(), category, detail)
}

func formatBlock(title, content string) string {
	clean := strings.TrimSpace(content)
	if clean == "" {
		return ""
	}
	return fmt.Sprintf("%s:\n  %s", title, strings.ReplaceAll(clean, "\n", "\n  "))
}

func formatListBlock(title string, items []string) string {
	var rows []string
	for _, item := range items {
		if item != "" {
			rows = append(rows, strings.TrimSpace(item))
		}
	}
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  - " + row)
	}
	return fmt.Sprintf("%s:\n%s", title, b.String())
}

func formatSQL(sql string) string {
	if strings.TrimSpace(sql) == "" {
		return ""
	}
	return fmt.Sprintf("Candidate SQL:\n```sql\n%s\n```", strings.TrimSpace(sql))
}

func renderCategorySection(category Category, ctx Context) string {
	switch category {
	case CategoryValidationFailed:
		return renderValidationSection(ctx)
	case CategoryExecutionError:
		return renderExecutionSection(ctx)
	case CategoryEmptyResult:
		return renderEmptyResultSection(ctx)
	case CategorySyntaxError:
		return renderSyntaxSection(ctx)
	case CategoryEvidenceMismatch:
		return renderEvidenceSection(ctx)
	default:
		return ""
	}
}

func renderValidationSection(ctx Context) string {
	if len(ctx.ValidationResults) == 0 {
		return ""
	}
	var lines []string
	var failed, passed []CheckResult
	for _, r := range ctx.ValidationResults {
		if r.Passed {
			passed = append(passed, r)
		} else {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		lines = append(lines, "Failed Checks:")
		for i, item := range failed {
			name := item.Name
			if name == "" {
				name = fmt.Sprintf("Test %d", i+1)
			}
			detail := item.Detail
			if detail == "" {
				detail = "Validation failed"
			}
			lines = append(lines, fmt.Sprintf("  • %s: %s", name, detail))
		}
	}
	if len(passed) > 0 {
		lines = append(lines, "Passed Checks:")
		lines = append(lines, fmt.Sprintf("  • %d validations succeeded", len(passed)))
	}
	return strings.Join(lines, "\n")
}

func renderExecutionSection(ctx Context) string {
	detail := strings.ToLower(ctx.RenderErrorDetail())
	var hints []string
	switch {
	case strings.Contains(detail, "does not exist") && strings.Contains(detail, "column"):
		hints = []string{
			"Verify column names and aliases",
			"Ensure all referenced tables expose the column",
			"Check case sensitivity requirements",
		}
	case strings.Contains(detail, "does not exist") && strings.Contains(detail, "table"):
		hints = []string{
			"Confirm table name and schema prefix",
			"Ensure table is available in workspace",
			"Check spelling of identifiers",
		}
	case strings.Contains(detail, "syntax") || strings.Contains(detail, "parse"):
		hints = []string{
			"Review clause ordering (SELECT → FROM → WHERE → GROUP BY → ORDER BY)",
			"Check for missing commas or parentheses",
			"Ensure quotes match and strings are terminated",
		}
	case strings.Contains(detail, "group by"):
		hints = []string{
			"Every SELECT column must be aggregated or appear in GROUP BY",
			"Avoid using aliases not defined before GROUP BY",
			"Validate aggregate expressions",
		}
	case strings.Contains(detail, "join"):
		hints = []string{
			"Verify join predicates reference existing columns",
			"Check join type and ensure ON clause is present",
			"Confirm aliases are defined",
		}
	default:
		hints = []string{
			"Run simplified version of the query to isolate the issue",
			"Check data types used in comparisons and functions",
			"Ensure database-specific functions are correct",
		}
	}
	return formatListBlock("Debugging Tips", hints)
}

func renderEmptyResultSection(ctx Context) string {
	hints := []string{
		"Relax restrictive WHERE filters",
		"Verify JOIN predicates do not exclude all rows",
		"Check date ranges against available data",
		"Inspect underlying tables with COUNT(*)",
	}
	if len(ctx.AvailableTables) > 0 {
		shown := ctx.AvailableTables
		suffix := ""
		if len(shown) > 6 {
			shown = shown[:6]
			suffix = " …"
		}
		hints = append(hints, fmt.Sprintf("Tables available: %s%s", strings.Join(shown, ", "), suffix))
	}
	return formatListBlock("Investigation Steps", hints)
}

func renderSyntaxSection(ctx Context) string {
	hints := []string{
		"Confirm clause order (SELECT, FROM, WHERE, GROUP BY, HAVING, ORDER BY)",
		"Ensure identifiers are quoted for the target database",
		"Replace LIMIT/OFFSET with database-specific equivalents if needed",
	}
	dbType := strings.ToLower(ctx.DBType)
	if dbType == "sqlserver" || dbType == "mssql" {
		hints = append(hints, "Use TOP n or OFFSET … FETCH syntax instead of LIMIT")
	}
	if dbType == "oracle" {
		hints = append(hints, "Consider FETCH FIRST n ROWS ONLY or ROWNUM filters")
	}
	return formatListBlock("Syntax Guidance", hints)
}

func renderEvidenceSection(ctx Context) string {
	var lines []string
	if len(ctx.FailedTests) > 0 {
		lines = append(lines, "Evidence Constraints Violated:")
		for _, entry := range ctx.FailedTests {
			lines = append(lines, "  • "+entry)
		}
	}
	if ctx.EvidenceSummary != nil {
		var parts []string
		if v := ctx.EvidenceSummary.Strict; v != nil {
			parts = append(parts, fmt.Sprintf("STRICT=%d", *v))
		}
		if v := ctx.EvidenceSummary.Weak; v != nil {
			parts = append(parts, fmt.Sprintf("WEAK=%d", *v))
		}
		if v := ctx.EvidenceSummary.Irrelevant; v != nil {
			parts = append(parts, fmt.Sprintf("IRRELEVANT=%d", *v))
		}
		if len(parts) > 0 {
			lines = append(lines, "Classification: "+strings.Join(parts, ", "))
		}
	}
	return strings.Join(lines, "\n")
}

func buildGuidance(category Category, ctx Context) []string {
	if len(ctx.AdditionalHints) > 0 {
		return ctx.AdditionalHints
	}
	switch category {
	case CategoryValidationFailed:
		return []string{
			"Address each failed validation before resubmitting",
			"Keep passing checks intact while fixing issues",
			"Double-check join logic and filters mentioned above",
		}
	case CategoryExecutionError:
		return []string{
			"Run simplified snippets locally to narrow the failure",
			"Validate object names against the schema supplied",
			"Ensure functions and operators match the database dialect",
		}
	case CategoryEmptyResult:
		return []string{
			"Ensure the question truly expects existing data",
			"Relax filters and rebuild to reach non-empty result",
			"Confirm referenced tables contain data in the time range",
		}
	case CategorySyntaxError:
		return []string{
			"Fix the syntax issue identified above",
			"Re-run EXPLAIN to validate the updated query",
			"Keep result columns aligned with the question",
		}
	case CategoryEvidenceMismatch:
		return []string{
			"Apply each STRICT requirement exactly as described",
			"Capture key filters or aggregations from evidence",
			"Re-evaluate unit tests mentally before resubmitting",
		}
	default:
		return nil
	}
}
