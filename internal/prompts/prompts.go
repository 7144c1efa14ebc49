// Package prompts holds the built-in text/template prompt bodies bound to
// each pkg/agent.Role when a workspace doesn't override one.
package prompts

import "github.com/mptyl/thoth-sqlgen/pkg/agent"

// Default returns the built-in prompt template text for role, or "" if
// role has no built-in fallback (structurally required roles without one
// surface as a CRITICAL_ERROR through pkg/agent.Pool's Require* methods).
func Default(role agent.Role) string {
	return defaults[role]
}

var defaults = map[agent.Role]string{
	agent.RoleQuestionValidator: `You validate whether a natural-language question can plausibly be
answered with a single SQL query against a relational database.
Question: {{.Question}}
Reply with JSON: {"valid": true|false, "reason": "..."}`,

	agent.RoleQuestionTranslator: `Translate the following question from {{.OriginalLanguage}} to
{{.TargetLanguage}}, preserving its meaning exactly.
Question: {{.Question}}
Reply with JSON: {"translated": "..."}`,

	agent.RoleKeywordExtraction: `Extract the database-relevant keywords (entity names, column-like
terms, literal values) from this question.
Question: {{.Question}}
Reply with JSON: {"keywords": ["...", "..."]}`,

	agent.RoleSQLBasic: sqlGenTemplate,
	agent.RoleSQLAdvanced: sqlGenTemplate,
	agent.RoleSQLExpert:   sqlGenTemplate,

	agent.RoleTestGen1: `Given the question, schema and candidate SQL queries below, write test
assertions (as natural-language statements about the expected result)
that would distinguish a correct query from an incorrect one.
Question: {{.Question}}
Schema: {{.Schema}}
Candidates:
{{range .SQLs}}- {{.}}
{{end}}
Reply with JSON: {"tests": ["...", "..."]}`,

	agent.RoleTestGen2: `Given the question, schema and candidate SQL queries below, write
edge-case test assertions a naive query would miss (NULLs, duplicates,
empty results, off-by-one LIMIT/OFFSET).
Question: {{.Question}}
Schema: {{.Schema}}
Candidates:
{{range .SQLs}}- {{.}}
{{end}}
Reply with JSON: {"tests": ["...", "..."]}`,

	agent.RoleTestReducer: `The following test assertions were generated for the same question;
merge near-duplicates and drop any that are not independently checkable.
Tests:
{{range .Tests}}- {{.}}
{{end}}
Reply with JSON: {"answers": ["...", "..."]}`,

	agent.RoleTestEvaluator: `Evaluate whether candidate SQL queries satisfy the test assertions
below. Score each candidate's pass rate.
Reply with JSON: {"results": [{"candidate": 0, "pass_rate": 0.0}]}`,

	agent.RoleSQLExplainer: `Explain what the following SQL query does and why it answers the
question, in the same language the question was asked in.
Question: {{.Question}}
SQL: {{.SQL}}
Schema: {{.Schema}}
{{if .Evidence}}Evidence: {{.Evidence}}{{end}}
{{if .Directives}}Notes: {{.Directives}}{{end}}
Reply in plain prose, no JSON.`,

	agent.RoleAskHuman: `The pipeline could not proceed automatically and needs a human
decision. Summarize the situation and the options.
Question: {{.Question}}`,
}

const sqlGenTemplate = `Generate a single {{.DatabaseType}} SQL query that answers the question
below, using the {{.Method}} reasoning method.
Question: {{.Question}}
Schema: {{.Schema}}
{{if .Directives}}Notes: {{.Directives}}{{end}}
{{if .Evidence}}Evidence: {{.Evidence}}{{end}}
{{if .GoldSQLExamples}}Similar known-good queries:
{{.GoldSQLExamples}}{{end}}
Reply with JSON: {"sql": "..."}`
