// Package errors implements the taxonomy of typed, user-safe errors raised
// across the pipeline: LLM facade failures, DB/vector-store adapter
// failures, validation and configuration problems. Callers type-switch on
// the concrete error rather than inspecting strings.
package errors

import "fmt"

// Category classifies the origin of an error for routing and telemetry.
type Category string

const (
	CategoryConfiguration Category = "CONFIGURATION"
	CategoryDatabase      Category = "DATABASE"
	CategoryVectorDB      Category = "VECTOR_DB"
	CategoryAIAgent       Category = "AI_AGENT"
	CategoryValidation    Category = "VALIDATION"
	CategoryNetwork       Category = "NETWORK"
	CategoryAuthentication Category = "AUTHENTICATION"
	CategoryResource      Category = "RESOURCE"
	CategoryUserInput     Category = "USER_INPUT"
	CategoryInternal      Category = "INTERNAL"
)

// Severity ranks how an error should be surfaced.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityError    Severity = "ERROR"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Error is the common shape for every raised error in this module: a
// category, a severity, a message safe to show the end user, the technical
// detail for logs, an optional machine-readable code, and a context map for
// structured logging.
type Error struct {
	Category  Category
	Severity  Severity
	Message   string
	Detail    string
	Code      string
	Context   map[string]any
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Category, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newError(category Category, severity Severity, code, message, detail string) *Error {
	return &Error{Category: category, Severity: severity, Code: code, Message: message, Detail: detail}
}

// NewConfigurationNotFoundError reports a missing required configuration
// entry (workspace, model spec, agent slot).
func NewConfigurationNotFoundError() *Error {
	return newError(CategoryConfiguration, SeverityError, "configuration_not_found",
		"configuration not found", "")
}

// NewLSHUnavailableError reports a missing or unreadable LSH index for a
// SqlDb. LSH is a critical phase-3 dependency; its absence
// aborts the pipeline.
func NewLSHUnavailableError(sqlDbID string, detail string) *Error {
	return newError(CategoryInternal, SeverityCritical, "lsh_unavailable",
		"failed to extract schema using LSH", detail).WithContext("sql_db_id", sqlDbID)
}

// NewVectorDBUnavailableError reports the vector store being unreachable or
// unconfigured. Used both for critical paths (evidence/example retrieval)
// and degraded paths (column-description enrichment).
func NewVectorDBUnavailableError(detail string) *Error {
	return newError(CategoryVectorDB, SeverityError, "vector_db_unavailable",
		"vector store is unavailable", detail)
}

// NewVectorDBNotConfiguredError reports a backend named in config but with
// no Go client wired (Qdrant, Chroma, Milvus in this module).
func NewVectorDBNotConfiguredError(backend string) *Error {
	return newError(CategoryConfiguration, SeverityCritical, "vector_db_not_configured",
		fmt.Sprintf("vector store backend %q is not configured in this deployment", backend), "")
}

// NewCriticalDBError reports an unreachable or corrupted target database,
// signalled upstream by an adapter as CRITICAL_DB_ERROR.
func NewCriticalDBError(dialect, detail string) *Error {
	return newError(CategoryDatabase, SeverityCritical, "critical_db_error",
		"target database is unavailable", detail).WithContext("dialect", dialect)
}

// NewDialectUnsupportedError reports a dialect tag outside the closed set
// {postgresql,mysql,mariadb,sqlite,sqlserver,oracle}.
func NewDialectUnsupportedError(dialect string) *Error {
	return newError(CategoryConfiguration, SeverityError, "dialect_unsupported",
		fmt.Sprintf("unsupported SQL dialect %q", dialect), "")
}

// NewLLMError reports a provider-level failure, carrying the provider,
// model, and attempt number for retry bookkeeping.
func NewLLMError(provider, model string, attempt int, detail string) *Error {
	return newError(CategoryAIAgent, SeverityError, "llm_error",
		fmt.Sprintf("model %q (%s) failed on attempt %d", model, provider, attempt), detail).
		WithContext("provider", provider).WithContext("model", model).WithContext("attempt", attempt)
}

// NewProviderUnsupportedError reports an unrecognised LLM provider tag.
func NewProviderUnsupportedError(provider string) *Error {
	return newError(CategoryConfiguration, SeverityError, "provider_unsupported",
		fmt.Sprintf("unsupported LLM provider %q", provider), "")
}

// NewValidatorUnavailableError reports a workspace with no question
// validator agent configured — a required agent.
func NewValidatorUnavailableError() *Error {
	return newError(CategoryConfiguration, SeverityCritical, "validator_unavailable",
		"no question validator agent is configured", "")
}

// NewKeywordAgentMissingError reports a workspace with no keyword
// extraction agent configured — keywords are structurally required.
func NewKeywordAgentMissingError() *Error {
	return newError(CategoryConfiguration, SeverityCritical, "keyword_agent_missing",
		"no keyword extraction agent is configured", "")
}

// NewAgentMissingForLevelError reports a functionality level selected by
// the caller whose SQL-generation agent slot is unconfigured. This is
// always a CRITICAL_ERROR, never a silent fallback.
func NewAgentMissingForLevelError(level string) *Error {
	return newError(CategoryConfiguration, SeverityCritical, "agent_missing_for_level",
		fmt.Sprintf("no SQL generation agent configured for level %q", level), "")
}

// NewInvalidQuestionError reports a question the validator agent rejected.
func NewInvalidQuestionError(reason string) *Error {
	return newError(CategoryUserInput, SeverityError, "invalid_question",
		"the question could not be validated", reason)
}

// NewGenerationFailedError reports that every SQL candidate failed to
// produce anything usable, even at EXPERT level.
func NewGenerationFailedError(detail string) *Error {
	return newError(CategoryAIAgent, SeverityCritical, "generation_failed",
		"SQL generation failed at all functionality levels", detail)
}

// NewResourceExhaustedError reports a bounded resource (worker pool slot,
// rate limit) that could not be acquired within its deadline.
func NewResourceExhaustedError(resource string) *Error {
	return newError(CategoryResource, SeverityWarning, "resource_exhausted",
		fmt.Sprintf("%s is exhausted", resource), "")
}

// NewInternalError wraps an unexpected error as INTERNAL/CRITICAL.
func NewInternalError(detail string) *Error {
	return newError(CategoryInternal, SeverityCritical, "internal_error",
		"an internal error occurred", detail)
}
