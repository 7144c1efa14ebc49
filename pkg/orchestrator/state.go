package orchestrator

import (
	"time"

	"github.com/mptyl/thoth-sqlgen/pkg/escalation"
	"github.com/mptyl/thoth-sqlgen/pkg/evaluator"
	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator/level"
	"github.com/mptyl/thoth-sqlgen/pkg/schema"
)

// SQLStatus is the outcome a run's chosen SQL is stamped with.
type SQLStatus string

const (
	StatusGold   SQLStatus = "GOLD"
	StatusSilver SQLStatus = "SILVER"
	StatusFailed SQLStatus = "FAILED"
)

// Flags carries the per-request client flags a /generate-sql call sets.
type Flags struct {
	ExplainGeneratedQuery bool
}

// Request is what a caller (pkg/httpapi) hands the orchestrator to start
// a run.
type Request struct {
	RequestID          string
	Question           string
	WorkspaceID         string
	DBName              string
	Dialect              string
	FunctionalityLevel  level.Level
	Flags                Flags
	Username             string
	WorkspaceLanguage    string
	NumCandidates        int
}

// SystemState is the per-request value the orchestrator builds and
// mutates across phases. Service handles (DB/vector-store
// managers, agent pool) are threaded through Deps instead of living on
// state, since in Go they are interface values supplied once per run
// rather than rebuilt per phase.
type SystemState struct {
	// immutable request fields
	Question           string
	OriginalQuestion    string
	OriginalLanguage    string
	WorkspaceID          string
	FunctionalityLevel  level.Level
	Flags                Flags
	Username             string
	StartedAt            time.Time

	// mutable semantic fields
	Keywords             []string
	Evidence             []string
	SQLDocuments         []string
	SimilarColumns       []schema.SimilarColumn
	SchemaWithExamples   *schema.ProjectedSchema
	SchemaFromVectorDB   bool
	FullMSchema          string
	ReducedMSchema       string
	UsedMSchema          string
	Directives           string

	// generation fields
	GeneratedSQLs              []string
	GeneratedTests             [][]string
	FilteredTests              []string
	TestAnswers                []evaluator.CandidateEvaluation
	EvaluationResults          []string
	LastSQL                    string
	SQLExplanation             string

	// execution bookkeeping
	SQLStatus                     SQLStatus
	EvaluationCase                evaluator.Case
	PassRates                     map[string]float64
	SQLGenerationFailureMessage   string
	EscalationHistory              []escalation.Record

	// per-candidate attempt bookkeeping at the current level, reset on
	// escalation
	AttemptCount int
}

// newState seeds a SystemState from an incoming Request.
func newState(req Request) *SystemState {
	return &SystemState{
		Question:           req.Question,
		OriginalQuestion:   req.Question,
		WorkspaceID:        req.WorkspaceID,
		FunctionalityLevel: req.FunctionalityLevel,
		Flags:              req.Flags,
		Username:           req.Username,
		StartedAt:          time.Now(),
		PassRates:          make(map[string]float64),
	}
}

// ThothLogEntry is the persisted-run summary of the ThothLog entity.
type ThothLogEntry struct {
	Question        string
	SQL             string
	WorkspaceID     string
	Username        string
	StartedAt       time.Time
	EndedAt         time.Time
	AgentUsed       string
	PassRate        float64
	EvaluationCase  evaluator.Case
	Status          SQLStatus
	ErrorMessage    string
}

// ThothLogWriter persists a run's ThothLogEntry; pkg/store implements this
//. Defined here, not imported from pkg/store, so this
// package never depends on a concrete persistence backend.
type ThothLogWriter interface {
	WriteThothLog(entry ThothLogEntry) error
}
