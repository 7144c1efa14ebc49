// Package escalation manages the BASIC → ADVANCED → EXPERT progression
// triggered when SQL candidates fail evaluation, ported
// directly from this pipeline's original escalation manager.
package escalation

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator/level"
)

// Reason names why escalation to the next functionality level is needed.
type Reason string

const (
	ReasonAllFailedEvaluation Reason = "all_sql_failed_evaluation"
	ReasonNoSQLGenerated      Reason = "no_sql_generated"
	ReasonValidationFailed    Reason = "validation_failed"
	ReasonExecutionFailed     Reason = "execution_failed"
)

// MaxAttemptsPerLevel bounds how many attempts run at one functionality
// level before escalation is forced regardless of evaluation outcome.
const MaxAttemptsPerLevel = 2

// defaultEvaluationThreshold is should_escalate's evaluation_threshold
// default (0-100 scale), matching the evaluator's 0.9 pass-rate
// threshold.
const defaultEvaluationThreshold = 90

// Record is one entry in a run's escalation_history trail.
type Record struct {
	FromLevel         level.Level
	ToLevel           level.Level
	Reason            Reason
	FailedSQLsCount   int
	FailureAnalysis   string
}

// EvaluationResult is the minimal view of an evaluation round's outcome
// the escalation manager needs: status/pass-rate for Case D detection,
// plus the generated candidates it's deciding over.
type EvaluationResult struct {
	Status          string // "FAILED" or anything else
	BestPassRate    float64
	EvaluationCase  string
	EscalationNote  string // pre-rendered failure context, if the evaluator already built one
	GeneratedSQLs   []string
}

// Empty reports whether no evaluation took place at all (distinct from an
// evaluation that ran and failed).
func (r *EvaluationResult) Empty() bool { return r == nil }

// Context carries the information the next functionality level's prompt
// needs to understand why it was invoked.
type Context struct {
	Reason             Reason
	CurrentLevel       level.Level
	Question           string
	FailedSQLs         []string
	EvaluationResult   *EvaluationResult
	FailureAnalysis    string
	PreviousAttempts   []Record
}

// RenderContext formats Context as the deterministic multi-line text
// block consumed by the next level's SQL-generation prompt.
func (c Context) RenderContext() string {
	var lines []string
	lines = append(lines, "ESCALATION CONTEXT:")
	lines = append(lines, fmt.Sprintf("- Reason: %s", c.Reason))
	lines = append(lines, fmt.Sprintf("- Previous Level: %s", c.CurrentLevel))
	lines = append(lines, fmt.Sprintf("- Question: %s", c.Question))

	if len(c.FailedSQLs) > 0 {
		lines = append(lines, fmt.Sprintf("- Failed SQL Count: %d", len(c.FailedSQLs)))
		lines = append(lines, "- Failed SQLs:")
		shown := c.FailedSQLs
		if len(shown) > 3 {
			shown = shown[:3]
		}
		for i, sql := range shown {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, sql))
		}
		if len(c.FailedSQLs) > 3 {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(c.FailedSQLs)-3))
		}
	}

	if c.EvaluationResult != nil {
		lines = append(lines, "- Evaluation Summary:")
		lines = append(lines, fmt.Sprintf("  status: %s", c.EvaluationResult.Status))
		lines = append(lines, fmt.Sprintf("  best_pass_rate: %v", c.EvaluationResult.BestPassRate))
	}

	if c.FailureAnalysis != "" {
		lines = append(lines, fmt.Sprintf("- Failure Analysis: %s", c.FailureAnalysis))
	}

	if len(c.PreviousAttempts) > 0 {
		lines = append(lines, fmt.Sprintf("- Previous Attempts: %d", len(c.PreviousAttempts)))
	}

	return strings.Join(lines, "\n")
}

// NextLevel returns the level after current in the escalation chain, or
// ("", false) if current is already EXPERT or unrecognized.
func NextLevel(current level.Level) (level.Level, bool) {
	return level.Next(current)
}

// ShouldEscalate decides, from the current level, the last evaluation
// round's result and the attempt count already spent at that level,
// whether to escalate and why.
func ShouldEscalate(current level.Level, result *EvaluationResult, attemptCount int) (bool, Reason) {
	if level.IsLast(current) {
		zap.S().Named("escalation").Infow("already at EXPERT level, cannot escalate further")
		return false, ""
	}

	if attemptCount >= MaxAttemptsPerLevel {
		zap.S().Named("escalation").Infow("reached maximum attempts at level",
			"level", current, "attempt_count", attemptCount)
		return true, ReasonAllFailedEvaluation
	}

	if result == nil {
		return true, ReasonNoSQLGenerated
	}

	if result.Status == "FAILED" {
		thresholdRatio := float64(defaultEvaluationThreshold) / 100.0
		if result.BestPassRate < thresholdRatio {
			zap.S().Named("escalation").Infow("all SQLs below evaluation threshold",
				"threshold_pct", defaultEvaluationThreshold, "best_pass_rate", result.BestPassRate)
			return true, ReasonAllFailedEvaluation
		}
	}

	if len(result.GeneratedSQLs) == 0 {
		return true, ReasonNoSQLGenerated
	}

	return false, ""
}

// CreateContext builds the escalation Context from the current run's
// state inputs.
func CreateContext(reason Reason, current level.Level, question string, generatedSQLs []string, result *EvaluationResult, previousAttempts []Record) Context {
	failureAnalysis := ""
	if result != nil {
		if result.EscalationNote != "" {
			failureAnalysis = result.EscalationNote
		} else if result.EvaluationCase != "" {
			failureAnalysis = fmt.Sprintf("Evaluation Case %s - insufficient pass rates", result.EvaluationCase)
		}
	}

	return Context{
		Reason:           reason,
		CurrentLevel:     current,
		Question:         question,
		FailedSQLs:       generatedSQLs,
		EvaluationResult: result,
		FailureAnalysis:  failureAnalysis,
		PreviousAttempts: previousAttempts,
	}
}

// StateUpdate is the mutation the orchestrator applies to its SystemState
// after an escalation decision: the next level, the escalation flags to
// set, and the record to append to escalation_history. Generation/test/
// evaluation results are reset by the caller, mirroring the original
// update_state_for_escalation's "clear for a fresh attempt" behavior.
type StateUpdate struct {
	NextLevel         level.Level
	SetAdvancedFlag   bool
	SetExpertFlag     bool
	HistoryRecord     Record
	EscalationContext string
}

// BuildStateUpdate computes the StateUpdate for escalating from
// escCtx.CurrentLevel to nextLevel.
func BuildStateUpdate(nextLevel level.Level, escCtx Context) StateUpdate {
	update := StateUpdate{
		NextLevel:         nextLevel,
		SetAdvancedFlag:   nextLevel == level.Advanced,
		SetExpertFlag:     nextLevel == level.Expert,
		EscalationContext: escCtx.RenderContext(),
		HistoryRecord: Record{
			FromLevel:       escCtx.CurrentLevel,
			ToLevel:         nextLevel,
			Reason:          escCtx.Reason,
			FailedSQLsCount: len(escCtx.FailedSQLs),
			FailureAnalysis: escCtx.FailureAnalysis,
		},
	}
	zap.S().Named("escalation").Infow("escalated functionality level",
		"from", escCtx.CurrentLevel, "to", nextLevel)
	return update
}

// Handle runs the complete escalation decision: should_escalate →
// next_level → context → state update, in one call.
// Returns (escalated, update). When escalated is false, update is the
// zero value.
func Handle(current level.Level, question string, generatedSQLs []string, result *EvaluationResult, attemptCount int, previousAttempts []Record) (bool, StateUpdate) {
	shouldEscalate, reason := ShouldEscalate(current, result, attemptCount)
	if !shouldEscalate {
		return false, StateUpdate{}
	}

	next, ok := NextLevel(current)
	if !ok {
		zap.S().Named("escalation").Warnw("cannot escalate beyond current level", "level", current)
		return false, StateUpdate{}
	}

	escCtx := CreateContext(reason, current, question, generatedSQLs, result, previousAttempts)
	return true, BuildStateUpdate(next, escCtx)
}
