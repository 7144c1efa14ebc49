// Package evaluator runs SQL candidates against the deduplicated test
// list and classifies the result into one of four cases,
// grounded on this pipeline's original autonomous evaluation system.
package evaluator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mptyl/thoth-sqlgen/pkg/agent"
)

// EvaluatorTemperature is the fixed temperature every evaluator call uses,
// chosen for maximal determinism across candidates.
const EvaluatorTemperature = 0.2

const failureGenerationMarker = "GENERATION FAILED"

// DeduplicateTests merges every test generator's answer list, preserving
// first-seen order and dropping both exact duplicates and failed-
// generation markers.
func DeduplicateTests(testSets [][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range testSets {
		for _, answer := range set {
			if answer == failureGenerationMarker || seen[answer] {
				continue
			}
			seen[answer] = true
			out = append(out, answer)
		}
	}
	return out
}

// EvalContext carries the rendering inputs shared by every per-candidate
// evaluator call.
type EvalContext struct {
	Question         string
	DatabaseType     string
	DatabaseSchema   string
	Directives       string
	Evidence         string
	GoldSQLExamples  string
}

// candidateResult is the JSON shape the evaluator agent returns for one
// SQL candidate: a thinking trace plus one verdict line per test.
type candidateResult struct {
	Thinking string   `json:"thinking"`
	Answers  []string `json:"answers"`
}

// CandidateEvaluation is one candidate's evaluation outcome.
type CandidateEvaluation struct {
	Index    int
	Thinking string
	Verdict  string // "SQL #i: OK, KO - reason, OK, ..."
}

// renderVars is the payload handed to the evaluator agent's prompt
// template for one candidate.
type renderVars struct {
	Question        string
	DatabaseType    string
	DatabaseSchema  string
	Directives      string
	Evidence        string
	GoldSQLExamples string
	SQLQuery        string
	UnitTests       string
}

// evaluateSingle evaluates one SQL candidate against tests, padding or
// truncating the model's answer list to match len(tests) exactly.
func evaluateSingle(ctx context.Context, ev *agent.Agent, sql string, index int, tests []string, evalCtx EvalContext) CandidateEvaluation {
	var numbered []string
	for i, test := range tests {
		numbered = append(numbered, fmt.Sprintf("%d. %s", i+1, test))
	}

	vars := renderVars{
		Question:        evalCtx.Question,
		DatabaseType:    evalCtx.DatabaseType,
		DatabaseSchema:  evalCtx.DatabaseSchema,
		Directives:      evalCtx.Directives,
		Evidence:        evalCtx.Evidence,
		GoldSQLExamples: evalCtx.GoldSQLExamples,
		SQLQuery:        sql,
		UnitTests:       strings.Join(numbered, "\n"),
	}

	_, raw, err := ev.Run(ctx, vars, EvaluatorTemperature, 0)
	if err != nil {
		zap.S().Named("evaluator").Errorw("evaluation failed", "sql_index", index, "error", err)
		return CandidateEvaluation{Index: index, Thinking: fmt.Sprintf("Evaluation error: %v", err), Verdict: aggregateVerdict(index+1, errorTestResults(len(tests), "evaluation error"))}
	}

	var result candidateResult
	if err := agent.Decode(raw, &result); err != nil {
		zap.S().Named("evaluator").Errorw("evaluator returned unparseable output", "sql_index", index, "error", err)
		return CandidateEvaluation{Index: index, Thinking: "Evaluation failed - no output", Verdict: aggregateVerdict(index+1, errorTestResults(len(tests), "evaluation failed"))}
	}

	answers := padOrTruncate(result.Answers, len(tests), index)
	return CandidateEvaluation{Index: index, Thinking: result.Thinking, Verdict: aggregateVerdict(index+1, answers)}
}

func padOrTruncate(answers []string, want, sqlIndex int) []string {
	if len(answers) == want {
		return answers
	}
	zap.S().Named("evaluator").Warnw("evaluator returned mismatched test-result count",
		"sql_index", sqlIndex, "expected", want, "got", len(answers))
	if len(answers) < want {
		out := make([]string, len(answers), want)
		copy(out, answers)
		for i := len(answers) + 1; i <= want; i++ {
			out = append(out, fmt.Sprintf("Test #%d: KO - incomplete evaluation", i))
		}
		return out
	}
	return answers[:want]
}

func errorTestResults(n int, reason string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Test #%d: KO - %s", i+1, reason)
	}
	return out
}

// aggregateVerdict converts "Test #N: OK"/"Test #N: KO - reason" lines
// into the compact "SQL #N: OK, KO - reason, OK, ..." form stored on
// state.
func aggregateVerdict(sqlNumber int, testResults []string) string {
	verdicts := make([]string, 0, len(testResults))
	for _, tr := range testResults {
		if idx := strings.Index(tr, ": "); idx >= 0 {
			verdicts = append(verdicts, tr[idx+2:])
		} else {
			verdicts = append(verdicts, "KO - unknown format")
		}
	}
	return fmt.Sprintf("SQL #%d: %s", sqlNumber, strings.Join(verdicts, ", "))
}

// EvaluateAll runs the evaluator agent once per candidate, bounded by
// maxParallel concurrent calls, and returns one CandidateEvaluation per
// candidate in input order. A
// per-candidate failure becomes a verdict with one "KO - evaluation error"
// entry per test ("KO - evaluation failed" when the output cannot be
// decoded) rather than aborting the whole evaluation (errgroup never returns an
// error from this call; siblings always run to completion).
func EvaluateAll(ctx context.Context, ev *agent.Agent, candidates []string, tests []string, evalCtx EvalContext, maxParallel int) []CandidateEvaluation {
	results := make([]CandidateEvaluation, len(candidates))

	if len(candidates) == 1 {
		results[0] = evaluateSingle(ctx, ev, candidates[0], 0, tests, evalCtx)
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	if maxParallel > 0 {
		g.SetLimit(maxParallel)
	}
	for i, sql := range candidates {
		i, sql := i, sql
		g.Go(func() error {
			results[i] = evaluateSingle(gctx, ev, sql, i, tests, evalCtx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Case is the A/B/C/D classification of an evaluation round.
type Case string

const (
	CaseA Case = "A" // exactly one candidate, pass rate 1.0
	CaseB Case = "B" // >=2 candidates at pass rate 1.0
	CaseC Case = "C" // some candidate >= threshold but none perfect
	CaseD Case = "D" // all candidates below threshold
)

// DefaultThreshold is the pass-rate cutoff used by Case C/D.
const DefaultThreshold = 0.9

// Classification is the outcome of Classify: the case plus every
// candidate's computed pass rate and membership in the perfect/above/
// below buckets.
type Classification struct {
	Case          Case
	PassRates     map[string]float64
	PerfectSQLs   []string
	AboveThreshold []string
	BelowThreshold []string
}

// Classify parses verdict strings of the form "SQL #1: OK, OK, KO -
// reason" and classifies the round into case A/B/C/D.
func Classify(verdicts []string, threshold float64) Classification {
	passRates := make(map[string]float64)
	var order []string

	for _, verdict := range verdicts {
		if !strings.HasPrefix(verdict, "SQL #") {
			continue
		}
		parts := strings.SplitN(verdict, ":", 2)
		if len(parts) != 2 {
			continue
		}
		sqlID := strings.TrimSpace(parts[0])
		results := strings.Split(strings.TrimSpace(parts[1]), ",")

		okCount := 0
		for _, r := range results {
			if strings.TrimSpace(r) == "OK" {
				okCount++
			}
		}
		total := len(results)
		if total == 0 {
			continue
		}
		passRates[sqlID] = float64(okCount) / float64(total)
		order = append(order, sqlID)
	}

	var perfect, above, below []string
	for _, id := range order {
		rate := passRates[id]
		if rate >= 1.0 {
			perfect = append(perfect, id)
		}
		if rate >= threshold {
			above = append(above, id)
		} else {
			below = append(below, id)
		}
	}

	var result Case
	switch {
	case len(perfect) == 1 && len(passRates) == 1:
		result = CaseA
	case len(perfect) > 1:
		result = CaseB
	case len(above) > 0:
		result = CaseC
	default:
		result = CaseD
	}

	return Classification{
		Case:          result,
		PassRates:     passRates,
		PerfectSQLs:   perfect,
		AboveThreshold: above,
		BelowThreshold: below,
	}
}

// SelectGold applies the Case B tie-break: among perfect-scoring candidates, pick the shortest SQL text, then
// lexicographically smallest on a tie. candidatesByID maps "SQL #N" ids
// (as produced by Classify) to their SQL text.
func SelectGold(perfectIDs []string, candidatesByID map[string]string) string {
	best := ""
	bestSQL := ""
	for _, id := range perfectIDs {
		sql := candidatesByID[id]
		if best == "" {
			best, bestSQL = id, sql
			continue
		}
		if len(sql) < len(bestSQL) || (len(sql) == len(bestSQL) && sql < bestSQL) {
			best, bestSQL = id, sql
		}
	}
	return bestSQL
}

// BestPassRate returns the maximum pass rate across a Classification, or
// 0 if no candidate produced a parseable verdict.
func (c Classification) BestPassRate() float64 {
	best := 0.0
	for _, rate := range c.PassRates {
		if rate > best {
			best = rate
		}
	}
	return best
}

// sqlIndexFromID extracts the 1-based candidate index from a "SQL #N" id;
// used by callers that need to map back to the original candidate slice.
func sqlIndexFromID(id string) (int, error) {
	trimmed := strings.TrimPrefix(id, "SQL #")
	return strconv.Atoi(strings.TrimSpace(trimmed))
}
