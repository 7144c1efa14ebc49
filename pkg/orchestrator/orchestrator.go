package orchestrator

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mptyl/thoth-sqlgen/pkg/agent"
	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
	"github.com/mptyl/thoth-sqlgen/pkg/escalation"
	"github.com/mptyl/thoth-sqlgen/pkg/evaluator"
	"github.com/mptyl/thoth-sqlgen/pkg/jobs/worker"
	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator/delimiter"
	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator/level"
	"github.com/mptyl/thoth-sqlgen/pkg/schema"
	"github.com/mptyl/thoth-sqlgen/pkg/schema/lsh"
	"github.com/mptyl/thoth-sqlgen/pkg/schema/mschema"
	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

// defaultCandidateTimeout bounds how long a single SQL-candidate
// generation call may run before it is abandoned.
const defaultCandidateTimeout = 20 * time.Second

// evidenceTopK/sqlExampleTopK/scoreThreshold bound phase 3's vector-store
// retrieval; this module's chosen fixed values (see DESIGN.md).
const (
	evidenceTopK    = 5
	sqlExampleTopK  = 5
	scoreThreshold  = 0.0
	reducerTrigger  = 5
)

// Deps are the warmed, request-independent resources a run needs: the
// workspace's configured agent pool, its DB/vector-store managers, and
// its LSH index.
type Deps struct {
	Agents     *agent.Pool
	DBManager  dbadapter.Manager
	VDBManager vectorstore.Store
	LSHIndex   *lsh.Index
	ThothLog   ThothLogWriter

	// StateSink, if set, receives the run's final SystemState once the
	// pipeline ends in success or CRITICAL_ERROR; a cancelled run does not
	// call it. Used by
	// pkg/httpapi to serve POST /save-sql-feedback's "last cached
	// SystemState for the workspace" without this package depending on
	// a concrete cache implementation.
	StateSink func(*SystemState)

	MaxParallelSQLs  int
	MaxParallelTests int
	CandidateTimeout time.Duration
}

// Run starts one pipeline run and returns a channel of Frames; the
// channel is closed when the run terminates (success, CRITICAL_ERROR, or
// CANCELLED). Callers (pkg/httpapi) drain it into the HTTP response body.
func Run(ctx context.Context, deps Deps, req Request) <-chan Frame {
	out := make(chan Frame, 32)
	o := &orchestratorRun{ctx: ctx, deps: deps, req: req, out: out, state: newState(req)}
	go o.run()
	return out
}

type orchestratorRun struct {
	ctx   context.Context
	deps  Deps
	req   Request
	out   chan Frame
	state *SystemState
}

func (o *orchestratorRun) emit(f Frame) { o.out <- f }

func (o *orchestratorRun) cancelled() bool { return o.ctx.Err() != nil }

// run drives the six phases in order, emitting CANCELLED/CRITICAL_ERROR
// and returning early when a phase cannot continue.
func (o *orchestratorRun) run() {
	defer close(o.out)
	log := zap.S().Named("orchestrator")

	if o.cancelled() {
		o.emit(cancelledFrame())
		return
	}
	if err := o.runPhase1(); err != nil {
		o.emit(criticalErrorFrame(err))
		o.writeThothLog(err)
		return
	}

	if o.cancelled() {
		o.emit(cancelledFrame())
		return
	}
	if err := o.runPhase2(); err != nil {
		o.emit(criticalErrorFrame(err))
		o.writeThothLog(err)
		return
	}

	if o.cancelled() {
		o.emit(cancelledFrame())
		return
	}
	if err := o.runPhase3(); err != nil {
		o.emit(criticalErrorFrame(err))
		o.writeThothLog(err)
		return
	}

	for {
		if o.cancelled() {
			o.emit(cancelledFrame())
			return
		}

		o.state.AttemptCount++
		if err := o.runPhase4(); err != nil {
			o.emit(criticalErrorFrame(err))
			o.writeThothLog(err)
			return
		}

		if o.cancelled() {
			o.emit(cancelledFrame())
			return
		}

		evalResult := o.runPhase5()

		escalated, failErr := o.runPhase6(evalResult)
		if failErr != nil {
			o.emit(criticalErrorFrame(failErr))
			o.writeThothLog(failErr)
			return
		}
		if !escalated {
			break
		}
		log.Infow("escalating and retrying generation", "new_level", o.state.FunctionalityLevel)
	}

	o.writeThothLog(nil)
}

func (o *orchestratorRun) writeThothLog(runErr error) {
	if o.deps.StateSink != nil {
		o.deps.StateSink(o.state)
	}

	if o.deps.ThothLog == nil {
		return
	}
	entry := ThothLogEntry{
		Question:       o.state.OriginalQuestion,
		SQL:            o.state.LastSQL,
		WorkspaceID:    o.state.WorkspaceID,
		Username:       o.state.Username,
		StartedAt:      o.state.StartedAt,
		EndedAt:        time.Now(),
		EvaluationCase: o.state.EvaluationCase,
		Status:         o.state.SQLStatus,
	}
	if runErr != nil {
		entry.ErrorMessage = runErr.Error()
		entry.Status = StatusFailed
	}
	if len(o.state.PassRates) > 0 {
		entry.PassRate = bestPassRate(o.state.PassRates)
	}
	if err := o.deps.ThothLog.WriteThothLog(entry); err != nil {
		zap.S().Named("orchestrator").Errorw("failed to write ThothLog entry", "error", err)
	}
}

func bestPassRate(rates map[string]float64) float64 {
	best := 0.0
	for _, r := range rates {
		if r > best {
			best = r
		}
	}
	return best
}

// --- Phase 1: question validation & translation ---

type validatorResult struct {
	IsValid          bool   `json:"is_valid"`
	Message          string `json:"message"`
	OriginalLanguage string `json:"original_language"`
}

type translatorResult struct {
	TranslatedQuestion string `json:"translated_question"`
}

type validatorVars struct {
	Question string
}

type translatorVars struct {
	Question         string
	OriginalLanguage string
	TargetLanguage   string
}

func (o *orchestratorRun) runPhase1() error {
	validatorAgent, err := o.deps.Agents.RequireValidator()
	if err != nil {
		return err
	}

	_, raw, err := validatorAgent.Run(o.ctx, validatorVars{Question: o.state.Question}, 0.0, 0)
	if err != nil {
		return srvErrors.NewInvalidQuestionError(err.Error())
	}

	var v validatorResult
	if err := agent.Decode(raw, &v); err != nil {
		return srvErrors.NewInvalidQuestionError("validator returned unparseable output")
	}
	if !v.IsValid {
		return srvErrors.NewInvalidQuestionError(v.Message)
	}

	o.emit(logFrame("question validated"))

	if v.OriginalLanguage == "" || v.OriginalLanguage == o.req.WorkspaceLanguage {
		return nil
	}

	translatorAgent := o.deps.Agents.Get(agent.RoleQuestionTranslator)
	if translatorAgent == nil {
		// Degrades: proceed with the original-language question rather
		// than aborting the run for a non-critical translation miss.
		o.emit(warningFrame("question_translator", "no translator agent configured; continuing in original language"))
		return nil
	}

	_, traw, err := translatorAgent.Run(o.ctx, translatorVars{
		Question:         o.state.Question,
		OriginalLanguage: v.OriginalLanguage,
		TargetLanguage:   o.req.WorkspaceLanguage,
	}, 0.0, 0)
	if err != nil {
		o.emit(warningFrame("question_translator", err.Error()))
		return nil
	}

	var t translatorResult
	if err := agent.Decode(traw, &t); err != nil || t.TranslatedQuestion == "" {
		o.emit(warningFrame("question_translator", "translator returned unparseable output"))
		return nil
	}

	o.state.OriginalLanguage = v.OriginalLanguage
	o.state.Question = t.TranslatedQuestion
	return nil
}

// --- Phase 2: keyword extraction ---

type keywordResult struct {
	Keywords []string `json:"keywords"`
}

type keywordVars struct {
	Question string
}

func (o *orchestratorRun) runPhase2() error {
	kwAgent, err := o.deps.Agents.RequireKeywordExtraction()
	if err != nil {
		return err
	}

	_, raw, err := kwAgent.Run(o.ctx, keywordVars{Question: o.state.Question}, 0.0, 0)
	if err != nil {
		return srvErrors.NewInternalError(fmt.Sprintf("keyword extraction failed: %v", err))
	}

	var k keywordResult
	if err := agent.Decode(raw, &k); err != nil {
		return srvErrors.NewInternalError("keyword extraction returned unparseable output")
	}

	o.state.Keywords = k.Keywords
	o.emit(keywordsFrame(k.Keywords))
	return nil
}

// --- Phase 3: context retrieval ---

func (o *orchestratorRun) runPhase3() error {
	g, gctx := errgroup.WithContext(o.ctx)

	var evidenceDocs []vectorstore.Document
	var sqlDocs []vectorstore.Document

	if o.deps.VDBManager != nil {
		g.Go(func() error {
			docs, err := o.deps.VDBManager.SearchSimilar(gctx, o.state.Question, vectorstore.DocTypeEvidence, evidenceTopK, scoreThreshold)
			if err != nil {
				o.emit(warningFrame("vector_store", "evidence retrieval failed: "+err.Error()))
				return nil
			}
			evidenceDocs = docs
			return nil
		})
		g.Go(func() error {
			docs, err := o.deps.VDBManager.SearchSimilar(gctx, o.state.Question, vectorstore.DocTypeSQL, sqlExampleTopK, scoreThreshold)
			if err != nil {
				o.emit(warningFrame("vector_store", "sql example retrieval failed: "+err.Error()))
				return nil
			}
			sqlDocs = docs
			return nil
		})
	}
	_ = g.Wait()

	o.state.Evidence = documentTexts(evidenceDocs)
	o.state.SQLDocuments = documentTexts(sqlDocs)
	o.emit(similarQueriesFrame(o.state.SQLDocuments))

	projected, err := o.introspectProjectedSchema()
	if err != nil {
		return err
	}

	matches, err := schema.BuildSimilarColumns(o.deps.LSHIndex, o.state.Keywords, projected)
	if err != nil {
		return err
	}
	o.state.SimilarColumns = matches
	o.state.SchemaWithExamples = projected

	if o.deps.VDBManager != nil {
		if err := schema.EnrichFromVectorStore(o.ctx, o.deps.VDBManager, projected); err != nil {
			o.emit(warningFrame("vector_store", "schema enrichment degraded: "+err.Error()))
		} else {
			o.state.SchemaFromVectorDB = true
		}
	}

	seed := seedFor(o.req.RequestID, 0)
	o.state.FullMSchema = mschema.Render(projected, seed)

	strategy := schema.SelectStrategy(len(o.state.Question), len(o.state.Keywords), len(projected.Tables))
	if strategy == schema.WithSchemaLink {
		reduced := reduceSchema(projected, o.state.SimilarColumns)
		o.state.ReducedMSchema = mschema.Render(reduced, seed)
		o.state.UsedMSchema = o.state.ReducedMSchema
	} else {
		o.state.UsedMSchema = o.state.FullMSchema
	}

	o.emit(Frame{Kind: FrameSchemaContext, JSON: schemaContextPayload{
		Tables:   tableNames(projected),
		Examples: exampleValues(projected),
	}})
	return nil
}

// introspectProjectedSchema builds a schema.ProjectedSchema from the DB
// adapter's introspection calls, the minimal bridge between pkg/dbadapter's
// flat TableInfo/ColumnInfo and pkg/schema's richer projection shape.
func (o *orchestratorRun) introspectProjectedSchema() (*schema.ProjectedSchema, error) {
	if o.deps.DBManager == nil {
		return nil, srvErrors.NewCriticalDBError("", "no database manager configured for this workspace")
	}

	tables, err := o.deps.DBManager.IntrospectTables(o.ctx)
	if err != nil {
		return nil, srvErrors.NewCriticalDBError(o.req.Dialect, err.Error())
	}

	fks, err := o.deps.DBManager.IntrospectForeignKeys(o.ctx)
	if err != nil {
		return nil, srvErrors.NewCriticalDBError(o.req.Dialect, err.Error())
	}
	fkColumns := make(map[string]bool)
	for _, fk := range fks {
		fkColumns[fk.SourceTable+"."+fk.SourceColumn] = true
	}

	projected := &schema.ProjectedSchema{}
	for _, t := range tables {
		cols, err := o.deps.DBManager.IntrospectColumns(o.ctx, t.Name)
		if err != nil {
			return nil, srvErrors.NewCriticalDBError(o.req.Dialect, err.Error())
		}
		table := schema.Table{Name: t.Name}
		for _, c := range cols {
			table.Columns = append(table.Columns, schema.Column{
				Name:         c.Name,
				DataFormat:   c.DataType,
				IsPrimaryKey: c.IsPrimary,
				IsForeignKey: c.IsForeign || fkColumns[t.Name+"."+c.Name],
			})
		}
		projected.Tables = append(projected.Tables, table)
	}
	return projected, nil
}

func documentTexts(docs []vectorstore.Document) []string {
	var out []string
	for _, d := range docs {
		switch d.Type {
		case vectorstore.DocTypeEvidence:
			if d.Evidence != nil {
				out = append(out, d.Evidence.Text)
			}
		case vectorstore.DocTypeSQL:
			if d.SQL != nil {
				out = append(out, d.SQL.SQL)
			}
		}
	}
	return out
}

func tableNames(s *schema.ProjectedSchema) []string {
	var out []string
	for _, t := range s.Tables {
		out = append(out, t.Name)
	}
	return out
}

func exampleValues(s *schema.ProjectedSchema) map[string][]string {
	out := make(map[string][]string)
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if len(c.ExampleValues) > 0 {
				out[t.Name+"."+c.Name] = c.ExampleValues
			}
		}
	}
	return out
}

// reduceSchema filters the full schema down to tables touched by a LSH
// similar-column hit, for the WITH_SCHEMA_LINK strategy.
func reduceSchema(full *schema.ProjectedSchema, hits []schema.SimilarColumn) *schema.ProjectedSchema {
	keep := make(map[string]bool, len(hits))
	for _, h := range hits {
		keep[h.Table] = true
	}
	if len(keep) == 0 {
		return full
	}
	reduced := &schema.ProjectedSchema{}
	for _, t := range full.Tables {
		if keep[t.Name] {
			reduced.Tables = append(reduced.Tables, t)
		}
	}
	return reduced
}

func seedFor(requestID string, callIndex int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", requestID, callIndex)))
	return h.Sum64()
}

// --- Phase 4: SQL candidate generation ---

type sqlCandidateResult struct {
	SQL      string `json:"sql"`
	Thinking string `json:"thinking"`
	Success  bool   `json:"success"`
}

type sqlGenVars struct {
	Question        string
	DatabaseType    string
	Schema          string
	Directives      string
	Evidence        string
	GoldSQLExamples string
	Method          agent.Method
}

const criticalDBErrorSentinel = "CRITICAL_DB_ERROR:"

func (o *orchestratorRun) runPhase4() error {
	sqlAgent, err := o.deps.Agents.RequireSQLAgent(o.state.FunctionalityLevel)
	if err != nil {
		return err
	}

	n := o.req.NumCandidates
	if n <= 0 {
		n = 1
	}

	timeout := o.deps.CandidateTimeout
	if timeout <= 0 {
		timeout = defaultCandidateTimeout
	}

	maxParallel := o.deps.MaxParallelSQLs
	if maxParallel <= 0 {
		maxParallel = 12
	}

	pool := worker.NewPool[sqlCandidateResult](minInt(maxParallel, n))
	defer pool.Close()

	futures := make([]*worker.Future[sqlCandidateResult], n)
	for i := 0; i < n; i++ {
		i := i
		futures[i] = pool.Submit(func(ctx context.Context) (sqlCandidateResult, error) {
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			vars := sqlGenVars{
				Question:        o.state.Question,
				DatabaseType:    o.req.Dialect,
				Schema:          o.state.UsedMSchema,
				Directives:      o.state.Directives,
				Evidence:        joinLines(o.state.Evidence),
				GoldSQLExamples: joinLines(o.state.SQLDocuments),
				Method:          agent.MethodForCandidate(i),
			}
			temperature := agent.TemperatureForCandidate(i, n)

			_, raw, err := sqlAgent.Run(cctx, vars, temperature, 0)
			if err != nil {
				return sqlCandidateResult{}, err
			}
			if isCriticalDBError(raw) {
				return sqlCandidateResult{}, srvErrors.NewCriticalDBError(o.req.Dialect, string(raw))
			}
			var res sqlCandidateResult
			if err := agent.Decode(raw, &res); err != nil {
				return sqlCandidateResult{}, fmt.Errorf("decode sql candidate: %w", err)
			}
			return res, nil
		})
	}

	var candidates []string
	var dbErr error
	seen := make(map[string]bool)
	for i, f := range futures {
		res := <-f.C()
		if res.Err != nil {
			if svcErr, ok := asServiceError(res.Err); ok && svcErr.Category == srvErrors.CategoryDatabase {
				dbErr = res.Err
			}
			zap.S().Named("orchestrator").Warnw("sql candidate generation failed", "index", i, "error", res.Err)
			continue
		}
		if !res.Data.Success || res.Data.SQL == "" || seen[res.Data.SQL] {
			continue
		}
		seen[res.Data.SQL] = true
		candidates = append(candidates, res.Data.SQL)
	}

	if dbErr != nil {
		return dbErr
	}

	o.state.GeneratedSQLs = candidates
	o.emit(sqlCandidatesFrame(candidates))
	return nil
}

func isCriticalDBError(raw []byte) bool {
	return len(raw) >= len(criticalDBErrorSentinel) && string(raw[:len(criticalDBErrorSentinel)]) == criticalDBErrorSentinel
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// --- Phase 5: test generation & evaluation ---

type testGenResult struct {
	Thinking string   `json:"thinking"`
	Answers  []string `json:"answers"`
}

type testGenVars struct {
	Question string
	Schema   string
	SQLs     []string
}

type reducerResult struct {
	Answers []string `json:"answers"`
}

type reducerVars struct {
	Tests []string
}

func (o *orchestratorRun) runPhase5() *escalation.EvaluationResult {
	if len(o.state.GeneratedSQLs) == 0 {
		return nil
	}

	generators := o.deps.Agents.TestGenerators()
	var testSets [][]string
	for _, gen := range generators {
		vars := testGenVars{Question: o.state.Question, Schema: o.state.UsedMSchema, SQLs: o.state.GeneratedSQLs}
		_, raw, err := gen.Run(o.ctx, vars, 0.3, 0)
		if err != nil {
			o.emit(warningFrame(string(gen.Role), "test generation failed: "+err.Error()))
			continue
		}
		var res testGenResult
		if err := agent.Decode(raw, &res); err != nil {
			o.emit(warningFrame(string(gen.Role), "test generation returned unparseable output"))
			continue
		}
		testSets = append(testSets, res.Answers)
	}

	o.state.GeneratedTests = testSets
	unique := evaluator.DeduplicateTests(testSets)

	if len(generators) > 1 && len(unique) > reducerTrigger {
		if reducerAgent := o.deps.Agents.Get(agent.RoleTestReducer); reducerAgent != nil {
			_, raw, err := reducerAgent.Run(o.ctx, reducerVars{Tests: unique}, 0.2, 0)
			if err == nil {
				var r reducerResult
				if agent.Decode(raw, &r) == nil && len(r.Answers) > 0 {
					unique = r.Answers
				}
			}
		}
	}
	o.state.FilteredTests = unique
	o.emit(testsGeneratedFrame(len(unique)))

	if len(unique) == 0 {
		return nil
	}

	evalAgent := o.deps.Agents.Get(agent.RoleTestEvaluator)
	if evalAgent == nil {
		o.emit(warningFrame("test_evaluator_agent", "no evaluator agent configured; skipping evaluation"))
		return nil
	}

	maxParallel := o.deps.MaxParallelTests
	if maxParallel <= 0 {
		maxParallel = 3
	}

	evalCtx := evaluator.EvalContext{
		Question:       o.state.Question,
		DatabaseType:   o.req.Dialect,
		DatabaseSchema: o.state.UsedMSchema,
		Directives:     o.state.Directives,
		Evidence:       joinLines(o.state.Evidence),
	}
	evals := evaluator.EvaluateAll(o.ctx, evalAgent, o.state.GeneratedSQLs, unique, evalCtx, maxParallel)
	o.state.TestAnswers = evals

	var verdicts []string
	candidatesByID := make(map[string]string, len(o.state.GeneratedSQLs))
	for _, e := range evals {
		verdicts = append(verdicts, e.Verdict)
		candidatesByID[fmt.Sprintf("SQL #%d", e.Index+1)] = o.state.GeneratedSQLs[e.Index]
	}
	o.state.EvaluationResults = verdicts
	o.emit(evaluationCompleteFrame())

	classification := evaluator.Classify(verdicts, evaluator.DefaultThreshold)
	o.state.EvaluationCase = classification.Case
	o.state.PassRates = classification.PassRates

	status := "FAILED"
	if classification.Case == evaluator.CaseA || classification.Case == evaluator.CaseB {
		status = "SUCCEEDED"
	} else if classification.Case == evaluator.CaseC {
		status = "PARTIAL"
	}

	return &escalation.EvaluationResult{
		Status:         status,
		BestPassRate:   classification.BestPassRate(),
		EvaluationCase: string(classification.Case),
		GeneratedSQLs:  o.state.GeneratedSQLs,
	}
}

// --- Phase 6: selection, escalation, finalization ---

func (o *orchestratorRun) runPhase6(evalResult *escalation.EvaluationResult) (escalated bool, err error) {
	classification := evaluator.Classification{Case: o.state.EvaluationCase, PassRates: o.state.PassRates}

	if evalResult != nil {
		for id, rate := range classification.PassRates {
			if rate >= 1.0 {
				classification.PerfectSQLs = append(classification.PerfectSQLs, id)
			}
		}
		sort.Strings(classification.PerfectSQLs)
	}

	switch {
	case evalResult != nil && (o.state.EvaluationCase == evaluator.CaseA || o.state.EvaluationCase == evaluator.CaseB):
		candidatesByID := o.candidatesByID()
		var chosenSQL string
		if o.state.EvaluationCase == evaluator.CaseA {
			chosenSQL = o.state.GeneratedSQLs[0]
		} else {
			chosenSQL = evaluator.SelectGold(classification.PerfectSQLs, candidatesByID)
		}
		o.finalizeSelection(chosenSQL, StatusGold)
		return false, nil

	case evalResult != nil && o.state.EvaluationCase == evaluator.CaseC:
		chosenSQL := o.bestCandidate(classification.PassRates)
		o.finalizeSelection(chosenSQL, StatusSilver)
		return false, nil
	}

	shouldEscalate, update := escalation.Handle(
		o.state.FunctionalityLevel,
		o.state.Question,
		o.state.GeneratedSQLs,
		evalResult,
		o.state.AttemptCount,
		o.state.EscalationHistory,
	)
	if !shouldEscalate {
		o.state.SQLStatus = StatusFailed
		o.state.SQLGenerationFailureMessage = "SQL generation failed at all functionality levels"
		return false, srvErrors.NewGenerationFailedError(o.state.SQLGenerationFailureMessage)
	}

	o.state.EscalationHistory = append(o.state.EscalationHistory, update.HistoryRecord)
	o.state.FunctionalityLevel = update.NextLevel
	o.state.Directives = update.EscalationContext
	o.state.AttemptCount = 0
	o.state.GeneratedSQLs = nil
	o.state.GeneratedTests = nil
	o.state.FilteredTests = nil
	o.state.TestAnswers = nil
	o.state.EvaluationResults = nil

	o.emit(logFrame(fmt.Sprintf("escalated to %s functionality level", update.NextLevel)))
	return true, nil
}

func (o *orchestratorRun) candidatesByID() map[string]string {
	out := make(map[string]string, len(o.state.GeneratedSQLs))
	for i, sql := range o.state.GeneratedSQLs {
		out[fmt.Sprintf("SQL #%d", i+1)] = sql
	}
	return out
}

func (o *orchestratorRun) bestCandidate(passRates map[string]float64) string {
	byID := o.candidatesByID()
	bestID, bestRate := "", -1.0
	for id, rate := range passRates {
		if rate > bestRate {
			bestID, bestRate = id, rate
		}
	}
	return byID[bestID]
}

func (o *orchestratorRun) finalizeSelection(sql string, status SQLStatus) {
	corrected := delimiter.Correct(sql, o.req.Dialect)
	o.state.LastSQL = corrected
	o.state.SQLStatus = status
	o.emit(sqlFormattedFrame(corrected))

	passRate := bestPassRate(o.state.PassRates)
	o.emit(Frame{Kind: FrameSQLReady, JSON: sqlReadyPayload{
		SQL:            corrected,
		WorkspaceID:    o.state.WorkspaceID,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Username:       o.state.Username,
		Agent:          string(sqlAgentRoleForLevel(o.state.FunctionalityLevel)),
		SQLStatus:      string(status),
		EvaluationCase: string(o.state.EvaluationCase),
		PassRate:       passRate,
		IsSilver:       status == StatusSilver,
		IsGold:         status == StatusGold,
	}})

	if o.req.Flags.ExplainGeneratedQuery {
		o.runExplainer(corrected)
	}
}

func sqlAgentRoleForLevel(lvl level.Level) agent.Role {
	switch lvl {
	case level.Basic:
		return agent.RoleSQLBasic
	case level.Advanced:
		return agent.RoleSQLAdvanced
	default:
		return agent.RoleSQLExpert
	}
}

type explainerVars struct {
	Question   string
	SQL        string
	Schema     string
	Evidence   string
	Directives string
}

func (o *orchestratorRun) runExplainer(sql string) {
	explainerAgent := o.deps.Agents.Get(agent.RoleSQLExplainer)
	if explainerAgent == nil {
		o.emit(warningFrame("sql_explainer_agent", "no explainer agent configured"))
		return
	}

	vars := explainerVars{
		Question:   o.state.OriginalQuestion,
		SQL:        sql,
		Schema:     o.state.UsedMSchema,
		Evidence:   joinLines(o.state.Evidence),
		Directives: o.state.Directives,
	}
	_, raw, err := explainerAgent.Run(o.ctx, vars, 0.3, 0)
	if err != nil {
		o.emit(warningFrame("sql_explainer_agent", err.Error()))
		return
	}

	o.state.SQLExplanation = string(raw)
	o.emit(Frame{Kind: FrameSQLExplanation, JSON: sqlExplanationPayload{
		Explanation: o.state.SQLExplanation,
		Language:    o.req.WorkspaceLanguage,
	}})
}
