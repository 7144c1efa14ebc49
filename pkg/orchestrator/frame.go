package orchestrator

import "encoding/json"

// FrameKind is one of the fixed line prefixes of the streaming protocol
//. Clients treat any unknown prefix as informational.
type FrameKind string

const (
	FrameThothLog           FrameKind = "THOTHLOG"
	FrameKeywords           FrameKind = "KEYWORDS"
	FrameSchemaContext      FrameKind = "SCHEMA_CONTEXT"
	FrameSimilarQueries     FrameKind = "SIMILAR_QUERIES"
	FrameSQLCandidates      FrameKind = "SQL_CANDIDATES"
	FrameTestsGenerated     FrameKind = "TESTS_GENERATED"
	FrameEvaluationComplete FrameKind = "EVALUATION_COMPLETE"
	FrameSQLFormatted       FrameKind = "SQL_FORMATTED"
	FrameSQLReady           FrameKind = "SQL_READY"
	FrameSQLExplanation     FrameKind = "SQL_EXPLANATION"
	FrameSystemWarning      FrameKind = "SYSTEM_WARNING"
	FrameCriticalError      FrameKind = "CRITICAL_ERROR"
	FrameCancelled          FrameKind = "CANCELLED"
)

// Frame is one line of the streaming protocol. THOTHLOG and CANCELLED
// carry plain human-readable Text; every other kind carries a JSON
// payload.
type Frame struct {
	Kind FrameKind
	Text string
	JSON any
}

// Line renders f as the single newline-terminated UTF-8 line the HTTP
// handler writes to the response body.
func (f Frame) Line() string {
	switch f.Kind {
	case FrameThothLog, FrameCancelled:
		return string(f.Kind) + ":" + f.Text + "\n"
	default:
		body, err := json.Marshal(f.JSON)
		if err != nil {
			body = []byte(`{}`)
		}
		return string(f.Kind) + ":" + string(body) + "\n"
	}
}

func logFrame(msg string) Frame { return Frame{Kind: FrameThothLog, Text: msg} }

func cancelledFrame() Frame { return Frame{Kind: FrameCancelled, Text: "client disconnected"} }

func warningFrame(component, message string) Frame {
	return Frame{Kind: FrameSystemWarning, JSON: map[string]string{
		"component": component,
		"message":   message,
	}}
}

// criticalErrorPayload is the JSON body of a CRITICAL_ERROR frame,
// mirroring pkg/errors.Error's taxonomy.
type criticalErrorPayload struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
	Code     string `json:"code,omitempty"`
}

func criticalErrorFrame(err error) Frame {
	payload := criticalErrorPayload{Message: err.Error()}
	if svcErr, ok := asServiceError(err); ok {
		payload = criticalErrorPayload{
			Category: string(svcErr.Category),
			Severity: string(svcErr.Severity),
			Message:  svcErr.Message,
			Detail:   svcErr.Detail,
			Code:     svcErr.Code,
		}
	}
	return Frame{Kind: FrameCriticalError, JSON: payload}
}

type keywordsPayload struct {
	Keywords []string `json:"keywords"`
	Count    int      `json:"count"`
}

func keywordsFrame(keywords []string) Frame {
	return Frame{Kind: FrameKeywords, JSON: keywordsPayload{Keywords: keywords, Count: len(keywords)}}
}

type schemaContextPayload struct {
	Tables   []string            `json:"tables"`
	Examples map[string][]string `json:"examples"`
}

type similarQueriesPayload struct {
	SimilarQueries []string `json:"similar_queries"`
	Method         string   `json:"method"`
}

func similarQueriesFrame(docs []string) Frame {
	return Frame{Kind: FrameSimilarQueries, JSON: similarQueriesPayload{SimilarQueries: docs, Method: "LSH"}}
}

type sqlCandidatesPayload struct {
	Count int      `json:"count"`
	SQLs  []string `json:"sqls"`
}

func sqlCandidatesFrame(sqls []string) Frame {
	return Frame{Kind: FrameSQLCandidates, JSON: sqlCandidatesPayload{Count: len(sqls), SQLs: sqls}}
}

type testsGeneratedPayload struct {
	TestCount int `json:"test_count"`
}

func testsGeneratedFrame(count int) Frame {
	return Frame{Kind: FrameTestsGenerated, JSON: testsGeneratedPayload{TestCount: count}}
}

func evaluationCompleteFrame() Frame {
	return Frame{Kind: FrameEvaluationComplete, JSON: map[string]bool{"evaluated": true}}
}

type sqlFormattedPayload struct {
	SQL string `json:"sql"`
}

func sqlFormattedFrame(sql string) Frame {
	return Frame{Kind: FrameSQLFormatted, JSON: sqlFormattedPayload{SQL: sql}}
}

type sqlReadyPayload struct {
	SQL            string  `json:"sql"`
	WorkspaceID    string  `json:"workspace_id"`
	Timestamp      string  `json:"timestamp"`
	Username       string  `json:"username"`
	Agent          string  `json:"agent"`
	SQLStatus      string  `json:"sql_status"`
	EvaluationCase string  `json:"evaluation_case"`
	PassRate       float64 `json:"pass_rate"`
	IsSilver       bool    `json:"is_silver"`
	IsGold         bool    `json:"is_gold"`
}

type sqlExplanationPayload struct {
	Explanation string `json:"explanation"`
	Language    string `json:"language"`
}
