package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

// EvidenceManifestEntry is one row of an evidence upload manifest: a
// JSON array keyed implicitly by position, filtered to the workspace's
// db_name before upload.
type EvidenceManifestEntry struct {
	DBID string `json:"db_id"`
	Text string `json:"text"`
}

// QuestionManifestEntry is one row of a question/SQL-example upload
// manifest.
type QuestionManifestEntry struct {
	DBID     string `json:"db_id"`
	Question string `json:"question"`
	SQL      string `json:"sql"`
	Evidence string `json:"evidence"`
}

// ParseEvidenceManifest decodes a JSON array of EvidenceManifestEntry.
func ParseEvidenceManifest(raw []byte) ([]EvidenceManifestEntry, error) {
	var entries []EvidenceManifestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse evidence manifest: %w", err)
	}
	return entries, nil
}

// ParseQuestionManifest decodes a JSON array of QuestionManifestEntry.
func ParseQuestionManifest(raw []byte) ([]QuestionManifestEntry, error) {
	var entries []QuestionManifestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse question manifest: %w", err)
	}
	return entries, nil
}

// TimestampSetter persists the workspace's last_evidence_load /
// last_sql_loaded bookkeeping timestamps once an upload completes.
type TimestampSetter interface {
	SetLastEvidenceLoad(ctx context.Context, workspaceID int64) error
	SetLastSQLLoaded(ctx context.Context, workspaceID int64) error
}

// UploadEvidence wipes the evidence collection and reloads it from
// manifest, keeping only entries whose DBID matches dbName.
func UploadEvidence(ctx context.Context, store vectorstore.Store, ts TimestampSetter, workspaceID int64, dbName string, manifest []EvidenceManifestEntry, r Reporter) (int, error) {
	if r == nil {
		r = NoopReporter
	}
	log := zap.S().Named("jobs.upload_evidence")

	if err := store.DeleteCollection(ctx, vectorstore.DocTypeEvidence); err != nil {
		return 0, fmt.Errorf("wipe evidence collection: %w", err)
	}

	matching := filterByDBID(manifest, dbName)
	total := len(matching)
	processed, failed := 0, 0
	r.Update(0, 0, total)

	for _, e := range matching {
		if _, err := store.AddEvidence(ctx, vectorstore.EvidenceDocument{Text: e.Text}); err != nil {
			log.Errorw("failed to add evidence document", "error", err)
			failed++
		} else {
			processed++
		}
		r.Update(processed, failed, total)
	}

	if failed == 0 {
		if err := ts.SetLastEvidenceLoad(ctx, workspaceID); err != nil {
			return processed, err
		}
	}
	return processed, nil
}

// UploadQuestions wipes the SQL-example collection and reloads it from
// manifest, keeping only entries whose DBID matches dbName.
func UploadQuestions(ctx context.Context, store vectorstore.Store, ts TimestampSetter, workspaceID int64, dbName string, manifest []QuestionManifestEntry, r Reporter) (int, error) {
	if r == nil {
		r = NoopReporter
	}
	log := zap.S().Named("jobs.upload_questions")

	if err := store.DeleteCollection(ctx, vectorstore.DocTypeSQL); err != nil {
		return 0, fmt.Errorf("wipe sql collection: %w", err)
	}

	matching := filterQuestionsByDBID(manifest, dbName)
	total := len(matching)
	processed, failed := 0, 0
	r.Update(0, 0, total)

	for _, q := range matching {
		doc := vectorstore.SqlDocument{Question: q.Question, SQL: q.SQL, Evidence: q.Evidence}
		if _, err := store.AddSQL(ctx, doc); err != nil {
			log.Errorw("failed to add sql document", "error", err)
			failed++
		} else {
			processed++
		}
		r.Update(processed, failed, total)
	}

	if failed == 0 {
		if err := ts.SetLastSQLLoaded(ctx, workspaceID); err != nil {
			return processed, err
		}
	}
	return processed, nil
}

func filterByDBID(manifest []EvidenceManifestEntry, dbName string) []EvidenceManifestEntry {
	var out []EvidenceManifestEntry
	for _, e := range manifest {
		if e.DBID == dbName {
			out = append(out, e)
		}
	}
	return out
}

func filterQuestionsByDBID(manifest []QuestionManifestEntry, dbName string) []QuestionManifestEntry {
	var out []QuestionManifestEntry
	for _, q := range manifest {
		if q.DBID == dbName {
			out = append(out, q)
		}
	}
	return out
}
