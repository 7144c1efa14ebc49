package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

type fakeVectorStore struct {
	deletedTypes []vectorstore.DocType
	evidence     []vectorstore.EvidenceDocument
	sql          []vectorstore.SqlDocument
}

func (f *fakeVectorStore) AddEvidence(ctx context.Context, doc vectorstore.EvidenceDocument) (string, error) {
	f.evidence = append(f.evidence, doc)
	return "id", nil
}
func (f *fakeVectorStore) AddColumnDescription(ctx context.Context, doc vectorstore.ColumnNameDocument) (string, error) {
	return "id", nil
}
func (f *fakeVectorStore) AddSQL(ctx context.Context, doc vectorstore.SqlDocument) (string, error) {
	f.sql = append(f.sql, doc)
	return "id", nil
}
func (f *fakeVectorStore) BulkAddDocuments(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	return nil, nil
}
func (f *fakeVectorStore) GetDocument(ctx context.Context, id string) (vectorstore.Document, error) {
	return vectorstore.Document{}, nil
}
func (f *fakeVectorStore) DeleteDocuments(ctx context.Context, ids []string) error { return nil }
func (f *fakeVectorStore) DeleteCollection(ctx context.Context, docType vectorstore.DocType) error {
	f.deletedTypes = append(f.deletedTypes, docType)
	return nil
}
func (f *fakeVectorStore) EnsureCollectionExists(ctx context.Context) error { return nil }
func (f *fakeVectorStore) SearchSimilar(ctx context.Context, queryText string, docType vectorstore.DocType, topK int, scoreThreshold float64) ([]vectorstore.Document, error) {
	return nil, nil
}
func (f *fakeVectorStore) GetAllEvidenceDocuments(ctx context.Context) ([]vectorstore.EvidenceDocument, error) {
	return f.evidence, nil
}
func (f *fakeVectorStore) GetAllSQLDocuments(ctx context.Context) ([]vectorstore.SqlDocument, error) {
	return f.sql, nil
}
func (f *fakeVectorStore) GetAllColumnDocuments(ctx context.Context) ([]vectorstore.ColumnNameDocument, error) {
	return nil, nil
}
func (f *fakeVectorStore) GetCollectionInfo(ctx context.Context) (vectorstore.CollectionInfo, error) {
	return vectorstore.CollectionInfo{}, nil
}
func (f *fakeVectorStore) Close() error { return nil }

type fakeTimestampSetter struct {
	evidenceSet bool
	sqlSet      bool
}

func (f *fakeTimestampSetter) SetLastEvidenceLoad(ctx context.Context, workspaceID int64) error {
	f.evidenceSet = true
	return nil
}
func (f *fakeTimestampSetter) SetLastSQLLoaded(ctx context.Context, workspaceID int64) error {
	f.sqlSet = true
	return nil
}

func TestUploadEvidenceFiltersByDBIDAndSetsTimestamp(t *testing.T) {
	store := &fakeVectorStore{}
	ts := &fakeTimestampSetter{}
	manifest := []EvidenceManifestEntry{
		{DBID: "sales", Text: "keep this"},
		{DBID: "other", Text: "drop this"},
	}

	n, err := UploadEvidence(context.Background(), store, ts, 1, "sales", manifest, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, store.evidence, 1)
	assert.Equal(t, "keep this", store.evidence[0].Text)
	assert.Contains(t, store.deletedTypes, vectorstore.DocTypeEvidence)
	assert.True(t, ts.evidenceSet)
}

func TestUploadQuestionsFiltersByDBIDAndSetsTimestamp(t *testing.T) {
	store := &fakeVectorStore{}
	ts := &fakeTimestampSetter{}
	manifest := []QuestionManifestEntry{
		{DBID: "sales", Question: "q1", SQL: "SELECT 1"},
		{DBID: "other", Question: "q2", SQL: "SELECT 2"},
	}

	n, err := UploadQuestions(context.Background(), store, ts, 1, "sales", manifest, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, store.sql, 1)
	assert.Equal(t, "q1", store.sql[0].Question)
	assert.Contains(t, store.deletedTypes, vectorstore.DocTypeSQL)
	assert.True(t, ts.sqlSet)
}

func TestParseEvidenceManifestRoundTrip(t *testing.T) {
	raw := []byte(`[{"db_id":"sales","text":"hint"}]`)
	entries, err := ParseEvidenceManifest(raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sales", entries[0].DBID)
}

func TestParseQuestionManifestRoundTrip(t *testing.T) {
	raw := []byte(`[{"db_id":"sales","question":"q","sql":"SELECT 1","evidence":"e"}]`)
	entries, err := ParseQuestionManifest(raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SELECT 1", entries[0].SQL)
}
