package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
	"github.com/mptyl/thoth-sqlgen/pkg/schema/lsh"
	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

func TestBuildSimilarColumnsNilIndexIsCritical(t *testing.T) {
	_, err := BuildSimilarColumns(nil, []string{"shipped"}, &ProjectedSchema{})
	require.Error(t, err)
	var svcErr *srvErrors.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, srvErrors.SeverityCritical, svcErr.Severity)
}

func TestBuildSimilarColumnsAttachesExamples(t *testing.T) {
	idx := lsh.NewIndex()
	idx.Add("orders", "status", "shipped")

	s := &ProjectedSchema{Tables: []Table{
		{Name: "orders", Columns: []Column{{Name: "status"}}},
	}}

	matches, err := BuildSimilarColumns(idx, []string{"shipped"}, s)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Contains(t, s.Tables[0].Columns[0].ExampleValues, "shipped")
}

type fakeColumnStore struct {
	docs []vectorstore.ColumnNameDocument
	err  error
}

func (f *fakeColumnStore) AddEvidence(context.Context, vectorstore.EvidenceDocument) (string, error) {
	return "", nil
}
func (f *fakeColumnStore) AddColumnDescription(context.Context, vectorstore.ColumnNameDocument) (string, error) {
	return "", nil
}
func (f *fakeColumnStore) AddSQL(context.Context, vectorstore.SqlDocument) (string, error) {
	return "", nil
}
func (f *fakeColumnStore) BulkAddDocuments(context.Context, []vectorstore.Document) ([]string, error) {
	return nil, nil
}
func (f *fakeColumnStore) GetDocument(context.Context, string) (vectorstore.Document, error) {
	return vectorstore.Document{}, nil
}
func (f *fakeColumnStore) DeleteDocuments(context.Context, []string) error { return nil }
func (f *fakeColumnStore) DeleteCollection(context.Context, vectorstore.DocType) error { return nil }
func (f *fakeColumnStore) EnsureCollectionExists(context.Context) error               { return nil }
func (f *fakeColumnStore) SearchSimilar(context.Context, string, vectorstore.DocType, int, float64) ([]vectorstore.Document, error) {
	return nil, nil
}
func (f *fakeColumnStore) GetAllEvidenceDocuments(context.Context) ([]vectorstore.EvidenceDocument, error) {
	return nil, nil
}
func (f *fakeColumnStore) GetAllSQLDocuments(context.Context) ([]vectorstore.SqlDocument, error) {
	return nil, nil
}
func (f *fakeColumnStore) GetAllColumnDocuments(context.Context) ([]vectorstore.ColumnNameDocument, error) {
	return f.docs, f.err
}
func (f *fakeColumnStore) GetCollectionInfo(context.Context) (vectorstore.CollectionInfo, error) {
	return vectorstore.CollectionInfo{}, nil
}
func (f *fakeColumnStore) Close() error { return nil }

func TestEnrichFromVectorStoreMergesDescriptions(t *testing.T) {
	store := &fakeColumnStore{docs: []vectorstore.ColumnNameDocument{
		{Table: "orders", Column: "status", ColumnDescription: "lifecycle state", ValueDescription: "enum"},
	}}
	s := &ProjectedSchema{Tables: []Table{{Name: "orders", Columns: []Column{{Name: "status"}}}}}

	err := EnrichFromVectorStore(context.Background(), store, s)
	require.NoError(t, err)
	assert.Equal(t, "lifecycle state", s.Tables[0].Columns[0].AIDescription)
	assert.Equal(t, "enum", s.Tables[0].Columns[0].ValueDescription)
}

func TestEnrichFromVectorStoreNilStoreIsNoop(t *testing.T) {
	s := &ProjectedSchema{}
	require.NoError(t, EnrichFromVectorStore(context.Background(), nil, s))
}

func TestSelectStrategy(t *testing.T) {
	cases := []struct {
		name                                    string
		questionLength, keywordCount, tableCount int
		want                                    LinkStrategy
	}{
		{"small schema stays full", 40, 5, 4, WithoutSchemaLink},
		{"many keywords and many tables link", 40, 3, 9, WithSchemaLink},
		{"long question and many tables link", 130, 0, 9, WithSchemaLink},
		{"short question few keywords stays full", 40, 1, 20, WithoutSchemaLink},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectStrategy(tc.questionLength, tc.keywordCount, tc.tableCount)
			assert.Equal(t, tc.want, got)
		})
	}
}
