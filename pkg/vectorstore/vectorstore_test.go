package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryReturnsConfigurationErrorForUnimplementedBackends(t *testing.T) {
	reg := NewRegistry()
	for _, backend := range []BackendType{BackendQdrant, BackendChroma, BackendMilvus} {
		_, err := reg.Get(context.Background(), "w1", backend, ConnectionParams{})
		require.Error(t, err)
	}
}

type fakeStore struct{ closed bool }

func (f *fakeStore) AddEvidence(context.Context, EvidenceDocument) (string, error) { return "", nil }
func (f *fakeStore) AddColumnDescription(context.Context, ColumnNameDocument) (string, error) {
	return "", nil
}
func (f *fakeStore) AddSQL(context.Context, SqlDocument) (string, error) { return "", nil }
func (f *fakeStore) BulkAddDocuments(context.Context, []Document) ([]string, error) {
	return nil, nil
}
func (f *fakeStore) GetDocument(context.Context, string) (Document, error) { return Document{}, nil }
func (f *fakeStore) DeleteDocuments(context.Context, []string) error       { return nil }
func (f *fakeStore) DeleteCollection(context.Context, DocType) error       { return nil }
func (f *fakeStore) EnsureCollectionExists(context.Context) error          { return nil }
func (f *fakeStore) SearchSimilar(context.Context, string, DocType, int, float64) ([]Document, error) {
	return nil, nil
}
func (f *fakeStore) GetAllEvidenceDocuments(context.Context) ([]EvidenceDocument, error) {
	return nil, nil
}
func (f *fakeStore) GetAllSQLDocuments(context.Context) ([]SqlDocument, error) { return nil, nil }
func (f *fakeStore) GetAllColumnDocuments(context.Context) ([]ColumnNameDocument, error) {
	return nil, nil
}
func (f *fakeStore) GetCollectionInfo(context.Context) (CollectionInfo, error) {
	return CollectionInfo{}, nil
}
func (f *fakeStore) Close() error { f.closed = true; return nil }

func TestRegistryCachesSingleInstancePerKey(t *testing.T) {
	reg := NewRegistry()
	built := 0
	reg.RegisterFactory(BackendSQLiteVec, func(ctx context.Context, params ConnectionParams) (Store, error) {
		built++
		return &fakeStore{}, nil
	})

	a, err := reg.Get(context.Background(), "w1", BackendSQLiteVec, ConnectionParams{})
	require.NoError(t, err)
	b, err := reg.Get(context.Background(), "w1", BackendSQLiteVec, ConnectionParams{})
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, built)
}

func TestRegistryInvalidateClosesStore(t *testing.T) {
	reg := NewRegistry()
	fs := &fakeStore{}
	reg.RegisterFactory(BackendSQLiteVec, func(ctx context.Context, params ConnectionParams) (Store, error) {
		return fs, nil
	})

	_, err := reg.Get(context.Background(), "w1", BackendSQLiteVec, ConnectionParams{})
	require.NoError(t, err)
	require.NoError(t, reg.Invalidate("w1"))
	assert.True(t, fs.closed)
}
