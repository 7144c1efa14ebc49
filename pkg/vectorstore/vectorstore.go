// Package vectorstore implements the typed document facade: three
// document variants (evidence, column descriptions, SQL examples) backed
// by a pluggable similarity-search engine. Embeddings are always produced
// inside the facade through a configured EmbeddingProvider —
// callers never assume vector dimensionality.
package vectorstore

import "context"

// DocType identifies one of the three document variants.
type DocType string

const (
	DocTypeEvidence   DocType = "evidence"
	DocTypeColumnName DocType = "column_name"
	DocTypeSQL        DocType = "sql"
)

// EvidenceDocument is a textual hint usable by SQL generators.
type EvidenceDocument struct {
	ID   string
	Text string
}

// ColumnNameDocument enriches a schema column with vector-store knowledge.
type ColumnNameDocument struct {
	ID                string
	Table             string
	Column            string
	OriginalName      string
	ColumnDescription string
	ValueDescription  string
}

// SqlDocument is a gold or user-liked (question, sql, evidence) example.
type SqlDocument struct {
	ID       string
	Question string
	SQL      string
	Evidence string
}

// Document is the common envelope returned by search and get operations;
// exactly one of the typed fields is populated according to Type.
type Document struct {
	Type       DocType
	Evidence   *EvidenceDocument
	ColumnName *ColumnNameDocument
	SQL        *SqlDocument
	Score      float64
}

// CollectionInfo is the shape returned by GetCollectionInfo.
type CollectionInfo struct {
	Name          string
	Total         int
	PerTypeCounts map[DocType]int
	Backend       string
	Status        string
}

// EmbeddingProvider produces the vector representation persisted
// alongside a document. Concrete backends call it internally; it is never
// exposed to pipeline callers.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the operation set every vector-store backend implements.
type Store interface {
	AddEvidence(ctx context.Context, doc EvidenceDocument) (string, error)
	AddColumnDescription(ctx context.Context, doc ColumnNameDocument) (string, error)
	AddSQL(ctx context.Context, doc SqlDocument) (string, error)
	BulkAddDocuments(ctx context.Context, docs []Document) ([]string, error)

	GetDocument(ctx context.Context, id string) (Document, error)
	DeleteDocuments(ctx context.Context, ids []string) error
	DeleteCollection(ctx context.Context, docType DocType) error
	EnsureCollectionExists(ctx context.Context) error

	SearchSimilar(ctx context.Context, queryText string, docType DocType, topK int, scoreThreshold float64) ([]Document, error)

	GetAllEvidenceDocuments(ctx context.Context) ([]EvidenceDocument, error)
	GetAllSQLDocuments(ctx context.Context) ([]SqlDocument, error)
	GetAllColumnDocuments(ctx context.Context) ([]ColumnNameDocument, error)

	GetCollectionInfo(ctx context.Context) (CollectionInfo, error)
	Close() error
}

// BackendType is the closed set of vector-store engines this module
// supports.
type BackendType string

const (
	BackendQdrant   BackendType = "Qdrant"
	BackendChroma   BackendType = "Chroma"
	BackendPGVector BackendType = "PGVector"
	BackendMilvus   BackendType = "Milvus"

	// BackendSQLiteVec is a local backend this module adds for workspaces
	// without a dedicated vector-DB deployment.
	BackendSQLiteVec BackendType = "SQLiteVec"
)

// ConnectionParams carries the coordinates a backend factory needs.
type ConnectionParams struct {
	Host           string
	Port           int
	APIKey         string
	Tenant         string
	CollectionName string
	FilePath       string // sqlite-vec local file
	DSN            string // pgvector, reuses the Postgres DB adapter's DSN
}
