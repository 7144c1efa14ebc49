// Package pgvector implements vectorstore.Store on a Postgres connection
// carrying the pgvector extension, reusing pkg/dbadapter's Postgres pool
// coordinates rather than a separate driver (DESIGN.md notes pgvector has
// no dedicated pack-grounded Go client).
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS %s_documents (
	id TEXT PRIMARY KEY,
	doc_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	embedding vector(%d)
);
`

// Backend is the pgvector implementation of vectorstore.Store.
type Backend struct {
	pool       *pgxpool.Pool
	embed      vectorstore.EmbeddingProvider
	collection string
	dim        int
	nextID     int
}

func Open(ctx context.Context, dsn string, embed vectorstore.EmbeddingProvider, collection string, dim int) (*Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgvector: connect: %w", err)
	}
	b := &Backend{pool: pool, embed: embed, collection: sanitize(collection), dim: dim}
	if err := b.EnsureCollectionExists(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

func (b *Backend) EnsureCollectionExists(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, fmt.Sprintf(schemaSQL, b.collection, b.dim))
	return err
}

func (b *Backend) table() string { return b.collection + "_documents" }

type storedDoc struct {
	Type       vectorstore.DocType             `json:"type"`
	Evidence   *vectorstore.EvidenceDocument    `json:"evidence,omitempty"`
	ColumnName *vectorstore.ColumnNameDocument  `json:"column_name,omitempty"`
	SQL        *vectorstore.SqlDocument         `json:"sql,omitempty"`
}

func (b *Backend) insert(ctx context.Context, id string, docType vectorstore.DocType, doc storedDoc, text string) (string, error) {
	if id == "" {
		b.nextID++
		id = fmt.Sprintf("%s-%d", docType, b.nextID)
	}
	doc.Type = docType

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	vec, err := b.embed.Embed(ctx, text)
	if err != nil {
		return "", err
	}

	_, err = b.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, doc_type, payload, embedding) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, embedding = EXCLUDED.embedding`, b.table()),
		id, string(docType), payload, pgvectorLiteral(vec))
	return id, err
}

// pgvectorLiteral renders a float32 slice as pgvector's `[v1,v2,...]` text
// input format.
func pgvectorLiteral(vec []float32) string {
	out := "["
	for i, v := range vec {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%g", v)
	}
	return out + "]"
}

func (b *Backend) AddEvidence(ctx context.Context, doc vectorstore.EvidenceDocument) (string, error) {
	return b.insert(ctx, doc.ID, vectorstore.DocTypeEvidence, storedDoc{Evidence: &doc}, doc.Text)
}

func (b *Backend) AddColumnDescription(ctx context.Context, doc vectorstore.ColumnNameDocument) (string, error) {
	text := doc.Table + " " + doc.Column + " " + doc.ColumnDescription + " " + doc.ValueDescription
	return b.insert(ctx, doc.ID, vectorstore.DocTypeColumnName, storedDoc{ColumnName: &doc}, text)
}

func (b *Backend) AddSQL(ctx context.Context, doc vectorstore.SqlDocument) (string, error) {
	return b.insert(ctx, doc.ID, vectorstore.DocTypeSQL, storedDoc{SQL: &doc}, doc.Question)
}

func (b *Backend) BulkAddDocuments(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		var (
			id  string
			err error
		)
		switch d.Type {
		case vectorstore.DocTypeEvidence:
			id, err = b.AddEvidence(ctx, *d.Evidence)
		case vectorstore.DocTypeColumnName:
			id, err = b.AddColumnDescription(ctx, *d.ColumnName)
		case vectorstore.DocTypeSQL:
			id, err = b.AddSQL(ctx, *d.SQL)
		default:
			continue
		}
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (b *Backend) GetDocument(ctx context.Context, id string) (vectorstore.Document, error) {
	var payload []byte
	err := b.pool.QueryRow(ctx, fmt.Sprintf(`SELECT payload FROM %s WHERE id = $1`, b.table()), id).Scan(&payload)
	if err != nil {
		return vectorstore.Document{}, err
	}
	var sd storedDoc
	if err := json.Unmarshal(payload, &sd); err != nil {
		return vectorstore.Document{}, err
	}
	return vectorstore.Document{Type: sd.Type, Evidence: sd.Evidence, ColumnName: sd.ColumnName, SQL: sd.SQL}, nil
}

func (b *Backend) DeleteDocuments(ctx context.Context, ids []string) error {
	_, err := b.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, b.table()), ids)
	return err
}

func (b *Backend) DeleteCollection(ctx context.Context, docType vectorstore.DocType) error {
	_, err := b.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE doc_type = $1`, b.table()), string(docType))
	return err
}

func (b *Backend) SearchSimilar(ctx context.Context, queryText string, docType vectorstore.DocType, topK int, scoreThreshold float64) ([]vectorstore.Document, error) {
	vec, err := b.embed.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}

	rows, err := b.pool.Query(ctx, fmt.Sprintf(`
		SELECT payload, 1 - (embedding <=> $1) AS score
		FROM %s
		WHERE doc_type = $2
		ORDER BY embedding <=> $1
		LIMIT $3`, b.table()),
		pgvectorLiteral(vec), string(docType), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vectorstore.Document
	for rows.Next() {
		var payload []byte
		var score float64
		if err := rows.Scan(&payload, &score); err != nil {
			return nil, err
		}
		if score < scoreThreshold {
			continue
		}
		var sd storedDoc
		if err := json.Unmarshal(payload, &sd); err != nil {
			return nil, err
		}
		out = append(out, vectorstore.Document{Type: sd.Type, Evidence: sd.Evidence, ColumnName: sd.ColumnName, SQL: sd.SQL, Score: score})
	}
	return out, rows.Err()
}

func (b *Backend) getAll(ctx context.Context, docType vectorstore.DocType) ([]storedDoc, error) {
	rows, err := b.pool.Query(ctx, fmt.Sprintf(`SELECT payload FROM %s WHERE doc_type = $1`, b.table()), string(docType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storedDoc
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var sd storedDoc
		if err := json.Unmarshal(payload, &sd); err != nil {
			return nil, err
		}
		out = append(out, sd)
	}
	return out, rows.Err()
}

func (b *Backend) GetAllEvidenceDocuments(ctx context.Context) ([]vectorstore.EvidenceDocument, error) {
	docs, err := b.getAll(ctx, vectorstore.DocTypeEvidence)
	if err != nil {
		return nil, err
	}
	out := make([]vectorstore.EvidenceDocument, 0, len(docs))
	for _, d := range docs {
		if d.Evidence != nil {
			out = append(out, *d.Evidence)
		}
	}
	return out, nil
}

func (b *Backend) GetAllSQLDocuments(ctx context.Context) ([]vectorstore.SqlDocument, error) {
	docs, err := b.getAll(ctx, vectorstore.DocTypeSQL)
	if err != nil {
		return nil, err
	}
	out := make([]vectorstore.SqlDocument, 0, len(docs))
	for _, d := range docs {
		if d.SQL != nil {
			out = append(out, *d.SQL)
		}
	}
	return out, nil
}

func (b *Backend) GetAllColumnDocuments(ctx context.Context) ([]vectorstore.ColumnNameDocument, error) {
	docs, err := b.getAll(ctx, vectorstore.DocTypeColumnName)
	if err != nil {
		return nil, err
	}
	out := make([]vectorstore.ColumnNameDocument, 0, len(docs))
	for _, d := range docs {
		if d.ColumnName != nil {
			out = append(out, *d.ColumnName)
		}
	}
	return out, nil
}

func (b *Backend) GetCollectionInfo(ctx context.Context) (vectorstore.CollectionInfo, error) {
	counts := map[vectorstore.DocType]int{}
	for _, dt := range []vectorstore.DocType{vectorstore.DocTypeEvidence, vectorstore.DocTypeColumnName, vectorstore.DocTypeSQL} {
		var n int
		if err := b.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE doc_type = $1`, b.table()), string(dt)).Scan(&n); err != nil {
			return vectorstore.CollectionInfo{}, err
		}
		counts[dt] = n
	}
	total := counts[vectorstore.DocTypeEvidence] + counts[vectorstore.DocTypeColumnName] + counts[vectorstore.DocTypeSQL]
	return vectorstore.CollectionInfo{
		Name: b.collection, Total: total, PerTypeCounts: counts,
		Backend: "pgvector", Status: "healthy",
	}, nil
}
