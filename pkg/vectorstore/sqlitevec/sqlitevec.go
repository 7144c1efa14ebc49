// Package sqlitevec implements the vectorstore.Store facade on top of
// sqlite-vec, grounded on theRebelliousNerd-codenerd's
// internal/store/local_vector.go local embedding store. It is the backend
// used for workspaces without a dedicated vector-DB deployment and for
// tests.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "modernc.org/sqlite"

	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

func init() {
	sqlite_vec.Auto()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	doc_type TEXT NOT NULL,
	payload TEXT NOT NULL
);
CREATE VIRTUAL TABLE IF NOT EXISTS document_vectors USING vec0(
	id TEXT PRIMARY KEY,
	embedding FLOAT[%d]
);
`

// Backend is the sqlite-vec implementation of vectorstore.Store.
type Backend struct {
	db         *sql.DB
	embed      vectorstore.EmbeddingProvider
	collection string
	dim        int
	nextID     int
}

// Open opens (and initializes, if new) a sqlite-vec database file.
func Open(path string, embed vectorstore.EmbeddingProvider, collection string, dim int) (*Backend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: open: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf(schemaSQL, dim)); err != nil {
		return nil, fmt.Errorf("sqlitevec: init schema: %w", err)
	}
	return &Backend{db: db, embed: embed, collection: collection, dim: dim}, nil
}

func (b *Backend) Close() error { return b.db.Close() }

func (b *Backend) EnsureCollectionExists(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, fmt.Sprintf(schemaSQL, b.dim))
	return err
}

type storedDoc struct {
	Type       vectorstore.DocType               `json:"type"`
	Evidence   *vectorstore.EvidenceDocument      `json:"evidence,omitempty"`
	ColumnName *vectorstore.ColumnNameDocument    `json:"column_name,omitempty"`
	SQL        *vectorstore.SqlDocument           `json:"sql,omitempty"`
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
	vecJSON, err := json.Marshal(vec)
	if err != nil {
		return "", err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO documents (id, doc_type, payload) VALUES (?, ?, ?)`,
		id, string(docType), string(payload)); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO document_vectors (id, embedding) VALUES (?, ?)`,
		id, string(vecJSON)); err != nil {
		return "", err
	}

	return id, tx.Commit()
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
	var docTypeStr, payload string
	err := b.db.QueryRowContext(ctx, `SELECT doc_type, payload FROM documents WHERE id = ?`, id).
		Scan(&docTypeStr, &payload)
	if err != nil {
		return vectorstore.Document{}, err
	}
	return decodeDocument(payload)
}

func decodeDocument(payload string) (vectorstore.Document, error) {
	var sd storedDoc
	if err := json.Unmarshal([]byte(payload), &sd); err != nil {
		return vectorstore.Document{}, err
	}
	return vectorstore.Document{Type: sd.Type, Evidence: sd.Evidence, ColumnName: sd.ColumnName, SQL: sd.SQL}, nil
}

func (b *Backend) DeleteDocuments(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := b.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
			return err
		}
		if _, err := b.db.ExecContext(ctx, `DELETE FROM document_vectors WHERE id = ?`, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteCollection wipes every document of docType, the coarse
// "wipe & reupload" primitive the upload jobs use.
func (b *Backend) DeleteCollection(ctx context.Context, docType vectorstore.DocType) error {
	rows, err := b.db.QueryContext(ctx, `SELECT id FROM documents WHERE doc_type = ?`, string(docType))
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	return b.DeleteDocuments(ctx, ids)
}

func (b *Backend) SearchSimilar(ctx context.Context, queryText string, docType vectorstore.DocType, topK int, scoreThreshold float64) ([]vectorstore.Document, error) {
	vec, err := b.embed.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}
	vecJSON, err := json.Marshal(vec)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, `
		SELECT d.payload, v.distance
		FROM document_vectors v
		JOIN documents d ON d.id = v.id
		WHERE v.embedding MATCH ? AND d.doc_type = ? AND k = ?
		ORDER BY v.distance`,
		string(vecJSON), string(docType), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vectorstore.Document
	for rows.Next() {
		var payload string
		var distance float64
		if err := rows.Scan(&payload, &distance); err != nil {
			return nil, err
		}
		score := 1.0 / (1.0 + distance)
		if score < scoreThreshold {
			continue
		}
		doc, err := decodeDocument(payload)
		if err != nil {
			return nil, err
		}
		doc.Score = score
		out = append(out, doc)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, rows.Err()
}

func (b *Backend) getAll(ctx context.Context, docType vectorstore.DocType) ([]storedDoc, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT payload FROM documents WHERE doc_type = ?`, string(docType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storedDoc
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var sd storedDoc
		if err := json.Unmarshal([]byte(payload), &sd); err != nil {
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
		if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE doc_type = ?`, string(dt)).Scan(&n); err != nil {
			return vectorstore.CollectionInfo{}, err
		}
		counts[dt] = n
	}
	total := counts[vectorstore.DocTypeEvidence] + counts[vectorstore.DocTypeColumnName] + counts[vectorstore.DocTypeSQL]
	return vectorstore.CollectionInfo{
		Name: b.collection, Total: total, PerTypeCounts: counts,
		Backend: "sqlite-vec", Status: "healthy",
	}, nil
}
