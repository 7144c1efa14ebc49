package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

// VectorDb is the persisted shape of the VectorDb entity.
type VectorDb struct {
	ID             int64
	Backend        vectorstore.BackendType
	Host           string
	Port           int
	APIKey         string
	Tenant         string
	CollectionName string
}

// VectorDbStore persists VectorDb rows and enforces the single-owner
// invariant: a VectorDb may be referenced by at most one SqlDb at a time;
// on conflict during import, the previous owner is unset first.
type VectorDbStore struct {
	db    queryer
	rawDB *sql.DB // only AssignToSqlDb needs a real transaction
}

func newVectorDbStore(db queryer, rawDB *sql.DB) *VectorDbStore {
	return &VectorDbStore{db: db, rawDB: rawDB}
}

const queryInsertVectorDb = `
	INSERT INTO vector_db (backend, host, port, api_key, tenant, collection_name)
	VALUES (?, ?, ?, ?, ?, ?)`

// Create inserts a new VectorDb row and returns its assigned ID.
func (s *VectorDbStore) Create(ctx context.Context, v VectorDb) (int64, error) {
	res, err := s.db.ExecContext(ctx, queryInsertVectorDb, string(v.Backend), v.Host, v.Port, v.APIKey, v.Tenant, v.CollectionName)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const queryGetVectorDb = `
	SELECT id, backend, host, port, api_key, tenant, collection_name
	FROM vector_db WHERE id = ?`

// Get retrieves the VectorDb with the given ID.
func (s *VectorDbStore) Get(ctx context.Context, id int64) (*VectorDb, error) {
	row := s.db.QueryRowContext(ctx, queryGetVectorDb, id)
	var v VectorDb
	var backend string
	err := row.Scan(&v.ID, &backend, &v.Host, &v.Port, &v.APIKey, &v.Tenant, &v.CollectionName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewConfigurationNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	v.Backend = vectorstore.BackendType(backend)
	return &v, nil
}

// AssignToSqlDb points sqlDbID at vectorDbID, first unsetting whichever
// SqlDb (if any) currently references it — the invariant's conflict
// resolution rule, run inside one transaction.
func (s *VectorDbStore) AssignToSqlDb(ctx context.Context, vectorDbID, sqlDbID int64) error {
	tx, err := s.rawDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin assign vector_db: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE sql_db SET vector_db_id = NULL WHERE vector_db_id = ?`, vectorDbID); err != nil {
		return fmt.Errorf("store: unset previous vector_db owner: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sql_db SET vector_db_id = ? WHERE id = ?`, vectorDbID, sqlDbID); err != nil {
		return fmt.Errorf("store: assign vector_db owner: %w", err)
	}
	return tx.Commit()
}
