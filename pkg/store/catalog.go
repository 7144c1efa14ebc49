package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/mptyl/thoth-sqlgen/pkg/dbadapter"
)

// SqlTable is the persisted shape of the SqlTable entity.
type SqlTable struct {
	ID            int64
	SqlDbID       int64
	Name          string
	Description   string
	AIDescription string
	Comment       string
}

// SqlColumn is the persisted shape of the SqlColumn entity.
type SqlColumn struct {
	ID               int64
	SqlTableID       int64
	OriginalName     string
	NormalizedName   string
	DataFormat       string
	Description      string
	AIDescription    string
	ValueDescription string
	IsPrimaryKey     bool
	IsForeignKey     bool
}

// Relationship is the persisted shape of the Relationship entity,
// normalized to a (source_column_id, target_column_id) edge so both
// endpoints are always verifiably SqlColumns of the same SqlDb.
type Relationship struct {
	ID              int64
	SourceColumnID  int64
	TargetColumnID  int64
}

// CatalogStore persists the introspected SqlTable/SqlColumn/Relationship
// catalog for one SqlDb and implements pkg/jobs.CatalogUpserter for it.
type CatalogStore struct {
	db      queryer
	sqlDbID int64
}

func newCatalogStore(db queryer, sqlDbID int64) *CatalogStore {
	return &CatalogStore{db: db, sqlDbID: sqlDbID}
}

const queryUpsertTable = `
	INSERT INTO sql_table (sql_db_id, name)
	VALUES (?, ?)
	ON CONFLICT (sql_db_id, name) DO UPDATE SET name = EXCLUDED.name`

// UpsertTable implements pkg/jobs.CatalogUpserter.
func (s *CatalogStore) UpsertTable(ctx context.Context, table dbadapter.TableInfo) error {
	_, err := s.db.ExecContext(ctx, queryUpsertTable, s.sqlDbID, table.Name)
	return err
}

const queryGetTableIDByName = `SELECT id FROM sql_table WHERE sql_db_id = ? AND name = ?`

func (s *CatalogStore) getOrCreateTableID(ctx context.Context, name string) (int64, error) {
	row := s.db.QueryRowContext(ctx, queryGetTableIDByName, s.sqlDbID, name)
	var id int64
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, queryUpsertTable, s.sqlDbID, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const queryUpsertColumn = `
	INSERT INTO sql_column (sql_table_id, original_name, normalized_name, data_format, is_primary_key, is_foreign_key)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (sql_table_id, original_name) DO UPDATE SET
		data_format = EXCLUDED.data_format,
		is_primary_key = EXCLUDED.is_primary_key,
		is_foreign_key = EXCLUDED.is_foreign_key`

// UpsertColumn implements pkg/jobs.CatalogUpserter. The owning table row is
// created lazily if introspection visited this column's table out of order
// (a foreign-key-owning table absent from the initial table list).
func (s *CatalogStore) UpsertColumn(ctx context.Context, column dbadapter.ColumnInfo) error {
	tableID, err := s.getOrCreateTableID(ctx, column.Table)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, queryUpsertColumn, tableID, column.Name, column.Name,
		column.DataType, boolToInt(column.IsPrimary), boolToInt(column.IsForeign))
	return err
}

const queryGetColumnIDByName = `
	SELECT c.id FROM sql_column c
	JOIN sql_table t ON t.id = c.sql_table_id
	WHERE t.sql_db_id = ? AND t.name = ? AND c.original_name = ?`

func (s *CatalogStore) getOrCreateColumnID(ctx context.Context, table, column string) (int64, error) {
	row := s.db.QueryRowContext(ctx, queryGetColumnIDByName, s.sqlDbID, table, column)
	var id int64
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if err := s.UpsertColumn(ctx, dbadapter.ColumnInfo{Table: table, Name: column}); err != nil {
		return 0, err
	}
	row = s.db.QueryRowContext(ctx, queryGetColumnIDByName, s.sqlDbID, table, column)
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

const queryUpsertRelationship = `
	INSERT INTO relationship (source_column_id, target_column_id)
	VALUES (?, ?)
	ON CONFLICT (source_column_id, target_column_id) DO NOTHING`

// UpsertRelationship implements pkg/jobs.CatalogUpserter. Both endpoints'
// SqlColumn rows are created lazily if missing, preserving the invariant
// that every Relationship endpoint resolves to a SqlColumn of this SqlDb.
func (s *CatalogStore) UpsertRelationship(ctx context.Context, fk dbadapter.ForeignKey) error {
	sourceID, err := s.getOrCreateColumnID(ctx, fk.SourceTable, fk.SourceColumn)
	if err != nil {
		return err
	}
	targetID, err := s.getOrCreateColumnID(ctx, fk.TargetTable, fk.TargetColumn)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, queryUpsertRelationship, sourceID, targetID)
	return err
}

// TableOption narrows a ListTables query, a functional-options pattern
// over a squirrel SelectBuilder.
type TableOption func(sq.SelectBuilder) sq.SelectBuilder

// ByTableName filters to tables whose name exactly matches one of names.
func ByTableName(names ...string) TableOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(names) == 0 {
			return b
		}
		return b.Where(sq.Eq{"name": names})
	}
}

// WithTableLimit caps the number of rows returned.
func WithTableLimit(limit uint64) TableOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

// ListTables returns this SqlDb's tables, filtered/limited by opts.
func (s *CatalogStore) ListTables(ctx context.Context, opts ...TableOption) ([]SqlTable, error) {
	builder := sq.Select("id", "sql_db_id", "name", "description", "ai_description", "comment").
		From("sql_table").
		Where(sq.Eq{"sql_db_id": s.sqlDbID}).
		OrderBy("name")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []SqlTable
	for rows.Next() {
		var t SqlTable
		if err := rows.Scan(&t.ID, &t.SqlDbID, &t.Name, &t.Description, &t.AIDescription, &t.Comment); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// ListColumns returns every column of table, ordered by name.
func (s *CatalogStore) ListColumns(ctx context.Context, tableID int64) ([]SqlColumn, error) {
	query, args, err := sq.Select(
		"id", "sql_table_id", "original_name", "normalized_name", "data_format",
		"description", "ai_description", "value_description", "is_primary_key", "is_foreign_key",
	).From("sql_column").Where(sq.Eq{"sql_table_id": tableID}).OrderBy("original_name").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []SqlColumn
	for rows.Next() {
		var c SqlColumn
		var isPK, isFK int
		if err := rows.Scan(&c.ID, &c.SqlTableID, &c.OriginalName, &c.NormalizedName, &c.DataFormat,
			&c.Description, &c.AIDescription, &c.ValueDescription, &isPK, &isFK); err != nil {
			return nil, err
		}
		c.IsPrimaryKey = isPK != 0
		c.IsForeignKey = isFK != 0
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// SetTableComment persists an LLM-generated table comment.
func (s *CatalogStore) SetTableComment(ctx context.Context, tableID int64, comment string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sql_table SET comment = ? WHERE id = ?`, comment, tableID)
	return err
}

// SetColumnAIDescription persists an LLM-generated column comment.
func (s *CatalogStore) SetColumnAIDescription(ctx context.Context, columnID int64, description string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sql_column SET ai_description = ? WHERE id = ?`, description, columnID)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
