package dbadapter

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// sqlitePath implements the factory's file-path convention for SQLite
//: {db_root}/{mode}_databases/{name}/{name}.sqlite.
func sqlitePath(p ConnectionParams) string {
	return fmt.Sprintf("%s/%s_databases/%s/%s.sqlite", p.DBRoot, p.Mode, p.Name, p.Name)
}

func newSQLiteManager(p ConnectionParams) (Manager, error) {
	m, err := newSQLManager("sqlite", sqlitePath(p), dialectConfig{
		dialect:           DialectSQLite,
		driverName:        "sqlite",
		placeholderFormat: sq.Question,
		quoteIdent:        func(s string) string { return "`" + s + "`" },
		listTablesSQL:     `SELECT name, '' FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`,
		listColumnsSQL:    "", // SQLite uses PRAGMA, handled in IntrospectColumns override below
		listFKsSQL:        "", // SQLite uses PRAGMA, handled in IntrospectForeignKeys override below
	})
	if err != nil {
		return nil, err
	}
	return &sqliteManager{sqlManager: m}, nil
}

// sqliteManager overrides the parts of sqlManager that SQLite exposes
// through PRAGMA statements rather than information_schema, and supplies
// the fallback GetTableSchema renderer for dialects with no native
// schema concept ("SQLite lacks native schemas").
type sqliteManager struct {
	*sqlManager
}

func (m *sqliteManager) IntrospectColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := m.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", m.cfg.quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var cid int
		var name, dtype string
		var notNull int
		var dflt any
		var pk int
		if err := rows.Scan(&cid, &name, &dtype, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, ColumnInfo{
			Table:     table,
			Name:      name,
			DataType:  dtype,
			Nullable:  notNull == 0,
			IsPrimary: pk > 0,
		})
	}
	return cols, rows.Err()
}

func (m *sqliteManager) IntrospectForeignKeys(ctx context.Context) ([]ForeignKey, error) {
	tables, err := m.IntrospectTables(ctx)
	if err != nil {
		return nil, err
	}

	var fks []ForeignKey
	for _, t := range tables {
		rows, err := m.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", m.cfg.quoteIdent(t.Name)))
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id, seq int
			var refTable, from, to, onUpdate, onDelete, match string
			if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
				rows.Close()
				return nil, err
			}
			fks = append(fks, ForeignKey{
				SourceTable: t.Name, SourceColumn: from,
				TargetTable: refTable, TargetColumn: to,
			})
		}
		rows.Close()
	}
	return fks, nil
}

func (m *sqliteManager) GetTableSchema(ctx context.Context, table string) (string, error) {
	cols, err := m.IntrospectColumns(ctx, table)
	if err != nil {
		return "", err
	}
	return renderFallbackSchema(table, cols), nil
}
