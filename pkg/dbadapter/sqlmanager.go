package dbadapter

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

// dialectConfig holds what differs between dialects once queries are
// expressed through squirrel: placeholder style, identifier quoting, and
// the introspection queries specific to the engine's catalog tables.
type dialectConfig struct {
	dialect           Dialect
	driverName        string
	placeholderFormat sq.PlaceholderFormat
	quoteIdent        func(string) string
	listTablesSQL     string
	listColumnsSQL    string
	listFKsSQL        string
}

// sqlManager is the generic database/sql-backed Manager shared by every
// dialect adapter; only a dialectConfig differs between postgres.go,
// mysql.go, sqlite.go, sqlserver.go and oracle.go. This generalizes the
// teacher's internal/store/vm.go squirrel-over-database/sql pattern from
// one fixed schema to arbitrary introspected schemas across six dialects.
type sqlManager struct {
	db     *sql.DB
	cfg    dialectConfig
	logger *zap.SugaredLogger
}

func newSQLManager(driverName, dsn string, cfg dialectConfig) (*sqlManager, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("dbadapter: open %s: %w", cfg.dialect, err)
	}
	return &sqlManager{db: db, cfg: cfg, logger: zap.S().Named("dbadapter").Named(string(cfg.dialect))}, nil
}

func (m *sqlManager) Close() error {
	return m.db.Close()
}

func (m *sqlManager) HealthCheck(ctx context.Context) bool {
	if err := m.db.PingContext(ctx); err != nil {
		m.logger.Warnw("health check failed", "error", err)
		return false
	}
	return true
}

func (m *sqlManager) IntrospectTables(ctx context.Context) ([]TableInfo, error) {
	rows, err := m.db.QueryContext(ctx, m.cfg.listTablesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Name, &t.Schema); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (m *sqlManager) IntrospectColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := m.db.QueryContext(ctx, m.cfg.listColumnsSQL, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		var nullable, isPK, isFK string
		if err := rows.Scan(&c.Name, &c.DataType, &nullable, &isPK, &isFK); err != nil {
			return nil, err
		}
		c.Table = table
		c.Nullable = nullable == "YES" || nullable == "1" || nullable == "true"
		c.IsPrimary = isPK == "YES" || isPK == "1" || isPK == "true"
		c.IsForeign = isFK == "YES" || isFK == "1" || isFK == "true"
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (m *sqlManager) IntrospectForeignKeys(ctx context.Context) ([]ForeignKey, error) {
	rows, err := m.db.QueryContext(ctx, m.cfg.listFKsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.SourceTable, &fk.SourceColumn, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

// GetTableSchema returns the column-list text renderFallbackSchema builds
// from IntrospectColumns. This is the same for every dialect; no native
// DDL-reflection query is issued.
func (m *sqlManager) GetTableSchema(ctx context.Context, table string) (string, error) {
	cols, err := m.IntrospectColumns(ctx, table)
	if err != nil {
		return "", err
	}
	return renderFallbackSchema(table, cols), nil
}

// renderFallbackSchema builds a human-readable table structure from
// columns alone — used by SQLite (no native schema text) and as the
// generic fallback for every dialect's GetTableSchema.
func renderFallbackSchema(table string, cols []ColumnInfo) string {
	out := fmt.Sprintf("TABLE %s (\n", table)
	for i, c := range cols {
		out += fmt.Sprintf("  %s %s", c.Name, c.DataType)
		if c.IsPrimary {
			out += " PRIMARY KEY"
		}
		if i < len(cols)-1 {
			out += ","
		}
		out += "\n"
	}
	out += ")"
	return out
}

func (m *sqlManager) GetExampleData(ctx context.Context, table string, k int) (map[string][]string, error) {
	query, _, err := m.builder().Select("*").From(m.cfg.quoteIdent(table)).Limit(uint64(k)).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string, len(cols))
	for rows.Next() {
		values := make([]any, len(cols))
		scanArgs := make([]any, len(cols))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		for i, col := range cols {
			result[col] = append(result[col], fmt.Sprintf("%v", values[i]))
		}
	}
	return result, rows.Err()
}

func (m *sqlManager) ExecutePaginated(ctx context.Context, rawSQL string, page, pageSize int, sort *SortModel, filter *FilterModel) (PaginatedResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	wrapped := m.builder().Select("*").From(fmt.Sprintf("(%s) AS base", rawSQL))
	if filter != nil {
		wrapped = wrapped.Where(sq.Eq{m.cfg.quoteIdent(filter.Field): filter.Value})
	}
	if sort != nil {
		order := m.cfg.quoteIdent(sort.Field)
		if sort.Desc {
			order += " DESC"
		}
		wrapped = wrapped.OrderBy(order)
	}
	wrapped = wrapped.Limit(uint64(pageSize)).Offset(uint64((page - 1) * pageSize))

	query, args, err := wrapped.ToSql()
	if err != nil {
		return PaginatedResult{}, err
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return PaginatedResult{Error: err.Error()}, nil
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return PaginatedResult{}, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		scanArgs := make([]any, len(cols))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return PaginatedResult{}, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}

	total, err := m.countRows(ctx, rawSQL)
	if err != nil {
		total = len(out)
	}

	return PaginatedResult{Rows: out, Total: total, Columns: cols}, rows.Err()
}

func (m *sqlManager) countRows(ctx context.Context, rawSQL string) (int, error) {
	query, args, err := m.builder().Select("COUNT(*)").From(fmt.Sprintf("(%s) AS base", rawSQL)).ToSql()
	if err != nil {
		return 0, err
	}
	var total int
	err = m.db.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

func (m *sqlManager) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(m.cfg.placeholderFormat)
}
