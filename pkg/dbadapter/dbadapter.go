// Package dbadapter implements the pluggable DB manager registry: one
// concrete manager per SQL dialect (PostgreSQL, MySQL, MariaDB, SQLite,
// SQL Server, Oracle), introspection, and paginated execution, behind a
// dialect-keyed registry.
package dbadapter

import "context"

// TableInfo describes one introspected table.
type TableInfo struct {
	Name   string
	Schema string
}

// ColumnInfo describes one introspected column.
type ColumnInfo struct {
	Table      string
	Name       string
	DataType   string
	Nullable   bool
	IsPrimary  bool
	IsForeign  bool
}

// ForeignKey describes one introspected foreign-key relationship.
type ForeignKey struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
}

// SortModel requests a column sort for ExecutePaginated.
type SortModel struct {
	Field string
	Desc  bool
}

// FilterModel requests an equality filter for ExecutePaginated.
type FilterModel struct {
	Field string
	Value string
}

// PaginatedResult is the shape returned to /execute-query.
type PaginatedResult struct {
	Rows    []map[string]any
	Total   int
	Columns []string
	Error   string
}

// Manager is the operation set every dialect adapter implements.
type Manager interface {
	IntrospectTables(ctx context.Context) ([]TableInfo, error)
	IntrospectColumns(ctx context.Context, table string) ([]ColumnInfo, error)
	IntrospectForeignKeys(ctx context.Context) ([]ForeignKey, error)
	GetTableSchema(ctx context.Context, table string) (string, error)
	GetExampleData(ctx context.Context, table string, k int) (map[string][]string, error)
	ExecutePaginated(ctx context.Context, sql string, page, pageSize int, sort *SortModel, filter *FilterModel) (PaginatedResult, error)
	HealthCheck(ctx context.Context) bool
	Close() error
}

// Dialect is the closed set of supported SQL dialects.
type Dialect string

const (
	DialectPostgreSQL Dialect = "postgresql"
	DialectMySQL       Dialect = "mysql"
	DialectMariaDB     Dialect = "mariadb"
	DialectSQLite      Dialect = "sqlite"
	DialectSQLServer   Dialect = "sqlserver"
	DialectOracle      Dialect = "oracle"
)

// ConnectionParams carries the coordinates passed to a dialect's factory.
type ConnectionParams struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Schema   string

	// DBRoot and Mode back the SQLite path convention
	// {db_root}/{mode}_databases/{name}/{name}.sqlite.
	DBRoot string
	Mode   string
	Name   string
}
