package dbadapter

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql" // registers the "mysql" database/sql driver
)

// newMySQLManager serves both MySQL and MariaDB: the wire protocol and
// catalog queries are compatible, so both dialects share one manager.
func newMySQLManager(p ConnectionParams, dialect Dialect) (Manager, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		p.User, p.Password, p.Host, p.Port, p.Database)

	return newSQLManager("mysql", dsn, dialectConfig{
		dialect:           dialect,
		driverName:        "mysql",
		placeholderFormat: sq.Question,
		quoteIdent:        func(s string) string { return "`" + s + "`" },
		listTablesSQL: `
			SELECT table_name, table_schema FROM information_schema.tables
			WHERE table_schema = DATABASE()`,
		listColumnsSQL: `
			SELECT column_name, data_type, is_nullable,
			       CASE WHEN column_key = 'PRI' THEN 'true' ELSE 'false' END,
			       CASE WHEN column_key = 'MUL' THEN 'true' ELSE 'false' END
			FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ?`,
		listFKsSQL: `
			SELECT table_name, column_name, referenced_table_name, referenced_column_name
			FROM information_schema.key_column_usage
			WHERE table_schema = DATABASE() AND referenced_table_name IS NOT NULL`,
	})
}
