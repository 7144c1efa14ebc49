package dbadapter

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

func newPostgresManager(p ConnectionParams) (Manager, error) {
	schema := p.Schema
	if schema == "" {
		schema = "public"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?search_path=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, schema)

	return newSQLManager("pgx", dsn, dialectConfig{
		dialect:           DialectPostgreSQL,
		driverName:        "pgx",
		placeholderFormat: sq.Dollar,
		quoteIdent:        func(s string) string { return `"` + s + `"` },
		listTablesSQL: `
			SELECT table_name, table_schema FROM information_schema.tables
			WHERE table_schema = current_schema()`,
		listColumnsSQL: `
			SELECT column_name, data_type,
			       CASE WHEN is_nullable = 'YES' THEN 'true' ELSE 'false' END,
			       'false', 'false'
			FROM information_schema.columns
			WHERE table_name = $1`,
		listFKsSQL: `
			SELECT
				kcu.table_name, kcu.column_name,
				ccu.table_name, ccu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name
			JOIN information_schema.constraint_column_usage ccu ON tc.constraint_name = ccu.constraint_name
			WHERE tc.constraint_type = 'FOREIGN KEY'`,
	})
}
