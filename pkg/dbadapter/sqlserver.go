package dbadapter

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" database/sql driver
)

// newSQLServerManager has no grounding source in the retrieval pack (see
// DESIGN.md) — it is an ecosystem-standard driver for one of this
// module's supported dialects, with no alternative carried by any
// example repo.
func newSQLServerManager(p ConnectionParams) (Manager, error) {
	dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
		p.User, p.Password, p.Host, p.Port, p.Database)

	return newSQLManager("sqlserver", dsn, dialectConfig{
		dialect:           DialectSQLServer,
		driverName:        "sqlserver",
		placeholderFormat: sq.AtP,
		quoteIdent:        func(s string) string { return "[" + s + "]" },
		listTablesSQL: `
			SELECT table_name, table_schema FROM information_schema.tables
			WHERE table_type = 'BASE TABLE'`,
		listColumnsSQL: `
			SELECT c.column_name, c.data_type, c.is_nullable,
			       CASE WHEN pk.column_name IS NOT NULL THEN 'true' ELSE 'false' END,
			       'false'
			FROM information_schema.columns c
			LEFT JOIN (
				SELECT ku.table_name, ku.column_name
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage ku
				  ON tc.constraint_name = ku.constraint_name
				WHERE tc.constraint_type = 'PRIMARY KEY'
			) pk ON pk.table_name = c.table_name AND pk.column_name = c.column_name
			WHERE c.table_name = @p1`,
		listFKsSQL: `
			SELECT
				fk_tc.table_name, fk_ku.column_name,
				pk_ku.table_name, pk_ku.column_name
			FROM information_schema.referential_constraints rc
			JOIN information_schema.table_constraints fk_tc ON rc.constraint_name = fk_tc.constraint_name
			JOIN information_schema.key_column_usage fk_ku ON fk_tc.constraint_name = fk_ku.constraint_name
			JOIN information_schema.key_column_usage pk_ku ON rc.unique_constraint_name = pk_ku.constraint_name`,
	})
}
