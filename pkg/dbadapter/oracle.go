package dbadapter

import (
	sq "github.com/Masterminds/squirrel"
	go_ora "github.com/sijms/go-ora/v2"
)

// newOracleManager has no grounding source in the retrieval pack (see
// DESIGN.md) — same reasoning as sqlserver.go: an ecosystem-standard
// driver for a closed-set dialect no example repo carries.
func newOracleManager(p ConnectionParams) (Manager, error) {
	dsn := go_ora.BuildUrl(p.Host, p.Port, p.Database, p.User, p.Password, nil)

	return newSQLManager("oracle", dsn, dialectConfig{
		dialect:           DialectOracle,
		driverName:        "oracle",
		placeholderFormat: sq.Colon,
		quoteIdent:        func(s string) string { return `"` + upper(s) + `"` },
		listTablesSQL:     `SELECT table_name, owner FROM all_tables WHERE owner = USER`,
		listColumnsSQL: `
			SELECT column_name, data_type,
			       CASE WHEN nullable = 'Y' THEN 'true' ELSE 'false' END,
			       'false', 'false'
			FROM all_tab_columns WHERE table_name = :1`,
		listFKsSQL: `
			SELECT
				a.table_name, a.column_name,
				c_pk.table_name, b.column_name
			FROM all_constraints c
			JOIN all_cons_columns a ON c.constraint_name = a.constraint_name
			JOIN all_constraints c_pk ON c.r_constraint_name = c_pk.constraint_name
			JOIN all_cons_columns b ON c_pk.constraint_name = b.constraint_name
			WHERE c.constraint_type = 'R'`,
	})
}

// upper upper-cases an identifier the way Oracle's catalog expects.
func upper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if 'a' <= c && c <= 'z' {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}
