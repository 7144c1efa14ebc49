package delimiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectSQLiteIdentifiersAndStrings(t *testing.T) {
	sql := `SELECT "field name" FROM "my table" WHERE "status" = "active"`
	got := Correct(sql, "sqlite")
	assert.Equal(t, "SELECT `field name` FROM `my table` WHERE `status` = 'active'", got)
}

func TestCorrectMSSQLUsesBrackets(t *testing.T) {
	sql := `SELECT "field name" FROM "my table" WHERE "status" = "active"`
	got := Correct(sql, "mssql")
	assert.Equal(t, "SELECT [field name] FROM [my table] WHERE [status] = 'active'", got)
}

func TestCorrectUnquotedSimpleIdentifierStaysBare(t *testing.T) {
	sql := `SELECT "my_table" FROM "my_table"`
	got := Correct(sql, "mysql")
	assert.Equal(t, "SELECT my_table FROM my_table", got)
}

func TestCorrectOracleUppercasesIdentifiers(t *testing.T) {
	sql := `SELECT "field name" FROM "my table"`
	got := Correct(sql, "oracle")
	assert.Equal(t, `SELECT "FIELD NAME" FROM "MY TABLE"`, got)
}

func TestCorrectEmptySQLReturnsUnchanged(t *testing.T) {
	assert.Equal(t, "", Correct("", "sqlite"))
	assert.Equal(t, "   ", Correct("   ", "sqlite"))
}

func TestCorrectEmptyDBTypeReturnsUnchanged(t *testing.T) {
	sql := `SELECT "x" FROM t`
	assert.Equal(t, sql, Correct(sql, ""))
}

func TestCorrectUnknownDialectFallsBackToDoubleQuotes(t *testing.T) {
	sql := "SELECT `field name` FROM t"
	got := Correct(sql, "made-up-dialect")
	assert.Equal(t, `SELECT "field name" FROM t`, got)
}

func TestCorrectPreservesSingleQuotedStringContent(t *testing.T) {
	sql := `SELECT * FROM t WHERE name = 'O''Brien'`
	got := Correct(sql, "postgresql")
	assert.Equal(t, `SELECT * FROM t WHERE name = 'O''Brien'`, got)
}

func TestCorrectDialectAliases(t *testing.T) {
	sql := `SELECT "x" FROM t`
	assert.Equal(t, `SELECT x FROM t`, Correct(sql, "postgres"))
	assert.Equal(t, "SELECT x FROM t", Correct(sql, "SQLServer"))
}
