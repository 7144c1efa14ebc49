// Package delimiter corrects SQL identifier and string-literal delimiters
// to match a target database dialect's preferred syntax,
// ported from this pipeline's original delimiter-correction helper.
//
// SQLite/MySQL/MariaDB prefer backticks for identifiers, PostgreSQL/Oracle
// double quotes, SQL Server square brackets; strings are always
// normalized to single quotes with doubled-quote escaping, and Oracle
// additionally upper-cases quoted identifiers.
package delimiter

import (
	"fmt"
	"regexp"
	"strings"
)

// delimiters is one dialect's preferred identifier/string quoting.
type delimiters struct {
	identifierOpen  string
	identifierClose string
	string_         string
	oracle          bool
}

var delimiterMap = map[string]delimiters{
	"sqlite":    {"`", "`", "'", false},
	"postgresql": {`"`, `"`, "'", false},
	"postgres":  {`"`, `"`, "'", false},
	"mysql":     {"`", "`", "'", false},
	"mariadb":   {"`", "`", "'", false},
	"mssql":     {"[", "]", "'", false},
	"sqlserver": {"[", "]", "'", false},
	"oracle":    {`"`, `"`, "'", true},
}

var defaultDelimiters = delimiters{`"`, `"`, "'", false}

// delimitersForDB resolves a (possibly aliased, case-insensitive) dialect
// name to its delimiter set, falling back to the double-quote default.
func delimitersForDB(dbType string) delimiters {
	if dbType == "" {
		return defaultDelimiters
	}
	key := strings.ToLower(strings.TrimSpace(dbType))
	switch key {
	case "postgres", "postgresql":
		key = "postgresql"
	case "mssql", "sqlserver", "sql server":
		key = "mssql"
	case "sqlite", "sqlite3":
		key = "sqlite"
	}
	if d, ok := delimiterMap[key]; ok {
		return d
	}
	return defaultDelimiters
}

func isValidIdentifierChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

var reservedWords = map[string]bool{
	"select": true, "from": true, "where": true, "order": true, "group": true,
	"having": true, "insert": true, "update": true, "delete": true, "create": true,
	"drop": true, "alter": true, "index": true, "table": true, "view": true,
	"procedure": true, "function": true, "trigger": true, "database": true, "schema": true,
	"union": true, "join": true, "inner": true, "outer": true, "left": true, "right": true,
	"cross": true, "exists": true, "in": true, "between": true, "like": true, "null": true,
	"not": true, "and": true, "or": true, "case": true, "when": true, "then": true,
	"else": true, "end": true, "distinct": true, "all": true, "user": true, "date": true,
	"time": true, "timestamp": true, "status": true,
}

// needsDelimiter reports whether identifier must be quoted: contains a
// non-alnum/underscore character, starts with a digit, or is a reserved
// word.
func needsDelimiter(identifier string) bool {
	if identifier == "" {
		return false
	}
	for i := 0; i < len(identifier); i++ {
		if !isValidIdentifierChar(identifier[i]) {
			return true
		}
	}
	if identifier[0] >= '0' && identifier[0] <= '9' {
		return true
	}
	return reservedWords[strings.ToLower(identifier)]
}

var stringIndicators = []string{
	"=", "!=", "<>", "<", ">", "<=", ">=",
	"IN", "LIKE", "ILIKE", "VALUES", "VALUE",
}

var identifierIndicators = []string{
	"SELECT", "FROM", "UPDATE", "JOIN", "LEFT JOIN", "RIGHT JOIN", "INNER JOIN",
	"ORDER BY", "GROUP BY", "WHERE", "ON", "AS",
}

// isStringContext inspects the text preceding a quoted segment to decide
// whether it is a string literal (after a comparison operator, IN, LIKE,
// VALUES) or an identifier (after SELECT, FROM, JOIN, ...).
func isStringContext(sql string, startPos int) bool {
	beforeText := strings.TrimSpace(sql[:startPos])
	if beforeText == "" {
		return false
	}
	upper := strings.ToUpper(beforeText)

	for _, ind := range stringIndicators {
		indUpper := strings.ToUpper(ind)
		if strings.HasSuffix(upper, indUpper) {
			return true
		}
		if strings.HasSuffix(upper, "("+indUpper) ||
			strings.HasSuffix(upper, ", "+indUpper) ||
			strings.HasSuffix(upper, ","+indUpper) {
			return true
		}
	}

	if strings.HasSuffix(beforeText, ",") || strings.HasSuffix(beforeText, "(") {
		words := strings.Fields(upper)
		if len(words) >= 1 && (words[len(words)-1] == "IN" || words[len(words)-1] == "VALUES") {
			return true
		}
		if len(words) >= 2 && (words[len(words)-2] == "IN" || words[len(words)-2] == "VALUES") {
			return true
		}
	}

	for _, ind := range identifierIndicators {
		if strings.HasSuffix(upper, ind) {
			return false
		}
	}

	return false
}

type quoteType int

const (
	quoteString quoteType = iota
	quoteIdentifier
)

type placeholderEntry struct {
	content string
	kind    quoteType
}

var (
	singleQuotePattern = regexp.MustCompile(`'([^'\\]|\\.)*'`)
	doubleQuotePattern = regexp.MustCompile(`"([^"\\]|\\.)*"`)
	backtickPattern    = regexp.MustCompile("`([^`\\\\]|\\\\.)*`")
	bracketPattern     = regexp.MustCompile(`\[([^\]\\]|\\.)*\]`)
)

// extractQuotedSegments replaces every quoted span in sql with a unique
// placeholder token, recording its original text and (for non-single-quote
// spans) an inferred string-vs-identifier classification, so the
// delimiter rewrite never touches content sitting inside a literal.
func extractQuotedSegments(sql string) (string, map[string]placeholderEntry) {
	placeholders := make(map[string]placeholderEntry)
	counter := 0
	result := sql

	replaceReverse := func(re *regexp.Regexp, classify func(matchStart int) quoteType) {
		matches := re.FindAllStringIndex(result, -1)
		for i := len(matches) - 1; i >= 0; i-- {
			start, end := matches[i][0], matches[i][1]
			content := result[start:end]
			kind := classify(start)
			placeholder := fmt.Sprintf("__QUOTE_PLACEHOLDER_%d__", counter)
			placeholders[placeholder] = placeholderEntry{content: content, kind: kind}
			result = result[:start] + placeholder + result[end:]
			counter++
		}
	}

	replaceReverse(singleQuotePattern, func(int) quoteType { return quoteString })
	for _, re := range []*regexp.Regexp{doubleQuotePattern, backtickPattern, bracketPattern} {
		replaceReverse(re, func(start int) quoteType {
			if isStringContext(result, start) {
				return quoteString
			}
			return quoteIdentifier
		})
	}

	return result, placeholders
}

// restoreQuotedSegments rewrites every placeholder back into text using
// the target dialect's delimiters: strings become single-quoted with
// doubled-quote escaping, identifiers become dialect-quoted (or left bare
// if they don't need quoting), with Oracle upper-casing quoted
// identifiers.
func restoreQuotedSegments(sql string, placeholders map[string]placeholderEntry, d delimiters) string {
	result := sql
	for placeholder, entry := range placeholders {
		var corrected string
		inner := entry.content
		if len(inner) >= 2 {
			inner = inner[1 : len(inner)-1]
		}

		switch entry.kind {
		case quoteString:
			inner = strings.ReplaceAll(inner, "'", "''")
			corrected = "'" + inner + "'"
		case quoteIdentifier:
			if needsDelimiter(inner) {
				if d.oracle {
					inner = strings.ToUpper(inner)
				}
				corrected = d.identifierOpen + inner + d.identifierClose
			} else {
				corrected = inner
			}
		default:
			corrected = entry.content
		}

		result = strings.ReplaceAll(result, placeholder, corrected)
	}
	return result
}

// Correct rewrites sql's identifier and string delimiters to match dbType's
// preferred syntax. An empty or whitespace-only sql, or an empty dbType, is
// returned unchanged.
func Correct(sql, dbType string) string {
	if strings.TrimSpace(sql) == "" {
		return sql
	}
	if dbType == "" {
		return sql
	}

	d := delimitersForDB(dbType)
	processed, placeholders := extractQuotedSegments(sql)
	return restoreQuotedSegments(processed, placeholders, d)
}
