// Package sqlutil provides SQL utility functions for SQLite statements.
package sqlutil

import (
	"fmt"
	"strings"
)

// LikeEscape is the escape character used by EscapeLike.
const LikeEscape = `\`

// QuoteIdentifier quotes a SQL identifier (table name, column name, etc.)
// with double quotes and escapes any double quotes within the identifier.
func QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, `"`, `""`)
	return `"` + escaped + `"`
}

// QuoteString quotes a SQL string literal with single quotes and escapes
// any single quotes within the string by doubling them.
func QuoteString(s string) string {
	escaped := strings.ReplaceAll(s, "'", "''")
	return "'" + escaped + "'"
}

// UnquoteString reverses QuoteString.
func UnquoteString(s string) (string, error) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", fmt.Errorf("not a quoted string literal: %s", s)
	}
	body := s[1 : len(s)-1]
	if strings.Contains(strings.ReplaceAll(body, "''", ""), "'") {
		return "", fmt.Errorf("unescaped quote in string literal: %s", s)
	}
	return strings.ReplaceAll(body, "''", "'"), nil
}

// EscapeLike escapes LIKE wildcards in s so it matches literally when used
// with ESCAPE '\'.
func EscapeLike(s string) string {
	r := strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")
	return r.Replace(s)
}
