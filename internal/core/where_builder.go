package core

import (
	"fmt"
	"strings"
)

// WhereBuilder accumulates parameterized WHERE conditions for Postgres.
// Column names must come from a whitelist; only values are parameterized.
type WhereBuilder struct {
	conditions []string
	args       []interface{}
	argIndex   int
}

func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "column = $n". Empty values are skipped.
func (w *WhereBuilder) Add(column, value string) *WhereBuilder {
	if value == "" {
		return w
	}
	w.conditions = append(w.conditions, fmt.Sprintf("%s = $%d", quoteIdentifier(column), w.argIndex))
	w.args = append(w.args, value)
	w.argIndex++
	return w
}

// AddCompare appends "column op $n" for op in =, <, <=, >, >=.
func (w *WhereBuilder) AddCompare(column, op string, value interface{}) *WhereBuilder {
	switch op {
	case "=", "<", "<=", ">", ">=":
	default:
		return w
	}
	w.conditions = append(w.conditions, fmt.Sprintf("%s %s $%d", quoteIdentifier(column), op, w.argIndex))
	w.args = append(w.args, value)
	w.argIndex++
	return w
}

// AddSearch matches query case-insensitively against any of columns,
// sharing one parameter. Blank queries are skipped.
func (w *WhereBuilder) AddSearch(query string, columns []string) *WhereBuilder {
	query = strings.TrimSpace(query)
	if query == "" || len(columns) == 0 {
		return w
	}

	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", quoteIdentifier(col), w.argIndex)
	}
	w.conditions = append(w.conditions, "("+strings.Join(parts, " OR ")+")")
	w.args = append(w.args, "%"+escapeLike(query)+"%")
	w.argIndex++
	return w
}

// Build returns " WHERE ..." and its arguments, or ("", nil) when empty.
func (w *WhereBuilder) Build() (string, []interface{}) {
	if len(w.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(w.conditions, " AND "), w.args
}

// NextArgIndex returns the next free placeholder number.
func (w *WhereBuilder) NextArgIndex() int {
	return w.argIndex
}

// quoteIdentifier quotes a column name, escaping embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
