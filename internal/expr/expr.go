// Package expr builds the SQL fragments that mirror in-memory translation
// resolution inside the query engine: key extraction from the bag document,
// per-record default-language branching, and first-non-null coalescing.
//
// Fragments render to placeholder SQL plus arguments, ready for bun's
// ColumnExpr/Where/OrderExpr. Rendering is dialect-aware: Postgres uses the
// jsonb `->>` operator, every other dialect the json_extract function.
package expr

import (
	"strings"

	"github.com/uptrace/bun/dialect"
)

// Expression is a composable, immutable query fragment. Render returns
// placeholder SQL and the matching arguments for the given dialect.
type Expression interface {
	Render(name dialect.Name) (string, []any)
}

// Column references a physical column. Dotted paths pass through untouched
// so callers can address joined relations by alias.
type Column string

func (c Column) Render(dialect.Name) (string, []any) {
	return string(c), nil
}

// JSONKey extracts a static key from a JSON document column.
type JSONKey struct {
	Column string
	Key    string
}

func (e JSONKey) Render(name dialect.Name) (string, []any) {
	if name == dialect.PG {
		return "(" + e.Column + " ->> ?)", []any{e.Key}
	}
	return "json_extract(" + e.Column + ", ?)", []any{"$." + e.Key}
}

// DynamicJSONKey extracts a key computed at query time from a field prefix
// and the value of another column, supporting per-record fallback languages.
type DynamicJSONKey struct {
	Column    string
	Prefix    string
	KeyColumn string
}

func (e DynamicJSONKey) Render(name dialect.Name) (string, []any) {
	if name == dialect.PG {
		return "(" + e.Column + " ->> (? || " + e.KeyColumn + "))", []any{e.Prefix}
	}
	return "json_extract(" + e.Column + ", '$.' || ? || " + e.KeyColumn + ")", []any{e.Prefix}
}

// CaseWhen branches on a column comparing equal to a constant. It reproduces
// the read path's per-record default-language short circuit: when the
// record's default language equals the candidate, the base column is used
// instead of a bag lookup.
type CaseWhen struct {
	Column string
	Equals string
	Then   Expression
	Else   Expression
}

func (e CaseWhen) Render(name dialect.Name) (string, []any) {
	thenSQL, thenArgs := e.Then.Render(name)
	elseSQL, elseArgs := e.Else.Render(name)
	args := make([]any, 0, 1+len(thenArgs)+len(elseArgs))
	args = append(args, e.Equals)
	args = append(args, thenArgs...)
	args = append(args, elseArgs...)
	return "CASE WHEN " + e.Column + " = ? THEN " + thenSQL + " ELSE " + elseSQL + " END", args
}

// Coalesce yields the first non-null of its parts.
type Coalesce []Expression

func (e Coalesce) Render(name dialect.Name) (string, []any) {
	if len(e) == 1 {
		return e[0].Render(name)
	}
	parts := make([]string, 0, len(e))
	var args []any
	for _, part := range e {
		sql, partArgs := part.Render(name)
		parts = append(parts, sql)
		args = append(args, partArgs...)
	}
	return "COALESCE(" + strings.Join(parts, ", ") + ")", args
}

// Cast annotates an expression with the base field's output type.
type Cast struct {
	Expr Expression
	Type string
}

func (e Cast) Render(name dialect.Name) (string, []any) {
	sql, args := e.Expr.Render(name)
	typ := e.Type
	if typ == "" || name != dialect.PG {
		typ = "TEXT"
	}
	return "CAST(" + sql + " AS " + strings.ToUpper(typ) + ")", args
}
