package query

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-modeltrans/internal/logging"
	"github.com/goliatone/go-modeltrans/internal/translate"
	"github.com/goliatone/go-modeltrans/pkg/interfaces"
)

// operators accepted by Where. Anything outside this set is a caller error.
var operators = map[string]struct{}{
	"=":        {},
	"!=":       {},
	"<":        {},
	"<=":       {},
	">":        {},
	">=":       {},
	"LIKE":     {},
	"NOT LIKE": {},
	"IN":       {},
}

// Manager builds bun queries against a translated model, rewriting synthetic
// accessor names into dialect-specific SQL wherever they appear in filters,
// ordering, or selected columns.
type Manager struct {
	db     *bun.DB
	model  *translate.Model
	logger interfaces.Logger
}

// NewManager wires a translated model to a database handle.
func NewManager(db *bun.DB, model *translate.Model, logger interfaces.Logger) *Manager {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Manager{db: db, model: model, logger: logger}
}

// Model returns the translated model this manager queries.
func (m *Manager) Model() *translate.Model { return m.model }

// NewSelect starts a select query over the model with its declared ordering
// already applied.
func (m *Manager) NewSelect(ctx context.Context) *bun.SelectQuery {
	q := m.db.NewSelect().Model(m.model.Schema().New())
	for _, clause := range m.model.DeclaredOrdering(ctx) {
		q = m.applyOrder(q, clause)
	}
	return q
}

// Where adds a filter on name, which may be a physical column or a synthetic
// accessor. Active-language accessors filter with the full fallback chain;
// explicit-language accessors filter that language's value only.
func (m *Manager) Where(ctx context.Context, q *bun.SelectQuery, name, op string, value any) (*bun.SelectQuery, error) {
	operator := strings.ToUpper(strings.TrimSpace(op))
	if _, ok := operators[operator]; !ok {
		return nil, goerrors.New("unsupported filter operator: "+op, goerrors.CategoryValidation).
			WithTextCode("QUERY_OPERATOR_INVALID")
	}

	sql, args, err := m.resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("filter rewritten", "field", name, "operator", operator)

	if operator == "IN" {
		args = append(args, bun.In(value))
		return q.Where(sql+" IN (?)", args...), nil
	}
	args = append(args, value)
	return q.Where(sql+" "+operator+" ?", args...), nil
}

// Order adds ordering clauses. Entries follow the declared-ordering syntax:
// accessor or column names, "-" prefix for descending.
func (m *Manager) Order(ctx context.Context, q *bun.SelectQuery, entries ...string) (*bun.SelectQuery, error) {
	clauses, err := m.model.RewriteOrdering(ctx, entries)
	if err != nil {
		return nil, err
	}
	for _, clause := range clauses {
		q = m.applyOrder(q, clause)
	}
	m.logger.Debug("ordering rewritten", "entries", strings.Join(entries, ","))
	return q, nil
}

// Column annotates the query with a resolved accessor value selected under
// its accessor name.
func (m *Manager) Column(ctx context.Context, q *bun.SelectQuery, name string) (*bun.SelectQuery, error) {
	sql, args, err := m.resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("column annotated", "field", name)
	return q.ColumnExpr(sql+" AS "+name, args...), nil
}

// Expression renders the SQL for name under the manager's dialect, for
// callers composing their own query fragments.
func (m *Manager) Expression(ctx context.Context, name string, fallback bool) (string, []any, error) {
	field, ok := m.model.Field(name)
	if !ok {
		if m.model.Schema().HasColumn(name) {
			return name, nil, nil
		}
		return "", nil, goerrors.New("unknown field or accessor: "+name, goerrors.CategoryValidation).
			WithTextCode("QUERY_FIELD_UNKNOWN")
	}
	sql, args := field.AsExpression(ctx, name, fallback).Render(m.db.Dialect().Name())
	return sql, args, nil
}

// resolve picks the fallback behavior by accessor kind: active-language
// accessors resolve through the chain, explicit-language accessors do not.
func (m *Manager) resolve(ctx context.Context, name string) (string, []any, error) {
	fallback := true
	if field, ok := m.model.Field(name); ok {
		fallback = field.Language() == ""
	}
	return m.Expression(ctx, name, fallback)
}

func (m *Manager) applyOrder(q *bun.SelectQuery, clause translate.OrderExpr) *bun.SelectQuery {
	sql, args := clause.Expr.Render(m.db.Dialect().Name())
	dir := "ASC"
	if clause.Desc {
		dir = "DESC"
	}
	return q.OrderExpr(sql+" "+dir, args...)
}
