package translate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-modeltrans/internal/expr"
	"github.com/goliatone/go-modeltrans/internal/fieldname"
	"github.com/goliatone/go-modeltrans/internal/languages"
	"github.com/goliatone/go-modeltrans/internal/logging"
	"github.com/goliatone/go-modeltrans/internal/record"
	"github.com/goliatone/go-modeltrans/pkg/interfaces"
	"github.com/goliatone/go-modeltrans/translations"
)

// DescendingMarker prefixes ordering entries that sort descending.
const DescendingMarker = "-"

var (
	_ interfaces.Accessor      = (*VirtualField)(nil)
	_ interfaces.BagDescriptor = (*Descriptor)(nil)
)

// ModelConfig declares a translated model: the record prototype, its
// translation options, and an optional declared ordering that may reference
// synthetic accessor names.
type ModelConfig struct {
	// Type is the record prototype, typically a nil typed pointer such as
	// (*Post)(nil).
	Type any

	Options translations.Options

	// Ordering lists default ordering clauses. Entries may name physical
	// columns or synthetic accessors, optionally prefixed with "-".
	Ordering []string
}

// Validate ensures the declaration carries the required fields before the
// schema is built.
func (c ModelConfig) Validate() error {
	errs := validation.Errors{}
	if c.Type == nil {
		errs["type"] = validation.NewError("modeltrans.model.type_required", "record prototype is required")
	}
	if !c.Options.DisableAccessors && len(c.Options.Fields) == 0 {
		errs["fields"] = validation.NewError("modeltrans.model.fields_required", "at least one translatable field is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Model is a translated record type: the compiled descriptor plus the full
// set of synthetic accessors generated for it.
type Model struct {
	schema     *record.Schema
	descriptor *Descriptor
	resolver   *languages.Resolver
	logger     interfaces.Logger

	accessors map[string]*VirtualField
	order     []string
	ordering  []orderEntry
	disabled  bool
}

type orderEntry struct {
	name string
	desc bool
}

// OrderExpr pairs a resolved ordering expression with its sort direction.
type OrderExpr struct {
	Expr expr.Expression
	Desc bool
}

// NewModel validates the declaration and generates the synthetic accessors:
// one active-language accessor per base field, one accessor per configured
// language, and, only when no per-record default-language field is set, a
// dedicated accessor for the global default language pointing at the base
// column. Any validation failure or name collision aborts before the model
// is usable.
func NewModel(cfg ModelConfig, resolver *languages.Resolver, logger interfaces.Logger) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NoOp()
	}

	schema, err := record.SchemaOf(cfg.Type)
	if err != nil {
		return nil, err
	}
	descriptor, err := newDescriptor(schema, cfg.Options, resolver)
	if err != nil {
		return nil, err
	}

	m := &Model{
		schema:     schema,
		descriptor: descriptor,
		resolver:   resolver,
		logger:     logger,
		accessors:  map[string]*VirtualField{},
		disabled:   cfg.Options.DisableAccessors,
	}

	if !m.disabled {
		if err := m.addAccessors(); err != nil {
			return nil, err
		}
	}

	for _, entry := range cfg.Ordering {
		name, desc := strings.CutPrefix(entry, DescendingMarker)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := m.accessors[name]; !ok && !schema.HasColumn(name) {
			return nil, &translations.ConfigurationError{Model: schema.Name(), Field: name, Err: translations.ErrUnknownField}
		}
		m.ordering = append(m.ordering, orderEntry{name: name, desc: desc})
	}

	logger.Debug("translation model defined",
		"model", schema.Name(),
		"fields", len(cfg.Options.Fields),
		"accessors", len(m.order),
	)
	return m, nil
}

func (m *Model) addAccessors() error {
	perRecordDefault := m.descriptor.DefaultLanguageField() != ""

	for _, base := range m.descriptor.TranslatableFields() {
		required := m.descriptor.RequiredFor(base)
		castType := ""
		if field, ok := m.schema.FieldByColumn(base); ok {
			castType = castTypeFor(field.SQLType)
		}

		// Active-language accessor first: <base>_i18n.
		if err := m.addAccessor(&VirtualField{
			descriptor: m.descriptor,
			schema:     m.schema,
			resolver:   m.resolver,
			name:       fieldname.Encode(base, activeSuffix),
			base:       base,
			castType:   castType,
		}); err != nil {
			return err
		}

		if !perRecordDefault {
			// The global default language resolves to the base column; its
			// accessor exists for symmetry and is never required.
			if err := m.addAccessor(&VirtualField{
				descriptor: m.descriptor,
				schema:     m.schema,
				resolver:   m.resolver,
				name:       fieldname.Encode(base, m.resolver.Default()),
				base:       base,
				language:   m.resolver.Default(),
				castType:   castType,
			}); err != nil {
				return err
			}
		}

		for _, language := range m.resolver.Available() {
			if !perRecordDefault && language == m.resolver.Default() {
				continue
			}
			if err := m.addAccessor(&VirtualField{
				descriptor: m.descriptor,
				schema:     m.schema,
				resolver:   m.resolver,
				name:       fieldname.Encode(base, language),
				base:       base,
				language:   language,
				required:   containsString(required, language),
				castType:   castType,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Model) addAccessor(field *VirtualField) error {
	if m.schema.HasColumn(field.name) {
		return &translations.ConfigurationError{Model: m.schema.Name(), Field: field.name, Err: translations.ErrAccessorCollision}
	}
	if _, exists := m.accessors[field.name]; exists {
		return &translations.ConfigurationError{Model: m.schema.Name(), Field: field.name, Err: translations.ErrAccessorCollision}
	}
	m.accessors[field.name] = field
	m.order = append(m.order, field.name)
	return nil
}

// castTypeFor maps a declared column type onto the cast target used by
// no-fallback expressions.
func castTypeFor(sqlType string) string {
	if strings.HasPrefix(strings.ToLower(sqlType), "varchar") {
		return "VARCHAR"
	}
	return "TEXT"
}

// Name returns the record type name.
func (m *Model) Name() string { return m.schema.Name() }

// Descriptor returns the model's bag descriptor.
func (m *Model) Descriptor() *Descriptor { return m.descriptor }

// Schema returns the reflective record schema.
func (m *Model) Schema() *record.Schema { return m.schema }

// Field returns the synthetic accessor with the given name.
func (m *Model) Field(name string) (*VirtualField, bool) {
	field, ok := m.accessors[name]
	return field, ok
}

// Accessors returns every synthetic accessor in generation order.
func (m *Model) Accessors() []*VirtualField {
	out := make([]*VirtualField, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.accessors[name])
	}
	return out
}

// Translatable returns the base field column names declared translatable.
func (m *Model) Translatable() []string {
	return m.descriptor.TranslatableFields()
}

// Read resolves the named accessor on rec.
func (m *Model) Read(ctx context.Context, rec any, name string) (*string, error) {
	field, ok := m.accessors[name]
	if !ok {
		return nil, m.accessorError(name)
	}
	return field.Read(ctx, rec)
}

// Write stores value through the named accessor on rec.
func (m *Model) Write(ctx context.Context, rec any, name string, value *string) error {
	field, ok := m.accessors[name]
	if !ok {
		return m.accessorError(name)
	}
	return field.Write(ctx, rec, value)
}

func (m *Model) accessorError(name string) error {
	if m.disabled {
		return fmt.Errorf("%w: %s", translations.ErrAccessorsDisabled, name)
	}
	return fmt.Errorf("%w: %s", translations.ErrNotTranslated, name)
}

// MarkTranslationsDeferred flags rec's bag as excluded from loading. The
// record-storage layer calls this after scanning a query that skipped the
// bag column.
func (m *Model) MarkTranslationsDeferred(rec any) error {
	bag, err := m.schema.Bag(rec)
	if err != nil {
		return err
	}
	bag.MarkDeferred()
	return nil
}

// ApplyValues routes a value map onto rec: accessor names go through
// translated writes, physical column names through direct assignment. This
// is the explicit counterpart of constructor keyword rewriting: create
// factories call it instead of the model mutating its own construction.
func (m *Model) ApplyValues(ctx context.Context, rec any, values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, err := coerceString(values[name])
		if err != nil {
			return fmt.Errorf("translations: value for %q: %w", name, err)
		}
		if field, ok := m.accessors[name]; ok {
			if err := field.Write(ctx, rec, value); err != nil {
				return err
			}
			continue
		}
		if m.schema.HasColumn(name) {
			if err := m.schema.SetString(rec, name, value); err != nil {
				return err
			}
			continue
		}
		return fmt.Errorf("%w: %s", translations.ErrUnknownField, name)
	}
	return nil
}

func coerceString(value any) (*string, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case string:
		return &typed, nil
	case *string:
		return typed, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}

// RewriteOrdering resolves ordering entries into expressions: synthetic
// accessor names become their fallback-aware expressions, anything else
// passes through as a column reference. Sort direction and relative order
// are preserved.
func (m *Model) RewriteOrdering(ctx context.Context, entries []string) ([]OrderExpr, error) {
	out := make([]OrderExpr, 0, len(entries))
	for _, entry := range entries {
		name, desc := strings.CutPrefix(entry, DescendingMarker)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if field, ok := m.accessors[name]; ok {
			out = append(out, OrderExpr{Expr: field.AsExpression(ctx, name, true), Desc: desc})
			continue
		}
		out = append(out, OrderExpr{Expr: expr.Column(name), Desc: desc})
	}
	return out, nil
}

// DeclaredOrdering resolves the ordering declared at definition time.
func (m *Model) DeclaredOrdering(ctx context.Context) []OrderExpr {
	out := make([]OrderExpr, 0, len(m.ordering))
	for _, entry := range m.ordering {
		if field, ok := m.accessors[entry.name]; ok {
			out = append(out, OrderExpr{Expr: field.AsExpression(ctx, entry.name, true), Desc: entry.desc})
			continue
		}
		out = append(out, OrderExpr{Expr: expr.Column(entry.name), Desc: entry.desc})
	}
	return out
}
