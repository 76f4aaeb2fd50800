package translate

import (
	"context"
	"strings"

	"github.com/goliatone/go-modeltrans/internal/expr"
	"github.com/goliatone/go-modeltrans/internal/fieldname"
	"github.com/goliatone/go-modeltrans/internal/languages"
	"github.com/goliatone/go-modeltrans/internal/record"
	"github.com/goliatone/go-modeltrans/translations"
)

// activeSuffix names the accessor variant tracking the caller's active
// language, e.g. title_i18n.
const activeSuffix = "i18n"

// VirtualField is a synthetic translated accessor for one (base field,
// language) pair. It has no storage of its own: reads and writes resolve to
// the base field's column or to the record's translation bag, and the same
// resolution compiles into a query expression.
type VirtualField struct {
	descriptor *Descriptor
	schema     *record.Schema
	resolver   *languages.Resolver

	name     string
	base     string
	language string // "" tracks the active language
	required bool
	castType string
}

// Name returns the accessor name: `<base>_<lang>` or `<base>_i18n`.
func (f *VirtualField) Name() string { return f.name }

// BaseField returns the column name of the translated base field.
func (f *VirtualField) BaseField() string { return f.base }

// Language returns the fixed target language, or "" for the active-language
// accessor.
func (f *VirtualField) Language() string { return f.language }

// Required reports whether this accessor's language is required for its base
// field. Informational: resolution never consults it.
func (f *VirtualField) Required() bool { return f.required }

func (f *VirtualField) targetLanguage(ctx context.Context) string {
	if f.language != "" {
		return f.language
	}
	return f.resolver.Active(ctx)
}

// Read resolves the accessor's value on rec.
//
// The record's default language short-circuits to the base column when the
// stored value is non-empty; the check is deliberately on emptiness, not
// presence, so an intentionally empty base value is skipped by fallback the
// same way a missing one is. Explicit-language accessors return the exact
// bag entry or nil. Active-language accessors walk the fallback chain and
// finally surface the base column regardless of its content.
func (f *VirtualField) Read(ctx context.Context, rec any) (*string, error) {
	bag, err := f.schema.Bag(rec)
	if err != nil {
		return nil, err
	}
	if bag.Deferred() {
		return nil, &translations.DeferredAccessError{Accessor: f.name}
	}

	language := f.targetLanguage(ctx)
	defaultLanguage, err := f.descriptor.DefaultLanguage(rec)
	if err != nil {
		return nil, err
	}
	original, originalSet, err := f.schema.GetString(rec, f.base)
	if err != nil {
		return nil, err
	}

	if language == defaultLanguage && original != "" {
		value := original
		return &value, nil
	}

	bag.Init()

	if f.language != "" {
		if value, ok := bag.Get(fieldname.Encode(f.base, language)); ok {
			return &value, nil
		}
		return nil, nil
	}

	chain, err := f.descriptor.InstanceChain(rec, language)
	if err != nil {
		return nil, err
	}
	for _, candidate := range append([]string{language}, chain...) {
		if candidate == defaultLanguage {
			if original != "" {
				value := original
				return &value, nil
			}
			continue
		}
		if value, ok := bag.Get(fieldname.Encode(f.base, candidate)); ok && value != "" {
			return &value, nil
		}
	}

	// Last resort: the base column, whatever it holds.
	if !originalSet {
		return nil, nil
	}
	value := original
	return &value, nil
}

// Write stores value through the accessor. The record's default language
// routes to the base column; any other language routes to the bag, where a
// nil value removes the entry instead of storing a null.
func (f *VirtualField) Write(ctx context.Context, rec any, value *string) error {
	bag, err := f.schema.Bag(rec)
	if err != nil {
		return err
	}

	language := f.targetLanguage(ctx)
	defaultLanguage, err := f.descriptor.DefaultLanguage(rec)
	if err != nil {
		return err
	}

	if language == defaultLanguage {
		return f.schema.SetString(rec, f.base, value)
	}

	if bag.Deferred() {
		return &translations.DeferredAccessError{Accessor: f.name}
	}

	key := fieldname.Encode(f.base, language)
	if value == nil {
		bag.Delete(key)
		return nil
	}
	bag.Set(key, *value)
	return nil
}

// AsExpression compiles the accessor's resolution into a query expression
// rooted at bareLookup, the accessor's column path in the query (the
// accessor name itself, or a joined-relation path ending in it).
//
// Without fallback the result is a plain base-column reference when the
// language is the global default and no per-record override exists, or a
// cast single-key extraction otherwise. With fallback the full chain becomes
// a COALESCE over per-language lookups, the optional per-record dynamic-key
// lookup, and finally the base column.
func (f *VirtualField) AsExpression(ctx context.Context, bareLookup string, fallback bool) expr.Expression {
	if bareLookup == "" {
		bareLookup = f.name
	}
	language := f.targetLanguage(ctx)

	if f.descriptor.DefaultLanguageField() == "" && language == f.resolver.Default() {
		return expr.Column(f.replaceName(bareLookup, f.base))
	}

	if !fallback {
		return expr.Cast{Expr: f.localizedLookup(language, bareLookup), Type: f.castType}
	}

	lookups := expr.Coalesce{f.localizedLookup(language, bareLookup)}
	if field := f.descriptor.FallbackLanguageField(); field != "" {
		// The dynamic lookup always reads the bag: a record whose fallback
		// language equals its default language resolves from the bag here,
		// not the base column.
		lookups = append(lookups, expr.DynamicJSONKey{
			Column:    f.replaceName(bareLookup, translations.BagColumn),
			Prefix:    fieldname.Prefix(f.base),
			KeyColumn: field,
		})
	}
	for _, code := range f.resolver.Chain(language) {
		lookups = append(lookups, f.localizedLookup(code, bareLookup))
	}
	lookups = append(lookups, expr.Column(f.replaceName(bareLookup, f.base)))
	return lookups
}

// localizedLookup builds the lookup expression for one candidate language.
// With a per-record default-language field every static candidate becomes a
// CASE branch: records whose default language equals the candidate read the
// base column, all others extract the candidate's bag key.
func (f *VirtualField) localizedLookup(language, bareLookup string) expr.Expression {
	if f.descriptor.DefaultLanguageField() == "" && language == f.resolver.Default() {
		return expr.Column(f.replaceName(bareLookup, f.base))
	}

	bagColumn := f.replaceName(bareLookup, translations.BagColumn)
	key := fieldname.Encode(f.base, language)

	if field := f.descriptor.DefaultLanguageField(); field != "" {
		return expr.CaseWhen{
			Column: field,
			Equals: language,
			Then:   expr.Column(f.replaceName(bareLookup, f.base)),
			Else:   expr.JSONKey{Column: bagColumn, Key: key},
		}
	}
	return expr.JSONKey{Column: bagColumn, Key: key}
}

func (f *VirtualField) replaceName(bareLookup, target string) string {
	return strings.Replace(bareLookup, f.name, target, 1)
}
