// Package translate implements the virtual field resolution engine: bag
// descriptors, synthetic translated accessors with fallback-chain reads, and
// compilation of the same resolution into query expressions.
package translate

import (
	"github.com/goliatone/go-modeltrans/internal/languages"
	"github.com/goliatone/go-modeltrans/internal/record"
	"github.com/goliatone/go-modeltrans/translations"
)

// Descriptor binds a model's translation options to its record schema. It is
// the schema element owning the bag column and the synthetic accessors
// derived from it.
type Descriptor struct {
	schema   *record.Schema
	opts     translations.Options
	resolver *languages.Resolver
}

func newDescriptor(schema *record.Schema, opts translations.Options, resolver *languages.Resolver) (*Descriptor, error) {
	d := &Descriptor{schema: schema, opts: opts, resolver: resolver}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// validate checks the declaration before any accessor is created. A failure
// here halts schema construction: no partial registration happens.
func (d *Descriptor) validate() error {
	model := d.schema.Name()

	if !d.schema.HasBag() {
		return &translations.ConfigurationError{Model: model, Err: translations.ErrBagMissing}
	}

	for _, field := range d.opts.Fields {
		if !d.schema.HasColumn(field) {
			return &translations.ConfigurationError{Model: model, Field: field, Err: translations.ErrUnknownField}
		}
		if !d.schema.IsStringColumn(field) {
			return &translations.ConfigurationError{Model: model, Field: field, Err: translations.ErrUnsupportedFieldType}
		}
	}

	if path := d.opts.DefaultLanguageField; path != "" {
		if err := d.schema.ValidatePath(path); err != nil {
			return &translations.ConfigurationError{Model: model, Field: path, Err: translations.ErrUnknownDefaultLanguageField}
		}
	}
	if path := d.opts.FallbackLanguageField; path != "" {
		if err := d.schema.ValidatePath(path); err != nil {
			return &translations.ConfigurationError{Model: model, Field: path, Err: translations.ErrUnknownFallbackLanguageField}
		}
	}

	if err := d.validateRequired(); err != nil {
		return err
	}
	return nil
}

func (d *Descriptor) validateRequired() error {
	model := d.schema.Name()

	check := func(field string, codes []string) error {
		for _, code := range codes {
			if !d.resolver.Contains(code) {
				return &translations.ConfigurationError{
					Model:    model,
					Field:    field,
					Language: code,
					Err:      translations.ErrRequiredLanguageUnavailable,
				}
			}
		}
		return nil
	}

	if err := check("", d.opts.RequiredLanguages); err != nil {
		return err
	}
	for field, codes := range d.opts.RequiredPerField {
		if !containsString(d.opts.Fields, field) {
			return &translations.ConfigurationError{Model: model, Field: field, Err: translations.ErrRequiredLanguagesInvalid}
		}
		if err := check(field, codes); err != nil {
			return err
		}
	}
	return nil
}

// TranslatableFields returns the declared base field column names.
func (d *Descriptor) TranslatableFields() []string {
	return append([]string(nil), d.opts.Fields...)
}

// DefaultLanguageField returns the per-record default-language field path.
func (d *Descriptor) DefaultLanguageField() string {
	return d.opts.DefaultLanguageField
}

// FallbackLanguageField returns the per-record fallback-language field path.
func (d *Descriptor) FallbackLanguageField() string {
	return d.opts.FallbackLanguageField
}

// RequiredFor returns the required languages for a base field.
func (d *Descriptor) RequiredFor(field string) []string {
	return d.opts.RequiredFor(field)
}

// DefaultLanguage resolves the default language for one record: the value of
// the configured per-record field, or the global default when none is
// declared. A nil relation along the path yields an empty string, which
// never matches an active language and thereby disables the fast path.
func (d *Descriptor) DefaultLanguage(rec any) (string, error) {
	if d.opts.DefaultLanguageField == "" {
		return d.resolver.Default(), nil
	}
	value, _, err := d.schema.Traverse(rec, d.opts.DefaultLanguageField)
	if err != nil {
		return "", err
	}
	return value, nil
}

// InstanceChain returns the fallback chain for a record and language: the
// per-record fallback field's value, when configured and set, prepended to
// the statically configured chain. Duplicates are kept; first hit wins.
func (d *Descriptor) InstanceChain(rec any, language string) ([]string, error) {
	static := d.resolver.Chain(language)
	if d.opts.FallbackLanguageField == "" {
		return static, nil
	}
	value, _, err := d.schema.Traverse(rec, d.opts.FallbackLanguageField)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return static, nil
	}
	return append([]string{value}, static...), nil
}

func containsString(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
