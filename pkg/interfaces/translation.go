package interfaces

import "context"

// LanguageProvider supplies the language configuration the resolution engine
// consumes. Implementations may be static (built from a Config) or dynamic
// (backed by a settings repository).
type LanguageProvider interface {
	// AvailableLanguages returns the configured language codes in their
	// declaration order. Accessor generation follows this order.
	AvailableLanguages() []string

	// DefaultLanguage returns the language whose values live in the base
	// columns rather than in the translation bag.
	DefaultLanguage() string

	// FallbackChain returns the statically configured fallback languages
	// tried, in order, after a miss on the given language. May be empty.
	FallbackChain(code string) []string
}

// Accessor is a synthetic translated field: a virtual, non-stored attribute
// whose value derives from either the base field's column or the record's
// translation bag.
type Accessor interface {
	// Name returns the accessor name, `<base>_<lang>` for an explicit
	// language or `<base>_i18n` for the active-language variant.
	Name() string

	// BaseField returns the column name of the translated base field.
	BaseField() string

	// Language returns the fixed target language, or "" when the accessor
	// tracks the caller's active language.
	Language() string

	// Read resolves the accessor's value on rec. Active-language accessors
	// walk the fallback chain; explicit-language accessors return nil when
	// no exact value is stored. Absence is not an error.
	Read(ctx context.Context, rec any) (*string, error)

	// Write stores value through the accessor: into the base field when the
	// target language is the record's default language, into the bag
	// otherwise. A nil value removes the bag entry.
	Write(ctx context.Context, rec any, value *string) error
}

// BagDescriptor describes a model's translation bag configuration.
type BagDescriptor interface {
	// TranslatableFields returns the base field column names declared
	// translatable.
	TranslatableFields() []string

	// DefaultLanguageField returns the per-record default-language field
	// path, or "" when the global default applies.
	DefaultLanguageField() string

	// FallbackLanguageField returns the per-record fallback-language field
	// path, or "" when disabled.
	FallbackLanguageField() string
}
