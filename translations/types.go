package translations

// Options declares how a model's translation bag behaves. It mirrors the
// arguments accepted by the bag descriptor: which base fields get synthetic
// accessors, where per-record language overrides live, and which languages
// are required to be present.
type Options struct {
	// Fields lists the base field column names to make translatable.
	Fields []string

	// DefaultLanguageField names the field holding the record's own default
	// language: the language whose value lives in the base column instead of
	// the bag. Dotted paths traverse relations ("category.language_code").
	// Empty means the globally configured default language applies.
	DefaultLanguageField string

	// FallbackLanguageField names the field whose value is tried first in
	// any fallback chain, before the statically configured languages.
	// Dotted paths traverse relations. Empty disables the feature.
	FallbackLanguageField string

	// RequiredLanguages lists languages every translatable field must carry.
	// Informational for validation tooling; resolution is unaffected.
	RequiredLanguages []string

	// RequiredPerField overrides RequiredLanguages per base field. Keys must
	// name entries of Fields.
	RequiredPerField map[string][]string

	// DisableAccessors skips synthetic accessor generation. Only useful
	// while migrating column-per-language layouts into the bag, when the
	// generated names would collide with real columns.
	DisableAccessors bool
}

// RequiredFor returns the required languages for a base field.
func (o Options) RequiredFor(field string) []string {
	if o.RequiredPerField != nil {
		return o.RequiredPerField[field]
	}
	return o.RequiredLanguages
}
