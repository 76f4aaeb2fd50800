// Package fieldname maps (base field, language) pairs to the storage keys
// used inside a translation bag and back.
package fieldname

import "strings"

// indonesianRemap avoids `<field>_id` keys: the two letter Indonesian code
// collides with the conventional foreign-key identifier suffix.
const indonesianRemap = "ind"

// Normalize converts a language code into its storage-key form: dashes become
// underscores and "id" is remapped to "ind".
func Normalize(lang string) string {
	if lang == "id" {
		return indonesianRemap
	}
	return strings.ReplaceAll(lang, "-", "_")
}

// Encode returns the bag storage key for a base field translated into lang,
// e.g. Encode("title", "pt-br") == "title_pt_br".
func Encode(base, lang string) string {
	return base + "_" + Normalize(lang)
}

// Prefix returns the key prefix shared by all translations of a base field.
// Query expressions concatenate it with a per-record language column to form
// computed lookup keys.
func Prefix(base string) string {
	return base + "_"
}

// Decode splits a storage key on its last underscore into base field and
// language suffix. Keys without a separator yield the key itself and an
// empty language. Base field names containing the separator are expected to
// keep language suffixes unambiguous by convention.
func Decode(key string) (base, lang string) {
	pos := strings.LastIndex(key, "_")
	if pos < 0 {
		return key, ""
	}
	return key[:pos], key[pos+1:]
}
