package translations

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTranslationsDeferred           = errors.New("translations: bag excluded from loading")
	ErrBagMissing                     = errors.New("translations: model has no translation bag field")
	ErrBagColumnName                  = errors.New("translations: bag field must use column name \"i18n\"")
	ErrUnsupportedFieldType           = errors.New("translations: field type not supported for translation")
	ErrUnknownField                   = errors.New("translations: field is not defined on the model")
	ErrUnknownDefaultLanguageField    = errors.New("translations: default language field does not exist")
	ErrUnknownFallbackLanguageField   = errors.New("translations: fallback language field does not exist")
	ErrRequiredLanguageUnavailable    = errors.New("translations: required language not in available languages")
	ErrRequiredLanguagesInvalid       = errors.New("translations: required languages entry is not translatable")
	ErrAccessorCollision              = errors.New("translations: accessor name collides with existing field")
	ErrNotTranslated                  = errors.New("translations: name does not resolve to a translated accessor")
	ErrAccessorsDisabled              = errors.New("translations: synthetic accessors are disabled for this model")
)

// ConfigurationError reports an invalid translation declaration. It is fatal
// at schema-definition time: no accessor is registered for the model.
type ConfigurationError struct {
	Model    string
	Field    string
	Language string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "translations: configuration error"
	}
	parts := make([]string, 0, 3)
	if e.Model != "" {
		parts = append(parts, "model="+e.Model)
	}
	if e.Field != "" {
		parts = append(parts, "field="+e.Field)
	}
	if e.Language != "" {
		parts = append(parts, "language="+e.Language)
	}
	if len(parts) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), strings.Join(parts, " "))
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DeferredAccessError reports a read through a synthetic accessor on a record
// whose bag was excluded from loading. The caller must reload the record with
// the bag column included; the core cannot recover.
type DeferredAccessError struct {
	Accessor string
}

func (e *DeferredAccessError) Error() string {
	if e == nil || e.Accessor == "" {
		return ErrTranslationsDeferred.Error()
	}
	return fmt.Sprintf("%s: accessor=%s", ErrTranslationsDeferred.Error(), e.Accessor)
}

func (e *DeferredAccessError) Unwrap() error {
	return ErrTranslationsDeferred
}
