package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-modeltrans/internal/languages"
	"github.com/goliatone/go-modeltrans/translations"
)

type blog struct {
	bun.BaseModel `bun:"table:blogs"`

	ID    int64            `bun:"id,pk,autoincrement"`
	Title string           `bun:"title,notnull,type:varchar(255)"`
	Body  string           `bun:"body"`
	I18n  translations.Bag `bun:"i18n,type:jsonb"`
}

type article struct {
	bun.BaseModel `bun:"table:articles"`

	ID              int64            `bun:"id,pk,autoincrement"`
	Title           string           `bun:"title,notnull"`
	DefaultLanguage string           `bun:"default_language"`
	FallbackTo      string           `bun:"fallback_to"`
	I18n            translations.Bag `bun:"i18n,type:jsonb"`
}

func newTestResolver() *languages.Resolver {
	return languages.NewResolver(languages.NewStaticProvider(languages.Config{
		Default:   "en",
		Available: []string{"en", "nl", "de", "fr"},
		Fallback: map[string][]string{
			languages.DefaultChainKey: {"en"},
			"fr":                      {"nl", "en"},
		},
	}))
}

func newBlogModel(t *testing.T) *Model {
	t.Helper()
	model, err := NewModel(ModelConfig{
		Type:    (*blog)(nil),
		Options: translations.Options{Fields: []string{"title", "body"}},
	}, newTestResolver(), nil)
	if err != nil {
		t.Fatalf("define model: %v", err)
	}
	return model
}

func str(s string) *string { return &s }

func TestAccessorGeneration(t *testing.T) {
	model := newBlogModel(t)

	for _, name := range []string{
		"title_i18n", "title_en", "title_nl", "title_de", "title_fr",
		"body_i18n", "body_en", "body_nl",
	} {
		if _, ok := model.Field(name); !ok {
			t.Fatalf("expected accessor %q", name)
		}
	}
	if _, ok := model.Field("title"); ok {
		t.Fatalf("base column must not become an accessor")
	}
	// 1 active + 4 languages, per base field.
	if got := len(model.Accessors()); got != 10 {
		t.Fatalf("expected 10 accessors, got %d", got)
	}
}

func TestAccessorCollisionRejected(t *testing.T) {
	type clash struct {
		bun.BaseModel `bun:"table:clash"`

		ID      int64            `bun:"id,pk"`
		Title   string           `bun:"title"`
		TitleNL string           `bun:"title_nl"`
		I18n    translations.Bag `bun:"i18n,type:jsonb"`
	}
	_, err := NewModel(ModelConfig{
		Type:    (*clash)(nil),
		Options: translations.Options{Fields: []string{"title"}},
	}, newTestResolver(), nil)
	if !errors.Is(err, translations.ErrAccessorCollision) {
		t.Fatalf("expected ErrAccessorCollision, got %v", err)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	_, err := NewModel(ModelConfig{
		Type:    (*blog)(nil),
		Options: translations.Options{Fields: []string{"subtitle"}},
	}, newTestResolver(), nil)
	if !errors.Is(err, translations.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestNonStringFieldRejected(t *testing.T) {
	_, err := NewModel(ModelConfig{
		Type:    (*blog)(nil),
		Options: translations.Options{Fields: []string{"id"}},
	}, newTestResolver(), nil)
	if !errors.Is(err, translations.ErrUnsupportedFieldType) {
		t.Fatalf("expected ErrUnsupportedFieldType, got %v", err)
	}
}

func TestMissingBagRejected(t *testing.T) {
	type bagless struct {
		bun.BaseModel `bun:"table:bagless"`

		ID    int64  `bun:"id,pk"`
		Title string `bun:"title"`
	}
	_, err := NewModel(ModelConfig{
		Type:    (*bagless)(nil),
		Options: translations.Options{Fields: []string{"title"}},
	}, newTestResolver(), nil)
	if !errors.Is(err, translations.ErrBagMissing) {
		t.Fatalf("expected ErrBagMissing, got %v", err)
	}
}

func TestRequiredLanguageMustBeAvailable(t *testing.T) {
	_, err := NewModel(ModelConfig{
		Type: (*blog)(nil),
		Options: translations.Options{
			Fields:            []string{"title"},
			RequiredLanguages: []string{"pt"},
		},
	}, newTestResolver(), nil)
	if !errors.Is(err, translations.ErrRequiredLanguageUnavailable) {
		t.Fatalf("expected ErrRequiredLanguageUnavailable, got %v", err)
	}

	var cfgErr *translations.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Language != "pt" {
		t.Fatalf("expected configuration error naming pt, got %v", err)
	}
}

func TestRequiredPerFieldMustBeDeclared(t *testing.T) {
	_, err := NewModel(ModelConfig{
		Type: (*blog)(nil),
		Options: translations.Options{
			Fields:           []string{"title"},
			RequiredPerField: map[string][]string{"body": {"nl"}},
		},
	}, newTestResolver(), nil)
	if !errors.Is(err, translations.ErrRequiredLanguagesInvalid) {
		t.Fatalf("expected ErrRequiredLanguagesInvalid, got %v", err)
	}
}

func TestRequiredFlagOnAccessors(t *testing.T) {
	model, err := NewModel(ModelConfig{
		Type: (*blog)(nil),
		Options: translations.Options{
			Fields:           []string{"title", "body"},
			RequiredPerField: map[string][]string{"title": {"nl"}},
		},
	}, newTestResolver(), nil)
	if err != nil {
		t.Fatalf("define model: %v", err)
	}

	field, _ := model.Field("title_nl")
	if !field.Required() {
		t.Fatalf("title_nl should be required")
	}
	field, _ = model.Field("title_de")
	if field.Required() {
		t.Fatalf("title_de should not be required")
	}
	field, _ = model.Field("body_nl")
	if field.Required() {
		t.Fatalf("body_nl should not be required")
	}
}

func TestReadExplicitLanguage(t *testing.T) {
	model := newBlogModel(t)
	ctx := context.Background()

	rec := &blog{Title: "Falcon", I18n: translations.BagOf(map[string]string{"title_nl": "Valk"})}

	value, err := model.Read(ctx, rec, "title_nl")
	if err != nil || value == nil || *value != "Valk" {
		t.Fatalf("title_nl: got %v, err %v", value, err)
	}

	// Explicit accessors never fall back.
	value, err = model.Read(ctx, rec, "title_de")
	if err != nil {
		t.Fatalf("title_de: %v", err)
	}
	if value != nil {
		t.Fatalf("expected nil for missing title_de, got %q", *value)
	}

	// The default language reads the base column.
	value, err = model.Read(ctx, rec, "title_en")
	if err != nil || value == nil || *value != "Falcon" {
		t.Fatalf("title_en: got %v, err %v", value, err)
	}
}

func TestReadActiveLanguageWithFallback(t *testing.T) {
	model := newBlogModel(t)

	rec := &blog{Title: "Falcon", I18n: translations.BagOf(map[string]string{"title_nl": "Valk"})}

	// fr has no value; its chain visits nl before en.
	ctx := languages.WithActive(context.Background(), "fr")
	value, err := model.Read(ctx, rec, "title_i18n")
	if err != nil || value == nil || *value != "Valk" {
		t.Fatalf("fr fallback: got %v, err %v", value, err)
	}

	// de falls through the default chain to the base column.
	ctx = languages.WithActive(context.Background(), "de")
	value, err = model.Read(ctx, rec, "title_i18n")
	if err != nil || value == nil || *value != "Falcon" {
		t.Fatalf("de fallback: got %v, err %v", value, err)
	}

	// No active language resolves the default.
	value, err = model.Read(context.Background(), rec, "title_i18n")
	if err != nil || value == nil || *value != "Falcon" {
		t.Fatalf("default: got %v, err %v", value, err)
	}
}

func TestReadSkipsEmptyValues(t *testing.T) {
	model := newBlogModel(t)

	// An empty bag entry is not a translation; resolution keeps walking.
	rec := &blog{Title: "Falcon", I18n: translations.BagOf(map[string]string{
		"title_fr": "",
		"title_nl": "Valk",
	})}
	ctx := languages.WithActive(context.Background(), "fr")
	value, err := model.Read(ctx, rec, "title_i18n")
	if err != nil || value == nil || *value != "Valk" {
		t.Fatalf("expected empty fr to be skipped, got %v err %v", value, err)
	}

	// An empty base column is skipped by the chain but still surfaces as the
	// last resort.
	rec = &blog{I18n: translations.BagOf(map[string]string{})}
	value, err = model.Read(ctx, rec, "title_i18n")
	if err != nil || value == nil || *value != "" {
		t.Fatalf("expected empty base as last resort, got %v err %v", value, err)
	}
}

func TestReadPerRecordDefaultLanguage(t *testing.T) {
	model, err := NewModel(ModelConfig{
		Type: (*article)(nil),
		Options: translations.Options{
			Fields:               []string{"title"},
			DefaultLanguageField: "default_language",
		},
	}, newTestResolver(), nil)
	if err != nil {
		t.Fatalf("define model: %v", err)
	}

	rec := &article{
		Title:           "Falke",
		DefaultLanguage: "de",
		I18n:            translations.BagOf(map[string]string{"title_en": "Falcon"}),
	}

	// The record's own default language reads the base column.
	ctx := languages.WithActive(context.Background(), "de")
	value, err := model.Read(ctx, rec, "title_i18n")
	if err != nil || value == nil || *value != "Falke" {
		t.Fatalf("de: got %v, err %v", value, err)
	}

	// The global default is a bag language for this record.
	ctx = languages.WithActive(context.Background(), "en")
	value, err = model.Read(ctx, rec, "title_i18n")
	if err != nil || value == nil || *value != "Falcon" {
		t.Fatalf("en: got %v, err %v", value, err)
	}
}

func TestReadPerRecordFallbackPrecedesStaticChain(t *testing.T) {
	model, err := NewModel(ModelConfig{
		Type: (*article)(nil),
		Options: translations.Options{
			Fields:                []string{"title"},
			FallbackLanguageField: "fallback_to",
		},
	}, newTestResolver(), nil)
	if err != nil {
		t.Fatalf("define model: %v", err)
	}

	rec := &article{
		Title:      "Falcon",
		FallbackTo: "de",
		I18n: translations.BagOf(map[string]string{
			"title_de": "Falke",
			"title_nl": "Valk",
		}),
	}

	// fr's static chain starts with nl, but the record prefers de.
	ctx := languages.WithActive(context.Background(), "fr")
	value, err := model.Read(ctx, rec, "title_i18n")
	if err != nil || value == nil || *value != "Falke" {
		t.Fatalf("expected per-record fallback de, got %v err %v", value, err)
	}
}

func TestWriteRouting(t *testing.T) {
	model := newBlogModel(t)
	ctx := context.Background()

	rec := &blog{}
	if err := model.Write(ctx, rec, "title_en", str("Falcon")); err != nil {
		t.Fatalf("write title_en: %v", err)
	}
	if rec.Title != "Falcon" {
		t.Fatalf("default language write must hit the base column, got %q", rec.Title)
	}

	if err := model.Write(ctx, rec, "title_nl", str("Valk")); err != nil {
		t.Fatalf("write title_nl: %v", err)
	}
	if value, ok := rec.I18n.Get("title_nl"); !ok || value != "Valk" {
		t.Fatalf("expected bag entry title_nl, got %q ok=%v", value, ok)
	}

	// Writing through the active accessor follows the active language.
	nlCtx := languages.WithActive(ctx, "nl")
	if err := model.Write(nlCtx, rec, "title_i18n", str("Slechtvalk")); err != nil {
		t.Fatalf("write title_i18n: %v", err)
	}
	if value, _ := rec.I18n.Get("title_nl"); value != "Slechtvalk" {
		t.Fatalf("active write must target nl, got %q", value)
	}

	// Nil removes the entry instead of storing a null.
	if err := model.Write(ctx, rec, "title_nl", nil); err != nil {
		t.Fatalf("clear title_nl: %v", err)
	}
	if _, ok := rec.I18n.Get("title_nl"); ok {
		t.Fatalf("expected title_nl removed")
	}

	// Nil to the default language clears the base column.
	if err := model.Write(ctx, rec, "title_en", nil); err != nil {
		t.Fatalf("clear title_en: %v", err)
	}
	if rec.Title != "" {
		t.Fatalf("expected cleared base column, got %q", rec.Title)
	}
}

func TestDeferredBagAccess(t *testing.T) {
	model := newBlogModel(t)
	ctx := context.Background()

	rec := &blog{Title: "Falcon"}
	if err := model.MarkTranslationsDeferred(rec); err != nil {
		t.Fatalf("mark deferred: %v", err)
	}

	_, err := model.Read(ctx, rec, "title_nl")
	var deferred *translations.DeferredAccessError
	if !errors.As(err, &deferred) || deferred.Accessor != "title_nl" {
		t.Fatalf("expected deferred access error for title_nl, got %v", err)
	}
	if !errors.Is(err, translations.ErrTranslationsDeferred) {
		t.Fatalf("deferred error must unwrap the sentinel, got %v", err)
	}

	// Translation writes need the bag; base-column writes do not.
	if err := model.Write(ctx, rec, "title_nl", str("Valk")); !errors.As(err, &deferred) {
		t.Fatalf("expected deferred write error, got %v", err)
	}
	if err := model.Write(ctx, rec, "title_en", str("Hawk")); err != nil {
		t.Fatalf("default-language write should bypass the bag: %v", err)
	}
}

func TestDisabledAccessors(t *testing.T) {
	model, err := NewModel(ModelConfig{
		Type:    (*blog)(nil),
		Options: translations.Options{DisableAccessors: true},
	}, newTestResolver(), nil)
	if err != nil {
		t.Fatalf("define model: %v", err)
	}
	if len(model.Accessors()) != 0 {
		t.Fatalf("expected no accessors, got %d", len(model.Accessors()))
	}
	_, err = model.Read(context.Background(), &blog{}, "title_i18n")
	if !errors.Is(err, translations.ErrAccessorsDisabled) {
		t.Fatalf("expected ErrAccessorsDisabled, got %v", err)
	}
}

func TestUnknownAccessor(t *testing.T) {
	model := newBlogModel(t)
	_, err := model.Read(context.Background(), &blog{}, "title_pt")
	if !errors.Is(err, translations.ErrNotTranslated) {
		t.Fatalf("expected ErrNotTranslated, got %v", err)
	}
}

func TestApplyValues(t *testing.T) {
	model := newBlogModel(t)
	ctx := context.Background()

	rec := &blog{}
	err := model.ApplyValues(ctx, rec, map[string]any{
		"title":    "Falcon",
		"title_nl": "Valk",
		"body":     str("Birds of prey."),
	})
	if err != nil {
		t.Fatalf("apply values: %v", err)
	}
	if rec.Title != "Falcon" || rec.Body != "Birds of prey." {
		t.Fatalf("unexpected base columns: %+v", rec)
	}
	if value, _ := rec.I18n.Get("title_nl"); value != "Valk" {
		t.Fatalf("expected bag entry, got %q", value)
	}

	err = model.ApplyValues(ctx, rec, map[string]any{"subtitle": "nope"})
	if !errors.Is(err, translations.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestDeclaredOrderingValidation(t *testing.T) {
	_, err := NewModel(ModelConfig{
		Type:     (*blog)(nil),
		Options:  translations.Options{Fields: []string{"title"}},
		Ordering: []string{"-subtitle_i18n"},
	}, newTestResolver(), nil)
	if !errors.Is(err, translations.ErrUnknownField) {
		t.Fatalf("expected unknown ordering entry to fail, got %v", err)
	}

	model, err := NewModel(ModelConfig{
		Type:     (*blog)(nil),
		Options:  translations.Options{Fields: []string{"title"}},
		Ordering: []string{"-title_i18n", "id"},
	}, newTestResolver(), nil)
	if err != nil {
		t.Fatalf("define model: %v", err)
	}
	clauses := model.DeclaredOrdering(context.Background())
	if len(clauses) != 2 || !clauses[0].Desc || clauses[1].Desc {
		t.Fatalf("unexpected ordering clauses: %+v", clauses)
	}
}
