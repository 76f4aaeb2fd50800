package modeltrans

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-modeltrans/translations"
)

type post struct {
	bun.BaseModel `bun:"table:posts"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Title string `bun:"title,notnull"`
	I18n  Bag    `bun:"i18n,type:jsonb"`
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AvailableLanguages = []string{"en", "nl", "fr"}
	cfg.Fallback = map[string][]string{
		"default": {"en"},
		"fr":      {"nl", "en"},
	}
	return cfg
}

func TestConfigValidate(t *testing.T) {
	if err := testConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := testConfig()
	cfg.DefaultLanguage = "not a language"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid default language to fail")
	}

	cfg = testConfig()
	cfg.Fallback = map[string][]string{"pt": {"en"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unavailable fallback key to fail")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modeltrans.yaml")
	doc := `default_language: en
available_languages: [en, nl, fr]
fallback:
  default: [en]
  fr: [nl, en]
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DefaultLanguage != "en" || len(cfg.AvailableLanguages) != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging config not loaded: %+v", cfg.Logging)
	}
}

func TestModuleDefineAndResolve(t *testing.T) {
	module, err := New(testConfig())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	if module.DefaultLanguage() != "en" {
		t.Fatalf("default = %q", module.DefaultLanguage())
	}

	model, err := module.Define(ModelConfig{
		Type:    (*post)(nil),
		Options: Options{Fields: []string{"title"}},
	})
	if err != nil {
		t.Fatalf("define: %v", err)
	}

	rec := &post{Title: "Falcon", I18n: translations.BagOf(map[string]string{"title_nl": "Valk"})}
	ctx := WithLanguage(context.Background(), "fr")
	value, err := model.Read(ctx, rec, "title_i18n")
	if err != nil || value == nil || *value != "Valk" {
		t.Fatalf("expected fr to fall back to nl, got %v err %v", value, err)
	}
}

func TestModuleWithLanguageProvider(t *testing.T) {
	base, err := New(testConfig())
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	state := base.SettingsState()
	state.Apply(LanguageSettings{
		DefaultLanguage:    "en",
		AvailableLanguages: []string{"en", "de"},
	})

	module, err := New(testConfig(), WithLanguageProvider(state))
	if err != nil {
		t.Fatalf("new module with provider: %v", err)
	}
	langs := module.AvailableLanguages()
	if len(langs) != 2 || langs[1] != "de" {
		t.Fatalf("expected provider-driven languages, got %v", langs)
	}
}
