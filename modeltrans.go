// Package modeltrans stores per-language field translations in a JSON bag
// column and exposes them through synthetic accessors and query expressions
// that resolve fallback chains in SQL.
package modeltrans

import (
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-modeltrans/internal/languages"
	"github.com/goliatone/go-modeltrans/internal/logging"
	"github.com/goliatone/go-modeltrans/internal/logging/gologger"
	"github.com/goliatone/go-modeltrans/internal/query"
	"github.com/goliatone/go-modeltrans/internal/settings"
	"github.com/goliatone/go-modeltrans/internal/translate"
	"github.com/goliatone/go-modeltrans/pkg/interfaces"
	"github.com/goliatone/go-modeltrans/translations"
)

// Bag exports the JSON translation bag stored in the i18n column.
type Bag = translations.Bag

// Options exports the per-model translation options.
type Options = translations.Options

// ConfigurationError exports the validation error raised for misconfigured models.
type ConfigurationError = translations.ConfigurationError

// DeferredAccessError exports the error raised when an accessor touches a
// bag that was excluded from loading.
type DeferredAccessError = translations.DeferredAccessError

// ModelConfig exports the translated-model declaration.
type ModelConfig = translate.ModelConfig

// Model exports a defined translated model.
type Model = translate.Model

// VirtualField exports a synthetic translation accessor.
type VirtualField = translate.VirtualField

// Manager exports the query manager bound to a database handle.
type Manager = query.Manager

// LanguageProvider exports the runtime language registry contract.
type LanguageProvider = interfaces.LanguageProvider

// LanguageSettings exports the repository-backed language registry settings.
type LanguageSettings = settings.Settings

// Exported sentinel errors for configuration and access failures.
var (
	ErrTranslationsDeferred = translations.ErrTranslationsDeferred
	ErrBagMissing           = translations.ErrBagMissing
	ErrUnknownField         = translations.ErrUnknownField
	ErrNotTranslated        = translations.ErrNotTranslated
	ErrAccessorCollision    = translations.ErrAccessorCollision
)

// WithLanguage returns a context carrying code as the active language.
var WithLanguage = languages.WithActive

// ActiveLanguage returns the active language carried by ctx, if any.
var ActiveLanguage = languages.ActiveFromContext

// Option customizes module construction.
type Option func(*Module)

// WithLoggerProvider supplies an external logger provider instead of the
// one built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.loggers = provider
	}
}

// WithLanguageProvider replaces the static language registry built from the
// configuration, typically with a repository-backed settings state.
func WithLanguageProvider(provider interfaces.LanguageProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// Module is the top level runtime: the language registry plus the models
// defined against it.
type Module struct {
	cfg      Config
	provider interfaces.LanguageProvider
	resolver *languages.Resolver
	loggers  interfaces.LoggerProvider
	logger   interfaces.Logger
}

// New validates the configuration and constructs the module runtime.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.loggers == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, fmt.Errorf("modeltrans: logging: %w", err)
		}
		m.loggers = provider
	}
	m.logger = logging.ModuleLogger(m.loggers, "")

	if m.provider == nil {
		m.provider = languages.NewStaticProvider(cfg.languageConfig())
	}
	m.resolver = languages.NewResolver(m.provider)

	m.logger.Debug("module initialized",
		"default_language", m.resolver.Default(),
		"available", len(m.resolver.Available()),
	)
	return m, nil
}

// Define compiles a translated-model declaration: it validates the options
// against the record schema and generates the synthetic accessors.
func (m *Module) Define(cfg ModelConfig) (*Model, error) {
	return translate.NewModel(cfg, m.resolver, logging.SchemaLogger(m.loggers))
}

// Manager binds a defined model to a database handle for query building.
func (m *Module) Manager(db *bun.DB, model *Model) *Manager {
	return query.NewManager(db, model, logging.QueryLogger(m.loggers))
}

// DefaultLanguage returns the registry's default language.
func (m *Module) DefaultLanguage() string {
	return m.resolver.Default()
}

// AvailableLanguages returns the configured language codes.
func (m *Module) AvailableLanguages() []string {
	return m.resolver.Available()
}

// SettingsState builds a repository-backed language registry seeded from
// the module configuration. Pass the result to WithLanguageProvider on a
// new module to let persisted settings drive resolution.
func (m *Module) SettingsState() *settings.State {
	cfg := m.cfg.languageConfig()
	state := settings.NewState(settings.Settings{
		DefaultLanguage:    cfg.Default,
		AvailableLanguages: cfg.Available,
		Fallback:           cfg.Fallback,
	})
	state.SetLogger(logging.SettingsLogger(m.loggers))
	return state
}
