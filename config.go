package modeltrans

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-modeltrans/internal/languages"
)

// Config is the module-level language configuration.
type Config struct {
	// DefaultLanguage is the language stored in the base columns.
	DefaultLanguage string `yaml:"default_language"`

	// AvailableLanguages lists the languages translations may be stored in.
	// The default language is always considered available.
	AvailableLanguages []string `yaml:"available_languages"`

	// Fallback maps a language code to the chain consulted when that
	// language has no value. The "default" key supplies the chain for
	// languages without an entry of their own.
	Fallback map[string][]string `yaml:"fallback"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects the module's logging behavior.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error, fatal.
	Level string `yaml:"level"`
	// Format is one of json, console, pretty.
	Format string `yaml:"format"`
	// AddSource includes source locations in log records.
	AddSource bool `yaml:"add_source"`
	// Focus limits verbose output to the named logger namespaces.
	Focus []string `yaml:"focus"`
}

// DefaultConfig returns a configuration with English as the only language
// and structured console logging at info level.
func DefaultConfig() Config {
	return Config{
		DefaultLanguage:    "en",
		AvailableLanguages: []string{"en"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks language codes for well-formedness and the fallback map
// for references to unavailable languages.
func (c Config) Validate() error {
	errs := validation.Errors{}

	normalizedDefault, ok := languages.Normalize(c.DefaultLanguage)
	if !ok {
		errs["default_language"] = validation.NewError(
			"modeltrans.config.default_language_invalid",
			fmt.Sprintf("invalid language code %q", c.DefaultLanguage),
		)
	}

	available := map[string]struct{}{normalizedDefault: {}}
	for _, code := range c.AvailableLanguages {
		normalized, ok := languages.Normalize(code)
		if !ok {
			errs["available_languages"] = validation.NewError(
				"modeltrans.config.available_language_invalid",
				fmt.Sprintf("invalid language code %q", code),
			)
			continue
		}
		available[normalized] = struct{}{}
	}

	for key, chain := range c.Fallback {
		if key != languages.DefaultChainKey {
			if normalized, ok := languages.Normalize(key); !ok {
				errs["fallback"] = validation.NewError(
					"modeltrans.config.fallback_key_invalid",
					fmt.Sprintf("invalid fallback key %q", key),
				)
			} else if _, found := available[normalized]; !found {
				errs["fallback"] = validation.NewError(
					"modeltrans.config.fallback_key_unavailable",
					fmt.Sprintf("fallback key %q is not an available language", key),
				)
			}
		}
		for _, code := range chain {
			if _, ok := languages.Normalize(code); !ok {
				errs["fallback"] = validation.NewError(
					"modeltrans.config.fallback_language_invalid",
					fmt.Sprintf("invalid language code %q in fallback chain for %q", code, key),
				)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// LoadConfig reads a YAML configuration file and validates it.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("modeltrans: read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("modeltrans: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// languageConfig converts the public configuration into the resolver's
// static configuration, normalizing codes and guaranteeing the default is
// part of the available set.
func (c Config) languageConfig() languages.Config {
	normalizedDefault, _ := languages.Normalize(c.DefaultLanguage)

	out := languages.Config{Default: normalizedDefault}
	seen := map[string]struct{}{}
	for _, code := range c.AvailableLanguages {
		normalized, _ := languages.Normalize(code)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out.Available = append(out.Available, normalized)
	}
	if _, ok := seen[normalizedDefault]; !ok && normalizedDefault != "" {
		out.Available = append(out.Available, normalizedDefault)
	}

	if len(c.Fallback) > 0 {
		out.Fallback = make(map[string][]string, len(c.Fallback))
		for key, chain := range c.Fallback {
			normalizedKey := key
			if key != languages.DefaultChainKey {
				normalizedKey, _ = languages.Normalize(key)
			}
			copied := make([]string, 0, len(chain))
			for _, code := range chain {
				if normalized, _ := languages.Normalize(code); normalized != "" {
					copied = append(copied, normalized)
				}
			}
			out.Fallback[normalizedKey] = copied
		}
	}
	return out
}
