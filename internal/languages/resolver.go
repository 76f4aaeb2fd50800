// Package languages resolves the active language and fallback chains from
// the configured language set.
package languages

import (
	"context"
	"strings"

	"golang.org/x/text/language"

	"github.com/goliatone/go-modeltrans/pkg/interfaces"
)

// DefaultChainKey is the fallback-chain map entry consulted for languages
// without a chain of their own.
const DefaultChainKey = "default"

// Normalize lower-cases a language code and reports whether it is a
// well-formed BCP 47 tag.
func Normalize(code string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "", false
	}
	if _, err := language.Parse(trimmed); err != nil {
		return trimmed, false
	}
	return trimmed, true
}

// Config is the static language configuration: the available set, the global
// default, and per-language fallback chains keyed by code (with an optional
// "default" entry for languages without their own chain).
type Config struct {
	Default   string
	Available []string
	Fallback  map[string][]string
}

// NewStaticProvider wraps a Config into a LanguageProvider.
func NewStaticProvider(cfg Config) interfaces.LanguageProvider {
	return &staticProvider{cfg: cfg}
}

type staticProvider struct {
	cfg Config
}

func (p *staticProvider) AvailableLanguages() []string {
	return append([]string(nil), p.cfg.Available...)
}

func (p *staticProvider) DefaultLanguage() string {
	return p.cfg.Default
}

func (p *staticProvider) FallbackChain(code string) []string {
	if chain, ok := p.cfg.Fallback[code]; ok {
		return append([]string(nil), chain...)
	}
	if chain, ok := p.cfg.Fallback[DefaultChainKey]; ok {
		return append([]string(nil), chain...)
	}
	return nil
}

// Resolver answers language questions against a provider. It never returns
// an unconfigured code from Active.
type Resolver struct {
	provider interfaces.LanguageProvider
}

// NewResolver constructs a resolver over the given provider.
func NewResolver(provider interfaces.LanguageProvider) *Resolver {
	return &Resolver{provider: provider}
}

// Active returns the context's active language when it is an available
// language, the configured default otherwise.
func (r *Resolver) Active(ctx context.Context) string {
	code := ActiveFromContext(ctx)
	if code != "" && r.Contains(code) {
		return code
	}
	return r.provider.DefaultLanguage()
}

// Default returns the globally configured default language.
func (r *Resolver) Default() string {
	return r.provider.DefaultLanguage()
}

// Available returns the configured language codes in declaration order.
func (r *Resolver) Available() []string {
	return r.provider.AvailableLanguages()
}

// Contains reports whether code is one of the available languages.
func (r *Resolver) Contains(code string) bool {
	for _, available := range r.provider.AvailableLanguages() {
		if available == code {
			return true
		}
	}
	return false
}

// Chain returns the statically configured fallback sequence for code.
func (r *Resolver) Chain(code string) []string {
	return r.provider.FallbackChain(code)
}
