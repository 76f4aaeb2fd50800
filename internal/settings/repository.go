package settings

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrSettingsNotFound indicates that language settings have not been persisted yet.
var ErrSettingsNotFound = errors.New("settings: language settings not found")

// DefaultChainKey is the fallback-map key consulted when a language has no
// chain of its own.
const DefaultChainKey = "default"

// Settings is the runtime language registry: the default language, the set
// of languages translations may be stored in, and per-language fallback
// chains keyed by language code (with a "default" catch-all chain).
type Settings struct {
	DefaultLanguage    string
	AvailableLanguages []string
	Fallback           map[string][]string
}

// Normalize lowercases codes, deduplicates the available set, and ensures
// the default language is part of it.
func (s Settings) Normalize() Settings {
	out := Settings{
		DefaultLanguage: strings.ToLower(strings.TrimSpace(s.DefaultLanguage)),
	}

	seen := map[string]struct{}{}
	for _, code := range s.AvailableLanguages {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out.AvailableLanguages = append(out.AvailableLanguages, code)
	}
	if out.DefaultLanguage != "" {
		if _, ok := seen[out.DefaultLanguage]; !ok {
			out.AvailableLanguages = append(out.AvailableLanguages, out.DefaultLanguage)
		}
	}

	if len(s.Fallback) > 0 {
		out.Fallback = make(map[string][]string, len(s.Fallback))
		for key, chain := range s.Fallback {
			key = strings.ToLower(strings.TrimSpace(key))
			copied := make([]string, 0, len(chain))
			for _, code := range chain {
				code = strings.ToLower(strings.TrimSpace(code))
				if code != "" {
					copied = append(copied, code)
				}
			}
			out.Fallback[key] = copied
		}
	}
	return out
}

// Equal reports whether two settings describe the same registry.
func (s Settings) Equal(other Settings) bool {
	if s.DefaultLanguage != other.DefaultLanguage {
		return false
	}
	if !equalStrings(s.AvailableLanguages, other.AvailableLanguages) {
		return false
	}
	if len(s.Fallback) != len(other.Fallback) {
		return false
	}
	keys := make([]string, 0, len(s.Fallback))
	for key := range s.Fallback {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		chain, ok := other.Fallback[key]
		if !ok || !equalStrings(s.Fallback[key], chain) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Repository persists language settings and emits change notifications.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
	Delete(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// ChangeType enumerates settings change events.
type ChangeType string

const (
	// ChangeCreated indicates settings were first persisted.
	ChangeCreated ChangeType = "created"
	// ChangeUpdated indicates settings were updated.
	ChangeUpdated ChangeType = "updated"
	// ChangeDeleted indicates settings were cleared.
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports settings mutations to interested subscribers.
type ChangeEvent struct {
	Type     ChangeType
	Settings Settings
}

func newChangeEvent(changeType ChangeType, settings Settings) ChangeEvent {
	return ChangeEvent{
		Type:     changeType,
		Settings: settings,
	}
}
