package settings

import (
	"context"
	"sync"

	"github.com/goliatone/go-modeltrans/internal/logging"
	"github.com/goliatone/go-modeltrans/pkg/interfaces"
)

// State provides a concurrency-safe snapshot of the language registry. It
// satisfies the language-provider contract consumed by translation models,
// so repository-backed settings can drive fallback resolution at runtime.
type State struct {
	mu       sync.RWMutex
	settings Settings
	logger   interfaces.Logger
}

// NewState constructs a state seeded with settings.
func NewState(settings Settings) *State {
	return &State{settings: settings.Normalize(), logger: logging.NoOp()}
}

// SetLogger routes Follow's change reports to logger.
func (s *State) SetLogger(logger interfaces.Logger) {
	if logger == nil {
		logger = logging.NoOp()
	}
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// Apply replaces the current snapshot.
func (s *State) Apply(settings Settings) {
	s.mu.Lock()
	s.settings = settings.Normalize()
	s.mu.Unlock()
}

// Snapshot returns a copy of the current settings.
func (s *State) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// DefaultLanguage returns the registry's default language.
func (s *State) DefaultLanguage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.DefaultLanguage
}

// AvailableLanguages returns the languages translations may be stored in.
func (s *State) AvailableLanguages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.settings.AvailableLanguages))
	copy(out, s.settings.AvailableLanguages)
	return out
}

// FallbackChain returns the fallback chain for code: the code's own chain
// when one is configured, otherwise the "default" chain.
func (s *State) FallbackChain(code string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain, ok := s.settings.Fallback[code]
	if !ok {
		chain = s.settings.Fallback[DefaultChainKey]
	}
	out := make([]string, len(chain))
	copy(out, chain)
	return out
}

// Follow applies repository change events to the state until ctx is
// cancelled. Deleting persisted settings reverts the state to its seed.
func (s *State) Follow(ctx context.Context, repo Repository, seed Settings) error {
	events, err := repo.Subscribe(ctx)
	if err != nil {
		return err
	}
	s.mu.RLock()
	logger := s.logger
	s.mu.RUnlock()
	go func() {
		for evt := range events {
			switch evt.Type {
			case ChangeDeleted:
				s.Apply(seed)
				logger.Debug("language settings deleted, seed restored",
					"default_language", seed.DefaultLanguage)
			default:
				s.Apply(evt.Settings)
				logger.Debug("language settings applied",
					"default_language", evt.Settings.DefaultLanguage,
					"available", len(evt.Settings.AvailableLanguages))
			}
		}
	}()
	return nil
}
