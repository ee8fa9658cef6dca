// Package settings persists the user-editable settings record.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/starford/gistnote/internal/storage"
)

// Settings is the persisted record. A nil token means none has been set.
type Settings struct {
	GitHubAPIToken *string `json:"githubApiToken"`
}

// Defaults returns the settings used before anything is persisted.
func Defaults() Settings {
	return Settings{GitHubAPIToken: nil}
}

// Merge overlays the non-nil fields of overlay on base.
func Merge(base, overlay Settings) Settings {
	result := base
	if overlay.GitHubAPIToken != nil {
		v := *overlay.GitHubAPIToken
		result.GitHubAPIToken = &v
	}
	return result
}

// Store holds the active settings for the lifetime of the process and
// writes them back whole-record on every change.
type Store struct {
	path string

	mu      sync.RWMutex
	current Settings
}

// Open loads the settings file at path (a missing file yields defaults).
func Open(path string) (*Store, error) {
	s := &Store{path: path, current: Defaults()}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted record and merges it over the defaults.
func (s *Store) Load() error {
	loaded, err := readFile(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = Merge(Defaults(), loaded)
	s.mu.Unlock()
	return nil
}

// Save writes the in-memory settings to disk atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.current, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := storage.WriteFileAtomic(s.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the active settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Merge(Settings{}, s.current)
}

// Token returns the configured GitHub token, or "" when absent.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.GitHubAPIToken == nil {
		return ""
	}
	return *s.current.GitHubAPIToken
}

// HasToken reports whether a non-empty token is configured.
func (s *Store) HasToken() bool {
	return s.Token() != ""
}

// SetToken commits value as the new token and persists immediately.
// No format validation happens here; a bad token surfaces on the next remote call.
// On a failed write the previous token stays active.
func (s *Store) SetToken(value string) error {
	s.mu.Lock()
	prev := s.current.GitHubAPIToken
	s.current.GitHubAPIToken = &value
	s.mu.Unlock()
	if err := s.Save(); err != nil {
		s.mu.Lock()
		if s.current.GitHubAPIToken == &value {
			s.current.GitHubAPIToken = prev
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func readFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("settings: read %s: %w", path, err)
	}
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return out, nil
}

// Mask hides all but the last four characters of a token for display.
func Mask(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
