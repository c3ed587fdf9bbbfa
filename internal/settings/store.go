// Package settings keeps the user's third-party credentials in durable local storage.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/zentrum/internal/common"
	"github.com/Veraticus/zentrum/internal/model"
)

// Key is the durable storage key holding the serialized settings.
const Key = "zentrum-settings"

// KV is the durable key/value boundary the store persists through.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is the single source of truth for AppSettings. Writes are visible to
// the next Current call; the last writer wins.
type Store struct {
	kv      KV
	logger  *slog.Logger
	current model.AppSettings
	mu      sync.RWMutex
}

// NewStore creates a store over kv. Call Load to read the persisted value.
func NewStore(kv KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Load reads the persisted settings into memory and returns them. Missing or
// unreadable data yields the defaults and is never reported as an error.
func (s *Store) Load(ctx context.Context) model.AppSettings {
	loaded := s.read(ctx)

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()

	return loaded
}

func (s *Store) read(ctx context.Context) model.AppSettings {
	raw, err := s.kv.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Debug("settings unreadable, using defaults", "error", err)
		}
		return model.AppSettings{}
	}

	var loaded model.AppSettings
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.logger.Debug("settings corrupt, using defaults", "error", err)
		return model.AppSettings{}
	}
	return loaded
}

// Save persists settings, replacing the previous value wholesale.
func (s *Store) Save(ctx context.Context, settings model.AppSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Put(ctx, Key, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.current = settings

	s.logger.Debug("settings saved",
		"has_api_key", settings.HasAPIKey(),
		"has_base_url", settings.AnthropicBaseURL != "")
	return nil
}

// Clear removes the persisted settings and resets to defaults.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	s.current = model.AppSettings{}

	s.logger.Debug("settings cleared")
	return nil
}

// Current returns the last loaded or saved settings without touching storage.
func (s *Store) Current() model.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// HasAPIKey reports whether the current settings carry an API key.
func (s *Store) HasAPIKey() bool {
	return s.Current().HasAPIKey()
}
