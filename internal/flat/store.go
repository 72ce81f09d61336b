package flat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vbonduro/healthlog/internal/domain"
)

// Fixed keys in the KV area.
const (
	EntriesKey       = "health-entries"
	LegacyEntriesKey = "entries"
	SettingsKey      = "health-settings"
)

// Store is the degraded-mode persistence path: one serialized date-key →
// entries mapping and one settings object. There is no partial update;
// callers read, mutate and rewrite the whole blob.
type Store struct {
	kv     KV
	logger *slog.Logger
}

func NewStore(kv KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Entries returns the stored mapping. A missing, unreadable or corrupt blob
// yields an empty mapping; the problem is logged, never returned.
func (s *Store) Entries(ctx context.Context) map[domain.DateKey][]*domain.Entry {
	out := make(map[domain.DateKey][]*domain.Entry)

	raw, key, err := s.readEntries()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read flat entries", "error", err)
		return out
	}
	if raw == nil {
		return out
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.WarnContext(ctx, "flat entries blob is corrupt, treating as empty",
			"key", key, "error", fmt.Errorf("%w: %v", domain.ErrParseFailure, err))
		return make(map[domain.DateKey][]*domain.Entry)
	}
	return out
}

func (s *Store) readEntries() ([]byte, string, error) {
	raw, err := s.kv.Get(EntriesKey)
	if err != nil || raw != nil {
		return raw, EntriesKey, err
	}
	raw, err = s.kv.Get(LegacyEntriesKey)
	return raw, LegacyEntriesKey, err
}

// SaveEntries replaces the whole blob.
func (s *Store) SaveEntries(ctx context.Context, entries map[domain.DateKey][]*domain.Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode flat entries: %w", err)
	}
	if err := s.kv.Set(EntriesKey, raw); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

// ClearEntries removes the entries blob and its legacy alias.
func (s *Store) ClearEntries(ctx context.Context) error {
	for _, key := range []string{EntriesKey, LegacyEntriesKey} {
		if err := s.kv.Delete(key); err != nil {
			return fmt.Errorf("failed to clear flat entries: %w", err)
		}
	}
	return nil
}

// Settings returns the stored settings, or defaults when absent or corrupt.
func (s *Store) Settings(ctx context.Context) domain.Settings {
	settings := domain.DefaultSettings()
	raw, err := s.kv.Get(SettingsKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read settings", "error", err)
		return settings
	}
	if raw == nil {
		return settings
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logger.WarnContext(ctx, "settings blob is corrupt, using defaults", "error", err)
		return domain.DefaultSettings()
	}
	return settings
}

func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.kv.Set(SettingsKey, raw); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.kv.Close()
}
