package flat

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/healthlog/internal/domain"
)

// failingKV wraps a KV and fails every write.
type failingKV struct {
	KV
}

func (failingKV) Set(string, []byte) error { return errors.New("quota exceeded") }

func testEntry(id string) *domain.Entry {
	return &domain.Entry{
		ID:      id,
		Name:    "Lunch",
		Date:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
		Time:    domain.ClockTime{Hour: 12, Minute: 0, Period: domain.PM},
		Details: &domain.Meal{Nutrients: domain.Nutrients{Calories: "600"}},
	}
}

func TestStoreEntries_Empty(t *testing.T) {
	s := NewStore(NewMemoryKV(), slog.Default())

	assert.Empty(t, s.Entries(context.Background()))
}

func TestStoreEntries_RoundTrip(t *testing.T) {
	s := NewStore(NewMemoryKV(), slog.Default())
	ctx := context.Background()

	blob := map[domain.DateKey][]*domain.Entry{"2024-03-01": {testEntry("a"), testEntry("b")}}
	require.NoError(t, s.SaveEntries(ctx, blob))

	got := s.Entries(ctx)
	require.Len(t, got["2024-03-01"], 2)
	assert.Equal(t, "a", got["2024-03-01"][0].ID)
	meal, ok := got["2024-03-01"][1].Details.(*domain.Meal)
	require.True(t, ok)
	assert.Equal(t, "600", meal.Calories)
}

func TestStoreEntries_CorruptBlobIsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(EntriesKey, []byte("{not json")))
	s := NewStore(kv, slog.Default())

	assert.Empty(t, s.Entries(context.Background()))
}

func TestStoreEntries_ReadsLegacyKey(t *testing.T) {
	kv := NewMemoryKV()
	legacy := NewStore(kv, slog.Default())
	require.NoError(t, legacy.SaveEntries(context.Background(), map[domain.DateKey][]*domain.Entry{
		"2024-03-01": {testEntry("old")},
	}))
	raw, err := kv.Get(EntriesKey)
	require.NoError(t, err)
	require.NoError(t, kv.Delete(EntriesKey))
	require.NoError(t, kv.Set(LegacyEntriesKey, raw))

	got := NewStore(kv, slog.Default()).Entries(context.Background())
	require.Len(t, got["2024-03-01"], 1)
	assert.Equal(t, "old", got["2024-03-01"][0].ID)
}

func TestStoreClearEntries(t *testing.T) {
	kv := NewMemoryKV()
	s := NewStore(kv, slog.Default())
	ctx := context.Background()

	require.NoError(t, s.SaveEntries(ctx, map[domain.DateKey][]*domain.Entry{"2024-03-01": {testEntry("a")}}))
	require.NoError(t, kv.Set(LegacyEntriesKey, []byte("{}")))

	require.NoError(t, s.ClearEntries(ctx))

	for _, key := range []string{EntriesKey, LegacyEntriesKey} {
		raw, err := kv.Get(key)
		require.NoError(t, err)
		assert.Nil(t, raw, key)
	}
	// Clearing twice is fine.
	require.NoError(t, s.ClearEntries(ctx))
}

func TestStoreSaveEntries_WriteFailure(t *testing.T) {
	s := NewStore(failingKV{NewMemoryKV()}, slog.Default())

	err := s.SaveEntries(context.Background(), map[domain.DateKey][]*domain.Entry{})
	assert.ErrorIs(t, err, domain.ErrWriteFailed)
}

func TestStoreSettings(t *testing.T) {
	kv := NewMemoryKV()
	s := NewStore(kv, slog.Default())
	ctx := context.Background()

	assert.Equal(t, domain.DefaultSettings(), s.Settings(ctx))

	want := domain.Settings{WeightUnit: "lb", LengthUnit: "in", CalorieGoal: 2200}
	require.NoError(t, s.SaveSettings(ctx, want))
	assert.Equal(t, want, s.Settings(ctx))

	require.NoError(t, kv.Set(SettingsKey, []byte("garbage")))
	assert.Equal(t, domain.DefaultSettings(), s.Settings(ctx))
}
