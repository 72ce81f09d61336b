package tracker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/healthlog/internal/domain"
)

func seedFlat(t *testing.T, f *faultyFlat) {
	t.Helper()
	first := lunch(time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC))
	second := lunch(day(2024, 3, 2))
	second.Name = "Dinner"
	second.Photo = photo()
	require.NoError(t, f.SaveEntries(context.Background(), map[domain.DateKey][]*domain.Entry{
		"2024-03-01": {first},
		"2024-03-02": {second},
	}))
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func TestMigrateFlat(t *testing.T) {
	ctx := context.Background()
	src := newFlat()
	dst := newStructured(t)
	seedFlat(t, src)

	migrated, err := MigrateFlat(ctx, src, dst, time.UTC, sequentialIDs())
	require.NoError(t, err)
	assert.True(t, migrated)

	entries, err := dst.GetAllUserEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "gen-1", entries[0].ID)
	assert.Equal(t, "Lunch", entries[0].Name)
	assert.True(t, entries[0].Date.Equal(day(2024, 3, 1)))
	assert.Equal(t, "gen-2", entries[1].ID)
	assert.Equal(t, "Dinner", entries[1].Name)

	rec, err := dst.GetPhotoEntry(ctx, "gen-2")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "plate.jpg", rec.Photo.Filename)

	raw := src.Entries(ctx)
	assert.Empty(t, raw)
}

func TestMigrateFlat_Idempotent(t *testing.T) {
	ctx := context.Background()
	src := newFlat()
	dst := newStructured(t)
	seedFlat(t, src)

	_, err := MigrateFlat(ctx, src, dst, time.UTC, nil)
	require.NoError(t, err)

	migrated, err := MigrateFlat(ctx, src, dst, time.UTC, nil)
	require.NoError(t, err)
	assert.False(t, migrated)

	entries, err := dst.GetAllUserEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestMigrateFlat_Empty(t *testing.T) {
	migrated, err := MigrateFlat(context.Background(), newFlat(), newStructured(t), time.UTC, nil)
	require.NoError(t, err)
	assert.False(t, migrated)
}

func TestMigrateFlat_FailureKeepsFlatData(t *testing.T) {
	ctx := context.Background()
	src := newFlat()
	dst := newStructured(t)
	seedFlat(t, src)
	dst.failPhoto = true

	migrated, err := MigrateFlat(ctx, src, dst, time.UTC, nil)
	assert.Error(t, err)
	assert.False(t, migrated)

	blob := src.Entries(ctx)
	assert.Len(t, blob["2024-03-01"], 1)
	assert.Len(t, blob["2024-03-02"], 1)
}

func TestMigrateFlat_KeepsExistingIDs(t *testing.T) {
	ctx := context.Background()
	src := newFlat()
	dst := newStructured(t)

	e := lunch(day(2024, 3, 1))
	e.ID = "legacy-1"
	require.NoError(t, src.SaveEntries(ctx, map[domain.DateKey][]*domain.Entry{"2024-03-01": {e}}))

	_, err := MigrateFlat(ctx, src, dst, time.UTC, nil)
	require.NoError(t, err)

	got, err := dst.GetUserEntry(ctx, "legacy-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestOpen_MigratesFlatStore(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	seedFlat(t, f.flat)

	require.Equal(t, BackendStructured, f.tr.Open(ctx))

	assert.Len(t, f.tr.EntriesOn(day(2024, 3, 1)), 1)
	dinner := f.tr.EntriesOn(day(2024, 3, 2))
	require.Len(t, dinner, 1)
	assert.NotNil(t, dinner[0].Photo)
	assert.Empty(t, f.flat.Entries(ctx))

	state, ok := f.tr.State(dinner[0].ID)
	require.True(t, ok)
	assert.Equal(t, BackendStructured, state.Backend)
}
