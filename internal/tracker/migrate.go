package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/healthlog/internal/domain"
)

// MigrationTarget is the part of the structured store migration writes to.
type MigrationTarget interface {
	SaveUserEntry(ctx context.Context, e *domain.Entry) error
	SavePhotoEntry(ctx context.Context, rec *domain.PhotoRecord) error
}

// MigrateFlat copies every entry in the flat store into dst and then clears
// the flat entries. Entries without an id get one from newID (uuid when
// nil) and dates are normalized to midnight in loc. It reports whether any
// entries were migrated.
//
// If any write fails the flat store is left intact, so the next run retries
// the whole set; dst upserts by id, which makes the retry safe.
func MigrateFlat(ctx context.Context, src FlatStore, dst MigrationTarget, loc *time.Location, newID func() string) (bool, error) {
	if newID == nil {
		newID = uuid.NewString
	}

	blob := src.Entries(ctx)
	if len(blob) == 0 {
		return false, nil
	}

	var entries []*domain.Entry
	for _, key := range sortedKeys(blob) {
		for _, e := range blob[key] {
			if e == nil {
				continue
			}
			if e.ID == "" {
				e.ID = newID()
			}
			if e.Date.IsZero() {
				d, err := domain.ParseDay(string(key), loc)
				if err != nil {
					return false, fmt.Errorf("failed to migrate entry %s: %w", e.ID, err)
				}
				e.Date = d
			}
			e.Date = domain.NormalizeDate(e.Date, loc)
			entries = append(entries, e)
		}
	}

	for _, e := range entries {
		if err := dst.SaveUserEntry(ctx, e); err != nil {
			return false, fmt.Errorf("failed to migrate entry %s: %w", e.ID, err)
		}
		if rec := domain.NewPhotoRecord(e); rec != nil {
			if err := dst.SavePhotoEntry(ctx, rec); err != nil {
				return false, fmt.Errorf("failed to migrate photo for entry %s: %w", e.ID, err)
			}
		}
	}

	if err := src.ClearEntries(ctx); err != nil {
		return false, fmt.Errorf("failed to clear flat entries after migration: %w", err)
	}
	return len(entries) > 0, nil
}
