package tracker

import (
	"context"
	"fmt"

	"github.com/vbonduro/healthlog/internal/domain"
)

// saveStructured writes the entry row and, when a photo is attached, its
// photo side-table row.
func saveStructured(ctx context.Context, s Structured, entry *domain.Entry) error {
	if err := s.SaveUserEntry(ctx, entry.Clone()); err != nil {
		return err
	}
	rec := domain.NewPhotoRecord(entry)
	if rec == nil {
		return nil
	}
	if err := s.SavePhotoEntry(ctx, rec); err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}
	return nil
}

// dropPhoto removes the photo row for id. Failures are logged and otherwise
// ignored.
func (t *Tracker) dropPhoto(ctx context.Context, s Structured, id string) {
	if err := s.DeletePhotoEntry(ctx, id); err != nil {
		t.logger.WarnContext(ctx, "failed to delete photo row", "entry_id", id, "error", err)
	}
}
