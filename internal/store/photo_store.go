package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/healthlog/internal/domain"
)

// PhotoStore is the photo side-table. Rows are keyed by the owning entry id
// and carry no foreign key, so gallery-only photos can exist on their own.
type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

func (s *PhotoStore) SavePhotoEntry(ctx context.Context, rec *domain.PhotoRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: photo record id is required", domain.ErrValidation)
	}
	photo, err := json.Marshal(rec.Photo)
	if err != nil {
		return fmt.Errorf("failed to encode photo: %w", err)
	}
	clock, err := json.Marshal(rec.Time)
	if err != nil {
		return fmt.Errorf("failed to encode photo time: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO photo_entries (id, entry_id, date, time, type, name, photo, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entry_id = excluded.entry_id,
			date = excluded.date,
			time = excluded.time,
			type = excluded.type,
			name = excluded.name,
			photo = excluded.photo,
			timestamp = excluded.timestamp
	`, rec.ID, rec.EntryID, domain.FormatISO(rec.Date), string(clock), string(rec.Type), rec.Name,
		string(photo), formatTime(rec.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}
	return nil
}

func (s *PhotoStore) GetPhotoEntry(ctx context.Context, id string) (*domain.PhotoRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, entry_id, date, time, type, name, photo, timestamp FROM photo_entries WHERE id = ?
	`, id)
	rec, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return rec, nil
}

func (s *PhotoStore) GetAllPhotoEntries(ctx context.Context) ([]*domain.PhotoRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entry_id, date, time, type, name, photo, timestamp FROM photo_entries ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var recs []*domain.PhotoRecord
	for rows.Next() {
		rec, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return recs, nil
}

// DeletePhotoEntry removes the row for id. A missing row is not an error.
func (s *PhotoStore) DeletePhotoEntry(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM photo_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row scanner) (*domain.PhotoRecord, error) {
	var (
		rec               domain.PhotoRecord
		date, clock, kind string
		photo, timestamp  string
	)
	if err := row.Scan(&rec.ID, &rec.EntryID, &date, &clock, &kind, &rec.Name, &photo, &timestamp); err != nil {
		return nil, err
	}
	rec.Type = domain.Kind(kind)

	var err error
	if rec.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return nil, fmt.Errorf("invalid photo date %q: %w", date, err)
	}
	if rec.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, err
	}
	if clock != "" {
		if err := json.Unmarshal([]byte(clock), &rec.Time); err != nil {
			return nil, fmt.Errorf("invalid photo time: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(photo), &rec.Photo); err != nil {
		return nil, fmt.Errorf("invalid photo payload: %w", err)
	}
	return &rec, nil
}
