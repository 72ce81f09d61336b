package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/healthlog/internal/domain"
)

// EntryStore persists logged entries. The full entry is kept as a JSON
// payload; id, name, type and date are columns for indexed lookups.
type EntryStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewEntryStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db, now: time.Now}
}

// SaveUserEntry inserts the entry, or overwrites it when the id exists. An
// entry without an id is assigned one. Measurement history rows for the
// entry are replaced in the same transaction.
func (s *EntryStore) SaveUserEntry(ctx context.Context, e *domain.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_entries (id, name, type, date, payload, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			date = excluded.date,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, e.ID, e.Name, string(e.Kind()), domain.FormatISO(e.Date), string(payload), formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	if err := replaceMeasurements(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

func (s *EntryStore) GetAllUserEntries(ctx context.Context) ([]*domain.Entry, error) {
	return s.query(ctx, `SELECT payload FROM user_entries ORDER BY rowid ASC`)
}

// GetUserEntries returns the entries whose normalized date equals date.
func (s *EntryStore) GetUserEntries(ctx context.Context, date time.Time) ([]*domain.Entry, error) {
	return s.query(ctx, `SELECT payload FROM user_entries WHERE date = ? ORDER BY rowid ASC`, domain.FormatISO(date))
}

func (s *EntryStore) GetUserEntry(ctx context.Context, id string) (*domain.Entry, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM user_entries WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	e := &domain.Entry{}
	if err := json.Unmarshal([]byte(payload), e); err != nil {
		return nil, fmt.Errorf("failed to decode entry %s: %w", id, err)
	}
	return e, nil
}

// DeleteUserEntry removes the entry and its measurement rows. Deleting an
// unknown id is not an error.
func (s *EntryStore) DeleteUserEntry(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM measurements WHERE entry_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete measurements: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func (s *EntryStore) query(ctx context.Context, query string, args ...any) ([]*domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var entries []*domain.Entry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e := &domain.Entry{}
		if err := json.Unmarshal([]byte(payload), e); err != nil {
			return nil, fmt.Errorf("failed to decode entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}
