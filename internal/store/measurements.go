package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vbonduro/healthlog/internal/domain"
)

// replaceMeasurements rewrites the history rows derived from e. Entries that
// are not measurements simply end up with no rows.
func replaceMeasurements(ctx context.Context, tx *sql.Tx, e *domain.Entry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM measurements WHERE entry_id = ?`, e.ID); err != nil {
		return fmt.Errorf("failed to clear measurements: %w", err)
	}

	m, ok := e.Details.(*domain.Measurements)
	if !ok {
		return nil
	}

	values := m.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	date := domain.FormatISO(e.Date)
	for _, name := range names {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO measurements (entry_id, date, type, value) VALUES (?, ?, ?, ?)
		`, e.ID, date, name, values[name])
		if err != nil {
			return fmt.Errorf("failed to save measurement %s: %w", name, err)
		}
	}
	return nil
}

// ListMeasurements returns the history of one measurement type, oldest first.
func (s *EntryStore) ListMeasurements(ctx context.Context, typ string) ([]domain.MeasurementPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, date, type, value FROM measurements
		WHERE type = ? ORDER BY date ASC, id ASC
	`, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var points []domain.MeasurementPoint
	for rows.Next() {
		var (
			p    domain.MeasurementPoint
			date string
		)
		if err := rows.Scan(&p.EntryID, &date, &p.Type, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		p.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse measurement date %q: %w", date, err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measurements: %w", err)
	}

	return points, nil
}
