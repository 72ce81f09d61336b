package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/healthlog/internal/domain"
)

// LibraryStore keeps the reusable food and exercise templates. Listings are
// ordered by last use so recent items surface first in autocomplete.
type LibraryStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewLibraryStore(db *sql.DB) *LibraryStore {
	return &LibraryStore{db: db, now: time.Now}
}

const foodColumns = `id, name, category, description, calories, protein, carbs, fats, fibre, other, last_used`

func (s *LibraryStore) AddFoodItem(ctx context.Context, it *domain.FoodItem) (int64, error) {
	it.LastUsed = s.now().UTC()
	n := it.Nutrients
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO food_items (name, category, description, calories, protein, carbs, fats, fibre, other, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, it.Name, it.Category, it.Description, n.Calories, n.Protein, n.Carbs, n.Fats, n.Fibre, n.Other, formatTime(it.LastUsed))
	if err != nil {
		return 0, fmt.Errorf("failed to create food item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	it.ID = id
	return id, nil
}

func (s *LibraryStore) GetFoodItem(ctx context.Context, id int64) (*domain.FoodItem, error) {
	it, err := scanFood(s.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM food_items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food item: %w", err)
	}
	return it, nil
}

// GetFoodItems lists up to limit items, most recently used first. A non-empty
// term filters on a case-insensitive literal substring of the name; limit <= 0
// means no limit.
func (s *LibraryStore) GetFoodItems(ctx context.Context, term string, limit int) ([]*domain.FoodItem, error) {
	term = foldName(term)
	query, args := libraryQuery(foodColumns, "food_items", term, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []*domain.FoodItem
	for rows.Next() {
		it, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food item: %w", err)
		}
		if !nameMatches(it.Name, term) {
			continue
		}
		items = append(items, it)
		if limit > 0 && len(items) == limit {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating food items: %w", err)
	}

	return items, nil
}

// UpdateFoodItem merges patch onto the stored item and re-stamps last_used.
func (s *LibraryStore) UpdateFoodItem(ctx context.Context, id int64, patch domain.LibraryPatch) error {
	it, err := s.GetFoodItem(ctx, id)
	if err != nil {
		return err
	}
	if it == nil {
		return fmt.Errorf("food item %d: %w", id, domain.ErrNotFound)
	}
	patch.ApplyFood(it)

	n := it.Nutrients
	_, err = s.db.ExecContext(ctx, `
		UPDATE food_items SET name = ?, category = ?, description = ?, calories = ?, protein = ?,
			carbs = ?, fats = ?, fibre = ?, other = ?, last_used = ?
		WHERE id = ?
	`, it.Name, it.Category, it.Description, n.Calories, n.Protein, n.Carbs, n.Fats, n.Fibre, n.Other,
		formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("failed to update food item: %w", err)
	}
	return nil
}

func (s *LibraryStore) DeleteFoodItem(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM food_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete food item: %w", err)
	}
	return nil
}

const exerciseColumns = `id, name, category, description, default_sets, default_reps, default_load, last_used`

func (s *LibraryStore) AddExerciseItem(ctx context.Context, it *domain.ExerciseItem) (int64, error) {
	it.LastUsed = s.now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO exercise_items (name, category, description, default_sets, default_reps, default_load, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, it.Name, it.Category, it.Description, it.DefaultSets, it.DefaultReps, it.DefaultLoad, formatTime(it.LastUsed))
	if err != nil {
		return 0, fmt.Errorf("failed to create exercise item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	it.ID = id
	return id, nil
}

func (s *LibraryStore) GetExerciseItem(ctx context.Context, id int64) (*domain.ExerciseItem, error) {
	it, err := scanExercise(s.db.QueryRowContext(ctx, `SELECT `+exerciseColumns+` FROM exercise_items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exercise item: %w", err)
	}
	return it, nil
}

func (s *LibraryStore) GetExerciseItems(ctx context.Context, term string, limit int) ([]*domain.ExerciseItem, error) {
	term = foldName(term)
	query, args := libraryQuery(exerciseColumns, "exercise_items", term, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercise items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []*domain.ExerciseItem
	for rows.Next() {
		it, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exercise item: %w", err)
		}
		if !nameMatches(it.Name, term) {
			continue
		}
		items = append(items, it)
		if limit > 0 && len(items) == limit {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exercise items: %w", err)
	}

	return items, nil
}

func (s *LibraryStore) UpdateExerciseItem(ctx context.Context, id int64, patch domain.LibraryPatch) error {
	it, err := s.GetExerciseItem(ctx, id)
	if err != nil {
		return err
	}
	if it == nil {
		return fmt.Errorf("exercise item %d: %w", id, domain.ErrNotFound)
	}
	patch.ApplyExercise(it)

	_, err = s.db.ExecContext(ctx, `
		UPDATE exercise_items SET name = ?, category = ?, description = ?, default_sets = ?,
			default_reps = ?, default_load = ?, last_used = ?
		WHERE id = ?
	`, it.Name, it.Category, it.Description, it.DefaultSets, it.DefaultReps, it.DefaultLoad, formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("failed to update exercise item: %w", err)
	}
	return nil
}

func (s *LibraryStore) DeleteExerciseItem(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM exercise_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete exercise item: %w", err)
	}
	return nil
}

// libraryQuery lists a library table in recency order. SQLite's LOWER and
// LIKE only fold ASCII, so a search term is matched in Go by nameMatches and
// the limit is applied there too.
func libraryQuery(columns, table, term string, limit int) (string, []any) {
	query := `SELECT ` + columns + ` FROM ` + table + ` ORDER BY last_used DESC, id DESC`
	var args []any
	if term == "" && limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return query, args
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// nameMatches reports whether name contains the folded term. An empty term
// matches every name.
func nameMatches(name, term string) bool {
	return term == "" || strings.Contains(foldName(name), term)
}

func scanFood(row scanner) (*domain.FoodItem, error) {
	var (
		it       = &domain.FoodItem{}
		n        = &it.Nutrients
		lastUsed string
	)
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Description,
		&n.Calories, &n.Protein, &n.Carbs, &n.Fats, &n.Fibre, &n.Other, &lastUsed)
	if err != nil {
		return nil, err
	}
	if it.LastUsed, err = parseTime(lastUsed); err != nil {
		return nil, err
	}
	return it, nil
}

func scanExercise(row scanner) (*domain.ExerciseItem, error) {
	var (
		it       = &domain.ExerciseItem{}
		lastUsed string
	)
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Description,
		&it.DefaultSets, &it.DefaultReps, &it.DefaultLoad, &lastUsed)
	if err != nil {
		return nil, err
	}
	if it.LastUsed, err = parseTime(lastUsed); err != nil {
		return nil, err
	}
	return it, nil
}

// timeLayout is fixed width so last_used sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
