package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/vbonduro/healthlog/internal/domain"
)

// Library operations need the structured store and fail with
// domain.ErrStoreUnavailable in flat mode.

func (t *Tracker) library() (Structured, error) {
	if !t.initialized.Load() {
		return nil, ErrNotOpen
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.structured == nil {
		return nil, fmt.Errorf("%w: library requires the structured store", domain.ErrStoreUnavailable)
	}
	return t.structured, nil
}

// GetFoodItems returns food items whose name contains term, most recently
// used first. limit <= 0 means no limit.
func (t *Tracker) GetFoodItems(ctx context.Context, term string, limit int) ([]*domain.FoodItem, error) {
	s, err := t.library()
	if err != nil {
		return nil, err
	}
	t.opMu.Lock()
	defer t.opMu.Unlock()
	return s.GetFoodItems(ctx, term, limit)
}

func (t *Tracker) GetExerciseItems(ctx context.Context, term string, limit int) ([]*domain.ExerciseItem, error) {
	s, err := t.library()
	if err != nil {
		return nil, err
	}
	t.opMu.Lock()
	defer t.opMu.Unlock()
	return s.GetExerciseItems(ctx, term, limit)
}

func (t *Tracker) AddFoodItem(ctx context.Context, it *domain.FoodItem) (int64, error) {
	if it == nil || strings.TrimSpace(it.Name) == "" {
		return 0, fmt.Errorf("%w: item name is required", domain.ErrValidation)
	}
	s, err := t.library()
	if err != nil {
		return 0, err
	}
	t.opMu.Lock()
	defer t.opMu.Unlock()
	return s.AddFoodItem(ctx, it)
}

func (t *Tracker) AddExerciseItem(ctx context.Context, it *domain.ExerciseItem) (int64, error) {
	if it == nil || strings.TrimSpace(it.Name) == "" {
		return 0, fmt.Errorf("%w: item name is required", domain.ErrValidation)
	}
	s, err := t.library()
	if err != nil {
		return 0, err
	}
	t.opMu.Lock()
	defer t.opMu.Unlock()
	return s.AddExerciseItem(ctx, it)
}

// UpdateItem merges patch into the item and marks it as just used.
func (t *Tracker) UpdateItem(ctx context.Context, kind domain.LibraryKind, id int64, patch domain.LibraryPatch) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown library kind %q", domain.ErrValidation, kind)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return fmt.Errorf("%w: item name cannot be empty", domain.ErrValidation)
	}
	s, err := t.library()
	if err != nil {
		return err
	}
	t.opMu.Lock()
	defer t.opMu.Unlock()
	if kind == domain.LibraryFood {
		return s.UpdateFoodItem(ctx, id, patch)
	}
	return s.UpdateExerciseItem(ctx, id, patch)
}

func (t *Tracker) DeleteItem(ctx context.Context, kind domain.LibraryKind, id int64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown library kind %q", domain.ErrValidation, kind)
	}
	s, err := t.library()
	if err != nil {
		return err
	}
	t.opMu.Lock()
	defer t.opMu.Unlock()
	if kind == domain.LibraryFood {
		return s.DeleteFoodItem(ctx, id)
	}
	return s.DeleteExerciseItem(ctx, id)
}

// MeasurementHistory returns every recorded value of one measurement type,
// e.g. "weight" or "skinfold_chest", oldest first.
func (t *Tracker) MeasurementHistory(ctx context.Context, typ string) ([]domain.MeasurementPoint, error) {
	if strings.TrimSpace(typ) == "" {
		return nil, fmt.Errorf("%w: measurement type is required", domain.ErrValidation)
	}
	s, err := t.library()
	if err != nil {
		return nil, err
	}
	t.opMu.Lock()
	defer t.opMu.Unlock()
	return s.ListMeasurements(ctx, typ)
}

// remember records a newly added meal or exercise in the library so it is
// offered by autocomplete. A matching item is only touched. Called with opMu
// held; failures are logged.
func (t *Tracker) remember(ctx context.Context, e *domain.Entry) {
	t.mu.RLock()
	s := t.structured
	t.mu.RUnlock()
	if s == nil {
		return
	}

	var err error
	switch d := e.Details.(type) {
	case *domain.Meal:
		err = rememberFood(ctx, s, e.Name, d)
	case *domain.Exercise:
		err = rememberExercise(ctx, s, e.Name, d)
	default:
		return
	}
	if err != nil {
		t.logger.WarnContext(ctx, "failed to update library", "entry_id", e.ID, "error", err)
	}
}

func rememberFood(ctx context.Context, s Structured, name string, meal *domain.Meal) error {
	items, err := s.GetFoodItems(ctx, name, 0)
	if err != nil {
		return err
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, name) && it.Nutrients.SameMacros(meal.Nutrients) {
			return s.UpdateFoodItem(ctx, it.ID, domain.LibraryPatch{})
		}
	}
	_, err = s.AddFoodItem(ctx, &domain.FoodItem{Name: name, Nutrients: meal.Nutrients})
	return err
}

func rememberExercise(ctx context.Context, s Structured, name string, ex *domain.Exercise) error {
	items, err := s.GetExerciseItems(ctx, name, 0)
	if err != nil {
		return err
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, name) {
			return s.UpdateExerciseItem(ctx, it.ID, domain.LibraryPatch{})
		}
	}
	it := &domain.ExerciseItem{Name: name, DefaultSets: len(ex.Sets)}
	if len(ex.Sets) > 0 {
		it.DefaultReps = ex.Sets[0].Reps
		it.DefaultLoad = ex.Sets[0].Load
	}
	_, err = s.AddExerciseItem(ctx, it)
	return err
}
