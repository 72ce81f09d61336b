package tracker

import (
	"context"
	"fmt"

	"github.com/vbonduro/healthlog/internal/domain"
)

// Settings are kept in the flat store in both modes.
func (t *Tracker) Settings(ctx context.Context) domain.Settings {
	return t.flat.Settings(ctx)
}

func (t *Tracker) SaveSettings(ctx context.Context, s domain.Settings) error {
	if s.WeightUnit != "kg" && s.WeightUnit != "lb" {
		return fmt.Errorf("%w: weight unit must be kg or lb", domain.ErrValidation)
	}
	if s.LengthUnit != "cm" && s.LengthUnit != "in" {
		return fmt.Errorf("%w: length unit must be cm or in", domain.ErrValidation)
	}
	if s.CalorieGoal < 0 {
		return fmt.Errorf("%w: calorie goal cannot be negative", domain.ErrValidation)
	}

	t.opMu.Lock()
	defer t.opMu.Unlock()
	return t.flat.SaveSettings(ctx, s)
}
