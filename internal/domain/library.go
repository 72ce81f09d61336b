package domain

import "time"

type LibraryKind string

const (
	LibraryFood     LibraryKind = "food"
	LibraryExercise LibraryKind = "exercise"
)

func (k LibraryKind) Valid() bool {
	return k == LibraryFood || k == LibraryExercise
}

// FoodItem is a reusable meal template surfaced by autocomplete.
type FoodItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Nutrients   Nutrients `json:"nutrients"`
	LastUsed    time.Time `json:"lastUsed"`
}

type ExerciseItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	DefaultSets int       `json:"defaultSets,omitempty"`
	DefaultReps int       `json:"defaultReps,omitempty"`
	DefaultLoad string    `json:"defaultLoad,omitempty"`
	LastUsed    time.Time `json:"lastUsed"`
}

// LibraryPatch is a partial update. Nil fields are left unchanged; fields
// that do not apply to the item's kind are ignored.
type LibraryPatch struct {
	Name        *string    `json:"name,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Description *string    `json:"description,omitempty"`
	Nutrients   *Nutrients `json:"nutrients,omitempty"`
	DefaultSets *int       `json:"defaultSets,omitempty"`
	DefaultReps *int       `json:"defaultReps,omitempty"`
	DefaultLoad *string    `json:"defaultLoad,omitempty"`
}

func (p LibraryPatch) ApplyFood(it *FoodItem) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Nutrients != nil {
		it.Nutrients = *p.Nutrients
	}
}

func (p LibraryPatch) ApplyExercise(it *ExerciseItem) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.DefaultSets != nil {
		it.DefaultSets = *p.DefaultSets
	}
	if p.DefaultReps != nil {
		it.DefaultReps = *p.DefaultReps
	}
	if p.DefaultLoad != nil {
		it.DefaultLoad = *p.DefaultLoad
	}
}

// MeasurementPoint is one value from the measurement history table.
type MeasurementPoint struct {
	EntryID string    `json:"entryId"`
	Date    time.Time `json:"date"`
	Type    string    `json:"type"`
	Value   float64   `json:"value"`
}
