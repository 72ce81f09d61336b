package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMeal() *Entry {
	return &Entry{
		ID:      "e1",
		Name:    "Lunch",
		Date:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Time:    ClockTime{Hour: 12, Minute: 30, Period: PM},
		Details: &Meal{Amount: "1 bowl", Nutrients: Nutrients{Calories: "600", Protein: "30"}},
	}
}

func TestEntryValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *Entry)
		ok     bool
	}{
		{"valid", func(*Entry) {}, true},
		{"missing details", func(e *Entry) { e.Details = nil }, false},
		{"blank name", func(e *Entry) { e.Name = "  " }, false},
		{"zero date", func(e *Entry) { e.Date = time.Time{} }, false},
		{"bad hour", func(e *Entry) { e.Time.Hour = 13 }, false},
		{"bad period", func(e *Entry) { e.Time.Period = "XM" }, false},
		{"measurements without weight", func(e *Entry) { e.Details = &Measurements{} }, false},
		{"measurements with weight", func(e *Entry) { e.Details = &Measurements{Weight: 80} }, true},
		{"negative reps", func(e *Entry) { e.Details = &Exercise{Sets: []Set{{Reps: -1}}} }, false},
		{"sleep with bad waketime", func(e *Entry) {
			e.Details = &Sleep{Bedtime: ClockTime{Hour: 11, Period: PM}, Waketime: ClockTime{Hour: 0, Period: AM}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validMeal()
			tt.mutate(e)
			err := e.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestEntryJSON_DispatchesOnType(t *testing.T) {
	thigh := 55.0
	entries := []*Entry{
		validMeal(),
		{ID: "s", Name: "Night", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Time: ClockTime{Hour: 7, Period: AM},
			Details: &Sleep{Bedtime: ClockTime{Hour: 11, Period: PM}, Waketime: ClockTime{Hour: 7, Period: AM}, Duration: "8h 0m"}},
		{ID: "m", Name: "Weigh-in", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Time: ClockTime{Hour: 7, Period: AM},
			Details: &Measurements{Weight: 80, Girths: Girths{Thigh: &thigh}}},
		{ID: "x", Name: "Squat", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Time: ClockTime{Hour: 6, Period: PM},
			Details: &Exercise{Sets: []Set{{Reps: 5, Load: "100kg"}}}},
	}

	for _, in := range entries {
		t.Run(string(in.Kind()), func(t *testing.T) {
			raw, err := json.Marshal(in)
			require.NoError(t, err)

			var out Entry
			require.NoError(t, json.Unmarshal(raw, &out))
			assert.Equal(t, in.Kind(), out.Kind())
			assert.Equal(t, in.Details, out.Details)
		})
	}
}

func TestEntryJSON_UnknownType(t *testing.T) {
	var e Entry
	err := json.Unmarshal([]byte(`{"name":"x","type":"yoga","details":{}}`), &e)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEntryClone_IsDeep(t *testing.T) {
	chest := 100.0
	e := validMeal()
	e.Photo = &Photo{Filename: "a.jpg"}
	c := e.Clone()

	c.Photo.Filename = "b.jpg"
	c.Details.(*Meal).Calories = "1"
	assert.Equal(t, "a.jpg", e.Photo.Filename)
	assert.Equal(t, "600", e.Details.(*Meal).Calories)

	m := &Entry{Details: &Measurements{Weight: 80, Girths: Girths{Chest: &chest}}}
	mc := m.Clone()
	*mc.Details.(*Measurements).Girths.Chest = 90
	assert.Equal(t, 100.0, chest)
}

func TestNewPhotoRecord(t *testing.T) {
	e := validMeal()
	assert.Nil(t, NewPhotoRecord(e))

	e.Photo = &Photo{Filename: "a.jpg"}
	rec := NewPhotoRecord(e)
	require.NotNil(t, rec)
	assert.Equal(t, "e1", rec.ID)
	assert.Equal(t, "e1", rec.EntryID)
	assert.Equal(t, KindMeal, rec.Type)
	assert.True(t, rec.Timestamp.Equal(e.Date))
}
