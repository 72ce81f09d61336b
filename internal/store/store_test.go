package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/healthlog/internal/db"
	"github.com/vbonduro/healthlog/internal/domain"
)

func openTestStore(t *testing.T) *Structured {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)

	s := NewStructured(d)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func mealEntry(id, name string, date time.Time, calories string) *domain.Entry {
	return &domain.Entry{
		ID:      id,
		Name:    name,
		Date:    date,
		Time:    domain.ClockTime{Hour: 12, Minute: 30, Period: domain.PM},
		Details: &domain.Meal{Amount: "1 plate", Nutrients: domain.Nutrients{Calories: calories}},
	}
}
