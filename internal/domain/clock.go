package domain

import (
	"fmt"
	"time"
)

type Period string

const (
	AM Period = "AM"
	PM Period = "PM"
)

// ClockTime is a 12-hour wall clock time as entered in the UI.
type ClockTime struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Period Period `json:"period"`
}

func (c ClockTime) Validate() error {
	if c.Hour < 1 || c.Hour > 12 {
		return fmt.Errorf("%w: hour %d out of range 1-12", ErrValidation, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: minute %d out of range 0-59", ErrValidation, c.Minute)
	}
	if c.Period != AM && c.Period != PM {
		return fmt.Errorf("%w: period must be AM or PM, got %q", ErrValidation, c.Period)
	}
	return nil
}

// MinutesSinceMidnight converts to a 24-hour minute offset. 12 AM is midnight.
func (c ClockTime) MinutesSinceMidnight() int {
	h := c.Hour % 12
	if c.Period == PM {
		h += 12
	}
	return h*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%d:%02d %s", c.Hour, c.Minute, c.Period)
}

// SleepDuration renders the time between bedtime and waketime, wrapping past
// midnight, e.g. "7h 30m".
func SleepDuration(bed, wake ClockTime) string {
	d := wake.MinutesSinceMidnight() - bed.MinutesSinceMidnight()
	if d < 0 {
		d += 24 * 60
	}
	return fmt.Sprintf("%dh %dm", d/60, d%60)
}

// DateKey buckets entries by calendar day. Callers should treat it as opaque.
type DateKey string

const dateKeyLayout = "2006-01-02"

// NormalizeDate returns local midnight of t's calendar day in loc.
func NormalizeDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func KeyFor(t time.Time, loc *time.Location) DateKey {
	return DateKey(NormalizeDate(t, loc).Format(dateKeyLayout))
}

// ParseDay parses a YYYY-MM-DD string into local midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateKeyLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return t, nil
}

// FormatISO renders a normalized date the way the stores persist it.
func FormatISO(t time.Time) string {
	return t.Format(time.RFC3339)
}
