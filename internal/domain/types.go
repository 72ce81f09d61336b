package domain

import (
	"time"
)

type Kind string

const (
	KindMeal         Kind = "meal"
	KindSleep        Kind = "sleep"
	KindMeasurements Kind = "measurements"
	KindExercise     Kind = "exercise"
)

func (k Kind) Valid() bool {
	switch k {
	case KindMeal, KindSleep, KindMeasurements, KindExercise:
		return true
	}
	return false
}

type PhotoSource string

const (
	PhotoSourceCamera  PhotoSource = "camera"
	PhotoSourceLibrary PhotoSource = "library"
)

// Photo is an image attached to at most one Entry. TempID correlates a
// captured photo with the entry that will own it before that entry exists.
type Photo struct {
	DataURL    string      `json:"dataUrl"`
	Filename   string      `json:"filename,omitempty"`
	Size       int64       `json:"size,omitempty"`
	MimeType   string      `json:"mimeType,omitempty"`
	Source     PhotoSource `json:"source,omitempty"`
	CapturedAt time.Time   `json:"capturedAt"`
	TempID     string      `json:"tempId,omitempty"`
}

// PhotoRecord is a row of the photo side-table. ID is the owning entry's id.
type PhotoRecord struct {
	ID        string    `json:"id"`
	EntryID   string    `json:"entryId"`
	Date      time.Time `json:"date"`
	Time      ClockTime `json:"time"`
	Type      Kind      `json:"type"`
	Name      string    `json:"name"`
	Photo     Photo     `json:"photo"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPhotoRecord builds the side-table row for an entry carrying a photo.
// It returns nil when the entry has no photo.
func NewPhotoRecord(e *Entry) *PhotoRecord {
	if e == nil || e.Photo == nil {
		return nil
	}
	ts := e.Photo.CapturedAt
	if ts.IsZero() {
		ts = e.Date
	}
	return &PhotoRecord{
		ID:        e.ID,
		EntryID:   e.ID,
		Date:      e.Date,
		Time:      e.Time,
		Type:      e.Kind(),
		Name:      e.Name,
		Photo:     *e.Photo,
		Timestamp: ts,
	}
}

// Settings is the user preference object kept alongside the flat entry blob.
type Settings struct {
	WeightUnit  string `json:"weightUnit"`
	LengthUnit  string `json:"lengthUnit"`
	CalorieGoal int    `json:"calorieGoal,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{WeightUnit: "kg", LengthUnit: "cm"}
}
