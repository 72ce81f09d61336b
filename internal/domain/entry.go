package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Entry is one logged health event. The variant payload lives in Details.
type Entry struct {
	ID      string
	Name    string
	Date    time.Time
	Time    ClockTime
	Notes   string
	Photo   *Photo
	Details Details
}

// Details is implemented by Meal, Sleep, Measurements and Exercise.
type Details interface {
	Kind() Kind
	clone() Details
	validate() error
}

type Nutrients struct {
	Calories string `json:"calories,omitempty"`
	Protein  string `json:"protein,omitempty"`
	Carbs    string `json:"carbs,omitempty"`
	Fats     string `json:"fats,omitempty"`
	Fibre    string `json:"fibre,omitempty"`
	Other    string `json:"other,omitempty"`
}

// SameMacros reports whether calories, protein, carbs and fats match.
func (n Nutrients) SameMacros(o Nutrients) bool {
	return n.Calories == o.Calories && n.Protein == o.Protein &&
		n.Carbs == o.Carbs && n.Fats == o.Fats
}

type Meal struct {
	Amount string `json:"amount,omitempty"`
	Nutrients
}

func (*Meal) Kind() Kind { return KindMeal }

func (m *Meal) clone() Details {
	c := *m
	return &c
}

func (m *Meal) validate() error { return nil }

type Sleep struct {
	Bedtime  ClockTime `json:"bedtime"`
	Waketime ClockTime `json:"waketime"`
	Duration string    `json:"duration,omitempty"`
}

func (*Sleep) Kind() Kind { return KindSleep }

func (s *Sleep) clone() Details {
	c := *s
	return &c
}

func (s *Sleep) validate() error {
	if err := s.Bedtime.Validate(); err != nil {
		return fmt.Errorf("bedtime: %w", err)
	}
	if err := s.Waketime.Validate(); err != nil {
		return fmt.Errorf("waketime: %w", err)
	}
	return nil
}

type Girths struct {
	Neck      *float64 `json:"neck,omitempty"`
	Shoulders *float64 `json:"shoulders,omitempty"`
	Chest     *float64 `json:"chest,omitempty"`
	Waist     *float64 `json:"waist,omitempty"`
	Hips      *float64 `json:"hips,omitempty"`
	Thigh     *float64 `json:"thigh,omitempty"`
	Arm       *float64 `json:"arm,omitempty"`
	Calf      *float64 `json:"calf,omitempty"`
}

// Skinfolds are caliper readings in millimeters.
type Skinfolds struct {
	Chest       *float64 `json:"chest,omitempty"`
	Abdomen     *float64 `json:"abdomen,omitempty"`
	Thigh       *float64 `json:"thigh,omitempty"`
	Tricep      *float64 `json:"tricep,omitempty"`
	Subscapular *float64 `json:"subscapular,omitempty"`
	Suprailiac  *float64 `json:"suprailiac,omitempty"`
}

type Measurements struct {
	Weight    float64   `json:"weight"`
	Girths    Girths    `json:"girths"`
	Skinfolds Skinfolds `json:"skinfolds"`
}

func (*Measurements) Kind() Kind { return KindMeasurements }

func (m *Measurements) clone() Details {
	c := Measurements{Weight: m.Weight}
	c.Girths = Girths{
		Neck: copyFloat(m.Girths.Neck), Shoulders: copyFloat(m.Girths.Shoulders),
		Chest: copyFloat(m.Girths.Chest), Waist: copyFloat(m.Girths.Waist),
		Hips: copyFloat(m.Girths.Hips), Thigh: copyFloat(m.Girths.Thigh),
		Arm: copyFloat(m.Girths.Arm), Calf: copyFloat(m.Girths.Calf),
	}
	c.Skinfolds = Skinfolds{
		Chest: copyFloat(m.Skinfolds.Chest), Abdomen: copyFloat(m.Skinfolds.Abdomen),
		Thigh: copyFloat(m.Skinfolds.Thigh), Tricep: copyFloat(m.Skinfolds.Tricep),
		Subscapular: copyFloat(m.Skinfolds.Subscapular), Suprailiac: copyFloat(m.Skinfolds.Suprailiac),
	}
	return &c
}

func (m *Measurements) validate() error {
	if m.Weight <= 0 {
		return fmt.Errorf("%w: weight is required", ErrValidation)
	}
	for name, v := range m.Values() {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, name)
		}
	}
	return nil
}

// Values flattens every recorded measurement into name → value. Skinfold
// names carry a "skinfold_" prefix so they do not collide with girths.
func (m *Measurements) Values() map[string]float64 {
	out := map[string]float64{"weight": m.Weight}
	add := func(name string, v *float64) {
		if v != nil {
			out[name] = *v
		}
	}
	add("neck", m.Girths.Neck)
	add("shoulders", m.Girths.Shoulders)
	add("chest", m.Girths.Chest)
	add("waist", m.Girths.Waist)
	add("hips", m.Girths.Hips)
	add("thigh", m.Girths.Thigh)
	add("arm", m.Girths.Arm)
	add("calf", m.Girths.Calf)
	add("skinfold_chest", m.Skinfolds.Chest)
	add("skinfold_abdomen", m.Skinfolds.Abdomen)
	add("skinfold_thigh", m.Skinfolds.Thigh)
	add("skinfold_tricep", m.Skinfolds.Tricep)
	add("skinfold_subscapular", m.Skinfolds.Subscapular)
	add("skinfold_suprailiac", m.Skinfolds.Suprailiac)
	return out
}

type Set struct {
	Reps int    `json:"reps"`
	Load string `json:"load,omitempty"`
}

type Exercise struct {
	Sets []Set `json:"sets"`
}

func (*Exercise) Kind() Kind { return KindExercise }

func (e *Exercise) clone() Details {
	return &Exercise{Sets: append([]Set(nil), e.Sets...)}
}

func (e *Exercise) validate() error {
	for i, s := range e.Sets {
		if s.Reps < 0 {
			return fmt.Errorf("%w: set %d has negative reps", ErrValidation, i+1)
		}
	}
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Kind returns the variant tag, or "" when Details is unset.
func (e *Entry) Kind() Kind {
	if e.Details == nil {
		return ""
	}
	return e.Details.Kind()
}

// Validate checks the fields a form must supply before the entry is handed
// to the tracker.
func (e *Entry) Validate() error {
	if e.Details == nil {
		return fmt.Errorf("%w: entry type is required", ErrValidation)
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: entry name is required", ErrValidation)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: entry date is required", ErrValidation)
	}
	if err := e.Time.Validate(); err != nil {
		return fmt.Errorf("time: %w", err)
	}
	return e.Details.validate()
}

// Clone returns a deep copy so cache snapshots cannot be mutated by callers.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	if e.Photo != nil {
		p := *e.Photo
		c.Photo = &p
	}
	if e.Details != nil {
		c.Details = e.Details.clone()
	}
	return &c
}

type entryJSON struct {
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name"`
	Type    Kind            `json:"type"`
	Date    time.Time       `json:"date"`
	Time    ClockTime       `json:"time"`
	Notes   string          `json:"notes,omitempty"`
	Photo   *Photo          `json:"photo,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		ID:    e.ID,
		Name:  e.Name,
		Type:  e.Kind(),
		Date:  e.Date,
		Time:  e.Time,
		Notes: e.Notes,
		Photo: e.Photo,
	}
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, err
		}
		out.Details = raw
	}
	return json.Marshal(out)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var details Details
	switch in.Type {
	case KindMeal:
		details = &Meal{}
	case KindSleep:
		details = &Sleep{}
	case KindMeasurements:
		details = &Measurements{}
	case KindExercise:
		details = &Exercise{}
	case "":
	default:
		return fmt.Errorf("%w: unknown entry type %q", ErrValidation, in.Type)
	}
	if details != nil && len(in.Details) > 0 && string(in.Details) != "null" {
		if err := json.Unmarshal(in.Details, details); err != nil {
			return fmt.Errorf("decode %s details: %w", in.Type, err)
		}
	}

	*e = Entry{
		ID:      in.ID,
		Name:    in.Name,
		Date:    in.Date,
		Time:    in.Time,
		Notes:   in.Notes,
		Photo:   in.Photo,
		Details: details,
	}
	return nil
}
