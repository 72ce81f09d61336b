package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/healthlog/internal/domain"
	"github.com/vbonduro/healthlog/internal/metrics"
)

// ErrNotOpen is returned by operations called before Open or after Close.
var ErrNotOpen = errors.New("tracker is not open")

// Backend names the store that is authoritative for the session.
type Backend int

const (
	BackendStructured Backend = iota
	BackendFlat
)

func (b Backend) String() string {
	if b == BackendFlat {
		return "flat"
	}
	return "structured"
}

// Status distinguishes a speculative cache entry from a durable one.
type Status int

const (
	StatusPending Status = iota
	StatusConfirmed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// WriteState is the durability of one entry. Backend is where the last
// successful write landed.
type WriteState struct {
	Status  Status
	Backend Backend
}

// Failure is published on the Failures channel when an update or delete
// could not be persisted to any store.
type Failure struct {
	Op      string
	EntryID string
	Err     error
}

// Alerter tells the user synchronously that an add was not persisted.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

type AlertFunc func(ctx context.Context, message string)

func (f AlertFunc) Alert(ctx context.Context, message string) { f(ctx, message) }

type entryRepository interface {
	SaveUserEntry(ctx context.Context, e *domain.Entry) error
	GetAllUserEntries(ctx context.Context) ([]*domain.Entry, error)
	DeleteUserEntry(ctx context.Context, id string) error
	ListMeasurements(ctx context.Context, typ string) ([]domain.MeasurementPoint, error)
}

type photoRepository interface {
	SavePhotoEntry(ctx context.Context, rec *domain.PhotoRecord) error
	GetAllPhotoEntries(ctx context.Context) ([]*domain.PhotoRecord, error)
	DeletePhotoEntry(ctx context.Context, id string) error
}

type libraryRepository interface {
	AddFoodItem(ctx context.Context, it *domain.FoodItem) (int64, error)
	GetFoodItems(ctx context.Context, term string, limit int) ([]*domain.FoodItem, error)
	UpdateFoodItem(ctx context.Context, id int64, patch domain.LibraryPatch) error
	DeleteFoodItem(ctx context.Context, id int64) error
	AddExerciseItem(ctx context.Context, it *domain.ExerciseItem) (int64, error)
	GetExerciseItems(ctx context.Context, term string, limit int) ([]*domain.ExerciseItem, error)
	UpdateExerciseItem(ctx context.Context, id int64, patch domain.LibraryPatch) error
	DeleteExerciseItem(ctx context.Context, id int64) error
}

// Structured is the subset of store.Structured the tracker uses.
type Structured interface {
	entryRepository
	photoRepository
	libraryRepository
	Close() error
}

// Opener opens the structured store. It is called once per Open.
type Opener func(ctx context.Context) (Structured, error)

// FlatStore is the subset of flat.Store the tracker uses.
type FlatStore interface {
	Entries(ctx context.Context) map[domain.DateKey][]*domain.Entry
	SaveEntries(ctx context.Context, entries map[domain.DateKey][]*domain.Entry) error
	ClearEntries(ctx context.Context) error
	Settings(ctx context.Context) domain.Settings
	SaveSettings(ctx context.Context, s domain.Settings) error
}

type Option func(*Tracker)

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

func WithAlerter(a Alerter) Option {
	return func(t *Tracker) { t.alerter = a }
}

// WithLocation sets the time zone whose midnight defines a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.loc = loc }
}

func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// Tracker is the cache and CRUD façade every UI surface reads and writes
// through. The cache is updated before the durable write so readers see new
// data immediately; WriteState records whether that write succeeded.
type Tracker struct {
	open    Opener
	flat    FlatStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	alerter Alerter
	loc     *time.Location
	newID   func() string

	// opMu serializes storage operations; mu guards the fields below it.
	opMu       sync.Mutex
	mu         sync.RWMutex
	structured Structured
	backend    Backend
	cache      map[domain.DateKey][]*domain.Entry
	states     map[string]WriteState

	initialized atomic.Bool
	failures    chan Failure
}

func New(open Opener, flat FlatStore, logger *slog.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		open:     open,
		flat:     flat,
		logger:   logger,
		loc:      time.Local,
		newID:    uuid.NewString,
		cache:    make(map[domain.DateKey][]*domain.Entry),
		states:   make(map[string]WriteState),
		failures: make(chan Failure, 32),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.alerter == nil {
		t.alerter = AlertFunc(func(ctx context.Context, message string) {
			logger.ErrorContext(ctx, "alert", "message", message)
		})
	}
	return t
}

// Open runs the startup sequence: open the structured store, promote any
// flat store data into it, then load entries and photos into the cache. If
// any step fails the tracker loads the flat store instead and stays in flat
// mode for the rest of the session. Open returns the selected backend.
func (t *Tracker) Open(ctx context.Context) Backend {
	t.opMu.Lock()
	defer t.opMu.Unlock()

	if t.initialized.Load() {
		return t.Backend()
	}

	structured, cache, err := t.loadStructured(ctx)
	backend := BackendStructured
	if err != nil {
		t.logger.Warn("structured store unavailable, using flat store", "error", err)
		cache = t.loadFlat(ctx)
		backend = BackendFlat
	}

	states := make(map[string]WriteState)
	for _, bucket := range cache {
		for _, e := range bucket {
			states[e.ID] = WriteState{Status: StatusConfirmed, Backend: backend}
		}
	}

	t.mu.Lock()
	t.structured = structured
	t.backend = backend
	t.cache = cache
	t.states = states
	t.mu.Unlock()

	t.metrics.SetDegraded(backend == BackendFlat)
	t.initialized.Store(true)
	t.logger.Info("tracker opened", "backend", backend.String(), "days", len(cache))
	return backend
}

func (t *Tracker) loadStructured(ctx context.Context) (Structured, map[domain.DateKey][]*domain.Entry, error) {
	if t.open == nil {
		return nil, nil, domain.ErrStoreUnavailable
	}
	s, err := t.open(ctx)
	if err != nil {
		return nil, nil, err
	}

	if migrated, err := MigrateFlat(ctx, t.flat, s, t.loc, t.newID); err != nil {
		t.logger.Error("flat store migration failed", "error", err)
	} else if migrated {
		t.logger.Info("migrated flat store entries into structured store")
	}

	entries, err := s.GetAllUserEntries(ctx)
	if err != nil {
		t.closeStructured(s)
		return nil, nil, fmt.Errorf("%w: failed to load entries: %v", domain.ErrStoreUnavailable, err)
	}
	photos, err := s.GetAllPhotoEntries(ctx)
	if err != nil {
		t.closeStructured(s)
		return nil, nil, fmt.Errorf("%w: failed to load photos: %v", domain.ErrStoreUnavailable, err)
	}

	byEntry := make(map[string]*domain.PhotoRecord, len(photos))
	for _, p := range photos {
		byEntry[p.EntryID] = p
	}

	cache := make(map[domain.DateKey][]*domain.Entry)
	for _, e := range entries {
		if p, ok := byEntry[e.ID]; ok {
			photo := p.Photo
			e.Photo = &photo
		}
		e.Date = domain.NormalizeDate(e.Date, t.loc)
		key := domain.KeyFor(e.Date, t.loc)
		cache[key] = append(cache[key], e)
	}
	return s, cache, nil
}

// loadFlat reads the flat blob into a cache. Ids assigned to entries that
// had none are written back so later updates and deletes can find them.
func (t *Tracker) loadFlat(ctx context.Context) map[domain.DateKey][]*domain.Entry {
	cache := make(map[domain.DateKey][]*domain.Entry)
	blob := t.flat.Entries(ctx)
	assigned := false

	for _, key := range sortedKeys(blob) {
		for _, e := range blob[key] {
			if e == nil {
				continue
			}
			if e.ID == "" {
				e.ID = t.newID()
				assigned = true
			}
			if e.Date.IsZero() {
				d, err := domain.ParseDay(string(key), t.loc)
				if err != nil {
					t.logger.Warn("dropping flat entry without a usable date", "key", key, "id", e.ID)
					continue
				}
				e.Date = d
			}
			e.Date = domain.NormalizeDate(e.Date, t.loc)
			k := domain.KeyFor(e.Date, t.loc)
			cache[k] = append(cache[k], e)
		}
	}

	if assigned {
		if err := t.flat.SaveEntries(ctx, cache); err != nil {
			t.logger.Error("failed to persist assigned entry ids to flat store", "error", err)
		}
	}
	return cache
}

func (t *Tracker) closeStructured(s Structured) {
	if err := s.Close(); err != nil {
		t.logger.Error("failed to close structured store", "error", err)
	}
}

// Close releases the structured store. The tracker must be reopened before
// further use.
func (t *Tracker) Close() error {
	t.opMu.Lock()
	defer t.opMu.Unlock()

	t.initialized.Store(false)

	t.mu.Lock()
	s := t.structured
	t.structured = nil
	t.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Close()
}

// Initialized reports whether Open has completed.
func (t *Tracker) Initialized() bool {
	return t.initialized.Load()
}

func (t *Tracker) Backend() Backend {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.backend
}

// Location is the time zone that defines calendar days.
func (t *Tracker) Location() *time.Location {
	return t.loc
}

// Failures delivers update and delete failures that reached every store.
func (t *Tracker) Failures() <-chan Failure {
	return t.failures
}

// Entries returns a deep copy of the cache.
func (t *Tracker) Entries() map[domain.DateKey][]*domain.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[domain.DateKey][]*domain.Entry, len(t.cache))
	for k, bucket := range t.cache {
		out[k] = cloneAll(bucket)
	}
	return out
}

// EntriesOn returns a copy of the bucket for date's calendar day, in the
// order entries were added.
func (t *Tracker) EntriesOn(date time.Time) []*domain.Entry {
	key := domain.KeyFor(date, t.loc)

	t.mu.RLock()
	defer t.mu.RUnlock()
	return cloneAll(t.cache[key])
}

// State reports the durability of the entry with id.
func (t *Tracker) State(id string) (WriteState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.states[id]
	return s, ok
}

func (t *Tracker) report(f Failure) {
	t.logger.Error("entry write failed on every store", "op", f.Op, "entry_id", f.EntryID, "error", f.Err)
	select {
	case t.failures <- f:
	default:
		t.logger.Warn("failure channel full, dropping failure", "op", f.Op, "entry_id", f.EntryID)
	}
}

func cloneAll(entries []*domain.Entry) []*domain.Entry {
	if entries == nil {
		return nil
	}
	out := make([]*domain.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

func sortedKeys(m map[domain.DateKey][]*domain.Entry) []domain.DateKey {
	keys := make([]domain.DateKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
