package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/vbonduro/healthlog/internal/domain"
)

// AddEntry validates e, stores a copy in the cache and persists it. The
// returned entry carries the assigned id and normalized date. An id that is
// already cached is rejected; use UpdateEntry to change an entry. A storage
// error is returned, and the alerter notified, only when no store accepted
// the write; the entry then stays in the cache with StatusFailed.
func (t *Tracker) AddEntry(ctx context.Context, e *domain.Entry) (*domain.Entry, error) {
	if !t.initialized.Load() {
		return nil, ErrNotOpen
	}
	if e == nil {
		return nil, fmt.Errorf("%w: entry is required", domain.ErrValidation)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	t.opMu.Lock()
	defer t.opMu.Unlock()

	entry := t.prepare(e)
	if entry.ID == "" {
		entry.ID = t.newID()
	}
	key := domain.KeyFor(entry.Date, t.loc)

	t.mu.Lock()
	if prev, _, _ := t.find(entry.ID); prev != nil {
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: entry %s already exists", domain.ErrValidation, entry.ID)
	}
	t.cache[key] = append(t.cache[key], entry.Clone())
	t.states[entry.ID] = WriteState{Status: StatusPending, Backend: t.backend}
	t.mu.Unlock()

	backend, err := t.policy().run(ctx, "add",
		func(ctx context.Context, s Structured) error {
			return saveStructured(ctx, s, entry)
		},
		func(ctx context.Context) error {
			return t.saveFlat(ctx, key, entry)
		},
	)
	t.settle(entry.ID, backend, err)

	if err != nil {
		t.logger.ErrorContext(ctx, "failed to persist new entry", "entry_id", entry.ID, "error", err)
		t.alerter.Alert(ctx, fmt.Sprintf("Could not save %q. It will be lost when the app closes.", entry.Name))
		return entry.Clone(), err
	}

	if backend == BackendStructured {
		t.remember(ctx, entry)
	}
	return entry.Clone(), nil
}

// UpdateEntry replaces the cached entry with the same id, moving it to a new
// day bucket when its date changed. Storage failures are reported on the
// Failures channel; the returned error covers only caller mistakes.
func (t *Tracker) UpdateEntry(ctx context.Context, e *domain.Entry) error {
	if !t.initialized.Load() {
		return ErrNotOpen
	}
	if e == nil || e.ID == "" {
		return fmt.Errorf("%w: entry id is required", domain.ErrValidation)
	}
	if err := e.Validate(); err != nil {
		return err
	}

	t.opMu.Lock()
	defer t.opMu.Unlock()

	entry := t.prepare(e)
	key := domain.KeyFor(entry.Date, t.loc)

	t.mu.Lock()
	prev, prevKey, idx := t.find(entry.ID)
	if prev == nil {
		t.mu.Unlock()
		return fmt.Errorf("%w: entry %s", domain.ErrNotFound, entry.ID)
	}
	if prevKey == key {
		t.cache[key][idx] = entry.Clone()
	} else {
		t.removeAt(prevKey, idx)
		t.cache[key] = append(t.cache[key], entry.Clone())
	}
	t.states[entry.ID] = WriteState{Status: StatusPending, Backend: t.backend}
	t.mu.Unlock()

	hadPhoto := prev.Photo != nil
	backend, err := t.policy().run(ctx, "update",
		func(ctx context.Context, s Structured) error {
			if err := saveStructured(ctx, s, entry); err != nil {
				return err
			}
			if entry.Photo == nil && hadPhoto {
				t.dropPhoto(ctx, s, entry.ID)
			}
			return nil
		},
		func(ctx context.Context) error {
			return t.saveFlat(ctx, key, entry)
		},
	)
	t.settle(entry.ID, backend, err)

	if err != nil {
		t.report(Failure{Op: "update", EntryID: entry.ID, Err: err})
	}
	return nil
}

// DeleteEntry removes the entry with id from date's bucket and from both
// stores. Deleting an entry that is not cached is not an error.
func (t *Tracker) DeleteEntry(ctx context.Context, id string, date time.Time) error {
	if !t.initialized.Load() {
		return ErrNotOpen
	}
	if id == "" {
		return fmt.Errorf("%w: entry id is required", domain.ErrValidation)
	}

	t.opMu.Lock()
	defer t.opMu.Unlock()

	key := domain.KeyFor(date, t.loc)

	t.mu.Lock()
	for i, c := range t.cache[key] {
		if c.ID == id {
			t.removeAt(key, i)
			break
		}
	}
	delete(t.states, id)
	t.mu.Unlock()

	_, err := t.policy().run(ctx, "delete",
		func(ctx context.Context, s Structured) error {
			if err := s.DeleteUserEntry(ctx, id); err != nil {
				return err
			}
			t.dropPhoto(ctx, s, id)
			return nil
		},
		func(ctx context.Context) error {
			return t.deleteFlat(ctx, id)
		},
	)
	if err != nil {
		t.mu.Lock()
		t.states[id] = WriteState{Status: StatusFailed, Backend: t.backend}
		t.mu.Unlock()
		t.report(Failure{Op: "delete", EntryID: id, Err: err})
	}
	return nil
}

// prepare copies e and fills derived fields: the normalized date, a sleep
// duration when none was given, and a photo's temporary id as the entry id.
func (t *Tracker) prepare(e *domain.Entry) *domain.Entry {
	c := e.Clone()
	if c.ID == "" && c.Photo != nil && c.Photo.TempID != "" {
		c.ID = c.Photo.TempID
	}
	c.Date = domain.NormalizeDate(c.Date, t.loc)
	if s, ok := c.Details.(*domain.Sleep); ok && s.Duration == "" {
		s.Duration = domain.SleepDuration(s.Bedtime, s.Waketime)
	}
	return c
}

// find must be called with mu held.
func (t *Tracker) find(id string) (*domain.Entry, domain.DateKey, int) {
	for key, bucket := range t.cache {
		for i, e := range bucket {
			if e.ID == id {
				return e, key, i
			}
		}
	}
	return nil, "", -1
}

// removeAt must be called with mu held. Empty buckets are dropped.
func (t *Tracker) removeAt(key domain.DateKey, i int) {
	bucket := t.cache[key]
	bucket = append(bucket[:i:i], bucket[i+1:]...)
	if len(bucket) == 0 {
		delete(t.cache, key)
		return
	}
	t.cache[key] = bucket
}

func (t *Tracker) settle(id string, backend Backend, err error) {
	state := WriteState{Status: StatusConfirmed, Backend: backend}
	if err != nil {
		state.Status = StatusFailed
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[id] = state
}

// saveFlat rewrites the flat blob with entry placed in key's bucket,
// replacing any earlier copy wherever it was filed.
func (t *Tracker) saveFlat(ctx context.Context, key domain.DateKey, entry *domain.Entry) error {
	blob := t.flat.Entries(ctx)
	removeByID(blob, entry.ID)
	blob[key] = append(blob[key], entry.Clone())
	return t.flat.SaveEntries(ctx, blob)
}

func (t *Tracker) deleteFlat(ctx context.Context, id string) error {
	blob := t.flat.Entries(ctx)
	removeByID(blob, id)
	return t.flat.SaveEntries(ctx, blob)
}

func removeByID(blob map[domain.DateKey][]*domain.Entry, id string) {
	for key, bucket := range blob {
		kept := bucket[:0]
		for _, e := range bucket {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(blob, key)
			continue
		}
		blob[key] = kept
	}
}
