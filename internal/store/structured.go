package store

import (
	"database/sql"
	"time"
)

// Structured is the primary indexed store: entries, the photo side-table and
// the food/exercise library over one database connection.
type Structured struct {
	*EntryStore
	*PhotoStore
	*LibraryStore
	db *sql.DB
}

func NewStructured(db *sql.DB) *Structured {
	return &Structured{
		EntryStore:   NewEntryStore(db),
		PhotoStore:   NewPhotoStore(db),
		LibraryStore: NewLibraryStore(db),
		db:           db,
	}
}

// WithClock overrides the time source used for last_used and updated_at stamps.
func (s *Structured) WithClock(now func() time.Time) *Structured {
	s.EntryStore.now = now
	s.LibraryStore.now = now
	return s
}

func (s *Structured) Close() error {
	return s.db.Close()
}
