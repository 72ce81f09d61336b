package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vbonduro/healthlog/internal/domain"
	"github.com/vbonduro/healthlog/internal/tracker"
)

type stateResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

type createEntryFailure struct {
	Error string        `json:"error"`
	Entry *domain.Entry `json:"entry"`
}

func newStateResponse(id string, st tracker.WriteState) stateResponse {
	return stateResponse{ID: id, Status: st.Status.String(), Backend: st.Backend.String()}
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		s.writeJSON(w, http.StatusOK, s.tracker.Entries())
		return
	}

	day, err := domain.ParseDay(date, s.tracker.Location())
	if err != nil {
		s.writeError(w, err)
		return
	}
	entries := s.tracker.EntriesOn(day)
	if entries == nil {
		entries = []*domain.Entry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// readEntry decodes and validates an entry body, including its photo.
func readEntry(w http.ResponseWriter, r *http.Request) (*domain.Entry, error) {
	var e domain.Entry
	if err := decodeBody(w, r, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := checkPhoto(e.Photo); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	e, err := readEntry(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	saved, err := s.tracker.AddEntry(r.Context(), e)
	if err != nil {
		if errors.Is(err, domain.ErrWriteFailed) {
			s.writeJSON(w, http.StatusServiceUnavailable, createEntryFailure{
				Error: fmt.Sprintf("%q was not saved and will be lost when the app closes", e.Name),
				Entry: saved,
			})
			return
		}
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	e, err := readEntry(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := r.PathValue("id")
	if e.ID != "" && e.ID != id {
		s.writeError(w, fmt.Errorf("%w: body id %q does not match path id %q", domain.ErrValidation, e.ID, id))
		return
	}
	e.ID = id

	if err := s.tracker.UpdateEntry(r.Context(), e); err != nil {
		s.writeError(w, err)
		return
	}
	st, _ := s.tracker.State(id)
	s.writeJSON(w, http.StatusOK, newStateResponse(id, st))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		s.writeError(w, fmt.Errorf("%w: date query parameter is required", domain.ErrValidation))
		return
	}
	day, err := domain.ParseDay(date, s.tracker.Location())
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.tracker.DeleteEntry(r.Context(), r.PathValue("id"), day); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEntryState(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, ok := s.tracker.State(id)
	if !ok {
		s.writeError(w, fmt.Errorf("%w: entry %s", domain.ErrNotFound, id))
		return
	}
	s.writeJSON(w, http.StatusOK, newStateResponse(id, st))
}
