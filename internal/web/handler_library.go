package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/vbonduro/healthlog/internal/domain"
)

const maxLibraryLimit = 200

type createdResponse struct {
	ID int64 `json:"id"`
}

func parseKind(r *http.Request) (domain.LibraryKind, error) {
	kind := domain.LibraryKind(r.PathValue("kind"))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown library kind %q", domain.ErrValidation, kind)
	}
	return kind, nil
}

func (s *Server) parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return s.libraryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLibraryLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxLibraryLimit)
	}
	return limit, nil
}

func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	limit, err := s.parseLimit(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	term := r.URL.Query().Get("q")

	if kind == domain.LibraryFood {
		items, err := s.tracker.GetFoodItems(r.Context(), term, limit)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if items == nil {
			items = []*domain.FoodItem{}
		}
		s.writeJSON(w, http.StatusOK, items)
		return
	}

	items, err := s.tracker.GetExerciseItems(r.Context(), term, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if items == nil {
		items = []*domain.ExerciseItem{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateLibraryItem(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var id int64
	if kind == domain.LibraryFood {
		var it domain.FoodItem
		if err := decodeBody(w, r, &it); err != nil {
			s.writeError(w, err)
			return
		}
		id, err = s.tracker.AddFoodItem(r.Context(), &it)
	} else {
		var it domain.ExerciseItem
		if err := decodeBody(w, r, &it); err != nil {
			s.writeError(w, err)
			return
		}
		id, err = s.tracker.AddExerciseItem(r.Context(), &it)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleUpdateLibraryItem(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var patch domain.LibraryPatch
	if err := decodeBody(w, r, &patch); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.tracker.UpdateItem(r.Context(), kind, id, patch); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteLibraryItem(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.tracker.DeleteItem(r.Context(), kind, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMeasurementHistory(w http.ResponseWriter, r *http.Request) {
	points, err := s.tracker.MeasurementHistory(r.Context(), r.PathValue("type"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if points == nil {
		points = []domain.MeasurementPoint{}
	}
	s.writeJSON(w, http.StatusOK, points)
}
