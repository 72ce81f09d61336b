package web

import (
	"net/http"

	"github.com/vbonduro/healthlog/internal/domain"
)

type statusResponse struct {
	Initialized bool   `json:"initialized"`
	Backend     string `json:"backend"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{
		Initialized: s.tracker.Initialized(),
		Backend:     s.tracker.Backend().String(),
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tracker.Settings(r.Context()))
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := decodeBody(w, r, &settings); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.tracker.SaveSettings(r.Context(), settings); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}
