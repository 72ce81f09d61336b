package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vbonduro/healthlog/internal/tracker"
)

type Server struct {
	tracker      *tracker.Tracker
	metrics      http.Handler
	libraryLimit int
	mux          *http.ServeMux
	logger       *slog.Logger
	srv          *http.Server
}

// NewServer exposes tr over a JSON API. metrics serves /metrics; nil uses
// the default prometheus registry. libraryLimit caps autocomplete results
// when the request does not set one.
func NewServer(tr *tracker.Tracker, metrics http.Handler, libraryLimit int, logger *slog.Logger) *Server {
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	s := &Server{
		tracker:      tr,
		metrics:      metrics,
		libraryLimit: libraryLimit,
		mux:          http.NewServeMux(),
		logger:       logger,
	}
	s.srv = &http.Server{
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /status", s.handleStatus)

	s.mux.HandleFunc("GET /entries", s.handleListEntries)
	s.mux.HandleFunc("POST /entries", s.handleCreateEntry)
	s.mux.HandleFunc("PUT /entries/{id}", s.handleUpdateEntry)
	s.mux.HandleFunc("DELETE /entries/{id}", s.handleDeleteEntry)
	s.mux.HandleFunc("GET /entries/{id}/state", s.handleEntryState)

	s.mux.HandleFunc("GET /library/{kind}", s.handleListLibrary)
	s.mux.HandleFunc("POST /library/{kind}", s.handleCreateLibraryItem)
	s.mux.HandleFunc("PATCH /library/{kind}/{id}", s.handleUpdateLibraryItem)
	s.mux.HandleFunc("DELETE /library/{kind}/{id}", s.handleDeleteLibraryItem)

	s.mux.HandleFunc("GET /measurements/{type}", s.handleMeasurementHistory)

	s.mux.HandleFunc("GET /settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /settings", s.handleSaveSettings)

	s.mux.Handle("GET /metrics", s.metrics)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe blocks until the server stops. It returns nil after
// Shutdown, including a Shutdown that happened before it was called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.logger.Info("starting server", "addr", ln.Addr().String(), "backend", s.tracker.Backend().String())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
