package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/lpm"
	"github.com/aretw0/lpm/internal/emitter"
	"github.com/aretw0/lpm/internal/logging"
	"github.com/aretw0/lpm/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIVersion is the version of the JSON contract served by this package.
const APIVersion = "1"

// Declarer emits path and region artifacts.
type Declarer interface {
	DeclarePath(ctx context.Context, bits, name, cacheID string) (*emitter.PathResult, error)
	DeclareBetween(ctx context.Context, lowerBits, upperBits, lowerName, upperName string) (*emitter.BetweenResult, error)
	PathData(bits string) (*lpm.PathData, error)
}

// Server serves the declaration API.
type Server struct {
	Declarer Declarer
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer selects the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// PathRequest is the body of POST /paths.
type PathRequest struct {
	Bits    string `json:"bits"`
	Name    string `json:"name"`
	CacheID string `json:"cache_id,omitempty"`
}

// PathResponse describes a declared path.
type PathResponse struct {
	Safe     string `json:"safe"`
	Key      string `json:"key"`
	TeXFile  string `json:"tex_file"`
	JSONFile string `json:"json_file"`
	Warning  string `json:"warning,omitempty"`
	Macros   string `json:"macros"`
}

// BetweenRequest is the body of POST /between.
type BetweenRequest struct {
	L     string `json:"L"`
	U     string `json:"U"`
	LName string `json:"lname,omitempty"`
	UName string `json:"uname,omitempty"`
}

// BetweenResponse describes a declared region.
type BetweenResponse struct {
	Lower   string         `json:"lower"`
	Upper   string         `json:"upper"`
	Key     string         `json:"key"`
	TeXFile string         `json:"tex_file"`
	Polygon domain.Polygon `json:"polygon"`
	Macros  string         `json:"macros"`
}

// PathDataRequest is the body of POST /path-data.
type PathDataRequest struct {
	Bits string `json:"bits"`
}

// NewHandler creates the HTTP handler for the declaration API.
func NewHandler(d Declarer, opts ...Option) http.Handler {
	s := &Server{
		Declarer: d,
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Post("/paths", s.DeclarePath)
	r.Post("/between", s.DeclareBetween)
	r.Post("/path-data", s.PathData)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":            "lpm-http",
		"version":        lpm.Version,
		"api_version":    APIVersion,
		"format_version": emitter.FormatVersion,
	})
}

// DeclarePath handles POST /paths.
func (s *Server) DeclarePath(w http.ResponseWriter, r *http.Request) {
	var body PathRequest
	if !s.decode(w, r, &body) {
		return
	}

	res, err := s.Declarer.DeclarePath(r.Context(), body.Bits, body.Name, body.CacheID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PathResponse{
		Safe:     res.Safe,
		Key:      res.Key,
		TeXFile:  res.TeXFile,
		JSONFile: res.JSONFile,
		Warning:  res.Warning,
		Macros:   res.Macros(),
	})
}

// DeclareBetween handles POST /between.
func (s *Server) DeclareBetween(w http.ResponseWriter, r *http.Request) {
	var body BetweenRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.LName == "" {
		body.LName = "L"
	}
	if body.UName == "" {
		body.UName = "U"
	}

	res, err := s.Declarer.DeclareBetween(r.Context(), body.L, body.U, body.LName, body.UName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, BetweenResponse{
		Lower:   res.Lower,
		Upper:   res.Upper,
		Key:     res.Key,
		TeXFile: res.TeXFile,
		Polygon: res.Polygon,
		Macros:  res.Macros(),
	})
}

// PathData handles POST /path-data. Nothing is written.
func (s *Server) PathData(w http.ResponseWriter, r *http.Request) {
	var body PathDataRequest
	if !s.decode(w, r, &body) {
		return
	}
	data, err := s.Declarer.PathData(body.Bits)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCacheFence):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Declaration failed", "err", err)
	} else {
		s.logger.Warn("Declaration rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
