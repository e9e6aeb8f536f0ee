package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/loom"
	"github.com/aretw0/loom/internal/logging"
	"github.com/aretw0/loom/pkg/domain"
	"github.com/aretw0/loom/pkg/value"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxLiteralSize bounds PUT bodies.
const maxLiteralSize = 1 << 20

// Engine defines the interface of the Loom engine served over HTTP.
type Engine interface {
	Inspect() []domain.NodeInfo
	Get(ctx context.Context, path string) (domain.AttributeInfo, error)
	Set(ctx context.Context, path, literal string) error
	Evaluate(ctx context.Context) (map[string]string, error)
	Step(ctx context.Context, sessionID string) (*loom.StepResult, error)
	Reset(ctx context.Context, sessionID string) error
	Mermaid() string
	Watch(ctx context.Context) (<-chan string, error)
}

// Server serves an Engine.
type Server struct {
	Engine   Engine
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithGatherer exposes g on /metrics. Defaults to prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		gatherer: prometheus.DefaultGatherer,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/nodes", s.GetNodes)
	r.Get("/attributes/{path}", s.GetAttribute)
	r.Put("/attributes/{path}", s.PutAttribute)
	r.Post("/evaluate", s.PostEvaluate)
	r.Post("/sessions/{id}/step", s.PostStep)
	r.Delete("/sessions/{id}", s.DeleteSession)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"app":     "loom-http",
		"version": strings.TrimSpace(loom.Version),
	})
}

// GetNodes handles the GET /nodes request.
func (s *Server) GetNodes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Engine.Inspect())
}

// GetAttribute handles the GET /attributes/{path} request. The attribute
// is evaluated first when dirty.
func (s *Server) GetAttribute(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	info, err := s.Engine.Get(r.Context(), path)
	if err != nil {
		s.fail(w, "GetAttribute", err)
		return
	}
	s.writeJSON(w, info)
}

// PutAttribute handles the PUT /attributes/{path} request. The body is a
// value literal such as "[1.5] 3".
func (s *Server) PutAttribute(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxLiteralSize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PutAttribute: Invalid request body", "error", err)
		return
	}
	if err := s.Engine.Set(r.Context(), path, strings.TrimSpace(string(body))); err != nil {
		s.fail(w, "PutAttribute", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostEvaluate handles the POST /evaluate request.
func (s *Server) PostEvaluate(w http.ResponseWriter, r *http.Request) {
	values, err := s.Engine.Evaluate(r.Context())
	if err != nil {
		s.fail(w, "Evaluate", err)
		return
	}
	s.writeJSON(w, values)
}

// PostStep handles the POST /sessions/{id}/step request.
func (s *Server) PostStep(w http.ResponseWriter, r *http.Request) {
	res, err := s.Engine.Step(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "Step", err)
		return
	}
	s.writeJSON(w, res)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Reset(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles the GET /graph request with a Mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, s.Engine.Mermaid())
}

// SubscribeEvents handles the GET /events request (SSE). Every message
// lists the dirty outputs after an edit.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}
	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: dirty\ndata: %s\n\n", event)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Debug(op+" rejected", "error", err)
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidConnection), errors.Is(err, domain.ErrIncompatible):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStaleHandle):
		return http.StatusGone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, value.ErrInvalidLiteral):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
