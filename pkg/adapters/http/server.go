package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/ports"
)

// maxBodyBytes caps request bodies; documents are small JSON objects.
const maxBodyBytes = 1 << 20

// Server exposes a HistoryService over HTTP.
type Server struct {
	Service ports.HistoryService
	Streams *StreamManager

	metrics     http.Handler
	corsOrigins []string
	logger      *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for request failures and stream events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithCORSOrigins restricts the allowed origins. "*" allows any.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithStreams shares a StreamManager, e.g. with another transport.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewServer creates a Server for the service.
func NewServer(svc ports.HistoryService, opts ...Option) *Server {
	s := &Server{
		Service:     svc,
		corsOrigins: []string{"*"},
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(svc ports.HistoryService, opts ...Option) http.Handler {
	return NewServer(svc, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/timeline", s.GetTimeline)
			r.Post("/dispatch", s.Dispatch)
			r.Post("/undo", s.control(domain.ActionUndo))
			r.Post("/redo", s.control(domain.ActionRedo))
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case slices.Contains(s.corsOrigins, "*"):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.corsOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateSessionRequest is the body of POST /sessions. Both fields are optional.
type CreateSessionRequest struct {
	ID      string          `json:"id,omitempty"`
	Initial domain.Document `json:"initial,omitempty"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "rewind-http",
		"version": strings.TrimSpace(rewind.Version),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.List(r.Context())
	if err != nil {
		s.writeError(w, "ListSessions", err)
		return
	}
	slices.Sort(ids)
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles POST /sessions. An existing session is returned as is.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if err := decodeBody(w, r, &body); err != nil && !errors.Is(err, io.EOF) {
		s.badRequest(w, "CreateSession", err)
		return
	}

	view, err := s.Service.Open(r.Context(), body.ID, body.Initial)
	if err != nil {
		s.writeError(w, "CreateSession", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Service.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// GetTimeline handles GET /sessions/{id}/timeline.
func (s *Server) GetTimeline(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Service.Timeline(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetTimeline", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dispatch handles POST /sessions/{id}/dispatch.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var action domain.Action
	if err := decodeBody(w, r, &action); err != nil {
		s.badRequest(w, "Dispatch", err)
		return
	}
	s.dispatch(w, r, action)
}

func (s *Server) control(actionType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.dispatch(w, r, domain.NewAction(actionType, nil))
	}
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, action domain.Action) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "id")

	before, err := s.Service.View(ctx, sessionID)
	if err != nil {
		s.writeError(w, "Dispatch", err)
		return
	}

	after, err := s.Service.Dispatch(ctx, sessionID, action)
	if err != nil {
		s.writeError(w, "Dispatch", err)
		return
	}

	// Concurrent writers may interleave between the two reads; the diff is a
	// hint and clients resync with GET /sessions/{id}.
	if diff := domain.Diff(&before, &after); diff != nil {
		if data, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(sessionID, string(data))
		}
	}

	s.writeJSON(w, http.StatusOK, after)
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// The optional "watch" query keeps only diffs touching the listed slices, or
// "history" for cursor and length changes.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "id")
	view, err := s.Service.View(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, "SubscribeEvents", err)
		return
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if initial, err := json.Marshal(domain.Diff(nil, &view)); err == nil {
		fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", initial)
	}
	flusher.Flush()

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		for _, field := range strings.Split(watch, ",") {
			if field = strings.TrimSpace(field); field != "" {
				watchList = append(watchList, field)
			}
		}
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !matchesWatch(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func matchesWatch(msg string, watchList []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		if field == "history" {
			if diff.Cursor != nil || diff.Length != nil {
				return true
			}
			continue
		}
		if _, ok := diff.Slices[field]; ok {
			return true
		}
	}
	return false
}

// -- Helpers --

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(out)
}

func (s *Server) badRequest(w http.ResponseWriter, op string, err error) {
	s.logger.Warn(op+": Invalid request body", "err", err)
	http.Error(w, "Invalid request body", http.StatusBadRequest)
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAction), errors.Is(err, domain.ErrEmptySessionID):
		status = http.StatusBadRequest
	default:
		s.logger.Error(op+" failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
