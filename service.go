package rewind

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/ports"
	"github.com/aretw0/rewind/pkg/session"
)

// Service exposes an Engine over persisted sessions.
// Each operation loads, steps and saves a session under the Manager's lock.
type Service struct {
	engine   *Engine
	sessions *session.Manager
	logger   *slog.Logger
}

var _ ports.HistoryService = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used for service-level events.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService wires an Engine to a session Manager.
func NewService(engine *Engine, sessions *session.Manager, opts ...ServiceOption) *Service {
	s := &Service{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the engine driving the service.
func (s *Service) Engine() *Engine {
	return s.engine
}

// Open returns the view of a session, creating it when missing.
// An empty ID allocates a fresh random one.
func (s *Service) Open(ctx context.Context, sessionID string, initial domain.Document) (domain.View, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	seed := s.engine.Seed(initial)
	if err := s.engine.Validate(seed); err != nil {
		return domain.View{}, err
	}

	sess, created, err := s.sessions.LoadOrStart(ctx, sessionID, seed)
	if err != nil {
		return domain.View{}, err
	}
	if created {
		s.logger.InfoContext(ctx, "session created", "session_id", sessionID)
	}
	return s.engine.View(sess), nil
}

// Dispatch applies an action to an existing session and persists the result.
// No-op undo and redo are not written back.
func (s *Service) Dispatch(ctx context.Context, sessionID string, action domain.Action) (domain.View, error) {
	var view domain.View
	err := s.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		store := s.sessions.Store()

		sess, err := store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		next, moved, err := s.engine.dispatch(ctx, sess, action)
		if err != nil {
			return err
		}

		if moved {
			if err := store.Save(ctx, sessionID, next); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
		}
		view = s.engine.View(next)
		return nil
	})
	return view, err
}

// View returns the current view of an existing session.
func (s *Service) View(ctx context.Context, sessionID string) (domain.View, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return s.engine.View(sess), nil
}

// Timeline returns the full persisted session.
func (s *Service) Timeline(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.sessions.Load(ctx, sessionID)
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "session deleted", "session_id", sessionID)
	return nil
}

// List returns the IDs of all sessions.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.sessions.List(ctx)
}
