package ports

import (
	"context"

	"github.com/aretw0/rewind/pkg/domain"
)

// HistoryService defines the operations transports expose over sessions.
// Every call is serialised per session by the implementation.
type HistoryService interface {
	// Open returns the view of a session, creating it with initial when missing.
	Open(ctx context.Context, sessionID string, initial domain.Document) (domain.View, error)

	// Dispatch applies an action (including undo and redo) to a session.
	Dispatch(ctx context.Context, sessionID string, action domain.Action) (domain.View, error)

	// View returns the current view of an existing session.
	View(ctx context.Context, sessionID string) (domain.View, error)

	// Timeline returns the full persisted session.
	Timeline(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all sessions.
	List(ctx context.Context) ([]string, error)
}
