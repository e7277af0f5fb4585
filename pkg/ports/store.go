package ports

import (
	"context"

	"github.com/aretw0/rewind/pkg/domain"
)

// SessionStore defines the interface for persisting session histories.
// This allows undo/redo history to survive restarts and be shared by replicas.
type SessionStore interface {
	// Save persists the session under the given ID.
	Save(ctx context.Context, sessionID string, session *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
