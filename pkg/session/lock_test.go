package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/rewind/pkg/domain"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, sessionID string, sess *domain.Session) error { return nil }
func (nopStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()

	for i := range 10000 {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Save(ctx, sid, &domain.Session{ID: sid})
		_ = mgr.Delete(ctx, sid)
	}

	assert.Empty(t, mgr.locks, "lock entries must be released once unused")
}
