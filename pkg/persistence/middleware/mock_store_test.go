package middleware_test

import (
	"context"
	"sync"

	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
// It keeps the pointers it is given so tests can inspect exactly what was written.
type MockStore struct {
	mu   sync.Mutex
	data map[string]*domain.Session
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Session),
	}
}

func (s *MockStore) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = session
	return nil
}

func (s *MockStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *MockStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.SessionStore = (*MockStore)(nil)
