package session

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/trip-expenses/internal/application/port"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

// MemoryStore keeps sessions in process memory. Idle sessions are removed by the sweeper.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*entity.ChatSession
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*entity.ChatSession)}
}

// Get returns a copy of the stored session
func (s *MemoryStore) Get(ctx context.Context, id string) (*entity.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return clone(session), nil
}

// Save stores a copy of session
func (s *MemoryStore) Save(ctx context.Context, session *entity.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = clone(session)
	return nil
}

// Delete removes a session; unknown IDs are ignored
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// ListIdle returns IDs of sessions last updated before the given time
func (s *MemoryStore) ListIdle(ctx context.Context, before time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(before) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Len returns the number of stored sessions
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func clone(session *entity.ChatSession) *entity.ChatSession {
	c := *session
	c.Draft = *session.Draft.Clone()
	c.Transcript = make(entity.Transcript, len(session.Transcript))
	for i, msg := range session.Transcript {
		msg.Draft = msg.Draft.Clone()
		c.Transcript[i] = msg
	}
	return &c
}

var _ port.SessionStore = (*MemoryStore)(nil)
