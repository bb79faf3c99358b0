package sessions

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// MemoryStore is an in-memory session store for tests and single-node runs.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	byUser   map[string]map[string]struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memorySession),
		byUser:   make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) Save(_ context.Context, tokenHash, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[tokenHash] = memorySession{userID: userID, expiresAt: time.Now().Add(ttl)}
	if s.byUser[userID] == nil {
		s.byUser[userID] = make(map[string]struct{})
	}
	s.byUser[userID][tokenHash] = struct{}{}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, tokenHash string) (string, error) {
	s.mu.RLock()
	session, ok := s.sessions[tokenHash]
	s.mu.RUnlock()

	if !ok {
		return "", ErrNotFound
	}
	if time.Now().After(session.expiresAt) {
		s.mu.Lock()
		s.removeLocked(tokenHash)
		s.mu.Unlock()
		return "", ErrNotFound
	}
	return session.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(tokenHash)
	return nil
}

func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tokenHash := range s.byUser[userID] {
		delete(s.sessions, tokenHash)
	}
	delete(s.byUser, userID)
	return nil
}

func (s *MemoryStore) removeLocked(tokenHash string) {
	session, ok := s.sessions[tokenHash]
	if !ok {
		return
	}
	delete(s.sessions, tokenHash)
	if hashes := s.byUser[session.userID]; hashes != nil {
		delete(hashes, tokenHash)
		if len(hashes) == 0 {
			delete(s.byUser, session.userID)
		}
	}
}
