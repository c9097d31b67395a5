package chat

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"legalresearch-engine/models"
)

// MemoryStore is the CHAT_STORAGE=inmemory backend: sessions live only
// for the process lifetime, intended for local development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.ChatSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]*models.ChatSession)}
}

func (s *MemoryStore) Create(ctx context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}
