package store

import (
	"context"
	"sync"

	"basegraph.app/scout/internal/model"
)

// MemoryTurnStore keeps turns in process memory. It backs the server when no
// database is configured, and tests.
type MemoryTurnStore struct {
	sessions map[string][]model.Turn
	mu       sync.RWMutex
}

func NewMemoryTurnStore() *MemoryTurnStore {
	return &MemoryTurnStore{sessions: make(map[string][]model.Turn)}
}

func (s *MemoryTurnStore) ListRecent(_ context.Context, sessionID string, limit int) ([]model.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.sessions[sessionID]
	if limit <= 0 || limit > len(stored) {
		limit = len(stored)
	}

	out := make([]model.Turn, 0, limit)
	for i := len(stored) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

func (s *MemoryTurnStore) Append(_ context.Context, turns ...*model.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range turns {
		fillTurn(t)
		s.sessions[t.SessionID] = append(s.sessions[t.SessionID], *t)
	}
	return nil
}
