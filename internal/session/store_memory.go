package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps session state in process memory. Used in tests and
// when no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sessionID]
	if !ok {
		return State{SessionID: sessionID}, nil
	}
	return state, nil
}

func (s *MemoryStore) Save(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state.UpdatedAt = time.Now().UTC()
	s.states[state.SessionID] = state
	return nil
}
