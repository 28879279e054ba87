package uploads

import (
	"context"
	"sync"
)

// MemoryRepository keeps uploads in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	uploads map[string]Upload
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{uploads: make(map[string]Upload)}
}

func (r *MemoryRepository) Create(_ context.Context, u Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads[u.ID] = u
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.uploads[id]
	if !ok {
		return Upload{}, ErrNotFound
	}
	return u, nil
}
