package generations

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps generations in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Generation
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Generation)}
}

func (r *MemoryRepository) Create(_ context.Context, g Generation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[g.ID] = g
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (Generation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.records[id]
	if !ok {
		return Generation{}, ErrNotFound
	}
	return g, nil
}

func (r *MemoryRepository) ListBySession(_ context.Context, sessionID string, limit int) ([]Generation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Generation
	for _, g := range r.records {
		if g.SessionID == sessionID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count reports how many records exist. Test helper.
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
