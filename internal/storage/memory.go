package storage

import (
	"context"
	"sort"
	"sync"

	"liquidityEngine/internal/model"
)

// MemoryStore keeps pool snapshots in process memory. It backs tests and the
// CLI when no database DSN is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	pools map[string]model.PoolState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pools: make(map[string]model.PoolState)}
}

// SavePool stores the snapshot under its pool id.
func (s *MemoryStore) SavePool(_ context.Context, state model.PoolState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[state.PoolID] = state
	return nil
}

// LoadPool returns the stored snapshot for a pool id, if any.
func (s *MemoryStore) LoadPool(_ context.Context, poolID string) (model.PoolState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.pools[poolID]
	return state, ok, nil
}

// ListPools returns all stored pool ids in lexical order.
func (s *MemoryStore) ListPools(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.pools))
	for id := range s.pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
