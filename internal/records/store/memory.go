package store

import (
	"context"
	"fmt"
	"sync"

	"ansdns/internal/records/models"
	"ansdns/pkg/platform/sentinel"
)

// MemoryStore keeps the encoded state in process memory. Holding the
// encoding rather than the struct keeps callers from sharing slices with the
// stored copy.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore constructs an empty in-memory state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*models.ContractState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, fmt.Errorf("load state: %w", sentinel.ErrNotFound)
	}
	return decode(s.data)
}

func (s *MemoryStore) Save(_ context.Context, state *models.ContractState) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

func (s *MemoryStore) Update(_ context.Context, fn func(*models.ContractState) (*models.ContractState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return fmt.Errorf("update state: %w", sentinel.ErrNotFound)
	}
	current, err := decode(s.data)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	data, err := encode(next)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}
