package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/niksmo/onboarding/internal/core/domain"
	"github.com/niksmo/onboarding/internal/core/port"
)

var _ port.DraftStorage = (*MemoryStorage)(nil)

// MemoryStorage keeps the draft in process memory. Used by tests and
// by the wizard when nothing should survive a restart.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, domain.ErrDraftNotFound
	}
	return slices.Clone(s.data), nil
}

func (s *MemoryStorage) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = slices.Clone(data)
	if s.data == nil {
		s.data = []byte{}
	}
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return domain.ErrDraftNotFound
	}
	s.data = nil
	return nil
}
