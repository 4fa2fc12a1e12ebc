package store

import (
	"context"
	"sync"

	"github.com/lox/holdem/internal/game"
)

// MemoryStore keeps a deep copy of the last saved game in memory
type MemoryStore struct {
	mu    sync.Mutex
	saved *game.HandState
	saves int
	fail  error
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*game.HandState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return nil, ErrNotFound
	}
	return s.saved.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, h *game.HandState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return &Error{Op: "save", Err: s.fail, retryable: true}
	}
	s.saved = h.Clone()
	s.saves++
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = nil
	return nil
}

// Saves returns how many saves have succeeded
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// SetFailure makes subsequent saves fail with err, or succeed again when nil
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}
