package session

import (
	"context"
	"sync"

	"slowteabar/m/domain"
)

// MemoryStore holds carts in process memory. It is the default backend for a
// single-binary stand; carts are cloned on the way in and out so callers
// never share the stored map.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]domain.Cart)}
}

func (s *MemoryStore) Get(_ context.Context, sid string) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[sid]
	if !ok {
		return domain.Cart{}, nil
	}
	return cart.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, sid string, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sid] = cart.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sid)
	return nil
}
