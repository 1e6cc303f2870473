package session

import (
	"context"
	"fmt"

	"slowteabar/m/domain"
)

// Manager exposes the cart operations handlers use. All operations are
// idempotent with respect to missing keys and missing sessions.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Cart returns the session's cart, empty if none exists yet.
func (m *Manager) Cart(ctx context.Context, sid string) (domain.Cart, error) {
	cart, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	return cart, nil
}

// Increment adds one unit for key, creating the entry at 1 if absent.
func (m *Manager) Increment(ctx context.Context, sid, key string) error {
	cart, err := m.Cart(ctx, sid)
	if err != nil {
		return err
	}
	cart[key]++
	return m.store.Save(ctx, sid, cart)
}

// Decrement removes one unit for key, deleting the entry when it reaches
// zero. Decrementing an absent key leaves the cart unchanged.
func (m *Manager) Decrement(ctx context.Context, sid, key string) error {
	cart, err := m.Cart(ctx, sid)
	if err != nil {
		return err
	}
	qty, ok := cart[key]
	if !ok {
		return nil
	}
	if qty <= 1 {
		delete(cart, key)
	} else {
		cart[key] = qty - 1
	}
	return m.store.Save(ctx, sid, cart)
}

// Clear empties the session's cart.
func (m *Manager) Clear(ctx context.Context, sid string) error {
	if err := m.store.Delete(ctx, sid); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
