// Package session keeps per-browser-session cart state behind a pluggable
// store.
package session

import (
	"context"

	"slowteabar/m/domain"
)

// Store persists carts keyed by session id. Get returns an empty cart for an
// unknown session, never an error for plain absence.
type Store interface {
	Get(ctx context.Context, sid string) (domain.Cart, error)
	Save(ctx context.Context, sid string, cart domain.Cart) error
	Delete(ctx context.Context, sid string) error
}
