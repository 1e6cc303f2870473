package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "1:large:less:more"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(NewMemoryStore())
}

func TestQuantityFollowsOperationCount(t *testing.T) {
	// Quantity equals adds minus decs, floored at 0; the key is present
	// exactly when that value is positive.
	cases := []struct {
		name string
		ops  string // 'i' increment, 'd' decrement
		want int
	}{
		{"single add", "i", 1},
		{"add twice", "ii", 2},
		{"add then remove", "id", 0},
		{"dec on empty cart", "d", 0},
		{"dec below zero then add", "ddi", 1},
		{"interleaved", "iidiid", 2},
		{"drain", "iiiddd", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			m := newTestManager(t)
			for _, op := range tc.ops {
				var err error
				if op == 'i' {
					err = m.Increment(ctx, "sid", testKey)
				} else {
					err = m.Decrement(ctx, "sid", testKey)
				}
				require.NoError(t, err)
			}

			cart, err := m.Cart(ctx, "sid")
			require.NoError(t, err)
			if tc.want == 0 {
				_, present := cart[testKey]
				assert.False(t, present, "zero-quantity key must be removed")
			} else {
				assert.Equal(t, tc.want, cart[testKey])
			}
		})
	}
}

func TestCartsAreScopedBySession(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	require.NoError(t, m.Increment(ctx, "alice", testKey))
	require.NoError(t, m.Increment(ctx, "alice", testKey))
	require.NoError(t, m.Increment(ctx, "bob", testKey))

	alice, err := m.Cart(ctx, "alice")
	require.NoError(t, err)
	bob, err := m.Cart(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, 2, alice[testKey])
	assert.Equal(t, 1, bob[testKey])
}

func TestClearEmptiesTheCart(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	require.NoError(t, m.Increment(ctx, "sid", testKey))
	require.NoError(t, m.Increment(ctx, "sid", "2:regular:default:default"))
	require.NoError(t, m.Clear(ctx, "sid"))

	cart, err := m.Cart(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	require.NoError(t, m.Increment(ctx, "sid", testKey))
	cart, err := m.Cart(ctx, "sid")
	require.NoError(t, err)
	cart[testKey] = 99

	again, err := m.Cart(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, 1, again[testKey], "mutating a returned cart must not touch the store")
}
