// Package catalog reads and maintains the beverage catalog.
package catalog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"slowteabar/m/domain"
	"slowteabar/m/internal/cartkey"
)

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Active returns active beverages ordered by name, for the selection UI.
func (s *Store) Active(ctx context.Context) ([]domain.Beverage, error) {
	var beverages []domain.Beverage
	err := s.db.SelectContext(ctx, &beverages,
		`SELECT id, name, price_regular, price_large, active, created_at FROM beverages WHERE active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list active beverages: %w", err)
	}
	return beverages, nil
}

// All returns every beverage, inactive included, ordered by name. Used by
// the admin catalog view.
func (s *Store) All(ctx context.Context) ([]domain.Beverage, error) {
	var beverages []domain.Beverage
	err := s.db.SelectContext(ctx, &beverages,
		`SELECT id, name, price_regular, price_large, active, created_at FROM beverages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list beverages: %w", err)
	}
	return beverages, nil
}

// ByID returns an id-indexed lookup over the whole catalog, inactive rows
// included, for resolving existing cart and sale references.
func (s *Store) ByID(ctx context.Context) (map[int64]domain.Beverage, error) {
	beverages, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]domain.Beverage, len(beverages))
	for _, b := range beverages {
		out[b.ID] = b
	}
	return out, nil
}

// Create adds a beverage to the catalog and returns its id.
func (s *Store) Create(ctx context.Context, name string, priceRegular, priceLarge int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO beverages (name, price_regular, price_large, active) VALUES (?, ?, ?, 1)`,
		name, priceRegular, priceLarge)
	if err != nil {
		return 0, fmt.Errorf("create beverage: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create beverage: %w", err)
	}
	return id, nil
}

// Update rewrites a beverage, including its active flag. Beverages are never
// hard-deleted; deactivation retires them from the POS.
func (s *Store) Update(ctx context.Context, id int64, name string, priceRegular, priceLarge int64, active bool) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE beverages SET name = ?, price_regular = ?, price_large = ?, active = ? WHERE id = ?`,
		name, priceRegular, priceLarge, active, id); err != nil {
		return fmt.Errorf("update beverage: %w", err)
	}
	return nil
}

// PriceFor resolves the unit price of a beverage for a size.
func PriceFor(b domain.Beverage, size string) int64 {
	if size == cartkey.SizeLarge {
		return b.PriceLarge
	}
	return b.PriceRegular
}
