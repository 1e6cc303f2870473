// Package sales persists checkouts and serves the sales history.
package sales

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"slowteabar/m/domain"
	"slowteabar/m/internal/cartkey"
	"slowteabar/m/internal/catalog"
)

type Store struct {
	db      *sqlx.DB
	catalog *catalog.Store
}

func New(db *sqlx.DB, cat *catalog.Store) *Store {
	return &Store{db: db, catalog: cat}
}

// Checkout converts a cart snapshot into a Sale with its lines inside one
// transaction. An empty cart is a no-op and returns a nil sale. Cart keys
// whose beverage is gone or deactivated are dropped silently; unit_price and
// line_total are frozen at checkout time. Any persistence failure rolls the
// whole attempt back so the caller can keep the cart for retry.
func (s *Store) Checkout(ctx context.Context, cart domain.Cart, paymentMethod string) (*domain.Sale, error) {
	if cart.Empty() {
		return nil, nil
	}
	if paymentMethod == "" {
		paymentMethod = "cash"
	}

	beverages, err := s.catalog.ByID(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sales (total, payment_method) VALUES (0, ?)`, paymentMethod)
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	saleID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}

	var total int64
	for key, qty := range cart {
		if qty <= 0 {
			continue
		}
		sel, err := cartkey.Decode(key)
		if err != nil {
			continue
		}
		bev, ok := beverages[sel.BeverageID]
		if !ok || !bev.Active {
			// Stale reference, treated as already removed.
			continue
		}
		unitPrice := catalog.PriceFor(bev, sel.Size)
		lineTotal := unitPrice * int64(qty)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sale_lines (sale_id, beverage_id, qty, unit_price, line_total, size, sugar_level, ice_level)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			saleID, bev.ID, qty, unitPrice, lineTotal, sel.Size, sel.Sugar, sel.Ice); err != nil {
			return nil, fmt.Errorf("save sale line: %w", err)
		}
		total += lineTotal
	}

	if _, err := tx.ExecContext(ctx, `UPDATE sales SET total = ? WHERE id = ?`, total, saleID); err != nil {
		return nil, fmt.Errorf("finalize sale: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}

	return &domain.Sale{ID: saleID, Total: total, PaymentMethod: paymentMethod}, nil
}

// Recent lists sales newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Sale
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, total, payment_method, created_at FROM sales ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return out, nil
}

// Get fetches one sale header.
func (s *Store) Get(ctx context.Context, saleID int64) (domain.Sale, error) {
	var sale domain.Sale
	err := s.db.GetContext(ctx, &sale,
		`SELECT id, total, payment_method, created_at FROM sales WHERE id = ?`, saleID)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("load sale %d: %w", saleID, err)
	}
	return sale, nil
}

// LineDetail is a sale line joined with its beverage name for display.
type LineDetail struct {
	domain.SaleLine
	BeverageName string `db:"beverage_name"`
}

// Lines returns the lines of a sale with beverage names resolved.
func (s *Store) Lines(ctx context.Context, saleID int64) ([]LineDetail, error) {
	var out []LineDetail
	err := s.db.SelectContext(ctx, &out,
		`SELECT l.id, l.sale_id, l.beverage_id, l.qty, l.unit_price, l.line_total,
                l.size, l.sugar_level, l.ice_level, b.name AS beverage_name
         FROM sale_lines l
         JOIN beverages b ON b.id = l.beverage_id
         WHERE l.sale_id = ?
         ORDER BY l.id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("load sale lines: %w", err)
	}
	return out, nil
}
