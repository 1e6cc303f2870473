package seed

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

type starter struct {
	name         string
	priceRegular int64
	priceLarge   int64
}

var starters = []starter{
	{"Slow Milk Tea", 22000, 26000},
	{"Jasmine Lemon Tea", 18000, 22000},
	{"Oolong Peach", 25000, 29000},
}

// Beverages inserts the starter catalog when the beverages table is empty.
// Safe to call repeatedly.
func Beverages(db *sqlx.DB) error {
	var count int64
	if err := db.Get(&count, `SELECT COUNT(*) FROM beverages`); err != nil {
		return fmt.Errorf("count beverages: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	for _, s := range starters {
		if _, err := tx.Exec(`INSERT INTO beverages (name, price_regular, price_large, active) VALUES (?, ?, ?, 1)`,
			s.name, s.priceRegular, s.priceLarge); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert beverage %s: %w", s.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
