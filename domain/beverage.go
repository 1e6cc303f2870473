package domain

// Beverage is a catalog item sellable in two sizes. Prices are integer rupiah.
type Beverage struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	PriceRegular int64  `db:"price_regular" json:"price_regular"`
	PriceLarge   int64  `db:"price_large" json:"price_large"`
	Active       bool   `db:"active" json:"active"`
	CreatedAt    string `db:"created_at" json:"created_at,omitempty"`
}
