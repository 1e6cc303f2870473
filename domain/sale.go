package domain

type Sale struct {
	ID            int64  `db:"id" json:"id"`
	Total         int64  `db:"total" json:"total"`
	PaymentMethod string `db:"payment_method" json:"payment_method"`
	CreatedAt     string `db:"created_at" json:"created_at"`
}

// SaleLine freezes unit_price and line_total at checkout time; later catalog
// price changes never touch past sales.
type SaleLine struct {
	ID         int64  `db:"id" json:"id"`
	SaleID     int64  `db:"sale_id" json:"sale_id"`
	BeverageID int64  `db:"beverage_id" json:"beverage_id"`
	Qty        int64  `db:"qty" json:"qty"`
	UnitPrice  int64  `db:"unit_price" json:"unit_price"`
	LineTotal  int64  `db:"line_total" json:"line_total"`
	Size       string `db:"size" json:"size"`
	SugarLevel string `db:"sugar_level" json:"sugar_level"`
	IceLevel   string `db:"ice_level" json:"ice_level"`
}
