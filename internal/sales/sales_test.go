package sales

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slowteabar/m/domain"
	"slowteabar/m/internal/cartkey"
	"slowteabar/m/internal/catalog"
	"slowteabar/m/internal/database"
	"slowteabar/m/internal/migrations"
)

func newTestStore(t *testing.T) (*Store, *catalog.Store, *sqlx.DB) {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	cat := catalog.New(db)
	return New(db, cat), cat, db
}

func saleCount(t *testing.T, db *sqlx.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM sales`))
	return n
}

func TestCheckoutScenarioTeaQris(t *testing.T) {
	ctx := context.Background()
	store, cat, _ := newTestStore(t)

	teaID, err := cat.Create(ctx, "Tea", 18000, 22000)
	require.NoError(t, err)

	cart := domain.Cart{cartkey.Encode(teaID, "large", "less", "more"): 2}
	sale, err := store.Checkout(ctx, cart, "qris")
	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.Equal(t, int64(44000), sale.Total)
	assert.Equal(t, "qris", sale.PaymentMethod)

	lines, err := store.Lines(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, teaID, line.BeverageID)
	assert.Equal(t, int64(2), line.Qty)
	assert.Equal(t, int64(22000), line.UnitPrice)
	assert.Equal(t, int64(44000), line.LineTotal)
	assert.Equal(t, "large", line.Size)
	assert.Equal(t, "less", line.SugarLevel)
	assert.Equal(t, "more", line.IceLevel)
	assert.Equal(t, "Tea", line.BeverageName)
}

func TestCheckoutEmptyCartIsNoop(t *testing.T) {
	ctx := context.Background()
	store, _, db := newTestStore(t)

	sale, err := store.Checkout(ctx, domain.Cart{}, "cash")
	require.NoError(t, err)
	assert.Nil(t, sale)
	assert.Equal(t, int64(0), saleCount(t, db))
}

func TestCheckoutDefaultsPaymentMethodToCash(t *testing.T) {
	ctx := context.Background()
	store, cat, _ := newTestStore(t)

	id, err := cat.Create(ctx, "Tea", 18000, 22000)
	require.NoError(t, err)

	sale, err := store.Checkout(ctx, domain.Cart{cartkey.Encode(id, "regular", "", ""): 1}, "")
	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.Equal(t, "cash", sale.PaymentMethod)
	assert.Equal(t, int64(18000), sale.Total)
}

func TestCheckoutSkipsStaleAndInactiveReferences(t *testing.T) {
	ctx := context.Background()
	store, cat, db := newTestStore(t)

	keptID, err := cat.Create(ctx, "Jasmine Lemon Tea", 18000, 22000)
	require.NoError(t, err)
	retiredID, err := cat.Create(ctx, "Oolong Peach", 25000, 29000)
	require.NoError(t, err)
	require.NoError(t, cat.Update(ctx, retiredID, "Oolong Peach", 25000, 29000, false))
	goneID, err := cat.Create(ctx, "Avocado Smash", 30000, 34000)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM beverages WHERE id = ?`, goneID)
	require.NoError(t, err)

	cart := domain.Cart{
		cartkey.Encode(keptID, "regular", "default", "default"):    1,
		cartkey.Encode(retiredID, "regular", "default", "default"): 1,
		cartkey.Encode(goneID, "regular", "default", "default"):    1,
	}
	sale, err := store.Checkout(ctx, cart, "cash")
	require.NoError(t, err)
	require.NotNil(t, sale)

	lines, err := store.Lines(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, keptID, lines[0].BeverageID)
	assert.Equal(t, int64(18000), sale.Total)
}

func TestCheckoutTotalEqualsSumOfLineTotals(t *testing.T) {
	ctx := context.Background()
	store, cat, db := newTestStore(t)

	teaID, err := cat.Create(ctx, "Tea", 18000, 22000)
	require.NoError(t, err)
	milkID, err := cat.Create(ctx, "Slow Milk Tea", 22000, 26000)
	require.NoError(t, err)

	cart := domain.Cart{
		cartkey.Encode(teaID, "large", "less", "more"):         2, // 44000
		cartkey.Encode(teaID, "regular", "default", "default"): 1, // 18000
		cartkey.Encode(milkID, "regular", "default", "less"):   3, // 66000
	}
	sale, err := store.Checkout(ctx, cart, "transfer")
	require.NoError(t, err)
	require.NotNil(t, sale)

	var sum int64
	require.NoError(t, db.Get(&sum, `SELECT COALESCE(SUM(line_total), 0) FROM sale_lines WHERE sale_id = ?`, sale.ID))
	assert.Equal(t, sum, sale.Total)
	assert.Equal(t, int64(128000), sale.Total)

	var stored int64
	require.NoError(t, db.Get(&stored, `SELECT total FROM sales WHERE id = ?`, sale.ID))
	assert.Equal(t, sale.Total, stored)
}

func TestCheckoutFrozenPricesSurviveCatalogChanges(t *testing.T) {
	ctx := context.Background()
	store, cat, _ := newTestStore(t)

	id, err := cat.Create(ctx, "Tea", 18000, 22000)
	require.NoError(t, err)

	sale, err := store.Checkout(ctx, domain.Cart{cartkey.Encode(id, "large", "default", "default"): 1}, "cash")
	require.NoError(t, err)
	require.NotNil(t, sale)

	require.NoError(t, cat.Update(ctx, id, "Tea", 99000, 99000, true))

	lines, err := store.Lines(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(22000), lines[0].UnitPrice)
	assert.Equal(t, int64(22000), lines[0].LineTotal)
}

func TestCheckoutIsAtomicOnLineFailure(t *testing.T) {
	ctx := context.Background()
	store, cat, db := newTestStore(t)

	id, err := cat.Create(ctx, "Tea", 18000, 22000)
	require.NoError(t, err)

	// Force the line insert to fail partway through the transaction.
	_, err = db.Exec(`DROP TABLE sale_lines`)
	require.NoError(t, err)

	cart := domain.Cart{cartkey.Encode(id, "regular", "default", "default"): 1}
	sale, err := store.Checkout(ctx, cart, "cash")
	assert.Error(t, err)
	assert.Nil(t, sale)
	assert.Equal(t, int64(0), saleCount(t, db), "no partial sale row may survive a failed checkout")
}

func TestRecentListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, cat, _ := newTestStore(t)

	id, err := cat.Create(ctx, "Tea", 18000, 22000)
	require.NoError(t, err)
	key := cartkey.Encode(id, "regular", "default", "default")

	first, err := store.Checkout(ctx, domain.Cart{key: 1}, "cash")
	require.NoError(t, err)
	second, err := store.Checkout(ctx, domain.Cart{key: 2}, "qris")
	require.NoError(t, err)

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, first.ID, recent[1].ID)
}
