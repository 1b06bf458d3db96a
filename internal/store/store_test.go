package store_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbill/m/domain"
	"medbill/m/internal/database"
	"medbill/m/internal/migrations"
	"medbill/m/internal/store"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(database.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Run(db))
	return db
}

func seedBatch(t *testing.T, q *store.Queries, qty int64) domain.Batch {
	t.Helper()
	ctx := context.Background()
	med := domain.Medicine{Name: "Paracetamol 500", GSTRate: decimal.NewFromInt(12), Schedule: domain.ScheduleNone, IsActive: true}
	require.NoError(t, q.CreateMedicine(ctx, &med))
	sup := domain.Supplier{Name: "Acme Pharma"}
	require.NoError(t, q.CreateSupplier(ctx, &sup))
	b := domain.Batch{
		MedicineID:    med.ID,
		SupplierID:    sup.ID,
		BatchNumber:   "B-01",
		ExpiryDate:    "2099-12-31",
		Quantity:      qty,
		PurchasePrice: decimal.RequireFromString("1.50"),
		MRP:           decimal.RequireFromString("2.50"),
		SellingPrice:  decimal.RequireFromString("2.00"),
	}
	require.NoError(t, q.CreateBatch(ctx, &b))
	return b
}

func TestDecrementBatch(t *testing.T) {
	q := store.New(newTestDB(t))
	ctx := context.Background()
	b := seedBatch(t, q, 10)

	require.NoError(t, q.DecrementBatch(ctx, b.ID, 4))
	got, err := q.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Quantity)

	err = q.DecrementBatch(ctx, b.ID, 7)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "insufficient stock")

	got, err = q.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Quantity)

	require.ErrorIs(t, q.DecrementBatch(ctx, 999, 1), domain.ErrNotFound)
}

func TestGetMissingRowsAreNotFound(t *testing.T) {
	q := store.New(newTestDB(t))
	ctx := context.Background()

	_, err := q.GetMedicine(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = q.GetBill(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = q.GetCustomer(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, q.IncrementBatch(ctx, 42, 1), domain.ErrNotFound)
}

func TestNextBillNumber(t *testing.T) {
	q := store.New(newTestDB(t))
	ctx := context.Background()

	number, err := q.NextBillNumber(ctx, "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", number)

	bill := domain.Bill{BillNumber: number, PaymentMode: domain.PaymentCash, CreatedAt: "2024-01-01 10:00:00"}
	require.NoError(t, q.CreateBill(ctx, &bill))

	number, err = q.NextBillNumber(ctx, "MB")
	require.NoError(t, err)
	assert.Equal(t, "MB-000002", number)
}

func TestLedgerBalance(t *testing.T) {
	q := store.New(newTestDB(t))
	ctx := context.Background()

	c := domain.Customer{Name: "Ravi"}
	require.NoError(t, q.CreateCustomer(ctx, &c))

	entries := []domain.Credit{
		{CustomerID: c.ID, Type: domain.CreditSale, Amount: decimal.RequireFromString("500.50")},
		{CustomerID: c.ID, Type: domain.CreditPayment, Amount: decimal.RequireFromString("200")},
		{CustomerID: c.ID, Type: domain.CreditReturn, Amount: decimal.RequireFromString("50.25")},
	}
	for i := range entries {
		entries[i].CreatedAt = "2024-01-01 10:00:00"
		require.NoError(t, q.CreateCredit(ctx, &entries[i]))
	}

	balance, err := q.LedgerBalance(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("250.25")), balance.String())

	list, err := q.Credits(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestPutSettingUpserts(t *testing.T) {
	q := store.New(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, q.PutSetting(ctx, domain.SettingBillPrefix, "A"))
	require.NoError(t, q.PutSetting(ctx, domain.SettingBillPrefix, "B"))

	values, err := q.AllSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{domain.SettingBillPrefix: "B"}, values)
}

func TestMoveSupplierReturnIsCompareAndSet(t *testing.T) {
	q := store.New(newTestDB(t))
	ctx := context.Background()
	b := seedBatch(t, q, 5)

	r := domain.SupplierReturn{SupplierID: b.SupplierID, BatchID: b.ID, Quantity: 2, Amount: decimal.NewFromInt(3), Status: domain.SupplierReturnPending}
	require.NoError(t, q.CreateSupplierReturn(ctx, &r))

	moved, err := q.MoveSupplierReturn(ctx, r.ID, domain.SupplierReturnPending, domain.SupplierReturnApproved)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = q.MoveSupplierReturn(ctx, r.ID, domain.SupplierReturnPending, domain.SupplierReturnRejected)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestLowStockIgnoresExpiredBatches(t *testing.T) {
	q := store.New(newTestDB(t))
	ctx := context.Background()
	b := seedBatch(t, q, 3)

	med, err := q.GetMedicine(ctx, b.MedicineID)
	require.NoError(t, err)
	med.ReorderLevel = 5
	require.NoError(t, q.UpdateMedicine(ctx, med))

	expired := b
	expired.BatchNumber = "OLD"
	expired.ExpiryDate = "2000-01-01"
	expired.Quantity = 100
	require.NoError(t, q.CreateBatch(ctx, &expired))

	levels, err := q.LowStock(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, int64(3), levels[0].Quantity)
}
