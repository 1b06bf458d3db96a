package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbill/m/domain"
	"medbill/m/internal/timeutil"
)

func TestCreateMedicineValidation(t *testing.T) {
	f := newFixture(t)

	m := f.medicine(t, "Dolo 650", "")
	assert.Equal(t, domain.ScheduleNone, m.Schedule)
	assert.True(t, m.IsActive)

	_, err := f.svc.Inventory.CreateMedicine(f.ctx, domain.Medicine{Name: "dolo 650"})
	assert.ErrorIs(t, err, domain.ErrValidation, "duplicate name and manufacturer")
	_, err = f.svc.Inventory.CreateMedicine(f.ctx, domain.Medicine{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.Inventory.CreateMedicine(f.ctx, domain.Medicine{Name: "X", Schedule: "X"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.Inventory.CreateMedicine(f.ctx, domain.Medicine{Name: "Y", GSTRate: dec("40")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	found, err := f.svc.Inventory.SearchMedicines(f.ctx, "DOLO", 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	count, err := f.svc.Inventory.CountMedicines(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestReceiveBatchValidation(t *testing.T) {
	f := newFixture(t)
	m := f.medicine(t, "Cefixime", domain.ScheduleH)
	s := f.supplier(t, "Medline")

	base := domain.Batch{MedicineID: m.ID, SupplierID: s.ID, BatchNumber: "CF1", ExpiryDate: "2030-01-31",
		Quantity: 10, PurchasePrice: dec("5"), MRP: dec("9"), SellingPrice: dec("8")}

	bad := base
	bad.SellingPrice = dec("10")
	_, err := f.svc.Inventory.ReceiveBatch(f.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad = base
	bad.ExpiryDate = "31/01/2030"
	_, err = f.svc.Inventory.ReceiveBatch(f.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad = base
	bad.Quantity = 0
	_, err = f.svc.Inventory.ReceiveBatch(f.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad = base
	bad.SupplierID = 99
	_, err = f.svc.Inventory.ReceiveBatch(f.ctx, bad)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	b, err := f.svc.Inventory.ReceiveBatch(f.ctx, base)
	require.NoError(t, err)

	b, err = f.svc.Inventory.RestockBatch(f.ctx, b.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), b.Quantity)

	views, err := f.svc.Inventory.ListBatches(f.ctx, m.ID, true)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Cefixime", views[0].MedicineName)
	assert.Equal(t, "Medline", views[0].SupplierName)
}

func TestExpiringBatches(t *testing.T) {
	f := newFixture(t)
	m := f.medicine(t, "Eye Ointment", domain.ScheduleNone)
	s := f.supplier(t, "Optic")

	soon := timeutil.Now().AddDate(0, 0, 20).Format(timeutil.DateLayout)
	for i, expiry := range []string{soon, "2099-01-31"} {
		_, err := f.svc.Inventory.ReceiveBatch(f.ctx, domain.Batch{MedicineID: m.ID, SupplierID: s.ID,
			BatchNumber: []string{"E1", "E2"}[i], ExpiryDate: expiry, Quantity: 3,
			PurchasePrice: dec("1"), MRP: dec("2"), SellingPrice: dec("2")})
		require.NoError(t, err)
	}

	expiring, err := f.svc.Inventory.ExpiringBatches(f.ctx, 0)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "E1", expiring[0].BatchNumber)

	expiring, err = f.svc.Inventory.ExpiringBatches(f.ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, expiring)
}

func TestLowStock(t *testing.T) {
	f := newFixture(t)
	b := f.stock(t, "Aspirin", domain.ScheduleNone, 8, "1")

	m, err := f.svc.Inventory.GetMedicine(f.ctx, b.MedicineID)
	require.NoError(t, err)
	m.ReorderLevel = 10
	_, err = f.svc.Inventory.UpdateMedicine(f.ctx, m)
	require.NoError(t, err)

	low, err := f.svc.Inventory.LowStock(f.ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, int64(8), low[0].Quantity)
}

func TestUpdateMedicineRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	f.medicine(t, "Crocin", domain.ScheduleNone)
	dolo := f.medicine(t, "Dolo", domain.ScheduleNone)

	dolo.Name = "crocin"
	_, err := f.svc.Inventory.UpdateMedicine(f.ctx, dolo)
	require.ErrorIs(t, err, domain.ErrValidation)

	dolo.Name = "Dolo 650"
	updated, err := f.svc.Inventory.UpdateMedicine(f.ctx, dolo)
	require.NoError(t, err)
	assert.Equal(t, "Dolo 650", updated.Name)

	// saving a medicine under its own name is not a duplicate
	_, err = f.svc.Inventory.UpdateMedicine(f.ctx, updated)
	require.NoError(t, err)
}

func TestRestockBatchRejectsOverflow(t *testing.T) {
	f := newFixture(t)
	b := f.stock(t, "Metformin", domain.ScheduleNone, 20, "4")

	_, err := f.svc.Inventory.RestockBatch(f.ctx, b.ID, math.MaxInt64)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(20), f.quantity(t, b.ID))

	_, err = f.svc.Inventory.RestockBatch(f.ctx, 999, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
