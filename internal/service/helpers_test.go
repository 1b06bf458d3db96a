package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"medbill/m/domain"
	"medbill/m/internal/appstate"
	"medbill/m/internal/database"
	"medbill/m/internal/migrations"
	"medbill/m/internal/store"
)

type fixture struct {
	svc   *Services
	state *appstate.State
	q     *store.Queries
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(database.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Run(db))

	state := appstate.New(domain.DefaultSettings())
	state.SetSession(domain.Session{ID: "test-session", UserID: 1, Username: "counter", Role: domain.RoleEmployee})
	return &fixture{
		svc:   New(db, state, Options{Secret: "test-secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}),
		state: state,
		q:     store.New(db),
		ctx:   context.Background(),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) supplier(t *testing.T, name string) domain.Supplier {
	t.Helper()
	s, err := f.svc.Suppliers.CreateSupplier(f.ctx, domain.Supplier{Name: name})
	require.NoError(t, err)
	return s
}

func (f *fixture) medicine(t *testing.T, name string, schedule domain.Schedule) domain.Medicine {
	t.Helper()
	m, err := f.svc.Inventory.CreateMedicine(f.ctx, domain.Medicine{
		Name:     name,
		HSNCode:  "3004",
		GSTRate:  decimal.NewFromInt(12),
		Schedule: schedule,
	})
	require.NoError(t, err)
	return m
}

// stock creates a medicine with one batch of qty units selling at price.
func (f *fixture) stock(t *testing.T, name string, schedule domain.Schedule, qty int64, price string) domain.Batch {
	t.Helper()
	m := f.medicine(t, name, schedule)
	s := f.supplier(t, name+" Distributors")
	b, err := f.svc.Inventory.ReceiveBatch(f.ctx, domain.Batch{
		MedicineID:    m.ID,
		SupplierID:    s.ID,
		BatchNumber:   "BT-" + name,
		ExpiryDate:    "2099-12-31",
		Quantity:      qty,
		PurchasePrice: dec(price).Div(decimal.NewFromInt(2)),
		MRP:           dec(price),
		SellingPrice:  dec(price),
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) quantity(t *testing.T, batchID int64) int64 {
	t.Helper()
	b, err := f.q.GetBatch(f.ctx, batchID)
	require.NoError(t, err)
	return b.Quantity
}

func (f *fixture) customer(t *testing.T, name string, limit string) domain.Customer {
	t.Helper()
	c, err := f.svc.Customers.CreateCustomer(f.ctx, domain.Customer{Name: name, CreditLimit: dec(limit)})
	require.NoError(t, err)
	return c
}

func (f *fixture) cashBill(t *testing.T, batchID, qty int64) domain.BillDetail {
	t.Helper()
	bill, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		PaymentMode: domain.PaymentCash,
		Items:       []domain.BillLine{{BatchID: batchID, Quantity: qty}},
	})
	require.NoError(t, err)
	return bill
}
