package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbill/m/domain"
)

func creditCustomer(t *testing.T, f *fixture, owed string) domain.Customer {
	t.Helper()
	c := f.customer(t, "Prakash", "0")
	b := f.stock(t, "Glimepiride", domain.ScheduleNone, 100, owed)
	_, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		CustomerID:  &c.ID,
		PaymentMode: domain.PaymentCredit,
		Items:       []domain.BillLine{{BatchID: b.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	c, err = f.svc.Customers.GetCustomer(f.ctx, c.ID)
	require.NoError(t, err)
	return c
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	c := creditCustomer(t, f, "250")
	require.True(t, c.CurrentBalance.Equal(dec("280")))

	entry, err := f.svc.Customers.RecordPayment(f.ctx, c.ID, domain.PaymentRequest{Amount: dec("100"), PaymentMode: "upi"})
	require.NoError(t, err)
	assert.Equal(t, domain.CreditPayment, entry.Type)
	assert.Equal(t, "UPI", entry.PaymentMode)
	assert.True(t, entry.BalanceAfter.Equal(dec("180")))

	got, err := f.svc.Customers.GetCustomer(f.ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(entry.BalanceAfter))

	_, err = f.svc.Customers.RecordPayment(f.ctx, c.ID, domain.PaymentRequest{Amount: dec("180")})
	require.NoError(t, err)

	check, err := f.svc.Customers.VerifyBalance(f.ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent())
	assert.True(t, check.CurrentBalance.IsZero())
}

func TestRecordPaymentRejectsBadAmounts(t *testing.T) {
	f := newFixture(t)
	c := creditCustomer(t, f, "50")

	for _, amount := range []string{"0", "-5", "56.01"} {
		_, err := f.svc.Customers.RecordPayment(f.ctx, c.ID, domain.PaymentRequest{Amount: dec(amount)})
		assert.ErrorIs(t, err, domain.ErrValidation, amount)
	}
	got, err := f.svc.Customers.GetCustomer(f.ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec("56")))

	ledger, err := f.svc.Customers.Ledger(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, ledger, 1)

	_, err = f.svc.Customers.RecordPayment(f.ctx, 999, domain.PaymentRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerifyBalanceReportsDrift(t *testing.T) {
	f := newFixture(t)
	c := creditCustomer(t, f, "100")

	require.NoError(t, f.q.SetCustomerBalance(f.ctx, c.ID, dec("100")))

	check, err := f.svc.Customers.VerifyBalance(f.ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, check.Consistent())
	assert.True(t, check.Drift.Equal(dec("-12")), check.Drift.String())
}

func TestCustomerPhoneIsUnique(t *testing.T) {
	f := newFixture(t)
	phone := " 9876543210 "

	first, err := f.svc.Customers.CreateCustomer(f.ctx, domain.Customer{Name: "Asha", Phone: &phone})
	require.NoError(t, err)
	require.NotNil(t, first.Phone)
	assert.Equal(t, "9876543210", *first.Phone)

	_, err = f.svc.Customers.CreateCustomer(f.ctx, domain.Customer{Name: "Other", Phone: &phone})
	assert.ErrorIs(t, err, domain.ErrValidation)

	empty := ""
	_, err = f.svc.Customers.CreateCustomer(f.ctx, domain.Customer{Name: "No Phone 1", Phone: &empty})
	require.NoError(t, err)
	_, err = f.svc.Customers.CreateCustomer(f.ctx, domain.Customer{Name: "No Phone 2"})
	require.NoError(t, err)

	first.Address = "MG Road"
	updated, err := f.svc.Customers.UpdateCustomer(f.ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "MG Road", updated.Address)

	found, err := f.svc.Customers.ListCustomers(f.ctx, "98765")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Asha", found[0].Name)
}
