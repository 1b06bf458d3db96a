package service

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbill/m/domain"
)

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name                       string
		qty                        int64
		price, discount, rate      string
		taxable, cgst, sgst, total string
	}{
		{"discounted", 3, "30", "10", "12", "81.00", "4.86", "4.86", "90.72"},
		{"odd paise go to sgst", 1, "10.05", "0", "18", "10.05", "0.91", "0.90", "11.86"},
		{"exempt", 2, "15.50", "0", "0", "31.00", "0", "0", "31.00"},
		{"fully discounted", 4, "9.99", "100", "12", "0", "0", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeLine(tt.qty, dec(tt.price), dec(tt.discount), dec(tt.rate))
			assert.True(t, got.taxable.Equal(dec(tt.taxable)), "taxable %s", got.taxable)
			assert.True(t, got.cgst.Equal(dec(tt.cgst)), "cgst %s", got.cgst)
			assert.True(t, got.sgst.Equal(dec(tt.sgst)), "sgst %s", got.sgst)
			assert.True(t, got.total.Equal(dec(tt.total)), "total %s", got.total)
		})
	}
}

func TestCreateBillDeductsStockAndTotals(t *testing.T) {
	f := newFixture(t)
	a := f.stock(t, "Paracetamol", domain.ScheduleNone, 100, "2.50")
	b := f.stock(t, "Cetirizine", domain.ScheduleNone, 40, "10.05")

	bill, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		CustomerName: "Walk-in",
		PaymentMode:  domain.PaymentUPI,
		Items: []domain.BillLine{
			{BatchID: a.ID, Quantity: 10, DiscountPercent: dec("5")},
			{BatchID: b.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", bill.BillNumber)
	assert.Equal(t, "counter", bill.CreatedBy)
	require.Len(t, bill.Items, 2)
	assert.Equal(t, int64(90), f.quantity(t, a.ID))
	assert.Equal(t, int64(37), f.quantity(t, b.ID))

	sumTaxable := decimal.Zero
	for _, it := range bill.Items {
		sumTaxable = sumTaxable.Add(it.TaxableAmount)
	}
	assert.True(t, sumTaxable.Equal(bill.TaxableAmount))
	assert.True(t, bill.TaxableAmount.Add(bill.TotalGST).Equal(bill.GrandTotal))
	assert.True(t, bill.CGSTAmount.Add(bill.SGSTAmount).Equal(bill.TotalGST))

	saved, err := f.svc.Billing.GetBill(f.ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.BillNumber, saved.BillNumber)
	assert.Len(t, saved.Items, 2)
	assert.True(t, saved.GrandTotal.Equal(bill.GrandTotal))
	assert.Empty(t, saved.Scheduled)
}

func TestStockScenario(t *testing.T) {
	f := newFixture(t)
	batch := f.stock(t, "Amoxicillin", domain.ScheduleNone, 100, "8")

	first := f.cashBill(t, batch.ID, 30)
	assert.Equal(t, int64(70), f.quantity(t, batch.ID))

	_, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		PaymentMode: domain.PaymentCash,
		Items:       []domain.BillLine{{BatchID: batch.ID, Quantity: 80}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "insufficient stock")
	assert.Equal(t, int64(70), f.quantity(t, batch.ID))

	_, err = f.svc.Returns.CreateSalesReturn(f.ctx, domain.SalesReturnRequest{
		BillID:     first.ID,
		Lines:      []domain.ReturnLine{{BillItemID: first.Items[0].ID, Quantity: 10}},
		RefundMode: domain.RefundCash,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(80), f.quantity(t, batch.ID))
}

func TestCreateBillRejectsWholeBillOnShortage(t *testing.T) {
	f := newFixture(t)
	a := f.stock(t, "Ibuprofen", domain.ScheduleNone, 50, "3")
	b := f.stock(t, "Pantoprazole", domain.ScheduleNone, 5, "6")

	_, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		PaymentMode: domain.PaymentCash,
		Items: []domain.BillLine{
			{BatchID: a.ID, Quantity: 10},
			{BatchID: b.ID, Quantity: 6},
		},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(50), f.quantity(t, a.ID))
	assert.Equal(t, int64(5), f.quantity(t, b.ID))

	bills, err := f.svc.Billing.ListBills(f.ctx, domain.BillFilter{})
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestCreateBillSumsLinesOnSameBatch(t *testing.T) {
	f := newFixture(t)
	a := f.stock(t, "ORS", domain.ScheduleNone, 10, "20")

	_, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		PaymentMode: domain.PaymentCash,
		Items: []domain.BillLine{
			{BatchID: a.ID, Quantity: 6},
			{BatchID: a.ID, Quantity: 6},
		},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(10), f.quantity(t, a.ID))
}

func TestCreateBillValidation(t *testing.T) {
	f := newFixture(t)
	a := f.stock(t, "Zinc", domain.ScheduleNone, 10, "4")

	one := []domain.BillLine{{BatchID: a.ID, Quantity: 1}}
	cases := []struct {
		name string
		req  domain.CreateBillRequest
	}{
		{"no items", domain.CreateBillRequest{PaymentMode: domain.PaymentCash}},
		{"bad mode", domain.CreateBillRequest{PaymentMode: "BARTER", Items: one}},
		{"zero quantity", domain.CreateBillRequest{PaymentMode: domain.PaymentCash, Items: []domain.BillLine{{BatchID: a.ID}}}},
		{"discount over 100", domain.CreateBillRequest{
			PaymentMode: domain.PaymentCash,
			Items:       []domain.BillLine{{BatchID: a.ID, Quantity: 1, DiscountPercent: dec("101")}},
		}},
		{"credit without customer", domain.CreateBillRequest{PaymentMode: domain.PaymentCredit, Items: one}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Billing.CreateBill(f.ctx, tc.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Equal(t, int64(10), f.quantity(t, a.ID))

	_, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		PaymentMode: domain.PaymentCash,
		Items:       []domain.BillLine{{BatchID: 999, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBillRejectsExpiredBatch(t *testing.T) {
	f := newFixture(t)
	m := f.medicine(t, "Old Syrup", domain.ScheduleNone)
	s := f.supplier(t, "Old Co")
	b := domain.Batch{MedicineID: m.ID, SupplierID: s.ID, BatchNumber: "X1", ExpiryDate: "2001-01-31", Quantity: 5,
		PurchasePrice: dec("1"), MRP: dec("2"), SellingPrice: dec("2")}
	require.NoError(t, f.q.CreateBatch(f.ctx, &b))

	_, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		PaymentMode: domain.PaymentCash,
		Items:       []domain.BillLine{{BatchID: b.ID, Quantity: 1}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "expired")
}

func TestScheduleHBillNeedsPatient(t *testing.T) {
	f := newFixture(t)
	b := f.stock(t, "Alprazolam", domain.ScheduleH1, 20, "5")

	req := domain.CreateBillRequest{
		PaymentMode: domain.PaymentCash,
		DoctorName:  "Dr. Rao",
		Items:       []domain.BillLine{{BatchID: b.ID, Quantity: 2}},
	}
	_, err := f.svc.Billing.CreateBill(f.ctx, req)
	require.ErrorIs(t, err, domain.ErrValidation)

	req.Patient = &domain.Patient{Name: "Kiran", Age: 0, Gender: "M"}
	_, err = f.svc.Billing.CreateBill(f.ctx, req)
	require.ErrorIs(t, err, domain.ErrValidation)

	req.Patient = &domain.Patient{Name: "Kiran", Age: 34, Gender: "x"}
	_, err = f.svc.Billing.CreateBill(f.ctx, req)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(20), f.quantity(t, b.ID))

	req.Patient = &domain.Patient{Name: "Kiran", Age: 34, Gender: "m", PrescriptionNo: "RX-9"}
	bill, err := f.svc.Billing.CreateBill(f.ctx, req)
	require.NoError(t, err)
	require.Len(t, bill.Scheduled, 1)
	rec := bill.Scheduled[0]
	assert.Equal(t, "Kiran", rec.PatientName)
	assert.Equal(t, 34, rec.PatientAge)
	assert.Equal(t, "M", rec.PatientGender)
	assert.Equal(t, domain.ScheduleH1, rec.Schedule)
	assert.Equal(t, "Dr. Rao", rec.DoctorName)
	assert.Equal(t, bill.Items[0].ID, rec.BillItemID)

	register, err := f.svc.Reports.ScheduleRegister(f.ctx, "", "")
	require.NoError(t, err)
	require.Len(t, register, 1)
	assert.Equal(t, bill.BillNumber, register[0].BillNumber)
}

func TestCreditBillUpdatesLedger(t *testing.T) {
	f := newFixture(t)
	b := f.stock(t, "Metformin", domain.ScheduleNone, 100, "10")
	c := f.customer(t, "Suresh", "0")

	bill, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		CustomerID:  &c.ID,
		PaymentMode: domain.PaymentCredit,
		Items:       []domain.BillLine{{BatchID: b.ID, Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Suresh", bill.CustomerName)
	assert.True(t, bill.GrandTotal.Equal(dec("56")))

	got, err := f.svc.Customers.GetCustomer(f.ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentBalance.Equal(dec("56")))

	ledger, err := f.svc.Customers.Ledger(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, domain.CreditSale, ledger[0].Type)
	require.NotNil(t, ledger[0].BillID)
	assert.Equal(t, bill.ID, *ledger[0].BillID)
}

func TestCreditLimitEnforced(t *testing.T) {
	f := newFixture(t)
	b := f.stock(t, "Insulin", domain.ScheduleNone, 10, "100")
	c := f.customer(t, "Lata", "150")

	_, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		CustomerID:  &c.ID,
		PaymentMode: domain.PaymentCredit,
		Items:       []domain.BillLine{{BatchID: b.ID, Quantity: 2}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "credit limit")
	assert.Equal(t, int64(10), f.quantity(t, b.ID))
}

func TestBillNumbersUseConfiguredPrefix(t *testing.T) {
	f := newFixture(t)
	b := f.stock(t, "Dolo", domain.ScheduleNone, 10, "3")

	settings := f.state.Settings()
	settings.BillPrefix = "MB"
	f.state.SetSettings(settings)

	f.cashBill(t, b.ID, 1)
	second := f.cashBill(t, b.ID, 1)
	assert.Equal(t, "MB-000002", second.BillNumber)
}

func TestBillPDF(t *testing.T) {
	f := newFixture(t)
	b := f.stock(t, "Vitamin C", domain.ScheduleNone, 10, "3")
	bill := f.cashBill(t, b.ID, 2)

	pdf, detail, err := f.svc.Billing.BillPDF(f.ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.BillNumber, detail.BillNumber)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestCreateBillRejectsOverflowingSameBatchLines(t *testing.T) {
	f := newFixture(t)
	b := f.stock(t, "Amlodipine", domain.ScheduleNone, 30, "6")

	_, err := f.svc.Billing.CreateBill(f.ctx, domain.CreateBillRequest{
		PaymentMode: domain.PaymentCash,
		Items: []domain.BillLine{
			{BatchID: b.ID, Quantity: 10},
			{BatchID: b.ID, Quantity: math.MaxInt64 - 5},
		},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "insufficient stock")
	assert.Equal(t, int64(30), f.quantity(t, b.ID))
}
