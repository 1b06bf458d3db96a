package service

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"medbill/m/domain"
	"medbill/m/internal/appstate"
	"medbill/m/internal/database"
	"medbill/m/internal/invoice"
	"medbill/m/internal/metrics"
	"medbill/m/internal/store"
	"medbill/m/internal/timeutil"
)

type BillingService struct {
	db    *sqlx.DB
	state *appstate.State
}

// lineAmounts holds the GST breakdown of one bill line.
type lineAmounts struct {
	taxable decimal.Decimal
	cgst    decimal.Decimal
	sgst    decimal.Decimal
	total   decimal.Decimal
}

// computeLine splits a line into taxable value and CGST/SGST halves. Each
// step is rounded to paise, and SGST takes the remainder so the halves always
// add up to the line GST.
func computeLine(qty int64, unitPrice, discountPercent, gstRate decimal.Decimal) lineAmounts {
	gross := unitPrice.Mul(decimal.NewFromInt(qty))
	taxable := round2(gross.Mul(hundred.Sub(discountPercent)).Div(hundred))
	gst := round2(taxable.Mul(gstRate).Div(hundred))
	cgst := round2(gst.Div(decimal.NewFromInt(2)))
	return lineAmounts{
		taxable: taxable,
		cgst:    cgst,
		sgst:    gst.Sub(cgst),
		total:   taxable.Add(gst),
	}
}

func validateBillRequest(req domain.CreateBillRequest) error {
	if len(req.Items) == 0 {
		return domain.Invalid("bill must have at least one item")
	}
	if !req.PaymentMode.Valid() {
		return domain.Invalid("unknown payment mode %q", req.PaymentMode)
	}
	if req.PaymentMode == domain.PaymentCredit && req.CustomerID == nil {
		return domain.Invalid("credit bills need a customer")
	}
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return domain.Invalid("item %d: quantity must be positive", i+1)
		}
		if it.DiscountPercent.IsNegative() || it.DiscountPercent.GreaterThan(hundred) {
			return domain.Invalid("item %d: discount must be between 0 and 100", i+1)
		}
	}
	return nil
}

func validatePatient(p *domain.Patient) error {
	if p == nil {
		return domain.Invalid("patient details are required for Schedule H/H1 medicines")
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Gender = strings.ToUpper(strings.TrimSpace(p.Gender))
	if p.Name == "" {
		return domain.Invalid("patient name is required for Schedule H/H1 medicines")
	}
	if p.Age < 1 || p.Age > 150 {
		return domain.Invalid("patient age must be between 1 and 150")
	}
	switch p.Gender {
	case "M", "F", "O":
	default:
		return domain.Invalid("patient gender must be M, F or O")
	}
	return nil
}

type pricedLine struct {
	batch    domain.Batch
	medicine domain.Medicine
	line     domain.BillLine
}

// CreateBill validates stock and regulatory requirements, then saves the bill,
// its items, the stock deductions, any Schedule H/H1 records and the credit
// ledger entry as one transaction.
func (s *BillingService) CreateBill(ctx context.Context, req domain.CreateBillRequest) (domain.BillDetail, error) {
	detail, err := s.createBill(ctx, req)
	track("create_bill", err)
	if err != nil {
		return domain.BillDetail{}, err
	}
	metrics.SalesAmount.WithLabelValues(string(detail.PaymentMode)).Add(detail.GrandTotal.InexactFloat64())
	log.Info().Str("bill_number", detail.BillNumber).Str("grand_total", detail.GrandTotal.StringFixed(2)).
		Int("items", len(detail.Items)).Msg("bill saved")
	return detail, nil
}

func (s *BillingService) createBill(ctx context.Context, req domain.CreateBillRequest) (domain.BillDetail, error) {
	if err := validateBillRequest(req); err != nil {
		return domain.BillDetail{}, err
	}

	var detail domain.BillDetail
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q := store.New(tx)
		today := timeutil.Today()

		var customer *domain.Customer
		if req.CustomerID != nil {
			c, err := q.GetCustomer(ctx, *req.CustomerID)
			if err != nil {
				return err
			}
			customer = &c
		}

		lines := make([]pricedLine, 0, len(req.Items))
		requested := make(map[int64]int64)
		regulated := false
		for _, it := range req.Items {
			b, err := q.GetBatch(ctx, it.BatchID)
			if err != nil {
				return err
			}
			m, err := q.GetMedicine(ctx, b.MedicineID)
			if err != nil {
				return err
			}
			if !m.IsActive {
				return domain.Invalid("medicine %s is inactive", m.Name)
			}
			if b.Expired(today) {
				return domain.Invalid("batch %s of %s expired on %s", b.BatchNumber, m.Name, b.ExpiryDate)
			}
			if it.Quantity > b.Quantity-requested[b.ID] {
				return domain.Invalid("insufficient stock for %s batch %s: %d available, %d already on this bill, %d more requested",
					m.Name, b.BatchNumber, b.Quantity, requested[b.ID], it.Quantity)
			}
			requested[b.ID] += it.Quantity
			regulated = regulated || m.Schedule.Regulated()
			lines = append(lines, pricedLine{batch: b, medicine: m, line: it})
		}
		if regulated {
			if err := validatePatient(req.Patient); err != nil {
				return err
			}
		}

		bill := domain.Bill{
			CustomerID:    req.CustomerID,
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			DoctorName:    strings.TrimSpace(req.DoctorName),
			PaymentMode:   req.PaymentMode,
			TaxableAmount: decimal.Zero,
			CGSTAmount:    decimal.Zero,
			SGSTAmount:    decimal.Zero,
			TotalGST:      decimal.Zero,
			GrandTotal:    decimal.Zero,
			CreatedBy:     s.state.Operator(),
			CreatedAt:     timeutil.Stamp(),
		}
		if customer != nil {
			if bill.CustomerName == "" {
				bill.CustomerName = customer.Name
			}
			if bill.CustomerPhone == "" && customer.Phone != nil {
				bill.CustomerPhone = *customer.Phone
			}
		}

		items := make([]domain.BillItem, 0, len(lines))
		for _, l := range lines {
			amounts := computeLine(l.line.Quantity, l.batch.SellingPrice, l.line.DiscountPercent, l.medicine.GSTRate)
			items = append(items, domain.BillItem{
				BatchID:         l.batch.ID,
				MedicineID:      l.medicine.ID,
				MedicineName:    l.medicine.Name,
				HSNCode:         l.medicine.HSNCode,
				BatchNumber:     l.batch.BatchNumber,
				ExpiryDate:      l.batch.ExpiryDate,
				Quantity:        l.line.Quantity,
				UnitPrice:       l.batch.SellingPrice,
				DiscountPercent: l.line.DiscountPercent,
				GSTRate:         l.medicine.GSTRate,
				TaxableAmount:   amounts.taxable,
				CGSTAmount:      amounts.cgst,
				SGSTAmount:      amounts.sgst,
				TotalAmount:     amounts.total,
			})
			bill.TaxableAmount = bill.TaxableAmount.Add(amounts.taxable)
			bill.CGSTAmount = bill.CGSTAmount.Add(amounts.cgst)
			bill.SGSTAmount = bill.SGSTAmount.Add(amounts.sgst)
			bill.GrandTotal = bill.GrandTotal.Add(amounts.total)
		}
		bill.TotalGST = bill.CGSTAmount.Add(bill.SGSTAmount)

		var newBalance decimal.Decimal
		if req.PaymentMode == domain.PaymentCredit {
			newBalance = customer.CurrentBalance.Add(bill.GrandTotal)
			if customer.CreditLimit.IsPositive() && newBalance.GreaterThan(customer.CreditLimit) {
				return domain.Invalid("credit limit of %s exceeded for %s: balance would be %s",
					customer.CreditLimit.StringFixed(2), customer.Name, newBalance.StringFixed(2))
			}
		}

		number, err := q.NextBillNumber(ctx, s.state.Settings().BillPrefix)
		if err != nil {
			return err
		}
		bill.BillNumber = number
		if err := q.CreateBill(ctx, &bill); err != nil {
			return err
		}

		var records []domain.ScheduledMedicineRecord
		for i := range items {
			items[i].BillID = bill.ID
			if err := q.CreateBillItem(ctx, &items[i]); err != nil {
				return err
			}
			if err := q.DecrementBatch(ctx, items[i].BatchID, items[i].Quantity); err != nil {
				return err
			}
			schedule := lines[i].medicine.Schedule
			if !schedule.Regulated() {
				continue
			}
			p := req.Patient
			rec := domain.ScheduledMedicineRecord{
				BillID:               bill.ID,
				BillItemID:           items[i].ID,
				MedicineID:           items[i].MedicineID,
				Schedule:             schedule,
				PatientName:          p.Name,
				PatientAge:           p.Age,
				PatientGender:        p.Gender,
				PatientAddress:       p.Address,
				DoctorName:           bill.DoctorName,
				DoctorRegistrationNo: p.DoctorRegistrationNo,
				PrescriptionNo:       p.PrescriptionNo,
				Quantity:             items[i].Quantity,
				CreatedAt:            bill.CreatedAt,
			}
			if err := q.CreateScheduledRecord(ctx, &rec); err != nil {
				return err
			}
			records = append(records, rec)
		}

		if req.PaymentMode == domain.PaymentCredit && bill.GrandTotal.IsPositive() {
			entry := domain.Credit{
				CustomerID:   customer.ID,
				Type:         domain.CreditSale,
				Amount:       bill.GrandTotal,
				BalanceAfter: newBalance,
				BillID:       &bill.ID,
				PaymentMode:  string(domain.PaymentCredit),
				Notes:        "Bill " + bill.BillNumber,
				CreatedAt:    bill.CreatedAt,
			}
			if err := q.CreateCredit(ctx, &entry); err != nil {
				return err
			}
			if err := q.SetCustomerBalance(ctx, customer.ID, newBalance); err != nil {
				return err
			}
		}

		if records == nil {
			records = []domain.ScheduledMedicineRecord{}
		}
		detail = domain.BillDetail{Bill: bill, Items: items, Scheduled: records}
		return nil
	})
	return detail, err
}

// GetBill loads a bill with its items and Schedule H/H1 records.
func (s *BillingService) GetBill(ctx context.Context, id int64) (domain.BillDetail, error) {
	q := store.New(s.db)
	bill, err := q.GetBill(ctx, id)
	if err != nil {
		return domain.BillDetail{}, err
	}
	items, err := q.BillItems(ctx, id)
	if err != nil {
		return domain.BillDetail{}, err
	}
	records, err := q.ScheduledRecords(ctx, id)
	if err != nil {
		return domain.BillDetail{}, err
	}
	return domain.BillDetail{Bill: bill, Items: items, Scheduled: records}, nil
}

// ListBills takes From/To as YYYY-MM-DD days.
func (s *BillingService) ListBills(ctx context.Context, f domain.BillFilter) ([]domain.Bill, error) {
	for _, day := range []string{f.From, f.To} {
		if day == "" {
			continue
		}
		if _, err := timeutil.ParseDate(day); err != nil {
			return nil, domain.Invalid("dates must be YYYY-MM-DD")
		}
	}
	if f.PaymentMode != "" && !f.PaymentMode.Valid() {
		return nil, domain.Invalid("unknown payment mode %q", f.PaymentMode)
	}
	f.From, f.To = timeutil.DayRange(f.From, f.To)
	f.Limit = clampLimit(f.Limit, 100, 1000)
	return store.New(s.db).ListBills(ctx, f)
}

// BillPDF renders a saved bill with the current pharmacy profile.
func (s *BillingService) BillPDF(ctx context.Context, id int64) ([]byte, domain.BillDetail, error) {
	detail, err := s.GetBill(ctx, id)
	if err != nil {
		return nil, domain.BillDetail{}, err
	}
	pdf, err := invoice.Render(detail, s.state.Settings())
	if err != nil {
		return nil, domain.BillDetail{}, err
	}
	return pdf, detail, nil
}
