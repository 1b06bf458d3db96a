package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medbill/m/domain"
)

const billColumns = `id, bill_number, customer_id, customer_name, customer_phone, doctor_name, payment_mode,
	taxable_amount, cgst_amount, sgst_amount, total_gst, grand_total, created_by, created_at`

const billItemColumns = `id, bill_id, batch_id, medicine_id, medicine_name, hsn_code, batch_number, expiry_date,
	quantity, unit_price, discount_percent, gst_rate, taxable_amount, cgst_amount, sgst_amount, total_amount`

// NextBillNumber formats the next sequential bill number. It must run inside
// the transaction that inserts the bill.
func (q *Queries) NextBillNumber(ctx context.Context, prefix string) (string, error) {
	var next int64
	if err := q.scalar(ctx, &next, "next bill number", `SELECT COALESCE(MAX(id), 0) + 1 FROM bills`); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", prefix, next), nil
}

func (q *Queries) CreateBill(ctx context.Context, b *domain.Bill) error {
	id, err := q.insert(ctx, "create bill", `INSERT INTO bills
		(bill_number, customer_id, customer_name, customer_phone, doctor_name, payment_mode, taxable_amount,
		 cgst_amount, sgst_amount, total_gst, grand_total, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		b.BillNumber, b.CustomerID, b.CustomerName, b.CustomerPhone, b.DoctorName, b.PaymentMode, b.TaxableAmount,
		b.CGSTAmount, b.SGSTAmount, b.TotalGST, b.GrandTotal, b.CreatedBy, b.CreatedAt)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (q *Queries) CreateBillItem(ctx context.Context, it *domain.BillItem) error {
	id, err := q.insert(ctx, "create bill item", `INSERT INTO bill_items
		(bill_id, batch_id, medicine_id, medicine_name, hsn_code, batch_number, expiry_date, quantity, unit_price,
		 discount_percent, gst_rate, taxable_amount, cgst_amount, sgst_amount, total_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		it.BillID, it.BatchID, it.MedicineID, it.MedicineName, it.HSNCode, it.BatchNumber, it.ExpiryDate, it.Quantity,
		it.UnitPrice, it.DiscountPercent, it.GSTRate, it.TaxableAmount, it.CGSTAmount, it.SGSTAmount, it.TotalAmount)
	if err != nil {
		return err
	}
	it.ID = id
	return nil
}

func (q *Queries) CreateScheduledRecord(ctx context.Context, r *domain.ScheduledMedicineRecord) error {
	id, err := q.insert(ctx, "create scheduled record", `INSERT INTO scheduled_medicine_records
		(bill_id, bill_item_id, medicine_id, schedule, patient_name, patient_age, patient_gender, patient_address,
		 doctor_name, doctor_registration_no, prescription_no, quantity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		r.BillID, r.BillItemID, r.MedicineID, r.Schedule, r.PatientName, r.PatientAge, r.PatientGender,
		r.PatientAddress, r.DoctorName, r.DoctorRegistrationNo, r.PrescriptionNo, r.Quantity, r.CreatedAt)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (q *Queries) GetBill(ctx context.Context, id int64) (domain.Bill, error) {
	var b domain.Bill
	err := q.get(ctx, &b, "bill", id, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	return b, err
}

func (q *Queries) BillItems(ctx context.Context, billID int64) ([]domain.BillItem, error) {
	items := []domain.BillItem{}
	err := q.list(ctx, &items, "list bill items",
		`SELECT `+billItemColumns+` FROM bill_items WHERE bill_id = ? ORDER BY id`, billID)
	return items, err
}

func (q *Queries) GetBillItem(ctx context.Context, id int64) (domain.BillItem, error) {
	var it domain.BillItem
	err := q.get(ctx, &it, "bill item", id, `SELECT `+billItemColumns+` FROM bill_items WHERE id = ?`, id)
	return it, err
}

func (q *Queries) ScheduledRecords(ctx context.Context, billID int64) ([]domain.ScheduledMedicineRecord, error) {
	records := []domain.ScheduledMedicineRecord{}
	err := q.list(ctx, &records, "list scheduled records", `SELECT id, bill_id, bill_item_id, medicine_id, schedule,
			patient_name, patient_age, patient_gender, patient_address, doctor_name, doctor_registration_no,
			prescription_no, quantity, created_at
		FROM scheduled_medicine_records WHERE bill_id = ? ORDER BY id`, billID)
	return records, err
}

// ListBills returns bills newest first. Empty filter fields are ignored.
func (q *Queries) ListBills(ctx context.Context, f domain.BillFilter) ([]domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE 1 = 1`
	var args []any
	if f.From != "" {
		query += ` AND created_at >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND created_at <= ?`
		args = append(args, f.To)
	}
	if f.CustomerID > 0 {
		query += ` AND customer_id = ?`
		args = append(args, f.CustomerID)
	}
	if f.PaymentMode != "" {
		query += ` AND payment_mode = ?`
		args = append(args, f.PaymentMode)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, f.Limit)

	bills := []domain.Bill{}
	err := q.list(ctx, &bills, "list bills", query, args...)
	return bills, err
}

// ReturnedQuantity sums every earlier return against one bill item.
func (q *Queries) ReturnedQuantity(ctx context.Context, billItemID int64) (int64, error) {
	var qty int64
	err := q.scalar(ctx, &qty, "returned quantity",
		`SELECT COALESCE(SUM(quantity), 0) FROM sales_returns WHERE bill_item_id = ?`, billItemID)
	return qty, err
}

// BillItemsFor loads the items of several bills in one query.
func (q *Queries) BillItemsFor(ctx context.Context, billIDs []int64) ([]domain.BillItem, error) {
	items := []domain.BillItem{}
	if len(billIDs) == 0 {
		return items, nil
	}
	query, args, err := sqlx.In(`SELECT `+billItemColumns+` FROM bill_items WHERE bill_id IN (?) ORDER BY bill_id, id`, billIDs)
	if err != nil {
		return nil, domain.Persistence("list bill items", err)
	}
	err = q.list(ctx, &items, "list bill items", query, args...)
	return items, err
}
