package store

import (
	"context"

	"medbill/m/domain"
	"medbill/m/internal/timeutil"
)

const runningBillColumns = `id, customer_id, customer_name, customer_phone, medicine_id, medicine_name, quantity,
	unit_price, status, batch_id, notes, created_at, updated_at`

func (q *Queries) CreateRunningBill(ctx context.Context, rb *domain.RunningBill) error {
	now := timeutil.Stamp()
	rb.CreatedAt, rb.UpdatedAt = now, now
	id, err := q.insert(ctx, "create running bill", `INSERT INTO running_bills
		(customer_id, customer_name, customer_phone, medicine_id, medicine_name, quantity, unit_price, status,
		 notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		rb.CustomerID, rb.CustomerName, rb.CustomerPhone, rb.MedicineID, rb.MedicineName, rb.Quantity, rb.UnitPrice,
		rb.Status, rb.Notes, rb.CreatedAt, rb.UpdatedAt)
	if err != nil {
		return err
	}
	rb.ID = id
	return nil
}

func (q *Queries) GetRunningBill(ctx context.Context, id int64) (domain.RunningBill, error) {
	var rb domain.RunningBill
	err := q.get(ctx, &rb, "running bill", id, `SELECT `+runningBillColumns+` FROM running_bills WHERE id = ?`, id)
	return rb, err
}

// ListRunningBills filters by status when one is given.
func (q *Queries) ListRunningBills(ctx context.Context, status domain.RunningBillStatus) ([]domain.RunningBill, error) {
	bills := []domain.RunningBill{}
	err := q.list(ctx, &bills, "list running bills", `SELECT `+runningBillColumns+` FROM running_bills
		WHERE (? = '' OR status = ?) ORDER BY id DESC`, string(status), string(status))
	return bills, err
}

// MoveRunningBill changes status only while the row is still in the expected
// one; false means another operator got there first.
func (q *Queries) MoveRunningBill(ctx context.Context, id int64, from, to domain.RunningBillStatus, batchID *int64) (bool, error) {
	n, err := q.exec(ctx, "update running bill", `UPDATE running_bills SET status = ?, batch_id = COALESCE(?, batch_id),
		updated_at = ? WHERE id = ? AND status = ?`, to, batchID, timeutil.Stamp(), id, from)
	return n > 0, err
}

func (q *Queries) CountRunningBills(ctx context.Context, status domain.RunningBillStatus) (int64, error) {
	var count int64
	err := q.scalar(ctx, &count, "count running bills", `SELECT COUNT(*) FROM running_bills WHERE status = ?`, status)
	return count, err
}
