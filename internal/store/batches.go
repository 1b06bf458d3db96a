package store

import (
	"context"
	"math"

	"medbill/m/domain"
	"medbill/m/internal/timeutil"
)

const batchColumns = `id, medicine_id, supplier_id, batch_number, expiry_date, quantity, purchase_price, mrp,
	selling_price, purchase_invoice_no, created_at, updated_at`

const batchViewSelect = `SELECT b.id, b.medicine_id, b.supplier_id, b.batch_number, b.expiry_date, b.quantity,
		b.purchase_price, b.mrp, b.selling_price, b.purchase_invoice_no, b.created_at, b.updated_at,
		m.name AS medicine_name, s.name AS supplier_name
	FROM batches b
	JOIN medicines m ON m.id = b.medicine_id
	JOIN suppliers s ON s.id = b.supplier_id`

func (q *Queries) CreateBatch(ctx context.Context, b *domain.Batch) error {
	now := timeutil.Stamp()
	b.CreatedAt, b.UpdatedAt = now, now
	id, err := q.insert(ctx, "create batch", `INSERT INTO batches
		(medicine_id, supplier_id, batch_number, expiry_date, quantity, purchase_price, mrp, selling_price,
		 purchase_invoice_no, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		b.MedicineID, b.SupplierID, b.BatchNumber, b.ExpiryDate, b.Quantity, b.PurchasePrice, b.MRP,
		b.SellingPrice, b.PurchaseInvoiceNo, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (q *Queries) GetBatch(ctx context.Context, id int64) (domain.Batch, error) {
	var b domain.Batch
	err := q.get(ctx, &b, "batch", id, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	return b, err
}

// ListBatches returns batches ordered by expiry (earliest first). A zero
// medicineID lists every medicine.
func (q *Queries) ListBatches(ctx context.Context, medicineID int64, inStockOnly bool) ([]domain.BatchView, error) {
	batches := []domain.BatchView{}
	query := batchViewSelect + ` WHERE (? = 0 OR b.medicine_id = ?)`
	if inStockOnly {
		query += ` AND b.quantity > 0`
	}
	query += ` ORDER BY b.expiry_date, b.id`
	err := q.list(ctx, &batches, "list batches", query, medicineID, medicineID)
	return batches, err
}

// ExpiringBatches lists stocked batches expiring on or before the given day,
// including those already expired.
func (q *Queries) ExpiringBatches(ctx context.Context, until string) ([]domain.BatchView, error) {
	batches := []domain.BatchView{}
	err := q.list(ctx, &batches, "expiring batches",
		batchViewSelect+` WHERE b.quantity > 0 AND b.expiry_date <= ? ORDER BY b.expiry_date, b.id`, until)
	return batches, err
}

// DecrementBatch removes qty units only if the batch still holds at least qty,
// so stock can never go negative even under concurrent sales.
func (q *Queries) DecrementBatch(ctx context.Context, id, qty int64) error {
	n, err := q.exec(ctx, "decrement stock", `UPDATE batches SET quantity = quantity - ?, updated_at = ?
		WHERE id = ? AND quantity >= ?`, qty, timeutil.Stamp(), id, qty)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	b, err := q.GetBatch(ctx, id)
	if err != nil {
		return err
	}
	return domain.Invalid("insufficient stock for batch %s: %d available, %d requested", b.BatchNumber, b.Quantity, qty)
}

// IncrementBatch adds qty units, refusing any amount that would overflow the
// quantity column.
func (q *Queries) IncrementBatch(ctx context.Context, id, qty int64) error {
	n, err := q.exec(ctx, "restore stock",
		`UPDATE batches SET quantity = quantity + ?, updated_at = ? WHERE id = ? AND quantity <= ?`,
		qty, timeutil.Stamp(), id, math.MaxInt64-qty)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	b, err := q.GetBatch(ctx, id)
	if err != nil {
		return err
	}
	return domain.Invalid("cannot add %d units to batch %s holding %d", qty, b.BatchNumber, b.Quantity)
}
