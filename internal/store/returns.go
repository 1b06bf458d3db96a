package store

import (
	"context"

	"medbill/m/domain"
	"medbill/m/internal/timeutil"
)

const supplierReturnColumns = `id, supplier_id, batch_id, quantity, amount, reason, status, created_at, updated_at`

func (q *Queries) CreateSalesReturn(ctx context.Context, r *domain.SalesReturn) error {
	id, err := q.insert(ctx, "create sales return", `INSERT INTO sales_returns
		(return_number, bill_id, bill_item_id, batch_id, quantity, refund_amount, refund_mode, reason, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		r.ReturnNumber, r.BillID, r.BillItemID, r.BatchID, r.Quantity, r.RefundAmount, r.RefundMode, r.Reason,
		r.CreatedBy, r.CreatedAt)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (q *Queries) SalesReturnsForBill(ctx context.Context, billID int64) ([]domain.SalesReturn, error) {
	returns := []domain.SalesReturn{}
	err := q.list(ctx, &returns, "list sales returns", `SELECT id, return_number, bill_id, bill_item_id, batch_id,
			quantity, refund_amount, refund_mode, reason, created_by, created_at
		FROM sales_returns WHERE bill_id = ? ORDER BY id`, billID)
	return returns, err
}

func (q *Queries) CountSalesReturns(ctx context.Context) (int64, error) {
	var count int64
	err := q.scalar(ctx, &count, "count sales returns", `SELECT COUNT(DISTINCT return_number) FROM sales_returns`)
	return count, err
}

func (q *Queries) CreateSupplierReturn(ctx context.Context, r *domain.SupplierReturn) error {
	now := timeutil.Stamp()
	r.CreatedAt, r.UpdatedAt = now, now
	id, err := q.insert(ctx, "create supplier return", `INSERT INTO supplier_returns
		(supplier_id, batch_id, quantity, amount, reason, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		r.SupplierID, r.BatchID, r.Quantity, r.Amount, r.Reason, r.Status, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (q *Queries) GetSupplierReturn(ctx context.Context, id int64) (domain.SupplierReturn, error) {
	var r domain.SupplierReturn
	err := q.get(ctx, &r, "supplier return", id,
		`SELECT `+supplierReturnColumns+` FROM supplier_returns WHERE id = ?`, id)
	return r, err
}

func (q *Queries) ListSupplierReturns(ctx context.Context, status domain.SupplierReturnStatus) ([]domain.SupplierReturn, error) {
	returns := []domain.SupplierReturn{}
	err := q.list(ctx, &returns, "list supplier returns", `SELECT `+supplierReturnColumns+` FROM supplier_returns
		WHERE (? = '' OR status = ?) ORDER BY id DESC`, string(status), string(status))
	return returns, err
}

// MoveSupplierReturn is a compare-and-set on the status column.
func (q *Queries) MoveSupplierReturn(ctx context.Context, id int64, from, to domain.SupplierReturnStatus) (bool, error) {
	n, err := q.exec(ctx, "update supplier return", `UPDATE supplier_returns SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`, to, timeutil.Stamp(), id, from)
	return n > 0, err
}
